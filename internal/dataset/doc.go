// Package dataset reads and writes the tabular song lists that lyricrater labels.
//
// A Table keeps cells as strings in their original column and row order.
// Inputs come from CSV, tab-separated text (as pasted from a spreadsheet), or
// the first sheet of an XLSX workbook; outputs are CSV or XLSX. Export holds a
// lock file next to the destination so concurrent runs never interleave writes.
package dataset
