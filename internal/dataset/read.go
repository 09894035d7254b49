package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"lyricrater/internal/services"
)

// ReadCSV parses comma-separated text with a header row.
func ReadCSV(r io.Reader) (*Table, error) {
	return readDelimited(r, ',')
}

// ReadTSV parses tab-separated text, the format a spreadsheet produces when
// rows are copied and pasted.
func ReadTSV(r io.Reader) (*Table, error) {
	return readDelimited(r, '\t')
}

func readDelimited(r io.Reader, comma rune) (*Table, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = comma == '\t'
	records, err := reader.ReadAll()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "dataset", "parse", "malformed delimited input", err)
	}
	return fromRecords(records)
}

// ReadXLSX parses the first worksheet of an XLSX workbook.
func ReadXLSX(r io.Reader) (*Table, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "dataset", "open workbook", "unreadable xlsx", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, services.Wrap(services.ErrValidation, "dataset", "open workbook", "workbook has no sheets", nil)
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "dataset", "read sheet", fmt.Sprintf("sheet %q", sheets[0]), err)
	}
	return fromRecords(rows)
}

// Load reads path using the reader that matches its extension.
func Load(path string) (*Table, error) {
	read, err := readerFor(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()
	return read(file)
}

func readerFor(path string) (func(io.Reader) (*Table, error), error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return ReadCSV, nil
	case ".tsv", ".txt":
		return ReadTSV, nil
	case ".xlsx":
		return ReadXLSX, nil
	default:
		return nil, services.Wrap(services.ErrValidation, "dataset", "load",
			fmt.Sprintf("unsupported input extension %q (want .csv, .tsv, .txt, or .xlsx)", ext), nil)
	}
}
