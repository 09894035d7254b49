package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/xuri/excelize/v2"

	"lyricrater/internal/services"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Sheet1"

// WriteCSV writes the header and rows as UTF-8 CSV.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// WriteXLSX writes the table to a single-sheet workbook.
func WriteXLSX(w io.Writer, t *Table) error {
	book := excelize.NewFile()
	defer book.Close()

	if err := writeSheetRow(book, 1, t.Columns); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := writeSheetRow(book, i+2, row); err != nil {
			return err
		}
	}
	if err := book.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeSheetRow(book *excelize.File, rowNumber int, cells []string) error {
	anchor, err := excelize.CoordinatesToCellName(1, rowNumber)
	if err != nil {
		return fmt.Errorf("xlsx cell name: %w", err)
	}
	values := make([]any, len(cells))
	for i, cell := range cells {
		values[i] = cell
	}
	if err := book.SetSheetRow(SheetName, anchor, &values); err != nil {
		return fmt.Errorf("xlsx row %d: %w", rowNumber, err)
	}
	return nil
}

const exportFileMode os.FileMode = 0o644

// Export writes t to path in the format implied by its extension. The file is
// written to a temporary sibling and renamed into place while a lock file is held.
func Export(path string, t *Table) (err error) {
	write, err := writerFor(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire export lock: %w", err)
	}
	if !ok {
		return services.Wrap(services.ErrValidation, "dataset", "export",
			fmt.Sprintf("%s is being written by another run", path), nil)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp export: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if err = write(tmp, t); err != nil {
		_ = tmp.Close()
		return err
	}
	// CreateTemp uses 0600; exports are ordinary user files.
	if err = tmp.Chmod(exportFileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp export: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp export: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("finalize export: %w", err)
	}
	return nil
}

func writerFor(path string) (func(io.Writer, *Table) error, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return WriteCSV, nil
	case ".xlsx":
		return WriteXLSX, nil
	default:
		return nil, services.Wrap(services.ErrValidation, "dataset", "export",
			fmt.Sprintf("unsupported output extension %q (want .csv or .xlsx)", ext), nil)
	}
}
