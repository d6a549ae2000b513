package service

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jask/contactimport/internal/grid"
)

// ErrUnsupportedFile is returned for file types LoadTableFile cannot read.
var ErrUnsupportedFile = errors.New("unsupported file type")

// LoadTableFile reads a .csv, .tsv, .txt or .xlsx file into a grid table.
// Spreadsheets use their first sheet.
func LoadTableFile(path string) (grid.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadXLSX(path)
	case ".csv":
		return loadDelimited(path, ',')
	case ".tsv", ".txt":
		return loadDelimited(path, '\t')
	default:
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFile)
	}
}

func loadDelimited(path string, comma rune) (grid.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDelimited(f, comma)
}

// ReadDelimited parses delimited text allowing ragged rows. Line errors stop
// the read and report the offending line.
func ReadDelimited(r io.Reader, comma rune) (grid.Table, error) {
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.Comma = comma
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	csvr.LazyQuotes = true

	var rows [][]string
	line := 0
	for {
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}
	return grid.FromRows(rows), nil
}

func loadXLSX(path string) (grid.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%s: no sheets", filepath.Base(path))
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}
	return grid.FromRows(rows), nil
}
