// Package csvimport turns an uploaded prayer timetable into a batch of
// prayer time inputs. Uploads go through three steps: the file is parsed,
// its columns are reconciled with the import fields (automatically when the
// header names already match), and the projected rows are reviewed before a
// single batch write.
package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/pkordes/masjid-admin/internal/domain"
)

// Table is a parsed upload: the ordered, de-duplicated header names and one
// map per non-blank data row. When two columns share a header the value of
// the later column is kept.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// Parse reads an uploaded file. Files named *.xlsx are read as workbooks
// (first sheet); anything else is read as comma-separated text.
func Parse(r io.Reader, filename string) (Table, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return parseXLSX(r)
	}
	return parseCSV(r)
}

// parseCSV decodes UTF-8 (a UTF-8 or UTF-16 byte order mark is honoured and
// stripped) and splits records on commas. Rows may be ragged.
func parseCSV(r io.Reader) (Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("%w: %v", domain.ErrParse, err)
		}
		records = append(records, rec)
	}
	return buildTable(records)
}

func parseXLSX(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("%w: read workbook: %v", domain.ErrParse, err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Table{}, fmt.Errorf("%w: open workbook: %v", domain.ErrParse, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, fmt.Errorf("%w: workbook has no sheets", domain.ErrParse)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, fmt.Errorf("%w: read sheet %q: %v", domain.ErrParse, sheets[0], err)
	}
	return buildTable(rows)
}

// buildTable takes the first non-blank record as the header row and keys
// every later non-blank record by it.
func buildTable(records [][]string) (Table, error) {
	headerAt := -1
	for i, rec := range records {
		if !isBlank(rec) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return Table{}, fmt.Errorf("%w: file has no header row", domain.ErrParse)
	}

	raw := records[headerAt]
	cols := make([]string, len(raw))
	var headers []string
	seen := make(map[string]bool, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if !validText(h) {
			return Table{}, fmt.Errorf("%w: header is not valid UTF-8 text", domain.ErrParse)
		}
		cols[i] = h
		if h != "" && !seen[h] {
			seen[h] = true
			headers = append(headers, h)
		}
	}
	if len(headers) == 0 {
		return Table{}, fmt.Errorf("%w: header row has no column names", domain.ErrParse)
	}

	var rows []map[string]string
	for n, rec := range records[headerAt+1:] {
		if isBlank(rec) {
			continue
		}
		row := make(map[string]string, len(cols))
		for i, v := range rec {
			if i >= len(cols) || cols[i] == "" {
				continue
			}
			if !validText(v) {
				return Table{}, fmt.Errorf("%w: line %d is not valid UTF-8 text", domain.ErrParse, headerAt+n+2)
			}
			row[cols[i]] = strings.TrimSpace(v)
		}
		rows = append(rows, row)
	}
	return Table{Headers: headers, Rows: rows}, nil
}

// validText rejects invalid UTF-8, including the replacement character the
// CSV decoder substitutes for undecodable bytes.
func validText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, utf8.RuneError)
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
