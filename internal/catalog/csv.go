// Package catalog reads and writes the product catalog CSV files and merges
// scraped fragments into the master dataset.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"catalog/internal/models"
)

// Table is a header-addressed CSV file held in memory
type Table struct {
	Header []string
	Rows   []map[string]string
}

// Has reports whether the table carries the column
func (t *Table) Has(column string) bool {
	for _, h := range t.Header {
		if h == column {
			return true
		}
	}
	return false
}

// ReadTable parses a CSV with a header row. Short rows are padded with empty
// values and surplus cells are ignored.
func ReadTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	table := &Table{Header: header}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		row := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = record[i]
			} else {
				row[column] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// LoadTable reads a CSV file from disk
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	table, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return table, nil
}

// ReadProducts parses master catalog rows. Unknown columns are ignored and
// missing columns leave the matching fields empty.
func ReadProducts(r io.Reader) ([]models.ProductRow, error) {
	table, err := ReadTable(r)
	if err != nil {
		return nil, err
	}
	return tableToProducts(table), nil
}

// LoadProducts reads the master catalog CSV from disk
func LoadProducts(path string) ([]models.ProductRow, error) {
	table, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	return tableToProducts(table), nil
}

func tableToProducts(table *Table) []models.ProductRow {
	products := make([]models.ProductRow, 0, len(table.Rows))
	for _, raw := range table.Rows {
		var row models.ProductRow
		for column, value := range raw {
			row.Set(column, value)
		}
		products = append(products, row)
	}
	return products
}

// WriteProducts writes rows using the given column order
func WriteProducts(w io.Writer, rows []models.ProductRow, columns []string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(columns))
	for i := range rows {
		for j, column := range columns {
			record[j] = rows[i].Get(column)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// FileSource loads the master catalog for the ingestion coordinator
type FileSource struct {
	Path string
}

// LoadRows implements the coordinator's row source
func (s FileSource) LoadRows() ([]models.ProductRow, error) {
	return LoadProducts(s.Path)
}
