package record

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// ImportCSV reads a dataset from a CSV file.
//
// The first row is the header and fixes field names and their iteration
// order for every record. Rows shorter than the header are rejected.
func ImportCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses a dataset from CSV content.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("data file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	dataset := &Dataset{Columns: columns}

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to parse row %d: %w", line, err)
		}

		rec, err := New(columns, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		dataset.Records = append(dataset.Records, rec)
	}

	return dataset, nil
}
