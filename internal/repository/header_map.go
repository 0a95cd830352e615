package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn is returned when a required column is absent from a CSV header
var ErrMissingColumn = errors.New("required column missing")

// createHeaderMap creates a map of column names to their indices.
// Required columns must be present; optional ones are mapped when found.
func createHeaderMap(header []string, required []string, optional []string) (map[string]int, error) {
	columnMap := make(map[string]int)

	for _, column := range required {
		idx := findColumn(header, column)
		if idx < 0 {
			return nil, fmt.Errorf("%w: '%s' not found in CSV header", ErrMissingColumn, column)
		}
		columnMap[column] = idx
	}

	for _, column := range optional {
		if idx := findColumn(header, column); idx >= 0 {
			columnMap[column] = idx
		}
	}

	return columnMap, nil
}

func findColumn(header []string, column string) int {
	for i, field := range header {
		if strings.EqualFold(column, strings.TrimSpace(field)) {
			return i
		}
	}
	return -1
}

// cell returns the trimmed value of a mapped column, or "" when unmapped or short
func cell(row []string, columnMap map[string]int, column string) string {
	idx, ok := columnMap[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
