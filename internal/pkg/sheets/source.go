package sheets

import (
	"context"
	"fmt"
	"strings"
)

// TabRef names one tab of one spreadsheet. Path is used by file-backed sources.
type TabRef struct {
	SpreadsheetID string
	Tab           string
	Path          string
}

// Source returns a tab as a grid of cell values, row major.
type Source interface {
	Values(ctx context.Context, ref TabRef) ([][]interface{}, error)
	// Name is the provenance tag stored with synced rows.
	Name() string
	// Ready reports whether ref carries what this source needs to read it.
	Ready(ref TabRef) bool
}

func cellString(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return ""
	}
	if s, ok := row[idx].(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}

func cellValue(row []interface{}, idx int) interface{} {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func blankRow(row []interface{}) bool {
	for i := range row {
		if cellString(row, i) != "" {
			return false
		}
	}
	return true
}
