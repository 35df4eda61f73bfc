package sheets

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/xuri/excelize/v2"
)

// XLSXSource reads a tab from an exported workbook on disk.
type XLSXSource struct{}

func NewXLSXSource() *XLSXSource {
	return &XLSXSource{}
}

func (x *XLSXSource) Name() string {
	return timesheet.SourceXLSX
}

func (x *XLSXSource) Ready(ref TabRef) bool {
	return ref.Path != ""
}

func (x *XLSXSource) Values(ctx context.Context, ref TabRef) ([][]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(ref.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", ref.Path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(ref.Tab)
	if err != nil {
		return nil, fmt.Errorf("read tab %s of %s: %w", ref.Tab, ref.Path, err)
	}

	grid := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		grid[i] = cells
	}
	return grid, nil
}
