package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
)

var errNoSheets = errors.New("workbook has no sheets")

// readXLSX decodes the first sheet; its first row holds the column names.
func readXLSX(path string) (*models.Dataset, error) {
	xlFile, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("xlsx open file: %w", err)
	}
	if len(xlFile.Sheets) == 0 {
		return nil, errNoSheets
	}

	return fromFrame(sheetToFrame(xlFile.Sheets[0]))
}

func sheetToFrame(sheet *xlsx.Sheet) dataframe.DataFrame {
	if len(sheet.Rows) == 0 {
		return dataframe.New()
	}

	var headers []string
	for _, cell := range sheet.Rows[0].Cells {
		headers = append(headers, strings.TrimSpace(cell.Value))
	}

	columns := make([][]string, len(headers))
	for i := range columns {
		columns[i] = make([]string, 0, len(sheet.Rows)-1)
	}

	for _, row := range sheet.Rows[1:] {
		for i := range headers {
			value := ""
			if i < len(row.Cells) {
				value = cellValue(row.Cells[i], headers[i])
			}
			columns[i] = append(columns[i], value)
		}
	}

	list := make([]series.Series, len(headers))
	for i, name := range headers {
		list[i] = series.New(columns[i], series.String, name)
	}

	return dataframe.New(list...)
}

// cellValue renders pickup cells stored as Excel serial dates in the
// timestamp layout the csv path parses. Empty cells become NaN.
func cellValue(cell *xlsx.Cell, header string) string {
	value := strings.TrimSpace(cell.Value)
	if value == "" {
		return "NaN"
	}
	if header != types.ColPickup {
		return value
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		return xlsx.TimeFromExcelTime(serial, false).Format("2006-01-02 15:04:05")
	}
	return value
}
