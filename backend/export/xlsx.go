package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/AnTengye/contractdesk/backend/model"
)

// SheetName is the worksheet that receives the table
const SheetName = "合約清單"

// WriteXLSX writes records as a single-sheet workbook with a header row
func WriteXLSX(w io.Writer, records []model.Contract) error {
	if len(records) == 0 {
		return ErrNoRows
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range records {
		cells := Row(&records[i])
		row := make([]interface{}, len(cells))
		for j, v := range cells {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

// Write dispatches on format
func Write(w io.Writer, format Format, records []model.Contract) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, records)
	default:
		return WriteCSV(w, records)
	}
}
