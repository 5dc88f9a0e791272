package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tupadhub/tupadhub/internal/domain/project"
)

// SheetName is the worksheet holding the export rows.
const SheetName = "Projects"

// XLSX writes a workbook with one header row and one row per project, in the
// same column layout as CSV. Numeric fields are written as numbers.
func XLSX(w io.Writer, projects []project.Project) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(columns))
	for i, h := range Header() {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, p := range projects {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := cells(p)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
