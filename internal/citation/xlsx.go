// AngelaMos | 2026
// xlsx.go

package citation

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Sources"

var xlsxHeader = []string{
	"#", "Title", "Authors", "Year", "Journal", "Volume", "Issue",
	"Pages", "DOI", "URL", "Type", "Citations", "Formatted", "In-text",
}

// WriteXLSX writes a workbook with one row per source and its citation
// rendered under style.
func WriteXLSX(w io.Writer, sources []Source, style Style) error {
	citations, err := FormatAll(sources, style)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close() //nolint:errcheck // in-memory workbook
	}()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetRow(xlsxSheet, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(xlsxHeader), 1)
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, c := range citations {
		src := c.Source

		var year any = ""
		if src.Year > 0 {
			year = src.Year
		}

		row := []any{
			i + 1,
			src.title(),
			strings.Join(trimmed(src.Authors), "; "),
			year,
			src.Journal,
			src.Volume,
			src.Issue,
			src.Pages,
			src.bareDOI(),
			src.URL,
			string(src.Kind()),
			src.CitationCount,
			c.Formatted,
			c.InText,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(xlsxSheet, "B", "B", 48); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(xlsxSheet, "M", "M", 80); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	return nil
}
