package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/example/vocabmaster/pkg/models"
	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{
	"Word", "Meaning", "Source URL", "Source Title", "Occurrences",
	"First Seen", "Last Seen", "Reviews", "Interval Days", "Next Review",
}

func exportRow(w models.WordRecord) []string {
	row := []string{
		w.Word,
		w.Meaning,
		w.SourceURL,
		w.SourceTitle,
		strconv.Itoa(w.OccurrenceCount),
		w.FirstSeenAt.Format(time.RFC3339),
		w.LastSeenAt.Format(time.RFC3339),
		"0", "", "",
	}
	if rs := w.ReviewState; rs != nil {
		row[7] = strconv.Itoa(rs.ReviewCount)
		row[8] = strconv.Itoa(rs.IntervalDays)
		row[9] = rs.NextReviewAt.Format(time.RFC3339)
	}
	return row
}

// ExportWords writes words to an .xlsx or .csv file chosen by the extension of path
func ExportWords(path string, words []models.WordRecord) error {
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		return exportCSV(path, words)
	}
	return exportExcel(path, words)
}

func exportExcel(path string, words []models.WordRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", toCells(exportHeader)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, w := range words {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, toCells(exportRow(w))); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

func toCells(values []string) *[]interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &cells
}

func exportCSV(path string, words []models.WordRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range words {
		if err := w.Write(exportRow(rec)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
