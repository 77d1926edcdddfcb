package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/vocabmaster/internal/store"
	"github.com/example/vocabmaster/pkg/models"
	"github.com/xuri/excelize/v2"
)

// Sink receives imported words
type Sink interface {
	ListWords(ctx context.Context) ([]models.WordRecord, error)
	Highlight(ctx context.Context, text string, page models.PageContext) (models.WordRecord, error)
	UpdateMeaning(ctx context.Context, word, meaning string) (models.WordRecord, error)
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath      string // Path to the Excel or CSV file
	SheetName     string // Name of the sheet to import
	WordColumn    string
	MeaningColumn string
	URLColumn     string
	TitleColumn   string
	StartRow      int // The row to start importing from (1-based index)
}

// DefaultImportConfig reads the layout written by ExportWords
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn:    "A",
		MeaningColumn: "B",
		URLColumn:     "C",
		TitleColumn:   "D",
		SheetName:     "Sheet1",
		StartRow:      2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

type wordRow struct {
	word, meaning, url, title string
}

// ImportWords imports words from an Excel or CSV file.
// New words are added as highlights; known words only get their meaning updated.
func ImportWords(ctx context.Context, sink Sink, config ImportConfig) (*ImportResult, error) {
	var (
		rows [][]string
		err  error
	)
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	existing, err := sink.ListWords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing words: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, w := range existing {
		known[w.Word] = true
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		data := extract(row, config)
		if strings.TrimSpace(data.word) == "" {
			continue
		}
		result.TotalProcessed++
		if err := importRow(ctx, sink, data, known, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

func importRow(ctx context.Context, sink Sink, data wordRow, known map[string]bool, result *ImportResult) error {
	word, err := store.Normalize(cleanWord(data.word))
	if err != nil {
		return err
	}
	meaning := strings.TrimSpace(data.meaning)

	if known[word] {
		if meaning == "" {
			result.Skipped++
			return nil
		}
		if _, err := sink.UpdateMeaning(ctx, word, meaning); err != nil {
			return fmt.Errorf("failed to update word: %w", err)
		}
		result.Updated++
		return nil
	}

	page := models.PageContext{URL: strings.TrimSpace(data.url), Title: strings.TrimSpace(data.title)}
	if _, err := sink.Highlight(ctx, word, page); err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}
	known[word] = true
	if meaning != "" {
		if _, err := sink.UpdateMeaning(ctx, word, meaning); err != nil {
			return fmt.Errorf("failed to set meaning: %w", err)
		}
	}
	result.Created++
	return nil
}

func extract(row []string, config ImportConfig) wordRow {
	cell := func(column string) string {
		if column == "" {
			return ""
		}
		if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
			return row[idx]
		}
		return ""
	}
	return wordRow{
		word:    cell(config.WordColumn),
		meaning: cell(config.MeaningColumn),
		url:     cell(config.URLColumn),
		title:   cell(config.TitleColumn),
	}
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cleanWord drops trailing notes in parentheses, e.g. "go (went, gone)"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}

// columnToIndex converts an Excel column letter to a zero-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
