package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/wordtrack/pkg/models"
	"github.com/xuri/excelize/v2"
)

// errSkipRow marks a row that is not a word, such as a blank line
var errSkipRow = errors.New("skipping row")

// WordStore is the vocabulary side of the store the importer writes to
type WordStore interface {
	UpsertWord(ctx context.Context, w *models.Word) (bool, error)
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath            string // Path to the Excel or CSV file
	WordColumn          string // Column with the word
	TranslationColumn   string // Column with the translation
	PronunciationColumn string // Column with the pronunciation
	TopicColumn         string // Column with the topic
	SheetName           string // Name of the sheet to import
	StartRow            int    // The row to start importing from (1-based index)
	DefaultTopic        string // Topic for rows without one
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn:          "A",
		TranslationColumn:   "B",
		PronunciationColumn: "C",
		TopicColumn:         "D",
		SheetName:           "Sheet1",
		StartRow:            2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Errors         []string
}

// Importer loads vocabulary files into the store
type Importer struct {
	store WordStore
}

// NewImporter creates an importer writing to store
func NewImporter(store WordStore) *Importer {
	return &Importer{store: store}
}

// ImportWords imports words from an Excel or CSV file. Bad rows are reported
// in the result and do not stop the import.
func (im *Importer) ImportWords(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	if config.StartRow < 1 {
		config.StartRow = 1
	}
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		return im.importFromCSV(ctx, config)
	}
	return im.importFromExcel(ctx, config)
}

// importFromExcel imports words from an Excel file
func (im *Importer) importFromExcel(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		w := models.Word{
			Text:          cell(row, config.WordColumn),
			Translation:   cell(row, config.TranslationColumn),
			Pronunciation: cell(row, config.PronunciationColumn),
			Topic:         cell(row, config.TopicColumn),
		}
		if w.Topic == "" {
			w.Topic = config.DefaultTopic
		}
		if err := im.processWord(ctx, &w, result); err != nil {
			if errors.Is(err, errSkipRow) {
				continue
			}
			if ctx.Err() != nil {
				return result, err
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

// importFromCSV imports words from a CSV file in the
// "word,[pronunciation],translation" layout. A row with only a first
// column starts a new topic.
func (im *Importer) importFromCSV(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	result := &ImportResult{Errors: make([]string, 0)}
	currentTopic := config.DefaultTopic
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("error reading CSV: %w", err)
		}
		rowNum++
		if rowNum < config.StartRow {
			continue
		}

		// topic header row, e.g. "Food,,"
		if len(row) >= 1 && strings.TrimSpace(row[0]) != "" && strings.TrimSpace(strings.Join(row[1:], "")) == "" {
			currentTopic = strings.Trim(strings.TrimSpace(row[0]), "\"")
			continue
		}

		w := models.Word{Topic: currentTopic}
		switch {
		case len(row) >= 3:
			w.Text, w.Pronunciation, w.Translation = row[0], row[1], row[2]
		case len(row) == 2:
			w.Text, w.Translation = row[0], row[1]
		default:
			continue
		}
		if err := im.processWord(ctx, &w, result); err != nil {
			if errors.Is(err, errSkipRow) {
				continue
			}
			if ctx.Err() != nil {
				return result, err
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}
	return result, nil
}

// processWord cleans a parsed word and stores it
func (im *Importer) processWord(ctx context.Context, w *models.Word, result *ImportResult) error {
	w.Text = cleanWord(w.Text)
	w.Translation = strings.TrimSpace(w.Translation)
	w.Pronunciation = strings.Trim(strings.TrimSpace(w.Pronunciation), "[]/")
	w.Topic = strings.TrimSpace(w.Topic)

	if w.Text == "" && w.Translation == "" {
		return errSkipRow
	}
	result.TotalProcessed++
	if w.Text == "" {
		return fmt.Errorf("word cannot be empty")
	}
	if w.Translation == "" {
		return fmt.Errorf("translation cannot be empty")
	}

	created, err := im.store.UpsertWord(ctx, w)
	if err != nil {
		return fmt.Errorf("failed to save word: %w", err)
	}
	if created {
		result.Created++
	} else {
		result.Updated++
	}
	return nil
}

// cleanWord drops extra forms in parentheses, "go (went, gone)" becomes "go"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}

// cell returns the value in the given column letter, "" when absent
func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if i := columnToIndex(column); i >= 0 && i < len(row) {
		return row[i]
	}
	return ""
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
