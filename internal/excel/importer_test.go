package excel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/wordtrack/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// memWords is an in-memory WordStore keyed by (text, topic)
type memWords struct {
	words  map[string]models.Word
	nextID int64
	err    error
}

func newMemWords() *memWords {
	return &memWords{words: make(map[string]models.Word)}
}

func (m *memWords) UpsertWord(_ context.Context, w *models.Word) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	key := w.Text + "|" + w.Topic
	if old, ok := m.words[key]; ok {
		w.ID = old.ID
		m.words[key] = *w
		return false, nil
	}
	m.nextID++
	w.ID = m.nextID
	m.words[key] = *w
	return true, nil
}

func writeXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		for c, v := range row {
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", name, v))
		}
	}
	path := filepath.Join(t.TempDir(), "words.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportExcel(t *testing.T) {
	path := writeXLSX(t, [][]string{
		{"Word", "Translation", "Pronunciation", "Topic"},
		{"go (went, gone)", "idti", "[gəʊ]", "verbs"},
		{"apple", "yabloko", "", "food"},
		{"", "orphan", "", ""},
		{"", "", "", ""},
		{"apple", "yabloko (fruit)", "", "food"},
	})
	store := newMemWords()
	config := DefaultImportConfig()
	config.FilePath = path

	result, err := NewImporter(store).ImportWords(context.Background(), config)
	require.NoError(t, err)
	assert.Equal(t, 4, result.TotalProcessed)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Updated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Row 4")

	goWord := store.words["go|verbs"]
	assert.Equal(t, "idti", goWord.Translation)
	assert.Equal(t, "gəʊ", goWord.Pronunciation)
	assert.Equal(t, "yabloko (fruit)", store.words["apple|food"].Translation)
}

func TestImportCSVWithTopicHeaders(t *testing.T) {
	content := "header,,\nFood,,\napple,[ˈæpl],yabloko\nbread,,\nAnimals,,\ndog,[dɒɡ],sobaka\ncat,koshka\n"
	path := filepath.Join(t.TempDir(), "words.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	store := newMemWords()
	config := DefaultImportConfig()
	config.FilePath = path

	result, err := NewImporter(store).ImportWords(context.Background(), config)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Created)
	assert.Empty(t, result.Errors)

	assert.Equal(t, "ˈæpl", store.words["apple|Food"].Pronunciation)
	assert.Equal(t, "sobaka", store.words["dog|Animals"].Translation)
	assert.Equal(t, "koshka", store.words["cat|Animals"].Translation)
	// "bread,," has no translation and is read as a topic header
	_, ok := store.words["dog|bread"]
	assert.False(t, ok)
}

func TestImportStoreErrorsAreReported(t *testing.T) {
	path := writeXLSX(t, [][]string{{"w", "t"}, {"apple", "yabloko"}})
	store := newMemWords()
	store.err = errors.New("db down")
	config := DefaultImportConfig()
	config.FilePath = path

	result, err := NewImporter(store).ImportWords(context.Background(), config)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "db down")
}

func TestImportMissingFile(t *testing.T) {
	config := DefaultImportConfig()
	config.FilePath = filepath.Join(t.TempDir(), "absent.xlsx")
	_, err := NewImporter(newMemWords()).ImportWords(context.Background(), config)
	assert.Error(t, err)
}

func TestColumnToIndex(t *testing.T) {
	assert.Equal(t, 0, columnToIndex("A"))
	assert.Equal(t, 3, columnToIndex("d"))
	assert.Equal(t, 26, columnToIndex("AA"))
}
