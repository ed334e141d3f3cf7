package ui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nconklindev/xl2json/internal/converter"
	"github.com/nconklindev/xl2json/internal/types"
)

func touch(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("stub"), 0o644))
	return path
}

func paste(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text), Paste: true}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func TestInitialModelDefaults(t *testing.T) {
	m := InitialModel(Defaults{})
	assert.Equal(t, stateFilePicker, m.state)
	assert.Equal(t, converter.DefaultRange, m.defaults.Range)
	assert.NotNil(t, m.defaults.Logger)
}

func TestDropSelectsWorkbook(t *testing.T) {
	path := touch(t, "Quarter Plan.xlsx")

	m := update(t, InitialModel(Defaults{Range: "used"}), paste("'"+path+"'"))

	assert.Equal(t, stateOptions, m.state)
	assert.Equal(t, path, m.selectedFile)
	assert.Equal(t, "used", m.inputs[fieldRange].Value())
	assert.Equal(t, filepath.Dir(path), m.inputs[fieldOutDir].Value())
	assert.Equal(t, "Quarter Plan", m.inputs[fieldPrefix].Value())
	assert.Equal(t, fieldRange, m.focus)
}

func TestDropRejectsOtherFiles(t *testing.T) {
	path := touch(t, "data.csv")

	m := update(t, InitialModel(Defaults{}), paste(path))

	assert.Equal(t, stateFilePicker, m.state)
	assert.Equal(t, "Drop an .xlsx file.", m.notice)
	assert.Contains(t, m.View(), "Drop an .xlsx file.")
}

func TestDropMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.xlsx")

	m := update(t, InitialModel(Defaults{}), paste(path))

	assert.Equal(t, stateFilePicker, m.state)
	assert.Contains(t, m.notice, "File not found")
}

func TestConfiguredOutDirWins(t *testing.T) {
	path := touch(t, "book.xlsx")
	outDir := t.TempDir()

	m := InitialModel(Defaults{OutDir: outDir}).WithFile(path)
	assert.Equal(t, stateOptions, m.state)
	assert.Equal(t, outDir, m.inputs[fieldOutDir].Value())
}

func TestOptionsFocusCycles(t *testing.T) {
	m := InitialModel(Defaults{}).WithFile(touch(t, "book.xlsx"))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldOutDir, m.focus)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldPrefix, m.focus)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldRange, m.focus)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, fieldPrefix, m.focus)
}

func TestInvalidRangeKeepsForm(t *testing.T) {
	m := InitialModel(Defaults{}).WithFile(touch(t, "book.xlsx"))
	m.inputs[fieldRange].SetValue("B9:A1")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, stateOptions, m.state)
	require.Error(t, m.formErr)
	assert.ErrorIs(t, m.formErr, converter.ErrInvalidRange)
	assert.Contains(t, m.View(), "inverted")
}

func TestEscapeReturnsToPicker(t *testing.T) {
	m := InitialModel(Defaults{}).WithFile(touch(t, "book.xlsx"))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, stateFilePicker, m.state)
}

func TestConversionCompleteShowsSummary(t *testing.T) {
	dir := t.TempDir()
	m := InitialModel(Defaults{})
	m.state = stateProcessing

	m = update(t, m, conversionCompleteMsg{result: &types.ConversionResult{
		InputFile:           filepath.Join(dir, "book.xlsx"),
		StructureFile:       filepath.Join(dir, "book_structure.json"),
		ValuesFile:          filepath.Join(dir, "book_values.json"),
		Range:               "A1:DN500",
		SheetCount:          2,
		FormulaCells:        5,
		MissingCachedValues: 1,
	}})

	assert.Equal(t, stateComplete, m.state)
	view := m.View()
	assert.Contains(t, view, "Export Complete")
	assert.Contains(t, view, "recalculate")
}

func TestConversionErrorShown(t *testing.T) {
	m := InitialModel(Defaults{})
	m.state = stateProcessing

	m = update(t, m, conversionCompleteMsg{err: converter.ErrFileNotFound})

	assert.Equal(t, stateError, m.state)
	assert.Contains(t, m.View(), "file not found")
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "short", truncatePath("short", 10))
	assert.Equal(t, "...efghij", truncatePath("abcdefghij", 9))
}

func TestProgressNeverMovesBackwards(t *testing.T) {
	m := InitialModel(Defaults{})
	m.state = stateProcessing

	m = update(t, m, progressMsg(0.6))
	assert.InDelta(t, 0.6, m.progress.Percent(), 1e-9)

	m = update(t, m, progressMsg(0.3))
	assert.InDelta(t, 0.6, m.progressMax, 1e-9)
	assert.InDelta(t, 0.6, m.progress.Percent(), 1e-9)

	m = update(t, m, progressMsg(0.9))
	assert.InDelta(t, 0.9, m.progress.Percent(), 1e-9)
}
