package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nconklindev/xl2json/internal/config"
	"github.com/nconklindev/xl2json/internal/logging"
)

func TestNewJSONToConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := logging.New(logging.Options{Level: "info", Format: "json", Console: &buf})
	require.NoError(t, err)
	defer closeFn()

	logger.Debug("hidden")
	logger.Info("export finished", "sheets", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"export finished"`)
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"sheets":3`)
	assert.Contains(t, out, `"ts":`)
}

func TestNewConsoleWritesFile(t *testing.T) {
	dir := t.TempDir()
	logger, closeFn, err := logging.New(logging.Options{Level: "debug", Format: "console", Dir: dir})
	require.NoError(t, err)

	logger.Debug("sheet scanned", "sheet", "Data")
	require.NoError(t, closeFn())

	content, err := os.ReadFile(filepath.Join(dir, logging.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(content), "msg=\"sheet scanned\"")
	assert.Contains(t, string(content), "sheet=Data")
	assert.True(t, strings.HasPrefix(string(content), "time="))
}

func TestNewWithoutOutputsDiscards(t *testing.T) {
	logger, closeFn, err := logging.New(logging.Options{Level: "debug"})
	require.NoError(t, err)
	require.NoError(t, closeFn())
	assert.NotNil(t, logger)
	logger.Info("nowhere")
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, _, err := logging.New(logging.Options{Format: "xml", Console: &bytes.Buffer{}})
	require.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Dir = t.TempDir()

	logger, closeFn, err := logging.NewFromConfig(&cfg, nil)
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, closeFn())

	assert.FileExists(t, filepath.Join(cfg.Logging.Dir, logging.FileName))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, logging.IsTerminal(&bytes.Buffer{}))
	assert.False(t, logging.IsTerminal(nil))
}

func TestConsoleLevelRaisesOnlyConsole(t *testing.T) {
	var console bytes.Buffer
	dir := t.TempDir()
	logger, closeFn, err := logging.New(logging.Options{
		Level:        "info",
		Format:       "console",
		Dir:          dir,
		Console:      &console,
		ConsoleLevel: "warn",
	})
	require.NoError(t, err)

	logger.Info("export started", "file", "book.xlsx")
	logger.Warn("sheet skipped", "sheet", "Chart1")
	require.NoError(t, closeFn())

	assert.NotContains(t, console.String(), "export started")
	assert.Contains(t, console.String(), "sheet skipped")

	content, err := os.ReadFile(filepath.Join(dir, logging.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(content), "export started")
	assert.Contains(t, string(content), "sheet skipped")
}

func TestConsoleLevelNeverLowersLevel(t *testing.T) {
	var console bytes.Buffer
	logger, closeFn, err := logging.New(logging.Options{Level: "error", Console: &console, ConsoleLevel: "warn"})
	require.NoError(t, err)
	defer closeFn()

	logger.Warn("quiet")
	logger.Error("loud")

	assert.NotContains(t, console.String(), "quiet")
	assert.Contains(t, console.String(), "loud")
}
