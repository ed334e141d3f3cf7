package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nconklindev/xl2json/internal/types"

	"github.com/gofrs/flock"
	json "github.com/goccy/go-json"
)

const (
	structureSuffix = "_structure.json"
	valuesSuffix    = "_values.json"
	lockRetryDelay  = 100 * time.Millisecond
)

// OutputPaths returns the two file names an export with prefix writes into outDir.
func OutputPaths(outDir, prefix string) (string, string) {
	return filepath.Join(outDir, prefix+structureSuffix), filepath.Join(outDir, prefix+valuesSuffix)
}

// DefaultPrefix is the input's base name without its extension.
func DefaultPrefix(inputFile string) string {
	base := filepath.Base(inputFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// WriteDocuments writes both export documents into outDir. Concurrent
// exports with the same prefix are serialized through a lock file that stays
// in place between runs. Both documents are encoded to temp files before
// either is renamed, so a failed run leaves neither output behind.
func WriteDocuments(ctx context.Context, outDir, prefix string, structure *types.StructureExport, values *types.ValuesExport) (string, string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output directory %q: %w", outDir, err)
	}

	lockPath := filepath.Join(outDir, "."+prefix+".lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", "", fmt.Errorf("lock output: %w", err)
	}
	if !locked {
		return "", "", fmt.Errorf("lock output: %s is held by another export", lockPath)
	}
	defer func() { _ = lock.Unlock() }()

	structurePath, valuesPath := OutputPaths(outDir, prefix)

	structureTmp, err := writeTempJSON(structurePath, structure)
	if err != nil {
		return "", "", fmt.Errorf("write structure json: %w", err)
	}
	valuesTmp, err := writeTempJSON(valuesPath, values)
	if err != nil {
		_ = os.Remove(structureTmp)
		return "", "", fmt.Errorf("write values json: %w", err)
	}

	if err := os.Rename(structureTmp, structurePath); err != nil {
		_ = os.Remove(structureTmp)
		_ = os.Remove(valuesTmp)
		return "", "", fmt.Errorf("write structure json: %w", err)
	}
	if err := os.Rename(valuesTmp, valuesPath); err != nil {
		_ = os.Remove(valuesTmp)
		_ = os.Remove(structurePath)
		return "", "", fmt.Errorf("write values json: %w", err)
	}

	return structurePath, valuesPath, nil
}

// writeTempJSON encodes v into a temp file beside path and returns its name.
func writeTempJSON(path string, v any) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}
	return tmpName, nil
}
