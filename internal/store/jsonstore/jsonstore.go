package jsonstore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/Makepad-fr/verbalist/internal/model"
)

// JSON export of lists. Single file, human-readable, portable.
// Nothing reads these files back; the store stays in memory.

const filePrefix = "verbalist-"

// DefaultPath names an export file in the working directory.
func DefaultPath(now time.Time) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	return filepath.Join(wd, filePrefix+now.UTC().Format("20060102-150405")+".json"), nil
}

// Encode writes lists as an indented JSON array.
func Encode(w io.Writer, lists []model.ToDoList) error {
	if lists == nil {
		lists = []model.ToDoList{}
	}
	b, err := json.MarshalIndent(lists, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Export writes lists to path, creating parent directories.
func Export(path string, lists []model.ToDoList) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	if err := Encode(f, lists); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}
