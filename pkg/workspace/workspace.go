// Package workspace stores named diagram documents as JSON files in a
// local directory.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/io"
)

const ext = ".json"

// Entry describes one stored document.
type Entry struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Workspace is a directory of named documents. It is safe for concurrent
// use within one process.
type Workspace struct {
	mu  sync.RWMutex
	dir string
}

// DefaultDir returns $XDG_DATA_HOME/flowlane/diagrams, falling back to
// ~/.local/share/flowlane/diagrams.
func DefaultDir() (string, error) {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "flowlane", "diagrams"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "flowlane", "diagrams"), nil
}

// Open returns the workspace rooted at dir, creating it if needed.
// An empty dir selects [DefaultDir].
func Open(dir string) (*Workspace, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// Path returns the file backing name. It does not check that it exists.
func (w *Workspace) Path(name string) (string, error) {
	if err := errors.ValidateDocumentName(name); err != nil {
		return "", err
	}
	return filepath.Join(w.dir, name+ext), nil
}

// Exists reports whether name is stored.
func (w *Workspace) Exists(name string) bool {
	path, err := w.Path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Get loads document name. A missing document is an
// [errors.ErrCodeNotFound] error.
func (w *Workspace) Get(ctx context.Context, name string) (*diagram.Document, error) {
	path, err := w.Path(name)
	if err != nil {
		return nil, err
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	doc, err := io.ImportJSON(ctx, path)
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return nil, errors.New(errors.ErrCodeNotFound, "document %q not found", name)
	}
	return doc, err
}

// Put stores doc under name, replacing any previous version.
func (w *Workspace) Put(ctx context.Context, name string, doc diagram.Document) error {
	path, err := w.Path(name)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return io.ExportJSON(ctx, doc, path)
}

// Delete removes document name. A missing document is an
// [errors.ErrCodeNotFound] error.
func (w *Workspace) Delete(ctx context.Context, name string) error {
	path, err := w.Path(name)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodeNotFound, "document %q not found", name)
		}
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// List returns the stored documents sorted by name.
func (w *Workspace) List(ctx context.Context) ([]Entry, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	dirEntries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("read workspace dir: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if de.IsDir() || filepath.Ext(de.Name()) != ext {
			continue
		}
		name := strings.TrimSuffix(de.Name(), ext)
		if errors.ValidateDocumentName(name) != nil {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:     name,
			Path:     filepath.Join(w.dir, de.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return entries, nil
}
