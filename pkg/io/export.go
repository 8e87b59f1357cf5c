package io

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/observability"
)

// MarshalDocument encodes doc as indented JSON with a trailing newline.
// Empty collections encode as [] so the output always re-imports.
func MarshalDocument(doc diagram.Document) ([]byte, error) {
	c := doc.Content()
	doc.Nodes, doc.Edges, doc.Lanes = c.Nodes, c.Edges, c.Lanes

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDocument encodes doc as JSON and writes it to w.
// The output can be re-imported with [ReadDocument].
func WriteDocument(doc diagram.Document, w io.Writer) error {
	data, err := MarshalDocument(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ExportJSON writes doc to path, replacing the file atomically. Parent
// directories are created as needed. The outcome is reported to
// [observability.IO].
func ExportJSON(ctx context.Context, doc diagram.Document, path string) (err error) {
	var data []byte
	defer func() { observability.IO().OnExport(ctx, path, len(data), err) }()

	if data, err = MarshalDocument(doc); err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = os.Chmod(tmp, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
