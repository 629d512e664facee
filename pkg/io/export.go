package io

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/memeforge/pkg/errors"
)

// WriteJSON encodes doc as indented JSON and writes it to w. The output
// can be re-imported with [ReadJSON].
func WriteJSON(doc Document, w io.Writer) error {
	doc.Version = Version
	doc.Scene = doc.Scene.Clone()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode scene document")
	}
	return nil
}

// ExportJSON writes doc to a JSON file at path. The file is written to a
// temporary sibling first and renamed into place, so a failed write never
// truncates an existing document.
func ExportJSON(doc Document, path string) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".memeforge-*.json")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	defer os.Remove(tmp.Name())

	if err := WriteJSON(doc, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
