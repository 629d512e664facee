package io

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"io/fs"
	"os"

	"github.com/matzehuels/memeforge/pkg/errors"
	"github.com/matzehuels/memeforge/pkg/geometry"
	"github.com/matzehuels/memeforge/pkg/scene"
)

// Version is the scene document format version written by [WriteJSON].
const Version = 1

// Document is a scene together with the canvas it is laid out on.
type Document struct {
	Version int           `json:"version"`
	Canvas  geometry.Size `json:"canvas"`
	scene.Scene

	// Seed is the layout seed of the last arrangement, if any.
	Seed uint64 `json:"seed,omitempty"`
}

// ReadJSON decodes a scene document from r.
//
// ReadJSON returns an error if:
//   - The JSON is malformed (INVALID_FORMAT)
//   - The version is newer than [Version] (INVALID_FORMAT)
//   - The canvas is not a finite positive size (INVALID_CANVAS)
//   - An element breaks the scene invariants (INVALID_INPUT, INVALID_IMAGE)
//
// A document without a version is read as version 1. ReadJSON does not
// close r.
func ReadJSON(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode scene document")
	}

	if doc.Version == 0 {
		doc.Version = Version
	}
	if doc.Version > Version {
		return Document{}, errors.New(errors.ErrCodeInvalidFormat, "scene document version %d is newer than %d", doc.Version, Version)
	}
	if err := errors.ValidateCanvas(doc.Canvas.Width, doc.Canvas.Height); err != nil {
		return Document{}, err
	}
	if err := doc.Scene.Validate(); err != nil {
		return Document{}, err
	}
	doc.Scene = doc.Scene.Clone()
	return doc, nil
}

// ImportJSON reads the scene document at path.
//
// A missing file is reported as FILE_NOT_FOUND; everything else returns
// the same errors as [ReadJSON].
func ImportJSON(path string) (Document, error) {
	if err := errors.ValidatePath(path); err != nil {
		return Document{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Document{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return Document{}, errors.Wrap(errors.ErrCodeInternal, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
