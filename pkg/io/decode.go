package io

import (
	"context"
	stderrors "errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"

	// Registered codecs.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/memeforge/pkg/editor"
	"github.com/matzehuels/memeforge/pkg/errors"
)

// ImageDecoder resolves image sources on the local filesystem. Relative
// sources are resolved against Root when it is set.
type ImageDecoder struct {
	Root string
}

// Decode reads the header of the image at src and reports its pixel
// dimensions and codec. The pixel data is not decoded.
func (d ImageDecoder) Decode(ctx context.Context, src string) (editor.DecodedImage, error) {
	f, err := d.open(ctx, src)
	if err != nil {
		return editor.DecodedImage{}, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return editor.DecodedImage{}, errors.Wrap(errors.ErrCodeDecodeFailed, err, "decode %s", src)
	}
	return editor.DecodedImage{
		Source: src,
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
	}, nil
}

// Load decodes the full bitmap of the image at src.
func (d ImageDecoder) Load(ctx context.Context, src string) (image.Image, error) {
	f, err := d.open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailed, err, "decode %s", src)
	}
	return img, nil
}

// Fingerprint identifies the current contents of src by size and
// modification time, cheap enough to compute on every cache lookup.
func (d ImageDecoder) Fingerprint(src string) (string, error) {
	info, err := os.Stat(d.Resolve(src))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "stat %s", src)
		}
		return "", errors.Wrap(errors.ErrCodeInternal, err, "stat %s", src)
	}
	return fmt.Sprintf("%d-%d", info.Size(), info.ModTime().UnixNano()), nil
}

// Resolve returns the filesystem path for src.
func (d ImageDecoder) Resolve(src string) string {
	if d.Root == "" || filepath.IsAbs(src) {
		return src
	}
	return filepath.Join(d.Root, src)
}

func (d ImageDecoder) open(ctx context.Context, src string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.ValidatePath(src); err != nil {
		return nil, err
	}
	path := d.Resolve(src)
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeDecodeFailed, err, "open %s", path)
	}
	return f, nil
}
