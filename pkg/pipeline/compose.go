package pipeline

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/memeforge/pkg/editor"
	"github.com/matzehuels/memeforge/pkg/errors"
	"github.com/matzehuels/memeforge/pkg/geometry"
	mfio "github.com/matzehuels/memeforge/pkg/io"
	"github.com/matzehuels/memeforge/pkg/layout"
	"github.com/matzehuels/memeforge/pkg/scene"
)

// ComposeOptions describes a new scene.
type ComposeOptions struct {
	// Images are the image sources, in paint order.
	Images []string

	// Texts are the captions. The first is pinned to the top, the last
	// (when there are two or more) to the bottom, the rest to the middle.
	Texts []string

	Canvas  geometry.Size
	Decoder editor.Decoder

	// Arrange runs the layout engine once every image is added.
	Arrange bool
	Layout  layout.Options

	Logger *log.Logger
}

// Compose builds a scene document by replaying the editor operations a
// user would perform: add each image, add each caption, pin the captions,
// arrange. Element ids are sequential ("img_1", "txt_1", ...).
func Compose(ctx context.Context, opts ComposeOptions) (mfio.Document, error) {
	if opts.Decoder == nil && len(opts.Images) > 0 {
		return mfio.Document{}, errors.New(errors.ErrCodeInternal, "no image decoder configured")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ed, err := editor.New(nil, opts.Canvas,
		editor.WithDecoder(opts.Decoder),
		editor.WithDebounce(0),
		editor.WithLayout(opts.Layout),
		editor.WithLogger(logger),
		editor.WithIDs(scene.Sequential(scene.ImagePrefix), scene.Sequential(scene.TextPrefix)),
	)
	if err != nil {
		return mfio.Document{}, err
	}
	defer ed.Close()

	for _, src := range opts.Images {
		if _, err := ed.AddImage(ctx, src); err != nil {
			return mfio.Document{}, err
		}
	}
	for i, content := range opts.Texts {
		id, err := ed.AddText(content)
		if err != nil {
			return mfio.Document{}, err
		}
		if err := ed.PositionText(id, captionAnchor(i, len(opts.Texts))); err != nil {
			return mfio.Document{}, err
		}
	}

	doc := mfio.Document{Version: mfio.Version, Canvas: opts.Canvas}
	if opts.Arrange && len(opts.Images) > 0 {
		res, err := ed.Arrange(ctx)
		if err != nil {
			return mfio.Document{}, err
		}
		doc.Seed = res.Seed
	}
	ed.Deselect()
	doc.Scene = ed.Scene()
	logger.Debug("composed scene", "images", len(doc.Images), "texts", len(doc.Texts), "history", ed.History().Len())
	return doc, nil
}

func captionAnchor(i, n int) layout.Anchor {
	switch {
	case i == 0:
		return layout.AnchorTop
	case i == n-1:
		return layout.AnchorBottom
	default:
		return layout.AnchorMiddle
	}
}
