package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/memeforge/pkg/errors"
	mfio "github.com/matzehuels/memeforge/pkg/io"
	"github.com/matzehuels/memeforge/pkg/layout"
	"github.com/matzehuels/memeforge/pkg/observability"
)

// =============================================================================
// Arrangement
// =============================================================================

// Arrange runs the layout engine on doc and returns an arranged copy along
// with the raw result. The seed that was used is recorded in the document.
// A document without images is rejected with EMPTY_ARRANGEMENT.
func Arrange(ctx context.Context, doc mfio.Document, opts Options) (mfio.Document, layout.Result, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return mfio.Document{}, layout.Result{}, err
	}
	if len(doc.Images) == 0 {
		return mfio.Document{}, layout.Result{}, errors.New(errors.ErrCodeEmptyArrangement, "no images to arrange")
	}
	if err := ctx.Err(); err != nil {
		return mfio.Document{}, layout.Result{}, err
	}

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, len(doc.Images))
	res, err := layout.Arrange(doc.Images, doc.Texts, doc.Canvas, opts.LayoutOptions())
	observability.Pipeline().OnLayoutComplete(ctx, len(doc.Images), res.Fallbacks, time.Since(start), err)
	if err != nil {
		return mfio.Document{}, layout.Result{}, err
	}
	return applyLayout(doc, res), res, nil
}

// applyLayout writes res into a copy of doc.
func applyLayout(doc mfio.Document, res layout.Result) mfio.Document {
	out := doc
	out.Scene = doc.Scene.Clone()
	out.Images = res.Apply(doc.Images)
	if res.Texts != nil {
		out.Texts = res.ApplyTexts(doc.Texts)
	}
	out.Seed = res.Seed
	return out
}
