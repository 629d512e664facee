package layout

import "math"

// Tuning constants of the arrangement. They are exported so callers and
// tests can reason about the same numbers the engine uses.
const (
	// FillRatio is the share of the canvas area the images aim to cover.
	FillRatio = 0.9

	// FitWeight and IdealWeight blend the rectangle-fitting scale with the
	// equal-area scale. The ideal share dominates so images trend toward
	// the same on-canvas area regardless of their resolution.
	FitWeight   = 0.3
	IdealWeight = 0.7

	// MinScaleRatio floors every scale at this fraction of the base scale.
	MinScaleRatio = 0.7

	// DefaultMaxPasses bounds the collision resolution passes per round.
	DefaultMaxPasses = 5

	// DefaultMaxFallbacks bounds the shrink-and-center rounds.
	DefaultMaxFallbacks = 10

	// FallbackShrink is applied to every scale factor per fallback round.
	FallbackShrink = 0.95

	// PushFactor overshoots a collision push so the pair actually clears.
	PushFactor = 1.1
)

// Options configures [Arrange]. The zero value reproduces the default
// behavior with a freshly drawn seed.
type Options struct {
	// Padding is the margin kept around the canvas and between images.
	// Zero derives it from the image count, see [PaddingFor].
	Padding float64

	// Seed drives the shuffle that varies the arrangement between calls.
	// Zero draws a random seed; the one used is reported in [Result.Seed].
	Seed uint64

	// MaxUpscale caps the final scale factor of every image. Zero means
	// unlimited, so small images are enlarged toward the equal-area target.
	MaxUpscale float64

	// MaxPasses bounds collision resolution passes (default 5).
	MaxPasses int

	// MaxFallbacks bounds the shrink-and-center rounds that run when the
	// passes do not clear every overlap (default 10). Negative disables the
	// fallback entirely.
	MaxFallbacks int

	// SkipTexts leaves text positions untouched.
	SkipTexts bool
}

// PaddingFor returns the margin used for n images: 15px shrinking by half
// a pixel per image, never below 5px.
func PaddingFor(n int) float64 {
	return math.Max(15-float64(n)/2, 5)
}

func (o Options) withDefaults(n int) Options {
	if o.Padding <= 0 {
		o.Padding = PaddingFor(n)
	}
	if o.MaxPasses <= 0 {
		o.MaxPasses = DefaultMaxPasses
	}
	switch {
	case o.MaxFallbacks == 0:
		o.MaxFallbacks = DefaultMaxFallbacks
	case o.MaxFallbacks < 0:
		o.MaxFallbacks = 0
	}
	if o.MaxUpscale < 0 {
		o.MaxUpscale = 0
	}
	return o
}
