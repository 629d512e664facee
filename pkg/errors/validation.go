package errors

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// MinDimension is the smallest intrinsic side length, in pixels, an image
// may have. Anything smaller would divide by (near) zero in aspect ratio
// and scale computations.
const MinDimension = 1.0

// ValidateDimensions checks that width and height are finite and at least
// [MinDimension]. The what argument names the element in the message.
func ValidateDimensions(what string, width, height float64) error {
	if math.IsNaN(width) || math.IsInf(width, 0) || math.IsNaN(height) || math.IsInf(height, 0) {
		return New(ErrCodeInvalidImage, "%s has non-finite dimensions %vx%v", what, width, height)
	}
	if width < MinDimension || height < MinDimension {
		return New(ErrCodeInvalidImage, "%s has zero area (%gx%g)", what, width, height)
	}
	return nil
}

// ValidateCanvas checks that a canvas size is finite and positive.
func ValidateCanvas(width, height float64) error {
	if math.IsNaN(width) || math.IsInf(width, 0) || math.IsNaN(height) || math.IsInf(height, 0) {
		return New(ErrCodeInvalidCanvas, "canvas size must be finite, got %vx%v", width, height)
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidCanvas, "canvas size must be positive, got %gx%g", width, height)
	}
	return nil
}

// ValidatePath validates a file path given on the command line or in a
// scene document.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateAspectRatio validates a "W:H" canvas aspect preset such as "16:9"
// and returns its two components.
func ValidateAspectRatio(ratio string) (w, h float64, err error) {
	parts := strings.Split(strings.TrimSpace(ratio), ":")
	if len(parts) != 2 {
		return 0, 0, New(ErrCodeInvalidAspect, "aspect ratio %q must look like W:H", ratio)
	}
	w, errW := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	h, errH := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errW != nil || errH != nil {
		return 0, 0, New(ErrCodeInvalidAspect, "aspect ratio %q must be numeric", ratio)
	}
	if w <= 0 || h <= 0 || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return 0, 0, New(ErrCodeInvalidAspect, "aspect ratio %q must be positive", ratio)
	}
	return w, h, nil
}

// hexColorRegex matches #rgb and #rrggbb colors.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor validates a CSS-style hex color.
func ValidateColor(c string) error {
	if !hexColorRegex.MatchString(c) {
		return New(ErrCodeInvalidColor, "invalid color %q (want #rgb or #rrggbb)", c)
	}
	return nil
}
