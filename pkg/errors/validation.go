package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateShape checks a volume or window shape used by the voxel and
// neighborhood helpers.
//
// Validation rules:
//   - Rank must be at least 1
//   - Every dimension must be strictly positive
func ValidateShape(shape []int) error {
	if len(shape) == 0 {
		return New(ErrCodeInvalidSampleShape, "shape must have at least one dimension")
	}
	for i, d := range shape {
		if d <= 0 {
			return New(ErrCodeInvalidSampleShape, "shape dimension %d must be positive, got %d", i, d)
		}
	}
	return nil
}

// ValidateWindow checks that sub describes a block that fits inside shape.
// The shape itself is checked with [ValidateShape] first.
func ValidateWindow(shape, sub []int) error {
	if err := ValidateShape(shape); err != nil {
		return err
	}
	if len(sub) != len(shape) {
		return New(ErrCodeInvalidSampleShape, "window rank %d does not match shape rank %d", len(sub), len(shape))
	}
	for i, d := range sub {
		if d <= 0 {
			return New(ErrCodeInvalidSampleSize, "window dimension %d must be positive, got %d", i, d)
		}
		if d > shape[i] {
			return New(ErrCodeInvalidSampleSize, "window dimension %d (%d) exceeds shape (%d)", i, d, shape[i])
		}
	}
	return nil
}

// ValidateRadius checks a tube or sphere radius. Zero is allowed and renders
// only the discretized line itself.
func ValidateRadius(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return New(ErrCodeInvalidSampleSize, "radius must be finite, got %v", r)
	}
	if r < 0 {
		return New(ErrCodeInvalidSampleSize, "radius must not be negative, got %v", r)
	}
	return nil
}

// ValidatePath validates an output path supplied by a user.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
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

// ValidateURL validates a cache backend URL for the expected scheme.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of the schemes %v", schemes)
}
