package errors

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// check runs one validator call and compares its code. An empty want means
// the call must succeed.
func check(t *testing.T, err error, want Code) {
	t.Helper()
	if want == "" {
		assert.NoError(t, err)
		return
	}
	assert.Equal(t, want, GetCode(err), "error: %v", err)
}

func TestValidateShape(t *testing.T) {
	check(t, ValidateShape([]int{64, 64, 32}), "")
	check(t, ValidateShape([]int{9, 9}), "")
	check(t, ValidateShape(nil), ErrCodeInvalidSampleShape)
	check(t, ValidateShape([]int{5, 0, 5}), ErrCodeInvalidSampleShape)
	check(t, ValidateShape([]int{-3, 4}), ErrCodeInvalidSampleShape)
}

func TestValidateWindow(t *testing.T) {
	tests := map[string]struct {
		shape, sub []int
		want       Code
	}{
		"centred plane":   {[]int{5, 5}, []int{3, 3}, ""},
		"whole volume":    {[]int{4, 4, 4}, []int{4, 4, 4}, ""},
		"rank mismatch":   {[]int{5}, []int{3, 3}, ErrCodeInvalidSampleShape},
		"bad shape":       {[]int{-1, -1, -1}, []int{3, 3, 3}, ErrCodeInvalidSampleShape},
		"zero window":     {[]int{5, 5}, []int{0, 3}, ErrCodeInvalidSampleSize},
		"window too wide": {[]int{5, 5}, []int{6, 3}, ErrCodeInvalidSampleSize},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			check(t, ValidateWindow(tt.shape, tt.sub), tt.want)
		})
	}
}

func TestValidateRadius(t *testing.T) {
	for _, r := range []float64{0, 0.5, 5} {
		check(t, ValidateRadius(r), "")
	}
	for _, r := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		check(t, ValidateRadius(r), ErrCodeInvalidSampleSize)
	}
}

func TestValidatePath(t *testing.T) {
	check(t, ValidatePath("out/neuron.mask"), "")
	check(t, ValidatePath("/tmp/slices"), "")
	for _, bad := range []string{"", strings.Repeat("a", 501), "mask\x00.bin", "mask\x1b.bin"} {
		check(t, ValidatePath(bad), ErrCodeInvalidPath)
	}
}

func TestValidateURL(t *testing.T) {
	check(t, ValidateURL("redis://localhost:6379/0", "redis", "rediss"), "")
	check(t, ValidateURL("mongodb+srv://cluster.example", "mongodb", "mongodb+srv"), "")
	check(t, ValidateURL("http://localhost", "redis"), ErrCodeInvalidInput)
	check(t, ValidateURL("", "redis"), ErrCodeInvalidInput)
}
