// Package pipeline runs trace fitting and tube rendering behind one cache.
//
// A run has two stages. Fit validates the trace, splits it into branches and
// fits one B-spline per branch. Tube renders each branch's vertex sequence
// into a mask and unions the masks. Both stages can be called on their own;
// the CLI and the HTTP API go through the same [Runner], so keys, logs and
// metrics agree between them.
//
//	runner := pipeline.NewRunner(store, nil, logger)
//	res, err := runner.Execute(ctx, g, pipeline.Options{
//	    Shape:  [3]int{256, 256, 256},
//	    Radius: 3,
//	})
//
//	tree, err := runner.Fit(ctx, g, opts)
//	mask, err := runner.Tube(ctx, vertices, opts)
package pipeline

import (
	stderrors "errors"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/tracetube/pkg/cache"
	"github.com/matzehuels/tracetube/pkg/errors"
	"github.com/matzehuels/tracetube/pkg/spline"
	"github.com/matzehuels/tracetube/pkg/trace"
	"github.com/matzehuels/tracetube/pkg/trace/branch"
	"github.com/matzehuels/tracetube/pkg/tube"
	"github.com/matzehuels/tracetube/pkg/voxel"
)

// Defaults shared by the CLI flags, the config file and the API.
const (
	DefaultBranchMode  = string(branch.ModeBranchPoints)
	DefaultRenderMode  = string(tube.ModeEDT)
	DefaultCompression = "zstd"

	// MaxVoxels bounds the volume of a single render.
	MaxVoxels = 1 << 30
)

// Options configures both stages. It is also the JSON body of the fit and
// tube API requests.
type Options struct {
	Mode          string `json:"mode,omitempty"`
	Root          string `json:"root,omitempty"`
	Degree        int    `json:"degree,omitempty" validate:"gte=0,lte=5"`
	ControlPoints int    `json:"control_points,omitempty" validate:"gte=0"`

	Shape       [3]int  `json:"shape"`
	Radius      float64 `json:"radius"`
	Render      string  `json:"render,omitempty"`
	Workers     int     `json:"workers,omitempty" validate:"gte=0,lte=256"`
	Compression string  `json:"compression,omitempty"`

	// Samples, when positive, renders each branch through that many points
	// sampled from its fitted curve instead of through its traced points.
	Samples int `json:"samples,omitempty" validate:"gte=0"`

	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-" validate:"-"`

	validated bool
}

// Result is everything Execute produced.
type Result struct {
	RunID     string // also tagged on log lines and spans
	Graph     *trace.Graph
	TraceHash string // SHA-256 of the canonical trace encoding
	Tree      *spline.Tree
	Mask      *voxel.Mask // union of the branch tubes
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats are the sizes and stage timings of a run.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	BranchCount int
	Voxels      int
	FitTime     time.Duration
	RenderTime  time.Duration
}

// CacheInfo reports which stages were served from the cache. RenderHit is
// set only when every branch mask was a hit.
type CacheInfo struct {
	FitHit    bool
	RenderHit bool
}

// ValidateAndSetDefaults runs ValidateForFit and ValidateForRender. Calling
// it again after success does nothing.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFit(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFit checks fit fields and applies their defaults.
func (o *Options) ValidateForFit() error {
	if o.Mode == "" {
		o.Mode = DefaultBranchMode
	}
	if _, err := branch.ParseMode(o.Mode); err != nil {
		return err
	}
	if err := checkFields(o, "Degree", "ControlPoints", "Samples"); err != nil {
		return err
	}
	o.setLogger()
	return nil
}

// ValidateForRender checks tube fields and applies their defaults.
func (o *Options) ValidateForRender() error {
	if o.Render == "" {
		o.Render = DefaultRenderMode
	}
	if _, err := tube.ParseMode(o.Render); err != nil {
		return err
	}
	if o.Compression == "" {
		o.Compression = DefaultCompression
	}
	if _, err := voxel.ParseCompression(o.Compression); err != nil {
		return err
	}
	if err := errors.ValidateShape(o.Shape[:]); err != nil {
		return err
	}
	if err := errors.ValidateRadius(o.Radius); err != nil {
		return err
	}
	if !withinVoxels(o.Shape, 0) {
		return errors.New(errors.ErrCodeInvalidSampleShape, "shape %v exceeds %d voxels", o.Shape, MaxVoxels)
	}
	if o.Radius > MaxVoxels || !withinVoxels(o.Shape, voxel.Reach(o.Radius)+1) {
		return errors.New(errors.ErrCodeInvalidSampleSize, "radius %v is too large for shape %v", o.Radius, o.Shape)
	}
	if err := checkFields(o, "Workers"); err != nil {
		return err
	}
	o.setLogger()
	return nil
}

// withinVoxels reports whether shape grown by pad on every side stays under
// MaxVoxels. Renderers touch at most that box for one segment.
func withinVoxels(shape [3]int, pad int) bool {
	if pad > MaxVoxels {
		return false
	}
	v := 1
	for _, d := range shape {
		d += 2 * pad
		if d > MaxVoxels/v {
			return false
		}
		v *= d
	}
	return true
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkFields applies the validate tags of the named fields. The first
// violation becomes an INVALID_INPUT error naming the JSON field.
func checkFields(o *Options, fields ...string) error {
	err := validate.StructPartial(o, fields...)
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err
	}
	fe := verrs[0]
	bound := map[string]string{"gte": "at least", "lte": "at most"}[fe.Tag()]
	if bound == "" {
		bound = fe.Tag()
	}
	return errors.New(errors.ErrCodeInvalidInput, "%s must be %s %s, got %v", fe.Field(), bound, fe.Param(), fe.Value())
}

// TreeOptions returns the spline builder options.
func (o *Options) TreeOptions() spline.TreeOptions {
	return spline.TreeOptions{
		Branch: branch.Options{Root: o.Root, Mode: branch.Mode(o.Mode)},
		Fit:    spline.FitOptions{Degree: o.Degree, ControlPoints: o.ControlPoints},
	}
}

// TubeOptions returns the renderer options.
func (o *Options) TubeOptions() tube.Options {
	return tube.Options{Mode: tube.Mode(o.Render), Workers: o.Workers}
}

// TreeKeyOpts returns cache key options for fitting.
func (o *Options) TreeKeyOpts() cache.TreeKeyOpts {
	return cache.TreeKeyOpts{
		Mode:          o.Mode,
		Root:          o.Root,
		Degree:        o.Degree,
		ControlPoints: o.ControlPoints,
	}
}

// MaskKeyOpts returns cache key options for rendering.
func (o *Options) MaskKeyOpts() cache.MaskKeyOpts {
	return cache.MaskKeyOpts{
		Shape:       o.Shape,
		Radius:      o.Radius,
		Mode:        o.Render,
		Compression: o.Compression,
	}
}
