package api

import (
	"net/http"
	"strconv"

	"github.com/matzehuels/tracetube/pkg/buildinfo"
	"github.com/matzehuels/tracetube/pkg/errors"
	"github.com/matzehuels/tracetube/pkg/httputil"
	"github.com/matzehuels/tracetube/pkg/neighborhood"
	"github.com/matzehuels/tracetube/pkg/observability"
	"github.com/matzehuels/tracetube/pkg/pipeline"
	"github.com/matzehuels/tracetube/pkg/trace"
	"github.com/matzehuels/tracetube/pkg/trace/branch"
	"github.com/matzehuels/tracetube/pkg/traceio"
	"github.com/matzehuels/tracetube/pkg/voxel"
)

// MaskContentType is the media type of encoded masks returned by /v1/tube.
const MaskContentType = "application/vnd.tracetube.mask"

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type validateResponse struct {
	Valid bool `json:"valid"`
	Nodes int  `json:"nodes"`
	Edges int  `json:"edges"`
}

type branchResponse struct {
	IDs       []string `json:"ids"`
	Parent    int      `json:"parent"`
	Attach    int      `json:"attach"`
	ArcLength float64  `json:"arc_length"`
}

type branchesResponse struct {
	Root     string           `json:"root"`
	Mode     string           `json:"mode"`
	Branches []branchResponse `json:"branches"`
}

type tubeRequest struct {
	Vertices    [][3]float64 `json:"vertices"`
	Shape       [3]int       `json:"shape"`
	Radius      float64      `json:"radius"`
	Render      string       `json:"render,omitempty"`
	Compression string       `json:"compression,omitempty"`
}

type subsampleRequest struct {
	Data  []float64 `json:"data"`
	Shape []int     `json:"shape"`
	Sub   []int     `json:"sub"`
}

type subsampleResponse struct {
	Data  []float64 `json:"data"`
	Shape []int     `json:"shape"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: buildinfo.Version})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	g, ok := s.readTrace(w, r)
	if !ok {
		return
	}
	if err := g.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, validateResponse{Valid: true, Nodes: g.NodeCount(), Edges: g.EdgeCount()})
}

func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request) {
	g, ok := s.readTrace(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	mode, err := branch.ParseMode(q.Get("mode"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts := branch.Options{Root: q.Get("root"), Mode: mode}

	branches, err := branch.Decompose(g, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	root, err := branch.Root(g, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := branchesResponse{Root: root, Mode: string(mode), Branches: make([]branchResponse, len(branches))}
	for i, b := range branches {
		resp.Branches[i] = branchResponse{IDs: b.IDs, Parent: b.Parent, Attach: b.Attach, ArcLength: b.ArcLength()}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	g, ok := s.readTrace(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	opts := pipeline.Options{
		Mode:    q.Get("mode"),
		Root:    q.Get("root"),
		Refresh: q.Get("refresh") == "true",
	}
	var err error
	if opts.Degree, err = intParam(q.Get("degree")); err != nil {
		s.fail(w, r, err)
		return
	}
	if opts.ControlPoints, err = intParam(q.Get("control_points")); err != nil {
		s.fail(w, r, err)
		return
	}

	tree, hit, err := s.runner.FitWithCacheInfo(r.Context(), g, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("X-Cache", cacheHeader(hit))
	httputil.WriteJSON(w, http.StatusOK, tree)
}

func (s *Server) handleTube(w http.ResponseWriter, r *http.Request) {
	var req tubeRequest
	if err := httputil.DecodeJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	opts := pipeline.Options{
		Shape:       req.Shape,
		Radius:      req.Radius,
		Render:      req.Render,
		Compression: req.Compression,
	}
	if err := opts.ValidateForRender(); err != nil {
		s.fail(w, r, err)
		return
	}

	m, hit, err := s.runner.TubeWithCacheInfo(r.Context(), req.Vertices, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, _ := voxel.ParseCompression(opts.Compression)
	data, err := voxel.Encode(m, c)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", MaskContentType)
	w.Header().Set("X-Cache", cacheHeader(hit))
	w.Header().Set("X-Voxels", strconv.Itoa(m.Count()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleSubsample(w http.ResponseWriter, r *http.Request) {
	var req subsampleRequest
	if err := httputil.DecodeJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := neighborhood.Subsample(req.Data, req.Shape, req.Sub)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, subsampleResponse{Data: out, Shape: req.Sub})
}

// readTrace decodes a trace document body, writing the error response on
// failure.
func (s *Server) readTrace(w http.ResponseWriter, r *http.Request) (*trace.Graph, bool) {
	limit := s.cfg.MaxBodyBytes
	if limit <= 0 {
		limit = httputil.DefaultMaxBody
	}
	g, err := traceio.ReadJSON(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return g, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httputil.WriteError(w, err)
	code := string(errors.GetCodeOr(err, errors.ErrCodeInternal))
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "bad integer %q", v)
	}
	return n, nil
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
