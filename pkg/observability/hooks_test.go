package observability

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder counts events across all three hook families.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) OnFitStart(context.Context, int)                                    { r.add("fit-start") }
func (r *recorder) OnFitComplete(context.Context, int, time.Duration, error)           { r.add("fit-done") }
func (r *recorder) OnRenderStart(context.Context, string, int)                         { r.add("render-start") }
func (r *recorder) OnRenderComplete(context.Context, string, int, time.Duration, error) { r.add("render-done") }
func (r *recorder) OnCacheHit(context.Context, string)                                 { r.add("hit") }
func (r *recorder) OnCacheMiss(context.Context, string)                                { r.add("miss") }
func (r *recorder) OnCacheSet(context.Context, string, int)                            { r.add("set") }
func (r *recorder) OnRequest(context.Context, string, string)                          { r.add("req") }
func (r *recorder) OnResponse(context.Context, string, string, int, time.Duration)     { r.add("resp") }
func (r *recorder) OnError(context.Context, string, string, string)                    { r.add("err") }

func TestRegistryDefaultsToNoop(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	assert.IsType(t, NoopPipelineHooks{}, Pipeline())
	assert.IsType(t, NoopCacheHooks{}, Cache())
	assert.IsType(t, NoopHTTPHooks{}, HTTP())

	ctx := context.Background()
	Pipeline().OnRenderComplete(ctx, "edt", 10, time.Millisecond, nil)
	Cache().OnCacheSet(ctx, "mask", 64)
	HTTP().OnError(ctx, "POST", "/v1/tube", "INVALID_INPUT")
}

func TestRegistryRoutesEvents(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recorder{}
	SetPipelineHooks(rec)
	SetCacheHooks(rec)
	SetHTTPHooks(rec)

	ctx := context.Background()
	Pipeline().OnFitStart(ctx, 7)
	Cache().OnCacheMiss(ctx, "tree")
	Pipeline().OnFitComplete(ctx, 3, time.Millisecond, nil)
	Cache().OnCacheSet(ctx, "tree", 128)
	HTTP().OnRequest(ctx, "POST", "/v1/fit")
	HTTP().OnResponse(ctx, "POST", "/v1/fit", 200, time.Millisecond)

	assert.Equal(t, []string{"fit-start", "miss", "fit-done", "set", "req", "resp"}, rec.events)

	Reset()
	Pipeline().OnFitStart(ctx, 1)
	assert.Len(t, rec.events, 6, "reset hooks must not reach the recorder")
}

func TestSetNilKeepsCurrentHooks(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recorder{}
	SetPipelineHooks(rec)
	SetCacheHooks(rec)
	SetHTTPHooks(rec)

	SetPipelineHooks(nil)
	SetCacheHooks(nil)
	SetHTTPHooks(nil)

	assert.Same(t, rec, Pipeline())
	assert.Same(t, rec, Cache())
	assert.Same(t, rec, HTTP())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	t.Cleanup(Reset)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetCacheHooks(&recorder{})
		}()
		go func() {
			defer wg.Done()
			Cache().OnCacheHit(context.Background(), "mask")
		}()
	}
	wg.Wait()
	assert.IsType(t, &recorder{}, Cache())
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	ctx := context.Background()

	h.OnFitComplete(ctx, 4, time.Millisecond, nil)
	h.OnRenderComplete(ctx, "spheres", 0, time.Millisecond, errors.New("boom"))
	h.OnCacheHit(ctx, "tree")
	h.OnError(ctx, "POST", "/v1/tube", "INVALID_INPUT")

	out := buf.String()
	assert.Contains(t, out, "fit done")
	assert.Contains(t, out, "branches=4")
	assert.Contains(t, out, "render failed")
	assert.Contains(t, out, "err=boom")
	assert.Contains(t, out, "kind=tree")
	assert.Contains(t, out, "code=INVALID_INPUT")
}

func TestLogHooksSilentAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})
	h := NewLogHooks(logger)

	h.OnFitStart(context.Background(), 3)
	h.OnCacheMiss(context.Background(), "mask")
	require.Empty(t, buf.String())
}
