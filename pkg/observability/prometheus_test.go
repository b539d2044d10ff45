package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheus_Stages(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg)

	m.OnFitStart(ctx, 5)
	if got := testutil.ToFloat64(m.inflight); got != 1 {
		t.Errorf("inflight during fit = %v, want 1", got)
	}
	m.OnFitComplete(ctx, 3, 10*time.Millisecond, nil)
	m.OnRenderStart(ctx, "edt", 4)
	m.OnRenderComplete(ctx, "edt", 0, time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(m.inflight); got != 0 {
		t.Errorf("inflight after completion = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.stageErrors.WithLabelValues("render")); got != 1 {
		t.Errorf("render errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.stageErrors.WithLabelValues("fit")); got != 0 {
		t.Errorf("fit errors = %v, want 0", got)
	}
	if n := testutil.CollectAndCount(m.fitDuration); n != 1 {
		t.Errorf("fit duration series = %d, want 1", n)
	}
}

func TestPrometheus_CacheAndHTTP(t *testing.T) {
	ctx := context.Background()
	m := NewPrometheus(prometheus.NewRegistry())

	m.OnCacheHit(ctx, "tree")
	m.OnCacheMiss(ctx, "mask")
	m.OnCacheMiss(ctx, "mask")
	m.OnCacheSet(ctx, "mask", 2048)

	tests := []struct {
		keyType, result string
		want            float64
	}{
		{"tree", "hit", 1},
		{"mask", "miss", 2},
		{"mask", "set", 1},
		{"tree", "miss", 0},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.cacheOps.WithLabelValues(tt.keyType, tt.result)); got != tt.want {
			t.Errorf("cache %s/%s = %v, want %v", tt.keyType, tt.result, got, tt.want)
		}
	}
	if got := testutil.ToFloat64(m.cacheBytes.WithLabelValues("mask")); got != 2048 {
		t.Errorf("cache bytes = %v, want 2048", got)
	}

	m.OnRequest(ctx, "POST", "/v1/fit")
	m.OnResponse(ctx, "POST", "/v1/fit", 400, time.Millisecond)
	m.OnError(ctx, "POST", "/v1/fit", "CYCLE_DETECTED")
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/v1/fit", "400")); got != 1 {
		t.Errorf("http requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.httpErrors.WithLabelValues("/v1/fit", "CYCLE_DETECTED")); got != 1 {
		t.Errorf("http errors = %v, want 1", got)
	}
}

func TestPrometheus_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheus(reg)

	defer func() {
		if recover() == nil {
			t.Error("second NewPrometheus on the same registry should panic")
		}
	}()
	NewPrometheus(reg)
}
