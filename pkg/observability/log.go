package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// [PipelineHooks], [CacheHooks] and [HTTPHooks].
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger, or to the default logger
// when logger is nil.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

func (l *LogHooks) OnFitStart(_ context.Context, nodeCount int) {
	l.logger.Debug("fit start", "nodes", nodeCount)
}

func (l *LogHooks) OnFitComplete(_ context.Context, branchCount int, d time.Duration, err error) {
	if err != nil {
		l.logger.Debug("fit failed", "elapsed", d, "err", err)
		return
	}
	l.logger.Debug("fit done", "branches", branchCount, "elapsed", d)
}

func (l *LogHooks) OnRenderStart(_ context.Context, mode string, segments int) {
	l.logger.Debug("render start", "mode", mode, "segments", segments)
}

func (l *LogHooks) OnRenderComplete(_ context.Context, mode string, voxels int, d time.Duration, err error) {
	if err != nil {
		l.logger.Debug("render failed", "mode", mode, "elapsed", d, "err", err)
		return
	}
	l.logger.Debug("render done", "mode", mode, "voxels", voxels, "elapsed", d)
}

func (l *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	l.logger.Debug("cache hit", "kind", keyType)
}

func (l *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	l.logger.Debug("cache miss", "kind", keyType)
}

func (l *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	l.logger.Debug("cache set", "kind", keyType, "bytes", size)
}

func (l *LogHooks) OnRequest(_ context.Context, method, route string) {
	l.logger.Debug("request", "method", method, "route", route)
}

func (l *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	l.logger.Debug("response", "method", method, "route", route, "status", status, "elapsed", d)
}

func (l *LogHooks) OnError(_ context.Context, method, route, code string) {
	l.logger.Debug("request error", "method", method, "route", route, "code", code)
}
