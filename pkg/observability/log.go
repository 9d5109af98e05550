package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes pipeline and cache events to a logger at debug level.
// Failures are logged at warn level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log through logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnNormalize(_ context.Context, chartType string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("request rejected", "type", chartType, "err", err)
		return
	}
	h.logger.Debug("request normalized", "type", chartType, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, chartType string, series int) {
	h.logger.Debug("render started", "type", chartType, "series", series)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, chartType string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "type", chartType, "duration", d, "err", err)
		return
	}
	h.logger.Debug("render finished", "type", chartType, "bytes", size, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "key", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "key", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "key", keyType, "bytes", size)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
)
