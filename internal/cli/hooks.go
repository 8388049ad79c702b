package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schemagraph/pkg/observability"
)

// stageLogger reports pipeline stage timings and cache traffic at debug
// level. Events are logged through the run's logger when the context
// carries one.
type stageLogger struct {
	logger *log.Logger
}

var (
	_ observability.PipelineHooks = stageLogger{}
	_ observability.CacheHooks    = stageLogger{}
)

func (h stageLogger) OnBuildStart(context.Context, string) {}

func (h stageLogger) OnBuildComplete(ctx context.Context, source string, nodes, warnings int, d time.Duration, err error) {
	h.stage(ctx, "build", d, err, "schema", source, "nodes", nodes, "warnings", warnings)
}

func (h stageLogger) OnLayoutStart(context.Context, int) {}

func (h stageLogger) OnLayoutComplete(ctx context.Context, d time.Duration, err error) {
	h.stage(ctx, "layout", d, err)
}

func (h stageLogger) OnRenderStart(context.Context, []string) {}

func (h stageLogger) OnRenderComplete(ctx context.Context, formats []string, d time.Duration, err error) {
	h.stage(ctx, "render", d, err, "formats", formats)
}

func (h stageLogger) OnCacheHit(ctx context.Context, format string) {
	loggerFromContext(ctx, h.logger).Debug("cache hit", "format", format)
}

func (h stageLogger) OnCacheMiss(ctx context.Context, format string) {
	loggerFromContext(ctx, h.logger).Debug("cache miss", "format", format)
}

func (h stageLogger) OnCacheSet(ctx context.Context, format string, size int) {
	loggerFromContext(ctx, h.logger).Debug("cache store", "format", format, "bytes", size)
}

func (h stageLogger) stage(ctx context.Context, name string, d time.Duration, err error, kv ...any) {
	kv = append([]any{"stage", name, "duration", d}, kv...)
	if err != nil {
		kv = append(kv, "error", err)
	}
	loggerFromContext(ctx, h.logger).Debug("stage finished", kv...)
}

// installHooks routes observability events to the CLI logger.
func (c *CLI) installHooks() {
	h := stageLogger{logger: c.Logger}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
}
