package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/schemagraph/pkg/buildinfo"
	"github.com/matzehuels/schemagraph/pkg/cache"
	"github.com/matzehuels/schemagraph/pkg/graph"
	"github.com/matzehuels/schemagraph/pkg/layout"
	"github.com/matzehuels/schemagraph/pkg/observability"
)

// Runner encapsulates pipeline execution with artifact caching.
//
// The Runner is stateless except for the cache and logger, so multiple
// goroutines can use the same Runner with different sources and options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete pipeline for src. Warnings are logged and kept on
// the graph; any returned error is fatal and no artifacts are produced.
func (r *Runner) Execute(ctx context.Context, src Source, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if opts.Title == "" {
		opts.Title = src.Name
	}

	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", result.RunID[:8])
	ctx = log.WithContext(ctx, logger)

	// Stage 1+2: Parse and build
	start := time.Now()
	g, err := Build(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", src.Name, err)
	}
	result.Graph = g
	result.Stats.ParseTime = time.Since(start)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.WarningCount = len(g.Warnings())

	logger.Info("built graph",
		"schema", src.Name,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.ParseTime)
	for _, w := range g.Warnings() {
		logger.Warn(w.Message, "code", w.Code, "node", w.NodeID)
	}

	result.Recursive = g.RecursiveGroups()
	for _, group := range result.Recursive {
		logger.Debug("recursive components", "members", group)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Layout
	start = time.Now()
	plan, err := ComputeLayout(ctx, g, opts.Layout)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Plan = plan
	result.Stats.LayoutTime = time.Since(start)
	result.Stats.BackEdges = plan.BackEdges
	result.Stats.Crossings = plan.Crossings

	logger.Info("computed layout",
		"layers", len(plan.Layers),
		"width", int(plan.Width()),
		"height", int(plan.Height()),
		"crossings", plan.Crossings,
		"duration", result.Stats.LayoutTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 4: Render
	start = time.Now()
	schemaHash := cache.Hash(src.Data)
	artifacts, info, err := r.Render(ctx, g, plan, schemaHash, result.Stats, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo = info
	result.Stats.RenderTime = time.Since(start)

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", len(info.Hits),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Render produces every format in opts, reading and filling the cache.
// schemaHash is the content hash of the schema document. Cache failures are
// logged and otherwise ignored.
func (r *Runner) Render(ctx context.Context, g *graph.Graph, p *layout.Plan, schemaHash string, stats Stats, opts Options) (map[string][]byte, CacheInfo, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, CacheInfo{}, err
	}

	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	rd := &renderer{g: g, plan: p, opts: &opts, stats: stats}
	artifacts := make(map[string][]byte, len(opts.Formats))
	var info CacheInfo

	for _, format := range ordered(opts.Formats) {
		key := r.Keyer.ArtifactKey(schemaHash, opts.artifactKeyOpts(format, buildinfo.Version))

		if !opts.Refresh {
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil {
				opts.Logger.Warn("cache read failed", "format", format, "error", err)
			}
			if err == nil && hit {
				cacheHooks.OnCacheHit(ctx, format)
				artifacts[format] = data
				info.Hits = append(info.Hits, format)
				continue
			}
		}
		cacheHooks.OnCacheMiss(ctx, format)
		info.Misses = append(info.Misses, format)

		data, err := rd.render(ctx, format)
		if err != nil {
			err = fmt.Errorf("%s: %w", format, err)
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, info, err
		}
		artifacts[format] = data

		if err := r.Cache.Set(ctx, key, data, opts.CacheTTL); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		cacheHooks.OnCacheSet(ctx, format, len(data))
	}

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, info, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// ordered returns formats deduplicated in rendering order.
func ordered(formats []string) []string {
	want := make(map[string]bool, len(formats))
	for _, f := range formats {
		want[f] = true
	}
	out := make([]string, 0, len(want))
	for _, f := range formatOrder {
		if want[f] {
			out = append(out, f)
		}
	}
	return out
}
