// Package pipeline runs the parse → build → layout → render sequence for one
// schema document.
//
// This package is shared by the render, inspect and serve commands so that
// every entry point produces byte-identical artifacts for the same input and
// options.
//
// # Stages
//
//  1. Parse: decode the document and locate its component mapping
//  2. Build: classify components into a [graph.Graph], collecting warnings
//  3. Layout: place node boxes and route edges ([layout.Plan])
//  4. Render: produce the requested artifacts (SVG, HTML, JSON, DOT, PNG, PDF)
//
// Every artifact is rendered into memory. Nothing touches the output
// directory until [WriteArtifacts] is called, so a fatal error in any stage
// leaves previous outputs untouched.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	src, err := pipeline.LoadSource("openapi.yaml")
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, src, pipeline.Options{Formats: []string{"svg", "html"}})
//	if err != nil {
//	    return err
//	}
//	paths, err := pipeline.WriteArtifacts("out", "api_graph", result.Artifacts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schemagraph/pkg/cache"
	"github.com/matzehuels/schemagraph/pkg/config"
	"github.com/matzehuels/schemagraph/pkg/graph"
	"github.com/matzehuels/schemagraph/pkg/layout"
	"github.com/matzehuels/schemagraph/pkg/render/svg"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatHTML = "html"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// Engine names.
const (
	EngineBuiltin  = "builtin"
	EngineGraphviz = "graphviz"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatHTML: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// formatOrder is the order artifacts are rendered and written in.
var formatOrder = []string{FormatSVG, FormatHTML, FormatJSON, FormatDOT, FormatPNG, FormatPDF}

// Options contains the configuration of one pipeline run.
type Options struct {
	Formats []string
	Theme   string
	Engine  string
	RootID  string
	// Title is shown by the HTML viewer; defaults to the source name.
	Title string
	// Scale multiplies the PNG resolution.
	Scale  float64
	Layout layout.Options

	// CacheTTL is the lifetime of cached artifacts; zero means no expiry.
	CacheTTL time.Duration
	// Refresh skips cache reads but still stores fresh artifacts.
	Refresh bool
	// ReloadURL makes the HTML viewer poll for changes (serve --watch).
	ReloadURL      string
	ReloadInterval time.Duration

	Logger *log.Logger
}

// OptionsFromConfig maps the resolved CLI configuration onto pipeline options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Formats:  cfg.Artifacts(),
		Theme:    cfg.Theme,
		Engine:   cfg.Engine,
		RootID:   cfg.RootID,
		Scale:    cfg.Scale,
		Layout:   cfg.Layout,
		CacheTTL: cfg.Cache.TTL,
	}
}

// ValidateAndSetDefaults checks the options and fills unset fields.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Theme == "" {
		o.Theme = "light"
	}
	if _, err := svg.LookupTheme(o.Theme); err != nil {
		return err
	}
	switch o.Engine {
	case "":
		o.Engine = EngineBuiltin
	case EngineBuiltin, EngineGraphviz:
	default:
		return fmt.Errorf("invalid engine: %q (must be one of: builtin, graphviz)", o.Engine)
	}
	if o.RootID == "" {
		o.RootID = svg.DefaultRootID
	}
	if o.Scale <= 0 {
		o.Scale = 1
	}
	o.Layout = o.Layout.WithDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, html, json, dot, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func (o *Options) svgOptions() svg.Options {
	return svg.Options{
		RootID:   o.RootID,
		Theme:    o.Theme,
		FontSize: o.Layout.FontSize,
		Padding:  o.Layout.PaddingX,
	}
}

// artifactKeyOpts returns the cache key options for format, leaving out the
// settings that cannot change that format's bytes.
func (o *Options) artifactKeyOpts(format, version string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Version: version}
	switch format {
	case FormatJSON, FormatDOT:
		return k
	}
	k.Theme = o.Theme
	k.Engine = o.Engine
	k.RootID = o.RootID
	k.Layout = cache.Hash(fmt.Appendf(nil, "%+v", o.Layout))
	switch format {
	case FormatHTML:
		k.Title = fmt.Sprintf("%s\x00%s\x00%s", o.Title, o.ReloadURL, o.ReloadInterval)
	case FormatPNG:
		k.Scale = o.Scale
	}
	return k
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID correlates the log lines of one run.
	RunID string

	Graph *graph.Graph
	Plan  *layout.Plan

	// Recursive lists the groups of mutually recursive components.
	Recursive [][]string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	WarningCount int
	BackEdges    int
	Crossings    int
	ParseTime    time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// Summary is the one-line description shown by the viewer toolbar.
func (s Stats) Summary() string {
	return fmt.Sprintf("%d nodes, %d edges, %d warnings", s.NodeCount, s.EdgeCount, s.WarningCount)
}

// CacheInfo records which formats came from the cache.
type CacheInfo struct {
	Hits   []string
	Misses []string
}

// AllHit reports whether every artifact came from the cache.
func (c CacheInfo) AllHit() bool { return len(c.Misses) == 0 && len(c.Hits) > 0 }
