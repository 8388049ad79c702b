package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/schemagraph/pkg/graph"
	"github.com/matzehuels/schemagraph/pkg/layout"
	"github.com/matzehuels/schemagraph/pkg/render"
	"github.com/matzehuels/schemagraph/pkg/render/dot"
	"github.com/matzehuels/schemagraph/pkg/render/svg"
	"github.com/matzehuels/schemagraph/pkg/viewer"
)

// renderer produces the artifacts of one run. The drawing is shared between
// formats and produced at most once.
type renderer struct {
	g     *graph.Graph
	plan  *layout.Plan
	opts  *Options
	stats Stats

	drawing []byte
}

// RenderArtifact renders a single format without caching.
func RenderArtifact(ctx context.Context, format string, g *graph.Graph, p *layout.Plan, opts Options) ([]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r := &renderer{g: g, plan: p, opts: &opts, stats: Stats{
		NodeCount:    g.NodeCount(),
		EdgeCount:    g.EdgeCount(),
		WarningCount: len(g.Warnings()),
	}}
	return r.render(ctx, format)
}

func (r *renderer) render(ctx context.Context, format string) ([]byte, error) {
	switch format {
	case FormatSVG:
		return r.svg(ctx)
	case FormatHTML:
		data, err := r.svg(ctx)
		if err != nil {
			return nil, err
		}
		return viewer.Render(data, viewer.Page{
			Title:          r.opts.Title,
			RootID:         r.opts.RootID,
			Stats:          r.stats.Summary(),
			ReloadURL:      r.opts.ReloadURL,
			ReloadInterval: r.opts.ReloadInterval,
		})
	case FormatJSON:
		return r.g.JSON()
	case FormatDOT:
		return []byte(dot.ToDOT(r.g, dot.Options{})), nil
	case FormatPNG:
		data, err := r.svg(ctx)
		if err != nil {
			return nil, err
		}
		return render.ToPNG(ctx, data, r.opts.Scale)
	case FormatPDF:
		data, err := r.svg(ctx)
		if err != nil {
			return nil, err
		}
		return render.ToPDF(ctx, data)
	}
	return nil, ValidateFormat(format)
}

func (r *renderer) svg(ctx context.Context) ([]byte, error) {
	if r.drawing != nil {
		return r.drawing, nil
	}
	switch r.opts.Engine {
	case EngineGraphviz:
		data, err := dot.RenderSVG(ctx, dot.ToDOT(r.g, dot.Options{}), r.opts.RootID)
		if err != nil {
			return nil, fmt.Errorf("graphviz: %w", err)
		}
		r.drawing = data
	default:
		d, err := svg.Render(r.g, r.plan, r.opts.svgOptions())
		if err != nil {
			return nil, err
		}
		r.drawing = d.SVG()
	}
	return r.drawing, nil
}
