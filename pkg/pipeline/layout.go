package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/schemagraph/pkg/graph"
	"github.com/matzehuels/schemagraph/pkg/layout"
	"github.com/matzehuels/schemagraph/pkg/observability"
)

// ComputeLayout places g's nodes and routes its edges.
func ComputeLayout(ctx context.Context, g *graph.Graph, opts layout.Options) (*layout.Plan, error) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, g.NodeCount())
	start := time.Now()

	p, err := layout.Layout(g, opts)
	if err == nil {
		err = p.Validate()
	}

	hooks.OnLayoutComplete(ctx, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return p, nil
}
