package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/matzehuels/schemagraph/pkg/errors"
	"github.com/matzehuels/schemagraph/pkg/graph"
	"github.com/matzehuels/schemagraph/pkg/observability"
	"github.com/matzehuels/schemagraph/pkg/schema"
)

// Source is one schema document held in memory.
type Source struct {
	// Name identifies the document in logs, usually its path.
	Name   string
	Data   []byte
	Format schema.Format
}

// LoadSource reads the schema file at path. The encoding is chosen by
// extension.
func LoadSource(path string) (Source, error) {
	format, err := schema.FormatFromPath(path)
	if err != nil {
		return Source{}, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Source{}, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "schema file %s", path)
	}
	if err != nil {
		return Source{}, apperrors.Wrap(apperrors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return Source{Name: path, Data: data, Format: format}, nil
}

// Stem returns the file name of the source without directory and extension.
func (s Source) Stem() string {
	base := filepath.Base(s.Name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Build decodes src and builds its graph. Only structural input failures are
// returned as errors; everything recoverable ends up in the graph warnings.
func Build(ctx context.Context, src Source) (*graph.Graph, error) {
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, src.Name)
	start := time.Now()

	g, err := build(src)

	nodes, warnings := 0, 0
	if g != nil {
		nodes, warnings = g.NodeCount(), len(g.Warnings())
	}
	hooks.OnBuildComplete(ctx, src.Name, nodes, warnings, time.Since(start), err)
	return g, err
}

// validateGraph checks the built graph before layout sees it.
var validateGraph = (*graph.Graph).Validate

func build(src Source) (*graph.Graph, error) {
	m, err := schema.Parse(src.Data, src.Format)
	if err != nil {
		return nil, err
	}
	g, err := graph.Build(m)
	if err != nil {
		return nil, err
	}
	if err := validateGraph(g); err != nil {
		return nil, err
	}
	return g, nil
}
