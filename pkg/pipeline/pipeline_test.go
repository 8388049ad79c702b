package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/schemagraph/pkg/cache"
	"github.com/matzehuels/schemagraph/pkg/config"
	apperrors "github.com/matzehuels/schemagraph/pkg/errors"
	"github.com/matzehuels/schemagraph/pkg/graph"
	"github.com/matzehuels/schemagraph/pkg/render"
	"github.com/matzehuels/schemagraph/pkg/schema"
)

const petstore = `
openapi: 3.0.0
components:
  schemas:
    Pet:
      type: object
      properties:
        id:
          type: integer
        owner:
          $ref: '#/components/schemas/Owner'
    Owner:
      type: object
      properties:
        name:
          type: string
        pets:
          type: array
          items:
            $ref: '#/components/schemas/Pet'
    Legacy:
      description: no type at all
`

func yamlSource(data string) Source {
	return Source{Name: "petstore.yaml", Data: []byte(data), Format: schema.FormatYAML}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"html", false},
		{"json", false},
		{"dot", false},
		{"png", false},
		{"pdf", false},
		{"gif", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(o.Formats, []string{FormatSVG}) {
		t.Errorf("Formats = %v", o.Formats)
	}
	if o.Theme != "light" || o.Engine != EngineBuiltin || o.RootID != "main-svg" || o.Scale != 1 {
		t.Errorf("defaults = %+v", o)
	}

	bad := []Options{
		{Formats: []string{"bmp"}},
		{Theme: "neon"},
		{Engine: "neato"},
	}
	for _, o := range bad {
		if err := o.ValidateAndSetDefaults(); err == nil {
			t.Errorf("%+v: expected error", o)
		}
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Viewer = true
	cfg.Theme = "dark"

	o := OptionsFromConfig(&cfg)
	if !reflect.DeepEqual(o.Formats, []string{"svg", "html"}) {
		t.Errorf("Formats = %v", o.Formats)
	}
	if o.Theme != "dark" || o.CacheTTL != cfg.Cache.TTL {
		t.Errorf("options = %+v", o)
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), yamlSource(petstore), Options{
		Formats: []string{"json", "svg", "html", "dot"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.RunID == "" {
		t.Error("missing run id")
	}
	if res.Stats.NodeCount != 3 {
		t.Errorf("NodeCount = %d, want 3", res.Stats.NodeCount)
	}
	if res.Stats.WarningCount != 1 {
		t.Errorf("WarningCount = %d, want 1 (Legacy has no type)", res.Stats.WarningCount)
	}
	if len(res.Recursive) != 1 || len(res.Recursive[0]) != 2 {
		t.Errorf("Recursive = %v, want one group of Pet and Owner", res.Recursive)
	}

	for _, f := range []string{"svg", "html", "json", "dot"} {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("artifact %s is empty", f)
		}
	}
	if !bytes.Contains(res.Artifacts["svg"], []byte(`id="main-svg"`)) {
		t.Error("svg lacks root id")
	}
	if !bytes.Contains(res.Artifacts["svg"], []byte(`id="node-Pet"`)) {
		t.Error("svg lacks Pet node")
	}
	if !bytes.Contains(res.Artifacts["html"], []byte("svg-container")) {
		t.Error("html lacks viewer container")
	}
	if !bytes.Contains(res.Artifacts["html"], []byte("3 nodes")) {
		t.Error("html lacks stats")
	}
	if !bytes.Contains(res.Artifacts["dot"], []byte("digraph")) {
		t.Error("dot output is not a digraph")
	}

	var doc struct {
		Nodes []struct {
			ID string `json:"id"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(res.Artifacts["json"], &doc); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	var ids []string
	for _, n := range doc.Nodes {
		ids = append(ids, n.ID)
	}
	if want := []string{"Pet", "Owner", "Legacy"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("node order = %v, want %v", ids, want)
	}
}

func TestExecuteExampleSchema(t *testing.T) {
	src, err := LoadSource(filepath.Join("..", "..", "examples", "petstore.yaml"))
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), src, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// Eleven components plus the inline union Owner.contact.
	if res.Stats.NodeCount != 12 {
		t.Errorf("NodeCount = %d, want 12", res.Stats.NodeCount)
	}
	if res.Stats.WarningCount != 0 {
		t.Errorf("warnings = %v, want none", res.Graph.Warnings())
	}
	want := [][]string{{"Pet", "Owner"}, {"Category"}}
	if !reflect.DeepEqual(res.Recursive, want) {
		t.Errorf("Recursive = %v, want %v", res.Recursive, want)
	}
	if _, ok := res.Graph.Node("Owner.contact"); !ok {
		t.Error("inline union was not synthesized")
	}
}

func TestExecuteDeterministic(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := Options{Formats: []string{"svg", "json"}}

	a, err := r.Execute(context.Background(), yamlSource(petstore), opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Execute(context.Background(), yamlSource(petstore), opts)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range opts.Formats {
		if !bytes.Equal(a.Artifacts[f], b.Artifacts[f]) {
			t.Errorf("%s differs between runs", f)
		}
	}
}

func TestExecuteFatalInput(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), yamlSource("- just\n- a list\n"), Options{})
	if err == nil {
		t.Fatal("expected error for a non-mapping document")
	}
	if !apperrors.Is(err, apperrors.ErrCodeInvalidSchema) {
		t.Errorf("error = %v, want INVALID_SCHEMA", err)
	}
}

func TestExecuteRejectsInvalidGraph(t *testing.T) {
	orig := validateGraph
	t.Cleanup(func() { validateGraph = orig })
	validateGraph = func(*graph.Graph) error {
		return apperrors.New(apperrors.ErrCodeInternal, "edge Pet -> Nowhere: unknown target")
	}

	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), yamlSource(petstore), Options{})
	if !apperrors.Is(err, apperrors.ErrCodeInternal) {
		t.Fatalf("error = %v, want INTERNAL_ERROR", err)
	}
	if res != nil {
		t.Errorf("result = %+v, want nil", res)
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(ctx, yamlSource(petstore), Options{}); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestExecuteUsesCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	opts := Options{Formats: []string{"svg", "json"}}
	first, err := r.Execute(context.Background(), yamlSource(petstore), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.CacheInfo.Hits) != 0 || len(first.CacheInfo.Misses) != 2 {
		t.Errorf("first run cache info = %+v", first.CacheInfo)
	}

	second, err := r.Execute(context.Background(), yamlSource(petstore), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.AllHit() {
		t.Errorf("second run cache info = %+v, want all hits", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached svg differs")
	}

	// A different theme must not be served from the light entry.
	opts.Theme = "dark"
	third, err := r.Execute(context.Background(), yamlSource(petstore), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(third.CacheInfo.Hits, []string{"json"}) {
		t.Errorf("theme change hits = %v, want only json", third.CacheInfo.Hits)
	}

	opts.Refresh = true
	fourth, err := r.Execute(context.Background(), yamlSource(petstore), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(fourth.CacheInfo.Hits) != 0 {
		t.Errorf("refresh hits = %v, want none", fourth.CacheInfo.Hits)
	}
}

func TestRenderConverterMissing(t *testing.T) {
	if render.Available() {
		t.Skip("rsvg-convert installed")
	}
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), yamlSource(petstore), Options{Formats: []string{"svg", "png"}})
	if !apperrors.Is(err, apperrors.ErrCodeUnsupported) {
		t.Errorf("error = %v, want UNSUPPORTED", err)
	}
}

func TestLoadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "api.yml")
	if err := os.WriteFile(path, []byte(petstore), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := LoadSource(path)
	if err != nil {
		t.Fatal(err)
	}
	if src.Format != schema.FormatYAML || src.Stem() != "api" {
		t.Errorf("source = %+v", src)
	}

	if _, err := LoadSource(filepath.Join(dir, "missing.json")); !apperrors.Is(err, apperrors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
	if _, err := LoadSource(filepath.Join(dir, "schema.xml")); !apperrors.Is(err, apperrors.ErrCodeInvalidFormat) {
		t.Errorf("unsupported extension error = %v", err)
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	artifacts := map[string][]byte{
		"json": []byte("{}"),
		"svg":  []byte("<svg/>"),
	}

	paths, err := WriteArtifacts(dir, "api_graph", artifacts)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "api_graph.svg"), filepath.Join(dir, "api_graph.json")}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	data, err := os.ReadFile(want[0])
	if err != nil || string(data) != "<svg/>" {
		t.Errorf("svg content = %q, %v", data, err)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}

	if _, err := WriteArtifacts(dir, "../escape", artifacts); !apperrors.Is(err, apperrors.ErrCodeInvalidPath) {
		t.Errorf("bad base error = %v", err)
	}
}

func TestOutputBase(t *testing.T) {
	src := Source{Name: "specs/billing.yaml"}
	if got := OutputBase("api_graph", src, false); got != "api_graph" {
		t.Errorf("single = %q", got)
	}
	if got := OutputBase("api_graph", src, true); got != "api_graph_billing" {
		t.Errorf("multiple = %q", got)
	}
}
