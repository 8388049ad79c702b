package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/schemagraph/pkg/observability"
	"github.com/matzehuels/schemagraph/pkg/pipeline"
)

const petstore = `{
  "components": {
    "schemas": {
      "Pet": {
        "type": "object",
        "properties": {
          "id": {"type": "integer"},
          "tag": {"$ref": "#/components/schemas/Tag"}
        }
      },
      "Tag": {"type": "string"},
      "Ghost": {"$ref": "#/components/schemas/Missing"}
    }
  }
}`

func newTestServer(t *testing.T, files map[string]string, reload bool) (*Server, *httptest.Server) {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"petstore.json", "other/petstore.json", "broken.yaml"} {
		content, ok := files[name]
		if !ok {
			continue
		}
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		paths = append(paths, path)
	}

	srv := New(pipeline.NewRunner(nil, nil, nil), paths, Options{LiveReload: reload})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestNamesDeduplicateStems(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{
		"petstore.json":       petstore,
		"other/petstore.json": petstore,
	}, false)
	assert.Equal(t, []string{"petstore", "petstore-2"}, srv.Names())
}

func TestArtifacts(t *testing.T) {
	_, ts := newTestServer(t, map[string]string{"petstore.json": petstore}, false)

	resp, body := get(t, ts.URL+"/svg/petstore")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, `id="main-svg"`)
	assert.Contains(t, body, `id="node-Pet"`)
	assert.Equal(t, "1", resp.Header.Get("X-Schema-Warnings"))

	resp, body = get(t, ts.URL+"/view/petstore")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "svg-container")
	assert.NotContains(t, body, VersionPath)

	resp, body = get(t, ts.URL+"/graph/petstore")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc struct {
		Nodes    []json.RawMessage `json:"nodes"`
		Warnings []json.RawMessage `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	assert.Len(t, doc.Nodes, 4, "Pet, Tag, Ghost and the Missing placeholder")
	assert.Len(t, doc.Warnings, 1)

	resp, body = get(t, ts.URL+"/dot/petstore")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "digraph")
}

func TestIndexRedirects(t *testing.T) {
	_, ts := newTestServer(t, map[string]string{"petstore.json": petstore}, false)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/view/petstore", resp.Header.Get("Location"))
}

func TestList(t *testing.T) {
	_, ts := newTestServer(t, map[string]string{"petstore.json": petstore}, false)

	resp, body := get(t, ts.URL+"/schemas")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []schemaInfo
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "petstore", list[0].Name)
	assert.Equal(t, "/view/petstore", list[0].View)
}

func TestErrors(t *testing.T) {
	_, ts := newTestServer(t, map[string]string{
		"petstore.json": petstore,
		"broken.yaml":   "- not\n- a mapping\n",
	}, false)

	resp, body := get(t, ts.URL+"/svg/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"code":"NOT_FOUND"`)

	resp, body = get(t, ts.URL+"/svg/broken")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "INVALID_SCHEMA")
}

func TestLiveReload(t *testing.T) {
	srv, ts := newTestServer(t, map[string]string{"petstore.json": petstore}, true)

	_, body := get(t, ts.URL+"/view/petstore")
	assert.Contains(t, body, VersionPath)

	_, v0 := get(t, ts.URL+VersionPath)
	srv.Invalidate()
	resp, v1 := get(t, ts.URL+VersionPath)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.NotEqual(t, v0, v1)
}

func TestHealthAndHooks(t *testing.T) {
	observability.Reset()
	t.Cleanup(observability.Reset)
	hooks := &countingHTTPHooks{}
	observability.SetHTTPHooks(hooks)

	_, ts := newTestServer(t, map[string]string{"petstore.json": petstore}, false)
	resp, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
	assert.Equal(t, int32(1), hooks.requests.Load())
	assert.Equal(t, int32(1), hooks.responses.Load())
}
