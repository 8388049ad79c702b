package observability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnBuildStart(ctx, "openapi.yaml")
	p.OnBuildComplete(ctx, "openapi.yaml", 12, 1, time.Second, nil)
	p.OnLayoutStart(ctx, 12)
	p.OnLayoutComplete(ctx, time.Second, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, errors.New("boom"))

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "svg")
	c.OnCacheMiss(ctx, "html")
	c.OnCacheSet(ctx, "json", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/")
	h.OnResponse(ctx, "GET", "/", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &recordingPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &recordingCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("Reset() should restore NoopHTTPHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &recordingPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	SetCacheHooks(nil)
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("SetCacheHooks(nil) should be ignored")
	}
}

func TestRegisteredHooksReceiveEvents(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	p := &recordingPipelineHooks{}
	c := &recordingCacheHooks{}
	SetPipelineHooks(p)
	SetCacheHooks(c)

	ctx := context.Background()
	Pipeline().OnBuildStart(ctx, "a.json")
	Pipeline().OnBuildComplete(ctx, "a.json", 3, 0, 0, nil)
	Cache().OnCacheMiss(ctx, "svg")
	Cache().OnCacheSet(ctx, "svg", 10)
	Cache().OnCacheHit(ctx, "svg")

	if got := p.events(); len(got) != 2 || got[0] != "build-start:a.json" || got[1] != "build-complete:a.json" {
		t.Errorf("pipeline events = %v", got)
	}
	if c.hits != 1 || c.misses != 1 || c.sets != 1 {
		t.Errorf("cache counts = %d/%d/%d, want 1/1/1", c.hits, c.misses, c.sets)
	}
}

func TestConcurrentAccess(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetCacheHooks(&recordingCacheHooks{})
		}()
		go func() {
			defer wg.Done()
			Cache().OnCacheHit(context.Background(), "svg")
		}()
	}
	wg.Wait()
}

type recordingPipelineHooks struct {
	NoopPipelineHooks
	mu  sync.Mutex
	log []string
}

func (r *recordingPipelineHooks) OnBuildStart(_ context.Context, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, "build-start:"+source)
}

func (r *recordingPipelineHooks) OnBuildComplete(_ context.Context, source string, _, _ int, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, "build-complete:"+source)
}

func (r *recordingPipelineHooks) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.log...)
}

type recordingCacheHooks struct {
	mu                 sync.Mutex
	hits, misses, sets int
}

func (r *recordingCacheHooks) OnCacheHit(context.Context, string) {
	r.mu.Lock()
	r.hits++
	r.mu.Unlock()
}

func (r *recordingCacheHooks) OnCacheMiss(context.Context, string) {
	r.mu.Lock()
	r.misses++
	r.mu.Unlock()
}

func (r *recordingCacheHooks) OnCacheSet(context.Context, string, int) {
	r.mu.Lock()
	r.sets++
	r.mu.Unlock()
}

type testHTTPHooks struct{ NoopHTTPHooks }
