package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		debug bool
		want  bool
	}{
		{"info at info level", log.InfoLevel, false, true},
		{"debug at info level", log.InfoLevel, true, false},
		{"debug at debug level", log.DebugLevel, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			if tt.debug {
				logger.Debug("built graph", "nodes", 3)
			} else {
				logger.Info("built graph", "nodes", 3)
			}
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)

	if p.elapsed() <= 0 {
		t.Errorf("elapsed() = %v, want > 0", p.elapsed())
	}
	p.done("Rendered 2 schema(s)")
	if out := buf.String(); !strings.Contains(out, "Rendered 2 schema(s) (") {
		t.Errorf("done() output = %q", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	fallback := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if got := loggerFromContext(context.Background(), fallback); got != fallback {
		t.Error("without an attached logger the fallback should be used")
	}

	run := fallback.With("run", "abcd1234")
	ctx := log.WithContext(context.Background(), run)
	if got := loggerFromContext(ctx, fallback); got != run {
		t.Error("the attached logger should win over the fallback")
	}
}

func TestStageLogger(t *testing.T) {
	var buf bytes.Buffer
	h := stageLogger{logger: newLogger(&buf, log.DebugLevel)}
	ctx := log.WithContext(context.Background(), h.logger.With("run", "abcd1234"))

	h.OnBuildComplete(ctx, "petstore.yaml", 3, 1, time.Millisecond, nil)
	h.OnLayoutComplete(ctx, time.Millisecond, errors.New("overlap"))
	h.OnCacheHit(ctx, "svg")
	h.OnCacheSet(ctx, "html", 512)

	out := buf.String()
	for _, want := range []string{"stage=build", "warnings=1", "stage=layout", "error=overlap", "cache hit", "bytes=512", "run=abcd1234"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	quiet := stageLogger{logger: newLogger(&buf, log.InfoLevel)}
	quiet.OnRenderComplete(context.Background(), []string{"svg"}, time.Millisecond, nil)
	if buf.Len() != 0 {
		t.Errorf("stage events should be debug only, got %q", buf.String())
	}
}
