package server

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/matzehuels/schemagraph/pkg/observability"
)

type countingHTTPHooks struct {
	observability.NoopHTTPHooks
	requests, responses atomic.Int32
}

func (h *countingHTTPHooks) OnRequest(context.Context, string, string) { h.requests.Add(1) }

func (h *countingHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {
	h.responses.Add(1)
}
