package watch

import (
	"context"
	"slices"
	"time"
)

// Change is one debounced batch of modified files.
type Change struct {
	Paths []string  // sorted, deduplicated
	At    time.Time // when the batch was flushed
}

// Debounce batches paths arriving on in. A batch is flushed once no new path
// has arrived for quiet, or once maxWait has passed since the first path of
// the batch, whichever comes first. A pending batch is flushed when in closes;
// on cancellation it is dropped. The returned channel closes when Debounce
// stops.
func Debounce(ctx context.Context, in <-chan string, quiet, maxWait time.Duration) <-chan Change {
	out := make(chan Change, 1)
	go func() {
		defer close(out)

		pending := map[string]bool{}
		var quietC, maxC <-chan time.Time
		var quietT, maxT *time.Timer

		stop := func() {
			if quietT != nil {
				quietT.Stop()
				quietT, quietC = nil, nil
			}
			if maxT != nil {
				maxT.Stop()
				maxT, maxC = nil, nil
			}
		}
		flush := func() bool {
			stop()
			if len(pending) == 0 {
				return true
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			clear(pending)
			select {
			case out <- Change{Paths: paths, At: time.Now()}:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				stop()
				return
			case p, ok := <-in:
				if !ok {
					flush()
					return
				}
				pending[p] = true
				if quietT != nil {
					quietT.Stop()
				}
				quietT = time.NewTimer(quiet)
				quietC = quietT.C
				if maxT == nil && maxWait > 0 {
					maxT = time.NewTimer(maxWait)
					maxC = maxT.C
				}
			case <-quietC:
				if !flush() {
					return
				}
			case <-maxC:
				if !flush() {
					return
				}
			}
		}
	}()
	return out
}
