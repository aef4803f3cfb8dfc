// Package heartbeat emits scheduler liveness lines ("HEART: <n>") while a run
// is in progress. Beat is fire-and-forget and safe for concurrent use
package heartbeat

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"bulkscan/internal/platform/logger"
)

// Prefix starts every liveness line
const Prefix = "HEART:"

// Heart counts processed items and reports the running total on a ticker
type Heart struct {
	out   io.Writer
	every time.Duration

	items atomic.Int64

	mu      sync.Mutex // guards out and the lifecycle below
	stop    context.CancelFunc
	done    chan struct{}
	started bool
}

// New returns a heart writing to w (stdout when nil) every interval.
// An interval <= 0 disables the ticker; Beat still counts
func New(w io.Writer, every time.Duration) *Heart {
	if w == nil {
		w = os.Stdout
	}
	return &Heart{out: w, every: every}
}

// Beat adds n processed items
func (h *Heart) Beat(n int) {
	if h == nil || n <= 0 {
		return
	}
	h.items.Add(int64(n))
}

// Items returns the running total
func (h *Heart) Items() int64 { return h.items.Load() }

// Start launches the ticker; calling it twice is a no-op
func (h *Heart) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started || h.every <= 0 {
		return
	}
	h.started = true

	ctx, h.stop = context.WithCancel(ctx)
	h.done = make(chan struct{})
	go h.loop(ctx)
}

// Stop halts the ticker and writes a final line with the total
func (h *Heart) Stop() {
	h.mu.Lock()
	stop, done := h.stop, h.done
	h.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
	h.emit()
}

func (h *Heart) loop(ctx context.Context) {
	defer close(h.done)
	t := time.NewTicker(h.every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			h.emit()
		}
	}
}

func (h *Heart) emit() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := fmt.Fprintf(h.out, "%s %d\n", Prefix, h.items.Load()); err != nil {
		logger.Named("heartbeat").Debug().Err(err).Msg("heartbeat write failed")
	}
}
