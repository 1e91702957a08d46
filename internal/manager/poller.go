package manager

import (
	"context"
	"sync"
	"time"

	"vidgrab/internal/core"
	"vidgrab/internal/utils"
)

// ProgressSource reads the backend's progress for the in-flight download
type ProgressSource interface {
	Progress(ctx context.Context) (core.ProgressSnapshot, error)
}

// Poller periodically reads progress while a download is in flight. It stops
// by itself once a snapshot reports completion.
type Poller struct {
	source   ProgressSource
	interval time.Duration
	onUpdate func(core.ProgressSnapshot)

	mutex  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(source ProgressSource, interval time.Duration, onUpdate func(core.ProgressSnapshot)) *Poller {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Poller{
		source:   source,
		interval: interval,
		onUpdate: onUpdate,
	}
}

// Start replaces any running poll loop with a new one. The first poll
// happens one interval after Start returns.
func (p *Poller) Start(label string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	utils.LogDebug("POLLER", "Polling progress for %s every %s", label, p.interval)
	go p.loop(ctx, label, done)
}

// Stop cancels the poll loop and any in-flight progress request, then waits
// for the loop to exit. Safe to call when nothing is running.
func (p *Poller) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.stopLocked()
}

// Running reports whether a poll loop is still active
func (p *Poller) Running() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *Poller) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
}

func (p *Poller) loop(ctx context.Context, label string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		snap, err := p.source.Progress(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			utils.LogDebug("POLLER", "Progress read failed for %s: %v", label, err)
			continue
		}

		if p.onUpdate != nil {
			p.onUpdate(snap)
		}

		if snap.Complete() {
			utils.LogDebug("POLLER", "%s reached %s, polling stopped", label, snap.DisplayPercent())
			return
		}
	}
}
