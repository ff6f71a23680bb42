// Package poller implements the client-side approval wait: a repeating
// status check with a hard ceiling, both driven by one goroutine and
// cancelled together so no check can fire after teardown.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type State string

const (
	StateIdle             State = "idle"
	StateAwaitingApproval State = "awaiting_approval"
	StatePolling          State = "polling"
)

const (
	DefaultInterval = 2 * time.Second
	DefaultCeiling  = 300 * time.Second
)

// CheckFunc reports whether the pending authorization has been approved.
type CheckFunc func(ctx context.Context) (approved bool, err error)

type ApprovalPoller struct {
	check      CheckFunc
	onApproved func()
	interval   time.Duration
	ceiling    time.Duration
	logger     *slog.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

func New(check CheckFunc, onApproved func(), logger *slog.Logger) *ApprovalPoller {
	return &ApprovalPoller{
		check:      check,
		onApproved: onApproved,
		interval:   DefaultInterval,
		ceiling:    DefaultCeiling,
		logger:     logger,
		state:      StateIdle,
	}
}

// WithTimings overrides the check interval and the overall ceiling.
func (p *ApprovalPoller) WithTimings(interval, ceiling time.Duration) *ApprovalPoller {
	p.interval = interval
	p.ceiling = ceiling
	return p
}

func (p *ApprovalPoller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Begin records that an approval URL has been handed to the user. Delivery
// of the URL itself (tab, QR, deep link) is the caller's concern.
func (p *ApprovalPoller) Begin() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.state = StateAwaitingApproval
}

// Confirm starts polling after the user claims to have approved. An already
// running loop is replaced, never doubled. The loop ends on approval (state
// back to idle, callback fired), on the ceiling (silent stop, state stays
// polling so a fresh Confirm can retry), or on Stop/ctx cancellation.
func (p *ApprovalPoller) Confirm(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.state = StatePolling

	// One context bounds both the interval loop and the ceiling.
	loopCtx, cancel := context.WithTimeout(ctx, p.ceiling)
	p.cancel = cancel
	done := make(chan struct{})
	p.done = done

	go p.loop(loopCtx, cancel, done)
}

func (p *ApprovalPoller) loop(ctx context.Context, cancel context.CancelFunc, done chan struct{}) {
	defer close(done)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		approved, err := p.check(ctx)
		if err != nil {
			// Transient failures ride the next tick; only the ceiling
			// bounds repeated failure.
			p.logger.Warn("approval check failed", "error", err)
		} else if approved {
			p.mu.Lock()
			if p.done == done {
				p.state = StateIdle
				p.cancel = nil
				p.done = nil
			}
			p.mu.Unlock()
			if p.onApproved != nil {
				p.onApproved()
			}
			return
		}

		select {
		case <-ctx.Done():
			// Ceiling reached or torn down; stay poll-eligible either way.
			return
		case <-ticker.C:
		}
	}
}

// Stop tears the poller down. Both the interval and the ceiling are
// cancelled through the same context; after Stop returns no check runs.
func (p *ApprovalPoller) Stop() {
	p.mu.Lock()
	done := p.done
	p.stopLocked()
	p.state = StateIdle
	p.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (p *ApprovalPoller) stopLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
		p.done = nil
	}
}
