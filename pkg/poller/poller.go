// Package poller tracks one workflow execution by repeatedly fetching its
// snapshot until it reaches a terminal status, a fetch fails, or the caller
// stops it.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pipedeck/pipedeck/pkg/models"
)

// DefaultInterval is the delay between consecutive fetches.
const DefaultInterval = 2 * time.Second

// ExecutionGetter is the external "get execution by id" collaborator.
type ExecutionGetter interface {
	GetExecution(ctx context.Context, id string) (*models.Execution, error)
}

// Poller polls one execution id. Fetches are strictly sequential: the next
// fetch is armed only after the previous one returns, so requests for the
// same id never overlap even when a response outlives the interval.
//
// Results arriving after Stop or after the bound id changed are discarded;
// every completion checks its generation against the poller's before
// committing anything.
type Poller struct {
	getter   ExecutionGetter
	interval time.Duration
	logger   *slog.Logger
	onUpdate func(*models.Execution)

	mu          sync.Mutex
	executionID string
	snapshot    *models.Execution
	errMsg      string
	polling     bool
	stopped     bool
	generation  int
	timer       *time.Timer
	done        chan struct{}
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the delay between fetches.
func WithInterval(interval time.Duration) Option {
	return func(p *Poller) {
		p.interval = interval
	}
}

// WithLogger sets the poller's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) {
		p.logger = logger
	}
}

// WithOnUpdate registers a callback invoked after each snapshot replacement.
// The callback runs outside the poller's lock.
func WithOnUpdate(callback func(*models.Execution)) Option {
	return func(p *Poller) {
		p.onUpdate = callback
	}
}

// New creates an idle poller; nothing is fetched until Bind.
func New(getter ExecutionGetter, opts ...Option) *Poller {
	p := &Poller{
		getter:   getter,
		interval: DefaultInterval,
		logger:   slog.Default(),
		done:     closedChan(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)

	return ch
}

// Bind points the poller at an execution id, clears any previous snapshot
// and error, and triggers the first fetch immediately. Binding "" returns
// the poller to idle. A rebind invalidates every in-flight fetch and armed
// timer of the previous id.
func (p *Poller) Bind(ctx context.Context, id string) {
	p.mu.Lock()

	p.generation++
	generation := p.generation

	p.cancelTimerLocked()
	p.closeDoneLocked()

	p.executionID = id
	p.snapshot = nil
	p.errMsg = ""
	p.stopped = false

	if id == "" {
		p.polling = false
		p.mu.Unlock()

		return
	}

	p.polling = true
	p.done = make(chan struct{})
	p.mu.Unlock()

	go p.fetch(ctx, generation, id)
}

// Restart clears the error and snapshot and re-binds the same execution id
// as if freshly bound. It is the only way to resume after a fetch failure.
func (p *Poller) Restart(ctx context.Context) {
	p.mu.Lock()
	id := p.executionID
	p.mu.Unlock()

	p.Bind(ctx, id)
}

// Stop halts polling and cancels any armed timer. It is idempotent and safe
// to call from any state; consumers must call it on teardown.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopped = true
	p.polling = false
	p.cancelTimerLocked()
	p.closeDoneLocked()
}

// Snapshot returns the most recent execution snapshot, or nil.
func (p *Poller) Snapshot() *models.Execution {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.snapshot
}

// Err returns the message of the fetch failure that halted polling, or "".
func (p *Poller) Err() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.errMsg
}

// IsPolling reports whether a fetch is outstanding or scheduled.
func (p *Poller) IsPolling() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.polling
}

// Done returns a channel closed once polling has halted: terminal snapshot,
// fetch failure, Stop, or idle bind. An idle poller's channel is already
// closed.
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.done
}

func (p *Poller) fetch(ctx context.Context, generation int, id string) {
	snapshot, err := p.getter.GetExecution(ctx, id)

	p.mu.Lock()

	// A Stop or rebind while the request was in flight makes this result
	// stale; it must not resurrect old state.
	if generation != p.generation || p.stopped {
		p.mu.Unlock()

		return
	}

	if err != nil {
		p.errMsg = err.Error()
		p.polling = false
		p.cancelTimerLocked()
		p.closeDoneLocked()
		p.mu.Unlock()

		p.logger.WarnContext(ctx, "execution poll failed", "execution_id", id, "error", err)

		return
	}

	p.snapshot = snapshot

	if snapshot.Status.IsTerminal() {
		p.polling = false
		p.cancelTimerLocked()
		p.closeDoneLocked()
		p.mu.Unlock()

		p.notify(snapshot)

		return
	}

	p.timer = time.AfterFunc(p.interval, func() {
		p.mu.Lock()
		if generation != p.generation || p.stopped {
			p.mu.Unlock()

			return
		}
		p.mu.Unlock()

		p.fetch(ctx, generation, id)
	})
	p.mu.Unlock()

	p.notify(snapshot)
}

func (p *Poller) notify(snapshot *models.Execution) {
	if p.onUpdate != nil {
		p.onUpdate(snapshot)
	}
}

func (p *Poller) cancelTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Poller) closeDoneLocked() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}
