package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pipedeck/pipedeck/pkg/models"
	"github.com/pipedeck/pipedeck/pkg/persistence"
)

// Simulator drives stored executions through their lifecycle so the console
// has something to poll against without a real engine. Each tick advances
// every non-terminal execution one step: pending executions start running,
// running executions finish their next task, and an execution whose tasks
// are all done completes.
type Simulator struct {
	persistence persistence.Persistence
	logger      *slog.Logger
	interval    time.Duration

	mu     sync.Mutex
	ticker *time.Ticker
	done   chan struct{}
}

// NewSimulator creates a simulator advancing executions every interval.
func NewSimulator(persistence persistence.Persistence, logger *slog.Logger, interval time.Duration) *Simulator {
	return &Simulator{
		persistence: persistence,
		logger:      logger,
		interval:    interval,
	}
}

// Start launches the tick loop. Calling Start on a running simulator is a
// no-op.
func (s *Simulator) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.interval)
	s.done = make(chan struct{})

	go s.run(ctx, s.ticker, s.done)
}

// Stop halts the tick loop. Idempotent.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker == nil {
		return
	}

	s.ticker.Stop()
	close(s.done)
	s.ticker = nil
}

func (s *Simulator) run(ctx context.Context, ticker *time.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Simulator) tick(ctx context.Context) {
	executions, err := s.persistence.ExecutionRepository().List(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "simulator failed to list executions", "error", err)

		return
	}

	for _, execution := range executions {
		if execution.Status.IsTerminal() {
			continue
		}

		s.advance(execution)

		if err := s.persistence.ExecutionRepository().Save(ctx, execution); err != nil {
			s.logger.WarnContext(ctx, "simulator failed to save execution",
				"execution_id", execution.ID, "error", err)
		}
	}
}

// advance mutates the stored record; the API layer still hands out each
// state as a fresh snapshot.
func (s *Simulator) advance(execution *models.Execution) {
	now := time.Now().UTC()

	if execution.Status == models.ExecutionStatusPending {
		execution.Status = models.ExecutionStatusRunning
		execution.StartedAt = &now

		if len(execution.TaskResults) > 0 {
			execution.TaskResults[0].Status = models.ExecutionStatusRunning
			execution.TaskResults[0].StartedAt = &now
		}

		return
	}

	// Finish the task currently running and start the next one.
	for i := range execution.TaskResults {
		result := &execution.TaskResults[i]
		if result.Status.IsTerminal() {
			continue
		}

		result.Status = models.ExecutionStatusCompleted
		result.CompletedAt = &now

		if result.StartedAt != nil {
			result.DurationMS = now.Sub(*result.StartedAt).Milliseconds()
		}

		if i+1 < len(execution.TaskResults) {
			execution.TaskResults[i+1].Status = models.ExecutionStatusRunning
			execution.TaskResults[i+1].StartedAt = &now

			return
		}

		break
	}

	execution.Status = models.ExecutionStatusCompleted
	execution.CompletedAt = &now
}
