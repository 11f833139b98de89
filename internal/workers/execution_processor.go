package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cardrail/cardrail-api/internal/client/bundler"
	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/logger"
	"github.com/cardrail/cardrail-api/internal/services"
)

// ExecutionTask is one scheduled strategy execution to be processed.
type ExecutionTask struct {
	StackID   uuid.UUID
	SubCardID uuid.UUID
}

// ExecutionProcessor drives scheduled DCA executions: a scheduler loop scans
// for due sub-cards and a worker pool runs them. A circuit breaker over the
// bundler's health endpoint parks tasks while the submission path is down
// instead of burning attempts against it.
type ExecutionProcessor struct {
	tasks       chan ExecutionTask
	queries     db.Querier
	executor    *services.ExecutionService
	stacks      *services.CardStackService
	submitter   bundler.Submitter
	workerCount int
	scanEvery   time.Duration
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc

	mu                  sync.Mutex
	circuitOpen         bool
	consecutiveFailures int
	failureThreshold    int
	resetTimeout        time.Duration
	lastFailureTime     time.Time
	pendingTasks        []ExecutionTask
	inFlight            map[uuid.UUID]struct{}
}

// NewExecutionProcessor creates a new execution processor with the given
// number of workers and queue buffer size.
func NewExecutionProcessor(
	queries db.Querier,
	executor *services.ExecutionService,
	stacks *services.CardStackService,
	submitter bundler.Submitter,
	workerCount int,
	bufferSize int,
) *ExecutionProcessor {
	ctx, cancel := context.WithCancel(context.Background())

	return &ExecutionProcessor{
		tasks:            make(chan ExecutionTask, bufferSize),
		queries:          queries,
		executor:         executor,
		stacks:           stacks,
		submitter:        submitter,
		workerCount:      workerCount,
		scanEvery:        time.Minute,
		ctx:              ctx,
		cancel:           cancel,
		failureThreshold: 3,
		resetTimeout:     5 * time.Minute,
		pendingTasks:     make([]ExecutionTask, 0),
		inFlight:         make(map[uuid.UUID]struct{}),
	}
}

// Start launches the scheduler loop, the health monitor, and the workers.
func (ep *ExecutionProcessor) Start() {
	logger.Info("Starting execution processor", zap.Int("worker_count", ep.workerCount))

	go ep.monitorBundlerHealth()
	go ep.schedulerLoop()

	for i := 0; i < ep.workerCount; i++ {
		workerID := i
		ep.wg.Add(1)

		go func() {
			defer ep.wg.Done()
			logger.Debug("Execution worker started", zap.Int("worker_id", workerID))

			for {
				select {
				case <-ep.ctx.Done():
					logger.Debug("Execution worker stopped", zap.Int("worker_id", workerID))
					return
				case task := <-ep.tasks:
					if err := ep.processExecution(task); err != nil {
						logger.Error("Failed to process scheduled execution",
							zap.Error(err),
							zap.String("sub_card_id", task.SubCardID.String()),
						)
					}
				}
			}
		}()
	}
}

// Stop stops the execution processor and waits for in-flight work.
func (ep *ExecutionProcessor) Stop() {
	logger.Info("Stopping execution processor")
	ep.cancel()
	ep.wg.Wait()
	logger.Info("Execution processor stopped")
}

// QueueExecution adds a task to the queue. While the circuit breaker is open
// tasks are parked and replayed after the bundler recovers.
func (ep *ExecutionProcessor) QueueExecution(task ExecutionTask) error {
	ep.mu.Lock()

	if _, dup := ep.inFlight[task.SubCardID]; dup {
		ep.mu.Unlock()
		logger.Debug("Sub-card already queued, skipping",
			zap.String("sub_card_id", task.SubCardID.String()))
		return nil
	}

	if ep.circuitOpen {
		logger.Info("Circuit breaker open, storing task for later",
			zap.String("sub_card_id", task.SubCardID.String()),
		)
		ep.inFlight[task.SubCardID] = struct{}{}
		ep.pendingTasks = append(ep.pendingTasks, task)
		ep.mu.Unlock()
		return nil
	}
	ep.inFlight[task.SubCardID] = struct{}{}
	ep.mu.Unlock()

	select {
	case ep.tasks <- task:
		logger.Debug("Execution task queued",
			zap.String("sub_card_id", task.SubCardID.String()),
		)
		return nil
	case <-time.After(5 * time.Second):
		ep.clearInFlight(task.SubCardID)
		return errors.New("execution queue is full, try again later")
	}
}

func (ep *ExecutionProcessor) clearInFlight(subCardID uuid.UUID) {
	ep.mu.Lock()
	delete(ep.inFlight, subCardID)
	ep.mu.Unlock()
}

// schedulerLoop periodically scans for due sub-cards and enqueues them.
func (ep *ExecutionProcessor) schedulerLoop() {
	ticker := time.NewTicker(ep.scanEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ep.ctx.Done():
			return
		case <-ticker.C:
			ep.scanDueSubCards()
		}
	}
}

func (ep *ExecutionProcessor) scanDueSubCards() {
	ctx, cancel := context.WithTimeout(ep.ctx, 30*time.Second)
	defer cancel()

	due, err := ep.queries.ListDueSubCards(ctx, 100)
	if err != nil {
		logger.Error("Failed to scan due sub-cards", zap.Error(err))
		return
	}
	for _, subCard := range due {
		if err := ep.QueueExecution(ExecutionTask{
			StackID:   subCard.StackID,
			SubCardID: subCard.ID,
		}); err != nil {
			logger.Warn("Could not queue due sub-card",
				zap.String("sub_card_id", subCard.ID.String()),
				zap.Error(err))
		}
	}
}

// processExecution runs one scheduled execution end to end. A task parked by
// the circuit breaker keeps its in-flight mark so replays stay deduplicated;
// the mark is cleared on the replay path when the breaker resets.
func (ep *ExecutionProcessor) processExecution(task ExecutionTask) error {
	ctx, cancel := context.WithTimeout(ep.ctx, 3*time.Minute)
	defer cancel()

	if err := ep.submitter.HealthCheck(ctx); err != nil {
		logger.Warn("Bundler unavailable, incrementing failure counter",
			zap.Error(err),
			zap.String("sub_card_id", task.SubCardID.String()),
		)

		ep.mu.Lock()
		ep.consecutiveFailures++
		ep.lastFailureTime = time.Now()

		if ep.consecutiveFailures >= ep.failureThreshold && !ep.circuitOpen {
			logger.Warn("Opening circuit breaker due to consecutive failures",
				zap.Int("failure_count", ep.consecutiveFailures),
				zap.Int("threshold", ep.failureThreshold),
			)
			ep.circuitOpen = true
		}
		ep.inFlight[task.SubCardID] = struct{}{}
		ep.pendingTasks = append(ep.pendingTasks, task)
		ep.mu.Unlock()

		return errors.New("bundler unavailable")
	}
	defer ep.clearInFlight(task.SubCardID)

	ep.mu.Lock()
	if ep.consecutiveFailures > 0 {
		ep.consecutiveFailures = 0
		logger.Info("Reset consecutive failures counter, bundler is available")
	}
	ep.mu.Unlock()

	subCard, err := ep.queries.GetSubCard(ctx, task.SubCardID)
	if err != nil {
		return err
	}

	result, err := ep.executor.Execute(ctx, services.ExecuteParams{
		StackID:   task.StackID,
		SubCardID: task.SubCardID,
	})
	if err != nil {
		logger.Error("Scheduled execution rejected before submission",
			zap.Error(err),
			zap.String("sub_card_id", task.SubCardID.String()),
		)
	} else if !result.Success {
		logger.Warn("Scheduled execution did not fully complete",
			zap.String("sub_card_id", task.SubCardID.String()),
			zap.String("transfer_tx", result.TransferTxHash),
			zap.String("error", result.Error),
		)
	} else {
		logger.Info("Scheduled execution completed",
			zap.String("sub_card_id", task.SubCardID.String()),
			zap.String("transfer_tx", result.TransferTxHash),
			zap.String("swap_tx", result.SwapTxHash),
		)
	}

	// Advance the schedule regardless of outcome; each invocation is a
	// single attempt and the next slot is the retry cadence.
	if err := ep.stacks.ScheduleNext(ctx, subCard); err != nil {
		logger.Error("Failed to advance sub-card schedule",
			zap.Error(err),
			zap.String("sub_card_id", task.SubCardID.String()),
		)
		return err
	}
	return nil
}

// monitorBundlerHealth periodically probes the bundler while the circuit
// breaker is open and replays parked tasks once it recovers.
func (ep *ExecutionProcessor) monitorBundlerHealth() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ep.ctx.Done():
			return
		case <-ticker.C:
			ep.mu.Lock()
			if !ep.circuitOpen {
				ep.mu.Unlock()
				continue
			}
			if time.Since(ep.lastFailureTime) < ep.resetTimeout {
				ep.mu.Unlock()
				continue
			}
			ep.mu.Unlock()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := ep.submitter.HealthCheck(ctx)
			cancel()

			if err != nil {
				continue
			}

			ep.mu.Lock()
			if !ep.circuitOpen {
				ep.mu.Unlock()
				continue
			}
			logger.Info("Bundler is available, resetting circuit breaker")
			ep.circuitOpen = false
			ep.consecutiveFailures = 0
			pending := ep.pendingTasks
			ep.pendingTasks = make([]ExecutionTask, 0)
			for _, task := range pending {
				delete(ep.inFlight, task.SubCardID)
			}
			ep.mu.Unlock()

			for _, task := range pending {
				logger.Info("Requeuing pending task after circuit breaker reset",
					zap.String("sub_card_id", task.SubCardID.String()),
				)
				_ = ep.QueueExecution(task)
			}
		}
	}
}
