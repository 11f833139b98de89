package workers

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/cardrail/cardrail-api/internal/logger"
	"github.com/cardrail/cardrail-api/internal/mocks"
)

func init() {
	logger.InitLogger()
}

func newTestProcessor(ctrl *gomock.Controller) (*ExecutionProcessor, *mocks.MockSubmitter) {
	querier := mocks.NewMockQuerier(ctrl)
	submitter := mocks.NewMockSubmitter(ctrl)
	return NewExecutionProcessor(querier, nil, nil, submitter, 0, 4), submitter
}

func TestExecutionProcessor_ParkedTaskStaysDeduplicated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ep, submitter := newTestProcessor(ctrl)
	defer ep.cancel()

	submitter.EXPECT().HealthCheck(gomock.Any()).Return(errors.New("connection refused"))

	task := ExecutionTask{StackID: uuid.New(), SubCardID: uuid.New()}

	assert.NoError(t, ep.QueueExecution(task))
	<-ep.tasks // a worker picks the task up

	assert.Error(t, ep.processExecution(task))

	// The parked task keeps its in-flight mark, so re-queueing the same
	// sub-card is a no-op until the breaker replays it.
	assert.NoError(t, ep.QueueExecution(task))
	assert.Len(t, ep.tasks, 0)

	ep.mu.Lock()
	defer ep.mu.Unlock()
	assert.Len(t, ep.pendingTasks, 1)
	assert.Contains(t, ep.inFlight, task.SubCardID)
}

func TestExecutionProcessor_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ep, submitter := newTestProcessor(ctrl)
	defer ep.cancel()

	submitter.EXPECT().HealthCheck(gomock.Any()).
		Return(errors.New("connection refused")).Times(3)

	for i := 0; i < 3; i++ {
		task := ExecutionTask{StackID: uuid.New(), SubCardID: uuid.New()}
		assert.Error(t, ep.processExecution(task))
	}

	ep.mu.Lock()
	open := ep.circuitOpen
	ep.mu.Unlock()
	assert.True(t, open)

	// With the breaker open new tasks are parked instead of entering the queue.
	task := ExecutionTask{StackID: uuid.New(), SubCardID: uuid.New()}
	assert.NoError(t, ep.QueueExecution(task))
	assert.Len(t, ep.tasks, 0)

	ep.mu.Lock()
	defer ep.mu.Unlock()
	assert.Contains(t, ep.inFlight, task.SubCardID)
}
