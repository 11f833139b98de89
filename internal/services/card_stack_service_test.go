package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/mocks"
	"github.com/cardrail/cardrail-api/internal/services"
)

func newStackService(querier *mocks.MockQuerier) *services.CardStackService {
	return services.NewCardStackService(querier, services.NewActivityService(querier, nil, ""))
}

func validStackParams(userID uuid.UUID) services.CreateCardStackParams {
	return services.CreateCardStackParams{
		UserID:             userID,
		ChainID:            testChainID,
		Name:               "dca-portfolio",
		TotalBudget:        "10000000000",
		PeriodSeconds:      30 * 24 * 3600,
		SourceTokenAddress: usdcAddress,
		TargetTokenAddress: wethAddress,
		AmountPerExecution: "50000000",
		SubCards: []services.SubCardInput{
			{Strategy: "dca-daily", AllocationPercent: 60, IntervalSeconds: 86400, DailyLimit: "100000000"},
			{Strategy: "dip-buyer", AllocationPercent: 40, IntervalSeconds: 3600},
		},
	}
}

func TestCardStackService_CreateCardStack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuerier := mocks.NewMockQuerier(ctrl)
	service := newStackService(mockQuerier)
	ctx := context.Background()

	userID := uuid.New()
	stackID := uuid.New()

	t.Run("creates the stack and its sub-cards", func(t *testing.T) {
		mockQuerier.EXPECT().CreateCardStack(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, arg db.CreateCardStackParams) (db.CardStack, error) {
				assert.Equal(t, "active", arg.Status)
				assert.Equal(t, wethAddress, arg.TargetTokenAddress.String)
				return db.CardStack{ID: stackID, UserID: arg.UserID, Name: arg.Name}, nil
			})
		mockQuerier.EXPECT().CreateSubCard(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, arg db.CreateSubCardParams) (db.SubCard, error) {
				assert.Equal(t, stackID, arg.StackID)
				assert.True(t, arg.NextExecutionAt.Valid)
				return db.SubCard{ID: uuid.New(), StackID: arg.StackID, Strategy: arg.Strategy}, nil
			}).Times(2)
		mockQuerier.EXPECT().CreateActivityLog(ctx, gomock.Any()).Return(db.ActivityLog{}, nil)

		created, err := service.CreateCardStack(ctx, validStackParams(userID))
		assert.NoError(t, err)
		assert.Len(t, created.SubCards, 2)
	})

	t.Run("rejects allocations above 100 percent", func(t *testing.T) {
		params := validStackParams(userID)
		params.SubCards[0].AllocationPercent = 70
		params.SubCards[1].AllocationPercent = 40

		_, err := service.CreateCardStack(ctx, params)
		var cfgErr *services.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, err.Error(), "must not exceed 100%")
	})

	t.Run("rejects a non-positive interval", func(t *testing.T) {
		params := validStackParams(userID)
		params.SubCards[1].IntervalSeconds = 0

		_, err := service.CreateCardStack(ctx, params)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "interval must be positive")
	})

	t.Run("rejects a malformed budget", func(t *testing.T) {
		params := validStackParams(userID)
		params.TotalBudget = "lots"

		_, err := service.CreateCardStack(ctx, params)
		assert.Error(t, err)
	})

	t.Run("rejects a missing source token", func(t *testing.T) {
		params := validStackParams(userID)
		params.SourceTokenAddress = ""

		_, err := service.CreateCardStack(ctx, params)
		assert.Error(t, err)
	})
}

func TestCardStackService_ScheduleNext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuerier := mocks.NewMockQuerier(ctrl)
	service := newStackService(mockQuerier)
	ctx := context.Background()

	t.Run("anchors to the scheduled slot", func(t *testing.T) {
		scheduled := time.Now().UTC().Add(-10 * time.Minute)
		subCard := db.SubCard{
			ID:              uuid.New(),
			IntervalSeconds: 3600,
			NextExecutionAt: pgtype.Timestamptz{Time: scheduled, Valid: true},
		}

		mockQuerier.EXPECT().UpdateSubCardNextExecution(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, arg db.UpdateSubCardNextExecutionParams) error {
				// Next slot is scheduled+interval, not now+interval, so a slow
				// run does not push the cadence later.
				assert.Equal(t, scheduled.Add(time.Hour), arg.NextExecutionAt.Time)
				return nil
			})

		assert.NoError(t, service.ScheduleNext(ctx, subCard))
	})

	t.Run("skips slots missed during an outage", func(t *testing.T) {
		scheduled := time.Now().UTC().Add(-3*time.Hour - 10*time.Minute)
		subCard := db.SubCard{
			ID:              uuid.New(),
			IntervalSeconds: 3600,
			NextExecutionAt: pgtype.Timestamptz{Time: scheduled, Valid: true},
		}

		mockQuerier.EXPECT().UpdateSubCardNextExecution(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, arg db.UpdateSubCardNextExecutionParams) error {
				// The three missed hourly slots are not replayed: the next
				// slot is the first one on the original cadence that lies in
				// the future.
				assert.Equal(t, scheduled.Add(4*time.Hour), arg.NextExecutionAt.Time)
				return nil
			})

		assert.NoError(t, service.ScheduleNext(ctx, subCard))
	})

	t.Run("re-anchors to now after a long outage", func(t *testing.T) {
		stale := time.Now().UTC().Add(-72 * time.Hour)
		subCard := db.SubCard{
			ID:              uuid.New(),
			IntervalSeconds: 3600,
			NextExecutionAt: pgtype.Timestamptz{Time: stale, Valid: true},
		}

		mockQuerier.EXPECT().UpdateSubCardNextExecution(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, arg db.UpdateSubCardNextExecutionParams) error {
				// A three-day-old slot would schedule into the past; the base
				// resets to the present instead.
				assert.True(t, arg.NextExecutionAt.Time.After(time.Now().UTC()))
				return nil
			})

		assert.NoError(t, service.ScheduleNext(ctx, subCard))
	})
}
