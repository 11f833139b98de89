package services_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/logger"
	"github.com/cardrail/cardrail-api/internal/mocks"
	"github.com/cardrail/cardrail-api/internal/services"
)

func init() {
	logger.InitLogger()
}

const usdcAddress = "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"

func TestSpendingLimitService_CheckLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuerier := mocks.NewMockQuerier(ctrl)
	service := services.NewSpendingLimitService(mockQuerier)
	ctx := context.Background()

	cardID := uuid.New()
	today := pgtype.Date{Time: time.Now().UTC(), Valid: true}
	staleDay := pgtype.Date{Time: time.Now().UTC().AddDate(0, 0, -2), Valid: true}

	tests := []struct {
		name        string
		amount      *big.Int
		setupMocks  func()
		wantAllowed bool
		wantSpent   string
		wantErr     bool
	}{
		{
			name:   "allows spend within limit",
			amount: big.NewInt(400),
			setupMocks: func() {
				mockQuerier.EXPECT().GetSpendingLimit(ctx, gomock.Any()).
					Return(db.SpendingLimit{CardID: cardID, TokenAddress: usdcAddress, DailyLimit: "1000"}, nil)
				mockQuerier.EXPECT().GetSpendingRecord(ctx, gomock.Any()).
					Return(db.SpendingRecord{DailySpent: "500", TotalSpent: "500", LastResetDate: today}, nil)
			},
			wantAllowed: true,
			wantSpent:   "500",
		},
		{
			name:   "denies spend that would cross the limit",
			amount: big.NewInt(600),
			setupMocks: func() {
				mockQuerier.EXPECT().GetSpendingLimit(ctx, gomock.Any()).
					Return(db.SpendingLimit{CardID: cardID, TokenAddress: usdcAddress, DailyLimit: "1000"}, nil)
				mockQuerier.EXPECT().GetSpendingRecord(ctx, gomock.Any()).
					Return(db.SpendingRecord{DailySpent: "500", TotalSpent: "500", LastResetDate: today}, nil)
			},
			wantAllowed: false,
			wantSpent:   "500",
		},
		{
			name:   "allows spend exactly at the limit",
			amount: big.NewInt(500),
			setupMocks: func() {
				mockQuerier.EXPECT().GetSpendingLimit(ctx, gomock.Any()).
					Return(db.SpendingLimit{CardID: cardID, TokenAddress: usdcAddress, DailyLimit: "1000"}, nil)
				mockQuerier.EXPECT().GetSpendingRecord(ctx, gomock.Any()).
					Return(db.SpendingRecord{DailySpent: "500", TotalSpent: "500", LastResetDate: today}, nil)
			},
			wantAllowed: true,
			wantSpent:   "500",
		},
		{
			name:   "treats a stale record as zero spent",
			amount: big.NewInt(900),
			setupMocks: func() {
				mockQuerier.EXPECT().GetSpendingLimit(ctx, gomock.Any()).
					Return(db.SpendingLimit{CardID: cardID, TokenAddress: usdcAddress, DailyLimit: "1000"}, nil)
				mockQuerier.EXPECT().GetSpendingRecord(ctx, gomock.Any()).
					Return(db.SpendingRecord{DailySpent: "950", TotalSpent: "5000", LastResetDate: staleDay}, nil)
			},
			wantAllowed: true,
			wantSpent:   "0",
		},
		{
			name:   "no configured limit means unrestricted",
			amount: big.NewInt(1_000_000),
			setupMocks: func() {
				mockQuerier.EXPECT().GetSpendingLimit(ctx, gomock.Any()).
					Return(db.SpendingLimit{}, pgx.ErrNoRows)
			},
			wantAllowed: true,
		},
		{
			name:   "no spending record yet means zero spent",
			amount: big.NewInt(1000),
			setupMocks: func() {
				mockQuerier.EXPECT().GetSpendingLimit(ctx, gomock.Any()).
					Return(db.SpendingLimit{CardID: cardID, TokenAddress: usdcAddress, DailyLimit: "1000"}, nil)
				mockQuerier.EXPECT().GetSpendingRecord(ctx, gomock.Any()).
					Return(db.SpendingRecord{}, pgx.ErrNoRows)
			},
			wantAllowed: true,
			wantSpent:   "0",
		},
		{
			name:   "database error propagates",
			amount: big.NewInt(100),
			setupMocks: func() {
				mockQuerier.EXPECT().GetSpendingLimit(ctx, gomock.Any()).
					Return(db.SpendingLimit{}, errors.New("connection reset"))
			},
			wantErr: true,
		},
		{
			name:       "rejects non-positive amount",
			amount:     big.NewInt(0),
			setupMocks: func() {},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMocks()

			decision, err := service.CheckLimit(ctx, cardID, usdcAddress, tt.amount)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, decision)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantAllowed, decision.Allowed)
			if tt.wantSpent != "" {
				assert.Equal(t, tt.wantSpent, decision.Spent.String())
			}
			if !tt.wantAllowed {
				assert.Contains(t, decision.Reason, "daily spending limit exceeded")
			}
		})
	}
}

// A denial must not modify the stored record; only increments write. The mock
// controller fails the test if any unexpected write call happens.
func TestSpendingLimitService_CheckNeverPersistsReset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuerier := mocks.NewMockQuerier(ctrl)
	service := services.NewSpendingLimitService(mockQuerier)
	ctx := context.Background()

	cardID := uuid.New()
	staleDay := pgtype.Date{Time: time.Now().UTC().AddDate(0, 0, -3), Valid: true}

	mockQuerier.EXPECT().GetSpendingLimit(ctx, gomock.Any()).
		Return(db.SpendingLimit{CardID: cardID, TokenAddress: usdcAddress, DailyLimit: "100"}, nil).Times(2)
	mockQuerier.EXPECT().GetSpendingRecord(ctx, gomock.Any()).
		Return(db.SpendingRecord{DailySpent: "90", TotalSpent: "90", LastResetDate: staleDay}, nil).Times(2)

	// Two consecutive checks over a stale record both see zero spent.
	for i := 0; i < 2; i++ {
		decision, err := service.CheckLimit(ctx, cardID, usdcAddress, big.NewInt(100))
		assert.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, "0", decision.Spent.String())
	}
}

func TestSpendingLimitService_Increment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuerier := mocks.NewMockQuerier(ctrl)
	service := services.NewSpendingLimitService(mockQuerier)
	ctx := context.Background()

	cardID := uuid.New()

	t.Run("applies increment through the locked transaction", func(t *testing.T) {
		mockQuerier.EXPECT().IncrementSpending(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, arg db.IncrementSpendingParams) (db.SpendingRecord, error) {
				assert.Equal(t, cardID, arg.CardID)
				assert.Equal(t, "250", arg.Amount)
				return db.SpendingRecord{DailySpent: "750", TotalSpent: "1750"}, nil
			})

		record, err := service.Increment(ctx, cardID, usdcAddress, big.NewInt(250))
		assert.NoError(t, err)
		assert.Equal(t, "750", record.DailySpent)
	})

	t.Run("rejects non-positive increment", func(t *testing.T) {
		_, err := service.Increment(ctx, cardID, usdcAddress, big.NewInt(-5))
		assert.Error(t, err)
	})
}

func TestSpendingLimitService_CheckSubCardLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := services.NewSpendingLimitService(mocks.NewMockQuerier(ctrl))

	today := pgtype.Date{Time: time.Now().UTC(), Valid: true}
	staleDay := pgtype.Date{Time: time.Now().UTC().AddDate(0, 0, -2), Valid: true}

	tests := []struct {
		name        string
		subCard     db.SubCard
		amount      *big.Int
		wantAllowed bool
	}{
		{
			name:        "no strategy limit passes",
			subCard:     db.SubCard{ID: uuid.New(), CurrentSpent: "0", TotalSpent: "0"},
			amount:      big.NewInt(1_000_000),
			wantAllowed: true,
		},
		{
			name: "denies when strategy cap reached today",
			subCard: db.SubCard{
				ID:            uuid.New(),
				DailyLimit:    pgtype.Text{String: "100", Valid: true},
				CurrentSpent:  "80",
				TotalSpent:    "80",
				LastSpentDate: today,
			},
			amount:      big.NewInt(30),
			wantAllowed: false,
		},
		{
			name: "stale spend date re-bases to zero",
			subCard: db.SubCard{
				ID:            uuid.New(),
				DailyLimit:    pgtype.Text{String: "100", Valid: true},
				CurrentSpent:  "80",
				TotalSpent:    "80",
				LastSpentDate: staleDay,
			},
			amount:      big.NewInt(100),
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := service.CheckSubCardLimit(tt.subCard, usdcAddress, tt.amount)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantAllowed, decision.Allowed)
		})
	}
}
