package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/logger"
)

// SpendingLimitService gatekeeps card spend against configured daily limits
// with lazy UTC-day resets. It is the only serialization point for concurrent
// executions of the same card.
type SpendingLimitService struct {
	queries db.Querier
	logger  *zap.Logger
	now     func() time.Time
}

// NewSpendingLimitService creates a new spending limit service
func NewSpendingLimitService(queries db.Querier) *SpendingLimitService {
	return &SpendingLimitService{
		queries: queries,
		logger:  logger.Log,
		now:     time.Now,
	}
}

// LimitDecision is the outcome of a limit check.
type LimitDecision struct {
	Allowed   bool
	Reason    string
	Limit     *big.Int
	Spent     *big.Int
	Requested *big.Int
}

// CheckLimit decides whether a spend of amount may proceed for (card, token).
// A card with no configured limit for the token is unrestricted; that is an
// explicit decision made at card creation, recorded via activity logging
// there. Checks never persist resets, only increments do.
func (s *SpendingLimitService) CheckLimit(ctx context.Context, cardID uuid.UUID, tokenAddress string, amount *big.Int) (*LimitDecision, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("spend amount must be positive")
	}

	limit, err := s.queries.GetSpendingLimit(ctx, db.GetSpendingLimitParams{
		CardID:       cardID,
		TokenAddress: tokenAddress,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &LimitDecision{Allowed: true, Reason: "no limit configured", Requested: amount}, nil
		}
		return nil, fmt.Errorf("failed to load spending limit: %w", err)
	}

	limitAmount, ok := new(big.Int).SetString(limit.DailyLimit, 10)
	if !ok {
		return nil, fmt.Errorf("corrupt daily limit %q for card %s", limit.DailyLimit, cardID)
	}

	spent, err := s.effectiveDailySpent(ctx, cardID, tokenAddress)
	if err != nil {
		return nil, err
	}

	projected := new(big.Int).Add(spent, amount)
	if projected.Cmp(limitAmount) > 0 {
		limitErr := &LimitExceededError{
			TokenAddress: tokenAddress,
			Limit:        limitAmount,
			Spent:        spent,
			Requested:    amount,
		}
		s.logger.Info("Spend denied by daily limit",
			zap.String("card_id", cardID.String()),
			zap.String("token", tokenAddress),
			zap.String("limit", limitAmount.String()),
			zap.String("spent", spent.String()),
			zap.String("requested", amount.String()),
		)
		return &LimitDecision{
			Allowed:   false,
			Reason:    limitErr.Error(),
			Limit:     limitAmount,
			Spent:     spent,
			Requested: amount,
		}, nil
	}

	return &LimitDecision{
		Allowed:   true,
		Limit:     limitAmount,
		Spent:     spent,
		Requested: amount,
	}, nil
}

// effectiveDailySpent returns today's spent amount, treating records from a
// prior UTC day as zero without writing the reset back.
func (s *SpendingLimitService) effectiveDailySpent(ctx context.Context, cardID uuid.UUID, tokenAddress string) (*big.Int, error) {
	record, err := s.queries.GetSpendingRecord(ctx, db.GetSpendingRecordParams{
		CardID:       cardID,
		TokenAddress: tokenAddress,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return big.NewInt(0), nil
		}
		return nil, fmt.Errorf("failed to load spending record: %w", err)
	}

	if !record.LastResetDate.Valid || !db.SameUTCDay(record.LastResetDate.Time, s.now()) {
		return big.NewInt(0), nil
	}

	spent, ok := new(big.Int).SetString(record.DailySpent, 10)
	if !ok {
		return nil, fmt.Errorf("corrupt daily spent %q for card %s", record.DailySpent, cardID)
	}
	return spent, nil
}

// Increment applies a successful spend to the (card, token) record under a
// row-locked transaction.
func (s *SpendingLimitService) Increment(ctx context.Context, cardID uuid.UUID, tokenAddress string, amount *big.Int) (*db.SpendingRecord, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("increment amount must be positive")
	}

	record, err := s.queries.IncrementSpending(ctx, db.IncrementSpendingParams{
		CardID:       cardID,
		TokenAddress: tokenAddress,
		Amount:       amount.String(),
		Today:        s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to increment spending: %w", err)
	}

	s.logger.Debug("Spending incremented",
		zap.String("card_id", cardID.String()),
		zap.String("token", tokenAddress),
		zap.String("daily_spent", record.DailySpent),
		zap.String("total_spent", record.TotalSpent),
	)
	return &record, nil
}

// CheckSubCardLimit applies the narrower strategy-level daily limit layered
// on top of the card-level scope. A sub-card without a daily limit passes.
func (s *SpendingLimitService) CheckSubCardLimit(subCard db.SubCard, sourceToken string, amount *big.Int) (*LimitDecision, error) {
	if !subCard.DailyLimit.Valid || subCard.DailyLimit.String == "" {
		return &LimitDecision{Allowed: true, Reason: "no strategy limit configured", Requested: amount}, nil
	}

	limitAmount, ok := new(big.Int).SetString(subCard.DailyLimit.String, 10)
	if !ok {
		return nil, fmt.Errorf("corrupt daily limit %q for sub-card %s", subCard.DailyLimit.String, subCard.ID)
	}

	spent := big.NewInt(0)
	if subCard.LastSpentDate.Valid && db.SameUTCDay(subCard.LastSpentDate.Time, s.now()) {
		var parsed bool
		spent, parsed = new(big.Int).SetString(subCard.CurrentSpent, 10)
		if !parsed {
			return nil, fmt.Errorf("corrupt current spent %q for sub-card %s", subCard.CurrentSpent, subCard.ID)
		}
	}

	projected := new(big.Int).Add(spent, amount)
	if projected.Cmp(limitAmount) > 0 {
		limitErr := &LimitExceededError{
			TokenAddress: sourceToken,
			Limit:        limitAmount,
			Spent:        spent,
			Requested:    amount,
		}
		return &LimitDecision{
			Allowed:   false,
			Reason:    limitErr.Error(),
			Limit:     limitAmount,
			Spent:     spent,
			Requested: amount,
		}, nil
	}

	return &LimitDecision{Allowed: true, Limit: limitAmount, Spent: spent, Requested: amount}, nil
}

// IncrementSubCardSpend records a successful spend on the sub-card counters,
// re-basing the daily counter on day rollover.
func (s *SpendingLimitService) IncrementSubCardSpend(ctx context.Context, subCard db.SubCard, amount *big.Int) (*db.SubCard, error) {
	lastSpent := time.Time{}
	if subCard.LastSpentDate.Valid {
		lastSpent = subCard.LastSpentDate.Time
	}

	newDaily, newTotal, err := db.ApplyIncrement(subCard.CurrentSpent, subCard.TotalSpent, lastSpent, amount.String(), s.now())
	if err != nil {
		return nil, err
	}

	updated, err := s.queries.UpdateSubCardSpend(ctx, db.UpdateSubCardSpendParams{
		ID:            subCard.ID,
		CurrentSpent:  newDaily,
		TotalSpent:    newTotal,
		LastSpentDate: pgtype.Date{Time: s.now().UTC(), Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update sub-card spend: %w", err)
	}
	return &updated, nil
}
