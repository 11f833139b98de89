package services

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/logger"
)

// CardStackService manages budget envelopes and the strategy sub-cards
// inside them.
type CardStackService struct {
	queries  db.Querier
	activity *ActivityService
	logger   *zap.Logger
	now      func() time.Time
}

// NewCardStackService creates a new card stack service
func NewCardStackService(queries db.Querier, activity *ActivityService) *CardStackService {
	return &CardStackService{
		queries:  queries,
		activity: activity,
		logger:   logger.Log,
		now:      time.Now,
	}
}

// SubCardInput is one strategy allocation supplied at stack creation.
type SubCardInput struct {
	Strategy            string
	AllocationPercent   int32
	DailyLimit          string
	TargetTokenOverride string
	AmountPerExecution  string
	IntervalSeconds     int64
}

// CreateCardStackParams are the inputs for a new stack plus its sub-cards.
type CreateCardStackParams struct {
	UserID             uuid.UUID
	ChainID            int64
	Name               string
	TotalBudget        string
	PeriodSeconds      int64
	ExpiresAt          *time.Time
	SourceTokenAddress string
	TargetTokenAddress string
	AmountPerExecution string
	CardID             uuid.UUID
	SubCards           []SubCardInput
}

// CardStackWithSubCards pairs a stack with its strategy allocations.
type CardStackWithSubCards struct {
	Stack    db.CardStack
	SubCards []db.SubCard
}

// CreateCardStack validates the envelope and its allocations and persists
// them. Allocations across sibling sub-cards must not exceed 100%.
func (s *CardStackService) CreateCardStack(ctx context.Context, params CreateCardStackParams) (*CardStackWithSubCards, error) {
	if params.Name == "" {
		return nil, configErrorf("stack name must not be empty")
	}
	if params.SourceTokenAddress == "" {
		return nil, configErrorf("source token must be set")
	}
	for _, field := range []struct{ name, value string }{
		{"total budget", params.TotalBudget},
		{"amount per execution", params.AmountPerExecution},
	} {
		amount, ok := new(big.Int).SetString(field.value, 10)
		if !ok || amount.Sign() <= 0 {
			return nil, configErrorf("invalid %s %q", field.name, field.value)
		}
	}

	var totalAllocation int32
	for _, sub := range params.SubCards {
		if sub.Strategy == "" {
			return nil, configErrorf("sub-card strategy must not be empty")
		}
		if sub.AllocationPercent <= 0 || sub.AllocationPercent > 100 {
			return nil, configErrorf("allocation %d%% out of range for strategy %s", sub.AllocationPercent, sub.Strategy)
		}
		if sub.IntervalSeconds <= 0 {
			return nil, configErrorf("interval must be positive for strategy %s", sub.Strategy)
		}
		if sub.DailyLimit != "" {
			if _, ok := new(big.Int).SetString(sub.DailyLimit, 10); !ok {
				return nil, configErrorf("invalid daily limit %q for strategy %s", sub.DailyLimit, sub.Strategy)
			}
		}
		totalAllocation += sub.AllocationPercent
	}
	if totalAllocation > 100 {
		return nil, configErrorf("sub-card allocations total %d%%, must not exceed 100%%", totalAllocation)
	}

	var expiresAt pgtype.Timestamptz
	if params.ExpiresAt != nil {
		expiresAt = pgtype.Timestamptz{Time: params.ExpiresAt.UTC(), Valid: true}
	}
	var targetToken pgtype.Text
	if params.TargetTokenAddress != "" {
		targetToken = pgtype.Text{String: params.TargetTokenAddress, Valid: true}
	}
	var cardID pgtype.UUID
	if params.CardID != uuid.Nil {
		cardID = pgtype.UUID{Bytes: params.CardID, Valid: true}
	}

	stack, err := s.queries.CreateCardStack(ctx, db.CreateCardStackParams{
		UserID:             params.UserID,
		ChainID:            params.ChainID,
		Name:               params.Name,
		TotalBudget:        params.TotalBudget,
		PeriodSeconds:      params.PeriodSeconds,
		ExpiresAt:          expiresAt,
		SourceTokenAddress: params.SourceTokenAddress,
		TargetTokenAddress: targetToken,
		AmountPerExecution: params.AmountPerExecution,
		CardID:             cardID,
		Status:             "active",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create card stack: %w", err)
	}

	subCards := make([]db.SubCard, 0, len(params.SubCards))
	firstRun := s.now().UTC()
	for _, sub := range params.SubCards {
		created, err := s.queries.CreateSubCard(ctx, db.CreateSubCardParams{
			StackID:             stack.ID,
			Strategy:            sub.Strategy,
			AllocationPercent:   sub.AllocationPercent,
			DailyLimit:          optionalText(sub.DailyLimit),
			TargetTokenOverride: optionalText(sub.TargetTokenOverride),
			AmountPerExecution:  optionalText(sub.AmountPerExecution),
			IntervalSeconds:     sub.IntervalSeconds,
			NextExecutionAt:     pgtype.Timestamptz{Time: firstRun, Valid: true},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create sub-card %s: %w", sub.Strategy, err)
		}
		subCards = append(subCards, created)
	}

	s.logger.Info("Created card stack",
		zap.String("stack_id", stack.ID.String()),
		zap.String("user_id", params.UserID.String()),
		zap.Int("sub_cards", len(subCards)),
	)
	s.activity.Record(ctx, params.UserID, "stack.created",
		fmt.Sprintf("Created card stack %s with %d strategies", params.Name, len(subCards)),
		map[string]interface{}{"stack_id": stack.ID.String(), "chain_id": params.ChainID})

	return &CardStackWithSubCards{Stack: stack, SubCards: subCards}, nil
}

// GetCardStack returns one stack with its sub-cards.
func (s *CardStackService) GetCardStack(ctx context.Context, stackID uuid.UUID) (*CardStackWithSubCards, error) {
	stack, err := s.queries.GetCardStack(ctx, stackID)
	if err != nil {
		return nil, fmt.Errorf("failed to get card stack: %w", err)
	}
	subCards, err := s.queries.ListSubCardsByStack(ctx, stackID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-cards: %w", err)
	}
	return &CardStackWithSubCards{Stack: stack, SubCards: subCards}, nil
}

// ListCardStacks returns all stacks for a user.
func (s *CardStackService) ListCardStacks(ctx context.Context, userID uuid.UUID) ([]db.CardStack, error) {
	stacks, err := s.queries.ListCardStacksByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list card stacks: %w", err)
	}
	return stacks, nil
}

// ScheduleNext advances a sub-card's next execution time by its interval,
// anchored to the scheduled time so cadence does not drift with processing
// latency. Slots that fell during an outage are skipped, not replayed: each
// slot is a single attempt.
func (s *CardStackService) ScheduleNext(ctx context.Context, subCard db.SubCard) error {
	now := s.now().UTC()
	base := now
	if subCard.NextExecutionAt.Valid && subCard.NextExecutionAt.Time.After(now.Add(-24*time.Hour)) {
		base = subCard.NextExecutionAt.Time
	}
	interval := time.Duration(subCard.IntervalSeconds) * time.Second
	next := base.Add(interval)
	for !next.After(now) {
		next = next.Add(interval)
	}
	if err := s.queries.UpdateSubCardNextExecution(ctx, db.UpdateSubCardNextExecutionParams{
		ID:              subCard.ID,
		NextExecutionAt: pgtype.Timestamptz{Time: next, Valid: true},
	}); err != nil {
		return fmt.Errorf("failed to schedule next execution: %w", err)
	}
	return nil
}

func optionalText(value string) pgtype.Text {
	if value == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: value, Valid: true}
}
