package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/cardrail/cardrail-api/internal/chain"
	"github.com/cardrail/cardrail-api/internal/client/bundler"
	"github.com/cardrail/cardrail-api/internal/client/prices"
	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/logger"
	"github.com/cardrail/cardrail-api/internal/types"
)

// executionSlippageBps is the tolerance for automated swaps. It is wider
// than an interactive default because no human is present to approve a
// revised quote.
const executionSlippageBps = 200

// ExecutionService orchestrates a delegated execution: limit check, sponsored
// transfer of funds from the user's account to the agent, quote, and sponsored
// swap routed back to the user. Each invocation is a single attempt; retry
// cadence belongs to the caller.
type ExecutionService struct {
	queries       db.Querier
	limits        *SpendingLimitService
	quotes        *QuoteService
	submitter     bundler.Submitter
	activity      *ActivityService
	notifications *NotificationService
	prices        *prices.Client
	logger        *zap.Logger
}

// NewExecutionService creates a new execution service. The prices client is
// optional and only feeds activity metadata.
func NewExecutionService(
	queries db.Querier,
	limits *SpendingLimitService,
	quotes *QuoteService,
	submitter bundler.Submitter,
	activity *ActivityService,
	notifications *NotificationService,
	pricesClient *prices.Client,
) *ExecutionService {
	return &ExecutionService{
		queries:       queries,
		limits:        limits,
		quotes:        quotes,
		submitter:     submitter,
		activity:      activity,
		notifications: notifications,
		prices:        pricesClient,
		logger:        logger.Log,
	}
}

// ExecuteParams describe one execution request. Either CardID is set
// directly, or StackID names a card stack whose linked card is used. Amount
// is a base-unit integer string; empty means the per-execution default from
// the sub-card or stack.
type ExecuteParams struct {
	CardID            uuid.UUID
	StackID           uuid.UUID
	SubCardID         uuid.UUID
	SourceToken       string
	TargetToken       string
	Amount            string
	RecipientOverride string
	UserEmail         string
}

// executionPlan is the resolved, validated input to the two-step flow.
type executionPlan struct {
	card        db.SmartCard
	subCard     *db.SubCard
	delegation  types.DelegationStruct
	sourceToken string
	targetToken string
	amount      *big.Int
	recipient   string
}

// Execute runs the transfer-then-swap flow. Pre-flight failures (bad config,
// unsigned grant, limit exceeded) return an error and touch nothing on chain.
// Once submission starts, the returned result reports whatever was achieved:
// a failed swap after a landed transfer still carries the transfer hash.
func (s *ExecutionService) Execute(ctx context.Context, params ExecuteParams) (*types.ExecutionResult, error) {
	plan, err := s.prepare(ctx, params)
	if err != nil {
		return nil, err
	}

	result := &types.ExecutionResult{
		AmountIn:    plan.amount.String(),
		SourceToken: plan.sourceToken,
		TargetToken: plan.targetToken,
	}

	transferHash, err := s.submitTransfer(ctx, plan)
	if err != nil {
		result.Error = fmt.Sprintf("Transfer failed: %v", err)
		s.persistOutcome(ctx, plan, result)
		return result, nil
	}
	result.TransferTxHash = transferHash
	s.recordSpend(ctx, plan)

	if plan.targetToken == "" {
		result.Success = true
		result.Error = "No target token configured - Transfer only"
		s.persistOutcome(ctx, plan, result)
		return result, nil
	}

	// Quote the exact amount that moved, not the requested amount.
	quote, err := s.quotes.GetQuote(ctx, QuoteParams{
		ChainID:           plan.card.ChainID,
		SourceToken:       plan.sourceToken,
		TargetToken:       plan.targetToken,
		Amount:            plan.amount.String(),
		AmountInBaseUnits: true,
		SlippageBps:       executionSlippageBps,
		Owner:             plan.card.DelegateAddress,
		Recipient:         plan.recipient,
	})
	if err != nil {
		result.Error = fmt.Sprintf("Swap quote failed: %v", err)
		s.persistOutcome(ctx, plan, result)
		s.notifyPartial(ctx, params, plan, result)
		return result, nil
	}

	swapHash, err := s.submitCalls(ctx, plan, quote.Calls)
	if err != nil {
		result.Error = fmt.Sprintf("Swap failed: %v", err)
		s.persistOutcome(ctx, plan, result)
		s.notifyPartial(ctx, params, plan, result)
		return result, nil
	}

	result.Success = true
	result.SwapTxHash = swapHash
	result.AmountOut = quote.Best.AmountOut.String()
	s.persistOutcome(ctx, plan, result)
	return result, nil
}

// ExecuteAtomic batches the transfer, approvals, and swap into one sponsored
// operation: either every step lands or none do. There is no partial-progress
// reporting in this mode, so it requires a configured target token.
func (s *ExecutionService) ExecuteAtomic(ctx context.Context, params ExecuteParams) (*types.ExecutionResult, error) {
	plan, err := s.prepare(ctx, params)
	if err != nil {
		return nil, err
	}
	if plan.targetToken == "" {
		return nil, configErrorf("atomic execution requires a target token")
	}

	result := &types.ExecutionResult{
		AmountIn:    plan.amount.String(),
		SourceToken: plan.sourceToken,
		TargetToken: plan.targetToken,
	}

	quote, err := s.quotes.GetQuote(ctx, QuoteParams{
		ChainID:           plan.card.ChainID,
		SourceToken:       plan.sourceToken,
		TargetToken:       plan.targetToken,
		Amount:            plan.amount.String(),
		AmountInBaseUnits: true,
		SlippageBps:       executionSlippageBps,
		Owner:             plan.card.DelegateAddress,
		Recipient:         plan.recipient,
	})
	if err != nil {
		result.Error = fmt.Sprintf("Swap quote failed: %v", err)
		s.persistOutcome(ctx, plan, result)
		return result, nil
	}

	transferData, err := chain.EncodeTransfer(common.HexToAddress(plan.card.DelegateAddress), plan.amount)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transfer: %w", err)
	}
	calls := append([]types.CallSpec{{
		To:    plan.sourceToken,
		Data:  transferData,
		Value: big.NewInt(0),
	}}, quote.Calls...)

	txHash, err := s.submitCalls(ctx, plan, calls)
	if err != nil {
		result.Error = fmt.Sprintf("Atomic execution failed: %v", err)
		s.persistOutcome(ctx, plan, result)
		return result, nil
	}

	s.recordSpend(ctx, plan)

	result.Success = true
	result.TransferTxHash = txHash
	result.SwapTxHash = txHash
	result.AmountOut = quote.Best.AmountOut.String()
	s.persistOutcome(ctx, plan, result)
	return result, nil
}

// prepare resolves the grant, amount, tokens, and recipient, and runs every
// pre-submission gate. Nothing here touches the chain beyond read-only calls.
func (s *ExecutionService) prepare(ctx context.Context, params ExecuteParams) (*executionPlan, error) {
	plan := &executionPlan{
		sourceToken: params.SourceToken,
		targetToken: params.TargetToken,
	}

	cardID := params.CardID
	var stack *db.CardStack
	if params.StackID != uuid.Nil {
		loaded, err := s.queries.GetCardStack(ctx, params.StackID)
		if err != nil {
			return nil, fmt.Errorf("failed to load card stack: %w", err)
		}
		stack = &loaded
		if stack.Status != "active" {
			return nil, ErrStackInactive
		}
		if stack.ExpiresAt.Valid && time.Now().UTC().After(stack.ExpiresAt.Time) {
			return nil, ErrStackExpired
		}
		plan.sourceToken = stack.SourceTokenAddress
		if stack.TargetTokenAddress.Valid {
			plan.targetToken = stack.TargetTokenAddress.String
		}
		if cardID == uuid.Nil && stack.CardID.Valid {
			cardID = stack.CardID.Bytes
		}
	}
	if cardID == uuid.Nil {
		return nil, configErrorf("no card specified and stack has no linked card")
	}

	card, err := s.queries.GetSmartCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load smart card: %w", err)
	}
	plan.card = card

	delegation, err := signedDelegation(card)
	if err != nil {
		return nil, err
	}
	plan.delegation = delegation

	if params.SubCardID != uuid.Nil {
		subCard, err := s.queries.GetSubCard(ctx, params.SubCardID)
		if err != nil {
			return nil, fmt.Errorf("failed to load sub-card: %w", err)
		}
		if stack != nil && subCard.StackID != stack.ID {
			return nil, configErrorf("sub-card %s does not belong to stack %s", subCard.ID, stack.ID)
		}
		plan.subCard = &subCard
		if subCard.TargetTokenOverride.Valid {
			plan.targetToken = subCard.TargetTokenOverride.String
		}
	}

	amount, err := s.resolveAmount(params, stack, plan.subCard)
	if err != nil {
		return nil, err
	}
	plan.amount = amount

	if plan.sourceToken == "" {
		return nil, configErrorf("no source token specified")
	}

	plan.recipient = params.RecipientOverride
	if plan.recipient == "" {
		plan.recipient = card.DelegatorAddress
	}

	// The grant-level limit and the strategy-level limit are independent
	// gates; both must pass before anything is submitted.
	decision, err := s.limits.CheckLimit(ctx, card.ID, plan.sourceToken, amount)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &LimitExceededError{
			TokenAddress: plan.sourceToken,
			Limit:        decision.Limit,
			Spent:        decision.Spent,
			Requested:    amount,
		}
	}
	if plan.subCard != nil {
		subDecision, err := s.limits.CheckSubCardLimit(*plan.subCard, plan.sourceToken, amount)
		if err != nil {
			return nil, err
		}
		if !subDecision.Allowed {
			return nil, &LimitExceededError{
				TokenAddress: plan.sourceToken,
				Limit:        subDecision.Limit,
				Spent:        subDecision.Spent,
				Requested:    amount,
			}
		}
	}
	if stack != nil {
		if err := s.checkStackBudget(ctx, stack, amount); err != nil {
			return nil, err
		}
	}

	return plan, nil
}

// checkStackBudget gates an execution on the stack's lifetime envelope: the
// cumulative spend across all of its sub-cards plus the requested amount must
// stay within the total budget.
func (s *ExecutionService) checkStackBudget(ctx context.Context, stack *db.CardStack, amount *big.Int) error {
	if stack.TotalBudget == "" {
		return nil
	}
	budget, ok := new(big.Int).SetString(stack.TotalBudget, 10)
	if !ok {
		return configErrorf("invalid total budget %q on stack %s", stack.TotalBudget, stack.ID)
	}
	subCards, err := s.queries.ListSubCardsByStack(ctx, stack.ID)
	if err != nil {
		return fmt.Errorf("failed to load stack allocations: %w", err)
	}
	spent := new(big.Int)
	for _, sub := range subCards {
		subSpent, ok := new(big.Int).SetString(sub.TotalSpent, 10)
		if !ok {
			return configErrorf("corrupt spend record %q on sub-card %s", sub.TotalSpent, sub.ID)
		}
		spent.Add(spent, subSpent)
	}
	if new(big.Int).Add(spent, amount).Cmp(budget) > 0 {
		return &LimitExceededError{
			TokenAddress: stack.SourceTokenAddress,
			Scope:        "stack budget",
			Limit:        budget,
			Spent:        spent,
			Requested:    amount,
		}
	}
	return nil
}

// resolveAmount picks the explicit amount when given, otherwise the sub-card
// default, otherwise the stack default.
func (s *ExecutionService) resolveAmount(params ExecuteParams, stack *db.CardStack, subCard *db.SubCard) (*big.Int, error) {
	raw := params.Amount
	if raw == "" && subCard != nil && subCard.AmountPerExecution.Valid {
		raw = subCard.AmountPerExecution.String
	}
	if raw == "" && stack != nil {
		raw = stack.AmountPerExecution
	}
	if raw == "" {
		return nil, configErrorf("no amount specified and no per-execution default configured")
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok || amount.Sign() <= 0 {
		return nil, configErrorf("invalid execution amount %q", raw)
	}
	return amount, nil
}

// signedDelegation validates the grant's state and reconstructs the
// redeemable delegation from the stored scope and signature.
func signedDelegation(card db.SmartCard) (types.DelegationStruct, error) {
	switch card.Status {
	case string(types.CardStatusRevoked):
		return types.DelegationStruct{}, ErrCardRevoked
	case string(types.CardStatusExpired):
		return types.DelegationStruct{}, ErrCardExpired
	case string(types.CardStatusActive):
		// fall through
	default:
		return types.DelegationStruct{}, ErrCardNotSigned
	}
	if card.ExpiresAt.Valid && time.Now().UTC().After(card.ExpiresAt.Time) {
		return types.DelegationStruct{}, ErrCardExpired
	}
	if !card.Signature.Valid || card.Signature.String == "" {
		return types.DelegationStruct{}, ErrCardNotSigned
	}

	var unsigned types.UnsignedDelegation
	if err := json.Unmarshal(card.Delegation, &unsigned); err != nil {
		return types.DelegationStruct{}, fmt.Errorf("corrupt delegation for card %s: %w", card.ID, err)
	}
	return unsigned.Signed(card.Signature.String), nil
}

func (s *ExecutionService) submitTransfer(ctx context.Context, plan *executionPlan) (string, error) {
	data, err := chain.EncodeTransfer(common.HexToAddress(plan.card.DelegateAddress), plan.amount)
	if err != nil {
		return "", fmt.Errorf("failed to encode transfer: %w", err)
	}
	return s.submitCalls(ctx, plan, []types.CallSpec{{
		To:    plan.sourceToken,
		Data:  data,
		Value: big.NewInt(0),
	}})
}

func (s *ExecutionService) submitCalls(ctx context.Context, plan *executionPlan, calls []types.CallSpec) (string, error) {
	sponsored := make([]bundler.SponsoredCall, len(calls))
	for i, call := range calls {
		sponsored[i] = bundler.EncodeCall(call)
	}
	return s.submitter.SubmitAndWait(ctx, bundler.SubmitParams{
		ChainID:    plan.card.ChainID,
		Delegation: plan.delegation,
		Calls:      sponsored,
	})
}

// recordSpend writes the spend counters after a landed transfer. Failures are
// logged, never propagated: the chain state is the source of truth and a
// bookkeeping lag must not fail an execution that already committed.
func (s *ExecutionService) recordSpend(ctx context.Context, plan *executionPlan) {
	if _, err := s.limits.Increment(ctx, plan.card.ID, plan.sourceToken, plan.amount); err != nil {
		s.logger.Error("Failed to record card spend after transfer",
			zap.String("card_id", plan.card.ID.String()),
			zap.String("token", plan.sourceToken),
			zap.Error(err))
	}
	if plan.subCard != nil {
		if _, err := s.limits.IncrementSubCardSpend(ctx, *plan.subCard, plan.amount); err != nil {
			s.logger.Error("Failed to record sub-card spend after transfer",
				zap.String("sub_card_id", plan.subCard.ID.String()),
				zap.Error(err))
		}
	}
}

// persistOutcome writes the transaction record and activity entry. Like
// recordSpend this is best-effort.
func (s *ExecutionService) persistOutcome(ctx context.Context, plan *executionPlan, result *types.ExecutionResult) {
	txParams := db.CreateCardTransactionParams{
		CardID:      pgtype.UUID{Bytes: plan.card.ID, Valid: true},
		ChainID:     plan.card.ChainID,
		AmountIn:    result.AmountIn,
		SourceToken: plan.sourceToken,
		Success:     result.Success,
	}
	if plan.subCard != nil {
		txParams.SubCardID = pgtype.UUID{Bytes: plan.subCard.ID, Valid: true}
	}
	if result.TransferTxHash != "" {
		txParams.TransferTxHash = pgtype.Text{String: result.TransferTxHash, Valid: true}
	}
	if result.SwapTxHash != "" {
		txParams.SwapTxHash = pgtype.Text{String: result.SwapTxHash, Valid: true}
	}
	if result.AmountOut != "" {
		txParams.AmountOut = pgtype.Text{String: result.AmountOut, Valid: true}
	}
	if plan.targetToken != "" {
		txParams.TargetToken = pgtype.Text{String: plan.targetToken, Valid: true}
	}
	if result.Error != "" && !result.Success {
		txParams.ErrorMessage = pgtype.Text{String: result.Error, Valid: true}
	}
	if _, err := s.queries.CreateCardTransaction(ctx, txParams); err != nil {
		s.logger.Error("Failed to persist card transaction",
			zap.String("card_id", plan.card.ID.String()),
			zap.Error(err))
	}

	eventType := "execution.failed"
	description := result.Error
	if result.Success {
		eventType = "execution.completed"
		description = fmt.Sprintf("Executed %s of %s", result.AmountIn, plan.sourceToken)
	}
	s.activity.Record(ctx, plan.card.UserID, eventType, description, s.activityMetadata(ctx, plan, result))
}

// activityMetadata decorates the activity entry with a USD price when one is
// available. Prices are display-only and never feed amount calculation.
func (s *ExecutionService) activityMetadata(ctx context.Context, plan *executionPlan, result *types.ExecutionResult) map[string]interface{} {
	metadata := map[string]interface{}{
		"card_id":      plan.card.ID.String(),
		"chain_id":     plan.card.ChainID,
		"amount_in":    result.AmountIn,
		"source_token": plan.sourceToken,
	}
	if result.TransferTxHash != "" {
		metadata["transfer_tx_hash"] = result.TransferTxHash
	}
	if result.SwapTxHash != "" {
		metadata["swap_tx_hash"] = result.SwapTxHash
	}
	if s.prices != nil {
		if priceMap, err := s.prices.GetBatchPrices(ctx, []string{plan.sourceToken}, plan.card.ChainID); err == nil {
			// The price map is keyed by lowercase address.
			if price, ok := priceMap[strings.ToLower(plan.sourceToken)]; ok {
				metadata["source_token_usd_price"] = price
			}
		}
	}
	return metadata
}

// notifyPartial fires the half-completed-execution notification without
// blocking the caller on delivery.
func (s *ExecutionService) notifyPartial(_ context.Context, params ExecuteParams, plan *executionPlan, result *types.ExecutionResult) {
	if result.TransferTxHash == "" {
		return
	}
	notice := PartialExecutionNotice{
		UserEmail:      params.UserEmail,
		CardID:         plan.card.ID.String(),
		ChainID:        plan.card.ChainID,
		TransferTxHash: result.TransferTxHash,
		SourceToken:    plan.sourceToken,
		TargetToken:    plan.targetToken,
		Amount:         result.AmountIn,
		FailureReason:  result.Error,
	}
	go func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.notifications.NotifyPartialExecution(notifyCtx, notice); err != nil {
			s.logger.Error("Partial execution notification failed", zap.Error(err))
		}
	}()
}
