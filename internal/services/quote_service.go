package services

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/cardrail/cardrail-api/internal/chain"
	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/logger"
	"github.com/cardrail/cardrail-api/internal/types"
	"github.com/cardrail/cardrail-api/internal/venues"
)

const (
	// DefaultSlippageBps is applied when the caller does not specify one.
	DefaultSlippageBps = 50

	// quoteDeadlineSeconds bounds how long an encoded swap stays valid.
	quoteDeadlineSeconds = 300
)

// QuoteService fans a quote request out to every venue registered for the
// chain, picks the strict-best route, and assembles the calls needed to
// execute it, including a token approval when the current allowance is short.
type QuoteService struct {
	queries  db.Querier
	registry *venues.Registry
	reader   chain.Reader
	logger   *zap.Logger
	now      func() time.Time
}

// NewQuoteService creates a new quote service
func NewQuoteService(queries db.Querier, registry *venues.Registry, reader chain.Reader) *QuoteService {
	return &QuoteService{
		queries:  queries,
		registry: registry,
		reader:   reader,
		logger:   logger.Log,
		now:      time.Now,
	}
}

// QuoteParams describe one quote request. Amount is either a base-unit
// integer (AmountInBaseUnits true) or a human decimal string scaled by the
// source token's decimals.
type QuoteParams struct {
	ChainID           int64
	SourceToken       string
	TargetToken       string
	Amount            string
	AmountInBaseUnits bool
	SlippageBps       int64
	Owner             string
	Recipient         string
}

// GetQuote validates both tokens against the configured token list, queries
// all venues concurrently, and returns the best route with its call sequence.
// ErrNoViableRoute is returned when every venue comes back empty.
func (s *QuoteService) GetQuote(ctx context.Context, params QuoteParams) (*types.QuoteResult, error) {
	if strings.EqualFold(params.SourceToken, params.TargetToken) {
		return nil, configErrorf("source and target token are the same")
	}

	sourceToken, err := s.lookupToken(ctx, params.ChainID, params.SourceToken)
	if err != nil {
		return nil, err
	}
	if _, err := s.lookupToken(ctx, params.ChainID, params.TargetToken); err != nil {
		return nil, err
	}

	amountIn, err := ParseAmount(params.Amount, sourceToken.Decimals, params.AmountInBaseUnits)
	if err != nil {
		return nil, err
	}

	slippageBps := params.SlippageBps
	if slippageBps == 0 {
		slippageBps = DefaultSlippageBps
	}
	if slippageBps < 0 || slippageBps >= 10000 {
		return nil, configErrorf("slippage %d bps out of range", slippageBps)
	}

	best, err := s.bestRoute(ctx, params.ChainID,
		common.HexToAddress(params.SourceToken), common.HexToAddress(params.TargetToken), amountIn)
	if err != nil {
		return nil, err
	}

	minAmountOut := applySlippage(best.AmountOut, slippageBps)

	calls, err := s.buildCalls(ctx, params, best, amountIn, minAmountOut)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quote selected",
		zap.Int64("chain_id", params.ChainID),
		zap.String("venue", best.VenueID),
		zap.String("amount_in", amountIn.String()),
		zap.String("amount_out", best.AmountOut.String()),
		zap.String("min_amount_out", minAmountOut.String()),
	)

	return &types.QuoteResult{
		Best:         best,
		MinAmountOut: minAmountOut,
		Calls:        calls,
	}, nil
}

// bestRoute fans out to every plugin for the chain and joins all answers.
// Individual venue failures are logged and treated as no-route; only the
// absence of any candidate is an error.
func (s *QuoteService) bestRoute(ctx context.Context, chainID int64, tokenIn, tokenOut common.Address, amountIn *big.Int) (*types.RouteCandidate, error) {
	plugins := s.registry.ForChain(chainID)
	if len(plugins) == 0 {
		return nil, ErrNoViableRoute
	}

	candidates := make([]*types.RouteCandidate, len(plugins))
	var wg sync.WaitGroup
	for i, plugin := range plugins {
		wg.Add(1)
		go func(i int, plugin venues.Plugin) {
			defer wg.Done()
			candidate, err := plugin.QuoteSingleHop(ctx, chainID, tokenIn, tokenOut, amountIn)
			if err != nil {
				s.logger.Warn("Venue quote failed",
					zap.String("venue", plugin.ID()),
					zap.Int64("chain_id", chainID),
					zap.Error(err))
				return
			}
			candidates[i] = candidate
		}(i, plugin)
	}
	wg.Wait()

	// Strict greater-than keeps the first-registered venue on ties.
	var best *types.RouteCandidate
	for _, candidate := range candidates {
		if candidate == nil || candidate.AmountOut == nil || candidate.AmountOut.Sign() <= 0 {
			continue
		}
		if best == nil || candidate.AmountOut.Cmp(best.AmountOut) > 0 {
			best = candidate
		}
	}
	if best == nil {
		return nil, ErrNoViableRoute
	}
	return best, nil
}

// buildCalls encodes the winning route's swap and prepends an approval when
// the owner's current allowance toward the venue router is insufficient.
func (s *QuoteService) buildCalls(ctx context.Context, params QuoteParams, best *types.RouteCandidate, amountIn, minAmountOut *big.Int) ([]types.CallSpec, error) {
	plugin := s.pluginByID(best.VenueID)
	if plugin == nil {
		return nil, fmt.Errorf("winning venue %s is no longer registered", best.VenueID)
	}
	router, ok := plugin.RouterAddress(params.ChainID)
	if !ok {
		return nil, fmt.Errorf("venue %s has no router on chain %d", best.VenueID, params.ChainID)
	}

	owner := common.HexToAddress(params.Owner)
	recipient := owner
	if params.Recipient != "" {
		recipient = common.HexToAddress(params.Recipient)
	}

	swapCall, err := plugin.BuildSwapCalldata(ctx, venues.SwapParams{
		ChainID:      params.ChainID,
		TokenIn:      common.HexToAddress(params.SourceToken),
		TokenOut:     common.HexToAddress(params.TargetToken),
		AmountIn:     amountIn,
		MinAmountOut: minAmountOut,
		Recipient:    recipient,
		Deadline:     s.now().Unix() + quoteDeadlineSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build swap calldata: %w", err)
	}

	var calls []types.CallSpec
	allowance, err := s.reader.Allowance(ctx, params.ChainID, common.HexToAddress(params.SourceToken), owner, router)
	if err != nil {
		return nil, fmt.Errorf("failed to read allowance: %w", err)
	}
	if allowance.Cmp(amountIn) < 0 {
		approveData, err := chain.EncodeApprove(router, amountIn)
		if err != nil {
			return nil, fmt.Errorf("failed to encode approval: %w", err)
		}
		calls = append(calls, types.CallSpec{
			To:    params.SourceToken,
			Data:  approveData,
			Value: big.NewInt(0),
		})
	}

	return append(calls, swapCall), nil
}

func (s *QuoteService) pluginByID(id string) venues.Plugin {
	for _, plugin := range s.registry.All() {
		if plugin.ID() == id {
			return plugin
		}
	}
	return nil
}

func (s *QuoteService) lookupToken(ctx context.Context, chainID int64, address string) (db.Token, error) {
	token, err := s.queries.GetTokenByAddress(ctx, db.GetTokenByAddressParams{
		ChainID:         chainID,
		ContractAddress: address,
	})
	if err != nil {
		return db.Token{}, configErrorf("token %s is not supported on chain %d", address, chainID)
	}
	if !token.Active {
		return db.Token{}, configErrorf("token %s is not supported on chain %d", address, chainID)
	}
	return token, nil
}

// ParseAmount converts an amount string to base units. Base-unit amounts must
// be plain integers; human amounts may carry a fractional part up to the
// token's decimals, scaled with no rounding.
func ParseAmount(amount string, decimals int32, baseUnits bool) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, configErrorf("amount must not be empty")
	}

	if baseUnits {
		value, ok := new(big.Int).SetString(amount, 10)
		if !ok || value.Sign() < 0 {
			return nil, configErrorf("invalid base-unit amount %q", amount)
		}
		if value.Sign() == 0 {
			return nil, configErrorf("amount must be positive")
		}
		return value, nil
	}

	whole := amount
	frac := ""
	if dot := strings.IndexByte(amount, '.'); dot >= 0 {
		whole, frac = amount[:dot], amount[dot+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > int(decimals) {
		return nil, configErrorf("amount %q has more than %d decimal places", amount, decimals)
	}

	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	value, ok := new(big.Int).SetString(digits, 10)
	if !ok || value.Sign() < 0 {
		return nil, configErrorf("invalid amount %q", amount)
	}
	if value.Sign() == 0 {
		return nil, configErrorf("amount must be positive")
	}
	return value, nil
}

// applySlippage floors amountOut * (10000 - bps) / 10000.
func applySlippage(amountOut *big.Int, slippageBps int64) *big.Int {
	min := new(big.Int).Mul(amountOut, big.NewInt(10000-slippageBps))
	return min.Div(min, big.NewInt(10000))
}
