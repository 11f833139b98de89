package services

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/cardrail/cardrail-api/internal/chain"
	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/delegation"
	"github.com/cardrail/cardrail-api/internal/logger"
	"github.com/cardrail/cardrail-api/internal/types"
	"github.com/cardrail/cardrail-api/internal/venues"
	"github.com/cardrail/cardrail-api/internal/venues/uniswapv2"
	"github.com/cardrail/cardrail-api/internal/venues/uniswapv3"
)

// DelegationService builds caveat-scoped delegation structures from a card's
// capability type. The scope is the cryptographic enforcement boundary: calls
// outside it are rejected by the chain, not just by application logic.
type DelegationService struct {
	queries  db.Querier
	registry *venues.Registry
	logger   *zap.Logger
}

// NewDelegationService creates a new delegation service
func NewDelegationService(queries db.Querier, registry *venues.Registry) *DelegationService {
	return &DelegationService{
		queries:  queries,
		registry: registry,
		logger:   logger.Log,
	}
}

// BuildForType resolves the capability type to its scope and constructs the
// unsigned delegation plus the whitelisted target list. Unknown types fail
// before any signing step.
func (s *DelegationService) BuildForType(ctx context.Context, chainID int64, delegatorAddress, delegateAddress string, cardType types.CardType) (types.UnsignedDelegation, []string, error) {
	targets, selectors, err := s.scopeForType(ctx, chainID, cardType)
	if err != nil {
		return types.UnsignedDelegation{}, nil, err
	}

	unsigned, err := delegation.BuildScope(delegatorAddress, delegateAddress, targets, selectors)
	if err != nil {
		return types.UnsignedDelegation{}, nil, fmt.Errorf("failed to build delegation scope: %w", err)
	}

	// The toolkit's default value cap of zero would reject any operation
	// carrying native value, which multi-hop swaps need for wrap/unwrap.
	// Widen it to the maximum representable value; target and selector
	// caveats remain the effective restriction.
	widenValueCap(&unsigned)

	whitelisted := make([]string, 0, len(targets))
	for _, target := range targets {
		whitelisted = append(whitelisted, target.Hex())
	}

	s.logger.Info("Built delegation scope",
		zap.Int64("chain_id", chainID),
		zap.String("card_type", string(cardType)),
		zap.Int("target_count", len(targets)),
		zap.Int("selector_count", len(selectors)),
	)

	return unsigned, whitelisted, nil
}

// scopeForType maps a capability type to target contracts and selectors.
func (s *DelegationService) scopeForType(ctx context.Context, chainID int64, cardType types.CardType) ([]common.Address, [][]byte, error) {
	tokens, err := s.queries.ListTokensByChain(ctx, chainID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list tokens for chain %d: %w", chainID, err)
	}

	var targets []common.Address
	for _, token := range tokens {
		if token.IsNative {
			continue
		}
		targets = append(targets, common.HexToAddress(token.ContractAddress))
	}
	if len(targets) == 0 {
		return nil, nil, configErrorf("no tokens configured for chain %d", chainID)
	}

	selectors := [][]byte{chain.SelectorTransfer, chain.SelectorApprove}

	switch cardType {
	case types.CardTypeTransfer:
		// token contracts only
	case types.CardTypeTrade:
		for _, plugin := range s.registry.ForChain(chainID) {
			if router, ok := plugin.RouterAddress(chainID); ok {
				targets = append(targets, router)
			}
		}
		selectors = append(selectors,
			uniswapv2.SelectorSwapExactTokensForTokens,
			uniswapv3.SelectorExactInputSingle,
		)
	default:
		return nil, nil, configErrorf("unknown card type %q", cardType)
	}

	return dedupeAddresses(targets), selectors, nil
}

// widenValueCap replaces a zero value-cap caveat with the maximum
// representable value, appending one if the builder emitted none.
func widenValueCap(d *types.UnsignedDelegation) {
	for i, caveat := range d.Caveats {
		if caveat.Enforcer != delegation.ValueLteEnforcer {
			continue
		}
		if caveat.Terms == delegation.ZeroValueHex || caveat.Terms == "" || caveat.Terms == "0x" {
			d.Caveats[i].Terms = delegation.MaxUint256Hex
		}
		return
	}
	d.Caveats = append(d.Caveats, types.CaveatStruct{
		Enforcer: delegation.ValueLteEnforcer,
		Terms:    delegation.MaxUint256Hex,
	})
}

func dedupeAddresses(addrs []common.Address) []common.Address {
	seen := make(map[common.Address]struct{}, len(addrs))
	deduped := addrs[:0]
	for _, addr := range addrs {
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		deduped = append(deduped, addr)
	}
	return deduped
}
