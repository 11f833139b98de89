// Package venues defines the pluggable execution-venue interface the quote
// aggregator fans out to, and the ordered registry of configured plugins.
package venues

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cardrail/cardrail-api/internal/types"
)

// SwapParams describes the swap a plugin should encode for the winning route.
type SwapParams struct {
	ChainID      int64
	TokenIn      common.Address
	TokenOut     common.Address
	AmountIn     *big.Int
	MinAmountOut *big.Int
	Recipient    common.Address
	Deadline     int64
}

// Plugin is one execution venue. QuoteSingleHop returns (nil, nil) when the
// venue has no route for the pair; that is an expected outcome, not an error.
type Plugin interface {
	ID() string
	SupportsChain(chainID int64) bool
	RouterAddress(chainID int64) (common.Address, bool)
	QuoteSingleHop(ctx context.Context, chainID int64, tokenIn, tokenOut common.Address, amountIn *big.Int) (*types.RouteCandidate, error)
	BuildSwapCalldata(ctx context.Context, params SwapParams) (types.CallSpec, error)
}

// Registry holds the configured plugins in deterministic order. Iteration
// order doubles as the tie-break for equal quotes.
type Registry struct {
	plugins []Plugin
}

// NewRegistry creates a registry over the given plugins, preserving order.
func NewRegistry(plugins ...Plugin) *Registry {
	return &Registry{plugins: plugins}
}

// ForChain returns the plugins registered for a chain, in registry order.
func (r *Registry) ForChain(chainID int64) []Plugin {
	var matched []Plugin
	for _, p := range r.plugins {
		if p.SupportsChain(chainID) {
			matched = append(matched, p)
		}
	}
	return matched
}

// All returns every registered plugin.
func (r *Registry) All() []Plugin {
	return r.plugins
}
