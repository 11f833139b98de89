// Package uniswapv2 quotes and encodes swaps against Uniswap V2-style routers.
package uniswapv2

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/cardrail/cardrail-api/internal/chain"
	"github.com/cardrail/cardrail-api/internal/types"
	"github.com/cardrail/cardrail-api/internal/venues"
)

const routerABIJSON = `[
	{"name":"getAmountsOut","type":"function","stateMutability":"view","inputs":[{"name":"amountIn","type":"uint256"},{"name":"path","type":"address[]"}],"outputs":[{"name":"amounts","type":"uint256[]"}]},
	{"name":"swapExactTokensForTokens","type":"function","inputs":[{"name":"amountIn","type":"uint256"},{"name":"amountOutMin","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"outputs":[{"name":"amounts","type":"uint256[]"}]}
]`

var routerABI = mustParseABI(routerABIJSON)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("invalid ABI literal: " + err.Error())
	}
	return parsed
}

// SelectorSwapExactTokensForTokens is whitelisted in trade card scopes.
var SelectorSwapExactTokensForTokens = routerABI.Methods["swapExactTokensForTokens"].ID

// Plugin quotes single-hop routes through a V2 constant-product router.
type Plugin struct {
	reader  chain.Reader
	routers map[int64]common.Address
}

// New creates a V2 plugin over the given per-chain router deployments.
func New(reader chain.Reader, routers map[int64]common.Address) *Plugin {
	return &Plugin{reader: reader, routers: routers}
}

func (p *Plugin) ID() string { return "uniswap-v2" }

func (p *Plugin) SupportsChain(chainID int64) bool {
	_, ok := p.routers[chainID]
	return ok
}

func (p *Plugin) RouterAddress(chainID int64) (common.Address, bool) {
	router, ok := p.routers[chainID]
	return router, ok
}

// QuoteSingleHop asks the router for the pair's output via getAmountsOut.
// A reverted call means no pool exists and is reported as no route.
func (p *Plugin) QuoteSingleHop(ctx context.Context, chainID int64, tokenIn, tokenOut common.Address, amountIn *big.Int) (*types.RouteCandidate, error) {
	router, ok := p.routers[chainID]
	if !ok {
		return nil, nil
	}

	path := []common.Address{tokenIn, tokenOut}
	data, err := routerABI.Pack("getAmountsOut", amountIn, path)
	if err != nil {
		return nil, fmt.Errorf("failed to pack getAmountsOut: %w", err)
	}

	result, err := p.reader.CallContract(ctx, chainID, router, data)
	if err != nil {
		// getAmountsOut reverts when the pair has no pool; treat as no route
		return nil, nil
	}

	out, err := routerABI.Unpack("getAmountsOut", result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack getAmountsOut: %w", err)
	}
	amounts, ok := out[0].([]*big.Int)
	if !ok || len(amounts) < 2 {
		return nil, fmt.Errorf("unexpected getAmountsOut result shape")
	}

	amountOut := amounts[len(amounts)-1]
	if amountOut.Sign() == 0 {
		return nil, nil
	}

	return &types.RouteCandidate{
		VenueID:   p.ID(),
		AmountIn:  new(big.Int).Set(amountIn),
		AmountOut: amountOut,
		Hops: []types.RouteHop{{
			Venue:    p.ID(),
			TokenIn:  tokenIn.Hex(),
			TokenOut: tokenOut.Hex(),
			Detail:   "v2 pool",
		}},
	}, nil
}

// BuildSwapCalldata encodes swapExactTokensForTokens for the pair.
func (p *Plugin) BuildSwapCalldata(ctx context.Context, params venues.SwapParams) (types.CallSpec, error) {
	router, ok := p.routers[params.ChainID]
	if !ok {
		return types.CallSpec{}, fmt.Errorf("uniswap-v2 has no router on chain %d", params.ChainID)
	}

	path := []common.Address{params.TokenIn, params.TokenOut}
	data, err := routerABI.Pack("swapExactTokensForTokens",
		params.AmountIn,
		params.MinAmountOut,
		path,
		params.Recipient,
		big.NewInt(params.Deadline),
	)
	if err != nil {
		return types.CallSpec{}, fmt.Errorf("failed to pack swapExactTokensForTokens: %w", err)
	}

	return types.CallSpec{
		To:    router.Hex(),
		Data:  data,
		Value: big.NewInt(0),
	}, nil
}
