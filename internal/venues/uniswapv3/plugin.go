// Package uniswapv3 quotes and encodes swaps against Uniswap V3 deployments,
// probing the standard fee tiers through the QuoterV2 contract.
package uniswapv3

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

const quoterABIJSON = `[
	{"name":"quoteExactInputSingle","type":"function","inputs":[
		{"name":"params","type":"tuple","components":[
			{"name":"tokenIn","type":"address"},
			{"name":"tokenOut","type":"address"},
			{"name":"amountIn","type":"uint256"},
			{"name":"fee","type":"uint24"},
			{"name":"sqrtPriceLimitX96","type":"uint160"}
		]}
	],"outputs":[
		{"name":"amountOut","type":"uint256"},
		{"name":"sqrtPriceX96After","type":"uint160"},
		{"name":"initializedTicksCrossed","type":"uint32"},
		{"name":"gasEstimate","type":"uint256"}
	]}
]`

const routerABIJSON = `[
	{"name":"exactInputSingle","type":"function","stateMutability":"payable","inputs":[
		{"name":"params","type":"tuple","components":[
			{"name":"tokenIn","type":"address"},
			{"name":"tokenOut","type":"address"},
			{"name":"fee","type":"uint24"},
			{"name":"recipient","type":"address"},
			{"name":"deadline","type":"uint256"},
			{"name":"amountIn","type":"uint256"},
			{"name":"amountOutMinimum","type":"uint256"},
			{"name":"sqrtPriceLimitX96","type":"uint160"}
		]}
	],"outputs":[{"name":"amountOut","type":"uint256"}]}
]`

var (
	quoterABI = mustParseABI(quoterABIJSON)
	routerABI = mustParseABI(routerABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("invalid ABI literal: " + err.Error())
	}
	return parsed
}

// SelectorExactInputSingle is whitelisted in trade card scopes.
var SelectorExactInputSingle = routerABI.Methods["exactInputSingle"].ID

// feeTiers are the standard V3 pool fee tiers, probed in order.
var feeTiers = []int64{500, 3000, 10000}

// Deployment is a chain's router + quoter pair.
type Deployment struct {
	Router common.Address
	Quoter common.Address
}

// Plugin quotes single-hop routes across V3 fee tiers.
type Plugin struct {
	reader      chain.Reader
	deployments map[int64]Deployment
}

// New creates a V3 plugin over the given per-chain deployments.
func New(reader chain.Reader, deployments map[int64]Deployment) *Plugin {
	return &Plugin{reader: reader, deployments: deployments}
}

func (p *Plugin) ID() string { return "uniswap-v3" }

func (p *Plugin) SupportsChain(chainID int64) bool {
	_, ok := p.deployments[chainID]
	return ok
}

func (p *Plugin) RouterAddress(chainID int64) (common.Address, bool) {
	d, ok := p.deployments[chainID]
	return d.Router, ok
}

type quoteSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	AmountIn          *big.Int
	Fee               *big.Int
	SqrtPriceLimitX96 *big.Int
}

// QuoteSingleHop probes each fee tier and returns the best pool's output.
// Tiers with no initialized pool revert and are skipped.
func (p *Plugin) QuoteSingleHop(ctx context.Context, chainID int64, tokenIn, tokenOut common.Address, amountIn *big.Int) (*types.RouteCandidate, error) {
	deployment, ok := p.deployments[chainID]
	if !ok {
		return nil, nil
	}

	var bestOut *big.Int
	var bestFee int64
	for _, fee := range feeTiers {
		data, err := quoterABI.Pack("quoteExactInputSingle", quoteSingleParams{
			TokenIn:           tokenIn,
			TokenOut:          tokenOut,
			AmountIn:          amountIn,
			Fee:               big.NewInt(fee),
			SqrtPriceLimitX96: big.NewInt(0),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to pack quoteExactInputSingle: %w", err)
		}

		result, err := p.reader.CallContract(ctx, chainID, deployment.Quoter, data)
		if err != nil {
			// no pool at this tier
			continue
		}

		out, err := quoterABI.Unpack("quoteExactInputSingle", result)
		if err != nil {
			continue
		}
		amountOut, ok := out[0].(*big.Int)
		if !ok || amountOut.Sign() == 0 {
			continue
		}

		if bestOut == nil || amountOut.Cmp(bestOut) > 0 {
			bestOut = amountOut
			bestFee = fee
		}
	}

	if bestOut == nil {
		return nil, nil
	}

	return &types.RouteCandidate{
		VenueID:   p.ID(),
		AmountIn:  new(big.Int).Set(amountIn),
		AmountOut: bestOut,
		Hops: []types.RouteHop{{
			Venue:    p.ID(),
			TokenIn:  tokenIn.Hex(),
			TokenOut: tokenOut.Hex(),
			PoolFee:  bestFee,
			Detail:   fmt.Sprintf("v3 pool, fee tier %d", bestFee),
		}},
	}, nil
}

type exactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	Deadline          *big.Int
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

// BuildSwapCalldata encodes exactInputSingle. The fee tier is re-derived by
// re-quoting; the tier chosen at quote time is the one with the best output,
// so the same tier wins here under unchanged pool state.
func (p *Plugin) BuildSwapCalldata(ctx context.Context, params venues.SwapParams) (types.CallSpec, error) {
	deployment, ok := p.deployments[params.ChainID]
	if !ok {
		return types.CallSpec{}, fmt.Errorf("uniswap-v3 has no deployment on chain %d", params.ChainID)
	}

	candidate, err := p.QuoteSingleHop(ctx, params.ChainID, params.TokenIn, params.TokenOut, params.AmountIn)
	if err != nil {
		return types.CallSpec{}, err
	}
	if candidate == nil {
		return types.CallSpec{}, fmt.Errorf("uniswap-v3 route disappeared for %s -> %s", params.TokenIn.Hex(), params.TokenOut.Hex())
	}

	fee := big.NewInt(feeTiers[1])
	if len(candidate.Hops) > 0 && candidate.Hops[0].PoolFee != 0 {
		fee = big.NewInt(candidate.Hops[0].PoolFee)
	}

	data, err := routerABI.Pack("exactInputSingle", exactInputSingleParams{
		TokenIn:           params.TokenIn,
		TokenOut:          params.TokenOut,
		Fee:               fee,
		Recipient:         params.Recipient,
		Deadline:          big.NewInt(params.Deadline),
		AmountIn:          params.AmountIn,
		AmountOutMinimum:  params.MinAmountOut,
		SqrtPriceLimitX96: big.NewInt(0),
	})
	if err != nil {
		return types.CallSpec{}, fmt.Errorf("failed to pack exactInputSingle: %w", err)
	}

	return types.CallSpec{
		To:    deployment.Router.Hex(),
		Data:  data,
		Value: big.NewInt(0),
	}, nil
}
