package uniswapv3_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/cardrail/cardrail-api/internal/venues"
	"github.com/cardrail/cardrail-api/internal/venues/uniswapv3"
)

const testChainID = int64(8453)

var (
	routerAddr = common.HexToAddress("0x2626664c2603336E57B271c5C0b26F421741e481")
	quoterAddr = common.HexToAddress("0x3d4e44Eb1374240CE5F1B871ab261CD16335B76a")
	tokenIn    = common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	tokenOut   = common.HexToAddress("0x4200000000000000000000000000000000000006")
)

// stubReader answers quoter eth_calls from a fee-tier table; tiers without an
// entry revert like an uninitialized pool.
type stubReader struct {
	quotes map[int64]*big.Int
}

func (r *stubReader) CodeAt(context.Context, int64, common.Address) ([]byte, error) {
	return nil, nil
}

func (r *stubReader) Allowance(context.Context, int64, common.Address, common.Address, common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (r *stubReader) CallContract(_ context.Context, _ int64, _ common.Address, data []byte) ([]byte, error) {
	// quoteExactInputSingle packs five static words; fee is the fourth.
	fee := new(big.Int).SetBytes(data[4+3*32 : 4+4*32]).Int64()
	out, ok := r.quotes[fee]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	// amountOut, sqrtPriceX96After, initializedTicksCrossed, gasEstimate
	buf := make([]byte, 4*32)
	out.FillBytes(buf[:32])
	return buf, nil
}

func newTestPlugin(reader *stubReader) *uniswapv3.Plugin {
	return uniswapv3.New(reader, map[int64]uniswapv3.Deployment{
		testChainID: {Router: routerAddr, Quoter: quoterAddr},
	})
}

func TestPlugin_QuoteSingleHop_PicksBestFeeTier(t *testing.T) {
	plugin := newTestPlugin(&stubReader{quotes: map[int64]*big.Int{
		500:   big.NewInt(900),
		3000:  big.NewInt(1100),
		10000: big.NewInt(1000),
	}})

	candidate, err := plugin.QuoteSingleHop(context.Background(), testChainID, tokenIn, tokenOut, big.NewInt(1000))

	assert.NoError(t, err)
	assert.NotNil(t, candidate)
	assert.Equal(t, "1100", candidate.AmountOut.String())
	assert.Len(t, candidate.Hops, 1)
	assert.Equal(t, int64(3000), candidate.Hops[0].PoolFee)
}

func TestPlugin_QuoteSingleHop_NoInitializedPool(t *testing.T) {
	plugin := newTestPlugin(&stubReader{quotes: map[int64]*big.Int{}})

	candidate, err := plugin.QuoteSingleHop(context.Background(), testChainID, tokenIn, tokenOut, big.NewInt(1000))

	assert.NoError(t, err)
	assert.Nil(t, candidate)
}

func TestPlugin_BuildSwapCalldata_UsesQuotedFeeTier(t *testing.T) {
	plugin := newTestPlugin(&stubReader{quotes: map[int64]*big.Int{
		500:  big.NewInt(900),
		3000: big.NewInt(1100),
	}})

	call, err := plugin.BuildSwapCalldata(context.Background(), venues.SwapParams{
		ChainID:      testChainID,
		TokenIn:      tokenIn,
		TokenOut:     tokenOut,
		AmountIn:     big.NewInt(1000),
		MinAmountOut: big.NewInt(1050),
		Recipient:    common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Deadline:     1900000000,
	})

	assert.NoError(t, err)
	assert.Equal(t, routerAddr.Hex(), call.To)
	assert.Equal(t, uniswapv3.SelectorExactInputSingle, call.Data[:4])

	// exactInputSingle packs eight static words; fee is the third, and it
	// must be the tier the quote selected, not a default.
	fee := new(big.Int).SetBytes(call.Data[4+2*32 : 4+3*32]).Int64()
	assert.Equal(t, int64(3000), fee)
}
