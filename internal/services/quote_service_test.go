package services_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/mocks"
	"github.com/cardrail/cardrail-api/internal/services"
	"github.com/cardrail/cardrail-api/internal/types"
	"github.com/cardrail/cardrail-api/internal/venues"
)

const (
	wethAddress = "0x4200000000000000000000000000000000000006"
	testChainID = int64(8453)
)

// fakeVenue is a scripted venue plugin. quote may return nil for no-route.
type fakeVenue struct {
	id        string
	router    common.Address
	amountOut *big.Int
	quoteErr  error
	buildErr  error
}

func (f *fakeVenue) ID() string               { return f.id }
func (f *fakeVenue) SupportsChain(int64) bool { return true }

func (f *fakeVenue) RouterAddress(int64) (common.Address, bool) {
	return f.router, true
}

func (f *fakeVenue) QuoteSingleHop(_ context.Context, _ int64, tokenIn, tokenOut common.Address, amountIn *big.Int) (*types.RouteCandidate, error) {
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	if f.amountOut == nil {
		return nil, nil
	}
	return &types.RouteCandidate{
		VenueID:   f.id,
		AmountIn:  amountIn,
		AmountOut: new(big.Int).Set(f.amountOut),
		Hops: []types.RouteHop{{
			Venue:    f.id,
			TokenIn:  tokenIn.Hex(),
			TokenOut: tokenOut.Hex(),
		}},
	}, nil
}

func (f *fakeVenue) BuildSwapCalldata(_ context.Context, params venues.SwapParams) (types.CallSpec, error) {
	if f.buildErr != nil {
		return types.CallSpec{}, f.buildErr
	}
	return types.CallSpec{
		To:    f.router.Hex(),
		Data:  []byte{0x01, 0x02},
		Value: big.NewInt(0),
	}, nil
}

// fakeReader is a canned chain reader.
type fakeReader struct {
	allowance *big.Int
	code      []byte
}

func (f *fakeReader) CodeAt(context.Context, int64, common.Address) ([]byte, error) {
	return f.code, nil
}

func (f *fakeReader) CallContract(context.Context, int64, common.Address, []byte) ([]byte, error) {
	return nil, errors.New("unexpected call")
}

func (f *fakeReader) Allowance(context.Context, int64, common.Address, common.Address, common.Address) (*big.Int, error) {
	if f.allowance == nil {
		return big.NewInt(0), nil
	}
	return f.allowance, nil
}

func expectSupportedTokens(ctx context.Context, mockQuerier *mocks.MockQuerier) {
	mockQuerier.EXPECT().GetTokenByAddress(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.GetTokenByAddressParams) (db.Token, error) {
			return db.Token{
				ChainID:         arg.ChainID,
				ContractAddress: arg.ContractAddress,
				Decimals:        6,
				Active:          true,
			}, nil
		}).AnyTimes()
}

func TestQuoteService_GetQuote_PicksBestVenue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuerier := mocks.NewMockQuerier(ctrl)
	ctx := context.Background()
	expectSupportedTokens(ctx, mockQuerier)

	slow := &fakeVenue{id: "venue-a", router: common.HexToAddress("0xaa"), amountOut: big.NewInt(990)}
	best := &fakeVenue{id: "venue-b", router: common.HexToAddress("0xbb"), amountOut: big.NewInt(1010)}
	broken := &fakeVenue{id: "venue-c", router: common.HexToAddress("0xcc"), quoteErr: errors.New("rpc timeout")}

	registry := venues.NewRegistry(slow, best, broken)
	service := services.NewQuoteService(mockQuerier, registry, &fakeReader{allowance: big.NewInt(1 << 30)})

	result, err := service.GetQuote(ctx, services.QuoteParams{
		ChainID:           testChainID,
		SourceToken:       usdcAddress,
		TargetToken:       wethAddress,
		Amount:            "1000",
		AmountInBaseUnits: true,
		Owner:             "0x1111111111111111111111111111111111111111",
	})

	assert.NoError(t, err)
	assert.Equal(t, "venue-b", result.Best.VenueID)
	assert.Equal(t, "1010", result.Best.AmountOut.String())
	// Default 50 bps: floor(1010 * 9950 / 10000) = 1004.
	assert.Equal(t, "1004", result.MinAmountOut.String())
	// Allowance is ample, so the swap is the only call.
	assert.Len(t, result.Calls, 1)
}

func TestQuoteService_GetQuote_TieKeepsFirstRegistered(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuerier := mocks.NewMockQuerier(ctrl)
	ctx := context.Background()
	expectSupportedTokens(ctx, mockQuerier)

	first := &fakeVenue{id: "venue-a", router: common.HexToAddress("0xaa"), amountOut: big.NewInt(1000)}
	second := &fakeVenue{id: "venue-b", router: common.HexToAddress("0xbb"), amountOut: big.NewInt(1000)}

	service := services.NewQuoteService(mockQuerier, venues.NewRegistry(first, second), &fakeReader{allowance: big.NewInt(1 << 30)})

	result, err := service.GetQuote(ctx, services.QuoteParams{
		ChainID:           testChainID,
		SourceToken:       usdcAddress,
		TargetToken:       wethAddress,
		Amount:            "1000",
		AmountInBaseUnits: true,
		Owner:             "0x1111111111111111111111111111111111111111",
	})

	assert.NoError(t, err)
	assert.Equal(t, "venue-a", result.Best.VenueID)
}

func TestQuoteService_GetQuote_NoViableRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuerier := mocks.NewMockQuerier(ctrl)
	ctx := context.Background()
	expectSupportedTokens(ctx, mockQuerier)

	// One venue has no route, the other errors out; neither is fatal on its
	// own but together they leave nothing to pick.
	empty := &fakeVenue{id: "venue-a", router: common.HexToAddress("0xaa")}
	broken := &fakeVenue{id: "venue-b", router: common.HexToAddress("0xbb"), quoteErr: errors.New("rpc timeout")}

	service := services.NewQuoteService(mockQuerier, venues.NewRegistry(empty, broken), &fakeReader{})

	_, err := service.GetQuote(ctx, services.QuoteParams{
		ChainID:           testChainID,
		SourceToken:       usdcAddress,
		TargetToken:       wethAddress,
		Amount:            "1000",
		AmountInBaseUnits: true,
		Owner:             "0x1111111111111111111111111111111111111111",
	})

	assert.ErrorIs(t, err, services.ErrNoViableRoute)
}

func TestQuoteService_GetQuote_PrependsApprovalWhenAllowanceShort(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuerier := mocks.NewMockQuerier(ctrl)
	ctx := context.Background()
	expectSupportedTokens(ctx, mockQuerier)

	venue := &fakeVenue{id: "venue-a", router: common.HexToAddress("0xaa"), amountOut: big.NewInt(2000)}
	service := services.NewQuoteService(mockQuerier, venues.NewRegistry(venue), &fakeReader{allowance: big.NewInt(10)})

	result, err := service.GetQuote(ctx, services.QuoteParams{
		ChainID:           testChainID,
		SourceToken:       usdcAddress,
		TargetToken:       wethAddress,
		Amount:            "1000",
		AmountInBaseUnits: true,
		Owner:             "0x1111111111111111111111111111111111111111",
	})

	assert.NoError(t, err)
	assert.Len(t, result.Calls, 2)
	// The approval targets the source token contract, the swap the router.
	assert.Equal(t, usdcAddress, result.Calls[0].To)
	assert.Equal(t, venue.router.Hex(), result.Calls[1].To)
}

func TestQuoteService_GetQuote_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuerier := mocks.NewMockQuerier(ctrl)
	ctx := context.Background()

	venue := &fakeVenue{id: "venue-a", router: common.HexToAddress("0xaa"), amountOut: big.NewInt(1000)}
	service := services.NewQuoteService(mockQuerier, venues.NewRegistry(venue), &fakeReader{})

	t.Run("rejects identical source and target", func(t *testing.T) {
		_, err := service.GetQuote(ctx, services.QuoteParams{
			ChainID:     testChainID,
			SourceToken: usdcAddress,
			TargetToken: usdcAddress,
			Amount:      "1000",
		})
		var cfgErr *services.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("rejects an unsupported token", func(t *testing.T) {
		mockQuerier.EXPECT().GetTokenByAddress(ctx, gomock.Any()).
			Return(db.Token{}, errors.New("no rows in result set"))

		_, err := service.GetQuote(ctx, services.QuoteParams{
			ChainID:     testChainID,
			SourceToken: usdcAddress,
			TargetToken: wethAddress,
			Amount:      "1000",
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "is not supported on chain")
	})

	t.Run("rejects out-of-range slippage", func(t *testing.T) {
		expectSupportedTokens(ctx, mockQuerier)

		_, err := service.GetQuote(ctx, services.QuoteParams{
			ChainID:           testChainID,
			SourceToken:       usdcAddress,
			TargetToken:       wethAddress,
			Amount:            "1000",
			AmountInBaseUnits: true,
			SlippageBps:       10000,
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		decimals  int32
		baseUnits bool
		want      string
		wantErr   bool
	}{
		{name: "base units pass through", amount: "1500000", decimals: 6, baseUnits: true, want: "1500000"},
		{name: "human amount scales by decimals", amount: "1.5", decimals: 6, want: "1500000"},
		{name: "whole human amount", amount: "2", decimals: 18, want: "2000000000000000000"},
		{name: "bare fraction", amount: ".5", decimals: 6, want: "500000"},
		{name: "full precision fraction", amount: "0.000001", decimals: 6, want: "1"},
		{name: "too many decimal places", amount: "0.0000001", decimals: 6, wantErr: true},
		{name: "decimal in base units mode", amount: "1.5", decimals: 6, baseUnits: true, wantErr: true},
		{name: "zero is rejected", amount: "0", decimals: 6, wantErr: true},
		{name: "negative is rejected", amount: "-5", decimals: 6, baseUnits: true, wantErr: true},
		{name: "empty is rejected", amount: "", decimals: 6, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := services.ParseAmount(tt.amount, tt.decimals, tt.baseUnits)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
