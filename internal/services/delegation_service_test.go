package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/delegation"
	"github.com/cardrail/cardrail-api/internal/mocks"
	"github.com/cardrail/cardrail-api/internal/services"
	"github.com/cardrail/cardrail-api/internal/types"
	"github.com/cardrail/cardrail-api/internal/venues"
)

const (
	delegatorAddr = "0x1111111111111111111111111111111111111111"
	delegateAddr  = "0x2222222222222222222222222222222222222222"
)

func chainTokens() []db.Token {
	return []db.Token{
		{ChainID: testChainID, ContractAddress: usdcAddress, Symbol: "USDC", Decimals: 6, Active: true},
		{ChainID: testChainID, ContractAddress: wethAddress, Symbol: "WETH", Decimals: 18, Active: true},
		{ChainID: testChainID, ContractAddress: "0x0000000000000000000000000000000000000000", Symbol: "ETH", IsNative: true, Active: true},
	}
}

func caveatByEnforcer(t *testing.T, unsigned types.UnsignedDelegation, enforcer string) types.CaveatStruct {
	t.Helper()
	for _, caveat := range unsigned.Caveats {
		if caveat.Enforcer == enforcer {
			return caveat
		}
	}
	t.Fatalf("no caveat with enforcer %s", enforcer)
	return types.CaveatStruct{}
}

func TestDelegationService_BuildForType_Transfer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuerier := mocks.NewMockQuerier(ctrl)
	ctx := context.Background()

	mockQuerier.EXPECT().ListTokensByChain(ctx, testChainID).Return(chainTokens(), nil)

	routerA := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	registry := venues.NewRegistry(&fakeVenue{id: "venue-a", router: routerA})
	service := services.NewDelegationService(mockQuerier, registry)

	unsigned, whitelisted, err := service.BuildForType(ctx, testChainID, delegatorAddr, delegateAddr, types.CardTypeTransfer)

	assert.NoError(t, err)
	assert.Equal(t, delegatorAddr, unsigned.Delegator)
	assert.Equal(t, delegateAddr, unsigned.Delegate)
	assert.Equal(t, delegation.RootAuthority, unsigned.Authority)

	// Transfer scope covers token contracts only: no router, no native entry.
	assert.Len(t, whitelisted, 2)
	assert.NotContains(t, whitelisted, routerA.Hex())

	targets := caveatByEnforcer(t, unsigned, delegation.AllowedTargetsEnforcer)
	assert.False(t, strings.Contains(strings.ToLower(targets.Terms), strings.ToLower(routerA.Hex()[2:])))

	// transfer + approve selectors, 4 bytes each.
	methods := caveatByEnforcer(t, unsigned, delegation.AllowedMethodsEnforcer)
	assert.Len(t, methods.Terms, 2+2*8)
}

func TestDelegationService_BuildForType_Trade(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuerier := mocks.NewMockQuerier(ctrl)
	ctx := context.Background()

	mockQuerier.EXPECT().ListTokensByChain(ctx, testChainID).Return(chainTokens(), nil)

	routerA := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	routerB := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	registry := venues.NewRegistry(
		&fakeVenue{id: "venue-a", router: routerA},
		&fakeVenue{id: "venue-b", router: routerB},
	)
	service := services.NewDelegationService(mockQuerier, registry)

	unsigned, whitelisted, err := service.BuildForType(ctx, testChainID, delegatorAddr, delegateAddr, types.CardTypeTrade)

	assert.NoError(t, err)
	// Both venue routers join the token contracts.
	assert.Len(t, whitelisted, 4)
	assert.Contains(t, whitelisted, routerA.Hex())
	assert.Contains(t, whitelisted, routerB.Hex())

	// Swap selectors added on top of transfer + approve.
	methods := caveatByEnforcer(t, unsigned, delegation.AllowedMethodsEnforcer)
	assert.Len(t, methods.Terms, 2+4*8)
}

func TestDelegationService_BuildForType_WidensValueCap(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuerier := mocks.NewMockQuerier(ctrl)
	ctx := context.Background()

	mockQuerier.EXPECT().ListTokensByChain(ctx, testChainID).Return(chainTokens(), nil)

	service := services.NewDelegationService(mockQuerier, venues.NewRegistry())

	unsigned, _, err := service.BuildForType(ctx, testChainID, delegatorAddr, delegateAddr, types.CardTypeTransfer)
	assert.NoError(t, err)

	valueCap := caveatByEnforcer(t, unsigned, delegation.ValueLteEnforcer)
	assert.Equal(t, delegation.MaxUint256Hex, valueCap.Terms)
}

func TestDelegationService_BuildForType_Failures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuerier := mocks.NewMockQuerier(ctrl)
	ctx := context.Background()
	service := services.NewDelegationService(mockQuerier, venues.NewRegistry())

	t.Run("unknown card type", func(t *testing.T) {
		mockQuerier.EXPECT().ListTokensByChain(ctx, testChainID).Return(chainTokens(), nil)

		_, _, err := service.BuildForType(ctx, testChainID, delegatorAddr, delegateAddr, types.CardType("yolo"))
		var cfgErr *services.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, err.Error(), "unknown card type")
	})

	t.Run("chain with no tokens", func(t *testing.T) {
		mockQuerier.EXPECT().ListTokensByChain(ctx, testChainID).Return(nil, nil)

		_, _, err := service.BuildForType(ctx, testChainID, delegatorAddr, delegateAddr, types.CardTypeTransfer)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no tokens configured")
	})
}

func TestDelegationBuildScope_EncodesCaveats(t *testing.T) {
	targets := []common.Address{
		common.HexToAddress(usdcAddress),
		common.HexToAddress(wethAddress),
	}
	selectors := [][]byte{{0xa9, 0x05, 0x9c, 0xbb}, {0x09, 0x5e, 0xa7, 0xb3}}

	unsigned, err := delegation.BuildScope(delegatorAddr, delegateAddr, targets, selectors)
	assert.NoError(t, err)

	assert.Len(t, unsigned.Salt, 2+64)

	targetCaveat := caveatByEnforcer(t, unsigned, delegation.AllowedTargetsEnforcer)
	assert.Len(t, targetCaveat.Terms, 2+2*40)

	methodCaveat := caveatByEnforcer(t, unsigned, delegation.AllowedMethodsEnforcer)
	assert.Equal(t, "0xa9059cbb095ea7b3", methodCaveat.Terms)

	// Two independent scopes get distinct salts.
	other, err := delegation.BuildScope(delegatorAddr, delegateAddr, targets, selectors)
	assert.NoError(t, err)
	assert.NotEqual(t, unsigned.Salt, other.Salt)
}
