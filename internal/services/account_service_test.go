package services_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/mocks"
	"github.com/cardrail/cardrail-api/internal/services"
	"github.com/cardrail/cardrail-api/internal/types"
)

func testFactories() map[int64]services.AccountFactory {
	return map[int64]services.AccountFactory{
		testChainID: {
			Factory:      common.HexToAddress("0x9406Cc6185a346906296840746125a0E44976454"),
			InitCodeHash: common.HexToHash("0x1f1e1d1c1b1a191817161514131211100f0e0d0c0b0a09080706050403020100"),
		},
	}
}

func TestAccountService_ResolveAddress_Deterministic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuerier := mocks.NewMockQuerier(ctrl)
	service := services.NewAccountService(mockQuerier, &fakeReader{}, testFactories())
	ctx := context.Background()

	owner := "0x3333333333333333333333333333333333333333"

	var derived []string
	mockQuerier.EXPECT().GetSmartAccount(ctx, gomock.Any()).
		Return(db.SmartAccount{}, pgx.ErrNoRows).Times(2)
	mockQuerier.EXPECT().UpsertSmartAccount(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, arg db.UpsertSmartAccountParams) (db.SmartAccount, error) {
			derived = append(derived, arg.AccountAddress)
			return db.SmartAccount{
				OwnerAddress:   arg.OwnerAddress,
				ChainID:        arg.ChainID,
				AccountAddress: arg.AccountAddress,
				Status:         arg.Status,
			}, nil
		}).Times(2)

	first, err := service.ResolveAddress(ctx, owner, testChainID, false)
	assert.NoError(t, err)
	second, err := service.ResolveAddress(ctx, owner, testChainID, false)
	assert.NoError(t, err)

	// Same owner, same chain, same factory: the derivation never changes.
	assert.Equal(t, first.AccountAddress, second.AccountAddress)
	assert.Equal(t, derived[0], derived[1])
	assert.NotEqual(t, owner, first.AccountAddress)
	assert.True(t, common.IsHexAddress(first.AccountAddress))
	assert.Equal(t, types.AccountStatusCounterfactual, first.Status)
}

func TestAccountService_ResolveAddress_ProbeStates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	owner := "0x3333333333333333333333333333333333333333"

	t.Run("code at address means deployed", func(t *testing.T) {
		mockQuerier := mocks.NewMockQuerier(ctrl)
		service := services.NewAccountService(mockQuerier, &fakeReader{code: []byte{0x60, 0x80}}, testFactories())

		mockQuerier.EXPECT().GetSmartAccount(ctx, gomock.Any()).Return(db.SmartAccount{}, pgx.ErrNoRows)
		mockQuerier.EXPECT().UpsertSmartAccount(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, arg db.UpsertSmartAccountParams) (db.SmartAccount, error) {
				assert.Equal(t, string(types.AccountStatusDeployed), arg.Status)
				return db.SmartAccount{AccountAddress: arg.AccountAddress, Status: arg.Status}, nil
			})

		resolved, err := service.ResolveAddress(ctx, owner, testChainID, false)
		assert.NoError(t, err)
		assert.Equal(t, types.AccountStatusDeployed, resolved.Status)
	})

	t.Run("deployed cache entry is returned without a probe", func(t *testing.T) {
		mockQuerier := mocks.NewMockQuerier(ctrl)
		service := services.NewAccountService(mockQuerier, &fakeReader{}, testFactories())

		mockQuerier.EXPECT().GetSmartAccount(ctx, gomock.Any()).
			Return(db.SmartAccount{
				OwnerAddress:   owner,
				ChainID:        testChainID,
				AccountAddress: "0x4444444444444444444444444444444444444444",
				Status:         string(types.AccountStatusDeployed),
			}, nil)

		resolved, err := service.ResolveAddress(ctx, owner, testChainID, false)
		assert.NoError(t, err)
		assert.Equal(t, "0x4444444444444444444444444444444444444444", resolved.AccountAddress)
		assert.Equal(t, types.AccountStatusDeployed, resolved.Status)
	})

	t.Run("counterfactual cache entry is re-probed", func(t *testing.T) {
		mockQuerier := mocks.NewMockQuerier(ctrl)
		// The account has been deployed since the last resolution.
		service := services.NewAccountService(mockQuerier, &fakeReader{code: []byte{0x60}}, testFactories())

		mockQuerier.EXPECT().GetSmartAccount(ctx, gomock.Any()).
			Return(db.SmartAccount{
				OwnerAddress:   owner,
				ChainID:        testChainID,
				AccountAddress: "0x4444444444444444444444444444444444444444",
				Status:         string(types.AccountStatusCounterfactual),
			}, nil)
		mockQuerier.EXPECT().UpsertSmartAccount(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, arg db.UpsertSmartAccountParams) (db.SmartAccount, error) {
				return db.SmartAccount{AccountAddress: arg.AccountAddress, Status: arg.Status}, nil
			})

		resolved, err := service.ResolveAddress(ctx, owner, testChainID, false)
		assert.NoError(t, err)
		assert.Equal(t, types.AccountStatusDeployed, resolved.Status)
	})

	t.Run("force refresh skips the cache", func(t *testing.T) {
		mockQuerier := mocks.NewMockQuerier(ctrl)
		service := services.NewAccountService(mockQuerier, &fakeReader{}, testFactories())

		// No GetSmartAccount expectation: a cache read would fail the test.
		mockQuerier.EXPECT().UpsertSmartAccount(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, arg db.UpsertSmartAccountParams) (db.SmartAccount, error) {
				return db.SmartAccount{AccountAddress: arg.AccountAddress, Status: arg.Status}, nil
			})

		resolved, err := service.ResolveAddress(ctx, owner, testChainID, true)
		assert.NoError(t, err)
		assert.Equal(t, types.AccountStatusCounterfactual, resolved.Status)
	})
}

func TestAccountService_ResolveAddress_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuerier := mocks.NewMockQuerier(ctrl)
	service := services.NewAccountService(mockQuerier, &fakeReader{}, testFactories())
	ctx := context.Background()

	t.Run("rejects a malformed owner address", func(t *testing.T) {
		_, err := service.ResolveAddress(ctx, "not-an-address", testChainID, false)
		var cfgErr *services.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("rejects a chain with no factory", func(t *testing.T) {
		mockQuerier.EXPECT().GetSmartAccount(ctx, gomock.Any()).Return(db.SmartAccount{}, pgx.ErrNoRows)

		_, err := service.ResolveAddress(ctx, "0x3333333333333333333333333333333333333333", 999, false)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no account factory configured")
	})
}
