package services

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cardrail/cardrail-api/internal/chain"
	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/logger"
	"github.com/cardrail/cardrail-api/internal/types"
)

// AccountFactory identifies the deterministic-deployment factory for a chain:
// the factory contract plus the keccak hash of the account proxy's creation
// code. Both feed the counterfactual address derivation.
type AccountFactory struct {
	Factory      common.Address
	InitCodeHash common.Hash
}

// AccountService resolves a user's smart account address. Addresses are
// derived counterfactually, so they are known before any deployment exists;
// a code probe distinguishes deployed accounts from counterfactual ones.
type AccountService struct {
	queries   db.Querier
	reader    chain.Reader
	factories map[int64]AccountFactory
	logger    *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(queries db.Querier, reader chain.Reader, factories map[int64]AccountFactory) *AccountService {
	return &AccountService{
		queries:   queries,
		reader:    reader,
		factories: factories,
		logger:    logger.Log,
	}
}

// ResolvedAccount is a smart account address plus its deployment state.
type ResolvedAccount struct {
	OwnerAddress   string              `json:"owner_address"`
	AccountAddress string              `json:"account_address"`
	ChainID        int64               `json:"chain_id"`
	Status         types.AccountStatus `json:"status"`
}

// ResolveAddress returns the smart account address for an owner on a chain.
// Cached resolutions are returned as-is unless forceRefresh is set, which
// re-derives the address and re-probes deployment state. A counterfactual
// cache entry is always re-probed: deployment can happen at any time and
// only moves forward.
func (s *AccountService) ResolveAddress(ctx context.Context, ownerAddress string, chainID int64, forceRefresh bool) (*ResolvedAccount, error) {
	if !common.IsHexAddress(ownerAddress) {
		return nil, configErrorf("invalid owner address %q", ownerAddress)
	}

	if !forceRefresh {
		cached, err := s.queries.GetSmartAccount(ctx, db.GetSmartAccountParams{
			OwnerAddress: ownerAddress,
			ChainID:      chainID,
		})
		switch {
		case err == nil && cached.Status == string(types.AccountStatusDeployed):
			return &ResolvedAccount{
				OwnerAddress:   cached.OwnerAddress,
				AccountAddress: cached.AccountAddress,
				ChainID:        chainID,
				Status:         types.AccountStatusDeployed,
			}, nil
		case err == nil:
			return s.probeAndStore(ctx, ownerAddress, chainID, common.HexToAddress(cached.AccountAddress))
		case errors.Is(err, pgx.ErrNoRows):
			// fall through to derivation
		default:
			return nil, fmt.Errorf("failed to read cached account: %w", err)
		}
	}

	accountAddress, err := s.deriveAddress(ownerAddress, chainID)
	if err != nil {
		return nil, err
	}
	return s.probeAndStore(ctx, ownerAddress, chainID, accountAddress)
}

// deriveAddress computes the CREATE2 address:
// keccak256(0xff ++ factory ++ salt ++ initCodeHash)[12:], with the salt
// bound to the owner so each owner gets a distinct account.
func (s *AccountService) deriveAddress(ownerAddress string, chainID int64) (common.Address, error) {
	factory, ok := s.factories[chainID]
	if !ok {
		return common.Address{}, configErrorf("no account factory configured for chain %d", chainID)
	}

	salt := crypto.Keccak256Hash(common.LeftPadBytes(common.HexToAddress(ownerAddress).Bytes(), 32))

	preimage := make([]byte, 0, 1+20+32+32)
	preimage = append(preimage, 0xff)
	preimage = append(preimage, factory.Factory.Bytes()...)
	preimage = append(preimage, salt.Bytes()...)
	preimage = append(preimage, factory.InitCodeHash.Bytes()...)

	return common.BytesToAddress(crypto.Keccak256(preimage)[12:]), nil
}

// probeAndStore checks on-chain code at the derived address and persists the
// resolution for later reads.
func (s *AccountService) probeAndStore(ctx context.Context, ownerAddress string, chainID int64, accountAddress common.Address) (*ResolvedAccount, error) {
	code, err := s.reader.CodeAt(ctx, chainID, accountAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to probe account code: %w", err)
	}

	status := types.AccountStatusCounterfactual
	if len(code) > 0 {
		status = types.AccountStatusDeployed
	}

	stored, err := s.queries.UpsertSmartAccount(ctx, db.UpsertSmartAccountParams{
		OwnerAddress:   ownerAddress,
		ChainID:        chainID,
		AccountAddress: accountAddress.Hex(),
		Status:         string(status),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store account resolution: %w", err)
	}

	s.logger.Debug("Resolved smart account",
		zap.String("owner", ownerAddress),
		zap.Int64("chain_id", chainID),
		zap.String("account", stored.AccountAddress),
		zap.String("status", string(status)),
	)

	return &ResolvedAccount{
		OwnerAddress:   ownerAddress,
		AccountAddress: stored.AccountAddress,
		ChainID:        chainID,
		Status:         status,
	}, nil
}
