package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Querier is the interface services depend on; Queries is the pgx-backed
// implementation and internal/mocks carries the generated mock.
type Querier interface {
	GetNetworkByChainID(ctx context.Context, chainID int64) (Network, error)
	ListActiveNetworks(ctx context.Context) ([]Network, error)

	GetTokenByAddress(ctx context.Context, arg GetTokenByAddressParams) (Token, error)
	ListTokensByChain(ctx context.Context, chainID int64) ([]Token, error)

	CreateSmartCard(ctx context.Context, arg CreateSmartCardParams) (SmartCard, error)
	GetSmartCard(ctx context.Context, id uuid.UUID) (SmartCard, error)
	ListSmartCardsByUser(ctx context.Context, userID uuid.UUID) ([]SmartCard, error)
	SoftDeleteSmartCardsByType(ctx context.Context, arg SoftDeleteSmartCardsByTypeParams) error
	UpdateSmartCardSignature(ctx context.Context, arg UpdateSmartCardSignatureParams) (SmartCard, error)
	UpdateSmartCardStatus(ctx context.Context, arg UpdateSmartCardStatusParams) (SmartCard, error)

	CreateSpendingLimit(ctx context.Context, arg CreateSpendingLimitParams) (SpendingLimit, error)
	GetSpendingLimit(ctx context.Context, arg GetSpendingLimitParams) (SpendingLimit, error)
	ListSpendingLimitsByCard(ctx context.Context, cardID uuid.UUID) ([]SpendingLimit, error)
	GetSpendingRecord(ctx context.Context, arg GetSpendingRecordParams) (SpendingRecord, error)
	UpsertSpendingRecord(ctx context.Context, arg UpsertSpendingRecordParams) (SpendingRecord, error)
	IncrementSpending(ctx context.Context, arg IncrementSpendingParams) (SpendingRecord, error)

	CreateCardStack(ctx context.Context, arg CreateCardStackParams) (CardStack, error)
	GetCardStack(ctx context.Context, id uuid.UUID) (CardStack, error)
	ListCardStacksByUser(ctx context.Context, userID uuid.UUID) ([]CardStack, error)
	CreateSubCard(ctx context.Context, arg CreateSubCardParams) (SubCard, error)
	GetSubCard(ctx context.Context, id uuid.UUID) (SubCard, error)
	ListSubCardsByStack(ctx context.Context, stackID uuid.UUID) ([]SubCard, error)
	ListDueSubCards(ctx context.Context, limit int32) ([]SubCard, error)
	UpdateSubCardSpend(ctx context.Context, arg UpdateSubCardSpendParams) (SubCard, error)
	UpdateSubCardNextExecution(ctx context.Context, arg UpdateSubCardNextExecutionParams) error

	GetSmartAccount(ctx context.Context, arg GetSmartAccountParams) (SmartAccount, error)
	UpsertSmartAccount(ctx context.Context, arg UpsertSmartAccountParams) (SmartAccount, error)

	CreateCardTransaction(ctx context.Context, arg CreateCardTransactionParams) (CardTransaction, error)
	ListCardTransactionsByCard(ctx context.Context, cardID pgtype.UUID) ([]CardTransaction, error)
	CreateActivityLog(ctx context.Context, arg CreateActivityLogParams) (ActivityLog, error)
}

var _ Querier = (*Queries)(nil)
