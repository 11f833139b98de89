package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Network is a supported chain with its RPC endpoint.
type Network struct {
	ID        uuid.UUID
	ChainID   int64
	Name      string
	RpcUrl    string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Token is a chain-scoped ERC-20 (or native) token configuration.
type Token struct {
	ID              uuid.UUID
	ChainID         int64
	ContractAddress string
	Symbol          string
	Name            string
	Decimals        int32
	IsNative        bool
	Active          bool
	CreatedAt       time.Time
}

// SmartCard is a delegation record: the scoped permission a user grants the
// CardRail agent. Delegation holds the caveat-encoded scope as JSONB; the
// signature stays NULL until the user approves.
type SmartCard struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	ChainID          int64
	CardType         string
	DelegatorAddress string
	DelegateAddress  string
	Delegation       []byte
	Signature        pgtype.Text
	Status           string
	ExpiresAt        pgtype.Timestamptz
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        pgtype.Timestamptz
}

// SpendingLimit is the configured daily cap for a (card, token) pair.
// Amounts are base-unit integers stored as text.
type SpendingLimit struct {
	ID           uuid.UUID
	CardID       uuid.UUID
	TokenAddress string
	DailyLimit   string
	CreatedAt    time.Time
}

// SpendingRecord tracks rolling spend for a (card, token) pair. DailySpent is
// only meaningful while LastResetDate is the current UTC day.
type SpendingRecord struct {
	ID            uuid.UUID
	CardID        uuid.UUID
	TokenAddress  string
	DailySpent    string
	TotalSpent    string
	LastResetDate pgtype.Date
	UpdatedAt     time.Time
}

// CardStack is a budget envelope over one or more strategy sub-cards.
type CardStack struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	ChainID            int64
	Name               string
	TotalBudget        string
	PeriodSeconds      int64
	ExpiresAt          pgtype.Timestamptz
	SourceTokenAddress string
	TargetTokenAddress pgtype.Text
	AmountPerExecution string
	CardID             pgtype.UUID
	Status             string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SubCard is a single strategy allocation inside a card stack.
type SubCard struct {
	ID                  uuid.UUID
	StackID             uuid.UUID
	Strategy            string
	AllocationPercent   int32
	DailyLimit          pgtype.Text
	TargetTokenOverride pgtype.Text
	AmountPerExecution  pgtype.Text
	IntervalSeconds     int64
	CurrentSpent        string
	TotalSpent          string
	LastSpentDate       pgtype.Date
	NextExecutionAt     pgtype.Timestamptz
	Active              bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// SmartAccount caches a resolved counterfactual or deployed account address.
type SmartAccount struct {
	ID             uuid.UUID
	OwnerAddress   string
	ChainID        int64
	AccountAddress string
	Status         string
	UpdatedAt      time.Time
}

// CardTransaction records the outcome of one delegated execution.
type CardTransaction struct {
	ID             uuid.UUID
	CardID         pgtype.UUID
	SubCardID      pgtype.UUID
	ChainID        int64
	TransferTxHash pgtype.Text
	SwapTxHash     pgtype.Text
	AmountIn       string
	AmountOut      pgtype.Text
	SourceToken    string
	TargetToken    pgtype.Text
	Success        bool
	ErrorMessage   pgtype.Text
	CreatedAt      time.Time
}

// ActivityLog is an audit trail entry, written best-effort.
type ActivityLog struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	EventType   string
	Description string
	Metadata    []byte
	CreatedAt   time.Time
}
