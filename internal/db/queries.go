package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Networks ---

const getNetworkByChainID = `
SELECT id, chain_id, name, rpc_url, active, created_at, updated_at
FROM networks
WHERE chain_id = $1 AND active = true`

func (q *Queries) GetNetworkByChainID(ctx context.Context, chainID int64) (Network, error) {
	var n Network
	err := q.db.QueryRow(ctx, getNetworkByChainID, chainID).Scan(
		&n.ID, &n.ChainID, &n.Name, &n.RpcUrl, &n.Active, &n.CreatedAt, &n.UpdatedAt,
	)
	return n, err
}

const listActiveNetworks = `
SELECT id, chain_id, name, rpc_url, active, created_at, updated_at
FROM networks
WHERE active = true
ORDER BY chain_id`

func (q *Queries) ListActiveNetworks(ctx context.Context) ([]Network, error) {
	rows, err := q.db.Query(ctx, listActiveNetworks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var networks []Network
	for rows.Next() {
		var n Network
		if err := rows.Scan(&n.ID, &n.ChainID, &n.Name, &n.RpcUrl, &n.Active, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		networks = append(networks, n)
	}
	return networks, rows.Err()
}

// --- Tokens ---

type GetTokenByAddressParams struct {
	ChainID         int64
	ContractAddress string
}

const getTokenByAddress = `
SELECT id, chain_id, contract_address, symbol, name, decimals, is_native, active, created_at
FROM tokens
WHERE chain_id = $1 AND lower(contract_address) = lower($2) AND active = true`

func (q *Queries) GetTokenByAddress(ctx context.Context, arg GetTokenByAddressParams) (Token, error) {
	var t Token
	err := q.db.QueryRow(ctx, getTokenByAddress, arg.ChainID, arg.ContractAddress).Scan(
		&t.ID, &t.ChainID, &t.ContractAddress, &t.Symbol, &t.Name, &t.Decimals, &t.IsNative, &t.Active, &t.CreatedAt,
	)
	return t, err
}

const listTokensByChain = `
SELECT id, chain_id, contract_address, symbol, name, decimals, is_native, active, created_at
FROM tokens
WHERE chain_id = $1 AND active = true
ORDER BY symbol`

func (q *Queries) ListTokensByChain(ctx context.Context, chainID int64) ([]Token, error) {
	rows, err := q.db.Query(ctx, listTokensByChain, chainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tokens []Token
	for rows.Next() {
		var t Token
		if err := rows.Scan(&t.ID, &t.ChainID, &t.ContractAddress, &t.Symbol, &t.Name, &t.Decimals, &t.IsNative, &t.Active, &t.CreatedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// --- Smart cards ---

type CreateSmartCardParams struct {
	UserID           uuid.UUID
	ChainID          int64
	CardType         string
	DelegatorAddress string
	DelegateAddress  string
	Delegation       []byte
	Status           string
	ExpiresAt        pgtype.Timestamptz
}

const createSmartCard = `
INSERT INTO smart_cards (
	user_id, chain_id, card_type, delegator_address, delegate_address, delegation, status, expires_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, user_id, chain_id, card_type, delegator_address, delegate_address, delegation,
	signature, status, expires_at, created_at, updated_at, deleted_at`

func (q *Queries) CreateSmartCard(ctx context.Context, arg CreateSmartCardParams) (SmartCard, error) {
	var c SmartCard
	err := q.db.QueryRow(ctx, createSmartCard,
		arg.UserID, arg.ChainID, arg.CardType, arg.DelegatorAddress, arg.DelegateAddress,
		arg.Delegation, arg.Status, arg.ExpiresAt,
	).Scan(
		&c.ID, &c.UserID, &c.ChainID, &c.CardType, &c.DelegatorAddress, &c.DelegateAddress,
		&c.Delegation, &c.Signature, &c.Status, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	return c, err
}

const getSmartCard = `
SELECT id, user_id, chain_id, card_type, delegator_address, delegate_address, delegation,
	signature, status, expires_at, created_at, updated_at, deleted_at
FROM smart_cards
WHERE id = $1 AND deleted_at IS NULL`

func (q *Queries) GetSmartCard(ctx context.Context, id uuid.UUID) (SmartCard, error) {
	var c SmartCard
	err := q.db.QueryRow(ctx, getSmartCard, id).Scan(
		&c.ID, &c.UserID, &c.ChainID, &c.CardType, &c.DelegatorAddress, &c.DelegateAddress,
		&c.Delegation, &c.Signature, &c.Status, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	return c, err
}

const listSmartCardsByUser = `
SELECT id, user_id, chain_id, card_type, delegator_address, delegate_address, delegation,
	signature, status, expires_at, created_at, updated_at, deleted_at
FROM smart_cards
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC`

func (q *Queries) ListSmartCardsByUser(ctx context.Context, userID uuid.UUID) ([]SmartCard, error) {
	rows, err := q.db.Query(ctx, listSmartCardsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cards []SmartCard
	for rows.Next() {
		var c SmartCard
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.ChainID, &c.CardType, &c.DelegatorAddress, &c.DelegateAddress,
			&c.Delegation, &c.Signature, &c.Status, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
		); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

type SoftDeleteSmartCardsByTypeParams struct {
	UserID   uuid.UUID
	ChainID  int64
	CardType string
}

const softDeleteSmartCardsByType = `
UPDATE smart_cards
SET deleted_at = now(), updated_at = now()
WHERE user_id = $1 AND chain_id = $2 AND card_type = $3 AND deleted_at IS NULL`

// SoftDeleteSmartCardsByType supersedes any prior card of the same
// (user, chain, type) so at most one non-deleted card exists per key.
func (q *Queries) SoftDeleteSmartCardsByType(ctx context.Context, arg SoftDeleteSmartCardsByTypeParams) error {
	_, err := q.db.Exec(ctx, softDeleteSmartCardsByType, arg.UserID, arg.ChainID, arg.CardType)
	return err
}

type UpdateSmartCardSignatureParams struct {
	ID        uuid.UUID
	Signature pgtype.Text
	Status    string
}

const updateSmartCardSignature = `
UPDATE smart_cards
SET signature = $2, status = $3, updated_at = now()
WHERE id = $1 AND deleted_at IS NULL
RETURNING id, user_id, chain_id, card_type, delegator_address, delegate_address, delegation,
	signature, status, expires_at, created_at, updated_at, deleted_at`

func (q *Queries) UpdateSmartCardSignature(ctx context.Context, arg UpdateSmartCardSignatureParams) (SmartCard, error) {
	var c SmartCard
	err := q.db.QueryRow(ctx, updateSmartCardSignature, arg.ID, arg.Signature, arg.Status).Scan(
		&c.ID, &c.UserID, &c.ChainID, &c.CardType, &c.DelegatorAddress, &c.DelegateAddress,
		&c.Delegation, &c.Signature, &c.Status, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	return c, err
}

type UpdateSmartCardStatusParams struct {
	ID     uuid.UUID
	Status string
}

const updateSmartCardStatus = `
UPDATE smart_cards
SET status = $2, updated_at = now()
WHERE id = $1 AND deleted_at IS NULL
RETURNING id, user_id, chain_id, card_type, delegator_address, delegate_address, delegation,
	signature, status, expires_at, created_at, updated_at, deleted_at`

func (q *Queries) UpdateSmartCardStatus(ctx context.Context, arg UpdateSmartCardStatusParams) (SmartCard, error) {
	var c SmartCard
	err := q.db.QueryRow(ctx, updateSmartCardStatus, arg.ID, arg.Status).Scan(
		&c.ID, &c.UserID, &c.ChainID, &c.CardType, &c.DelegatorAddress, &c.DelegateAddress,
		&c.Delegation, &c.Signature, &c.Status, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	return c, err
}

// --- Spending limits & records ---

type CreateSpendingLimitParams struct {
	CardID       uuid.UUID
	TokenAddress string
	DailyLimit   string
}

const createSpendingLimit = `
INSERT INTO spending_limits (card_id, token_address, daily_limit)
VALUES ($1, lower($2), $3)
RETURNING id, card_id, token_address, daily_limit, created_at`

func (q *Queries) CreateSpendingLimit(ctx context.Context, arg CreateSpendingLimitParams) (SpendingLimit, error) {
	var l SpendingLimit
	err := q.db.QueryRow(ctx, createSpendingLimit, arg.CardID, arg.TokenAddress, arg.DailyLimit).Scan(
		&l.ID, &l.CardID, &l.TokenAddress, &l.DailyLimit, &l.CreatedAt,
	)
	return l, err
}

type GetSpendingLimitParams struct {
	CardID       uuid.UUID
	TokenAddress string
}

const getSpendingLimit = `
SELECT id, card_id, token_address, daily_limit, created_at
FROM spending_limits
WHERE card_id = $1 AND token_address = lower($2)`

func (q *Queries) GetSpendingLimit(ctx context.Context, arg GetSpendingLimitParams) (SpendingLimit, error) {
	var l SpendingLimit
	err := q.db.QueryRow(ctx, getSpendingLimit, arg.CardID, arg.TokenAddress).Scan(
		&l.ID, &l.CardID, &l.TokenAddress, &l.DailyLimit, &l.CreatedAt,
	)
	return l, err
}

const listSpendingLimitsByCard = `
SELECT id, card_id, token_address, daily_limit, created_at
FROM spending_limits
WHERE card_id = $1
ORDER BY token_address`

func (q *Queries) ListSpendingLimitsByCard(ctx context.Context, cardID uuid.UUID) ([]SpendingLimit, error) {
	rows, err := q.db.Query(ctx, listSpendingLimitsByCard, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var limits []SpendingLimit
	for rows.Next() {
		var l SpendingLimit
		if err := rows.Scan(&l.ID, &l.CardID, &l.TokenAddress, &l.DailyLimit, &l.CreatedAt); err != nil {
			return nil, err
		}
		limits = append(limits, l)
	}
	return limits, rows.Err()
}

type GetSpendingRecordParams struct {
	CardID       uuid.UUID
	TokenAddress string
}

const getSpendingRecord = `
SELECT id, card_id, token_address, daily_spent, total_spent, last_reset_date, updated_at
FROM spending_records
WHERE card_id = $1 AND token_address = lower($2)`

func (q *Queries) GetSpendingRecord(ctx context.Context, arg GetSpendingRecordParams) (SpendingRecord, error) {
	var r SpendingRecord
	err := q.db.QueryRow(ctx, getSpendingRecord, arg.CardID, arg.TokenAddress).Scan(
		&r.ID, &r.CardID, &r.TokenAddress, &r.DailySpent, &r.TotalSpent, &r.LastResetDate, &r.UpdatedAt,
	)
	return r, err
}

const getSpendingRecordForUpdate = `
SELECT id, card_id, token_address, daily_spent, total_spent, last_reset_date, updated_at
FROM spending_records
WHERE card_id = $1 AND token_address = lower($2)
FOR UPDATE`

func (q *Queries) getSpendingRecordForUpdate(ctx context.Context, tx pgx.Tx, arg GetSpendingRecordParams) (SpendingRecord, error) {
	var r SpendingRecord
	err := tx.QueryRow(ctx, getSpendingRecordForUpdate, arg.CardID, arg.TokenAddress).Scan(
		&r.ID, &r.CardID, &r.TokenAddress, &r.DailySpent, &r.TotalSpent, &r.LastResetDate, &r.UpdatedAt,
	)
	return r, err
}

type UpsertSpendingRecordParams struct {
	CardID        uuid.UUID
	TokenAddress  string
	DailySpent    string
	TotalSpent    string
	LastResetDate pgtype.Date
}

const upsertSpendingRecord = `
INSERT INTO spending_records (card_id, token_address, daily_spent, total_spent, last_reset_date)
VALUES ($1, lower($2), $3, $4, $5)
ON CONFLICT (card_id, token_address) DO UPDATE
SET daily_spent = EXCLUDED.daily_spent,
	total_spent = EXCLUDED.total_spent,
	last_reset_date = EXCLUDED.last_reset_date,
	updated_at = now()
RETURNING id, card_id, token_address, daily_spent, total_spent, last_reset_date, updated_at`

func (q *Queries) UpsertSpendingRecord(ctx context.Context, arg UpsertSpendingRecordParams) (SpendingRecord, error) {
	var r SpendingRecord
	err := q.db.QueryRow(ctx, upsertSpendingRecord,
		arg.CardID, arg.TokenAddress, arg.DailySpent, arg.TotalSpent, arg.LastResetDate,
	).Scan(&r.ID, &r.CardID, &r.TokenAddress, &r.DailySpent, &r.TotalSpent, &r.LastResetDate, &r.UpdatedAt)
	return r, err
}

// --- Card stacks & sub-cards ---

type CreateCardStackParams struct {
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
}

const createCardStack = `
INSERT INTO card_stacks (
	user_id, chain_id, name, total_budget, period_seconds, expires_at,
	source_token_address, target_token_address, amount_per_execution, card_id, status
) VALUES ($1, $2, $3, $4, $5, $6, lower($7), $8, $9, $10, $11)
RETURNING id, user_id, chain_id, name, total_budget, period_seconds, expires_at,
	source_token_address, target_token_address, amount_per_execution, card_id, status, created_at, updated_at`

func (q *Queries) CreateCardStack(ctx context.Context, arg CreateCardStackParams) (CardStack, error) {
	var s CardStack
	err := q.db.QueryRow(ctx, createCardStack,
		arg.UserID, arg.ChainID, arg.Name, arg.TotalBudget, arg.PeriodSeconds, arg.ExpiresAt,
		arg.SourceTokenAddress, arg.TargetTokenAddress, arg.AmountPerExecution, arg.CardID, arg.Status,
	).Scan(
		&s.ID, &s.UserID, &s.ChainID, &s.Name, &s.TotalBudget, &s.PeriodSeconds, &s.ExpiresAt,
		&s.SourceTokenAddress, &s.TargetTokenAddress, &s.AmountPerExecution, &s.CardID, &s.Status,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

const getCardStack = `
SELECT id, user_id, chain_id, name, total_budget, period_seconds, expires_at,
	source_token_address, target_token_address, amount_per_execution, card_id, status, created_at, updated_at
FROM card_stacks
WHERE id = $1`

func (q *Queries) GetCardStack(ctx context.Context, id uuid.UUID) (CardStack, error) {
	var s CardStack
	err := q.db.QueryRow(ctx, getCardStack, id).Scan(
		&s.ID, &s.UserID, &s.ChainID, &s.Name, &s.TotalBudget, &s.PeriodSeconds, &s.ExpiresAt,
		&s.SourceTokenAddress, &s.TargetTokenAddress, &s.AmountPerExecution, &s.CardID, &s.Status,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

const listCardStacksByUser = `
SELECT id, user_id, chain_id, name, total_budget, period_seconds, expires_at,
	source_token_address, target_token_address, amount_per_execution, card_id, status, created_at, updated_at
FROM card_stacks
WHERE user_id = $1
ORDER BY created_at DESC`

func (q *Queries) ListCardStacksByUser(ctx context.Context, userID uuid.UUID) ([]CardStack, error) {
	rows, err := q.db.Query(ctx, listCardStacksByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stacks []CardStack
	for rows.Next() {
		var s CardStack
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.ChainID, &s.Name, &s.TotalBudget, &s.PeriodSeconds, &s.ExpiresAt,
			&s.SourceTokenAddress, &s.TargetTokenAddress, &s.AmountPerExecution, &s.CardID, &s.Status,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		stacks = append(stacks, s)
	}
	return stacks, rows.Err()
}

type CreateSubCardParams struct {
	StackID             uuid.UUID
	Strategy            string
	AllocationPercent   int32
	DailyLimit          pgtype.Text
	TargetTokenOverride pgtype.Text
	AmountPerExecution  pgtype.Text
	IntervalSeconds     int64
	NextExecutionAt     pgtype.Timestamptz
}

const createSubCard = `
INSERT INTO sub_cards (
	stack_id, strategy, allocation_percent, daily_limit, target_token_override,
	amount_per_execution, interval_seconds, next_execution_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, stack_id, strategy, allocation_percent, daily_limit, target_token_override,
	amount_per_execution, interval_seconds, current_spent, total_spent, last_spent_date,
	next_execution_at, active, created_at, updated_at`

func (q *Queries) CreateSubCard(ctx context.Context, arg CreateSubCardParams) (SubCard, error) {
	var sc SubCard
	err := q.db.QueryRow(ctx, createSubCard,
		arg.StackID, arg.Strategy, arg.AllocationPercent, arg.DailyLimit, arg.TargetTokenOverride,
		arg.AmountPerExecution, arg.IntervalSeconds, arg.NextExecutionAt,
	).Scan(
		&sc.ID, &sc.StackID, &sc.Strategy, &sc.AllocationPercent, &sc.DailyLimit, &sc.TargetTokenOverride,
		&sc.AmountPerExecution, &sc.IntervalSeconds, &sc.CurrentSpent, &sc.TotalSpent, &sc.LastSpentDate,
		&sc.NextExecutionAt, &sc.Active, &sc.CreatedAt, &sc.UpdatedAt,
	)
	return sc, err
}

const getSubCard = `
SELECT id, stack_id, strategy, allocation_percent, daily_limit, target_token_override,
	amount_per_execution, interval_seconds, current_spent, total_spent, last_spent_date,
	next_execution_at, active, created_at, updated_at
FROM sub_cards
WHERE id = $1`

func (q *Queries) GetSubCard(ctx context.Context, id uuid.UUID) (SubCard, error) {
	var sc SubCard
	err := q.db.QueryRow(ctx, getSubCard, id).Scan(
		&sc.ID, &sc.StackID, &sc.Strategy, &sc.AllocationPercent, &sc.DailyLimit, &sc.TargetTokenOverride,
		&sc.AmountPerExecution, &sc.IntervalSeconds, &sc.CurrentSpent, &sc.TotalSpent, &sc.LastSpentDate,
		&sc.NextExecutionAt, &sc.Active, &sc.CreatedAt, &sc.UpdatedAt,
	)
	return sc, err
}

const listSubCardsByStack = `
SELECT id, stack_id, strategy, allocation_percent, daily_limit, target_token_override,
	amount_per_execution, interval_seconds, current_spent, total_spent, last_spent_date,
	next_execution_at, active, created_at, updated_at
FROM sub_cards
WHERE stack_id = $1
ORDER BY created_at`

func (q *Queries) ListSubCardsByStack(ctx context.Context, stackID uuid.UUID) ([]SubCard, error) {
	rows, err := q.db.Query(ctx, listSubCardsByStack, stackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subCards []SubCard
	for rows.Next() {
		var sc SubCard
		if err := rows.Scan(
			&sc.ID, &sc.StackID, &sc.Strategy, &sc.AllocationPercent, &sc.DailyLimit, &sc.TargetTokenOverride,
			&sc.AmountPerExecution, &sc.IntervalSeconds, &sc.CurrentSpent, &sc.TotalSpent, &sc.LastSpentDate,
			&sc.NextExecutionAt, &sc.Active, &sc.CreatedAt, &sc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		subCards = append(subCards, sc)
	}
	return subCards, rows.Err()
}

const listDueSubCards = `
SELECT sc.id, sc.stack_id, sc.strategy, sc.allocation_percent, sc.daily_limit, sc.target_token_override,
	sc.amount_per_execution, sc.interval_seconds, sc.current_spent, sc.total_spent, sc.last_spent_date,
	sc.next_execution_at, sc.active, sc.created_at, sc.updated_at
FROM sub_cards sc
JOIN card_stacks cs ON cs.id = sc.stack_id
WHERE sc.active = true
	AND cs.status = 'active'
	AND sc.next_execution_at IS NOT NULL
	AND sc.next_execution_at <= now()
	AND (cs.expires_at IS NULL OR cs.expires_at > now())
ORDER BY sc.next_execution_at
LIMIT $1`

func (q *Queries) ListDueSubCards(ctx context.Context, limit int32) ([]SubCard, error) {
	rows, err := q.db.Query(ctx, listDueSubCards, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subCards []SubCard
	for rows.Next() {
		var sc SubCard
		if err := rows.Scan(
			&sc.ID, &sc.StackID, &sc.Strategy, &sc.AllocationPercent, &sc.DailyLimit, &sc.TargetTokenOverride,
			&sc.AmountPerExecution, &sc.IntervalSeconds, &sc.CurrentSpent, &sc.TotalSpent, &sc.LastSpentDate,
			&sc.NextExecutionAt, &sc.Active, &sc.CreatedAt, &sc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		subCards = append(subCards, sc)
	}
	return subCards, rows.Err()
}

type UpdateSubCardSpendParams struct {
	ID            uuid.UUID
	CurrentSpent  string
	TotalSpent    string
	LastSpentDate pgtype.Date
}

const updateSubCardSpend = `
UPDATE sub_cards
SET current_spent = $2, total_spent = $3, last_spent_date = $4, updated_at = now()
WHERE id = $1
RETURNING id, stack_id, strategy, allocation_percent, daily_limit, target_token_override,
	amount_per_execution, interval_seconds, current_spent, total_spent, last_spent_date,
	next_execution_at, active, created_at, updated_at`

func (q *Queries) UpdateSubCardSpend(ctx context.Context, arg UpdateSubCardSpendParams) (SubCard, error) {
	var sc SubCard
	err := q.db.QueryRow(ctx, updateSubCardSpend, arg.ID, arg.CurrentSpent, arg.TotalSpent, arg.LastSpentDate).Scan(
		&sc.ID, &sc.StackID, &sc.Strategy, &sc.AllocationPercent, &sc.DailyLimit, &sc.TargetTokenOverride,
		&sc.AmountPerExecution, &sc.IntervalSeconds, &sc.CurrentSpent, &sc.TotalSpent, &sc.LastSpentDate,
		&sc.NextExecutionAt, &sc.Active, &sc.CreatedAt, &sc.UpdatedAt,
	)
	return sc, err
}

type UpdateSubCardNextExecutionParams struct {
	ID              uuid.UUID
	NextExecutionAt pgtype.Timestamptz
}

const updateSubCardNextExecution = `
UPDATE sub_cards
SET next_execution_at = $2, updated_at = now()
WHERE id = $1`

func (q *Queries) UpdateSubCardNextExecution(ctx context.Context, arg UpdateSubCardNextExecutionParams) error {
	_, err := q.db.Exec(ctx, updateSubCardNextExecution, arg.ID, arg.NextExecutionAt)
	return err
}

// --- Smart accounts ---

type GetSmartAccountParams struct {
	OwnerAddress string
	ChainID      int64
}

const getSmartAccount = `
SELECT id, owner_address, chain_id, account_address, status, updated_at
FROM smart_accounts
WHERE lower(owner_address) = lower($1) AND chain_id = $2`

func (q *Queries) GetSmartAccount(ctx context.Context, arg GetSmartAccountParams) (SmartAccount, error) {
	var a SmartAccount
	err := q.db.QueryRow(ctx, getSmartAccount, arg.OwnerAddress, arg.ChainID).Scan(
		&a.ID, &a.OwnerAddress, &a.ChainID, &a.AccountAddress, &a.Status, &a.UpdatedAt,
	)
	return a, err
}

type UpsertSmartAccountParams struct {
	OwnerAddress   string
	ChainID        int64
	AccountAddress string
	Status         string
}

const upsertSmartAccount = `
INSERT INTO smart_accounts (owner_address, chain_id, account_address, status)
VALUES (lower($1), $2, $3, $4)
ON CONFLICT (owner_address, chain_id) DO UPDATE
SET account_address = EXCLUDED.account_address,
	status = EXCLUDED.status,
	updated_at = now()
RETURNING id, owner_address, chain_id, account_address, status, updated_at`

func (q *Queries) UpsertSmartAccount(ctx context.Context, arg UpsertSmartAccountParams) (SmartAccount, error) {
	var a SmartAccount
	err := q.db.QueryRow(ctx, upsertSmartAccount, arg.OwnerAddress, arg.ChainID, arg.AccountAddress, arg.Status).Scan(
		&a.ID, &a.OwnerAddress, &a.ChainID, &a.AccountAddress, &a.Status, &a.UpdatedAt,
	)
	return a, err
}

// --- Transactions & activity ---

type CreateCardTransactionParams struct {
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
}

const createCardTransaction = `
INSERT INTO card_transactions (
	card_id, sub_card_id, chain_id, transfer_tx_hash, swap_tx_hash,
	amount_in, amount_out, source_token, target_token, success, error_message
) VALUES ($1, $2, $3, $4, $5, $6, $7, lower($8), $9, $10, $11)
RETURNING id, card_id, sub_card_id, chain_id, transfer_tx_hash, swap_tx_hash,
	amount_in, amount_out, source_token, target_token, success, error_message, created_at`

func (q *Queries) CreateCardTransaction(ctx context.Context, arg CreateCardTransactionParams) (CardTransaction, error) {
	var t CardTransaction
	err := q.db.QueryRow(ctx, createCardTransaction,
		arg.CardID, arg.SubCardID, arg.ChainID, arg.TransferTxHash, arg.SwapTxHash,
		arg.AmountIn, arg.AmountOut, arg.SourceToken, arg.TargetToken, arg.Success, arg.ErrorMessage,
	).Scan(
		&t.ID, &t.CardID, &t.SubCardID, &t.ChainID, &t.TransferTxHash, &t.SwapTxHash,
		&t.AmountIn, &t.AmountOut, &t.SourceToken, &t.TargetToken, &t.Success, &t.ErrorMessage, &t.CreatedAt,
	)
	return t, err
}

const listCardTransactionsByCard = `
SELECT id, card_id, sub_card_id, chain_id, transfer_tx_hash, swap_tx_hash,
	amount_in, amount_out, source_token, target_token, success, error_message, created_at
FROM card_transactions
WHERE card_id = $1
ORDER BY created_at DESC
LIMIT 100`

func (q *Queries) ListCardTransactionsByCard(ctx context.Context, cardID pgtype.UUID) ([]CardTransaction, error) {
	rows, err := q.db.Query(ctx, listCardTransactionsByCard, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var txs []CardTransaction
	for rows.Next() {
		var t CardTransaction
		if err := rows.Scan(
			&t.ID, &t.CardID, &t.SubCardID, &t.ChainID, &t.TransferTxHash, &t.SwapTxHash,
			&t.AmountIn, &t.AmountOut, &t.SourceToken, &t.TargetToken, &t.Success, &t.ErrorMessage, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

type CreateActivityLogParams struct {
	UserID      uuid.UUID
	EventType   string
	Description string
	Metadata    []byte
}

const createActivityLog = `
INSERT INTO activity_logs (user_id, event_type, description, metadata)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, event_type, description, metadata, created_at`

func (q *Queries) CreateActivityLog(ctx context.Context, arg CreateActivityLogParams) (ActivityLog, error) {
	var a ActivityLog
	err := q.db.QueryRow(ctx, createActivityLog, arg.UserID, arg.EventType, arg.Description, arg.Metadata).Scan(
		&a.ID, &a.UserID, &a.EventType, &a.Description, &a.Metadata, &a.CreatedAt,
	)
	return a, err
}
