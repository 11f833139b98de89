package db

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// IncrementSpendingParams describes one successful spend to be applied to a
// (card, token) spending record.
type IncrementSpendingParams struct {
	CardID       uuid.UUID
	TokenAddress string
	Amount       string
	Today        time.Time
}

// ApplyIncrement computes the post-increment counters for a spending record.
// If the record's last reset date is not the same UTC calendar day as today,
// the daily counter re-bases to the increment amount instead of adding to the
// stale value. TotalSpent always grows.
func ApplyIncrement(dailySpent, totalSpent string, lastReset time.Time, amount string, today time.Time) (newDaily, newTotal string, err error) {
	amt, ok := new(big.Int).SetString(amount, 10)
	if !ok || amt.Sign() < 0 {
		return "", "", fmt.Errorf("invalid increment amount: %q", amount)
	}

	total, ok := new(big.Int).SetString(totalSpent, 10)
	if !ok {
		total = big.NewInt(0)
	}
	total = new(big.Int).Add(total, amt)

	if !SameUTCDay(lastReset, today) {
		return amt.String(), total.String(), nil
	}

	daily, ok := new(big.Int).SetString(dailySpent, 10)
	if !ok {
		daily = big.NewInt(0)
	}
	return new(big.Int).Add(daily, amt).String(), total.String(), nil
}

// SameUTCDay reports whether two instants fall on the same UTC calendar day.
func SameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// IncrementSpending applies one spend to the (card, token) spending record as
// a single read-modify-write transaction. The row lock serializes concurrent
// executions of the same card so two increments cannot both read a stale
// spent amount.
func (q *Queries) IncrementSpending(ctx context.Context, arg IncrementSpendingParams) (SpendingRecord, error) {
	tx, err := q.db.Begin(ctx)
	if err != nil {
		return SpendingRecord{}, fmt.Errorf("failed to begin spending transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	qtx := q.WithTx(tx)
	today := arg.Today.UTC()

	dailySpent, totalSpent := "0", "0"
	lastReset := time.Time{}
	rec, err := q.getSpendingRecordForUpdate(ctx, tx, GetSpendingRecordParams{
		CardID:       arg.CardID,
		TokenAddress: arg.TokenAddress,
	})
	switch {
	case err == nil:
		dailySpent, totalSpent = rec.DailySpent, rec.TotalSpent
		if rec.LastResetDate.Valid {
			lastReset = rec.LastResetDate.Time
		}
	case errors.Is(err, pgx.ErrNoRows):
		// first spend for this pair, record is created below
	default:
		return SpendingRecord{}, fmt.Errorf("failed to lock spending record: %w", err)
	}

	newDaily, newTotal, err := ApplyIncrement(dailySpent, totalSpent, lastReset, arg.Amount, today)
	if err != nil {
		return SpendingRecord{}, err
	}

	updated, err := qtx.UpsertSpendingRecord(ctx, UpsertSpendingRecordParams{
		CardID:        arg.CardID,
		TokenAddress:  arg.TokenAddress,
		DailySpent:    newDaily,
		TotalSpent:    newTotal,
		LastResetDate: pgtype.Date{Time: today, Valid: true},
	})
	if err != nil {
		return SpendingRecord{}, fmt.Errorf("failed to upsert spending record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return SpendingRecord{}, fmt.Errorf("failed to commit spending transaction: %w", err)
	}
	return updated, nil
}
