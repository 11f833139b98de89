package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/logger"
	"github.com/cardrail/cardrail-api/internal/types"
)

// CardService manages the smart card lifecycle: creation of a scoped unsigned
// delegation, attachment of the user's signature, revocation, and expiry.
type CardService struct {
	queries     db.Querier
	delegations *DelegationService
	activity    *ActivityService
	logger      *zap.Logger
	now         func() time.Time
}

// NewCardService creates a new card service
func NewCardService(queries db.Querier, delegations *DelegationService, activity *ActivityService) *CardService {
	return &CardService{
		queries:     queries,
		delegations: delegations,
		activity:    activity,
		logger:      logger.Log,
		now:         time.Now,
	}
}

// SpendingLimitInput is one per-token daily cap supplied at card creation.
type SpendingLimitInput struct {
	TokenAddress string
	DailyLimit   string
}

// CreateCardParams are the inputs for issuing a new card.
type CreateCardParams struct {
	UserID           uuid.UUID
	ChainID          int64
	CardType         types.CardType
	DelegatorAddress string
	DelegateAddress  string
	ExpiresAt        *time.Time
	SpendingLimits   []SpendingLimitInput
}

// CreatedCard is the creation result: the stored card plus the unsigned
// delegation the user must sign and the targets the scope whitelists.
type CreatedCard struct {
	Card               db.SmartCard
	UnsignedDelegation types.UnsignedDelegation
	WhitelistedTargets []string
}

// CreateCard builds a caveat-scoped delegation for the requested capability
// type and stores it as a pending card. Any prior card of the same
// (user, chain, type) is superseded so at most one live card exists per key.
func (s *CardService) CreateCard(ctx context.Context, params CreateCardParams) (*CreatedCard, error) {
	for _, limit := range params.SpendingLimits {
		if _, ok := new(big.Int).SetString(limit.DailyLimit, 10); !ok {
			return nil, configErrorf("invalid daily limit %q for token %s", limit.DailyLimit, limit.TokenAddress)
		}
	}

	unsigned, whitelisted, err := s.delegations.BuildForType(ctx, params.ChainID, params.DelegatorAddress, params.DelegateAddress, params.CardType)
	if err != nil {
		return nil, err
	}

	delegationBytes, err := json.Marshal(unsigned)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal delegation: %w", err)
	}

	if err := s.queries.SoftDeleteSmartCardsByType(ctx, db.SoftDeleteSmartCardsByTypeParams{
		UserID:   params.UserID,
		ChainID:  params.ChainID,
		CardType: string(params.CardType),
	}); err != nil {
		return nil, fmt.Errorf("failed to supersede existing cards: %w", err)
	}

	var expiresAt pgtype.Timestamptz
	if params.ExpiresAt != nil {
		expiresAt = pgtype.Timestamptz{Time: params.ExpiresAt.UTC(), Valid: true}
	}

	card, err := s.queries.CreateSmartCard(ctx, db.CreateSmartCardParams{
		UserID:           params.UserID,
		ChainID:          params.ChainID,
		CardType:         string(params.CardType),
		DelegatorAddress: params.DelegatorAddress,
		DelegateAddress:  params.DelegateAddress,
		Delegation:       delegationBytes,
		Status:           string(types.CardStatusPending),
		ExpiresAt:        expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create smart card: %w", err)
	}

	for _, limit := range params.SpendingLimits {
		if _, err := s.queries.CreateSpendingLimit(ctx, db.CreateSpendingLimitParams{
			CardID:       card.ID,
			TokenAddress: limit.TokenAddress,
			DailyLimit:   limit.DailyLimit,
		}); err != nil {
			return nil, fmt.Errorf("failed to create spending limit for %s: %w", limit.TokenAddress, err)
		}
	}

	s.logger.Info("Created smart card",
		zap.String("card_id", card.ID.String()),
		zap.String("user_id", params.UserID.String()),
		zap.Int64("chain_id", params.ChainID),
		zap.String("card_type", string(params.CardType)),
	)
	s.activity.Record(ctx, params.UserID, "card.created",
		fmt.Sprintf("Created %s card on chain %d", params.CardType, params.ChainID),
		map[string]interface{}{"card_id": card.ID.String(), "chain_id": params.ChainID})

	return &CreatedCard{
		Card:               card,
		UnsignedDelegation: unsigned,
		WhitelistedTargets: whitelisted,
	}, nil
}

// AttachSignature stores the user's signature over the delegation and
// activates the card. Only pending cards can be signed.
func (s *CardService) AttachSignature(ctx context.Context, cardID uuid.UUID, signature string) (db.SmartCard, error) {
	card, err := s.queries.GetSmartCard(ctx, cardID)
	if err != nil {
		return db.SmartCard{}, fmt.Errorf("failed to get smart card: %w", err)
	}
	if card.Status != string(types.CardStatusPending) {
		return db.SmartCard{}, configErrorf("card %s is %s, only pending cards can be signed", cardID, card.Status)
	}
	if signature == "" {
		return db.SmartCard{}, configErrorf("signature must not be empty")
	}

	updated, err := s.queries.UpdateSmartCardSignature(ctx, db.UpdateSmartCardSignatureParams{
		ID:        cardID,
		Signature: pgtype.Text{String: signature, Valid: true},
		Status:    string(types.CardStatusActive),
	})
	if err != nil {
		return db.SmartCard{}, fmt.Errorf("failed to attach signature: %w", err)
	}

	s.logger.Info("Activated smart card", zap.String("card_id", cardID.String()))
	s.activity.Record(ctx, card.UserID, "card.activated", "Card signed and activated",
		map[string]interface{}{"card_id": cardID.String()})

	return updated, nil
}

// RevokeCard permanently disables a card. Revocation is terminal.
func (s *CardService) RevokeCard(ctx context.Context, cardID uuid.UUID) (db.SmartCard, error) {
	card, err := s.queries.GetSmartCard(ctx, cardID)
	if err != nil {
		return db.SmartCard{}, fmt.Errorf("failed to get smart card: %w", err)
	}
	if card.Status == string(types.CardStatusRevoked) {
		return card, nil
	}

	updated, err := s.queries.UpdateSmartCardStatus(ctx, db.UpdateSmartCardStatusParams{
		ID:     cardID,
		Status: string(types.CardStatusRevoked),
	})
	if err != nil {
		return db.SmartCard{}, fmt.Errorf("failed to revoke card: %w", err)
	}

	s.logger.Info("Revoked smart card", zap.String("card_id", cardID.String()))
	s.activity.Record(ctx, card.UserID, "card.revoked", "Card revoked",
		map[string]interface{}{"card_id": cardID.String()})

	return updated, nil
}

// GetCard fetches a card and lazily transitions it to expired when its
// expiry has passed. The stored status is updated so later reads agree.
func (s *CardService) GetCard(ctx context.Context, cardID uuid.UUID) (db.SmartCard, error) {
	card, err := s.queries.GetSmartCard(ctx, cardID)
	if err != nil {
		return db.SmartCard{}, fmt.Errorf("failed to get smart card: %w", err)
	}
	return s.applyExpiry(ctx, card)
}

// ListCards returns all live cards for a user, expiring stale ones on read.
func (s *CardService) ListCards(ctx context.Context, userID uuid.UUID) ([]db.SmartCard, error) {
	cards, err := s.queries.ListSmartCardsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list smart cards: %w", err)
	}
	for i, card := range cards {
		updated, err := s.applyExpiry(ctx, card)
		if err != nil {
			return nil, err
		}
		cards[i] = updated
	}
	return cards, nil
}

func (s *CardService) applyExpiry(ctx context.Context, card db.SmartCard) (db.SmartCard, error) {
	if !card.ExpiresAt.Valid || card.Status == string(types.CardStatusRevoked) || card.Status == string(types.CardStatusExpired) {
		return card, nil
	}
	if s.now().UTC().Before(card.ExpiresAt.Time) {
		return card, nil
	}

	updated, err := s.queries.UpdateSmartCardStatus(ctx, db.UpdateSmartCardStatusParams{
		ID:     card.ID,
		Status: string(types.CardStatusExpired),
	})
	if err != nil {
		return db.SmartCard{}, fmt.Errorf("failed to expire card: %w", err)
	}
	s.logger.Info("Expired smart card", zap.String("card_id", card.ID.String()))
	return updated, nil
}
