package service

import (
	"context"
	"fmt"
	"time"

	"wallet-api/internal/dto"
	"wallet-api/internal/models"
	"wallet-api/pkg/pluggy"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InvestmentService struct {
	investments InvestmentStore
	connections ConnectionStore
	bank        BankData
	logger      *zap.Logger
}

func NewInvestmentService(investments InvestmentStore, connections ConnectionStore, bank BankData, logger *zap.Logger) *InvestmentService {
	return &InvestmentService{
		investments: investments,
		connections: connections,
		bank:        bank,
		logger:      logger,
	}
}

// Sync stores positions not seen before for every connection of the user.
// Positions are keyed by the aggregator's investment id.
func (s *InvestmentService) Sync(ctx context.Context, userID uuid.UUID) (*dto.InvestmentSyncResponse, error) {
	conns, err := s.connections.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := &dto.InvestmentSyncResponse{Connections: len(conns)}
	if len(conns) == 0 {
		return resp, nil
	}

	fetch := func(apiKey, itemID string) ([]pluggy.Investment, error) {
		reported, err := s.bank.ListInvestments(ctx, apiKey, itemID)
		if err != nil {
			s.logger.Error("Investment sync failed",
				zap.String("user_id", userID.String()),
				zap.String("item_id", itemID),
				zap.Error(err),
			)
			return nil, fmt.Errorf("list investments for %s: %w", itemID, err)
		}
		return reported, nil
	}

	var first []pluggy.Investment
	apiKey, err := withAPIKey(ctx, s.bank, s.logger, func(key string) error {
		var err error
		first, err = fetch(key, conns[0].ItemID)
		return err
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i, conn := range conns {
		reported := first
		if i > 0 {
			if reported, err = fetch(apiKey, conn.ItemID); err != nil {
				return nil, err
			}
		}
		resp.Fetched += len(reported)

		ids := make([]string, 0, len(reported))
		for _, inv := range reported {
			ids = append(ids, inv.ID)
		}
		existing, err := s.investments.ExistingExternalIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("lookup existing investments: %w", err)
		}

		var fresh []*models.Investment
		for _, inv := range reported {
			if _, ok := existing[inv.ID]; ok {
				continue
			}
			existing[inv.ID] = struct{}{}
			fresh = append(fresh, newInvestment(userID, conn.ItemID, inv, now))
		}

		inserted, err := s.investments.CreateBatch(ctx, fresh)
		if err != nil {
			return nil, fmt.Errorf("store investments: %w", err)
		}
		resp.Inserted += int(inserted)
	}

	s.logger.Info("Investments synced",
		zap.String("user_id", userID.String()),
		zap.Int("fetched", resp.Fetched),
		zap.Int("inserted", resp.Inserted),
	)
	return resp, nil
}

func (s *InvestmentService) List(ctx context.Context, userID uuid.UUID) ([]dto.InvestmentResponse, error) {
	investments, err := s.investments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InvestmentResponse, 0, len(investments))
	for _, inv := range investments {
		out = append(out, dto.InvestmentResponse{
			ID:           inv.ID.String(),
			ItemID:       inv.ItemID,
			Name:         inv.Name,
			Code:         inv.Code,
			ISIN:         inv.ISIN,
			Type:         dto.InvestmentTypeLabel(inv.Type),
			Subtype:      dto.InvestmentSubtypeLabel(inv.Subtype),
			CurrencyCode: inv.CurrencyCode,
			Balance:      inv.Balance,
			Amount:       inv.Amount,
			Value:        inv.Value,
			Quantity:     inv.Quantity,
			Date:         inv.Date,
			Status:       inv.Status,
		})
	}
	return out, nil
}

func newInvestment(userID uuid.UUID, itemID string, inv pluggy.Investment, now time.Time) *models.Investment {
	return &models.Investment{
		ID:           uuid.New(),
		ExternalID:   inv.ID,
		UserID:       userID,
		ItemID:       itemID,
		Name:         sanitizeUTF8(inv.Name),
		Code:         inv.Code,
		ISIN:         inv.ISIN,
		Type:         inv.Type,
		Subtype:      inv.Subtype,
		CurrencyCode: inv.CurrencyCode,
		Balance:      inv.Balance,
		Amount:       inv.Amount,
		Value:        inv.Value,
		Quantity:     inv.Quantity,
		Date:         inv.Date,
		Status:       inv.Status,
		CreatedAt:    now,
	}
}
