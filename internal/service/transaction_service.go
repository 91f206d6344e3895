package service

import (
	"context"
	"fmt"

	"wallet-api/internal/dto"
	"wallet-api/internal/ledger"
	"wallet-api/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransactionService reads ingested transactions the way reports count them.
type TransactionService struct {
	transactions TransactionStore
	connections  ConnectionStore
	logger       *zap.Logger
}

func NewTransactionService(transactions TransactionStore, connections ConnectionStore, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		connections:  connections,
		logger:       logger,
	}
}

// ListClassified returns the user's non-excluded transactions counted on the
// given side, with non-negative amounts.
func (s *TransactionService) ListClassified(ctx context.Context, userID uuid.UUID, direction ledger.Direction, filter PeriodFilter) ([]dto.EntryResponse, error) {
	if direction != ledger.Income && direction != ledger.Expense {
		return nil, fmt.Errorf("%w: direction must be INCOME or EXPENSE", ErrInvalidInput)
	}
	period, err := filter.period()
	if err != nil {
		return nil, err
	}

	txs, err := s.transactions.ListByUserPeriod(ctx, userID, period)
	if err != nil {
		return nil, err
	}

	out := make([]dto.EntryResponse, 0, len(txs))
	for _, tx := range txs {
		entry, ok := ledger.FromTransaction(tx)
		if !ok || entry.Direction != direction {
			continue
		}
		out = append(out, dto.EntryResponse{
			ID:          tx.ID.String(),
			Description: entry.Description,
			Amount:      entry.Amount,
			Date:        entry.Date,
			Direction:   string(entry.Direction),
			Category:    entry.Category,
			AccountID:   tx.AccountID.String(),
		})
	}
	return out, nil
}

// ListByItem returns every stored transaction of an owned item, excluded ones included.
func (s *TransactionService) ListByItem(ctx context.Context, userID uuid.UUID, itemID string) ([]dto.TransactionResponse, error) {
	if _, err := s.connections.GetByItemIDAndUser(ctx, itemID, userID); err != nil {
		return nil, notFoundOr(err, ErrConnectionNotFound)
	}
	txs, err := s.transactions.ListByItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	return ToTransactionResponses(txs), nil
}

func ToTransactionResponses(txs []*models.Transaction) []dto.TransactionResponse {
	out := make([]dto.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, dto.TransactionResponse{
			ID:           tx.ID.String(),
			ExternalID:   tx.ExternalID,
			AccountID:    tx.AccountID.String(),
			ItemID:       tx.ItemID,
			Description:  tx.Description,
			Amount:       tx.Amount,
			Date:         tx.Date,
			ReportedType: string(tx.ReportedType),
			Direction:    string(tx.Direction),
			Excluded:     tx.Excluded,
			Category:     tx.Category,
		})
	}
	return out
}

// ToSyncResponse renders a sync result for the API.
func ToSyncResponse(res *SyncResult) *dto.SyncResponse {
	return &dto.SyncResponse{
		ItemID:          res.ItemID,
		AccountsCreated: res.AccountsCreated,
		AccountsUpdated: res.AccountsUpdated,
		Fetched:         res.Fetched,
		Inserted:        res.Inserted,
		Skipped:         res.Skipped,
		Transactions:    ToTransactionResponses(res.Transactions),
	}
}
