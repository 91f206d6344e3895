package service

import (
	"context"
	"fmt"
	"time"

	"wallet-api/internal/models"
	"wallet-api/pkg/pluggy"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReconcileStats struct {
	Created int
	Updated int
}

// AccountReconciler maps aggregator accounts to stored ones, creating the
// missing rows. Existing balances are refreshed only when they changed.
type AccountReconciler struct {
	accounts        AccountStore
	refreshBalances bool
	logger          *zap.Logger
}

func NewAccountReconciler(accounts AccountStore, refreshBalances bool, logger *zap.Logger) *AccountReconciler {
	return &AccountReconciler{
		accounts:        accounts,
		refreshBalances: refreshBalances,
		logger:          logger,
	}
}

// Reconcile returns a map from aggregator account id to the stored account.
func (r *AccountReconciler) Reconcile(ctx context.Context, userID uuid.UUID, itemID string, reported []pluggy.Account) (map[string]*models.Account, ReconcileStats, error) {
	var stats ReconcileStats
	byExternal := make(map[string]*models.Account, len(reported))
	if len(reported) == 0 {
		return byExternal, stats, nil
	}

	ids := make([]string, 0, len(reported))
	for _, acc := range reported {
		ids = append(ids, acc.ID)
	}

	stored, err := r.accounts.FindByExternalIDs(ctx, ids)
	if err != nil {
		return nil, stats, fmt.Errorf("find accounts: %w", err)
	}
	for _, acc := range stored {
		byExternal[acc.ExternalID] = acc
	}

	now := time.Now()
	var (
		missing []*models.Account
		changed []*models.Account
		seen    = make(map[string]struct{}, len(reported))
	)
	for _, acc := range reported {
		if _, dup := seen[acc.ID]; dup {
			continue
		}
		seen[acc.ID] = struct{}{}

		existing, ok := byExternal[acc.ID]
		if !ok {
			missing = append(missing, newAccount(userID, itemID, acc, now))
			continue
		}
		if r.refreshBalances && balanceChanged(existing, acc) {
			existing.Balance = acc.Balance
			existing.AvailableBalance = acc.AvailableBalance
			existing.UpdatedAt = now
			changed = append(changed, existing)
		}
	}

	if len(missing) > 0 {
		inserted, err := r.accounts.CreateBatch(ctx, missing)
		if err != nil {
			return nil, stats, fmt.Errorf("create accounts: %w", err)
		}
		stats.Created = int(inserted)

		if int(inserted) < len(missing) {
			// an overlapping sync stored some of them first; use its rows
			if err := r.reload(ctx, missing, byExternal); err != nil {
				return nil, stats, err
			}
		} else {
			for _, acc := range missing {
				byExternal[acc.ExternalID] = acc
			}
		}
	}

	if len(changed) > 0 {
		if err := r.accounts.UpdateBalances(ctx, changed); err != nil {
			return nil, stats, fmt.Errorf("update balances: %w", err)
		}
		stats.Updated = len(changed)
	}

	r.logger.Debug("Accounts reconciled",
		zap.String("user_id", userID.String()),
		zap.String("item_id", itemID),
		zap.Int("reported", len(reported)),
		zap.Int("created", stats.Created),
		zap.Int("updated", stats.Updated),
	)

	return byExternal, stats, nil
}

func (r *AccountReconciler) reload(ctx context.Context, accounts []*models.Account, into map[string]*models.Account) error {
	ids := make([]string, 0, len(accounts))
	for _, acc := range accounts {
		ids = append(ids, acc.ExternalID)
	}
	stored, err := r.accounts.FindByExternalIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("reload accounts: %w", err)
	}
	for _, acc := range stored {
		into[acc.ExternalID] = acc
	}
	return nil
}

func newAccount(userID uuid.UUID, itemID string, acc pluggy.Account, now time.Time) *models.Account {
	return &models.Account{
		ID:               uuid.New(),
		ExternalID:       acc.ID,
		UserID:           userID,
		ItemID:           itemID,
		Name:             acc.Name,
		Type:             models.AccountType(acc.Type),
		Subtype:          acc.Subtype,
		Number:           acc.Number,
		InstitutionName:  acc.InstitutionName(),
		Balance:          acc.Balance,
		AvailableBalance: acc.AvailableBalance,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func balanceChanged(stored *models.Account, reported pluggy.Account) bool {
	if !stored.Balance.Equal(reported.Balance) {
		return true
	}
	switch {
	case stored.AvailableBalance == nil && reported.AvailableBalance == nil:
		return false
	case stored.AvailableBalance == nil || reported.AvailableBalance == nil:
		return true
	default:
		return !stored.AvailableBalance.Equal(*reported.AvailableBalance)
	}
}
