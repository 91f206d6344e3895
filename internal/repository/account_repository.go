package repository

import (
	"context"
	"fmt"

	"wallet-api/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var accountColumns = []string{
	"id", "external_id", "user_id", "item_id", "name", "type", "subtype", "number",
	"institution_name", "balance", "available_balance", "created_at", "updated_at",
}

type AccountRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAccountRepository(db *pgxpool.Pool, logger *zap.Logger) *AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger,
	}
}

// FindByExternalIDs loads every stored account whose aggregator id is in ids, in one query.
func (r *AccountRepository) FindByExternalIDs(ctx context.Context, ids []string) ([]*models.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, squirrel.Expr("external_id = ANY(?)", ids))
}

func (r *AccountRepository) ListByItem(ctx context.Context, userID uuid.UUID, itemID string) ([]*models.Account, error) {
	return r.list(ctx, squirrel.Eq{"user_id": userID, "item_id": itemID})
}

// CreateBatch inserts accounts, skipping external ids that already exist, and
// returns how many rows were written.
func (r *AccountRepository) CreateBatch(ctx context.Context, accounts []*models.Account) (int64, error) {
	if len(accounts) == 0 {
		return 0, nil
	}

	var inserted int64
	for _, chunk := range chunks(accounts, maxBatchRows) {
		builder := psql.Insert("accounts").
			Columns(accountColumns...).
			Suffix("ON CONFLICT (external_id) DO NOTHING")

		for _, a := range chunk {
			builder = builder.Values(
				a.ID, a.ExternalID, a.UserID, a.ItemID, a.Name, a.Type, a.Subtype, a.Number,
				a.InstitutionName, a.Balance, a.AvailableBalance, a.CreatedAt, a.UpdatedAt,
			)
		}

		sql, args, err := builder.ToSql()
		if err != nil {
			return inserted, err
		}

		tag, err := r.db.Exec(ctx, sql, args...)
		if err != nil {
			return inserted, fmt.Errorf("insert accounts: %w", err)
		}
		inserted += tag.RowsAffected()
	}

	return inserted, nil
}

// UpdateBalances writes balance and available balance for the given accounts in one round trip.
func (r *AccountRepository) UpdateBalances(ctx context.Context, accounts []*models.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, a := range accounts {
		query := psql.Update("accounts").
			Set("balance", a.Balance).
			Set("available_balance", a.AvailableBalance).
			Set("updated_at", a.UpdatedAt).
			Where(squirrel.Eq{"id": a.ID})

		sql, args, err := query.ToSql()
		if err != nil {
			return err
		}
		batch.Queue(sql, args...)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("update account balances: %w", err)
	}
	return nil
}

func (r *AccountRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]*models.Account, error) {
	query := psql.Select(accountColumns...).
		From("accounts").
		Where(where).
		OrderBy("created_at")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(
			&a.ID, &a.ExternalID, &a.UserID, &a.ItemID, &a.Name, &a.Type, &a.Subtype, &a.Number,
			&a.InstitutionName, &a.Balance, &a.AvailableBalance, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, &a)
	}

	return accounts, rows.Err()
}
