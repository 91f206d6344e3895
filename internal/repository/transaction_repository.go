package repository

import (
	"context"
	"fmt"

	"wallet-api/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var transactionColumns = []string{
	"id", "external_id", "user_id", "account_id", "item_id", "description", "amount", "date",
	"reported_type", "direction", "excluded", "category", "created_at",
}

type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// ExistingExternalIDs returns the subset of ids already stored, in one query.
func (r *TransactionRepository) ExistingExternalIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(ids) == 0 {
		return existing, nil
	}

	query := psql.Select("external_id").
		From("transactions").
		Where(squirrel.Expr("external_id = ANY(?)", ids))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing[id] = struct{}{}
	}

	return existing, rows.Err()
}

// CreateBatch inserts transactions in chunks. Rows whose external id was stored
// meanwhile by an overlapping sync are skipped, not reported as errors.
func (r *TransactionRepository) CreateBatch(ctx context.Context, transactions []*models.Transaction) (int64, error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	var inserted int64
	for _, chunk := range chunks(transactions, maxBatchRows) {
		builder := psql.Insert("transactions").
			Columns(transactionColumns...).
			Suffix("ON CONFLICT (external_id) DO NOTHING")

		for _, tx := range chunk {
			builder = builder.Values(
				tx.ID, tx.ExternalID, tx.UserID, tx.AccountID, tx.ItemID, tx.Description, tx.Amount, tx.Date,
				tx.ReportedType, tx.Direction, tx.Excluded, tx.Category, tx.CreatedAt,
			)
		}

		sql, args, err := builder.ToSql()
		if err != nil {
			return inserted, err
		}

		tag, err := r.db.Exec(ctx, sql, args...)
		if err != nil {
			return inserted, fmt.Errorf("insert transactions: %w", err)
		}
		inserted += tag.RowsAffected()
	}

	return inserted, nil
}

func (r *TransactionRepository) ListByItem(ctx context.Context, userID uuid.UUID, itemID string) ([]*models.Transaction, error) {
	return r.list(ctx, squirrel.Eq{"t.user_id": userID, "t.item_id": itemID})
}

func (r *TransactionRepository) ListByUserPeriod(ctx context.Context, userID uuid.UUID, period Period) ([]*models.Transaction, error) {
	return r.list(ctx, squirrel.And{squirrel.Eq{"t.user_id": userID}, period.where("t.date")})
}

func (r *TransactionRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]*models.Transaction, error) {
	columns := make([]string, 0, len(transactionColumns)+1)
	for _, c := range transactionColumns {
		columns = append(columns, "t."+c)
	}
	columns = append(columns, "COALESCE(a.type, '')")

	query := psql.Select(columns...).
		From("transactions t").
		LeftJoin("accounts a ON a.id = t.account_id").
		Where(where).
		OrderBy("t.date DESC", "t.external_id")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.ExternalID, &tx.UserID, &tx.AccountID, &tx.ItemID, &tx.Description, &tx.Amount, &tx.Date,
			&tx.ReportedType, &tx.Direction, &tx.Excluded, &tx.Category, &tx.CreatedAt, &tx.AccountType,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, &tx)
	}

	return transactions, rows.Err()
}
