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

var investmentColumns = []string{
	"id", "external_id", "user_id", "item_id", "name", "code", "isin", "type", "subtype", "currency_code",
	"balance", "amount", "value", "quantity", "date", "status", "created_at",
}

type InvestmentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewInvestmentRepository(db *pgxpool.Pool, logger *zap.Logger) *InvestmentRepository {
	return &InvestmentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *InvestmentRepository) ExistingExternalIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(ids) == 0 {
		return existing, nil
	}

	query := psql.Select("external_id").
		From("investments").
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

func (r *InvestmentRepository) CreateBatch(ctx context.Context, investments []*models.Investment) (int64, error) {
	if len(investments) == 0 {
		return 0, nil
	}

	var inserted int64
	for _, chunk := range chunks(investments, maxBatchRows) {
		builder := psql.Insert("investments").
			Columns(investmentColumns...).
			Suffix("ON CONFLICT (external_id) DO NOTHING")

		for _, inv := range chunk {
			builder = builder.Values(
				inv.ID, inv.ExternalID, inv.UserID, inv.ItemID, inv.Name, inv.Code, inv.ISIN, inv.Type, inv.Subtype, inv.CurrencyCode,
				inv.Balance, inv.Amount, inv.Value, inv.Quantity, inv.Date, inv.Status, inv.CreatedAt,
			)
		}

		sql, args, err := builder.ToSql()
		if err != nil {
			return inserted, err
		}

		tag, err := r.db.Exec(ctx, sql, args...)
		if err != nil {
			return inserted, fmt.Errorf("insert investments: %w", err)
		}
		inserted += tag.RowsAffected()
	}

	return inserted, nil
}

func (r *InvestmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Investment, error) {
	query := psql.Select(investmentColumns...).
		From("investments").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("name")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var investments []*models.Investment
	for rows.Next() {
		var inv models.Investment
		if err := rows.Scan(
			&inv.ID, &inv.ExternalID, &inv.UserID, &inv.ItemID, &inv.Name, &inv.Code, &inv.ISIN, &inv.Type, &inv.Subtype, &inv.CurrencyCode,
			&inv.Balance, &inv.Amount, &inv.Value, &inv.Quantity, &inv.Date, &inv.Status, &inv.CreatedAt,
		); err != nil {
			return nil, err
		}
		investments = append(investments, &inv)
	}

	return investments, rows.Err()
}
