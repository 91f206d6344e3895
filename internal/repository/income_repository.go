package repository

import (
	"context"

	"wallet-api/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var incomeColumns = []string{"id", "user_id", "description", "amount", "start_date", "end_date", "category", "created_at", "updated_at"}

type IncomeRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewIncomeRepository(db *pgxpool.Pool, logger *zap.Logger) *IncomeRepository {
	return &IncomeRepository{
		db:     db,
		logger: logger,
	}
}

func (r *IncomeRepository) Create(ctx context.Context, in *models.Income) error {
	query := psql.Insert("incomes").
		Columns(incomeColumns...).
		Values(in.ID, in.UserID, in.Description, in.Amount, in.StartDate, in.EndDate, in.Category, in.CreatedAt, in.UpdatedAt)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// Update rewrites an owned income and reports whether it existed.
func (r *IncomeRepository) Update(ctx context.Context, in *models.Income) (bool, error) {
	query := psql.Update("incomes").
		Set("description", in.Description).
		Set("amount", in.Amount).
		Set("start_date", in.StartDate).
		Set("end_date", in.EndDate).
		Set("category", in.Category).
		Set("updated_at", in.UpdatedAt).
		Where(squirrel.Eq{"id": in.ID, "user_id": in.UserID})

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *IncomeRepository) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	query := psql.Delete("incomes").
		Where(squirrel.Eq{"id": id, "user_id": userID})

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *IncomeRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Income, error) {
	query := psql.Select(incomeColumns...).
		From("incomes").
		Where(squirrel.Eq{"id": id, "user_id": userID})

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var in models.Income
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&in.ID, &in.UserID, &in.Description, &in.Amount, &in.StartDate, &in.EndDate, &in.Category, &in.CreatedAt, &in.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &in, nil
}

// ListByUserPeriod filters on start_date.
func (r *IncomeRepository) ListByUserPeriod(ctx context.Context, userID uuid.UUID, period Period) ([]*models.Income, error) {
	query := psql.Select(incomeColumns...).
		From("incomes").
		Where(squirrel.Eq{"user_id": userID}).
		Where(period.where("start_date")).
		OrderBy("start_date")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incomes []*models.Income
	for rows.Next() {
		var in models.Income
		if err := rows.Scan(
			&in.ID, &in.UserID, &in.Description, &in.Amount, &in.StartDate, &in.EndDate, &in.Category, &in.CreatedAt, &in.UpdatedAt,
		); err != nil {
			return nil, err
		}
		incomes = append(incomes, &in)
	}

	return incomes, rows.Err()
}
