package repository

import (
	"context"

	"wallet-api/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var expenseColumns = []string{"id", "user_id", "description", "amount", "date", "category", "created_at", "updated_at"}

type ExpenseRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewExpenseRepository(db *pgxpool.Pool, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ExpenseRepository) Create(ctx context.Context, ex *models.Expense) error {
	query := psql.Insert("expenses").
		Columns(expenseColumns...).
		Values(ex.ID, ex.UserID, ex.Description, ex.Amount, ex.Date, ex.Category, ex.CreatedAt, ex.UpdatedAt)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ExpenseRepository) Update(ctx context.Context, ex *models.Expense) (bool, error) {
	query := psql.Update("expenses").
		Set("description", ex.Description).
		Set("amount", ex.Amount).
		Set("date", ex.Date).
		Set("category", ex.Category).
		Set("updated_at", ex.UpdatedAt).
		Where(squirrel.Eq{"id": ex.ID, "user_id": ex.UserID})

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

func (r *ExpenseRepository) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	query := psql.Delete("expenses").
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

func (r *ExpenseRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Expense, error) {
	query := psql.Select(expenseColumns...).
		From("expenses").
		Where(squirrel.Eq{"id": id, "user_id": userID})

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var ex models.Expense
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&ex.ID, &ex.UserID, &ex.Description, &ex.Amount, &ex.Date, &ex.Category, &ex.CreatedAt, &ex.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &ex, nil
}

func (r *ExpenseRepository) ListByUserPeriod(ctx context.Context, userID uuid.UUID, period Period) ([]*models.Expense, error) {
	query := psql.Select(expenseColumns...).
		From("expenses").
		Where(squirrel.Eq{"user_id": userID}).
		Where(period.where("date")).
		OrderBy("date")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		var ex models.Expense
		if err := rows.Scan(
			&ex.ID, &ex.UserID, &ex.Description, &ex.Amount, &ex.Date, &ex.Category, &ex.CreatedAt, &ex.UpdatedAt,
		); err != nil {
			return nil, err
		}
		expenses = append(expenses, &ex)
	}

	return expenses, rows.Err()
}
