package repository

import (
	"context"

	"wallet-api/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var connectionColumns = []string{"id", "item_id", "institution", "image_url", "user_id", "connected_at"}

type ConnectionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewConnectionRepository(db *pgxpool.Pool, logger *zap.Logger) *ConnectionRepository {
	return &ConnectionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ConnectionRepository) Create(ctx context.Context, conn *models.Connection) error {
	query := psql.Insert("pluggy_items").
		Columns(connectionColumns...).
		Values(conn.ID, conn.ItemID, conn.Institution, conn.ImageURL, conn.UserID, conn.ConnectedAt)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ConnectionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Connection, error) {
	return r.list(ctx, squirrel.Eq{"user_id": userID})
}

// ListAll returns every stored connection, for background resyncs.
func (r *ConnectionRepository) ListAll(ctx context.Context) ([]*models.Connection, error) {
	return r.list(ctx, nil)
}

func (r *ConnectionRepository) GetByItemIDAndUser(ctx context.Context, itemID string, userID uuid.UUID) (*models.Connection, error) {
	query := psql.Select(connectionColumns...).
		From("pluggy_items").
		Where(squirrel.Eq{"item_id": itemID, "user_id": userID})

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var conn models.Connection
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&conn.ID, &conn.ItemID, &conn.Institution, &conn.ImageURL, &conn.UserID, &conn.ConnectedAt,
	)
	if err != nil {
		return nil, err
	}

	return &conn, nil
}

// Delete removes the user's connection and reports whether a row was removed.
func (r *ConnectionRepository) Delete(ctx context.Context, itemID string, userID uuid.UUID) (bool, error) {
	query := psql.Delete("pluggy_items").
		Where(squirrel.Eq{"item_id": itemID, "user_id": userID})

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

func (r *ConnectionRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]*models.Connection, error) {
	query := psql.Select(connectionColumns...).
		From("pluggy_items").
		OrderBy("connected_at DESC")
	if where != nil {
		query = query.Where(where)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []*models.Connection
	for rows.Next() {
		var conn models.Connection
		if err := rows.Scan(
			&conn.ID, &conn.ItemID, &conn.Institution, &conn.ImageURL, &conn.UserID, &conn.ConnectedAt,
		); err != nil {
			return nil, err
		}
		conns = append(conns, &conn)
	}

	return conns, rows.Err()
}
