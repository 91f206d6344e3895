package repository

import (
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
)

// maxBatchRows keeps a multi-row insert well under the 65535 bind parameter limit.
const maxBatchRows = 1000

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// IsUniqueViolation reports whether err is a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Period is a half-open [From, To) range; a zero bound is open.
type Period struct {
	From time.Time
	To   time.Time
}

func (p Period) where(column string) squirrel.And {
	cond := squirrel.And{}
	if !p.From.IsZero() {
		cond = append(cond, squirrel.GtOrEq{column: p.From})
	}
	if !p.To.IsZero() {
		cond = append(cond, squirrel.Lt{column: p.To})
	}
	return cond
}

func chunks[T any](items []T, size int) [][]T {
	var out [][]T
	for size < len(items) {
		items, out = items[size:], append(out, items[:size])
	}
	return append(out, items)
}
