package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Income struct {
	ID          uuid.UUID       `db:"id"`
	UserID      uuid.UUID       `db:"user_id"`
	Description string          `db:"description"`
	Amount      decimal.Decimal `db:"amount"`
	StartDate   time.Time       `db:"start_date"`
	EndDate     *time.Time      `db:"end_date"`
	Category    string          `db:"category"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

type Expense struct {
	ID          uuid.UUID       `db:"id"`
	UserID      uuid.UUID       `db:"user_id"`
	Description string          `db:"description"`
	Amount      decimal.Decimal `db:"amount"`
	Date        time.Time       `db:"date"`
	Category    string          `db:"category"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}
