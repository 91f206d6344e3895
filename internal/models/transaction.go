package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionIncome  Direction = "INCOME"
	DirectionExpense Direction = "EXPENSE"
)

// Transaction is one ingested ledger entry. Amount keeps the aggregator's signed
// value; Direction and Excluded are the classified reading of it.
type Transaction struct {
	ID           uuid.UUID       `db:"id"`
	ExternalID   string          `db:"external_id"`
	UserID       uuid.UUID       `db:"user_id"`
	AccountID    uuid.UUID       `db:"account_id"`
	ItemID       string          `db:"item_id"`
	Description  string          `db:"description"`
	Amount       decimal.Decimal `db:"amount"`
	Date         time.Time       `db:"date"`
	ReportedType Direction       `db:"reported_type"`
	Direction    Direction       `db:"direction"`
	Excluded     bool            `db:"excluded"`
	Category     *string         `db:"category"`
	CreatedAt    time.Time       `db:"created_at"`

	// AccountType is filled by queries that join accounts.
	AccountType AccountType `db:"-"`
}

func (t *Transaction) CategoryLabel() string {
	if t.Category == nil {
		return ""
	}
	return *t.Category
}
