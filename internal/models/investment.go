package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Investment struct {
	ID           uuid.UUID        `db:"id"`
	ExternalID   string           `db:"external_id"`
	UserID       uuid.UUID        `db:"user_id"`
	ItemID       string           `db:"item_id"`
	Name         string           `db:"name"`
	Code         string           `db:"code"`
	ISIN         string           `db:"isin"`
	Type         string           `db:"type"`
	Subtype      string           `db:"subtype"`
	CurrencyCode string           `db:"currency_code"`
	Balance      decimal.Decimal  `db:"balance"`
	Amount       *decimal.Decimal `db:"amount"`
	Value        *decimal.Decimal `db:"value"`
	Quantity     *decimal.Decimal `db:"quantity"`
	Date         *time.Time       `db:"date"`
	Status       string           `db:"status"`
	CreatedAt    time.Time        `db:"created_at"`
}
