package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionResponse is a stored ingested transaction, signed amount included.
type TransactionResponse struct {
	ID           string          `json:"id"`
	ExternalID   string          `json:"external_id"`
	AccountID    string          `json:"account_id"`
	ItemID       string          `json:"item_id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	ReportedType string          `json:"reported_type"`
	Direction    string          `json:"direction"`
	Excluded     bool            `json:"excluded"`
	Category     *string         `json:"category"`
}

// EntryResponse is a transaction as it counts in reports: non-negative amount.
type EntryResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Direction   string          `json:"direction"`
	Category    string          `json:"category"`
	AccountID   string          `json:"account_id"`
}
