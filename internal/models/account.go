package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeBank   AccountType = "BANK"
	AccountTypeCredit AccountType = "CREDIT"
)

// IsCredit reports whether transaction signs on this account follow card semantics.
// Unknown types are treated as ordinary accounts.
func (t AccountType) IsCredit() bool {
	return strings.EqualFold(strings.TrimSpace(string(t)), string(AccountTypeCredit))
}

type Account struct {
	ID               uuid.UUID        `db:"id"`
	ExternalID       string           `db:"external_id"`
	UserID           uuid.UUID        `db:"user_id"`
	ItemID           string           `db:"item_id"`
	Name             string           `db:"name"`
	Type             AccountType      `db:"type"`
	Subtype          string           `db:"subtype"`
	Number           string           `db:"number"`
	InstitutionName  string           `db:"institution_name"`
	Balance          decimal.Decimal  `db:"balance"`
	AvailableBalance *decimal.Decimal `db:"available_balance"`
	CreatedAt        time.Time        `db:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at"`
}
