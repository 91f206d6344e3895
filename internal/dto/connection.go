package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateConnectionRequest struct {
	ItemID      string `json:"item_id"`
	Institution string `json:"institution"`
	ImageURL    string `json:"image_url"`
}

type ConnectionResponse struct {
	ID          string    `json:"id"`
	ItemID      string    `json:"item_id"`
	Institution string    `json:"institution"`
	ImageURL    string    `json:"image_url"`
	ConnectedAt time.Time `json:"connected_at"`
}

type ConnectionStatusResponse struct {
	ItemID    string     `json:"item_id"`
	Status    string     `json:"status"`
	Connector string     `json:"connector"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type ConnectTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type AccountResponse struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Type             string           `json:"type"`
	Subtype          string           `json:"subtype"`
	Number           string           `json:"number"`
	InstitutionName  string           `json:"institution_name"`
	Balance          decimal.Decimal  `json:"balance"`
	AvailableBalance *decimal.Decimal `json:"available_balance,omitempty"`
}

type SyncResponse struct {
	ItemID          string                `json:"item_id"`
	AccountsCreated int                   `json:"accounts_created"`
	AccountsUpdated int                   `json:"accounts_updated"`
	Fetched         int                   `json:"fetched"`
	Inserted        int                   `json:"inserted"`
	Skipped         int                   `json:"skipped"`
	Transactions    []TransactionResponse `json:"transactions"`
}
