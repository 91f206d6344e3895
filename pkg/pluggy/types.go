package pluggy

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID                    string `json:"id"`
	Description           string `json:"description"`
	DescriptionTranslated string `json:"descriptionTranslated"`
	ParentID              string `json:"parentId,omitempty"`
}

type Institution struct {
	Name   string `json:"name"`
	Number string `json:"number,omitempty"`
}

type Account struct {
	ID               string           `json:"id"`
	ItemID           string           `json:"itemId"`
	Type             string           `json:"type"`
	Subtype          string           `json:"subtype"`
	Name             string           `json:"name"`
	Number           string           `json:"number"`
	Balance          decimal.Decimal  `json:"balance"`
	AvailableBalance *decimal.Decimal `json:"availableBalance"`
	CurrencyCode     string           `json:"currencyCode"`
	Institution      *Institution     `json:"institution"`
}

// InstitutionName returns the reporting institution or "" when the aggregator omits it.
func (a Account) InstitutionName() string {
	if a.Institution == nil {
		return ""
	}
	return a.Institution.Name
}

type Transaction struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"accountId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Status      string          `json:"status,omitempty"`
}

type Investment struct {
	ID           string           `json:"id"`
	ItemID       string           `json:"itemId"`
	Name         string           `json:"name"`
	Code         string           `json:"code"`
	ISIN         string           `json:"isin"`
	Number       string           `json:"number"`
	Type         string           `json:"type"`
	Subtype      string           `json:"subtype"`
	CurrencyCode string           `json:"currencyCode"`
	Balance      decimal.Decimal  `json:"balance"`
	Amount       *decimal.Decimal `json:"amount"`
	Value        *decimal.Decimal `json:"value"`
	Quantity     *decimal.Decimal `json:"quantity"`
	Date         *time.Time       `json:"date"`
	Status       string           `json:"status"`
	Institution  *Institution     `json:"institution"`
}

type Connector struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

type Item struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	Connector Connector  `json:"connector"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

type listResponse[T any] struct {
	Results    []T `json:"results"`
	Page       int `json:"page,omitempty"`
	TotalPages int `json:"totalPages,omitempty"`
}

type authRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

type authResponse struct {
	APIKey string `json:"apiKey"`
}

type connectTokenRequest struct {
	ClientUserID string `json:"clientUserId,omitempty"`
}

type connectTokenResponse struct {
	AccessToken string `json:"accessToken"`
}
