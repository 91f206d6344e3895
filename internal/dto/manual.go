package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type IncomeRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	StartDate   Date            `json:"start_date"`
	EndDate     *Date           `json:"end_date,omitempty"`
	Category    string          `json:"category"`
}

type IncomeResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	StartDate   Date            `json:"start_date"`
	EndDate     *Date           `json:"end_date,omitempty"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ExpenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Date            `json:"date"`
	Category    string          `json:"category"`
}

type ExpenseResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Date            `json:"date"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}
