package dto

import "github.com/shopspring/decimal"

type MonthlySummaryResponse struct {
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	TotalIncomes  decimal.Decimal `json:"total_incomes"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Balance       decimal.Decimal `json:"balance"`
}

type YearlySummaryResponse struct {
	Year              int                      `json:"year"`
	MonthlySummaries  []MonthlySummaryResponse `json:"monthly_summaries"`
	TotalYearIncomes  decimal.Decimal          `json:"total_year_incomes"`
	TotalYearExpenses decimal.Decimal          `json:"total_year_expenses"`
	YearBalance       decimal.Decimal          `json:"year_balance"`
}

type CategoryAggregateResponse struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
	Average  decimal.Decimal `json:"average"`
}

type CategorySummaryResponse struct {
	Year     int                         `json:"year"`
	Month    int                         `json:"month"`
	Incomes  []CategoryAggregateResponse `json:"incomes"`
	Expenses []CategoryAggregateResponse `json:"expenses"`
}

type MonthAggregateResponse struct {
	Month   int             `json:"month"`
	Total   decimal.Decimal `json:"total"`
	Count   int             `json:"count"`
	Average decimal.Decimal `json:"average"`
}

type EvolutionResponse struct {
	Year            int                      `json:"year"`
	MonthlyIncomes  []MonthAggregateResponse `json:"monthly_incomes"`
	MonthlyExpenses []MonthAggregateResponse `json:"monthly_expenses"`
}
