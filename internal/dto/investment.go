package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvestmentResponse struct {
	ID           string           `json:"id"`
	ItemID       string           `json:"item_id"`
	Name         string           `json:"name"`
	Code         string           `json:"code"`
	ISIN         string           `json:"isin"`
	Type         string           `json:"type"`
	Subtype      string           `json:"subtype"`
	CurrencyCode string           `json:"currency_code"`
	Balance      decimal.Decimal  `json:"balance"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Value        *decimal.Decimal `json:"value,omitempty"`
	Quantity     *decimal.Decimal `json:"quantity,omitempty"`
	Date         *time.Time       `json:"date,omitempty"`
	Status       string           `json:"status"`
}

type InvestmentSyncResponse struct {
	Connections int `json:"connections"`
	Fetched     int `json:"fetched"`
	Inserted    int `json:"inserted"`
}

var investmentTypeLabels = map[string]string{
	"FIXED_INCOME": "Renda Fixa",
	"EQUITY":       "Renda Variável",
	"ETF":          "ETF",
	"COE":          "COE",
	"MUTUAL_FUND":  "Fundo de Investimento",
	"SECURITY":     "Previdência",
}

var investmentSubtypeLabels = map[string]string{
	"CRI":               "CRI",
	"CRA":               "CRA",
	"LCI":               "LCI",
	"LCA":               "LCA",
	"LC":                "Letra de Câmbio",
	"TREASURY":          "Tesouro Direto",
	"DEBENTURES":        "Debêntures",
	"CDB":               "CDB",
	"LIG":               "LIG",
	"LF":                "Letra Financeira",
	"RETIREMENT":        "Previdência",
	"PGBL":              "PGBL",
	"VGBL":              "VGBL",
	"INVESTMENT_FUND":   "Fundo de Investimento",
	"STOCK_FUND":        "Fundo de Ações",
	"MULTIMARKET_FUND":  "Fundo Multimercado",
	"EXCHANGE_FUND":     "Fundo Cambial",
	"FIXED_INCOME_FUND": "Fundo Renda Fixa",
	"FIP_FUND":          "FIP",
	"OFFSHORE_FUND":     "Fundo Offshore",
	"ETF_FUND":          "Fundo ETF",
	"STOCK":             "Ação",
	"BDR":               "BDR",
	"REAL_ESTATE_FUND":  "FII",
	"DERIVATIVES":       "Derivativos",
	"OPTION":            "Opção",
	"ETF":               "ETF",
	"STRUCTURED_NOTE":   "COE",
}

// InvestmentTypeLabel translates an aggregator investment type, falling back to the raw code.
func InvestmentTypeLabel(t string) string {
	if label, ok := investmentTypeLabels[t]; ok {
		return label
	}
	return t
}

func InvestmentSubtypeLabel(t string) string {
	if label, ok := investmentSubtypeLabels[t]; ok {
		return label
	}
	return t
}
