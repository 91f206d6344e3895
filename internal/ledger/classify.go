// Package ledger holds the pure bookkeeping rules of the wallet: how an
// aggregator transaction is read as income or expense, which movements are
// left out of reporting, and how manual and ingested entries are summed.
package ledger

import (
	"strings"

	"wallet-api/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

type Direction = models.Direction

const (
	Income  = models.DirectionIncome
	Expense = models.DirectionExpense
)

// Exclusion reasons.
const (
	ReasonBillPayment      = "bill_payment"
	ReasonExcludedCategory = "excluded_category"
	ReasonCardSettlement   = "card_settlement"
)

// BillPaymentMarkers are descriptions the aggregator uses for card bill settlements.
var BillPaymentMarkers = []string{
	"Pagamento de fatura",
	"Pagamento recebido",
	"Bill payment",
}

// ExcludedCategories are movements between the user's own accounts.
var ExcludedCategories = []string{
	"Same person transfer",
	"Transferência mesma titularidade",
	"Credit card payment",
	"Pagamento de cartão de crédito",
}

var (
	billPaymentSet      = labelSet(BillPaymentMarkers)
	excludedCategorySet = labelSet(ExcludedCategories)
)

func labelSet(labels []string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		set[NormalizeLabel(label)] = struct{}{}
	}
	return set
}

// NormalizeLabel trims, case folds and collapses inner whitespace so that
// "  Same  person Transfer" and "same person transfer" compare equal.
func NormalizeLabel(label string) string {
	// a Caser keeps state and must not be shared between goroutines
	return cases.Fold().String(strings.Join(strings.Fields(label), " "))
}

func IsBillPayment(description string) bool {
	_, ok := billPaymentSet[NormalizeLabel(description)]
	return ok
}

func IsExcludedCategory(category string) bool {
	if category == "" {
		return false
	}
	_, ok := excludedCategorySet[NormalizeLabel(category)]
	return ok
}

// ReportedDirection reads the aggregator's sign: positive is INCOME, anything else EXPENSE.
func ReportedDirection(amount decimal.Decimal) Direction {
	if amount.IsPositive() {
		return Income
	}
	return Expense
}

type Input struct {
	Reported    Direction
	AccountType models.AccountType
	Description string
	Category    string
	Amount      decimal.Decimal
}

type Classification struct {
	Direction Direction
	// Amount is the non-negative magnitude used for reporting.
	Amount   decimal.Decimal
	Excluded bool
	Reason   string
}

// Classify decides how a transaction counts in reports.
//
// Ordinary accounts keep the reported direction. On credit accounts a reported
// INCOME is a card purchase and counts as EXPENSE, while a reported EXPENSE is
// the bill settlement and counts nowhere. Bill payment descriptions and
// excluded categories are left out regardless of account type.
func Classify(in Input) Classification {
	c := Classification{
		Direction: in.Reported,
		Amount:    in.Amount.Abs(),
	}

	switch {
	case IsBillPayment(in.Description):
		c.Excluded, c.Reason = true, ReasonBillPayment
	case IsExcludedCategory(in.Category):
		c.Excluded, c.Reason = true, ReasonExcludedCategory
	}

	if in.AccountType.IsCredit() {
		if in.Reported == Income {
			c.Direction = Expense
		} else if !c.Excluded {
			c.Excluded, c.Reason = true, ReasonCardSettlement
		}
	}

	return c
}
