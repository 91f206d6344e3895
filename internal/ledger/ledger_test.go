package ledger

import (
	"testing"
	"time"

	"wallet-api/internal/models"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		in           Input
		wantDir      Direction
		wantAmount   string
		wantExcluded bool
		wantReason   string
	}{
		{
			name:       "expense on checking stays expense",
			in:         Input{Reported: Expense, AccountType: models.AccountTypeBank, Description: "Padaria", Amount: dec("-12.30")},
			wantDir:    Expense,
			wantAmount: "12.3",
		},
		{
			name:       "income on checking stays income",
			in:         Input{Reported: Income, AccountType: models.AccountTypeBank, Description: "Salario", Amount: dec("5000")},
			wantDir:    Income,
			wantAmount: "5000",
		},
		{
			name:       "income on credit is a purchase",
			in:         Input{Reported: Income, AccountType: models.AccountTypeCredit, Description: "Mercado", Amount: dec("89.90")},
			wantDir:    Expense,
			wantAmount: "89.9",
		},
		{
			name:         "bill payment on credit is excluded",
			in:           Input{Reported: Expense, AccountType: models.AccountTypeCredit, Description: "Pagamento de fatura", Amount: dec("-1200")},
			wantDir:      Expense,
			wantAmount:   "1200",
			wantExcluded: true,
			wantReason:   ReasonBillPayment,
		},
		{
			name:         "bill payment marker on checking is excluded",
			in:           Input{Reported: Expense, AccountType: models.AccountTypeBank, Description: "  pagamento DE  fatura ", Amount: dec("-1200")},
			wantDir:      Expense,
			wantAmount:   "1200",
			wantExcluded: true,
			wantReason:   ReasonBillPayment,
		},
		{
			name:         "other expense on credit is a settlement",
			in:           Input{Reported: Expense, AccountType: models.AccountTypeCredit, Description: "Estorno", Amount: dec("-30")},
			wantDir:      Expense,
			wantAmount:   "30",
			wantExcluded: true,
			wantReason:   ReasonCardSettlement,
		},
		{
			name:         "same person transfer is excluded",
			in:           Input{Reported: Income, AccountType: models.AccountTypeBank, Description: "TED", Category: "Same person transfer", Amount: dec("300")},
			wantDir:      Income,
			wantAmount:   "300",
			wantExcluded: true,
			wantReason:   ReasonExcludedCategory,
		},
		{
			name:       "unknown account type reads as ordinary",
			in:         Input{Reported: Income, AccountType: "INVESTMENT", Description: "Rendimento", Amount: dec("10")},
			wantDir:    Income,
			wantAmount: "10",
		},
		{
			name:       "unknown category is kept",
			in:         Input{Reported: Expense, AccountType: models.AccountTypeBank, Category: "Pets", Amount: dec("-40")},
			wantDir:    Expense,
			wantAmount: "40",
		},
		{
			name:       "lower case credit type",
			in:         Input{Reported: Income, AccountType: "credit", Amount: dec("15")},
			wantDir:    Expense,
			wantAmount: "15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.in)
			if got.Direction != tt.wantDir {
				t.Errorf("direction: expected %s, got %s", tt.wantDir, got.Direction)
			}
			if !got.Amount.Equal(dec(tt.wantAmount)) {
				t.Errorf("amount: expected %s, got %s", tt.wantAmount, got.Amount)
			}
			if got.Excluded != tt.wantExcluded {
				t.Errorf("excluded: expected %v, got %v", tt.wantExcluded, got.Excluded)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("reason: expected %q, got %q", tt.wantReason, got.Reason)
			}
		})
	}
}

func TestReportedDirection(t *testing.T) {
	tests := []struct {
		amount string
		want   Direction
	}{
		{"10", Income},
		{"-10", Expense},
		{"0", Expense},
	}
	for _, tt := range tests {
		if got := ReportedDirection(dec(tt.amount)); got != tt.want {
			t.Errorf("ReportedDirection(%s): expected %s, got %s", tt.amount, tt.want, got)
		}
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"Same person transfer", "  same   PERSON transfer "},
		{"Alimentação", "ALIMENTAÇÃO"},
	}
	for _, tt := range tests {
		if NormalizeLabel(tt.a) != NormalizeLabel(tt.b) {
			t.Errorf("expected %q and %q to normalize equally", tt.a, tt.b)
		}
	}
}

func TestMerge_RecomputesAverage(t *testing.T) {
	manual := map[int]Aggregate{4: {Label: "4", Total: dec("100"), Count: 2, Average: dec("50")}}
	ingested := map[int]Aggregate{4: {Label: "4", Total: dec("50"), Count: 1, Average: dec("50")}}

	merged := Merge(manual, ingested)

	got := merged[4]
	if !got.Total.Equal(dec("150")) || got.Count != 3 || !got.Average.Equal(dec("50")) {
		t.Fatalf("expected {150 3 50}, got {%s %d %s}", got.Total, got.Count, got.Average)
	}
}

func TestMerge_KeysFromEitherSide(t *testing.T) {
	merged := Merge(
		map[int]Aggregate{1: {Total: dec("10"), Count: 1}},
		map[int]Aggregate{2: {Total: dec("30"), Count: 2}},
	)
	if len(merged) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(merged))
	}
	if !merged[2].Average.Equal(dec("15")) {
		t.Fatalf("expected average 15, got %s", merged[2].Average)
	}
}

func TestAccumulate_ByCategoryMergesAcrossSources(t *testing.T) {
	april := time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)
	manual := []Entry{
		FromExpense(&models.Expense{Amount: dec("100"), Date: april, Category: "Alimentação"}),
		FromExpense(&models.Expense{Amount: dec("20"), Date: april}),
	}
	food := "alimentação "
	ingested := IngestedEntries([]*models.Transaction{
		{Amount: dec("-50"), Date: april, Direction: Expense, Category: &food},
		{Amount: dec("-999"), Date: april, Direction: Expense, Category: &food, Excluded: true},
	})

	merged := Merge(
		Accumulate(manual, Expense, ByCategory),
		Accumulate(ingested, Expense, ByCategory),
	)

	foodAgg := merged[NormalizeLabel("Alimentação")]
	if foodAgg.Label != "Alimentação" || !foodAgg.Total.Equal(dec("150")) || foodAgg.Count != 2 {
		t.Fatalf("unexpected food aggregate %+v", foodAgg)
	}
	none := merged[NormalizeLabel(Uncategorized)]
	if none.Label != Uncategorized || !none.Total.Equal(dec("20")) {
		t.Fatalf("unexpected uncategorized aggregate %+v", none)
	}

	sorted := SortedByTotal(merged)
	if sorted[0].Label != "Alimentação" {
		t.Fatalf("expected largest category first, got %q", sorted[0].Label)
	}
}

func TestMonthlySummariesAndFoldYear(t *testing.T) {
	entries := []Entry{
		FromIncome(&models.Income{Amount: dec("1000"), StartDate: time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)}),
		FromIncome(&models.Income{Amount: dec("500"), StartDate: time.Date(2025, time.April, 5, 0, 0, 0, 0, time.UTC)}),
		FromExpense(&models.Expense{Amount: dec("300"), Date: time.Date(2025, time.April, 8, 0, 0, 0, 0, time.UTC)}),
	}

	months := MonthlySummaries(2025,
		Accumulate(entries, Income, ByMonth),
		Accumulate(entries, Expense, ByMonth),
	)
	if len(months) != 12 {
		t.Fatalf("expected 12 months, got %d", len(months))
	}
	if months[0].Month != 1 || months[11].Month != 12 {
		t.Fatalf("months out of order: first %d last %d", months[0].Month, months[11].Month)
	}
	if !months[3].Balance.Equal(dec("200")) {
		t.Fatalf("expected April balance 200, got %s", months[3].Balance)
	}
	if !months[6].TotalIncomes.IsZero() {
		t.Fatalf("expected empty July, got %s", months[6].TotalIncomes)
	}

	year := FoldYear(2025, months)
	if !year.TotalIncomes.Equal(dec("1500")) || !year.TotalExpenses.Equal(dec("300")) || !year.Balance.Equal(dec("1200")) {
		t.Fatalf("unexpected year totals %+v", year)
	}
}

func TestByMonth_UsesUTCClock(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{"new year in UTC, still december locally", time.Date(2025, time.January, 1, 1, 0, 0, 0, time.UTC).In(brt), 1},
		{"may first in UTC, still april locally", time.Date(2025, time.May, 1, 2, 30, 0, 0, time.UTC).In(brt), 5},
		{"last evening of march locally", time.Date(2025, time.March, 31, 22, 0, 0, 0, brt), 4},
		{"plain UTC date", time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC), 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := FromTransaction(&models.Transaction{Direction: Income, Amount: dec("10"), Date: tt.at})
			if !ok {
				t.Fatal("expected transaction to count")
			}
			if got, _ := ByMonth(e); got != tt.want {
				t.Fatalf("expected month %d, got %d", tt.want, got)
			}
			if e.Date.Location() != time.UTC {
				t.Fatalf("expected entry date in UTC, got %s", e.Date.Location())
			}
		})
	}
}
