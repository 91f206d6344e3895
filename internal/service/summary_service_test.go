package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"wallet-api/internal/models"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// newSummaryFixture syncs the two-account item and adds a manual income and
// a manual grocery expense in the same month.
func newSummaryFixture(t *testing.T) (*SummaryService, uuid.UUID) {
	t.Helper()
	f := newSyncFixture()
	if _, err := f.svc.SyncConnection(context.Background(), f.userID, "item-1"); err != nil {
		t.Fatalf("sync: %v", err)
	}

	incomes := &memIncomes{rows: []*models.Income{
		{ID: uuid.New(), UserID: f.userID, Description: "Freela", Amount: dec("1000"), StartDate: april, Category: "Serviços"},
		{ID: uuid.New(), UserID: f.userID, Description: "Bonus", Amount: dec("300"), StartDate: april.AddDate(1, 0, 0)},
	}}
	expenses := &memExpenses{rows: []*models.Expense{
		{ID: uuid.New(), UserID: f.userID, Description: "Feira", Amount: dec("50"), Date: april, Category: "supermercado"},
	}}
	return NewSummaryService(incomes, expenses, f.transactions, zap.NewNop()), f.userID
}

func TestSummaryMonthly_MergesSources(t *testing.T) {
	svc, userID := newSummaryFixture(t)

	months, err := svc.Monthly(context.Background(), userID, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(months) != 12 {
		t.Fatalf("expected 12 months, got %d", len(months))
	}

	apr := months[3]
	if !apr.TotalIncomes.Equal(dec("6000")) {
		t.Errorf("expected April incomes 6000, got %s", apr.TotalIncomes)
	}
	// groceries 200 + card purchase 150 + manual 50; transfer and bill payment excluded
	if !apr.TotalExpenses.Equal(dec("400")) {
		t.Errorf("expected April expenses 400, got %s", apr.TotalExpenses)
	}
	if !apr.Balance.Equal(dec("5600")) {
		t.Errorf("expected April balance 5600, got %s", apr.Balance)
	}
	if !months[4].TotalIncomes.IsZero() {
		t.Errorf("expected empty May, got %s", months[4].TotalIncomes)
	}
}

func TestSummaryYearly_FoldsMonths(t *testing.T) {
	svc, userID := newSummaryFixture(t)

	year, err := svc.Yearly(context.Background(), userID, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !year.TotalYearIncomes.Equal(dec("6000")) || !year.TotalYearExpenses.Equal(dec("400")) || !year.YearBalance.Equal(dec("5600")) {
		t.Fatalf("unexpected totals %+v", year)
	}

	next, err := svc.Yearly(context.Background(), userID, 2026)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.TotalYearIncomes.Equal(dec("300")) {
		t.Fatalf("expected 300 in 2026, got %s", next.TotalYearIncomes)
	}
}

func TestSummary_BucketsByUTCMonthWhateverTheScanZone(t *testing.T) {
	userID := uuid.New()
	brt := time.FixedZone("BRT", -3*60*60)
	transactions := newMemTransactions(newMemAccounts())
	_, _ = transactions.CreateBatch(context.Background(), []*models.Transaction{
		{ExternalID: "ny", UserID: userID, Direction: models.DirectionIncome, Amount: dec("100"),
			Date: time.Date(2025, time.January, 1, 1, 0, 0, 0, time.UTC).In(brt)},
		{ExternalID: "may", UserID: userID, Direction: models.DirectionExpense, Amount: dec("-40"),
			Date: time.Date(2025, time.May, 1, 2, 0, 0, 0, time.UTC).In(brt)},
	})
	svc := NewSummaryService(&memIncomes{}, &memExpenses{}, transactions, zap.NewNop())

	year, err := svc.Yearly(context.Background(), userID, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := year.MonthlySummaries[0].TotalIncomes; !got.Equal(dec("100")) {
		t.Fatalf("expected January 2025 to hold the income, got %s", got)
	}
	if got := year.MonthlySummaries[11].TotalIncomes; !got.IsZero() {
		t.Fatalf("expected empty December, got %s", got)
	}

	months, err := svc.Monthly(context.Background(), userID, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !months[4].TotalExpenses.Equal(dec("40")) || !months[3].TotalExpenses.IsZero() {
		t.Fatalf("expected the expense in May only, got April %s May %s", months[3].TotalExpenses, months[4].TotalExpenses)
	}

	may, err := svc.ByCategory(context.Background(), userID, 2025, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(may.Expenses) != 1 || !may.Expenses[0].Total.Equal(dec("40")) {
		t.Fatalf("expected the May category view to agree with the monthly row, got %+v", may.Expenses)
	}
}

func TestSummaryByCategory_MergesLabels(t *testing.T) {
	svc, userID := newSummaryFixture(t)

	res, err := svc.ByCategory(context.Background(), userID, 2025, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Expenses) != 2 {
		t.Fatalf("expected 2 expense categories, got %+v", res.Expenses)
	}
	top := res.Expenses[0]
	if !top.Total.Equal(dec("250")) || top.Count != 2 || !top.Average.Equal(dec("125")) {
		t.Fatalf("unexpected top category %+v", top)
	}
	if res.Expenses[1].Category != "Shopping" {
		t.Fatalf("expected Shopping second, got %q", res.Expenses[1].Category)
	}
}

func TestSummaryEvolution_ListsActiveMonths(t *testing.T) {
	svc, userID := newSummaryFixture(t)

	res, err := svc.Evolution(context.Background(), userID, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.MonthlyIncomes) != 1 || res.MonthlyIncomes[0].Month != 4 || res.MonthlyIncomes[0].Count != 2 {
		t.Fatalf("unexpected incomes %+v", res.MonthlyIncomes)
	}
	if !res.MonthlyIncomes[0].Average.Equal(dec("3000")) {
		t.Fatalf("expected average 3000, got %s", res.MonthlyIncomes[0].Average)
	}
}

func TestSummary_RejectsInvalidPeriod(t *testing.T) {
	svc, userID := newSummaryFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"year too small", func() error { _, err := svc.Monthly(ctx, userID, 1999); return err }},
		{"year too large", func() error { _, err := svc.Yearly(ctx, userID, 2101); return err }},
		{"month zero", func() error { _, err := svc.ByCategory(ctx, userID, 2025, 0); return err }},
		{"month thirteen", func() error { _, err := svc.ExportMonthly(ctx, userID, 2025, 13); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrInvalidPeriod) {
				t.Fatalf("expected ErrInvalidPeriod, got %v", err)
			}
		})
	}
}

func TestPeriodFilter(t *testing.T) {
	tests := []struct {
		name    string
		filter  PeriodFilter
		from    time.Time
		to      time.Time
		wantErr bool
	}{
		{name: "no filter", filter: PeriodFilter{}},
		{name: "year", filter: PeriodFilter{Year: 2025}, from: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), to: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "december", filter: PeriodFilter{Year: 2025, Month: 12}, from: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), to: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "month without year", filter: PeriodFilter{Month: 3}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.filter.period()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPeriod) {
					t.Fatalf("expected ErrInvalidPeriod, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !p.From.Equal(tt.from) || !p.To.Equal(tt.to) {
				t.Fatalf("expected [%s, %s), got [%s, %s)", tt.from, tt.to, p.From, p.To)
			}
		})
	}
}

func TestExportMonthly_WritesSheets(t *testing.T) {
	svc, userID := newSummaryFixture(t)

	data, err := svc.ExportMonthly(context.Background(), userID, 2025, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	want := []string{"Receitas", "Despesas", "Resumo"}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected sheets %v, got %v", want, got)
		}
	}

	// header plus salary, manual income and the TOTAL row
	rows, err := f.GetRows("Receitas")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 4 || rows[3][1] != "TOTAL" {
		t.Fatalf("unexpected income rows %v", rows)
	}

	balance, err := f.GetCellValue("Resumo", "A4")
	if err != nil || balance != "Saldo" {
		t.Fatalf("expected Saldo row, got %q (%v)", balance, err)
	}
}

func TestExportMonthlyByCategory_WritesSheets(t *testing.T) {
	svc, userID := newSummaryFixture(t)

	data, err := svc.ExportMonthlyByCategory(context.Background(), userID, 2025, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Despesas por Categoria")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	// header, two categories, TOTAL
	if len(rows) != 4 || rows[3][0] != "TOTAL" {
		t.Fatalf("unexpected category rows %v", rows)
	}
	if _, err := f.GetRows("Comparativo por Categoria"); err != nil {
		t.Fatalf("comparison sheet missing: %v", err)
	}
}

func TestExportFileName(t *testing.T) {
	if got := ExportFileName("relatorio", 2025, 4); got != "relatorio-Abril-2025.xlsx" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := ExportFileName("relatorio-categorias", 2025, 12); got != "relatorio-categorias-Dezembro-2025.xlsx" {
		t.Fatalf("unexpected name %q", got)
	}
}
