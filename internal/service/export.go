package service

import (
	"context"
	"fmt"
	"sort"

	"wallet-api/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

const (
	moneyFormat   = `R$ #,##0.00`
	percentFormat = `0.00"%"`

	colorIncome   = "4CAF50"
	colorExpense  = "F44336"
	colorSummary  = "2196F3"
	colorPositive = "E8F5E8"
	colorNegative = "FDE8E8"
)

// ExportFileName names a monthly report, e.g. relatorio-Abril-2025.xlsx.
func ExportFileName(prefix string, year, month int) string {
	name := fmt.Sprint(month)
	if month >= 1 && month <= 12 {
		name = monthNames[month-1]
	}
	return fmt.Sprintf("%s-%s-%d.xlsx", prefix, name, year)
}

// ExportMonthly renders the month's entries from both sources into an XLSX
// workbook with Receitas, Despesas and Resumo sheets.
func (s *SummaryService) ExportMonthly(ctx context.Context, userID uuid.UUID, year, month int) ([]byte, error) {
	period, err := monthPeriod(year, month)
	if err != nil {
		return nil, err
	}
	src, err := s.load(ctx, userID, period)
	if err != nil {
		s.logger.Error("Failed to load export data", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, err
	}

	all := append(append([]ledger.Entry{}, src.manual...), src.ingested...)
	incomes := entriesFor(all, ledger.Income)
	expenses := entriesFor(all, ledger.Expense)

	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer w.close()

	totalIncomes, err := w.entrySheet("Receitas", colorIncome, incomes)
	if err != nil {
		return nil, err
	}
	totalExpenses, err := w.entrySheet("Despesas", colorExpense, expenses)
	if err != nil {
		return nil, err
	}
	if err := w.balanceSheet("Resumo", totalIncomes, totalExpenses); err != nil {
		return nil, err
	}
	return w.bytes()
}

// ExportMonthlyByCategory renders per-category totals with their share of the
// month and a side by side comparison sheet.
func (s *SummaryService) ExportMonthlyByCategory(ctx context.Context, userID uuid.UUID, year, month int) ([]byte, error) {
	period, err := monthPeriod(year, month)
	if err != nil {
		return nil, err
	}
	src, err := s.load(ctx, userID, period)
	if err != nil {
		s.logger.Error("Failed to load export data", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, err
	}

	incomes := byCategory(src, ledger.Income)
	expenses := byCategory(src, ledger.Expense)

	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer w.close()

	if err := w.categorySheet("Receitas por Categoria", colorIncome, ledger.SortedByTotal(incomes)); err != nil {
		return nil, err
	}
	if err := w.categorySheet("Despesas por Categoria", colorExpense, ledger.SortedByTotal(expenses)); err != nil {
		return nil, err
	}
	if err := w.comparisonSheet("Comparativo por Categoria", incomes, expenses); err != nil {
		return nil, err
	}
	return w.bytes()
}

func entriesFor(entries []ledger.Entry, direction ledger.Direction) []ledger.Entry {
	var out []ledger.Entry
	for _, e := range entries {
		if e.Direction == direction {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

type workbook struct {
	f     *excelize.File
	first bool
	money int
	pct   int
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	w := &workbook{f: f, first: true}

	mf, pf := moneyFormat, percentFormat
	var err error
	if w.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &mf}); err != nil {
		f.Close()
		return nil, err
	}
	if w.pct, err = f.NewStyle(&excelize.Style{CustomNumFmt: &pf}); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func (w *workbook) close() {
	_ = w.f.Close()
}

func (w *workbook) bytes() ([]byte, error) {
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheet creates a sheet with a styled header row. The default sheet is reused for the first one.
func (w *workbook) sheet(name, color string, headers []string, widths []float64) error {
	if w.first {
		if err := w.f.SetSheetName("Sheet1", name); err != nil {
			return err
		}
		w.first = false
	} else if _, err := w.f.NewSheet(name); err != nil {
		return err
	}

	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := w.f.SetSheetRow(name, "A1", &row); err != nil {
		return err
	}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := w.f.SetColWidth(name, col, col, width); err != nil {
			return err
		}
	}
	return w.fillRow(name, 1, len(headers), color)
}

func (w *workbook) fillRow(sheet string, row, cols int, color string) error {
	style, err := w.f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	from, _ := excelize.CoordinatesToCellName(1, row)
	to, _ := excelize.CoordinatesToCellName(cols, row)
	return w.f.SetCellStyle(sheet, from, to, style)
}

func (w *workbook) setRow(sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return w.f.SetSheetRow(sheet, cell, &values)
}

func (w *workbook) formatColumn(sheet, col string, lastRow, style int) error {
	return w.f.SetCellStyle(sheet, col+"2", fmt.Sprintf("%s%d", col, lastRow), style)
}

func (w *workbook) entrySheet(name, color string, entries []ledger.Entry) (decimal.Decimal, error) {
	if err := w.sheet(name, color, []string{"Data", "Descrição", "Categoria", "Origem", "Valor (R$)"}, []float64{15, 30, 20, 12, 15}); err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	row := 2
	for _, e := range entries {
		category := e.Category
		if category == "" {
			category = ledger.Uncategorized
		}
		if err := w.setRow(name, row, e.Date.UTC().Format("02/01/2006"), e.Description, category, sourceLabel(e.Source), e.Amount.InexactFloat64()); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(e.Amount)
		row++
	}

	if err := w.setRow(name, row, "", "TOTAL", "", "", ledger.Money(total).InexactFloat64()); err != nil {
		return decimal.Zero, err
	}
	if err := w.formatColumn(name, "E", row, w.money); err != nil {
		return decimal.Zero, err
	}
	return total, w.fillRow(name, row, 5, colorPositive)
}

func (w *workbook) balanceSheet(name string, incomes, expenses decimal.Decimal) error {
	if err := w.sheet(name, colorSummary, []string{"Tipo", "Valor (R$)"}, []float64{20, 20}); err != nil {
		return err
	}
	balance := incomes.Sub(expenses)
	rows := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Total de Receitas", incomes},
		{"Total de Despesas", expenses},
		{"Saldo", balance},
	}
	for i, r := range rows {
		if err := w.setRow(name, i+2, r.label, ledger.Money(r.amount).InexactFloat64()); err != nil {
			return err
		}
	}
	if err := w.formatColumn(name, "B", 4, w.money); err != nil {
		return err
	}
	color := colorPositive
	if balance.IsNegative() {
		color = colorNegative
	}
	return w.fillRow(name, 4, 2, color)
}

func (w *workbook) categorySheet(name, color string, aggs []ledger.Aggregate) error {
	if err := w.sheet(name, color, []string{"Categoria", "Quantidade", "Valor Total (R$)", "Percentual (%)"}, []float64{25, 15, 18, 15}); err != nil {
		return err
	}

	total := decimal.Zero
	count := 0
	for _, agg := range aggs {
		total = total.Add(agg.Total)
		count += agg.Count
	}

	row := 2
	for _, agg := range aggs {
		pct := decimal.Zero
		if total.IsPositive() {
			pct = agg.Total.Div(total).Mul(decimal.NewFromInt(100))
		}
		if err := w.setRow(name, row, agg.Label, agg.Count, ledger.Money(agg.Total).InexactFloat64(), ledger.Money(pct).InexactFloat64()); err != nil {
			return err
		}
		row++
	}
	if err := w.setRow(name, row, "TOTAL", count, ledger.Money(total).InexactFloat64(), 100); err != nil {
		return err
	}
	if err := w.formatColumn(name, "C", row, w.money); err != nil {
		return err
	}
	if err := w.formatColumn(name, "D", row, w.pct); err != nil {
		return err
	}
	return w.fillRow(name, row, 4, colorPositive)
}

func (w *workbook) comparisonSheet(name string, incomes, expenses map[string]ledger.Aggregate) error {
	if err := w.sheet(name, colorSummary, []string{"Categoria", "Receitas (R$)", "Despesas (R$)", "Saldo (R$)"}, []float64{25, 18, 18, 18}); err != nil {
		return err
	}

	labels := make(map[string]string)
	for k, agg := range incomes {
		labels[k] = agg.Label
	}
	for k, agg := range expenses {
		if _, ok := labels[k]; !ok {
			labels[k] = agg.Label
		}
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return labels[keys[i]] < labels[keys[j]] })

	row := 2
	for _, k := range keys {
		in, ex := incomes[k].Total, expenses[k].Total
		if err := w.setRow(name, row, labels[k], ledger.Money(in).InexactFloat64(), ledger.Money(ex).InexactFloat64(), ledger.Money(in.Sub(ex)).InexactFloat64()); err != nil {
			return err
		}
		row++
	}
	if row == 2 {
		return nil
	}
	for _, col := range []string{"B", "C", "D"} {
		if err := w.formatColumn(name, col, row-1, w.money); err != nil {
			return err
		}
	}
	return nil
}

func sourceLabel(src ledger.Source) string {
	if src == ledger.SourceIngested {
		return "Banco"
	}
	return "Manual"
}
