package ledger

import (
	"sort"
	"strconv"
	"time"

	"wallet-api/internal/models"

	"github.com/shopspring/decimal"
)

type Source string

const (
	SourceManual   Source = "MANUAL"
	SourceIngested Source = "INGESTED"
)

// Uncategorized labels entries that carry no category.
const Uncategorized = "Sem categoria"

// Entry is the common shape of anything that counts in a report. Amount is
// always a non-negative magnitude; Direction says which side it counts on.
// Date is in UTC, the clock report periods are cut on.
type Entry struct {
	Source      Source
	Direction   Direction
	Amount      decimal.Decimal
	Date        time.Time
	Category    string
	Description string
}

// FromIncome dates a manual income by the start of its range.
func FromIncome(in *models.Income) Entry {
	return Entry{
		Source:      SourceManual,
		Direction:   Income,
		Amount:      in.Amount.Abs(),
		Date:        in.StartDate.UTC(),
		Category:    in.Category,
		Description: in.Description,
	}
}

func FromExpense(ex *models.Expense) Entry {
	return Entry{
		Source:      SourceManual,
		Direction:   Expense,
		Amount:      ex.Amount.Abs(),
		Date:        ex.Date.UTC(),
		Category:    ex.Category,
		Description: ex.Description,
	}
}

// FromTransaction returns ok=false for transactions excluded from reporting.
func FromTransaction(tx *models.Transaction) (Entry, bool) {
	if tx.Excluded {
		return Entry{}, false
	}
	return Entry{
		Source:      SourceIngested,
		Direction:   tx.Direction,
		Amount:      tx.Amount.Abs(),
		Date:        tx.Date.UTC(),
		Category:    tx.CategoryLabel(),
		Description: tx.Description,
	}, true
}

// IngestedEntries converts stored transactions, dropping excluded ones.
func IngestedEntries(txs []*models.Transaction) []Entry {
	entries := make([]Entry, 0, len(txs))
	for _, tx := range txs {
		if e, ok := FromTransaction(tx); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

type Aggregate struct {
	Label   string
	Total   decimal.Decimal
	Count   int
	Average decimal.Decimal
}

func (a Aggregate) add(total decimal.Decimal, count int) Aggregate {
	a.Total = a.Total.Add(total)
	a.Count += count
	if a.Count > 0 {
		a.Average = a.Total.Div(decimal.NewFromInt(int64(a.Count)))
	}
	return a
}

// ByMonth groups by UTC calendar month, 1-12.
func ByMonth(e Entry) (int, string) {
	m := int(e.Date.UTC().Month())
	return m, strconv.Itoa(m)
}

// ByCategory groups by normalized label and keeps the label as first seen.
func ByCategory(e Entry) (string, string) {
	key := NormalizeLabel(e.Category)
	if key == "" {
		return NormalizeLabel(Uncategorized), Uncategorized
	}
	return key, e.Category
}

// Accumulate builds the partial aggregate of one source for one direction. key
// maps an entry to its grouping key and display label.
func Accumulate[K comparable](entries []Entry, direction Direction, key func(Entry) (K, string)) map[K]Aggregate {
	out := make(map[K]Aggregate)
	for _, e := range entries {
		if e.Direction != direction {
			continue
		}
		k, label := key(e)
		agg, ok := out[k]
		if !ok {
			agg.Label = label
		}
		out[k] = agg.add(e.Amount, 1)
	}
	return out
}

// Merge unions partial aggregates by summing Total and Count per key. The
// average is recomputed from the sums, never averaged.
func Merge[K comparable](parts ...map[K]Aggregate) map[K]Aggregate {
	out := make(map[K]Aggregate)
	for _, part := range parts {
		for k, agg := range part {
			cur, ok := out[k]
			if !ok {
				cur.Label = agg.Label
			}
			out[k] = cur.add(agg.Total, agg.Count)
		}
	}
	return out
}

// SortedByTotal lists aggregates by descending total, then label.
func SortedByTotal[K comparable](aggs map[K]Aggregate) []Aggregate {
	out := make([]Aggregate, 0, len(aggs))
	for _, agg := range aggs {
		out = append(out, agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Label < out[j].Label
	})
	return out
}

type MonthSummary struct {
	Year          int
	Month         int
	TotalIncomes  decimal.Decimal
	TotalExpenses decimal.Decimal
	Balance       decimal.Decimal
}

type YearSummary struct {
	Year          int
	Months        []MonthSummary
	TotalIncomes  decimal.Decimal
	TotalExpenses decimal.Decimal
	Balance       decimal.Decimal
}

// MonthlySummaries always returns twelve rows, months without data at zero.
func MonthlySummaries(year int, incomes, expenses map[int]Aggregate) []MonthSummary {
	out := make([]MonthSummary, 0, 12)
	for month := 1; month <= 12; month++ {
		in := incomes[month].Total
		ex := expenses[month].Total
		out = append(out, MonthSummary{
			Year:          year,
			Month:         month,
			TotalIncomes:  in,
			TotalExpenses: ex,
			Balance:       in.Sub(ex),
		})
	}
	return out
}

// FoldYear sums the monthly rows into year totals.
func FoldYear(year int, months []MonthSummary) YearSummary {
	ys := YearSummary{Year: year, Months: months}
	for _, m := range months {
		ys.TotalIncomes = ys.TotalIncomes.Add(m.TotalIncomes)
		ys.TotalExpenses = ys.TotalExpenses.Add(m.TotalExpenses)
	}
	ys.Balance = ys.TotalIncomes.Sub(ys.TotalExpenses)
	return ys
}

// Money rounds to two decimals for presentation.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
