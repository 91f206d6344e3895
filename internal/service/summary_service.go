package service

import (
	"context"
	"fmt"

	"wallet-api/internal/dto"
	"wallet-api/internal/ledger"
	"wallet-api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SummaryService builds reports that merge manual records with ingested
// transactions. Each source is aggregated on its own and the partial results
// are merged per key.
type SummaryService struct {
	incomes      IncomeStore
	expenses     ExpenseStore
	transactions TransactionStore
	logger       *zap.Logger
}

func NewSummaryService(incomes IncomeStore, expenses ExpenseStore, transactions TransactionStore, logger *zap.Logger) *SummaryService {
	return &SummaryService{
		incomes:      incomes,
		expenses:     expenses,
		transactions: transactions,
		logger:       logger,
	}
}

type sources struct {
	manual   []ledger.Entry
	ingested []ledger.Entry
}

func (s *SummaryService) load(ctx context.Context, userID uuid.UUID, period repository.Period) (*sources, error) {
	incomes, err := s.incomes.ListByUserPeriod(ctx, userID, period)
	if err != nil {
		return nil, fmt.Errorf("load incomes: %w", err)
	}
	expenses, err := s.expenses.ListByUserPeriod(ctx, userID, period)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	txs, err := s.transactions.ListByUserPeriod(ctx, userID, period)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	src := &sources{
		manual:   make([]ledger.Entry, 0, len(incomes)+len(expenses)),
		ingested: ledger.IngestedEntries(txs),
	}
	for _, in := range incomes {
		src.manual = append(src.manual, ledger.FromIncome(in))
	}
	for _, ex := range expenses {
		src.manual = append(src.manual, ledger.FromExpense(ex))
	}
	return src, nil
}

func byMonth(src *sources, direction ledger.Direction) map[int]ledger.Aggregate {
	return ledger.Merge(
		ledger.Accumulate(src.manual, direction, ledger.ByMonth),
		ledger.Accumulate(src.ingested, direction, ledger.ByMonth),
	)
}

func byCategory(src *sources, direction ledger.Direction) map[string]ledger.Aggregate {
	return ledger.Merge(
		ledger.Accumulate(src.manual, direction, ledger.ByCategory),
		ledger.Accumulate(src.ingested, direction, ledger.ByCategory),
	)
}

func (s *SummaryService) months(ctx context.Context, userID uuid.UUID, year int) ([]ledger.MonthSummary, error) {
	period, err := yearPeriod(year)
	if err != nil {
		return nil, err
	}
	src, err := s.load(ctx, userID, period)
	if err != nil {
		s.logger.Error("Failed to build monthly summary", zap.String("user_id", userID.String()), zap.Int("year", year), zap.Error(err))
		return nil, err
	}
	return ledger.MonthlySummaries(year, byMonth(src, ledger.Income), byMonth(src, ledger.Expense)), nil
}

// Monthly returns twelve rows for the year.
func (s *SummaryService) Monthly(ctx context.Context, userID uuid.UUID, year int) ([]dto.MonthlySummaryResponse, error) {
	months, err := s.months(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	return toMonthlyResponses(months), nil
}

func (s *SummaryService) Yearly(ctx context.Context, userID uuid.UUID, year int) (*dto.YearlySummaryResponse, error) {
	months, err := s.months(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	ys := ledger.FoldYear(year, months)
	return &dto.YearlySummaryResponse{
		Year:              ys.Year,
		MonthlySummaries:  toMonthlyResponses(ys.Months),
		TotalYearIncomes:  ledger.Money(ys.TotalIncomes),
		TotalYearExpenses: ledger.Money(ys.TotalExpenses),
		YearBalance:       ledger.Money(ys.Balance),
	}, nil
}

func (s *SummaryService) ByCategory(ctx context.Context, userID uuid.UUID, year, month int) (*dto.CategorySummaryResponse, error) {
	period, err := monthPeriod(year, month)
	if err != nil {
		return nil, err
	}
	src, err := s.load(ctx, userID, period)
	if err != nil {
		s.logger.Error("Failed to build category summary", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, err
	}
	return &dto.CategorySummaryResponse{
		Year:     year,
		Month:    month,
		Incomes:  toCategoryResponses(byCategory(src, ledger.Income)),
		Expenses: toCategoryResponses(byCategory(src, ledger.Expense)),
	}, nil
}

// Evolution returns per-month total, count and average for both sides.
func (s *SummaryService) Evolution(ctx context.Context, userID uuid.UUID, year int) (*dto.EvolutionResponse, error) {
	period, err := yearPeriod(year)
	if err != nil {
		return nil, err
	}
	src, err := s.load(ctx, userID, period)
	if err != nil {
		s.logger.Error("Failed to build evolution", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, err
	}
	return &dto.EvolutionResponse{
		Year:            year,
		MonthlyIncomes:  toMonthAggregates(byMonth(src, ledger.Income)),
		MonthlyExpenses: toMonthAggregates(byMonth(src, ledger.Expense)),
	}, nil
}

func toMonthlyResponses(months []ledger.MonthSummary) []dto.MonthlySummaryResponse {
	out := make([]dto.MonthlySummaryResponse, 0, len(months))
	for _, m := range months {
		out = append(out, dto.MonthlySummaryResponse{
			Year:          m.Year,
			Month:         m.Month,
			TotalIncomes:  ledger.Money(m.TotalIncomes),
			TotalExpenses: ledger.Money(m.TotalExpenses),
			Balance:       ledger.Money(m.Balance),
		})
	}
	return out
}

func toCategoryResponses(aggs map[string]ledger.Aggregate) []dto.CategoryAggregateResponse {
	sorted := ledger.SortedByTotal(aggs)
	out := make([]dto.CategoryAggregateResponse, 0, len(sorted))
	for _, agg := range sorted {
		out = append(out, dto.CategoryAggregateResponse{
			Category: agg.Label,
			Total:    ledger.Money(agg.Total),
			Count:    agg.Count,
			Average:  ledger.Money(agg.Average),
		})
	}
	return out
}

// toMonthAggregates lists the months that have entries, in calendar order.
func toMonthAggregates(aggs map[int]ledger.Aggregate) []dto.MonthAggregateResponse {
	out := make([]dto.MonthAggregateResponse, 0, len(aggs))
	for month := 1; month <= 12; month++ {
		agg, ok := aggs[month]
		if !ok {
			continue
		}
		out = append(out, dto.MonthAggregateResponse{
			Month:   month,
			Total:   ledger.Money(agg.Total),
			Count:   agg.Count,
			Average: ledger.Money(agg.Average),
		})
	}
	return out
}
