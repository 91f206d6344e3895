package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wallet-api/internal/dto"
	"wallet-api/internal/ledger"
	"wallet-api/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type IncomeService struct {
	incomes IncomeStore
	logger  *zap.Logger
}

func NewIncomeService(incomes IncomeStore, logger *zap.Logger) *IncomeService {
	return &IncomeService{
		incomes: incomes,
		logger:  logger,
	}
}

func (s *IncomeService) Create(ctx context.Context, userID uuid.UUID, req *dto.IncomeRequest) (*dto.IncomeResponse, error) {
	if err := validateIncome(req); err != nil {
		return nil, err
	}

	now := time.Now()
	in := &models.Income{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
	}
	applyIncome(in, req, now)

	if err := s.incomes.Create(ctx, in); err != nil {
		return nil, err
	}
	resp := toIncomeResponse(in)
	return &resp, nil
}

func (s *IncomeService) List(ctx context.Context, userID uuid.UUID, filter PeriodFilter) ([]dto.IncomeResponse, error) {
	period, err := filter.period()
	if err != nil {
		return nil, err
	}
	incomes, err := s.incomes.ListByUserPeriod(ctx, userID, period)
	if err != nil {
		return nil, err
	}
	out := make([]dto.IncomeResponse, 0, len(incomes))
	for _, in := range incomes {
		out = append(out, toIncomeResponse(in))
	}
	return out, nil
}

func (s *IncomeService) Update(ctx context.Context, userID, id uuid.UUID, req *dto.IncomeRequest) (*dto.IncomeResponse, error) {
	if err := validateIncome(req); err != nil {
		return nil, err
	}

	in, err := s.incomes.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIncomeNotFound
		}
		return nil, err
	}
	applyIncome(in, req, time.Now())

	updated, err := s.incomes.Update(ctx, in)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrIncomeNotFound
	}
	resp := toIncomeResponse(in)
	return &resp, nil
}

func (s *IncomeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	deleted, err := s.incomes.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrIncomeNotFound
	}
	return nil
}

func validateIncome(req *dto.IncomeRequest) error {
	switch {
	case strings.TrimSpace(req.Description) == "":
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	case !req.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	case req.StartDate.IsZero():
		return fmt.Errorf("%w: start_date is required", ErrInvalidInput)
	case req.EndDate != nil && !req.EndDate.IsZero() && req.EndDate.Before(req.StartDate.Time):
		return fmt.Errorf("%w: end_date is before start_date", ErrInvalidInput)
	}
	return nil
}

func applyIncome(in *models.Income, req *dto.IncomeRequest, now time.Time) {
	in.Description = strings.TrimSpace(req.Description)
	in.Amount = req.Amount
	in.StartDate = req.StartDate.Time
	in.EndDate = nil
	if req.EndDate != nil && !req.EndDate.IsZero() {
		end := req.EndDate.Time
		in.EndDate = &end
	}
	in.Category = strings.TrimSpace(req.Category)
	in.UpdatedAt = now
}

func toIncomeResponse(in *models.Income) dto.IncomeResponse {
	resp := dto.IncomeResponse{
		ID:          in.ID.String(),
		Description: in.Description,
		Amount:      in.Amount,
		StartDate:   dto.NewDate(in.StartDate),
		Category:    in.Category,
		CreatedAt:   in.CreatedAt,
	}
	if in.EndDate != nil {
		end := dto.NewDate(*in.EndDate)
		resp.EndDate = &end
	}
	return resp
}

type ExpenseService struct {
	expenses ExpenseStore
	logger   *zap.Logger
}

func NewExpenseService(expenses ExpenseStore, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		expenses: expenses,
		logger:   logger,
	}
}

func (s *ExpenseService) Create(ctx context.Context, userID uuid.UUID, req *dto.ExpenseRequest) (*dto.ExpenseResponse, error) {
	if err := validateExpense(req); err != nil {
		return nil, err
	}

	now := time.Now()
	ex := &models.Expense{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
	}
	applyExpense(ex, req, now)

	if err := s.expenses.Create(ctx, ex); err != nil {
		return nil, err
	}
	resp := toExpenseResponse(ex)
	return &resp, nil
}

func (s *ExpenseService) List(ctx context.Context, userID uuid.UUID, filter PeriodFilter) ([]dto.ExpenseResponse, error) {
	period, err := filter.period()
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListByUserPeriod(ctx, userID, period)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExpenseResponse, 0, len(expenses))
	for _, ex := range expenses {
		out = append(out, toExpenseResponse(ex))
	}
	return out, nil
}

func (s *ExpenseService) Update(ctx context.Context, userID, id uuid.UUID, req *dto.ExpenseRequest) (*dto.ExpenseResponse, error) {
	if err := validateExpense(req); err != nil {
		return nil, err
	}

	ex, err := s.expenses.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}
	applyExpense(ex, req, time.Now())

	updated, err := s.expenses.Update(ctx, ex)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrExpenseNotFound
	}
	resp := toExpenseResponse(ex)
	return &resp, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	deleted, err := s.expenses.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrExpenseNotFound
	}
	return nil
}

// TotalsByCategory sums the user's manual expenses per category.
func (s *ExpenseService) TotalsByCategory(ctx context.Context, userID uuid.UUID, filter PeriodFilter) ([]dto.CategoryAggregateResponse, error) {
	period, err := filter.period()
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListByUserPeriod(ctx, userID, period)
	if err != nil {
		return nil, err
	}

	entries := make([]ledger.Entry, 0, len(expenses))
	for _, ex := range expenses {
		entries = append(entries, ledger.FromExpense(ex))
	}
	return toCategoryResponses(ledger.Accumulate(entries, ledger.Expense, ledger.ByCategory)), nil
}

func validateExpense(req *dto.ExpenseRequest) error {
	switch {
	case strings.TrimSpace(req.Description) == "":
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	case req.Amount.IsNegative():
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	case req.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	return nil
}

func applyExpense(ex *models.Expense, req *dto.ExpenseRequest, now time.Time) {
	ex.Description = strings.TrimSpace(req.Description)
	ex.Amount = req.Amount
	ex.Date = req.Date.Time
	ex.Category = strings.TrimSpace(req.Category)
	ex.UpdatedAt = now
}

func toExpenseResponse(ex *models.Expense) dto.ExpenseResponse {
	return dto.ExpenseResponse{
		ID:          ex.ID.String(),
		Description: ex.Description,
		Amount:      ex.Amount,
		Date:        dto.NewDate(ex.Date),
		Category:    ex.Category,
		CreatedAt:   ex.CreatedAt,
	}
}
