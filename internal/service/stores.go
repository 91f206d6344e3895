package service

import (
	"context"

	"wallet-api/internal/models"
	"wallet-api/internal/repository"
	"wallet-api/pkg/pluggy"

	"github.com/google/uuid"
)

// The interfaces below are what the services need from storage and the
// aggregator. The repository and pluggy packages satisfy them.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type ConnectionStore interface {
	Create(ctx context.Context, conn *models.Connection) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Connection, error)
	ListAll(ctx context.Context) ([]*models.Connection, error)
	GetByItemIDAndUser(ctx context.Context, itemID string, userID uuid.UUID) (*models.Connection, error)
	Delete(ctx context.Context, itemID string, userID uuid.UUID) (bool, error)
}

type AccountStore interface {
	FindByExternalIDs(ctx context.Context, ids []string) ([]*models.Account, error)
	CreateBatch(ctx context.Context, accounts []*models.Account) (int64, error)
	UpdateBalances(ctx context.Context, accounts []*models.Account) error
}

type TransactionStore interface {
	ExistingExternalIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
	CreateBatch(ctx context.Context, transactions []*models.Transaction) (int64, error)
	ListByItem(ctx context.Context, userID uuid.UUID, itemID string) ([]*models.Transaction, error)
	ListByUserPeriod(ctx context.Context, userID uuid.UUID, period repository.Period) ([]*models.Transaction, error)
}

type IncomeStore interface {
	Create(ctx context.Context, in *models.Income) error
	Update(ctx context.Context, in *models.Income) (bool, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Income, error)
	ListByUserPeriod(ctx context.Context, userID uuid.UUID, period repository.Period) ([]*models.Income, error)
}

type ExpenseStore interface {
	Create(ctx context.Context, ex *models.Expense) error
	Update(ctx context.Context, ex *models.Expense) (bool, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Expense, error)
	ListByUserPeriod(ctx context.Context, userID uuid.UUID, period repository.Period) ([]*models.Expense, error)
}

type InvestmentStore interface {
	ExistingExternalIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
	CreateBatch(ctx context.Context, investments []*models.Investment) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Investment, error)
}

// BankData is the part of the aggregator client the services call.
type BankData interface {
	APIKey(ctx context.Context) (string, error)
	RenewAPIKey(ctx context.Context) (string, error)
	ListCategories(ctx context.Context, apiKey string) ([]pluggy.Category, error)
	ListAccounts(ctx context.Context, apiKey, itemID string) ([]pluggy.Account, error)
	ListTransactions(ctx context.Context, apiKey, accountID string) ([]pluggy.Transaction, error)
	ListInvestments(ctx context.Context, apiKey, itemID string) ([]pluggy.Investment, error)
	GetItem(ctx context.Context, apiKey, itemID string) (*pluggy.Item, error)
	CreateConnectToken(ctx context.Context, apiKey, clientUserID string) (string, error)
}

var (
	_ UserStore        = (*repository.UserRepository)(nil)
	_ ConnectionStore  = (*repository.ConnectionRepository)(nil)
	_ AccountStore     = (*repository.AccountRepository)(nil)
	_ TransactionStore = (*repository.TransactionRepository)(nil)
	_ IncomeStore      = (*repository.IncomeRepository)(nil)
	_ ExpenseStore     = (*repository.ExpenseRepository)(nil)
	_ InvestmentStore  = (*repository.InvestmentRepository)(nil)
	_ BankData         = (*pluggy.Client)(nil)
)
