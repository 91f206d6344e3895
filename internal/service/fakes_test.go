package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"wallet-api/internal/models"
	"wallet-api/internal/repository"
	"wallet-api/pkg/pluggy"
	"wallet-api/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type fakeBank struct {
	mu           sync.Mutex
	calls        int
	keys         int
	categories   []pluggy.Category
	accounts     map[string][]pluggy.Account
	transactions map[string][]pluggy.Transaction
	investments  map[string][]pluggy.Investment
	failAccount  string
	// rejectKeys lists keys the aggregator answers with 401.
	rejectKeys map[string]bool
	renewals   int
}

func (b *fakeBank) call() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
}

func (b *fakeBank) APIKey(ctx context.Context) (string, error) {
	b.call()
	b.keys++
	return "key", nil
}

func (b *fakeBank) RenewAPIKey(ctx context.Context) (string, error) {
	b.call()
	b.renewals++
	return fmt.Sprintf("key-%d", b.renewals+1), nil
}

func (b *fakeBank) rejected(apiKey, path string) error {
	if b.rejectKeys[apiKey] {
		return &pluggy.APIError{Method: "GET", Path: path, StatusCode: 401, Body: "invalid api key"}
	}
	return nil
}

func (b *fakeBank) ListCategories(ctx context.Context, apiKey string) ([]pluggy.Category, error) {
	b.call()
	if err := b.rejected(apiKey, "/categories"); err != nil {
		return nil, err
	}
	return b.categories, nil
}

func (b *fakeBank) ListAccounts(ctx context.Context, apiKey, itemID string) ([]pluggy.Account, error) {
	b.call()
	if err := b.rejected(apiKey, "/accounts"); err != nil {
		return nil, err
	}
	return b.accounts[itemID], nil
}

func (b *fakeBank) ListTransactions(ctx context.Context, apiKey, accountID string) ([]pluggy.Transaction, error) {
	b.call()
	if err := b.rejected(apiKey, "/transactions"); err != nil {
		return nil, err
	}
	if accountID == b.failAccount {
		return nil, &pluggy.APIError{Method: "GET", Path: "/transactions", StatusCode: 502}
	}
	return b.transactions[accountID], nil
}

func (b *fakeBank) ListInvestments(ctx context.Context, apiKey, itemID string) ([]pluggy.Investment, error) {
	b.call()
	if err := b.rejected(apiKey, "/investments"); err != nil {
		return nil, err
	}
	return b.investments[itemID], nil
}

func (b *fakeBank) GetItem(ctx context.Context, apiKey, itemID string) (*pluggy.Item, error) {
	b.call()
	if err := b.rejected(apiKey, "/items"); err != nil {
		return nil, err
	}
	return &pluggy.Item{ID: itemID, Status: "UPDATED"}, nil
}

func (b *fakeBank) CreateConnectToken(ctx context.Context, apiKey, clientUserID string) (string, error) {
	b.call()
	if err := b.rejected(apiKey, "/connect_token"); err != nil {
		return "", err
	}
	return "connect-" + clientUserID, nil
}

type memConnections struct {
	rows []*models.Connection
}

func (m *memConnections) Create(ctx context.Context, conn *models.Connection) error {
	for _, c := range m.rows {
		if c.ItemID == conn.ItemID {
			return errors.New("duplicate item")
		}
	}
	m.rows = append(m.rows, conn)
	return nil
}

func (m *memConnections) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Connection, error) {
	var out []*models.Connection
	for _, c := range m.rows {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memConnections) ListAll(ctx context.Context) ([]*models.Connection, error) {
	return m.rows, nil
}

func (m *memConnections) GetByItemIDAndUser(ctx context.Context, itemID string, userID uuid.UUID) (*models.Connection, error) {
	for _, c := range m.rows {
		if c.ItemID == itemID && c.UserID == userID {
			return c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memConnections) Delete(ctx context.Context, itemID string, userID uuid.UUID) (bool, error) {
	for i, c := range m.rows {
		if c.ItemID == itemID && c.UserID == userID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type memAccounts struct {
	rows    map[string]*models.Account
	inserts int
	updates int
}

func newMemAccounts() *memAccounts {
	return &memAccounts{rows: make(map[string]*models.Account)}
}

func (m *memAccounts) FindByExternalIDs(ctx context.Context, ids []string) ([]*models.Account, error) {
	var out []*models.Account
	for _, id := range ids {
		if acc, ok := m.rows[id]; ok {
			cp := *acc
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memAccounts) CreateBatch(ctx context.Context, accounts []*models.Account) (int64, error) {
	var n int64
	for _, acc := range accounts {
		if _, ok := m.rows[acc.ExternalID]; ok {
			continue
		}
		cp := *acc
		m.rows[acc.ExternalID] = &cp
		m.inserts++
		n++
	}
	return n, nil
}

func (m *memAccounts) UpdateBalances(ctx context.Context, accounts []*models.Account) error {
	for _, acc := range accounts {
		cp := *acc
		m.rows[acc.ExternalID] = &cp
		m.updates++
	}
	return nil
}

func (m *memAccounts) byID(id uuid.UUID) *models.Account {
	for _, acc := range m.rows {
		if acc.ID == id {
			return acc
		}
	}
	return nil
}

type memTransactions struct {
	rows     map[string]*models.Transaction
	accounts *memAccounts
	inserts  int
	// staleLookup makes ExistingExternalIDs miss rows, as when an overlapping
	// sync commits between lookup and insert.
	staleLookup bool
}

func newMemTransactions(accounts *memAccounts) *memTransactions {
	return &memTransactions{rows: make(map[string]*models.Transaction), accounts: accounts}
}

func (m *memTransactions) ExistingExternalIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	if m.staleLookup {
		return out, nil
	}
	for _, id := range ids {
		if _, ok := m.rows[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (m *memTransactions) CreateBatch(ctx context.Context, txs []*models.Transaction) (int64, error) {
	var n int64
	for _, tx := range txs {
		if _, ok := m.rows[tx.ExternalID]; ok {
			continue
		}
		cp := *tx
		m.rows[tx.ExternalID] = &cp
		m.inserts++
		n++
	}
	return n, nil
}

func (m *memTransactions) list(match func(*models.Transaction) bool) []*models.Transaction {
	var out []*models.Transaction
	for _, tx := range m.rows {
		if !match(tx) {
			continue
		}
		cp := *tx
		if acc := m.accounts.byID(tx.AccountID); acc != nil {
			cp.AccountType = acc.Type
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })
	return out
}

func (m *memTransactions) ListByItem(ctx context.Context, userID uuid.UUID, itemID string) ([]*models.Transaction, error) {
	return m.list(func(tx *models.Transaction) bool { return tx.UserID == userID && tx.ItemID == itemID }), nil
}

func (m *memTransactions) ListByUserPeriod(ctx context.Context, userID uuid.UUID, period repository.Period) ([]*models.Transaction, error) {
	return m.list(func(tx *models.Transaction) bool {
		return tx.UserID == userID && inPeriod(tx.Date, period)
	}), nil
}

type memIncomes struct {
	rows []*models.Income
}

func (m *memIncomes) Create(ctx context.Context, in *models.Income) error {
	m.rows = append(m.rows, in)
	return nil
}

func (m *memIncomes) Update(ctx context.Context, in *models.Income) (bool, error) {
	for i, r := range m.rows {
		if r.ID == in.ID && r.UserID == in.UserID {
			m.rows[i] = in
			return true, nil
		}
	}
	return false, nil
}

func (m *memIncomes) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	for i, r := range m.rows {
		if r.ID == id && r.UserID == userID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memIncomes) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Income, error) {
	for _, r := range m.rows {
		if r.ID == id && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memIncomes) ListByUserPeriod(ctx context.Context, userID uuid.UUID, period repository.Period) ([]*models.Income, error) {
	var out []*models.Income
	for _, r := range m.rows {
		if r.UserID == userID && inPeriod(r.StartDate, period) {
			out = append(out, r)
		}
	}
	return out, nil
}

type memExpenses struct {
	rows []*models.Expense
}

func (m *memExpenses) Create(ctx context.Context, ex *models.Expense) error {
	m.rows = append(m.rows, ex)
	return nil
}

func (m *memExpenses) Update(ctx context.Context, ex *models.Expense) (bool, error) {
	for i, r := range m.rows {
		if r.ID == ex.ID && r.UserID == ex.UserID {
			m.rows[i] = ex
			return true, nil
		}
	}
	return false, nil
}

func (m *memExpenses) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	for i, r := range m.rows {
		if r.ID == id && r.UserID == userID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memExpenses) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Expense, error) {
	for _, r := range m.rows {
		if r.ID == id && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memExpenses) ListByUserPeriod(ctx context.Context, userID uuid.UUID, period repository.Period) ([]*models.Expense, error) {
	var out []*models.Expense
	for _, r := range m.rows {
		if r.UserID == userID && inPeriod(r.Date, period) {
			out = append(out, r)
		}
	}
	return out, nil
}

type memInvestments struct {
	rows map[string]*models.Investment
}

func (m *memInvestments) ExistingExternalIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for _, id := range ids {
		if _, ok := m.rows[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (m *memInvestments) CreateBatch(ctx context.Context, investments []*models.Investment) (int64, error) {
	var n int64
	for _, inv := range investments {
		if _, ok := m.rows[inv.ExternalID]; ok {
			continue
		}
		m.rows[inv.ExternalID] = inv
		n++
	}
	return n, nil
}

func (m *memInvestments) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Investment, error) {
	var out []*models.Investment
	for _, inv := range m.rows {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	events []rabbitmq.SyncCompletedEvent
	err    error
}

func (p *recordingPublisher) PublishSyncCompleted(ctx context.Context, event rabbitmq.SyncCompletedEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() {}

func inPeriod(t time.Time, p repository.Period) bool {
	if !p.From.IsZero() && t.Before(p.From) {
		return false
	}
	return p.To.IsZero() || t.Before(p.To)
}
