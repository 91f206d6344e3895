package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet-api/internal/ledger"
	"wallet-api/internal/models"
	"wallet-api/pkg/pluggy"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var april = time.Date(2025, time.April, 10, 12, 0, 0, 0, time.UTC)

type syncFixture struct {
	userID       uuid.UUID
	bank         *fakeBank
	connections  *memConnections
	accounts     *memAccounts
	transactions *memTransactions
	publisher    *recordingPublisher
	svc          *SyncService
}

// newSyncFixture links item-1 to a user with a checking account holding a
// salary, a grocery purchase and a transfer between the user's own accounts,
// and a credit card holding a purchase and the bill payment.
func newSyncFixture() *syncFixture {
	userID := uuid.New()
	bank := &fakeBank{
		categories: []pluggy.Category{
			{ID: "1", Description: "Groceries", DescriptionTranslated: "Supermercado"},
			{ID: "2", Description: "Salary", DescriptionTranslated: "Salário"},
		},
		accounts: map[string][]pluggy.Account{
			"item-1": {
				{ID: "chk", Type: "BANK", Subtype: "CHECKING_ACCOUNT", Name: "Conta", Balance: dec("4500")},
				{ID: "card", Type: "CREDIT", Subtype: "CREDIT_CARD", Name: "Cartão", Balance: dec("150")},
			},
		},
		transactions: map[string][]pluggy.Transaction{
			"chk": {
				{ID: "t1", Description: "Salario", Amount: dec("5000"), Date: april, Category: "Salary"},
				{ID: "t2", Description: "Mercado", Amount: dec("-200"), Date: april, Category: "Groceries"},
				{ID: "t3", Description: "TED", Amount: dec("-300"), Date: april, Category: "Same person transfer"},
			},
			"card": {
				{ID: "t4", Description: "Loja", Amount: dec("150"), Date: april, Category: "Shopping"},
				{ID: "t5", Description: "Pagamento de fatura", Amount: dec("-1200"), Date: april},
			},
		},
	}
	connections := &memConnections{rows: []*models.Connection{{ID: uuid.New(), ItemID: "item-1", UserID: userID}}}
	accounts := newMemAccounts()
	transactions := newMemTransactions(accounts)
	publisher := &recordingPublisher{}
	logger := zap.NewNop()

	svc := NewSyncService(bank, connections, NewAccountReconciler(accounts, true, logger), transactions, publisher, time.Minute, logger)
	return &syncFixture{
		userID:       userID,
		bank:         bank,
		connections:  connections,
		accounts:     accounts,
		transactions: transactions,
		publisher:    publisher,
		svc:          svc,
	}
}

func TestSyncConnection_ClassifiesTwoAccountItem(t *testing.T) {
	f := newSyncFixture()

	res, err := f.svc.SyncConnection(context.Background(), f.userID, "item-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AccountsCreated != 2 || res.Fetched != 5 || res.Inserted != 5 || res.Skipped != 0 {
		t.Fatalf("unexpected counters %+v", res)
	}
	if len(res.Transactions) != 5 {
		t.Fatalf("expected 5 stored transactions, got %d", len(res.Transactions))
	}

	byID := make(map[string]*models.Transaction)
	for _, tx := range res.Transactions {
		byID[tx.ExternalID] = tx
	}

	tests := []struct {
		id       string
		dir      ledger.Direction
		excluded bool
		category string
	}{
		{"t1", ledger.Income, false, "Salário"},
		{"t2", ledger.Expense, false, "Supermercado"},
		{"t3", ledger.Expense, true, "Same person transfer"},
		{"t4", ledger.Expense, false, "Shopping"},
		{"t5", ledger.Expense, true, ""},
	}
	for _, tt := range tests {
		tx, ok := byID[tt.id]
		if !ok {
			t.Fatalf("transaction %s not stored", tt.id)
		}
		if tx.Direction != tt.dir || tx.Excluded != tt.excluded {
			t.Errorf("%s: expected %s excluded=%v, got %s excluded=%v", tt.id, tt.dir, tt.excluded, tx.Direction, tx.Excluded)
		}
		if got := derefString(tx.Category); got != tt.category {
			t.Errorf("%s: expected category %q, got %q", tt.id, tt.category, got)
		}
	}

	if byID["t4"].ReportedType != ledger.Income {
		t.Errorf("reported type must keep the aggregator sign, got %s", byID["t4"].ReportedType)
	}

	if len(f.publisher.events) != 1 || f.publisher.events[0].Inserted != 5 {
		t.Fatalf("expected one sync event with 5 inserted, got %+v", f.publisher.events)
	}
}

func TestSyncConnection_SecondRunInsertsNothing(t *testing.T) {
	f := newSyncFixture()
	ctx := context.Background()

	if _, err := f.svc.SyncConnection(ctx, f.userID, "item-1"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	res, err := f.svc.SyncConnection(ctx, f.userID, "item-1")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if res.Inserted != 0 || res.Skipped != 5 || res.AccountsCreated != 0 || res.AccountsUpdated != 0 {
		t.Fatalf("expected a no-op second run, got %+v", res)
	}
	if len(f.transactions.rows) != 5 || f.transactions.inserts != 5 {
		t.Fatalf("expected 5 rows after two runs, got %d", len(f.transactions.rows))
	}
	if f.accounts.inserts != 2 || f.accounts.updates != 0 {
		t.Fatalf("expected 2 account inserts and no updates, got %d/%d", f.accounts.inserts, f.accounts.updates)
	}
}

func TestSyncConnection_StoresOnlyUnseen(t *testing.T) {
	f := newSyncFixture()
	ctx := context.Background()

	// two of the five fetched ids are already stored
	for _, id := range []string{"t1", "t4"} {
		f.transactions.rows[id] = &models.Transaction{ID: uuid.New(), ExternalID: id, UserID: f.userID, ItemID: "item-1", Date: april}
	}

	res, err := f.svc.SyncConnection(ctx, f.userID, "item-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Fetched != 5 || res.Inserted != 3 || res.Skipped != 2 {
		t.Fatalf("expected 3 of 5 inserted, got %+v", res)
	}
}

func TestSyncConnection_DuplicateIDWithinRun(t *testing.T) {
	f := newSyncFixture()
	f.bank.transactions["card"] = append(f.bank.transactions["card"], f.bank.transactions["chk"][0])

	res, err := f.svc.SyncConnection(context.Background(), f.userID, "item-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Fetched != 6 || res.Inserted != 5 {
		t.Fatalf("expected the repeated id stored once, got %+v", res)
	}
}

func TestSyncConnection_OverlappingRunDoesNotFail(t *testing.T) {
	f := newSyncFixture()
	ctx := context.Background()
	if _, err := f.svc.SyncConnection(ctx, f.userID, "item-1"); err != nil {
		t.Fatalf("first run: %v", err)
	}

	f.transactions.staleLookup = true
	res, err := f.svc.SyncConnection(ctx, f.userID, "item-1")
	if err != nil {
		t.Fatalf("conflicting insert must not fail the run: %v", err)
	}
	if res.Inserted != 0 || len(f.transactions.rows) != 5 {
		t.Fatalf("expected no new rows, got inserted=%d rows=%d", res.Inserted, len(f.transactions.rows))
	}
}

func TestSyncConnection_ForeignItemTouchesNoAggregator(t *testing.T) {
	f := newSyncFixture()

	_, err := f.svc.SyncConnection(context.Background(), uuid.New(), "item-1")
	if !errors.Is(err, ErrConnectionNotFound) {
		t.Fatalf("expected ErrConnectionNotFound, got %v", err)
	}
	if f.bank.calls != 0 {
		t.Fatalf("expected no aggregator calls, got %d", f.bank.calls)
	}
	if len(f.publisher.events) != 0 {
		t.Fatal("no event expected for a rejected sync")
	}
}

func TestSyncConnection_UpstreamFailureAborts(t *testing.T) {
	f := newSyncFixture()
	f.bank.failAccount = "card"

	_, err := f.svc.SyncConnection(context.Background(), f.userID, "item-1")
	var apiErr *pluggy.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected the aggregator error, got %v", err)
	}
	if len(f.transactions.rows) != 0 {
		t.Fatalf("expected nothing stored, got %d rows", len(f.transactions.rows))
	}
	if len(f.publisher.events) != 0 {
		t.Fatal("no event expected for a failed sync")
	}
}

func TestSyncConnection_PublishFailureIsIgnored(t *testing.T) {
	f := newSyncFixture()
	f.publisher.err = errors.New("broker down")

	if _, err := f.svc.SyncConnection(context.Background(), f.userID, "item-1"); err != nil {
		t.Fatalf("publish failure must not fail the sync: %v", err)
	}
}

func TestSyncConnection_FetchesKeyOnce(t *testing.T) {
	f := newSyncFixture()

	if _, err := f.svc.SyncConnection(context.Background(), f.userID, "item-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.bank.keys != 1 {
		t.Fatalf("expected one api key per run, got %d", f.bank.keys)
	}
}

func TestSyncConnection_RenewsRejectedKeyOnce(t *testing.T) {
	tests := []struct {
		name         string
		rejectKeys   map[string]bool
		wantErr      bool
		wantInserted int
	}{
		{"renewed key accepted", map[string]bool{"key": true}, false, 5},
		{"renewed key rejected too", map[string]bool{"key": true, "key-2": true}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSyncFixture()
			f.bank.rejectKeys = tt.rejectKeys

			res, err := f.svc.SyncConnection(context.Background(), f.userID, "item-1")
			if f.bank.renewals != 1 {
				t.Fatalf("expected exactly one renewal, got %d", f.bank.renewals)
			}
			if tt.wantErr {
				if !pluggy.IsKeyRejected(err) {
					t.Fatalf("expected rejected-key error, got %v", err)
				}
				if len(f.transactions.rows) != 0 {
					t.Fatalf("expected nothing persisted, got %d rows", len(f.transactions.rows))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Inserted != tt.wantInserted {
				t.Fatalf("expected %d inserted, got %d", tt.wantInserted, res.Inserted)
			}
		})
	}
}

func TestSyncConnection_OtherUpstreamErrorsAreNotRetried(t *testing.T) {
	f := newSyncFixture()
	f.bank.failAccount = "card"

	if _, err := f.svc.SyncConnection(context.Background(), f.userID, "item-1"); err == nil {
		t.Fatal("expected error")
	}
	if f.bank.renewals != 0 {
		t.Fatalf("expected no renewal for a 502, got %d", f.bank.renewals)
	}
}

func TestSyncAll_CountsFailures(t *testing.T) {
	f := newSyncFixture()
	other := uuid.New()
	f.connections.rows = append(f.connections.rows, &models.Connection{ID: uuid.New(), ItemID: "item-2", UserID: other})
	f.bank.accounts["item-2"] = []pluggy.Account{{ID: "broken", Type: "BANK"}}
	f.bank.failAccount = "broken"

	res, err := f.svc.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Connections != 2 || res.Failed != 1 || res.Inserted != 5 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	accounts := newMemAccounts()
	r := NewAccountReconciler(accounts, true, zap.NewNop())
	ctx := context.Background()
	userID := uuid.New()
	reported := []pluggy.Account{
		{ID: "a1", Type: "BANK", Balance: dec("10")},
		{ID: "a1", Type: "BANK", Balance: dec("10")},
		{ID: "a2", Type: "CREDIT", Balance: dec("20")},
	}

	first, stats, err := r.Reconcile(ctx, userID, "item", reported)
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	if stats.Created != 2 || len(first) != 2 {
		t.Fatalf("expected 2 accounts created, got %+v (%d mapped)", stats, len(first))
	}

	second, stats, err := r.Reconcile(ctx, userID, "item", reported)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if stats.Created != 0 || stats.Updated != 0 {
		t.Fatalf("expected no writes on unchanged input, got %+v", stats)
	}
	if second["a1"].ID != first["a1"].ID {
		t.Fatal("expected the stored account to be reused")
	}
}

func TestReconcile_RefreshesChangedBalance(t *testing.T) {
	accounts := newMemAccounts()
	r := NewAccountReconciler(accounts, true, zap.NewNop())
	ctx := context.Background()
	userID := uuid.New()

	if _, _, err := r.Reconcile(ctx, userID, "item", []pluggy.Account{{ID: "a1", Balance: dec("10")}, {ID: "a2", Balance: dec("5")}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	available := dec("7")
	_, stats, err := r.Reconcile(ctx, userID, "item", []pluggy.Account{
		{ID: "a1", Balance: dec("12")},
		{ID: "a2", Balance: dec("5"), AvailableBalance: &available},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Updated != 2 {
		t.Fatalf("expected 2 updates, got %+v", stats)
	}
	if !accounts.rows["a1"].Balance.Equal(dec("12")) {
		t.Fatalf("expected refreshed balance, got %s", accounts.rows["a1"].Balance)
	}
}

func TestReconcile_NoRefreshWhenDisabled(t *testing.T) {
	accounts := newMemAccounts()
	r := NewAccountReconciler(accounts, false, zap.NewNop())
	ctx := context.Background()
	userID := uuid.New()

	if _, _, err := r.Reconcile(ctx, userID, "item", []pluggy.Account{{ID: "a1", Balance: dec("10")}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, stats, err := r.Reconcile(ctx, userID, "item", []pluggy.Account{{ID: "a1", Balance: dec("99")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Updated != 0 || !accounts.rows["a1"].Balance.Equal(dec("10")) {
		t.Fatalf("balance must stay untouched, got %+v", stats)
	}
}
