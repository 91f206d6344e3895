package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-api/internal/ledger"
	"wallet-api/internal/models"
	"wallet-api/pkg/pluggy"
	"wallet-api/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SyncResult struct {
	ItemID          string
	AccountsCreated int
	AccountsUpdated int
	Fetched         int
	Inserted        int
	Skipped         int
	// Transactions holds every stored transaction of the item after the run.
	Transactions []*models.Transaction
}

type SyncAllResult struct {
	Connections int
	Failed      int
	Inserted    int
}

// SyncService ingests a connection's accounts and transactions from the aggregator.
type SyncService struct {
	bank         BankData
	connections  ConnectionStore
	reconciler   *AccountReconciler
	transactions TransactionStore
	publisher    rabbitmq.Publisher
	timeout      time.Duration
	logger       *zap.Logger
}

func NewSyncService(
	bank BankData,
	connections ConnectionStore,
	reconciler *AccountReconciler,
	transactions TransactionStore,
	publisher rabbitmq.Publisher,
	timeout time.Duration,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		bank:         bank,
		connections:  connections,
		reconciler:   reconciler,
		transactions: transactions,
		publisher:    publisher,
		timeout:      timeout,
		logger:       logger,
	}
}

// SyncConnection runs one ingestion pass for the user's item. Any aggregator
// or storage failure aborts the run; rows flushed before the failure stay and
// a rerun skips them.
func (s *SyncService) SyncConnection(ctx context.Context, userID uuid.UUID, itemID string) (*SyncResult, error) {
	if _, err := s.connections.GetByItemIDAndUser(ctx, itemID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConnectionNotFound
		}
		return nil, fmt.Errorf("load connection: %w", err)
	}
	return s.sync(ctx, userID, itemID)
}

// SyncAll resyncs every stored connection one after another. A failing
// connection is logged and counted; the others still run.
func (s *SyncService) SyncAll(ctx context.Context) (*SyncAllResult, error) {
	conns, err := s.connections.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}

	res := &SyncAllResult{Connections: len(conns)}
	for _, conn := range conns {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		result, err := s.sync(ctx, conn.UserID, conn.ItemID)
		if err != nil {
			res.Failed++
			continue
		}
		res.Inserted += result.Inserted
	}

	s.logger.Info("Scheduled sync finished",
		zap.Int("connections", res.Connections),
		zap.Int("failed", res.Failed),
		zap.Int("inserted", res.Inserted),
	)
	return res, nil
}

func (s *SyncService) sync(ctx context.Context, userID uuid.UUID, itemID string) (*SyncResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log := s.logger.With(zap.String("user_id", userID.String()), zap.String("item_id", itemID))

	result, err := s.ingest(ctx, userID, itemID)
	if err != nil {
		log.Error("Transaction sync failed", zap.Error(err))
		return nil, err
	}

	log.Info("Transaction sync finished",
		zap.Int("accounts_created", result.AccountsCreated),
		zap.Int("accounts_updated", result.AccountsUpdated),
		zap.Int("fetched", result.Fetched),
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", result.Skipped),
	)

	event := rabbitmq.SyncCompletedEvent{
		UserID:          userID,
		ItemID:          itemID,
		AccountsCreated: result.AccountsCreated,
		Fetched:         result.Fetched,
		Inserted:        result.Inserted,
		Timestamp:       time.Now().UTC(),
	}
	if err := s.publisher.PublishSyncCompleted(ctx, event); err != nil {
		log.Warn("Failed to publish sync event", zap.Error(err))
	}

	return result, nil
}

type fetchedTransaction struct {
	tx      pluggy.Transaction
	account *models.Account
}

func (s *SyncService) ingest(ctx context.Context, userID uuid.UUID, itemID string) (*SyncResult, error) {
	var categories []pluggy.Category
	apiKey, err := withAPIKey(ctx, s.bank, s.logger, func(key string) error {
		var err error
		categories, err = s.bank.ListCategories(ctx, key)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	translations := pluggy.CategoryTranslations(categories)

	reported, err := s.bank.ListAccounts(ctx, apiKey, itemID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	accounts, stats, err := s.reconciler.Reconcile(ctx, userID, itemID, reported)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{
		ItemID:          itemID,
		AccountsCreated: stats.Created,
		AccountsUpdated: stats.Updated,
	}

	var (
		fetched []fetchedTransaction
		ids     []string
	)
	for _, acc := range reported {
		local, ok := accounts[acc.ID]
		if !ok {
			continue
		}
		txs, err := s.bank.ListTransactions(ctx, apiKey, acc.ID)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		for _, tx := range txs {
			fetched = append(fetched, fetchedTransaction{tx: tx, account: local})
			ids = append(ids, tx.ID)
		}
	}
	result.Fetched = len(fetched)

	existing, err := s.transactions.ExistingExternalIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup existing transactions: %w", err)
	}

	now := time.Now()
	fresh := make([]*models.Transaction, 0, len(fetched))
	for _, f := range fetched {
		if _, ok := existing[f.tx.ID]; ok {
			continue
		}
		// the same id can show up twice within one run
		existing[f.tx.ID] = struct{}{}
		fresh = append(fresh, newTransaction(userID, itemID, f, translations, now))
	}

	inserted, err := s.transactions.CreateBatch(ctx, fresh)
	if err != nil {
		return nil, fmt.Errorf("store transactions: %w", err)
	}
	result.Inserted = int(inserted)
	result.Skipped = result.Fetched - result.Inserted

	result.Transactions, err = s.transactions.ListByItem(ctx, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("list stored transactions: %w", err)
	}

	return result, nil
}

func newTransaction(userID uuid.UUID, itemID string, f fetchedTransaction, translations map[string]string, now time.Time) *models.Transaction {
	var category *string
	if raw := f.tx.Category; raw != "" {
		label := raw
		if translated, ok := translations[raw]; ok {
			label = translated
		}
		label = sanitizeUTF8(label)
		category = &label
	}

	description := sanitizeUTF8(f.tx.Description)
	reported := ledger.ReportedDirection(f.tx.Amount)
	class := ledger.Classify(ledger.Input{
		Reported:    reported,
		AccountType: f.account.Type,
		Description: description,
		Category:    derefString(category),
		Amount:      f.tx.Amount,
	})
	if !class.Excluded && ledger.IsExcludedCategory(f.tx.Category) {
		class.Excluded, class.Reason = true, ledger.ReasonExcludedCategory
	}

	return &models.Transaction{
		ID:           uuid.New(),
		ExternalID:   f.tx.ID,
		UserID:       userID,
		AccountID:    f.account.ID,
		ItemID:       itemID,
		Description:  description,
		Amount:       f.tx.Amount,
		Date:         f.tx.Date,
		ReportedType: reported,
		Direction:    class.Direction,
		Excluded:     class.Excluded,
		Category:     category,
		CreatedAt:    now,
		AccountType:  f.account.Type,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
