package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wallet-api/internal/dto"
	"wallet-api/internal/models"
	"wallet-api/internal/repository"
	"wallet-api/pkg/pluggy"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ConnectionService manages linked aggregator items. Every item-scoped call
// checks ownership before it talks to the aggregator.
type ConnectionService struct {
	connections ConnectionStore
	bank        BankData
	logger      *zap.Logger
}

func NewConnectionService(connections ConnectionStore, bank BankData, logger *zap.Logger) *ConnectionService {
	return &ConnectionService{
		connections: connections,
		bank:        bank,
		logger:      logger,
	}
}

func (s *ConnectionService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateConnectionRequest) (*dto.ConnectionResponse, error) {
	itemID := strings.TrimSpace(req.ItemID)
	if itemID == "" {
		return nil, fmt.Errorf("%w: item_id is required", ErrInvalidInput)
	}

	conn := &models.Connection{
		ID:          uuid.New(),
		ItemID:      itemID,
		Institution: strings.TrimSpace(req.Institution),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		UserID:      userID,
		ConnectedAt: time.Now(),
	}
	if err := s.connections.Create(ctx, conn); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrConnectionExists
		}
		return nil, err
	}

	s.logger.Info("Connection created", zap.String("user_id", userID.String()), zap.String("item_id", itemID))
	resp := toConnectionResponse(conn)
	return &resp, nil
}

func (s *ConnectionService) List(ctx context.Context, userID uuid.UUID) ([]dto.ConnectionResponse, error) {
	conns, err := s.connections.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ConnectionResponse, 0, len(conns))
	for _, conn := range conns {
		out = append(out, toConnectionResponse(conn))
	}
	return out, nil
}

func (s *ConnectionService) Get(ctx context.Context, userID uuid.UUID, itemID string) (*dto.ConnectionResponse, error) {
	conn, err := s.owned(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	resp := toConnectionResponse(conn)
	return &resp, nil
}

func (s *ConnectionService) Delete(ctx context.Context, userID uuid.UUID, itemID string) error {
	deleted, err := s.connections.Delete(ctx, itemID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrConnectionNotFound
	}
	s.logger.Info("Connection deleted", zap.String("user_id", userID.String()), zap.String("item_id", itemID))
	return nil
}

// Accounts lists the item's accounts live from the aggregator.
func (s *ConnectionService) Accounts(ctx context.Context, userID uuid.UUID, itemID string) ([]dto.AccountResponse, error) {
	if _, err := s.owned(ctx, userID, itemID); err != nil {
		return nil, err
	}

	var accounts []pluggy.Account
	if _, err := withAPIKey(ctx, s.bank, s.logger, func(key string) error {
		var err error
		accounts, err = s.bank.ListAccounts(ctx, key, itemID)
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	out := make([]dto.AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, dto.AccountResponse{
			ID:               acc.ID,
			Name:             acc.Name,
			Type:             acc.Type,
			Subtype:          acc.Subtype,
			Number:           acc.Number,
			InstitutionName:  acc.InstitutionName(),
			Balance:          acc.Balance,
			AvailableBalance: acc.AvailableBalance,
		})
	}
	return out, nil
}

func (s *ConnectionService) Status(ctx context.Context, userID uuid.UUID, itemID string) (*dto.ConnectionStatusResponse, error) {
	if _, err := s.owned(ctx, userID, itemID); err != nil {
		return nil, err
	}

	var item *pluggy.Item
	if _, err := withAPIKey(ctx, s.bank, s.logger, func(key string) error {
		var err error
		item, err = s.bank.GetItem(ctx, key, itemID)
		if err != nil {
			return fmt.Errorf("get item: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return &dto.ConnectionStatusResponse{
		ItemID:    item.ID,
		Status:    item.Status,
		Connector: item.Connector.Name,
		UpdatedAt: item.UpdatedAt,
	}, nil
}

// ConnectToken issues a token for the aggregator's linking widget, tagged with the user id.
func (s *ConnectionService) ConnectToken(ctx context.Context, userID uuid.UUID) (*dto.ConnectTokenResponse, error) {
	var token string
	if _, err := withAPIKey(ctx, s.bank, s.logger, func(key string) error {
		var err error
		token, err = s.bank.CreateConnectToken(ctx, key, userID.String())
		if err != nil {
			return fmt.Errorf("create connect token: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &dto.ConnectTokenResponse{AccessToken: token}, nil
}

func (s *ConnectionService) owned(ctx context.Context, userID uuid.UUID, itemID string) (*models.Connection, error) {
	conn, err := s.connections.GetByItemIDAndUser(ctx, itemID, userID)
	if err != nil {
		return nil, notFoundOr(err, ErrConnectionNotFound)
	}
	return conn, nil
}

// notFoundOr maps pgx.ErrNoRows to the given sentinel.
func notFoundOr(err, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return err
}

func toConnectionResponse(conn *models.Connection) dto.ConnectionResponse {
	return dto.ConnectionResponse{
		ID:          conn.ID.String(),
		ItemID:      conn.ItemID,
		Institution: conn.Institution,
		ImageURL:    conn.ImageURL,
		ConnectedAt: conn.ConnectedAt,
	}
}
