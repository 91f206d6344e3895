package service

import (
	"context"
	"fmt"

	"wallet-api/pkg/pluggy"

	"go.uber.org/zap"
)

// withAPIKey obtains the key for one unit of aggregator work and runs its
// first call. When the aggregator rejects the key, the key is renewed once and
// the call retried. The returned key is the one the rest of the work uses.
func withAPIKey(ctx context.Context, bank BankData, logger *zap.Logger, first func(apiKey string) error) (string, error) {
	apiKey, err := bank.APIKey(ctx)
	if err != nil {
		return "", fmt.Errorf("aggregator credentials: %w", err)
	}

	err = first(apiKey)
	if !pluggy.IsKeyRejected(err) {
		return apiKey, err
	}

	logger.Warn("Aggregator rejected api key, renewing", zap.Error(err))
	apiKey, err = bank.RenewAPIKey(ctx)
	if err != nil {
		return "", fmt.Errorf("aggregator credentials: %w", err)
	}
	return apiKey, first(apiKey)
}
