package pluggy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrMissingCredentials = errors.New("pluggy client id or secret not configured")

// CredentialProvider hands out aggregator API keys. Implementations decide the
// key's lifetime; callers only ask for a key when they start a unit of work.
type CredentialProvider interface {
	APIKey(ctx context.Context) (string, error)
}

// ClientCredentials exchanges the client id and secret for a fresh key on every call.
type ClientCredentials struct {
	auth         *Client
	clientID     string
	clientSecret string
}

func NewClientCredentials(opts Options, clientID, clientSecret string, logger *zap.Logger) *ClientCredentials {
	return &ClientCredentials{
		auth:         NewClient(opts, nil, logger),
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

func (p *ClientCredentials) APIKey(ctx context.Context) (string, error) {
	if p.clientID == "" || p.clientSecret == "" {
		return "", ErrMissingCredentials
	}
	key, err := p.auth.authenticate(ctx, p.clientID, p.clientSecret)
	if err != nil {
		return "", fmt.Errorf("failed to mint pluggy api key: %w", err)
	}
	return key, nil
}

// StaticKey always returns the same key.
type StaticKey string

func (k StaticKey) APIKey(context.Context) (string, error) {
	if k == "" {
		return "", ErrMissingCredentials
	}
	return string(k), nil
}

// RedisKeyCache shares a minted key between processes for ttl. The ttl must be
// shorter than the aggregator's key lifetime.
type RedisKeyCache struct {
	next   CredentialProvider
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisKeyCache(next CredentialProvider, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisKeyCache {
	return &RedisKeyCache{
		next:   next,
		client: client,
		key:    "wallet:pluggy:api_key",
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisKeyCache) APIKey(ctx context.Context) (string, error) {
	cached, err := c.client.Get(ctx, c.key).Result()
	switch {
	case err == nil && cached != "":
		return cached, nil
	case err != nil && !errors.Is(err, redis.Nil):
		// a cache outage must not block syncs
		c.logger.Warn("Pluggy key cache read failed", zap.Error(err))
	}

	key, err := c.next.APIKey(ctx)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, c.key, key, c.ttl).Err(); err != nil {
		c.logger.Warn("Pluggy key cache write failed", zap.Error(err))
	}
	return key, nil
}

// KeyInvalidator is implemented by providers that keep keys around and can
// forget one the aggregator no longer accepts.
type KeyInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Invalidate drops the cached key so the next APIKey call mints a new one.
func (c *RedisKeyCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
