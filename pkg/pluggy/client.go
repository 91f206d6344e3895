// Package pluggy is a typed client for the Pluggy open-finance aggregator.
//
// Data calls take the API key explicitly so that one sync run can mint a key
// once and scope it to that run. Key acquisition is delegated to a
// CredentialProvider.
package pluggy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL  = "https://api.pluggy.ai"
	DefaultPageSize = 500

	apiKeyHeader = "X-API-KEY"
)

// APIError is returned for any non-2xx aggregator response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pluggy %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsKeyRejected reports whether the aggregator refused the API key itself.
func IsKeyRejected(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

type Options struct {
	BaseURL  string
	PageSize int
	Timeout  time.Duration
}

type Client struct {
	baseURL     string
	pageSize    int
	httpClient  *http.Client
	credentials CredentialProvider
	logger      *zap.Logger
}

func NewClient(opts Options, credentials CredentialProvider, logger *zap.Logger) *Client {
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:     baseURL,
		pageSize:    pageSize,
		httpClient:  &http.Client{Timeout: timeout},
		credentials: credentials,
		logger:      logger,
	}
}

// APIKey obtains a key from the configured credential provider.
func (c *Client) APIKey(ctx context.Context) (string, error) {
	return c.credentials.APIKey(ctx)
}

// RenewAPIKey drops a rejected key from a caching provider and asks for a new one.
func (c *Client) RenewAPIKey(ctx context.Context) (string, error) {
	if inv, ok := c.credentials.(KeyInvalidator); ok {
		if err := inv.Invalidate(ctx); err != nil {
			c.logger.Warn("Failed to invalidate cached pluggy key", zap.Error(err))
		}
	}
	return c.credentials.APIKey(ctx)
}

func (c *Client) ListCategories(ctx context.Context, apiKey string) ([]Category, error) {
	var resp listResponse[Category]
	if err := c.do(ctx, http.MethodGet, "/categories", nil, apiKey, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// CategoryTranslations maps a raw category description to its translated label.
// Categories without a translation are left out so callers fall back to the raw label.
func CategoryTranslations(categories []Category) map[string]string {
	translations := make(map[string]string, len(categories))
	for _, category := range categories {
		if category.Description == "" || category.DescriptionTranslated == "" {
			continue
		}
		translations[category.Description] = category.DescriptionTranslated
	}
	return translations
}

func (c *Client) ListAccounts(ctx context.Context, apiKey, itemID string) ([]Account, error) {
	var resp listResponse[Account]
	query := url.Values{"itemId": {itemID}}
	if err := c.do(ctx, http.MethodGet, "/accounts", query, apiKey, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// ListTransactionsPage fetches one page (1-based) of an account's transactions.
func (c *Client) ListTransactionsPage(ctx context.Context, apiKey, accountID string, page int) ([]Transaction, error) {
	var resp listResponse[Transaction]
	query := url.Values{
		"accountId": {accountID},
		"page":      {strconv.Itoa(page)},
		"pageSize":  {strconv.Itoa(c.pageSize)},
	}
	if err := c.do(ctx, http.MethodGet, "/transactions", query, apiKey, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// ListTransactions walks pages 1, 2, ... in order until a page comes back empty.
// Page-count metadata in the response is ignored.
func (c *Client) ListTransactions(ctx context.Context, apiKey, accountID string) ([]Transaction, error) {
	var all []Transaction
	for page := 1; ; page++ {
		results, err := c.ListTransactionsPage(ctx, apiKey, accountID, page)
		if err != nil {
			return nil, fmt.Errorf("account %s page %d: %w", accountID, page, err)
		}
		if len(results) == 0 {
			c.logger.Debug("Transaction pages exhausted",
				zap.String("account_id", accountID),
				zap.Int("pages", page-1),
				zap.Int("transactions", len(all)),
			)
			return all, nil
		}
		all = append(all, results...)
	}
}

func (c *Client) ListInvestments(ctx context.Context, apiKey, itemID string) ([]Investment, error) {
	var resp listResponse[Investment]
	query := url.Values{"itemId": {itemID}}
	if err := c.do(ctx, http.MethodGet, "/investments", query, apiKey, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) GetItem(ctx context.Context, apiKey, itemID string) (*Item, error) {
	var item Item
	if err := c.do(ctx, http.MethodGet, "/items/"+url.PathEscape(itemID), nil, apiKey, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateConnectToken issues a token for the aggregator's client-side linking widget.
func (c *Client) CreateConnectToken(ctx context.Context, apiKey, clientUserID string) (string, error) {
	var resp connectTokenResponse
	body := connectTokenRequest{ClientUserID: clientUserID}
	if err := c.do(ctx, http.MethodPost, "/connect_token", nil, apiKey, body, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

func (c *Client) authenticate(ctx context.Context, clientID, clientSecret string) (string, error) {
	var resp authResponse
	body := authRequest{ClientID: clientID, ClientSecret: clientSecret}
	if err := c.do(ctx, http.MethodPost, "/auth", nil, "", body, &resp); err != nil {
		return "", err
	}
	if resp.APIKey == "" {
		return "", fmt.Errorf("pluggy auth: empty api key in response")
	}
	return resp.APIKey, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, apiKey string, body, target interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set(apiKeyHeader, apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pluggy %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	if target == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("pluggy %s %s: malformed response: %w", method, path, err)
	}
	return nil
}
