package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"fogswap/pkg/types"
)

// DefaultBaseURL is the public Fogswap API
const DefaultBaseURL = "https://api.fogswap.io/v1"

const (
	endpointTokens          = "/market/tokens"
	endpointQuote           = "/transaction/quote"
	endpointCreate          = "/transaction/create"
	endpointTransactionInfo = "/transaction/info"
)

// Params is the flat parameter set of one request. A nil value marks an absent optional:
// it is dropped from GET query strings and encoded as null in POST bodies.
type Params map[string]any

// FogswapClient talks to the Fogswap swap API.
// It holds no mutable state and is safe for concurrent use.
type FogswapClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *Metrics
	validate   *validator.Validate
}

// Option configures a FogswapClient
type Option func(*FogswapClient)

// WithHTTPClient sets the transport. The client never sets a timeout of its own.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *FogswapClient) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *zap.Logger) Option {
	return func(c *FogswapClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records request counts and durations
func WithMetrics(metrics *Metrics) Option {
	return func(c *FogswapClient) {
		c.metrics = metrics
	}
}

// NewFogswapClient creates a client for baseURL, or DefaultBaseURL when empty
func NewFogswapClient(baseURL string, opts ...Option) *FogswapClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &FogswapClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
		validate:   validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root requests are sent to
func (c *FogswapClient) BaseURL() string {
	return c.baseURL
}

// QuoteRequest holds the arguments of GetQuote
type QuoteRequest struct {
	AmountFrom          float64       `validate:"gt=0"`
	NetworkFrom         string        `validate:"required"`
	ContractAddressFrom string        `validate:"required"`
	NetworkTo           string        `validate:"required"`
	ContractAddressTo   string        `validate:"required"`
	TxType              *types.TxType `validate:"omitempty,oneof=standard private"`
	UseXMR              *bool
}

// CreateTransactionRequest holds the arguments of CreateTransaction
type CreateTransactionRequest struct {
	NetworkFrom         string  `validate:"required"`
	ContractAddressFrom string  `validate:"required"`
	AmountFrom          float64 `validate:"gt=0"`
	NetworkTo           string  `validate:"required"`
	ContractAddressTo   string  `validate:"required"`
	PayoutAddress       string  `validate:"required"`
	PayoutExtraID       *string
	TxType              *types.TxType `validate:"omitempty,oneof=standard private"`
	UseXMR              *bool
}

// ListTokens returns the supported tokens grouped by network
func (c *FogswapClient) ListTokens(ctx context.Context) ([]types.TokenList, error) {
	envelope, err := c.sendRequest(ctx, http.MethodGet, endpointTokens, nil)
	if err != nil {
		return nil, err
	}

	return unwrap[[]types.TokenList](envelope, OpGetAvailableCoins)
}

// FindToken resolves a token symbol, optionally on a given network
func (c *FogswapClient) FindToken(ctx context.Context, network, symbol string) (*types.TokenInfo, error) {
	lists, err := c.ListTokens(ctx)
	if err != nil {
		return nil, err
	}
	return types.FindToken(lists, network, symbol)
}

// GetQuote asks for a non-binding estimate of the output amount of a swap
func (c *FogswapClient) GetQuote(ctx context.Context, req QuoteRequest) (*types.QuoteResponse, error) {
	if err := c.validate.StructCtx(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	envelope, err := c.sendRequest(ctx, http.MethodGet, endpointQuote, Params{
		"amount_from":           req.AmountFrom,
		"network_from":          req.NetworkFrom,
		"contract_address_from": req.ContractAddressFrom,
		"network_to":            req.NetworkTo,
		"contract_address_to":   req.ContractAddressTo,
		"tx_type":               optional(req.TxType),
		"is_use_xmr":            optional(req.UseXMR),
	})
	if err != nil {
		return nil, err
	}

	quote, err := unwrap[types.QuoteResponse](envelope, OpGetEstimatedExchangeAmount)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// CreateTransaction creates a swap and returns its payin instructions
func (c *FogswapClient) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*types.TransactionInfo, error) {
	if err := c.validate.StructCtx(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	envelope, err := c.sendRequest(ctx, http.MethodPost, endpointCreate, Params{
		"network_from":          req.NetworkFrom,
		"contract_address_from": req.ContractAddressFrom,
		"amount_from":           req.AmountFrom,
		"network_to":            req.NetworkTo,
		"contract_address_to":   req.ContractAddressTo,
		"payout_address":        req.PayoutAddress,
		"payout_extra_id":       optional(req.PayoutExtraID),
		"tx_type":               optional(req.TxType),
		"is_use_xmr":            optional(req.UseXMR),
	})
	if err != nil {
		return nil, err
	}

	info, err := unwrap[types.TransactionInfo](envelope, OpCreateTransaction)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("transaction created", zap.String("id", info.ID), zap.String("status", info.Status))
	return &info, nil
}

// GetTransactionInfo fetches a fresh copy of a swap's server-side record
func (c *FogswapClient) GetTransactionInfo(ctx context.Context, id string) (*types.TransactionInfo, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: transaction id is required", ErrInvalidRequest)
	}

	envelope, err := c.sendRequest(ctx, http.MethodGet, endpointTransactionInfo, Params{
		"tx_id": id,
	})
	if err != nil {
		return nil, err
	}

	info, err := unwrap[types.TransactionInfo](envelope, OpGetTransactionInfo)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// sendRequest performs exactly one round trip and returns the top-level envelope object
func (c *FogswapClient) sendRequest(ctx context.Context, method, endpoint string, params Params) (map[string]json.RawMessage, error) {
	u := c.baseURL + endpoint

	var body io.Reader
	switch method {
	case http.MethodGet:
		if len(params) > 0 {
			query := url.Values{}
			for key, value := range params {
				if value == nil {
					continue
				}
				query.Set(key, queryValue(value))
			}
			if encoded := query.Encode(); encoded != "" {
				u += "?" + encoded
			}
		}
	case http.MethodPost:
		if params != nil {
			data, err := json.Marshal(params)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal request: %w", err)
			}
			body = bytes.NewReader(data)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordRequest(method, endpoint, 0, time.Since(start))
		c.logger.Debug("request failed", zap.String("method", method), zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	c.metrics.RecordRequest(method, endpoint, resp.StatusCode, elapsed)
	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", elapsed),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var envelope map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if envelope == nil {
		return nil, fmt.Errorf("failed to decode response: body is null")
	}

	return envelope, nil
}

// unwrap turns the envelope into either the operation's APIError or its typed result
func unwrap[T any](envelope map[string]json.RawMessage, op Operation) (T, error) {
	var result T

	if raw, ok := envelope["error"]; ok {
		var errObj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &errObj); err == nil && errObj != nil {
			msgRaw, ok := errObj["message"]
			if !ok || isNull(msgRaw) {
				return result, fmt.Errorf("malformed response: error object without message")
			}
			var message string
			if err := json.Unmarshal(msgRaw, &message); err != nil {
				return result, fmt.Errorf("malformed response: error message: %w", err)
			}
			return result, &APIError{Op: op, Message: message}
		}
	}

	raw, ok := envelope["result"]
	if !ok {
		return result, fmt.Errorf("malformed response: missing result")
	}
	if err := decodeStrict(raw, &result, "result"); err != nil {
		return result, err
	}

	return result, nil
}

func optional[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func queryValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// shortest exact form, no exponent: 1.0 is sent as "1", 0.00001 as "0.00001"
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
