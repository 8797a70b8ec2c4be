// Package backend is the bearer-authenticated client for the HaShnipe backend, which
// performs swaps, snipe deposits and balance lookups on chain.
package backend

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
	"sync/atomic"
	"time"

	"github.com/rxtech-lab/hashnipe/internal/auth"
	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 15 * time.Second

	maxBodySize = 4 << 20
)

type Client struct {
	baseURL    string
	auth       auth.Collaborator
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
	now        func() time.Time
	requests   atomic.Uint64
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client that takes its bearer token from collab on every call
func NewClient(baseURL string, collab auth.Collaborator, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		auth:       collab,
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Requests returns the number of requests sent to the backend
func (c *Client) Requests() uint64 {
	return c.requests.Load()
}

// SwapQuote asks the backend for the expected output of a swap
func (c *Client) SwapQuote(ctx context.Context, req SwapRequest) (*SwapQuote, error) {
	params := url.Values{}
	params.Set("chainId", strconv.FormatInt(req.ChainID, 10))
	params.Set("fromTokenAddress", req.FromTokenAddress)
	params.Set("toTokenAddress", req.ToTokenAddress)
	params.Set("amountInBN", req.AmountInBN)
	params.Set("slippage", strconv.FormatFloat(req.Slippage, 'f', -1, 64))
	params.Set("userWalletAddress", req.UserWalletAddress)

	var resp quoteResponse
	if err := c.do(ctx, "swap quote", http.MethodGet, "/swapquote", params, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &errs.NetworkError{Op: "swap quote", StatusCode: http.StatusOK, Message: messageOr(resp.Message, "Failed to get quote")}
	}
	if resp.Data == nil || resp.Data.ToTokenAmount == "" {
		return nil, errs.Malformed("swap quote", fmt.Errorf("missing toTokenAmount"))
	}

	decimals := 18
	if resp.Data.ToToken.Decimal != "" {
		d, err := strconv.Atoi(string(resp.Data.ToToken.Decimal))
		if err != nil || d < 0 {
			return nil, errs.Malformed("swap quote", fmt.Errorf("invalid decimal %q", resp.Data.ToToken.Decimal))
		}
		decimals = d
	}
	return &SwapQuote{ToTokenAmount: string(resp.Data.ToTokenAmount), ToTokenDecimals: decimals}, nil
}

// Swap submits a swap. A response with success=false is returned as a NetworkError
// carrying the backend's message.
func (c *Client) Swap(ctx context.Context, req SwapRequest) (*SwapResult, error) {
	var resp SwapResult
	if err := c.do(ctx, "swap", http.MethodPost, "/swap", nil, req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return &resp, &errs.NetworkError{Op: "swap", StatusCode: http.StatusOK, Message: messageOr(resp.Message, "Swap failed")}
	}
	return &resp, nil
}

// Snipe registers a deposit that the backend spends when the launch goes live
func (c *Client) Snipe(ctx context.Context, req SnipeRequest) (*SnipeResult, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "snipe", http.MethodPost, "/snipe", nil, req, &raw); err != nil {
		return nil, err
	}

	var resp snipeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errs.Malformed("snipe", err)
	}
	if resp.Success != nil && !*resp.Success {
		return nil, &errs.NetworkError{Op: "snipe", StatusCode: http.StatusOK, Message: messageOr(resp.Message, "Snipe registration failed")}
	}
	if resp.Data == nil {
		return nil, errs.Malformed("snipe", fmt.Errorf("missing data"))
	}

	var full models.JSON
	_ = json.Unmarshal(raw, &full)
	return &SnipeResult{
		FinalAmount: string(resp.Data.Deposit.FinalAmount),
		LaunchTime:  resp.Data.Agent.LaunchTime,
		Raw:         full,
	}, nil
}

// GetBalance returns the formatted balance of tokenAddress held by walletAddress
func (c *Client) GetBalance(ctx context.Context, tokenAddress, walletAddress string) (*Balance, error) {
	params := url.Values{}
	params.Set("tokenAddress", tokenAddress)
	params.Set("walletAddress", walletAddress)

	var resp balanceResponse
	if err := c.do(ctx, "get balance", http.MethodGet, "/getBalance", params, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, errs.Malformed("get balance", fmt.Errorf("missing data"))
	}
	formatted := string(resp.Data.FormattedBalance)
	if formatted == "" {
		formatted = "0"
	}
	return &Balance{TokenAddress: tokenAddress, WalletAddress: walletAddress, Formatted: formatted}, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, params url.Values, body interface{}, out interface{}) error {
	token, err := auth.BearerToken(ctx, c.auth)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &errs.NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.requests.Add(1)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed", zap.String("op", op), zap.Error(err))
		return &errs.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &errs.NetworkError{Op: op, Err: err}
	}
	c.logger.Debug("backend request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errs.FromResponse(op, resp.StatusCode, resp.Header, data, c.now())
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errs.Malformed(op, err)
	}
	return nil
}

func messageOr(msg, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}
