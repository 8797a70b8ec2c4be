// Package virtuals is a client for the Virtual Protocol REST API: genesis launches and the
// sentient and prototype token lists.
package virtuals

import (
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

	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultTimeout  = 15 * time.Second
	DefaultPageSize = 10
	MaxPageSize     = 100

	maxBodySize = 8 << 20
)

// Category selects one of the two upstream token lists
type Category string

const (
	CategorySentient  Category = "sentient"
	CategoryPrototype Category = "prototype"
)

// ParseCategory accepts the category name case-insensitively
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategorySentient:
		return CategorySentient, nil
	case CategoryPrototype:
		return CategoryPrototype, nil
	}
	return "", errs.Validation("category", fmt.Sprintf("unknown token category %q, expected sentient or prototype", s))
}

// UpstreamStatus is the virtual status filter behind the category
func (c Category) UpstreamStatus() string {
	if c == CategoryPrototype {
		return "UNDERGRAD"
	}
	return "AVAILABLE"
}

// GenesisQuery filters the genesis list. An empty Statuses list means no status filter.
type GenesisQuery struct {
	Page     int
	PageSize int
	Statuses []models.LaunchStatus
}

// VirtualQuery selects a page of one token category
type VirtualQuery struct {
	Page     int
	PageSize int
	Category Category
}

type Client struct {
	baseURL    string
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

// WithTimeout bounds every request, including body decoding
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

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
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

// Requests returns the number of requests issued so far
func (c *Client) Requests() uint64 {
	return c.requests.Load()
}

// ListGeneses returns one page of genesis launches. A launch that violates the model
// invariants makes the whole payload malformed.
func (c *Client) ListGeneses(ctx context.Context, q GenesisQuery) (*models.Page[models.Launch], error) {
	params := paginationParams(q.Page, q.PageSize)
	for i, s := range q.Statuses {
		params.Set(fmt.Sprintf("filters[status][$in][%d]", i), string(s))
	}

	var resp listResponse[genesisDTO]
	if err := c.get(ctx, "list geneses", "/api/geneses", params, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil || resp.Meta.Pagination == nil {
		return nil, errs.Malformed("list geneses", fmt.Errorf("missing data or pagination"))
	}

	launches := make([]models.Launch, 0, len(resp.Data))
	for _, g := range resp.Data {
		l, err := g.toLaunch()
		if err != nil {
			return nil, errs.Malformed("list geneses", err)
		}
		launches = append(launches, l)
	}
	return &models.Page[models.Launch]{Items: launches, Pagination: *resp.Meta.Pagination}, nil
}

// GetGenesis returns a single launch by id
func (c *Client) GetGenesis(ctx context.Context, id string) (*models.Launch, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errs.Validation("id", "launch id is required")
	}

	var resp itemResponse[genesisDTO]
	if err := c.get(ctx, "get genesis", "/api/geneses/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, errs.Malformed("get genesis", fmt.Errorf("missing data"))
	}
	l, err := resp.Data.toLaunch()
	if err != nil {
		return nil, errs.Malformed("get genesis", err)
	}
	return &l, nil
}

// ListVirtuals returns one page of a token category, ordered by market cap
func (c *Client) ListVirtuals(ctx context.Context, q VirtualQuery) (*models.Page[models.VirtualToken], error) {
	if q.Category == "" {
		q.Category = CategorySentient
	}
	params := paginationParams(q.Page, q.PageSize)
	params.Set("filters[status]", q.Category.UpstreamStatus())
	params.Set("sort[0]", "mcapInVirtual:desc")

	op := "list " + string(q.Category) + " tokens"
	var resp listResponse[virtualDTO]
	if err := c.get(ctx, op, "/api/virtuals", params, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil || resp.Meta.Pagination == nil {
		return nil, errs.Malformed(op, fmt.Errorf("missing data or pagination"))
	}

	tokens := make([]models.VirtualToken, 0, len(resp.Data))
	for _, v := range resp.Data {
		tokens = append(tokens, v.toToken())
	}
	return &models.Page[models.VirtualToken]{Items: tokens, Pagination: *resp.Meta.Pagination}, nil
}

// GetVirtual returns a single token including its tokenomics
func (c *Client) GetVirtual(ctx context.Context, id int64) (*models.VirtualToken, error) {
	if id <= 0 {
		return nil, errs.Validation("virtualId", "virtual id must be positive")
	}

	var resp itemResponse[virtualDTO]
	path := "/api/virtuals/" + strconv.FormatInt(id, 10)
	if err := c.get(ctx, "get virtual", path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, errs.Malformed("get virtual", fmt.Errorf("missing data"))
	}
	t := resp.Data.toToken()
	return &t, nil
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &errs.NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	c.requests.Add(1)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("upstream request failed", zap.String("op", op), zap.String("url", u), zap.Error(err))
		return &errs.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &errs.NetworkError{Op: op, Err: err}
	}
	c.logger.Debug("upstream request",
		zap.String("op", op),
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errs.FromResponse(op, resp.StatusCode, resp.Header, body, c.now())
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errs.Malformed(op, err)
	}
	return nil
}

func paginationParams(page, pageSize int) url.Values {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	params := url.Values{}
	params.Set("pagination[page]", strconv.Itoa(page))
	params.Set("pagination[pageSize]", strconv.Itoa(pageSize))
	return params
}
