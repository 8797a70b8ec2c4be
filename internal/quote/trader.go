package quote

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rxtech-lab/hashnipe/internal/auth"
	"github.com/rxtech-lab/hashnipe/internal/backend"
	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/logging"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"github.com/rxtech-lab/hashnipe/internal/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultSlippage is the slippage percentage sent with every swap
const DefaultSlippage = 1.0

// Backend is the subset of the backend client used for trading
type Backend interface {
	SwapQuote(ctx context.Context, req backend.SwapRequest) (*backend.SwapQuote, error)
	Swap(ctx context.Context, req backend.SwapRequest) (*backend.SwapResult, error)
	GetBalance(ctx context.Context, tokenAddress, walletAddress string) (*backend.Balance, error)
}

// TradeRecorder persists submitted trades
type TradeRecorder interface {
	RecordTrade(ctx context.Context, record *models.TradeRecord) error
}

type Settings struct {
	ChainID  int64
	Slippage float64
}

// Receipt is the outcome of a submitted trade, shown to the user as a transient notification
type Receipt struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Balance string              `json:"balance,omitempty"`
	Record  *models.TradeRecord `json:"record"`
}

type Trader struct {
	backend  Backend
	wallet   auth.WalletCollaborator
	recorder TradeRecorder
	settings Settings
	logger   *zap.Logger
}

type TraderOption func(*Trader)

func WithRecorder(recorder TradeRecorder) TraderOption {
	return func(t *Trader) {
		t.recorder = recorder
	}
}

func WithTraderLogger(logger *zap.Logger) TraderOption {
	return func(t *Trader) {
		t.logger = logging.OrNop(logger)
	}
}

func NewTrader(b Backend, wallet auth.WalletCollaborator, settings Settings, opts ...TraderOption) *Trader {
	if settings.Slippage <= 0 {
		settings.Slippage = DefaultSlippage
	}
	t := &Trader{
		backend:  b,
		wallet:   wallet,
		settings: settings,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Trader) request(ctx context.Context, pair Pair, amount decimal.Decimal) (backend.SwapRequest, error) {
	if err := pair.Validate(); err != nil {
		return backend.SwapRequest{}, errs.Validation("token", err.Error())
	}
	wallet, err := t.wallet.ConnectedAddress(ctx)
	if err != nil {
		return backend.SwapRequest{}, err
	}
	from, decimals := pair.From()
	to, _ := pair.To()
	amountInBN, err := utils.ToSmallestUnit(amount, decimals)
	if err != nil {
		return backend.SwapRequest{}, errs.Validation("amount", err.Error())
	}
	if amountInBN.Sign() <= 0 {
		return backend.SwapRequest{}, errs.Validation("amount", "Amount must be greater than 0")
	}
	return backend.SwapRequest{
		ChainID:           t.settings.ChainID,
		FromTokenAddress:  from,
		ToTokenAddress:    to,
		AmountInBN:        amountInBN.String(),
		Slippage:          t.settings.Slippage,
		UserWalletAddress: wallet,
	}, nil
}

// Quote estimates the output of swapping amount, in human units of the destination token
func (t *Trader) Quote(ctx context.Context, pair Pair, amount decimal.Decimal) (*models.Quote, error) {
	if !amount.IsPositive() {
		return nil, errs.Validation("amount", "Amount must be greater than 0")
	}
	req, err := t.request(ctx, pair, amount)
	if err != nil {
		return nil, err
	}
	resp, err := t.backend.SwapQuote(ctx, req)
	if err != nil {
		return nil, err
	}
	out, err := utils.FromSmallestUnit(resp.ToTokenAmount, resp.ToTokenDecimals)
	if err != nil {
		return nil, errs.Malformed("swap quote", err)
	}
	return &models.Quote{
		FromToken: req.FromTokenAddress,
		ToToken:   req.ToTokenAddress,
		AmountIn:  amount.String(),
		AmountOut: utils.FormatAmount(out),
		Decimals:  resp.ToTokenDecimals,
	}, nil
}

// QuoteFunc binds Quote to a pair for use by a Throttle
func (t *Trader) QuoteFunc(pair Pair) QuoteFunc {
	return func(ctx context.Context, amount decimal.Decimal) (*models.Quote, error) {
		return t.Quote(ctx, pair, amount)
	}
}

// Balance returns the connected wallet's balance of tokenAddress
func (t *Trader) Balance(ctx context.Context, tokenAddress string) (decimal.Decimal, error) {
	wallet, err := t.wallet.ConnectedAddress(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	b, err := t.backend.GetBalance(ctx, tokenAddress, wallet)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := ParseBalance(b.Formatted)
	if err != nil {
		return decimal.Zero, errs.Malformed("get balance", err)
	}
	return d, nil
}

// SpendableBalance returns the balance that limits the form: VIRTUAL when buying and the
// agent token when selling
func (t *Trader) SpendableBalance(ctx context.Context, pair Pair) (decimal.Decimal, error) {
	from, _ := pair.From()
	return t.Balance(ctx, from)
}

// Submit validates the amount against balance, submits the swap and records the outcome.
// On success the spendable balance is refreshed. A failed swap returns both the receipt
// and the error.
func (t *Trader) Submit(ctx context.Context, pair Pair, amount string, balance decimal.Decimal) (*Receipt, error) {
	value, err := ValidateAmount(amount, balance)
	if err != nil {
		return nil, err
	}
	req, err := t.request(ctx, pair, value)
	if err != nil {
		return nil, err
	}

	result, swapErr := t.backend.Swap(ctx, req)

	record := &models.TradeRecord{
		ID:                uuid.NewString(),
		Direction:         pair.Direction,
		ChainID:           strconv.FormatInt(req.ChainID, 10),
		UserWalletAddress: req.UserWalletAddress,
		FromTokenAddress:  req.FromTokenAddress,
		ToTokenAddress:    req.ToTokenAddress,
		Amount:            value.String(),
		AmountInBN:        req.AmountInBN,
		Slippage:          strconv.FormatFloat(req.Slippage, 'f', -1, 64),
		Status:            models.OrderStatusSucceeded,
	}
	if user := utils.GetAuthenticatedUser(ctx); user != nil && user.Sub != "" {
		record.UserID = &user.Sub
	}
	if result != nil {
		record.Message = result.Message
		record.Response = result.DataJSON()
	}
	if swapErr != nil {
		record.Status = models.OrderStatusFailed
		record.Message = errs.UserMessage(swapErr)
	}
	if record.Message == "" {
		record.Message = "Swap successful"
	}

	if t.recorder != nil {
		if err := t.recorder.RecordTrade(ctx, record); err != nil {
			t.logger.Warn("failed to record trade", zap.String("id", record.ID), zap.Error(err))
		}
	}

	receipt := &Receipt{
		Success: swapErr == nil,
		Message: record.Message,
		Record:  record,
	}
	if swapErr != nil {
		return receipt, fmt.Errorf("failed to submit %s: %w", pair.Direction, swapErr)
	}

	if b, err := t.Balance(ctx, req.FromTokenAddress); err != nil {
		t.logger.Warn("failed to refresh balance", zap.Error(err))
	} else {
		receipt.Balance = utils.FormatAmount(b)
	}
	return receipt, nil
}
