package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rxtech-lab/hashnipe/internal/backend"
	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"github.com/rxtech-lab/hashnipe/internal/utils"
	"gorm.io/gorm"
)

// SnipeBackend registers snipe deposits on chain
type SnipeBackend interface {
	Snipe(ctx context.Context, req backend.SnipeRequest) (*backend.SnipeResult, error)
}

type SnipeService interface {
	Register(ctx context.Context, req backend.SnipeRequest) (*models.SnipeOrder, error)
	GetSnipe(id string) (*models.SnipeOrder, error)
	ListSnipes(walletAddress string) ([]models.SnipeOrder, error)
}

type snipeService struct {
	db       *gorm.DB
	backend  SnipeBackend
	validate *validator.Validate
}

func NewSnipeService(db *gorm.DB, b SnipeBackend) SnipeService {
	return &snipeService{db: db, backend: b, validate: newValidator()}
}

// Register validates the request, submits it to the backend and stores the order. A rejected
// submission is stored as failed and its error returned.
func (s *snipeService) Register(ctx context.Context, req backend.SnipeRequest) (*models.SnipeOrder, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	amount, err := utils.ParseAmount(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, errs.Validation("amount", "Amount must be greater than 0")
	}
	wallet, err := utils.NormalizeAddress(req.WalletAddress)
	if err != nil {
		return nil, errs.Validation("walletAddress", "Invalid wallet address")
	}
	req.WalletAddress = wallet
	req.Amount = amount.String()

	order := &models.SnipeOrder{
		ID:            uuid.New().String(),
		GenesisID:     req.GenesisID,
		Name:          req.Name,
		WalletAddress: wallet,
		Token:         req.Token,
		Amount:        req.Amount,
		MarketCap:     req.MarketCap,
		LaunchTime:    req.LaunchTime,
		Status:        models.OrderStatusRegistered,
	}
	if user := utils.GetAuthenticatedUser(ctx); user != nil && user.Sub != "" {
		order.UserID = &user.Sub
	}

	result, snipeErr := s.backend.Snipe(ctx, req)
	if snipeErr != nil {
		order.Status = models.OrderStatusFailed
		order.Response = models.JSON{"error": errs.UserMessage(snipeErr)}
	} else {
		order.FinalAmount = result.FinalAmount
		if result.LaunchTime != nil {
			order.LaunchTime = result.LaunchTime
		}
		order.Response = result.Raw
	}

	if err := s.db.Create(order).Error; err != nil {
		return nil, fmt.Errorf("failed to store snipe order: %w", err)
	}
	if snipeErr != nil {
		return order, snipeErr
	}
	return order, nil
}

// GetSnipe returns a snipe order by its ID
func (s *snipeService) GetSnipe(id string) (*models.SnipeOrder, error) {
	var order models.SnipeOrder
	if err := s.db.Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListSnipes returns the orders of a wallet, newest first
func (s *snipeService) ListSnipes(walletAddress string) ([]models.SnipeOrder, error) {
	wallet, err := utils.NormalizeAddress(walletAddress)
	if err != nil {
		return nil, errs.Validation("walletAddress", "Invalid wallet address")
	}
	var orders []models.SnipeOrder
	err = s.db.Where("wallet_address = ?", wallet).Order("created_at desc").Find(&orders).Error
	return orders, err
}

// newValidator reports fields by their json names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return errs.Validation("", err.Error())
	}
	fe := ve[0]
	switch fe.Tag() {
	case "required":
		return errs.Validation(fe.Field(), fmt.Sprintf("%s is required", fe.Field()))
	case "eth_addr":
		return errs.Validation(fe.Field(), fmt.Sprintf("%s must be a valid Ethereum address", fe.Field()))
	}
	return errs.Validation(fe.Field(), fmt.Sprintf("%s is invalid", fe.Field()))
}
