package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/models"
	"github.com/rxtech-lab/hashnipe/internal/utils"
	"gorm.io/gorm"
)

type TradeHistoryService interface {
	RecordTrade(ctx context.Context, record *models.TradeRecord) error
	ListTrades(walletAddress string, limit int) ([]models.TradeRecord, error)
}

type tradeHistoryService struct {
	db *gorm.DB
}

func NewTradeHistoryService(db *gorm.DB) TradeHistoryService {
	return &tradeHistoryService{db: db}
}

// RecordTrade stores a submitted trade
func (s *tradeHistoryService) RecordTrade(ctx context.Context, record *models.TradeRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	return s.db.WithContext(ctx).Create(record).Error
}

// ListTrades returns the most recent trades of a wallet. A non-positive limit returns all.
func (s *tradeHistoryService) ListTrades(walletAddress string, limit int) ([]models.TradeRecord, error) {
	wallet, err := utils.NormalizeAddress(walletAddress)
	if err != nil {
		return nil, errs.Validation("walletAddress", "Invalid wallet address")
	}
	query := s.db.Where("user_wallet_address = ?", wallet).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []models.TradeRecord
	err = query.Find(&records).Error
	return records, err
}
