package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSON is a custom type for JSON fields
type JSON map[string]interface{}

// Implement the driver.Valuer interface for JSON type
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Implement the sql.Scanner interface for JSON type
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}

	if len(bytes) == 0 {
		*j = nil
		return nil
	}

	return json.Unmarshal(bytes, j)
}

type OrderStatus string

const (
	OrderStatusRegistered OrderStatus = "registered"
	OrderStatusSucceeded  OrderStatus = "succeeded"
	OrderStatusFailed     OrderStatus = "failed"
)

// TokenomicsCache stores the tokenomics of a virtual so repeated reads skip the upstream API
type TokenomicsCache struct {
	VirtualID  int64       `gorm:"primaryKey;autoIncrement:false" json:"virtual_id"`
	Symbol     string      `json:"symbol"`
	Tokenomics []Tokenomic `gorm:"serializer:json" json:"tokenomics"`
	FetchedAt  time.Time   `gorm:"index" json:"fetched_at"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// SnipeOrder is a launch-time buy registered with the backend
type SnipeOrder struct {
	ID            string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID        *string     `gorm:"index;type:varchar(255)" json:"user_id,omitempty"`
	GenesisID     string      `gorm:"not null;index" json:"genesis_id"`
	Name          string      `gorm:"not null" json:"name"`
	WalletAddress string      `gorm:"not null;index" json:"wallet_address"`
	Token         string      `gorm:"not null" json:"token"`
	Amount        string      `gorm:"not null" json:"amount"`
	FinalAmount   string      `json:"final_amount"`
	MarketCap     string      `json:"market_cap"`
	LaunchTime    *time.Time  `json:"launch_time,omitempty"`
	Status        OrderStatus `gorm:"default:registered" json:"status"`
	Response      JSON        `gorm:"type:text" json:"response,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TradeRecord represents a buy or sell submitted to the backend swap endpoint
type TradeRecord struct {
	ID                string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID            *string        `gorm:"index;type:varchar(255)" json:"user_id,omitempty"`
	Direction         TradeDirection `gorm:"not null" json:"direction"`
	ChainID           string         `gorm:"not null" json:"chain_id"`
	UserWalletAddress string         `gorm:"not null;index" json:"user_wallet_address"`
	FromTokenAddress  string         `gorm:"not null" json:"from_token_address"`
	ToTokenAddress    string         `gorm:"not null" json:"to_token_address"`
	Amount            string         `gorm:"not null" json:"amount"`
	AmountInBN        string         `gorm:"not null" json:"amount_in_bn"`
	Slippage          string         `gorm:"not null" json:"slippage"`
	Status            OrderStatus    `gorm:"not null" json:"status"`
	Message           string         `json:"message"`
	Response          JSON           `gorm:"type:text" json:"response,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}
