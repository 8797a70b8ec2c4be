package backend

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rxtech-lab/hashnipe/internal/models"
)

// SwapRequest is shared by the quote and swap endpoints
type SwapRequest struct {
	ChainID           int64   `json:"chainId"`
	FromTokenAddress  string  `json:"fromTokenAddress"`
	ToTokenAddress    string  `json:"toTokenAddress"`
	AmountInBN        string  `json:"amountInBN"`
	Slippage          float64 `json:"slippage"`
	UserWalletAddress string  `json:"userWalletAddress"`
}

// SwapQuote is the estimated output in the destination token's smallest unit
type SwapQuote struct {
	ToTokenAmount   string
	ToTokenDecimals int
}

// SwapResult is the backend's answer to a submitted swap
type SwapResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// DataJSON returns the response data as an object, wrapping scalars and arrays under "value"
func (r SwapResult) DataJSON() models.JSON {
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return nil
	}
	var obj models.JSON
	if err := json.Unmarshal(r.Data, &obj); err == nil {
		return obj
	}
	var v interface{}
	if err := json.Unmarshal(r.Data, &v); err != nil {
		return nil
	}
	return models.JSON{"value": v}
}

// SnipeRequest registers a launch-time buy
type SnipeRequest struct {
	GenesisID     string     `json:"genesisId" validate:"required"`
	Name          string     `json:"name" validate:"required"`
	WalletAddress string     `json:"walletAddress" validate:"required,eth_addr"`
	Token         string     `json:"token" validate:"required"`
	Amount        string     `json:"amount" validate:"required"`
	LaunchTime    *time.Time `json:"launchTime,omitempty"`
	MarketCap     string     `json:"marketCap,omitempty"`
}

// SnipeResult is the deposit the backend accepted for a snipe
type SnipeResult struct {
	FinalAmount string
	LaunchTime  *time.Time
	Raw         models.JSON
}

// Balance of one token for one wallet, already formatted in human units
type Balance struct {
	TokenAddress  string `json:"token_address"`
	WalletAddress string `json:"wallet_address"`
	Formatted     string `json:"formatted_balance"`
}

// scalar decodes a JSON string or number into its textual form
type scalar string

func (s *scalar) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "null":
		*s = ""
	case strings.HasPrefix(raw, `"`):
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = scalar(strings.TrimSpace(v))
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", raw)
		}
		*s = scalar(n.String())
	}
	return nil
}

type quoteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *struct {
		ToTokenAmount scalar `json:"toTokenAmount"`
		ToToken       struct {
			Decimal scalar `json:"decimal"`
		} `json:"toToken"`
	} `json:"data"`
}

type snipeResponse struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Data    *struct {
		Deposit struct {
			FinalAmount scalar `json:"finalAmount"`
		} `json:"deposit"`
		Agent struct {
			LaunchTime *time.Time `json:"launchTime"`
		} `json:"agent"`
	} `json:"data"`
}

type balanceResponse struct {
	Data *struct {
		FormattedBalance scalar `json:"formattedBalance"`
	} `json:"data"`
}
