package models

type TradeDirection string

const (
	TradeDirectionBuy  TradeDirection = "buy"
	TradeDirectionSell TradeDirection = "sell"
)

// Valid reports whether d is buy or sell
func (d TradeDirection) Valid() bool {
	return d == TradeDirectionBuy || d == TradeDirectionSell
}

// Quote is an estimated swap result. It is never persisted and is discarded when the
// amount it was computed for changes.
type Quote struct {
	FromToken string `json:"from_token"`
	ToToken   string `json:"to_token"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
	Decimals  int    `json:"decimals"`
}
