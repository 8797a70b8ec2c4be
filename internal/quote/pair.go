package quote

import (
	"fmt"

	"github.com/rxtech-lab/hashnipe/internal/models"
	"github.com/rxtech-lab/hashnipe/internal/utils"
)

// DefaultAgentDecimals is the decimals of Virtual Protocol agent tokens
const DefaultAgentDecimals = 18

// Pair is the two sides of a trading form. Buying spends VIRTUAL for the agent token,
// selling does the opposite.
type Pair struct {
	Direction       models.TradeDirection
	VirtualToken    string
	VirtualDecimals int
	AgentToken      string
	AgentSymbol     string
	AgentDecimals   int
}

// From returns the token spent and its decimals
func (p Pair) From() (string, int) {
	if p.Direction == models.TradeDirectionSell {
		return p.AgentToken, p.AgentDecimals
	}
	return p.VirtualToken, p.VirtualDecimals
}

// To returns the token received and its decimals
func (p Pair) To() (string, int) {
	if p.Direction == models.TradeDirectionSell {
		return p.VirtualToken, p.VirtualDecimals
	}
	return p.AgentToken, p.AgentDecimals
}

// Validate checks the direction and both token addresses
func (p Pair) Validate() error {
	if !p.Direction.Valid() {
		return fmt.Errorf("invalid trade direction %q", p.Direction)
	}
	if !utils.IsValidEthereumAddress(p.VirtualToken) {
		return fmt.Errorf("invalid VIRTUAL token address %q", p.VirtualToken)
	}
	if !utils.IsValidEthereumAddress(p.AgentToken) {
		return fmt.Errorf("invalid token address %q", p.AgentToken)
	}
	return nil
}

// Market is the VIRTUAL side shared by every pair
type Market struct {
	VirtualToken    string
	VirtualDecimals int
}

// Pair builds the pair trading agentToken against VIRTUAL
func (m Market) Pair(direction models.TradeDirection, agentToken string) Pair {
	return Pair{
		Direction:       direction,
		VirtualToken:    m.VirtualToken,
		VirtualDecimals: m.VirtualDecimals,
		AgentToken:      agentToken,
		AgentDecimals:   DefaultAgentDecimals,
	}
}
