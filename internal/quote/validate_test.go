package quote

import (
	"testing"

	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAmount(t *testing.T) {
	balance := decimal.RequireFromString("10")

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"zero", "0", "Amount must be greater than 0"},
		{"negative", "-5", "Amount must be greater than 0"},
		{"not a number", "abc", "Please enter a valid amount"},
		{"empty", "", "Please enter a valid amount"},
		{"over balance", "10.000001", "Insufficient balance"},
		{"huge exponent", "1e999999999", "Please enter a valid amount"},
		{"tiny exponent", "1e-999999999", "Please enter a valid amount"},
		{"tiny", "0.0001", ""},
		{"whole balance", "10", ""},
		{"padded", " 2.5 ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := ValidateAmount(tt.input, balance)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.True(t, amount.IsPositive())
				return
			}
			var ve *errs.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantErr, ve.Message)
			assert.Equal(t, "amount", ve.Field)
		})
	}
}

func TestParseBalance(t *testing.T) {
	d, err := ParseBalance("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = ParseBalance("1234.5")
	require.NoError(t, err)
	assert.Equal(t, "1234.5", d.String())

	_, err = ParseBalance("n/a")
	assert.Error(t, err)
}

func TestMarketPair(t *testing.T) {
	m := Market{VirtualToken: testVirtual, VirtualDecimals: 18}
	p := m.Pair("sell", testAgent)
	require.NoError(t, p.Validate())

	from, _ := p.From()
	to, _ := p.To()
	assert.Equal(t, testAgent, from)
	assert.Equal(t, testVirtual, to)

	assert.Error(t, m.Pair("hold", testAgent).Validate())
	assert.Error(t, m.Pair("buy", "0x12").Validate())
}
