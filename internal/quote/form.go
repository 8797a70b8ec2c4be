package quote

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Form is one buy or sell box: the entered amount, its validation against the spendable
// balance and the quote throttle fed by every keystroke.
type Form struct {
	pair     Pair
	throttle *Throttle

	mu         sync.Mutex
	amount     string
	balance    decimal.Decimal
	validation error
}

func NewForm(pair Pair, throttle *Throttle) *Form {
	return &Form{pair: pair, throttle: throttle, balance: decimal.Zero}
}

func (f *Form) Pair() Pair {
	return f.pair
}

// SetAmount validates the amount synchronously and restarts the quote debounce. The returned
// error is the validation failure, if any; it does not stop the quote.
func (f *Form) SetAmount(amount string) error {
	f.mu.Lock()
	f.amount = amount
	_, f.validation = ValidateAmount(amount, f.balance)
	err := f.validation
	f.mu.Unlock()

	f.throttle.Input(amount)
	return err
}

// SetBalance updates the spendable balance and re-validates the current amount
func (f *Form) SetBalance(balance decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balance = balance
	if f.amount != "" {
		_, f.validation = ValidateAmount(f.amount, balance)
	}
}

func (f *Form) Amount() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.amount
}

func (f *Form) Balance() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance
}

// Validation returns the current validation failure, or nil
func (f *Form) Validation() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validation
}

// CanSubmit reports whether the submit control is enabled
func (f *Form) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.amount != "" && f.validation == nil
}

func (f *Form) Quote() Snapshot {
	return f.throttle.Snapshot()
}

// Clear empties the amount and returns the throttle to idle, as after a submitted trade
func (f *Form) Clear() {
	f.mu.Lock()
	f.amount = ""
	f.validation = nil
	f.mu.Unlock()
	f.throttle.Reset()
}

func (f *Form) Close() {
	f.throttle.Close()
}
