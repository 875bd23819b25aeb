package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet is an account holding a non-negative balance.
// Only the balance changes after creation.
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// Apply returns the balance that results from adding amount, rounded to Scale.
func (w *Wallet) Apply(amount decimal.Decimal) decimal.Decimal {
	return Round4(w.Balance.Add(amount))
}
