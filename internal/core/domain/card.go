package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CardStatus is the administrative flag gating card operations.
type CardStatus string

const (
	CardStatusActive  CardStatus = "ACTIVE"
	CardStatusBlocked CardStatus = "BLOCKED"
	CardStatusExpired CardStatus = "EXPIRED"
)

// Valid reports whether s is a known card status.
func (s CardStatus) Valid() bool {
	switch s {
	case CardStatusActive, CardStatusBlocked, CardStatusExpired:
		return true
	}
	return false
}

// Card is a balance-holding account record identified by a unique number
// and owned by exactly one user. Balances are exact decimals; floats never
// touch the money path.
type Card struct {
	ID         uuid.UUID       `json:"id"`
	Number     string          `json:"number"` // Plaintext in memory only; stored encrypted
	OwnerEmail string          `json:"owner_email"`
	Expiration time.Time       `json:"expiration"` // Informational; status is authoritative
	Status     CardStatus      `json:"status"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// IsTransferEligible reports whether the card's status allows it to take
// part in a transfer. Only ACTIVE cards are eligible; the expiration date
// is not consulted.
func (c *Card) IsTransferEligible() bool {
	return c.Status == CardStatusActive
}

// IsOwnedBy reports whether the given caller identity owns the card.
func (c *Card) IsOwnedBy(email string) bool {
	return c.OwnerEmail == email
}

// MaskedNumber returns the card number with all but the last four digits
// replaced, for display and logging.
func (c *Card) MaskedNumber() string {
	if len(c.Number) < 4 {
		return "****"
	}
	return "**** **** **** " + c.Number[len(c.Number)-4:]
}
