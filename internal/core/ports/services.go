package ports

import (
	"context"
	"time"

	"bank-card-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Caller is the resolved, authenticated principal on whose behalf an
// operation is requested. Admin is an explicit capability flag; the engine
// never consults ambient state to determine privilege.
type Caller struct {
	Email string
	Admin bool
}

// ListScope selects which cards a listing returns.
type ListScope int

const (
	// ScopeOwn returns cards owned by the caller.
	ScopeOwn ListScope = iota
	// ScopeAll returns every card; requires the caller's Admin flag.
	ScopeAll
)

// CardService defines the card and balance transfer business logic.
type CardService interface {
	// Transfer moves amount from the caller's card to another card,
	// atomically. Validation order: same-card, non-positive amount,
	// existence, ownership, status eligibility, sufficient funds.
	Transfer(ctx context.Context, caller Caller, fromNumber, toNumber string, amount decimal.Decimal) error
	// CreateCard issues a new ACTIVE card for the caller with a generated
	// unique number.
	CreateCard(ctx context.Context, caller Caller, req CreateCardRequest) (*domain.Card, error)
	// DeleteCard permanently removes a card owned by the caller.
	DeleteCard(ctx context.Context, caller Caller, number string) error
	// ChangeStatus overwrites a card's status. Requires the Admin flag.
	ChangeStatus(ctx context.Context, caller Caller, number string, status domain.CardStatus) (*domain.Card, error)
	// ListCards returns the caller's cards (ScopeOwn) or all cards
	// (ScopeAll, Admin only).
	ListCards(ctx context.Context, caller Caller, scope ListScope) ([]domain.Card, error)
}

// CreateCardRequest holds validated input for card creation.
type CreateCardRequest struct {
	Expiration     time.Time
	InitialBalance decimal.Decimal
}

// AuthService defines authentication business logic.
type AuthService interface {
	SignUp(ctx context.Context, req SignUpRequest) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (string, time.Time, error) // token, expiry, error
	// GetProfile returns the account behind an authenticated principal.
	GetProfile(ctx context.Context, email string) (*domain.User, error)
}

// SignUpRequest holds input for user registration.
type SignUpRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      domain.Role
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(user *domain.User) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
	Role   domain.Role
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// CardCipher encrypts card numbers at rest and derives the deterministic
// lookup hash used to index them.
type CardCipher interface {
	EncryptNumber(plaintext string) (string, error)
	DecryptNumber(ciphertext string) (string, error)
	LookupHash(plaintext string) string
}

// AuditService records security-relevant actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
