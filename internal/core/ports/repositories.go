package ports

import (
	"context"

	"bank-card-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CardRepository defines persistence operations for cards.
// Methods accepting pgx.Tx run inside transaction blocks; ForUpdate variants
// take a row lock and MUST be called within a transaction.
type CardRepository interface {
	Create(ctx context.Context, card *domain.Card) error
	GetByNumber(ctx context.Context, number string) (*domain.Card, error)
	GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, number string) (*domain.Card, error)
	ListByOwner(ctx context.Context, ownerEmail string) ([]domain.Card, error)
	ListAll(ctx context.Context) ([]domain.Card, error)
	// UpdateBalances persists the balances of both cards of a transfer
	// within the caller's transaction, all-or-nothing.
	UpdateBalances(ctx context.Context, tx pgx.Tx, from, to *domain.Card) error
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.CardStatus) error
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// AuditRepository defines persistence for audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
