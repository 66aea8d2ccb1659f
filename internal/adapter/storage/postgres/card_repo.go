package postgres

import (
	"context"
	"errors"
	"fmt"

	"bank-card-service/internal/core/domain"
	"bank-card-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CardRepo implements ports.CardRepository. Card numbers are stored
// encrypted (number_enc) and looked up through a deterministic HMAC
// column (number_hash); plaintext never reaches the database.
//
// Balances travel as text on the wire and NUMERIC in the schema, so no
// float conversion can touch them.
type CardRepo struct {
	pool   Pool
	cipher ports.CardCipher
}

// NewCardRepo creates a new CardRepo.
func NewCardRepo(pool Pool, cipher ports.CardCipher) *CardRepo {
	return &CardRepo{pool: pool, cipher: cipher}
}

const cardColumns = `id, number_enc, owner_email, expiration_date, status, balance::text, created_at, updated_at`

// Create inserts a new card.
func (r *CardRepo) Create(ctx context.Context, c *domain.Card) error {
	numberEnc, err := r.cipher.EncryptNumber(c.Number)
	if err != nil {
		return fmt.Errorf("encrypt card number: %w", err)
	}

	query := `INSERT INTO cards (id, number_enc, number_hash, owner_email, expiration_date, status, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9)`

	_, err = r.pool.Exec(ctx, query,
		c.ID, numberEnc, r.cipher.LookupHash(c.Number), c.OwnerEmail,
		c.Expiration, c.Status, c.Balance.String(),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

// GetByNumber fetches a card by its number (non-locking read).
func (r *CardRepo) GetByNumber(ctx context.Context, number string) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE number_hash = $1`

	row := r.pool.QueryRow(ctx, query, r.cipher.LookupHash(number))
	card, err := r.scanCard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get card by number: %w", err)
	}
	return card, nil
}

// GetByNumberForUpdate fetches a card by number with pessimistic locking.
// This MUST be called within a transaction.
func (r *CardRepo) GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, number string) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE number_hash = $1 FOR UPDATE`

	row := tx.QueryRow(ctx, query, r.cipher.LookupHash(number))
	card, err := r.scanCard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get card for update: %w", err)
	}
	return card, nil
}

// ListByOwner fetches every card owned by the given email.
func (r *CardRepo) ListByOwner(ctx context.Context, ownerEmail string) ([]domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE owner_email = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("list cards by owner: %w", err)
	}
	defer rows.Close()

	return r.collectCards(rows)
}

// ListAll fetches every card in the system.
func (r *CardRepo) ListAll(ctx context.Context) ([]domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all cards: %w", err)
	}
	defer rows.Close()

	return r.collectCards(rows)
}

// UpdateBalances writes both sides of a transfer within the caller's
// transaction. Either both rows change or the transaction rolls back.
func (r *CardRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, from, to *domain.Card) error {
	query := `UPDATE cards SET balance = $1::numeric, updated_at = NOW() WHERE id = $2`

	for _, c := range []*domain.Card{from, to} {
		tag, err := tx.Exec(ctx, query, c.Balance.String(), c.ID)
		if err != nil {
			return fmt.Errorf("update card balance: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("card not found: %s", c.ID)
		}
	}
	return nil
}

// UpdateStatus overwrites a card's status within a transaction.
func (r *CardRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.CardStatus) error {
	query := `UPDATE cards SET status = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update card status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card not found: %s", id)
	}
	return nil
}

// Delete removes a card within a transaction.
func (r *CardRepo) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card not found: %s", id)
	}
	return nil
}

func (r *CardRepo) scanCard(row pgx.Row) (*domain.Card, error) {
	var (
		c         domain.Card
		numberEnc string
		balance   string
	)
	err := row.Scan(
		&c.ID, &numberEnc, &c.OwnerEmail, &c.Expiration,
		&c.Status, &balance, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Number, err = r.cipher.DecryptNumber(numberEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt card number: %w", err)
	}
	c.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	return &c, nil
}

func (r *CardRepo) collectCards(rows pgx.Rows) ([]domain.Card, error) {
	var cards []domain.Card
	for rows.Next() {
		card, err := r.scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}
