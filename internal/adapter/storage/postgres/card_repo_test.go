package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"bank-card-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCipher makes ciphertexts and hashes predictable in expectations.
type fakeCipher struct{}

func (fakeCipher) EncryptNumber(plaintext string) (string, error) {
	return "enc:" + plaintext, nil
}

func (fakeCipher) DecryptNumber(ciphertext string) (string, error) {
	return strings.TrimPrefix(ciphertext, "enc:"), nil
}

func (fakeCipher) LookupHash(plaintext string) string {
	return "hash:" + plaintext
}

func newTestCard(owner string) *domain.Card {
	return &domain.Card{
		ID:         uuid.New(),
		Number:     "4929121234567897",
		OwnerEmail: owner,
		Expiration: time.Now().UTC().AddDate(3, 0, 0).Truncate(time.Microsecond),
		Status:     domain.CardStatusActive,
		Balance:    decimal.NewFromInt(1000),
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func cardColumnNames() []string {
	return []string{"id", "number_enc", "owner_email", "expiration_date", "status", "balance", "created_at", "updated_at"}
}

func cardRow(c *domain.Card) *pgxmock.Rows {
	return pgxmock.NewRows(cardColumnNames()).AddRow(
		c.ID, "enc:"+c.Number, c.OwnerEmail, c.Expiration,
		c.Status, c.Balance.String(), c.CreatedAt, c.UpdatedAt,
	)
}

func TestCardRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCardRepo(mock, fakeCipher{})
	c := newTestCard("alice@example.com")

	mock.ExpectExec("INSERT INTO cards").
		WithArgs(c.ID, "enc:"+c.Number, "hash:"+c.Number, c.OwnerEmail,
			c.Expiration, c.Status, c.Balance.String(), c.CreatedAt, c.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), c)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepo_GetByNumber(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCardRepo(mock, fakeCipher{})
	c := newTestCard("alice@example.com")

	mock.ExpectQuery("SELECT .+ FROM cards WHERE number_hash").
		WithArgs("hash:" + c.Number).
		WillReturnRows(cardRow(c))

	result, err := repo.GetByNumber(context.Background(), c.Number)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, c.Number, result.Number, "number decrypted on read")
	assert.True(t, c.Balance.Equal(result.Balance))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepo_GetByNumber_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCardRepo(mock, fakeCipher{})

	mock.ExpectQuery("SELECT .+ FROM cards WHERE number_hash").
		WithArgs("hash:4929120000000000").
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetByNumber(context.Background(), "4929120000000000")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepo_GetByNumberForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCardRepo(mock, fakeCipher{})
	c := newTestCard("alice@example.com")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM cards WHERE number_hash .+ FOR UPDATE").
		WithArgs("hash:" + c.Number).
		WillReturnRows(cardRow(c))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByNumberForUpdate(context.Background(), tx, c.Number)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, c.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepo_ListByOwner(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCardRepo(mock, fakeCipher{})
	c1 := newTestCard("alice@example.com")
	c2 := newTestCard("alice@example.com")
	c2.Number = "4929129999990011"

	rows := pgxmock.NewRows(cardColumnNames()).
		AddRow(c1.ID, "enc:"+c1.Number, c1.OwnerEmail, c1.Expiration, c1.Status, c1.Balance.String(), c1.CreatedAt, c1.UpdatedAt).
		AddRow(c2.ID, "enc:"+c2.Number, c2.OwnerEmail, c2.Expiration, c2.Status, c2.Balance.String(), c2.CreatedAt, c2.UpdatedAt)

	mock.ExpectQuery("SELECT .+ FROM cards WHERE owner_email").
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	cards, err := repo.ListByOwner(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, c1.Number, cards[0].Number)
	assert.Equal(t, c2.Number, cards[1].Number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepo_UpdateBalances(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCardRepo(mock, fakeCipher{})
	from := newTestCard("alice@example.com")
	to := newTestCard("bob@example.com")
	from.Balance = decimal.NewFromInt(400)
	to.Balance = decimal.NewFromInt(300)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE cards SET balance").
		WithArgs("400", from.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE cards SET balance").
		WithArgs("300", to.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalances(context.Background(), tx, from, to)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepo_UpdateBalances_SecondRowMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCardRepo(mock, fakeCipher{})
	from := newTestCard("alice@example.com")
	to := newTestCard("bob@example.com")

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE cards SET balance").
		WithArgs(from.Balance.String(), from.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE cards SET balance").
		WithArgs(to.Balance.String(), to.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalances(context.Background(), tx, from, to)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "card not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCardRepo(mock, fakeCipher{})
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE cards SET status").
		WithArgs(domain.CardStatusBlocked, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateStatus(context.Background(), tx, id, domain.CardStatusBlocked)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepo_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCardRepo(mock, fakeCipher{})
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM cards").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Delete(context.Background(), tx, id)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
