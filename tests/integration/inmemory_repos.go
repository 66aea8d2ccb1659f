package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"bank-card-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// The in-memory store mimics the PostgreSQL adapter closely enough for
// end-to-end tests: the transactor hands out transactions that hold a
// store-wide lock until Commit or Rollback, so SELECT ... FOR UPDATE
// semantics (writers serialize, readers see committed state) carry over.

// --- In-Memory Card Repo ---

type inMemoryCardRepo struct {
	mu       sync.RWMutex
	cards    map[uuid.UUID]*domain.Card
	byNumber map[string]uuid.UUID
}

func newInMemoryCardRepo() *inMemoryCardRepo {
	return &inMemoryCardRepo{
		cards:    make(map[uuid.UUID]*domain.Card),
		byNumber: make(map[string]uuid.UUID),
	}
}

func (r *inMemoryCardRepo) Create(ctx context.Context, card *domain.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byNumber[card.Number]; exists {
		return fmt.Errorf("card number already exists")
	}
	cp := *card
	r.cards[card.ID] = &cp
	r.byNumber[card.Number] = card.ID
	return nil
}

func (r *inMemoryCardRepo) GetByNumber(ctx context.Context, number string) (*domain.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byNumber[number]
	if !ok {
		return nil, nil
	}
	cp := *r.cards[id]
	return &cp, nil
}

func (r *inMemoryCardRepo) GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, number string) (*domain.Card, error) {
	return r.GetByNumber(ctx, number)
}

func (r *inMemoryCardRepo) ListByOwner(ctx context.Context, ownerEmail string) ([]domain.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Card
	for _, c := range r.cards {
		if c.OwnerEmail == ownerEmail {
			out = append(out, *c)
		}
	}
	sortByCreation(out)
	return out, nil
}

func (r *inMemoryCardRepo) ListAll(ctx context.Context) ([]domain.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Card
	for _, c := range r.cards {
		out = append(out, *c)
	}
	sortByCreation(out)
	return out, nil
}

func (r *inMemoryCardRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, from, to *domain.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range []*domain.Card{from, to} {
		if _, ok := r.cards[c.ID]; !ok {
			return fmt.Errorf("card not found")
		}
	}
	r.cards[from.ID].Balance = from.Balance
	r.cards[to.ID].Balance = to.Balance
	return nil
}

func (r *inMemoryCardRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.CardStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok {
		return fmt.Errorf("card not found")
	}
	c.Status = status
	return nil
}

func (r *inMemoryCardRepo) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok {
		return fmt.Errorf("card not found")
	}
	delete(r.byNumber, c.Number)
	delete(r.cards, id)
	return nil
}

func sortByCreation(cards []domain.Card) {
	sort.Slice(cards, func(i, j int) bool {
		return cards[i].CreatedAt.Before(cards[j].CreatedAt)
	})
}

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return fmt.Errorf("email already exists")
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes transactions with a store-wide mutex,
// standing in for row locks. Rollback after Commit is a no-op, matching
// the usual defer-Rollback pattern.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &lockedTx{release: &t.mu}, nil
}

// lockedTx holds the transactor lock until finished.
type lockedTx struct {
	release *sync.Mutex
	once    sync.Once
}

func (t *lockedTx) finish() {
	t.once.Do(func() { t.release.Unlock() })
}

func (t *lockedTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *lockedTx) Commit(ctx context.Context) error          { t.finish(); return nil }
func (t *lockedTx) Rollback(ctx context.Context) error        { t.finish(); return nil }
func (t *lockedTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *lockedTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *lockedTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *lockedTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *lockedTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *lockedTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *lockedTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *lockedTx) Conn() *pgx.Conn { return nil }
