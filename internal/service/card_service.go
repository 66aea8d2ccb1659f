package service

import (
	"context"
	"fmt"
	"time"

	"bank-card-service/internal/core/domain"
	"bank-card-service/internal/core/ports"
	"bank-card-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// maxNumberAttempts bounds retries when a generated card number collides
// with an existing one.
const maxNumberAttempts = 5

// CardServiceImpl implements ports.CardService.
type CardServiceImpl struct {
	cardRepo   ports.CardRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewCardService creates a new CardServiceImpl.
func NewCardService(cardRepo ports.CardRepository, transactor ports.DBTransactor, log zerolog.Logger) *CardServiceImpl {
	return &CardServiceImpl{
		cardRepo:   cardRepo,
		transactor: transactor,
		log:        log,
	}
}

// Transfer moves amount between two cards with pessimistic locking.
// Both rows are locked in ascending card-number order regardless of
// transfer direction, so opposing transfers on the same pair cannot
// deadlock. All validation runs against the locked rows.
func (s *CardServiceImpl) Transfer(ctx context.Context, caller ports.Caller, fromNumber, toNumber string, amount decimal.Decimal) error {
	if fromNumber == toNumber {
		return apperror.ErrInvalidRequest("cannot transfer from and to the same card")
	}
	if amount.Sign() <= 0 {
		return apperror.ErrInvalidRequest("transfer amount must be positive")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.ErrStoreUnavailable(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	from, to, err := s.lockPair(ctx, dbTx, fromNumber, toNumber)
	if err != nil {
		return err
	}

	if !from.IsOwnedBy(caller.Email) {
		return apperror.ErrForbidden("you are not the owner of the sender's card")
	}
	if !from.IsTransferEligible() {
		return apperror.ErrStatusViolation(from.MaskedNumber(), string(from.Status))
	}
	if !to.IsTransferEligible() {
		return apperror.ErrStatusViolation(to.MaskedNumber(), string(to.Status))
	}
	if from.Balance.LessThan(amount) {
		return apperror.ErrInsufficientFunds(from.MaskedNumber())
	}

	from.Balance = from.Balance.Sub(amount)
	to.Balance = to.Balance.Add(amount)

	if err := s.cardRepo.UpdateBalances(ctx, dbTx, from, to); err != nil {
		return apperror.ErrStoreUnavailable(fmt.Errorf("update balances: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.ErrStoreUnavailable(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("from", from.MaskedNumber()).
		Str("to", to.MaskedNumber()).
		Str("amount", amount.String()).
		Msg("transfer completed")

	return nil
}

// lockPair locks both cards of a transfer in ascending card-number order
// and returns them as (from, to). A missing card is reported by its number.
func (s *CardServiceImpl) lockPair(ctx context.Context, tx pgx.Tx, fromNumber, toNumber string) (*domain.Card, *domain.Card, error) {
	first, second := fromNumber, toNumber
	if second < first {
		first, second = second, first
	}

	a, err := s.cardRepo.GetByNumberForUpdate(ctx, tx, first)
	if err != nil {
		return nil, nil, apperror.ErrStoreUnavailable(fmt.Errorf("lock card: %w", err))
	}
	if a == nil {
		return nil, nil, apperror.ErrCardNotFound(first)
	}

	b, err := s.cardRepo.GetByNumberForUpdate(ctx, tx, second)
	if err != nil {
		return nil, nil, apperror.ErrStoreUnavailable(fmt.Errorf("lock card: %w", err))
	}
	if b == nil {
		return nil, nil, apperror.ErrCardNotFound(second)
	}

	if first == fromNumber {
		return a, b, nil
	}
	return b, a, nil
}

// CreateCard issues a new ACTIVE card with a generated unique number.
func (s *CardServiceImpl) CreateCard(ctx context.Context, caller ports.Caller, req ports.CreateCardRequest) (*domain.Card, error) {
	if req.InitialBalance.Sign() < 0 {
		return nil, apperror.ErrInvalidRequest("initial balance cannot be negative")
	}

	number, err := s.uniqueCardNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	card := &domain.Card{
		ID:         uuid.New(),
		Number:     number,
		OwnerEmail: caller.Email,
		Expiration: req.Expiration,
		Status:     domain.CardStatusActive,
		Balance:    req.InitialBalance,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.cardRepo.Create(ctx, card); err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("create card: %w", err))
	}

	s.log.Info().
		Str("card", card.MaskedNumber()).
		Str("owner", card.OwnerEmail).
		Msg("card created")

	return card, nil
}

// uniqueCardNumber generates a card number not yet present in the store.
func (s *CardServiceImpl) uniqueCardNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number, err := generateCardNumber()
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("generate card number: %w", err))
		}
		existing, err := s.cardRepo.GetByNumber(ctx, number)
		if err != nil {
			return "", apperror.ErrStoreUnavailable(fmt.Errorf("check card number: %w", err))
		}
		if existing == nil {
			return number, nil
		}
	}
	return "", apperror.InternalError(fmt.Errorf("could not generate a unique card number after %d attempts", maxNumberAttempts))
}

// DeleteCard permanently removes a card. Only the owner may delete it.
func (s *CardServiceImpl) DeleteCard(ctx context.Context, caller ports.Caller, number string) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.ErrStoreUnavailable(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	card, err := s.cardRepo.GetByNumberForUpdate(ctx, dbTx, number)
	if err != nil {
		return apperror.ErrStoreUnavailable(fmt.Errorf("lock card: %w", err))
	}
	if card == nil {
		return apperror.ErrCardNotFound(number)
	}
	if !card.IsOwnedBy(caller.Email) {
		return apperror.ErrForbidden("you are not the owner of this card")
	}

	if err := s.cardRepo.Delete(ctx, dbTx, card.ID); err != nil {
		return apperror.ErrStoreUnavailable(fmt.Errorf("delete card: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.ErrStoreUnavailable(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().Str("card", card.MaskedNumber()).Msg("card deleted")
	return nil
}

// ChangeStatus overwrites a card's status and returns the updated card.
// The Admin capability flag is required; an ownership failure here is an
// authorization error, never a storage one.
func (s *CardServiceImpl) ChangeStatus(ctx context.Context, caller ports.Caller, number string, status domain.CardStatus) (*domain.Card, error) {
	if !caller.Admin {
		return nil, apperror.ErrForbidden("card status changes require administrator privilege")
	}
	if !status.Valid() {
		return nil, apperror.ErrInvalidRequest(fmt.Sprintf("unknown card status: %s", status))
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	card, err := s.cardRepo.GetByNumberForUpdate(ctx, dbTx, number)
	if err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("lock card: %w", err))
	}
	if card == nil {
		return nil, apperror.ErrCardNotFound(number)
	}

	if err := s.cardRepo.UpdateStatus(ctx, dbTx, card.ID, status); err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("update status: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("commit tx: %w", err))
	}

	card.Status = status
	card.UpdatedAt = time.Now().UTC()

	s.log.Info().
		Str("card", card.MaskedNumber()).
		Str("status", string(status)).
		Str("admin", caller.Email).
		Msg("card status changed")

	return card, nil
}

// ListCards returns the caller's own cards, or every card for ScopeAll.
func (s *CardServiceImpl) ListCards(ctx context.Context, caller ports.Caller, scope ports.ListScope) ([]domain.Card, error) {
	if scope == ports.ScopeAll {
		if !caller.Admin {
			return nil, apperror.ErrForbidden("listing all cards requires administrator privilege")
		}
		cards, err := s.cardRepo.ListAll(ctx)
		if err != nil {
			return nil, apperror.ErrStoreUnavailable(fmt.Errorf("list all cards: %w", err))
		}
		return cards, nil
	}

	cards, err := s.cardRepo.ListByOwner(ctx, caller.Email)
	if err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("list cards: %w", err))
	}
	return cards, nil
}
