package dto

import (
	"time"

	"bank-card-service/internal/core/domain"
)

// SignUpRequest is the request body for user registration.
type SignUpRequest struct {
	FirstName string `json:"first_name" binding:"required,min=1,max=50"`
	LastName  string `json:"last_name" binding:"required,min=1,max=50"`
	Email     string `json:"email" binding:"required,email,max=100"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	Role      string `json:"role" binding:"required,oneof=USER ADMIN"`
}

// SignInRequest is the request body for user login.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignInResponse is the response body for successful login.
type SignInResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// CreateCardRequest is the request body for card issuance.
// The balance travels as a decimal string to keep cents exact.
type CreateCardRequest struct {
	ExpirationDate string `json:"expiration_date" binding:"required"` // YYYY-MM-DD
	InitialBalance string `json:"initial_balance,omitempty"`
}

// TransferRequest is the request body for a balance transfer.
type TransferRequest struct {
	FromNumber string `json:"from_number" binding:"required,card_number"`
	ToNumber   string `json:"to_number" binding:"required,card_number"`
	Amount     string `json:"amount" binding:"required"`
}

// ChangeStatusRequest is the request body for an admin status change.
type ChangeStatusRequest struct {
	Number string `json:"number" binding:"required,card_number"`
	Status string `json:"status" binding:"required,oneof=ACTIVE BLOCKED EXPIRED"`
}

// CardResponse is the public view of a card. The number is always masked.
type CardResponse struct {
	ID             string `json:"id"`
	Number         string `json:"number"`
	OwnerEmail     string `json:"owner_email"`
	ExpirationDate string `json:"expiration_date"`
	Status         string `json:"status"`
	Balance        string `json:"balance"`
	CreatedAt      string `json:"created_at"`
}

// NewCardResponse builds a CardResponse from a domain card.
func NewCardResponse(c *domain.Card) CardResponse {
	return CardResponse{
		ID:             c.ID.String(),
		Number:         c.MaskedNumber(),
		OwnerEmail:     c.OwnerEmail,
		ExpirationDate: c.Expiration.Format("2006-01-02"),
		Status:         string(c.Status),
		Balance:        c.Balance.String(),
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
	}
}

// NewIssuedCardResponse builds the one-time issuance view of a card.
// The full number appears here and nowhere else; every later read shows
// it masked.
func NewIssuedCardResponse(c *domain.Card) CardResponse {
	out := NewCardResponse(c)
	out.Number = c.Number
	return out
}

// NewCardListResponse maps a card slice; it returns an empty slice, not
// nil, so JSON renders [].
func NewCardListResponse(cards []domain.Card) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for i := range cards {
		out = append(out, NewCardResponse(&cards[i]))
	}
	return out
}
