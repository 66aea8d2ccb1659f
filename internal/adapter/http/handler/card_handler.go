package handler

import (
	"time"

	"bank-card-service/internal/adapter/http/dto"
	"bank-card-service/internal/adapter/http/middleware"
	"bank-card-service/internal/core/domain"
	"bank-card-service/internal/core/ports"
	"bank-card-service/pkg/apperror"
	"bank-card-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CardHandler handles card endpoints.
type CardHandler struct {
	cardSvc ports.CardService
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardSvc ports.CardService) *CardHandler {
	return &CardHandler{cardSvc: cardSvc}
}

// Create handles POST /api/v1/cards.
func (h *CardHandler) Create(c *gin.Context) {
	var req dto.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	expiration, err := time.Parse("2006-01-02", req.ExpirationDate)
	if err != nil {
		response.Error(c, apperror.Validation("expiration_date must be YYYY-MM-DD"))
		return
	}

	balance := decimal.Zero
	if req.InitialBalance != "" {
		balance, err = decimal.NewFromString(req.InitialBalance)
		if err != nil {
			response.Error(c, apperror.Validation("initial_balance must be a decimal number"))
			return
		}
	}

	card, err := h.cardSvc.CreateCard(c.Request.Context(), middleware.Caller(c), ports.CreateCardRequest{
		Expiration:     expiration,
		InitialBalance: balance,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewIssuedCardResponse(card))
}

// ListOwn handles GET /api/v1/cards.
func (h *CardHandler) ListOwn(c *gin.Context) {
	cards, err := h.cardSvc.ListCards(c.Request.Context(), middleware.Caller(c), ports.ScopeOwn)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewCardListResponse(cards))
}

// ListAll handles GET /api/v1/cards/all. Admin only.
func (h *CardHandler) ListAll(c *gin.Context) {
	cards, err := h.cardSvc.ListCards(c.Request.Context(), middleware.Caller(c), ports.ScopeAll)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewCardListResponse(cards))
}

// Transfer handles PUT /api/v1/cards/transfers.
func (h *CardHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.Validation("amount must be a decimal number"))
		return
	}

	if err := h.cardSvc.Transfer(c.Request.Context(), middleware.Caller(c), req.FromNumber, req.ToNumber, amount); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"result": "transfer completed"})
}

// Delete handles DELETE /api/v1/cards?number=...
func (h *CardHandler) Delete(c *gin.Context) {
	number := c.Query("number")
	if number == "" {
		response.Error(c, apperror.Validation("number query parameter is required"))
		return
	}

	if err := h.cardSvc.DeleteCard(c.Request.Context(), middleware.Caller(c), number); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"result": "card deleted"})
}

// ChangeStatus handles PUT /api/v1/cards/status. Admin only.
func (h *CardHandler) ChangeStatus(c *gin.Context) {
	var req dto.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	card, err := h.cardSvc.ChangeStatus(c.Request.Context(), middleware.Caller(c), req.Number, domain.CardStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewCardResponse(card))
}
