package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Card Business Logic (CARD) ----

// ErrInvalidRequest signals malformed input (same-card transfer,
// non-positive amount, bad status value).
func ErrInvalidRequest(message string) *AppError {
	return New("CARD_001", message, http.StatusBadRequest)
}

// ErrCardNotFound signals that the referenced card number does not exist.
func ErrCardNotFound(number string) *AppError {
	return New("CARD_002", fmt.Sprintf("card not found: %s", number), http.StatusNotFound)
}

// ErrForbidden signals that the caller lacks ownership or privilege for
// the requested mutation.
func ErrForbidden(message string) *AppError {
	return New("CARD_003", message, http.StatusForbidden)
}

// ErrStatusViolation signals that a card's status disallows the operation.
// masked is the masked card number, status its current status.
func ErrStatusViolation(masked, status string) *AppError {
	return New("CARD_004",
		fmt.Sprintf("card %s status does not allow this operation: %s", masked, status),
		http.StatusForbidden)
}

// ErrInsufficientFunds signals that the source balance is below the
// requested amount.
func ErrInsufficientFunds(masked string) *AppError {
	return New("CARD_005",
		fmt.Sprintf("insufficient funds on card %s", masked),
		http.StatusPaymentRequired)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrEmailExists() *AppError {
	return New("AUTH_002", "Email already registered", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// ErrStoreUnavailable wraps a storage failure or timeout. It is the only
// kind that originates below the engine; it passes through unchanged.
func ErrStoreUnavailable(err error) *AppError {
	return Wrap("SYS_001", "Card store unavailable", http.StatusServiceUnavailable, err)
}

// InternalError wraps an unexpected internal error.
func InternalError(err error) *AppError {
	return Wrap("SYS_002", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a CARD_001-style validation error for request binding
// failures.
func Validation(message string) *AppError {
	return New("CARD_001", message, http.StatusBadRequest)
}
