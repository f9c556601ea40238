package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/calvinwijaya/casino-night/internal/game"
)

// AppError is an error with a stable code and the HTTP status it maps to.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
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

func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func Wrap(code, message string, httpStatus int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

// ---- Game (GAME) ----

func ErrInvalidArgument(err error) *AppError {
	return Wrap("GAME_001", "Invalid argument", http.StatusBadRequest, err)
}

func ErrInvalidState(err error) *AppError {
	return Wrap("GAME_002", "Action not allowed in the current round state", http.StatusConflict, err)
}

func ErrEmptyDeck(err error) *AppError {
	return Wrap("GAME_003", "Deck exhausted, round aborted", http.StatusInternalServerError, err)
}

// ---- Bank (BANK) ----

func ErrNoChips() *AppError {
	return New("BANK_001", "Not enough chips to wager", http.StatusPaymentRequired)
}

// ---- Session (SESS) ----

func ErrNotFound(entity string) *AppError {
	return New("SESS_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func Validation(message string) *AppError {
	return New("GAME_001", message, http.StatusBadRequest)
}

// ---- System (SYS) ----

func ErrUnavailable(feature string) *AppError {
	return New("SYS_002", fmt.Sprintf("%s is not available", feature), http.StatusServiceUnavailable)
}

func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// FromError maps domain errors to their AppError. An AppError anywhere in the
// chain is returned as-is.
func FromError(err error) *AppError {
	var appErr *AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, game.ErrInvalidArgument):
		return ErrInvalidArgument(err)
	case errors.Is(err, game.ErrInvalidState):
		return ErrInvalidState(err)
	case errors.Is(err, game.ErrEmptyDeck):
		return ErrEmptyDeck(err)
	default:
		return InternalError(err)
	}
}
