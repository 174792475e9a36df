package domain

import (
	"errors"

	"bistro/internal/models"
)

var (
	// ErrNotFound возвращается, если запись не найдена в CMS или каталоге.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized сигнализирует об отклонённых учётных данных.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden возвращается, если у пользователя нет прав на операцию.
	ErrForbidden = errors.New("forbidden")
	// ErrBadRequest возвращается CMS на некорректные данные.
	ErrBadRequest = errors.New("bad request")
	// ErrUnavailable временная недоступность CMS.
	ErrUnavailable = errors.New("content service unavailable")
	// ErrNotAuthenticated операция требует входа менеджера.
	ErrNotAuthenticated = errors.New("you must be logged in")
	// ErrMissingFields форма меню заполнена не полностью.
	ErrMissingFields = errors.New("name, price and category are required")
	// ErrInvalidQuantity количество позиции корзины вне 1..models.MaxQuantity.
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 999")
	// ErrDuplicateLine в корзине две позиции с одинаковыми (id, name).
	ErrDuplicateLine = errors.New("duplicate cart line")
	// ErrEmptyReview пустой текст отзыва.
	ErrEmptyReview = errors.New("review text is required")
	// ErrMenuIDRequired отзыв без идентификатора позиции меню.
	ErrMenuIDRequired = errors.New("menu id is required")
	// ErrTooManyAttempts превышен лимит попыток входа.
	ErrTooManyAttempts = errors.New("too many login attempts")
	// ErrSessionNotFound сессия не найдена или истекла.
	ErrSessionNotFound = errors.New("session not found")
	// ErrConfirmationRequired удаление позиции без подтверждения.
	ErrConfirmationRequired = errors.New("confirmation required")
)

// IsAuthError проверяет, связана ли ошибка с авторизацией.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotAuthenticated)
}

// Ошибки нормализации живут в models, здесь они переэкспортированы для вызывающих.
var (
	ErrInvalidPrice = models.ErrInvalidPrice
	ErrInvalidID    = models.ErrInvalidID
)
