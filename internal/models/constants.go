package models

const (
	CategoryBreakfast = "Breakfast"
	CategoryLunch     = "Lunch"
	CategoryDinner    = "Dinner"
	CategoryCoffee    = "Coffee"
)

const (
	// DefaultCacheTTL время жизни кэша ответов CMS в секундах
	DefaultCacheTTL = 5 * 60

	// DefaultSessionIdleTTL время жизни неактивной сессии в секундах
	DefaultSessionIdleTTL = 2 * 60 * 60

	// DefaultSweepInterval период очистки сессий в секундах
	DefaultSweepInterval = 60

	// DefaultMenuRefreshInterval период обновления меню из CMS в секундах
	DefaultMenuRefreshInterval = 10 * 60

	// LoginAttempts количество попыток входа в окне
	LoginAttempts = 5

	// LoginWindow окно ограничения попыток входа в секундах
	LoginWindow = 5 * 60

	// MinRating и MaxRating границы оценки отзыва
	MinRating = 1
	MaxRating = 5

	// MaxQuantity верхняя граница количества одной строки корзины
	MaxQuantity = 999
)
