package domain

import (
	"context"
	"io"
	"time"

	"bistro/internal/models"
)

// MenuSource lists the menu from the content service.
type MenuSource interface {
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
}

// ContentAPI is everything the app calls on the content service.
type ContentAPI interface {
	MenuSource
	ListReviews(ctx context.Context, menuID string) ([]models.Review, error)
	CreateReview(ctx context.Context, input models.ReviewInput) (*models.Review, error)
	Login(ctx context.Context, identifier, password string) (*models.AuthSession, error)
	UploadImage(ctx context.Context, token, filename string, r io.Reader) (string, error)
	CreateMenuItem(ctx context.Context, token string, input models.MenuItemInput) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, token, id string, input models.MenuItemInput) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, token, id string) error
}

// CacheRepository stores short-lived byte values and rate-limit counters.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// MenuRefresher reloads the catalog after the menu changes.
type MenuRefresher interface {
	Refresh(ctx context.Context) error
}
