package service

import (
	"context"
	"io"

	"bistro/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockContentAPI is a mock of the domain.ContentAPI interface
type MockContentAPI struct {
	mock.Mock
}

func (m *MockContentAPI) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MenuItem), args.Error(1)
}

func (m *MockContentAPI) ListReviews(ctx context.Context, menuID string) ([]models.Review, error) {
	args := m.Called(ctx, menuID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *MockContentAPI) CreateReview(ctx context.Context, input models.ReviewInput) (*models.Review, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockContentAPI) Login(ctx context.Context, identifier, password string) (*models.AuthSession, error) {
	args := m.Called(ctx, identifier, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthSession), args.Error(1)
}

func (m *MockContentAPI) UploadImage(ctx context.Context, token, filename string, r io.Reader) (string, error) {
	args := m.Called(ctx, token, filename, r)
	return args.String(0), args.Error(1)
}

func (m *MockContentAPI) CreateMenuItem(ctx context.Context, token string, input models.MenuItemInput) (*models.MenuItem, error) {
	args := m.Called(ctx, token, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MenuItem), args.Error(1)
}

func (m *MockContentAPI) UpdateMenuItem(ctx context.Context, token, id string, input models.MenuItemInput) (*models.MenuItem, error) {
	args := m.Called(ctx, token, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MenuItem), args.Error(1)
}

func (m *MockContentAPI) DeleteMenuItem(ctx context.Context, token, id string) error {
	args := m.Called(ctx, token, id)
	return args.Error(0)
}

type MockRefresher struct {
	mock.Mock
}

func (m *MockRefresher) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
