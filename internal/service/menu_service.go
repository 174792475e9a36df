package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"bistro/internal/domain"
	"bistro/internal/events"
	"bistro/internal/models"

	"github.com/rs/zerolog"
)

// ImageUpload is an optional picture attached to a menu form.
type ImageUpload struct {
	Filename string
	Data     io.Reader
}

// MenuService backs the manager's menu editor.
type MenuService struct {
	api       domain.ContentAPI
	refresher domain.MenuRefresher
	publisher domain.EventPublisher
	logger    *zerolog.Logger
}

func NewMenuService(api domain.ContentAPI, refresher domain.MenuRefresher, publisher domain.EventPublisher, logger *zerolog.Logger) *MenuService {
	return &MenuService{api: api, refresher: refresher, publisher: publisher, logger: logger}
}

// List returns every item including drafts.
func (s *MenuService) List(ctx context.Context) ([]models.MenuItem, error) {
	return s.api.ListMenuItems(ctx)
}

// NormalizeInput trims the form and rewrites the price as a plain decimal.
func NormalizeInput(input models.MenuItemInput) (models.MenuItemInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Category = strings.TrimSpace(input.Category)
	input.Description = strings.TrimSpace(input.Description)
	input.Price = strings.TrimSpace(input.Price)
	if input.Name == "" || input.Price == "" || input.Category == "" {
		return input, domain.ErrMissingFields
	}
	minor, err := models.ParsePrice(input.Price)
	if err != nil {
		return input, err
	}
	input.Price = models.FormatAmount(minor)
	return input, nil
}

// Save creates the item when id is empty and updates it otherwise. The image,
// if any, is uploaded first.
func (s *MenuService) Save(ctx context.Context, token, id string, input models.MenuItemInput, image *ImageUpload) (*models.MenuItem, error) {
	if token == "" {
		return nil, domain.ErrNotAuthenticated
	}
	input, err := NormalizeInput(input)
	if err != nil {
		return nil, err
	}

	if image != nil && image.Data != nil {
		imageID, err := s.api.UploadImage(ctx, token, image.Filename, image.Data)
		if err != nil {
			s.logger.Error().Err(err).Str("file", image.Filename).Msg("image upload failed")
			return nil, fmt.Errorf("upload image: %w", err)
		}
		input.ImageID = imageID
	}

	var (
		item   *models.MenuItem
		action string
	)
	if id == "" {
		action = "created"
		item, err = s.api.CreateMenuItem(ctx, token, input)
	} else {
		action = "updated"
		item, err = s.api.UpdateMenuItem(ctx, token, id, input)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("id", id).Msg("save menu item failed")
		return nil, fmt.Errorf("save menu item: %w", err)
	}

	s.afterChange(ctx, item.ID, action)
	return item, nil
}

func (s *MenuService) Delete(ctx context.Context, token, id string) error {
	if token == "" {
		return domain.ErrNotAuthenticated
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("menu item id is required: %w", domain.ErrBadRequest)
	}
	if err := s.api.DeleteMenuItem(ctx, token, id); err != nil {
		s.logger.Error().Err(err).Str("id", id).Msg("delete menu item failed")
		return fmt.Errorf("delete menu item: %w", err)
	}
	s.afterChange(ctx, id, "deleted")
	return nil
}

func (s *MenuService) afterChange(ctx context.Context, id, action string) {
	s.logger.Info().Str("id", id).Str("action", action).Msg("menu item changed")
	if s.refresher != nil {
		if err := s.refresher.Refresh(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("catalog refresh after menu change failed")
		}
	}
	if s.publisher != nil {
		_ = s.publisher.PublishJSON(events.EventMenuItemChanged, events.MenuEventPayload{ItemID: id, Action: action})
	}
}
