package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"bistro/internal/domain"
	"bistro/internal/events"
	"bistro/internal/models"

	"github.com/rs/zerolog"
)

// ReviewSummary is what the item screen shows under the description.
type ReviewSummary struct {
	Reviews []models.Review `json:"reviews"`
	Count   int             `json:"count"`
	Average string          `json:"average"`
}

type ReviewService struct {
	api       domain.ContentAPI
	publisher domain.EventPublisher
	logger    *zerolog.Logger
}

func NewReviewService(api domain.ContentAPI, publisher domain.EventPublisher, logger *zerolog.Logger) *ReviewService {
	return &ReviewService{api: api, publisher: publisher, logger: logger}
}

func (s *ReviewService) Summary(ctx context.Context, menuID string) (ReviewSummary, error) {
	reviews, err := s.api.ListReviews(ctx, menuID)
	if err != nil {
		return ReviewSummary{}, fmt.Errorf("list reviews: %w", err)
	}
	return Summarize(reviews), nil
}

// Submit validates and posts a review. Text is trimmed and the rating is
// rounded and clamped into the star range.
func (s *ReviewService) Submit(ctx context.Context, input models.ReviewInput) (*models.Review, error) {
	input.MenuID = strings.TrimSpace(input.MenuID)
	input.Text = strings.TrimSpace(input.Text)
	if input.MenuID == "" {
		return nil, domain.ErrMenuIDRequired
	}
	if input.Text == "" {
		return nil, domain.ErrEmptyReview
	}
	input.Rating = float64(ClampRating(input.Rating))

	review, err := s.api.CreateReview(ctx, input)
	if err != nil {
		s.logger.Error().Err(err).Str("menu_id", input.MenuID).Msg("create review failed")
		return nil, fmt.Errorf("create review: %w", err)
	}
	if s.publisher != nil {
		_ = s.publisher.PublishJSON(events.EventReviewCreated, events.MenuEventPayload{ItemID: input.MenuID, Action: "review"})
	}
	return review, nil
}

// ClampRating rounds to the nearest star and keeps it within 1..5.
func ClampRating(r float64) int {
	if math.IsNaN(r) {
		return models.MinRating
	}
	n := int(math.Round(r))
	if n < models.MinRating {
		return models.MinRating
	}
	if n > models.MaxRating {
		return models.MaxRating
	}
	return n
}

// AverageRating is the mean rating, false when there are no reviews.
func AverageRating(reviews []models.Review) (float64, bool) {
	if len(reviews) == 0 {
		return 0, false
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews)), true
}

// FormatAverage renders the mean with one decimal or "N/A".
func FormatAverage(reviews []models.Review) string {
	avg, ok := AverageRating(reviews)
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", avg)
}

func Summarize(reviews []models.Review) ReviewSummary {
	if reviews == nil {
		reviews = []models.Review{}
	}
	return ReviewSummary{Reviews: reviews, Count: len(reviews), Average: FormatAverage(reviews)}
}

// Prepend puts a freshly created review at the top of the list.
func Prepend(reviews []models.Review, review models.Review) []models.Review {
	out := make([]models.Review, 0, len(reviews)+1)
	out = append(out, review)
	return append(out, reviews...)
}
