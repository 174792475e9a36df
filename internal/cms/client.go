// Package cms talks to the headless CMS that stores the menu, reviews and
// manager accounts. Every record is normalized here before it reaches the
// rest of the app.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"bistro/internal/config"
	"bistro/internal/domain"
	"bistro/internal/metrics"
	"bistro/internal/models"

	"github.com/rs/zerolog"
)

const maxResponseBytes = 8 << 20

// Client is the CMS REST client. GET responses are cached when a cache is set.
type Client struct {
	baseURL          string
	publicationState string
	httpClient       *http.Client
	logger           *zerolog.Logger

	cache    domain.CacheRepository
	cacheTTL time.Duration
}

func NewClient(cfg config.CMSConfig, logger *zerolog.Logger) *Client {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:          cfg.BaseURL,
		publicationState: cfg.PublicationState,
		httpClient:       &http.Client{Timeout: timeout},
		logger:           logger,
	}
}

// UseCache configures caching for GET endpoints.
func (c *Client) UseCache(cache domain.CacheRepository, ttl time.Duration) {
	c.cache = cache
	c.cacheTTL = ttl
}

// BaseURL is the CMS origin used to resolve media paths.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) menusCacheKey() string {
	return "cms:menus:" + c.publicationState
}

func reviewsCacheKey(menuID string) string {
	return "cms:reviews:" + menuID
}

// ListMenuItems fetches every menu record, including drafts when the
// publication state is "preview". Records that fail normalization are skipped.
func (c *Client) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	q := url.Values{}
	q.Set("populate", "*")
	if c.publicationState != "" {
		q.Set("publicationState", c.publicationState)
	}
	endpoint := c.baseURL + "/api/menus?" + q.Encode()

	body, err := c.cachedGet(ctx, "list_menu", c.menusCacheKey(), endpoint)
	if err != nil {
		return nil, err
	}

	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode menus: %w", err)
	}

	items := make([]models.MenuItem, 0, len(env.Data))
	for _, raw := range env.Data {
		item, err := decodeMenuItem(raw, c.baseURL)
		if err != nil {
			c.logger.Warn().Err(err).RawJSON("record", raw).Msg("skip malformed menu record")
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// ListReviews returns the reviews attached to a menu item.
func (c *Client) ListReviews(ctx context.Context, menuID string) ([]models.Review, error) {
	if menuID == "" {
		return nil, domain.ErrMenuIDRequired
	}
	q := url.Values{}
	q.Set("filters[menu][id][$eq]", menuID)
	q.Set("populate", "*")
	endpoint := c.baseURL + "/api/reviews?" + q.Encode()

	body, err := c.cachedGet(ctx, "list_reviews", reviewsCacheKey(menuID), endpoint)
	if err != nil {
		return nil, err
	}

	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}

	reviews := make([]models.Review, 0, len(env.Data))
	for _, raw := range env.Data {
		review, err := decodeReview(raw, menuID)
		if err != nil {
			c.logger.Warn().Err(err).Msg("skip malformed review record")
			continue
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

// CreateReview posts a review connected to the menu item. Input is expected
// to be validated by the caller.
func (c *Client) CreateReview(ctx context.Context, input models.ReviewInput) (*models.Review, error) {
	payload := reviewPayload{Text: input.Text, Rating: int(math.Round(input.Rating))}
	payload.Menu.Connect = []interface{}{relationID(input.MenuID)}

	var env singleEnvelope
	if err := c.doJSON(ctx, "create_review", http.MethodPost, c.baseURL+"/api/reviews", "", map[string]any{"data": payload}, &env); err != nil {
		return nil, err
	}
	c.invalidate(ctx, reviewsCacheKey(input.MenuID))

	review, err := decodeReview(env.Data, input.MenuID)
	if err != nil {
		return nil, fmt.Errorf("decode review: %w", err)
	}
	if review.Text == "" {
		review.Text = payload.Text
		review.Rating = payload.Rating
	}
	return &review, nil
}

// Login exchanges credentials for a JWT. Rejected credentials map to domain.ErrUnauthorized.
func (c *Client) Login(ctx context.Context, identifier, password string) (*models.AuthSession, error) {
	var resp loginResponse
	err := c.doJSON(ctx, "login", http.MethodPost, c.baseURL+"/api/auth/local", "", loginPayload{Identifier: identifier, Password: password}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			return nil, fmt.Errorf("%s: %w", apiErr.Message, domain.ErrUnauthorized)
		}
		return nil, err
	}
	if resp.JWT == "" {
		return nil, fmt.Errorf("login response without token: %w", domain.ErrUnauthorized)
	}
	return &models.AuthSession{
		JWT: resp.JWT,
		User: models.User{
			ID:       string(resp.User.ID),
			Username: resp.User.Username,
			Email:    resp.User.Email,
		},
	}, nil
}

// UploadImage uploads one file and returns its media id.
func (c *Client) UploadImage(ctx context.Context, token, filename string, r io.Reader) (string, error) {
	if token == "" {
		return "", domain.ErrNotAuthenticated
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.addHeaders(req, token)

	var files []uploadedFile
	if err := c.do("upload", req, &files); err != nil {
		return "", err
	}
	if len(files) == 0 || files[0].ID == "" {
		return "", fmt.Errorf("upload returned no file id")
	}
	return string(files[0].ID), nil
}

func (c *Client) CreateMenuItem(ctx context.Context, token string, input models.MenuItemInput) (*models.MenuItem, error) {
	return c.saveMenuItem(ctx, "create_menu", http.MethodPost, c.baseURL+"/api/menus", token, input)
}

func (c *Client) UpdateMenuItem(ctx context.Context, token, id string, input models.MenuItemInput) (*models.MenuItem, error) {
	return c.saveMenuItem(ctx, "update_menu", http.MethodPut, c.baseURL+"/api/menus/"+url.PathEscape(id), token, input)
}

func (c *Client) saveMenuItem(ctx context.Context, op, method, endpoint, token string, input models.MenuItemInput) (*models.MenuItem, error) {
	if token == "" {
		return nil, domain.ErrNotAuthenticated
	}
	payload := menuPayload{
		Name:        input.Name,
		Price:       input.Price,
		Category:    input.Category,
		Description: input.Description,
		Image:       input.ImageID,
	}

	var env singleEnvelope
	if err := c.doJSON(ctx, op, method, endpoint, token, map[string]any{"data": payload}, &env); err != nil {
		return nil, err
	}
	c.invalidate(ctx, c.menusCacheKey())

	item, err := decodeMenuItem(env.Data, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("decode saved menu item: %w", err)
	}
	return &item, nil
}

func (c *Client) DeleteMenuItem(ctx context.Context, token, id string) error {
	if token == "" {
		return domain.ErrNotAuthenticated
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/menus/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	c.addHeaders(req, token)
	if err := c.do("delete_menu", req, nil); err != nil {
		return err
	}
	c.invalidate(ctx, c.menusCacheKey())
	return nil
}

func (c *Client) cachedGet(ctx context.Context, op, cacheKey, endpoint string) ([]byte, error) {
	if body, ok := c.readCache(ctx, cacheKey); ok {
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.addHeaders(req, "")

	var body json.RawMessage
	if err := c.do(op, req, &body); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, body)
	return body, nil
}

func (c *Client) readCache(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return nil, false
	}
	val, ok, err := c.cache.Get(ctx, key)
	if err != nil || !ok {
		if err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		metrics.IncCacheMiss()
		return nil, false
	}
	metrics.IncCacheHit()
	return val, true
}

func (c *Client) writeCache(ctx context.Context, key string, val []byte) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	if err := c.cache.Set(ctx, key, val, c.cacheTTL); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (c *Client) invalidate(ctx context.Context, keys ...string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}

func (c *Client) doJSON(ctx context.Context, op, method, endpoint, token string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.addHeaders(req, token)
	return c.do(op, req, out)
}

func (c *Client) do(op string, req *http.Request, out any) (err error) {
	started := time.Now()
	defer func() { metrics.ObserveCMS(op, started, err) }()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cms %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("cms %s: read body: %w", op, err)
	}

	if resp.StatusCode >= 300 {
		apiErr := decodeAPIError(resp.StatusCode, body)
		c.logger.Debug().Str("op", op).Int("status", resp.StatusCode).Str("error", apiErr.Message).Msg("cms request failed")
		return apiErr
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], body...)
		return nil
	}
	return json.Unmarshal(body, out)
}

func (c *Client) addHeaders(req *http.Request, token string) {
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
