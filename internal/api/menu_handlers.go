package api

import (
	"errors"
	"net/http"
	"strings"

	"bistro/internal/domain"
	"bistro/internal/models"
	"bistro/internal/service"
	"bistro/internal/session"
)

type itemView struct {
	models.MenuItem
	Price string `json:"price"`
}

func newItemView(item models.MenuItem) itemView {
	return itemView{MenuItem: item, Price: item.DisplayPrice()}
}

func newItemViews(items []models.MenuItem) []itemView {
	out := make([]itemView, 0, len(items))
	for _, item := range items {
		out = append(out, newItemView(item))
	}
	return out
}

func (s *HTTPServer) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": s.deps.Catalog.Categories()})
}

// handleMenu отдаёт живое меню, при ?category= только эту категорию.
func (s *HTTPServer) handleMenu(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	items := s.deps.Catalog.Items()
	if category != "" {
		items = s.deps.Catalog.Filter(category)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category":     category,
		"items":        newItemViews(items),
		"refreshed_at": s.deps.Catalog.RefreshedAt(),
	})
}

func (s *HTTPServer) handleStaticMenu(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	writeJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"items":    newItemViews(s.deps.Catalog.Lookup(category)),
	})
}

// resolveItem ищет позицию по id. Категория нужна для статического меню,
// где id повторяются между разделами.
func (s *HTTPServer) resolveItem(id, category string) (models.MenuItem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.MenuItem{}, domain.ErrInvalidID
	}
	if category = strings.TrimSpace(category); category != "" {
		for _, item := range s.deps.Catalog.Lookup(category) {
			if item.ID == id {
				return item, nil
			}
		}
	}
	return s.deps.Catalog.ItemByID(id)
}

// handleItem собирает экран позиции: сама позиция, отзывы и флаг избранного.
// Недоступные отзывы не ломают экран.
func (s *HTTPServer) handleItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.resolveItem(r.PathValue("id"), r.URL.Query().Get("category"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	favorite := false
	if id := sessionID(r); id != "" {
		sess, err := s.session(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		favorite = sess.Favorites.IsFavorite(item.ID)
	}

	resp := map[string]any{
		"item":     newItemView(item),
		"favorite": favorite,
	}

	summary, err := s.deps.Reviews.Summary(r.Context(), item.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("item_id", item.ID).Msg("reviews unavailable")
		summary = service.Summarize(nil)
		resp["reviews_error"] = "reviews are unavailable"
	}
	resp["reviews"] = summary

	writeJSON(w, http.StatusOK, resp)
}

type reviewRequest struct {
	Text   string  `json:"text"`
	Rating float64 `json:"rating"`
}

func (s *HTTPServer) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var body reviewRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	review, err := s.deps.Reviews.Submit(r.Context(), models.ReviewInput{
		MenuID: r.PathValue("id"),
		Text:   body.Text,
		Rating: body.Rating,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"review": review})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var body loginRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.deps.Auth.Login(r.Context(), sess, body.Identifier, body.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
	s.deps.Auth.Logout(sess)
	w.WriteHeader(http.StatusNoContent)
}
