package api

import (
	"fmt"
	"net/http"

	"bistro/internal/cart"
	"bistro/internal/domain"
	"bistro/internal/models"
	"bistro/internal/session"
)

type lineView struct {
	Item     itemView `json:"item"`
	Quantity int      `json:"quantity"`
	Subtotal string   `json:"subtotal"`
}

type cartView struct {
	Lines      []lineView `json:"lines"`
	Quantity   int        `json:"quantity"`
	Total      string     `json:"total"`
	TotalMinor int64      `json:"total_minor"`
}

func newCartView(store *cart.Store) cartView {
	entries := store.Entries()
	lines := make([]lineView, 0, len(entries))
	quantity := 0
	for _, e := range entries {
		lines = append(lines, lineView{
			Item:     newItemView(e.Item),
			Quantity: e.Quantity,
			Subtotal: models.FormatPrice(e.Subtotal()),
		})
		quantity += e.Quantity
	}
	total := cart.ComputeTotal(entries)
	return cartView{
		Lines:      lines,
		Quantity:   quantity,
		Total:      cart.FormatTotal(total),
		TotalMinor: total,
	}
}

// withSession оборачивает обработчик, которому нужна сессия клиента.
func (s *HTTPServer) withSession(fn func(w http.ResponseWriter, r *http.Request, sess *session.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.session(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		fn(w, r, sess)
	}
}

func (s *HTTPServer) handleCart(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
	writeJSON(w, http.StatusOK, newCartView(sess.Cart))
}

type addToCartRequest struct {
	ItemID   string `json:"item_id"`
	Category string `json:"category,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

func (s *HTTPServer) handleAddToCart(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var body addToCartRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if body.Quantity == 0 {
		body.Quantity = 1
	}
	if body.Quantity < 1 || body.Quantity > models.MaxQuantity {
		s.fail(w, r, domain.ErrInvalidQuantity)
		return
	}

	item, err := s.resolveItem(body.ItemID, body.Category)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess.Cart.AddToCartQuantity(item, body.Quantity)
	writeJSON(w, http.StatusOK, newCartView(sess.Cart))
}

type cartLineRequest struct {
	Item     models.RawMenuItem `json:"item"`
	Quantity int                `json:"quantity"`
}

type updateCartRequest struct {
	Lines []cartLineRequest `json:"lines"`
}

// handleUpdateCart заменяет корзину целиком после проверки строк.
func (s *HTTPServer) handleUpdateCart(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var body updateCartRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	entries := make([]models.CartEntry, 0, len(body.Lines))
	for i, line := range body.Lines {
		item, err := line.Item.Normalize()
		if err != nil {
			s.fail(w, r, fmt.Errorf("line %d: %w", i, err))
			return
		}
		entries = append(entries, models.CartEntry{Item: item, Quantity: line.Quantity})
	}
	if err := cart.ValidateEntries(entries); err != nil {
		s.fail(w, r, err)
		return
	}

	sess.Cart.UpdateCart(entries)
	writeJSON(w, http.StatusOK, newCartView(sess.Cart))
}

func (s *HTTPServer) handleCartLine(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var op func(models.LineKey)
	switch r.PathValue("op") {
	case "increment":
		op = sess.Cart.Increment
	case "decrement":
		op = sess.Cart.Decrement
	case "decrement-or-remove":
		op = sess.Cart.DecrementOrRemove
	default:
		writeError(w, http.StatusNotFound, "unknown cart operation")
		return
	}

	var key models.LineKey
	if err := decodeJSON(w, r, &key); err != nil {
		s.fail(w, r, err)
		return
	}
	op(key)
	writeJSON(w, http.StatusOK, newCartView(sess.Cart))
}

type removeLineRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Confirm bool   `json:"confirm"`
}

// handleRemoveLine удаляет строку только с подтверждением клиента.
func (s *HTTPServer) handleRemoveLine(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var body removeLineRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if !body.Confirm {
		s.fail(w, r, domain.ErrConfirmationRequired)
		return
	}
	sess.Cart.Remove(models.LineKey{ID: body.ID, Name: body.Name})
	writeJSON(w, http.StatusOK, newCartView(sess.Cart))
}

func (s *HTTPServer) handleCheckout(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
	before := newCartView(sess.Cart)
	checkedOut := sess.Cart.Checkout()
	writeJSON(w, http.StatusOK, map[string]any{
		"checked_out": checkedOut,
		"order":       before,
		"cart":        newCartView(sess.Cart),
	})
}

type toggleFavoriteRequest struct {
	ItemID   string `json:"item_id"`
	Category string `json:"category,omitempty"`
}

func (s *HTTPServer) handleFavorites(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
	items := sess.Favorites.Items()
	writeJSON(w, http.StatusOK, map[string]any{
		"items": newItemViews(items),
		"count": len(items),
	})
}

func (s *HTTPServer) handleToggleFavorite(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var body toggleFavoriteRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.resolveItem(body.ItemID, body.Category)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	favorite := sess.Favorites.ToggleFavorite(item)
	writeJSON(w, http.StatusOK, map[string]any{
		"item_id":  item.ID,
		"favorite": favorite,
		"count":    sess.Favorites.Len(),
	})
}

func (s *HTTPServer) handleIsFavorite(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id := r.PathValue("id")
	writeJSON(w, http.StatusOK, map[string]any{
		"item_id":  id,
		"favorite": sess.Favorites.IsFavorite(id),
	})
}

func (s *HTTPServer) handleClearFavorites(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
	sess.Favorites.ClearFavorites()
	w.WriteHeader(http.StatusNoContent)
}
