package api

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"bistro/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestMenu_Categories(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.do(t, http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	categories, ok := body["categories"].([]any)
	require.True(t, ok)
	assert.Len(t, categories, 4)
}

func TestMenu_Filter(t *testing.T) {
	env := newTestEnv(t, nil)

	_, body := env.do(t, http.MethodGet, "/api/v1/menu", "", nil)
	assert.Len(t, body["items"], 2)

	_, body = env.do(t, http.MethodGet, "/api/v1/menu?category=Lunch", "", nil)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "Burger", item["name"])
	assert.Equal(t, "€12.50", item["price"])

	_, body = env.do(t, http.MethodGet, "/api/v1/menu?category=Brunch", "", nil)
	assert.Empty(t, body["items"])
}

func TestMenu_Static(t *testing.T) {
	env := newTestEnv(t, nil)

	_, body := env.do(t, http.MethodGet, "/api/v1/menu/static/Dinner", "", nil)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Steak", items[0].(map[string]any)["name"])

	_, body = env.do(t, http.MethodGet, "/api/v1/menu/static/Brunch", "", nil)
	assert.Empty(t, body["items"])
}

func TestItem(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.newSession(t)

	t.Run("WithReviews", func(t *testing.T) {
		resp, body := env.do(t, http.MethodGet, "/api/v1/items/1", id, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Pancakes", body["item"].(map[string]any)["name"])
		assert.Equal(t, false, body["favorite"])

		reviews := body["reviews"].(map[string]any)
		assert.EqualValues(t, 2, reviews["count"])
		assert.Equal(t, "4.5", reviews["average"])
	})

	t.Run("Favorite", func(t *testing.T) {
		env.do(t, http.MethodPost, "/api/v1/favorites/toggle", id, map[string]any{"item_id": "1"})
		_, body := env.do(t, http.MethodGet, "/api/v1/items/1", id, nil)
		assert.Equal(t, true, body["favorite"])
	})

	t.Run("NoReviews", func(t *testing.T) {
		_, body := env.do(t, http.MethodGet, "/api/v1/items/2", "", nil)
		assert.Equal(t, "N/A", body["reviews"].(map[string]any)["average"])
	})

	t.Run("StaticCategory", func(t *testing.T) {
		_, body := env.do(t, http.MethodGet, "/api/v1/items/1?category=Dinner", "", nil)
		assert.Equal(t, "Steak", body["item"].(map[string]any)["name"])
	})

	t.Run("NotFound", func(t *testing.T) {
		resp, _ := env.do(t, http.MethodGet, "/api/v1/items/404", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("ReviewsUnavailable", func(t *testing.T) {
		env.content.mu.Lock()
		env.content.reviewsErr = errors.Join(errors.New("cms down"), domain.ErrUnavailable)
		env.content.mu.Unlock()

		resp, body := env.do(t, http.MethodGet, "/api/v1/items/1", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "reviews are unavailable", body["reviews_error"])
		assert.Equal(t, "N/A", body["reviews"].(map[string]any)["average"])
	})
}

func TestCreateReview(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.do(t, http.MethodPost, "/api/v1/items/2/reviews", "", map[string]any{"text": "  Juicy  ", "rating": 9})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	review := body["review"].(map[string]any)
	assert.Equal(t, "Juicy", review["text"])
	assert.EqualValues(t, 5, review["rating"])

	_, body = env.do(t, http.MethodGet, "/api/v1/items/2", "", nil)
	assert.Equal(t, "5.0", body["reviews"].(map[string]any)["average"])

	resp, body = env.do(t, http.MethodPost, "/api/v1/items/2/reviews", "", map[string]any{"text": "   ", "rating": 3})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "review text is required", body["error"])
}

func (e *testEnv) login(t *testing.T, sessionID string) {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/v1/auth/login", sessionID, map[string]any{"identifier": "manager", "password": "secret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "manager", body["user"].(map[string]any)["username"])
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.newSession(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/auth/login", id, map[string]any{"identifier": "manager", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid credentials", body["error"])

	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/login", id, map[string]any{"identifier": "", "password": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.login(t, id)
	sess, err := env.sessions.Get(id)
	require.NoError(t, err)
	assert.True(t, sess.IsManager())

	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/logout", id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.False(t, sess.IsManager())
}

func TestLogin_Throttled(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.newSession(t)

	for i := 0; i < 3; i++ {
		resp, _ := env.do(t, http.MethodPost, "/api/v1/auth/login", id, map[string]any{"identifier": "manager", "password": "nope"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp, body := env.do(t, http.MethodPost, "/api/v1/auth/login", id, map[string]any{"identifier": "Manager", "password": "secret"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "too many login attempts", body["error"])
}

func TestManage_RequiresLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.newSession(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/manage/items"},
		{http.MethodPost, "/api/v1/manage/items"},
		{http.MethodPut, "/api/v1/manage/items/1"},
		{http.MethodDelete, "/api/v1/manage/items/1"},
		{http.MethodGet, "/api/v1/manage/export"},
	} {
		resp, body := env.do(t, tc.method, tc.path, id, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, tc.path)
		assert.Equal(t, "you must be logged in", body["error"], tc.path)
	}
}

func TestManage_CRUD(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.newSession(t)
	env.login(t, id)

	t.Run("List", func(t *testing.T) {
		_, body := env.do(t, http.MethodGet, "/api/v1/manage/items", id, nil)
		assert.EqualValues(t, 2, body["count"])
	})

	t.Run("CreateJSON", func(t *testing.T) {
		resp, body := env.do(t, http.MethodPost, "/api/v1/manage/items", id, map[string]any{
			"name": " Latte ", "price": "€3.50", "category": "Coffee",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		item := body["item"].(map[string]any)
		assert.Equal(t, "Latte", item["name"])
		assert.Equal(t, "€3.50", item["price"])
		assert.Equal(t, "3.50", env.content.saved[0].Price)

		// каталог перечитан после изменения
		_, body = env.do(t, http.MethodGet, "/api/v1/menu?category=Coffee", "", nil)
		assert.Len(t, body["items"], 1)
	})

	t.Run("MissingFields", func(t *testing.T) {
		resp, _ := env.do(t, http.MethodPost, "/api/v1/manage/items", id, map[string]any{"name": "Tea"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("UpdateMultipartWithImage", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("name", "Flat White"))
		require.NoError(t, mw.WriteField("price", "4"))
		require.NoError(t, mw.WriteField("category", "Coffee"))
		fw, err := mw.CreateFormFile("image", "flat.jpg")
		require.NoError(t, err)
		_, err = fw.Write([]byte("jpeg-bytes"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req, err := http.NewRequest(http.MethodPut, env.ts.URL+"/api/v1/manage/items/100", &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set(sessionHeader, id)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []string{"flat.jpg"}, env.content.uploads)
		last := env.content.saved[len(env.content.saved)-1]
		assert.Equal(t, "55", last.ImageID)
		assert.Equal(t, "4.00", last.Price)
	})

	t.Run("Delete", func(t *testing.T) {
		resp, _ := env.do(t, http.MethodDelete, "/api/v1/manage/items/100", id, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, []string{"100"}, env.content.deleted)
	})

	t.Run("Export", func(t *testing.T) {
		resp := env.raw(t, http.MethodGet, "/api/v1/manage/export", id, nil)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, xlsxMIME, resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "menu_")

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()
		assert.Contains(t, f.GetSheetList(), "Menu")
	})
}
