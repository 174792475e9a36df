package api

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"bistro/internal/domain"
	"bistro/internal/export"
	"bistro/internal/models"
	"bistro/internal/service"
	"bistro/internal/session"
)

const (
	maxUploadBytes = 10 << 20
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Все обработчики управления меню требуют входа менеджера в этой сессии.

func (s *HTTPServer) handleManageList(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if _, err := service.Token(sess); err != nil {
		s.fail(w, r, err)
		return
	}
	items, err := s.deps.Menu.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": newItemViews(items), "count": len(items)})
}

func (s *HTTPServer) handleManageCreate(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.saveMenuItem(w, r, sess, "")
}

func (s *HTTPServer) handleManageUpdate(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.saveMenuItem(w, r, sess, r.PathValue("id"))
}

func (s *HTTPServer) saveMenuItem(w http.ResponseWriter, r *http.Request, sess *session.Session, id string) {
	token, err := service.Token(sess)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	input, image, err := readMenuForm(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	item, err := s.deps.Menu.Save(r.Context(), token, id, input, image)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"item": newItemView(*item)})
}

// readMenuForm принимает либо JSON, либо multipart с файлом в поле "image".
func readMenuForm(w http.ResponseWriter, r *http.Request) (models.MenuItemInput, *service.ImageUpload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var input models.MenuItemInput
		if err := decodeJSON(w, r, &input); err != nil {
			return input, nil, err
		}
		return input, nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return models.MenuItemInput{}, nil, fmt.Errorf("invalid multipart form: %w", domain.ErrBadRequest)
	}

	input := models.MenuItemInput{
		Name:        r.FormValue("name"),
		Price:       r.FormValue("price"),
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return input, nil, nil
	}
	if err != nil {
		return input, nil, fmt.Errorf("read image: %w", domain.ErrBadRequest)
	}
	// multipart.File остаётся открытым до конца запроса, ParseMultipartForm
	// удалит временные файлы сам.
	return input, &service.ImageUpload{Filename: header.Filename, Data: file}, nil
}

func (s *HTTPServer) handleManageDelete(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	token, err := service.Token(sess)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Menu.Delete(r.Context(), token, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleManageExport(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if _, err := service.Token(sess); err != nil {
		s.fail(w, r, err)
		return
	}
	items, err := s.deps.Menu.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	now := time.Now()
	var buf bytes.Buffer
	if err := export.WriteMenu(&buf, items, now); err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(now)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
