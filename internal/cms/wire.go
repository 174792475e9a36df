package cms

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"bistro/internal/models"
)

type listEnvelope struct {
	Data []json.RawMessage `json:"data"`
}

type singleEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// entryFields splits a record into its id and its field object. Records come
// either flat ({"id":1,"name":...}) or nested ({"id":1,"attributes":{...}}).
func entryFields(raw json.RawMessage) (models.FlexibleID, json.RawMessage, error) {
	var head struct {
		ID         models.FlexibleID `json:"id"`
		Attributes json.RawMessage   `json:"attributes"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", nil, err
	}
	fields := raw
	if len(head.Attributes) > 0 && !bytes.Equal(head.Attributes, []byte("null")) {
		fields = head.Attributes
	}
	return head.ID, fields, nil
}

type menuAttributes struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Price       models.FlexiblePrice `json:"price"`
	Category    string               `json:"category"`
	Image       json.RawMessage      `json:"image"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// imageURL pulls the URL out of the shapes the media field takes:
// {"data":{"attributes":{"url"}}}, {"data":{"url"}}, {"url"} or a plain string.
func imageURL(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var media struct {
		URL  string `json:"url"`
		Data *struct {
			URL        string `json:"url"`
			Attributes *struct {
				URL string `json:"url"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if json.Unmarshal(raw, &media) != nil {
		return ""
	}
	switch {
	case media.URL != "":
		return media.URL
	case media.Data != nil && media.Data.Attributes != nil:
		return media.Data.Attributes.URL
	case media.Data != nil:
		return media.Data.URL
	}
	return ""
}

// resolveURL prefixes relative media paths with the CMS base URL.
func resolveURL(baseURL, path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func decodeMenuItem(raw json.RawMessage, baseURL string) (models.MenuItem, error) {
	id, fields, err := entryFields(raw)
	if err != nil {
		return models.MenuItem{}, err
	}
	var attr menuAttributes
	if err := json.Unmarshal(fields, &attr); err != nil {
		return models.MenuItem{}, err
	}
	return models.RawMenuItem{
		ID:          id,
		Name:        attr.Name,
		Description: attr.Description,
		Price:       attr.Price,
		ImageURL:    resolveURL(baseURL, imageURL(attr.Image)),
		Category:    attr.Category,
		CreatedAt:   attr.CreatedAt,
		UpdatedAt:   attr.UpdatedAt,
	}.Normalize()
}

type reviewAttributes struct {
	Text      string    `json:"text"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

func decodeReview(raw json.RawMessage, menuID string) (models.Review, error) {
	id, fields, err := entryFields(raw)
	if err != nil {
		return models.Review{}, err
	}
	var attr reviewAttributes
	if err := json.Unmarshal(fields, &attr); err != nil {
		return models.Review{}, err
	}
	return models.Review{
		ID:        string(id),
		Text:      attr.Text,
		Rating:    int(math.Round(attr.Rating)),
		MenuID:    menuID,
		CreatedAt: attr.CreatedAt,
	}, nil
}

type reviewPayload struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
	Menu   struct {
		Connect []interface{} `json:"connect"`
	} `json:"menu"`
}

// relationID sends numeric ids as numbers, document ids as strings.
func relationID(id string) interface{} {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

type menuPayload struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

type loginPayload struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	JWT  string `json:"jwt"`
	User struct {
		ID       models.FlexibleID `json:"id"`
		Username string            `json:"username"`
		Email    string            `json:"email"`
	} `json:"user"`
}

type uploadedFile struct {
	ID  models.FlexibleID `json:"id"`
	URL string            `json:"url"`
}
