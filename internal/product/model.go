package product

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusDraft    Status = "draft"
	StatusArchived Status = "archived"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusActive, StatusDraft, StatusArchived:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

type Media struct {
	URL  string    `json:"url"`
	Type MediaType `json:"type"`
}

// MediaList is stored as a JSONB array; the first element is the cover.
type MediaList []Media

func (m MediaList) Value() (driver.Value, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m)
}

func (m *MediaList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = MediaList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported media column type %T", src)
	}
	return json.Unmarshal(raw, m)
}

type Product struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         int64     `json:"price"`
	OriginalPrice int64     `json:"originalPrice"`
	Stock         int       `json:"stock"`
	Media         MediaList `json:"media"`
	Category      string    `json:"category"`
	Tags          []string  `json:"tags"`
	Features      []string  `json:"features"`
	IconType      string    `json:"iconType,omitempty"`
	ThemeColor    string    `json:"themeColor,omitempty"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Cover returns the first media URL, or "" when the product has no media.
func (p Product) Cover() string {
	if len(p.Media) == 0 {
		return ""
	}
	return p.Media[0].URL
}

func (p Product) IsVisible() bool {
	return p.Status == StatusActive
}

// DiscountPercent is the strike-through saving shown next to the price.
func (p Product) DiscountPercent() int {
	if p.OriginalPrice <= p.Price || p.OriginalPrice == 0 {
		return 0
	}
	return int((p.OriginalPrice - p.Price) * 100 / p.OriginalPrice)
}

type ListOptions struct {
	IncludeHidden bool
}
