package product

import (
	"path"
	"strings"

	"daztao-be/internal/utils"
)

const defaultCategory = "Uncategorized"

var videoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mov":  true,
	".m4v":  true,
}

// Document is the inbound product shape. It accepts both the current media
// list and the legacy images/isVisible fields; Normalize folds the legacy
// fields away so nothing past this point has to know about them.
type Document struct {
	Slug          *string  `json:"slug"`
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Price         *int64   `json:"price"`
	OriginalPrice *int64   `json:"originalPrice"`
	Stock         *int     `json:"stock"`
	Media         []Media  `json:"media"`
	Images        []string `json:"images"`
	Category      *string  `json:"category"`
	Tags          []string `json:"tags"`
	Features      []string `json:"features"`
	IconType      *string  `json:"iconType"`
	ThemeColor    *string  `json:"themeColor"`
	Status        *string  `json:"status"`
	IsVisible     *bool    `json:"isVisible"`
}

// Normalize converts legacy fields in place: images become media entries
// when no media was sent, and isVisible becomes a status when no status was sent.
func (d *Document) Normalize() {
	if len(d.Media) == 0 && len(d.Images) > 0 {
		d.Media = make([]Media, 0, len(d.Images))
		for _, url := range d.Images {
			if strings.TrimSpace(url) == "" {
				continue
			}
			d.Media = append(d.Media, Media{URL: url})
		}
	}
	d.Images = nil

	for i := range d.Media {
		if d.Media[i].Type == "" {
			d.Media[i].Type = inferMediaType(d.Media[i].URL)
		}
	}

	if d.Status == nil && d.IsVisible != nil {
		s := string(StatusDraft)
		if *d.IsVisible {
			s = string(StatusActive)
		}
		d.Status = &s
	}
	d.IsVisible = nil
}

// NewProduct builds a validated product for creation.
func (d Document) NewProduct() (*Product, error) {
	d.Normalize()

	p := &Product{
		Category: defaultCategory,
		Status:   StatusActive,
		Media:    MediaList{},
		Tags:     []string{},
		Features: []string{},
	}
	if err := d.applyTo(p); err != nil {
		return nil, err
	}

	if p.Slug == "" {
		p.Slug = utils.Slugify(p.Title)
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Merge applies the fields present in d onto p.
func (d Document) Merge(p *Product) error {
	d.Normalize()
	if err := d.applyTo(p); err != nil {
		return err
	}
	return validate(p)
}

func (d Document) applyTo(p *Product) error {
	if d.Slug != nil {
		p.Slug = utils.Slugify(*d.Slug)
		if p.Slug == "" {
			return ErrInvalidSlug
		}
	}
	if d.Title != nil {
		p.Title = strings.TrimSpace(*d.Title)
	}
	if d.Description != nil {
		p.Description = *d.Description
	}
	if d.Price != nil {
		p.Price = *d.Price
	}
	if d.OriginalPrice != nil {
		p.OriginalPrice = *d.OriginalPrice
	}
	if d.Stock != nil {
		p.Stock = *d.Stock
	}
	if d.Media != nil {
		p.Media = MediaList(d.Media)
	}
	if d.Category != nil {
		p.Category = strings.TrimSpace(*d.Category)
		if p.Category == "" {
			p.Category = defaultCategory
		}
	}
	if d.Tags != nil {
		p.Tags = cleanList(d.Tags)
	}
	if d.Features != nil {
		p.Features = cleanList(d.Features)
	}
	if d.IconType != nil {
		p.IconType = *d.IconType
	}
	if d.ThemeColor != nil {
		p.ThemeColor = *d.ThemeColor
	}
	if d.Status != nil {
		s, err := ParseStatus(*d.Status)
		if err != nil {
			return err
		}
		p.Status = s
	}
	return nil
}

func validate(p *Product) error {
	switch {
	case p.Title == "":
		return ErrTitleRequired
	case p.Slug == "":
		return ErrInvalidSlug
	case p.Price < 0 || p.OriginalPrice < 0:
		return ErrInvalidPrice
	case p.Stock < 0:
		return ErrInvalidStock
	}
	return nil
}

func inferMediaType(url string) MediaType {
	clean := strings.ToLower(url)
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	if videoExtensions[path.Ext(clean)] {
		return MediaVideo
	}
	return MediaImage
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
