package cart

import "daztao-be/internal/product"

// Item is one cart line. Links holds one customization slot per unit.
// JSON keys match the storefront's persisted cart so old snapshots still load.
type Item struct {
	ProductID string   `json:"_id"`
	Slug      string   `json:"slug"`
	Title     string   `json:"title"`
	Price     int64    `json:"price"`
	Image     string   `json:"image"`
	Quantity  int      `json:"quantity"`
	Links     []string `json:"links"`
}

func (i Item) clone() Item {
	links := make([]string, len(i.Links))
	copy(links, i.Links)
	i.Links = links
	return i
}

func (i Item) valid() bool {
	return i.ProductID != "" && i.Quantity >= 1 && len(i.Links) == i.Quantity
}

// Product is what the storefront hands to Add.
type Product struct {
	ID    string
	Slug  string
	Title string
	Price int64
	Image string
}

func FromProduct(p product.Product) Product {
	return Product{
		ID:    p.ID,
		Slug:  p.Slug,
		Title: p.Title,
		Price: p.Price,
		Image: p.Cover(),
	}
}
