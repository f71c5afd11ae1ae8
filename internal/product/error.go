package product

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSlugTaken       = errors.New("a product with this slug already exists")
	ErrInvalidStatus   = errors.New("invalid product status")
	ErrTitleRequired   = errors.New("title is required")
	ErrInvalidSlug     = errors.New("slug must contain letters or digits")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrInvalidStock    = errors.New("stock must not be negative")
)

// Storefront-facing messages, used verbatim by the HTTP layer.
const (
	MsgNotFound       = "Product not found in Database"
	MsgNotFoundUpdate = "Product not found to update"
	MsgNotFoundDelete = "Product not found to delete"
	MsgDeleted        = "Product deleted successfully"
)
