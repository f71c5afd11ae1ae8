package cart

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidProduct      = errors.New("product id is required")
	ErrLinkIndexOutOfRange = errors.New("link index out of range")

	// -- Resource State --
	ErrItemNotFound = errors.New("cart item not found")

	// -- Storage --
	ErrMalformedCart = errors.New("stored cart is malformed")
)
