package checkout

import "errors"

var (
	ErrEmptyCart           = errors.New("cart is empty, nothing to checkout")
	ErrSessionNotFound     = errors.New("checkout session not found")
	ErrProviderUnavailable = errors.New("payments provider unavailable")
	ErrMalformedSession    = errors.New("malformed checkout session")
)
