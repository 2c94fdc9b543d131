package catalog

import "errors"

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProviderUnavailable = errors.New("product catalogue unavailable")
)
