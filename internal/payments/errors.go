package payments

import "errors"

var (
	ErrNotFound    = errors.New("payments: resource not found")
	ErrUnavailable = errors.New("payments: provider unavailable")
)
