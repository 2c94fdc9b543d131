package domain

import (
	"encoding/json"
	"fmt"
)

// EncodeCart serializes a cart for storage outside the process.
func EncodeCart(c *Cart) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal cart failed: %w", err)
	}
	return data, nil
}

// DecodeCart is the inverse of EncodeCart. Items are re-added one by one so a
// tampered or stale payload can never produce duplicate IDs.
func DecodeCart(data []byte) (*Cart, error) {
	var raw Cart
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}

	cart := raw
	cart.Items = make([]CartItem, 0, len(raw.Items))
	for _, item := range raw.Items {
		if !cart.Contains(item.ID) {
			cart.Items = append(cart.Items, item)
		}
	}
	return &cart, nil
}
