package domain

// Product is the product page payload. It has the same shape as CartItem so
// that adding to the cart is a plain copy of the page props.
type Product struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ImageURL       string `json:"imageUrl"`
	Price          int64  `json:"price"`
	Description    string `json:"description"`
	DefaultPriceID string `json:"defaultPriceId"`
}

func (p Product) CartItem() CartItem {
	return CartItem{
		ID:             p.ID,
		Name:           p.Name,
		ImageURL:       p.ImageURL,
		Price:          p.Price,
		Description:    p.Description,
		DefaultPriceID: p.DefaultPriceID,
	}
}
