package domain

// PurchasedProduct is one line of a completed checkout as shown on the success page.
type PurchasedProduct struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
	Quantity int64  `json:"quantity"`
}

// OrderSummary is the success page payload. CustomerName is nil when the
// provider did not capture customer details.
type OrderSummary struct {
	CustomerName *string            `json:"customerName"`
	Products     []PurchasedProduct `json:"products"`
}
