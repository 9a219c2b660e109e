package domain

import "time"

type Cart struct {
	ID         string     `json:"id"`
	CustomerID *string    `json:"customerId,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	Lines      []CartLine `json:"products"`
}

type CartLine struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// PopulatedLine joins a cart line with the current product record.
// Product is nil when the referenced product has been deleted; ProductID
// is always the stored reference.
type PopulatedLine struct {
	ProductID string   `json:"productId"`
	Product   *Product `json:"product"`
	Quantity  int      `json:"quantity"`
}

type PopulatedCart struct {
	ID         string          `json:"id"`
	CustomerID *string         `json:"customerId,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	Lines      []PopulatedLine `json:"products"`
}
