package domain

import "time"

type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Code        string    `json:"code"`
	PriceCents  int64     `json:"priceCents"`
	Stock       int       `json:"stock"`
	Status      bool      `json:"status"`
	Category    string    `json:"category"`
	Thumbnails  []string  `json:"thumbnails,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
