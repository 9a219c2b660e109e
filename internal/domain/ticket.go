package domain

import "time"

// Ticket is an immutable purchase record. Lines snapshot the product title
// and price at purchase time and are never re-read from the catalog.
type Ticket struct {
	ID          string       `json:"id"`
	Code        string       `json:"code"`
	PurchasedAt time.Time    `json:"purchase_datetime"`
	AmountCents int64        `json:"amountCents"`
	Purchaser   string       `json:"purchaser"`
	Lines       []TicketLine `json:"products"`
}

type TicketLine struct {
	ProductID  string `json:"product"`
	Title      string `json:"title"`
	PriceCents int64  `json:"priceCents"`
	Quantity   int    `json:"quantity"`
}

// Subtotal is the line's contribution to the ticket amount.
func (l TicketLine) Subtotal() int64 {
	return l.PriceCents * int64(l.Quantity)
}
