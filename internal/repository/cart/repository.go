package cart

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, customerID *string) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	// GetPopulated joins each line with the current product record. Lines whose
	// product has been deleted come back with a nil Product.
	GetPopulated(ctx context.Context, id string) (*domain.PopulatedCart, error)
	AddLine(ctx context.Context, cartID, productID string, quantity int) error
	RemoveLine(ctx context.Context, cartID, productID string) error
	SetLineQuantity(ctx context.Context, cartID, productID string, quantity int) error
	// ReplaceLines swaps the cart's contents for the given lines, preserving
	// their order. The whole replacement happens in one transaction.
	ReplaceLines(ctx context.Context, cartID string, lines []domain.CartLine) error
	Clear(ctx context.Context, cartID string) error
}
