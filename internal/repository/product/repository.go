package product

import (
	"context"

	"storefront/internal/domain"
)

// ListOptions narrows and orders a product listing.
type ListOptions struct {
	Limit    int
	Page     int
	Sort     string // "asc" or "desc" by price, empty for insertion order
	Category string
	Status   *bool
	Query    string // free-text match on title/description/category
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Title       *string
	Description *string
	Code        *string
	PriceCents  *int64
	Stock       *int
	Status      *bool
	Category    *string
	Thumbnails  []string
}

type Repository interface {
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByCode(ctx context.Context, code string) (*domain.Product, error)
	List(ctx context.Context, opts ListOptions) ([]domain.Product, int, error)
	Update(ctx context.Context, id string, in UpdateInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) (bool, error)
	DecrementStock(ctx context.Context, id string, amount int) error
}
