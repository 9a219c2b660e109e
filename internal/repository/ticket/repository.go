package ticket

import (
	"context"

	"storefront/internal/domain"
)

// Repository is append-only by design: tickets are immutable purchase
// history, so no update operation is exposed.
type Repository interface {
	Create(ctx context.Context, t domain.Ticket) (*domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)
	ListByPurchaser(ctx context.Context, email string) ([]domain.Ticket, error)
	Delete(ctx context.Context, id string) (bool, error)
}
