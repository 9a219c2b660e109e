package cart

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
	productrepo "storefront/internal/repository/product"
)

type cartRepo interface {
	Create(ctx context.Context, customerID *string) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetPopulated(ctx context.Context, id string) (*domain.PopulatedCart, error)
	AddLine(ctx context.Context, cartID, productID string, quantity int) error
	RemoveLine(ctx context.Context, cartID, productID string) error
	SetLineQuantity(ctx context.Context, cartID, productID string, quantity int) error
	ReplaceLines(ctx context.Context, cartID string, lines []domain.CartLine) error
	Clear(ctx context.Context, cartID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, opts productrepo.ListOptions) ([]domain.Product, int, error)
}

type feedPublisher interface {
	Publish(products []domain.Product)
}

type Service struct {
	repo     cartRepo
	products productRepo
	feed     feedPublisher
}

func New(repo cartrepo.Repository, products productrepo.Repository, feed feedPublisher) *Service {
	return &Service{repo: repo, products: products, feed: feed}
}

func (s *Service) Create(ctx context.Context) (*domain.Cart, error) {
	return s.repo.Create(ctx, nil)
}

// CreateForCustomer builds the cart a customer receives at registration.
func (s *Service) CreateForCustomer(ctx context.Context, customerID string) (*domain.Cart, error) {
	return s.repo.Create(ctx, &customerID)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Cart, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetPopulated(ctx context.Context, id string) (*domain.PopulatedCart, error) {
	return s.repo.GetPopulated(ctx, id)
}

// AddLine puts quantity units of a product into the cart. A line already
// holding the product has its quantity incremented instead of a duplicate
// line being created.
func (s *Service) AddLine(ctx context.Context, cartID, productID string, quantity int) (*domain.PopulatedCart, error) {
	if quantity < 1 {
		return nil, domain.NewValidationError("quantity", "must be a positive integer")
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("product", "product not found")
		}
		return nil, err
	}
	if err := s.repo.AddLine(ctx, cartID, productID, quantity); err != nil {
		return nil, err
	}
	s.broadcast(ctx)
	return s.repo.GetPopulated(ctx, cartID)
}

func (s *Service) RemoveLine(ctx context.Context, cartID, productID string) (*domain.PopulatedCart, error) {
	if err := s.repo.RemoveLine(ctx, cartID, productID); err != nil {
		return nil, err
	}
	s.broadcast(ctx)
	return s.repo.GetPopulated(ctx, cartID)
}

func (s *Service) SetLineQuantity(ctx context.Context, cartID, productID string, quantity int) (*domain.PopulatedCart, error) {
	if quantity < 1 {
		return nil, domain.NewValidationError("quantity", "must be a positive integer")
	}
	if err := s.repo.SetLineQuantity(ctx, cartID, productID, quantity); err != nil {
		return nil, err
	}
	s.broadcast(ctx)
	return s.repo.GetPopulated(ctx, cartID)
}

// ReplaceLines swaps the cart's contents wholesale. Every supplied line is
// validated before any mutation is applied, so a bad line leaves the cart
// untouched.
func (s *Service) ReplaceLines(ctx context.Context, cartID string, lines []domain.CartLine) (*domain.PopulatedCart, error) {
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, domain.NewValidationError("quantity", "must be a positive integer")
		}
		if _, dup := seen[line.ProductID]; dup {
			return nil, domain.NewValidationError("product", fmt.Sprintf("product %s listed more than once", line.ProductID))
		}
		seen[line.ProductID] = struct{}{}
		if _, err := s.products.GetByID(ctx, line.ProductID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewValidationError("product", fmt.Sprintf("product %s not found", line.ProductID))
			}
			return nil, err
		}
	}
	if err := s.repo.ReplaceLines(ctx, cartID, lines); err != nil {
		return nil, err
	}
	s.broadcast(ctx)
	return s.repo.GetPopulated(ctx, cartID)
}

func (s *Service) Clear(ctx context.Context, cartID string) (*domain.PopulatedCart, error) {
	if err := s.repo.Clear(ctx, cartID); err != nil {
		return nil, err
	}
	s.broadcast(ctx)
	return s.repo.GetPopulated(ctx, cartID)
}

func (s *Service) broadcast(ctx context.Context) {
	if s.feed == nil || s.products == nil {
		return
	}
	products, _, err := s.products.List(ctx, productrepo.ListOptions{Limit: 1000})
	if err != nil {
		return
	}
	s.feed.Publish(products)
}
