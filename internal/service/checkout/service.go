// Package checkout reconciles a cart's requested quantities against live
// stock and turns the purchasable subset into an immutable ticket.
package checkout

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
	productrepo "storefront/internal/repository/product"
	ticketrepo "storefront/internal/repository/ticket"
	"github.com/google/uuid"
)

const (
	ReasonProductNotFound   = "product not found"
	ReasonInsufficientStock = "insufficient stock"
)

// UnpurchasedLine reports a cart line that could not be fulfilled and why.
type UnpurchasedLine struct {
	ProductID         string `json:"productId"`
	Title             string `json:"title,omitempty"`
	RequestedQuantity int    `json:"requestedQuantity,omitempty"`
	AvailableStock    int    `json:"availableStock"`
	Reason            string `json:"reason"`
}

// Result is the outcome of one purchase call. Ticket is nil when nothing
// was purchasable; Unpurchased is empty on a fully fulfilled purchase.
type Result struct {
	Ticket         *domain.Ticket    `json:"ticket,omitempty"`
	Unpurchased    []UnpurchasedLine `json:"productsNotPurchased"`
	FullyPurchased bool              `json:"fullyPurchased"`
}

type cartStore interface {
	GetPopulated(ctx context.Context, id string) (*domain.PopulatedCart, error)
	ReplaceLines(ctx context.Context, cartID string, lines []domain.CartLine) error
}

type productStore interface {
	DecrementStock(ctx context.Context, id string, amount int) error
}

type ticketStore interface {
	Create(ctx context.Context, t domain.Ticket) (*domain.Ticket, error)
}

type Service struct {
	carts    cartStore
	products productStore
	tickets  ticketStore
	logger   *log.Logger
}

func New(carts cartrepo.Repository, products productrepo.Repository, tickets ticketrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{carts: carts, products: products, tickets: tickets, logger: logger}
}

// Purchase checks out the cart for the given purchaser. Each line ends up
// either on the returned ticket or in the unpurchased set, never dropped.
//
// Lines are first classified against the stock read from the populated
// cart; the stock decrement itself is conditional at the store level, so a
// line that loses a concurrent race between classification and commit is
// reclassified as unpurchased rather than driving stock negative. The
// ticket records only lines whose decrement actually committed, which is
// why no rollback path is needed.
func (s *Service) Purchase(ctx context.Context, cartID, purchaser string) (*Result, error) {
	cart, err := s.carts.GetPopulated(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	var purchasable []domain.TicketLine
	var unpurchased []UnpurchasedLine

	for _, line := range cart.Lines {
		switch {
		case line.Product == nil:
			unpurchased = append(unpurchased, UnpurchasedLine{
				ProductID:         line.ProductID,
				RequestedQuantity: line.Quantity,
				Reason:            ReasonProductNotFound,
			})
		case line.Product.Stock >= line.Quantity:
			purchasable = append(purchasable, domain.TicketLine{
				ProductID:  line.ProductID,
				Title:      line.Product.Title,
				PriceCents: line.Product.PriceCents,
				Quantity:   line.Quantity,
			})
		default:
			unpurchased = append(unpurchased, UnpurchasedLine{
				ProductID:         line.ProductID,
				Title:             line.Product.Title,
				RequestedQuantity: line.Quantity,
				AvailableStock:    line.Product.Stock,
				Reason:            ReasonInsufficientStock,
			})
		}
	}

	if len(purchasable) == 0 {
		return &Result{Unpurchased: unpurchased}, nil
	}

	// Commit phase. A decrement that fails with a StockError lost a race
	// against a concurrent purchase; the line moves to the unpurchased set.
	var committed []domain.TicketLine
	var total int64
	for _, line := range purchasable {
		err := s.products.DecrementStock(ctx, line.ProductID, line.Quantity)
		switch {
		case err == nil:
			committed = append(committed, line)
			total += line.PriceCents * int64(line.Quantity)
		case errors.Is(err, domain.ErrNotFound):
			unpurchased = append(unpurchased, UnpurchasedLine{
				ProductID:         line.ProductID,
				Title:             line.Title,
				RequestedQuantity: line.Quantity,
				Reason:            ReasonProductNotFound,
			})
		default:
			var stockErr *domain.StockError
			if !errors.As(err, &stockErr) {
				return nil, err
			}
			s.logger.Printf("checkout: lost stock race on product %s (requested %d, available %d)", line.ProductID, line.Quantity, stockErr.Available)
			unpurchased = append(unpurchased, UnpurchasedLine{
				ProductID:         line.ProductID,
				Title:             line.Title,
				RequestedQuantity: line.Quantity,
				AvailableStock:    stockErr.Available,
				Reason:            ReasonInsufficientStock,
			})
		}
	}

	if len(committed) == 0 {
		return &Result{Unpurchased: unpurchased}, nil
	}

	ticket, err := s.tickets.Create(ctx, domain.Ticket{
		Code:        uuid.NewString(),
		AmountCents: total,
		Purchaser:   purchaser,
		Lines:       committed,
	})
	if err != nil {
		return nil, err
	}

	remaining := remainingLines(cart.Lines, unpurchased)
	if err := s.carts.ReplaceLines(ctx, cartID, remaining); err != nil {
		return nil, err
	}

	s.logger.Printf("checkout: cart=%s ticket=%s purchased=%d unpurchased=%d amount=%d", cartID, ticket.Code, len(committed), len(unpurchased), total)
	return &Result{
		Ticket:         ticket,
		Unpurchased:    unpurchased,
		FullyPurchased: len(unpurchased) == 0,
	}, nil
}

// remainingLines keeps the cart lines that were not purchased, in their
// original order and with their original quantities.
func remainingLines(lines []domain.PopulatedLine, unpurchased []UnpurchasedLine) []domain.CartLine {
	keep := make(map[string]struct{}, len(unpurchased))
	for _, u := range unpurchased {
		keep[u.ProductID] = struct{}{}
	}
	remaining := []domain.CartLine{}
	for _, line := range lines {
		if _, ok := keep[line.ProductID]; ok {
			remaining = append(remaining, domain.CartLine{ProductID: line.ProductID, Quantity: line.Quantity})
		}
	}
	return remaining
}
