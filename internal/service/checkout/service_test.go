package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"storefront/internal/domain"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubCartStore struct {
	populated     *domain.PopulatedCart
	getErr        error
	replaceCalled bool
	replacedWith  []domain.CartLine
	replaceErr    error
}

func (s *stubCartStore) GetPopulated(_ context.Context, _ string) (*domain.PopulatedCart, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.populated, nil
}

func (s *stubCartStore) ReplaceLines(_ context.Context, _ string, lines []domain.CartLine) error {
	s.replaceCalled = true
	s.replacedWith = lines
	return s.replaceErr
}

type stubProductStore struct {
	decrements map[string]int
	errs       map[string]error
}

func (s *stubProductStore) DecrementStock(_ context.Context, id string, amount int) error {
	if err, ok := s.errs[id]; ok {
		return err
	}
	if s.decrements == nil {
		s.decrements = make(map[string]int)
	}
	s.decrements[id] += amount
	return nil
}

type stubTicketStore struct {
	created   *domain.Ticket
	createErr error
}

func (s *stubTicketStore) Create(_ context.Context, t domain.Ticket) (*domain.Ticket, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	out := t
	out.ID = "ticket-1"
	s.created = &out
	return &out, nil
}

func newService(carts *stubCartStore, products *stubProductStore, tickets *stubTicketStore) *Service {
	return &Service{carts: carts, products: products, tickets: tickets, logger: discardLogger()}
}

func populated(lines ...domain.PopulatedLine) *domain.PopulatedCart {
	return &domain.PopulatedCart{ID: "cart-1", Lines: lines}
}

func line(id string, qty, stock int, priceCents int64) domain.PopulatedLine {
	return domain.PopulatedLine{
		ProductID: id,
		Quantity:  qty,
		Product: &domain.Product{
			ID:         id,
			Title:      "Product " + id,
			Code:       "CODE-" + id,
			PriceCents: priceCents,
			Stock:      stock,
			Status:     true,
		},
	}
}

func TestPurchaseCartNotFound(t *testing.T) {
	carts := &stubCartStore{getErr: domain.ErrNotFound}
	svc := newService(carts, &stubProductStore{}, &stubTicketStore{})
	_, err := svc.Purchase(context.Background(), "missing", "buyer@example.com")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPurchaseEmptyCart(t *testing.T) {
	carts := &stubCartStore{populated: populated()}
	products := &stubProductStore{}
	tickets := &stubTicketStore{}
	svc := newService(carts, products, tickets)

	_, err := svc.Purchase(context.Background(), "cart-1", "buyer@example.com")
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected empty cart error, got %v", err)
	}
	if len(products.decrements) != 0 {
		t.Fatalf("empty cart must not touch stock, got %v", products.decrements)
	}
	if tickets.created != nil {
		t.Fatalf("empty cart must not create a ticket")
	}
	if carts.replaceCalled {
		t.Fatalf("empty cart must not rewrite cart lines")
	}
}

func TestPurchaseFullSuccess(t *testing.T) {
	carts := &stubCartStore{populated: populated(line("p1", 2, 5, 1000))}
	products := &stubProductStore{}
	tickets := &stubTicketStore{}
	svc := newService(carts, products, tickets)

	result, err := svc.Purchase(context.Background(), "cart-1", "buyer@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Ticket == nil {
		t.Fatalf("expected a ticket")
	}
	if !result.FullyPurchased {
		t.Fatalf("expected fully purchased outcome")
	}
	if result.Ticket.AmountCents != 2000 {
		t.Fatalf("expected amount 2000, got %d", result.Ticket.AmountCents)
	}
	if result.Ticket.Purchaser != "buyer@example.com" {
		t.Fatalf("unexpected purchaser %q", result.Ticket.Purchaser)
	}
	if result.Ticket.Code == "" {
		t.Fatalf("expected a generated ticket code")
	}
	if products.decrements["p1"] != 2 {
		t.Fatalf("expected stock decrement of 2, got %d", products.decrements["p1"])
	}
	if !carts.replaceCalled || len(carts.replacedWith) != 0 {
		t.Fatalf("expected cart drained to empty, got %v", carts.replacedWith)
	}
	if len(result.Unpurchased) != 0 {
		t.Fatalf("expected no unpurchased lines, got %v", result.Unpurchased)
	}
}

func TestPurchasePartial(t *testing.T) {
	carts := &stubCartStore{populated: populated(
		line("x", 1, 0, 500),
		line("y", 1, 10, 750),
	)}
	products := &stubProductStore{}
	tickets := &stubTicketStore{}
	svc := newService(carts, products, tickets)

	result, err := svc.Purchase(context.Background(), "cart-1", "buyer@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Ticket == nil {
		t.Fatalf("expected a ticket for the partial purchase")
	}
	if result.FullyPurchased {
		t.Fatalf("expected partial outcome")
	}
	if len(result.Ticket.Lines) != 1 || result.Ticket.Lines[0].ProductID != "y" {
		t.Fatalf("expected ticket to contain only y, got %v", result.Ticket.Lines)
	}
	if result.Ticket.AmountCents != 750 {
		t.Fatalf("expected amount 750, got %d", result.Ticket.AmountCents)
	}
	if len(result.Unpurchased) != 1 {
		t.Fatalf("expected one unpurchased line, got %v", result.Unpurchased)
	}
	u := result.Unpurchased[0]
	if u.ProductID != "x" || u.Reason != ReasonInsufficientStock || u.RequestedQuantity != 1 || u.AvailableStock != 0 {
		t.Fatalf("unexpected unpurchased line %+v", u)
	}
	if len(carts.replacedWith) != 1 || carts.replacedWith[0].ProductID != "x" || carts.replacedWith[0].Quantity != 1 {
		t.Fatalf("expected cart to retain x's line, got %v", carts.replacedWith)
	}
	if _, touched := products.decrements["x"]; touched {
		t.Fatalf("x must not be decremented")
	}
}

func TestPurchaseDeletedProduct(t *testing.T) {
	carts := &stubCartStore{populated: populated(
		domain.PopulatedLine{ProductID: "ghost", Quantity: 3, Product: nil},
	)}
	products := &stubProductStore{}
	tickets := &stubTicketStore{}
	svc := newService(carts, products, tickets)

	result, err := svc.Purchase(context.Background(), "cart-1", "buyer@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Ticket != nil {
		t.Fatalf("expected no ticket on full failure")
	}
	if tickets.created != nil {
		t.Fatalf("ticket store must not be touched on full failure")
	}
	if carts.replaceCalled {
		t.Fatalf("cart must be left unmodified on full failure")
	}
	if len(result.Unpurchased) != 1 || result.Unpurchased[0].Reason != ReasonProductNotFound {
		t.Fatalf("unexpected unpurchased set %+v", result.Unpurchased)
	}
	if result.Unpurchased[0].ProductID != "ghost" {
		t.Fatalf("unexpected product id %q", result.Unpurchased[0].ProductID)
	}
}

func TestPurchaseAllOutOfStock(t *testing.T) {
	carts := &stubCartStore{populated: populated(line("p1", 5, 2, 100))}
	products := &stubProductStore{}
	tickets := &stubTicketStore{}
	svc := newService(carts, products, tickets)

	result, err := svc.Purchase(context.Background(), "cart-1", "buyer@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Ticket != nil || tickets.created != nil {
		t.Fatalf("expected no ticket")
	}
	if len(products.decrements) != 0 {
		t.Fatalf("no stock must be decremented, got %v", products.decrements)
	}
	if carts.replaceCalled {
		t.Fatalf("cart must not be rewritten")
	}
	u := result.Unpurchased[0]
	if u.RequestedQuantity != 5 || u.AvailableStock != 2 {
		t.Fatalf("expected requested/available diagnostics, got %+v", u)
	}
}

func TestPurchaseEveryLineAccountedFor(t *testing.T) {
	carts := &stubCartStore{populated: populated(
		line("a", 1, 10, 100),
		line("b", 4, 2, 200),
		domain.PopulatedLine{ProductID: "c", Quantity: 1, Product: nil},
		line("d", 2, 2, 300),
	)}
	svc := newService(carts, &stubProductStore{}, &stubTicketStore{})

	result, err := svc.Purchase(context.Background(), "cart-1", "buyer@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[string]int{}
	for _, l := range result.Ticket.Lines {
		seen[l.ProductID]++
	}
	for _, u := range result.Unpurchased {
		seen[u.ProductID]++
	}
	for _, id := range []string{"a", "b", "c", "d"} {
		if seen[id] != 1 {
			t.Fatalf("line %s seen %d times, want exactly once", id, seen[id])
		}
	}

	var sum int64
	for _, l := range result.Ticket.Lines {
		sum += l.Subtotal()
	}
	if result.Ticket.AmountCents != sum {
		t.Fatalf("amount %d != line subtotal sum %d", result.Ticket.AmountCents, sum)
	}
}

func TestPurchaseSurvivorOrderPreserved(t *testing.T) {
	carts := &stubCartStore{populated: populated(
		line("a", 9, 1, 100),
		line("b", 1, 5, 100),
		line("c", 9, 1, 100),
	)}
	svc := newService(carts, &stubProductStore{}, &stubTicketStore{})

	_, err := svc.Purchase(context.Background(), "cart-1", "buyer@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(carts.replacedWith) != 2 || carts.replacedWith[0].ProductID != "a" || carts.replacedWith[1].ProductID != "c" {
		t.Fatalf("expected survivors [a c] in order, got %v", carts.replacedWith)
	}
}

func TestPurchaseLostStockRaceReclassifies(t *testing.T) {
	carts := &stubCartStore{populated: populated(
		line("won", 1, 5, 400),
		line("lost", 2, 5, 100),
	)}
	products := &stubProductStore{
		errs: map[string]error{
			"lost": &domain.StockError{ProductID: "lost", Requested: 2, Available: 1},
		},
	}
	svc := newService(carts, products, &stubTicketStore{})

	result, err := svc.Purchase(context.Background(), "cart-1", "buyer@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Ticket == nil || len(result.Ticket.Lines) != 1 || result.Ticket.Lines[0].ProductID != "won" {
		t.Fatalf("expected ticket with only the committed line, got %+v", result.Ticket)
	}
	if result.Ticket.AmountCents != 400 {
		t.Fatalf("amount must exclude the lost line, got %d", result.Ticket.AmountCents)
	}
	if result.FullyPurchased {
		t.Fatalf("expected partial outcome after lost race")
	}
	if len(result.Unpurchased) != 1 || result.Unpurchased[0].AvailableStock != 1 {
		t.Fatalf("expected reclassified line with live stock, got %+v", result.Unpurchased)
	}
	if len(carts.replacedWith) != 1 || carts.replacedWith[0].ProductID != "lost" {
		t.Fatalf("cart must retain the lost line, got %v", carts.replacedWith)
	}
}

func TestPurchaseDecrementInfrastructureError(t *testing.T) {
	carts := &stubCartStore{populated: populated(line("p1", 1, 5, 100))}
	products := &stubProductStore{errs: map[string]error{"p1": errors.New("db down")}}
	tickets := &stubTicketStore{}
	svc := newService(carts, products, tickets)

	_, err := svc.Purchase(context.Background(), "cart-1", "buyer@example.com")
	if err == nil || err.Error() != "db down" {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
	if tickets.created != nil {
		t.Fatalf("no ticket on infrastructure failure")
	}
}

func TestPurchaseTicketCreateError(t *testing.T) {
	carts := &stubCartStore{populated: populated(line("p1", 1, 5, 100))}
	svc := newService(carts, &stubProductStore{}, &stubTicketStore{createErr: errors.New("insert failed")})

	_, err := svc.Purchase(context.Background(), "cart-1", "buyer@example.com")
	if err == nil || err.Error() != "insert failed" {
		t.Fatalf("expected ticket create error, got %v", err)
	}
}
