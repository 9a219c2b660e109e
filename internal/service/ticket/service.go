package ticket

import (
	"context"
	"time"

	"storefront/internal/domain"
	ticketrepo "storefront/internal/repository/ticket"
)

type Service struct {
	repo ticketrepo.Repository
}

func New(repo ticketrepo.Repository) *Service {
	return &Service{repo: repo}
}

// View is the read-side shape of a ticket, with per-line subtotals
// precomputed for display.
type View struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	PurchasedAt time.Time  `json:"purchase_datetime"`
	AmountCents int64      `json:"amountCents"`
	Purchaser   string     `json:"purchaser"`
	Lines       []LineView `json:"products"`
}

type LineView struct {
	ProductID     string `json:"product"`
	Title         string `json:"title"`
	PriceCents    int64  `json:"priceCents"`
	Quantity      int    `json:"quantity"`
	SubtotalCents int64  `json:"subtotalCents"`
}

func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toView(*t), nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (*View, error) {
	t, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return toView(*t), nil
}

func (s *Service) ListByPurchaser(ctx context.Context, email string) ([]View, error) {
	tickets, err := s.repo.ListByPurchaser(ctx, email)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(tickets))
	for _, t := range tickets {
		views = append(views, *toView(t))
	}
	return views, nil
}

func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func toView(t domain.Ticket) *View {
	lines := make([]LineView, 0, len(t.Lines))
	for _, l := range t.Lines {
		lines = append(lines, LineView{
			ProductID:     l.ProductID,
			Title:         l.Title,
			PriceCents:    l.PriceCents,
			Quantity:      l.Quantity,
			SubtotalCents: l.Subtotal(),
		})
	}
	return &View{
		ID:          t.ID,
		Code:        t.Code,
		PurchasedAt: t.PurchasedAt,
		AmountCents: t.AmountCents,
		Purchaser:   t.Purchaser,
		Lines:       lines,
	}
}
