package product

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

// feedPublisher receives the refreshed product list after catalog mutations.
type feedPublisher interface {
	Publish(products []domain.Product)
}

type repo interface {
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByCode(ctx context.Context, code string) (*domain.Product, error)
	List(ctx context.Context, opts productrepo.ListOptions) ([]domain.Product, int, error)
	Update(ctx context.Context, id string, in productrepo.UpdateInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo repo
	feed feedPublisher
}

func New(r productrepo.Repository, feed feedPublisher) *Service {
	return &Service{repo: r, feed: feed}
}

// ThumbnailList accepts either a JSON array of strings or a single
// comma-separated string and normalizes both into an ordered list of
// non-empty entries.
type ThumbnailList []string

func (t *ThumbnailList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = normalizeThumbnails(list)
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*t = normalizeThumbnails(strings.Split(single, ","))
	return nil
}

func normalizeThumbnails(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type CreateInput struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Code        string        `json:"code"`
	PriceCents  *int64        `json:"priceCents"`
	Stock       *int          `json:"stock"`
	Status      *bool         `json:"status"`
	Category    string        `json:"category"`
	Thumbnails  ThumbnailList `json:"thumbnails"`
}

type UpdateInput struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	Code        *string       `json:"code"`
	PriceCents  *int64        `json:"priceCents"`
	Stock       *int          `json:"stock"`
	Status      *bool         `json:"status"`
	Category    *string       `json:"category"`
	Thumbnails  ThumbnailList `json:"thumbnails"`
}

// ListInput mirrors the listing query string. Query understands the
// "category:<name>" and "status:<bool>" prefixes; anything else is a
// free-text match on title, description and category.
type ListInput struct {
	Limit int
	Page  int
	Sort  string
	Query string
}

type ListResult struct {
	Products   []domain.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

type Pagination struct {
	TotalDocs   int  `json:"totalDocs"`
	TotalPages  int  `json:"totalPages"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	HasPrevPage bool `json:"hasPrevPage"`
	HasNextPage bool `json:"hasNextPage"`
	PrevPage    *int `json:"prevPage"`
	NextPage    *int `json:"nextPage"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.NewValidationError("title", "required")
	}
	if strings.TrimSpace(in.Code) == "" {
		return nil, domain.NewValidationError("code", "required")
	}
	if in.PriceCents == nil {
		return nil, domain.NewValidationError("priceCents", "required")
	}
	if *in.PriceCents < 0 {
		return nil, domain.NewValidationError("priceCents", "must not be negative")
	}
	if in.Stock == nil {
		return nil, domain.NewValidationError("stock", "required")
	}
	if *in.Stock < 0 {
		return nil, domain.NewValidationError("stock", "must not be negative")
	}

	if _, err := s.repo.GetByCode(ctx, in.Code); err == nil {
		return nil, domain.NewValidationError("code", "a product with this code already exists")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	status := true
	if in.Status != nil {
		status = *in.Status
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = "general"
	}

	created, err := s.repo.Create(ctx, domain.Product{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Code:        strings.TrimSpace(in.Code),
		PriceCents:  *in.PriceCents,
		Stock:       *in.Stock,
		Status:      status,
		Category:    category,
		Thumbnails:  in.Thumbnails,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewValidationError("code", "a product with this code already exists")
		}
		return nil, err
	}
	s.broadcast(ctx)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, in ListInput) (*ListResult, error) {
	opts := productrepo.ListOptions{Limit: in.Limit, Page: in.Page}
	switch in.Sort {
	case "asc", "desc":
		opts.Sort = in.Sort
	}

	query := strings.TrimSpace(in.Query)
	switch {
	case query == "":
	case strings.HasPrefix(strings.ToLower(query), "category:"):
		opts.Category = strings.TrimSpace(query[len("category:"):])
	case strings.HasPrefix(strings.ToLower(query), "status:"):
		raw := strings.ToLower(strings.TrimSpace(query[len("status:"):]))
		v := raw == "true" || raw == "available" || raw == "1"
		opts.Status = &v
	default:
		opts.Query = query
	}

	products, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}

	pg := Pagination{
		TotalDocs:   total,
		TotalPages:  totalPages,
		Page:        page,
		Limit:       limit,
		HasPrevPage: page > 1,
		HasNextPage: page < totalPages,
	}
	if pg.HasPrevPage {
		prev := page - 1
		pg.PrevPage = &prev
	}
	if pg.HasNextPage {
		next := page + 1
		pg.NextPage = &next
	}
	return &ListResult{Products: products, Pagination: pg}, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Product, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, domain.NewValidationError("title", "must not be empty")
	}
	if in.PriceCents != nil && *in.PriceCents < 0 {
		return nil, domain.NewValidationError("priceCents", "must not be negative")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return nil, domain.NewValidationError("stock", "must not be negative")
	}
	if in.Code != nil {
		code := strings.TrimSpace(*in.Code)
		if code == "" {
			return nil, domain.NewValidationError("code", "must not be empty")
		}
		existing, err := s.repo.GetByCode(ctx, code)
		if err == nil && existing.ID != id {
			return nil, domain.NewValidationError("code", "a product with this code already exists")
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, productrepo.UpdateInput{
		Title:       in.Title,
		Description: in.Description,
		Code:        in.Code,
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
		Status:      in.Status,
		Category:    in.Category,
		Thumbnails:  in.Thumbnails,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewValidationError("code", "a product with this code already exists")
		}
		return nil, err
	}
	s.broadcast(ctx)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	existed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if existed {
		s.broadcast(ctx)
	}
	return existed, nil
}

// ParseSort keeps only the supported sort directions.
func ParseSort(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "asc":
		return "asc"
	case "desc":
		return "desc"
	}
	return ""
}

// ParsePositive parses a positive integer query param, falling back to def.
func ParsePositive(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func (s *Service) broadcast(ctx context.Context) {
	if s.feed == nil {
		return
	}
	products, _, err := s.repo.List(ctx, productrepo.ListOptions{Limit: 1000})
	if err != nil {
		return
	}
	s.feed.Publish(products)
}
