package product

import (
	"context"
	"errors"
	"os"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	created, err := repo.Create(ctx, domain.Product{
		Title:      "Prod 1",
		Code:       "P-1",
		PriceCents: 1500,
		Stock:      3,
		Status:     true,
		Category:   "tools",
		Thumbnails: []string{"/img/1.jpg"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected ID set")
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Code != "P-1" || got.PriceCents != 1500 || len(got.Thumbnails) != 1 {
		t.Fatalf("unexpected product %+v", got)
	}

	byCode, err := repo.GetByCode(ctx, "P-1")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if byCode.ID != created.ID {
		t.Fatalf("expected same product by code")
	}

	if _, err := repo.Create(ctx, domain.Product{Title: "Dup", Code: "P-1", Status: true}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("duplicate code: expected ErrAlreadyExists, got %v", err)
	}
}

func TestPostgres_ListFilters(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	seed := []domain.Product{
		{Title: "Red Mug", Code: "M-1", PriceCents: 1200, Stock: 5, Status: true, Category: "kitchen"},
		{Title: "Blue Mug", Code: "M-2", PriceCents: 900, Stock: 5, Status: false, Category: "kitchen"},
		{Title: "Hammer", Code: "T-1", PriceCents: 2500, Stock: 5, Status: true, Category: "tools"},
	}
	for _, p := range seed {
		if _, err := repo.Create(ctx, p); err != nil {
			t.Fatalf("seed %s: %v", p.Code, err)
		}
	}

	list, total, err := repo.List(ctx, ListOptions{Category: "kitchen"})
	if err != nil {
		t.Fatalf("List category: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("expected 2 kitchen products, got total=%d len=%d", total, len(list))
	}

	active := true
	list, total, err = repo.List(ctx, ListOptions{Status: &active})
	if err != nil {
		t.Fatalf("List status: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 active products, got %d", total)
	}

	list, _, err = repo.List(ctx, ListOptions{Query: "mug", Sort: "asc"})
	if err != nil {
		t.Fatalf("List query: %v", err)
	}
	if len(list) != 2 || list[0].Code != "M-2" {
		t.Fatalf("expected mugs sorted by price asc, got %+v", list)
	}

	list, total, err = repo.List(ctx, ListOptions{Limit: 2, Page: 2})
	if err != nil {
		t.Fatalf("List page: %v", err)
	}
	if total != 3 || len(list) != 1 {
		t.Fatalf("expected page 2 with 1 product, got total=%d len=%d", total, len(list))
	}
}

func TestPostgres_UpdatePartial(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	created, err := repo.Create(ctx, domain.Product{Title: "Prod", Code: "P-1", PriceCents: 100, Stock: 1, Status: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newPrice := int64(250)
	updated, err := repo.Update(ctx, created.ID, UpdateInput{PriceCents: &newPrice})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.PriceCents != 250 || updated.Title != "Prod" || updated.Stock != 1 {
		t.Fatalf("partial update touched other fields: %+v", updated)
	}

	if _, err := repo.Update(ctx, "00000000-0000-0000-0000-000000000000", UpdateInput{PriceCents: &newPrice}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_DecrementStock(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	created, err := repo.Create(ctx, domain.Product{Title: "Prod", Code: "P-1", PriceCents: 100, Stock: 5, Status: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.DecrementStock(ctx, created.ID, 3); err != nil {
		t.Fatalf("DecrementStock: %v", err)
	}

	err = repo.DecrementStock(ctx, created.ID, 3)
	var stockErr *domain.StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected StockError, got %v", err)
	}
	if stockErr.Requested != 3 || stockErr.Available != 2 {
		t.Fatalf("unexpected stock error %+v", stockErr)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Stock != 2 {
		t.Fatalf("failed decrement must leave stock untouched, got %d", got.Stock)
	}

	if err := repo.DecrementStock(ctx, "00000000-0000-0000-0000-000000000000", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_Delete(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	created, err := repo.Create(ctx, domain.Product{Title: "Prod", Code: "P-1", Status: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	existed, err := repo.Delete(ctx, created.ID)
	if err != nil || !existed {
		t.Fatalf("Delete: existed=%v err=%v", existed, err)
	}
	existed, err = repo.Delete(ctx, created.ID)
	if err != nil || existed {
		t.Fatalf("second Delete: existed=%v err=%v", existed, err)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE ticket_lines, tickets, cart_lines, carts, tokens, customers, products RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
