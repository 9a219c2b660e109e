package ticket

import (
	"context"
	"errors"
	"os"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_CreateAndFetch(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	created, err := repo.Create(ctx, domain.Ticket{
		Code:        "code-1",
		AmountCents: 3500,
		Purchaser:   "jane@example.com",
		Lines: []domain.TicketLine{
			{ProductID: "00000000-0000-0000-0000-000000000001", Title: "Mug", PriceCents: 1000, Quantity: 2},
			{ProductID: "00000000-0000-0000-0000-000000000002", Title: "Shirt", PriceCents: 1500, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.PurchasedAt.IsZero() {
		t.Fatalf("expected id and timestamp set, got %+v", created)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.AmountCents != 3500 || len(got.Lines) != 2 {
		t.Fatalf("unexpected ticket %+v", got)
	}
	if got.Lines[0].Title != "Mug" || got.Lines[1].Title != "Shirt" {
		t.Fatalf("line order not preserved: %+v", got.Lines)
	}

	byCode, err := repo.GetByCode(ctx, "code-1")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if byCode.ID != created.ID {
		t.Fatalf("expected same ticket by code")
	}

	if _, err := repo.GetByCode(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_ListByPurchaser(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	for _, code := range []string{"a", "b"} {
		if _, err := repo.Create(ctx, domain.Ticket{Code: code, AmountCents: 100, Purchaser: "jane@example.com"}); err != nil {
			t.Fatalf("Create %s: %v", code, err)
		}
	}
	if _, err := repo.Create(ctx, domain.Ticket{Code: "c", AmountCents: 100, Purchaser: "other@example.com"}); err != nil {
		t.Fatalf("Create c: %v", err)
	}

	tickets, err := repo.ListByPurchaser(ctx, "jane@example.com")
	if err != nil {
		t.Fatalf("ListByPurchaser: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("expected 2 tickets, got %d", len(tickets))
	}

	tickets, err = repo.ListByPurchaser(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("ListByPurchaser empty: %v", err)
	}
	if len(tickets) != 0 {
		t.Fatalf("expected no tickets, got %d", len(tickets))
	}
}

func TestPostgres_Delete(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	created, err := repo.Create(ctx, domain.Ticket{
		Code:      "code-1",
		Purchaser: "jane@example.com",
		Lines:     []domain.TicketLine{{ProductID: "00000000-0000-0000-0000-000000000001", Title: "Mug", PriceCents: 100, Quantity: 1}},
	})
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

	var lines int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM ticket_lines`).Scan(&lines); err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if lines != 0 {
		t.Fatalf("ticket lines must cascade on delete, got %d", lines)
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
