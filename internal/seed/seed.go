package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type productSeed struct {
	Title       string
	Description string
	Code        string
	PriceCents  int64
	Stock       int
	Category    string
	Thumbnails  []string
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			Title:       "Demo T-Shirt",
			Description: "Soft cotton tee for demo purposes",
			Code:        "TSHIRT-001",
			PriceCents:  1999,
			Stock:       25,
			Category:    "apparel",
			Thumbnails:  []string{"/img/tshirt-front.jpg", "/img/tshirt-back.jpg"},
		},
		{
			Title:       "Demo Mug",
			Description: "Ceramic mug with demo logo",
			Code:        "MUG-001",
			PriceCents:  1299,
			Stock:       40,
			Category:    "kitchen",
			Thumbnails:  []string{"/img/mug.jpg"},
		},
		{
			Title:       "Demo Stickers",
			Description: "Pack of 10 vinyl stickers",
			Code:        "STICKER-001",
			PriceCents:  499,
			Stock:       0,
			Category:    "accessories",
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Code, err)
		}
	}

	if err := ensureAdmin(ctx, pool, "admin@storefront.local", "Admin1234"); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (title, description, code, price_cents, stock, category, thumbnails)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (code) DO UPDATE
SET title = EXCLUDED.title,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    stock = EXCLUDED.stock,
    category = EXCLUDED.category,
    thumbnails = EXCLUDED.thumbnails,
    updated_at = now()
`
	thumbs := p.Thumbnails
	if thumbs == nil {
		thumbs = []string{}
	}
	_, err := pool.Exec(ctx, q, p.Title, p.Description, p.Code, p.PriceCents, p.Stock, p.Category, thumbs)
	return err
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO customers (email, password_hash, first_name, role)
VALUES ($1, $2, 'Admin', 'admin')
ON CONFLICT (email) DO NOTHING
`
	_, err = pool.Exec(ctx, q, email, string(hashed))
	return err
}
