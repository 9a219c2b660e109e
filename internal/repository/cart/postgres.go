package cart

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, customerID *string) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (customer_id)
VALUES ($1)
RETURNING id::text, customer_id::text, created_at
`
	var cart domain.Cart
	if err := r.pool.QueryRow(ctx, q, customerID).Scan(&cart.ID, &cart.CustomerID, &cart.CreatedAt); err != nil {
		return nil, err
	}
	cart.Lines = []domain.CartLine{}
	return &cart, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	const q = `
SELECT id::text, customer_id::text, created_at
FROM carts
WHERE id = $1
`
	var cart domain.Cart
	if err := r.pool.QueryRow(ctx, q, id).Scan(&cart.ID, &cart.CustomerID, &cart.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const linesQuery = `
SELECT product_id::text, quantity
FROM cart_lines
WHERE cart_id = $1
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart.Lines = []domain.CartLine{}
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ProductID, &line.Quantity); err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *postgresRepo) GetPopulated(ctx context.Context, id string) (*domain.PopulatedCart, error) {
	const q = `
SELECT id::text, customer_id::text, created_at
FROM carts
WHERE id = $1
`
	var cart domain.PopulatedCart
	if err := r.pool.QueryRow(ctx, q, id).Scan(&cart.ID, &cart.CustomerID, &cart.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const linesQuery = `
SELECT cl.product_id::text, cl.quantity,
       p.id::text, p.title, p.description, p.code, p.price_cents, p.stock, p.status, p.category, p.thumbnails, p.created_at, p.updated_at
FROM cart_lines cl
LEFT JOIN products p ON p.id = cl.product_id
WHERE cl.cart_id = $1
ORDER BY cl.position ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart.Lines = []domain.PopulatedLine{}
	for rows.Next() {
		var line domain.PopulatedLine
		var p domain.Product
		var pid, title, description, code, category *string
		var priceCents *int64
		var stock *int
		var status *bool
		var thumbnails []string
		var createdAt, updatedAt *time.Time
		if err := rows.Scan(
			&line.ProductID,
			&line.Quantity,
			&pid, &title, &description, &code, &priceCents, &stock, &status, &category, &thumbnails, &createdAt, &updatedAt,
		); err != nil {
			return nil, err
		}
		if pid != nil {
			p = domain.Product{
				ID:          *pid,
				Title:       *title,
				Description: *description,
				Code:        *code,
				PriceCents:  *priceCents,
				Stock:       *stock,
				Status:      *status,
				Category:    *category,
				Thumbnails:  thumbnails,
				CreatedAt:   *createdAt,
				UpdatedAt:   *updatedAt,
			}
			line.Product = &p
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *postgresRepo) AddLine(ctx context.Context, cartID, productID string, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := cartExists(ctx, tx, cartID); err != nil {
		return err
	}

	const q = `
INSERT INTO cart_lines (cart_id, product_id, quantity, position)
VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position), 0) + 1 FROM cart_lines WHERE cart_id = $1))
ON CONFLICT (cart_id, product_id) DO UPDATE
SET quantity = cart_lines.quantity + EXCLUDED.quantity
`
	if _, err := tx.Exec(ctx, q, cartID, productID, quantity); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) RemoveLine(ctx context.Context, cartID, productID string) error {
	cmd, err := r.pool.Exec(ctx, `
DELETE FROM cart_lines
WHERE cart_id = $1 AND product_id = $2
`, cartID, productID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SetLineQuantity(ctx context.Context, cartID, productID string, quantity int) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE cart_lines
SET quantity = $3
WHERE cart_id = $1 AND product_id = $2
`, cartID, productID, quantity)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ReplaceLines(ctx context.Context, cartID string, lines []domain.CartLine) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := cartExists(ctx, tx, cartID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	for i, line := range lines {
		if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, product_id, quantity, position)
VALUES ($1, $2, $3, $4)
`, cartID, line.ProductID, line.Quantity, i+1); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) Clear(ctx context.Context, cartID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := cartExists(ctx, tx, cartID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func cartExists(ctx context.Context, tx pgx.Tx, cartID string) error {
	var one int
	if err := tx.QueryRow(ctx, `SELECT 1 FROM carts WHERE id = $1`, cartID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}
