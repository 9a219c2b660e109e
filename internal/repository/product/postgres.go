package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id::text, title, description, code, price_cents, stock, status, category, thumbnails, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (title, description, code, price_cents, stock, status, category, thumbnails)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + productColumns

	row := r.pool.QueryRow(ctx, q, p.Title, p.Description, p.Code, p.PriceCents, p.Stock, p.Status, p.Category, thumbnailsArg(p.Thumbnails))
	created, err := scanProduct(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("product repo: create code=%s error=%v", p.Code, err)
		return nil, err
	}
	r.logger.Printf("product repo: created id=%s code=%s", created.ID, created.Code)
	return created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetByCode(ctx context.Context, code string) (*domain.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE code = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get code=%s error=%v", code, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) List(ctx context.Context, opts ListOptions) ([]domain.Product, int, error) {
	where, args := buildFilter(opts)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		r.logger.Printf("product repo: count error=%v", err)
		return nil, 0, err
	}

	order := ` ORDER BY created_at ASC`
	switch opts.Sort {
	case "asc":
		order = ` ORDER BY price_cents ASC`
	case "desc":
		order = ` ORDER BY price_cents DESC`
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)
	q := `SELECT ` + productColumns + ` FROM products` + where + order +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, 0, err
	}
	return result, total, nil
}

func (r *postgresRepo) Update(ctx context.Context, id string, in UpdateInput) (*domain.Product, error) {
	const q = `
UPDATE products
SET title       = COALESCE($2, title),
    description = COALESCE($3, description),
    code        = COALESCE($4, code),
    price_cents = COALESCE($5, price_cents),
    stock       = COALESCE($6, stock),
    status      = COALESCE($7, status),
    category    = COALESCE($8, category),
    thumbnails  = COALESCE($9, thumbnails),
    updated_at  = now()
WHERE id = $1
RETURNING ` + productColumns

	var thumbs *[]string
	if in.Thumbnails != nil {
		thumbs = &in.Thumbnails
	}
	row := r.pool.QueryRow(ctx, q, id, in.Title, in.Description, in.Code, in.PriceCents, in.Stock, in.Status, in.Category, thumbs)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("product repo: update id=%s error=%v", id, err)
		return nil, err
	}
	r.logger.Printf("product repo: updated id=%s", id)
	return p, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("product repo: delete id=%s error=%v", id, err)
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// DecrementStock subtracts amount from the product's stock. The guard in the
// WHERE clause makes the decrement conditional: if stock is short the row is
// left untouched and a StockError is returned with the current stock.
func (r *postgresRepo) DecrementStock(ctx context.Context, id string, amount int) error {
	const q = `
UPDATE products
SET stock = stock - $2, updated_at = now()
WHERE id = $1 AND stock >= $2
`
	cmd, err := r.pool.Exec(ctx, q, id, amount)
	if err != nil {
		r.logger.Printf("product repo: decrement id=%s amount=%d error=%v", id, amount, err)
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	var available int
	err = r.pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, id).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return &domain.StockError{ProductID: id, Requested: amount, Available: available}
}

func buildFilter(opts ListOptions) (string, []interface{}) {
	var clauses []string
	var args []interface{}
	if opts.Category != "" {
		args = append(args, opts.Category)
		clauses = append(clauses, fmt.Sprintf("category ILIKE $%d", len(args)))
	}
	if opts.Status != nil {
		args = append(args, *opts.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if opts.Query != "" {
		args = append(args, "%"+opts.Query+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR category ILIKE $%d)", n, n, n))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Code, &p.PriceCents, &p.Stock, &p.Status, &p.Category, &p.Thumbnails, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func thumbnailsArg(thumbs []string) []string {
	if thumbs == nil {
		return []string{}
	}
	return thumbs
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
