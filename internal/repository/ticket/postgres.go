package ticket

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

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

func (r *postgresRepo) Create(ctx context.Context, t domain.Ticket) (*domain.Ticket, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO tickets (code, amount_cents, purchaser)
VALUES ($1, $2, $3)
RETURNING id::text, purchased_at
`
	out := t
	if err := tx.QueryRow(ctx, q, t.Code, t.AmountCents, t.Purchaser).Scan(&out.ID, &out.PurchasedAt); err != nil {
		r.logger.Printf("ticket repo: create code=%s error=%v", t.Code, err)
		return nil, err
	}

	for i, line := range t.Lines {
		if _, err := tx.Exec(ctx, `
INSERT INTO ticket_lines (ticket_id, product_id, title, price_cents, quantity, position)
VALUES ($1, $2, $3, $4, $5, $6)
`, out.ID, line.ProductID, line.Title, line.PriceCents, line.Quantity, i+1); err != nil {
			r.logger.Printf("ticket repo: create line ticket=%s error=%v", out.ID, err)
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("ticket repo: created id=%s code=%s lines=%d", out.ID, out.Code, len(out.Lines))
	return &out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const q = `
SELECT id::text, code, purchased_at, amount_cents, purchaser
FROM tickets
WHERE id = $1
`
	return r.fetchTicket(ctx, q, id)
}

func (r *postgresRepo) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	const q = `
SELECT id::text, code, purchased_at, amount_cents, purchaser
FROM tickets
WHERE code = $1
`
	return r.fetchTicket(ctx, q, code)
}

func (r *postgresRepo) ListByPurchaser(ctx context.Context, email string) ([]domain.Ticket, error) {
	const q = `
SELECT id::text, code, purchased_at, amount_cents, purchaser
FROM tickets
WHERE purchaser = $1
ORDER BY purchased_at DESC
`
	rows, err := r.pool.Query(ctx, q, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.Code, &t.PurchasedAt, &t.AmountCents, &t.Purchaser); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tickets {
		lines, err := r.fetchLines(ctx, tickets[i].ID)
		if err != nil {
			return nil, err
		}
		tickets[i].Lines = lines
	}
	return tickets, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *postgresRepo) fetchTicket(ctx context.Context, query, arg string) (*domain.Ticket, error) {
	var t domain.Ticket
	err := r.pool.QueryRow(ctx, query, arg).Scan(&t.ID, &t.Code, &t.PurchasedAt, &t.AmountCents, &t.Purchaser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	lines, err := r.fetchLines(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.Lines = lines
	return &t, nil
}

func (r *postgresRepo) fetchLines(ctx context.Context, ticketID string) ([]domain.TicketLine, error) {
	const q = `
SELECT product_id::text, title, price_cents, quantity
FROM ticket_lines
WHERE ticket_id = $1
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, q, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []domain.TicketLine{}
	for rows.Next() {
		var line domain.TicketLine
		if err := rows.Scan(&line.ProductID, &line.Title, &line.PriceCents, &line.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
