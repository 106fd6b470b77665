package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/financex/financex/internal/domain"
	"github.com/financex/financex/internal/repository"
)

const ticketColumns = `id, email, subject, description, status, priority,
	category, created_at, updated_at`

type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

func (r *TicketRepository) Create(ctx context.Context, t *domain.SupportTicket) (*domain.SupportTicket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ticket tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO support_tickets (email, subject, description, status, priority, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+ticketColumns,
		t.Email, t.Subject, t.Description, t.Status, t.Priority, t.Category)

	created, err := scanTicket(row)
	if err != nil {
		return nil, err
	}

	for _, m := range t.Messages {
		msg, err := insertMessage(ctx, tx, created.ID, m)
		if err != nil {
			return nil, err
		}
		created.Messages = append(created.Messages, *msg)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id, email string) (*domain.SupportTicket, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM support_tickets
		WHERE id = $1 AND email = $2`, id, email)

	t, err := scanTicket(row)
	if err != nil {
		return nil, err
	}

	msgs, err := r.loadMessages(ctx, []string{t.ID})
	if err != nil {
		return nil, err
	}
	t.Messages = msgs[t.ID]
	return t, nil
}

func (r *TicketRepository) List(ctx context.Context, input repository.ListTicketsInput) ([]*domain.SupportTicket, int, error) {
	args := []any{input.Email}
	where := []string{"email = $1"}

	if input.Status != "" {
		args = append(args, input.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	cond := strings.Join(where, " AND ")

	var total int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM support_tickets WHERE "+cond, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}

	args = append(args, input.Limit, (input.Page-1)*input.Limit)
	query := fmt.Sprintf(`
		SELECT `+ticketColumns+`
		FROM support_tickets
		WHERE %s
		ORDER BY updated_at DESC
		LIMIT $%d OFFSET $%d`, cond, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.SupportTicket
	var ids []string
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		tickets = append(tickets, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) > 0 {
		msgs, err := r.loadMessages(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for _, t := range tickets {
			t.Messages = msgs[t.ID]
		}
	}
	return tickets, total, nil
}

func (r *TicketRepository) UpdateStatus(ctx context.Context, id, email string, status domain.TicketStatus, priority domain.TicketPriority) (*domain.SupportTicket, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE support_tickets
		SET    status     = COALESCE(NULLIF($3, ''), status),
		       priority   = COALESCE(NULLIF($4, ''), priority),
		       updated_at = NOW()
		WHERE  id = $1 AND email = $2
		RETURNING `+ticketColumns,
		id, email, string(status), string(priority))

	t, err := scanTicket(row)
	if err != nil {
		return nil, err
	}

	msgs, err := r.loadMessages(ctx, []string{t.ID})
	if err != nil {
		return nil, err
	}
	t.Messages = msgs[t.ID]
	return t, nil
}

func (r *TicketRepository) AppendMessage(ctx context.Context, ticketID, email string, msg domain.TicketMessage) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin message tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE support_tickets SET updated_at = NOW()
		WHERE id = $1 AND email = $2`, ticketID, email)
	if err != nil {
		return fmt.Errorf("touch ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}

	if _, err := insertMessage(ctx, tx, ticketID, msg); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *TicketRepository) Delete(ctx context.Context, id, email string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM support_tickets WHERE id = $1 AND email = $2`, id, email)
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (r *TicketRepository) loadMessages(ctx context.Context, ticketIDs []string) (map[string][]domain.TicketMessage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, ticket_id, author, content, created_at
		FROM ticket_messages
		WHERE ticket_id = ANY($1)
		ORDER BY created_at ASC`, ticketIDs)
	if err != nil {
		return nil, fmt.Errorf("load ticket messages: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.TicketMessage)
	for rows.Next() {
		var m domain.TicketMessage
		if err := rows.Scan(&m.ID, &m.TicketID, &m.Author, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket message: %w", err)
		}
		out[m.TicketID] = append(out[m.TicketID], m)
	}
	return out, rows.Err()
}

func insertMessage(ctx context.Context, tx pgx.Tx, ticketID string, m domain.TicketMessage) (*domain.TicketMessage, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO ticket_messages (ticket_id, author, content)
		VALUES ($1, $2, $3)
		RETURNING id, ticket_id, author, content, created_at`,
		ticketID, m.Author, m.Content)

	var out domain.TicketMessage
	if err := row.Scan(&out.ID, &out.TicketID, &out.Author, &out.Content, &out.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert ticket message: %w", err)
	}
	return &out, nil
}

func scanTicket(row rowScanner) (*domain.SupportTicket, error) {
	var t domain.SupportTicket
	err := row.Scan(
		&t.ID, &t.Email, &t.Subject, &t.Description, &t.Status, &t.Priority,
		&t.Category, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("scan ticket: %w", err)
	}
	return &t, nil
}
