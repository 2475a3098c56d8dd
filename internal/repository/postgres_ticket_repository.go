package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/ticket-api/internal/domain"
)

// PgxQuerier is the subset of *pgxpool.Pool used by the repository.
type PgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

const ticketColumns = `id, title, description, status, reporter_id, assigned_to_id, priority, ticket_type, created_at, updated_at`

type postgresTicketRepository struct {
	pool PgxQuerier
}

// NewPostgresTicketRepository instantiates the pgx-backed repository.
func NewPostgresTicketRepository(pool PgxQuerier) TicketRepository {
	return &postgresTicketRepository{pool: pool}
}

func (r *postgresTicketRepository) Put(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (` + ticketColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.ReporterID,
		ticket.AssignedToID,
		ticket.Priority,
		ticket.Type,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (r *postgresTicketRepository) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return ticket, nil
}

func (r *postgresTicketRepository) Scan(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+ticketColumns+` FROM tickets`)
	if err != nil {
		return nil, fmt.Errorf("scan tickets: %w", err)
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *postgresTicketRepository) Update(ctx context.Context, id string, changes domain.TicketChanges) (*domain.Ticket, error) {
	query, args := buildPostgresUpdate(id, changes)
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConditionFailed
	}
	if err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	return ticket, nil
}

func (r *postgresTicketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrConditionFailed
	}
	return nil
}

func (r *postgresTicketRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// buildPostgresUpdate renders a single UPDATE ... WHERE id ... RETURNING so
// that the existence check and the write are one statement.
func buildPostgresUpdate(id string, changes domain.TicketChanges) (string, []any) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if changes.Title != nil {
		add("title", *changes.Title)
	}
	if changes.Description != nil {
		add("description", *changes.Description)
	}
	if changes.Status != nil {
		add("status", *changes.Status)
	}
	if changes.Priority != nil {
		add("priority", *changes.Priority)
	}
	if changes.Type != nil {
		add("ticket_type", *changes.Type)
	}
	if changes.SetAssignedTo {
		add("assigned_to_id", changes.AssignedToID)
	}
	add("updated_at", changes.UpdatedAt)

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), ticketColumns)
	return query, args
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.ReporterID,
		&ticket.AssignedToID,
		&ticket.Priority,
		&ticket.Type,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ticket.CreatedAt = ticket.CreatedAt.UTC()
	ticket.UpdatedAt = ticket.UpdatedAt.UTC()
	return &ticket, nil
}
