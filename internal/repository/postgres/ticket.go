package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
	"github.com/ShakenTheCoder/REVIfinal/internal/repository"
	"github.com/ShakenTheCoder/REVIfinal/pkg/database"
	apperrors "github.com/ShakenTheCoder/REVIfinal/pkg/errors"
)

// TicketRepository implements repository.TicketRepository using PostgreSQL.
type TicketRepository struct {
	pool database.DBTX
}

// NewTicketRepository creates a new PostgreSQL-backed ticket repository.
func NewTicketRepository(pool database.DBTX) *TicketRepository {
	return &TicketRepository{pool: pool}
}

const ticketColumns = `id, review_id, customer_email, issue_description, priority, status,
	       assigned_to, created_at, updated_at, resolved_at`

func scanTicket(row pgx.Row) (*domain.SupportTicket, error) {
	var t domain.SupportTicket
	err := row.Scan(
		&t.ID,
		&t.ReviewID,
		&t.CustomerEmail,
		&t.IssueDescription,
		&t.Priority,
		&t.Status,
		&t.AssignedTo,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new support ticket.
func (r *TicketRepository) Create(ctx context.Context, ticket *domain.SupportTicket) error {
	query := `
		INSERT INTO support_tickets (id, review_id, customer_email, issue_description,
			priority, status, assigned_to, created_at, updated_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.ReviewID,
		ticket.CustomerEmail,
		ticket.IssueDescription,
		ticket.Priority,
		ticket.Status,
		ticket.AssignedTo,
		ticket.CreatedAt,
		ticket.UpdatedAt,
		ticket.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}

	return nil
}

// GetByID retrieves a ticket by id.
func (r *TicketRepository) GetByID(ctx context.Context, id string) (*domain.SupportTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE id = $1`

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("ticket", id)
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}

	return ticket, nil
}

// GetByReviewID retrieves the ticket raised by a review. At most one ticket
// exists per review; re-classification never creates a second one.
func (r *TicketRepository) GetByReviewID(ctx context.Context, reviewID string) (*domain.SupportTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE review_id = $1`

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, reviewID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("ticket", reviewID)
		}
		return nil, fmt.Errorf("get ticket by review: %w", err)
	}

	return ticket, nil
}

// List returns tickets matching the filter with the total count, highest
// priority first and newest first within a priority.
func (r *TicketRepository) List(ctx context.Context, filter repository.TicketFilter) ([]domain.SupportTicket, int, error) {
	limit, offset := limitOffset(filter.Page, filter.PerPage)

	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	query := `
		SELECT ` + ticketColumns + `,
		       count(*) OVER() AS total_count
		FROM support_tickets
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'normal' THEN 1 ELSE 2 END,
		         created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var (
		tickets    []domain.SupportTicket
		totalCount int
	)

	for rows.Next() {
		var t domain.SupportTicket
		if err := rows.Scan(
			&t.ID,
			&t.ReviewID,
			&t.CustomerEmail,
			&t.IssueDescription,
			&t.Priority,
			&t.Status,
			&t.AssignedTo,
			&t.CreatedAt,
			&t.UpdatedAt,
			&t.ResolvedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan ticket row: %w", err)
		}
		tickets = append(tickets, t)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate ticket rows: %w", err)
	}

	if tickets == nil {
		tickets = []domain.SupportTicket{}
	}

	return tickets, totalCount, nil
}

// UpdateStatus applies a state transition as a conditional update, so
// concurrent transitions on the same ticket serialize at the row and the
// state machine is enforced even across instances.
func (r *TicketRepository) UpdateStatus(
	ctx context.Context,
	id string,
	to domain.TicketStatus,
	assignee string,
	resolvedAt *time.Time,
	allowedFrom []domain.TicketStatus,
) (*domain.SupportTicket, error) {
	from := make([]string, 0, len(allowedFrom))
	for _, s := range allowedFrom {
		from = append(from, string(s))
	}

	query := `
		UPDATE support_tickets
		SET status = $2,
		    assigned_to = CASE WHEN $3 = '' THEN assigned_to ELSE $3 END,
		    resolved_at = COALESCE($4, resolved_at),
		    updated_at = NOW()
		WHERE id = $1 AND status = ANY($5)
		RETURNING ` + ticketColumns

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id, to, assignee, resolvedAt, from))
	if err == nil {
		return ticket, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update ticket status: %w", err)
	}

	// Distinguish a missing ticket from an illegal transition.
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, apperrors.InvalidState(
		fmt.Sprintf("ticket cannot move to %s from %s", to, current.Status))
}
