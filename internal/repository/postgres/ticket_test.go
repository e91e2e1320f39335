package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
	"github.com/ShakenTheCoder/REVIfinal/internal/repository"
	"github.com/ShakenTheCoder/REVIfinal/pkg/database"
	apperrors "github.com/ShakenTheCoder/REVIfinal/pkg/errors"
)

func newTicketRepo(t *testing.T) (*TicketRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewTicketRepository(mock), mock
}

func sampleTicket() *domain.SupportTicket {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.SupportTicket{
		ID:               "7c4e9d20-1b3a-4f5c-8e6d-2a9f0b1c3d04",
		ReviewID:         "9f1c8a40-7a21-4f2e-9e5b-0f4d6c2a1b01",
		CustomerEmail:    "musteri@example.com",
		IssueDescription: "The unit stopped working after two days.",
		Priority:         domain.PriorityHigh,
		Status:           domain.TicketStatusOpen,
		AssignedTo:       "",
		CreatedAt:        now,
		UpdatedAt:        now,
		ResolvedAt:       nil,
	}
}

var ticketFieldNames = []string{
	"id", "review_id", "customer_email", "issue_description", "priority", "status",
	"assigned_to", "created_at", "updated_at", "resolved_at",
}

func ticketRowValues(tk *domain.SupportTicket) []any {
	return []any{
		tk.ID, tk.ReviewID, tk.CustomerEmail, tk.IssueDescription, tk.Priority, tk.Status,
		tk.AssignedTo, tk.CreatedAt, tk.UpdatedAt, tk.ResolvedAt,
	}
}

func TestTicketRepository_Create_Success(t *testing.T) {
	repo, mock := newTicketRepo(t)

	tk := sampleTicket()

	mock.ExpectExec("INSERT INTO support_tickets").
		WithArgs(
			tk.ID, tk.ReviewID, tk.CustomerEmail, tk.IssueDescription,
			tk.Priority, tk.Status, tk.AssignedTo, tk.CreatedAt, tk.UpdatedAt, tk.ResolvedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), tk)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newTicketRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM support_tickets WHERE id").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(ticketFieldNames))

	got, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepository_GetByReviewID_Success(t *testing.T) {
	repo, mock := newTicketRepo(t)

	tk := sampleTicket()

	mock.ExpectQuery("SELECT (.+) FROM support_tickets WHERE review_id").
		WithArgs(tk.ReviewID).
		WillReturnRows(pgxmock.NewRows(ticketFieldNames).AddRow(ticketRowValues(tk)...))

	got, err := repo.GetByReviewID(context.Background(), tk.ReviewID)
	require.NoError(t, err)
	assert.Equal(t, tk.ID, got.ID)
	assert.Equal(t, tk.ReviewID, got.ReviewID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepository_List_StatusFilter(t *testing.T) {
	repo, mock := newTicketRepo(t)

	tk := sampleTicket()
	status := domain.TicketStatusOpen

	rows := pgxmock.NewRows(append(ticketFieldNames, "total_count")).
		AddRow(append(ticketRowValues(tk), 1)...)

	mock.ExpectQuery("FROM support_tickets").
		WithArgs(pgxmock.AnyArg(), 20, 0).
		WillReturnRows(rows)

	tickets, total, err := repo.List(context.Background(), repository.TicketFilter{
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, tickets, 1)
	assert.Equal(t, domain.TicketStatusOpen, tickets[0].Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepository_UpdateStatus_Assign(t *testing.T) {
	repo, mock := newTicketRepo(t)

	tk := sampleTicket()
	updated := *tk
	updated.Status = domain.TicketStatusAssigned
	updated.AssignedTo = "agent-7"

	mock.ExpectQuery("UPDATE support_tickets").
		WithArgs(tk.ID, domain.TicketStatusAssigned, "agent-7", (*time.Time)(nil), []string{"open"}).
		WillReturnRows(pgxmock.NewRows(ticketFieldNames).AddRow(ticketRowValues(&updated)...))

	got, err := repo.UpdateStatus(
		context.Background(), tk.ID,
		domain.TicketStatusAssigned, "agent-7", nil,
		[]domain.TicketStatus{domain.TicketStatusOpen},
	)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusAssigned, got.Status)
	assert.Equal(t, "agent-7", got.AssignedTo)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepository_UpdateStatus_InvalidTransition(t *testing.T) {
	repo, mock := newTicketRepo(t)

	tk := sampleTicket()
	tk.Status = domain.TicketStatusResolved

	// The conditional update matches no row, then the current state lookup
	// reveals the ticket exists in a non-allowed state.
	mock.ExpectQuery("UPDATE support_tickets").
		WithArgs(tk.ID, domain.TicketStatusAssigned, "agent-7", (*time.Time)(nil), []string{"open"}).
		WillReturnRows(pgxmock.NewRows(ticketFieldNames))

	mock.ExpectQuery("SELECT (.+) FROM support_tickets WHERE id").
		WithArgs(tk.ID).
		WillReturnRows(pgxmock.NewRows(ticketFieldNames).AddRow(ticketRowValues(tk)...))

	got, err := repo.UpdateStatus(
		context.Background(), tk.ID,
		domain.TicketStatusAssigned, "agent-7", nil,
		[]domain.TicketStatus{domain.TicketStatusOpen},
	)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidState))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepository_UpdateStatus_NotFound(t *testing.T) {
	repo, mock := newTicketRepo(t)

	mock.ExpectQuery("UPDATE support_tickets").
		WithArgs("missing", domain.TicketStatusClosed, "", (*time.Time)(nil), []string{"open", "assigned", "resolved"}).
		WillReturnRows(pgxmock.NewRows(ticketFieldNames))

	mock.ExpectQuery("SELECT (.+) FROM support_tickets WHERE id").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(ticketFieldNames))

	got, err := repo.UpdateStatus(
		context.Background(), "missing",
		domain.TicketStatusClosed, "", nil,
		[]domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusAssigned, domain.TicketStatusResolved},
	)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}
