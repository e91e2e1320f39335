package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
	"github.com/ShakenTheCoder/REVIfinal/internal/repository"
	apperrors "github.com/ShakenTheCoder/REVIfinal/pkg/errors"
)

func newTicketService(t *testing.T) (*TicketService, *mockTicketRepository, *mockAdminActionRepository) {
	t.Helper()
	tickets := new(mockTicketRepository)
	actions := new(mockAdminActionRepository)
	svc := NewTicketService(tickets, actions, testProducer(), testLogger())
	return svc, tickets, actions
}

func TestTicketService_Assign_Success(t *testing.T) {
	svc, tickets, actions := newTicketService(t)
	ctx := context.Background()

	assigned := &domain.SupportTicket{
		ID:         "tkt-1",
		Status:     domain.TicketStatusAssigned,
		AssignedTo: "agent-7",
	}

	tickets.On("UpdateStatus", ctx, "tkt-1", domain.TicketStatusAssigned, "agent-7",
		(*time.Time)(nil), []domain.TicketStatus{domain.TicketStatusOpen}).
		Return(assigned, nil)
	actions.On("Create", mock.Anything, mock.AnythingOfType("*domain.AdminAction")).Return(nil)

	got, err := svc.Assign(ctx, "tkt-1", "agent-7", "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusAssigned, got.Status)
	assert.Equal(t, "agent-7", got.AssignedTo)

	tickets.AssertExpectations(t)
	actions.AssertExpectations(t)
}

func TestTicketService_Assign_RequiresAssignee(t *testing.T) {
	svc, tickets, _ := newTicketService(t)

	_, err := svc.Assign(context.Background(), "tkt-1", "", "admin")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	tickets.AssertNotCalled(t, "UpdateStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTicketService_Assign_AlreadyAssigned(t *testing.T) {
	svc, tickets, actions := newTicketService(t)
	ctx := context.Background()

	tickets.On("UpdateStatus", ctx, "tkt-1", domain.TicketStatusAssigned, "agent-8",
		(*time.Time)(nil), []domain.TicketStatus{domain.TicketStatusOpen}).
		Return(nil, apperrors.InvalidState("ticket cannot move to assigned from assigned"))

	_, err := svc.Assign(ctx, "tkt-1", "agent-8", "admin")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidState))

	actions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTicketService_Resolve_StampsResolvedAt(t *testing.T) {
	svc, tickets, _ := newTicketService(t)
	ctx := context.Background()

	now := time.Now().UTC()
	resolved := &domain.SupportTicket{
		ID:         "tkt-1",
		Status:     domain.TicketStatusResolved,
		ResolvedAt: &now,
	}

	tickets.On("UpdateStatus", ctx, "tkt-1", domain.TicketStatusResolved, "",
		mock.AnythingOfType("*time.Time"),
		[]domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusAssigned}).
		Return(resolved, nil)

	got, err := svc.Resolve(ctx, "tkt-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, got.Status)
	assert.NotNil(t, got.ResolvedAt)
}

func TestTicketService_Close_FromOpen(t *testing.T) {
	svc, tickets, _ := newTicketService(t)
	ctx := context.Background()

	closed := &domain.SupportTicket{ID: "tkt-1", Status: domain.TicketStatusClosed}

	// Closing straight from open skips assignment entirely.
	tickets.On("UpdateStatus", ctx, "tkt-1", domain.TicketStatusClosed, "",
		(*time.Time)(nil),
		[]domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusAssigned, domain.TicketStatusResolved}).
		Return(closed, nil)

	got, err := svc.Close(ctx, "tkt-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, got.Status)
}

func TestTicketService_List_UnknownStatus(t *testing.T) {
	svc, _, _ := newTicketService(t)

	status := domain.TicketStatus("bogus")
	_, _, err := svc.List(context.Background(), repository.TicketFilter{Status: &status})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestTicketService_List_FiltersByStatus(t *testing.T) {
	svc, tickets, _ := newTicketService(t)
	ctx := context.Background()

	status := domain.TicketStatusOpen
	filter := repository.TicketFilter{Status: &status}

	tickets.On("List", ctx, filter).
		Return([]domain.SupportTicket{{ID: "tkt-1", Status: domain.TicketStatusOpen}}, 1, nil)

	got, total, err := svc.List(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, domain.TicketStatusOpen, got[0].Status)
}
