package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
	"github.com/ShakenTheCoder/REVIfinal/internal/event"
	"github.com/ShakenTheCoder/REVIfinal/internal/repository"
	apperrors "github.com/ShakenTheCoder/REVIfinal/pkg/errors"
)

// TicketService implements support ticket lifecycle operations. Transitions
// are enforced twice: the domain methods document the state machine, and the
// repository's conditional update serializes concurrent transitions per
// ticket row.
type TicketService struct {
	tickets  repository.TicketRepository
	actions  repository.AdminActionRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewTicketService creates a new ticket service.
func NewTicketService(
	tickets repository.TicketRepository,
	actions repository.AdminActionRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *TicketService {
	return &TicketService{
		tickets:  tickets,
		actions:  actions,
		producer: producer,
		logger:   logger,
	}
}

// List returns tickets ordered by priority, then creation time.
func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.SupportTicket, int, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, 0, apperrors.InvalidInput("unknown ticket status")
	}
	return s.tickets.List(ctx, filter)
}

// GetByID returns one ticket.
func (s *TicketService) GetByID(ctx context.Context, id string) (*domain.SupportTicket, error) {
	return s.tickets.GetByID(ctx, id)
}

// Assign moves an open ticket to assigned. Assigning a ticket in any other
// state, including reassignment, is an invalid transition.
func (s *TicketService) Assign(ctx context.Context, id, assignee, adminUser string) (*domain.SupportTicket, error) {
	if assignee == "" {
		return nil, apperrors.InvalidInput("assigned_to is required")
	}

	ticket, err := s.tickets.UpdateStatus(ctx, id, domain.TicketStatusAssigned, assignee, nil,
		[]domain.TicketStatus{domain.TicketStatusOpen})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, &domain.AdminAction{
		ID:          uuid.New().String(),
		AdminUser:   adminUser,
		ActionType:  "assign_ticket",
		TargetID:    ticket.ID,
		TargetType:  "ticket",
		OldValue:    string(domain.TicketStatusOpen),
		NewValue:    fmt.Sprintf("%s to=%s", domain.TicketStatusAssigned, assignee),
		PerformedAt: time.Now().UTC(),
	})

	s.publishUpdated(ctx, ticket, domain.TicketStatusOpen)

	return ticket, nil
}

// Resolve marks an open or assigned ticket resolved and stamps resolved_at.
func (s *TicketService) Resolve(ctx context.Context, id string) (*domain.SupportTicket, error) {
	now := time.Now().UTC()
	ticket, err := s.tickets.UpdateStatus(ctx, id, domain.TicketStatusResolved, "", &now,
		[]domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusAssigned})
	if err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, ticket, "")

	return ticket, nil
}

// Close terminates a ticket from any non-closed state. Closing straight from
// open is a legitimate shortcut for tickets that need no agent.
func (s *TicketService) Close(ctx context.Context, id string) (*domain.SupportTicket, error) {
	ticket, err := s.tickets.UpdateStatus(ctx, id, domain.TicketStatusClosed, "", nil,
		[]domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusAssigned, domain.TicketStatusResolved})
	if err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, ticket, "")

	return ticket, nil
}

func (s *TicketService) publishUpdated(ctx context.Context, ticket *domain.SupportTicket, oldStatus domain.TicketStatus) {
	if err := s.producer.PublishTicketUpdated(ctx, ticket.ID, oldStatus, ticket.Status, ticket.AssignedTo); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish ticket.updated event",
			slog.String("ticket_id", ticket.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *TicketService) audit(ctx context.Context, action *domain.AdminAction) {
	if err := s.actions.Create(ctx, action); err != nil {
		s.logger.ErrorContext(ctx, "failed to record admin action",
			slog.String("action_type", action.ActionType),
			slog.String("target_id", action.TargetID),
			slog.String("error", err.Error()),
		)
	}
}
