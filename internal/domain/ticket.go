package domain

import (
	"time"

	apperrors "github.com/ShakenTheCoder/REVIfinal/pkg/errors"
)

// TicketStatus is the support ticket lifecycle state.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusAssigned TicketStatus = "assigned"
	TicketStatusResolved TicketStatus = "resolved"
	TicketStatusClosed   TicketStatus = "closed"
)

// IsValid reports whether the status is one of the known values.
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusAssigned, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority is assigned at ticket creation and immutable thereafter.
type TicketPriority string

const (
	PriorityHigh   TicketPriority = "high"
	PriorityNormal TicketPriority = "normal"
	PriorityLow    TicketPriority = "low"
)

// IsValid reports whether the priority is one of the known values.
func (p TicketPriority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// SupportTicket tracks a customer issue raised by a review classified as
// requiring support. Its lifecycle is independent of the originating review's
// later re-categorization.
type SupportTicket struct {
	ID               string         `json:"id"`
	ReviewID         string         `json:"review_id"`
	CustomerEmail    string         `json:"customer_email,omitempty"`
	IssueDescription string         `json:"issue_description"`
	Priority         TicketPriority `json:"priority"`
	Status           TicketStatus   `json:"status"`
	AssignedTo       string         `json:"assigned_to,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	ResolvedAt       *time.Time     `json:"resolved_at,omitempty"`
}

// Assign moves the ticket from open to assigned. Any other starting state is
// an invalid transition.
func (t *SupportTicket) Assign(assignee string) error {
	if t.Status != TicketStatusOpen {
		return apperrors.InvalidState("ticket can only be assigned from open state, current state: " + string(t.Status))
	}
	t.Status = TicketStatusAssigned
	t.AssignedTo = assignee
	return nil
}

// Resolve moves the ticket to resolved. Valid from open or assigned.
func (t *SupportTicket) Resolve(now time.Time) error {
	if t.Status != TicketStatusOpen && t.Status != TicketStatusAssigned {
		return apperrors.InvalidState("ticket cannot be resolved from state: " + string(t.Status))
	}
	t.Status = TicketStatusResolved
	t.ResolvedAt = &now
	return nil
}

// Close moves the ticket to closed. Valid from open (duplicate/void),
// assigned, or resolved.
func (t *SupportTicket) Close() error {
	if t.Status == TicketStatusClosed {
		return apperrors.InvalidState("ticket is already closed")
	}
	t.Status = TicketStatusClosed
	return nil
}
