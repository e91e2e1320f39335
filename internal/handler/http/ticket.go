package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
	"github.com/ShakenTheCoder/REVIfinal/internal/repository"
	"github.com/ShakenTheCoder/REVIfinal/internal/service"
	"github.com/ShakenTheCoder/REVIfinal/pkg/httputil"
	"github.com/ShakenTheCoder/REVIfinal/pkg/pagination"
	"github.com/ShakenTheCoder/REVIfinal/pkg/validator"
)

// TicketHandler handles the support ticket admin endpoints.
type TicketHandler struct {
	tickets *service.TicketService
	logger  *slog.Logger
}

// NewTicketHandler creates a new ticket HTTP handler.
func NewTicketHandler(tickets *service.TicketService, logger *slog.Logger) *TicketHandler {
	return &TicketHandler{
		tickets: tickets,
		logger:  logger,
	}
}

// AssignTicketRequest is the JSON request body for a ticket assignment.
type AssignTicketRequest struct {
	AssignedTo string `json:"assigned_to" validate:"required,max=100"`
	AdminUser  string `json:"admin_user" validate:"required,max=100"`
}

// ListTickets handles GET /api/v1/admin/tickets
func (h *TicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.TicketFilter{
		Page:    params.Page,
		PerPage: params.PerPage,
	}

	if v := r.URL.Query().Get("status"); v != "" {
		status := domain.TicketStatus(v)
		filter.Status = &status
	}

	tickets, total, err := h.tickets.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult(tickets, total, params),
	})
}

// GetTicket handles GET /api/v1/admin/tickets/{ticketId}
func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, ok := httputil.ParseUUID(w, chi.URLParam(r, "ticketId"))
	if !ok {
		return
	}

	ticket, err := h.tickets.GetByID(r.Context(), ticketID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ticket})
}

// AssignTicket handles POST /api/v1/admin/tickets/{ticketId}/assign
func (h *TicketHandler) AssignTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, ok := httputil.ParseUUID(w, chi.URLParam(r, "ticketId"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req AssignTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	ticket, err := h.tickets.Assign(r.Context(), ticketID.String(), req.AssignedTo, req.AdminUser)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ticket})
}

// ResolveTicket handles POST /api/v1/admin/tickets/{ticketId}/resolve
func (h *TicketHandler) ResolveTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, ok := httputil.ParseUUID(w, chi.URLParam(r, "ticketId"))
	if !ok {
		return
	}

	ticket, err := h.tickets.Resolve(r.Context(), ticketID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ticket})
}

// CloseTicket handles POST /api/v1/admin/tickets/{ticketId}/close
func (h *TicketHandler) CloseTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, ok := httputil.ParseUUID(w, chi.URLParam(r, "ticketId"))
	if !ok {
		return
	}

	ticket, err := h.tickets.Close(r.Context(), ticketID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ticket})
}
