package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
	pkgkafka "github.com/ShakenTheCoder/REVIfinal/pkg/kafka"
)

// Kafka topic constants for review domain events.
const (
	TopicReviewClassified = "revi.review.classified"
	TopicReviewOverridden = "revi.review.overridden"
	TopicTicketCreated    = "revi.ticket.created"
	TopicTicketUpdated    = "revi.ticket.updated"
)

// Aggregate type constants.
const (
	AggregateTypeReview = "review"
	AggregateTypeTicket = "ticket"
)

// Source identifier for events originating from this service.
const SourceReviewService = "revi-api"

// ReviewClassifiedData is the payload for a review.classified event. It
// carries the full analysis outcome but never the reviewer's email.
type ReviewClassifiedData struct {
	ReviewID   string   `json:"review_id"`
	ProductID  string   `json:"product_id"`
	Rating     int      `json:"rating"`
	ValueScore float64  `json:"value_score"`
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Reason     string   `json:"reason"`
	Tags       []string `json:"tags,omitempty"`
	Severity   string   `json:"severity,omitempty"`
}

// ReviewOverriddenData is the payload for a review.overridden event.
type ReviewOverriddenData struct {
	ReviewID    string  `json:"review_id"`
	ProductID   string  `json:"product_id"`
	AdminUser   string  `json:"admin_user"`
	OldCategory string  `json:"old_category"`
	NewCategory string  `json:"new_category"`
	OldScore    float64 `json:"old_score"`
	NewScore    float64 `json:"new_score"`
	Reason      string  `json:"reason,omitempty"`
}

// TicketCreatedData is the payload for a ticket.created event.
type TicketCreatedData struct {
	TicketID string `json:"ticket_id"`
	ReviewID string `json:"review_id"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
}

// TicketUpdatedData is the payload for a ticket.updated event.
type TicketUpdatedData struct {
	TicketID   string `json:"ticket_id"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
	AssignedTo string `json:"assigned_to,omitempty"`
}

// Producer publishes review domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the review service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReviewClassified publishes a review.classified event with the
// analysis outcome of an accepted submission.
func (p *Producer) PublishReviewClassified(ctx context.Context, review *domain.Review) error {
	data := ReviewClassifiedData{
		ReviewID:   review.ID,
		ProductID:  review.ProductID,
		Rating:     review.Rating,
		ValueScore: review.ValueScore,
		Category:   string(review.Category),
		Confidence: review.Confidence,
		Reason:     review.Reason,
		Tags:       review.Tags,
		Severity:   review.Severity,
	}

	event, err := pkgkafka.NewEvent(TopicReviewClassified, review.ID, AggregateTypeReview, SourceReviewService, data)
	if err != nil {
		return fmt.Errorf("create review.classified event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewClassified, event); err != nil {
		return fmt.Errorf("publish review.classified event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.classified event",
		slog.String("review_id", review.ID),
		slog.String("category", string(review.Category)),
	)

	return nil
}

// PublishReviewOverridden publishes a review.overridden event recording an
// administrator reclassification.
func (p *Producer) PublishReviewOverridden(ctx context.Context, data ReviewOverriddenData) error {
	event, err := pkgkafka.NewEvent(TopicReviewOverridden, data.ReviewID, AggregateTypeReview, SourceReviewService, data)
	if err != nil {
		return fmt.Errorf("create review.overridden event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewOverridden, event); err != nil {
		return fmt.Errorf("publish review.overridden event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.overridden event",
		slog.String("review_id", data.ReviewID),
		slog.String("new_category", data.NewCategory),
	)

	return nil
}

// PublishTicketCreated publishes a ticket.created event.
func (p *Producer) PublishTicketCreated(ctx context.Context, ticket *domain.SupportTicket) error {
	data := TicketCreatedData{
		TicketID: ticket.ID,
		ReviewID: ticket.ReviewID,
		Priority: string(ticket.Priority),
		Status:   string(ticket.Status),
	}

	event, err := pkgkafka.NewEvent(TopicTicketCreated, ticket.ID, AggregateTypeTicket, SourceReviewService, data)
	if err != nil {
		return fmt.Errorf("create ticket.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicTicketCreated, event); err != nil {
		return fmt.Errorf("publish ticket.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published ticket.created event",
		slog.String("ticket_id", ticket.ID),
		slog.String("priority", string(ticket.Priority)),
	)

	return nil
}

// PublishTicketUpdated publishes a ticket.updated event after a status
// transition.
func (p *Producer) PublishTicketUpdated(ctx context.Context, ticketID string, oldStatus, newStatus domain.TicketStatus, assignedTo string) error {
	data := TicketUpdatedData{
		TicketID:   ticketID,
		OldStatus:  string(oldStatus),
		NewStatus:  string(newStatus),
		AssignedTo: assignedTo,
	}

	event, err := pkgkafka.NewEvent(TopicTicketUpdated, ticketID, AggregateTypeTicket, SourceReviewService, data)
	if err != nil {
		return fmt.Errorf("create ticket.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicTicketUpdated, event); err != nil {
		return fmt.Errorf("publish ticket.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published ticket.updated event",
		slog.String("ticket_id", ticketID),
		slog.String("new_status", string(newStatus)),
	)

	return nil
}
