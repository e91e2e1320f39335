package http

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
	"github.com/ShakenTheCoder/REVIfinal/internal/event"
	"github.com/ShakenTheCoder/REVIfinal/internal/repository"
	pkgkafka "github.com/ShakenTheCoder/REVIfinal/pkg/kafka"
)

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) UpdateClassification(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) ListByTab(ctx context.Context, filter repository.TabFilter) ([]domain.Review, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) List(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) ListContributing(ctx context.Context, productID string) ([]domain.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) CountByFingerprint(ctx context.Context, productID, fingerprint string) (int, error) {
	args := m.Called(ctx, productID, fingerprint)
	return args.Int(0), args.Error(1)
}

func (m *mockReviewRepository) IncrementHelpful(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type mockRatingRepository struct {
	mock.Mock
}

func (m *mockRatingRepository) Get(ctx context.Context, productID string) (*domain.RatingSummary, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatingSummary), args.Error(1)
}

func (m *mockRatingRepository) Upsert(ctx context.Context, summary *domain.RatingSummary, expectedVersion int) error {
	args := m.Called(ctx, summary, expectedVersion)
	return args.Error(0)
}

type mockTicketRepository struct {
	mock.Mock
}

func (m *mockTicketRepository) Create(ctx context.Context, ticket *domain.SupportTicket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *mockTicketRepository) GetByID(ctx context.Context, id string) (*domain.SupportTicket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SupportTicket), args.Error(1)
}

func (m *mockTicketRepository) GetByReviewID(ctx context.Context, reviewID string) (*domain.SupportTicket, error) {
	args := m.Called(ctx, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SupportTicket), args.Error(1)
}

func (m *mockTicketRepository) List(ctx context.Context, filter repository.TicketFilter) ([]domain.SupportTicket, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.SupportTicket), args.Int(1), args.Error(2)
}

func (m *mockTicketRepository) UpdateStatus(ctx context.Context, id string, to domain.TicketStatus, assignee string, resolvedAt *time.Time, allowedFrom []domain.TicketStatus) (*domain.SupportTicket, error) {
	args := m.Called(ctx, id, to, assignee, resolvedAt, allowedFrom)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SupportTicket), args.Error(1)
}

type mockAdminActionRepository struct {
	mock.Mock
}

func (m *mockAdminActionRepository) Create(ctx context.Context, action *domain.AdminAction) error {
	args := m.Called(ctx, action)
	return args.Error(0)
}

func (m *mockAdminActionRepository) List(ctx context.Context, page, perPage int) ([]domain.AdminAction, int, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.AdminAction), args.Int(1), args.Error(2)
}

type mockInsightCache struct {
	mock.Mock
}

func (m *mockInsightCache) Get(ctx context.Context, productID string, tab domain.Tab) (*domain.Insight, error) {
	args := m.Called(ctx, productID, tab)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Insight), args.Error(1)
}

func (m *mockInsightCache) Set(ctx context.Context, productID string, tab domain.Tab, insight *domain.Insight) error {
	args := m.Called(ctx, productID, tab, insight)
	return args.Error(0)
}

func (m *mockInsightCache) Invalidate(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEventProducer() *event.Producer {
	logger := testLogger()
	cfg := pkgkafka.DefaultProducerConfig([]string{"localhost:19092"})
	cfg.Async = true
	return event.NewProducer(pkgkafka.NewProducer(cfg, logger), logger)
}
