package insight

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"context"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
)

const (
	defaultModel       = "gpt-4o-mini"
	maxSummaryTokens   = 256
	maxSummaryChars    = 1200
	breakerMinRequests = 5
	breakerRatio       = 0.5
)

const systemPrompt = "You are a product review analyst. Given theme counts and " +
	"representative customer statements, write a short factual summary of what " +
	"customers say. Two to three sentences, plain prose, no markdown, no lists."

// OpenAIConfig holds settings for the OpenAI-backed generator.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAIGenerator produces summary prose through the OpenAI chat API. Calls
// are bounded by a timeout and guarded by a circuit breaker so a degraded
// upstream cannot stall review reads.
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[string]
	logger  *slog.Logger
}

// NewOpenAIGenerator creates a generator backed by the OpenAI chat API.
func NewOpenAIGenerator(cfg OpenAIConfig, logger *slog.Logger) *OpenAIGenerator {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	settings := gobreaker.Settings{
		Name:    "insight-generator",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= breakerRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &OpenAIGenerator{
		client:  openai.NewClient(cfg.APIKey),
		model:   model,
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
		logger:  logger,
	}
}

// Summarize requests summary prose for the structured insight data. The
// result is treated as opaque text and truncated to a fixed bound.
func (g *OpenAIGenerator) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.breaker.Execute(func() (string, error) {
		resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:     g.model,
			MaxTokens: maxSummaryTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req)},
			},
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("empty completion response")
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}

	text = strings.TrimSpace(text)
	if len(text) > maxSummaryChars {
		text = text[:maxSummaryChars]
	}
	return text, nil
}

func buildPrompt(req SummaryRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tab: %s\nReview count: %d\nThemes:\n", req.Tab, req.ReviewCount)
	for _, theme := range req.KeyThemes {
		fmt.Fprintf(&b, "- %s (%d mentions)\n", theme.Name, theme.Mentions)
	}
	b.WriteString("Representative statements:\n")
	for _, point := range req.CommonPoints {
		fmt.Fprintf(&b, "- %s\n", point)
	}
	return b.String()
}
