package ai

import (
	"context"
	"log/slog"

	"github.com/amara-ai/assessment-service/internal/domain/port"
)

// StubClient implements port.AIScoreClient with a fixed neutral score, for
// development environments without collaborator credentials.
type StubClient struct {
	logger *slog.Logger
}

// NewStubClient creates a new stub score client.
func NewStubClient(logger *slog.Logger) *StubClient {
	return &StubClient{logger: logger}
}

// ScoreImage returns a neutral score without calling any collaborator.
func (c *StubClient) ScoreImage(_ context.Context, image []byte, _ string) (port.ScoreResult, error) {
	c.logger.Debug("stub image scoring requested", slog.Int("payload_size", len(image)))
	return neutralResult(), nil
}

// ScoreText returns a neutral score without calling any collaborator.
func (c *StubClient) ScoreText(_ context.Context, text string, _ string) (port.ScoreResult, error) {
	c.logger.Debug("stub text scoring requested", slog.Int("text_length", len(text)))
	return neutralResult(), nil
}

func neutralResult() port.ScoreResult {
	return port.ScoreResult{
		Score:     0.5,
		Rationale: "stub client: neutral score",
		Raw:       []byte(`{"score": 0.5, "rationale": "stub client: neutral score"}`),
	}
}
