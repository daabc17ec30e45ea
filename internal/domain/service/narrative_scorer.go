package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/amara-ai/assessment-service/internal/domain/port"
	"github.com/amara-ai/assessment-service/internal/domain/valueobject"
)

const narrativeInstruction = "Perform sentiment and risk analysis on the " +
	"following microfinance field agent notes. Score 1.0 for positive, " +
	"reassuring sentiment (strong promise to pay, cooperative customer); " +
	"score 0.0 for negative, risky sentiment (refuses to pay, hard to reach, " +
	"damaged assets). " +
	`Respond ONLY with JSON: {"score": 0.XX, "rationale": "..."}`

// NarrativeScorer produces the nlp signal by delegating the field agent
// notes to the external text-analysis collaborator.
type NarrativeScorer struct {
	client  port.AIScoreClient
	cache   port.ScoreCache
	audits  port.AuditStore
	timeout time.Duration
	logger  *slog.Logger
}

// NewNarrativeScorer creates a narrative scorer. The cache may be nil.
func NewNarrativeScorer(
	client port.AIScoreClient,
	cache port.ScoreCache,
	audits port.AuditStore,
	timeout time.Duration,
	logger *slog.Logger,
) *NarrativeScorer {
	return &NarrativeScorer{
		client:  client,
		cache:   cache,
		audits:  audits,
		timeout: timeout,
		logger:  logger,
	}
}

// Score rates the field notes. It returns nil for absent/blank notes
// (signal absent) and nil on collaborator failure (signal dropped, failure
// logged); it never propagates an error to the caller.
func (s *NarrativeScorer) Score(ctx context.Context, loanID string, notes string) *valueobject.SignalScore {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil
	}

	value, err := s.scoreNotes(ctx, loanID, notes)
	if err != nil {
		s.logger.Warn("dropping nlp signal",
			slog.String("loan_id", loanID),
			slog.Any("error", err),
		)
		return nil
	}

	score, err := valueobject.NewSignalScore(valueobject.SignalSourceNLP, value)
	if err != nil {
		s.logger.Warn("dropping nlp signal",
			slog.String("loan_id", loanID),
			slog.Any("error", err),
		)
		return nil
	}

	return &score
}

func (s *NarrativeScorer) scoreNotes(ctx context.Context, loanID, notes string) (float64, error) {
	cacheKey := payloadCacheKey("nlp", "notes", []byte(notes))
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, cacheKey); ok {
			return cached, nil
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.client.ScoreText(callCtx, notes, narrativeInstruction)
	if err != nil {
		return 0, err
	}

	if err := s.audits.SaveCollaboratorAudit(ctx, loanID, valueobject.SignalSourceNLP, result.Raw); err != nil {
		s.logger.Warn("failed to persist nlp audit",
			slog.String("loan_id", loanID),
			slog.Any("error", err),
		)
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, result.Score)
	}

	return result.Score, nil
}
