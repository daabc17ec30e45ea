package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/amara-ai/assessment-service/internal/domain/port"
	"github.com/amara-ai/assessment-service/internal/domain/valueobject"
)

const visionInstruction = "You are an asset assessor for microfinance loans. " +
	"Analyze this %s photo. Evaluate the condition, quality, and economic " +
	"indicators visible. Score 1.0 for excellent condition and low risk " +
	"(well-maintained, prosperous signs); score 0.0 for poor condition and " +
	"high risk (deteriorated, concerning signs). " +
	`Respond ONLY with JSON: {"score": 0.XX, "rationale": "..."}`

// PhotoSet carries the optional business and home photo payloads for one
// assessment request.
type PhotoSet struct {
	Business []byte
	Home     []byte
}

// Empty reports whether no photo was supplied.
func (p PhotoSet) Empty() bool {
	return len(p.Business) == 0 && len(p.Home) == 0
}

// VisionScorer produces the vision signal by delegating each present photo
// to the external vision collaborator and averaging the sub-scores.
type VisionScorer struct {
	client  port.AIScoreClient
	cache   port.ScoreCache
	audits  port.AuditStore
	timeout time.Duration
	logger  *slog.Logger
}

// NewVisionScorer creates a vision scorer. The cache may be nil.
func NewVisionScorer(
	client port.AIScoreClient,
	cache port.ScoreCache,
	audits port.AuditStore,
	timeout time.Duration,
	logger *slog.Logger,
) *VisionScorer {
	return &VisionScorer{
		client:  client,
		cache:   cache,
		audits:  audits,
		timeout: timeout,
		logger:  logger,
	}
}

// Score rates the supplied photos. It returns nil when no photo was supplied
// (signal absent) and nil on collaborator failure (signal dropped, failure
// logged); it never propagates an error to the caller.
func (s *VisionScorer) Score(ctx context.Context, loanID string, photos PhotoSet) *valueobject.SignalScore {
	if photos.Empty() {
		return nil
	}

	var businessScore, homeScore *float64

	if len(photos.Business) > 0 {
		value, err := s.scorePhoto(ctx, loanID, photos.Business, "business")
		if err != nil {
			s.logger.Warn("dropping vision signal",
				slog.String("loan_id", loanID),
				slog.String("photo", "business"),
				slog.Any("error", err),
			)
			return nil
		}
		businessScore = &value
	}

	if len(photos.Home) > 0 {
		value, err := s.scorePhoto(ctx, loanID, photos.Home, "home")
		if err != nil {
			s.logger.Warn("dropping vision signal",
				slog.String("loan_id", loanID),
				slog.String("photo", "home"),
				slog.Any("error", err),
			)
			return nil
		}
		homeScore = &value
	}

	score, err := valueobject.NewVisionSignalScore(businessScore, homeScore)
	if err != nil {
		s.logger.Warn("dropping vision signal",
			slog.String("loan_id", loanID),
			slog.Any("error", err),
		)
		return nil
	}

	return &score
}

func (s *VisionScorer) scorePhoto(ctx context.Context, loanID string, photo []byte, assetType string) (float64, error) {
	instruction := fmt.Sprintf(visionInstruction, assetType)

	cacheKey := payloadCacheKey("vision", assetType, photo)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, cacheKey); ok {
			return cached, nil
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.client.ScoreImage(callCtx, photo, instruction)
	if err != nil {
		return 0, err
	}

	s.persistAudit(ctx, loanID, result.Raw)

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, result.Score)
	}

	return result.Score, nil
}

func (s *VisionScorer) persistAudit(ctx context.Context, loanID string, raw []byte) {
	if err := s.audits.SaveCollaboratorAudit(ctx, loanID, valueobject.SignalSourceVision, raw); err != nil {
		s.logger.Warn("failed to persist vision audit",
			slog.String("loan_id", loanID),
			slog.Any("error", err),
		)
	}
}

// payloadCacheKey derives a stable cache key from the payload content, so
// identical photos or notes hit the cache across assessment runs.
func payloadCacheKey(source, variant string, payload []byte) string {
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("aiscore:%s:%s:%s", source, variant, hex.EncodeToString(sum[:]))
}
