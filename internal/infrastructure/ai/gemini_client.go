package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/amara-ai/assessment-service/internal/domain/port"
	"github.com/amara-ai/assessment-service/internal/domain/service"
	"github.com/amara-ai/assessment-service/pkg/observability"
)

// GeminiConfig holds the connection settings for the Gemini collaborator.
type GeminiConfig struct {
	APIKey      string
	BaseURL     string
	VisionModel string
	TextModel   string
}

// GeminiClient implements port.AIScoreClient against the Gemini
// generateContent REST API. Both scoring methods instruct the model to
// answer with a bare JSON object carrying the score and rationale.
type GeminiClient struct {
	config     GeminiConfig
	httpClient *http.Client
}

// NewGeminiClient creates a new Gemini-backed score client.
func NewGeminiClient(config GeminiConfig) *GeminiClient {
	return &GeminiClient{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// scorePayload is the JSON object the instruction asks the model to emit.
type scorePayload struct {
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

// ScoreImage rates an image against the instruction on a 0.0-1.0 scale.
func (c *GeminiClient) ScoreImage(ctx context.Context, image []byte, instruction string) (port.ScoreResult, error) {
	req := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: instruction},
				{InlineData: &inlineData{
					MimeType: http.DetectContentType(image),
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}

	result, err := c.generate(ctx, c.config.VisionModel, req)
	if err != nil {
		observability.CollaboratorFailures.WithLabelValues("vision").Inc()
		return port.ScoreResult{}, &service.CollaboratorError{Collaborator: "vision", Cause: err}
	}
	return result, nil
}

// ScoreText rates free text against the instruction on a 0.0-1.0 scale.
func (c *GeminiClient) ScoreText(ctx context.Context, text string, instruction string) (port.ScoreResult, error) {
	req := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: instruction},
				{Text: text},
			},
		}},
	}

	result, err := c.generate(ctx, c.config.TextModel, req)
	if err != nil {
		observability.CollaboratorFailures.WithLabelValues("nlp").Inc()
		return port.ScoreResult{}, &service.CollaboratorError{Collaborator: "nlp", Cause: err}
	}
	return result, nil
}

func (c *GeminiClient) generate(ctx context.Context, model string, reqBody generateRequest) (port.ScoreResult, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return port.ScoreResult{}, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.config.BaseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return port.ScoreResult{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return port.ScoreResult{}, fmt.Errorf("calling %s: %w", model, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return port.ScoreResult{}, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return port.ScoreResult{}, fmt.Errorf("rate limited by %s", model)
	}
	if resp.StatusCode != http.StatusOK {
		return port.ScoreResult{}, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return port.ScoreResult{}, fmt.Errorf("decoding response: %w", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return port.ScoreResult{}, fmt.Errorf("empty response from %s", model)
	}

	text := genResp.Candidates[0].Content.Parts[0].Text
	parsed, err := parseScorePayload(text)
	if err != nil {
		return port.ScoreResult{}, fmt.Errorf("malformed score from %s: %w", model, err)
	}
	if parsed.Score < 0 || parsed.Score > 1 {
		return port.ScoreResult{}, fmt.Errorf("score %f from %s out of [0,1]", parsed.Score, model)
	}

	return port.ScoreResult{
		Score:     parsed.Score,
		Rationale: parsed.Rationale,
		Raw:       body,
	}, nil
}

// parseScorePayload extracts the JSON score object from the model output,
// tolerating markdown code fences around it.
func parseScorePayload(text string) (scorePayload, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var parsed scorePayload
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return scorePayload{}, err
	}
	return parsed, nil
}
