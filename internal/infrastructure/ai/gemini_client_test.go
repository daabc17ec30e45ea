package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amara-ai/assessment-service/internal/domain/service"
)

func geminiServer(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewGeminiClient(GeminiConfig{
		APIKey:      "test-key",
		BaseURL:     server.URL,
		VisionModel: "vision-model",
		TextModel:   "text-model",
	})
}

func candidateResponse(text string) []byte {
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	}
	payload, _ := json.Marshal(resp)
	return payload
}

func TestGeminiClient_ScoreText(t *testing.T) {
	t.Run("parses a plain JSON score", func(t *testing.T) {
		client := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
			assert.Contains(t, r.URL.Path, "text-model")
			w.Write(candidateResponse(`{"score": 0.85, "rationale": "cooperative customer"}`))
		})

		result, err := client.ScoreText(context.Background(), "notes", "instruction")
		require.NoError(t, err)
		assert.InDelta(t, 0.85, result.Score, 1e-9)
		assert.Equal(t, "cooperative customer", result.Rationale)
		assert.NotEmpty(t, result.Raw)
	})

	t.Run("tolerates markdown code fences", func(t *testing.T) {
		client := geminiServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write(candidateResponse("```json\n{\"score\": 0.3, \"rationale\": \"x\"}\n```"))
		})

		result, err := client.ScoreText(context.Background(), "notes", "instruction")
		require.NoError(t, err)
		assert.InDelta(t, 0.3, result.Score, 1e-9)
	})

	t.Run("rate limiting is a collaborator error", func(t *testing.T) {
		client := geminiServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := client.ScoreText(context.Background(), "notes", "instruction")
		require.Error(t, err)

		var collabErr *service.CollaboratorError
		require.True(t, errors.As(err, &collabErr))
		assert.Equal(t, "nlp", collabErr.Collaborator)
		assert.Contains(t, err.Error(), "rate limited")
	})

	t.Run("rejects out-of-range score", func(t *testing.T) {
		client := geminiServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write(candidateResponse(`{"score": 1.7, "rationale": "x"}`))
		})

		_, err := client.ScoreText(context.Background(), "notes", "instruction")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of [0,1]")
	})

	t.Run("rejects non-JSON output", func(t *testing.T) {
		client := geminiServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write(candidateResponse("I would rate this a solid 7/10."))
		})

		_, err := client.ScoreText(context.Background(), "notes", "instruction")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "malformed score")
	})

	t.Run("rejects empty candidates", func(t *testing.T) {
		client := geminiServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"candidates": []}`))
		})

		_, err := client.ScoreText(context.Background(), "notes", "instruction")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty response")
	})
}

func TestGeminiClient_ScoreImage(t *testing.T) {
	t.Run("sends inline image data", func(t *testing.T) {
		client := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.URL.Path, "vision-model")

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			var req generateRequest
			require.NoError(t, json.Unmarshal(body, &req))
			require.Len(t, req.Contents, 1)
			require.Len(t, req.Contents[0].Parts, 2)
			assert.NotNil(t, req.Contents[0].Parts[1].InlineData)

			w.Write(candidateResponse(`{"score": 0.6, "rationale": "fair condition"}`))
		})

		result, err := client.ScoreImage(context.Background(), []byte("photo-bytes"), "instruction")
		require.NoError(t, err)
		assert.InDelta(t, 0.6, result.Score, 1e-9)
	})

	t.Run("wraps failures as vision collaborator errors", func(t *testing.T) {
		client := geminiServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.ScoreImage(context.Background(), []byte("photo-bytes"), "instruction")
		require.Error(t, err)

		var collabErr *service.CollaboratorError
		require.True(t, errors.As(err, &collabErr))
		assert.Equal(t, "vision", collabErr.Collaborator)
	})
}

func TestParseScorePayload(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		score   float64
		wantErr bool
	}{
		{"bare JSON", `{"score": 0.5, "rationale": "ok"}`, 0.5, false},
		{"fenced JSON", "```json\n{\"score\": 0.25, \"rationale\": \"ok\"}\n```", 0.25, false},
		{"fence without language tag", "```\n{\"score\": 0.75, \"rationale\": \"ok\"}\n```", 0.75, false},
		{"surrounding whitespace", "  {\"score\": 1, \"rationale\": \"ok\"}  ", 1, false},
		{"prose", "the score is 0.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := parseScorePayload(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.score, parsed.Score, 1e-9)
		})
	}
}

func TestStubClient(t *testing.T) {
	client := NewStubClient(slog.New(slog.NewTextHandler(io.Discard, nil)))

	imageResult, err := client.ScoreImage(context.Background(), []byte("photo"), "instruction")
	require.NoError(t, err)
	assert.Equal(t, 0.5, imageResult.Score)
	assert.NotEmpty(t, imageResult.Raw)

	textResult, err := client.ScoreText(context.Background(), "notes", "instruction")
	require.NoError(t, err)
	assert.Equal(t, 0.5, textResult.Score)
}
