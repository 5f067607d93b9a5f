package enrichment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"surgemind-dispatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func enrichmentTrigger() *models.Trigger {
	return &models.Trigger{
		SourceKind: models.SourceEmergencyReport,
		Severity:   models.SeverityHigh,
		Location:   "ER",
		OccurredAt: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		Summary:    "Emergency Response: Code Blue",
	}
}

// newChatServer 构造返回固定 content 的 OpenRouter 假服务
func newChatServer(t *testing.T, content string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestGenerate_Success(t *testing.T) {
	server := newChatServer(t, `{"title": "Respond to Code Blue", "description": "Rush to ER bay 3 with crash cart."}`)
	defer server.Close()

	client := NewOpenRouterClient(server.URL, "test-key", "test-model", 3*time.Second, zap.NewNop())

	text, err := client.Generate(context.Background(), enrichmentTrigger())

	require.NoError(t, err)
	assert.Equal(t, "Respond to Code Blue", text.Title)
	assert.Equal(t, "Rush to ER bay 3 with crash cart.", text.Description)
}

func TestGenerate_StripsMarkdownFences(t *testing.T) {
	server := newChatServer(t, "```json\n{\"title\": \"T\", \"description\": \"D\"}\n```")
	defer server.Close()

	client := NewOpenRouterClient(server.URL, "test-key", "test-model", 3*time.Second, zap.NewNop())

	text, err := client.Generate(context.Background(), enrichmentTrigger())

	require.NoError(t, err)
	assert.Equal(t, "T", text.Title)
	assert.Equal(t, "D", text.Description)
}

func TestGenerate_MalformedJSON(t *testing.T) {
	server := newChatServer(t, "Sure! Here is the task you asked for.")
	defer server.Close()

	client := NewOpenRouterClient(server.URL, "test-key", "test-model", 3*time.Second, zap.NewNop())

	_, err := client.Generate(context.Background(), enrichmentTrigger())
	assert.Error(t, err)
}

func TestGenerate_EmptyFieldsRejected(t *testing.T) {
	server := newChatServer(t, `{"title": "", "description": "D"}`)
	defer server.Close()

	client := NewOpenRouterClient(server.URL, "test-key", "test-model", 3*time.Second, zap.NewNop())

	_, err := client.Generate(context.Background(), enrichmentTrigger())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing title or description")
}

func TestGenerate_APIErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenRouterClient(server.URL, "test-key", "test-model", 3*time.Second, zap.NewNop())

	_, err := client.Generate(context.Background(), enrichmentTrigger())
	assert.Error(t, err)
}

func TestGenerate_TimeoutCancels(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	client := NewOpenRouterClient(server.URL, "test-key", "test-model", 50*time.Millisecond, zap.NewNop())

	start := time.Now()
	_, err := client.Generate(context.Background(), enrichmentTrigger())

	assert.Error(t, err)
	// 超时必须近似等于配置值，不允许无限阻塞
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestParseTaskText(t *testing.T) {
	text, err := parseTaskText(`  {"title": "A", "description": "B"}  `)
	require.NoError(t, err)
	assert.Equal(t, "A", text.Title)

	_, err = parseTaskText("not json")
	assert.Error(t, err)
}
