package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"surgemind-dispatch/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// TaskText 生成的任务文案
type TaskText struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Provider 文案增强能力（可选、限时、可失败）
// 只提供文案，不参与优先级和指派决策；失败由调用方静默回退
type Provider interface {
	Generate(ctx context.Context, trigger *models.Trigger) (*TaskText, error)
}

// chatMessage OpenRouter 对话消息
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest OpenRouter chat completions 请求
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatResponse OpenRouter chat completions 响应
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// OpenRouterClient OpenRouter API 客户端
type OpenRouterClient struct {
	httpClient *resty.Client
	model      string
	logger     *zap.Logger
}

// NewOpenRouterClient 创建 OpenRouter 客户端
// timeout 为单次调用上限：流水线不允许被外部依赖无限阻塞
func NewOpenRouterClient(baseURL, apiKey, model string, timeout time.Duration, logger *zap.Logger) *OpenRouterClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Authorization", "Bearer "+apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &OpenRouterClient{
		httpClient: client,
		model:      model,
		logger:     logger,
	}
}

// Generate 为触发器生成任务文案
// 返回错误时调用方使用确定性兜底文案，绝不因增强失败而导致任务合成失败
func (c *OpenRouterClient) Generate(ctx context.Context, trigger *models.Trigger) (*TaskText, error) {
	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a hospital coordinator AI. Output strictly valid JSON.",
			},
			{
				Role:    "user",
				Content: buildPrompt(trigger),
			},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	var response chatResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		Post("/chat/completions")

	if err != nil {
		return nil, fmt.Errorf("failed to call OpenRouter API: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("OpenRouter API returned status %d", resp.StatusCode())
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("OpenRouter API returned no choices")
	}

	text, err := parseTaskText(response.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Enrichment text generated",
		zap.String("source_kind", string(trigger.SourceKind)),
		zap.String("title", text.Title),
	)

	return text, nil
}

// buildPrompt 构建生成提示词
func buildPrompt(trigger *models.Trigger) string {
	return fmt.Sprintf(
		"Event in %s. Type: %s. Severity: %s. Context: %s. "+
			"Task: Create a concise, urgent task title and description for a nurse/doctor. "+
			`Return strictly valid JSON in this format: {"title": "...", "description": "..."}`,
		trigger.Location,
		trigger.SourceKind,
		trigger.Severity,
		trigger.Summary,
	)
}

// parseTaskText 解析模型输出（容忍 markdown 代码块包裹）
func parseTaskText(content string) (*TaskText, error) {
	cleaned := strings.ReplaceAll(content, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var text TaskText
	if err := json.Unmarshal([]byte(cleaned), &text); err != nil {
		return nil, fmt.Errorf("failed to parse enrichment response: %w", err)
	}
	if text.Title == "" || text.Description == "" {
		return nil, fmt.Errorf("enrichment response missing title or description")
	}

	return &text, nil
}
