// Package openrouter 提供上游补全接口的 HTTP 客户端
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"sparkchat-api/internal/config"
	"sparkchat-api/internal/domain/service"
	"sparkchat-api/pkg/metrics"
)

var tracer = otel.Tracer("openrouter")

const defaultTimeout = 120 * time.Second

// Client OpenRouter 聊天补全客户端。
// 请求/响应与上游 JSON 契约一一对应，非 2xx 一律视为调用失败，不解析响应体。
type Client struct {
	apiKey     string
	baseURL    string
	siteURL    string
	siteName   string
	httpClient *http.Client
}

// NewClient 创建补全客户端
func NewClient(cfg *config.ProviderConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter api key is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("openrouter base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		siteURL:  cfg.SiteURL,
		siteName: cfg.SiteName,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// ChatCompletion 调用 /chat/completions
func (c *Client) ChatCompletion(ctx context.Context, req service.CompletionRequest) (*service.CompletionResponse, error) {
	ctx, span := tracer.Start(ctx, "openrouter.ChatCompletion")
	span.SetAttributes(
		attribute.String("llm.model", req.Model),
		attribute.Int("llm.max_tokens", req.MaxTokens),
		attribute.Int("llm.message_count", len(req.Messages)),
	)
	defer span.End()

	body, err := json.Marshal(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to build completion request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if c.siteURL != "" {
		httpReq.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.siteName != "" {
		httpReq.Header.Set("X-Title", c.siteName)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)
	metrics.LLMCallDuration.WithLabelValues(req.Model).Observe(duration.Seconds())

	if err != nil {
		span.RecordError(err)
		metrics.LLMCallTotal.WithLabelValues(req.Model, "error").Inc()
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 错误响应体不做结构化解析，只透传状态码
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		metrics.LLMCallTotal.WithLabelValues(req.Model, "error").Inc()
		err := fmt.Errorf("completion api returned status %d", resp.StatusCode)
		span.RecordError(err)
		return nil, err
	}

	var completion service.CompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		span.RecordError(err)
		metrics.LLMCallTotal.WithLabelValues(req.Model, "error").Inc()
		return nil, fmt.Errorf("failed to decode completion response: %w", err)
	}

	metrics.LLMCallTotal.WithLabelValues(req.Model, "ok").Inc()
	metrics.LLMTokensUsed.WithLabelValues(completion.Model, "prompt").Add(float64(completion.Usage.PromptTokens))
	metrics.LLMTokensUsed.WithLabelValues(completion.Model, "completion").Add(float64(completion.Usage.CompletionTokens))
	span.SetAttributes(attribute.Int("llm.total_tokens", completion.Usage.TotalTokens))

	return &completion, nil
}
