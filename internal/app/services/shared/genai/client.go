package genai

import (
	"bytes"
	"careplan-service/internal/app/config"
	"careplan-service/internal/app/contracts"
	"careplan-service/internal/pkg/constvars"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client calls a chat-completions style endpoint to produce care plan text.
// Failures are classified at this boundary: the worker retries only errors
// wrapped in contracts.ErrGenerationTransient.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewClient(cfg config.AppGeneration, log *zap.Logger) *Client {
	rpm := cfg.RateLimitRPM
	if rpm <= 0 {
		rpm = 60
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeoutInSeconds) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		log:     log,
	}
}

var _ contracts.GenerationClient = (*Client)(nil)

func (c *Client) GeneratePlan(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", contracts.ErrGenerationTransient, err)
	}

	payload := chatRequest{
		Model:     c.model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: c.maxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contracts.ErrGenerationRejected, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", contracts.ErrGenerationRejected, err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	req.Header.Set(constvars.HeaderAuthorization, "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network failures and timeouts may succeed on a later attempt.
		return "", fmt.Errorf("%w: %v", contracts.ErrGenerationTransient, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contracts.ErrGenerationTransient, err)
	}

	if err := classifyStatus(resp.StatusCode); err != nil {
		c.log.Warn("genai.GeneratePlan non-success response",
			zap.Int(constvars.LoggingStatusCodeKey, resp.StatusCode))
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: malformed response body", contracts.ErrGenerationTransient)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", contracts.ErrGenerationRejected)
	}
	return parsed.Choices[0].Message.Content, nil
}

// classifyStatus separates failures that may clear on retry from ones that
// never will. Overload and server-side statuses are transient; the remaining
// 4xx family means the request itself is bad.
func classifyStatus(statusCode int) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == constvars.StatusRequestTimeout,
		statusCode == constvars.StatusTooManyRequests,
		statusCode >= 500:
		return fmt.Errorf("%w: upstream status %d", contracts.ErrGenerationTransient, statusCode)
	default:
		return fmt.Errorf("%w: upstream status %d", contracts.ErrGenerationRejected, statusCode)
	}
}
