package services

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"hrtools/resume-shortlister/internal/config"
	"hrtools/resume-shortlister/internal/models"
)

// GeminiService wraps the hosted language model. The pipeline treats it as a
// black box; transport failures surface as ErrEvaluatorUnavailable after the
// bounded retry loop is exhausted.
type GeminiService interface {
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32) (string, error)
}

type geminiService struct {
	client         *genai.Client
	modelName      string
	maxRetries     int
	attemptTimeout time.Duration
	retryDelay     time.Duration
	sleep          func(time.Duration)
	generate       func(ctx context.Context, prompt string, temperature float32) (string, error)
}

func NewGeminiService(cfg *config.Config) (GeminiService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	svc := &geminiService{
		client:         client,
		modelName:      cfg.Gemini.Model,
		maxRetries:     cfg.Worker.RetryMaxAttempts,
		attemptTimeout: cfg.Worker.EvaluateTimeout,
		retryDelay:     cfg.Worker.RetryInitialDelay,
		sleep:          time.Sleep,
	}
	svc.generate = svc.GenerateText
	return svc, nil
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// GenerateTextWithRetry implements GeminiService. Each attempt runs under its
// own wall-clock timeout so one slow call cannot stall a whole batch; the
// delay between attempts doubles each time.
func (g *geminiService) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32) (string, error) {
	var lastErr error
	delay := g.retryDelay

	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, g.attemptTimeout)
		result, err := g.generate(attemptCtx, prompt, temperature)
		cancel()
		if err == nil {
			return result, nil
		}

		lastErr = err

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if attempt < g.maxRetries {
			g.sleep(delay)
			delay *= 2
		}
	}

	return "", fmt.Errorf("after %d attempts: %v: %w", g.maxRetries, lastErr, models.ErrEvaluatorUnavailable)
}
