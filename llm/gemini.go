package llm

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"droitis-backend/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
)

// Gemini invokes the Gemini API through the official client. One value is
// shared by all requests; it keeps no per-call state.
type Gemini struct {
	client         *genai.Client
	model          string
	responseSchema *genai.Schema
	retry          config.RetryPolicy
}

// NewGemini builds an invoker around an already-initialized client. The
// response schema is applied on strict-contract calls only.
func NewGemini(client *genai.Client, model string, responseSchema *genai.Schema, retry config.RetryPolicy) *Gemini {
	return &Gemini{
		client:         client,
		model:          model,
		responseSchema: responseSchema,
		retry:          retry,
	}
}

// Invoke performs one model call with retry on transient provider failures.
// The request timeout covers the whole call including backoff waits.
func (g *Gemini) Invoke(ctx context.Context, req InvokeRequest) (*InvokeResult, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	m := g.client.GenerativeModel(g.model)
	temperature := req.Temperature
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
	}
	if req.MaxTokens > 0 {
		maxTokens := req.MaxTokens
		m.GenerationConfig.MaxOutputTokens = &maxTokens
	}
	if req.Contract == ContractStrict {
		m.GenerationConfig.ResponseSchema = g.responseSchema
	}
	if req.System != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}

	var lastErr error
	backoff := g.retry.InitialBackoff
	for attempt := 0; attempt < g.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		resp, err := m.GenerateContent(ctx, genai.Text(req.User))
		if err != nil {
			if aborted(ctx, err) {
				// Retrying a timed-out call would only compound the
				// latency problem.
				return &InvokeResult{
					Status:     StatusAborted,
					HTTPStatus: 504,
					Message:    "model call timed out",
				}, nil
			}

			code, msg := providerError(err)
			lastErr = err
			if retryableStatus(code) {
				log.Printf("Warning: provider error %d (attempt %d/%d): %s",
					code, attempt+1, g.retry.MaxAttempts, msg)
				continue
			}
			return &InvokeResult{
				Status:     StatusFailed,
				HTTPStatus: code,
				Message:    msg,
			}, nil
		}

		text, finish := extractText(resp)
		if finish == genai.FinishReasonMaxTokens {
			return &InvokeResult{
				Status:     StatusTruncated,
				HTTPStatus: 200,
				Message:    "model output truncated at token budget",
				Raw:        text,
			}, nil
		}
		if text == "" {
			lastErr = errors.New("provider returned no extractable text")
			log.Printf("Warning: empty model response (attempt %d/%d)", attempt+1, g.retry.MaxAttempts)
			continue
		}

		result := &InvokeResult{
			Status:     StatusOK,
			HTTPStatus: 200,
			Raw:        text,
		}
		result.Parsed = DecodeJSONObject(text)
		return result, nil
	}

	msg := "provider unavailable after retries"
	if lastErr != nil {
		msg = lastErr.Error()
	}
	return &InvokeResult{
		Status:     StatusFailed,
		HTTPStatus: 503,
		Message:    msg,
	}, nil
}

// aborted distinguishes timeout/cancellation from provider failures.
func aborted(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	return ctx.Err() != nil
}

// providerError maps a client error onto an HTTP-like status and a message
// safe to surface.
func providerError(err error) (int, string) {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message
	}
	return 502, err.Error()
}

// extractText concatenates the text parts of the first usable candidate and
// reports its finish reason.
func extractText(resp *genai.GenerateContentResponse) (string, genai.FinishReason) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", genai.FinishReasonUnspecified
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String(), c.FinishReason
		}
		if c.FinishReason == genai.FinishReasonMaxTokens {
			return "", c.FinishReason
		}
	}
	return "", resp.Candidates[0].FinishReason
}
