package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"PerpScout/internal/domain/models"
	"PerpScout/internal/domain/service"
	applogger "PerpScout/pkg/logger"

	"google.golang.org/genai"
)

var ErrMissingAPIKey = errors.New("gemini api key is not configured")

// generator is the slice of *genai.Models the advisor needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Option func(*Advisor)

func WithModel(m string) Option {
	return func(a *Advisor) { a.model = m }
}

func WithTemperature(t float32) Option {
	return func(a *Advisor) { a.temperature = t }
}

// WithMaxPicks caps how many picks are requested and kept.
func WithMaxPicks(n int) Option {
	return func(a *Advisor) {
		if n > 0 {
			a.maxPicks = n
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(a *Advisor) { a.timeout = d }
}

func WithLogger(l *applogger.Logger) Option {
	return func(a *Advisor) { a.logger = l }
}

// Advisor asks a Gemini model for categorical picks.
type Advisor struct {
	gen         generator
	model       string
	temperature float32
	maxPicks    int
	timeout     time.Duration
	logger      *applogger.Logger
}

// New builds an advisor on the Gemini API. An empty key yields an advisor
// whose every call fails with ErrMissingAPIKey.
func New(ctx context.Context, apiKey string, opts ...Option) (*Advisor, error) {
	if apiKey == "" {
		return newAdvisor(nil, opts...), nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return newAdvisor(client.Models, opts...), nil
}

func newAdvisor(gen generator, opts ...Option) *Advisor {
	a := &Advisor{
		gen:         gen,
		model:       "gemini-2.5-flash",
		temperature: 0.6,
		maxPicks:    3,
		timeout:     60 * time.Second,
		logger:      applogger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Advisor) Advise(ctx context.Context, candidates []models.Candidate, trend models.Trend) ([]models.AnalystPick, error) {
	if a.gen == nil {
		return nil, &models.AdvisoryError{Err: ErrMissingAPIKey}
	}

	prompt, err := buildPrompt(candidates, trend, a.maxPicks)
	if err != nil {
		return nil, &models.AdvisoryError{Err: err}
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := a.gen.GenerateContent(ctx, a.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(a.temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   picksSchema,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		return nil, &models.AdvisoryError{Err: fmt.Errorf("generate content: %w", err)}
	}
	if resp == nil {
		return nil, &models.AdvisoryError{Err: errors.New("empty response")}
	}

	picks, err := parsePicks(resp.Text())
	if err != nil {
		return nil, &models.AdvisoryError{Err: err}
	}
	if len(picks) > a.maxPicks {
		picks = picks[:a.maxPicks]
	}

	a.logger.Info("advisor answered",
		applogger.String("model", a.model),
		applogger.Int("candidates", len(candidates)),
		applogger.Int("picks", len(picks)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return picks, nil
}

// parsePicks decodes the model output, tolerating a fenced code block.
// Only pair, recommendation and justification are kept.
func parsePicks(text string) ([]models.AnalystPick, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("empty advisor output")
	}

	var picks []models.AnalystPick
	if err := json.Unmarshal([]byte(text), &picks); err != nil {
		return nil, fmt.Errorf("decode advisor output: %w", err)
	}
	return picks, nil
}

var _ service.Advisor = (*Advisor)(nil)
