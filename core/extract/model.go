package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/kilianp07/wheelsched/core/command"
)

// ErrNoCredential is returned when the model strategy has no API key.
var ErrNoCredential = errors.New("model extractor: no API key configured")

// ErrCircuitOpen is returned while the breaker skips model calls.
var ErrCircuitOpen = errors.New("model extractor: circuit open")

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

// generator is the subset of genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ModelConfig configures ModelExtractor.
type ModelConfig struct {
	APIKey           string
	Model            string
	Zone             string
	BreakerThreshold int
	BreakerReset     time.Duration
}

// ModelExtractor asks a Gemini model for a schema-constrained payload.
type ModelExtractor struct {
	gen     generator
	model   string
	zone    string
	breaker *breaker
}

// NewModelExtractor creates the Gemini client. It fails without an API key.
func NewModelExtractor(ctx context.Context, cfg ModelConfig) (*ModelExtractor, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoCredential
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return newModelExtractor(client.Models, cfg), nil
}

func newModelExtractor(gen generator, cfg ModelConfig) *ModelExtractor {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	zone := cfg.Zone
	if zone == "" {
		zone = "UTC"
	}
	return &ModelExtractor{
		gen:     gen,
		model:   model,
		zone:    zone,
		breaker: newBreaker(cfg.BreakerThreshold, cfg.BreakerReset),
	}
}

// Extract implements Strategy.
func (m *ModelExtractor) Extract(ctx context.Context, text string) (command.Payload, error) {
	if m.breaker.Open() {
		return command.Payload{}, ErrCircuitOpen
	}
	p, err := m.extract(ctx, text)
	if err != nil {
		m.breaker.Fail()
		return command.Payload{}, err
	}
	m.breaker.Success()
	return p, nil
}

func (m *ModelExtractor) extract(ctx context.Context, text string) (command.Payload, error) {
	temp := float32(0)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt(m.zone)}}},
		Temperature:       &temp,
		ResponseMIMEType:  "application/json",
		ResponseSchema:    payloadSchema(m.zone),
	}
	contents := []*genai.Content{
		genai.NewContentFromText(workedExamples, genai.RoleUser),
		genai.NewContentFromText(text, genai.RoleUser),
	}
	resp, err := m.gen.GenerateContent(ctx, m.model, contents, cfg)
	if err != nil {
		return command.Payload{}, fmt.Errorf("generate: %w", err)
	}
	raw := responseText(resp)
	if raw == "" {
		return command.Payload{}, fmt.Errorf("%w: empty model response", command.ErrMalformed)
	}
	p, err := command.DecodeStrict([]byte(raw))
	if err != nil {
		return command.Payload{}, err
	}
	if !p.Intent.Known() {
		return command.Payload{}, fmt.Errorf("%w: model returned intent %q", command.ErrMalformed, p.Intent)
	}
	return p, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
