package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
)

// GeminiClient implements Client on top of the Gemini API with JSON
// response schemas.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiClient builds a Gemini-backed client. An empty apiKey yields
// ErrNotConfigured.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{client: client, model: model, temperature: 0.4}, nil
}

// Generate runs one structured generation call.
func (g *GeminiClient) Generate(ctx context.Context, req Request) ([]byte, error) {
	schema, ok := responseSchemas[req.Schema]
	if !ok {
		return nil, fmt.Errorf("%w: unknown schema %q", ErrInvalidOutput, req.Schema)
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema,
		Temperature:       genai.Ptr(g.temperature),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, classify(err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidOutput)
	}
	return []byte(text), nil
}

// classify maps upstream failures onto the package sentinels.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyCode(apiErr.Code, err)
	}
	var apiPtr *genai.APIError
	if errors.As(err, &apiPtr) && apiPtr != nil {
		return classifyCode(apiPtr.Code, err)
	}
	return fmt.Errorf("generate: %w", err)
}

func classifyCode(code int, err error) error {
	switch {
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout, code >= 500:
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}
	return fmt.Errorf("generate: %w", err)
}

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func scoreSchema() *genai.Schema {
	lo, hi := float64(domain.MinScore), float64(domain.MaxScore)
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score":  {Type: genai.TypeInteger, Minimum: &lo, Maximum: &hi},
			"reason": str("short justification quoting the player's words"),
		},
		Required: []string{"score", "reason"},
	}
}

func insightSchema(scope domain.InsightScope) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":    str("short headline"),
			"content":  str("two to four sentences for staff"),
			"category": {Type: genai.TypeString, Enum: scope.Categories()},
		},
		Required: []string{"title", "content", "category"},
	}
}

var responseSchemas = buildSchemas()

func buildSchemas() map[Schema]*genai.Schema {
	scores := make(map[string]*genai.Schema, len(domain.Dimensions))
	for _, d := range domain.Dimensions {
		scores[string(d)] = scoreSchema()
	}
	alertTypes := make([]string, 0, len(domain.AlertTypes))
	for _, t := range domain.AlertTypes {
		alertTypes = append(alertTypes, string(t))
	}
	one := int64(1)

	return map[Schema]*genai.Schema{
		SchemaOnboarding: {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"response":        str("reply to the player"),
				"isTopicComplete": {Type: genai.TypeBoolean},
				"summary":         str("topic summary, only when complete"),
			},
			Required: []string{"response", "isTopicComplete"},
		},
		SchemaWellness: {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"response":       str("reply to the player"),
				"summary":        str("one-line summary of the day so far"),
				"wellnessScores": {Type: genai.TypeObject, Properties: scores},
				"injury": {
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"injured": {Type: genai.TypeBoolean},
						"reason":  str("what hurts and since when"),
					},
					Required: []string{"injured"},
				},
				"alerts": {
					Type:     genai.TypeArray,
					MaxItems: &one,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"type":              {Type: genai.TypeString, Enum: alertTypes},
							"triggeringMessage": str("the exact player sentence"),
						},
						Required: []string{"type", "triggeringMessage"},
					},
				},
			},
			Required: []string{"response"},
		},
		SchemaTeamInsight: insightSchema(domain.ScopeTeam),
		SchemaClubInsight: insightSchema(domain.ScopeClub),
	}
}
