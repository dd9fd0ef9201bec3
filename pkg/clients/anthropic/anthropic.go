package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/cellar/internal/domain/models"
)

const (
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	defaultModel = "claude-3-5-haiku-latest"
	maxTokens    = 1024
)

var (
	// ErrMalformedResponse is returned when the model reply is not the JSON we asked for.
	ErrMalformedResponse = errors.New("malformed analysis response")

	// ErrIncompleteResponse is returned when the reply lacks the wine name or producer.
	ErrIncompleteResponse = errors.New("analysis response is missing name or producer")
)

// Client defines the interface for label analysis.
type Client interface {
	AnalyzeLabel(ctx context.Context, image []byte, mimeType string) (models.LabelAnalysis, error)
}

type anthropicClient struct {
	httpClient *resty.Client
	model      string
}

// Option customizes the client.
type Option func(*anthropicClient)

// WithModel overrides the model used for analysis.
func WithModel(model string) Option {
	return func(c *anthropicClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout overrides the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *anthropicClient) {
		if timeout > 0 {
			c.httpClient.SetTimeout(timeout)
		}
	}
}

// NewClient creates a configured Anthropic client.
func NewClient(apiKey string, opts ...Option) Client {
	client := resty.New().
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(60 * time.Second)

	c := &anthropicClient{httpClient: client, model: defaultModel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

const systemPrompt = `You identify wines from photos of their labels.

Reply with ONLY a JSON object using exactly these keys, all string values:
{
  "name": full wine name including the line, e.g. "Catena Zapata Malbec Argentino",
  "producer": winery or producer, e.g. "Catena Zapata",
  "vintage": harvest year; "N/V" when the wine is non-vintage,
  "country": country of origin, e.g. "Argentina", "Chile", "Francia",
  "grape_variety": main grape or blend, e.g. "Malbec" or "Cabernet Sauvignon, Merlot",
  "tasting_notes": a short description of aromas and flavours (2-3 sentences),
  "reference_price": approximate retail price found on the web, in local currency when possible, e.g. "CLP $25.000" or "USD 30"; "N/A" when unknown,
  "image_url": URL of a clean product photo of this bottle if you know one, otherwise ""
}

CRITICAL: output valid JSON, escape newlines inside strings, do not add commentary.`

// AnalyzeLabel sends the label photo to the model and parses the structured reply.
func (c *anthropicClient) AnalyzeLabel(ctx context.Context, image []byte, mimeType string) (models.LabelAnalysis, error) {
	reqBody := messageRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages: []message{
			{
				Role: "user",
				Content: []contentBlock{
					{
						Type: "image",
						Source: &imageSource{
							Type:      "base64",
							MediaType: mimeType,
							Data:      base64.StdEncoding.EncodeToString(image),
						},
					},
					{Type: "text", Text: "Identify this wine from its label and fill in the JSON object."},
				},
			},
			// Prefill the assistant response to force JSON
			{Role: "assistant", Content: []contentBlock{{Type: "text", Text: "{"}}},
		},
	}

	var respBody messageResponse
	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		SetError(apiErr).
		Post(apiURL)

	if err != nil {
		return models.LabelAnalysis{}, fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		if apiErr.Error.Message != "" {
			return models.LabelAnalysis{}, fmt.Errorf("anthropic api error: status=%d, message=%s", resp.StatusCode(), apiErr.Error.Message)
		}
		return models.LabelAnalysis{}, fmt.Errorf("anthropic api error: %s", resp.String())
	}
	if len(respBody.Content) == 0 {
		return models.LabelAnalysis{}, fmt.Errorf("%w: empty response from ai", ErrMalformedResponse)
	}

	return parseAnalysis(respBody.Content[0].Text)
}

// parseAnalysis decodes the model reply. The reply continues the prefilled
// "{", but a model that restarts the object or wraps it in markdown fences is
// tolerated too.
func parseAnalysis(responseText string) (models.LabelAnalysis, error) {
	responseText = strings.TrimSpace(responseText)
	if strings.HasPrefix(responseText, "```json") {
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimSuffix(responseText, "```")
	} else if strings.HasPrefix(responseText, "```") {
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
	}
	responseText = strings.TrimSpace(responseText)
	if !strings.HasPrefix(responseText, "{") {
		responseText = "{" + responseText
	}

	var analysis models.LabelAnalysis
	if err := json.Unmarshal([]byte(responseText), &analysis); err != nil {
		return models.LabelAnalysis{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	analysis = trimAnalysis(analysis)
	if analysis.Name == "" || analysis.Producer == "" {
		return models.LabelAnalysis{}, ErrIncompleteResponse
	}
	return analysis, nil
}

func trimAnalysis(a models.LabelAnalysis) models.LabelAnalysis {
	a.Name = strings.TrimSpace(a.Name)
	a.Producer = strings.TrimSpace(a.Producer)
	a.Vintage = strings.TrimSpace(a.Vintage)
	a.Country = strings.TrimSpace(a.Country)
	a.GrapeVariety = strings.TrimSpace(a.GrapeVariety)
	a.TastingNotes = strings.TrimSpace(a.TastingNotes)
	a.ReferencePrice = strings.TrimSpace(a.ReferencePrice)
	a.ImageURL = strings.TrimSpace(a.ImageURL)
	return a
}
