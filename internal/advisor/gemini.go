package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"finova/internal/logger"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini is an Advisor backed by the Gemini API.
type Gemini struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

var _ Advisor = (*Gemini)(nil)

// New returns a Gemini advisor, or Unconfigured when apiKey is empty.
func New(ctx context.Context, apiKey, model string, timeout time.Duration) (Advisor, error) {
	if strings.TrimSpace(apiKey) == "" {
		return Unconfigured{}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout + 5*time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGemini(client.Models, model, timeout), nil
}

func newGemini(models contentGenerator, model string, timeout time.Duration) *Gemini {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Gemini{models: models, model: model, timeout: timeout}
}

// Model returns the model name used for generation.
func (g *Gemini) Model() string { return g.model }

// Generate sends prompt and returns the response text verbatim.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	return g.complete(ctx, prompt, nil)
}

// ExtractProduct asks the model for a JSON transaction draft for url. The
// category is kept only when it is one of categories.
func (g *Gemini) ExtractProduct(ctx context.Context, url string, categories []string) (ProductSuggestion, error) {
	text, err := g.complete(ctx, productPrompt(url, categories), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return ProductSuggestion{}, err
	}

	var raw struct {
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
	}
	if err := json.Unmarshal([]byte(stripFence(text)), &raw); err != nil {
		return ProductSuggestion{}, fmt.Errorf("%w: decode product JSON: %v", ErrFailed, err)
	}

	suggestion := ProductSuggestion{
		Description: strings.TrimSpace(raw.Description),
		Amount:      decimal.Max(raw.Amount.Round(2), decimal.Zero),
	}
	for _, c := range categories {
		if strings.EqualFold(c, strings.TrimSpace(raw.Category)) {
			suggestion.Category = c
			break
		}
	}
	return suggestion, nil
}

func (g *Gemini) complete(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		classified := classify(ctx, err)
		logger.Named("advisor").Warnw("gemini request failed",
			"model", g.model,
			"latency_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return "", classified
	}

	text := ""
	if resp != nil {
		text = resp.Text()
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	logger.Named("advisor").Debugw("gemini request completed", "model", g.model, "latency_ms", time.Since(start).Milliseconds())
	return text, nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		apiErr = *apiErrPtr
	default:
		return fmt.Errorf("%w: %v", ErrFailed, err)
	}

	switch {
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrInvalidCredential, apiErr.Message)
	case apiErr.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(apiErr.Message), "api key"):
		return fmt.Errorf("%w: %s", ErrInvalidCredential, apiErr.Message)
	case apiErr.Code == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", ErrTimeout, apiErr.Message)
	default:
		return fmt.Errorf("%w: %s", ErrFailed, apiErr.Message)
	}
}

func productPrompt(url string, categories []string) string {
	return fmt.Sprintf(`You are a data extraction assistant.
Analyze the following product URL and extract the most likely information: %s

Tasks:
1. Extract the PRODUCT NAME (description) from the URL slug or text.
2. Estimate a typical current market PRICE (amount) for this product. Return 0 if you cannot estimate it.
3. Choose the most suitable CATEGORY from this list:
%s

Return ONLY a JSON object in this format:
{"description": "Product name", "amount": 100.00, "category": "Chosen category"}`, url, strings.Join(categories, ", "))
}

// stripFence removes a Markdown code fence around a JSON reply.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
