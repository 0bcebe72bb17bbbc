// Package advisor turns report prompts into advice text through the Gemini API.
package advisor

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Failure classes of the advice generator. Each calls for a different remedy.
var (
	ErrNotConfigured     = errors.New("advisor: no API key configured")
	ErrInvalidCredential = errors.New("advisor: API key rejected")
	ErrEmptyResponse     = errors.New("advisor: empty response")
	ErrTimeout           = errors.New("advisor: request timed out")
	ErrFailed            = errors.New("advisor: request failed")
)

// Generator produces free text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// ProductSuggestion is a transaction draft extracted from a product URL.
// Fields are empty when the model could not infer them.
type ProductSuggestion struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
}

// ProductExtractor drafts a transaction from a product page URL.
type ProductExtractor interface {
	ExtractProduct(ctx context.Context, url string, categories []string) (ProductSuggestion, error)
}

// Advisor is the full advice surface.
type Advisor interface {
	Generator
	ProductExtractor
}

// Unconfigured is the Advisor used when no API key is set.
type Unconfigured struct{}

var _ Advisor = Unconfigured{}

// Generate implements Generator.
func (Unconfigured) Generate(context.Context, string) (string, error) { return "", ErrNotConfigured }

// Model implements Generator.
func (Unconfigured) Model() string { return "" }

// ExtractProduct implements ProductExtractor.
func (Unconfigured) ExtractProduct(context.Context, string, []string) (ProductSuggestion, error) {
	return ProductSuggestion{}, ErrNotConfigured
}
