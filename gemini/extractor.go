// Package gemini provides AI-assisted product extraction using Google
// Gemini. It is the last resort of the resolution chain, used when the
// deterministic strategies find nothing.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"google.golang.org/genai"

	"github.com/fwojciec/storescan"
)

const model = "gemini-2.5-flash"

// Prompt excerpt limits. The model only needs enough page signal to
// judge product-ness and read off the fields; sending whole pages wastes
// tokens and degrades answers.
const (
	maxPromptHeadings = 5
	maxPromptTextLen  = 1500
	maxPromptImages   = 10
	maxPromptBlocks   = 3
)

// promptBlockTypes are the JSON-LD types worth showing to the model.
var promptBlockTypes = map[string]bool{
	"Product":        true,
	"Offer":          true,
	"AggregateOffer": true,
}

// Ensure Extractor implements storescan.ProductExtractor at compile time.
var _ storescan.ProductExtractor = (*Extractor)(nil)

// Extractor implements storescan.ProductExtractor using Google Gemini.
type Extractor struct {
	client *genai.Client
}

// NewExtractor creates a new Extractor.
func NewExtractor(client *genai.Client) *Extractor {
	return &Extractor{client: client}
}

// ExtractProduct asks the model whether the page sells a product and, if
// so, for its fields. Unusable model output maps to EUNAVAILABLE so the
// caller treats it like any other strategy miss.
func (e *Extractor) ExtractProduct(ctx context.Context, content *storescan.PageContent, pageURL string) (*storescan.ProductCandidate, error) {
	if content == nil {
		return nil, nil
	}

	result, err := e.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: BuildPrompt(content, pageURL)}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, storescan.Errorf(storescan.EINTERNAL, "gemini returned nil result")
	}

	return ParseResponse(result.Text())
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.1)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You analyze e-commerce web pages. Decide whether the page offers a single product for sale and extract its details. Respond with a single JSON object with the keys is_product (bool), title, description, price, old_price, currency (ISO 4217), and images (array of URLs). Use empty values for anything the page does not state. Respond with JSON only.",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
}

// BuildPrompt builds the user prompt from a bounded excerpt of the page.
func BuildPrompt(content *storescan.PageContent, pageURL string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<page url=%q>\n", pageURL)
	fmt.Fprintf(&sb, "<title>%s</title>\n", content.Title)

	for i, h := range content.Headings {
		if i >= maxPromptHeadings {
			break
		}
		fmt.Fprintf(&sb, "<h%d>%s</h%d>\n", h.Level, h.Text, h.Level)
	}

	text := content.Text
	if len(text) > maxPromptTextLen {
		text = text[:maxPromptTextLen]
	}
	fmt.Fprintf(&sb, "<text>%s</text>\n", text)

	for i, img := range content.Images {
		if i >= maxPromptImages {
			break
		}
		fmt.Fprintf(&sb, "<img src=%q alt=%q/>\n", img.Src, img.Alt)
	}

	blocks := 0
	for _, block := range content.StructuredData {
		if blocks >= maxPromptBlocks {
			break
		}
		if t, ok := block["@type"].(string); !ok || !promptBlockTypes[t] {
			continue
		}
		if encoded, err := json.Marshal(block); err == nil {
			fmt.Fprintf(&sb, "<jsonld>%s</jsonld>\n", encoded)
			blocks++
		}
	}

	sb.WriteString("</page>")
	return sb.String()
}

// flexString accepts JSON strings and bare numbers; models emit prices
// both ways.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = flexString(num.String())
	return nil
}

// response is the JSON shape the model was instructed to produce.
type response struct {
	IsProduct   bool       `json:"is_product"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Price       flexString `json:"price"`
	OldPrice    flexString `json:"old_price"`
	Currency    string     `json:"currency"`
	Images      []string   `json:"images"`
}

// ParseResponse decodes the model output into a candidate. Code fences
// are stripped, and malformed JSON goes through a repair pass before
// giving up with EUNAVAILABLE. Missing fields decode to zero values.
func ParseResponse(text string) (*storescan.ProductCandidate, error) {
	cleaned := stripCodeFences(text)
	if cleaned == "" {
		return nil, storescan.Errorf(storescan.EUNAVAILABLE, "empty model response")
	}

	var resp response
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(cleaned)
		if repairErr != nil {
			return nil, storescan.Errorf(storescan.EUNAVAILABLE, "unparseable model response: %v", err)
		}
		if err := json.Unmarshal([]byte(repaired), &resp); err != nil {
			return nil, storescan.Errorf(storescan.EUNAVAILABLE, "unparseable model response: %v", err)
		}
	}

	return &storescan.ProductCandidate{
		IsProduct:   resp.IsProduct,
		Title:       resp.Title,
		Description: resp.Description,
		Price:       string(resp.Price),
		OldPrice:    string(resp.OldPrice),
		Currency:    resp.Currency,
		Images:      resp.Images,
	}, nil
}

// stripCodeFences removes a surrounding markdown code fence, with or
// without a language tag.
func stripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
