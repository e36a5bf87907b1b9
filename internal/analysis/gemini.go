package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/jmylchreest/figaid/pkg/plugin"
)

// DefaultGeminiModel is the model used when none is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

const geminiPrompt = `You are looking at a screenshot of a design tool canvas.
Reply with JSON: {"description": string, "layout": string, "elements": [{"label": string, "kind": string, "x": number, "y": number, "width": number, "height": number}]}.
"description" is one or two sentences about what the design shows. "layout" is a short name such as "grid", "single-column" or "dashboard".
Element coordinates are in image pixels. The image is %dx%d.`

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiDescriber describes images with a Gemini model.
type GeminiDescriber struct {
	model    string
	generate generateFunc
}

// NewGeminiDescriber creates a describer using the Gemini API. It requires
// GOOGLE_API_KEY to be set.
func NewGeminiDescriber(ctx context.Context, model string) (*GeminiDescriber, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY environment variable is required\nGet one at: https://aistudio.google.com/api-keys")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gen AI client: %w", err)
	}

	return newGeminiDescriber(model, client.Models.GenerateContent), nil
}

func newGeminiDescriber(model string, generate generateFunc) *GeminiDescriber {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiDescriber{model: model, generate: generate}
}

// Name implements Describer.
func (g *GeminiDescriber) Name() string {
	return "gemini:" + g.model
}

// Describe implements Describer.
func (g *GeminiDescriber) Describe(ctx context.Context, req plugin.DescribeRequest) (*plugin.DescribeResponse, error) {
	data := req.Image
	if len(data) == 0 {
		var err error
		data, err = os.ReadFile(req.ImagePath) // #nosec G304 - capture path produced by figaid
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
	}

	mime := "image/" + req.Format
	if req.Format == "" {
		mime = "image/png"
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(fmt.Sprintf(geminiPrompt, req.Width, req.Height)),
			genai.NewPartFromBytes(data, mime),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	response, err := g.generate(ctx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("content generation failed: %w", err)
	}

	text := strings.TrimSpace(response.Text())
	if text == "" {
		return nil, fmt.Errorf("no text in response")
	}
	return parseGeminiResponse(text), nil
}

// parseGeminiResponse decodes the JSON reply. Replies that are not JSON are
// used verbatim as the description.
func parseGeminiResponse(text string) *plugin.DescribeResponse {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	var resp plugin.DescribeResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(cleaned)), &resp); err != nil || resp.Description == "" {
		return &plugin.DescribeResponse{Description: text}
	}
	return &resp
}
