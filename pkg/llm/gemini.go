package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client              *genai.Client
	model               string
	maxCompletionTokens int
	temperature         float64
}

func NewGeminiClient(config Config) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	// Create the Gemini SDK client using the provided API key.
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	return &GeminiClient{
		client:              client,
		model:               config.Model,
		maxCompletionTokens: config.MaxCompletionTokens,
		temperature:         config.Temperature,
	}, nil
}

// GenerateStructured relies on JSON response mode plus the caller's own schema
// validation pass; Gemini's schema objects don't round-trip from raw JSON
// schema documents, so the schema argument only shapes the prompt contract.
func (c *GeminiClient) GenerateStructured(ctx context.Context, systemPrompt, userPrompt, schemaName string, schema json.RawMessage) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	model := c.newModel(systemPrompt)
	model.ResponseMIMEType = "application/json"

	prompt := fmt.Sprintf("%s\n\nRespond with a single JSON object matching this schema (%s):\n%s", userPrompt, schemaName, string(schema))

	result, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Printf("Gemini -> GenerateStructured -> err: %v", err)
		return "", fmt.Errorf("gemini API error: %v", err)
	}

	text := collectText(result)
	if text == "" {
		return "", fmt.Errorf("no response from Gemini")
	}

	// Strip markdown fences Gemini occasionally adds despite JSON mode.
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	return strings.TrimSpace(text), nil
}

func (c *GeminiClient) StreamCompletion(ctx context.Context, systemPrompt, userPrompt string, onChunk func(chunk string) error) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	model := c.newModel(systemPrompt)

	iter := model.GenerateContentStream(ctx, genai.Text(userPrompt))

	var full strings.Builder
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Gemini -> StreamCompletion -> err: %v", err)
			return full.String(), fmt.Errorf("gemini stream error: %v", err)
		}

		chunk := collectText(resp)
		if chunk == "" {
			continue
		}
		full.WriteString(chunk)
		if onChunk != nil {
			if err := onChunk(chunk); err != nil {
				return full.String(), err
			}
		}
	}

	return full.String(), nil
}

func (c *GeminiClient) newModel(systemPrompt string) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.model)
	maxTokens := int32(c.maxCompletionTokens)
	model.MaxOutputTokens = &maxTokens
	model.SetTemperature(float32(c.temperature))
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	return model
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

// GetModelInfo returns information about the Gemini model.
func (c *GeminiClient) GetModelInfo() ModelInfo {
	return ModelInfo{
		Name:                c.model,
		Provider:            "gemini",
		MaxCompletionTokens: c.maxCompletionTokens,
	}
}
