package llm

import (
	"context"
	"encoding/json"
)

// Client defines the interface for LLM interactions. GenerateStructured asks
// for a schema-constrained JSON completion; StreamCompletion streams plain
// text chunks through onChunk and returns the full concatenated text.
type Client interface {
	GenerateStructured(ctx context.Context, systemPrompt, userPrompt, schemaName string, schema json.RawMessage) (string, error)
	StreamCompletion(ctx context.Context, systemPrompt, userPrompt string, onChunk func(chunk string) error) (string, error)
	GetModelInfo() ModelInfo
}

// ModelInfo contains information about the LLM model
type ModelInfo struct {
	Name                string
	Provider            string
	MaxCompletionTokens int
}

// Config holds configuration for LLM clients
type Config struct {
	Provider            string
	Model               string
	APIKey              string
	MaxCompletionTokens int
	Temperature         float64
}
