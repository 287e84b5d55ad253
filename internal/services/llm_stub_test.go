package services

import (
	"clave-insights/pkg/llm"
	"context"
	"encoding/json"
)

// stubLLM satisfies llm.Client for service tests. Behavior is injected per
// test through the two function fields.
type stubLLM struct {
	structuredFn func(userPrompt string) (string, error)
	streamFn     func(onChunk func(chunk string) error) (string, error)

	structuredCalls int
	lastUserPrompt  string
}

func (s *stubLLM) GenerateStructured(_ context.Context, _, userPrompt, _ string, _ json.RawMessage) (string, error) {
	s.structuredCalls++
	s.lastUserPrompt = userPrompt
	return s.structuredFn(userPrompt)
}

func (s *stubLLM) StreamCompletion(_ context.Context, _, _ string, onChunk func(chunk string) error) (string, error) {
	return s.streamFn(onChunk)
}

func (s *stubLLM) GetModelInfo() llm.ModelInfo {
	return llm.ModelInfo{Name: "stub", Provider: "stub"}
}
