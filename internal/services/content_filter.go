package services

import (
	"clave-insights/internal/constants"
	"clave-insights/internal/models"
	"clave-insights/pkg/llm"
	"context"
	"encoding/json"
	"log"
)

type filterVerdict struct {
	IsValid bool   `json:"isValid"`
	Reason  string `json:"reason"`
}

// ContentFilter asks the model whether a question belongs to the analytics
// domain at all. It fails open: if the filter call itself errors or returns
// garbage, the question proceeds and the downstream guardrails carry the
// safety load.
type ContentFilter struct {
	client llm.Client
}

func NewContentFilter(client llm.Client) *ContentFilter {
	log.Println("🚀 Initialized Service : ContentFilter")
	return &ContentFilter{client: client}
}

func (f *ContentFilter) Check(ctx context.Context, question string, metrics *models.RetryMetrics) models.ValidationOutcome {
	var raw string
	err := llm.WithBackoff(ctx, constants.LLMNetworkMaxRetries, func() error {
		var callErr error
		raw, callErr = f.client.GenerateStructured(ctx, constants.ContentFilterSystemPrompt,
			question, "domain_filter", json.RawMessage(constants.FilterResponseSchema))
		return callErr
	}, func(attempt int, err error) {
		if metrics != nil {
			metrics.RecordNetworkRetry(attempt, err.Error())
		}
		log.Printf("ContentFilter -> Check -> transport retry %d: %v", attempt, err)
	})
	if err != nil {
		log.Printf("ContentFilter -> Check -> filter call failed, passing question through: %v", err)
		return models.Passed()
	}

	var verdict filterVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		log.Printf("ContentFilter -> Check -> unparseable verdict, passing question through: %v", err)
		return models.Passed()
	}

	if !verdict.IsValid {
		return models.Rejected(models.CodeDomainCheckFailed, verdict.Reason)
	}
	return models.Passed()
}
