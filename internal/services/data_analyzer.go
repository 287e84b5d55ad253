package services

import (
	"clave-insights/internal/constants"
	"clave-insights/internal/models"
	"clave-insights/pkg/llm"
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
)

// DataAnalyzer streams a short natural-language insight over the transformed
// data. A failed or rejected insight never fails the request; callers fall
// back to FallbackInsight.
type DataAnalyzer struct {
	client llm.Client
}

func NewDataAnalyzer(client llm.Client) *DataAnalyzer {
	log.Println("🚀 Initialized Service : DataAnalyzer")
	return &DataAnalyzer{client: client}
}

// StreamInsight streams insight text through onChunk and returns the full
// validated insight.
func (a *DataAnalyzer) StreamInsight(ctx context.Context, question, chartType, title, dataSummary string, onChunk func(chunk string) error) (string, error) {
	userPrompt := constants.InsightUserPrompt(question, chartType, title, dataSummary)

	insight, err := a.client.StreamCompletion(ctx, constants.InsightSystemPrompt, userPrompt, onChunk)
	if err != nil {
		return "", err
	}

	insight = strings.TrimSpace(insight)
	if insight == "" {
		return "", &InsightGenerationError{Reason: "model produced an empty insight"}
	}
	if outcome := ValidateInsight(insight); !outcome.Valid {
		return "", &InsightGenerationError{Reason: outcome.Reason}
	}
	return insight, nil
}

var (
	sqlEchoRe = regexp.MustCompile(`(?is)\bselect\b.+\bfrom\b`)
	digitRe   = regexp.MustCompile(`[0-9]`)
)

// ValidateInsight rejects insights that are too long, echo SQL back at the
// user, or contain no concrete figure at all.
func ValidateInsight(insight string) models.ValidationOutcome {
	if len(insight) > 1200 {
		return models.Rejected(models.CodeInsightRejected, fmt.Sprintf("insight is %d characters, limit is 1200", len(insight)))
	}
	if sqlEchoRe.MatchString(insight) {
		return models.Rejected(models.CodeInsightRejected, "insight echoes SQL back to the user")
	}
	if !digitRe.MatchString(insight) {
		return models.Rejected(models.CodeInsightRejected, "insight contains no concrete figure")
	}
	return models.Passed()
}

// FallbackInsight builds a deterministic one-liner from the data itself when
// the model path fails.
func FallbackInsight(chartType, title string, records []models.TransformedRecord, tableRows []map[string]interface{}) string {
	if chartType == constants.ChartTypeTable {
		return fmt.Sprintf("%s: this table contains %d rows.", title, len(tableRows))
	}
	var total float64
	for _, record := range records {
		total += record.Value
	}
	return fmt.Sprintf("%s: %d data points with a combined value of %.2f.", title, len(records), total)
}
