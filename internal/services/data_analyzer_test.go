package services

import (
	"clave-insights/internal/constants"
	"clave-insights/internal/models"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamInsightForwardsChunks(t *testing.T) {
	client := &stubLLM{streamFn: func(onChunk func(string) error) (string, error) {
		parts := []string{"Downtown led with ", "$12,400 in revenue."}
		for _, p := range parts {
			if err := onChunk(p); err != nil {
				return "", err
			}
		}
		return strings.Join(parts, ""), nil
	}}
	analyzer := NewDataAnalyzer(client)

	var received []string
	insight, err := analyzer.StreamInsight(context.Background(), "q", "bar", "Sales", "summary",
		func(chunk string) error {
			received = append(received, chunk)
			return nil
		})

	require.NoError(t, err)
	assert.Len(t, received, 2)
	assert.Equal(t, "Downtown led with $12,400 in revenue.", insight)
}

func TestStreamInsightRejectsEmptyCompletion(t *testing.T) {
	client := &stubLLM{streamFn: func(func(string) error) (string, error) {
		return "   ", nil
	}}
	analyzer := NewDataAnalyzer(client)

	_, err := analyzer.StreamInsight(context.Background(), "q", "bar", "Sales", "summary", func(string) error { return nil })

	var insightErr *InsightGenerationError
	require.ErrorAs(t, err, &insightErr)
}

func TestStreamInsightRejectsSQLEcho(t *testing.T) {
	client := &stubLLM{streamFn: func(func(string) error) (string, error) {
		return "Here you go: SELECT revenue FROM daily_sales_summary, 42 rows", nil
	}}
	analyzer := NewDataAnalyzer(client)

	_, err := analyzer.StreamInsight(context.Background(), "q", "bar", "Sales", "summary", func(string) error { return nil })

	var insightErr *InsightGenerationError
	require.ErrorAs(t, err, &insightErr)
}

func TestValidateInsight(t *testing.T) {
	assert.True(t, ValidateInsight("Downtown brought in $12,400, 18% ahead of Airport.").Valid)

	tooLong := strings.Repeat("x", 1201)
	outcome := ValidateInsight(tooLong)
	require.False(t, outcome.Valid)
	assert.Equal(t, models.CodeInsightRejected, outcome.Code)

	outcome = ValidateInsight("Sales were strong across every location.")
	require.False(t, outcome.Valid)
	assert.Contains(t, outcome.Reason, "figure")
}

func TestFallbackInsightForCharts(t *testing.T) {
	records := []models.TransformedRecord{
		{Category: "Downtown", Value: 100.5},
		{Category: "Airport", Value: 49.5},
	}

	insight := FallbackInsight(constants.ChartTypeBar, "Sales by location", records, nil)

	assert.Contains(t, insight, "Sales by location")
	assert.Contains(t, insight, "2 data points")
	assert.Contains(t, insight, "150.00")
}

func TestFallbackInsightForTables(t *testing.T) {
	rows := []map[string]interface{}{{"a": 1}, {"a": 2}, {"a": 3}}

	insight := FallbackInsight(constants.ChartTypeTable, "Raw orders", nil, rows)

	assert.Contains(t, insight, "Raw orders")
	assert.Contains(t, insight, "3 rows")
}
