package services

import (
	"clave-insights/internal/models"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validGenerationJSON = `{
	"sqlQuery": "SELECT location_name, SUM(revenue) AS total_revenue FROM daily_sales_summary GROUP BY location_name ORDER BY total_revenue DESC LIMIT 100",
	"chartType": "bar",
	"title": "Sales by location",
	"description": "Total revenue per location",
	"xAxisLabel": "Location",
	"yAxisLabel": "Revenue ($)",
	"dataMapping": {"categoryKey": "location_name", "valueKey": "total_revenue"}
}`

func TestGenerateParsesValidResponse(t *testing.T) {
	client := &stubLLM{structuredFn: func(string) (string, error) {
		return validGenerationJSON, nil
	}}
	generator := NewQueryGenerator(client)

	result, err := generator.Generate(context.Background(), "sales by location", &models.RetryMetrics{})

	require.NoError(t, err)
	assert.Equal(t, "bar", result.ChartType)
	assert.Equal(t, "location_name", result.DataMapping.CategoryKey)
	assert.Contains(t, result.SQLQuery, "daily_sales_summary")
}

func TestGenerateRejectsSchemaViolation(t *testing.T) {
	client := &stubLLM{structuredFn: func(string) (string, error) {
		return `{
			"sqlQuery": "SELECT 1 LIMIT 1",
			"chartType": "donut",
			"title": "t", "description": "d",
			"xAxisLabel": "x", "yAxisLabel": "y",
			"dataMapping": {"categoryKey": "a", "valueKey": "b"}
		}`, nil
	}}
	generator := NewQueryGenerator(client)

	_, err := generator.Generate(context.Background(), "q", &models.RetryMetrics{})

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, GenErrSchemaMismatch, genErr.Code)
}

func TestGenerateRejectsEmptyAxisLabels(t *testing.T) {
	client := &stubLLM{structuredFn: func(string) (string, error) {
		return `{
			"sqlQuery": "SELECT category, revenue FROM top_products_revenue LIMIT 10",
			"chartType": "bar",
			"title": "t", "description": "d",
			"xAxisLabel": "  ", "yAxisLabel": "y",
			"dataMapping": {"categoryKey": "category", "valueKey": "revenue"}
		}`, nil
	}}
	generator := NewQueryGenerator(client)

	_, err := generator.Generate(context.Background(), "q", &models.RetryMetrics{})

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, GenErrEmptyAxisLabel, genErr.Code)
}

func TestGenerateRequiresSecondaryKeyForDualMetricCharts(t *testing.T) {
	client := &stubLLM{structuredFn: func(string) (string, error) {
		return `{
			"sqlQuery": "SELECT business_date, revenue FROM daily_sales_summary LIMIT 10",
			"chartType": "combo",
			"title": "t", "description": "d",
			"xAxisLabel": "x", "yAxisLabel": "y",
			"dataMapping": {"categoryKey": "business_date", "valueKey": "revenue"}
		}`, nil
	}}
	generator := NewQueryGenerator(client)

	_, err := generator.Generate(context.Background(), "q", &models.RetryMetrics{})

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, GenErrMissingSecondaryKey, genErr.Code)
}

func TestGenerateRepairsCategoryPinnedInWhere(t *testing.T) {
	client := &stubLLM{structuredFn: func(string) (string, error) {
		return `{
			"sqlQuery": "SELECT SUM(revenue) AS total_revenue FROM daily_sales_summary WHERE location_name = 'Downtown' LIMIT 100",
			"chartType": "bar",
			"title": "t", "description": "d",
			"xAxisLabel": "x", "yAxisLabel": "y",
			"dataMapping": {"categoryKey": "location_name", "valueKey": "total_revenue"}
		}`, nil
	}}
	generator := NewQueryGenerator(client)

	result, err := generator.Generate(context.Background(), "q", &models.RetryMetrics{})

	require.NoError(t, err)
	assert.Contains(t, result.SQLQuery, "SELECT location_name, SUM(revenue)")
	assert.Contains(t, result.SQLQuery, "GROUP BY location_name")
}

func TestGenerateAcceptsCategoryProjectedAfterCTE(t *testing.T) {
	client := &stubLLM{structuredFn: func(string) (string, error) {
		return `{
			"sqlQuery": "WITH daily AS (SELECT location_name, revenue FROM daily_sales_summary) SELECT location_name, SUM(revenue) AS total_revenue FROM daily GROUP BY location_name LIMIT 100",
			"chartType": "bar",
			"title": "t", "description": "d",
			"xAxisLabel": "x", "yAxisLabel": "y",
			"dataMapping": {"categoryKey": "location_name", "valueKey": "total_revenue"}
		}`, nil
	}}
	generator := NewQueryGenerator(client)

	result, err := generator.Generate(context.Background(), "sales by location", &models.RetryMetrics{})

	require.NoError(t, err)
	assert.Contains(t, result.SQLQuery, "WITH daily AS")
	assert.Contains(t, result.SQLQuery, "GROUP BY location_name")
}

func TestGenerateAcceptsCategoryAfterScalarSubquery(t *testing.T) {
	client := &stubLLM{structuredFn: func(string) (string, error) {
		return `{
			"sqlQuery": "SELECT (SELECT MAX(revenue) FROM daily_sales_summary) AS peak_revenue, location_name, revenue FROM daily_sales_summary LIMIT 100",
			"chartType": "bar",
			"title": "t", "description": "d",
			"xAxisLabel": "x", "yAxisLabel": "y",
			"dataMapping": {"categoryKey": "location_name", "valueKey": "revenue"}
		}`, nil
	}}
	generator := NewQueryGenerator(client)

	result, err := generator.Generate(context.Background(), "q", &models.RetryMetrics{})

	require.NoError(t, err)
	assert.Contains(t, result.SQLQuery, "peak_revenue, location_name")
}

func TestGenerateRepairsOuterQueryOfCTE(t *testing.T) {
	client := &stubLLM{structuredFn: func(string) (string, error) {
		return `{
			"sqlQuery": "WITH daily AS (SELECT location_name, revenue FROM daily_sales_summary) SELECT SUM(revenue) AS total_revenue FROM daily WHERE location_name = 'Downtown' LIMIT 100",
			"chartType": "bar",
			"title": "t", "description": "d",
			"xAxisLabel": "x", "yAxisLabel": "y",
			"dataMapping": {"categoryKey": "location_name", "valueKey": "total_revenue"}
		}`, nil
	}}
	generator := NewQueryGenerator(client)

	result, err := generator.Generate(context.Background(), "q", &models.RetryMetrics{})

	require.NoError(t, err)
	assert.Contains(t, result.SQLQuery, "WITH daily AS (SELECT location_name, revenue FROM daily_sales_summary)")
	assert.Contains(t, result.SQLQuery, "SELECT location_name, SUM(revenue) AS total_revenue FROM daily")
	assert.Contains(t, result.SQLQuery, "GROUP BY location_name LIMIT 100")
}

func TestGenerateRejectsUnrepairableProjection(t *testing.T) {
	client := &stubLLM{structuredFn: func(string) (string, error) {
		return `{
			"sqlQuery": "SELECT SUM(revenue) AS total_revenue FROM daily_sales_summary LIMIT 10",
			"chartType": "bar",
			"title": "t", "description": "d",
			"xAxisLabel": "x", "yAxisLabel": "y",
			"dataMapping": {"categoryKey": "location_name", "valueKey": "total_revenue"}
		}`, nil
	}}
	generator := NewQueryGenerator(client)

	_, err := generator.Generate(context.Background(), "q", &models.RetryMetrics{})

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, GenErrMissingProjection, genErr.Code)
}

func TestGenerateRecordsNetworkRetries(t *testing.T) {
	client := &stubLLM{}
	client.structuredFn = func(string) (string, error) {
		if client.structuredCalls == 1 {
			return "", errors.New("temporarily unavailable")
		}
		return validGenerationJSON, nil
	}
	generator := NewQueryGenerator(client)
	metrics := &models.RetryMetrics{}

	_, err := generator.Generate(context.Background(), "q", metrics)

	require.NoError(t, err)
	assert.Equal(t, 2, client.structuredCalls)
	assert.Equal(t, 1, metrics.NetworkRetries)
	assert.Equal(t, 1, metrics.TotalRetries)
}

func TestGenerateDoesNotRetryCredentialErrors(t *testing.T) {
	client := &stubLLM{structuredFn: func(string) (string, error) {
		return "", errors.New("401 unauthorized")
	}}
	generator := NewQueryGenerator(client)
	metrics := &models.RetryMetrics{}

	_, err := generator.Generate(context.Background(), "q", metrics)

	require.Error(t, err)
	assert.Equal(t, 1, client.structuredCalls)
	assert.Equal(t, 0, metrics.NetworkRetries)
}

func TestRegenerateIncludesFailureContext(t *testing.T) {
	client := &stubLLM{structuredFn: func(string) (string, error) {
		return validGenerationJSON, nil
	}}
	generator := NewQueryGenerator(client)

	_, err := generator.Regenerate(context.Background(), "sales by location",
		"SELECT revenu FROM daily_sales_summary LIMIT 10", `column "revenu" does not exist`, 1, &models.RetryMetrics{})

	require.NoError(t, err)
	assert.Contains(t, client.lastUserPrompt, "SELECT revenu FROM daily_sales_summary")
	assert.Contains(t, client.lastUserPrompt, `column "revenu" does not exist`)
	assert.Contains(t, client.lastUserPrompt, "attempt 1")
}
