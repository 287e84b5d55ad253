package services

import (
	"clave-insights/internal/constants"
	"clave-insights/internal/models"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateResultsRejectsEmptySet(t *testing.T) {
	mapping := models.DataMapping{CategoryKey: "category", ValueKey: "revenue"}

	outcome := ValidateResults(nil, mapping, constants.ChartTypeBar)

	require.False(t, outcome.Valid)
	assert.Equal(t, models.CodeEmptyResults, outcome.Code)
}

func TestValidateResultsRejectsOversizedSet(t *testing.T) {
	mapping := models.DataMapping{CategoryKey: "category", ValueKey: "revenue"}
	rows := make([]map[string]interface{}, constants.MaxResultRows+1)
	for i := range rows {
		rows[i] = map[string]interface{}{"category": fmt.Sprintf("c%d", i), "revenue": 1.0}
	}

	outcome := ValidateResults(rows, mapping, constants.ChartTypeBar)

	require.False(t, outcome.Valid)
	assert.Equal(t, models.CodeTooManyRows, outcome.Code)
}

func TestValidateResultsRejectsMissingColumn(t *testing.T) {
	mapping := models.DataMapping{CategoryKey: "category", ValueKey: "revenue"}
	rows := []map[string]interface{}{{"category": "burgers", "total": 1.0}}

	outcome := ValidateResults(rows, mapping, constants.ChartTypeBar)

	require.False(t, outcome.Valid)
	assert.Equal(t, models.CodeMissingColumn, outcome.Code)
	assert.Contains(t, outcome.Reason, "revenue")
}

func TestValidateResultsMatchesColumnsCaseInsensitively(t *testing.T) {
	mapping := models.DataMapping{CategoryKey: "category", ValueKey: "revenue"}
	rows := []map[string]interface{}{{"Category": "burgers", "Revenue": 1.0}}

	outcome := ValidateResults(rows, mapping, constants.ChartTypeBar)

	assert.True(t, outcome.Valid, outcome.Reason)
}

func TestValidateResultsChecksSecondaryColumn(t *testing.T) {
	mapping := models.DataMapping{
		CategoryKey:       "business_date",
		ValueKey:          "revenue",
		SecondaryValueKey: strPtr("orders"),
	}
	rows := []map[string]interface{}{{"business_date": "2025-07-01", "revenue": 1.0}}

	outcome := ValidateResults(rows, mapping, constants.ChartTypeCombo)

	require.False(t, outcome.Valid)
	assert.Equal(t, models.CodeMissingColumn, outcome.Code)
}

func TestValidateResultsRejectsNonNumericValues(t *testing.T) {
	mapping := models.DataMapping{CategoryKey: "category", ValueKey: "revenue"}
	rows := []map[string]interface{}{
		{"category": "burgers", "revenue": 1.0},
		{"category": "sides", "revenue": "lots"},
	}

	outcome := ValidateResults(rows, mapping, constants.ChartTypeBar)

	require.False(t, outcome.Valid)
	assert.Equal(t, models.CodeNonNumericValue, outcome.Code)
}

func TestValidateResultsAcceptsNumericStrings(t *testing.T) {
	mapping := models.DataMapping{CategoryKey: "category", ValueKey: "revenue"}
	rows := []map[string]interface{}{{"category": "burgers", "revenue": "12.5"}}

	outcome := ValidateResults(rows, mapping, constants.ChartTypeBar)

	assert.True(t, outcome.Valid, outcome.Reason)
}

func TestValidateResultsSamplesOnlyLeadingRows(t *testing.T) {
	mapping := models.DataMapping{CategoryKey: "category", ValueKey: "revenue"}
	rows := make([]map[string]interface{}, 0, constants.NumericSampleSize+1)
	for i := 0; i < constants.NumericSampleSize; i++ {
		rows = append(rows, map[string]interface{}{"category": fmt.Sprintf("c%d", i), "revenue": 1.0})
	}
	// Past the sample window, a bad value goes unnoticed.
	rows = append(rows, map[string]interface{}{"category": "tail", "revenue": "lots"})

	outcome := ValidateResults(rows, mapping, constants.ChartTypeBar)

	assert.True(t, outcome.Valid, outcome.Reason)
}

func TestValidateResultsSkipsNumericCheckForTables(t *testing.T) {
	mapping := models.DataMapping{CategoryKey: "order_id", ValueKey: "status"}
	rows := []map[string]interface{}{{"order_id": "x-1", "status": "COMPLETED"}}

	outcome := ValidateResults(rows, mapping, constants.ChartTypeTable)

	assert.True(t, outcome.Valid, outcome.Reason)
}
