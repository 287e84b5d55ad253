package services

import (
	"clave-insights/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestTransformRecordsMapsCategoryAndValue(t *testing.T) {
	rows := []map[string]interface{}{
		{"location_name": "Downtown", "total_revenue": 1234.567},
		{"location_name": "Airport", "total_revenue": 987.001},
	}
	mapping := models.DataMapping{CategoryKey: "location_name", ValueKey: "total_revenue"}

	records := TransformRecords(rows, mapping)

	require.Len(t, records, 2)
	assert.Equal(t, "Downtown", records[0].Category)
	assert.Equal(t, 1234.57, records[0].Value)
	assert.Equal(t, "Airport", records[1].Category)
	assert.Equal(t, 987.0, records[1].Value)
}

func TestTransformRecordsIsIdempotent(t *testing.T) {
	rows := []map[string]interface{}{
		{"category": "burgers", "revenue": "10.5"},
		{"category": "sides", "revenue": 3},
	}
	mapping := models.DataMapping{CategoryKey: "category", ValueKey: "revenue"}

	first := TransformRecords(rows, mapping)
	second := TransformRecords(rows, mapping)

	assert.Equal(t, first, second)
}

func TestTransformRecordsUsesPlaceholderForMissingCategory(t *testing.T) {
	rows := []map[string]interface{}{
		{"revenue": 10.0},
		{"category": nil, "revenue": 20.0},
	}
	mapping := models.DataMapping{CategoryKey: "category", ValueKey: "revenue"}

	records := TransformRecords(rows, mapping)

	require.Len(t, records, 2)
	assert.Equal(t, "Item 1", records[0].Category)
	assert.Equal(t, "Item 2", records[1].Category)
}

func TestTransformRecordsDropsBlankCategories(t *testing.T) {
	rows := []map[string]interface{}{
		{"category": "  ", "revenue": 10.0},
		{"category": "sides", "revenue": 20.0},
	}
	mapping := models.DataMapping{CategoryKey: "category", ValueKey: "revenue"}

	records := TransformRecords(rows, mapping)

	require.Len(t, records, 1)
	assert.Equal(t, "sides", records[0].Category)
}

func TestTransformRecordsCoercesValues(t *testing.T) {
	rows := []map[string]interface{}{
		{"category": "a", "revenue": "12.345"},
		{"category": "b", "revenue": "not a number"},
		{"category": "c", "revenue": nil},
		{"category": "d", "revenue": int64(7)},
	}
	mapping := models.DataMapping{CategoryKey: "category", ValueKey: "revenue"}

	records := TransformRecords(rows, mapping)

	require.Len(t, records, 4)
	assert.Equal(t, 12.35, records[0].Value)
	assert.Equal(t, 0.0, records[1].Value)
	assert.Equal(t, 0.0, records[2].Value)
	assert.Equal(t, 7.0, records[3].Value)
}

func TestTransformRecordsResolvesKeysCaseInsensitively(t *testing.T) {
	rows := []map[string]interface{}{
		{"Location_Name": "Downtown", "Revenue": 5.0},
	}
	mapping := models.DataMapping{CategoryKey: "location_name", ValueKey: "revenue"}

	records := TransformRecords(rows, mapping)

	require.Len(t, records, 1)
	assert.Equal(t, "Downtown", records[0].Category)
	assert.Equal(t, 5.0, records[0].Value)
}

func TestTransformRecordsCarriesSecondaryValue(t *testing.T) {
	rows := []map[string]interface{}{
		{"business_date": "2025-07-01", "revenue": 100.0, "orders": 12},
	}
	mapping := models.DataMapping{
		CategoryKey:       "business_date",
		ValueKey:          "revenue",
		SecondaryValueKey: strPtr("orders"),
	}

	records := TransformRecords(rows, mapping)

	require.Len(t, records, 1)
	require.NotNil(t, records[0].SecondaryValue)
	assert.Equal(t, 12.0, *records[0].SecondaryValue)
}

func TestTransformTablePassesRowsThrough(t *testing.T) {
	rows := []map[string]interface{}{
		{"a": 1, "b": "x"},
	}

	assert.Equal(t, rows, TransformTable(rows))
}
