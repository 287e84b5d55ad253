package services

import (
	"clave-insights/internal/models"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// The transformer is a pure mapping from raw result rows to chart-ready
// records. Running it twice over the same input yields identical output.

// TransformRecords maps rows onto category/value records using the declared
// mapping. Categories are stringified and trimmed; a row whose category cell
// is absent gets a positional "Item N" placeholder, while a present-but-blank
// category drops the row. Values are coerced to numbers (0 on parse failure)
// and rounded to 2 decimal places.
func TransformRecords(rows []map[string]interface{}, mapping models.DataMapping) []models.TransformedRecord {
	records := make([]models.TransformedRecord, 0, len(rows))

	for i, row := range rows {
		category, present := resolveCategory(row, mapping.CategoryKey, i)
		if present && category == "" {
			continue
		}

		record := models.TransformedRecord{
			Category: category,
			Value:    roundTo2(coerceNumber(lookupValue(row, mapping.ValueKey))),
		}

		if mapping.SecondaryValueKey != nil && *mapping.SecondaryValueKey != "" {
			secondary := roundTo2(coerceNumber(lookupValue(row, *mapping.SecondaryValueKey)))
			record.SecondaryValue = &secondary
		}

		records = append(records, record)
	}

	return records
}

// TransformTable passes rows through unchanged; table charts keep every
// original column.
func TransformTable(rows []map[string]interface{}) []map[string]interface{} {
	return rows
}

// resolveCategory returns the category string and whether the cell carried a
// value at all. Missing or null cells get the 1-indexed placeholder.
func resolveCategory(row map[string]interface{}, key string, index int) (string, bool) {
	value, ok := lookupKey(row, key)
	if !ok || value == nil {
		return fmt.Sprintf("Item %d", index+1), false
	}
	return strings.TrimSpace(stringify(value)), true
}

// lookupKey finds a column case-insensitively.
func lookupKey(row map[string]interface{}, key string) (interface{}, bool) {
	if value, ok := row[key]; ok {
		return value, true
	}
	lowered := strings.ToLower(key)
	for col, value := range row {
		if strings.ToLower(col) == lowered {
			return value, true
		}
	}
	return nil, false
}

func lookupValue(row map[string]interface{}, key string) interface{} {
	value, _ := lookupKey(row, key)
	return value
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func coerceNumber(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return parsed
	case nil:
		return 0
	default:
		parsed, err := strconv.ParseFloat(fmt.Sprintf("%v", v), 64)
		if err != nil {
			return 0
		}
		return parsed
	}
}

func roundTo2(value float64) float64 {
	return math.Round(value*100) / 100
}
