package services

import (
	"clave-insights/internal/constants"
	"clave-insights/internal/models"
	"fmt"
	"log"
	"strconv"
	"strings"
)

// ValidateResults checks a result set against the declared data mapping
// before any transformation happens.
func ValidateResults(rows []map[string]interface{}, mapping models.DataMapping, chartType string) models.ValidationOutcome {
	if len(rows) == 0 {
		return models.Rejected(models.CodeEmptyResults, "query returned no rows")
	}
	if len(rows) > constants.MaxResultRows {
		return models.Rejected(models.CodeTooManyRows,
			fmt.Sprintf("query returned %d rows, maximum is %d", len(rows), constants.MaxResultRows))
	}

	required := []string{mapping.CategoryKey, mapping.ValueKey}
	if mapping.SecondaryValueKey != nil && *mapping.SecondaryValueKey != "" {
		required = append(required, *mapping.SecondaryValueKey)
	}

	for _, key := range required {
		matched, ok := matchColumn(rows[0], key)
		if !ok {
			return models.Rejected(models.CodeMissingColumn,
				fmt.Sprintf("mapped column %q not present in results (columns: %s)",
					key, strings.Join(columnNames(rows[0]), ", ")))
		}
		if matched != key {
			// Case near-miss still satisfies the mapping via the
			// case-insensitive lookup everywhere downstream.
			log.Printf("ResultValidator -> column %q matched result column %q by case-insensitive lookup", key, matched)
		}
	}

	if chartType == constants.ChartTypeTable {
		return models.Passed()
	}

	sample := len(rows)
	if sample > constants.NumericSampleSize {
		sample = constants.NumericSampleSize
	}
	for i := 0; i < sample; i++ {
		value, _ := lookupKey(rows[i], mapping.ValueKey)
		if !isNumericValue(value) {
			return models.Rejected(models.CodeNonNumericValue,
				fmt.Sprintf("value column %q holds non-numeric value %v in row %d", mapping.ValueKey, value, i+1))
		}
	}

	return models.Passed()
}

func matchColumn(row map[string]interface{}, key string) (string, bool) {
	if _, ok := row[key]; ok {
		return key, true
	}
	lowered := strings.ToLower(key)
	for col := range row {
		if strings.ToLower(col) == lowered {
			return col, true
		}
	}
	return "", false
}

func columnNames(row map[string]interface{}) []string {
	names := make([]string, 0, len(row))
	for col := range row {
		names = append(names, col)
	}
	return names
}

func isNumericValue(value interface{}) bool {
	switch v := value.(type) {
	case float64, float32, int, int32, int64:
		return true
	case nil:
		return false
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err == nil
	default:
		return false
	}
}
