package services

import "fmt"

// GenerationError marks a model response that parsed but is structurally
// unusable: schema mismatch, empty SQL, missing labels, a broken data
// mapping. These are never retried at the transport level.
type GenerationError struct {
	Code    string
	Message string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const (
	GenErrSchemaMismatch      = "SCHEMA_MISMATCH"
	GenErrEmptySQL            = "EMPTY_SQL"
	GenErrInvalidChartType    = "INVALID_CHART_TYPE"
	GenErrEmptyAxisLabel      = "EMPTY_AXIS_LABEL"
	GenErrMissingSecondaryKey = "MISSING_SECONDARY_KEY"
	GenErrMissingProjection   = "MISSING_PROJECTION"
)

// InsightGenerationError marks an insight stream that completed but produced
// nothing usable. The pipeline answers with a deterministic fallback instead
// of failing the request.
type InsightGenerationError struct {
	Reason string
}

func (e *InsightGenerationError) Error() string {
	return fmt.Sprintf("insight rejected: %s", e.Reason)
}
