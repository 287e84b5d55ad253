package constants

// Pipeline step names. These are wire values consumed by the client progress
// UI; do not rename.
const (
	StepValidating        = "validating"
	StepAnalyzing         = "analyzing"
	StepSQLGenerating     = "sql_generating"
	StepValidatingSQL     = "validating_sql"
	StepExecutingSQL      = "executing_sql"
	StepValidatingResults = "validating_results"
	StepTransforming      = "transforming"
	StepAnalyzingData     = "analyzing_data"
	StepFinalizing        = "finalizing"
)

// Chart types understood by the client renderer.
const (
	ChartTypeBar        = "bar"
	ChartTypeLine       = "line"
	ChartTypeArea       = "area"
	ChartTypePie        = "pie"
	ChartTypeTable      = "table"
	ChartTypeCombo      = "combo"
	ChartTypeGroupedBar = "grouped_bar"
)

// IsDualMetricChart reports whether the chart type renders two numeric series
// per category.
func IsDualMetricChart(chartType string) bool {
	return chartType == ChartTypeCombo || chartType == ChartTypeGroupedBar
}

func IsValidChartType(chartType string) bool {
	switch chartType {
	case ChartTypeBar, ChartTypeLine, ChartTypeArea, ChartTypePie,
		ChartTypeTable, ChartTypeCombo, ChartTypeGroupedBar:
		return true
	}
	return false
}
