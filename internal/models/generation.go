package models

// DataMapping declares which result columns play the label and measure roles.
type DataMapping struct {
	CategoryKey       string  `json:"categoryKey"`
	ValueKey          string  `json:"valueKey"`
	SecondaryValueKey *string `json:"secondaryValueKey,omitempty"`
}

// GenerationResult is one complete output of the query generator. A retry
// produces a fresh GenerationResult; earlier ones survive only inside retry
// telemetry.
type GenerationResult struct {
	SQLQuery    string      `json:"sqlQuery"`
	ChartType   string      `json:"chartType"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	XAxisLabel  string      `json:"xAxisLabel"`
	YAxisLabel  string      `json:"yAxisLabel"`
	DataMapping DataMapping `json:"dataMapping"`
}

// TransformedRecord is one chart-ready row on the standard and dual-metric
// paths. Table charts bypass this shape and keep the raw row objects.
type TransformedRecord struct {
	Category       string   `json:"category"`
	Value          float64  `json:"value"`
	SecondaryValue *float64 `json:"secondaryValue,omitempty"`
}
