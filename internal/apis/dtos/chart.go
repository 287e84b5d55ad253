package dtos

// ChartPayload is the chart-ready result handed to the client. It is built
// once during finalization and never mutated after emission.
type ChartPayload struct {
	ID               string                   `json:"id"`
	Title            string                   `json:"title"`
	Description      string                   `json:"description"`
	Type             string                   `json:"type"`
	Data             []map[string]interface{} `json:"data"`
	DataKey          string                   `json:"dataKey"`
	CategoryKey      string                   `json:"categoryKey"`
	SecondaryDataKey *string                  `json:"secondaryDataKey,omitempty"`
	PrimaryLabel     *string                  `json:"primaryLabel,omitempty"`
	SecondaryLabel   *string                  `json:"secondaryLabel,omitempty"`
	XAxisLabel       *string                  `json:"xAxisLabel,omitempty"`
	YAxisLabel       *string                  `json:"yAxisLabel,omitempty"`
}
