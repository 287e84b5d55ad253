package constants

// JSON schemas for structured model output. The same document is handed to the
// provider as the response format and to gojsonschema for the independent
// post-call validation pass; the model's claimed conformance is never trusted
// on its own.

const GenerationResponseSchema = `{
  "type": "object",
  "properties": {
    "sqlQuery": {
      "type": "string",
      "description": "A single PostgreSQL SELECT statement ending with LIMIT 1000 or lower"
    },
    "chartType": {
      "type": "string",
      "enum": ["bar", "line", "area", "pie", "table", "combo", "grouped_bar"]
    },
    "title": { "type": "string", "description": "Short chart title" },
    "description": { "type": "string", "description": "One-line description of what the chart shows" },
    "xAxisLabel": { "type": "string" },
    "yAxisLabel": { "type": "string" },
    "dataMapping": {
      "type": "object",
      "properties": {
        "categoryKey": { "type": "string", "description": "Result column used as the label axis" },
        "valueKey": { "type": "string", "description": "Numeric result column used as the measure axis" },
        "secondaryValueKey": { "type": "string", "description": "Second numeric column for combo/grouped_bar charts" }
      },
      "required": ["categoryKey", "valueKey"],
      "additionalProperties": false
    }
  },
  "required": ["sqlQuery", "chartType", "title", "description", "xAxisLabel", "yAxisLabel", "dataMapping"],
  "additionalProperties": false
}`

const FilterResponseSchema = `{
  "type": "object",
  "properties": {
    "isValid": { "type": "boolean" },
    "reason": { "type": "string" }
  },
  "required": ["isValid"],
  "additionalProperties": false
}`
