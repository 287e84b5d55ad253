package dbexec

import (
	"clave-insights/internal/apis/dtos"
	"strings"
)

// classifyError maps a raw database error onto the executor's error codes.
func classifyError(err error) *dtos.QueryError {
	text := err.Error()
	lowered := strings.ToLower(text)

	code := "QUERY_EXECUTION_FAILED"
	switch {
	case strings.Contains(lowered, "syntax error"):
		code = "SYNTAX_ERROR"
	case strings.Contains(lowered, "relation") && strings.Contains(lowered, "does not exist"):
		code = "RELATION_NOT_FOUND"
	case strings.Contains(lowered, "column") && strings.Contains(lowered, "does not exist"):
		code = "COLUMN_NOT_FOUND"
	case strings.Contains(lowered, "permission denied"):
		code = "PERMISSION_DENIED"
	}

	return &dtos.QueryError{
		Code:    code,
		Message: text,
		Details: "Failed to execute SELECT",
	}
}

// IsSQLShaped reports whether a query error looks like the query itself was
// malformed, as opposed to a transient or infrastructure failure. SQL-shaped
// failures are the only ones eligible for regeneration.
func IsSQLShaped(qe *dtos.QueryError) bool {
	if qe == nil {
		return false
	}
	switch qe.Code {
	case "SYNTAX_ERROR", "RELATION_NOT_FOUND", "COLUMN_NOT_FOUND":
		return true
	}
	lowered := strings.ToLower(qe.Message)
	for _, marker := range []string{"syntax", "does not exist", "invalid", "sql"} {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
