package models

// Validation outcome codes shared by every guardrail stage.
const (
	CodePassed              = "PASSED"
	CodeNotReadOnly         = "NOT_READ_ONLY"
	CodeInvalidTable        = "INVALID_TABLE"
	CodeDangerousFunction   = "DANGEROUS_FUNCTION"
	CodeSQLInjectionPattern = "SQL_INJECTION_PATTERN"
	CodeTooComplex          = "TOO_COMPLEX"
	CodeDomainCheckFailed   = "DOMAIN_CHECK_FAILED"
	CodeEmptyResults        = "EMPTY_RESULTS"
	CodeTooManyRows         = "TOO_MANY_ROWS"
	CodeMissingColumn       = "MISSING_COLUMN"
	CodeNonNumericValue     = "NON_NUMERIC_VALUE"
	CodeInsightRejected     = "INSIGHT_REJECTED"
)

// ValidationOutcome is produced by every validator and consumed inline.
type ValidationOutcome struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	Code   string `json:"code"`
}

func Passed() ValidationOutcome {
	return ValidationOutcome{Valid: true, Code: CodePassed}
}

func Rejected(code, reason string) ValidationOutcome {
	return ValidationOutcome{Valid: false, Code: code, Reason: reason}
}
