package models

import "time"

const (
	RetryTypeNetwork         = "network"
	RetryTypeSQLRegeneration = "sql_regeneration"
)

// RetryDetail records one retry of either kind within an invocation.
type RetryDetail struct {
	Type                  string    `json:"type"`
	Attempt               int       `json:"attempt"`
	Error                 string    `json:"error,omitempty"`
	Timestamp             time.Time `json:"timestamp"`
	PriorResponseSnapshot string    `json:"priorResponseSnapshot,omitempty"`
}

// RetryMetrics accumulates additively across one pipeline invocation. It is
// attached to the interaction log record and never exposed on the stream.
type RetryMetrics struct {
	NetworkRetries         int           `json:"networkRetries"`
	SQLRegenerationRetries int           `json:"sqlRegenerationRetries"`
	TotalRetries           int           `json:"totalRetries"`
	RetryDetails           []RetryDetail `json:"retryDetails"`
}

func (m *RetryMetrics) RecordNetworkRetry(attempt int, errText string) {
	m.NetworkRetries++
	m.TotalRetries++
	m.RetryDetails = append(m.RetryDetails, RetryDetail{
		Type:      RetryTypeNetwork,
		Attempt:   attempt,
		Error:     errText,
		Timestamp: time.Now().UTC(),
	})
}

// Merge folds retries recorded on another instance into this one. Used when
// a stage ran on its own goroutine with a private metrics object.
func (m *RetryMetrics) Merge(other *RetryMetrics) {
	if other == nil {
		return
	}
	m.NetworkRetries += other.NetworkRetries
	m.SQLRegenerationRetries += other.SQLRegenerationRetries
	m.TotalRetries += other.TotalRetries
	m.RetryDetails = append(m.RetryDetails, other.RetryDetails...)
}

func (m *RetryMetrics) RecordSQLRegeneration(attempt int, errText, priorSQL string) {
	m.SQLRegenerationRetries++
	m.TotalRetries++
	m.RetryDetails = append(m.RetryDetails, RetryDetail{
		Type:                  RetryTypeSQLRegeneration,
		Attempt:               attempt,
		Error:                 errText,
		Timestamp:             time.Now().UTC(),
		PriorResponseSnapshot: priorSQL,
	})
}
