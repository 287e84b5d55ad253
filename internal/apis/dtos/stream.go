package dtos

// Stream events, one JSON object per SSE data line. The orchestrator is the
// only writer; events are emitted strictly in production order and every
// invocation ends with exactly one ResultEvent or ErrorEvent.

type ProgressEvent struct {
	Type    string `json:"type"`
	Step    string `json:"step"`
	Message string `json:"message"`
}

type InsightChunkEvent struct {
	Type  string `json:"type"`
	Chunk string `json:"chunk"`
}

type ResultEvent struct {
	Type    string        `json:"type"`
	Message string        `json:"message"`
	Chart   *ChartPayload `json:"chart"`
	Table   *ChartPayload `json:"table,omitempty"`
}

type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func NewProgressEvent(step, message string) ProgressEvent {
	return ProgressEvent{Type: "progress", Step: step, Message: message}
}

func NewInsightChunkEvent(chunk string) InsightChunkEvent {
	return InsightChunkEvent{Type: "insight_chunk", Chunk: chunk}
}

func NewResultEvent(message string, chart, table *ChartPayload) ResultEvent {
	return ResultEvent{Type: "result", Message: message, Chart: chart, Table: table}
}

func NewErrorEvent(errText string) ErrorEvent {
	return ErrorEvent{Type: "error", Error: errText}
}
