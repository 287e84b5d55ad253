package services

import (
	"clave-insights/internal/apis/dtos"
	"clave-insights/internal/constants"
	"clave-insights/internal/models"
	"clave-insights/internal/repositories"
	"clave-insights/internal/utils"
	"clave-insights/pkg/dbexec"
	"clave-insights/pkg/llm"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EmitFunc writes one stream event. The pipeline is the only caller and
// invokes it from a single goroutine, in production order.
type EmitFunc func(event interface{})

// Stage dependencies, narrowed so tests can stub each one.
type DomainFilter interface {
	Check(ctx context.Context, question string, metrics *models.RetryMetrics) models.ValidationOutcome
}

type SQLGenerator interface {
	Generate(ctx context.Context, question string, metrics *models.RetryMetrics) (*models.GenerationResult, error)
	Regenerate(ctx context.Context, question, priorSQL, dbError string, attempt int, metrics *models.RetryMetrics) (*models.GenerationResult, error)
}

type SQLValidator interface {
	Validate(sql string) models.ValidationOutcome
}

type QueryExecutor interface {
	ExecuteQuery(ctx context.Context, query string) ([]map[string]interface{}, *dtos.QueryError)
}

type InsightAnalyzer interface {
	StreamInsight(ctx context.Context, question, chartType, title, dataSummary string, onChunk func(chunk string) error) (string, error)
}

// PipelineService runs the full question-to-insight pipeline and owns the
// event stream for one invocation.
type PipelineService struct {
	filter       DomainFilter
	generator    SQLGenerator
	sqlValidator SQLValidator
	executor     QueryExecutor
	analyzer     InsightAnalyzer
	interactions repositories.InteractionRepository
}

func NewPipelineService(
	filter DomainFilter,
	generator SQLGenerator,
	sqlValidator SQLValidator,
	executor QueryExecutor,
	analyzer InsightAnalyzer,
	interactions repositories.InteractionRepository,
) *PipelineService {
	log.Println("🚀 Initialized Service : Pipeline")
	return &PipelineService{
		filter:       filter,
		generator:    generator,
		sqlValidator: sqlValidator,
		executor:     executor,
		analyzer:     analyzer,
		interactions: interactions,
	}
}

// streamEmitter guards the one-terminal-event contract: after a result or
// error has gone out, every further emission is dropped.
type streamEmitter struct {
	emit EmitFunc
	done bool
}

func (e *streamEmitter) progress(step, message string) {
	if e.done {
		return
	}
	e.emit(dtos.NewProgressEvent(step, message))
}

func (e *streamEmitter) chunk(text string) {
	if e.done {
		return
	}
	e.emit(dtos.NewInsightChunkEvent(text))
}

func (e *streamEmitter) result(message string, chart, table *dtos.ChartPayload) {
	if e.done {
		return
	}
	e.done = true
	e.emit(dtos.NewResultEvent(message, chart, table))
}

func (e *streamEmitter) fail(errText string) {
	if e.done {
		return
	}
	e.done = true
	e.emit(dtos.NewErrorEvent(errText))
}

// runState accumulates what the interaction log needs. SuccessStatus means
// the user received a data answer; AgentAnswered means the user received a
// coherent reply of any kind, including guardrail rejections.
type runState struct {
	question      string
	started       time.Time
	metrics       *models.RetryMetrics
	generation    *models.GenerationResult
	stepFailed    string
	errorDetails  string
	success       bool
	agentAnswered bool
}

type genOutcome struct {
	result *models.GenerationResult
	err    error
}

// Run executes the pipeline for one question. It always ends the stream with
// exactly one result or error event and always persists exactly one
// interaction record, whatever path the invocation takes.
func (s *PipelineService) Run(ctx context.Context, question string, emit EmitFunc) {
	em := &streamEmitter{emit: emit}
	state := &runState{
		question: strings.TrimSpace(question),
		started:  time.Now(),
		metrics:  &models.RetryMetrics{},
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("PipelineService -> Run -> recovered panic: %v", r)
			state.errorDetails = fmt.Sprintf("panic: %v", r)
			state.success = false
			state.agentAnswered = false
			em.fail(constants.MsgInternalError)
		}
		go s.logInteraction(state)
	}()

	em.progress(constants.StepValidating, "Checking your question...")
	if len(state.question) < constants.QuestionMinLength {
		s.reject(state, em, constants.StepValidating, "question below minimum length", constants.MsgQuestionTooShort)
		return
	}
	if len(state.question) > constants.QuestionMaxLength {
		s.reject(state, em, constants.StepValidating, "question above maximum length", constants.MsgQuestionTooLong)
		return
	}

	// The domain filter and the query generator run concurrently; the filter
	// verdict is awaited first so a rejection never waits on generation. The
	// generator gets a private metrics object, merged only after its result
	// is received, so an abandoned generation cannot race the log write.
	genMetrics := &models.RetryMetrics{}
	genCh := make(chan genOutcome, 1)
	go func() {
		result, err := s.generator.Generate(ctx, state.question, genMetrics)
		genCh <- genOutcome{result: result, err: err}
	}()

	em.progress(constants.StepAnalyzing, "Making sure this is something I can answer from your data...")
	if verdict := s.filter.Check(ctx, state.question, state.metrics); !verdict.Valid {
		go func() { <-genCh }()
		s.reject(state, em, constants.StepAnalyzing,
			fmt.Sprintf("%s: %s", verdict.Code, verdict.Reason), constants.MsgOutOfDomain)
		return
	}

	em.progress(constants.StepSQLGenerating, "Writing a query for your question...")
	out := <-genCh
	state.metrics.Merge(genMetrics)
	if out.err != nil {
		s.failTechnical(state, em, constants.StepSQLGenerating, out.err.Error(), llmErrorMessage(out.err))
		return
	}
	generation := out.result
	state.generation = generation

	em.progress(constants.StepValidatingSQL, "Checking the query for safety...")
	if verdict := s.sqlValidator.Validate(generation.SQLQuery); !verdict.Valid {
		s.reject(state, em, constants.StepValidatingSQL,
			fmt.Sprintf("%s: %s", verdict.Code, verdict.Reason), constants.MsgCouldNotUnderstand)
		return
	}

	rows, generation, ok := s.executeWithRegeneration(ctx, state, em, generation)
	if !ok {
		return
	}
	state.generation = generation

	em.progress(constants.StepValidatingResults, "Checking the results...")
	if verdict := ValidateResults(rows, generation.DataMapping, generation.ChartType); !verdict.Valid {
		message := constants.MsgResultsInvalid
		if verdict.Code == models.CodeEmptyResults {
			message = constants.MsgNoData
		}
		s.reject(state, em, constants.StepValidatingResults,
			fmt.Sprintf("%s: %s", verdict.Code, verdict.Reason), message)
		return
	}

	em.progress(constants.StepTransforming, "Shaping the data...")
	var records []models.TransformedRecord
	var tableRows []map[string]interface{}
	if generation.ChartType == constants.ChartTypeTable {
		tableRows = TransformTable(rows)
	} else {
		records = TransformRecords(rows, generation.DataMapping)
		if len(records) == 0 {
			s.reject(state, em, constants.StepTransforming,
				"every row was dropped during transformation", constants.MsgResultsInvalid)
			return
		}
	}

	em.progress(constants.StepAnalyzingData, "Looking for the story in the data...")
	summary := summarizeData(generation, records, tableRows)
	insight, err := s.analyzer.StreamInsight(ctx, state.question, generation.ChartType, generation.Title, summary,
		func(chunk string) error {
			em.chunk(chunk)
			return nil
		})
	if err != nil {
		log.Printf("PipelineService -> Run -> insight failed, using fallback: %v", err)
		state.errorDetails = err.Error()
		insight = FallbackInsight(generation.ChartType, generation.Title, records, tableRows)
	}

	em.progress(constants.StepFinalizing, "Putting it all together...")
	chart, table := buildChartPayloads(generation, records, tableRows, rows)
	state.success = true
	state.agentAnswered = true
	em.result(insight, chart, table)
}

// executeWithRegeneration runs the query and, on SQL-shaped failures, asks
// the generator to correct it, up to the regeneration ceiling. Every
// corrected query goes back through the SQL validator before it can run.
func (s *PipelineService) executeWithRegeneration(
	ctx context.Context,
	state *runState,
	em *streamEmitter,
	generation *models.GenerationResult,
) ([]map[string]interface{}, *models.GenerationResult, bool) {
	current := generation

	for attempt := 1; ; attempt++ {
		em.progress(constants.StepExecutingSQL, "Running the query...")
		effective := dbexec.EnforceLimit(current.SQLQuery, constants.MaxResultRows)
		rows, qerr := s.executor.ExecuteQuery(ctx, effective)
		if qerr == nil {
			current.SQLQuery = effective
			return rows, current, true
		}

		details := fmt.Sprintf("%s: %s", qerr.Code, qerr.Message)
		if !dbexec.IsSQLShaped(qerr) || attempt > constants.MaxSQLRegenerations {
			s.failTechnical(state, em, constants.StepExecutingSQL, details, constants.MsgExecutionFailed)
			return nil, current, false
		}

		state.metrics.RecordSQLRegeneration(attempt, qerr.Message, current.SQLQuery)
		em.progress(constants.StepSQLGenerating, "Refining the query and trying again...")
		regenerated, err := s.generator.Regenerate(ctx, state.question, current.SQLQuery, qerr.Message, attempt, state.metrics)
		if err != nil {
			s.failTechnical(state, em, constants.StepSQLGenerating, err.Error(), llmErrorMessage(err))
			return nil, current, false
		}
		state.generation = regenerated

		em.progress(constants.StepValidatingSQL, "Re-checking the corrected query...")
		if verdict := s.sqlValidator.Validate(regenerated.SQLQuery); !verdict.Valid {
			s.reject(state, em, constants.StepValidatingSQL,
				fmt.Sprintf("%s: %s", verdict.Code, verdict.Reason), constants.MsgCouldNotUnderstand)
			return nil, regenerated, false
		}
		current = regenerated
	}
}

// reject ends the stream with a plain-language result event and no chart.
func (s *PipelineService) reject(state *runState, em *streamEmitter, step, details, message string) {
	state.stepFailed = step
	state.errorDetails = details
	state.success = false
	state.agentAnswered = true
	em.result(message, nil, nil)
}

// failTechnical ends the stream with an error event.
func (s *PipelineService) failTechnical(state *runState, em *streamEmitter, step, details, message string) {
	state.stepFailed = step
	state.errorDetails = details
	state.success = false
	state.agentAnswered = false
	em.fail(message)
}

// llmErrorMessage maps model-call failures onto user-facing copy.
func llmErrorMessage(err error) string {
	switch {
	case llm.IsCredentialError(err):
		return constants.MsgMissingCredentials
	case llm.IsRateLimitError(err):
		return constants.MsgRateLimited
	default:
		return constants.MsgInternalError
	}
}

func buildChartPayloads(
	generation *models.GenerationResult,
	records []models.TransformedRecord,
	tableRows []map[string]interface{},
	rawRows []map[string]interface{},
) (*dtos.ChartPayload, *dtos.ChartPayload) {
	if generation.ChartType == constants.ChartTypeTable {
		return &dtos.ChartPayload{
			ID:          uuid.NewString(),
			Title:       generation.Title,
			Description: generation.Description,
			Type:        constants.ChartTypeTable,
			Data:        tableRows,
			DataKey:     generation.DataMapping.ValueKey,
			CategoryKey: generation.DataMapping.CategoryKey,
			XAxisLabel:  utils.ToStringPtr(generation.XAxisLabel),
			YAxisLabel:  utils.ToStringPtr(generation.YAxisLabel),
		}, nil
	}

	data := make([]map[string]interface{}, len(records))
	for i, record := range records {
		row := map[string]interface{}{
			"category": record.Category,
			"value":    record.Value,
		}
		if record.SecondaryValue != nil {
			row["secondaryValue"] = *record.SecondaryValue
		}
		data[i] = row
	}

	chart := &dtos.ChartPayload{
		ID:           uuid.NewString(),
		Title:        generation.Title,
		Description:  generation.Description,
		Type:         generation.ChartType,
		Data:         data,
		DataKey:      "value",
		CategoryKey:  "category",
		PrimaryLabel: utils.ToStringPtr(generation.YAxisLabel),
		XAxisLabel:   utils.ToStringPtr(generation.XAxisLabel),
		YAxisLabel:   utils.ToStringPtr(generation.YAxisLabel),
	}

	var table *dtos.ChartPayload
	if constants.IsDualMetricChart(generation.ChartType) && generation.DataMapping.SecondaryValueKey != nil {
		chart.SecondaryDataKey = utils.ToStringPtr("secondaryValue")
		chart.SecondaryLabel = generation.DataMapping.SecondaryValueKey

		// Dual-metric charts ship a full-detail companion table.
		table = &dtos.ChartPayload{
			ID:          uuid.NewString(),
			Title:       generation.Title + " (detail)",
			Description: generation.Description,
			Type:        constants.ChartTypeTable,
			Data:        rawRows,
			DataKey:     generation.DataMapping.ValueKey,
			CategoryKey: generation.DataMapping.CategoryKey,
		}
	}
	return chart, table
}

// summarizeData builds the compact summary handed to the analyzer. Kept
// small on purpose so the insight prompt stays well under token limits.
func summarizeData(generation *models.GenerationResult, records []models.TransformedRecord, tableRows []map[string]interface{}) string {
	var b strings.Builder

	if generation.ChartType == constants.ChartTypeTable {
		fmt.Fprintf(&b, "%d rows.\n", len(tableRows))
		limit := len(tableRows)
		if limit > 5 {
			limit = 5
		}
		for i := 0; i < limit; i++ {
			if line, err := json.Marshal(tableRows[i]); err == nil {
				b.Write(line)
				b.WriteString("\n")
			}
		}
		return b.String()
	}

	var total, min, max float64
	for i, record := range records {
		total += record.Value
		if i == 0 || record.Value < min {
			min = record.Value
		}
		if i == 0 || record.Value > max {
			max = record.Value
		}
	}
	fmt.Fprintf(&b, "%d data points. total=%.2f min=%.2f max=%.2f\n", len(records), total, min, max)

	limit := len(records)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		if records[i].SecondaryValue != nil {
			fmt.Fprintf(&b, "%s: %.2f / %.2f\n", records[i].Category, records[i].Value, *records[i].SecondaryValue)
		} else {
			fmt.Fprintf(&b, "%s: %.2f\n", records[i].Category, records[i].Value)
		}
	}
	return b.String()
}

// logInteraction persists the write-once record for this invocation. It runs
// on its own goroutine after the stream has closed; failures are logged and
// dropped.
func (s *PipelineService) logInteraction(state *runState) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PipelineService -> logInteraction -> recovered panic: %v", r)
		}
	}()

	record := &models.LLMInteraction{
		UserPrompt:     state.question,
		SuccessStatus:  state.success,
		AgentAnswered:  state.agentAnswered,
		ResponseTimeMs: utils.ToIntPtr(int(time.Since(state.started).Milliseconds())),
	}
	if state.generation != nil {
		if data, err := json.Marshal(state.generation); err == nil {
			record.LLMResponse = utils.ToStringPtr(string(data))
		}
	}
	if state.errorDetails != "" {
		record.ErrorDetails = utils.ToStringPtr(state.errorDetails)
	}
	if state.stepFailed != "" {
		record.StepFailed = utils.ToStringPtr(state.stepFailed)
	}
	if state.metrics != nil && state.metrics.TotalRetries > 0 {
		if data, err := json.Marshal(state.metrics); err == nil {
			record.RetryMetrics = utils.ToStringPtr(string(data))
		}
	}

	if err := s.interactions.Create(record); err != nil {
		log.Printf("PipelineService -> logInteraction -> write failed: %v", err)
	}
}
