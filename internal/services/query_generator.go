package services

import (
	"clave-insights/internal/constants"
	"clave-insights/internal/models"
	"clave-insights/pkg/llm"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// QueryGenerator turns a question into SQL plus chart metadata via a
// structured model completion. The model's output is validated twice: once
// against the JSON schema it was asked to follow, then against invariants the
// schema cannot express (non-empty SQL, labels, mapping/projection agreement).
type QueryGenerator struct {
	client llm.Client
}

func NewQueryGenerator(client llm.Client) *QueryGenerator {
	log.Println("🚀 Initialized Service : QueryGenerator")
	return &QueryGenerator{client: client}
}

func (g *QueryGenerator) Generate(ctx context.Context, question string, metrics *models.RetryMetrics) (*models.GenerationResult, error) {
	return g.generate(ctx, question, metrics)
}

// Regenerate runs the same generation with the failing SQL and database error
// appended, so the model can correct its previous attempt.
func (g *QueryGenerator) Regenerate(ctx context.Context, question, priorSQL, dbError string, attempt int, metrics *models.RetryMetrics) (*models.GenerationResult, error) {
	return g.generate(ctx, question+constants.RegenerationContext(priorSQL, dbError, attempt), metrics)
}

func (g *QueryGenerator) generate(ctx context.Context, userPrompt string, metrics *models.RetryMetrics) (*models.GenerationResult, error) {
	var raw string
	err := llm.WithBackoff(ctx, constants.LLMNetworkMaxRetries, func() error {
		var callErr error
		raw, callErr = g.client.GenerateStructured(ctx, constants.GenerationSystemPrompt,
			userPrompt, "query_generation", json.RawMessage(constants.GenerationResponseSchema))
		return callErr
	}, func(attempt int, err error) {
		if metrics != nil {
			metrics.RecordNetworkRetry(attempt, err.Error())
		}
		log.Printf("QueryGenerator -> generate -> transport retry %d: %v", attempt, err)
	})
	if err != nil {
		return nil, err
	}

	result, err := parseGeneration(raw)
	if err != nil {
		return nil, err
	}
	if err := checkGeneration(result); err != nil {
		return nil, err
	}
	return result, nil
}

// parseGeneration validates the raw completion against the response schema
// before unmarshalling it.
func parseGeneration(raw string) (*models.GenerationResult, error) {
	verdict, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(constants.GenerationResponseSchema),
		gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, &GenerationError{Code: GenErrSchemaMismatch, Message: fmt.Sprintf("response is not valid JSON: %v", err)}
	}
	if !verdict.Valid() {
		issues := make([]string, 0, len(verdict.Errors()))
		for _, issue := range verdict.Errors() {
			issues = append(issues, issue.String())
		}
		return nil, &GenerationError{Code: GenErrSchemaMismatch, Message: strings.Join(issues, "; ")}
	}

	var result models.GenerationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, &GenerationError{Code: GenErrSchemaMismatch, Message: err.Error()}
	}
	return &result, nil
}

// checkGeneration enforces the invariants the JSON schema cannot, mutating
// the result in place (trimming, projection repair).
func checkGeneration(result *models.GenerationResult) error {
	result.SQLQuery = strings.TrimSpace(result.SQLQuery)
	result.XAxisLabel = strings.TrimSpace(result.XAxisLabel)
	result.YAxisLabel = strings.TrimSpace(result.YAxisLabel)

	if result.SQLQuery == "" {
		return &GenerationError{Code: GenErrEmptySQL, Message: "model returned an empty sqlQuery"}
	}
	if !constants.IsValidChartType(result.ChartType) {
		return &GenerationError{Code: GenErrInvalidChartType, Message: fmt.Sprintf("unknown chart type %q", result.ChartType)}
	}
	if result.XAxisLabel == "" || result.YAxisLabel == "" {
		return &GenerationError{Code: GenErrEmptyAxisLabel, Message: "axis labels must not be empty"}
	}
	if constants.IsDualMetricChart(result.ChartType) {
		if result.DataMapping.SecondaryValueKey == nil || strings.TrimSpace(*result.DataMapping.SecondaryValueKey) == "" {
			return &GenerationError{Code: GenErrMissingSecondaryKey,
				Message: fmt.Sprintf("%s charts require dataMapping.secondaryValueKey", result.ChartType)}
		}
	}

	key := result.DataMapping.CategoryKey
	if !projectionContains(result.SQLQuery, key) {
		repaired, ok := repairProjection(result.SQLQuery, key)
		if !ok {
			return &GenerationError{Code: GenErrMissingProjection,
				Message: fmt.Sprintf("categoryKey %q is not selected by the query", key)}
		}
		log.Printf("QueryGenerator -> checkGeneration -> injected %q into the projection", key)
		result.SQLQuery = repaired
	}
	return nil
}

// projectionSpan locates the outermost SELECT's projection list: the text
// between the first depth-zero SELECT and its matching depth-zero FROM. A
// leading WITH block and any scalar subquery inside the projection sit within
// parentheses, so both are skipped.
func projectionSpan(sql string) (start, end int, ok bool) {
	selIdx := keywordIndexAtDepthZero(sql, "select", 0)
	if selIdx < 0 {
		return 0, 0, false
	}
	start = selIdx + len("select")
	end = keywordIndexAtDepthZero(sql, "from", start)
	if end < 0 {
		return 0, 0, false
	}
	return start, end, true
}

// keywordIndexAtDepthZero finds the first word-bounded, case-insensitive
// occurrence of kw at parenthesis depth zero, outside string literals,
// scanning from offset.
func keywordIndexAtDepthZero(sql, kw string, offset int) int {
	lowered := strings.ToLower(sql)
	depth := 0
	inString := false
	for i := offset; i < len(lowered); i++ {
		c := lowered[i]
		if inString {
			if c == '\'' {
				inString = false
			}
			continue
		}
		switch c {
		case '\'':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
		default:
			if depth == 0 && strings.HasPrefix(lowered[i:], kw) && isKeywordBounded(lowered, i, len(kw)) {
				return i
			}
		}
	}
	return -1
}

func isKeywordBounded(s string, start, length int) bool {
	if start > 0 && isWordByte(s[start-1]) {
		return false
	}
	end := start + length
	return end >= len(s) || !isWordByte(s[end])
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// projectionContains reports whether the column appears word-bounded in the
// outermost SELECT list.
func projectionContains(sql, column string) bool {
	start, end, ok := projectionSpan(sql)
	if !ok {
		return false
	}
	wordRe := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(column) + `\b`)
	return wordRe.MatchString(sql[start:end])
}

var (
	groupByAtRe = regexp.MustCompile(`(?i)^group\s+by\s+`)
	aggFuncRe   = regexp.MustCompile(`(?i)\b(sum|count|avg|min|max)\s*\(`)
)

// repairProjection handles the one shape worth patching mechanically: the
// category column pinned to a single value in WHERE but left out of SELECT.
// The column is injected into the projection and, when the outer query
// aggregates, into GROUP BY. Anything fancier is rejected rather than
// guessed at. Every clause position is resolved at parenthesis depth zero so
// CTE bodies and subqueries never confuse the splice points.
func repairProjection(sql, column string) (string, bool) {
	projStart, projEnd, ok := projectionSpan(sql)
	if !ok {
		return "", false
	}

	whereIdx := keywordIndexAtDepthZero(sql, "where", projEnd)
	if whereIdx < 0 {
		return "", false
	}
	eqRe := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(column) + `\s*=\s*('[^']*'|[0-9]+(\.[0-9]+)?)`)
	if !eqRe.MatchString(sql[whereIdx:]) {
		return "", false
	}

	repaired := sql[:projStart] + " " + column + "," + sql[projStart:]
	projEnd += len(column) + 2

	if groupIdx := keywordIndexAtDepthZero(repaired, "group", projEnd); groupIdx >= 0 {
		if loc := groupByAtRe.FindStringIndex(repaired[groupIdx:]); loc != nil {
			at := groupIdx + loc[1]
			return repaired[:at] + column + ", " + repaired[at:], true
		}
	}

	if aggFuncRe.MatchString(repaired[projStart:projEnd]) {
		insertAt := len(repaired)
		if idx := keywordIndexAtDepthZero(repaired, "order", projEnd); idx >= 0 {
			insertAt = idx
		} else if idx := keywordIndexAtDepthZero(repaired, "limit", projEnd); idx >= 0 {
			insertAt = idx
		}
		head := strings.TrimRight(repaired[:insertAt], " ;")
		tail := repaired[insertAt:]
		if tail == "" {
			return head + " GROUP BY " + column, true
		}
		return head + " GROUP BY " + column + " " + tail, true
	}

	return repaired, true
}
