// Package sqlguard validates model-generated SQL before it can reach the
// database. It parses the candidate statement into an AST and runs a fixed
// battery of policy checks; any single failing check rejects the statement.
package sqlguard

import (
	"clave-insights/internal/models"
	"fmt"
	"log"
	"strings"

	"github.com/auxten/postgresql-parser/pkg/sql/parser"
	"github.com/auxten/postgresql-parser/pkg/sql/sem/tree"
)

type Validator struct {
	allowedTables map[string]struct{}
	allowListText string
	maxLimit      int64
	maxJoins      int
	maxNested     int
}

// NewValidator builds a validator over the published table/view allow-list.
func NewValidator(allowedTables []string, maxLimit int64, maxJoins, maxNested int) *Validator {
	allowed := make(map[string]struct{}, len(allowedTables))
	names := make([]string, 0, len(allowedTables))
	for _, t := range allowedTables {
		name := strings.ToLower(t)
		allowed[name] = struct{}{}
		names = append(names, name)
	}
	return &Validator{
		allowedTables: allowed,
		allowListText: strings.Join(names, ", "),
		maxLimit:      maxLimit,
		maxJoins:      maxJoins,
		maxNested:     maxNested,
	}
}

// Validate runs every safety check against a candidate SQL string. Checks are
// ordered for early exit; the first failure wins.
func (v *Validator) Validate(sql string) models.ValidationOutcome {
	stmts, err := parser.Parse(sql)
	if err != nil {
		log.Printf("SQLGuard -> Validate -> parse error: %v", err)
		return models.Rejected(models.CodeNotReadOnly,
			"query could not be parsed as a single read-only statement")
	}

	if len(stmts) != 1 {
		return models.Rejected(models.CodeNotReadOnly,
			fmt.Sprintf("expected exactly one statement, got %d", len(stmts)))
	}

	root := stmts[0].AST
	if _, ok := root.(*tree.Select); !ok {
		return models.Rejected(models.CodeNotReadOnly,
			"only SELECT statements are allowed")
	}

	a := newAnalysis()
	a.walkStatement(root)
	if a.hasWrite {
		return models.Rejected(models.CodeNotReadOnly,
			"statement contains a non-SELECT operation")
	}

	if outcome := v.checkAllowList(a); !outcome.Valid {
		return outcome
	}

	if fn := matchDangerousFunction(sql); fn != "" {
		return models.Rejected(models.CodeDangerousFunction,
			fmt.Sprintf("query uses a forbidden operation: %s", strings.TrimSpace(fn)))
	}

	if reason := matchInjection(sql); reason != "" {
		return models.Rejected(models.CodeSQLInjectionPattern,
			fmt.Sprintf("query matches an injection heuristic: %s", reason))
	}

	for _, limit := range a.limits {
		if limit > v.maxLimit {
			return models.Rejected(models.CodeTooComplex,
				fmt.Sprintf("LIMIT %d exceeds the maximum of %d rows", limit, v.maxLimit))
		}
	}

	if a.joinCount > v.maxJoins {
		return models.Rejected(models.CodeTooComplex,
			fmt.Sprintf("query has %d JOINs, maximum is %d", a.joinCount, v.maxJoins))
	}

	if nested := a.nestedSelects(); nested > v.maxNested {
		return models.Rejected(models.CodeTooComplex,
			fmt.Sprintf("query has %d nested SELECTs, maximum is %d", nested, v.maxNested))
	}

	return models.Passed()
}

func (v *Validator) checkAllowList(a *analysis) models.ValidationOutcome {
	for _, table := range a.externalTables() {
		if _, ok := v.allowedTables[table]; !ok {
			return models.Rejected(models.CodeInvalidTable,
				fmt.Sprintf("table %q is not allowed; allowed tables and views are: %s",
					table, v.allowListText))
		}
	}
	return models.Passed()
}

func matchDangerousFunction(sql string) string {
	lowered := strings.ToLower(sql)
	for _, fn := range dangerousFunctions {
		if strings.Contains(lowered, fn) {
			return fn
		}
	}
	return ""
}
