package sqlguard

import (
	"strings"

	"github.com/auxten/postgresql-parser/pkg/sql/sem/tree"
)

// analysis is the structured form of one parsed statement: the facts every
// guardrail check runs against.
type analysis struct {
	cteNames    map[string]struct{}
	tables      []string
	columns     []string
	joinCount   int
	selectCount int
	limits      []int64
	hasWrite    bool
}

func newAnalysis() *analysis {
	return &analysis{cteNames: make(map[string]struct{})}
}

func (a *analysis) addCTE(name string) {
	a.cteNames[strings.ToLower(name)] = struct{}{}
}

func (a *analysis) addTable(name string) {
	name = strings.ToLower(strings.Trim(name, `"`))
	if name == "" {
		return
	}
	a.tables = append(a.tables, name)
}

func (a *analysis) addColumn(name string) {
	name = strings.ToLower(name)
	if name == "" {
		return
	}
	a.columns = append(a.columns, name)
}

// externalTables returns referenced table names with CTE aliases removed.
func (a *analysis) externalTables() []string {
	out := make([]string, 0, len(a.tables))
	seen := make(map[string]struct{})
	for _, t := range a.tables {
		if _, isCTE := a.cteNames[t]; isCTE {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// nestedSelects excludes the root SELECT node.
func (a *analysis) nestedSelects() int {
	if a.selectCount == 0 {
		return 0
	}
	return a.selectCount - 1
}

func (a *analysis) walkStatement(stmt tree.Statement) {
	switch s := stmt.(type) {
	case *tree.Select:
		a.walkSelect(s)
	case *tree.ParenSelect:
		a.walkSelect(s.Select)
	default:
		// Anything that is not a SELECT at any level (including a CTE whose
		// body mutates) taints the whole statement.
		a.hasWrite = true
	}
}

func (a *analysis) walkSelect(sel *tree.Select) {
	if sel == nil {
		return
	}
	if sel.With != nil {
		for _, cte := range sel.With.CTEList {
			a.addCTE(string(cte.Name.Alias))
			a.walkStatement(cte.Stmt)
		}
	}
	if sel.Limit != nil && sel.Limit.Count != nil {
		if num, ok := sel.Limit.Count.(*tree.NumVal); ok {
			if v, err := num.AsInt64(); err == nil {
				a.limits = append(a.limits, v)
			}
		}
	}
	a.walkSelectStatement(sel.Select)
}

func (a *analysis) walkSelectStatement(stmt tree.SelectStatement) {
	switch s := stmt.(type) {
	case *tree.SelectClause:
		a.selectCount++
		for _, expr := range s.Exprs {
			a.walkExpr(expr.Expr)
		}
		for _, table := range s.From.Tables {
			a.walkTableExpr(table)
		}
		if s.Where != nil {
			a.walkExpr(s.Where.Expr)
		}
		for _, expr := range s.GroupBy {
			a.walkExpr(expr)
		}
		if s.Having != nil {
			a.walkExpr(s.Having.Expr)
		}
		for _, expr := range s.DistinctOn {
			a.walkExpr(expr)
		}
	case *tree.UnionClause:
		a.walkSelect(s.Left)
		a.walkSelect(s.Right)
	case *tree.ParenSelect:
		a.walkSelect(s.Select)
	case *tree.ValuesClause:
		for _, row := range s.Rows {
			for _, expr := range row {
				a.walkExpr(expr)
			}
		}
	}
}

func (a *analysis) walkTableExpr(expr tree.TableExpr) {
	switch t := expr.(type) {
	case *tree.AliasedTableExpr:
		a.walkTableExpr(t.Expr)
	case *tree.ParenTableExpr:
		a.walkTableExpr(t.Expr)
	case *tree.JoinTableExpr:
		a.joinCount++
		a.walkTableExpr(t.Left)
		a.walkTableExpr(t.Right)
		if cond, ok := t.Cond.(*tree.OnJoinCond); ok && cond != nil {
			a.walkExpr(cond.Expr)
		}
	case *tree.Subquery:
		a.walkSelectStatement(t.Select)
	case *tree.StatementSource:
		a.walkStatement(t.Statement)
	case *tree.TableName:
		a.addTable(t.Table())
	case *tree.UnresolvedObjectName:
		a.addTable(t.Parts[0])
	case *tree.RowsFromExpr:
		for _, item := range t.Items {
			a.walkExpr(item)
		}
	}
}

func (a *analysis) walkExpr(expr tree.Expr) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *tree.Subquery:
		a.walkSelectStatement(e.Select)
	case *tree.UnresolvedName:
		a.addColumn(e.Parts[0])
	case *tree.AndExpr:
		a.walkExpr(e.Left)
		a.walkExpr(e.Right)
	case *tree.OrExpr:
		a.walkExpr(e.Left)
		a.walkExpr(e.Right)
	case *tree.NotExpr:
		a.walkExpr(e.Expr)
	case *tree.ParenExpr:
		a.walkExpr(e.Expr)
	case *tree.ComparisonExpr:
		a.walkExpr(e.Left)
		a.walkExpr(e.Right)
	case *tree.BinaryExpr:
		a.walkExpr(e.Left)
		a.walkExpr(e.Right)
	case *tree.UnaryExpr:
		a.walkExpr(e.Expr)
	case *tree.FuncExpr:
		for _, arg := range e.Exprs {
			a.walkExpr(arg)
		}
		if e.Filter != nil {
			a.walkExpr(e.Filter)
		}
	case *tree.CaseExpr:
		a.walkExpr(e.Expr)
		for _, when := range e.Whens {
			a.walkExpr(when.Cond)
			a.walkExpr(when.Val)
		}
		a.walkExpr(e.Else)
	case *tree.CoalesceExpr:
		for _, arg := range e.Exprs {
			a.walkExpr(arg)
		}
	case *tree.CastExpr:
		a.walkExpr(e.Expr)
	case *tree.Tuple:
		for _, item := range e.Exprs {
			a.walkExpr(item)
		}
	case *tree.Array:
		for _, item := range e.Exprs {
			a.walkExpr(item)
		}
	case *tree.RangeCond:
		a.walkExpr(e.Left)
		a.walkExpr(e.From)
		a.walkExpr(e.To)
	case *tree.NullIfExpr:
		a.walkExpr(e.Expr1)
		a.walkExpr(e.Expr2)
	case *tree.IfExpr:
		a.walkExpr(e.Cond)
		a.walkExpr(e.True)
		a.walkExpr(e.Else)
	}
}
