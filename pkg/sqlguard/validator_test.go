package sqlguard

import (
	"clave-insights/internal/constants"
	"clave-insights/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *Validator {
	return NewValidator(constants.AllowedTables, int64(constants.MaxResultRows),
		constants.MaxJoins, constants.MaxNestedSelects)
}

func TestValidateAcceptsPlainAggregation(t *testing.T) {
	v := newTestValidator()

	outcome := v.Validate("SELECT location_name, SUM(revenue) AS total_revenue FROM daily_sales_summary GROUP BY location_name ORDER BY total_revenue DESC LIMIT 100")

	require.True(t, outcome.Valid, outcome.Reason)
	assert.Equal(t, models.CodePassed, outcome.Code)
}

func TestValidateAcceptsCommonTableExpression(t *testing.T) {
	v := newTestValidator()

	outcome := v.Validate("WITH daily AS (SELECT business_date, revenue FROM daily_sales_summary) SELECT business_date, revenue FROM daily ORDER BY business_date LIMIT 50")

	require.True(t, outcome.Valid, outcome.Reason)
}

func TestValidateRejectsWrites(t *testing.T) {
	v := newTestValidator()

	cases := []string{
		"INSERT INTO orders (id) VALUES ('x')",
		"UPDATE orders SET status = 'VOIDED'",
		"DELETE FROM orders",
		"DROP TABLE orders",
	}
	for _, sql := range cases {
		outcome := v.Validate(sql)
		require.False(t, outcome.Valid, sql)
		assert.Equal(t, models.CodeNotReadOnly, outcome.Code, sql)
	}
}

func TestValidateRejectsMultipleStatements(t *testing.T) {
	v := newTestValidator()

	outcome := v.Validate("SELECT 1; SELECT 2")

	require.False(t, outcome.Valid)
	assert.Equal(t, models.CodeNotReadOnly, outcome.Code)
}

func TestValidateRejectsUnparseableInput(t *testing.T) {
	v := newTestValidator()

	outcome := v.Validate("this is not sql at all")

	require.False(t, outcome.Valid)
	assert.Equal(t, models.CodeNotReadOnly, outcome.Code)
}

func TestValidateRejectsUnknownTable(t *testing.T) {
	v := newTestValidator()

	outcome := v.Validate("SELECT * FROM users LIMIT 10")

	require.False(t, outcome.Valid)
	assert.Equal(t, models.CodeInvalidTable, outcome.Code)
	assert.Contains(t, outcome.Reason, "daily_sales_summary")
}

func TestValidateRejectsDangerousFunctions(t *testing.T) {
	v := newTestValidator()

	outcome := v.Validate("SELECT pg_sleep(10)")

	require.False(t, outcome.Valid)
	assert.Equal(t, models.CodeDangerousFunction, outcome.Code)
}

func TestValidateRejectsTautology(t *testing.T) {
	v := newTestValidator()

	outcome := v.Validate("SELECT * FROM orders WHERE status = 'COMPLETED' OR 1=1 LIMIT 10")

	require.False(t, outcome.Valid)
	assert.Equal(t, models.CodeSQLInjectionPattern, outcome.Code)
}

func TestValidateAllowsUnequalComparison(t *testing.T) {
	v := newTestValidator()

	outcome := v.Validate("SELECT * FROM orders WHERE hour_of_day = 11 OR hour_of_day = 12 LIMIT 10")

	require.True(t, outcome.Valid, outcome.Reason)
}

func TestValidateRejectsComments(t *testing.T) {
	v := newTestValidator()

	outcome := v.Validate("SELECT * FROM orders LIMIT 10 -- hidden tail")

	require.False(t, outcome.Valid)
	assert.Equal(t, models.CodeSQLInjectionPattern, outcome.Code)
}

func TestValidateRejectsUnionSelect(t *testing.T) {
	v := newTestValidator()

	outcome := v.Validate("SELECT id FROM orders UNION SELECT id FROM products LIMIT 10")

	require.False(t, outcome.Valid)
	assert.Equal(t, models.CodeSQLInjectionPattern, outcome.Code)
}

func TestValidateRejectsOversizedLimit(t *testing.T) {
	v := newTestValidator()

	outcome := v.Validate("SELECT * FROM orders LIMIT 5000")

	require.False(t, outcome.Valid)
	assert.Equal(t, models.CodeTooComplex, outcome.Code)
}

func TestValidateRejectsTooManyJoins(t *testing.T) {
	v := newTestValidator()

	sql := `SELECT o.id FROM orders o
		JOIN order_items i1 ON i1.order_id = o.id
		JOIN order_items i2 ON i2.order_id = o.id
		JOIN order_items i3 ON i3.order_id = o.id
		JOIN order_items i4 ON i4.order_id = o.id
		JOIN order_items i5 ON i5.order_id = o.id
		JOIN order_items i6 ON i6.order_id = o.id
		LIMIT 10`
	outcome := v.Validate(sql)

	require.False(t, outcome.Valid)
	assert.Equal(t, models.CodeTooComplex, outcome.Code)
}

func TestValidateRejectsDeepNesting(t *testing.T) {
	v := newTestValidator()

	sql := "SELECT * FROM (SELECT * FROM (SELECT * FROM (SELECT * FROM (SELECT id FROM orders) a) b) c) d LIMIT 10"
	outcome := v.Validate(sql)

	require.False(t, outcome.Valid)
	assert.Equal(t, models.CodeTooComplex, outcome.Code)
}
