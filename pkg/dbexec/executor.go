// Package dbexec owns the connection to the fixed analytics database. It runs
// already-validated SELECT statements with an enforced LIMIT, a per-query
// timeout, and an optional Redis read-through cache.
package dbexec

import (
	"clave-insights/internal/apis/dtos"
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Executor struct {
	db           *gorm.DB
	queryTimeout time.Duration
	cache        ResultCache
}

// ResultCache is the optional read-through cache over executed result sets.
// A nil cache disables caching entirely.
type ResultCache interface {
	Get(ctx context.Context, sql string) ([]map[string]interface{}, bool)
	Set(ctx context.Context, sql string, rows []map[string]interface{})
}

// NewExecutor opens a pooled connection to the analytics database.
func NewExecutor(databaseURL string, queryTimeout time.Duration, cache ResultCache) (*Executor, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %v", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create GORM connection: %v", err)
	}

	return &Executor{
		db:           gormDB,
		queryTimeout: queryTimeout,
		cache:        cache,
	}, nil
}

// DB exposes the underlying gorm handle for repositories that share the pool.
func (e *Executor) DB() *gorm.DB {
	return e.db
}

// Close releases the connection pool.
func (e *Executor) Close() error {
	sqlDB, err := e.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB: %v", err)
	}
	return sqlDB.Close()
}

// ExecuteQuery runs one SELECT and returns its rows. The caller is expected to
// have passed the statement through sqlguard and EnforceLimit first.
func (e *Executor) ExecuteQuery(ctx context.Context, query string) ([]map[string]interface{}, *dtos.QueryError) {
	if e.cache != nil {
		if rows, ok := e.cache.Get(ctx, query); ok {
			log.Printf("Executor -> ExecuteQuery -> cache hit (%d rows)", len(rows))
			return rows, nil
		}
	}

	execCtx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	sqlDB, err := e.db.DB()
	if err != nil {
		return nil, &dtos.QueryError{
			Code:    "NO_CONNECTION_FOUND",
			Message: "no database connection available",
			Details: err.Error(),
		}
	}

	rows, err := sqlDB.QueryContext(execCtx, query)
	if err != nil {
		if execCtx.Err() == context.DeadlineExceeded {
			return nil, &dtos.QueryError{
				Code:    "QUERY_EXECUTION_TIMED_OUT",
				Message: "query execution timed out",
				Details: err.Error(),
			}
		}
		return nil, classifyError(err)
	}
	defer rows.Close()

	results, err := processRows(rows)
	if err != nil {
		return nil, &dtos.QueryError{
			Code:    "RESULT_PROCESSING_FAILED",
			Message: err.Error(),
			Details: "Failed to process query results",
		}
	}

	if e.cache != nil {
		e.cache.Set(ctx, query, results)
	}

	return results, nil
}

func processRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %v", err)
	}

	results := make([]map[string]interface{}, 0)
	values := make([]interface{}, len(columns))
	scanArgs := make([]interface{}, len(columns))

	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		err := rows.Scan(scanArgs...)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}

		row := make(map[string]interface{})
		for i, col := range columns {
			val := values[i]
			if val == nil {
				row[col] = nil
				continue
			}

			// Handle different types
			switch v := val.(type) {
			case []byte:
				row[col] = string(v)
			case time.Time:
				row[col] = v.Format("2006-01-02")
			default:
				row[col] = v
			}
		}
		results = append(results, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %v", err)
	}

	return results, nil
}
