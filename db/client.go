// Package db wraps the DuckDB database the repl extension queries.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver registration
)

// Client represents a DuckDB client. The database lives in a directory, or
// in memory when no directory is given.
type Client struct {
	DB  *sql.DB
	dir string
}

// Result is a fully read query result.
type Result struct {
	Columns []string
	Rows    [][]string
	// RowsAffected is set for statements that return no rows.
	RowsAffected int64
}

// NewClient creates a new DuckDB client. An empty dir opens an in-memory
// database; otherwise "duck.db" is created inside dir.
func NewClient(dir string) (*Client, error) {
	dsn := ""
	if dir != "" {
		info, err := os.Stat(dir)
		if os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory: %w", err)
			}
			info, err = os.Stat(dir)
			if err != nil {
				return nil, fmt.Errorf("failed to stat directory after creation: %w", err)
			}
		} else if err != nil {
			return nil, fmt.Errorf("failed to stat directory: %w", err)
		}

		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", dir)
		}
		dsn = filepath.Join(dir, "duck.db?threads=4")
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	return &Client{
		DB:  db,
		dir: dir,
	}, nil
}

// Start ensures that the database connection is available by pinging it.
func (c *Client) Start(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}
	return nil
}

// Stop closes the DuckDB connection.
func (c *Client) Stop() error {
	return c.DB.Close()
}

// Query runs query and reads every row, rendering values as text. NULL is
// rendered as "NULL".
func (c *Client) Query(ctx context.Context, query string) (*Result, error) {
	rows, err := c.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	res := &Result{Columns: cols}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make([]string, len(cols))
		for i, v := range values {
			switch v := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(v)
			default:
				row[i] = fmt.Sprint(v)
			}
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return res, nil
}

// Exec runs a statement that returns no rows.
func (c *Client) Exec(ctx context.Context, stmt string) (*Result, error) {
	r, err := c.DB.ExecContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("statement failed: %w", err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		n = 0
	}
	return &Result{RowsAffected: n}, nil
}

// WriteParquet copies the result of query into filename inside the
// database directory and returns the written path. filename must be a bare
// file name.
func (c *Client) WriteParquet(ctx context.Context, query, filename string) (string, error) {
	if c.dir == "" {
		return "", fmt.Errorf("parquet export needs a database directory")
	}
	if filename == "" || filename != filepath.Base(filename) || strings.ContainsAny(filename, "'\"") {
		return "", fmt.Errorf("invalid parquet file name %q", filename)
	}
	outPath := filepath.Join(c.dir, filename)
	sqlQuery := fmt.Sprintf("COPY (%s) TO '%s' (FORMAT 'parquet')", strings.TrimRight(query, "; \n\t"), outPath)
	_, err := c.DB.ExecContext(ctx, sqlQuery)
	if err != nil {
		return "", fmt.Errorf("failed to write parquet file: %w", err)
	}
	return outPath, nil
}
