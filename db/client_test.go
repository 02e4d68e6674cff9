package db

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func newMemoryClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient("")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { c.Stop() })
	return c
}

func TestQuery(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	if _, err := c.Exec(ctx, "CREATE TABLE notes(id INTEGER, body VARCHAR)"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	res, err := c.Exec(ctx, "INSERT INTO notes VALUES (1, 'hello'), (2, NULL)")
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if res.RowsAffected != 2 {
		t.Errorf("expected 2 rows affected, got %d", res.RowsAffected)
	}

	res, err = c.Query(ctx, "SELECT id, body FROM notes ORDER BY id")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !reflect.DeepEqual(res.Columns, []string{"id", "body"}) {
		t.Errorf("unexpected columns %v", res.Columns)
	}
	want := [][]string{{"1", "hello"}, {"2", "NULL"}}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("unexpected rows %v", res.Rows)
	}
}

func TestQueryError(t *testing.T) {
	c := newMemoryClient(t)
	if _, err := c.Query(context.Background(), "SELECT * FROM missing_table"); err == nil {
		t.Fatal("expected error for missing table")
	}
}

func TestWriteParquet(t *testing.T) {
	dir := t.TempDir()
	c, err := NewClient(dir)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer c.Stop()

	path, err := c.WriteParquet(context.Background(), "SELECT 42 AS answer;", "answer.parquet")
	if err != nil {
		t.Fatalf("WriteParquet failed: %v", err)
	}
	if path != filepath.Join(dir, "answer.parquet") {
		t.Errorf("unexpected path %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("parquet file not written: %v", err)
	}

	for _, name := range []string{"", "../escape.parquet", "sub/x.parquet", "it's.parquet"} {
		if _, err := c.WriteParquet(context.Background(), "SELECT 1", name); err == nil {
			t.Errorf("expected error for file name %q", name)
		}
	}

	mem := newMemoryClient(t)
	if _, err := mem.WriteParquet(context.Background(), "SELECT 1", "x.parquet"); err == nil {
		t.Error("expected error exporting from an in-memory database")
	}
}
