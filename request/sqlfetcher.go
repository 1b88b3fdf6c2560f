package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/xo/dburl"

	_ "github.com/mattn/go-sqlite3"
)

// SQLFetcher implements Fetcher for Spec.URI values that are dburl-style
// DSNs (e.g. "sqlite:./app.db" or "postgres://..."), passed to
// dburl.Open as they are:
// Spec.Body carries the SQL text, Spec.Method is "query" (rows come back
// as JSON in Result.Body) or "exec" (Result.Status carries rows
// affected). Grounded on risor's modules/sql submodule go.mod, which
// pairs github.com/xo/dburl with driver packages including
// github.com/mattn/go-sqlite3 — the sqlite3 driver is registered here as
// the one always-available default; a host wanting postgres/mysql/mssql
// need only blank-import those drivers alongside this package.
type SQLFetcher struct {
	mu    sync.Mutex
	pools map[string]*sql.DB
}

func NewSQLFetcher() *SQLFetcher {
	return &SQLFetcher{pools: map[string]*sql.DB{}}
}

func (f *SQLFetcher) pool(dsn string) (*sql.DB, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if db, ok := f.pools[dsn]; ok {
		return db, nil
	}
	db, err := dburl.Open(dsn)
	if err != nil {
		return nil, err
	}
	f.pools[dsn] = db
	return db, nil
}

func (f *SQLFetcher) Fetch(ctx context.Context, spec *Spec) (*Result, error) {
	db, err := f.pool(spec.URI)
	if err != nil {
		return nil, err
	}
	query := string(spec.Body)
	if spec.Method == "exec" {
		res, err := db.ExecContext(ctx, query)
		if err != nil {
			return nil, err
		}
		n, _ := res.RowsAffected()
		return &Result{Status: int(n)}, nil
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	body, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return &Result{Status: 200, Body: body}, nil
}
