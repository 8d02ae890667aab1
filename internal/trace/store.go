// Package trace records intercepted primitive applications to a durable
// SQLite log for inspection and debugging.
//
// Each top-level propagation call is identified by a call token; rows are
// ordered within a call by a monotonic logical sequence, so a dumped trace
// replays the interception order exactly. Recording is strictly
// observational: the propagation engine behaves identically with or
// without a recorder attached.
package trace

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store provides durable storage for propagation traces.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically; safe to call on
// an existing trace database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Record is one intercepted primitive application.
type Record struct {
	CallToken     string
	Seq           int64
	Op            string
	Order         int
	OperandShapes [][]int
	OutputShape   []int
}

// Write inserts one application record.
func (s *Store) Write(ctx context.Context, r Record) error {
	operands, err := json.Marshal(r.OperandShapes)
	if err != nil {
		return fmt.Errorf("write application: %w", err)
	}
	output, err := json.Marshal(r.OutputShape)
	if err != nil {
		return fmt.Errorf("write application: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications
		(call_token, seq, op, taylor_order, operand_shapes, output_shape)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.CallToken, r.Seq, r.Op, r.Order, string(operands), string(output))
	if err != nil {
		return fmt.Errorf("write application: %w", err)
	}
	return nil
}

// ListByCall returns the applications of one call in seq order.
func (s *Store) ListByCall(ctx context.Context, callToken string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT call_token, seq, op, taylor_order, operand_shapes, output_shape
		FROM applications
		WHERE call_token = ?
		ORDER BY seq
	`, callToken)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListAll returns every application ordered by call token then seq.
func (s *Store) ListAll(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT call_token, seq, op, taylor_order, operand_shapes, output_shape
		FROM applications
		ORDER BY call_token, seq
	`)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Calls returns the distinct call tokens present in the store, sorted.
func (s *Store) Calls(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT call_token FROM applications ORDER BY call_token
	`)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()
	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan call token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var r Record
		var operands, output string
		if err := rows.Scan(&r.CallToken, &r.Seq, &r.Op, &r.Order, &operands, &output); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		if err := json.Unmarshal([]byte(operands), &r.OperandShapes); err != nil {
			return nil, fmt.Errorf("decode operand shapes: %w", err)
		}
		if err := json.Unmarshal([]byte(output), &r.OutputShape); err != nil {
			return nil, fmt.Errorf("decode output shape: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
