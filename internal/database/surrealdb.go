package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// SurrealDB implements the Database interface for SurrealDB
type SurrealDB struct {
	db     *surrealdb.DB
	config Config
}

// NewSurrealDB creates a new SurrealDB instance
func NewSurrealDB(cfg Config) *SurrealDB {
	return &SurrealDB{
		config: cfg,
	}
}

// Connect establishes a connection to SurrealDB
func (s *SurrealDB) Connect(ctx context.Context) error {
	endpoint := fmt.Sprintf("ws://%s:%s", s.config.Host, s.config.Port)

	db, err := surrealdb.FromEndpointURLString(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	_, err = db.SignIn(ctx, &surrealdb.Auth{
		Username: s.config.User,
		Password: s.config.Password,
	})
	if err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("%w: signin failed: %v", ErrConnection, err)
	}

	if err := db.Use(ctx, s.config.Namespace, s.config.Database); err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("%w: use failed: %v", ErrConnection, err)
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *SurrealDB) Close() error {
	if s.db != nil {
		return s.db.Close(context.Background())
	}
	return nil
}

// Ping checks the database connection
func (s *SurrealDB) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrConnection
	}
	if _, err := s.db.Version(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// Query executes a query and returns one {status, result} entry per statement
func (s *SurrealDB) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	if s.db == nil {
		return nil, ErrConnection
	}

	results, err := surrealdb.Query[interface{}](ctx, s.db, query, vars)
	if err != nil {
		return nil, TranslateError(err)
	}
	if results == nil {
		return nil, nil
	}

	output := make([]interface{}, 0, len(*results))
	var failure string
	for _, r := range *results {
		if r.Status != "OK" {
			msg := "statement failed"
			if r.Error != nil {
				msg = r.Error.Message
			}
			// In a cancelled transaction every statement reports failure;
			// keep the one that caused it.
			if failure == "" || strings.Contains(failure, txNotExecuted) {
				failure = msg
			}
			continue
		}
		output = append(output, map[string]interface{}{
			"status": r.Status,
			"result": r.Result,
		})
	}
	if failure != "" {
		return nil, TranslateError(errors.New(failure))
	}

	return output, nil
}

const txNotExecuted = "not executed due to a failed transaction"

// QueryOne executes a query and returns the first record of the first statement
func (s *SurrealDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	results, err := s.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return FirstRecord(results)
}

// Execute runs a query without returning results
func (s *SurrealDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	_, err := s.Query(ctx, query, vars)
	return err
}

// FirstRecord unwraps the first {status, result} entry and returns its
// first record, or the bare value for scalar results.
func FirstRecord(results []interface{}) (interface{}, error) {
	if len(results) == 0 {
		return nil, ErrNotFound
	}

	first := results[0]
	if resp, ok := first.(map[string]interface{}); ok {
		if status, ok := resp["status"].(string); ok && status == "OK" {
			if resultData, ok := resp["result"].([]interface{}); ok {
				if len(resultData) == 0 {
					return nil, ErrNotFound
				}
				return resultData[0], nil
			}
			if resp["result"] == nil {
				return nil, ErrNotFound
			}
			return resp["result"], nil
		}
	}

	return first, nil
}

// schemaStatements define the back-office tables. Records are keyed by an
// integer drawn from the sequence table so ids match the relational stores.
var schemaStatements = []string{
	"DEFINE TABLE IF NOT EXISTS sequence SCHEMALESS",
	"DEFINE TABLE IF NOT EXISTS customer SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS customer_num ON customer FIELDS num UNIQUE",
	"DEFINE INDEX IF NOT EXISTS customer_name ON customer FIELDS name",
	"DEFINE TABLE IF NOT EXISTS user SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS user_num ON user FIELDS num UNIQUE",
	"DEFINE INDEX IF NOT EXISTS user_email ON user FIELDS email UNIQUE",
}

// DefineSchema creates tables and indexes if they are missing
func DefineSchema(ctx context.Context, db Database) error {
	tb := NewTxBuilder()
	for _, stmt := range schemaStatements {
		tb.AddRaw(stmt)
	}
	if _, err := ExecuteTransaction(ctx, db, tb); err != nil {
		return fmt.Errorf("define schema: %w", err)
	}
	return nil
}

// NextIDStatement returns a LET statement binding $num to the next integer
// id for table. It is meant to run inside the same transaction as the CREATE.
func NextIDStatement(table string) string {
	return fmt.Sprintf(
		"LET $num = (UPSERT type::thing('sequence', '%s') SET value = (value ?? 0) + 1 RETURN VALUE value)[0]",
		table,
	)
}
