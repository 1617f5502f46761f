package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// TxBuilder assembles SurrealQL statements into one BEGIN/COMMIT block.
// Each statement's variables are prefixed with its position, so two
// statements binding $email end up as $s1_email and $s2_email.
//
// A TxBuilder is not safe for concurrent use.
type TxBuilder struct {
	statements []string
	vars       map[string]interface{}
}

// NewTxBuilder creates an empty transaction
func NewTxBuilder() *TxBuilder {
	return &TxBuilder{vars: make(map[string]interface{})}
}

// Add appends a statement and returns the mapping from its variable names
// to the names they were rewritten to.
func (tb *TxBuilder) Add(query string, vars map[string]interface{}) map[string]string {
	prefix := fmt.Sprintf("s%d_", len(tb.statements)+1)

	// Longest first so $name is not rewritten inside $name_lower
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	mapping := make(map[string]string, len(vars))
	for _, name := range names {
		renamed := prefix + name
		query = strings.ReplaceAll(query, "$"+name, "$"+renamed)
		tb.vars[renamed] = vars[name]
		mapping[name] = renamed
	}

	tb.statements = append(tb.statements, query)
	return mapping
}

// AddRaw appends a statement that binds no variables of its own, such as a
// schema definition or a LET shared by later statements.
func (tb *TxBuilder) AddRaw(query string) {
	tb.statements = append(tb.statements, query)
}

// Len returns the number of statements
func (tb *TxBuilder) Len() int {
	return len(tb.statements)
}

// Build returns the transaction text and its variables. An empty builder
// yields an empty query.
func (tb *TxBuilder) Build() (string, map[string]interface{}) {
	if len(tb.statements) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, stmt := range tb.statements {
		stmt = strings.TrimRight(strings.TrimSpace(stmt), ";")
		sb.WriteString(stmt)
		sb.WriteString(";\n")
	}
	sb.WriteString("COMMIT TRANSACTION;")
	return sb.String(), tb.vars
}

// ExecuteTransaction runs tb against db. Nothing is sent for an empty builder.
func ExecuteTransaction(ctx context.Context, db Database, tb *TxBuilder) ([]interface{}, error) {
	query, vars := tb.Build()
	if query == "" {
		return nil, nil
	}
	return db.Query(ctx, query, vars)
}
