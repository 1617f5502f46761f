// Package database provides database connectivity for the Backoffice API.
//
// Two storage families are supported behind the same repository contracts:
//
//   - Relational (PostgreSQL or SQLite) through the GORM ORM. OpenSQL returns a
//     *gorm.DB configured with an slog-backed logger and error translation;
//     Migrate creates the tables from the model structs.
//   - SurrealDB through the Database interface, which exposes raw SurrealQL
//     queries with bound variables.
//
// # Selecting a driver
//
//	cfg := database.Config{Driver: database.DriverSQLite, DSN: "backoffice.db"}
//	gdb, err := database.OpenSQL(ctx, cfg)
//
//	sdb := database.NewSurrealDB(cfg)
//	err := sdb.Connect(ctx)
//
// # Error Types
//
// Standard error types for data operations:
//
//   - ErrNotFound: Record does not exist
//   - ErrDuplicate: Unique constraint violation
//   - ErrConnection: Database connection failed
//   - ErrQuery: Query execution failed
//
// TranslateError folds driver errors from either family into these values so
// callers can use errors.Is.
package database
