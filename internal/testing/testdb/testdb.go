// Package testdb provides test database utilities for e2e testing.
//
// Each TestDB is an isolated, migrated GORM database. By default it is a
// private in-memory SQLite database; set TEST_DB_DRIVER=postgres and
// TEST_DB_DSN to run the same tests against PostgreSQL.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    defer tdb.Close()
//
//	    repo := repository.NewCustomerRepository(tdb.DB)
//	}
package testdb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/forgo/backoffice/api/internal/database"
	"github.com/forgo/backoffice/api/internal/model"
)

// TestDB provides an isolated database environment for testing.
type TestDB struct {
	DB     *gorm.DB
	Name   string
	Driver string
	t      *testing.T
}

var (
	// counterMu protects the name counter
	counterMu sync.Mutex
	counter   int64
)

// Models lists every table the API migrates
func Models() []interface{} {
	return []interface{}{&model.Customer{}, &model.User{}}
}

// getTestConfig returns database config from environment or defaults
func getTestConfig(name string) database.Config {
	driver := os.Getenv("TEST_DB_DRIVER")
	if driver == "" {
		driver = database.DriverSQLite
	}

	dsn := os.Getenv("TEST_DB_DSN")
	if driver == database.DriverSQLite {
		// Named shared-cache memory DB: every pooled connection sees the same data
		dsn = fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	}

	return database.Config{
		Driver: driver,
		DSN:    dsn,
	}
}

// uniqueName generates a unique database name for test isolation
func uniqueName() string {
	counterMu.Lock()
	defer counterMu.Unlock()
	counter++
	return fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), counter)
}

// New creates a new isolated test database with the schema migrated.
// Call Close() when done.
func New(t *testing.T) *TestDB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	name := uniqueName()
	cfg := getTestConfig(name)

	db, err := database.OpenSQL(ctx, cfg)
	if err != nil {
		t.Fatalf("testdb: failed to open: %v", err)
	}

	if err := database.Migrate(ctx, db, Models()...); err != nil {
		_ = database.CloseSQL(db)
		t.Fatalf("testdb: migration failed: %v", err)
	}

	tdb := &TestDB{
		DB:     db,
		Name:   name,
		Driver: cfg.Driver,
		t:      t,
	}

	// A shared PostgreSQL database carries rows from earlier runs
	if cfg.Driver != database.DriverSQLite {
		tdb.Reset(t)
	}

	return tdb
}

// Close releases the connection. In-memory databases vanish with it.
func (tdb *TestDB) Close() {
	if tdb.DB == nil {
		return
	}
	_ = database.CloseSQL(tdb.DB)
	tdb.DB = nil
}

// Reset clears all data from tables while preserving schema.
func (tdb *TestDB) Reset(t *testing.T) {
	t.Helper()

	for _, m := range Models() {
		err := tdb.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m).Error
		if err != nil {
			t.Fatalf("testdb: failed to clear %T: %v", m, err)
		}
	}
}

// Ctx returns a context with a reasonable timeout for test operations.
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}

// MustExec executes raw SQL and fails the test on error.
func (tdb *TestDB) MustExec(query string, args ...interface{}) {
	tdb.t.Helper()
	if err := tdb.DB.WithContext(tdb.Ctx()).Exec(query, args...).Error; err != nil {
		tdb.t.Fatalf("testdb: exec failed: %v\nQuery: %s", err, query)
	}
}

// Count returns the number of rows in the model's table.
func (tdb *TestDB) Count(m interface{}) int64 {
	tdb.t.Helper()
	var n int64
	if err := tdb.DB.WithContext(tdb.Ctx()).Model(m).Count(&n).Error; err != nil {
		tdb.t.Fatalf("testdb: count failed: %v", err)
	}
	return n
}
