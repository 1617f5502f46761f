// Package testdb provides test database utilities for the Backoffice API.
//
// The testdb package opens migrated GORM databases for repository and
// end-to-end handler tests.
//
// # Test Database Setup
//
// Create a test database for each test:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    defer tdb.Close()
//
//	    // Use tdb.DB for database operations
//	}
//
// # Isolation
//
// With the default SQLite driver every TestDB is a separate named in-memory
// database, so parallel tests never see each other's rows. Against
// PostgreSQL (TEST_DB_DRIVER=postgres, TEST_DB_DSN=...) tables are cleared
// on setup and tests sharing the DSN should not run in parallel.
//
// # Timeout Context
//
// Test databases include timeout contexts:
//
//	ctx := tdb.Ctx() // 10 second timeout, cancelled on test cleanup
package testdb
