// Package testdb provides test database utilities for the sharing engine.
//
// The testdb package manages test database connections with automatic
// setup and cleanup against a real SurrealDB instance.
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
// Tests are skipped automatically when no database is reachable; set
// TEST_DB_HOST (and TEST_DB_PORT, TEST_DB_USER, TEST_DB_PASSWORD) to run
// them.
//
// # Isolation
//
// Each test gets an isolated database namespace:
//
//	func TestA(t *testing.T) {
//	    tdb := testdb.New(t) // namespace: test_..._1
//	}
//
//	func TestB(t *testing.T) {
//	    tdb := testdb.New(t) // namespace: test_..._2
//	}
//
// The engine's tables are schemaless documents, so no migrations run.
//
// # Timeout Context
//
// Test databases include timeout contexts:
//
//	ctx := tdb.Ctx() // 10 second timeout
package testdb
