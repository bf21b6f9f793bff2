// Package fixtures provides test data factories for the sharing engine.
//
// The fixtures package contains factory functions for creating test data
// with sensible defaults and optional customization.
//
// # Factory Pattern
//
// Create a factory with a database connection:
//
//	f := fixtures.New(tdb.DB)
//
// # Creating Test Data
//
// Factory methods create domain entities:
//
//	alice := f.User("alice")                   // Profile only, no insert
//	trip := f.CreateTrip(t, alice.ID, fixtures.TripOpts{Name: "Kyoto"})
//	group := f.CreateGroup(t, alice.ID, bob.ID)
//	f.CreateSharedTrip(t, group.ID, alice.ID, fixtures.SharedTripOpts{})
//	f.Befriend(t, alice, bob)
//
// # Customization
//
// Use option structs for customization:
//
//	f.CreateGroupWith(t, alice.ID, fixtures.GroupOpts{
//	    UpdatedAgo: time.Minute, // backdate, for grace-period tests
//	}, bob.ID)
//
// # Random Data
//
// Unique identifiers are generated automatically:
//
//	trip1 := f.CreateTrip(t, alice.ID, fixtures.TripOpts{}) // trip:abc123
//	trip2 := f.CreateTrip(t, alice.ID, fixtures.TripOpts{}) // trip:def456
//
// # Cleanup
//
// Test data is cleaned up when the test database is closed.
package fixtures
