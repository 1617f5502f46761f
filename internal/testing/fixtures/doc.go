// Package fixtures provides test data factories for e2e testing.
//
// Each factory method creates records with sensible defaults while allowing
// customization via option functions. Records are inserted directly with
// GORM, bypassing the service layer.
//
//	f := fixtures.New(tdb.DB)
//	user := f.CreateUser(t)
//	customers := f.CreateCustomers(t, 25)
//
// # Customization
//
//	c := f.CreateCustomer(t, fixtures.WithCity("Cebu"))
//	u := f.CreateUser(t, fixtures.WithUserEmail("ana@example.com"))
//	admin := f.CreateAdmin(t)
//
// Fixture users share DefaultPassword.
package fixtures
