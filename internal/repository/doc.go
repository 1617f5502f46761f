// Package repository implements the data access layer for the Backoffice API.
//
// Each entity has two implementations with the same method set:
//
//   - CustomerRepository / UserRepository run on GORM (PostgreSQL or SQLite)
//   - SurrealCustomerRepository / SurrealUserRepository run on SurrealDB
//     through the database.Database interface
//
// # Repository Pattern
//
// All repositories follow a consistent pattern:
//
//   - Constructor function (NewXxxRepository) accepts a database handle
//   - List takes model.ListParams and returns a model.Page
//   - GetByID, Create, Update and Delete return database.ErrNotFound when
//     the record does not exist
//   - Unique violations surface as database.ErrDuplicate
//
// # Query Patterns
//
// Search is a case-insensitive substring match over a fixed column set.
// Sort columns are allow-listed by ListParams.Normalize before they reach
// an ORDER BY clause; everything else is bound as a parameter.
//
// # Example Usage
//
//	repo := NewCustomerRepository(gdb)
//	page, err := repo.List(ctx, model.ListParams{Search: "jan", Page: 2})
//	if err != nil {
//	    return err
//	}
package repository
