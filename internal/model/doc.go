// Package model defines domain entities and data structures for the Backoffice API.
//
// The model package contains the entity definitions, the allow-listed request
// inputs, listing parameters and error definitions. Models are used across all
// layers of the application.
//
// # Domain Entities
//
//   - Customer: a customer record with optional contact and address fields
//   - User: a back-office account with a write-only password and a role
//
// # Request Inputs
//
// Create and update bodies decode into CustomerInput and UserInput. Only the
// fields declared there are ever persisted; identifiers, roles and timestamps
// in a body are ignored. Each input exposes Normalize and Validate:
//
//	in.Normalize()
//	if errs := in.Validate(); len(errs) > 0 {
//	    return model.NewValidationError(errs)
//	}
//
// # Listing
//
// ListParams carries search, sort, order, page and pageSize. Normalize applies
// the defaults (page 1, pageSize 10, sort name, order asc) and replaces sort
// columns that are not allow-listed. Page[T] reports the total and derives
// LastPage, From and To.
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go. Validation problems
// additionally carry a message and a field -> messages map:
//
//	{
//	    "type": ".../errors/validation",
//	    "status": 422,
//	    "message": "The email field must be a valid email address.",
//	    "errors": {"email": ["The email field must be a valid email address."]}
//	}
package model
