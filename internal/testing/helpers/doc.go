// Package helpers provides test utility functions for the back-office API.
//
// # Request Helpers
//
// Build and serve requests against any http.Handler:
//
//	rr := helpers.NewRequest(t, http.MethodPost, "/customers").
//	    WithBody(map[string]string{"name": "Acme"}).
//	    Do(mux)
//
// # Assertion Helpers
//
//	helpers.AssertStatus(t, rr, http.StatusCreated)
//	helpers.AssertValidationError(t, rr, "email", "The email field must be a valid email address.")
//	helpers.AssertRecordNotExists(t, db, &model.Customer{}, id)
package helpers
