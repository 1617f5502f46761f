// Package handler provides the HTTP handlers for the back-office API.
//
// Each handler wraps one service and registers its routes on a
// net/http ServeMux using method patterns:
//
//	GET    /customers          paginated list (search, sort, order, page, pageSize)
//	POST   /customers          create
//	GET    /customers/{id}     show
//	PUT    /customers/{id}     update
//	DELETE /customers/{id}     delete
//
// The /users routes mirror /customers. POST /admin/seed inserts fake
// records when seeding is enabled.
//
// # Response Format
//
// Lists use the PaginatedResponse envelope (data, current_page, last_page,
// from, to, total, per_page and the page URLs). Single records are returned
// bare. Errors are RFC 9457 Problem Details; validation failures carry a
// message and a per-field errors map with status 422.
//
// # Example Usage
//
//	mux := http.NewServeMux()
//	handler.NewCustomerHandler(customerService).RegisterRoutes(mux)
//	handler.NewUserHandler(userService).RegisterRoutes(mux)
package handler
