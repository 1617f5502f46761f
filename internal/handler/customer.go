package handler

import (
	"context"
	"net/http"

	"github.com/forgo/backoffice/api/internal/model"
)

// CustomerServiceInterface defines the customer operations the handler needs
type CustomerServiceInterface interface {
	List(ctx context.Context, params model.ListParams) (*model.Page[model.Customer], error)
	Get(ctx context.Context, id int64) (*model.Customer, error)
	Create(ctx context.Context, in model.CustomerInput) (*model.Customer, error)
	Update(ctx context.Context, id int64, in model.CustomerInput) (*model.Customer, error)
	Delete(ctx context.Context, id int64) error
}

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	customerService CustomerServiceInterface
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService CustomerServiceInterface) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// RegisterRoutes registers customer routes
func (h *CustomerHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /customers", h.List)
	mux.HandleFunc("POST /customers", h.Create)
	mux.HandleFunc("GET /customers/{id}", h.Get)
	mux.HandleFunc("PUT /customers/{id}", h.Update)
	mux.HandleFunc("DELETE /customers/{id}", h.Delete)
}

// List handles GET /customers
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.customerService.List(r.Context(), ParseListParams(r))
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list customers"))
		return
	}
	WriteJSON(w, http.StatusOK, NewPaginatedResponse(r, page))
}

// Get handles GET /customers/{id}
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r, "id")
	if err != nil {
		WriteError(w, model.NewBadRequestError(err.Error()))
		return
	}

	customer, err := h.customerService.Get(r.Context(), id)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "get customer"))
		return
	}
	WriteJSON(w, http.StatusOK, customer)
}

// Create handles POST /customers
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CustomerInput
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("Invalid request body: "+err.Error()))
		return
	}

	customer, err := h.customerService.Create(r.Context(), req)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "create customer"))
		return
	}
	WriteJSON(w, http.StatusCreated, customer)
}

// Update handles PUT /customers/{id}
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r, "id")
	if err != nil {
		WriteError(w, model.NewBadRequestError(err.Error()))
		return
	}

	var req model.CustomerInput
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("Invalid request body: "+err.Error()))
		return
	}

	customer, err := h.customerService.Update(r.Context(), id, req)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "update customer"))
		return
	}
	WriteJSON(w, http.StatusOK, customer)
}

// Delete handles DELETE /customers/{id}
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r, "id")
	if err != nil {
		WriteError(w, model.NewBadRequestError(err.Error()))
		return
	}

	if err := h.customerService.Delete(r.Context(), id); err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "delete customer"))
		return
	}
	WriteNoContent(w)
}
