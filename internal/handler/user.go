package handler

import (
	"context"
	"net/http"

	"github.com/forgo/backoffice/api/internal/model"
)

// UserServiceInterface defines the user operations the handler needs
type UserServiceInterface interface {
	List(ctx context.Context, params model.ListParams) (*model.Page[model.User], error)
	Get(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, in model.UserInput) (*model.User, error)
	Update(ctx context.Context, id int64, in model.UserInput) (*model.User, error)
	Delete(ctx context.Context, id int64) error
}

// UserHandler handles user endpoints
type UserHandler struct {
	userService UserServiceInterface
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers user routes
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /users", h.List)
	mux.HandleFunc("POST /users", h.Create)
	mux.HandleFunc("GET /users/{id}", h.Get)
	mux.HandleFunc("PUT /users/{id}", h.Update)
	mux.HandleFunc("DELETE /users/{id}", h.Delete)
}

// List handles GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.userService.List(r.Context(), ParseListParams(r))
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list users"))
		return
	}
	WriteJSON(w, http.StatusOK, NewPaginatedResponse(r, page))
}

// Get handles GET /users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r, "id")
	if err != nil {
		WriteError(w, model.NewBadRequestError(err.Error()))
		return
	}

	user, err := h.userService.Get(r.Context(), id)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "get user"))
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// Create handles POST /users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.UserInput
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("Invalid request body: "+err.Error()))
		return
	}

	user, err := h.userService.Create(r.Context(), req)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "create user"))
		return
	}
	WriteJSON(w, http.StatusCreated, user)
}

// Update handles PUT /users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r, "id")
	if err != nil {
		WriteError(w, model.NewBadRequestError(err.Error()))
		return
	}

	var req model.UserInput
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("Invalid request body: "+err.Error()))
		return
	}

	user, err := h.userService.Update(r.Context(), id, req)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "update user"))
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r, "id")
	if err != nil {
		WriteError(w, model.NewBadRequestError(err.Error()))
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "delete user"))
		return
	}
	WriteNoContent(w)
}
