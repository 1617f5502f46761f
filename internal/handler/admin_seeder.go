package handler

import (
	"context"
	"net/http"

	"github.com/forgo/backoffice/api/internal/model"
	"github.com/forgo/backoffice/api/internal/service"
)

// SeederServiceInterface defines the seeding operation the handler needs
type SeederServiceInterface interface {
	Seed(ctx context.Context, req service.SeedRequest) (*service.SeedResult, error)
}

// AdminSeederHandler handles development seeding endpoints
type AdminSeederHandler struct {
	seederService SeederServiceInterface
}

// NewAdminSeederHandler creates a new admin seeder handler
func NewAdminSeederHandler(seederService SeederServiceInterface) *AdminSeederHandler {
	return &AdminSeederHandler{seederService: seederService}
}

// RegisterRoutes registers seeding routes
func (h *AdminSeederHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /admin/seed", h.Seed)
}

// Seed handles POST /admin/seed
func (h *AdminSeederHandler) Seed(w http.ResponseWriter, r *http.Request) {
	var req service.SeedRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("Invalid request body: "+err.Error()))
		return
	}

	if req.Customers == 0 && req.Users == 0 {
		WriteError(w, model.NewBadRequestError("customers or users must be greater than 0"))
		return
	}

	result, err := h.seederService.Seed(r.Context(), req)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "seed"))
		return
	}

	WriteData(w, http.StatusCreated, result, map[string]string{
		"self":      "/admin/seed",
		"customers": "/customers",
		"users":     "/users",
	})
}
