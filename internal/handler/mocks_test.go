package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/forgo/backoffice/api/internal/model"
	"github.com/forgo/backoffice/api/internal/service"
)

// ============================================================================
// Mock CustomerService
// ============================================================================

type mockCustomerService struct {
	listFunc   func(ctx context.Context, params model.ListParams) (*model.Page[model.Customer], error)
	getFunc    func(ctx context.Context, id int64) (*model.Customer, error)
	createFunc func(ctx context.Context, in model.CustomerInput) (*model.Customer, error)
	updateFunc func(ctx context.Context, id int64, in model.CustomerInput) (*model.Customer, error)
	deleteFunc func(ctx context.Context, id int64) error
}

func (m *mockCustomerService) List(ctx context.Context, params model.ListParams) (*model.Page[model.Customer], error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, params)
	}
	return &model.Page[model.Customer]{Page: 1, PageSize: 10}, nil
}

func (m *mockCustomerService) Get(ctx context.Context, id int64) (*model.Customer, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, service.ErrCustomerNotFound
}

func (m *mockCustomerService) Create(ctx context.Context, in model.CustomerInput) (*model.Customer, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, in)
	}
	return &model.Customer{ID: 1, Name: in.Name}, nil
}

func (m *mockCustomerService) Update(ctx context.Context, id int64, in model.CustomerInput) (*model.Customer, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, in)
	}
	return &model.Customer{ID: id, Name: in.Name}, nil
}

func (m *mockCustomerService) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

// ============================================================================
// Mock UserService
// ============================================================================

type mockUserService struct {
	listFunc   func(ctx context.Context, params model.ListParams) (*model.Page[model.User], error)
	getFunc    func(ctx context.Context, id int64) (*model.User, error)
	createFunc func(ctx context.Context, in model.UserInput) (*model.User, error)
	updateFunc func(ctx context.Context, id int64, in model.UserInput) (*model.User, error)
	deleteFunc func(ctx context.Context, id int64) error
}

func (m *mockUserService) List(ctx context.Context, params model.ListParams) (*model.Page[model.User], error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, params)
	}
	return &model.Page[model.User]{Page: 1, PageSize: 10}, nil
}

func (m *mockUserService) Get(ctx context.Context, id int64) (*model.User, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, service.ErrUserNotFound
}

func (m *mockUserService) Create(ctx context.Context, in model.UserInput) (*model.User, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, in)
	}
	return &model.User{ID: 1, Name: in.Name, Email: in.Email, Role: model.UserRoleUser}, nil
}

func (m *mockUserService) Update(ctx context.Context, id int64, in model.UserInput) (*model.User, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, in)
	}
	return &model.User{ID: id, Name: in.Name, Email: in.Email, Role: model.UserRoleUser}, nil
}

func (m *mockUserService) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

// ============================================================================
// Mock SeederService
// ============================================================================

type mockSeederService struct {
	seedFunc func(ctx context.Context, req service.SeedRequest) (*service.SeedResult, error)
}

func (m *mockSeederService) Seed(ctx context.Context, req service.SeedRequest) (*service.SeedResult, error) {
	if m.seedFunc != nil {
		return m.seedFunc(ctx, req)
	}
	return &service.SeedResult{Customers: req.Customers, Users: req.Users}, nil
}

// ============================================================================
// Test Helpers
// ============================================================================

func strPtr(s string) *string { return &s }

// serve routes req through a mux carrying the handler's real patterns so
// path values are populated
func serve(register func(*http.ServeMux), req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	register(mux)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeProblem(rr *httptest.ResponseRecorder) (model.ProblemDetails, error) {
	var pd model.ProblemDetails
	err := json.NewDecoder(strings.NewReader(rr.Body.String())).Decode(&pd)
	return pd, err
}
