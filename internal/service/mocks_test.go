package service

import (
	"context"
	"sort"
	"time"

	"github.com/forgo/backoffice/api/internal/database"
	"github.com/forgo/backoffice/api/internal/model"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockCustomerRepo struct {
	customers map[int64]*model.Customer
	nextID    int64
	lastList  model.ListParams
	createErr error
	listErr   error
}

func newMockCustomerRepo() *mockCustomerRepo {
	return &mockCustomerRepo{customers: make(map[int64]*model.Customer)}
}

func (m *mockCustomerRepo) List(ctx context.Context, params model.ListParams) (*model.Page[model.Customer], error) {
	m.lastList = params
	if m.listErr != nil {
		return nil, m.listErr
	}
	items := make([]model.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		items = append(items, *c)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return &model.Page[model.Customer]{Items: items, Total: int64(len(items)), Page: params.Page, PageSize: params.PageSize}, nil
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.customers[c.ID] = &cp
	return nil
}

func (m *mockCustomerRepo) Update(ctx context.Context, c *model.Customer) error {
	if _, ok := m.customers[c.ID]; !ok {
		return database.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	cp := *c
	m.customers[c.ID] = &cp
	return nil
}

func (m *mockCustomerRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.customers[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.customers, id)
	return nil
}

func (m *mockCustomerRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.customers)), nil
}

type mockUserRepo struct {
	users     map[int64]*model.User
	nextID    int64
	createErr error
	getErr    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User)}
}

func (m *mockUserRepo) List(ctx context.Context, params model.ListParams) (*model.Page[model.User], error) {
	items := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		items = append(items, *u)
	}
	return &model.Page[model.User]{Items: items, Total: int64(len(items)), Page: params.Page, PageSize: params.PageSize}, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *mockUserRepo) Create(ctx context.Context, u *model.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, u *model.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return database.ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.users)), nil
}
