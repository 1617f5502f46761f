package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/forgo/backoffice/api/internal/model"
)

// DefaultPassword is the plain-text password of every fixture user
const DefaultPassword = "testpass123"

// Factory creates test records in the database
type Factory struct {
	db *gorm.DB
}

// New creates a new fixture factory
func New(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func (f *Factory) create(t *testing.T, v interface{}) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := f.db.WithContext(ctx).Create(v).Error; err != nil {
		t.Fatalf("fixtures: failed to create %T: %v", v, err)
	}
}

func strPtr(s string) *string {
	return &s
}

// ============================================================================
// Customer Fixtures
// ============================================================================

// CustomerOpts customizes customer creation
type CustomerOpts struct {
	Name     string
	Email    *string
	Phone    *string
	Address  *string
	City     *string
	Province *string
	Zip      *string
}

// WithCustomerName sets the customer name
func WithCustomerName(name string) func(*CustomerOpts) {
	return func(o *CustomerOpts) { o.Name = name }
}

// WithCustomerEmail sets the customer email
func WithCustomerEmail(email string) func(*CustomerOpts) {
	return func(o *CustomerOpts) { o.Email = strPtr(email) }
}

// WithCity sets the customer city
func WithCity(city string) func(*CustomerOpts) {
	return func(o *CustomerOpts) { o.City = strPtr(city) }
}

// CreateCustomer creates a customer with optional customizations
func (f *Factory) CreateCustomer(t *testing.T, opts ...func(*CustomerOpts)) *model.Customer {
	t.Helper()

	id := randomID()
	o := &CustomerOpts{
		Name:  fmt.Sprintf("Customer %s", id),
		Email: strPtr(fmt.Sprintf("customer_%s@test.local", id)),
		City:  strPtr("Quezon City"),
	}
	for _, fn := range opts {
		fn(o)
	}

	c := &model.Customer{
		Name:     o.Name,
		Email:    o.Email,
		Phone:    o.Phone,
		Address:  o.Address,
		City:     o.City,
		Province: o.Province,
		Zip:      o.Zip,
	}
	f.create(t, c)
	return c
}

// CreateCustomers creates n customers named "Customer 01", "Customer 02", ...
// so name order matches insertion order
func (f *Factory) CreateCustomers(t *testing.T, n int) []*model.Customer {
	t.Helper()

	out := make([]*model.Customer, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, f.CreateCustomer(t, WithCustomerName(fmt.Sprintf("Customer %02d", i))))
	}
	return out
}

// ============================================================================
// User Fixtures
// ============================================================================

// UserOpts customizes user creation
type UserOpts struct {
	Name     string
	Email    string
	Password string
	Role     model.UserRole
}

// WithUserEmail sets the user email
func WithUserEmail(email string) func(*UserOpts) {
	return func(o *UserOpts) { o.Email = email }
}

// WithUserName sets the user name
func WithUserName(name string) func(*UserOpts) {
	return func(o *UserOpts) { o.Name = name }
}

// WithRole sets the user role
func WithRole(role model.UserRole) func(*UserOpts) {
	return func(o *UserOpts) { o.Role = role }
}

// CreateUser creates a user with optional customizations
func (f *Factory) CreateUser(t *testing.T, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	id := randomID()
	o := &UserOpts{
		Name:     fmt.Sprintf("User %s", id),
		Email:    fmt.Sprintf("user_%s@test.local", id),
		Password: DefaultPassword,
		Role:     model.UserRoleUser,
	}
	for _, fn := range opts {
		fn(o)
	}

	// MinCost keeps fixture creation fast
	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}

	u := &model.User{
		Name:         o.Name,
		Email:        o.Email,
		PasswordHash: string(hash),
		Role:         o.Role,
	}
	f.create(t, u)
	return u
}

// CreateAdmin creates a user with the admin role
func (f *Factory) CreateAdmin(t *testing.T, opts ...func(*UserOpts)) *model.User {
	t.Helper()
	return f.CreateUser(t, append([]func(*UserOpts){WithRole(model.UserRoleAdmin)}, opts...)...)
}
