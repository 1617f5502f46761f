package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/forgo/backoffice/api/internal/database"
	"github.com/forgo/backoffice/api/internal/model"
)

// customerColumns are written on update; id and created_at never change
var customerColumns = []string{"name", "email", "phone", "address", "city", "province", "zip", "updated_at"}

// CustomerRepository handles customer data access through GORM
type CustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// List returns one page of customers matching params
func (r *CustomerRepository) List(ctx context.Context, params model.ListParams) (*model.Page[model.Customer], error) {
	params = params.Normalize(model.CustomerSortColumns)
	return paginate[model.Customer](ctx, r.db, params, model.CustomerSearchColumns)
}

// GetByID retrieves a customer by ID
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &customer, nil
}

// Create inserts a customer and fills in its ID and timestamps
func (r *CustomerRepository) Create(ctx context.Context, customer *model.Customer) error {
	customer.ID = 0
	return database.TranslateError(r.db.WithContext(ctx).Create(customer).Error)
}

// Update overwrites every editable column of the customer
func (r *CustomerRepository) Update(ctx context.Context, customer *model.Customer) error {
	res := r.db.WithContext(ctx).
		Model(customer).
		Select(customerColumns).
		Updates(customer)
	if err := checkAffected(res); err != nil {
		return err
	}
	return r.reload(ctx, customer)
}

// Delete removes a customer
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	return checkAffected(r.db.WithContext(ctx).Delete(&model.Customer{}, id))
}

// Count returns the number of stored customers
func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Customer{}).Count(&n).Error
	return n, database.TranslateError(err)
}

func (r *CustomerRepository) reload(ctx context.Context, customer *model.Customer) error {
	fresh, err := r.GetByID(ctx, customer.ID)
	if err != nil {
		return err
	}
	*customer = *fresh
	return nil
}
