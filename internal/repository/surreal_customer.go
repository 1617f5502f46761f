package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/backoffice/api/internal/database"
	"github.com/forgo/backoffice/api/internal/model"
)

// SurrealCustomerRepository handles customer data access on SurrealDB
type SurrealCustomerRepository struct {
	db database.Database
}

// NewSurrealCustomerRepository creates a new SurrealDB customer repository
func NewSurrealCustomerRepository(db database.Database) *SurrealCustomerRepository {
	return &SurrealCustomerRepository{db: db}
}

const customerSearchFilter = `
	$search = ''
	OR string::lowercase(name ?? '') CONTAINS $search
	OR string::lowercase(email ?? '') CONTAINS $search
	OR string::lowercase(phone ?? '') CONTAINS $search
	OR string::lowercase(city ?? '') CONTAINS $search`

// List returns one page of customers matching params
func (r *SurrealCustomerRepository) List(ctx context.Context, params model.ListParams) (*model.Page[model.Customer], error) {
	params = params.Normalize(model.CustomerSortColumns)

	// ORDER BY cannot be bound; the sort column is allow-listed by Normalize
	query := fmt.Sprintf(`
		SELECT * FROM customer WHERE %[1]s
		ORDER BY %[2]s %[3]s, num ASC
		LIMIT $limit START $offset;
		SELECT count() AS total FROM customer WHERE %[1]s GROUP ALL;
	`, customerSearchFilter, surrealOrder(params.Sort), strings.ToUpper(params.Order))

	vars := map[string]interface{}{
		"search": strings.ToLower(params.Search),
		"limit":  params.PageSize,
		"offset": params.Offset(),
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	rows := statementResult(results, 0)
	items := make([]model.Customer, 0, len(rows))
	for _, row := range rows {
		c, err := parseCustomer(row)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}

	return &model.Page[model.Customer]{
		Items:    items,
		Total:    extractCount(statementResult(results, 1)),
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}

// GetByID retrieves a customer by ID
func (r *SurrealCustomerRepository) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	query := `SELECT * FROM type::thing('customer', $num)`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"num": id})
	if err != nil {
		return nil, err
	}
	return parseCustomer(result)
}

// Create allocates the next ID and inserts the customer atomically
func (r *SurrealCustomerRepository) Create(ctx context.Context, customer *model.Customer) error {
	tb := database.NewTxBuilder()
	tb.AddRaw(database.NextIDStatement("customer"))
	tb.Add(`
		CREATE type::thing('customer', $num) CONTENT {
			num: $num,
			name: $name,
			email: $email,
			phone: $phone,
			address: $address,
			city: $city,
			province: $province,
			zip: $zip,
			created_at: time::now(),
			updated_at: time::now()
		}
	`, customerVars(customer))

	results, err := database.ExecuteTransaction(ctx, r.db, tb)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		return database.ErrNotFound
	}
	created, err := database.FirstRecord(results[len(results)-1:])
	if err != nil {
		return err
	}
	parsed, err := parseCustomer(created)
	if err != nil {
		return err
	}
	*customer = *parsed
	return nil
}

// Update overwrites every editable field of the customer
func (r *SurrealCustomerRepository) Update(ctx context.Context, customer *model.Customer) error {
	query := `
		UPDATE type::thing('customer', $id) SET
			name = $name,
			email = $email,
			phone = $phone,
			address = $address,
			city = $city,
			province = $province,
			zip = $zip,
			updated_at = time::now()
		RETURN AFTER
	`
	vars := customerVars(customer)
	vars["id"] = customer.ID

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return err
	}
	parsed, err := parseCustomer(result)
	if err != nil {
		return err
	}
	*customer = *parsed
	return nil
}

// Delete removes a customer
func (r *SurrealCustomerRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE type::thing('customer', $num) RETURN BEFORE`
	_, err := r.db.QueryOne(ctx, query, map[string]interface{}{"num": id})
	return err
}

// Count returns the number of stored customers
func (r *SurrealCustomerRepository) Count(ctx context.Context) (int64, error) {
	results, err := r.db.Query(ctx, `SELECT count() AS total FROM customer GROUP ALL`, nil)
	if err != nil {
		return 0, err
	}
	return extractCount(statementResult(results, 0)), nil
}

func customerVars(c *model.Customer) map[string]interface{} {
	return map[string]interface{}{
		"name":     c.Name,
		"email":    noneIfNil(c.Email),
		"phone":    noneIfNil(c.Phone),
		"address":  noneIfNil(c.Address),
		"city":     noneIfNil(c.City),
		"province": noneIfNil(c.Province),
		"zip":      noneIfNil(c.Zip),
	}
}

func parseCustomer(result interface{}) (*model.Customer, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}
	data, ok := recordMap(result)
	if !ok {
		return nil, errors.New("unexpected customer record format")
	}
	return &model.Customer{
		ID:        getInt64(data, "num"),
		Name:      getString(data, "name"),
		Email:     getStringPtr(data, "email"),
		Phone:     getStringPtr(data, "phone"),
		Address:   getStringPtr(data, "address"),
		City:      getStringPtr(data, "city"),
		Province:  getStringPtr(data, "province"),
		Zip:       getStringPtr(data, "zip"),
		CreatedAt: parseTime(data["created_at"]),
		UpdatedAt: parseTime(data["updated_at"]),
	}, nil
}
