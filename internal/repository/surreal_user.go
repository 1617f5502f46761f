package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/backoffice/api/internal/database"
	"github.com/forgo/backoffice/api/internal/model"
)

// SurrealUserRepository handles user data access on SurrealDB
type SurrealUserRepository struct {
	db database.Database
}

// NewSurrealUserRepository creates a new SurrealDB user repository
func NewSurrealUserRepository(db database.Database) *SurrealUserRepository {
	return &SurrealUserRepository{db: db}
}

const userSearchFilter = `
	$search = ''
	OR string::lowercase(name ?? '') CONTAINS $search
	OR string::lowercase(email ?? '') CONTAINS $search`

// List returns one page of users matching params
func (r *SurrealUserRepository) List(ctx context.Context, params model.ListParams) (*model.Page[model.User], error) {
	params = params.Normalize(model.UserSortColumns)

	query := fmt.Sprintf(`
		SELECT * FROM user WHERE %[1]s
		ORDER BY %[2]s %[3]s, num ASC
		LIMIT $limit START $offset;
		SELECT count() AS total FROM user WHERE %[1]s GROUP ALL;
	`, userSearchFilter, surrealOrder(params.Sort), strings.ToUpper(params.Order))

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
	items := make([]model.User, 0, len(rows))
	for _, row := range rows {
		u, err := parseUser(row)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}

	return &model.Page[model.User]{
		Items:    items,
		Total:    extractCount(statementResult(results, 1)),
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}

// GetByID retrieves a user by ID
func (r *SurrealUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT * FROM type::thing('user', $num)`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"num": id})
	if err != nil {
		return nil, err
	}
	return parseUser(result)
}

// GetByEmail retrieves a user by email
func (r *SurrealUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT * FROM user WHERE email = $email LIMIT 1`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"email": strings.ToLower(email)})
	if err != nil {
		return nil, err
	}
	return parseUser(result)
}

// Create allocates the next ID and inserts the user atomically. The unique
// email index rejects duplicates with database.ErrDuplicate.
func (r *SurrealUserRepository) Create(ctx context.Context, user *model.User) error {
	role := user.Role
	if role == "" {
		role = model.UserRoleUser
	}

	tb := database.NewTxBuilder()
	tb.AddRaw(database.NextIDStatement("user"))
	tb.Add(`
		CREATE type::thing('user', $num) CONTENT {
			num: $num,
			name: $name,
			email: $email,
			password: $password,
			role: $role,
			created_at: time::now(),
			updated_at: time::now()
		}
	`, map[string]interface{}{
		"name":     user.Name,
		"email":    user.Email,
		"password": user.PasswordHash,
		"role":     string(role),
	})

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
	parsed, err := parseUser(created)
	if err != nil {
		return err
	}
	*user = *parsed
	return nil
}

// Update writes name, email and password hash
func (r *SurrealUserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE type::thing('user', $id) SET
			name = $name,
			email = $email,
			password = $password,
			updated_at = time::now()
		RETURN AFTER
	`
	vars := map[string]interface{}{
		"id":       user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"password": user.PasswordHash,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return err
	}
	parsed, err := parseUser(result)
	if err != nil {
		return err
	}
	*user = *parsed
	return nil
}

// Delete removes a user
func (r *SurrealUserRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE type::thing('user', $num) RETURN BEFORE`
	_, err := r.db.QueryOne(ctx, query, map[string]interface{}{"num": id})
	return err
}

// Count returns the number of stored users
func (r *SurrealUserRepository) Count(ctx context.Context) (int64, error) {
	results, err := r.db.Query(ctx, `SELECT count() AS total FROM user GROUP ALL`, nil)
	if err != nil {
		return 0, err
	}
	return extractCount(statementResult(results, 0)), nil
}

func parseUser(result interface{}) (*model.User, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}
	data, ok := recordMap(result)
	if !ok {
		return nil, errors.New("unexpected user record format")
	}
	role := model.UserRole(getString(data, "role"))
	if !role.IsValid() {
		role = model.UserRoleUser
	}
	return &model.User{
		ID:           getInt64(data, "num"),
		Name:         getString(data, "name"),
		Email:        getString(data, "email"),
		PasswordHash: getString(data, "password"),
		Role:         role,
		CreatedAt:    parseTime(data["created_at"]),
		UpdatedAt:    parseTime(data["updated_at"]),
	}, nil
}
