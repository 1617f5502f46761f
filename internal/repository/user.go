package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/forgo/backoffice/api/internal/database"
	"github.com/forgo/backoffice/api/internal/model"
)

// UserRepository handles user data access through GORM
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// List returns one page of users matching params
func (r *UserRepository) List(ctx context.Context, params model.ListParams) (*model.Page[model.User], error) {
	params = params.Normalize(model.UserSortColumns)
	return paginate[model.User](ctx, r.db, params, model.UserSearchColumns)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email (stored lower-cased)
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &user, nil
}

// Create inserts a user. A taken email yields database.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	user.ID = 0
	if user.Role == "" {
		user.Role = model.UserRoleUser
	}
	return database.TranslateError(r.db.WithContext(ctx).Create(user).Error)
}

// Update writes name, email and password hash; role is not editable here
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	res := r.db.WithContext(ctx).
		Model(user).
		Select("name", "email", "password", "updated_at").
		Updates(user)
	if err := checkAffected(res); err != nil {
		return err
	}
	fresh, err := r.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	*user = *fresh
	return nil
}

// Delete removes a user
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return checkAffected(r.db.WithContext(ctx).Delete(&model.User{}, id))
}

// Count returns the number of stored users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, database.TranslateError(err)
}
