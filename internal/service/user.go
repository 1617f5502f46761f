package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/backoffice/api/internal/database"
	"github.com/forgo/backoffice/api/internal/model"
)

// UserRepository defines the interface for user storage
type UserRepository interface {
	List(ctx context.Context, params model.ListParams) (*model.Page[model.User], error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// UserServiceConfig holds the dependencies of UserService
type UserServiceConfig struct {
	UserRepo UserRepository
	// BcryptCost defaults to bcrypt.DefaultCost
	BcryptCost int
}

// UserService handles back-office user accounts
type UserService struct {
	repo       UserRepository
	bcryptCost int
}

// NewUserService creates a new user service
func NewUserService(cfg UserServiceConfig) *UserService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &UserService{repo: cfg.UserRepo, bcryptCost: cost}
}

// List returns one page of users
func (s *UserService) List(ctx context.Context, params model.ListParams) (*model.Page[model.User], error) {
	params = params.Normalize(model.UserSortColumns)
	page, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return page, nil
}

// Get returns a single user
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "get user")
	}
	return user, nil
}

// Create validates input, hashes the password and stores the user with
// the default role
func (s *UserService) Create(ctx context.Context, in model.UserInput) (*model.User, error) {
	in.Normalize()
	errs := in.Validate(true)

	taken, err := s.emailTaken(ctx, in.Email, errs, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, emailTakenError(errs...)
	}
	if err := newValidationError(errs); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.UserRoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, s.mapError(err, "create user")
	}

	slog.InfoContext(ctx, "user created", slog.Int64("user_id", user.ID))
	return user, nil
}

// Update changes name and email, and the password when one is given.
// An empty password keeps the stored hash.
func (s *UserService) Update(ctx context.Context, id int64, in model.UserInput) (*model.User, error) {
	in.Normalize()
	errs := in.Validate(false)

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "get user")
	}

	taken, err := s.emailTaken(ctx, in.Email, errs, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, emailTakenError(errs...)
	}
	if err := newValidationError(errs); err != nil {
		return nil, err
	}

	user.Name = in.Name
	user.Email = in.Email
	if in.Password != "" {
		hash, err := s.hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, s.mapError(err, "update user")
	}
	return user, nil
}

// Delete removes a user
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError(err, "delete user")
	}
	slog.InfoContext(ctx, "user deleted", slog.Int64("user_id", id))
	return nil
}

// emailTaken reports whether another user (not exceptID) owns email. The
// lookup is skipped when the email already failed validation.
func (s *UserService) emailTaken(ctx context.Context, email string, errs []model.FieldError, exceptID int64) (bool, error) {
	for _, fe := range errs {
		if fe.Field == "email" {
			return false, nil
		}
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return existing != nil && existing.ID != exceptID, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *UserService) mapError(err error, op string) error {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, database.ErrDuplicate):
		// Lost a race with a concurrent create of the same email
		return emailTakenError()
	}
	return fmt.Errorf("%s: %w", op, err)
}
