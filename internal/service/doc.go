// Package service implements the business rules for customers and users.
//
// Services normalize and validate input, enforce email uniqueness for
// users, hash passwords with bcrypt and translate repository errors into
// the sentinels declared in errors.go. Each service declares the
// repository interface it needs, so tests use func-field mocks and the
// server can swap GORM and SurrealDB implementations.
//
// # Error Handling
//
// Validation failures are returned as *ValidationError, which carries
// one FieldError per offending field and unwraps to ErrValidation. Not
// found conditions surface as ErrCustomerNotFound or ErrUserNotFound.
//
// # Example Usage
//
//	svc := service.NewUserService(service.UserServiceConfig{
//	    UserRepo:   repository.NewUserRepository(db),
//	    BcryptCost: bcrypt.DefaultCost,
//	})
//	user, err := svc.Create(ctx, model.UserInput{Name: "Ana", Email: "ana@example.com", Password: "secret123"})
package service
