package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/forgo/backoffice/api/internal/model"
	"github.com/forgo/backoffice/api/pkg/datatable"
)

// field is one editable attribute exposed as a command-line flag
type field struct {
	name  string
	usage string
}

// entity binds a collection endpoint to its columns and form schema
type entity[T any] struct {
	name         string
	endpoint     string
	columns      []datatable.Column[T]
	fields       []field
	schema       *datatable.Schema
	updateSchema *datatable.Schema
	values       func(rec T) map[string]string
	id           func(rec T) int64
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

var customerEntity = entity[model.Customer]{
	name:     "customer",
	endpoint: "/customers",
	columns: []datatable.Column[model.Customer]{
		{Key: "id", Title: "ID", Sortable: true, Value: func(c model.Customer) string { return formatID(c.ID) }},
		{Key: "name", Title: "Name", Sortable: true, Value: func(c model.Customer) string { return c.Name }},
		{Key: "email", Title: "Email", Sortable: true, Value: func(c model.Customer) string { return optional(c.Email) }},
		{Key: "phone", Title: "Phone", Sortable: true, Value: func(c model.Customer) string { return optional(c.Phone) }},
		{Key: "city", Title: "City", Sortable: true, Value: func(c model.Customer) string { return optional(c.City) }},
		{Key: "province", Title: "Province", Sortable: true, Value: func(c model.Customer) string { return optional(c.Province) }},
		{Key: "zip", Title: "Zip", Sortable: true, Value: func(c model.Customer) string { return optional(c.Zip) }},
	},
	fields: []field{
		{"name", "customer name"},
		{"email", "email address"},
		{"phone", "phone number"},
		{"address", "street address"},
		{"city", "city"},
		{"province", "province"},
		{"zip", "postal code"},
	},
	schema: datatable.NewSchema().
		Field("name", datatable.Required("Name is required"), datatable.MaxLength(model.MaxCustomerNameLength, "Name is too long")).
		Field("email", datatable.Optional(datatable.Email("Invalid email address"))).
		Field("phone", datatable.MaxLength(model.MaxCustomerPhoneLength, "Phone is too long")).
		Field("zip", datatable.MaxLength(model.MaxCustomerZipLength, "Zip is too long")),
	values: func(c model.Customer) map[string]string {
		return map[string]string{
			"name":     c.Name,
			"email":    optional(c.Email),
			"phone":    optional(c.Phone),
			"address":  optional(c.Address),
			"city":     optional(c.City),
			"province": optional(c.Province),
			"zip":      optional(c.Zip),
		}
	},
	id: func(c model.Customer) int64 { return c.ID },
}

var userEntity = entity[model.User]{
	name:     "user",
	endpoint: "/users",
	columns: []datatable.Column[model.User]{
		{Key: "id", Title: "ID", Sortable: true, Value: func(u model.User) string { return formatID(u.ID) }},
		{Key: "name", Title: "Name", Sortable: true, Value: func(u model.User) string { return u.Name }},
		{Key: "email", Title: "Email", Sortable: true, Value: func(u model.User) string { return u.Email }},
		{Key: "role", Title: "Role", Sortable: true, Value: func(u model.User) string { return string(u.Role) }},
	},
	fields: []field{
		{"name", "user name"},
		{"email", "email address"},
		{"password", "password (leave unset on update to keep the current one)"},
	},
	schema: datatable.NewSchema().
		Field("name", datatable.Required("Name is required")).
		Field("email", datatable.Email("Invalid email address")).
		Field("password", datatable.MinLength(model.MinPasswordLength, "Password must be at least 8 characters long")),
	updateSchema: datatable.NewSchema().
		Field("name", datatable.Required("Name is required")).
		Field("email", datatable.Email("Invalid email address")).
		Field("password", datatable.Optional(datatable.MinLength(model.MinPasswordLength, "Password must be at least 8 characters long"))),
	values: func(u model.User) map[string]string {
		return map[string]string{"name": u.Name, "email": u.Email}
	},
	id: func(u model.User) int64 { return u.ID },
}

// command runs one subcommand against an entity
type command func(ctx context.Context, app *app, args []string) error

// commands returns the subcommands of e
func commands[T any](e entity[T]) map[string]command {
	return map[string]command{
		"list":   func(ctx context.Context, a *app, args []string) error { return runList(ctx, a, e, args) },
		"get":    func(ctx context.Context, a *app, args []string) error { return runGet(ctx, a, e, args) },
		"create": func(ctx context.Context, a *app, args []string) error { return runCreate(ctx, a, e, args) },
		"update": func(ctx context.Context, a *app, args []string) error { return runUpdate(ctx, a, e, args) },
		"delete": func(ctx context.Context, a *app, args []string) error { return runDelete(ctx, a, e, args) },
	}
}

// fieldFlags registers one string flag per field and returns a function
// collecting the flags that were set
func fieldFlags(fs *flag.FlagSet, fields []field) func() map[string]string {
	ptrs := make(map[string]*string, len(fields))
	for _, f := range fields {
		ptrs[f.name] = fs.String(f.name, "", f.usage)
	}
	return func() map[string]string {
		out := make(map[string]string)
		fs.Visit(func(fl *flag.Flag) {
			if p, ok := ptrs[fl.Name]; ok {
				out[fl.Name] = *p
			}
		})
		return out
	}
}

func parseID(args []string) (int64, []string, error) {
	if len(args) == 0 {
		return 0, nil, fmt.Errorf("missing record id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, nil, fmt.Errorf("invalid record id %q", args[0])
	}
	return id, args[1:], nil
}
