package model

import (
	"strings"
	"time"
)

// Field length limits for customers
const (
	MaxCustomerNameLength     = 255
	MaxCustomerEmailLength    = 255
	MaxCustomerPhoneLength    = 50
	MaxCustomerAddressLength  = 255
	MaxCustomerCityLength     = 100
	MaxCustomerProvinceLength = 100
	MaxCustomerZipLength      = 20
)

// CustomerSortColumns lists the columns a customer listing may be ordered by
var CustomerSortColumns = map[string]bool{
	"id":         true,
	"name":       true,
	"email":      true,
	"phone":      true,
	"city":       true,
	"province":   true,
	"zip":        true,
	"created_at": true,
	"updated_at": true,
}

// CustomerSearchColumns are matched case-insensitively by the search parameter
var CustomerSearchColumns = []string{"name", "email", "phone", "city"}

// Customer represents a customer record
type Customer struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null;index"`
	Email     *string   `json:"email" gorm:"size:255"`
	Phone     *string   `json:"phone" gorm:"size:50"`
	Address   *string   `json:"address" gorm:"size:255"`
	City      *string   `json:"city" gorm:"size:100"`
	Province  *string   `json:"province" gorm:"size:100"`
	Zip       *string   `json:"zip" gorm:"size:20"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerInput is the allow-listed body accepted on create and update.
// Identifiers and timestamps in a request body are never read.
type CustomerInput struct {
	Name     string  `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	Province *string `json:"province"`
	Zip      *string `json:"zip"`
}

// Normalize trims whitespace and clears blank optional fields
func (r *CustomerInput) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = trimOptional(r.Email)
	r.Phone = trimOptional(r.Phone)
	r.Address = trimOptional(r.Address)
	r.City = trimOptional(r.City)
	r.Province = trimOptional(r.Province)
	r.Zip = trimOptional(r.Zip)
}

// Validate validates the customer input
func (r *CustomerInput) Validate() []FieldError {
	var errors []FieldError

	if r.Name == "" {
		errors = append(errors, FieldError{Field: "name", Message: msgRequired("name")})
	} else if tooLong(r.Name, MaxCustomerNameLength) {
		errors = append(errors, FieldError{Field: "name", Message: msgMax("name", MaxCustomerNameLength)})
	}

	if r.Email != nil {
		if !IsValidEmail(*r.Email) {
			errors = append(errors, FieldError{Field: "email", Message: msgEmail("email")})
		} else if tooLong(*r.Email, MaxCustomerEmailLength) {
			errors = append(errors, FieldError{Field: "email", Message: msgMax("email", MaxCustomerEmailLength)})
		}
	}

	errors = checkOptional(errors, "phone", r.Phone, MaxCustomerPhoneLength)
	errors = checkOptional(errors, "address", r.Address, MaxCustomerAddressLength)
	errors = checkOptional(errors, "city", r.City, MaxCustomerCityLength)
	errors = checkOptional(errors, "province", r.Province, MaxCustomerProvinceLength)
	errors = checkOptional(errors, "zip", r.Zip, MaxCustomerZipLength)

	return errors
}

// ApplyTo copies every allow-listed field onto c (full-record update)
func (r *CustomerInput) ApplyTo(c *Customer) {
	c.Name = r.Name
	c.Email = r.Email
	c.Phone = r.Phone
	c.Address = r.Address
	c.City = r.City
	c.Province = r.Province
	c.Zip = r.Zip
}
