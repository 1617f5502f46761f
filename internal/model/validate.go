package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Laravel-style validation messages; admin forms display them verbatim.
func msgRequired(field string) string {
	return fmt.Sprintf("The %s field is required.", field)
}

func msgEmail(field string) string {
	return fmt.Sprintf("The %s field must be a valid email address.", field)
}

func msgMax(field string, n int) string {
	return fmt.Sprintf("The %s field must not be greater than %d characters.", field, n)
}

func msgMin(field string, n int) string {
	return fmt.Sprintf("The %s field must be at least %d characters.", field, n)
}

// MsgEmailTaken is reported on the email field when another record owns it.
const MsgEmailTaken = "The email has already been taken."

// IsValidEmail performs a basic structural email check.
func IsValidEmail(email string) bool {
	if email == "" {
		return false
	}
	if len(email) > 254 {
		return false
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	atIndex := strings.Index(email, "@")
	if atIndex < 1 || strings.Count(email, "@") != 1 {
		return false
	}
	dotIndex := strings.LastIndex(email, ".")
	if dotIndex < atIndex+2 {
		return false
	}
	if dotIndex >= len(email)-1 {
		return false
	}
	return true
}

// trimOptional trims an optional string; blank values become nil.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func tooLong(s string, n int) bool {
	return utf8.RuneCountInString(s) > n
}

func checkOptional(errs []FieldError, field string, value *string, limit int) []FieldError {
	if value != nil && tooLong(*value, limit) {
		errs = append(errs, FieldError{Field: field, Message: msgMax(field, limit)})
	}
	return errs
}
