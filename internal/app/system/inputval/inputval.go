// Package inputval validates request input declaratively.
//
// Handlers describe their input as a struct with `validate` and `label`
// tags and call Validate; the result carries human-readable messages
// suitable for returning to the client.
//
//	type createInput struct {
//	    Title string `validate:"required,max=200" label:"Title"`
//	}
//	if result := inputval.Validate(input); result.HasErrors() {
//	    httpjson.Error(w, http.StatusBadRequest, result.First())
//	    return
//	}
//
// Supported rules: required, max=N, email, objectid. Rules other than
// required are skipped for empty values so optional fields stay optional.
package inputval

import (
	"fmt"
	"net/mail"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError describes a single failed validation.
type FieldError struct {
	Field   string
	Message string
}

// Result collects the validation errors for one input struct.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any field failed validation.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first error message, or "" if validation passed.
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All returns every error message joined with "; ".
func (r *Result) All() string {
	if len(r.Errors) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the string fields of a struct against their `validate`
// tags. Fields without a tag are ignored. At most one error is recorded
// per field (the first failing rule, in tag order).
func Validate(input any) *Result {
	result := &Result{}

	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return result
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || field.Type.Kind() != reflect.String {
			continue
		}
		label := field.Tag.Get("label")
		if label == "" {
			label = field.Name
		}
		value := strings.TrimSpace(v.Field(i).String())

		for _, rule := range strings.Split(tag, ",") {
			if msg := applyRule(strings.TrimSpace(rule), label, value); msg != "" {
				result.Errors = append(result.Errors, FieldError{Field: field.Name, Message: msg})
				break
			}
		}
	}

	return result
}

// applyRule returns an error message if value fails the rule, "" otherwise.
func applyRule(rule, label, value string) string {
	switch {
	case rule == "required":
		if value == "" {
			return label + " is required."
		}
	case strings.HasPrefix(rule, "max="):
		n, err := strconv.Atoi(strings.TrimPrefix(rule, "max="))
		if err == nil && value != "" && utf8.RuneCountInString(value) > n {
			return fmt.Sprintf("%s must be at most %d characters.", label, n)
		}
	case rule == "email":
		if value != "" && !IsValidEmail(value) {
			return "A valid email address is required."
		}
	case rule == "objectid":
		if value != "" && !IsValidObjectID(value) {
			return label + " must be a valid id."
		}
	}
	return ""
}

// IsValidEmail reports whether s is a bare RFC 5322 address.
// Display-name forms like "Name <user@example.com>" are rejected.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}

// IsValidObjectID reports whether s is a 24-character hex MongoDB ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}
