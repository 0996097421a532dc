package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	var messages []string
	for _, err := range ve {
		messages = append(messages, fmt.Sprintf("%s %s", err.Field, err.Message))
	}
	return strings.Join(messages, ", ")
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
var usernamePattern = regexp.MustCompile(`^[a-z0-9_\-]+$`)

// IsValidEmail reports whether s looks like an email address
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsValidUsername reports whether s is a valid store username slug
func IsValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// ValidateStruct validates a struct using `validate` tags. Supported rules:
// required, email, min=N, max=N, gt=N, gte=N, username.
func ValidateStruct(s interface{}) error {
	var errs ValidationErrors

	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("expected struct, got %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanInterface() {
			continue
		}
		tag := fieldType.Tag.Get("validate")
		if tag == "" {
			continue
		}

		for _, rule := range strings.Split(tag, ",") {
			if err := validateField(fieldType.Name, field, strings.TrimSpace(rule)); err != nil {
				errs = append(errs, *err)
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateField(name string, field reflect.Value, rule string) *ValidationError {
	ruleName, ruleValue, _ := strings.Cut(rule, "=")

	switch ruleName {
	case "required":
		if isEmpty(field) {
			return &ValidationError{Field: name, Message: "is required"}
		}
	case "email":
		if field.Kind() == reflect.String {
			if s := field.String(); s != "" && !IsValidEmail(s) {
				return &ValidationError{Field: name, Message: "must be a valid email address"}
			}
		}
	case "username":
		if field.Kind() == reflect.String {
			if s := field.String(); s != "" && !IsValidUsername(s) {
				return &ValidationError{Field: name, Message: "must contain only lowercase letters, digits, - and _"}
			}
		}
	case "min":
		n := parseIntOrDefault(ruleValue, 0)
		if field.Kind() == reflect.String && len(field.String()) < n {
			return &ValidationError{Field: name, Message: fmt.Sprintf("must be at least %s characters", ruleValue)}
		}
		if field.Kind() == reflect.Slice && field.Len() < n {
			return &ValidationError{Field: name, Message: fmt.Sprintf("must have at least %s entries", ruleValue)}
		}
	case "max":
		n := parseIntOrDefault(ruleValue, 0)
		if field.Kind() == reflect.String && len(field.String()) > n {
			return &ValidationError{Field: name, Message: fmt.Sprintf("must be at most %s characters", ruleValue)}
		}
	case "gt":
		if isNumeric(field) && numericValue(field) <= float64(parseIntOrDefault(ruleValue, 0)) {
			return &ValidationError{Field: name, Message: fmt.Sprintf("must be greater than %s", ruleValue)}
		}
	case "gte":
		if isNumeric(field) && numericValue(field) < float64(parseIntOrDefault(ruleValue, 0)) {
			return &ValidationError{Field: name, Message: fmt.Sprintf("must be at least %s", ruleValue)}
		}
	}
	return nil
}

func isEmpty(field reflect.Value) bool {
	switch field.Kind() {
	case reflect.String:
		return strings.TrimSpace(field.String()) == ""
	case reflect.Slice, reflect.Map:
		return field.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return field.IsNil()
	default:
		return field.IsZero()
	}
}

func isNumeric(field reflect.Value) bool {
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func numericValue(field reflect.Value) float64 {
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		return field.Float()
	default:
		return float64(field.Int())
	}
}

func parseIntOrDefault(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
