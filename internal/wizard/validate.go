package wizard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// All combines validators; failures are collected in declaration order.
func All(validators ...Validator) Validator {
	return func(v Values) []FieldError {
		var errs []FieldError
		for _, validate := range validators {
			errs = append(errs, validate(v)...)
		}
		return errs
	}
}

// Required fails when the field is missing, an empty string, or an empty
// list.
func Required(field, label string) Validator {
	return func(v Values) []FieldError {
		value, ok := v[field]
		if !ok {
			return missing(field, label)
		}
		switch t := value.(type) {
		case string:
			if strings.TrimSpace(t) == "" {
				return missing(field, label)
			}
		case []string:
			if len(t) == 0 {
				return missing(field, label)
			}
		case nil:
			return missing(field, label)
		}
		return nil
	}
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Email checks basic address shape; empty values pass so it composes with
// Required.
func Email(field, label string) Validator {
	return func(v Values) []FieldError {
		s := Str(v, field)
		if s == "" || emailPattern.MatchString(s) {
			return nil
		}
		return []FieldError{{Field: field, Message: fmt.Sprintf("%s must be a valid email address", label)}}
	}
}

// MinLen enforces a minimum string length; empty values pass.
func MinLen(field, label string, min int) Validator {
	return func(v Values) []FieldError {
		s := Str(v, field)
		if s == "" || len(s) >= min {
			return nil
		}
		return []FieldError{{Field: field, Message: fmt.Sprintf("%s must be at least %d characters", label, min)}}
	}
}

// OneOf restricts the field to an enumerated set; empty values pass.
func OneOf(field, label string, allowed ...string) Validator {
	return func(v Values) []FieldError {
		s := Str(v, field)
		if s == "" {
			return nil
		}
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return []FieldError{{
			Field:   field,
			Message: fmt.Sprintf("%s must be one of: %s", label, strings.Join(allowed, ", ")),
		}}
	}
}

// IntBetween parses the field as an integer within [min, max]; empty values
// pass.
func IntBetween(field, label string, min, max int) Validator {
	return func(v Values) []FieldError {
		value, ok := v[field]
		if !ok {
			return nil
		}
		n, err := toInt(value)
		if err != nil {
			return []FieldError{{Field: field, Message: fmt.Sprintf("%s must be a number", label)}}
		}
		if n < min || n > max {
			return []FieldError{{Field: field, Message: fmt.Sprintf("%s must be between %d and %d", label, min, max)}}
		}
		return nil
	}
}

// MinItems enforces a minimum number of selections for a multi-select field.
func MinItems(field, label string, min int) Validator {
	return func(v Values) []FieldError {
		if len(Items(v, field)) >= min {
			return nil
		}
		return []FieldError{{Field: field, Message: fmt.Sprintf("select at least %d %s", min, label)}}
	}
}

// Date parses the field as a YYYY-MM-DD date; empty values pass.
func Date(field, label string) Validator {
	return func(v Values) []FieldError {
		s := Str(v, field)
		if s == "" {
			return nil
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return []FieldError{{Field: field, Message: fmt.Sprintf("%s must be a date in YYYY-MM-DD form", label)}}
		}
		return nil
	}
}

// MustBeTrue fails unless the field holds true (e.g. a terms checkbox).
func MustBeTrue(field, message string) Validator {
	return func(v Values) []FieldError {
		if b, ok := v[field].(bool); ok && b {
			return nil
		}
		if s := Str(v, field); s == "yes" || s == "true" {
			return nil
		}
		return []FieldError{{Field: field, Message: message}}
	}
}

// Str reads a field as a trimmed string; non-strings read as empty.
func Str(v Values, field string) string {
	s, _ := v[field].(string)
	return strings.TrimSpace(s)
}

// Items reads a multi-select field, accepting []string, []any of strings, or
// a comma-separated string.
func Items(v Values, field string) []string {
	switch t := v[field].(type) {
	case []string:
		return t
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(t, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

// Int reads a field as an integer, accepting numeric and string forms.
func Int(v Values, field string) (int, bool) {
	value, ok := v[field]
	if !ok {
		return 0, false
	}
	n, err := toInt(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

func toInt(value any) (int, error) {
	switch t := value.(type) {
	case int:
		return t, nil
	case float64:
		return int(t), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(t))
	}
	return 0, fmt.Errorf("not a number")
}

func missing(field, label string) []FieldError {
	return []FieldError{{Field: field, Message: fmt.Sprintf("%s is required", label)}}
}
