package validator

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// emailRegex covers the practical shape of an address without attempting
	// full RFC 5322 conformance; the backend performs authoritative checks.
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	digitsRegex = regexp.MustCompile(`^[0-9]+$`)
)

// RequiredString validates that a string is not empty after trimming whitespace.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:   field,
			Message: "field is required",
		},
	}
}

func MinLenString(field, value string, min int) Rule {
	return Rule{
		Check: func() bool {
			return len(value) >= min
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at least %d characters long", min),
		},
	}
}

func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return len(value) <= max
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters long", max),
		},
	}
}

func LenString(field, value string, exact int) Rule {
	return Rule{
		Check: func() bool {
			return len(value) == exact
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be exactly %d characters long", exact),
		},
	}
}

// ValidEmail validates the practical shape of an email address.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return emailRegex.MatchString(value)
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a valid email address",
		},
	}
}

// DigitsOnly validates that a string consists solely of ASCII digits.
func DigitsOnly(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return digitsRegex.MatchString(value)
		},
		Error: ValidationError{
			Field:   field,
			Message: "must contain only digits",
		},
	}
}

// EqualStrings validates that two values match, e.g. password confirmation.
func EqualStrings(field, value, other string) Rule {
	return Rule{
		Check: func() bool {
			return value == other
		},
		Error: ValidationError{
			Field:   field,
			Message: "values do not match",
		},
	}
}
