package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

const (
	MinTitleLength         = 2
	MinDescriptionLength   = 10
	MinPublisherNameLength = 2
	MinCategoryNameLength  = 1
	MinStarRating          = 0.0
	MaxStarRating          = 5.0
)

type ValidationRule string

const (
	RuleRequired ValidationRule = "required"
	RuleType     ValidationRule = "type"
	RuleTooShort ValidationRule = "too_short"
	RuleRange    ValidationRule = "range"
)

// ValidationError is a field-level rejection. Field is the human-facing name
// used in the message, e.g. "Game title".
type ValidationError struct {
	Field    string
	Rule     ValidationRule
	Min      int
	Expected string
}

func (e *ValidationError) Error() string {
	switch e.Rule {
	case RuleRequired:
		return e.Field + " cannot be empty"
	case RuleType:
		expected := e.Expected
		if expected == "" {
			expected = "a string"
		}
		return e.Field + " must be " + expected
	case RuleTooShort:
		return fmt.Sprintf("%s must be at least %d characters", e.Field, e.Min)
	case RuleRange:
		return fmt.Sprintf("%s must be between %g and %g", e.Field, MinStarRating, MaxStarRating)
	default:
		return e.Field + " is invalid"
	}
}

// ValidateLength checks a candidate string value and returns it unchanged.
// The trimmed value is only used to measure length.
func ValidateLength(field string, value any, minLength int, allowNil bool) (any, error) {
	if p, ok := value.(*string); ok {
		if p == nil {
			value = nil
		} else {
			value = *p
		}
	}
	if value == nil {
		if allowNil {
			return nil, nil
		}
		return nil, &ValidationError{Field: field, Rule: RuleRequired}
	}

	s, ok := value.(string)
	if !ok {
		return nil, &ValidationError{Field: field, Rule: RuleType, Expected: "a string"}
	}
	if len([]rune(strings.TrimSpace(s))) < minLength {
		return nil, &ValidationError{Field: field, Rule: RuleTooShort, Min: minLength}
	}
	return s, nil
}

func ValidateGameTitle(value any) (string, error) {
	v, err := ValidateLength("Game title", value, MinTitleLength, false)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// ValidateGameDescription permits nil; callers decide whether an absent
// description can be stored.
func ValidateGameDescription(value any) (*string, error) {
	return validateOptionalString("Description", value, MinDescriptionLength)
}

func ValidatePublisherName(value any) (string, error) {
	v, err := ValidateLength("Publisher name", value, MinPublisherNameLength, false)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func ValidatePublisherDescription(value any) (*string, error) {
	return validateOptionalString("Description", value, MinDescriptionLength)
}

func ValidateCategoryName(value any) (string, error) {
	v, err := ValidateLength("Category name", value, MinCategoryNameLength, false)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func validateOptionalString(field string, value any, minLength int) (*string, error) {
	v, err := ValidateLength(field, value, minLength, true)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	s := v.(string)
	return &s, nil
}

// ValidateStarRating accepts null or a number in [0, 5].
func ValidateStarRating(value any) (*float64, error) {
	if value == nil {
		return nil, nil
	}
	f, ok := toFloat(value)
	if !ok {
		return nil, &ValidationError{Field: "starRating", Rule: RuleType, Expected: "a number"}
	}
	if math.IsNaN(f) || f < MinStarRating || f > MaxStarRating {
		return nil, &ValidationError{Field: "starRating", Rule: RuleRange}
	}
	return &f, nil
}

// ParseReferenceID accepts an integral JSON number used as a foreign key.
func ParseReferenceID(field string, value any) (int64, error) {
	if value == nil {
		return 0, &ValidationError{Field: field, Rule: RuleRequired}
	}
	typeErr := &ValidationError{Field: field, Rule: RuleType, Expected: "an integer"}
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case json.Number:
		if id, err := v.Int64(); err == nil {
			return id, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, typeErr
		}
		id, ok := integralID(f)
		if !ok {
			return 0, typeErr
		}
		return id, nil
	case float64:
		id, ok := integralID(v)
		if !ok {
			return 0, typeErr
		}
		return id, nil
	default:
		return 0, typeErr
	}
}

// integralID converts a whole number that fits in int64. 2^63 itself is
// excluded because it is the first float64 above MaxInt64.
func integralID(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
