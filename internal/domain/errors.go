package domain

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("review not found")

// FieldError reasons, mirroring the constraint violations the schema raises.
const (
	ReasonRequired = "required" // NOT NULL violation
	ReasonTooLong  = "too_long" // varchar length exceeded
	ReasonType     = "type"     // non-numeric value for a numeric column, etc.
)

// FieldError reports a review field that violated the schema contract.
// Field may be empty when the database does not name the offending column
// (length and type errors).
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	switch e.Reason {
	case ReasonRequired:
		return fmt.Sprintf("missing required field %q", e.Field)
	case ReasonTooLong:
		if e.Field == "" {
			return "field value exceeds maximum length"
		}
		return fmt.Sprintf("field %q exceeds maximum length", e.Field)
	case ReasonType:
		if e.Field == "" {
			return "field value has wrong type"
		}
		return fmt.Sprintf("field %q has wrong type", e.Field)
	}
	return fmt.Sprintf("invalid field %q", e.Field)
}
