package features

// missingFieldError signals an observation lacking a field the schema needs.
type missingFieldError struct{ field string }

func (e missingFieldError) Error() string { return "missing field: " + e.field }

// ErrMissingField constructs a missingFieldError.
func ErrMissingField(field string) error { return missingFieldError{field: field} }

// IsMissingField reports whether err indicates an absent observation field.
func IsMissingField(err error) bool {
	_, ok := err.(missingFieldError)
	return ok
}

// invalidNumberError signals a field value that does not parse as a finite float.
type invalidNumberError struct {
	field string
	value string
}

func (e invalidNumberError) Error() string {
	return "invalid number for " + e.field + ": " + e.value
}

// ErrInvalidNumber constructs an invalidNumberError.
func ErrInvalidNumber(field, value string) error {
	return invalidNumberError{field: field, value: value}
}

// IsInvalidNumber reports whether err indicates a non-numeric field value.
func IsInvalidNumber(err error) bool {
	_, ok := err.(invalidNumberError)
	return ok
}

// invalidTimestampError signals an unparseable request timestamp.
type invalidTimestampError struct{ value string }

func (e invalidTimestampError) Error() string { return "invalid timestamp: " + e.value }

// ErrInvalidTimestamp constructs an invalidTimestampError.
func ErrInvalidTimestamp(value string) error { return invalidTimestampError{value: value} }

// IsInvalidTimestamp reports whether err indicates an unparseable timestamp.
func IsInvalidTimestamp(err error) bool {
	_, ok := err.(invalidTimestampError)
	return ok
}

// schemaViolationError signals an internal consistency bug (vector length or
// transform mismatch). It is never the caller's fault and is never silently
// corrected.
type schemaViolationError struct{ msg string }

func (e schemaViolationError) Error() string { return "schema violation: " + e.msg }

// ErrSchemaViolation constructs a schemaViolationError.
func ErrSchemaViolation(msg string) error { return schemaViolationError{msg: msg} }

// IsSchemaViolation reports whether err indicates an internal schema bug.
func IsSchemaViolation(err error) bool {
	_, ok := err.(schemaViolationError)
	return ok
}
