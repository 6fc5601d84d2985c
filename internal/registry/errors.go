package registry

import "fmt"

// partialRegistrationError signals a model configured with a schema but no
// artifact reference, or the reverse. Always a startup failure.
type partialRegistrationError struct {
	id  string
	msg string
}

func (e partialRegistrationError) Error() string {
	return "model " + e.id + ": " + e.msg
}

// ErrPartialRegistration constructs a partialRegistrationError.
func ErrPartialRegistration(id, msg string) error {
	return partialRegistrationError{id: id, msg: msg}
}

// IsPartialRegistration reports whether err indicates incomplete model registration.
func IsPartialRegistration(err error) bool {
	_, ok := err.(partialRegistrationError)
	return ok
}

// schemaMismatchError signals a loaded artifact whose trained feature count
// disagrees with the configured schema. Serving such a handle would produce
// silently wrong predictions, so the load is refused instead.
type schemaMismatchError struct {
	id         string
	schemaLen  int
	modelCount int
}

func (e schemaMismatchError) Error() string {
	return fmt.Sprintf("model %s: schema has %d features but artifact was trained on %d", e.id, e.schemaLen, e.modelCount)
}

// ErrSchemaMismatch constructs a schemaMismatchError.
func ErrSchemaMismatch(id string, schemaLen, modelCount int) error {
	return schemaMismatchError{id: id, schemaLen: schemaLen, modelCount: modelCount}
}

// IsSchemaMismatch reports whether err indicates schema/artifact disagreement.
func IsSchemaMismatch(err error) bool {
	_, ok := err.(schemaMismatchError)
	return ok
}
