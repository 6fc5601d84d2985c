package schema

// unknownModelError indicates a model id with no registered schema.
type unknownModelError struct{ id string }

func (e unknownModelError) Error() string { return "unknown model: " + e.id }

// ErrUnknownModel constructs the error returned for unregistered model ids.
func ErrUnknownModel(id string) error { return unknownModelError{id: id} }

// IsUnknownModel reports whether err indicates an unregistered model id.
func IsUnknownModel(err error) bool {
	_, ok := err.(unknownModelError)
	return ok
}
