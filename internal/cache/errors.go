package cache

import "errors"

// artifactUnavailableError signals that an artifact could not be made
// present locally: retries against the store were exhausted, the key is
// absent, or the caller's wait was cut short. Requests needing this artifact
// fail; the process and other models keep serving.
type artifactUnavailableError struct {
	modelID string
	cause   error
}

func (e artifactUnavailableError) Error() string {
	return "artifact unavailable for " + e.modelID + ": " + e.cause.Error()
}

func (e artifactUnavailableError) Unwrap() error { return e.cause }

// ErrArtifactUnavailable constructs an artifactUnavailableError.
func ErrArtifactUnavailable(modelID string, cause error) error {
	return artifactUnavailableError{modelID: modelID, cause: cause}
}

// IsArtifactUnavailable reports whether err indicates an unfetchable
// artifact, including one failure inside a joined prefetch error.
func IsArtifactUnavailable(err error) bool {
	var t artifactUnavailableError
	return errors.As(err, &t)
}
