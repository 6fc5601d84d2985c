// Package model loads serialized regression artifacts and exposes them
// behind one capability: an ordered feature vector in, a scalar out. Each
// model kind gets one adapter; nothing above this boundary knows kinds.
package model

import "fmt"

// Kind identifies a supported artifact format.
type Kind string

const (
	KindXGBoost      Kind = "xgboost"
	KindLightGBM     Kind = "lightgbm"
	KindRandomForest Kind = "random_forest"
)

// Predictor is the single dispatch capability over heterogeneous models.
type Predictor interface {
	// Predict scores one ordered feature vector.
	Predict(features []float64) (float64, error)
	// NumFeatures returns the trained feature count, or 0 if the artifact
	// format does not record it.
	NumFeatures() int
}

// Load deserializes the artifact at path into a ready-to-infer Predictor.
// Adding a model kind means adding one adapter and one case here.
func Load(kind Kind, path string) (Predictor, error) {
	switch kind {
	case KindXGBoost:
		return loadXGBoost(path)
	case KindLightGBM:
		return loadLightGBM(path)
	case KindRandomForest:
		return loadForest(path)
	default:
		return nil, fmt.Errorf("unsupported model kind: %q", kind)
	}
}

// vectorLengthError reports a feature vector whose length does not match the
// model. The feature builder asserts length against the schema before this
// point, so hitting it indicates an internal consistency bug.
type vectorLengthError struct {
	want, got int
}

func (e vectorLengthError) Error() string {
	return fmt.Sprintf("feature vector length %d does not match model (%d)", e.got, e.want)
}

// IsVectorLength reports whether err indicates a vector/model length mismatch.
func IsVectorLength(err error) bool {
	_, ok := err.(vectorLengthError)
	return ok
}
