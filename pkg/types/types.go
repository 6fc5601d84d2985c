package types

// PredictRequest represents a prediction request payload.
type PredictRequest struct {
	// Optional model identifier. If empty, the server default is used.
	// example: xgb
	Model string `json:"model,omitempty" example:"xgb"`
	// Raw sensor readings keyed by field name, as submitted (string form).
	// example: {"Voltage": "240.0", "Global_intensity": "1.2"}
	Fields map[string]string `json:"fields"`
	// Observation timestamp, RFC 3339 or datetime-local form.
	// example: 2008-12-16T17:25:00
	Timestamp string `json:"timestamp" example:"2008-12-16T17:25:00"`
}

// PredictResponse is the result of a successful prediction.
type PredictResponse struct {
	// ID of the model that produced the prediction.
	// example: xgb
	Model string `json:"model" example:"xgb"`
	// Predicted active power draw.
	// example: 4.2163
	Prediction float64 `json:"prediction" example:"4.2163"`
	// Units of the predicted value.
	// example: kW
	Units string `json:"units" example:"kW"`
}

// Model describes a registered model as returned by GET /models.
type Model struct {
	// Model identifier used in predict requests.
	// example: xgb
	ID string `json:"id" example:"xgb"`
	// Model kind (xgboost, lightgbm, random_forest).
	// example: xgboost
	Kind string `json:"kind" example:"xgboost"`
	// Remote storage key of the model artifact.
	// example: models/xgb_model.bin
	StorageKey string `json:"storage_key" example:"models/xgb_model.bin"`
	// Number of features in the model's schema.
	// example: 10
	Features int `json:"features" example:"10"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of registered models.
	Models []Model `json:"models"`
}

// ModelStatus summarizes a model's serving state for GET /status.
type ModelStatus struct {
	// ID of the model.
	// example: xgb
	ModelID string `json:"model_id" example:"xgb"`
	// Lifecycle state (unloaded, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Last time this model served a request (unix seconds, 0 if never).
	// example: 1700000000
	LastUsed int64 `json:"last_used_unix,omitempty" example:"1700000000"`
	// Time the current handle was loaded (unix seconds, 0 if unloaded).
	// example: 1700000000
	LoadedAt int64 `json:"loaded_at_unix,omitempty" example:"1700000000"`
	// Last load/reload error, if any.
	Error string `json:"error,omitempty"`
}

// StatusResponse is the payload of GET /status.
type StatusResponse struct {
	// Per-model serving state.
	Models []ModelStatus `json:"models"`
	// Local directory holding cached artifacts.
	// example: /var/lib/powerd/artifacts
	CacheDir string `json:"cache_dir" example:"/var/lib/powerd/artifacts"`
	// Default model used when a request omits the model id.
	// example: xgb
	DefaultModel string `json:"default_model,omitempty" example:"xgb"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: missing field: Voltage
	Error string `json:"error" example:"missing field: Voltage"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
