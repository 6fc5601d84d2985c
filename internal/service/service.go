// Package service orchestrates a prediction request end to end: schema
// lookup, feature build, handle resolution (with lazy artifact fetch on cold
// start), inference, and result wrapping. It is the only layer that maps
// lower-level typed errors into caller-visible categories.
package service

import (
	"context"
	"math"

	"powerd/internal/features"
	"powerd/internal/registry"
	"powerd/internal/schema"
	"powerd/pkg/types"
)

// defaultUnits labels predictions; the models are trained on kilowatts of
// household active power.
const defaultUnits = "kW"

// Config encapsulates Service collaborators and settings.
type Config struct {
	Schemas      *schema.Registry
	Models       *registry.Registry
	DefaultModel string
	CacheDir     string
	Units        string
}

// Service serves predictions. Safe for concurrent use.
type Service struct {
	schemas      *schema.Registry
	models       *registry.Registry
	defaultModel string
	cacheDir     string
	units        string
}

// NewWithConfig constructs a Service, applying defaults.
func NewWithConfig(cfg Config) *Service {
	s := &Service{
		schemas:      cfg.Schemas,
		models:       cfg.Models,
		defaultModel: cfg.DefaultModel,
		cacheDir:     cfg.CacheDir,
		units:        cfg.Units,
	}
	if s.units == "" {
		s.units = defaultUnits
	}
	return s
}

// Predict resolves the model, rebuilds its feature representation from the
// raw request, and scores it. Given fixed inputs the result is
// deterministic. Schema lookup runs before anything touches the artifact
// cache, so an unknown model id never triggers a fetch.
func (s *Service) Predict(ctx context.Context, req types.PredictRequest) (types.PredictResponse, error) {
	modelID := req.Model
	if modelID == "" {
		modelID = s.defaultModel
		if modelID == "" {
			return types.PredictResponse{}, classify(schema.ErrUnknownModel("(unspecified)"))
		}
	}
	sch, err := s.schemas.SchemaFor(modelID)
	if err != nil {
		return types.PredictResponse{}, classify(err)
	}
	ts, err := features.ParseTimestamp(req.Timestamp)
	if err != nil {
		return types.PredictResponse{}, classify(err)
	}
	vec, err := features.Build(features.Observation{Fields: req.Fields, Timestamp: ts}, sch)
	if err != nil {
		return types.PredictResponse{}, classify(err)
	}
	h, err := s.models.Get(ctx, modelID)
	if err != nil {
		return types.PredictResponse{}, classify(err)
	}
	// The builder used the schema bound to this handle; anything else is a
	// contract violation, re-checked by the predictor's own length guard.
	val, err := h.Predictor.Predict(vec)
	if err != nil {
		return types.PredictResponse{}, classify(err)
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return types.PredictResponse{}, classify(features.ErrSchemaViolation("model produced a non-finite prediction"))
	}
	return types.PredictResponse{Model: modelID, Prediction: val, Units: s.units}, nil
}

// Reload forces re-fetch and re-deserialization of modelID.
func (s *Service) Reload(ctx context.Context, modelID string) error {
	if err := s.models.Reload(ctx, modelID); err != nil {
		return classify(err)
	}
	return nil
}

// ListModels returns the registered models.
func (s *Service) ListModels() []types.Model { return s.models.ListModels() }

// Status returns the serving-state projection for the status endpoint.
func (s *Service) Status() types.StatusResponse {
	return types.StatusResponse{
		Models:       s.models.Status(),
		CacheDir:     s.cacheDir,
		DefaultModel: s.defaultModel,
	}
}

// Ready reports whether at least one model is loaded and servable.
func (s *Service) Ready() bool { return s.models.Ready() }
