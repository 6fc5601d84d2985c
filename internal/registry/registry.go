// Package registry owns the in-memory model handles: lazy load on first use
// (ensure artifact, deserialize, cache), cached dispatch afterwards, and
// reload with an atomic handle swap so in-flight predictions never observe a
// partially-built model.
package registry

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"powerd/internal/cache"
	"powerd/internal/model"
	"powerd/internal/schema"
	"powerd/pkg/types"
)

// State represents lifecycle state of a model entry.
type State string

const (
	StateUnloaded State = "unloaded"
	StateReady    State = "ready"
	StateError    State = "error"
)

// Handle is a ready-to-infer model bound to the schema it was trained on.
// Handles are immutable once published; reload publishes a new one.
type Handle struct {
	ModelID      string
	Kind         model.Kind
	Schema       *schema.Schema
	Predictor    model.Predictor
	ArtifactPath string
	LoadedAt     time.Time
}

// Spec binds a model id to its artifact: kind plus storage reference.
type Spec struct {
	Kind model.Kind
	Ref  cache.Ref
}

// Config encapsulates all collaborators for Registry construction.
type Config struct {
	Schemas   *schema.Registry
	Cache     *cache.Cache
	Specs     map[string]Spec
	Publisher EventPublisher
}

// entry holds per-model state. mu serializes load/reload; the handle pointer
// is read lock-free on the predict path.
type entry struct {
	mu       sync.Mutex
	handle   atomic.Pointer[Handle]
	lastUsed atomic.Int64
	loadErr  atomic.Pointer[string]
}

// Registry dispatches model ids to loaded handles. Safe for concurrent use.
type Registry struct {
	schemas   *schema.Registry
	cache     *cache.Cache
	specs     map[string]Spec
	entries   map[string]*entry
	publisher EventPublisher
}

// NewWithConfig constructs a Registry, checking that schemas and artifact
// specs cover exactly the same model ids. A model with a schema but no
// artifact reference (or vice versa) is a configuration error surfaced here,
// at startup, never per-request.
func NewWithConfig(cfg Config) (*Registry, error) {
	for _, id := range cfg.Schemas.ModelIDs() {
		if _, ok := cfg.Specs[id]; !ok {
			return nil, ErrPartialRegistration(id, "schema registered without artifact spec")
		}
	}
	for id := range cfg.Specs {
		if _, err := cfg.Schemas.SchemaFor(id); err != nil {
			return nil, ErrPartialRegistration(id, "artifact spec registered without schema")
		}
	}
	r := &Registry{
		schemas:   cfg.Schemas,
		cache:     cfg.Cache,
		specs:     cfg.Specs,
		entries:   make(map[string]*entry, len(cfg.Specs)),
		publisher: cfg.Publisher,
	}
	if r.publisher == nil {
		r.publisher = noopPublisher{}
	}
	for id := range cfg.Specs {
		r.entries[id] = &entry{}
	}
	return r, nil
}

// Get returns the handle for modelID, loading it on first use. Subsequent
// calls return the cached handle without re-deserialization.
func (r *Registry) Get(ctx context.Context, modelID string) (*Handle, error) {
	e, ok := r.entries[modelID]
	if !ok {
		return nil, schema.ErrUnknownModel(modelID)
	}
	if h := e.handle.Load(); h != nil {
		e.lastUsed.Store(time.Now().Unix())
		return h, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// Another caller may have finished loading while we waited.
	if h := e.handle.Load(); h != nil {
		e.lastUsed.Store(time.Now().Unix())
		return h, nil
	}
	h, err := r.load(ctx, modelID, e)
	if err != nil {
		return nil, err
	}
	e.lastUsed.Store(time.Now().Unix())
	return h, nil
}

// Reload forces re-fetch and re-deserialization of modelID, then swaps the
// handle atomically. In-flight predictions keep whatever handle they already
// hold; on failure the previous handle stays live.
func (r *Registry) Reload(ctx context.Context, modelID string) error {
	e, ok := r.entries[modelID]
	if !ok {
		return schema.ErrUnknownModel(modelID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := r.cache.Invalidate(r.specs[modelID].Ref); err != nil {
		return err
	}
	log.Printf("registry event=reload model=%q", modelID)
	r.publisher.Publish(Event{Name: "reload", ModelID: modelID, Fields: map[string]any{}})
	_, err := r.load(ctx, modelID, e)
	return err
}

// load must be called with e.mu held. It ensures the artifact, deserializes
// it, verifies feature-count consistency against the schema, and publishes
// the handle.
func (r *Registry) load(ctx context.Context, modelID string, e *entry) (*Handle, error) {
	startTs := time.Now()
	spec := r.specs[modelID]
	sch, err := r.schemas.SchemaFor(modelID)
	if err != nil {
		return nil, err
	}
	log.Printf("registry event=load_start model=%q key=%q", modelID, spec.Ref.Key)
	r.publisher.Publish(Event{Name: "load_start", ModelID: modelID, Fields: map[string]any{"key": spec.Ref.Key}})

	path, err := r.cache.Ensure(ctx, spec.Ref)
	if err != nil {
		r.recordError(e, modelID, err)
		return nil, err
	}
	pred, err := model.Load(spec.Kind, path)
	if err != nil {
		r.recordError(e, modelID, err)
		return nil, err
	}
	if n := pred.NumFeatures(); n > 0 && n != sch.Len() {
		err := ErrSchemaMismatch(modelID, sch.Len(), n)
		r.recordError(e, modelID, err)
		return nil, err
	}

	h := &Handle{
		ModelID:      modelID,
		Kind:         spec.Kind,
		Schema:       sch,
		Predictor:    pred,
		ArtifactPath: path,
		LoadedAt:     time.Now(),
	}
	e.handle.Store(h)
	e.loadErr.Store(nil)
	log.Printf("registry event=load_ready model=%q dur_ms=%d", modelID, time.Since(startTs)/time.Millisecond)
	r.publisher.Publish(Event{Name: "load_ready", ModelID: modelID, Fields: map[string]any{"dur_ms": int(time.Since(startTs) / time.Millisecond)}})
	return h, nil
}

func (r *Registry) recordError(e *entry, modelID string, err error) {
	msg := err.Error()
	e.loadErr.Store(&msg)
	log.Printf("registry event=load_error model=%q err=%v", modelID, err)
	r.publisher.Publish(Event{Name: "load_error", ModelID: modelID, Fields: map[string]any{"error": msg}})
}

// Prefetch loads every registered model. One model failing does not stop the
// others; failures are joined and returned.
func (r *Registry) Prefetch(ctx context.Context) error {
	var errs []error
	for _, id := range r.ModelIDs() {
		if _, err := r.Get(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ModelIDs returns registered model ids in sorted order.
func (r *Registry) ModelIDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ListModels returns the registered models for the API.
func (r *Registry) ListModels() []types.Model {
	out := make([]types.Model, 0, len(r.entries))
	for _, id := range r.ModelIDs() {
		spec := r.specs[id]
		sch, _ := r.schemas.SchemaFor(id)
		out = append(out, types.Model{
			ID:         id,
			Kind:       string(spec.Kind),
			StorageKey: spec.Ref.Key,
			Features:   sch.Len(),
		})
	}
	return out
}

// Status returns a read-only projection of per-model serving state.
func (r *Registry) Status() []types.ModelStatus {
	out := make([]types.ModelStatus, 0, len(r.entries))
	for _, id := range r.ModelIDs() {
		e := r.entries[id]
		st := types.ModelStatus{ModelID: id, State: string(StateUnloaded)}
		if h := e.handle.Load(); h != nil {
			st.State = string(StateReady)
			st.LoadedAt = h.LoadedAt.Unix()
		} else if msg := e.loadErr.Load(); msg != nil {
			st.State = string(StateError)
			st.Error = *msg
		}
		if lu := e.lastUsed.Load(); lu > 0 {
			st.LastUsed = lu
		}
		out = append(out, st)
	}
	return out
}

// Ready reports whether at least one model handle is loaded.
func (r *Registry) Ready() bool {
	for _, e := range r.entries {
		if e.handle.Load() != nil {
			return true
		}
	}
	return false
}
