package schema

import "sort"

// Registry maps model ids to their immutable feature schemas. It is built
// once at startup and is safe for concurrent readers.
type Registry struct {
	schemas map[string]*Schema
}

// NewRegistry parses one schema per model id. Any parse failure is returned
// as-is: schema errors are configuration errors and must fail startup.
func NewRegistry(features map[string][]string) (*Registry, error) {
	r := &Registry{schemas: make(map[string]*Schema, len(features))}
	ids := make([]string, 0, len(features))
	for id := range features {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		s, err := Parse(id, features[id])
		if err != nil {
			return nil, err
		}
		r.schemas[id] = s
	}
	return r, nil
}

// SchemaFor returns the schema registered for modelID.
func (r *Registry) SchemaFor(modelID string) (*Schema, error) {
	s, ok := r.schemas[modelID]
	if !ok {
		return nil, ErrUnknownModel(modelID)
	}
	return s, nil
}

// ModelIDs returns all registered model ids in sorted order.
func (r *Registry) ModelIDs() []string {
	ids := make([]string, 0, len(r.schemas))
	for id := range r.schemas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
