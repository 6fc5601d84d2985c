package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Random-forest artifacts are a JSON document exported by the training
// pipeline (sklearn pickles are not loadable outside CPython). Trees are
// arrays of nodes linked by index; node 0 is the root. A node is either a
// split (feature/threshold/left/right) or a leaf (value set). The forest
// prediction is the mean of per-tree leaf values, matching sklearn's
// RandomForestRegressor.
type forestDoc struct {
	NFeatures int         `json:"n_features"`
	Trees     []forestTree `json:"trees"`
}

type forestTree struct {
	Nodes []forestNode `json:"nodes"`
}

type forestNode struct {
	Feature   int      `json:"feature"`
	Threshold float64  `json:"threshold"`
	Left      int      `json:"left"`
	Right     int      `json:"right"`
	Value     *float64 `json:"value,omitempty"`
}

type forestPredictor struct {
	doc forestDoc
}

func loadForest(path string) (Predictor, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load forest model %s: %w", path, err)
	}
	var doc forestDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("load forest model %s: %w", path, err)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("load forest model %s: %w", path, err)
	}
	return &forestPredictor{doc: doc}, nil
}

// validate checks structural invariants once at load so scoring can walk
// trees without bounds checks failing mid-request.
func (d forestDoc) validate() error {
	if d.NFeatures <= 0 {
		return fmt.Errorf("n_features must be positive, got %d", d.NFeatures)
	}
	if len(d.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	for ti, tree := range d.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, n := range tree.Nodes {
			if n.Value != nil {
				continue
			}
			if n.Feature < 0 || n.Feature >= d.NFeatures {
				return fmt.Errorf("tree %d node %d: feature index %d out of range", ti, ni, n.Feature)
			}
			if n.Left <= ni || n.Left >= len(tree.Nodes) || n.Right <= ni || n.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d: child index out of range", ti, ni)
			}
		}
	}
	return nil
}

func (p *forestPredictor) Predict(features []float64) (float64, error) {
	if len(features) != p.doc.NFeatures {
		return 0, vectorLengthError{want: p.doc.NFeatures, got: len(features)}
	}
	var sum float64
	for _, tree := range p.doc.Trees {
		sum += tree.score(features)
	}
	return sum / float64(len(p.doc.Trees)), nil
}

func (p *forestPredictor) NumFeatures() int { return p.doc.NFeatures }

func (t forestTree) score(features []float64) float64 {
	idx := 0
	for {
		n := t.Nodes[idx]
		if n.Value != nil {
			return *n.Value
		}
		// sklearn split convention: left when x <= threshold
		if features[n.Feature] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
}
