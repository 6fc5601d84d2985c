package model

import (
	"fmt"

	"github.com/dmitryikh/leaves"
)

// leavesPredictor adapts a leaves ensemble (XGBoost or LightGBM) to the
// Predictor capability.
type leavesPredictor struct {
	ens *leaves.Ensemble
}

func loadXGBoost(path string) (Predictor, error) {
	ens, err := leaves.XGEnsembleFromFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("load xgboost model %s: %w", path, err)
	}
	return &leavesPredictor{ens: ens}, nil
}

func loadLightGBM(path string) (Predictor, error) {
	ens, err := leaves.LGEnsembleFromFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("load lightgbm model %s: %w", path, err)
	}
	return &leavesPredictor{ens: ens}, nil
}

func (p *leavesPredictor) Predict(features []float64) (float64, error) {
	if n := p.ens.NFeatures(); len(features) != n {
		return 0, vectorLengthError{want: n, got: len(features)}
	}
	// 0 estimators means "use all"; scoring is pure, no randomness.
	return p.ens.PredictSingle(features, 0), nil
}

func (p *leavesPredictor) NumFeatures() int { return p.ens.NFeatures() }
