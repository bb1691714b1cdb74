// README: Fare model adapter; turns trip context into a model prediction.
package faremodel

import (
	"math"

	"github.com/rotisserie/eris"
)

var ErrNonFinite = eris.New("faremodel: non-finite prediction")

// Model wraps a validated artifact. It holds no mutable state and is safe for
// concurrent use.
type Model struct {
	artifact *Artifact
}

// New wraps a in a Model after validating it.
func New(a *Artifact) (*Model, error) {
	if a == nil {
		return nil, eris.New("faremodel: nil artifact")
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &Model{artifact: a}, nil
}

// Open loads the artifact at path. A failure here is fatal for the caller.
func Open(path string) (*Model, error) {
	a, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Model{artifact: a}, nil
}

func (m *Model) Version() string { return m.artifact.Version }

// PredictFare derives the feature row for in and returns the predicted fare.
// The value is not sanity-bounded.
func (m *Model) PredictFare(in Input) (float64, error) {
	return m.Predict(BuildRow(Features(in)))
}

// Predict evaluates a row laid out as FeatureNames.
func (m *Model) Predict(row []float64) (float64, error) {
	if len(row) != len(FeatureNames) {
		return 0, eris.Errorf("faremodel: row has %d columns, want %d", len(row), len(FeatureNames))
	}
	x := m.scale(row)

	var out float64
	switch m.artifact.Kind {
	case KindLinear:
		out = m.artifact.Linear.Intercept
		for i, c := range m.artifact.Linear.Coefficients {
			out += c * x[i]
		}
	case KindForest:
		var sum float64
		for _, t := range m.artifact.Forest.Trees {
			sum += t.predict(x)
		}
		out = sum / float64(len(m.artifact.Forest.Trees))
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, ErrNonFinite
	}
	return out, nil
}

func (m *Model) scale(row []float64) []float64 {
	s := m.artifact.Scaler
	if s == nil {
		return row
	}
	x := make([]float64, len(row))
	for i, v := range row {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		x[i] = (v - s.Mean[i]) / scale
	}
	return x
}

func (t Tree) predict(x []float64) float64 {
	node := 0
	for t.ChildrenLeft[node] >= 0 {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}
