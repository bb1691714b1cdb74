// README: Fare-model artifact format and loader.
package faremodel

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

const (
	KindLinear = "linear"
	KindForest = "forest"
)

var ErrFeatureContract = eris.New("faremodel: artifact does not match feature contract")

// Artifact is the serialized regression model produced by the training pipeline.
type Artifact struct {
	Version        string   `json:"version"`
	FeatureVersion string   `json:"feature_version"`
	Kind           string   `json:"kind"`
	Features       []string `json:"features"`
	Scaler         *Scaler  `json:"scaler,omitempty"`
	Linear         *Linear  `json:"linear,omitempty"`
	Forest         *Forest  `json:"forest,omitempty"`
}

// Scaler standardizes columns as (x - mean) / scale.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

type Linear struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Forest is an averaged ensemble of regression trees.
type Forest struct {
	Trees []Tree `json:"trees"`
}

// Tree uses the parallel-array layout: node i is a leaf when ChildrenLeft[i] < 0.
type Tree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

// Load reads and validates an artifact from path.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "faremodel: read %s", path)
	}
	a, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "faremodel: load %s", path)
	}
	return a, nil
}

// Parse decodes and validates an artifact.
func Parse(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, eris.Wrap(err, "faremodel: decode artifact")
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate checks the feature contract and array shapes.
func (a *Artifact) Validate() error {
	if a.FeatureVersion != FeatureVersion {
		return eris.Wrapf(ErrFeatureContract, "feature_version %q, want %q", a.FeatureVersion, FeatureVersion)
	}
	if len(a.Features) != len(FeatureNames) {
		return eris.Wrapf(ErrFeatureContract, "%d features, want %d", len(a.Features), len(FeatureNames))
	}
	for i, name := range FeatureNames {
		if a.Features[i] != name {
			return eris.Wrapf(ErrFeatureContract, "feature %d is %q, want %q", i, a.Features[i], name)
		}
	}
	n := len(FeatureNames)
	if a.Scaler != nil && (len(a.Scaler.Mean) != n || len(a.Scaler.Scale) != n) {
		return eris.New("faremodel: scaler width does not match features")
	}

	switch a.Kind {
	case KindLinear:
		if a.Linear == nil {
			return eris.New("faremodel: linear artifact without coefficients")
		}
		if len(a.Linear.Coefficients) != n {
			return eris.Errorf("faremodel: %d coefficients, want %d", len(a.Linear.Coefficients), n)
		}
	case KindForest:
		if a.Forest == nil || len(a.Forest.Trees) == 0 {
			return eris.New("faremodel: forest artifact without trees")
		}
		for i, t := range a.Forest.Trees {
			if err := t.validate(n); err != nil {
				return eris.Wrapf(err, "faremodel: tree %d", i)
			}
		}
	default:
		return eris.Errorf("faremodel: unknown artifact kind %q", a.Kind)
	}
	return nil
}

func (t Tree) validate(width int) error {
	size := len(t.Value)
	if size == 0 {
		return eris.New("empty tree")
	}
	if len(t.ChildrenLeft) != size || len(t.ChildrenRight) != size || len(t.Feature) != size || len(t.Threshold) != size {
		return eris.New("node arrays differ in length")
	}
	for i := 0; i < size; i++ {
		if t.ChildrenLeft[i] < 0 {
			continue
		}
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l <= i || r <= i || l >= size || r >= size {
			return eris.Errorf("node %d has invalid children %d/%d", i, l, r)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= width {
			return eris.Errorf("node %d splits on feature %d", i, t.Feature[i])
		}
	}
	return nil
}
