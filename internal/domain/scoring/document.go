package scoring

import (
	"fmt"
	"math"

	"github.com/okian/housescore/internal/domain/schema"
)

// Estimator kinds understood by Compile.
const (
	KindLinear       = "linear"
	KindTreeEnsemble = "tree_ensemble"
	KindVoting       = "voting"
)

// Target transforms applied to an estimator's raw output.
const (
	TransformIdentity = "identity"
	TransformLog1p    = "log1p"
)

// Document is the serialized form of a native estimator. Only the fields of
// the declared Kind are read.
type Document struct {
	Kind            string `json:"kind" yaml:"kind"`
	TargetTransform string `json:"target_transform,omitempty" yaml:"target_transform,omitempty"`

	// linear
	Intercept    float64                       `json:"intercept,omitempty" yaml:"intercept,omitempty"`
	Coefficients map[string]float64            `json:"coefficients,omitempty" yaml:"coefficients,omitempty"`
	Categories   map[string]map[string]float64 `json:"categories,omitempty" yaml:"categories,omitempty"`
	Imputation   map[string]float64            `json:"imputation,omitempty" yaml:"imputation,omitempty"`

	// tree_ensemble
	BaseScore float64   `json:"base_score,omitempty" yaml:"base_score,omitempty"`
	Trees     []TreeDoc `json:"trees,omitempty" yaml:"trees,omitempty"`

	// voting
	Estimators []WeightedDoc `json:"estimators,omitempty" yaml:"estimators,omitempty"`
}

// TreeDoc is one regression tree stored as a flat node list rooted at index 0.
type TreeDoc struct {
	Nodes []NodeDoc `json:"nodes" yaml:"nodes"`
}

// NodeDoc is a split or a leaf. Numeric splits go left when value < Threshold;
// categorical splits go left when the value is one of Categories. Missing
// values follow MissingLeft.
type NodeDoc struct {
	Leaf        bool     `json:"leaf,omitempty" yaml:"leaf,omitempty"`
	Value       float64  `json:"value,omitempty" yaml:"value,omitempty"`
	Feature     string   `json:"feature,omitempty" yaml:"feature,omitempty"`
	Threshold   float64  `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Categories  []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Left        int      `json:"left,omitempty" yaml:"left,omitempty"`
	Right       int      `json:"right,omitempty" yaml:"right,omitempty"`
	MissingLeft bool     `json:"missing_left,omitempty" yaml:"missing_left,omitempty"`
}

// WeightedDoc is a member of a voting ensemble.
type WeightedDoc struct {
	Weight float64  `json:"weight" yaml:"weight"`
	Model  Document `json:"model" yaml:"model"`
}

// Compile resolves doc against s into an Estimator. Column references, kinds
// and tree structure are checked here so prediction never fails on shape.
func Compile(doc Document, s *schema.Schema) (Estimator, error) {
	var (
		est Estimator
		err error
	)
	switch doc.Kind {
	case KindLinear:
		est, err = compileLinear(doc, s)
	case KindTreeEnsemble:
		est, err = compileTreeEnsemble(doc, s)
	case KindVoting:
		est, err = compileVoting(doc, s)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidModel, doc.Kind)
	}
	if err != nil {
		return nil, err
	}

	switch doc.TargetTransform {
	case "", TransformIdentity:
		return est, nil
	case TransformLog1p:
		return expm1Estimator{inner: est}, nil
	default:
		return nil, fmt.Errorf("%w: unknown target transform %q", ErrInvalidModel, doc.TargetTransform)
	}
}

// expm1Estimator inverts a log1p target transform.
type expm1Estimator struct {
	inner Estimator
}

func (e expm1Estimator) Estimate(row schema.Row) float64 {
	return math.Expm1(e.inner.Estimate(row))
}

func lookupColumn(s *schema.Schema, name string) (int, schema.Kind, error) {
	i, ok := s.Index(name)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %w %q", ErrInvalidModel, schema.ErrUnknownColumn, name)
	}
	return i, s.Column(i).Kind, nil
}
