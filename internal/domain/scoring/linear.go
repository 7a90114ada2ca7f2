package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/housescore/internal/domain/schema"
)

type linearTerm struct {
	col    int
	weight float64
	impute float64
}

type categoryTerm struct {
	col     int
	weights map[string]float64
}

// linearEstimator is intercept + sum(weight*x) + one-hot category weights.
// Unseen and missing categories contribute nothing.
type linearEstimator struct {
	intercept float64
	terms     []linearTerm
	cats      []categoryTerm
}

func compileLinear(doc Document, s *schema.Schema) (Estimator, error) {
	for name := range doc.Imputation {
		_, kind, err := lookupColumn(s, name)
		if err != nil {
			return nil, err
		}
		if kind != schema.KindFloat32 {
			return nil, fmt.Errorf("%w: imputation for %s column %q", ErrInvalidModel, kind, name)
		}
	}

	e := &linearEstimator{intercept: doc.Intercept}
	for _, name := range sortedKeys(doc.Coefficients) {
		col, kind, err := lookupColumn(s, name)
		if err != nil {
			return nil, err
		}
		if !kind.IsNumeric() {
			return nil, fmt.Errorf("%w: coefficient on %s column %q", ErrInvalidModel, kind, name)
		}
		e.terms = append(e.terms, linearTerm{
			col:    col,
			weight: doc.Coefficients[name],
			impute: doc.Imputation[name],
		})
	}
	for _, name := range sortedKeys(doc.Categories) {
		col, kind, err := lookupColumn(s, name)
		if err != nil {
			return nil, err
		}
		if kind != schema.KindString {
			return nil, fmt.Errorf("%w: categories on %s column %q", ErrInvalidModel, kind, name)
		}
		e.cats = append(e.cats, categoryTerm{col: col, weights: doc.Categories[name]})
	}
	return e, nil
}

func (e *linearEstimator) Estimate(row schema.Row) float64 {
	y := e.intercept
	for _, t := range e.terms {
		x := row.At(t.col).Float()
		if math.IsNaN(x) {
			x = t.impute
		}
		y += t.weight * x
	}
	for _, c := range e.cats {
		v := row.At(c.col)
		if v.IsNull() {
			continue
		}
		y += c.weights[v.Str()]
	}
	return y
}

// sortedKeys gives deterministic term order so float summation is reproducible.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
