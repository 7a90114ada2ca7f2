package scoring

import (
	"fmt"
	"math"

	"github.com/okian/housescore/internal/domain/schema"
)

type weighted struct {
	weight float64
	est    Estimator
}

// votingEnsemble averages member predictions by normalized weight.
type votingEnsemble struct {
	members []weighted
}

func compileVoting(doc Document, s *schema.Schema) (Estimator, error) {
	if len(doc.Estimators) == 0 {
		return nil, fmt.Errorf("%w: voting ensemble has no estimators", ErrInvalidModel)
	}
	var total float64
	e := &votingEnsemble{members: make([]weighted, len(doc.Estimators))}
	for i, member := range doc.Estimators {
		if !(member.Weight > 0) || math.IsInf(member.Weight, 0) {
			return nil, fmt.Errorf("%w: estimator %d has weight %v", ErrInvalidModel, i, member.Weight)
		}
		est, err := Compile(member.Model, s)
		if err != nil {
			return nil, fmt.Errorf("estimator %d: %w", i, err)
		}
		e.members[i] = weighted{weight: member.Weight, est: est}
		total += member.Weight
	}
	for i := range e.members {
		e.members[i].weight /= total
	}
	return e, nil
}

func (e *votingEnsemble) Estimate(row schema.Row) float64 {
	var y float64
	for _, m := range e.members {
		y += m.weight * m.est.Estimate(row)
	}
	return y
}
