package scoring

import (
	"fmt"
	"math"

	"github.com/okian/housescore/internal/domain/schema"
)

type treeNode struct {
	leaf        bool
	value       float64
	col         int
	categorical bool
	threshold   float64
	categories  map[string]struct{}
	left, right int
	missingLeft bool
}

type tree []treeNode

// treeEnsemble sums base score and the leaf value reached in every tree.
type treeEnsemble struct {
	base  float64
	trees []tree
}

func compileTreeEnsemble(doc Document, s *schema.Schema) (Estimator, error) {
	if len(doc.Trees) == 0 {
		return nil, fmt.Errorf("%w: tree ensemble has no trees", ErrInvalidModel)
	}
	e := &treeEnsemble{base: doc.BaseScore, trees: make([]tree, len(doc.Trees))}
	for t, td := range doc.Trees {
		compiled, err := compileTree(td, s)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", t, err)
		}
		e.trees[t] = compiled
	}
	return e, nil
}

// compileTree requires children to sit after their parent, which rules out
// cycles and guarantees every walk terminates.
func compileTree(td TreeDoc, s *schema.Schema) (tree, error) {
	n := len(td.Nodes)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty tree", ErrInvalidModel)
	}
	out := make(tree, n)
	for i, nd := range td.Nodes {
		if nd.Leaf {
			out[i] = treeNode{leaf: true, value: nd.Value}
			continue
		}
		col, kind, err := lookupColumn(s, nd.Feature)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		if nd.Left <= i || nd.Left >= n || nd.Right <= i || nd.Right >= n {
			return nil, fmt.Errorf("%w: node %d has children (%d, %d) outside (%d, %d)", ErrInvalidModel, i, nd.Left, nd.Right, i, n)
		}
		node := treeNode{
			col:         col,
			threshold:   nd.Threshold,
			left:        nd.Left,
			right:       nd.Right,
			missingLeft: nd.MissingLeft,
		}
		if kind == schema.KindString {
			if len(nd.Categories) == 0 {
				return nil, fmt.Errorf("%w: node %d splits string column %q without categories", ErrInvalidModel, i, nd.Feature)
			}
			node.categorical = true
			node.categories = make(map[string]struct{}, len(nd.Categories))
			for _, c := range nd.Categories {
				node.categories[c] = struct{}{}
			}
		}
		out[i] = node
	}
	return out, nil
}

func (t tree) walk(row schema.Row) float64 {
	i := 0
	for {
		n := &t[i]
		if n.leaf {
			return n.value
		}
		v := row.At(n.col)
		var goLeft bool
		switch {
		case v.IsNull():
			goLeft = n.missingLeft
		case n.categorical:
			_, goLeft = n.categories[v.Str()]
		default:
			x := v.Float()
			if math.IsNaN(x) {
				goLeft = n.missingLeft
			} else {
				goLeft = x < n.threshold
			}
		}
		if goLeft {
			i = n.left
		} else {
			i = n.right
		}
	}
}

func (e *treeEnsemble) Estimate(row schema.Row) float64 {
	y := e.base
	for _, t := range e.trees {
		y += t.walk(row)
	}
	return y
}
