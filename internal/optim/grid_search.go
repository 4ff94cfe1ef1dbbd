package optim

import (
	"context"
	"errors"
	"math"
)

// ErrNoCandidate is returned when every grid point failed to evaluate.
var ErrNoCandidate = errors.New("optim: no candidate could be evaluated")

// Objective scores one parameter assignment; lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	evals      int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Evaluations reports how many objective calls the last Search made.
func (g *GridSearch) Evaluations() int { return g.evals }

// Search evaluates objective at every combination of candidate values and
// returns the minimizer. Candidates whose objective fails are skipped. Ties
// keep the first combination visited.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, errors.New("optim: parameter names and ranges differ in length")
	}

	g.evals = 0
	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, &best, &bestParams); err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrNoCandidate
	}

	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}

		g.evals++
		val, err := objective(ctx, current)
		if err != nil || math.IsNaN(val) {
			return nil
		}

		if val < *best || *bestParams == nil {
			*best = val
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, current, objective, best, bestParams); err != nil {
			return err
		}
	}
	delete(current, paramName)
	return nil
}
