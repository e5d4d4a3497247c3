// Package optim searches controller gains by simulating each candidate.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var ErrNoCandidates = errors.New("optim: no candidate completed")

// Evaluate runs one candidate and returns its metrics.
type Evaluate func(ctx context.Context, params map[string]float64) (map[string]float64, error)

// Goal is the direction a metric is optimized in.
type Goal int

const (
	Minimize Goal = iota
	Maximize
)

func (g Goal) String() string {
	if g == Maximize {
		return "max"
	}
	return "min"
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64

	// Goal defaults to Minimize.
	Goal Goal
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

// Search evaluates every combination of the ranges and returns the one
// that best meets Goal on metricName, plus every trial in evaluation order.
// The returned score is the raw metric value.
func (g *GridSearch) Search(ctx context.Context, eval Evaluate, metricName string) (map[string]float64, float64, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, fmt.Errorf("optim: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	if g.Goal == Maximize {
		best = math.Inf(-1)
	}
	var bestParams map[string]float64
	var trials []Trial

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) {
		m, err := eval(ctx, params)
		if err != nil {
			trials = append(trials, Trial{Params: params, Err: err})
			return
		}
		val, ok := m[metricName]
		if !ok {
			trials = append(trials, Trial{Params: params, Err: fmt.Errorf("optim: metric %q not reported", metricName)})
			return
		}
		trials = append(trials, Trial{Params: params, Score: val})
		if g.better(val, best) {
			best = val
			bestParams = params
		}
	})
	if err != nil {
		return bestParams, best, trials, err
	}
	if bestParams == nil {
		return nil, 0, trials, ErrNoCandidates
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) better(val, best float64) bool {
	if g.Goal == Maximize {
		return val > best
	}
	return val < best
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		visit(current)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}
