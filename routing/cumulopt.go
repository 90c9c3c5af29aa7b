// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package routing

import (
	"fmt"

	"github.com/opsolve/routing/internal/lp"
)

// RouteDimensionCumulOptimizer finalizes optimal cumul values of one
// dimension given fixed routes: per vehicle, it builds a linear program over
// the route's cumuls minimizing span and soft-bound costs. LP models are
// persistent per vehicle to amortize setup.
type RouteDimensionCumulOptimizer struct {
	d      *Dimension
	models []*lp.Model
}

// NewRouteDimensionCumulOptimizer returns an optimizer for the dimension.
func NewRouteDimensionCumulOptimizer(d *Dimension) *RouteDimensionCumulOptimizer {
	return &RouteDimensionCumulOptimizer{
		d:      d,
		models: make([]*lp.Model, d.model.vehicles),
	}
}

// cumulOptimizer returns the model's cached optimizer of the dimension.
func (m *Model) cumulOptimizer(d *Dimension) *RouteDimensionCumulOptimizer {
	if m.cumulOptimizers == nil {
		m.cumulOptimizers = make(map[DimensionIndex]*RouteDimensionCumulOptimizer)
	}
	o, ok := m.cumulOptimizers[d.index]
	if !ok {
		o = NewRouteDimensionCumulOptimizer(d)
		m.cumulOptimizers[d.index] = o
	}
	return o
}

// OptimizeRouteCumuls solves the cumul LP of one route. It returns the
// optimal cumul per route position, the optimal cost contribution, and false
// when the route is infeasible on the dimension.
func (o *RouteDimensionCumulOptimizer) OptimizeRouteCumuls(vehicle int, route []int) ([]int64, int64, bool) {
	d := o.d
	model := o.models[vehicle]
	if model == nil {
		model = lp.NewModel(fmt.Sprintf("%s-cumuls-%d", d.name, vehicle))
		o.models[vehicle] = model
	}
	model.Clear()
	obj := model.Objective()

	n := len(route)
	cumuls := make([]*lp.Variable, n)
	for k, idx := range route {
		lo := float64(d.cumuls[idx].Min())
		hi := float64(d.cumuls[idx].Max())
		if capacity := float64(d.vehicleCapacities[vehicle]); hi > capacity {
			hi = capacity
		}
		cumuls[k] = model.MakeVar(lo, hi)
	}

	// Chaining: cumul(b) - cumul(a) in [transit, transit + slackMax].
	for k := 0; k+1 < n; k++ {
		transit := float64(d.GetTransitValue(route[k], route[k+1], vehicle))
		hi := transit + float64(d.slackMax)
		c := model.MakeConstraint(transit, hi)
		c.SetCoefficient(cumuls[k+1], 1)
		c.SetCoefficient(cumuls[k], -1)
	}

	// Span: bound and cost on cumul(end) - cumul(start).
	if ub := d.vehicleSpanUpperBounds[vehicle]; ub < cumulCap {
		c := model.MakeConstraint(0, float64(ub))
		c.SetCoefficient(cumuls[n-1], 1)
		c.SetCoefficient(cumuls[0], -1)
	}
	if coef := d.vehicleSpanCostCoefficients[vehicle]; coef > 0 {
		obj.SetCoefficient(cumuls[n-1], float64(coef))
		obj.SetCoefficient(cumuls[0], -float64(coef))
	}

	// Soft bounds: a nonnegative excess variable per bounded cumul.
	for k, idx := range route {
		if ub := d.softUpperBounds[idx]; ub.Coefficient != 0 {
			excess := model.MakeVar(0, lp.Infinity())
			// excess >= cumul - bound.
			c := model.MakeConstraint(-float64(ub.Bound), lp.Infinity())
			c.SetCoefficient(excess, 1)
			c.SetCoefficient(cumuls[k], -1)
			obj.SetCoefficient(excess, float64(ub.Coefficient))
		}
		if lb := d.softLowerBounds[idx]; lb.Coefficient != 0 {
			shortfall := model.MakeVar(0, lp.Infinity())
			// shortfall >= bound - cumul.
			c := model.MakeConstraint(float64(lb.Bound), lp.Infinity())
			c.SetCoefficient(shortfall, 1)
			c.SetCoefficient(cumuls[k], 1)
			obj.SetCoefficient(shortfall, float64(lb.Coefficient))
		}
	}

	if status := model.Solve(); status != lp.Optimal {
		return nil, 0, false
	}
	// The constraint matrix is a difference system, so the LP optimum is
	// integral; rounding only strips float noise.
	values := make([]int64, n)
	for k := range cumuls {
		values[k] = int64(cumuls[k].SolutionValue() + 0.5)
	}
	return values, int64(model.ObjectiveValue() + 0.5), true
}
