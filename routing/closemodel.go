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

	"github.com/opsolve/routing/cpsolver"
)

// CloseModel computes cost and vehicle classes, posts the constraint network
// and freezes the model. It is idempotent; mutations after it fail.
func (m *Model) CloseModel() error {
	return m.CloseModelWithParameters(DefaultSearchParameters())
}

// CloseModelWithParameters closes the model with explicit parameters.
func (m *Model) CloseModelWithParameters(params SearchParameters) error {
	if m.closed {
		return nil
	}
	if m.err != nil {
		m.status = Invalid
		m.closed = true
		return fmt.Errorf("model invalid at close: %w", m.err)
	}
	// Vehicles without an arc cost evaluator fall back to a zero evaluator so
	// cost classes stay well defined.
	zero := CallbackIndex(-1)
	for v := range m.arcCostEvaluators {
		if m.arcCostEvaluators[v] == NoCallback {
			if zero == -1 {
				zero = m.registry.registerTransit(func(int, int) int64 { return 0 })
			}
			m.arcCostEvaluators[v] = zero
		}
	}

	// (1) and (2): equivalence classes, coarse then fine.
	m.computeCostClasses()
	m.computeVehicleClasses()

	// (3) and (4): the disjunction penalty subexpressions and the remaining
	// cost terms are all folded into the objective evaluation; the cost
	// variable carries the compiled value of committed solutions.
	m.costVar = m.solver.NewIntVar(0, cumulCap, "Cost")

	// (5) freeze the network.
	for i := 0; i < m.size; i++ {
		m.solver.AddConstraint(&pathChannelConstraint{m: m, index: i})
	}
	for _, d := range m.dimensions {
		for i := 0; i < m.size; i++ {
			m.solver.AddConstraint(&dimensionChainConstraint{d: d, index: i})
		}
		m.postBreakConstraints(d)
	}
	for di := range m.disjunctions {
		m.solver.AddConstraint(&disjunctionConstraint{m: m, disjunction: DisjunctionIndex(di)})
	}
	for i := 0; i < m.manager.NumIndices(); i++ {
		if allowed := m.allowedVehicles[i]; allowed != nil {
			for v := 0; v < m.vehicles; v++ {
				if !allowed[v] {
					mustSet(m.vehicleVars[i].RemoveValue(int64(v)))
				}
			}
		}
	}
	if err := m.solver.InitialPropagate(); err != nil {
		m.status = Invalid
		m.closed = true
		return fmt.Errorf("model infeasible at close: %w", err)
	}
	m.closed = true
	m.status = NotSolved
	return nil
}

// pathChannelConstraint channels active(i), next(i) and vehicle(i):
// active(i)=0 <=> next(i)=i <=> vehicle(i)=-1, and next(i)=j => the vehicle
// variables of i and j agree.
type pathChannelConstraint struct {
	m     *Model
	index int
}

func (c *pathChannelConstraint) Post() {
	i := c.index
	c.m.nexts[i].WhenDomain(c.propagate)
	c.m.actives[i].WhenDomain(c.propagate)
	c.m.vehicleVars[i].WhenDomain(c.propagate)
}

func (c *pathChannelConstraint) InitialPropagate() error {
	return c.propagate()
}

func (c *pathChannelConstraint) propagate() error {
	m, i := c.m, c.index
	next := m.nexts[i]
	active := m.actives[i]
	vehicle := m.vehicleVars[i]

	if active.Bound() {
		if active.Value() == 0 {
			if err := next.SetValue(int64(i)); err != nil {
				return err
			}
			if err := vehicle.SetValue(-1); err != nil {
				return err
			}
		} else {
			if err := next.RemoveValue(int64(i)); err != nil {
				return err
			}
			if err := vehicle.RemoveValue(-1); err != nil {
				return err
			}
		}
	}
	if !next.Contains(int64(i)) {
		if err := active.SetValue(1); err != nil {
			return err
		}
	}
	if vehicle.Bound() {
		if vehicle.Value() == -1 {
			if err := active.SetValue(0); err != nil {
				return err
			}
		} else {
			if err := active.SetValue(1); err != nil {
				return err
			}
		}
	}
	if next.Bound() {
		j := int(next.Value())
		if j == i {
			if err := active.SetValue(0); err != nil {
				return err
			}
			return vehicle.SetValue(-1)
		}
		if err := active.SetValue(1); err != nil {
			return err
		}
		// Vehicle transmission along the arc.
		target := m.vehicleVars[j]
		if target.Bound() {
			if err := vehicle.SetValue(target.Value()); err != nil {
				return err
			}
		} else if vehicle.Bound() {
			if err := target.SetValue(vehicle.Value()); err != nil {
				return err
			}
		}
	}
	return nil
}

// dimensionChainConstraint enforces
// next(i)=j => cumul(j) = cumul(i) + transit(i) + slack(i), binding the
// transit variable to its evaluated value once the arc and vehicle are known.
type dimensionChainConstraint struct {
	d     *Dimension
	index int
}

func (c *dimensionChainConstraint) Post() {
	i := c.index
	m := c.d.model
	m.nexts[i].WhenDomain(c.propagate)
	m.vehicleVars[i].WhenDomain(c.propagate)
	c.d.cumuls[i].WhenDomain(c.propagate)
	c.d.slacks[i].WhenDomain(c.propagate)
}

func (c *dimensionChainConstraint) InitialPropagate() error {
	return c.propagate()
}

func (c *dimensionChainConstraint) propagate() error {
	d, i := c.d, c.index
	m := d.model
	next := m.nexts[i]
	if !next.Bound() {
		return nil
	}
	j := int(next.Value())
	if j == i {
		return nil
	}
	vehicle := m.vehicleVars[i]
	if !vehicle.Bound() || vehicle.Value() < 0 {
		return nil
	}
	v := int(vehicle.Value())

	transit := d.transits[i]
	if !d.IsStateDependent() {
		if err := transit.SetValue(d.GetTransitValue(i, j, v)); err != nil {
			return err
		}
	} else if d.base != nil && d.base != d && d.base.cumuls[i].Bound() {
		if err := transit.SetValue(d.stateDependentTransitValue(d.base.cumuls[i].Value(), i, j, v)); err != nil {
			return err
		}
	} else if d.IsSelfBased() && d.cumuls[i].Bound() {
		if err := transit.SetValue(d.stateDependentTransitValue(d.cumuls[i].Value(), i, j, v)); err != nil {
			return err
		}
	}

	cumulI, cumulJ, slack := d.cumuls[i], d.cumuls[j], d.slacks[i]
	if err := cumulJ.SetRange(
		cumulI.Min()+transit.Min()+slack.Min(),
		cumulI.Max()+transit.Max()+slack.Max()); err != nil {
		return err
	}
	if err := cumulI.SetRange(
		cumulJ.Min()-transit.Max()-slack.Max(),
		cumulJ.Max()-transit.Min()-slack.Min()); err != nil {
		return err
	}
	if err := cumulJ.SetMax(d.vehicleCapacities[v]); err != nil {
		return err
	}
	if transit.Bound() {
		return slack.SetRange(
			cumulJ.Min()-cumulI.Max()-transit.Value(),
			cumulJ.Max()-cumulI.Min()-transit.Value())
	}
	return nil
}

// disjunctionConstraint bounds the number of active members of a disjunction
// by its max cardinality, and forces exactly that many when the disjunction
// is hard.
type disjunctionConstraint struct {
	m           *Model
	disjunction DisjunctionIndex
}

func (c *disjunctionConstraint) Post() {
	d := c.m.disjunctions[c.disjunction]
	for _, i := range d.Indices {
		c.m.actives[i].WhenDomain(c.propagate)
	}
}

func (c *disjunctionConstraint) InitialPropagate() error {
	return c.propagate()
}

func (c *disjunctionConstraint) propagate() error {
	d := c.m.disjunctions[c.disjunction]
	activeMin, activeMax := 0, 0
	for _, i := range d.Indices {
		a := c.m.actives[i]
		if a.Min() == 1 {
			activeMin++
		}
		if a.Max() == 1 {
			activeMax++
		}
	}
	if activeMin > d.MaxCardinality {
		return cpsolver.ErrFailed
	}
	hard := d.Penalty < 0
	if hard && activeMax < d.MaxCardinality {
		return cpsolver.ErrFailed
	}
	// Saturated: the remaining members must stay inactive.
	if activeMin == d.MaxCardinality {
		for _, i := range d.Indices {
			a := c.m.actives[i]
			if a.Min() == 0 && a.Max() == 1 {
				if err := a.SetValue(0); err != nil {
					return err
				}
			}
		}
	}
	// Hard and tight: every still-possible member must activate.
	if hard && activeMax == d.MaxCardinality {
		for _, i := range d.Indices {
			a := c.m.actives[i]
			if a.Max() == 1 && a.Min() == 0 {
				if err := a.SetValue(1); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
