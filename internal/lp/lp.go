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

// Package lp is a small dense linear-programming solver for the per-route
// cumul optimization. It exposes a MakeVar/MakeConstraint/Objective surface
// and solves with a two-phase bounded-variable primal simplex. Problems are
// expected to stay small (one route at a time); there is no sparsity handling.
package lp

import (
	"math"
)

// Status is the outcome of a Solve call.
type Status int

const (
	// Optimal means an optimal feasible solution was found.
	Optimal Status = iota
	// Infeasible means the constraints admit no solution.
	Infeasible
	// Unbounded means the objective is unbounded below.
	Unbounded
	// Abnormal means the solver hit its iteration safety bound.
	Abnormal
)

// String returns a readable form of the status.
func (s Status) String() string {
	switch s {
	case Optimal:
		return "OPTIMAL"
	case Infeasible:
		return "INFEASIBLE"
	case Unbounded:
		return "UNBOUNDED"
	default:
		return "ABNORMAL"
	}
}

// Infinity is the bound value representing an unbounded direction.
func Infinity() float64 { return math.Inf(1) }

// Variable is a column of the model.
type Variable struct {
	index    int
	lb, ub   float64
	cost     float64
	solution float64
}

// SolutionValue returns the value of the variable in the last optimal solve.
func (v *Variable) SolutionValue() float64 { return v.solution }

// SetBounds resets the bounds of the variable.
func (v *Variable) SetBounds(lb, ub float64) {
	v.lb, v.ub = lb, ub
}

// Constraint is a row of the model with range `[lb,ub]`.
type Constraint struct {
	lb, ub float64
	vars   []int
	coeffs []float64
}

// SetCoefficient sets the coefficient of `v` in the constraint.
func (c *Constraint) SetCoefficient(v *Variable, coef float64) {
	for i, idx := range c.vars {
		if idx == v.index {
			c.coeffs[i] = coef
			return
		}
	}
	c.vars = append(c.vars, v.index)
	c.coeffs = append(c.coeffs, coef)
}

// Objective is the linear objective of the model. Minimization only.
type Objective struct {
	m *Model
}

// SetCoefficient sets the objective coefficient of `v`.
func (o *Objective) SetCoefficient(v *Variable, coef float64) {
	v.cost = coef
}

// Model is a linear program. Models are reusable: Clear resets rows and
// columns while keeping the allocated object, which lets callers keep one
// persistent model per route.
type Model struct {
	name        string
	vars        []*Variable
	constraints []*Constraint
	objective   Objective
	objValue    float64
}

// NewModel returns an empty model.
func NewModel(name string) *Model {
	m := &Model{name: name}
	m.objective.m = m
	return m
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// Clear removes every variable and constraint.
func (m *Model) Clear() {
	m.vars = m.vars[:0]
	m.constraints = m.constraints[:0]
	m.objValue = 0
}

// MakeVar creates a variable with bounds `[lb,ub]`.
func (m *Model) MakeVar(lb, ub float64) *Variable {
	v := &Variable{index: len(m.vars), lb: lb, ub: ub}
	m.vars = append(m.vars, v)
	return v
}

// MakeConstraint creates a range constraint `lb <= row <= ub`.
func (m *Model) MakeConstraint(lb, ub float64) *Constraint {
	c := &Constraint{lb: lb, ub: ub}
	m.constraints = append(m.constraints, c)
	return c
}

// Objective returns the model objective.
func (m *Model) Objective() *Objective { return &m.objective }

// ObjectiveValue returns the objective value of the last optimal solve.
func (m *Model) ObjectiveValue() float64 { return m.objValue }

const (
	eps     = 1e-9
	maxIter = 100000
)

// Solve minimizes the objective subject to the constraints and bounds.
func (m *Model) Solve() Status {
	// Convert range rows to equalities with a bounded slack per row:
	//   lb <= ax <= ub   becomes   ax + s = 0, s in [-ub, -lb].
	n := len(m.vars)
	rows := len(m.constraints)
	total := n + rows

	lb := make([]float64, total)
	ub := make([]float64, total)
	cost := make([]float64, total)
	for j, v := range m.vars {
		lb[j], ub[j], cost[j] = v.lb, v.ub, v.cost
	}
	a := make([][]float64, rows)
	for i, c := range m.constraints {
		a[i] = make([]float64, total)
		for k, idx := range c.vars {
			a[i][idx] += c.coeffs[k]
		}
		a[i][n+i] = 1
		lb[n+i], ub[n+i] = -c.ub, -c.lb
	}
	b := make([]float64, rows)

	s := &simplex{rows: rows, cols: total, a: a, b: b, lb: lb, ub: ub}
	status := s.solve(cost)
	if status != Optimal {
		return status
	}
	m.objValue = 0
	for j, v := range m.vars {
		v.solution = s.x[j]
		m.objValue += v.cost * v.solution
	}
	return Optimal
}

// simplex is a dense bounded-variable primal simplex with a phase-1 artificial
// start and Bland's rule for anti-cycling.
type simplex struct {
	rows, cols int
	a          [][]float64 // tableau, updated in place to B^-1 A
	b          []float64   // updated to B^-1 b
	lb, ub     []float64
	x          []float64 // current point, all columns
	basic      []int     // basic column per row
	inBasis    []bool
	atUpper    []bool // nonbasic position
}

func (s *simplex) solve(cost []float64) Status {
	rows, cols := s.rows, s.cols
	// Artificial columns for phase 1.
	total := cols + rows
	for i := range s.a {
		s.a[i] = append(s.a[i], make([]float64, rows)...)
	}
	s.lb = append(s.lb, make([]float64, rows)...)
	s.ub = append(s.ub, make([]float64, rows)...)
	s.x = make([]float64, total)
	s.basic = make([]int, rows)
	s.inBasis = make([]bool, total)
	s.atUpper = make([]bool, total)

	// Start every structural column at a finite bound: the bound nearest zero
	// when 0 lies outside [lb, ub], otherwise the lower bound, or the upper
	// bound when the lower one is infinite. A column with no finite bound
	// starts at 0.
	for j := 0; j < cols; j++ {
		switch {
		case s.lb[j] > 0 || math.IsInf(s.ub[j], -1):
			s.x[j] = s.lb[j]
		case s.ub[j] < 0 || math.IsInf(s.lb[j], -1):
			s.x[j] = s.ub[j]
			s.atUpper[j] = true
		case !math.IsInf(s.lb[j], -1):
			s.x[j] = s.lb[j]
		default:
			s.x[j] = 0
		}
		if math.IsInf(s.x[j], 0) {
			s.x[j] = 0
		}
	}
	// Residual becomes the artificial basis, sign-adjusted to be >= 0.
	phase1 := make([]float64, total)
	for i := 0; i < rows; i++ {
		r := s.b[i]
		for j := 0; j < cols; j++ {
			r -= s.a[i][j] * s.x[j]
		}
		col := cols + i
		if r < 0 {
			// Negate the row so the artificial column keeps the tableau an
			// identity on the starting basis.
			for j := 0; j < cols; j++ {
				s.a[i][j] = -s.a[i][j]
			}
			s.b[i] = -s.b[i]
			r = -r
		}
		s.a[i][col] = 1
		s.x[col] = r
		s.lb[col], s.ub[col] = 0, math.Inf(1)
		s.basic[i] = col
		s.inBasis[col] = true
		phase1[col] = 1
	}
	s.cols = total

	if st := s.iterate(phase1); st != Optimal {
		return Abnormal
	}
	var infeas float64
	for i := 0; i < rows; i++ {
		infeas += phase1[s.basic[i]] * s.x[s.basic[i]]
	}
	if infeas > 1e-7 {
		return Infeasible
	}
	// Freeze artificials at zero for phase 2.
	for j := cols; j < total; j++ {
		s.ub[j] = 0
	}
	phase2 := make([]float64, total)
	copy(phase2, cost)
	return s.iterate(phase2)
}

// iterate runs primal simplex pivots to optimality for the given costs.
func (s *simplex) iterate(cost []float64) Status {
	rows := s.rows
	for iter := 0; iter < maxIter; iter++ {
		// Reduced costs: d = c - cB^T (B^-1 A); the tableau already holds B^-1 A.
		y := make([]float64, rows)
		for i := 0; i < rows; i++ {
			y[i] = cost[s.basic[i]]
		}
		entering := -1
		dir := 1.0
		for j := 0; j < s.cols; j++ {
			if s.inBasis[j] || s.lb[j] == s.ub[j] {
				continue
			}
			d := cost[j]
			for i := 0; i < rows; i++ {
				d -= y[i] * s.a[i][j]
			}
			if !s.atUpper[j] && d < -eps {
				entering, dir = j, 1
				break // Bland's rule: first eligible column.
			}
			if s.atUpper[j] && d > eps {
				entering, dir = j, -1
				break
			}
		}
		if entering < 0 {
			return Optimal
		}
		// Ratio test: entering moves by delta*dir; basic i moves by -a[i][entering]*delta*dir.
		delta := s.ub[entering] - s.lb[entering] // bound flip distance
		leaving := -1
		leavingToUpper := false
		for i := 0; i < rows; i++ {
			coef := s.a[i][entering] * dir
			bi := s.basic[i]
			if coef > eps {
				if !math.IsInf(s.lb[bi], -1) {
					if t := (s.x[bi] - s.lb[bi]) / coef; t < delta-eps {
						delta, leaving, leavingToUpper = t, i, false
					}
				}
			} else if coef < -eps {
				if !math.IsInf(s.ub[bi], 1) {
					if t := (s.ub[bi] - s.x[bi]) / -coef; t < delta-eps {
						delta, leaving, leavingToUpper = t, i, true
					}
				}
			}
		}
		if math.IsInf(delta, 1) {
			return Unbounded
		}
		if delta < 0 {
			delta = 0
		}
		// Move the point.
		s.x[entering] += dir * delta
		for i := 0; i < rows; i++ {
			s.x[s.basic[i]] -= s.a[i][entering] * dir * delta
		}
		if leaving < 0 {
			s.atUpper[entering] = !s.atUpper[entering]
			continue
		}
		// Pivot: entering replaces basic[leaving].
		out := s.basic[leaving]
		s.inBasis[out] = false
		s.atUpper[out] = leavingToUpper
		if leavingToUpper {
			s.x[out] = s.ub[out]
		} else {
			s.x[out] = s.lb[out]
		}
		s.inBasis[entering] = true
		s.basic[leaving] = entering
		piv := s.a[leaving][entering]
		for j := 0; j < s.cols; j++ {
			s.a[leaving][j] /= piv
		}
		s.b[leaving] /= piv
		for i := 0; i < rows; i++ {
			if i == leaving {
				continue
			}
			f := s.a[i][entering]
			if f == 0 {
				continue
			}
			for j := 0; j < s.cols; j++ {
				s.a[i][j] -= f * s.a[leaving][j]
			}
			s.b[i] -= f * s.b[leaving]
		}
	}
	return Abnormal
}
