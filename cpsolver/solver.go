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

// Package cpsolver provides the constraint-programming substrate consumed by the
// routing library: integer and interval variables with explicit domains,
// constraint posting with demon-based propagation, depth-first search with
// backtracking, search monitors and limits, and assignment containers.
package cpsolver

import (
	"errors"

	log "github.com/golang/glog"
)

// ErrFailed is returned by propagation when a variable domain becomes empty or
// a constraint detects infeasibility. It unwinds the current search branch.
var ErrFailed = errors.New("propagation failed")

// Demon is a propagation hook attached to a variable. It runs when the
// variable's domain changes and returns ErrFailed on detected infeasibility.
type Demon func() error

// Constraint is the interface of all constraints posted to the solver.
// Post attaches demons to the constraint's variables; InitialPropagate performs
// the first filtering pass.
type Constraint interface {
	Post()
	InitialPropagate() error
}

type trailEntry struct {
	v   *IntVar
	dom Domain
}

type intervalTrailEntry struct {
	v     *IntervalVar
	saved intervalState
}

// Solver owns the variables, the constraints, the propagation queue and the
// backtracking trail. One solver drives one model; it is not safe for
// concurrent use.
type Solver struct {
	name        string
	intVars     []*IntVar
	intervals   []*IntervalVar
	constraints []Constraint

	queue []Demon

	trail         []trailEntry
	intervalTrail []intervalTrailEntry

	branches  int64
	failures  int64
	solutions int64
}

// NewSolver returns a new solver with the given name.
func NewSolver(name string) *Solver {
	return &Solver{name: name}
}

// Name returns the name of the solver.
func (s *Solver) Name() string { return s.name }

// Branches returns the number of branches explored since creation.
func (s *Solver) Branches() int64 { return s.branches }

// Failures returns the number of failures since creation.
func (s *Solver) Failures() int64 { return s.failures }

// Solutions returns the number of solutions found since creation.
func (s *Solver) Solutions() int64 { return s.solutions }

// NewIntVar creates a new integer variable with domain `[lb,ub]`.
func (s *Solver) NewIntVar(lb, ub int64, name string) *IntVar {
	return s.NewIntVarFromDomain(NewDomain(lb, ub), name)
}

// NewIntVarFromDomain creates a new integer variable with the given domain.
func (s *Solver) NewIntVarFromDomain(d Domain, name string) *IntVar {
	v := &IntVar{s: s, index: len(s.intVars), name: name, dom: d}
	s.intVars = append(s.intVars, v)
	return v
}

// NewConstant creates a variable fixed to `val`.
func (s *Solver) NewConstant(val int64) *IntVar {
	return s.NewIntVar(val, val, "")
}

// IntVarByIndex returns the variable created with the given creation index.
func (s *Solver) IntVarByIndex(i int) *IntVar {
	if i < 0 || i >= len(s.intVars) {
		log.Fatalf("variable index %v out of range [0,%v)", i, len(s.intVars))
	}
	return s.intVars[i]
}

// NumIntVars returns the number of integer variables created on the solver.
func (s *Solver) NumIntVars() int { return len(s.intVars) }

// AddConstraint registers and posts the constraint.
func (s *Solver) AddConstraint(c Constraint) {
	s.constraints = append(s.constraints, c)
	c.Post()
}

// InitialPropagate runs the first filtering pass of every posted constraint
// followed by the propagation fixpoint. Returns ErrFailed on infeasibility.
func (s *Solver) InitialPropagate() error {
	for _, c := range s.constraints {
		if err := c.InitialPropagate(); err != nil {
			s.clearQueue()
			return err
		}
	}
	return s.Propagate()
}

func (s *Solver) enqueue(demons []Demon) {
	s.queue = append(s.queue, demons...)
}

func (s *Solver) clearQueue() {
	s.queue = s.queue[:0]
}

// Propagate runs queued demons until the queue drains. Returns ErrFailed if
// any demon fails; the queue is cleared in that case.
func (s *Solver) Propagate() error {
	for len(s.queue) > 0 {
		d := s.queue[0]
		s.queue = s.queue[1:]
		if err := d(); err != nil {
			s.clearQueue()
			s.failures++
			return err
		}
	}
	return nil
}

// CheckAssignment restores the assignment into the variables, runs the
// propagation fixpoint and rewinds. It returns true when propagation holds,
// i.e. the assignment is consistent with every posted constraint.
func (s *Solver) CheckAssignment(a *Assignment) bool {
	mark, intervalMark := s.markTrail()
	ok := a.Restore() == nil && s.Propagate() == nil
	s.backtrackTo(mark, intervalMark)
	return ok
}

// markTrail returns a token for the current trail position, to be passed to
// backtrackTo.
func (s *Solver) markTrail() (int, int) {
	return len(s.trail), len(s.intervalTrail)
}

// backtrackTo restores every variable modified since the matching markTrail.
func (s *Solver) backtrackTo(mark, intervalMark int) {
	for i := len(s.trail) - 1; i >= mark; i-- {
		e := s.trail[i]
		e.v.dom = e.dom
	}
	s.trail = s.trail[:mark]
	for i := len(s.intervalTrail) - 1; i >= intervalMark; i-- {
		e := s.intervalTrail[i]
		e.v.state = e.saved
	}
	s.intervalTrail = s.intervalTrail[:intervalMark]
	s.clearQueue()
}
