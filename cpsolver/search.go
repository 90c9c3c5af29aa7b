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

package cpsolver

// Decision is one binary choice point of the search tree. Apply commits the
// choice, Refute commits its negation.
type Decision struct {
	Apply  func() error
	Refute func() error
}

// DecisionBuilder produces the next decision of the search, or nil when every
// variable it is responsible for is instantiated.
type DecisionBuilder interface {
	Next(s *Solver) *Decision
}

// SearchMonitor observes the search. PeriodicCheck is consulted at every node
// expansion; a non-nil return aborts the search cleanly.
type SearchMonitor interface {
	EnterSearch()
	ExitSearch()
	// AtSolution is called on each solution; returning false stops the search.
	AtSolution() bool
	PeriodicCheck() error
}

// SearchMonitorBase is a no-op SearchMonitor for embedding.
type SearchMonitorBase struct{}

// EnterSearch implements SearchMonitor.
func (SearchMonitorBase) EnterSearch() {}

// ExitSearch implements SearchMonitor.
func (SearchMonitorBase) ExitSearch() {}

// AtSolution implements SearchMonitor.
func (SearchMonitorBase) AtSolution() bool { return true }

// PeriodicCheck implements SearchMonitor.
func (SearchMonitorBase) PeriodicCheck() error { return nil }

// Solve runs a depth-first search driven by `db` under the given monitors.
// It returns true if at least one solution was found. When the search stops at
// a solution (a monitor returned false from AtSolution), the solution is left
// restored in the variables; otherwise the solver state is rewound.
func (s *Solver) Solve(db DecisionBuilder, monitors ...SearchMonitor) bool {
	for _, m := range monitors {
		m.EnterSearch()
	}
	mark, intervalMark := s.markTrail()
	found := false
	stoppedAtSolution := false
	if err := s.Propagate(); err == nil {
		s.dfs(db, monitors, &found, &stoppedAtSolution)
	}
	if !stoppedAtSolution {
		s.backtrackTo(mark, intervalMark)
	}
	for _, m := range monitors {
		m.ExitSearch()
	}
	return found
}

// dfs explores the subtree below the current state. The return value is true
// when the whole search must stop.
func (s *Solver) dfs(db DecisionBuilder, monitors []SearchMonitor, found, stopped *bool) bool {
	for _, m := range monitors {
		if err := m.PeriodicCheck(); err != nil {
			return true
		}
	}
	d := db.Next(s)
	if d == nil {
		s.solutions++
		*found = true
		cont := true
		for _, m := range monitors {
			if !m.AtSolution() {
				cont = false
			}
		}
		if !cont {
			*stopped = true
			return true
		}
		return false
	}
	mark, intervalMark := s.markTrail()
	s.branches++
	if d.Apply() == nil && s.Propagate() == nil {
		if s.dfs(db, monitors, found, stopped) {
			return true
		}
	} else {
		s.failures++
	}
	s.backtrackTo(mark, intervalMark)
	s.branches++
	if d.Refute() == nil && s.Propagate() == nil {
		if s.dfs(db, monitors, found, stopped) {
			return true
		}
	} else {
		s.failures++
	}
	s.backtrackTo(mark, intervalMark)
	return false
}

// SolveAndCollect runs a first-solution search, returns the values of `vars`
// in that solution and rewinds the solver completely. Unbound variables
// report their minimum.
func (s *Solver) SolveAndCollect(db DecisionBuilder, vars []*IntVar, monitors ...SearchMonitor) ([]int64, bool) {
	mark, intervalMark := s.markTrail()
	collector := &collectMonitor{vars: vars}
	found := s.Solve(db, append(append([]SearchMonitor(nil), monitors...), collector)...)
	s.backtrackTo(mark, intervalMark)
	if !found {
		return nil, false
	}
	return collector.values, true
}

type collectMonitor struct {
	SearchMonitorBase
	vars   []*IntVar
	values []int64
}

func (c *collectMonitor) AtSolution() bool {
	c.values = c.values[:0]
	for _, v := range c.vars {
		c.values = append(c.values, v.Min())
	}
	return false
}

// AssignVariables returns a decision builder binding `vars` in order, trying
// the smallest domain value first.
func AssignVariables(vars []*IntVar) DecisionBuilder {
	return &assignVariables{vars: vars}
}

type assignVariables struct {
	vars []*IntVar
}

func (b *assignVariables) Next(s *Solver) *Decision {
	for _, v := range b.vars {
		if v.Bound() {
			continue
		}
		v := v
		val := v.Min()
		return &Decision{
			Apply:  func() error { return v.SetValue(val) },
			Refute: func() error { return v.RemoveValue(val) },
		}
	}
	return nil
}

// SetValuesFromTargets returns a decision builder that drives each variable to
// its target value, backing off to the remaining domain when a target is
// infeasible. It is the finalization pass run after each improving solution.
func SetValuesFromTargets(vars []*IntVar, targets []int64) DecisionBuilder {
	return &setValuesFromTargets{vars: vars, targets: targets}
}

type setValuesFromTargets struct {
	vars    []*IntVar
	targets []int64
}

func (b *setValuesFromTargets) Next(s *Solver) *Decision {
	for i, v := range b.vars {
		if v.Bound() {
			continue
		}
		v := v
		target := b.targets[i]
		if target < v.Min() {
			target = v.Min()
		} else if target > v.Max() {
			target = v.Max()
		} else if val, ok := v.Domain().ValueAtOrAfter(target); ok {
			target = val
		}
		return &Decision{
			Apply:  func() error { return v.SetValue(target) },
			Refute: func() error { return v.RemoveValue(target) },
		}
	}
	return nil
}

// Compose chains decision builders: each one runs to completion before the
// next is consulted.
func Compose(dbs ...DecisionBuilder) DecisionBuilder {
	return &composite{dbs: dbs}
}

type composite struct {
	dbs []DecisionBuilder
}

func (c *composite) Next(s *Solver) *Decision {
	for _, db := range c.dbs {
		if d := db.Next(s); d != nil {
			return d
		}
	}
	return nil
}
