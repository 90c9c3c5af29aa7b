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

import (
	"errors"
	"time"
)

// ErrLimitCrossed is reported by SearchLimit.PeriodicCheck once any configured
// limit has been crossed.
var ErrLimitCrossed = errors.New("search limit crossed")

// SearchLimit aborts the search once any of its configured bounds is crossed.
// A zero bound means unlimited. The limit is a SearchMonitor and may also be
// consulted directly via Check from non-CP search loops.
type SearchLimit struct {
	SearchMonitorBase

	solver *Solver

	// Time bounds the wall-clock duration of the search.
	Time time.Duration
	// Branches bounds the number of branches explored.
	Branches int64
	// Failures bounds the number of failures.
	Failures int64
	// Solutions bounds the number of solutions found.
	Solutions int64

	deadline       time.Time
	startBranches  int64
	startFailures  int64
	startSolutions int64
	crossed        bool
	timeExceeded   bool
}

// NewSearchLimit returns a limit attached to the solver. Zero fields are
// unlimited.
func NewSearchLimit(s *Solver, duration time.Duration, branches, failures, solutions int64) *SearchLimit {
	return &SearchLimit{
		solver:    s,
		Time:      duration,
		Branches:  branches,
		Failures:  failures,
		Solutions: solutions,
	}
}

// EnterSearch implements SearchMonitor.
func (l *SearchLimit) EnterSearch() {
	if l.Time > 0 && l.deadline.IsZero() {
		l.deadline = time.Now().Add(l.Time)
	}
	l.startBranches = l.solver.Branches()
	l.startFailures = l.solver.Failures()
	l.startSolutions = l.solver.Solutions()
}

// PeriodicCheck implements SearchMonitor.
func (l *SearchLimit) PeriodicCheck() error {
	return l.Check()
}

// Check returns ErrLimitCrossed once a bound has been crossed. Once crossed,
// the limit stays crossed.
func (l *SearchLimit) Check() error {
	if l.crossed {
		return ErrLimitCrossed
	}
	if l.Time > 0 && !l.deadline.IsZero() && time.Now().After(l.deadline) {
		l.crossed = true
		l.timeExceeded = true
		return ErrLimitCrossed
	}
	if l.Branches > 0 && l.solver.Branches()-l.startBranches >= l.Branches {
		l.crossed = true
		return ErrLimitCrossed
	}
	if l.Failures > 0 && l.solver.Failures()-l.startFailures >= l.Failures {
		l.crossed = true
		return ErrLimitCrossed
	}
	if l.Solutions > 0 && l.solver.Solutions()-l.startSolutions >= l.Solutions {
		l.crossed = true
		return ErrLimitCrossed
	}
	return nil
}

// Start arms the wall-clock deadline without entering a CP search. Non-CP
// search loops call this once before polling Check.
func (l *SearchLimit) Start() {
	if l.Time > 0 {
		l.deadline = time.Now().Add(l.Time)
	}
	l.startBranches = l.solver.Branches()
	l.startFailures = l.solver.Failures()
	l.startSolutions = l.solver.Solutions()
}

// Crossed returns true once any bound has been crossed.
func (l *SearchLimit) Crossed() bool { return l.crossed }

// TimeExceeded returns true if the crossed bound was the wall-clock limit.
func (l *SearchLimit) TimeExceeded() bool { return l.timeExceeded }
