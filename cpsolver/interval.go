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
	log "github.com/golang/glog"
)

type intervalState struct {
	startMin, startMax       int64
	durationMin, durationMax int64
	mayPerform, mustPerform  bool
}

// IntervalVar is a scheduling variable with a start, a duration and an
// optional performed status. End bounds derive from start and duration.
type IntervalVar struct {
	s      *Solver
	index  int
	name   string
	state  intervalState
	demons []Demon
}

// NewIntervalVar creates a performed interval variable with start in
// `[startMin,startMax]` and duration in `[durationMin,durationMax]`.
func (s *Solver) NewIntervalVar(startMin, startMax, durationMin, durationMax int64, optional bool, name string) *IntervalVar {
	v := &IntervalVar{
		s:     s,
		index: len(s.intervals),
		name:  name,
		state: intervalState{
			startMin: startMin, startMax: startMax,
			durationMin: durationMin, durationMax: durationMax,
			mayPerform: true, mustPerform: !optional,
		},
	}
	s.intervals = append(s.intervals, v)
	return v
}

// NumIntervalVars returns the number of interval variables created on the solver.
func (s *Solver) NumIntervalVars() int { return len(s.intervals) }

// IntervalVarByIndex returns the interval variable with the given creation index.
func (s *Solver) IntervalVarByIndex(i int) *IntervalVar {
	if i < 0 || i >= len(s.intervals) {
		log.Fatalf("interval index %v out of range [0,%v)", i, len(s.intervals))
	}
	return s.intervals[i]
}

// Name returns the name of the interval variable.
func (v *IntervalVar) Name() string { return v.name }

// Index returns the creation index of the interval variable on its solver.
func (v *IntervalVar) Index() int { return v.index }

// StartMin returns the earliest start.
func (v *IntervalVar) StartMin() int64 { return v.state.startMin }

// StartMax returns the latest start.
func (v *IntervalVar) StartMax() int64 { return v.state.startMax }

// DurationMin returns the smallest duration.
func (v *IntervalVar) DurationMin() int64 { return v.state.durationMin }

// DurationMax returns the largest duration.
func (v *IntervalVar) DurationMax() int64 { return v.state.durationMax }

// EndMin returns the earliest end.
func (v *IntervalVar) EndMin() int64 { return v.state.startMin + v.state.durationMin }

// EndMax returns the latest end.
func (v *IntervalVar) EndMax() int64 { return v.state.startMax + v.state.durationMax }

// MustBePerformed returns true if the interval is known to be performed.
func (v *IntervalVar) MustBePerformed() bool { return v.state.mustPerform }

// MayBePerformed returns false if the interval is known to be unperformed.
func (v *IntervalVar) MayBePerformed() bool { return v.state.mayPerform }

// WhenAnything attaches a demon run on any modification of the interval.
func (v *IntervalVar) WhenAnything(d Demon) {
	v.demons = append(v.demons, d)
}

func (v *IntervalVar) save() {
	v.s.intervalTrail = append(v.s.intervalTrail, intervalTrailEntry{v, v.state})
}

func (v *IntervalVar) changed() {
	v.s.enqueue(v.demons)
}

// SetStartMin raises the earliest start to `m`.
func (v *IntervalVar) SetStartMin(m int64) error {
	if m <= v.state.startMin {
		return nil
	}
	if m > v.state.startMax {
		if v.state.mustPerform {
			return ErrFailed
		}
		return v.SetPerformed(false)
	}
	v.save()
	v.state.startMin = m
	v.changed()
	return nil
}

// SetStartMax lowers the latest start to `m`.
func (v *IntervalVar) SetStartMax(m int64) error {
	if m >= v.state.startMax {
		return nil
	}
	if m < v.state.startMin {
		if v.state.mustPerform {
			return ErrFailed
		}
		return v.SetPerformed(false)
	}
	v.save()
	v.state.startMax = m
	v.changed()
	return nil
}

// SetDurationMin raises the smallest duration to `m`.
func (v *IntervalVar) SetDurationMin(m int64) error {
	if m <= v.state.durationMin {
		return nil
	}
	if m > v.state.durationMax {
		if v.state.mustPerform {
			return ErrFailed
		}
		return v.SetPerformed(false)
	}
	v.save()
	v.state.durationMin = m
	v.changed()
	return nil
}

// SetEndMax lowers the latest end to `m`. The reduction lands on the start
// bound since end = start + duration.
func (v *IntervalVar) SetEndMax(m int64) error {
	return v.SetStartMax(m - v.state.durationMin)
}

// SetEndMin raises the earliest end to `m`.
func (v *IntervalVar) SetEndMin(m int64) error {
	return v.SetStartMin(m - v.state.durationMax)
}

// SetPerformed fixes the performed status of the interval.
func (v *IntervalVar) SetPerformed(performed bool) error {
	if performed {
		if !v.state.mayPerform {
			return ErrFailed
		}
		if v.state.mustPerform {
			return nil
		}
		v.save()
		v.state.mustPerform = true
	} else {
		if v.state.mustPerform {
			return ErrFailed
		}
		if !v.state.mayPerform {
			return nil
		}
		v.save()
		v.state.mayPerform = false
	}
	v.changed()
	return nil
}
