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
	"github.com/opsolve/routing/cpsolver"
)

// buildRouteTasks translates one vehicle's fixed route into a Tasks instance
// for the disjunctive propagator. Chain tasks alternate node visits
// (non-preemptible, duration = visit transit) and travels (preemptible,
// duration = transit minus visit transit); the vehicle's breaks follow as
// free tasks. The returned visitTask slice maps route positions to their
// chain task index.
func (d *Dimension) buildRouteTasks(v int, route []int, tasks *Tasks) (visitTask []int) {
	tasks.Clear()
	visits := d.breakVisitTransits[v]
	visitTask = make([]int, len(route))
	for pos, i := range route {
		var visit int64
		if i < d.model.size && visits != nil {
			visit = visits[i]
		}
		visitTask[pos] = len(tasks.StartMin)
		tasks.StartMin = append(tasks.StartMin, d.cumuls[i].Min())
		tasks.StartMax = append(tasks.StartMax, d.cumuls[i].Max())
		tasks.DurationMin = append(tasks.DurationMin, visit)
		tasks.DurationMax = append(tasks.DurationMax, visit)
		tasks.EndMin = append(tasks.EndMin, d.cumuls[i].Min()+visit)
		tasks.EndMax = append(tasks.EndMax, d.cumuls[i].Max()+visit)
		tasks.IsPreemptible = append(tasks.IsPreemptible, false)
		tasks.ForbiddenIntervals = append(tasks.ForbiddenIntervals, nil)

		if pos+1 < len(route) {
			j := route[pos+1]
			travel := d.GetTransitValue(i, j, v) - visit
			if travel < 0 {
				travel = 0
			}
			tasks.StartMin = append(tasks.StartMin, d.cumuls[i].Min()+visit)
			tasks.StartMax = append(tasks.StartMax, maxTime)
			tasks.DurationMin = append(tasks.DurationMin, travel)
			tasks.DurationMax = append(tasks.DurationMax, maxTime)
			tasks.EndMin = append(tasks.EndMin, d.cumuls[i].Min()+visit+travel)
			tasks.EndMax = append(tasks.EndMax, d.cumuls[j].Max())
			tasks.IsPreemptible = append(tasks.IsPreemptible, true)
			tasks.ForbiddenIntervals = append(tasks.ForbiddenIntervals, nil)
		}
	}
	tasks.NumChainTasks = len(tasks.StartMin)
	for _, b := range d.breakIntervals[v] {
		if !b.MayBePerformed() {
			continue
		}
		tasks.StartMin = append(tasks.StartMin, b.StartMin())
		tasks.StartMax = append(tasks.StartMax, b.StartMax())
		tasks.DurationMin = append(tasks.DurationMin, b.DurationMin())
		tasks.DurationMax = append(tasks.DurationMax, b.DurationMax())
		tasks.EndMin = append(tasks.EndMin, b.EndMin())
		tasks.EndMax = append(tasks.EndMax, b.EndMax())
		tasks.IsPreemptible = append(tasks.IsPreemptible, false)
		tasks.ForbiddenIntervals = append(tasks.ForbiddenIntervals, nil)
	}
	return visitTask
}

// routeBreaksFeasible checks one vehicle's fixed route against its breaks
// with the disjunctive propagator.
func (d *Dimension) routeBreaksFeasible(v int, route []int, propagator *DisjunctivePropagator, tasks *Tasks) bool {
	if len(d.breakIntervals[v]) == 0 {
		return true
	}
	d.buildRouteTasks(v, route, tasks)
	return propagator.Propagate(tasks)
}

// postBreakConstraints installs the CP-level break constraint of every
// vehicle carrying breaks on the dimension.
func (m *Model) postBreakConstraints(d *Dimension) {
	for v := 0; v < m.vehicles; v++ {
		if len(d.breakIntervals[v]) > 0 {
			m.solver.AddConstraint(&globalVehicleBreaksConstraint{d: d, vehicle: v})
		}
	}
}

// globalVehicleBreaksConstraint links a vehicle's route, its dimension cumuls
// and its break intervals: once the route is fixed it runs the disjunctive
// propagator and writes the filtered bounds back into the cumul variables.
type globalVehicleBreaksConstraint struct {
	d          *Dimension
	vehicle    int
	propagator DisjunctivePropagator
	tasks      Tasks
}

func (c *globalVehicleBreaksConstraint) Post() {
	m := c.d.model
	for i := 0; i < m.size; i++ {
		m.nexts[i].WhenDomain(c.propagate)
		c.d.cumuls[i].WhenDomain(c.propagate)
	}
}

func (c *globalVehicleBreaksConstraint) InitialPropagate() error {
	return c.propagate()
}

func (c *globalVehicleBreaksConstraint) propagate() error {
	m := c.d.model
	// Only act once the vehicle's route is a fixed chain.
	var route []int
	i := m.starts[c.vehicle]
	for {
		route = append(route, i)
		if m.IsEnd(i) {
			break
		}
		if !m.nexts[i].Bound() {
			return nil
		}
		j := int(m.nexts[i].Value())
		if j == i {
			return nil
		}
		if len(route) > m.manager.NumIndices() {
			return cpsolver.ErrFailed
		}
		i = j
	}
	visitTask := c.d.buildRouteTasks(c.vehicle, route, &c.tasks)
	if !c.propagator.Propagate(&c.tasks) {
		return cpsolver.ErrFailed
	}
	for pos, idx := range route {
		t := visitTask[pos]
		if err := c.d.cumuls[idx].SetMin(c.tasks.StartMin[t]); err != nil {
			return err
		}
		if err := c.d.cumuls[idx].SetMax(c.tasks.StartMax[t]); err != nil {
			return err
		}
	}
	return nil
}

// scheduleRouteWithBreaks computes earliest cumuls along a fixed route while
// keeping every visit clear of the vehicle's breaks. Breaks are placed at
// their earliest start. Returns false when a window, slack or capacity bound
// breaks.
func (d *Dimension) scheduleRouteWithBreaks(v int, route []int, cumulOut []int64) bool {
	m := d.model
	type window struct{ start, end int64 }
	var breaks []window
	for _, b := range d.breakIntervals[v] {
		if b.MustBePerformed() {
			breaks = append(breaks, window{b.StartMin(), b.StartMin() + b.DurationMin()})
		}
	}
	visits := d.breakVisitTransits[v]

	c := d.cumuls[route[0]].Min()
	cumulOut[route[0]] = c
	for pos := 0; pos+1 < len(route); pos++ {
		i, j := route[pos], route[pos+1]
		raw := cumulOut[i] + d.GetTransitValue(i, j, v)
		cj := raw
		if lo := d.cumuls[j].Min(); cj < lo {
			cj = lo
		}
		var visit int64
		if j < m.size && visits != nil {
			visit = visits[j]
		}
		// Push the arrival past any break overlapping the visit.
		for changed := true; changed; {
			changed = false
			for _, b := range breaks {
				if cj < b.end && cj+visit > b.start {
					cj = b.end
					changed = true
				}
			}
		}
		if cj-raw > d.slackMax {
			return false
		}
		if cj > d.cumuls[j].Max() || cj > d.vehicleCapacities[v] {
			return false
		}
		cumulOut[j] = cj
	}
	return true
}
