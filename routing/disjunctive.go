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
	"math"
	"sort"

	"github.com/opsolve/routing/cpsolver"
)

const (
	minTime = math.MinInt64 / 4
	maxTime = math.MaxInt64 / 4
)

// Tasks is the disjunctive scheduling problem fed to DisjunctivePropagator:
// the first NumChainTasks tasks form a precedence chain (the route: visits
// and travels), the remaining tasks are free (the breaks). All tasks compete
// for the same unary resource.
type Tasks struct {
	NumChainTasks int
	StartMin      []int64
	StartMax      []int64
	DurationMin   []int64
	DurationMax   []int64
	EndMin        []int64
	EndMax        []int64
	IsPreemptible []bool
	// ForbiddenIntervals[i] lists closed intervals the task may not start in,
	// sorted and disjoint. Nil when unconstrained.
	ForbiddenIntervals [][]cpsolver.ClosedInterval
}

// Size returns the number of tasks.
func (t *Tasks) Size() int { return len(t.StartMin) }

// Clear resets the task set, keeping allocations.
func (t *Tasks) Clear() {
	t.NumChainTasks = 0
	t.StartMin = t.StartMin[:0]
	t.StartMax = t.StartMax[:0]
	t.DurationMin = t.DurationMin[:0]
	t.DurationMax = t.DurationMax[:0]
	t.EndMin = t.EndMin[:0]
	t.EndMax = t.EndMax[:0]
	t.IsPreemptible = t.IsPreemptible[:0]
	t.ForbiddenIntervals = t.ForbiddenIntervals[:0]
}

// DisjunctivePropagator filters the start and end bounds of Tasks. It is not
// a fixpoint: each Propagate call runs every subprocedure once forward, then
// Precedences, EdgeFinding and DetectablePrecedencesWithChain on the mirrored
// problem, then Precedences once more. ForbiddenIntervals runs forward only.
// All subprocedures return false on detected infeasibility.
type DisjunctivePropagator struct {
	tree thetaLambdaTree
}

// Propagate tightens StartMin/EndMin and lowers StartMax/EndMax.
// Returns false on infeasibility.
func (p *DisjunctivePropagator) Propagate(tasks *Tasks) bool {
	if !p.Precedences(tasks) {
		return false
	}
	if !p.EdgeFinding(tasks) {
		return false
	}
	if !p.DetectablePrecedencesWithChain(tasks) {
		return false
	}
	if !p.ForbiddenIntervals(tasks) {
		return false
	}
	// Second pass on the time-reversed problem filters the other direction.
	p.MirrorTasks(tasks)
	ok := p.Precedences(tasks) && p.EdgeFinding(tasks) && p.DetectablePrecedencesWithChain(tasks)
	p.MirrorTasks(tasks)
	if !ok {
		return false
	}
	return p.Precedences(tasks)
}

// Precedences propagates the chain: each chain task starts after its
// predecessor ends, and symmetrically for latest times.
func (p *DisjunctivePropagator) Precedences(tasks *Tasks) bool {
	n := tasks.Size()
	for i := 0; i < n; i++ {
		if !normalizeTask(tasks, i) {
			return false
		}
	}
	for i := 1; i < tasks.NumChainTasks; i++ {
		if tasks.EndMin[i-1] > tasks.StartMin[i] {
			tasks.StartMin[i] = tasks.EndMin[i-1]
			if !normalizeTask(tasks, i) {
				return false
			}
		}
	}
	for i := tasks.NumChainTasks - 2; i >= 0; i-- {
		if tasks.StartMax[i+1] < tasks.EndMax[i] {
			tasks.EndMax[i] = tasks.StartMax[i+1]
			if !normalizeTask(tasks, i) {
				return false
			}
		}
	}
	return true
}

// normalizeTask restores the start/duration/end consistency of one task.
func normalizeTask(tasks *Tasks, i int) bool {
	if e := tasks.StartMin[i] + tasks.DurationMin[i]; e > tasks.EndMin[i] {
		tasks.EndMin[i] = e
	}
	if s := tasks.EndMax[i] - tasks.DurationMin[i]; s < tasks.StartMax[i] {
		tasks.StartMax[i] = s
	}
	if s := tasks.EndMin[i] - tasks.DurationMax[i]; s > tasks.StartMin[i] {
		tasks.StartMin[i] = s
	}
	if e := tasks.StartMax[i] + tasks.DurationMax[i]; e < tasks.EndMax[i] {
		tasks.EndMax[i] = e
	}
	return tasks.StartMin[i] <= tasks.StartMax[i] && tasks.EndMin[i] <= tasks.EndMax[i]
}

// MirrorTasks reflects every task through the time origin, turning latest-time
// filtering into earliest-time filtering. The chain order is reversed so the
// precedence direction is preserved.
func (p *DisjunctivePropagator) MirrorTasks(tasks *Tasks) bool {
	n := tasks.Size()
	for i := 0; i < n; i++ {
		sMin, sMax := tasks.StartMin[i], tasks.StartMax[i]
		eMin, eMax := tasks.EndMin[i], tasks.EndMax[i]
		tasks.StartMin[i], tasks.StartMax[i] = -eMax, -eMin
		tasks.EndMin[i], tasks.EndMax[i] = -sMax, -sMin
	}
	// Reverse the chain prefix in place; free tasks keep their positions.
	for i, j := 0, tasks.NumChainTasks-1; i < j; i, j = i+1, j-1 {
		swapTasks(tasks, i, j)
	}
	return true
}

func swapTasks(tasks *Tasks, i, j int) {
	tasks.StartMin[i], tasks.StartMin[j] = tasks.StartMin[j], tasks.StartMin[i]
	tasks.StartMax[i], tasks.StartMax[j] = tasks.StartMax[j], tasks.StartMax[i]
	tasks.DurationMin[i], tasks.DurationMin[j] = tasks.DurationMin[j], tasks.DurationMin[i]
	tasks.DurationMax[i], tasks.DurationMax[j] = tasks.DurationMax[j], tasks.DurationMax[i]
	tasks.EndMin[i], tasks.EndMin[j] = tasks.EndMin[j], tasks.EndMin[i]
	tasks.EndMax[i], tasks.EndMax[j] = tasks.EndMax[j], tasks.EndMax[i]
	tasks.IsPreemptible[i], tasks.IsPreemptible[j] = tasks.IsPreemptible[j], tasks.IsPreemptible[i]
	if tasks.ForbiddenIntervals != nil {
		tasks.ForbiddenIntervals[i], tasks.ForbiddenIntervals[j] = tasks.ForbiddenIntervals[j], tasks.ForbiddenIntervals[i]
	}
}

// EdgeFinding runs Vilim's theta-lambda-tree edge finding over all tasks,
// detecting overloads and strengthening the start minimum of tasks that must
// run after a saturated prefix.
func (p *DisjunctivePropagator) EdgeFinding(tasks *Tasks) bool {
	n := tasks.Size()
	if n < 2 {
		return true
	}
	// Leaves sorted by start min.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return tasks.StartMin[order[a]] < tasks.StartMin[order[b]] })
	leafOf := make([]int, n)
	for pos, t := range order {
		leafOf[t] = pos
	}
	p.tree.init(n)
	for _, t := range order {
		p.tree.insertTheta(leafOf[t], tasks.StartMin[t], tasks.DurationMin[t])
	}

	// Tasks by decreasing end max.
	byEndMax := make([]int, n)
	copy(byEndMax, order)
	sort.Slice(byEndMax, func(a, b int) bool { return tasks.EndMax[byEndMax[a]] > tasks.EndMax[byEndMax[b]] })

	for qi := 0; qi < n-1; qi++ {
		j := byEndMax[qi]
		if p.tree.rootEct() > tasks.EndMax[j] {
			return false // overload
		}
		// j turns gray.
		p.tree.grayOut(leafOf[j], tasks.StartMin[j], tasks.DurationMin[j])
		next := byEndMax[qi+1]
		for p.tree.rootEctBar() > tasks.EndMax[next] {
			responsible := p.tree.responsible()
			if responsible < 0 {
				break
			}
			t := order[responsible]
			if ect := p.tree.rootEct(); ect > tasks.StartMin[t] {
				tasks.StartMin[t] = ect
				if !normalizeTask(tasks, t) {
					return false
				}
			}
			p.tree.remove(responsible)
		}
	}
	return true
}

// DetectablePrecedencesWithChain: a free task that cannot end before a chain
// task could start must precede it; the accumulated earliest completion of
// all such predecessors raises the chain task's start minimum.
func (p *DisjunctivePropagator) DetectablePrecedencesWithChain(tasks *Tasks) bool {
	n := tasks.Size()
	chain := tasks.NumChainTasks
	if chain == 0 || n == chain {
		return true
	}
	free := make([]int, 0, n-chain)
	for u := chain; u < n; u++ {
		free = append(free, u)
	}
	sort.Slice(free, func(a, b int) bool { return tasks.StartMin[free[a]] < tasks.StartMin[free[b]] })

	for t := 0; t < chain; t++ {
		if tasks.IsPreemptible[t] {
			continue // a preemptible chain task can overlap the free tasks
		}
		ect := int64(minTime)
		detected := false
		for _, u := range free {
			// t cannot run before u once t's earliest completion exceeds u's
			// latest start, so u must end before t starts.
			latestStartU := tasks.EndMax[u] - tasks.DurationMin[u]
			if tasks.StartMin[t]+tasks.DurationMin[t] <= latestStartU {
				continue
			}
			detected = true
			if tasks.StartMin[u] > ect {
				ect = tasks.StartMin[u]
			}
			ect += tasks.DurationMin[u]
		}
		if detected && ect > tasks.StartMin[t] {
			tasks.StartMin[t] = ect
			if !normalizeTask(tasks, t) {
				return false
			}
		}
	}
	return true
}

// ForbiddenIntervals pushes each task's start minimum past any forbidden
// interval its mandatory part would intersect.
func (p *DisjunctivePropagator) ForbiddenIntervals(tasks *Tasks) bool {
	for i, intervals := range tasks.ForbiddenIntervals {
		if len(intervals) == 0 {
			continue
		}
		for _, itv := range intervals {
			start := tasks.StartMin[i]
			end := start + tasks.DurationMin[i] - 1
			if tasks.DurationMin[i] == 0 {
				end = start
			}
			if start <= itv.End && end >= itv.Start {
				tasks.StartMin[i] = itv.End + 1
				if !normalizeTask(tasks, i) {
					return false
				}
			}
		}
	}
	return true
}

// thetaLambdaTree is a segment tree over tasks sorted by start minimum. Theta
// leaves carry (duration, ect); gray (lambda) leaves carry alternative values
// used to find the single gray task that would push the envelope furthest.
type thetaLambdaTree struct {
	size    int // leaves
	offset  int
	sumDur  []int64
	ect     []int64
	sumDurBar []int64
	ectBar    []int64
	respSum   []int // leaf responsible for sumDurBar
	respEct   []int // leaf responsible for ectBar
}

func (t *thetaLambdaTree) init(n int) {
	t.size = 1
	for t.size < n {
		t.size *= 2
	}
	t.offset = t.size - 1
	total := 2*t.size - 1
	t.sumDur = resizeInt64(t.sumDur, total)
	t.ect = resizeInt64(t.ect, total)
	t.sumDurBar = resizeInt64(t.sumDurBar, total)
	t.ectBar = resizeInt64(t.ectBar, total)
	t.respSum = resizeInt(t.respSum, total)
	t.respEct = resizeInt(t.respEct, total)
	for i := 0; i < total; i++ {
		t.sumDur[i] = 0
		t.ect[i] = minTime
		t.sumDurBar[i] = 0
		t.ectBar[i] = minTime
		t.respSum[i] = -1
		t.respEct[i] = -1
	}
}

func resizeInt64(s []int64, n int) []int64 {
	if cap(s) < n {
		return make([]int64, n)
	}
	return s[:n]
}

func resizeInt(s []int, n int) []int {
	if cap(s) < n {
		return make([]int, n)
	}
	return s[:n]
}

func (t *thetaLambdaTree) insertTheta(leaf int, startMin, duration int64) {
	node := t.offset + leaf
	t.sumDur[node] = duration
	t.ect[node] = startMin + duration
	t.sumDurBar[node] = duration
	t.ectBar[node] = startMin + duration
	t.respSum[node] = -1
	t.respEct[node] = -1
	t.refresh(node)
}

func (t *thetaLambdaTree) grayOut(leaf int, startMin, duration int64) {
	node := t.offset + leaf
	t.sumDur[node] = 0
	t.ect[node] = minTime
	t.sumDurBar[node] = duration
	t.ectBar[node] = startMin + duration
	t.respSum[node] = leaf
	t.respEct[node] = leaf
	t.refresh(node)
}

func (t *thetaLambdaTree) remove(leaf int) {
	node := t.offset + leaf
	t.sumDur[node] = 0
	t.ect[node] = minTime
	t.sumDurBar[node] = 0
	t.ectBar[node] = minTime
	t.respSum[node] = -1
	t.respEct[node] = -1
	t.refresh(node)
}

func (t *thetaLambdaTree) refresh(node int) {
	for node > 0 {
		node = (node - 1) / 2
		l, r := 2*node+1, 2*node+2
		t.sumDur[node] = t.sumDur[l] + t.sumDur[r]
		t.ect[node] = t.ect[r]
		if c := t.ect[l] + t.sumDur[r]; c > t.ect[node] {
			t.ect[node] = c
		}
		// sumDurBar: at most one gray task included.
		t.sumDurBar[node] = t.sumDurBar[l] + t.sumDur[r]
		t.respSum[node] = t.respSum[l]
		if c := t.sumDur[l] + t.sumDurBar[r]; c > t.sumDurBar[node] {
			t.sumDurBar[node] = c
			t.respSum[node] = t.respSum[r]
		}
		// ectBar: at most one gray task included.
		t.ectBar[node] = t.ectBar[r]
		t.respEct[node] = t.respEct[r]
		if c := t.ect[l] + t.sumDurBar[r]; c > t.ectBar[node] {
			t.ectBar[node] = c
			t.respEct[node] = t.respSum[r]
		}
		if c := t.ectBar[l] + t.sumDur[r]; c > t.ectBar[node] {
			t.ectBar[node] = c
			t.respEct[node] = t.respEct[l]
		}
	}
}

func (t *thetaLambdaTree) rootEct() int64    { return t.ect[0] }
func (t *thetaLambdaTree) rootEctBar() int64 { return t.ectBar[0] }

// responsible returns the gray leaf responsible for ectBar, or -1.
func (t *thetaLambdaTree) responsible() int { return t.respEct[0] }
