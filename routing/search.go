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
	"math/rand"

	log "github.com/golang/glog"

	"github.com/opsolve/routing/cpsolver"
)

// Solve closes the model if needed and runs the search with default
// parameters. Returns nil when no solution was found; inspect Status for the
// reason.
func (m *Model) Solve() *cpsolver.Assignment {
	return m.SolveWithParameters(DefaultSearchParameters())
}

// SolveWithParameters runs the full pipeline: first solution via a filtered
// builder, then filter-based local search under the configured metaheuristic.
func (m *Model) SolveWithParameters(params SearchParameters) *cpsolver.Assignment {
	return m.solve(nil, params)
}

// SolveFromAssignmentWithParameters starts the local search from the given
// solution instead of running a first-solution heuristic.
func (m *Model) SolveFromAssignmentWithParameters(initial *cpsolver.Assignment, params SearchParameters) *cpsolver.Assignment {
	return m.solve(initial, params)
}

func (m *Model) solve(initial *cpsolver.Assignment, params SearchParameters) *cpsolver.Assignment {
	if !m.closed {
		if err := m.CloseModelWithParameters(params); err != nil {
			log.Errorf("close failed: %v", err)
			return nil
		}
	}
	if m.status == Invalid {
		return nil
	}
	limit := cpsolver.NewSearchLimit(m.solver, params.TimeLimitDuration(), params.BranchLimit, params.FailureLimit, params.SolutionLimit)
	limit.Start()

	var start []int64
	if initial != nil {
		var ok bool
		start, ok = m.nextsFromAssignment(initial)
		if !ok {
			m.status = Fail
			return nil
		}
	} else {
		filters := m.makeLocalSearchFilters()
		builder := m.makeFirstSolutionBuilder(params, filters, limit)
		if !builder.BuildSolution() {
			if limit.Crossed() && limit.TimeExceeded() {
				m.status = FailTimeout
			} else {
				m.status = Fail
			}
			return nil
		}
		start = make([]int64, m.size)
		committed := builder.Assignment()
		for i := 0; i < m.size; i++ {
			start[i] = committed.Value(m.nexts[i])
		}
	}
	if _, feasible := m.evaluateObjective(start, nil); !feasible {
		m.status = Fail
		return nil
	}

	best := m.localSearch(start, params, limit)
	assignment := m.buildSolutionAssignment(best, params)
	if assignment == nil {
		m.status = Fail
		return nil
	}
	if limit.Crossed() && limit.TimeExceeded() {
		m.status = FailTimeout
	} else {
		m.status = Success
	}
	m.bestAssignment = assignment
	return assignment
}

// BestAssignment returns the solution of the last successful solve.
func (m *Model) BestAssignment() *cpsolver.Assignment { return m.bestAssignment }

// makeLocalSearchFilters assembles the filter stack in evaluation order:
// cheap structural checks first, CP propagation last.
func (m *Model) makeLocalSearchFilters() []LocalSearchFilter {
	var fs []LocalSearchFilter
	if len(m.disjunctions) > 0 {
		fs = append(fs, NewNodeDisjunctionFilter(m))
	}
	hasAllowed := false
	for _, a := range m.allowedVehicles {
		if a != nil {
			hasAllowed = true
			break
		}
	}
	if hasAllowed {
		fs = append(fs, NewVehicleVarFilter(m))
	}
	if len(m.incompatibleTypes) > 0 {
		fs = append(fs, NewTypeIncompatibilityFilter(m))
	}
	if len(m.pickupDeliveryPairs) > 0 {
		fs = append(fs, NewPickupDeliveryFilter(m))
	}
	for _, d := range m.dimensions {
		fs = append(fs, NewPathCumulFilter(d))
		if d.HasBreakConstraints() {
			fs = append(fs, NewVehicleBreaksFilter(d))
		}
	}
	if m.hasAmortizedCosts {
		fs = append(fs, NewVehicleAmortizedCostFilter(m))
	}
	fs = append(fs, NewCPFeasibilityFilter(m))
	return fs
}

// makeFirstSolutionBuilder picks the builder for the strategy. Automatic
// prefers global cheapest insertion, the strongest default of the family.
func (m *Model) makeFirstSolutionBuilder(params SearchParameters, filters []LocalSearchFilter, limit *cpsolver.SearchLimit) FirstSolutionBuilder {
	strategy := params.FirstSolution
	if strategy == AutomaticStrategy {
		strategy = GlobalCheapestInsertionStrategy
	}
	var b FirstSolutionBuilder
	switch strategy {
	case GlobalCheapestInsertionStrategy:
		b = NewGlobalCheapestInsertionBuilder(m, filters, false, params.NeighborsRatio, params.FarthestSeedsRatio)
	case SequentialGlobalCheapestInsertionStrategy:
		b = NewGlobalCheapestInsertionBuilder(m, filters, true, params.NeighborsRatio, params.FarthestSeedsRatio)
	case LocalCheapestInsertionStrategy:
		b = NewLocalCheapestInsertionBuilder(m, filters)
	case CheapestAdditionStrategy:
		b = NewEvaluatorCheapestAdditionBuilder(m, filters, nil)
	case ComparatorCheapestAdditionStrategy:
		b = NewComparatorCheapestAdditionBuilder(m, filters, func(from, a, bb int) bool {
			return m.GetArcCostForVehicle(from, a, 0) < m.GetArcCostForVehicle(from, bb, 0)
		})
	case SequentialSavingsStrategy:
		b = NewSequentialSavingsBuilder(m, filters, params.SavingsNeighborsRatio, params.SavingsArcCoefficient, params.SavingsAddReverseArcs)
	case ParallelSavingsStrategy:
		b = NewParallelSavingsBuilder(m, filters, params.SavingsNeighborsRatio, params.SavingsArcCoefficient, params.SavingsAddReverseArcs)
	case ChristofidesStrategy:
		b = NewChristofidesBuilder(m, filters)
	default:
		b = NewGlobalCheapestInsertionBuilder(m, filters, false, params.NeighborsRatio, params.FarthestSeedsRatio)
	}
	type limitable interface{ SetLimit(*cpsolver.SearchLimit) }
	if l, ok := b.(limitable); ok {
		l.SetLimit(limit)
	}
	return b
}

// makeOperators assembles the neighborhood operator set under the parameter
// restrictions.
func (m *Model) makeOperators(params SearchParameters) []NeighborhoodOperator {
	kinds := []OperatorKind{OperatorRelocate, OperatorExchange, OperatorCross, OperatorTwoOpt, OperatorOrOpt}
	if len(m.pickupDeliveryPairs) > 0 {
		kinds = append(kinds,
			OperatorRelocatePair, OperatorLightRelocatePair, OperatorExchangePair,
			OperatorNodePairSwap, OperatorExchangeRelocatePair)
	}
	kinds = append(kinds, OperatorRelocateNeighbors, OperatorRelocateExpensiveChain)
	if len(m.disjunctions) > 0 {
		kinds = append(kinds,
			OperatorMakeActive, OperatorMakeInactive, OperatorMakeChainInactive,
			OperatorSwapActive, OperatorExtendedSwapActive)
	}
	if !params.NoTSP {
		kinds = append(kinds, OperatorTSPOpt, OperatorLinKernighan)
	}
	if !params.NoLNS {
		kinds = append(kinds, OperatorPathLNS, OperatorFullPathLNS)
		if !params.NoTSP {
			kinds = append(kinds, OperatorTSPLNS)
		}
		if len(m.disjunctions) > 0 {
			kinds = append(kinds, OperatorInactiveLNS)
		}
	}
	var ops []NeighborhoodOperator
	for _, k := range kinds {
		if op := NewOperator(m, k); op != nil {
			ops = append(ops, op)
		}
	}
	return ops
}

type arcKey struct{ from, to int64 }

// localSearch descends from `start` under the configured metaheuristic and
// returns the best solution found.
func (m *Model) localSearch(start []int64, params SearchParameters, limit *cpsolver.SearchLimit) []int64 {
	filters := m.makeLocalSearchFilters()
	operators := m.makeOperators(params)
	rng := rand.New(rand.NewSource(params.Seed))

	current := append([]int64(nil), start...)
	currentCost := m.costOf(current)
	best := append([]int64(nil), current...)
	bestCost := currentCost
	m.onImprovingSolution(best, limit)

	penalties := make(map[arcKey]int64) // guided local search
	temperature := params.SimulatedAnnealingInitialTemperature
	tabu := make(map[arcKey]int) // (index, value) -> expiry iteration
	tabuObjective := make(map[int64]int)

	maxIters := params.MaxLocalSearchIterations
	if maxIters == 0 {
		if params.Metaheuristic == GreedyDescent {
			maxIters = math.MaxInt
		} else {
			maxIters = 200
		}
	}
	improvingSolutions := int64(0)

	syncFilters := func() {
		a := m.assignmentFromNexts(current)
		for _, f := range filters {
			f.Synchronize(a)
		}
	}
	syncFilters()

	augmented := func(next []int64, cost int64) float64 {
		if params.Metaheuristic != GuidedLocalSearch {
			return float64(cost)
		}
		var penalty int64
		for i := 0; i < m.size; i++ {
			penalty += penalties[arcKey{int64(i), next[i]}]
		}
		return float64(cost) + params.GuidedLocalSearchLambda*float64(penalty)
	}

	for iter := 0; iter < maxIters; iter++ {
		if limit.Check() != nil {
			break
		}
		type candidate struct {
			next []int64
			cost int64
			aug  float64
		}
		var accepted *candidate
		currentAug := augmented(current, currentCost)

		for _, op := range operators {
			if accepted != nil {
				break
			}
			op.Reset(current)
			for {
				if limit.Check() != nil {
					break
				}
				cand, ok := op.MakeNextNeighbor()
				if !ok {
					break
				}
				delta := m.deltaAssignment(current, cand)
				if delta == nil {
					continue
				}
				rejected := false
				for _, f := range filters {
					if !f.Accept(delta) {
						rejected = true
						break
					}
				}
				if rejected {
					continue
				}
				cost, feasible := m.costOfChecked(cand)
				if !feasible {
					continue
				}
				aug := augmented(cand, cost)

				accept := false
				switch params.Metaheuristic {
				case GreedyDescent:
					accept = cost < currentCost
				case GuidedLocalSearch:
					accept = aug < currentAug
				case SimulatedAnnealing:
					delta := float64(cost - currentCost)
					accept = delta < 0 || (temperature > 1e-9 && rng.Float64() < math.Exp(-delta/temperature))
				case TabuSearch:
					accept = cost < bestCost || !m.moveIsTabu(current, cand, tabu, iter)
				case ObjectiveTabuSearch:
					if exp, seen := tabuObjective[cost]; seen && exp > iter && cost >= bestCost {
						accept = false
					} else {
						accept = cost < currentCost || cost < bestCost || rng.Float64() < 0.2
					}
				}
				if accept {
					accepted = &candidate{cand, cost, aug}
					break
				}
			}
		}

		if accepted == nil {
			switch params.Metaheuristic {
			case GuidedLocalSearch:
				m.penalizeArcs(current, penalties)
				continue
			case SimulatedAnnealing:
				temperature *= 0.5
				if temperature < 1e-6 {
					return best
				}
				continue
			default:
				return best
			}
		}

		if params.Metaheuristic == TabuSearch {
			for i := 0; i < m.size; i++ {
				if current[i] != accepted.next[i] {
					tabu[arcKey{int64(i), current[i]}] = iter + params.TabuTenure
				}
			}
		}
		if params.Metaheuristic == ObjectiveTabuSearch {
			tabuObjective[currentCost] = iter + params.TabuTenure
		}
		if params.Metaheuristic == SimulatedAnnealing {
			temperature *= 0.95
		}

		current = accepted.next
		currentCost = accepted.cost
		syncFilters()
		if currentCost < bestCost {
			best = append(best[:0], current...)
			bestCost = currentCost
			improvingSolutions++
			m.onImprovingSolution(best, limit)
			if params.SolutionLimit > 0 && improvingSolutions >= params.SolutionLimit {
				break
			}
		}
	}
	return best
}

// moveIsTabu reports whether the move restores any recently reverted value.
func (m *Model) moveIsTabu(current, cand []int64, tabu map[arcKey]int, iter int) bool {
	for i := 0; i < m.size; i++ {
		if current[i] != cand[i] {
			if exp, ok := tabu[arcKey{int64(i), cand[i]}]; ok && exp > iter {
				return true
			}
		}
	}
	return false
}

// penalizeArcs raises by one the GLS penalty of the maximum-utility arc of the
// current solution (the first one found on a tie).
func (m *Model) penalizeArcs(current []int64, penalties map[arcKey]int64) {
	vehicleOf, err := m.vehicleAndActiveFromNexts(current)
	if err != nil {
		return
	}
	bestUtility := -1.0
	var bestArc arcKey
	for i := 0; i < m.size; i++ {
		j := int(current[i])
		if j == i {
			continue
		}
		v := vehicleOf[i]
		if v < 0 {
			continue
		}
		cost := float64(m.GetArcCostForVehicle(i, j, v))
		key := arcKey{int64(i), current[i]}
		utility := cost / float64(1+penalties[key])
		if utility > bestUtility {
			bestUtility = utility
			bestArc = key
		}
	}
	if bestUtility >= 0 {
		penalties[bestArc]++
	}
}

// onImprovingSolution runs the solution finalizer: variables registered with
// AddVariableMinimizedByFinalizer/...Maximized... are driven to their targets
// under propagation, and the resulting values are kept for the final
// assignment.
func (m *Model) onImprovingSolution(best []int64, limit *cpsolver.SearchLimit) {
	if len(m.finalizerVars) == 0 {
		return
	}
	db := cpsolver.SetValuesFromTargets(m.finalizerVars, m.finalizerTargets)
	if values, ok := m.solver.SolveAndCollect(db, m.finalizerVars, limit); ok {
		m.finalizerValues = values
	}
}

// costOf returns the objective of a complete feasible nexts vector, dying on
// infeasibility; use costOfChecked during search.
func (m *Model) costOf(next []int64) int64 {
	cost, ok := m.evaluateObjective(next, nil)
	if !ok {
		log.Fatalf("costOf called on infeasible solution")
	}
	return cost.Total()
}

func (m *Model) costOfChecked(next []int64) (int64, bool) {
	cost, ok := m.evaluateObjective(next, nil)
	if !ok {
		return 0, false
	}
	return cost.Total(), true
}

// deltaAssignment builds the delta of changed next variables, or nil when
// the candidate equals the base.
func (m *Model) deltaAssignment(base, cand []int64) *cpsolver.Assignment {
	var delta *cpsolver.Assignment
	for i := 0; i < m.size; i++ {
		if base[i] != cand[i] {
			if delta == nil {
				delta = cpsolver.NewAssignment()
			}
			delta.SetValue(m.nexts[i], cand[i])
		}
	}
	return delta
}

// assignmentFromNexts records the next values into a fresh assignment.
func (m *Model) assignmentFromNexts(next []int64) *cpsolver.Assignment {
	a := cpsolver.NewAssignment()
	for i := 0; i < m.size; i++ {
		a.SetValue(m.nexts[i], next[i])
	}
	return a
}

// nextsFromAssignment extracts a complete nexts vector from an assignment.
func (m *Model) nextsFromAssignment(a *cpsolver.Assignment) ([]int64, bool) {
	next := make([]int64, m.size)
	for i := 0; i < m.size; i++ {
		if !a.Bound(m.nexts[i]) {
			return nil, false
		}
		next[i] = a.Value(m.nexts[i])
	}
	return next, true
}

// buildSolutionAssignment assembles the user-facing solution: next and
// vehicle variables, per-dimension cumuls (LP-optimized where profitable,
// break-aware where breaks exist) and the objective value.
func (m *Model) buildSolutionAssignment(best []int64, params SearchParameters) *cpsolver.Assignment {
	vehicleOf, err := m.vehicleAndActiveFromNexts(best)
	if err != nil {
		return nil
	}
	schedules, ok := m.computeSchedules(best, vehicleOf)
	if !ok {
		return nil
	}

	for _, d := range m.dimensions {
		cumul := schedules[d.index]
		if d.HasBreakConstraints() {
			for v := 0; v < m.vehicles; v++ {
				route := m.routeOfVehicle(best, v)
				if !d.scheduleRouteWithBreaks(v, route, cumul) {
					return nil
				}
			}
		} else if params.OptimizeCumuls && d.cumulDependentCost() && !d.IsStateDependent() {
			optimizer := m.cumulOptimizer(d)
			for v := 0; v < m.vehicles; v++ {
				route := m.routeOfVehicle(best, v)
				if optimized, _, okOpt := optimizer.OptimizeRouteCumuls(v, route); okOpt {
					for k, idx := range route {
						cumul[idx] = optimized[k]
					}
				}
			}
		}
	}

	a := cpsolver.NewAssignment()
	for i := 0; i < m.size; i++ {
		a.SetValue(m.nexts[i], best[i])
	}
	for i := 0; i < m.manager.NumIndices(); i++ {
		a.SetValue(m.vehicleVars[i], int64(vehicleOf[i]))
	}
	for i := 0; i < m.size; i++ {
		if int(best[i]) == i {
			a.SetValue(m.actives[i], 0)
		} else {
			a.SetValue(m.actives[i], 1)
		}
	}
	for _, d := range m.dimensions {
		cumul := schedules[d.index]
		for i := 0; i < m.manager.NumIndices(); i++ {
			if i < m.size && int(best[i]) == i && !m.IsStart(i) {
				continue
			}
			a.SetValue(d.cumuls[i], cumul[i])
		}
	}
	for k, v := range m.finalizerVars {
		if k < len(m.finalizerValues) {
			a.SetValue(v, m.finalizerValues[k])
		}
	}
	cost, feasible := m.evaluateObjective(best, schedules)
	if !feasible {
		return nil
	}
	a.SetValue(m.costVar, cost.Total())
	a.SetObjectiveValue(m.costVar, cost.Total())
	return a
}
