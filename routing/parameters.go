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
	"os"
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
	"gopkg.in/yaml.v3"
)

// FirstSolutionStrategy selects the filtered decision builder producing the
// initial solution.
type FirstSolutionStrategy int

// First-solution strategies.
const (
	// AutomaticStrategy resolves to GlobalCheapestInsertionStrategy.
	AutomaticStrategy FirstSolutionStrategy = iota
	// GlobalCheapestInsertionStrategy grows all routes in parallel, always
	// committing the globally cheapest insertion.
	GlobalCheapestInsertionStrategy
	// SequentialGlobalCheapestInsertionStrategy opens routes one at a time.
	SequentialGlobalCheapestInsertionStrategy
	// LocalCheapestInsertionStrategy inserts nodes in index order at their
	// cheapest position.
	LocalCheapestInsertionStrategy
	// CheapestAdditionStrategy extends route ends with the evaluator-cheapest
	// successor.
	CheapestAdditionStrategy
	// ComparatorCheapestAdditionStrategy extends route ends with the successor
	// preferred by a user comparator.
	ComparatorCheapestAdditionStrategy
	// SequentialSavingsStrategy builds routes one by one from the savings list.
	SequentialSavingsStrategy
	// ParallelSavingsStrategy grows and merges routes from the savings list.
	ParallelSavingsStrategy
	// ChristofidesStrategy shards a Christofides tour across the fleet.
	ChristofidesStrategy
)

// LocalSearchMetaheuristic supervises the local search acceptance policy.
type LocalSearchMetaheuristic int

// Metaheuristics.
const (
	// GreedyDescent accepts improving neighbors only.
	GreedyDescent LocalSearchMetaheuristic = iota
	// GuidedLocalSearch penalizes frequently used costly arcs.
	GuidedLocalSearch
	// SimulatedAnnealing accepts worsening neighbors with decaying probability.
	SimulatedAnnealing
	// TabuSearch forbids recently modified variables.
	TabuSearch
	// ObjectiveTabuSearch forbids recently seen objective values.
	ObjectiveTabuSearch
)

// SearchParameters control the search pipeline. The zero value is not usable;
// start from DefaultSearchParameters.
type SearchParameters struct {
	FirstSolution FirstSolutionStrategy
	Metaheuristic LocalSearchMetaheuristic

	// TimeLimit bounds the wall-clock solve duration. Nil means unlimited.
	TimeLimit *durationpb.Duration
	// SolutionLimit bounds the number of improving solutions. Zero means
	// unlimited.
	SolutionLimit int64
	// BranchLimit and FailureLimit bound the CP search effort.
	BranchLimit  int64
	FailureLimit int64

	// NoLNS disables the large-neighborhood operators.
	NoLNS bool
	// NoTSP disables the exact TSP-based operators.
	NoTSP bool

	// NeighborsRatio truncates insertion candidates to this fraction of the
	// nearest nodes per cost class. 1 keeps everything.
	NeighborsRatio float64
	// FarthestSeedsRatio seeds ⌊ratio·vehicles⌋ routes with farthest nodes
	// before global cheapest insertion.
	FarthestSeedsRatio float64
	// SavingsNeighborsRatio truncates the savings list per node.
	SavingsNeighborsRatio float64
	// SavingsArcCoefficient weighs the direct arc in the savings formula.
	SavingsArcCoefficient float64
	// SavingsAddReverseArcs symmetrizes the savings neighborhood.
	SavingsAddReverseArcs bool

	// GuidedLocalSearchLambda is the GLS penalty weight.
	GuidedLocalSearchLambda float64
	// SimulatedAnnealingInitialTemperature seeds the SA cooling schedule.
	SimulatedAnnealingInitialTemperature float64
	// TabuTenure is the number of iterations a move stays tabu.
	TabuTenure int

	// MaxLocalSearchIterations bounds the local-search loop. Zero means no
	// bound under GreedyDescent (the loop runs until no operator improves or a
	// limit trips) and 200 iterations under the other metaheuristics.
	MaxLocalSearchIterations int

	// OptimizeCumuls runs the cumul LP optimizer on the routes of the final
	// solution, for dimensions with cumul-dependent costs that have no breaks
	// and are not state-dependent. Intermediate solutions are not optimized.
	OptimizeCumuls bool

	// Seed fixes the random stream; two runs with identical parameters and
	// seed produce identical solutions.
	Seed int64
}

// DefaultSearchParameters returns the parameter set used when the caller
// passes none.
func DefaultSearchParameters() SearchParameters {
	return SearchParameters{
		FirstSolution:         AutomaticStrategy,
		Metaheuristic:         GreedyDescent,
		NeighborsRatio:        1.0,
		SavingsNeighborsRatio: 1.0,
		SavingsArcCoefficient: 1.0,

		GuidedLocalSearchLambda:              0.1,
		SimulatedAnnealingInitialTemperature: 100,
		TabuTenure:                           10,
		OptimizeCumuls:                       true,
	}
}

// TimeLimitDuration returns the configured time limit, or zero if unlimited.
func (p *SearchParameters) TimeLimitDuration() time.Duration {
	if p.TimeLimit == nil {
		return 0
	}
	return p.TimeLimit.AsDuration()
}

// yamlSearchParameters is the on-disk override schema. Unset fields keep the
// defaults.
type yamlSearchParameters struct {
	FirstSolution *string  `yaml:"first_solution"`
	Metaheuristic *string  `yaml:"metaheuristic"`
	TimeLimitMs   *int64   `yaml:"time_limit_ms"`
	SolutionLimit *int64   `yaml:"solution_limit"`
	BranchLimit   *int64   `yaml:"branch_limit"`
	FailureLimit  *int64   `yaml:"failure_limit"`
	NoLNS         *bool    `yaml:"no_lns"`
	NoTSP         *bool    `yaml:"no_tsp"`
	NeighborsRatio *float64 `yaml:"neighbors_ratio"`
	FarthestSeedsRatio *float64 `yaml:"farthest_seeds_ratio"`
	SavingsNeighborsRatio *float64 `yaml:"savings_neighbors_ratio"`
	SavingsArcCoefficient *float64 `yaml:"savings_arc_coefficient"`
	SavingsAddReverseArcs *bool    `yaml:"savings_add_reverse_arcs"`
	MaxLocalSearchIterations *int  `yaml:"max_local_search_iterations"`
	OptimizeCumuls *bool           `yaml:"optimize_cumuls"`
	Seed           *int64          `yaml:"seed"`
}

var firstSolutionNames = map[string]FirstSolutionStrategy{
	"automatic":                    AutomaticStrategy,
	"global_cheapest_insertion":    GlobalCheapestInsertionStrategy,
	"sequential_cheapest_insertion": SequentialGlobalCheapestInsertionStrategy,
	"local_cheapest_insertion":     LocalCheapestInsertionStrategy,
	"cheapest_addition":            CheapestAdditionStrategy,
	"comparator_cheapest_addition": ComparatorCheapestAdditionStrategy,
	"savings":                      SequentialSavingsStrategy,
	"parallel_savings":             ParallelSavingsStrategy,
	"christofides":                 ChristofidesStrategy,
}

var metaheuristicNames = map[string]LocalSearchMetaheuristic{
	"greedy_descent":      GreedyDescent,
	"guided_local_search": GuidedLocalSearch,
	"simulated_annealing": SimulatedAnnealing,
	"tabu_search":         TabuSearch,
	"objective_tabu":      ObjectiveTabuSearch,
}

// LoadSearchParametersFile reads a YAML override file on top of the defaults.
func LoadSearchParametersFile(path string) (SearchParameters, error) {
	params := DefaultSearchParameters()
	data, err := os.ReadFile(path)
	if err != nil {
		return params, fmt.Errorf("reading parameters file: %w", err)
	}
	if err := ApplySearchParametersYAML(&params, data); err != nil {
		return params, err
	}
	return params, nil
}

// ApplySearchParametersYAML applies YAML overrides to `params`.
func ApplySearchParametersYAML(params *SearchParameters, data []byte) error {
	var y yamlSearchParameters
	if err := yaml.Unmarshal(data, &y); err != nil {
		return fmt.Errorf("parsing parameters: %w", err)
	}
	if y.FirstSolution != nil {
		fs, ok := firstSolutionNames[*y.FirstSolution]
		if !ok {
			return fmt.Errorf("unknown first_solution strategy %q", *y.FirstSolution)
		}
		params.FirstSolution = fs
	}
	if y.Metaheuristic != nil {
		mh, ok := metaheuristicNames[*y.Metaheuristic]
		if !ok {
			return fmt.Errorf("unknown metaheuristic %q", *y.Metaheuristic)
		}
		params.Metaheuristic = mh
	}
	if y.TimeLimitMs != nil {
		params.TimeLimit = durationpb.New(time.Duration(*y.TimeLimitMs) * time.Millisecond)
	}
	if y.SolutionLimit != nil {
		params.SolutionLimit = *y.SolutionLimit
	}
	if y.BranchLimit != nil {
		params.BranchLimit = *y.BranchLimit
	}
	if y.FailureLimit != nil {
		params.FailureLimit = *y.FailureLimit
	}
	if y.NoLNS != nil {
		params.NoLNS = *y.NoLNS
	}
	if y.NoTSP != nil {
		params.NoTSP = *y.NoTSP
	}
	if y.NeighborsRatio != nil {
		params.NeighborsRatio = *y.NeighborsRatio
	}
	if y.FarthestSeedsRatio != nil {
		params.FarthestSeedsRatio = *y.FarthestSeedsRatio
	}
	if y.SavingsNeighborsRatio != nil {
		params.SavingsNeighborsRatio = *y.SavingsNeighborsRatio
	}
	if y.SavingsArcCoefficient != nil {
		params.SavingsArcCoefficient = *y.SavingsArcCoefficient
	}
	if y.SavingsAddReverseArcs != nil {
		params.SavingsAddReverseArcs = *y.SavingsAddReverseArcs
	}
	if y.MaxLocalSearchIterations != nil {
		params.MaxLocalSearchIterations = *y.MaxLocalSearchIterations
	}
	if y.OptimizeCumuls != nil {
		params.OptimizeCumuls = *y.OptimizeCumuls
	}
	if y.Seed != nil {
		params.Seed = *y.Seed
	}
	return nil
}

// Status is the state of the routing model after construction and solves.
type Status int

// Model states.
const (
	// NotSolved means no solve has run since the model was closed.
	NotSolved Status = iota
	// Success means the last solve found a solution.
	Success
	// Fail means the last solve found no solution.
	Fail
	// FailTimeout means the time limit was reached during the last solve; a
	// solution found before that point is still returned.
	FailTimeout
	// Invalid means the model failed validation at close.
	Invalid
)

// String returns a readable form of the status.
func (s Status) String() string {
	switch s {
	case NotSolved:
		return "ROUTING_NOT_SOLVED"
	case Success:
		return "ROUTING_SUCCESS"
	case Fail:
		return "ROUTING_FAIL"
	case FailTimeout:
		return "ROUTING_FAIL_TIMEOUT"
	default:
		return "ROUTING_INVALID"
	}
}
