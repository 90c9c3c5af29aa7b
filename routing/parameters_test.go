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
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultSearchParameters(t *testing.T) {
	p := DefaultSearchParameters()
	if p.FirstSolution != AutomaticStrategy {
		t.Errorf("FirstSolution = %v, want automatic", p.FirstSolution)
	}
	if p.Metaheuristic != GreedyDescent {
		t.Errorf("Metaheuristic = %v, want greedy descent", p.Metaheuristic)
	}
	if p.NeighborsRatio != 1.0 {
		t.Errorf("NeighborsRatio = %v, want 1.0", p.NeighborsRatio)
	}
	if got := p.TimeLimitDuration(); got != 0 {
		t.Errorf("TimeLimitDuration() = %v, want 0 (unlimited)", got)
	}
}

func TestApplySearchParametersYAML(t *testing.T) {
	p := DefaultSearchParameters()
	data := []byte(`
first_solution: parallel_savings
metaheuristic: guided_local_search
time_limit_ms: 1500
no_lns: true
savings_arc_coefficient: 1.2
seed: 99
`)
	if err := ApplySearchParametersYAML(&p, data); err != nil {
		t.Fatalf("ApplySearchParametersYAML returned %v", err)
	}
	if p.FirstSolution != ParallelSavingsStrategy {
		t.Errorf("FirstSolution = %v, want parallel savings", p.FirstSolution)
	}
	if p.Metaheuristic != GuidedLocalSearch {
		t.Errorf("Metaheuristic = %v, want GLS", p.Metaheuristic)
	}
	if got := p.TimeLimitDuration(); got != 1500*time.Millisecond {
		t.Errorf("TimeLimitDuration() = %v, want 1.5s", got)
	}
	if !p.NoLNS {
		t.Error("NoLNS = false, want true")
	}
	if p.SavingsArcCoefficient != 1.2 {
		t.Errorf("SavingsArcCoefficient = %v, want 1.2", p.SavingsArcCoefficient)
	}
	if p.Seed != 99 {
		t.Errorf("Seed = %v, want 99", p.Seed)
	}
	// Untouched fields keep their defaults.
	if p.NeighborsRatio != 1.0 {
		t.Errorf("NeighborsRatio = %v, want default 1.0", p.NeighborsRatio)
	}
}

func TestApplySearchParametersYAML_Unknown(t *testing.T) {
	p := DefaultSearchParameters()
	if err := ApplySearchParametersYAML(&p, []byte("first_solution: teleport")); err == nil {
		t.Error("unknown strategy accepted, want error")
	}
	if err := ApplySearchParametersYAML(&p, []byte("metaheuristic: magic")); err == nil {
		t.Error("unknown metaheuristic accepted, want error")
	}
	if err := ApplySearchParametersYAML(&p, []byte("::notyaml")); err == nil {
		t.Error("malformed YAML accepted, want error")
	}
}

func TestLoadSearchParametersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	if err := os.WriteFile(path, []byte("solution_limit: 5\n"), 0o644); err != nil {
		t.Fatalf("WriteFile returned %v", err)
	}
	p, err := LoadSearchParametersFile(path)
	if err != nil {
		t.Fatalf("LoadSearchParametersFile returned %v", err)
	}
	if p.SolutionLimit != 5 {
		t.Errorf("SolutionLimit = %v, want 5", p.SolutionLimit)
	}
	if _, err := LoadSearchParametersFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file accepted, want error")
	}
}

func TestStatusString(t *testing.T) {
	testCases := []struct {
		status Status
		want   string
	}{
		{NotSolved, "ROUTING_NOT_SOLVED"},
		{Success, "ROUTING_SUCCESS"},
		{Fail, "ROUTING_FAIL"},
		{FailTimeout, "ROUTING_FAIL_TIMEOUT"},
		{Invalid, "ROUTING_INVALID"},
	}
	for _, tc := range testCases {
		if got := tc.status.String(); got != tc.want {
			t.Errorf("String(%d) = %v, want %v", tc.status, got, tc.want)
		}
	}
}
