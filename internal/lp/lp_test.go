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

package lp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSolve_SimpleBounds(t *testing.T) {
	// Minimize x with 2 <= x <= 9.
	m := NewModel("bounds")
	x := m.MakeVar(2, 9)
	m.Objective().SetCoefficient(x, 1)
	require.Equal(t, Optimal, m.Solve())
	require.InDelta(t, 2.0, x.SolutionValue(), 1e-6)
	require.InDelta(t, 2.0, m.ObjectiveValue(), 1e-6)
}

func TestSolve_DifferenceConstraints(t *testing.T) {
	// Minimize end - start with end - start >= 7, start in [0,5], end in [0,20].
	m := NewModel("chain")
	start := m.MakeVar(0, 5)
	end := m.MakeVar(0, 20)
	c := m.MakeConstraint(7, Infinity())
	c.SetCoefficient(end, 1)
	c.SetCoefficient(start, -1)
	m.Objective().SetCoefficient(end, 1)
	m.Objective().SetCoefficient(start, -1)
	require.Equal(t, Optimal, m.Solve())
	require.InDelta(t, 7.0, m.ObjectiveValue(), 1e-6)
	require.InDelta(t, end.SolutionValue()-start.SolutionValue(), 7.0, 1e-6)
}

func TestSolve_SoftBoundSlack(t *testing.T) {
	// Minimize 3*excess with excess >= x - 10, x >= 14: excess must reach 4.
	m := NewModel("soft")
	x := m.MakeVar(14, 30)
	excess := m.MakeVar(0, Infinity())
	c := m.MakeConstraint(-10, Infinity())
	c.SetCoefficient(excess, 1)
	c.SetCoefficient(x, -1)
	m.Objective().SetCoefficient(excess, 3)
	require.Equal(t, Optimal, m.Solve())
	require.InDelta(t, 12.0, m.ObjectiveValue(), 1e-6)
	require.InDelta(t, 4.0, excess.SolutionValue(), 1e-6)
}

func TestSolve_Infeasible(t *testing.T) {
	// x <= 3 and x >= 5 cannot hold together.
	m := NewModel("infeasible")
	x := m.MakeVar(0, 3)
	c := m.MakeConstraint(5, Infinity())
	c.SetCoefficient(x, 1)
	m.Objective().SetCoefficient(x, 1)
	require.Equal(t, Infeasible, m.Solve())
}

func TestSolve_RangeConstraint(t *testing.T) {
	// Maximize-like: minimize -x with x + y <= 10, y >= 4.
	m := NewModel("range")
	x := m.MakeVar(0, Infinity())
	y := m.MakeVar(4, Infinity())
	c := m.MakeConstraint(0, 10)
	c.SetCoefficient(x, 1)
	c.SetCoefficient(y, 1)
	m.Objective().SetCoefficient(x, -1)
	require.Equal(t, Optimal, m.Solve())
	require.InDelta(t, 6.0, x.SolutionValue(), 1e-6)
}

func TestModel_ClearReuse(t *testing.T) {
	m := NewModel("reuse")
	x := m.MakeVar(1, 4)
	m.Objective().SetCoefficient(x, 1)
	require.Equal(t, Optimal, m.Solve())

	m.Clear()
	y := m.MakeVar(2, 8)
	m.Objective().SetCoefficient(y, 2)
	require.Equal(t, Optimal, m.Solve())
	require.InDelta(t, 4.0, m.ObjectiveValue(), 1e-6)
}
