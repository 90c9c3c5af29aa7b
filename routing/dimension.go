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
	"math"
	"sort"

	log "github.com/golang/glog"

	"github.com/opsolve/routing/cpsolver"
)

// cumulCap bounds cumul and transit domains well below the int64 range so
// sums of a whole route cannot overflow.
const cumulCap = math.MaxInt64 / 4

// SoftBound is a soft cumul bound: exceeding Bound costs Coefficient per unit.
type SoftBound struct {
	Bound       int64
	Coefficient int64
}

// PiecewiseLinearFunction is a nondecreasing nonnegative piecewise-linear
// function given by breakpoints; it extends left flat and right with the last
// slope.
type PiecewiseLinearFunction struct {
	x []int64
	y []int64
}

// NewPiecewiseLinearFunction builds a function from breakpoints sorted by x.
// Y values must be nonnegative and nondecreasing.
func NewPiecewiseLinearFunction(x, y []int64) (*PiecewiseLinearFunction, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("breakpoints must be nonempty and aligned: %w", ErrInvalidParameter)
	}
	for i := 1; i < len(x); i++ {
		if x[i] <= x[i-1] || y[i] < y[i-1] {
			return nil, fmt.Errorf("breakpoints must be strictly increasing in x and nondecreasing in y: %w", ErrInvalidParameter)
		}
	}
	if y[0] < 0 {
		return nil, fmt.Errorf("values must be nonnegative: %w", ErrInvalidParameter)
	}
	return &PiecewiseLinearFunction{
		x: append([]int64(nil), x...),
		y: append([]int64(nil), y...),
	}, nil
}

// Value evaluates the function at `v`.
func (f *PiecewiseLinearFunction) Value(v int64) int64 {
	n := len(f.x)
	if v <= f.x[0] {
		return f.y[0]
	}
	if v >= f.x[n-1] {
		if n == 1 {
			return f.y[0]
		}
		slopeNum := f.y[n-1] - f.y[n-2]
		slopeDen := f.x[n-1] - f.x[n-2]
		return f.y[n-1] + (v-f.x[n-1])*slopeNum/slopeDen
	}
	i := sort.Search(n, func(i int) bool { return f.x[i] > v }) - 1
	slopeNum := f.y[i+1] - f.y[i]
	slopeDen := f.x[i+1] - f.x[i]
	return f.y[i] + (v-f.x[i])*slopeNum/slopeDen
}

// Dimension is a named quantity accumulated along routes. For each index it
// owns cumul, transit and slack variables chained by
// next(i)=j => cumul(j) = cumul(i) + transit(i) + slack(i).
type Dimension struct {
	model *Model
	index DimensionIndex
	name  string

	cumuls   []*cpsolver.IntVar
	transits []*cpsolver.IntVar
	slacks   []*cpsolver.IntVar

	vehicleCapacities []int64
	slackMax          int64
	fixStartCumulToZero bool

	// Transit evaluators are shared per class: vehicles with the same
	// registered callback id share an evaluator class.
	classEvaluators []CallbackIndex
	vehicleToClass  []int

	// Dependent dimensions evaluate transits from the base dimension's cumul.
	base                          *Dimension
	stateDependentClassEvaluators []CallbackIndex
	stateDependentVehicleToClass  []int

	globalSpanCostCoefficient   int64
	vehicleSpanCostCoefficients []int64
	vehicleSpanUpperBounds      []int64

	softUpperBounds []SoftBound
	softLowerBounds []SoftBound
	piecewiseCosts  []*PiecewiseLinearFunction

	breakIntervals [][]*cpsolver.IntervalVar
	// breakVisitTransits[v][i] is the duration a visit at index i blocks the
	// vehicle v timeline for break purposes.
	breakVisitTransits [][]int64

	// pickupToDeliveryLimits[pair] bounds cumul(delivery)-cumul(pickup).
	pickupToDeliveryLimits map[int]func(pickupAlt, deliveryAlt int) int64
}

func (m *Model) newDimension(name string, classEvaluators []CallbackIndex, vehicleToClass []int, slackMax int64, capacities []int64, fixStartCumulToZero bool) (*Dimension, error) {
	if _, ok := m.dimensionIndices[name]; ok {
		return nil, m.setErr(fmt.Errorf("dimension %q: %w", name, ErrDuplicateDimension))
	}
	for _, c := range capacities {
		if c < 0 {
			return nil, m.setErr(fmt.Errorf("dimension %q: negative capacity %v: %w", name, c, ErrInvalidParameter))
		}
	}
	if slackMax < 0 {
		return nil, m.setErr(fmt.Errorf("dimension %q: negative slack max %v: %w", name, slackMax, ErrInvalidParameter))
	}

	n := m.manager.NumIndices()
	d := &Dimension{
		model:               m,
		index:               DimensionIndex(len(m.dimensions)),
		name:                name,
		vehicleCapacities:   append([]int64(nil), capacities...),
		slackMax:            slackMax,
		fixStartCumulToZero: fixStartCumulToZero,
		classEvaluators:     classEvaluators,
		vehicleToClass:      vehicleToClass,
		vehicleSpanCostCoefficients: make([]int64, m.vehicles),
		vehicleSpanUpperBounds:      make([]int64, m.vehicles),
		softUpperBounds:             make([]SoftBound, n),
		softLowerBounds:             make([]SoftBound, n),
		piecewiseCosts:              make([]*PiecewiseLinearFunction, n),
		breakIntervals:              make([][]*cpsolver.IntervalVar, m.vehicles),
		breakVisitTransits:          make([][]int64, m.vehicles),
		pickupToDeliveryLimits:      make(map[int]func(int, int) int64),
	}
	var maxCapacity int64
	for _, c := range capacities {
		if c > maxCapacity {
			maxCapacity = c
		}
	}
	for v := range d.vehicleSpanUpperBounds {
		d.vehicleSpanUpperBounds[v] = cumulCap
	}

	d.cumuls = make([]*cpsolver.IntVar, n)
	for i := 0; i < n; i++ {
		d.cumuls[i] = m.solver.NewIntVar(0, maxCapacity, fmt.Sprintf("%sCumul%d", name, i))
	}
	d.transits = make([]*cpsolver.IntVar, m.size)
	d.slacks = make([]*cpsolver.IntVar, m.size)
	for i := 0; i < m.size; i++ {
		d.transits[i] = m.solver.NewIntVar(-cumulCap, cumulCap, fmt.Sprintf("%sTransit%d", name, i))
		d.slacks[i] = m.solver.NewIntVar(0, slackMax, fmt.Sprintf("%sSlack%d", name, i))
	}
	if fixStartCumulToZero {
		for v := 0; v < m.vehicles; v++ {
			if err := d.cumuls[m.starts[v]].SetValue(0); err != nil {
				return nil, m.setErr(fmt.Errorf("dimension %q: cannot fix start cumul to zero: %w", name, ErrInvalidParameter))
			}
		}
	}

	m.dimensionIndices[name] = d.index
	m.dimensions = append(m.dimensions, d)
	return d, nil
}

func (m *Model) vehicleEvaluatorClasses(evaluators []CallbackIndex) ([]CallbackIndex, []int) {
	classOf := make(map[CallbackIndex]int)
	var classes []CallbackIndex
	vehicleToClass := make([]int, len(evaluators))
	for v, e := range evaluators {
		c, ok := classOf[e]
		if !ok {
			c = len(classes)
			classOf[e] = c
			classes = append(classes, e)
		}
		vehicleToClass[v] = c
	}
	return classes, vehicleToClass
}

// AddDimension adds a dimension with one transit evaluator and one capacity
// shared by the whole fleet.
func (m *Model) AddDimension(evaluator CallbackIndex, slackMax, capacity int64, fixStartCumulToZero bool, name string) (*Dimension, error) {
	evaluators := make([]CallbackIndex, m.vehicles)
	for v := range evaluators {
		evaluators[v] = evaluator
	}
	capacities := make([]int64, m.vehicles)
	for v := range capacities {
		capacities[v] = capacity
	}
	return m.AddDimensionWithVehicleTransitAndCapacity(evaluators, slackMax, capacities, fixStartCumulToZero, name)
}

// AddDimensionWithVehicleTransits adds a dimension with per-vehicle transit
// evaluators and a shared capacity.
func (m *Model) AddDimensionWithVehicleTransits(evaluators []CallbackIndex, slackMax, capacity int64, fixStartCumulToZero bool, name string) (*Dimension, error) {
	capacities := make([]int64, m.vehicles)
	for v := range capacities {
		capacities[v] = capacity
	}
	return m.AddDimensionWithVehicleTransitAndCapacity(evaluators, slackMax, capacities, fixStartCumulToZero, name)
}

// AddDimensionWithVehicleCapacity adds a dimension with a shared transit
// evaluator and per-vehicle capacities.
func (m *Model) AddDimensionWithVehicleCapacity(evaluator CallbackIndex, slackMax int64, capacities []int64, fixStartCumulToZero bool, name string) (*Dimension, error) {
	evaluators := make([]CallbackIndex, m.vehicles)
	for v := range evaluators {
		evaluators[v] = evaluator
	}
	return m.AddDimensionWithVehicleTransitAndCapacity(evaluators, slackMax, capacities, fixStartCumulToZero, name)
}

// AddDimensionWithVehicleTransitAndCapacity adds a dimension with per-vehicle
// transit evaluators and capacities.
func (m *Model) AddDimensionWithVehicleTransitAndCapacity(evaluators []CallbackIndex, slackMax int64, capacities []int64, fixStartCumulToZero bool, name string) (*Dimension, error) {
	if err := m.checkOpen("AddDimension"); err != nil {
		return nil, err
	}
	if len(evaluators) != m.vehicles || len(capacities) != m.vehicles {
		return nil, m.setErr(fmt.Errorf("dimension %q: need %v evaluators and capacities: %w", name, m.vehicles, ErrInvalidParameter))
	}
	classes, vehicleToClass := m.vehicleEvaluatorClasses(evaluators)
	return m.newDimension(name, classes, vehicleToClass, slackMax, capacities, fixStartCumulToZero)
}

// AddConstantDimension adds a dimension accumulating `value` at each index.
func (m *Model) AddConstantDimension(value, capacity int64, fixStartCumulToZero bool, name string) (*Dimension, error) {
	return m.AddDimension(m.RegisterConstantTransit(value), 0, capacity, fixStartCumulToZero, name)
}

// AddVectorDimension adds a dimension accumulating `values[node]` at each node.
func (m *Model) AddVectorDimension(values []int64, capacity int64, fixStartCumulToZero bool, name string) (*Dimension, error) {
	return m.AddDimension(m.RegisterTransitVector(values), 0, capacity, fixStartCumulToZero, name)
}

// AddMatrixDimension adds a dimension accumulating `values[from][to]` on arcs.
func (m *Model) AddMatrixDimension(values [][]int64, capacity int64, fixStartCumulToZero bool, name string) (*Dimension, error) {
	return m.AddDimension(m.RegisterTransitMatrix(values), 0, capacity, fixStartCumulToZero, name)
}

// AddDimensionDependentDimensionWithVehicleCapacity adds a dimension whose
// transits are functions of the base dimension's cumuls. The base must exist
// already; a dimension may be based on itself by passing its own name.
func (m *Model) AddDimensionDependentDimensionWithVehicleCapacity(evaluators []CallbackIndex, baseName string, slackMax int64, capacities []int64, fixStartCumulToZero bool, name string) (*Dimension, error) {
	if err := m.checkOpen("AddDimensionDependentDimension"); err != nil {
		return nil, err
	}
	if len(evaluators) != m.vehicles || len(capacities) != m.vehicles {
		return nil, m.setErr(fmt.Errorf("dimension %q: need %v evaluators and capacities: %w", name, m.vehicles, ErrInvalidParameter))
	}
	var base *Dimension
	if baseName != name {
		b, err := m.GetDimension(baseName)
		if err != nil {
			return nil, m.setErr(fmt.Errorf("dimension %q: unknown base %q: %w", name, baseName, ErrInvalidParameter))
		}
		if b.base != nil && b.base != b {
			// Chains of dependent dimensions would allow cycles; only a direct
			// base or a self-loop is accepted.
			return nil, m.setErr(fmt.Errorf("dimension %q: base %q is itself dependent: %w", name, baseName, ErrInvalidParameter))
		}
		base = b
	}
	zeroTransit := m.RegisterConstantTransit(0)
	classEvaluators := make([]CallbackIndex, 1)
	classEvaluators[0] = zeroTransit
	vehicleToClass := make([]int, m.vehicles)
	d, err := m.newDimension(name, classEvaluators, vehicleToClass, slackMax, capacities, fixStartCumulToZero)
	if err != nil {
		return nil, err
	}
	if base == nil {
		base = d // self-based
	}
	d.base = base
	d.stateDependentClassEvaluators, d.stateDependentVehicleToClass = func() ([]CallbackIndex, []int) {
		classOf := make(map[CallbackIndex]int)
		var classes []CallbackIndex
		toClass := make([]int, len(evaluators))
		for v, e := range evaluators {
			c, ok := classOf[e]
			if !ok {
				c = len(classes)
				classOf[e] = c
				classes = append(classes, e)
			}
			toClass[v] = c
		}
		return classes, toClass
	}()
	return d, nil
}

// GetDimension returns the dimension registered under `name`.
func (m *Model) GetDimension(name string) (*Dimension, error) {
	i, ok := m.dimensionIndices[name]
	if !ok {
		return nil, fmt.Errorf("unknown dimension %q: %w", name, ErrInvalidParameter)
	}
	return m.dimensions[i], nil
}

// GetDimensionOrDie returns the dimension registered under `name` and dies if
// it does not exist.
func (m *Model) GetDimensionOrDie(name string) *Dimension {
	d, err := m.GetDimension(name)
	if err != nil {
		log.Fatalf("GetDimensionOrDie(%q): %v", name, err)
	}
	return d
}

// HasDimension returns true if a dimension with the name exists.
func (m *Model) HasDimension(name string) bool {
	_, ok := m.dimensionIndices[name]
	return ok
}

// GetAllDimensionNames returns the registered dimension names, sorted.
func (m *Model) GetAllDimensionNames() []string {
	names := make([]string, 0, len(m.dimensionIndices))
	for name := range m.dimensionIndices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dimensions returns the registered dimensions in creation order.
func (m *Model) Dimensions() []*Dimension { return m.dimensions }

// Name returns the dimension name.
func (d *Dimension) Name() string { return d.name }

// Index returns the dimension index on its model.
func (d *Dimension) Index() DimensionIndex { return d.index }

// Model returns the owning model.
func (d *Dimension) Model() *Model { return d.model }

// CumulVar returns the cumul variable of the index.
func (d *Dimension) CumulVar(index int) *cpsolver.IntVar { return d.cumuls[index] }

// TransitVar returns the transit variable of the index.
func (d *Dimension) TransitVar(index int) *cpsolver.IntVar { return d.transits[index] }

// SlackVar returns the slack variable of the index.
func (d *Dimension) SlackVar(index int) *cpsolver.IntVar { return d.slacks[index] }

// VehicleCapacity returns the capacity of the vehicle on the dimension.
func (d *Dimension) VehicleCapacity(vehicle int) int64 { return d.vehicleCapacities[vehicle] }

// SlackMax returns the slack upper bound of the dimension.
func (d *Dimension) SlackMax() int64 { return d.slackMax }

// IsSelfBased returns true for a dependent dimension based on itself.
func (d *Dimension) IsSelfBased() bool { return d.base == d }

// BaseDimension returns the base of a dependent dimension, or nil.
func (d *Dimension) BaseDimension() *Dimension { return d.base }

// IsStateDependent returns true if the dimension transits depend on a cumul.
func (d *Dimension) IsStateDependent() bool { return len(d.stateDependentClassEvaluators) > 0 }

// TransitEvaluatorClassOfVehicle returns the evaluator class of the vehicle.
func (d *Dimension) TransitEvaluatorClassOfVehicle(vehicle int) int {
	return d.vehicleToClass[vehicle]
}

// GetTransitValue evaluates the transit of the arc for the vehicle.
func (d *Dimension) GetTransitValue(from, to, vehicle int) int64 {
	return d.GetTransitValueFromClass(from, to, d.vehicleToClass[vehicle])
}

// GetTransitValueFromClass evaluates the transit of the arc for an evaluator
// class.
func (d *Dimension) GetTransitValueFromClass(from, to, class int) int64 {
	return d.model.registry.transit(d.classEvaluators[class], from, to)
}

// stateDependentTransitValue evaluates a dependent transit given the base
// cumul value at `from`.
func (d *Dimension) stateDependentTransitValue(baseCumul int64, from, to, vehicle int) int64 {
	class := d.stateDependentVehicleToClass[vehicle]
	t := d.model.registry.stateDependentTransit(d.stateDependentClassEvaluators[class], from, to)
	return t.Transit(baseCumul)
}

// SetSpanCostCoefficientForVehicle makes the vehicle pay
// coefficient·(cumul(end)-cumul(start)).
func (d *Dimension) SetSpanCostCoefficientForVehicle(coefficient int64, vehicle int) {
	if coefficient < 0 {
		log.Fatalf("span cost coefficient %v must be nonnegative", coefficient)
	}
	d.vehicleSpanCostCoefficients[vehicle] = coefficient
}

// SetSpanCostCoefficientForAllVehicles sets the span cost of the whole fleet.
func (d *Dimension) SetSpanCostCoefficientForAllVehicles(coefficient int64) {
	for v := range d.vehicleSpanCostCoefficients {
		d.SetSpanCostCoefficientForVehicle(coefficient, v)
	}
}

// GetSpanCostCoefficientForVehicle returns the span cost of the vehicle.
func (d *Dimension) GetSpanCostCoefficientForVehicle(vehicle int) int64 {
	return d.vehicleSpanCostCoefficients[vehicle]
}

// SetGlobalSpanCostCoefficient makes the model pay
// coefficient·(max_v cumul(end_v) − min_v cumul(start_v)).
func (d *Dimension) SetGlobalSpanCostCoefficient(coefficient int64) {
	if coefficient < 0 {
		log.Fatalf("global span cost coefficient %v must be nonnegative", coefficient)
	}
	d.globalSpanCostCoefficient = coefficient
}

// GlobalSpanCostCoefficient returns the global span coefficient.
func (d *Dimension) GlobalSpanCostCoefficient() int64 { return d.globalSpanCostCoefficient }

// SetSpanUpperBoundForVehicle bounds cumul(end)-cumul(start) for the vehicle.
func (d *Dimension) SetSpanUpperBoundForVehicle(upperBound int64, vehicle int) {
	if upperBound < 0 {
		log.Fatalf("span upper bound %v must be nonnegative", upperBound)
	}
	d.vehicleSpanUpperBounds[vehicle] = upperBound
}

// GetSpanUpperBoundForVehicle returns the span bound of the vehicle.
func (d *Dimension) GetSpanUpperBoundForVehicle(vehicle int) int64 {
	return d.vehicleSpanUpperBounds[vehicle]
}

// SetCumulVarSoftUpperBound charges coefficient·max(0, cumul(index)-bound).
func (d *Dimension) SetCumulVarSoftUpperBound(index int, bound, coefficient int64) {
	d.softUpperBounds[index] = SoftBound{Bound: bound, Coefficient: coefficient}
}

// HasCumulVarSoftUpperBound returns true if the index has a soft upper bound.
func (d *Dimension) HasCumulVarSoftUpperBound(index int) bool {
	return d.softUpperBounds[index].Coefficient != 0
}

// GetCumulVarSoftUpperBound returns the soft upper bound of the index.
func (d *Dimension) GetCumulVarSoftUpperBound(index int) SoftBound {
	return d.softUpperBounds[index]
}

// SetCumulVarSoftLowerBound charges coefficient·max(0, bound-cumul(index)).
func (d *Dimension) SetCumulVarSoftLowerBound(index int, bound, coefficient int64) {
	d.softLowerBounds[index] = SoftBound{Bound: bound, Coefficient: coefficient}
}

// HasCumulVarSoftLowerBound returns true if the index has a soft lower bound.
func (d *Dimension) HasCumulVarSoftLowerBound(index int) bool {
	return d.softLowerBounds[index].Coefficient != 0
}

// GetCumulVarSoftLowerBound returns the soft lower bound of the index.
func (d *Dimension) GetCumulVarSoftLowerBound(index int) SoftBound {
	return d.softLowerBounds[index]
}

// SetCumulVarPiecewiseLinearCost charges f(cumul(index)).
func (d *Dimension) SetCumulVarPiecewiseLinearCost(index int, f *PiecewiseLinearFunction) {
	d.piecewiseCosts[index] = f
}

// HasCumulVarPiecewiseLinearCost returns true if the index carries a
// piecewise-linear cumul cost.
func (d *Dimension) HasCumulVarPiecewiseLinearCost(index int) bool {
	return d.piecewiseCosts[index] != nil
}

// GetCumulVarPiecewiseLinearCost returns the piecewise cost of the index.
func (d *Dimension) GetCumulVarPiecewiseLinearCost(index int) *PiecewiseLinearFunction {
	return d.piecewiseCosts[index]
}

// SetBreakIntervalsOfVehicle installs the break sequence of a vehicle along
// with the per-index visit transits: while a node is visited, the interval
// [cumul(node), cumul(node)+visitTransit(node)) must not meet any break.
func (d *Dimension) SetBreakIntervalsOfVehicle(breaks []*cpsolver.IntervalVar, vehicle int, visitTransits []int64) error {
	if vehicle < 0 || vehicle >= d.model.vehicles {
		return d.model.setErr(fmt.Errorf("SetBreakIntervalsOfVehicle: vehicle %v: %w", vehicle, ErrInvalidParameter))
	}
	if len(visitTransits) != d.model.Size() {
		return d.model.setErr(fmt.Errorf("SetBreakIntervalsOfVehicle: need %v visit transits, got %v: %w", d.model.Size(), len(visitTransits), ErrInvalidParameter))
	}
	d.breakIntervals[vehicle] = append([]*cpsolver.IntervalVar(nil), breaks...)
	d.breakVisitTransits[vehicle] = append([]int64(nil), visitTransits...)
	return nil
}

// GetBreakIntervalsOfVehicle returns the break sequence of the vehicle.
func (d *Dimension) GetBreakIntervalsOfVehicle(vehicle int) []*cpsolver.IntervalVar {
	return d.breakIntervals[vehicle]
}

// HasBreakConstraints returns true if any vehicle has breaks on the dimension.
func (d *Dimension) HasBreakConstraints() bool {
	for _, b := range d.breakIntervals {
		if len(b) > 0 {
			return true
		}
	}
	return false
}

// SetPickupToDeliveryLimitFunctionForPair bounds
// cumul(delivery)-cumul(pickup) for the pair by the function of the selected
// alternative positions.
func (d *Dimension) SetPickupToDeliveryLimitFunctionForPair(limit func(pickupAlt, deliveryAlt int) int64, pair int) error {
	if pair < 0 || pair >= len(d.model.pickupDeliveryPairs) {
		return d.model.setErr(fmt.Errorf("SetPickupToDeliveryLimitFunctionForPair: pair %v: %w", pair, ErrInvalidParameter))
	}
	d.pickupToDeliveryLimits[pair] = limit
	return nil
}

// HasPickupToDeliveryLimits returns true if any pair carries a limit on the
// dimension.
func (d *Dimension) HasPickupToDeliveryLimits() bool {
	return len(d.pickupToDeliveryLimits) > 0
}

// GetPickupToDeliveryLimitForPair returns the limit for the pair given the
// selected alternative positions, or cumulCap when none is set.
func (d *Dimension) GetPickupToDeliveryLimitForPair(pair, pickupAlt, deliveryAlt int) int64 {
	f, ok := d.pickupToDeliveryLimits[pair]
	if !ok {
		return cumulCap
	}
	return f(pickupAlt, deliveryAlt)
}

// cumulDependentCost returns true when any cost term depends on the actual
// cumul values of the dimension, which makes the cumul LP optimizer useful.
func (d *Dimension) cumulDependentCost() bool {
	if d.globalSpanCostCoefficient > 0 {
		return true
	}
	for _, c := range d.vehicleSpanCostCoefficients {
		if c > 0 {
			return true
		}
	}
	for i := range d.softUpperBounds {
		if d.softUpperBounds[i].Coefficient != 0 || d.softLowerBounds[i].Coefficient != 0 {
			return true
		}
	}
	for _, f := range d.piecewiseCosts {
		if f != nil {
			return true
		}
	}
	return false
}
