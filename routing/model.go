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

// Package routing models and solves vehicle routing problems: a fleet of
// vehicles, a node set, per-arc costs, capacity-like dimensions accumulated
// along routes, optional nodes grouped in disjunctions and pickup-and-delivery
// coupling. Solutions are produced by filtered first-solution heuristics
// followed by constraint-programming-backed local search.
package routing

import (
	"errors"
	"fmt"

	log "github.com/golang/glog"

	"github.com/opsolve/routing/cpsolver"
)

// Sentinel errors of the open-phase API.
var (
	// ErrModelClosed is returned by mutations attempted after CloseModel.
	ErrModelClosed = errors.New("model is closed")
	// ErrDuplicateDimension is returned when a dimension name is reused.
	ErrDuplicateDimension = errors.New("dimension already exists")
	// ErrInvalidParameter is returned on out-of-range arguments.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// NoPenalty marks a disjunction as hard: exactly MaxCardinality of its
// indices must be active.
const NoPenalty int64 = -1

// NoDisjunction is the absent disjunction index.
const NoDisjunction DisjunctionIndex = -1

// DisjunctionIndex identifies a disjunction on the model.
type DisjunctionIndex int

// DimensionIndex identifies a dimension on the model.
type DimensionIndex int

// CostClassIndex identifies a cost class computed at close.
type CostClassIndex int

// VehicleClassIndex identifies a vehicle class computed at close.
type VehicleClassIndex int

// PickupAndDeliveryPolicy constrains the relative order of pickups and
// deliveries on one vehicle.
type PickupAndDeliveryPolicy int

// Pickup-and-delivery policies.
const (
	// PickupAndDeliveryAny enforces precedence only.
	PickupAndDeliveryAny PickupAndDeliveryPolicy = iota
	// PickupAndDeliveryLIFO enforces stack order: deliveries happen in reverse
	// pickup order.
	PickupAndDeliveryLIFO
	// PickupAndDeliveryFIFO enforces queue order: deliveries happen in pickup
	// order.
	PickupAndDeliveryFIFO
)

// Disjunction is a set of indices of which at most (or exactly when the
// penalty is NoPenalty) MaxCardinality may be active. Dropping an index costs
// Penalty.
type Disjunction struct {
	Indices        []int
	Penalty        int64
	MaxCardinality int
}

// PickupDeliveryPair couples pickup alternatives with delivery alternatives:
// one pickup and one delivery must be served by the same vehicle, pickup
// first.
type PickupDeliveryPair struct {
	PickupAlternatives   []int
	DeliveryAlternatives []int
}

// Model is a vehicle routing problem instance and its search state. Build the
// model while open (register callbacks, add dimensions and disjunctions), then
// CloseModel freezes the network and Solve runs the search.
type Model struct {
	solver  *cpsolver.Solver
	manager *IndexManager

	status Status
	closed bool
	err    error

	size     int
	vehicles int
	starts   []int
	ends     []int

	nexts       []*cpsolver.IntVar
	vehicleVars []*cpsolver.IntVar
	actives     []*cpsolver.IntVar
	costVar     *cpsolver.IntVar

	varToNextIndex map[*cpsolver.IntVar]int

	registry *callbackRegistry

	arcCostEvaluators  []CallbackIndex
	fixedCosts         []int64
	amortizedLinear    []int64
	amortizedQuadratic []int64
	hasAmortizedCosts  bool

	costClasses           []CostClass
	costClassOfVehicle    []CostClassIndex
	vehicleClasses        []VehicleClass
	vehicleClassOfVehicle []VehicleClassIndex
	costsHomogeneous      bool
	costCache             []costCacheElement

	dimensions       []*Dimension
	dimensionIndices map[string]DimensionIndex

	disjunctions        []Disjunction
	indexToDisjunctions [][]DisjunctionIndex

	pickupDeliveryPairs []PickupDeliveryPair
	pickupPairOf        []int // pair index of a pickup alternative, -1 otherwise
	deliveryPairOf      []int
	pdPolicies          []PickupAndDeliveryPolicy

	visitTypes        []int
	incompatibleTypes map[int]map[int]bool

	sameVehicleGroupOf   []int
	numSameVehicleGroups int
	sameVehicleCost      int64

	allowedVehicles []map[int]bool

	finalizerVars    []*cpsolver.IntVar
	finalizerTargets []int64
	finalizerValues  []int64

	locks [][]int

	cumulOptimizers map[DimensionIndex]*RouteDimensionCumulOptimizer

	bestAssignment *cpsolver.Assignment
}

// NewModel creates a model over the index manager. Variables are created
// immediately; classes and the compiled objective are built by CloseModel.
func NewModel(manager *IndexManager) *Model {
	n := manager.NumIndices()
	vehicles := manager.NumVehicles()
	size := manager.NumUniqueIndices()

	m := &Model{
		solver:           cpsolver.NewSolver("routing"),
		manager:          manager,
		status:           NotSolved,
		size:             size,
		vehicles:         vehicles,
		registry:         newCallbackRegistry(),
		dimensionIndices: make(map[string]DimensionIndex),
		varToNextIndex:   make(map[*cpsolver.IntVar]int),
	}

	m.starts = make([]int, vehicles)
	m.ends = make([]int, vehicles)
	for v := 0; v < vehicles; v++ {
		m.starts[v] = manager.VehicleStart(v)
		m.ends[v] = manager.VehicleEnd(v)
	}

	m.nexts = make([]*cpsolver.IntVar, size)
	for i := 0; i < size; i++ {
		m.nexts[i] = m.solver.NewIntVar(0, int64(n-1), fmt.Sprintf("Nexts%d", i))
		m.varToNextIndex[m.nexts[i]] = i
	}
	m.vehicleVars = make([]*cpsolver.IntVar, n)
	for i := 0; i < n; i++ {
		m.vehicleVars[i] = m.solver.NewIntVar(-1, int64(vehicles-1), fmt.Sprintf("Vehicles%d", i))
	}
	m.actives = make([]*cpsolver.IntVar, size)
	for i := 0; i < size; i++ {
		m.actives[i] = m.solver.NewIntVar(0, 1, fmt.Sprintf("Active%d", i))
	}
	// Vehicle terminals are pinned: starts are always active and both ends of
	// a route belong to their vehicle.
	for v := 0; v < vehicles; v++ {
		mustSet(m.actives[m.starts[v]].SetValue(1))
		mustSet(m.vehicleVars[m.starts[v]].SetValue(int64(v)))
		mustSet(m.vehicleVars[m.ends[v]].SetValue(int64(v)))
	}
	// A next variable never points at a start (starts have no predecessor).
	for i := 0; i < size; i++ {
		for v := 0; v < vehicles; v++ {
			if m.starts[v] != i {
				mustSet(m.nexts[i].RemoveValue(int64(m.starts[v])))
			}
		}
	}

	m.arcCostEvaluators = make([]CallbackIndex, vehicles)
	for v := range m.arcCostEvaluators {
		m.arcCostEvaluators[v] = NoCallback
	}
	m.fixedCosts = make([]int64, vehicles)
	m.amortizedLinear = make([]int64, vehicles)
	m.amortizedQuadratic = make([]int64, vehicles)
	m.pdPolicies = make([]PickupAndDeliveryPolicy, vehicles)

	m.indexToDisjunctions = make([][]DisjunctionIndex, n)
	m.visitTypes = make([]int, n)
	for i := range m.visitTypes {
		m.visitTypes[i] = -1
	}
	m.incompatibleTypes = make(map[int]map[int]bool)
	m.pickupPairOf = make([]int, n)
	m.deliveryPairOf = make([]int, n)
	for i := 0; i < n; i++ {
		m.pickupPairOf[i] = -1
		m.deliveryPairOf[i] = -1
	}
	m.sameVehicleGroupOf = make([]int, n)
	for i := range m.sameVehicleGroupOf {
		m.sameVehicleGroupOf[i] = -1
	}
	m.allowedVehicles = make([]map[int]bool, n)
	m.locks = make([][]int, vehicles)
	m.costCache = make([]costCacheElement, n)
	for i := range m.costCache {
		m.costCache[i].costClass = -1
	}
	return m
}

func mustSet(err error) {
	if err != nil {
		log.Fatalf("initial domain reduction failed: %v", err)
	}
}

// Solver returns the underlying CP solver.
func (m *Model) Solver() *cpsolver.Solver { return m.solver }

// Manager returns the index manager of the model.
func (m *Model) Manager() *IndexManager { return m.manager }

// Size returns the number of next variables: the total index universe minus
// the vehicle ends.
func (m *Model) Size() int { return m.size }

// Vehicles returns the number of vehicles.
func (m *Model) Vehicles() int { return m.vehicles }

// Nodes returns the number of problem nodes.
func (m *Model) Nodes() int { return m.manager.NumNodes() }

// Start returns the start index of the vehicle.
func (m *Model) Start(vehicle int) int { return m.starts[vehicle] }

// End returns the end index of the vehicle.
func (m *Model) End(vehicle int) int { return m.ends[vehicle] }

// IsStart returns true if the index is a vehicle start.
func (m *Model) IsStart(index int) bool {
	for _, s := range m.starts {
		if s == index {
			return true
		}
	}
	return false
}

// IsEnd returns true if the index is a vehicle end.
func (m *Model) IsEnd(index int) bool { return index >= m.size }

// VehicleOfStart returns the vehicle whose start is `index`, or -1.
func (m *Model) VehicleOfStart(index int) int {
	for v, s := range m.starts {
		if s == index {
			return v
		}
	}
	return -1
}

// VehicleOfEnd returns the vehicle whose end is `index`, or -1.
func (m *Model) VehicleOfEnd(index int) int {
	for v, e := range m.ends {
		if e == index {
			return v
		}
	}
	return -1
}

// NextVar returns the successor variable of the index.
func (m *Model) NextVar(index int) *cpsolver.IntVar { return m.nexts[index] }

// VehicleVar returns the vehicle variable of the index.
func (m *Model) VehicleVar(index int) *cpsolver.IntVar { return m.vehicleVars[index] }

// ActiveVar returns the activity variable of the index.
func (m *Model) ActiveVar(index int) *cpsolver.IntVar { return m.actives[index] }

// CostVar returns the compiled objective variable. Nil until CloseModel.
func (m *Model) CostVar() *cpsolver.IntVar { return m.costVar }

// Status returns the model status.
func (m *Model) Status() Status { return m.status }

// Closed returns true once CloseModel has run.
func (m *Model) Closed() bool { return m.closed }

func (m *Model) setErr(err error) error {
	if m.err == nil {
		m.err = err
	}
	log.Errorf("routing model: %v", err)
	return err
}

func (m *Model) checkOpen(op string) error {
	if m.closed {
		return m.setErr(fmt.Errorf("%s: %w", op, ErrModelClosed))
	}
	return nil
}

func (m *Model) checkIndex(op string, index int) error {
	if index < 0 || index >= m.manager.NumIndices() {
		return m.setErr(fmt.Errorf("%s: index %v out of range [0,%v): %w", op, index, m.manager.NumIndices(), ErrInvalidParameter))
	}
	return nil
}

// RegisterTransitCallback registers an arc transit callback and returns its id.
func (m *Model) RegisterTransitCallback(cb TransitCallback) CallbackIndex {
	if m.closed {
		log.Fatalf("RegisterTransitCallback on closed model")
	}
	return m.registry.registerTransit(cb)
}

// RegisterUnaryTransitCallback registers a source-only transit callback.
func (m *Model) RegisterUnaryTransitCallback(cb UnaryTransitCallback) CallbackIndex {
	if m.closed {
		log.Fatalf("RegisterUnaryTransitCallback on closed model")
	}
	return m.registry.registerUnaryTransit(cb)
}

// RegisterStateDependentTransitCallback registers a transit depending on a
// parent dimension cumul.
func (m *Model) RegisterStateDependentTransitCallback(cb StateDependentTransitCallback) CallbackIndex {
	if m.closed {
		log.Fatalf("RegisterStateDependentTransitCallback on closed model")
	}
	return m.registry.registerStateDependentTransit(cb)
}

// RegisterTransitMatrix registers a matrix of node-to-node transits. The
// matrix is indexed by problem nodes, not variable indices.
func (m *Model) RegisterTransitMatrix(matrix [][]int64) CallbackIndex {
	manager := m.manager
	return m.RegisterTransitCallback(func(from, to int) int64 {
		return matrix[manager.IndexToNode(from)][manager.IndexToNode(to)]
	})
}

// RegisterTransitVector registers a vector of per-node transits.
func (m *Model) RegisterTransitVector(vector []int64) CallbackIndex {
	manager := m.manager
	return m.RegisterUnaryTransitCallback(func(from int) int64 {
		return vector[manager.IndexToNode(from)]
	})
}

// RegisterConstantTransit registers a constant transit.
func (m *Model) RegisterConstantTransit(value int64) CallbackIndex {
	return m.RegisterUnaryTransitCallback(func(int) int64 { return value })
}

// SetArcCostEvaluatorOfAllVehicles sets the arc cost callback of every vehicle.
func (m *Model) SetArcCostEvaluatorOfAllVehicles(evaluator CallbackIndex) error {
	if err := m.checkOpen("SetArcCostEvaluatorOfAllVehicles"); err != nil {
		return err
	}
	for v := range m.arcCostEvaluators {
		m.arcCostEvaluators[v] = evaluator
	}
	return nil
}

// SetArcCostEvaluatorOfVehicle sets the arc cost callback of one vehicle.
func (m *Model) SetArcCostEvaluatorOfVehicle(evaluator CallbackIndex, vehicle int) error {
	if err := m.checkOpen("SetArcCostEvaluatorOfVehicle"); err != nil {
		return err
	}
	if vehicle < 0 || vehicle >= m.vehicles {
		return m.setErr(fmt.Errorf("SetArcCostEvaluatorOfVehicle: vehicle %v: %w", vehicle, ErrInvalidParameter))
	}
	m.arcCostEvaluators[vehicle] = evaluator
	return nil
}

// SetFixedCostOfAllVehicles sets the fixed cost paid by every used vehicle.
func (m *Model) SetFixedCostOfAllVehicles(cost int64) error {
	if err := m.checkOpen("SetFixedCostOfAllVehicles"); err != nil {
		return err
	}
	for v := range m.fixedCosts {
		m.fixedCosts[v] = cost
	}
	return nil
}

// SetFixedCostOfVehicle sets the fixed cost paid when the vehicle is used.
func (m *Model) SetFixedCostOfVehicle(cost int64, vehicle int) error {
	if err := m.checkOpen("SetFixedCostOfVehicle"); err != nil {
		return err
	}
	if vehicle < 0 || vehicle >= m.vehicles {
		return m.setErr(fmt.Errorf("SetFixedCostOfVehicle: vehicle %v: %w", vehicle, ErrInvalidParameter))
	}
	m.fixedCosts[vehicle] = cost
	return nil
}

// GetFixedCostOfVehicle returns the fixed cost of the vehicle.
func (m *Model) GetFixedCostOfVehicle(vehicle int) int64 { return m.fixedCosts[vehicle] }

// SetAmortizedCostFactorsOfAllVehicles sets the amortized cost factors of all
// vehicles. A used vehicle serving l visits adds linear - quadratic·l².
func (m *Model) SetAmortizedCostFactorsOfAllVehicles(linear, quadratic int64) error {
	if err := m.checkOpen("SetAmortizedCostFactorsOfAllVehicles"); err != nil {
		return err
	}
	for v := 0; v < m.vehicles; v++ {
		m.amortizedLinear[v] = linear
		m.amortizedQuadratic[v] = quadratic
	}
	m.hasAmortizedCosts = m.hasAmortizedCosts || linear != 0 || quadratic != 0
	return nil
}

// SetAmortizedCostFactorsOfVehicle sets the amortized cost factors of one
// vehicle.
func (m *Model) SetAmortizedCostFactorsOfVehicle(linear, quadratic int64, vehicle int) error {
	if err := m.checkOpen("SetAmortizedCostFactorsOfVehicle"); err != nil {
		return err
	}
	if vehicle < 0 || vehicle >= m.vehicles {
		return m.setErr(fmt.Errorf("SetAmortizedCostFactorsOfVehicle: vehicle %v: %w", vehicle, ErrInvalidParameter))
	}
	m.amortizedLinear[vehicle] = linear
	m.amortizedQuadratic[vehicle] = quadratic
	m.hasAmortizedCosts = m.hasAmortizedCosts || linear != 0 || quadratic != 0
	return nil
}

// AddDisjunction declares that at most `maxCardinality` of `indices` may be
// active, each inactive one costing `penalty`. A negative penalty (NoPenalty)
// makes the constraint hard: exactly `maxCardinality` must be active.
func (m *Model) AddDisjunction(indices []int, penalty int64, maxCardinality int) (DisjunctionIndex, error) {
	if err := m.checkOpen("AddDisjunction"); err != nil {
		return NoDisjunction, err
	}
	if len(indices) == 0 {
		return NoDisjunction, m.setErr(fmt.Errorf("AddDisjunction: empty index set: %w", ErrInvalidParameter))
	}
	if maxCardinality < 1 || maxCardinality > len(indices) {
		return NoDisjunction, m.setErr(fmt.Errorf("AddDisjunction: max cardinality %v outside [1,%v]: %w", maxCardinality, len(indices), ErrInvalidParameter))
	}
	for _, i := range indices {
		if err := m.checkIndex("AddDisjunction", i); err != nil {
			return NoDisjunction, err
		}
		if m.IsEnd(i) || m.IsStart(i) {
			return NoDisjunction, m.setErr(fmt.Errorf("AddDisjunction: index %v is a vehicle terminal: %w", i, ErrInvalidParameter))
		}
	}
	d := DisjunctionIndex(len(m.disjunctions))
	m.disjunctions = append(m.disjunctions, Disjunction{
		Indices:        append([]int(nil), indices...),
		Penalty:        penalty,
		MaxCardinality: maxCardinality,
	})
	for _, i := range indices {
		m.indexToDisjunctions[i] = append(m.indexToDisjunctions[i], d)
	}
	return d, nil
}

// GetDisjunction returns the disjunction behind the index.
func (m *Model) GetDisjunction(d DisjunctionIndex) Disjunction { return m.disjunctions[d] }

// Disjunctions returns the number of registered disjunctions.
func (m *Model) Disjunctions() int { return len(m.disjunctions) }

// DisjunctionsOfIndex returns the disjunctions containing the index.
func (m *Model) DisjunctionsOfIndex(index int) []DisjunctionIndex {
	return m.indexToDisjunctions[index]
}

// UnperformedPenalty returns the penalty cost of dropping the index, or 0 if
// the index is not optional. The second return is false when dropping the
// index is not allowed.
func (m *Model) UnperformedPenalty(index int) (int64, bool) {
	ds := m.indexToDisjunctions[index]
	if len(ds) == 0 {
		return 0, false
	}
	var total int64
	for _, d := range ds {
		disj := m.disjunctions[d]
		if disj.Penalty < 0 && disj.MaxCardinality == len(disj.Indices) {
			return 0, false
		}
		if disj.Penalty >= 0 {
			total += disj.Penalty
		}
	}
	return total, true
}

// AddPickupAndDelivery couples two indices: same vehicle, pickup first.
func (m *Model) AddPickupAndDelivery(pickup, delivery int) error {
	return m.addPickupAndDeliveryAlternatives([]int{pickup}, []int{delivery})
}

// AddPickupAndDeliverySets couples two disjunctions: the selected pickup
// alternative and the selected delivery alternative ride the same vehicle,
// pickup first.
func (m *Model) AddPickupAndDeliverySets(pickup, delivery DisjunctionIndex) error {
	if int(pickup) >= len(m.disjunctions) || int(delivery) >= len(m.disjunctions) || pickup < 0 || delivery < 0 {
		return m.setErr(fmt.Errorf("AddPickupAndDeliverySets: unknown disjunction: %w", ErrInvalidParameter))
	}
	return m.addPickupAndDeliveryAlternatives(
		m.disjunctions[pickup].Indices, m.disjunctions[delivery].Indices)
}

func (m *Model) addPickupAndDeliveryAlternatives(pickups, deliveries []int) error {
	if err := m.checkOpen("AddPickupAndDelivery"); err != nil {
		return err
	}
	for _, i := range append(append([]int(nil), pickups...), deliveries...) {
		if err := m.checkIndex("AddPickupAndDelivery", i); err != nil {
			return err
		}
	}
	pair := len(m.pickupDeliveryPairs)
	m.pickupDeliveryPairs = append(m.pickupDeliveryPairs, PickupDeliveryPair{
		PickupAlternatives:   append([]int(nil), pickups...),
		DeliveryAlternatives: append([]int(nil), deliveries...),
	})
	for _, p := range pickups {
		m.pickupPairOf[p] = pair
	}
	for _, d := range deliveries {
		m.deliveryPairOf[d] = pair
	}
	return nil
}

// PickupDeliveryPairs returns the registered pairs.
func (m *Model) PickupDeliveryPairs() []PickupDeliveryPair { return m.pickupDeliveryPairs }

// PickupPairOf returns the pair index of a pickup alternative, or -1.
func (m *Model) PickupPairOf(index int) int { return m.pickupPairOf[index] }

// DeliveryPairOf returns the pair index of a delivery alternative, or -1.
func (m *Model) DeliveryPairOf(index int) int { return m.deliveryPairOf[index] }

// SetPickupAndDeliveryPolicyOfVehicle sets the PD ordering policy of one
// vehicle.
func (m *Model) SetPickupAndDeliveryPolicyOfVehicle(policy PickupAndDeliveryPolicy, vehicle int) error {
	if err := m.checkOpen("SetPickupAndDeliveryPolicyOfVehicle"); err != nil {
		return err
	}
	if vehicle < 0 || vehicle >= m.vehicles {
		return m.setErr(fmt.Errorf("SetPickupAndDeliveryPolicyOfVehicle: vehicle %v: %w", vehicle, ErrInvalidParameter))
	}
	m.pdPolicies[vehicle] = policy
	return nil
}

// SetPickupAndDeliveryPolicyOfAllVehicles sets the PD ordering policy of the
// whole fleet.
func (m *Model) SetPickupAndDeliveryPolicyOfAllVehicles(policy PickupAndDeliveryPolicy) error {
	if err := m.checkOpen("SetPickupAndDeliveryPolicyOfAllVehicles"); err != nil {
		return err
	}
	for v := range m.pdPolicies {
		m.pdPolicies[v] = policy
	}
	return nil
}

// GetPickupAndDeliveryPolicyOfVehicle returns the PD policy of the vehicle.
func (m *Model) GetPickupAndDeliveryPolicyOfVehicle(vehicle int) PickupAndDeliveryPolicy {
	return m.pdPolicies[vehicle]
}

// SetVisitType tags an index with a nonnegative visit type.
func (m *Model) SetVisitType(index, visitType int) error {
	if err := m.checkOpen("SetVisitType"); err != nil {
		return err
	}
	if err := m.checkIndex("SetVisitType", index); err != nil {
		return err
	}
	if visitType < 0 {
		return m.setErr(fmt.Errorf("SetVisitType: type %v must be nonnegative: %w", visitType, ErrInvalidParameter))
	}
	m.visitTypes[index] = visitType
	return nil
}

// GetVisitType returns the visit type of the index, or -1 if unset.
func (m *Model) GetVisitType(index int) int { return m.visitTypes[index] }

// AddTypeIncompatibility forbids two visit types from sharing a vehicle.
func (m *Model) AddTypeIncompatibility(type1, type2 int) error {
	if err := m.checkOpen("AddTypeIncompatibility"); err != nil {
		return err
	}
	if type1 < 0 || type2 < 0 {
		return m.setErr(fmt.Errorf("AddTypeIncompatibility: types must be nonnegative: %w", ErrInvalidParameter))
	}
	if m.incompatibleTypes[type1] == nil {
		m.incompatibleTypes[type1] = make(map[int]bool)
	}
	if m.incompatibleTypes[type2] == nil {
		m.incompatibleTypes[type2] = make(map[int]bool)
	}
	m.incompatibleTypes[type1][type2] = true
	m.incompatibleTypes[type2][type1] = true
	return nil
}

// TypesAreIncompatible returns true if the two visit types may not share a
// vehicle.
func (m *Model) TypesAreIncompatible(type1, type2 int) bool {
	return m.incompatibleTypes[type1][type2]
}

// SetAllowedVehiclesForIndex restricts the vehicles that may serve the index.
func (m *Model) SetAllowedVehiclesForIndex(vehicles []int, index int) error {
	if err := m.checkOpen("SetAllowedVehiclesForIndex"); err != nil {
		return err
	}
	if err := m.checkIndex("SetAllowedVehiclesForIndex", index); err != nil {
		return err
	}
	allowed := make(map[int]bool, len(vehicles))
	for _, v := range vehicles {
		if v < 0 || v >= m.vehicles {
			return m.setErr(fmt.Errorf("SetAllowedVehiclesForIndex: vehicle %v: %w", v, ErrInvalidParameter))
		}
		allowed[v] = true
	}
	m.allowedVehicles[index] = allowed
	return nil
}

// AddSoftSameVehicleConstraint adds a soft constraint charging `cost` for each
// vehicle beyond the first serving any of `indices`.
func (m *Model) AddSoftSameVehicleConstraint(indices []int, cost int64) error {
	if err := m.checkOpen("AddSoftSameVehicleConstraint"); err != nil {
		return err
	}
	for _, i := range indices {
		if err := m.checkIndex("AddSoftSameVehicleConstraint", i); err != nil {
			return err
		}
		m.sameVehicleGroupOf[i] = m.numSameVehicleGroups
	}
	m.numSameVehicleGroups++
	m.sameVehicleCost = cost
	return nil
}

// AddVariableMinimizedByFinalizer asks the solution finalizer to drive the
// variable to its minimum after each improving solution.
func (m *Model) AddVariableMinimizedByFinalizer(v *cpsolver.IntVar) {
	m.finalizerVars = append(m.finalizerVars, v)
	m.finalizerTargets = append(m.finalizerTargets, v.Min())
}

// AddVariableMaximizedByFinalizer asks the solution finalizer to drive the
// variable to its maximum after each improving solution.
func (m *Model) AddVariableMaximizedByFinalizer(v *cpsolver.IntVar) {
	m.finalizerVars = append(m.finalizerVars, v)
	m.finalizerTargets = append(m.finalizerTargets, v.Max())
}

// SetRouteLocks pre-fixes the beginning of a vehicle's route: the chain of
// indices is committed right after the vehicle start before the first
// solution is built.
func (m *Model) SetRouteLocks(vehicle int, chain []int) error {
	if err := m.checkOpen("SetRouteLocks"); err != nil {
		return err
	}
	if vehicle < 0 || vehicle >= m.vehicles {
		return m.setErr(fmt.Errorf("SetRouteLocks: vehicle %v: %w", vehicle, ErrInvalidParameter))
	}
	for _, i := range chain {
		if err := m.checkIndex("SetRouteLocks", i); err != nil {
			return err
		}
	}
	m.locks[vehicle] = append([]int(nil), chain...)
	return nil
}
