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
	"container/heap"
	"sort"
)

// insertionEntry is one candidate insertion in the global queue. For pair
// entries the delivery fields are set. The successor stamps detect stale
// entries: an entry is only valid while the insertion position still chains
// to the stamped successor.
type insertionEntry struct {
	cost    int64
	node    int
	after   int
	vehicle int

	deliveryNode  int // -1 for single-node entries
	deliveryAfter int

	afterSuccStamp         int
	deliveryAfterSuccStamp int
}

type insertionQueue []*insertionEntry

func (q insertionQueue) Len() int { return len(q) }
func (q insertionQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	if q[i].node != q[j].node {
		return q[i].node < q[j].node
	}
	return q[i].after < q[j].after
}
func (q insertionQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *insertionQueue) Push(x any)   { *q = append(*q, x.(*insertionEntry)) }
func (q *insertionQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

// GlobalCheapestInsertionBuilder builds a first solution by repeatedly
// committing the globally cheapest feasible insertion; pickup-and-delivery
// pair insertions and single-node insertions compete on cost. Routes grow in
// parallel, or one at a time when sequential.
type GlobalCheapestInsertionBuilder struct {
	routingFilteredBuilder
	sequential         bool
	neighborsRatio     float64
	farthestSeedsRatio float64

	neighborLists map[CostClassIndex]map[int][]int
}

// NewGlobalCheapestInsertionBuilder returns a global cheapest insertion
// builder over the filters.
func NewGlobalCheapestInsertionBuilder(m *Model, filters []LocalSearchFilter, sequential bool, neighborsRatio, farthestSeedsRatio float64) *GlobalCheapestInsertionBuilder {
	return &GlobalCheapestInsertionBuilder{
		routingFilteredBuilder: newRoutingFilteredBuilder(m, filters),
		sequential:             sequential,
		neighborsRatio:         neighborsRatio,
		farthestSeedsRatio:     farthestSeedsRatio,
		neighborLists:          make(map[CostClassIndex]map[int][]int),
	}
}

// neighborsOf returns the insertion positions closest to `node` for the cost
// class, truncated by the neighbors ratio.
func (b *GlobalCheapestInsertionBuilder) neighborsOf(node int, class CostClassIndex) []int {
	if b.neighborsRatio >= 1 {
		return nil // nil means unrestricted
	}
	perNode, ok := b.neighborLists[class]
	if !ok {
		perNode = make(map[int][]int)
		b.neighborLists[class] = perNode
	}
	if list, ok := perNode[node]; ok {
		return list
	}
	type scored struct {
		index int
		cost  int64
	}
	var all []scored
	for i := 0; i < b.m.size; i++ {
		if i == node {
			continue
		}
		all = append(all, scored{i, b.m.GetArcCostForClass(i, node, class)})
	}
	sort.Slice(all, func(x, y int) bool {
		if all[x].cost != all[y].cost {
			return all[x].cost < all[y].cost
		}
		return all[x].index < all[y].index
	})
	keep := int(b.neighborsRatio * float64(len(all)))
	if keep < 1 {
		keep = 1
	}
	if keep > len(all) {
		keep = len(all)
	}
	list := make([]int, keep)
	for i := 0; i < keep; i++ {
		list[i] = all[i].index
	}
	perNode[node] = list
	return list
}

func (b *GlobalCheapestInsertionBuilder) positionAllowed(node, after int, v int, class CostClassIndex) bool {
	neighbors := b.neighborsOf(node, class)
	if neighbors == nil {
		return true
	}
	if after == b.m.starts[v] {
		return true // route starts always stay insertable
	}
	for _, n := range neighbors {
		if n == after {
			return true
		}
	}
	return false
}

// BuildSolution implements FirstSolutionBuilder.
func (b *GlobalCheapestInsertionBuilder) BuildSolution() bool {
	if !b.commitLocks() {
		return false
	}
	if b.farthestSeedsRatio > 0 {
		b.insertFarthestSeeds()
	}
	vehicleSet := b.allVehicles()
	if b.sequential {
		for v := 0; v < b.m.vehicles; v++ {
			b.insertAll([]int{v})
		}
	} else {
		b.insertAll(vehicleSet)
	}
	if !b.makeUnassignedUnperformed() {
		return false
	}
	if !b.closeEmptyRoutes() {
		return false
	}
	return b.AllCommitted()
}

func (b *GlobalCheapestInsertionBuilder) allVehicles() []int {
	vs := make([]int, b.m.vehicles)
	for v := range vs {
		vs[v] = v
	}
	return vs
}

// insertFarthestSeeds opens ⌊ratio·vehicles⌋ routes with the nodes farthest
// from their start.
func (b *GlobalCheapestInsertionBuilder) insertFarthestSeeds() {
	seeds := int(b.farthestSeedsRatio * float64(b.m.vehicles))
	for s := 0; s < seeds; s++ {
		// First empty route.
		vehicle := -1
		for v := 0; v < b.m.vehicles; v++ {
			if !b.Contains(b.m.starts[v]) {
				vehicle = v
				break
			}
		}
		if vehicle < 0 {
			return
		}
		start := b.m.starts[vehicle]
		best, bestCost := -1, int64(-1)
		for i := 0; i < b.m.size; i++ {
			if b.Contains(i) || b.m.IsStart(i) || b.m.pickupPairOf[i] >= 0 || b.m.deliveryPairOf[i] >= 0 {
				continue
			}
			if c := b.m.GetArcCostForVehicle(start, i, vehicle); c > bestCost {
				best, bestCost = i, c
			}
		}
		if best < 0 {
			return
		}
		if !b.tryInsert(best, start, vehicle) {
			return
		}
	}
}

// insertAll drains the insertion queue over the given vehicles: pair entries
// and node entries compete on cost.
func (b *GlobalCheapestInsertionBuilder) insertAll(vehicles []int) {
	q := &insertionQueue{}
	heap.Init(q)
	b.pushAllEntries(q, vehicles)
	for q.Len() > 0 {
		if b.limitCrossed() {
			return
		}
		e := heap.Pop(q).(*insertionEntry)
		if !b.entryFresh(e) {
			if fresh := b.rescore(e); fresh != nil {
				heap.Push(q, fresh)
			}
			continue
		}
		if b.commitEntry(e) {
			// Only positions on the new arcs gained or lost insertion slots;
			// push entries for the remaining nodes there.
			b.pushEntriesAt(q, vehicles, e.node)
			if e.deliveryNode >= 0 {
				b.pushEntriesAt(q, vehicles, e.deliveryNode)
			}
			b.pushEntriesAt(q, vehicles, e.after)
		}
	}
}

func (b *GlobalCheapestInsertionBuilder) nodeUninserted(i int) bool {
	return !b.Contains(i) && !b.m.IsStart(i) && i < b.m.size
}

func (b *GlobalCheapestInsertionBuilder) entryFresh(e *insertionEntry) bool {
	if !b.nodeUninserted(e.node) {
		return false
	}
	if e.deliveryNode >= 0 && !b.nodeUninserted(e.deliveryNode) {
		return false
	}
	if b.successorOf(e.after, e.vehicle) != e.afterSuccStamp {
		return false
	}
	if e.deliveryNode >= 0 && e.deliveryAfter != e.node &&
		b.successorOf(e.deliveryAfter, e.vehicle) != e.deliveryAfterSuccStamp {
		return false
	}
	return true
}

// rescore recomputes a stale entry against the current chains, or drops it.
func (b *GlobalCheapestInsertionBuilder) rescore(e *insertionEntry) *insertionEntry {
	if !b.nodeUninserted(e.node) {
		return nil
	}
	if e.deliveryNode >= 0 && !b.nodeUninserted(e.deliveryNode) {
		return nil
	}
	onChain := func(i int) bool {
		return i == b.m.starts[e.vehicle] || (b.Contains(i) && !b.m.IsEnd(i)) || b.m.IsStart(i)
	}
	if !onChain(e.after) || (e.deliveryNode >= 0 && e.deliveryAfter != e.node && !onChain(e.deliveryAfter)) {
		return nil
	}
	fresh := *e
	fresh.afterSuccStamp = b.successorOf(e.after, e.vehicle)
	fresh.cost = b.insertionCost(e.node, e.after, e.vehicle)
	if e.deliveryNode >= 0 {
		fresh.deliveryAfterSuccStamp = b.successorOf(e.deliveryAfter, e.vehicle)
		if e.deliveryAfter == e.node {
			fresh.cost += b.m.GetArcCostForVehicle(e.node, e.deliveryNode, e.vehicle) +
				b.m.GetArcCostForVehicle(e.deliveryNode, fresh.afterSuccStamp, e.vehicle) -
				b.m.GetArcCostForVehicle(e.node, fresh.afterSuccStamp, e.vehicle)
		} else {
			fresh.cost += b.insertionCost(e.deliveryNode, e.deliveryAfter, e.vehicle)
		}
	}
	return &fresh
}

func (b *GlobalCheapestInsertionBuilder) commitEntry(e *insertionEntry) bool {
	if e.deliveryNode < 0 {
		return b.tryInsert(e.node, e.after, e.vehicle)
	}
	pickupSucc := b.successorOf(e.after, e.vehicle)
	b.SetValue(e.after, int64(e.node))
	if e.deliveryAfter == e.node {
		b.SetValue(e.node, int64(e.deliveryNode))
		b.SetValue(e.deliveryNode, int64(pickupSucc))
	} else {
		b.SetValue(e.node, int64(pickupSucc))
		deliverySucc := b.successorOf(e.deliveryAfter, e.vehicle)
		b.SetValue(e.deliveryAfter, int64(e.deliveryNode))
		b.SetValue(e.deliveryNode, int64(deliverySucc))
	}
	return b.Commit()
}

// pushAllEntries seeds the queue with every candidate insertion.
func (b *GlobalCheapestInsertionBuilder) pushAllEntries(q *insertionQueue, vehicles []int) {
	for _, v := range vehicles {
		for _, after := range b.insertionPositions(v) {
			b.pushEntriesForPosition(q, after, v)
		}
	}
}

// pushEntriesAt pushes entries for all uninserted nodes at one position.
func (b *GlobalCheapestInsertionBuilder) pushEntriesAt(q *insertionQueue, vehicles []int, after int) {
	if after >= b.m.size && !b.m.IsStart(after) {
		return
	}
	for _, v := range vehicles {
		onRoute := false
		for _, p := range b.insertionPositions(v) {
			if p == after {
				onRoute = true
				break
			}
		}
		if onRoute {
			b.pushEntriesForPosition(q, after, v)
		}
	}
}

func (b *GlobalCheapestInsertionBuilder) pushEntriesForPosition(q *insertionQueue, after, v int) {
	class := b.m.costClassOfVehicle[v]
	succ := b.successorOf(after, v)
	for node := 0; node < b.m.size; node++ {
		if !b.nodeUninserted(node) {
			continue
		}
		if pair := b.m.pickupPairOf[node]; pair >= 0 {
			// Pair entry: pickup after `after`, delivery right behind it.
			for _, delivery := range b.m.pickupDeliveryPairs[pair].DeliveryAlternatives {
				if !b.nodeUninserted(delivery) {
					continue
				}
				if !b.positionAllowed(node, after, v, class) {
					continue
				}
				cost := b.insertionCost(node, after, v) +
					b.m.GetArcCostForVehicle(node, delivery, v) +
					b.m.GetArcCostForVehicle(delivery, succ, v) -
					b.m.GetArcCostForVehicle(node, succ, v)
				heap.Push(q, &insertionEntry{
					cost: cost, node: node, after: after, vehicle: v,
					deliveryNode: delivery, deliveryAfter: node,
					afterSuccStamp: succ,
				})
			}
			continue
		}
		if b.m.deliveryPairOf[node] >= 0 {
			continue // inserted with its pickup
		}
		if !b.positionAllowed(node, after, v, class) {
			continue
		}
		heap.Push(q, &insertionEntry{
			cost: b.insertionCost(node, after, v), node: node, after: after,
			vehicle: v, deliveryNode: -1, afterSuccStamp: succ,
		})
	}
}

// LocalCheapestInsertionBuilder inserts nodes in index order, each at its
// cheapest feasible position.
type LocalCheapestInsertionBuilder struct {
	routingFilteredBuilder
}

// NewLocalCheapestInsertionBuilder returns a local cheapest insertion builder.
func NewLocalCheapestInsertionBuilder(m *Model, filters []LocalSearchFilter) *LocalCheapestInsertionBuilder {
	return &LocalCheapestInsertionBuilder{newRoutingFilteredBuilder(m, filters)}
}

// BuildSolution implements FirstSolutionBuilder.
func (b *LocalCheapestInsertionBuilder) BuildSolution() bool {
	if !b.commitLocks() {
		return false
	}
	for node := 0; node < b.m.size; node++ {
		if b.limitCrossed() {
			return false
		}
		if b.Contains(node) || b.m.IsStart(node) {
			continue
		}
		if pair := b.m.deliveryPairOf[node]; pair >= 0 {
			continue // inserted together with its pickup
		}
		inserted := false
		if pair := b.m.pickupPairOf[node]; pair >= 0 {
			inserted = b.insertPair(node, pair)
		} else {
			inserted = b.insertNode(node)
		}
		if !inserted {
			if _, droppable := b.m.UnperformedPenalty(node); !droppable {
				return false
			}
		}
	}
	if !b.makeUnassignedUnperformed() {
		return false
	}
	if !b.closeEmptyRoutes() {
		return false
	}
	return b.AllCommitted()
}

type scoredPosition struct {
	cost          int64
	after         int
	deliveryAfter int
	vehicle       int
}

func (b *LocalCheapestInsertionBuilder) insertNode(node int) bool {
	var candidates []scoredPosition
	for v := 0; v < b.m.vehicles; v++ {
		for _, after := range b.insertionPositions(v) {
			candidates = append(candidates, scoredPosition{
				cost: b.insertionCost(node, after, v), after: after, vehicle: v,
			})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].cost != candidates[j].cost {
			return candidates[i].cost < candidates[j].cost
		}
		if candidates[i].vehicle != candidates[j].vehicle {
			return candidates[i].vehicle < candidates[j].vehicle
		}
		return candidates[i].after < candidates[j].after
	})
	for _, c := range candidates {
		if b.tryInsert(node, c.after, c.vehicle) {
			return true
		}
	}
	return false
}

func (b *LocalCheapestInsertionBuilder) insertPair(pickup, pair int) bool {
	deliveries := b.m.pickupDeliveryPairs[pair].DeliveryAlternatives
	var candidates []scoredPosition
	for v := 0; v < b.m.vehicles; v++ {
		positions := b.insertionPositions(v)
		for _, after := range positions {
			base := b.insertionCost(pickup, after, v)
			succ := b.successorOf(after, v)
			for _, delivery := range deliveries {
				if b.Contains(delivery) {
					continue
				}
				cost := base +
					b.m.GetArcCostForVehicle(pickup, delivery, v) +
					b.m.GetArcCostForVehicle(delivery, succ, v) -
					b.m.GetArcCostForVehicle(pickup, succ, v)
				candidates = append(candidates, scoredPosition{
					cost: cost, after: after, deliveryAfter: delivery, vehicle: v,
				})
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].cost < candidates[j].cost })
	for _, c := range candidates {
		succ := b.successorOf(c.after, c.vehicle)
		b.SetValue(c.after, int64(pickup))
		b.SetValue(pickup, int64(c.deliveryAfter))
		b.SetValue(c.deliveryAfter, int64(succ))
		if b.Commit() {
			return true
		}
	}
	return false
}
