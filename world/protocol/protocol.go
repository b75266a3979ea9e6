// This file is part of go-mc/server project.
// Copyright (C) 2023.  Tnze
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package protocol

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/slices"

	"FlowySync/world/entity"
)

// Protocol synchronizes one entity to its viewers.
type Protocol interface {
	Entity() *entity.Entity
	RootID() int32
	// IDs returns the root id followed by the part ids.
	IDs() []int32
	TickRate() int
	TrackingRange() float64

	Init(alloc IDAllocator) error
	Spawn(ctx UpdateContext)
	Update(ctx UpdateContext)
	PostUpdate(ctx UpdateContext)
	HandleEvent(ctx UpdateContext, ev entity.Event) error
	Destroy(ctx UpdateContext)
	Remove(alloc IDAllocator)
}

type lifecycle byte

const (
	unspawned lifecycle = iota
	spawned
	removed
)

// snapshot is what viewers were last told about the movement, equipment and
// passengers of the entity. Data parameters are kept by the levels.
type snapshot struct {
	pos        [3]int64
	yaw, pitch int8
	headYaw    int8
	onGround   bool
	velocity   [3]int16
	equipment  entity.Equipment
	passengers []int32
	// passengersDirty forces the next PostUpdate to resend the set.
	passengersDirty bool
}

// EntityProtocol is the Protocol of every registered kind. Kind specific
// behaviour comes from its KindSpec and its levels.
type EntityProtocol struct {
	e    *entity.Entity
	spec *KindSpec

	tickRate      int
	trackingRange float64
	fixedID       int32
	hasFixedID    bool

	state    lifecycle
	inited   bool
	rootID   int32
	partIDs  []int32
	acquired []int32

	levels []Level
	last   snapshot
}

var _ Protocol = (*EntityProtocol)(nil)

func (p *EntityProtocol) Entity() *entity.Entity { return p.e }
func (p *EntityProtocol) RootID() int32          { return p.rootID }
func (p *EntityProtocol) PartIDs() []int32       { return p.partIDs }
func (p *EntityProtocol) Kind() entity.Kind      { return p.spec.Kind }
func (p *EntityProtocol) TickRate() int          { return p.tickRate }
func (p *EntityProtocol) TrackingRange() float64 { return p.trackingRange }

func (p *EntityProtocol) IDs() []int32 {
	return append([]int32{p.rootID}, p.partIDs...)
}

// Init claims the network ids of the entity.
func (p *EntityProtocol) Init(alloc IDAllocator) error {
	if p.inited {
		panic(fmt.Sprintf("protocol: %s %d initialized twice", p.spec.Kind, p.rootID))
	}
	parts := p.spec.Parts
	switch {
	case p.hasFixedID && parts > 0:
		return fmt.Errorf("%s with %d parts: %w", p.spec.Kind, parts, ErrFixedIDSequence)
	case p.hasFixedID:
		p.rootID = p.fixedID
	case parts > 0:
		ids := alloc.AcquireSequence(1 + parts)
		if len(ids) != 1+parts {
			alloc.ReleaseAll(ids)
			return fmt.Errorf("%s: got %d ids for %d parts: %w", p.spec.Kind, len(ids), parts, ErrPartCount)
		}
		p.rootID, p.partIDs = ids[0], ids[1:]
		p.acquired = ids
	default:
		p.rootID = alloc.Acquire()
		p.acquired = []int32{p.rootID}
	}
	p.inited = true
	return nil
}

// Remove releases exactly the ids Init acquired. A fixed id is owned by
// whoever supplied it and stays allocated.
func (p *EntityProtocol) Remove(alloc IDAllocator) {
	if p.state == removed {
		return
	}
	p.state = removed
	if len(p.acquired) > 0 {
		alloc.ReleaseAll(p.acquired)
		p.acquired = nil
	}
}

// Spawn sends the complete state of the entity to the viewers of ctx and
// makes it the new baseline.
func (p *EntityProtocol) Spawn(ctx UpdateContext) {
	switch {
	case !p.inited:
		panic(fmt.Sprintf("protocol: spawn of %s before Init", p.spec.Kind))
	case p.state == removed:
		panic(fmt.Sprintf("protocol: spawn of removed %s %d", p.spec.Kind, p.rootID))
	}
	p.state = spawned

	s := p.stateNow()
	if p.spec.Spawn != nil {
		p.spec.Spawn(ctx, p, s)
	}
	p.last.pos = s.pos
	p.last.yaw, p.last.pitch = s.yaw, s.pitch
	// Viewers that already see a rider were not sent its head yaw.
	if !p.riding() {
		p.last.headYaw = s.headYaw
	}
	p.last.onGround = s.onGround
	p.last.velocity = s.velocity

	var params entity.ParameterList
	for _, l := range p.levels {
		l.FullState(ctx, p, &params)
	}
	p.sendMetadata(ctx, params)

	if p.spec.Equipment {
		var entries []EquipmentEntry
		for slot, item := range s.equipment {
			if !item.IsEmpty() {
				entries = append(entries, EquipmentEntry{Slot: entity.EquipmentSlot(slot), Item: item})
			}
		}
		p.sendEquipment(ctx, entries)
		p.last.equipment = s.equipment.Clone()
	}
	p.last.passengersDirty = true
}

// Update sends what changed since the last Spawn or Update.
func (p *EntityProtocol) Update(ctx UpdateContext) {
	if p.state != spawned || p.spec.Static {
		return
	}
	s := p.stateNow()
	p.updateMovement(ctx, s)
	p.updateVelocity(ctx, s)
	p.updateHead(ctx, s)

	var params entity.ParameterList
	for _, l := range p.levels {
		l.Diff(ctx, p, &params)
	}
	p.sendMetadata(ctx, params)

	if p.spec.Equipment {
		p.updateEquipment(ctx, s)
	}
}

// PostUpdate runs after every entity was updated, so the ids of all
// passengers spawned this tick can be resolved.
func (p *EntityProtocol) PostUpdate(ctx UpdateContext) {
	if p.state != spawned {
		return
	}
	riders := entity.GetOr(p.e.Store, entity.Passengers, nil)
	ids := make([]int32, 0, len(riders))
	for _, r := range riders {
		if id, ok := ctx.IDOf(r); ok {
			ids = append(ids, id)
		}
	}
	if !p.last.passengersDirty && slices.Equal(ids, p.last.passengers) {
		return
	}
	if p.last.passengersDirty && len(ids) == 0 && len(p.last.passengers) == 0 {
		p.last.passengersDirty = false
		return
	}
	root := p.rootID
	ctx.SendToAll(func() Message { return SetPassengers{ID: root, Passengers: ids} })
	p.last.passengers = ids
	p.last.passengersDirty = false
}

// ResendPassengers makes the next PostUpdate send the passenger set even if
// it did not change, e.g. after one of the passengers was spawned for a new
// viewer.
func (p *EntityProtocol) ResendPassengers() { p.last.passengersDirty = true }

// HandleEvent dispatches ev to the most specific level that knows it. Events
// nobody knows end in ErrUnhandledEvent.
func (p *EntityProtocol) HandleEvent(ctx UpdateContext, ev entity.Event) error {
	if p.state != spawned {
		return nil
	}
	for i := len(p.levels) - 1; i >= 0; i-- {
		el, ok := p.levels[i].(EventLevel)
		if !ok {
			continue
		}
		if err := el.HandleEvent(ctx, p, ev); !errors.Is(err, ErrUnhandledEvent) {
			return err
		}
	}
	return p.handleBaseEvent(ctx, ev)
}

func (p *EntityProtocol) handleBaseEvent(ctx UpdateContext, ev entity.Event) error {
	id := p.rootID
	switch ev := ev.(type) {
	case entity.SwingHandEvent:
		anim := AnimSwingMainHand
		if ev.Hand == entity.SecondaryHand {
			anim = AnimSwingOffHand
		}
		ctx.SendToAllExceptSelf(func() Message { return Animation{ID: id, Animation: anim} })
	case entity.CriticalHitEvent:
		ctx.SendToAll(func() Message { return Animation{ID: id, Animation: AnimCriticalHit} })
	case entity.CollectEvent:
		collector, ok := ctx.IDOf(ev.Collector)
		if !ok {
			return nil
		}
		ctx.SendToAll(func() Message {
			return CollectItem{Collected: id, Collector: collector, Count: ev.Count}
		})
	default:
		return fmt.Errorf("%s on %s: %w", ev.EventName(), p.spec.Kind, ErrUnhandledEvent)
	}
	return nil
}

// Destroy removes the entity and all its parts from the viewers of ctx.
func (p *EntityProtocol) Destroy(ctx UpdateContext) {
	ids := p.IDs()
	ctx.SendToAllExceptSelf(func() Message { return DestroyEntities{IDs: ids} })
}

// State is the wire form of the movement related state of an entity at the
// time of a Spawn or Update.
type State struct {
	pos        [3]int64
	exact      entity.Vec3
	validPos   bool
	yaw, pitch int8
	headYaw    int8
	onGround   bool
	velocity   [3]int16
	equipment  entity.Equipment
}

func (p *EntityProtocol) stateNow() State {
	st := p.e.Store
	var c State
	pos, ok := entity.Get(st, entity.Position)
	if ok && pos.IsValid() {
		c.exact, c.validPos = pos, true
		c.pos = [3]int64{FixedPoint(pos[0]), FixedPoint(pos[1]), FixedPoint(pos[2])}
	}
	// Non-finite values keep what viewers already have.
	c.yaw, c.pitch, c.headYaw = p.last.yaw, p.last.pitch, p.last.headYaw
	look := entity.GetOr(st, entity.Look, entity.Rotation{})
	if isFinite(look[0]) && isFinite(look[1]) {
		c.yaw, c.pitch = PackAngle(look[0]), PackAngle(look[1])
	}
	if head := entity.GetOr(st, entity.HeadYaw, look[0]); isFinite(head) {
		c.headYaw = PackAngle(head)
	}
	c.onGround = entity.GetOr(st, entity.OnGround, false)
	c.velocity = p.last.velocity
	if v := entity.GetOr(st, entity.Velocity, entity.Vec3{}); v.IsValid() {
		c.velocity = packVelocity(v)
	}
	if p.spec.Equipment {
		c.equipment = entity.GetOr(st, entity.EquippedItems, entity.Equipment{})
	}
	return c
}

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

func (p *EntityProtocol) updateMovement(ctx UpdateContext, s State) {
	if !s.validPos {
		return
	}
	id := p.rootID
	moved := s.pos != p.last.pos
	rotated := s.yaw != p.last.yaw || s.pitch != p.last.pitch

	var delta [3]int16
	overflow := false
	for i := range delta {
		d := s.pos[i] - p.last.pos[i]
		if d < math.MinInt16 || d > math.MaxInt16 {
			overflow = true
			break
		}
		delta[i] = int16(d)
	}

	switch {
	case moved && overflow:
		m := TeleportEntity{ID: id, Pos: s.exact, Yaw: s.yaw, Pitch: s.pitch, OnGround: s.onGround}
		ctx.SendToAllExceptSelf(func() Message { return m })
		p.last.pos = s.pos
		p.last.yaw, p.last.pitch = s.yaw, s.pitch
	case moved && rotated:
		m := MoveLookEntity{ID: id, Delta: delta, Yaw: s.yaw, Pitch: s.pitch, OnGround: s.onGround}
		ctx.SendToAllExceptSelf(func() Message { return m })
		p.last.pos = s.pos
		p.last.yaw, p.last.pitch = s.yaw, s.pitch
	case moved:
		m := MoveEntity{ID: id, Delta: delta, OnGround: s.onGround}
		ctx.SendToAllExceptSelf(func() Message { return m })
		p.last.pos = s.pos
	case rotated:
		m := LookEntity{ID: id, Yaw: s.yaw, Pitch: s.pitch, OnGround: s.onGround}
		ctx.SendToAllExceptSelf(func() Message { return m })
		p.last.yaw, p.last.pitch = s.yaw, s.pitch
	default:
		return
	}
	p.last.onGround = s.onGround
}

func (p *EntityProtocol) updateVelocity(ctx UpdateContext, s State) {
	if s.velocity == p.last.velocity {
		return
	}
	m := EntityVelocity{ID: p.rootID, Velocity: s.velocity}
	ctx.SendToAll(func() Message { return m })
	p.last.velocity = s.velocity
}

// updateHead is skipped while riding: the vehicle turns the head.
func (p *EntityProtocol) updateHead(ctx UpdateContext, s State) {
	if !p.spec.Head || s.headYaw == p.last.headYaw {
		return
	}
	if p.riding() {
		return
	}
	m := HeadLook{ID: p.rootID, Yaw: s.headYaw}
	ctx.SendToAllExceptSelf(func() Message { return m })
	p.last.headYaw = s.headYaw
}

func (p *EntityProtocol) riding() bool {
	v, _ := entity.Get(p.e.Store, entity.Vehicle)
	return v != nil
}

func (p *EntityProtocol) updateEquipment(ctx UpdateContext, s State) {
	var entries []EquipmentEntry
	for slot, item := range s.equipment {
		if item.Similar(p.last.equipment[slot]) {
			continue
		}
		entries = append(entries, EquipmentEntry{Slot: entity.EquipmentSlot(slot), Item: item})
		p.last.equipment[slot] = item.Clone()
	}
	p.sendEquipment(ctx, entries)
}

func (p *EntityProtocol) sendEquipment(ctx UpdateContext, entries []EquipmentEntry) {
	if len(entries) == 0 {
		return
	}
	m := EntityEquipment{ID: p.rootID, Entries: entries}
	ctx.SendToAllExceptSelf(func() Message { return m })
}

func (p *EntityProtocol) sendMetadata(ctx UpdateContext, params entity.ParameterList) {
	if params.Empty() {
		return
	}
	m := EntityMetadata{ID: p.rootID, Params: params}
	ctx.SendToAll(func() Message { return m })
}
