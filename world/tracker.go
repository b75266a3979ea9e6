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

package world

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"FlowySync/world/entity"
	"FlowySync/world/internal/bvh"
	"FlowySync/world/protocol"
)

// Allocator is the id space the tracker hands to protocols. Released ids are
// held back until Flush, which the tracker calls at the end of every tick.
type Allocator interface {
	protocol.IDAllocator
	Flush()
}

type (
	vec2d      = bvh.Vec2[float64]
	aabb2d     = bvh.AABB[float64, vec2d]
	viewerNode = bvh.Node[float64, aabb2d, Viewer]
	viewerTree = bvh.Tree[float64, aabb2d, Viewer]
)

// EntityTracker drives the protocols of every tracked entity. It is not safe
// for concurrent use, except PostEvent. The World calls it with tickLock held.
type EntityTracker struct {
	log      *zap.Logger
	registry *protocol.Registry
	alloc    Allocator
	recorder *TraceRecorder

	entries  map[*entity.Entity]*trackedEntity
	order    []*trackedEntity
	viewers  map[Viewer]*viewerNode
	viewTree viewerTree
	tick     uint64

	eventsLock sync.Mutex
	events     []queuedEvent
}

type queuedEvent struct {
	e  *entity.Entity
	ev entity.Event
}

type trackedEntity struct {
	p       *protocol.EntityProtocol
	self    Viewer
	viewers map[Viewer]struct{}
	dead    bool
}

func NewEntityTracker(log *zap.Logger, registry *protocol.Registry, alloc Allocator) *EntityTracker {
	return &EntityTracker{
		log:      log,
		registry: registry,
		alloc:    alloc,
		entries:  make(map[*entity.Entity]*trackedEntity),
		viewers:  make(map[Viewer]*viewerNode),
	}
}

// SetRecorder makes the tracker copy every emitted message to r. A nil r
// stops recording.
func (t *EntityTracker) SetRecorder(r *TraceRecorder) { t.recorder = r }

// CurrentTick returns the number of ticks run so far.
func (t *EntityTracker) CurrentTick() uint64 { return t.tick }

// Track creates, initializes and spawns the protocol of e. The entity is
// immediately sent to every viewer in range. self is the session
// controlling e and may be nil.
func (t *EntityTracker) Track(e *entity.Entity, self Viewer, opts ...protocol.Option) (*protocol.EntityProtocol, error) {
	return t.TrackSession(e, self, nil, opts...)
}

// TrackSession is Track with a hook called once the network id of e is
// known and before anything is sent about e. Sessions use it to queue
// their login packets first.
func (t *EntityTracker) TrackSession(e *entity.Entity, self Viewer, join func(id int32), opts ...protocol.Option) (*protocol.EntityProtocol, error) {
	if _, ok := t.entries[e]; ok {
		return nil, fmt.Errorf("track %s %v: %w", e.Kind(), e.UUID(), protocol.ErrAlreadyTracked)
	}
	p, err := t.registry.New(e, opts...)
	if err != nil {
		return nil, err
	}
	if err := p.Init(t.alloc); err != nil {
		return nil, err
	}
	if join != nil {
		join(p.RootID())
	}
	te := &trackedEntity{p: p, self: self, viewers: make(map[Viewer]struct{})}
	t.entries[e] = te
	t.order = append(t.order, te)

	added, _ := t.interest(te)
	for _, v := range added {
		te.viewers[v] = struct{}{}
	}
	p.Spawn(t.context(te, added, self))
	t.refreshVehicle(e)
	t.log.Debug("Track entity",
		zap.String("kind", string(e.Kind())),
		zap.Int32("eid", p.RootID()),
		zap.Int("viewers", len(added)),
	)
	return p, nil
}

// Untrack destroys e for every viewer and releases its ids. It reports
// whether e was tracked.
func (t *EntityTracker) Untrack(e *entity.Entity) bool {
	te, ok := t.entries[e]
	if !ok {
		return false
	}
	te.p.Destroy(t.context(te, t.viewersOf(te), nil))
	te.p.Remove(t.alloc)
	te.dead = true
	delete(t.entries, e)
	if i := slices.Index(t.order, te); i >= 0 {
		t.order = slices.Delete(t.order, i, i+1)
	}
	t.log.Debug("Untrack entity",
		zap.String("kind", string(e.Kind())),
		zap.Int32("eid", te.p.RootID()),
	)
	return true
}

// Protocol returns the protocol of a tracked entity.
func (t *EntityTracker) Protocol(e *entity.Entity) (*protocol.EntityProtocol, bool) {
	te, ok := t.entries[e]
	if !ok {
		return nil, false
	}
	return te.p, true
}

// AddViewer registers a viewer standing at pos. Entities in range are sent
// to it on the next tick.
func (t *EntityTracker) AddViewer(v Viewer, pos entity.Vec3) {
	if _, ok := t.viewers[v]; ok {
		t.MoveViewer(v, pos)
		return
	}
	t.viewers[v] = t.viewTree.Insert(viewerBox(pos), v)
}

// MoveViewer updates the position of a viewer.
func (t *EntityTracker) MoveViewer(v Viewer, pos entity.Vec3) {
	n, ok := t.viewers[v]
	if !ok {
		return
	}
	t.viewers[v] = t.viewTree.Move(n, viewerBox(pos))
}

// RemoveViewer forgets a viewer. Nothing is sent to it anymore.
func (t *EntityTracker) RemoveViewer(v Viewer) {
	n, ok := t.viewers[v]
	if !ok {
		return
	}
	t.viewTree.Delete(n)
	delete(t.viewers, v)
	for _, te := range t.order {
		delete(te.viewers, v)
		if te.self == v {
			te.self = nil
		}
	}
}

func viewerBox(pos entity.Vec3) aabb2d {
	return bvh.Point(vec2d{pos[0], pos[2]})
}

// PostEvent queues a discrete event of e. Queued events are handled at the
// start of the next tick. It may be called from any goroutine.
func (t *EntityTracker) PostEvent(e *entity.Entity, ev entity.Event) {
	t.eventsLock.Lock()
	t.events = append(t.events, queuedEvent{e: e, ev: ev})
	t.eventsLock.Unlock()
}

// Tick runs one synchronization cycle: queued events first, then interest
// changes and diffs of every due entity, then passenger updates.
func (t *EntityTracker) Tick() {
	t.tick++
	t.handleEvents()

	due := make([]*trackedEntity, 0, len(t.order))
	for _, te := range t.order {
		if t.updateEntity(te) {
			due = append(due, te)
		}
	}
	for _, te := range due {
		if !te.dead {
			te.p.PostUpdate(t.context(te, t.viewersOf(te), te.self))
		}
	}
	t.alloc.Flush()
}

func (t *EntityTracker) handleEvents() {
	t.eventsLock.Lock()
	events := t.events
	t.events = nil
	t.eventsLock.Unlock()

	for _, qe := range events {
		te, ok := t.entries[qe.e]
		if !ok {
			continue
		}
		err := te.p.HandleEvent(t.context(te, t.viewersOf(te), te.self), qe.ev)
		switch {
		case errors.Is(err, protocol.ErrUnhandledEvent):
			t.log.Debug("Drop entity event", zap.Int32("eid", te.p.RootID()), zap.Error(err))
		case err != nil:
			t.log.Error("Handle entity event", zap.Int32("eid", te.p.RootID()), zap.Error(err))
		}
	}
}

// updateEntity applies interest changes and runs Update when te is due or
// has new viewers. It reports whether te was due.
func (t *EntityTracker) updateEntity(te *trackedEntity) bool {
	added, removed := t.interest(te)
	if len(removed) > 0 {
		for _, v := range removed {
			delete(te.viewers, v)
		}
		te.p.Destroy(t.context(te, removed, nil))
	}

	rate := uint64(max(te.p.TickRate(), 1))
	due := t.tick%rate == 0
	if due || len(added) > 0 {
		// Bring the current viewers up to date so the spawn below becomes
		// the shared baseline.
		te.p.Update(t.context(te, t.viewersOf(te), te.self))
	}
	if len(added) > 0 {
		te.p.Spawn(t.context(te, added, nil))
		for _, v := range added {
			te.viewers[v] = struct{}{}
		}
		t.refreshVehicle(te.p.Entity())
	}
	return due
}

// interest compares the viewers in range of te with the ones it has.
func (t *EntityTracker) interest(te *trackedEntity) (added, removed []Viewer) {
	pos, _ := entity.Get(te.p.Entity().Store, entity.Position)
	if !pos.IsValid() {
		return nil, nil
	}
	inRange := make(map[Viewer]struct{})
	box := bvh.Around(vec2d{pos[0], pos[2]}, te.p.TrackingRange())
	t.viewTree.Find(bvh.TouchBound(box), func(n *viewerNode) bool {
		if n.Value != te.self {
			inRange[n.Value] = struct{}{}
		}
		return true
	})
	for v := range inRange {
		if _, ok := te.viewers[v]; !ok {
			added = append(added, v)
		}
	}
	for v := range te.viewers {
		if _, ok := inRange[v]; !ok {
			removed = append(removed, v)
		}
	}
	return
}

// refreshVehicle makes the vehicle of e resend its passengers, so viewers
// that just received e see it seated.
func (t *EntityTracker) refreshVehicle(e *entity.Entity) {
	vehicle, ok := entity.Get(e.Store, entity.Vehicle)
	if !ok || vehicle == nil {
		return
	}
	if te, ok := t.entries[vehicle]; ok {
		te.p.ResendPassengers()
	}
}

func (t *EntityTracker) viewersOf(te *trackedEntity) []Viewer {
	out := make([]Viewer, 0, len(te.viewers))
	for v := range te.viewers {
		out = append(out, v)
	}
	return out
}

func (t *EntityTracker) context(te *trackedEntity, others []Viewer, self Viewer) *trackerContext {
	return &trackerContext{t: t, te: te, others: others, self: self}
}

// trackerContext addresses one tracked entity's viewers for one call.
type trackerContext struct {
	t      *EntityTracker
	te     *trackedEntity
	others []Viewer
	self   Viewer
}

func (c *trackerContext) SendToAll(f protocol.MessageFactory) {
	if c.te.dead || (len(c.others) == 0 && c.self == nil) {
		return
	}
	m := f()
	c.t.record(m)
	for _, v := range c.others {
		v.ViewEntity(m)
	}
	if c.self != nil {
		c.self.ViewEntity(m)
	}
}

func (c *trackerContext) SendToAllExceptSelf(f protocol.MessageFactory) {
	if c.te.dead || len(c.others) == 0 {
		return
	}
	m := f()
	c.t.record(m)
	for _, v := range c.others {
		v.ViewEntity(m)
	}
}

func (c *trackerContext) SendToSelf(f protocol.MessageFactory) {
	if c.te.dead || c.self == nil {
		return
	}
	m := f()
	c.t.record(m)
	c.self.ViewEntity(m)
}

func (c *trackerContext) IDOf(e *entity.Entity) (int32, bool) {
	te, ok := c.t.entries[e]
	if !ok || te.dead {
		return 0, false
	}
	return te.p.RootID(), true
}

func (c *trackerContext) Tick() uint64 { return c.t.tick }

func (t *EntityTracker) record(m protocol.Message) {
	if t.recorder == nil {
		return
	}
	if err := t.recorder.Record(t.tick, m); err != nil {
		t.log.Warn("Trace message failed, recording stopped", zap.Error(err))
		t.recorder = nil
	}
}

// EntityStats describes one tracked entity.
type EntityStats struct {
	ID       int32       `json:"id"`
	Parts    []int32     `json:"parts,omitempty"`
	Kind     entity.Kind `json:"kind"`
	UUID     string      `json:"uuid"`
	Position entity.Vec3 `json:"position"`
	Viewers  int         `json:"viewers"`
	TickRate int         `json:"tick_rate"`
	Range    float64     `json:"tracking_range"`
}

func (t *EntityTracker) statsOf(te *trackedEntity) EntityStats {
	e := te.p.Entity()
	pos, _ := entity.Get(e.Store, entity.Position)
	return EntityStats{
		ID:       te.p.RootID(),
		Parts:    te.p.PartIDs(),
		Kind:     e.Kind(),
		UUID:     e.UUID().String(),
		Position: pos,
		Viewers:  len(te.viewers),
		TickRate: te.p.TickRate(),
		Range:    te.p.TrackingRange(),
	}
}

// Stats lists every tracked entity in tracking order.
func (t *EntityTracker) Stats() []EntityStats {
	out := make([]EntityStats, len(t.order))
	for i, te := range t.order {
		out[i] = t.statsOf(te)
	}
	return out
}

// Lookup finds a tracked entity by its root id.
func (t *EntityTracker) Lookup(id int32) (EntityStats, bool) {
	for _, te := range t.order {
		if te.p.RootID() == id {
			return t.statsOf(te), true
		}
	}
	return EntityStats{}, false
}

// LiveIDs returns the number of ids currently allocated.
func (t *EntityTracker) LiveIDs() int { return t.alloc.Live() }
