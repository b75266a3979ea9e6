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
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"FlowySync/world/entity"
)

// Spawner sends the create message(s) of a kind.
type Spawner func(ctx UpdateContext, p *EntityProtocol, s State)

// KindSpec describes how a kind is synchronized.
type KindSpec struct {
	Kind entity.Kind
	// NetworkType is the entity type registry id sent in AddEntity.
	NetworkType int32
	// Parts is the number of extra ids the kind owns after its root id.
	Parts int
	// TickRate is the number of ticks between two updates, 1 by default.
	TickRate int
	// TrackingRange is the default view distance in blocks.
	TrackingRange float64
	Spawn         Spawner
	// Head enables the independent head yaw.
	Head bool
	// Equipment enables the six equipment slots.
	Equipment bool
	// Static kinds are never updated after spawn.
	Static bool
	// Levels returns fresh levels, parent first.
	Levels func() []Level
}

const (
	DefaultTickRate      = 1
	DefaultTrackingRange = 80
)

type Option func(p *EntityProtocol)

// WithFixedID makes the protocol use an id allocated elsewhere, e.g. the
// entity id a player was given at login.
func WithFixedID(id int32) Option {
	return func(p *EntityProtocol) { p.fixedID, p.hasFixedID = id, true }
}

func WithTrackingRange(blocks float64) Option {
	return func(p *EntityProtocol) { p.trackingRange = blocks }
}

func WithTickRate(n int) Option {
	return func(p *EntityProtocol) {
		if n > 0 {
			p.tickRate = n
		}
	}
}

// Registry maps entity kinds to their synchronization.
type Registry struct {
	mu     sync.RWMutex
	kinds  map[entity.Kind]*KindSpec
	ranges map[entity.Kind]float64
}

func NewRegistry() *Registry {
	return &Registry{
		kinds:  make(map[entity.Kind]*KindSpec),
		ranges: make(map[entity.Kind]float64),
	}
}

func (r *Registry) Register(spec KindSpec) error {
	switch {
	case spec.Kind == "":
		return errors.New("register entity kind: empty kind")
	case spec.Parts < 0:
		return fmt.Errorf("register %s: %d parts: %w", spec.Kind, spec.Parts, ErrPartCount)
	case spec.Spawn == nil:
		return fmt.Errorf("register %s: no spawner", spec.Kind)
	}
	if spec.TickRate <= 0 {
		spec.TickRate = DefaultTickRate
	}
	if spec.TrackingRange <= 0 {
		spec.TrackingRange = DefaultTrackingRange
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.kinds[spec.Kind]; ok {
		return fmt.Errorf("register %s: %w", spec.Kind, ErrDuplicateKind)
	}
	r.kinds[spec.Kind] = &spec
	return nil
}

// SetTrackingRange overrides the default tracking range of a kind for
// protocols created afterwards.
func (r *Registry) SetTrackingRange(kind entity.Kind, blocks float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.kinds[kind]; !ok {
		return fmt.Errorf("tracking range of %q: %w", kind, ErrUnknownKind)
	}
	r.ranges[kind] = blocks
	return nil
}

func (r *Registry) Spec(kind entity.Kind) (KindSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.kinds[kind]
	if !ok {
		return KindSpec{}, false
	}
	return *spec, true
}

// Kinds returns the registered kinds in lexical order.
func (r *Registry) Kinds() []entity.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := maps.Keys(r.kinds)
	slices.Sort(kinds)
	return kinds
}

// New creates the protocol of e. The protocol still has to be initialized.
func (r *Registry) New(e *entity.Entity, opts ...Option) (*EntityProtocol, error) {
	r.mu.RLock()
	spec, ok := r.kinds[e.Kind()]
	rng, hasRange := r.ranges[e.Kind()]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("new protocol for %q: %w", e.Kind(), ErrUnknownKind)
	}
	if !hasRange {
		rng = spec.TrackingRange
	}

	p := &EntityProtocol{
		e:             e,
		spec:          spec,
		tickRate:      spec.TickRate,
		trackingRange: rng,
	}
	if spec.Levels != nil {
		p.levels = spec.Levels()
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}
