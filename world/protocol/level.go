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
	"reflect"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"FlowySync/world/entity"
)

// Level is one step of the specialization chain of an entity kind. Levels of
// a protocol run parent first, each appending its own data parameters.
type Level interface {
	// FullState appends every parameter of the level and resets the level
	// snapshot to what was appended.
	FullState(ctx UpdateContext, p *EntityProtocol, params *entity.ParameterList)
	// Diff appends the parameters that changed since they were last sent.
	Diff(ctx UpdateContext, p *EntityProtocol, params *entity.ParameterList)
}

// EventLevel is implemented by levels that react to discrete events. They
// return ErrUnhandledEvent for events they don't know.
type EventLevel interface {
	HandleEvent(ctx UpdateContext, p *EntityProtocol, ev entity.Event) error
}

// paramReader appends the current values of a level's parameters. A reader
// may leave out a parameter it cannot resolve this tick; it is then neither
// sent nor recorded.
type paramReader func(ctx UpdateContext, e *entity.Entity, out *entity.ParameterList)

type eventHandler func(ctx UpdateContext, p *EntityProtocol, ev entity.Event) error

// paramLevel keeps the last sent value of every parameter index it owns.
type paramLevel struct {
	read   paramReader
	events eventHandler
	last   map[byte]entity.ParameterValue
}

func newParamLevel(read paramReader, events eventHandler) *paramLevel {
	return &paramLevel{read: read, events: events}
}

func (l *paramLevel) FullState(ctx UpdateContext, p *EntityProtocol, params *entity.ParameterList) {
	var cur entity.ParameterList
	l.read(ctx, p.Entity(), &cur)
	l.last = make(map[byte]entity.ParameterValue, len(cur))
	for _, param := range cur {
		l.last[param.Index] = entity.Clone(param.Value)
	}
	*params = append(*params, cur...)
}

func (l *paramLevel) Diff(ctx UpdateContext, p *EntityProtocol, params *entity.ParameterList) {
	if l.last == nil {
		l.last = make(map[byte]entity.ParameterValue)
	}
	var cur entity.ParameterList
	l.read(ctx, p.Entity(), &cur)
	for _, param := range cur {
		if old, ok := l.last[param.Index]; ok && reflect.DeepEqual(old, param.Value) {
			continue
		}
		params.Add(param.Index, param.Value)
		l.last[param.Index] = entity.Clone(param.Value)
	}
}

func (l *paramLevel) HandleEvent(ctx UpdateContext, p *EntityProtocol, ev entity.Event) error {
	if l.events == nil {
		return ErrUnhandledEvent
	}
	return l.events(ctx, p, ev)
}

func flag(b bool, mask byte) byte {
	if b {
		return mask
	}
	return 0
}

func flagsOf(e *entity.Entity, bits map[byte]entity.Key[bool]) entity.Byte {
	var v byte
	for mask, k := range bits {
		v |= flag(entity.GetOr(e.Store, k, false), mask)
	}
	return entity.Byte(v)
}

func boolParam(e *entity.Entity, k entity.Key[bool]) entity.Boolean {
	return entity.Boolean(entity.GetOr(e.Store, k, false))
}

func varIntParam(e *entity.Entity, k entity.Key[int32]) entity.VarInt {
	return entity.VarInt(entity.GetOr(e.Store, k, 0))
}

var entityFlags = map[byte]entity.Key[bool]{
	0x01: entity.OnFire,
	0x02: entity.Sneaking,
	0x08: entity.Sprinting,
	0x10: entity.IsSwimming,
	0x20: entity.Invisible,
	0x40: entity.Glowing,
	0x80: entity.ElytraFlying,
}

// entityLevel holds the parameters every entity has.
func entityLevel() Level {
	return newParamLevel(func(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
		out.Add(0, flagsOf(e, entityFlags))
		out.Add(1, entity.VarInt(entity.GetOr(e.Store, entity.Air, 300)))
		name, ok := entity.Get(e.Store, entity.CustomName)
		out.Add(2, entity.OptChat{Has: ok, Text: name})
		out.Add(3, boolParam(e, entity.CustomNameVisible))
		out.Add(4, boolParam(e, entity.Silent))
		out.Add(5, boolParam(e, entity.NoGravity))
		out.Add(6, entity.GetOr(e.Store, entity.CurrentPose, entity.Standing))
		out.Add(7, varIntParam(e, entity.FrozenTicks))
	}, nil)
}

// livingLevel adds health, hands and the status effects.
type livingLevel struct {
	*paramLevel
	effects     entity.Effects
	effectsTick uint64
}

func newLivingLevel() Level {
	l := &livingLevel{}
	l.paramLevel = newParamLevel(func(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
		var hands byte
		if entity.GetOr(e.Store, entity.HandActive, false) {
			hands |= 0x01
			if entity.GetOr(e.Store, entity.ActiveHand, entity.PrimaryHand) == entity.SecondaryHand {
				hands |= 0x02
			}
		}
		effects := entity.GetOr(e.Store, entity.ActiveEffects, nil)
		out.Add(8, entity.Byte(hands))
		out.Add(9, entity.Float(entity.GetOr(e.Store, entity.Health, 1)))
		out.Add(10, entity.VarInt(effects.ParticleColor()))
		out.Add(11, entity.Boolean(effects.Ambient()))
		out.Add(12, varIntParam(e, entity.ArrowsInBody))
		out.Add(13, varIntParam(e, entity.BeeStingers))
	}, livingEvents)
	return l
}

func livingEvents(ctx UpdateContext, p *EntityProtocol, ev entity.Event) error {
	id := p.RootID()
	switch ev := ev.(type) {
	case entity.DamageEvent:
		ctx.SendToAll(func() Message { return EntityStatus{ID: id, Status: StatusHurt} })
		ctx.SendToAll(func() Message { return HurtAnimation{ID: id, Yaw: ev.Yaw} })
	case entity.DeathEvent:
		ctx.SendToAll(func() Message { return EntityStatus{ID: id, Status: StatusDeath} })
	default:
		return ErrUnhandledEvent
	}
	return nil
}

func (l *livingLevel) FullState(ctx UpdateContext, p *EntityProtocol, params *entity.ParameterList) {
	l.paramLevel.FullState(ctx, p, params)

	cur := entity.GetOr(p.Entity().Store, entity.ActiveEffects, nil)
	id := p.RootID()
	for _, t := range sortedEffects(cur) {
		e := cur[t]
		ctx.SendToAll(func() Message { return EffectAdd{ID: id, Effect: e} })
	}
	l.effects = maps.Clone(cur)
	l.effectsTick = ctx.Tick()
}

// Diff sends effects whose state cannot be explained by time passing since
// the previous diff, and removes the ones that are gone.
func (l *livingLevel) Diff(ctx UpdateContext, p *EntityProtocol, params *entity.ParameterList) {
	l.paramLevel.Diff(ctx, p, params)

	cur := entity.GetOr(p.Entity().Store, entity.ActiveEffects, nil)
	now := ctx.Tick()
	elapsed := int64(now - l.effectsTick)
	id := p.RootID()
	for _, t := range sortedEffects(cur) {
		e := cur[t]
		prev, ok := l.effects[t]
		if ok && int64(prev.Duration)-elapsed == int64(e.Duration) && prev.SameFlags(e) {
			continue
		}
		ctx.SendToAll(func() Message { return EffectAdd{ID: id, Effect: e} })
	}
	for _, t := range sortedEffects(l.effects) {
		if _, ok := cur[t]; !ok {
			ctx.SendToAll(func() Message { return EffectRemove{ID: id, Effect: t} })
		}
	}
	l.effects = maps.Clone(cur)
	l.effectsTick = now
}

func sortedEffects(m entity.Effects) []entity.EffectType {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// humanoidLevel covers players and player shaped NPCs.
func humanoidLevel() Level {
	return newParamLevel(func(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
		out.Add(15, entity.Float(entity.GetOr(e.Store, entity.AdditionalHearts, 0)))
		out.Add(16, varIntParam(e, entity.Score))
		out.Add(17, entity.Byte(entity.GetOr(e.Store, entity.SkinParts, 0)))
		out.Add(18, entity.Byte(entity.GetOr(e.Store, entity.MainArm, entity.RightArm)))
	}, func(ctx UpdateContext, p *EntityProtocol, ev entity.Event) error {
		if _, ok := ev.(entity.WakeUpEvent); !ok {
			return ErrUnhandledEvent
		}
		id := p.RootID()
		ctx.SendToAll(func() Message { return Animation{ID: id, Animation: AnimWakeUp} })
		return nil
	})
}

var mobFlags = map[byte]entity.Key[bool]{
	0x01: entity.AIDisabled,
	0x02: entity.LeftHanded,
	0x04: entity.Aggressive,
}

func insentientLevel() Level {
	return newParamLevel(func(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
		out.Add(15, flagsOf(e, mobFlags))
	}, nil)
}

func isBaby(e *entity.Entity) bool {
	if entity.Has(e.Store, entity.IsBaby) {
		return entity.GetOr(e.Store, entity.IsBaby, false)
	}
	return entity.GetOr(e.Store, entity.Age, 0) < 0
}

func ageableLevel() Level {
	return newParamLevel(func(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
		out.Add(16, entity.Boolean(isBaby(e)))
	}, nil)
}
