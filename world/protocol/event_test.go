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
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FlowySync/world/entity"
)

type unknownEvent struct{}

func (unknownEvent) EventName() string { return "unknown" }

func TestHandleEvent_Living(t *testing.T) {
	f := newFixture(t, entity.Zombie)
	f.spawn()
	id := f.p.RootID()

	require.NoError(t, f.p.HandleEvent(f.ctx, entity.DamageEvent{Yaw: 30}))
	assert.Equal(t, []Message{
		EntityStatus{ID: id, Status: StatusHurt},
		HurtAnimation{ID: id, Yaw: 30},
	}, f.ctx.take())

	require.NoError(t, f.p.HandleEvent(f.ctx, entity.DeathEvent{}))
	assert.Equal(t, []Message{EntityStatus{ID: id, Status: StatusDeath}}, f.ctx.take())
}

func TestHandleEvent_BaseFallback(t *testing.T) {
	f := newFixture(t, entity.Wolf)
	f.spawn()
	id := f.p.RootID()

	require.NoError(t, f.p.HandleEvent(f.ctx, entity.SwingHandEvent{Hand: entity.SecondaryHand}))
	assert.Equal(t, []Message{Animation{ID: id, Animation: AnimSwingOffHand}}, f.ctx.take())

	require.NoError(t, f.p.HandleEvent(f.ctx, entity.CriticalHitEvent{}))
	assert.Equal(t, []Message{Animation{ID: id, Animation: AnimCriticalHit}}, f.ctx.take())

	err := f.p.HandleEvent(f.ctx, unknownEvent{})
	assert.ErrorIs(t, err, ErrUnhandledEvent)
	assert.Empty(t, f.ctx.take())
}

func TestHandleEvent_KindSpecific(t *testing.T) {
	for _, tc := range []struct {
		kind   entity.Kind
		ev     entity.Event
		status int8
	}{
		{entity.Wolf, entity.ShakeEvent{}, StatusWolfShake},
		{entity.Wolf, entity.TameEvent{Success: true}, StatusTameHearts},
		{entity.Horse, entity.TameEvent{}, StatusTameSmoke},
		{entity.IronGolem, entity.PoppyEvent{Offer: true}, StatusOfferFlower},
		{entity.IronGolem, entity.PoppyEvent{}, StatusStopFlower},
		{entity.Villager, entity.VillagerEvent{Mood: entity.VillagerHappy}, StatusVillagerHappy},
	} {
		t.Run(string(tc.kind)+"/"+tc.ev.EventName(), func(t *testing.T) {
			f := newFixture(t, tc.kind)
			f.spawn()
			require.NoError(t, f.p.HandleEvent(f.ctx, tc.ev))
			assert.Equal(t, []Message{EntityStatus{ID: f.p.RootID(), Status: tc.status}}, f.ctx.take())
		})
	}

	f := newFixture(t, entity.Pig)
	f.spawn()
	assert.ErrorIs(t, f.p.HandleEvent(f.ctx, entity.ShakeEvent{}), ErrUnhandledEvent)
}

func TestHandleEvent_Collect(t *testing.T) {
	f := newFixture(t, entity.Item)
	f.spawn()
	collector := entity.New(entity.Player, uuid.New())

	require.NoError(t, f.p.HandleEvent(f.ctx, entity.CollectEvent{Collector: collector, Count: 3}))
	assert.Empty(t, f.ctx.take(), "unknown collector")

	f.ctx.ids[collector] = 9
	require.NoError(t, f.p.HandleEvent(f.ctx, entity.CollectEvent{Collector: collector, Count: 3}))
	assert.Equal(t, []Message{CollectItem{Collected: f.p.RootID(), Collector: 9, Count: 3}}, f.ctx.take())

	assert.ErrorIs(t, f.p.HandleEvent(f.ctx, entity.DamageEvent{}), ErrUnhandledEvent,
		"items are not living")
}

func TestHandleEvent_WakeUp(t *testing.T) {
	f := newFixture(t, entity.HumanNPC)
	f.spawn()
	require.NoError(t, f.p.HandleEvent(f.ctx, entity.WakeUpEvent{}))
	assert.Equal(t, []Message{Animation{ID: f.p.RootID(), Animation: AnimWakeUp}}, f.ctx.take())
}

func TestHandleEvent_SwingNotEchoedToSelf(t *testing.T) {
	f := newFixture(t, entity.Player)
	f.ctx.others, f.ctx.self = false, true
	f.spawn()
	require.NoError(t, f.p.HandleEvent(f.ctx, entity.SwingHandEvent{}))
	assert.Empty(t, f.ctx.take())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	spec := KindSpec{Kind: "dummy", NetworkType: 1, Spawn: SpawnAsEntity}
	require.NoError(t, r.Register(spec))
	assert.ErrorIs(t, r.Register(spec), ErrDuplicateKind)
	assert.Error(t, r.Register(KindSpec{Kind: "nospawn"}))
	assert.ErrorIs(t, r.Register(KindSpec{Kind: "neg", Parts: -1, Spawn: SpawnAsEntity}), ErrPartCount)

	got, ok := r.Spec("dummy")
	require.True(t, ok)
	assert.Equal(t, DefaultTickRate, got.TickRate)
	assert.Equal(t, float64(DefaultTrackingRange), got.TrackingRange)

	_, err := r.New(entity.New(entity.Cow, uuid.New()))
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.ErrorIs(t, r.SetTrackingRange(entity.Cow, 10), ErrUnknownKind)

	require.NoError(t, r.SetTrackingRange("dummy", 12))
	p, err := r.New(entity.New("dummy", uuid.New()))
	require.NoError(t, err)
	assert.Equal(t, 12.0, p.TrackingRange())

	p, err = r.New(entity.New("dummy", uuid.New()), WithTrackingRange(3), WithTickRate(4))
	require.NoError(t, err)
	assert.Equal(t, 3.0, p.TrackingRange())
	assert.Equal(t, 4, p.TickRate())
}
