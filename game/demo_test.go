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

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"FlowySync/world/entity"
	"FlowySync/world/protocol"
)

type fakeEntityWorld struct {
	spawned []*entity.Entity
	removed []*entity.Entity
	events  []entity.Event
}

func (f *fakeEntityWorld) SpawnEntity(e *entity.Entity, _ ...protocol.Option) (int32, error) {
	f.spawned = append(f.spawned, e)
	return int32(len(f.spawned)), nil
}

func (f *fakeEntityWorld) RemoveEntity(e *entity.Entity) bool {
	f.removed = append(f.removed, e)
	return true
}

func (f *fakeEntityWorld) PostEvent(_ *entity.Entity, ev entity.Event) {
	f.events = append(f.events, ev)
}

func TestDemo_Spawn(t *testing.T) {
	w := new(fakeEntityWorld)
	d := newDemo(zap.NewNop(), w, [3]int32{0, 64, 0})
	require.NoError(t, d.spawn())

	kinds := make([]entity.Kind, len(w.spawned))
	for i, e := range w.spawned {
		kinds[i] = e.Kind()
	}
	assert.Equal(t, []entity.Kind{
		entity.Cow, entity.Pig, entity.Zombie, entity.Villager,
		entity.Wolf, entity.ExperienceOrb, entity.Item, entity.EnderDragon,
	}, kinds)

	vehicle, ok := entity.Get(d.zombie.Store, entity.Vehicle)
	require.True(t, ok)
	assert.Same(t, d.pig, vehicle)

	d.despawn()
	assert.Equal(t, w.spawned, w.removed)
}

func TestDemo_Animate(t *testing.T) {
	w := new(fakeEntityWorld)
	d := newDemo(zap.NewNop(), w, [3]int32{0, 64, 0})
	start, _ := entity.Get(d.cow.Store, entity.Position)

	for i := 0; i < 40; i++ {
		d.animate()
	}
	moved, _ := entity.Get(d.cow.Store, entity.Position)
	assert.NotEqual(t, start, moved)
	assert.InDelta(t, 64, moved[1], 1e-9)

	sitting, _ := entity.Get(d.wolf.Store, entity.IsSitting)
	assert.True(t, sitting)

	assert.Equal(t, []entity.Event{
		entity.ShakeEvent{},
		entity.SwingHandEvent{Hand: entity.PrimaryHand},
		entity.VillagerEvent{Mood: entity.VillagerHappy},
	}, w.events)
}
