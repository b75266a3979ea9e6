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
	"context"
	"math"
	"time"

	"github.com/Tnze/go-mc/chat"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"FlowySync/world"
	"FlowySync/world/entity"
	"FlowySync/world/protocol"
)

// demoStep is how often the demo population moves.
const demoStep = 250 * time.Millisecond

// entityWorld is the part of a world the demo population needs.
type entityWorld interface {
	SpawnEntity(e *entity.Entity, opts ...protocol.Option) (int32, error)
	RemoveEntity(e *entity.Entity) bool
	PostEvent(e *entity.Entity, ev entity.Event)
}

// demo is a small herd of entities around the spawn point, so a client
// connecting to an empty level has something to watch.
type demo struct {
	log    *zap.Logger
	w      entityWorld
	center entity.Vec3

	cow, pig, zombie *entity.Entity
	villager, wolf   *entity.Entity
	spawned          []*entity.Entity
	step             int
}

func newDemo(log *zap.Logger, w entityWorld, spawn [3]int32) *demo {
	d := &demo{
		log:    log,
		w:      w,
		center: entity.Vec3{float64(spawn[0]) + .5, float64(spawn[1]), float64(spawn[2]) + .5},
	}
	d.cow = d.newEntity(entity.Cow, entity.Vec3{4, 0, 0})
	d.pig = d.newEntity(entity.Pig, entity.Vec3{-4, 0, 2})
	entity.Set(d.pig.Store, entity.Saddled, true)
	d.zombie = d.newEntity(entity.Zombie, entity.Vec3{-4, 1, 2})
	entity.Set(d.pig.Store, entity.Passengers, []*entity.Entity{d.zombie})
	entity.Set(d.zombie.Store, entity.Vehicle, d.pig)

	d.villager = d.newEntity(entity.Villager, entity.Vec3{0, 0, 5})
	entity.Set(d.villager.Store, entity.CustomName, chat.Text("Librarian"))
	entity.Set(d.villager.Store, entity.CustomNameVisible, true)
	entity.Set(d.villager.Store, entity.VillagerProfile, entity.VillagerData{Profession: 9, Level: 2})

	d.wolf = d.newEntity(entity.Wolf, entity.Vec3{2, 0, -3})
	entity.Set(d.wolf.Store, entity.Tamed, true)
	entity.Set(d.wolf.Store, entity.Owner, uuid.New())

	orb := d.newEntity(entity.ExperienceOrb, entity.Vec3{1, 0, 1})
	entity.Set(orb.Store, entity.ExperienceCount, 7)
	item := d.newEntity(entity.Item, entity.Vec3{-1, 0, -1})
	entity.Set(item.Store, entity.DroppedItem, entity.ItemStack{Item: 802, Count: 1})

	dragon := d.newEntity(entity.EnderDragon, entity.Vec3{0, 30, 0})
	entity.Set(dragon.Store, entity.DragonPhase, 0)
	entity.Set(dragon.Store, entity.NoGravity, true)
	return d
}

func (d *demo) newEntity(kind entity.Kind, offset entity.Vec3) *entity.Entity {
	e := entity.New(kind, uuid.New())
	entity.Set(e.Store, entity.Position, d.center.Add(offset))
	entity.Set(e.Store, entity.Look, entity.Rotation{})
	d.spawned = append(d.spawned, e)
	return e
}

// spawn tracks the population. Vehicles are spawned before their riders.
func (d *demo) spawn() error {
	for _, e := range d.spawned {
		id, err := d.w.SpawnEntity(e)
		if err != nil {
			return err
		}
		d.log.Debug("Spawn demo entity", zap.String("kind", string(e.Kind())), zap.Int32("eid", id))
	}
	return nil
}

// despawn removes every demo entity from the world.
func (d *demo) despawn() {
	for _, e := range d.spawned {
		d.w.RemoveEntity(e)
	}
}

// run animates the population until ctx is done.
func (d *demo) run(ctx context.Context) {
	ticker := time.NewTicker(demoStep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.despawn()
			return
		case <-ticker.C:
			d.animate()
		}
	}
}

func (d *demo) animate() {
	d.step++

	// The cow walks a circle of radius 4 and looks where it goes.
	angle := float64(d.step) * math.Pi / 40
	pos := d.center.Add(entity.Vec3{4 * math.Cos(angle), 0, 4 * math.Sin(angle)})
	yaw := float32(angle*180/math.Pi) + 180
	entity.Set(d.cow.Store, entity.Position, pos)
	entity.Set(d.cow.Store, entity.Look, entity.Rotation{yaw, 0})
	entity.Set(d.cow.Store, entity.HeadYaw, yaw)

	// The pig carries its rider back and forth.
	pigPos := d.center.Add(entity.Vec3{-4, 0, 2 + 3*math.Sin(angle)})
	entity.Set(d.pig.Store, entity.Position, pigPos)
	entity.Set(d.zombie.Store, entity.Position, pigPos.Add(entity.Vec3{0, 1, 0}))

	switch d.step % 40 {
	case 0:
		d.w.PostEvent(d.villager, entity.VillagerEvent{Mood: entity.VillagerHappy})
	case 10:
		entity.Set(d.wolf.Store, entity.IsSitting, !entity.GetOr(d.wolf.Store, entity.IsSitting, false))
	case 20:
		d.w.PostEvent(d.wolf, entity.ShakeEvent{})
	case 30:
		d.w.PostEvent(d.zombie, entity.SwingHandEvent{Hand: entity.PrimaryHand})
	}
}

// startDemo spawns the demo population into w and animates it in the
// background. The returned function stops it and removes the entities.
func startDemo(log *zap.Logger, w *world.World) (stop func(), err error) {
	spawn, _ := w.SpawnPositionAndAngle()
	d := newDemo(log, w, spawn)
	if err := d.spawn(); err != nil {
		d.despawn()
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}, nil
}
