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
	"fmt"

	"FlowySync/world/entity"
)

// SpawnAsEntity sends AddEntity with the kind's network type.
func SpawnAsEntity(ctx UpdateContext, p *EntityProtocol, s State) {
	m := SpawnEntity{
		ID:       p.rootID,
		UUID:     p.e.UUID(),
		Type:     p.spec.NetworkType,
		Pos:      s.exact,
		Pitch:    s.pitch,
		Yaw:      s.yaw,
		HeadYaw:  s.headYaw,
		Velocity: s.velocity,
	}
	ctx.SendToAllExceptSelf(func() Message { return m })
}

// SpawnAsPlayer sends AddPlayer followed by the head yaw and velocity,
// which AddPlayer does not carry. The client needs the player info entry of
// the UUID before this.
func SpawnAsPlayer(ctx UpdateContext, p *EntityProtocol, s State) {
	id := p.rootID
	m := SpawnPlayer{ID: id, UUID: p.e.UUID(), Pos: s.exact, Yaw: s.yaw, Pitch: s.pitch}
	ctx.SendToAllExceptSelf(func() Message { return m })
	ctx.SendToAllExceptSelf(func() Message { return HeadLook{ID: id, Yaw: s.headYaw} })
	if s.velocity != [3]int16{} {
		ctx.SendToAllExceptSelf(func() Message { return EntityVelocity{ID: id, Velocity: s.velocity} })
	}
}

// SpawnAsExperienceOrb sends AddExperienceOrb and the velocity it does not
// carry.
func SpawnAsExperienceOrb(ctx UpdateContext, p *EntityProtocol, s State) {
	id := p.rootID
	count := entity.GetOr(p.e.Store, entity.ExperienceCount, 1)
	m := SpawnExperienceOrb{ID: id, Pos: s.exact, Count: int16(count)}
	ctx.SendToAllExceptSelf(func() Message { return m })
	if s.velocity != [3]int16{} {
		ctx.SendToAllExceptSelf(func() Message { return EntityVelocity{ID: id, Velocity: s.velocity} })
	}
}

func params(read paramReader) func() Level {
	return paramsWithEvents(read, nil)
}

func paramsWithEvents(read paramReader, events eventHandler) func() Level {
	return func() Level { return newParamLevel(read, events) }
}

func chain(parent []func() Level, own ...func() Level) []func() Level {
	out := make([]func() Level, 0, len(parent)+len(own))
	return append(append(out, parent...), own...)
}

func build(levels []func() Level) func() []Level {
	return func() []Level {
		out := make([]Level, len(levels))
		for i, l := range levels {
			out[i] = l()
		}
		return out
	}
}

var (
	objectLevels   = []func() Level{entityLevel}
	livingLevels   = chain(objectLevels, newLivingLevel)
	humanoidLevels = chain(livingLevels, humanoidLevel)
	mobLevels      = chain(livingLevels, insentientLevel)
	animalLevels   = chain(mobLevels, ageableLevel)
)

func statusEvent(ctx UpdateContext, p *EntityProtocol, status int8) {
	id := p.RootID()
	ctx.SendToAll(func() Message { return EntityStatus{ID: id, Status: status} })
}

func tameEvents(ctx UpdateContext, p *EntityProtocol, ev entity.Event) error {
	tame, ok := ev.(entity.TameEvent)
	if !ok {
		return ErrUnhandledEvent
	}
	if tame.Success {
		statusEvent(ctx, p, StatusTameHearts)
	} else {
		statusEvent(ctx, p, StatusTameSmoke)
	}
	return nil
}

func batLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(16, entity.Byte(flag(entity.GetOr(e.Store, entity.Hanging, false), 0x01)))
}

func blazeLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(16, entity.Byte(flag(entity.GetOr(e.Store, entity.Charged, false), 0x01)))
}

func creeperLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(16, entity.VarInt(entity.GetOr(e.Store, entity.CreeperState, -1)))
	out.Add(17, boolParam(e, entity.Charged))
	out.Add(18, boolParam(e, entity.Ignited))
}

func dragonLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(16, entity.VarInt(entity.GetOr(e.Store, entity.DragonPhase, 10)))
}

func endermanLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(16, entity.OptBlockState(entity.GetOr(e.Store, entity.CarriedBlock, 0)))
	out.Add(17, boolParam(e, entity.Screaming))
	out.Add(18, boolParam(e, entity.Staring))
}

func ghastLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(16, boolParam(e, entity.Attacking))
}

// guardianLevel leaves the target out while it is not tracked.
func guardianLevel(ctx UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(16, boolParam(e, entity.SpikesRetracted))
	target, _ := entity.Get(e.Store, entity.Target)
	if target == nil {
		out.Add(17, entity.VarInt(0))
	} else if id, ok := ctx.IDOf(target); ok {
		out.Add(17, entity.VarInt(id))
	}
}

func horseLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(17, flagsOf(e, map[byte]entity.Key[bool]{
		0x02: entity.Tamed,
		0x04: entity.Saddled,
		0x08: entity.Bred,
		0x10: entity.Eating,
		0x20: entity.Rearing,
	}))
	out.Add(18, varIntParam(e, entity.Variant))
}

func ironGolemLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(16, entity.Byte(flag(entity.GetOr(e.Store, entity.PlayerCreated, false), 0x01)))
}

func ironGolemEvents(ctx UpdateContext, p *EntityProtocol, ev entity.Event) error {
	poppy, ok := ev.(entity.PoppyEvent)
	if !ok {
		return ErrUnhandledEvent
	}
	if poppy.Offer {
		statusEvent(ctx, p, StatusOfferFlower)
	} else {
		statusEvent(ctx, p, StatusStopFlower)
	}
	return nil
}

func slimeLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(16, entity.VarInt(entity.GetOr(e.Store, entity.Size, 1)))
}

func pigLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(17, boolParam(e, entity.Saddled))
}

func rabbitLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(17, varIntParam(e, entity.RabbitType))
}

func sheepLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	v := byte(entity.GetOr(e.Store, entity.DyeColor, 0)) & 0x0F
	v |= flag(entity.GetOr(e.Store, entity.Sheared, false), 0x10)
	out.Add(17, entity.Byte(v))
}

func skeletonLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(16, boolParam(e, entity.Converting))
}

func snowGolemLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(16, entity.Byte(flag(entity.GetOr(e.Store, entity.Pumpkin, true), 0x10)))
}

func spiderLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(16, entity.Byte(flag(entity.GetOr(e.Store, entity.Climbing, false), 0x01)))
}

func villagerData(e *entity.Entity) entity.VillagerData {
	return entity.GetOr(e.Store, entity.VillagerProfile, entity.VillagerData{Level: 1})
}

func villagerLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(18, villagerData(e))
}

func villagerEvents(ctx UpdateContext, p *EntityProtocol, ev entity.Event) error {
	v, ok := ev.(entity.VillagerEvent)
	if !ok {
		return ErrUnhandledEvent
	}
	switch v.Mood {
	case entity.VillagerLove:
		statusEvent(ctx, p, StatusVillagerLove)
	case entity.VillagerAngry:
		statusEvent(ctx, p, StatusVillagerAngry)
	case entity.VillagerHappy:
		statusEvent(ctx, p, StatusVillagerHappy)
	default:
		return fmt.Errorf("villager mood %d: %w", v.Mood, ErrUnhandledEvent)
	}
	return nil
}

func witchLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(17, boolParam(e, entity.Drinking))
}

func wolfLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(17, flagsOf(e, map[byte]entity.Key[bool]{
		0x01: entity.IsSitting,
		0x04: entity.Tamed,
	}))
	owner, ok := entity.Get(e.Store, entity.Owner)
	out.Add(18, entity.OptUUID{Has: ok, UUID: owner})
	out.Add(19, boolParam(e, entity.Begging))
	out.Add(20, varIntParam(e, entity.CollarColor))
	out.Add(21, varIntParam(e, entity.AngerTime))
}

func wolfEvents(ctx UpdateContext, p *EntityProtocol, ev entity.Event) error {
	if _, ok := ev.(entity.ShakeEvent); ok {
		statusEvent(ctx, p, StatusWolfShake)
		return nil
	}
	return tameEvents(ctx, p, ev)
}

// zombieLevel sends the drowned conversion flag only for plain zombies;
// zombie villagers convert back to villagers instead.
func zombieLevel(drowning bool) paramReader {
	return func(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
		out.Add(16, entity.Boolean(isBaby(e)))
		out.Add(18, entity.Boolean(drowning && entity.GetOr(e.Store, entity.Converting, false)))
	}
}

func zombieVillagerLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	out.Add(19, boolParam(e, entity.Converting))
	out.Add(20, villagerData(e))
}

func itemLevel(_ UpdateContext, e *entity.Entity, out *entity.ParameterList) {
	item, _ := entity.Get(e.Store, entity.DroppedItem)
	out.Add(8, entity.Slot{ItemStack: item})
}

// Tracking ranges in blocks.
const (
	rangePlayer    = 128
	rangeMob       = 80
	rangeFar       = 160
	rangeItem      = 64
	rangeLightning = 256
)

func builtinKinds() []KindSpec {
	mob := func(kind entity.Kind, typ int32, levels []func() Level) KindSpec {
		return KindSpec{
			Kind:          kind,
			NetworkType:   typ,
			TrackingRange: rangeMob,
			Spawn:         SpawnAsEntity,
			Head:          true,
			Equipment:     true,
			Levels:        build(levels),
		}
	}
	humanoid := func(kind entity.Kind) KindSpec {
		return KindSpec{
			Kind:          kind,
			NetworkType:   122,
			TrackingRange: rangePlayer,
			Spawn:         SpawnAsPlayer,
			Head:          true,
			Equipment:     true,
			Levels:        build(humanoidLevels),
		}
	}
	zombie := chain(mobLevels, params(zombieLevel(true)))

	kinds := []KindSpec{
		mob(entity.Bat, 5, chain(mobLevels, params(batLevel))),
		mob(entity.Blaze, 7, chain(mobLevels, params(blazeLevel))),
		mob(entity.Chicken, 15, animalLevels),
		mob(entity.Cow, 18, animalLevels),
		mob(entity.Creeper, 19, chain(mobLevels, params(creeperLevel))),
		mob(entity.Enderman, 29, chain(mobLevels, params(endermanLevel))),
		mob(entity.Endermite, 30, mobLevels),
		mob(entity.Giant, 42, mobLevels),
		mob(entity.Guardian, 46, chain(mobLevels, params(guardianLevel))),
		mob(entity.Horse, 49, chain(animalLevels, paramsWithEvents(horseLevel, tameEvents))),
		mob(entity.Husk, 50, zombie),
		mob(entity.IronGolem, 53, chain(mobLevels, paramsWithEvents(ironGolemLevel, ironGolemEvents))),
		mob(entity.MagmaCube, 62, chain(mobLevels, params(slimeLevel))),
		mob(entity.Pig, 72, chain(animalLevels, params(pigLevel))),
		mob(entity.Rabbit, 79, chain(animalLevels, params(rabbitLevel))),
		mob(entity.Sheep, 82, chain(animalLevels, params(sheepLevel))),
		mob(entity.Silverfish, 85, mobLevels),
		mob(entity.Skeleton, 86, chain(mobLevels, params(skeletonLevel))),
		mob(entity.Slime, 88, chain(mobLevels, params(slimeLevel))),
		mob(entity.SnowGolem, 91, chain(mobLevels, params(snowGolemLevel))),
		mob(entity.Spider, 95, chain(mobLevels, params(spiderLevel))),
		mob(entity.Villager, 108, chain(animalLevels, paramsWithEvents(villagerLevel, villagerEvents))),
		mob(entity.Witch, 112, chain(mobLevels, params(witchLevel))),
		mob(entity.Wolf, 116, chain(animalLevels, paramsWithEvents(wolfLevel, wolfEvents))),
		mob(entity.Zombie, 118, zombie),
		mob(entity.ZombieVillager, 120, chain(mobLevels, params(zombieLevel(false)), params(zombieVillagerLevel))),
		humanoid(entity.Player),
		humanoid(entity.HumanNPC),
	}

	dragon := mob(entity.EnderDragon, 27, chain(mobLevels, params(dragonLevel)))
	dragon.Parts = 8
	dragon.TrackingRange = rangeFar
	dragon.Equipment = false
	ghast := mob(entity.Ghast, 41, chain(mobLevels, params(ghastLevel)))
	ghast.TrackingRange = rangeFar

	kinds = append(kinds,
		dragon,
		ghast,
		KindSpec{
			Kind:          entity.Item,
			NetworkType:   54,
			TrackingRange: rangeItem,
			Spawn:         SpawnAsEntity,
			Levels:        build(chain(objectLevels, params(itemLevel))),
		},
		KindSpec{
			Kind:          entity.ExperienceOrb,
			NetworkType:   34,
			TickRate:      20,
			TrackingRange: rangeItem,
			Spawn:         SpawnAsExperienceOrb,
			Levels:        build(objectLevels),
		},
		KindSpec{
			Kind:          entity.LightningBolt,
			NetworkType:   59,
			TrackingRange: rangeLightning,
			Spawn:         SpawnAsEntity,
			Static:        true,
		},
	)
	return kinds
}

// DefaultRegistry returns a registry with every built-in kind.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, spec := range builtinKinds() {
		if err := r.Register(spec); err != nil {
			panic(err)
		}
	}
	return r
}
