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

package entity

import (
	"math"

	"github.com/google/uuid"
)

// Kind names an entity type. It is the registry path without the namespace,
// e.g. "zombie_villager".
type Kind string

const (
	Bat            Kind = "bat"
	Blaze          Kind = "blaze"
	Chicken        Kind = "chicken"
	Cow            Kind = "cow"
	Creeper        Kind = "creeper"
	EnderDragon    Kind = "ender_dragon"
	Enderman       Kind = "enderman"
	Endermite      Kind = "endermite"
	ExperienceOrb  Kind = "experience_orb"
	Ghast          Kind = "ghast"
	Giant          Kind = "giant"
	Guardian       Kind = "guardian"
	Horse          Kind = "horse"
	Husk           Kind = "husk"
	IronGolem      Kind = "iron_golem"
	Item           Kind = "item"
	LightningBolt  Kind = "lightning_bolt"
	MagmaCube      Kind = "magma_cube"
	Pig            Kind = "pig"
	Rabbit         Kind = "rabbit"
	Sheep          Kind = "sheep"
	Silverfish     Kind = "silverfish"
	Skeleton       Kind = "skeleton"
	Slime          Kind = "slime"
	SnowGolem      Kind = "snow_golem"
	Spider         Kind = "spider"
	Villager       Kind = "villager"
	Witch          Kind = "witch"
	Wolf           Kind = "wolf"
	Zombie         Kind = "zombie"
	ZombieVillager Kind = "zombie_villager"
	Player         Kind = "player"
	// HumanNPC looks like a player but has no session behind it.
	HumanNPC Kind = "human_npc"
)

// Entity is a simulated object. All of its state lives in the embedded
// Store; the identity fields never change.
type Entity struct {
	*Store
	uuid uuid.UUID
	kind Kind
}

func New(kind Kind, id uuid.UUID) *Entity {
	return &Entity{Store: NewStore(), uuid: id, kind: kind}
}

func (e *Entity) UUID() uuid.UUID { return e.uuid }
func (e *Entity) Kind() Kind      { return e.kind }

type Vec3 [3]float64

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }

// IsValid reports whether every component is finite.
func (v Vec3) IsValid() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Rotation is yaw and pitch in degrees.
type Rotation [2]float32

// Hand selects the arm that performs an action.
type Hand byte

const (
	PrimaryHand Hand = iota
	SecondaryHand
)

// Arm is the dominant arm of a humanoid as shown by the client.
type Arm byte

const (
	LeftArm Arm = iota
	RightArm
)
