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
	"github.com/Tnze/go-mc/chat"
	"github.com/google/uuid"
)

// Movement.
var (
	Position = NewKey[Vec3]("position")
	Look     = NewKey[Rotation]("look")
	HeadYaw  = NewKey[float32]("head_yaw")
	Velocity = NewKeyWithDefault("velocity", Vec3{})
	OnGround = NewKeyWithDefault("on_ground", false)
)

// Shared flags and parameters of every entity.
var (
	OnFire            = NewKeyWithDefault("on_fire", false)
	Sneaking          = NewKeyWithDefault("sneaking", false)
	Sprinting         = NewKeyWithDefault("sprinting", false)
	IsSwimming        = NewKeyWithDefault("swimming", false)
	Invisible         = NewKeyWithDefault("invisible", false)
	Glowing           = NewKeyWithDefault("glowing", false)
	ElytraFlying      = NewKeyWithDefault("elytra_flying", false)
	Silent            = NewKeyWithDefault("silent", false)
	NoGravity         = NewKeyWithDefault("no_gravity", false)
	CustomName        = NewKey[chat.Message]("custom_name")
	CustomNameVisible = NewKeyWithDefault("custom_name_visible", false)
	CurrentPose       = NewKeyWithDefault("pose", Standing)
	Air               = NewKeyWithDefault[int32]("air", 300).WithBounds(Clamp[int32](-20, 300))
	FrozenTicks       = NewKeyWithDefault[int32]("frozen_ticks", 0)
)

// Riding.
var (
	Passengers = NewKey[[]*Entity]("passengers")
	Vehicle    = NewKey[*Entity]("vehicle")
)

// Living entities.
var (
	Health        = NewKeyWithDefault[float32]("health", 1).WithBounds(Clamp[float32](0, 1024))
	HandActive    = NewKeyWithDefault("hand_active", false)
	ActiveHand    = NewKeyWithDefault("active_hand", PrimaryHand)
	ArrowsInBody  = NewKeyWithDefault[int32]("arrows_in_body", 0)
	BeeStingers   = NewKeyWithDefault[int32]("bee_stingers", 0)
	ActiveEffects = NewKey[Effects]("effects")
	EquippedItems = NewKey[Equipment]("equipment")
)

// Humanoids.
var (
	AdditionalHearts = NewKeyWithDefault[float32]("additional_hearts", 0)
	Score            = NewKeyWithDefault[int32]("score", 0)
	SkinParts        = NewKeyWithDefault[byte]("skin_parts", 0)
	MainArm          = NewKeyWithDefault("main_arm", RightArm)
)

// Mobs.
var (
	AIDisabled = NewKeyWithDefault("ai_disabled", false)
	LeftHanded = NewKeyWithDefault("left_handed", false)
	// Aggressive raises the arms of zombies and skeletons.
	Aggressive = NewKeyWithDefault("aggressive", false)
	IsBaby     = NewKeyWithDefault("baby", false)
	// Age below zero means baby when IsBaby is not set.
	Age = NewKeyWithDefault[int32]("age", 0)
)

// Kind specific.
var (
	Saddled         = NewKeyWithDefault("saddled", false)
	Sheared         = NewKeyWithDefault("sheared", false)
	DyeColor        = NewKeyWithDefault[int32]("dye_color", 0).WithBounds(Clamp[int32](0, 15))
	CollarColor     = NewKeyWithDefault[int32]("collar_color", 14).WithBounds(Clamp[int32](0, 15))
	Variant         = NewKeyWithDefault[int32]("variant", 0)
	VillagerProfile = NewKeyWithDefault("villager_data", VillagerData{Level: 1})
	Hanging         = NewKeyWithDefault("hanging", false)
	Size            = NewKeyWithDefault[int32]("size", 1).WithBounds(Clamp[int32](1, 127))
	Converting      = NewKeyWithDefault("converting", false)
	Tamed           = NewKeyWithDefault("tamed", false)
	IsSitting       = NewKeyWithDefault("sitting", false)
	Owner           = NewKey[uuid.UUID]("owner")
	AngerTime       = NewKeyWithDefault[int32]("anger_time", 0)
	Begging         = NewKeyWithDefault("begging", false)
	DragonPhase     = NewKeyWithDefault[int32]("dragon_phase", 10)
	CreeperState    = NewKeyWithDefault[int32]("creeper_state", -1).WithBounds(Clamp[int32](-1, 1))
	Charged         = NewKeyWithDefault("charged", false)
	Ignited         = NewKeyWithDefault("ignited", false)
	Screaming       = NewKeyWithDefault("screaming", false)
	Staring         = NewKeyWithDefault("staring", false)
	CarriedBlock    = NewKeyWithDefault[int32]("carried_block", 0)
	Attacking       = NewKeyWithDefault("attacking", false)
	Target          = NewKey[*Entity]("target")
	SpikesRetracted = NewKeyWithDefault("spikes_retracted", false)
	PlayerCreated   = NewKeyWithDefault("player_created", false)
	Pumpkin         = NewKeyWithDefault("pumpkin", true)
	Climbing        = NewKeyWithDefault("climbing", false)
	Drinking        = NewKeyWithDefault("drinking", false)
	RabbitType      = NewKeyWithDefault[int32]("rabbit_type", 0)
	Eating          = NewKeyWithDefault("eating", false)
	Rearing         = NewKeyWithDefault("rearing", false)
	Bred            = NewKeyWithDefault("bred", false)
	DroppedItem     = NewKey[ItemStack]("item")
	ExperienceCount = NewKeyWithDefault[int32]("experience", 1).WithBounds(Clamp[int32](1, 32767))
)
