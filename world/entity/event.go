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

// Event is a discrete, one-off occurrence on an entity that viewers must see
// immediately, outside the regular diffing cycle. The set is open: protocol
// levels handle the variants they know and pass the rest to their parent.
type Event interface {
	EventName() string
}

type (
	// DamageEvent makes the entity flinch. Yaw is the direction the hit came
	// from, relative to the entity's own yaw.
	DamageEvent struct{ Yaw float32 }

	SwingHandEvent struct{ Hand Hand }

	// CollectEvent is fired on the collected entity (item or orb).
	CollectEvent struct {
		Collector *Entity
		Count     int32
	}

	CriticalHitEvent struct{}

	WakeUpEvent struct{}

	DeathEvent struct{}

	// PoppyEvent starts or stops an iron golem offering a flower.
	PoppyEvent struct{ Offer bool }

	ShakeEvent struct{}

	// TameEvent shows hearts on success and smoke otherwise.
	TameEvent struct{ Success bool }

	VillagerEvent struct{ Mood VillagerMood }
)

type VillagerMood byte

const (
	VillagerLove VillagerMood = iota
	VillagerAngry
	VillagerHappy
)

func (DamageEvent) EventName() string      { return "damage" }
func (SwingHandEvent) EventName() string   { return "swing_hand" }
func (CollectEvent) EventName() string     { return "collect" }
func (CriticalHitEvent) EventName() string { return "critical_hit" }
func (WakeUpEvent) EventName() string      { return "wake_up" }
func (DeathEvent) EventName() string       { return "death" }
func (PoppyEvent) EventName() string       { return "poppy" }
func (ShakeEvent) EventName() string       { return "shake" }
func (TameEvent) EventName() string        { return "tame" }
func (VillagerEvent) EventName() string    { return "villager" }
