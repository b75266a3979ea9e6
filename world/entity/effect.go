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

// EffectType is the 1-based registry id of a status effect.
type EffectType int32

const (
	Speed EffectType = iota + 1
	Slowness
	Haste
	MiningFatigue
	Strength
	InstantHealth
	InstantDamage
	JumpBoost
	Nausea
	Regeneration
	Resistance
	FireResistance
	WaterBreathing
	Invisibility
	Blindness
	NightVision
	Hunger
	Weakness
	Poison
	Wither
	HealthBoost
	Absorption
	Saturation
	GlowingEffect
	Levitation
	Luck
	Unluck
	SlowFalling
	ConduitPower
	DolphinsGrace
	BadOmen
	HeroOfTheVillage
	Darkness
)

var effectColors = [...]int32{
	Speed:            0x7CAFC6,
	Slowness:         0x5A6C81,
	Haste:            0xD9C043,
	MiningFatigue:    0x4A4217,
	Strength:         0x932423,
	InstantHealth:    0xF82423,
	InstantDamage:    0x430A09,
	JumpBoost:        0x22FF4C,
	Nausea:           0x551D4A,
	Regeneration:     0xCD5CAB,
	Resistance:       0x99453A,
	FireResistance:   0xE49A3A,
	WaterBreathing:   0x2E5299,
	Invisibility:     0x7F8392,
	Blindness:        0x1F1F23,
	NightVision:      0x1F1FA1,
	Hunger:           0x587653,
	Weakness:         0x484D48,
	Poison:           0x4E9331,
	Wither:           0x352A27,
	HealthBoost:      0xF87D23,
	Absorption:       0x2552A5,
	Saturation:       0xF82423,
	GlowingEffect:    0x94A061,
	Levitation:       0xCEFFFF,
	Luck:             0x339900,
	Unluck:           0xC0A44D,
	SlowFalling:      0xFFEFD1,
	ConduitPower:     0x1DC2D1,
	DolphinsGrace:    0x88A3BE,
	BadOmen:          0x0B6138,
	HeroOfTheVillage: 0x44FF44,
	Darkness:         0x292721,
}

// Color returns the particle colour of the effect, 0 for unknown types.
func (t EffectType) Color() int32 {
	if t <= 0 || int(t) >= len(effectColors) {
		return 0
	}
	return effectColors[t]
}

// Effect is one active status effect. Duration counts remaining ticks.
type Effect struct {
	Type          EffectType
	Duration      int32
	Amplifier     int8
	Ambient       bool
	ShowParticles bool
	ShowIcon      bool
}

// SameFlags reports whether everything but the duration matches.
func (e Effect) SameFlags(o Effect) bool {
	return e.Amplifier == o.Amplifier &&
		e.Ambient == o.Ambient &&
		e.ShowParticles == o.ShowParticles &&
		e.ShowIcon == o.ShowIcon
}

// Effects maps active effects by type.
type Effects map[EffectType]Effect

// ParticleColor mixes the colours of all effects showing particles, weighted
// by amplifier. It is 0 when no effect shows particles.
func (m Effects) ParticleColor() int32 {
	var r, g, b, weight int32
	for _, e := range m {
		if !e.ShowParticles {
			continue
		}
		c := e.Type.Color()
		amp := int32(e.Amplifier) + 1
		if amp <= 0 {
			continue
		}
		r += amp * (c >> 16 & 0xFF)
		g += amp * (c >> 8 & 0xFF)
		b += amp * (c & 0xFF)
		weight += amp
	}
	if weight == 0 {
		return 0
	}
	return (r/weight)<<16 | (g/weight)<<8 | b/weight
}

// Ambient reports whether there are effects and all of them are ambient.
func (m Effects) Ambient() bool {
	if len(m) == 0 {
		return false
	}
	for _, e := range m {
		if !e.Ambient {
			return false
		}
	}
	return true
}
