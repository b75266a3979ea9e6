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
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Defaults(t *testing.T) {
	e := New(Zombie, uuid.New())

	h, ok := Get(e.Store, Health)
	assert.True(t, ok)
	assert.Equal(t, float32(1), h)

	p, ok := Get(e.Store, CurrentPose)
	assert.True(t, ok)
	assert.Equal(t, Standing, p)

	_, ok = Get(e.Store, Position)
	assert.False(t, ok, "position has no default")
	assert.Equal(t, Vec3{1, 2, 3}, GetOr(e.Store, Position, Vec3{1, 2, 3}))
	assert.False(t, Has(e.Store, Health))
}

func TestStore_Bounds(t *testing.T) {
	s := NewStore()
	Set(s, Health, -5)
	assert.Equal(t, float32(0), GetOr(s, Health, 1))

	Set(s, Size, 0)
	assert.Equal(t, int32(1), GetOr(s, Size, 1))

	Set(s, DyeColor, 42)
	assert.Equal(t, int32(15), GetOr(s, DyeColor, 0))
}

func TestStore_OnChange(t *testing.T) {
	s := NewStore()
	var calls []any
	s.OnChange(Sneaking.Name(), func(key string, old, new any) {
		assert.Equal(t, "sneaking", key)
		calls = append(calls, old, new)
	})

	Set(s, Sneaking, true)
	Set(s, Sneaking, false)
	Remove(s, Sneaking)
	Remove(s, Sneaking)

	require.Len(t, calls, 6)
	assert.Equal(t, []any{nil, true, true, false, false, nil}, calls)
	v, ok := Get(s, Sneaking)
	assert.True(t, ok)
	assert.False(t, v)
}

func TestParameterList_WriteTo(t *testing.T) {
	var l ParameterList
	assert.True(t, l.Empty())

	l.Add(0, Byte(0x02))
	l.Add(6, Sitting)
	l.Add(9, Float(1))
	assert.False(t, l.Empty())

	v, ok := l.Get(6)
	require.True(t, ok)
	assert.Equal(t, Sitting, v)

	var buf bytes.Buffer
	_, err := l.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x00, 0x00, 0x02,
		0x06, 0x14, 0x0A,
		0x09, 0x03, 0x3F, 0x80, 0x00, 0x00,
		0xFF,
	}, buf.Bytes())
}

func TestParameterList_EmptyWritesTerminator(t *testing.T) {
	var buf bytes.Buffer
	_, err := ParameterList(nil).WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF}, buf.Bytes())
}

func TestOptionalValues(t *testing.T) {
	var buf bytes.Buffer
	_, err := OptUUID{}.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, buf.Bytes())

	buf.Reset()
	id := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")
	_, err = OptUUID{Has: true, UUID: id}.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0x01}, id[:]...), buf.Bytes())

	buf.Reset()
	_, err = VillagerData{Type: 2, Profession: 5, Level: 3}.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 5, 3}, buf.Bytes())
}

func TestItemStack(t *testing.T) {
	sword := ItemStack{Item: 802, Count: 1}
	assert.True(t, ItemStack{}.IsEmpty())
	assert.True(t, ItemStack{Item: 1}.IsEmpty(), "zero count is empty")
	assert.True(t, sword.Similar(ItemStack{Item: 802, Count: 5}))
	assert.False(t, sword.Similar(ItemStack{Item: 803, Count: 1}))
	assert.False(t, sword.Similar(ItemStack{}))
	assert.True(t, ItemStack{}.Similar(ItemStack{Item: 7}))

	enchanted := ItemStack{Item: 802, Count: 1, Tag: map[string]any{"Damage": int32(3)}}
	assert.False(t, sword.Similar(enchanted))
	assert.True(t, enchanted.Similar(ItemStack{Item: 802, Count: 1, Tag: map[string]any{"Damage": int32(3)}}))

	var buf bytes.Buffer
	_, err := ItemStack{}.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, buf.Bytes())

	buf.Reset()
	_, err = ItemStack{Item: 5, Count: 2}.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x05, 0x02, 0x00}, buf.Bytes())
}

func TestEffects_Summary(t *testing.T) {
	assert.Equal(t, int32(0), Effects(nil).ParticleColor())
	assert.False(t, Effects(nil).Ambient())

	m := Effects{
		Speed: {Type: Speed, Duration: 100, ShowParticles: true, Ambient: true},
	}
	assert.Equal(t, int32(0x7CAFC6), m.ParticleColor())
	assert.True(t, m.Ambient())

	m[Invisibility] = Effect{Type: Invisibility, Duration: 100}
	assert.Equal(t, int32(0x7CAFC6), m.ParticleColor(), "hidden particles do not mix")
	assert.False(t, m.Ambient())

	mixed := Effects{
		Luck:   {Type: Luck, ShowParticles: true},
		Unluck: {Type: Unluck, ShowParticles: true},
	}
	assert.Equal(t, int32((0x33+0xC0)/2<<16|(0x99+0xA4)/2<<8|(0x00+0x4D)/2), mixed.ParticleColor())
}

func TestEffect_SameFlags(t *testing.T) {
	a := Effect{Type: Poison, Duration: 10, Amplifier: 1}
	b := a
	b.Duration = 3
	assert.True(t, a.SameFlags(b))
	b.ShowIcon = true
	assert.False(t, a.SameFlags(b))
}

func TestVec3_IsValid(t *testing.T) {
	assert.True(t, Vec3{1, 2, 3}.IsValid())
	var zero float64
	assert.False(t, Vec3{zero / zero, 0, 0}.IsValid())
}

func TestClone(t *testing.T) {
	sword := ItemStack{Item: 802, Count: 1, Tag: map[string]any{
		"Damage":       int32(3),
		"Enchantments": []any{map[string]any{"id": "minecraft:sharpness", "lvl": int16(2)}},
	}}
	c := sword.Clone()
	assert.Equal(t, sword, c)

	c.Tag["Damage"] = int32(4)
	c.Tag["Enchantments"].([]any)[0].(map[string]any)["lvl"] = int16(5)
	assert.Equal(t, int32(3), sword.Tag["Damage"])
	assert.Equal(t, int16(2), sword.Tag["Enchantments"].([]any)[0].(map[string]any)["lvl"])

	assert.Nil(t, ItemStack{Item: 1, Count: 1}.Clone().Tag)

	var v ParameterValue = Slot{ItemStack: sword}
	cv := Clone(v).(Slot)
	cv.Tag["Damage"] = int32(9)
	assert.Equal(t, int32(3), sword.Tag["Damage"])
	assert.Nil(t, Clone[ParameterValue](nil))
}
