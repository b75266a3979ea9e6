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
	"io"
	"reflect"

	pk "github.com/Tnze/go-mc/net/packet"
)

// ItemStack is the network view of an item: registry id, count and the
// optional NBT tag. The zero value is the empty stack.
type ItemStack struct {
	Item  int32
	Count int8
	Tag   map[string]any
}

func (i ItemStack) IsEmpty() bool { return i.Item == 0 || i.Count <= 0 }

// Clone returns a copy of i that does not share its tag.
func (i ItemStack) Clone() ItemStack {
	i.Tag = Clone(i.Tag)
	return i
}

// Similar reports whether two stacks look the same to a viewer: same item
// and same tag. Counts are ignored, equipment never shows them.
func (i ItemStack) Similar(o ItemStack) bool {
	if i.IsEmpty() || o.IsEmpty() {
		return i.IsEmpty() == o.IsEmpty()
	}
	if i.Item != o.Item {
		return false
	}
	if len(i.Tag) == 0 && len(o.Tag) == 0 {
		return true
	}
	return reflect.DeepEqual(i.Tag, o.Tag)
}

func (i ItemStack) WriteTo(w io.Writer) (int64, error) {
	if i.IsEmpty() {
		return pk.Boolean(false).WriteTo(w)
	}
	var tag pk.FieldEncoder = pk.Byte(0) // TAG_End
	if len(i.Tag) > 0 {
		tag = pk.NBT(i.Tag)
	}
	return pk.Tuple{
		pk.Boolean(true),
		pk.VarInt(i.Item),
		pk.Byte(i.Count),
		tag,
	}.WriteTo(w)
}

// EquipmentSlot indexes the Equipment attribute in wire order.
type EquipmentSlot byte

const (
	MainHand EquipmentSlot = iota
	OffHand
	Feet
	Legs
	Chest
	Head
	EquipmentSlots
)

// Equipment holds one stack per EquipmentSlot.
type Equipment [EquipmentSlots]ItemStack

func (e Equipment) Clone() Equipment {
	for i := range e {
		e[i] = e[i].Clone()
	}
	return e
}
