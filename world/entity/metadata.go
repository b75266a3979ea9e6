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

	"github.com/Tnze/go-mc/chat"
	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/google/uuid"
)

// ParameterList is the ordered set of entity data parameters of one
// SetEntityData message. Parameters are appended in the order they are
// produced; the list is terminated by 0xFF on the wire.
type ParameterList []Parameter

// Parameter is one indexed entry of a ParameterList.
type Parameter struct {
	Index byte
	Value ParameterValue
}

// ParameterValue is the value of a data parameter. TypeID is the serializer
// id the client uses to decode it.
type ParameterValue interface {
	TypeID() int32
	pk.FieldEncoder
}

func (l *ParameterList) Add(index byte, v ParameterValue) {
	*l = append(*l, Parameter{Index: index, Value: v})
}

func (l ParameterList) Empty() bool { return len(l) == 0 }

// Get returns the last value written to index.
func (l ParameterList) Get(index byte) (ParameterValue, bool) {
	for i := len(l) - 1; i >= 0; i-- {
		if l[i].Index == index {
			return l[i].Value, true
		}
	}
	return nil, false
}

func (l ParameterList) WriteTo(w io.Writer) (n int64, err error) {
	var tmp int64
	for _, p := range l {
		tmp, err = p.WriteTo(w)
		n += tmp
		if err != nil {
			return
		}
	}
	tmp, err = pk.UnsignedByte(0xFF).WriteTo(w)
	return n + tmp, err
}

func (p Parameter) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{
		pk.UnsignedByte(p.Index),
		pk.VarInt(p.Value.TypeID()),
		p.Value,
	}.WriteTo(w)
}

type (
	Byte    int8
	VarInt  int32
	Float   float32
	String  string
	Boolean bool
	Pose    int32

	OptChat struct {
		Has  bool
		Text chat.Message
	}
	OptUUID struct {
		Has  bool
		UUID uuid.UUID
	}
	// OptBlockState is absent when zero (air).
	OptBlockState int32

	VillagerData struct {
		Type       int32
		Profession int32
		Level      int32
	}

	// Slot wraps an item stack as a parameter value.
	Slot struct{ ItemStack }
)

func (Byte) TypeID() int32          { return 0 }
func (VarInt) TypeID() int32        { return 1 }
func (Float) TypeID() int32         { return 3 }
func (String) TypeID() int32        { return 4 }
func (OptChat) TypeID() int32       { return 6 }
func (Slot) TypeID() int32          { return 7 }
func (Boolean) TypeID() int32       { return 8 }
func (OptUUID) TypeID() int32       { return 13 }
func (OptBlockState) TypeID() int32 { return 15 }
func (VillagerData) TypeID() int32  { return 18 }
func (Pose) TypeID() int32          { return 20 }

func (b Byte) WriteTo(w io.Writer) (int64, error)    { return pk.Byte(b).WriteTo(w) }
func (v VarInt) WriteTo(w io.Writer) (int64, error)  { return pk.VarInt(v).WriteTo(w) }
func (f Float) WriteTo(w io.Writer) (int64, error)   { return pk.Float(f).WriteTo(w) }
func (s String) WriteTo(w io.Writer) (int64, error)  { return pk.String(s).WriteTo(w) }
func (b Boolean) WriteTo(w io.Writer) (int64, error) { return pk.Boolean(b).WriteTo(w) }
func (p Pose) WriteTo(w io.Writer) (int64, error)    { return pk.VarInt(p).WriteTo(w) }

func (b OptBlockState) WriteTo(w io.Writer) (int64, error) { return pk.VarInt(b).WriteTo(w) }

func (c OptChat) WriteTo(w io.Writer) (int64, error) {
	if !c.Has {
		return pk.Boolean(false).WriteTo(w)
	}
	return pk.Tuple{pk.Boolean(true), c.Text}.WriteTo(w)
}

func (u OptUUID) WriteTo(w io.Writer) (int64, error) {
	if !u.Has {
		return pk.Boolean(false).WriteTo(w)
	}
	return pk.Tuple{pk.Boolean(true), pk.UUID(u.UUID)}.WriteTo(w)
}

func (v VillagerData) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{
		pk.VarInt(v.Type),
		pk.VarInt(v.Profession),
		pk.VarInt(v.Level),
	}.WriteTo(w)
}

func (s Slot) WriteTo(w io.Writer) (int64, error) { return s.ItemStack.WriteTo(w) }

const (
	Standing Pose = iota
	FallFlying
	Sleeping
	Swimming
	SpinAttack
	Crouching
	LongJumping
	Dying
	Croaking
	UsingTongue
	Sitting
	Roaring
	Sniffing
	Emerging
	Digging
)
