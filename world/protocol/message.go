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
	"io"
	"math"

	"github.com/Tnze/go-mc/data/packetid"
	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/google/uuid"

	"FlowySync/world/entity"
)

// Message is one clientbound packet body produced by an entity protocol.
type Message interface {
	PacketID() packetid.ClientboundPacketID
	pk.FieldEncoder
}

// MessageFactory builds a message on demand. Contexts only call it when at
// least one viewer will receive the result.
type MessageFactory func() Message

// FixedPoint converts a block coordinate to 1/4096 block units.
func FixedPoint(v float64) int64 { return int64(math.Floor(v * 4096)) }

// PackAngle converts degrees to 1/256 turns.
// Non-finite angles pack to 0.
func PackAngle(deg float32) int8 {
	d := math.Mod(float64(deg), 360)
	if math.IsNaN(d) {
		return 0
	}
	return int8(uint8(int32(math.Floor(d * 256 / 360))))
}

// MaxVelocity is the largest speed in blocks per tick the client accepts.
const MaxVelocity = 3.9

// PackVelocity converts blocks per tick to 1/8000 blocks per tick.
// NaN packs to 0.
func PackVelocity(v float64) int16 {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Max(-MaxVelocity, math.Min(MaxVelocity, v))
	return int16(v * 8000)
}

func packVelocity(v entity.Vec3) [3]int16 {
	return [3]int16{PackVelocity(v[0]), PackVelocity(v[1]), PackVelocity(v[2])}
}

type SpawnEntity struct {
	ID       int32
	UUID     uuid.UUID
	Type     int32
	Pos      entity.Vec3
	Pitch    int8
	Yaw      int8
	HeadYaw  int8
	Data     int32
	Velocity [3]int16
}

func (SpawnEntity) PacketID() packetid.ClientboundPacketID { return packetid.ClientboundAddEntity }

func (m SpawnEntity) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{
		pk.VarInt(m.ID),
		pk.UUID(m.UUID),
		pk.VarInt(m.Type),
		pk.Double(m.Pos[0]), pk.Double(m.Pos[1]), pk.Double(m.Pos[2]),
		pk.Angle(m.Pitch), pk.Angle(m.Yaw), pk.Angle(m.HeadYaw),
		pk.VarInt(m.Data),
		pk.Short(m.Velocity[0]), pk.Short(m.Velocity[1]), pk.Short(m.Velocity[2]),
	}.WriteTo(w)
}

type SpawnPlayer struct {
	ID    int32
	UUID  uuid.UUID
	Pos   entity.Vec3
	Yaw   int8
	Pitch int8
}

func (SpawnPlayer) PacketID() packetid.ClientboundPacketID { return packetid.ClientboundAddPlayer }

func (m SpawnPlayer) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{
		pk.VarInt(m.ID),
		pk.UUID(m.UUID),
		pk.Double(m.Pos[0]), pk.Double(m.Pos[1]), pk.Double(m.Pos[2]),
		pk.Angle(m.Yaw), pk.Angle(m.Pitch),
	}.WriteTo(w)
}

type SpawnExperienceOrb struct {
	ID    int32
	Pos   entity.Vec3
	Count int16
}

func (SpawnExperienceOrb) PacketID() packetid.ClientboundPacketID {
	return packetid.ClientboundAddExperienceOrb
}

func (m SpawnExperienceOrb) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{
		pk.VarInt(m.ID),
		pk.Double(m.Pos[0]), pk.Double(m.Pos[1]), pk.Double(m.Pos[2]),
		pk.Short(m.Count),
	}.WriteTo(w)
}

// MoveEntity is a relative move in 1/4096 block units.
type MoveEntity struct {
	ID       int32
	Delta    [3]int16
	OnGround bool
}

func (MoveEntity) PacketID() packetid.ClientboundPacketID { return packetid.ClientboundMoveEntityPos }

func (m MoveEntity) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{
		pk.VarInt(m.ID),
		pk.Short(m.Delta[0]), pk.Short(m.Delta[1]), pk.Short(m.Delta[2]),
		pk.Boolean(m.OnGround),
	}.WriteTo(w)
}

type LookEntity struct {
	ID         int32
	Yaw, Pitch int8
	OnGround   bool
}

func (LookEntity) PacketID() packetid.ClientboundPacketID { return packetid.ClientboundMoveEntityRot }

func (m LookEntity) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{
		pk.VarInt(m.ID),
		pk.Angle(m.Yaw), pk.Angle(m.Pitch),
		pk.Boolean(m.OnGround),
	}.WriteTo(w)
}

type MoveLookEntity struct {
	ID         int32
	Delta      [3]int16
	Yaw, Pitch int8
	OnGround   bool
}

func (MoveLookEntity) PacketID() packetid.ClientboundPacketID {
	return packetid.ClientboundMoveEntityPosRot
}

func (m MoveLookEntity) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{
		pk.VarInt(m.ID),
		pk.Short(m.Delta[0]), pk.Short(m.Delta[1]), pk.Short(m.Delta[2]),
		pk.Angle(m.Yaw), pk.Angle(m.Pitch),
		pk.Boolean(m.OnGround),
	}.WriteTo(w)
}

type TeleportEntity struct {
	ID         int32
	Pos        entity.Vec3
	Yaw, Pitch int8
	OnGround   bool
}

func (TeleportEntity) PacketID() packetid.ClientboundPacketID {
	return packetid.ClientboundTeleportEntity
}

func (m TeleportEntity) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{
		pk.VarInt(m.ID),
		pk.Double(m.Pos[0]), pk.Double(m.Pos[1]), pk.Double(m.Pos[2]),
		pk.Angle(m.Yaw), pk.Angle(m.Pitch),
		pk.Boolean(m.OnGround),
	}.WriteTo(w)
}

type EntityVelocity struct {
	ID       int32
	Velocity [3]int16
}

func (EntityVelocity) PacketID() packetid.ClientboundPacketID {
	return packetid.ClientboundSetEntityMotion
}

func (m EntityVelocity) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{
		pk.VarInt(m.ID),
		pk.Short(m.Velocity[0]), pk.Short(m.Velocity[1]), pk.Short(m.Velocity[2]),
	}.WriteTo(w)
}

type HeadLook struct {
	ID  int32
	Yaw int8
}

func (HeadLook) PacketID() packetid.ClientboundPacketID { return packetid.ClientboundRotateHead }

func (m HeadLook) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{pk.VarInt(m.ID), pk.Angle(m.Yaw)}.WriteTo(w)
}

type EntityMetadata struct {
	ID     int32
	Params entity.ParameterList
}

func (EntityMetadata) PacketID() packetid.ClientboundPacketID {
	return packetid.ClientboundSetEntityData
}

func (m EntityMetadata) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{pk.VarInt(m.ID), m.Params}.WriteTo(w)
}

type EquipmentEntry struct {
	Slot entity.EquipmentSlot
	Item entity.ItemStack
}

// EntityEquipment carries only the slots that changed.
type EntityEquipment struct {
	ID      int32
	Entries []EquipmentEntry
}

func (EntityEquipment) PacketID() packetid.ClientboundPacketID {
	return packetid.ClientboundSetEquipment
}

func (m EntityEquipment) WriteTo(w io.Writer) (n int64, err error) {
	n, err = pk.VarInt(m.ID).WriteTo(w)
	if err != nil {
		return
	}
	for i, e := range m.Entries {
		slot := byte(e.Slot)
		if i < len(m.Entries)-1 {
			slot |= 0x80
		}
		var tmp int64
		tmp, err = pk.Tuple{pk.Byte(slot), e.Item}.WriteTo(w)
		n += tmp
		if err != nil {
			return
		}
	}
	return
}

type SetPassengers struct {
	ID         int32
	Passengers []int32
}

func (SetPassengers) PacketID() packetid.ClientboundPacketID {
	return packetid.ClientboundSetPassengers
}

func (m SetPassengers) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{pk.VarInt(m.ID), varIntArray(m.Passengers)}.WriteTo(w)
}

type DestroyEntities struct {
	IDs []int32
}

func (DestroyEntities) PacketID() packetid.ClientboundPacketID {
	return packetid.ClientboundRemoveEntities
}

func (m DestroyEntities) WriteTo(w io.Writer) (int64, error) {
	return varIntArray(m.IDs).WriteTo(w)
}

type EffectAdd struct {
	ID     int32
	Effect entity.Effect
}

func (EffectAdd) PacketID() packetid.ClientboundPacketID {
	return packetid.ClientboundUpdateMobEffect
}

func (m EffectAdd) WriteTo(w io.Writer) (int64, error) {
	var flags byte
	if m.Effect.Ambient {
		flags |= 0x01
	}
	if m.Effect.ShowParticles {
		flags |= 0x02
	}
	if m.Effect.ShowIcon {
		flags |= 0x04
	}
	return pk.Tuple{
		pk.VarInt(m.ID),
		pk.VarInt(m.Effect.Type),
		pk.Byte(m.Effect.Amplifier),
		pk.VarInt(m.Effect.Duration),
		pk.Byte(flags),
		pk.Boolean(false), // no factor data
	}.WriteTo(w)
}

type EffectRemove struct {
	ID     int32
	Effect entity.EffectType
}

func (EffectRemove) PacketID() packetid.ClientboundPacketID {
	return packetid.ClientboundRemoveMobEffect
}

func (m EffectRemove) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{pk.VarInt(m.ID), pk.VarInt(m.Effect)}.WriteTo(w)
}

// Entity status codes understood by the client.
const (
	StatusHurt          int8 = 2
	StatusDeath         int8 = 3
	StatusTameSmoke     int8 = 6
	StatusTameHearts    int8 = 7
	StatusWolfShake     int8 = 8
	StatusOfferFlower   int8 = 11
	StatusVillagerLove  int8 = 12
	StatusVillagerAngry int8 = 13
	StatusVillagerHappy int8 = 14
	StatusStopFlower    int8 = 34
)

type EntityStatus struct {
	ID     int32
	Status int8
}

func (EntityStatus) PacketID() packetid.ClientboundPacketID { return packetid.ClientboundEntityEvent }

func (m EntityStatus) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{pk.Int(m.ID), pk.Byte(m.Status)}.WriteTo(w)
}

// Animation ids of the Animate packet.
const (
	AnimSwingMainHand uint8 = 0
	AnimWakeUp        uint8 = 2
	AnimSwingOffHand  uint8 = 3
	AnimCriticalHit   uint8 = 4
)

type Animation struct {
	ID        int32
	Animation uint8
}

func (Animation) PacketID() packetid.ClientboundPacketID { return packetid.ClientboundAnimate }

func (m Animation) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{pk.VarInt(m.ID), pk.UnsignedByte(m.Animation)}.WriteTo(w)
}

type HurtAnimation struct {
	ID  int32
	Yaw float32
}

func (HurtAnimation) PacketID() packetid.ClientboundPacketID {
	return packetid.ClientboundHurtAnimation
}

func (m HurtAnimation) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{pk.VarInt(m.ID), pk.Float(m.Yaw)}.WriteTo(w)
}

type CollectItem struct {
	Collected int32
	Collector int32
	Count     int32
}

func (CollectItem) PacketID() packetid.ClientboundPacketID {
	return packetid.ClientboundTakeItemEntity
}

func (m CollectItem) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{
		pk.VarInt(m.Collected),
		pk.VarInt(m.Collector),
		pk.VarInt(m.Count),
	}.WriteTo(w)
}

type varIntArray []int32

func (a varIntArray) WriteTo(w io.Writer) (n int64, err error) {
	n, err = pk.VarInt(len(a)).WriteTo(w)
	if err != nil {
		return
	}
	for _, v := range a {
		var tmp int64
		tmp, err = pk.VarInt(v).WriteTo(w)
		n += tmp
		if err != nil {
			return
		}
	}
	return
}
