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

package world

import (
	"io"
	"math"
	"sync"
	"time"

	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/Tnze/go-mc/yggdrasil/user"
	"github.com/google/uuid"

	"FlowySync/world/entity"
)

func (i *ClientInfo) ReadFrom(r io.Reader) (n int64, err error) {
	return pk.Tuple{
		(*pk.String)(&i.Locale),
		(*pk.Byte)(&i.ViewDistance),
		(*pk.VarInt)(&i.ChatMode),
		(*pk.Boolean)(&i.ChatColors),
		(*pk.UnsignedByte)(&i.DisplayedSkinParts),
		(*pk.VarInt)(&i.MainHand),
		(*pk.Boolean)(&i.EnableTextFiltering),
		(*pk.Boolean)(&i.AllowServerListings),
	}.ReadFrom(r)
}

// Player is a connected player. Its synchronized state lives in the
// embedded entity, which the World writes from Inputs every tick.
type Player struct {
	*entity.Entity
	// EntityID is set once the World tracks the player.
	EntityID   int32
	Name       string
	PubKey     *user.PublicKey
	Properties []user.Property

	ChunkPos     [3]int32
	ViewDistance int32
	Gamemode     int32

	teleport *TeleportRequest
	Inputs   Inputs
}

// NewPlayer creates a player standing at pos.
func NewPlayer(name string, id uuid.UUID, pos entity.Vec3, rot entity.Rotation) *Player {
	p := &Player{
		Entity:       entity.New(entity.Player, id),
		Name:         name,
		ViewDistance: 10,
	}
	p.setPosition(pos, rot)
	p.Inputs.Position, p.Inputs.Rotation = pos, rot
	return p
}

func (p *Player) Position() entity.Vec3 {
	return entity.GetOr(p.Store, entity.Position, entity.Vec3{})
}

func (p *Player) Rotation() entity.Rotation {
	return entity.GetOr(p.Store, entity.Look, entity.Rotation{})
}

func (p *Player) setPosition(pos entity.Vec3, rot entity.Rotation) {
	entity.Set(p.Store, entity.Position, pos)
	entity.Set(p.Store, entity.Look, rot)
	entity.Set(p.Store, entity.HeadYaw, rot[0])
	p.ChunkPos = chunkPosOf(pos)
}

func chunkPosOf(pos entity.Vec3) [3]int32 {
	return [3]int32{
		int32(math.Floor(pos[0])) >> 4,
		int32(math.Floor(pos[1])) >> 4,
		int32(math.Floor(pos[2])) >> 4,
	}
}

func (p *Player) chunkPosition() [2]int32 { return [2]int32{p.ChunkPos[0], p.ChunkPos[2]} }
func (p *Player) chunkRadius() int32      { return p.ViewDistance }

// applyInputs copies what the client reported into the entity state.
// The caller holds p.Inputs.
func (p *Player) applyInputs() {
	in := &p.Inputs
	if in.OnGround {
		in.FallFlying = false
	}
	p.setPosition(in.Position, in.Rotation)
	entity.Set(p.Store, entity.OnGround, in.OnGround)
	entity.Set(p.Store, entity.Sneaking, in.Sneaking)
	entity.Set(p.Store, entity.Sprinting, in.Sprinting)
	entity.Set(p.Store, entity.ElytraFlying, in.FallFlying)
	entity.Set(p.Store, entity.CurrentPose, poseOf(in))
	if in.Locale == "" {
		// client information not received yet
		return
	}
	entity.Set(p.Store, entity.SkinParts, in.DisplayedSkinParts)
	arm := entity.RightArm
	if in.MainHand == 0 {
		arm = entity.LeftArm
	}
	entity.Set(p.Store, entity.MainArm, arm)
}

func poseOf(in *Inputs) entity.Pose {
	switch {
	case in.FallFlying:
		return entity.FallFlying
	case in.Sneaking:
		return entity.Crouching
	default:
		return entity.Standing
	}
}

type TeleportRequest struct {
	ID       int32
	Position entity.Vec3
	Rotation entity.Rotation
}

// Inputs is written by the connection goroutine and read by the tick loop.
type Inputs struct {
	sync.Mutex
	ClientInfo
	Position   entity.Vec3
	Rotation   entity.Rotation
	OnGround   bool
	Sneaking   bool
	Sprinting  bool
	FallFlying bool
	Latency    time.Duration
	TeleportID int32
}

type ClientInfo struct {
	Locale              string
	ViewDistance        int8
	ChatMode            int32
	ChatColors          bool
	DisplayedSkinParts  byte
	MainHand            int32
	EnableTextFiltering bool
	AllowServerListings bool
}
