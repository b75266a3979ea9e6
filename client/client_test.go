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

package client

import (
	"bytes"
	"testing"

	"github.com/Tnze/go-mc/data/packetid"
	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FlowySync/world"
	"FlowySync/world/entity"
)

type postedEvent struct {
	e  *entity.Entity
	ev entity.Event
}

type recordingSink struct {
	events []postedEvent
}

func (s *recordingSink) PostEvent(e *entity.Entity, ev entity.Event) {
	s.events = append(s.events, postedEvent{e, ev})
}

func newTestClient() (*Client, *recordingSink) {
	p := world.NewPlayer("Steve", uuid.New(), entity.Vec3{0, 64, 0}, entity.Rotation{})
	sink := new(recordingSink)
	return &Client{player: p, events: sink, handlers: defaultHandlers, Inputs: &p.Inputs}, sink
}

func packet(t *testing.T, id packetid.ServerboundPacketID, fields ...pk.FieldEncoder) pk.Packet {
	t.Helper()
	var buf bytes.Buffer
	for _, f := range fields {
		_, err := f.WriteTo(&buf)
		require.NoError(t, err)
	}
	return pk.Packet{ID: int32(id), Data: buf.Bytes()}
}

func handle(t *testing.T, c *Client, p pk.Packet) {
	t.Helper()
	h := c.handlers[p.ID]
	require.NotNil(t, h)
	require.NoError(t, h(p, c))
}

func TestClient_PlayerCommand(t *testing.T) {
	c, _ := newTestClient()
	cmd := func(action int32) pk.Packet {
		return packet(t, packetid.ServerboundPlayerCommand, pk.VarInt(7), pk.VarInt(action), pk.VarInt(0))
	}

	handle(t, c, cmd(actionStartSneaking))
	handle(t, c, cmd(actionStartSprinting))
	assert.True(t, c.Inputs.Sneaking)
	assert.True(t, c.Inputs.Sprinting)

	handle(t, c, cmd(actionStopSneaking))
	handle(t, c, cmd(actionStartFallFlying))
	assert.False(t, c.Inputs.Sneaking)
	assert.True(t, c.Inputs.FallFlying)

	handle(t, c, cmd(actionLeaveBed))
	assert.Error(t, clientPlayerCommand(cmd(42), c))
}

func TestClient_Swing(t *testing.T) {
	c, sink := newTestClient()
	handle(t, c, packet(t, packetid.ServerboundSwing, pk.VarInt(1)))
	handle(t, c, packet(t, packetid.ServerboundSwing, pk.VarInt(0)))

	require.Len(t, sink.events, 2)
	assert.Same(t, c.player.Entity, sink.events[0].e)
	assert.Equal(t, entity.SwingHandEvent{Hand: entity.SecondaryHand}, sink.events[0].ev)
	assert.Equal(t, entity.SwingHandEvent{Hand: entity.PrimaryHand}, sink.events[1].ev)
}

func TestClient_Move(t *testing.T) {
	c, _ := newTestClient()
	handle(t, c, packet(t, packetid.ServerboundMovePlayerPosRot,
		pk.Double(1.5), pk.Double(65), pk.Double(-3),
		pk.Float(90), pk.Float(-10),
		pk.Boolean(true),
	))
	assert.Equal(t, entity.Vec3{1.5, 65, -3}, c.Inputs.Position)
	assert.Equal(t, entity.Rotation{90, -10}, c.Inputs.Rotation)
	assert.True(t, c.Inputs.OnGround)

	handle(t, c, packet(t, packetid.ServerboundMovePlayerStatusOnly, pk.Boolean(false)))
	assert.False(t, c.Inputs.OnGround)

	handle(t, c, packet(t, packetid.ServerboundAcceptTeleportation, pk.VarInt(12)))
	assert.Equal(t, int32(12), c.Inputs.TeleportID)
}

func TestClient_handlersAreNotShared(t *testing.T) {
	a, _ := newTestClient()
	b, _ := newTestClient()
	a.AddHandler(packetid.ServerboundChat, func(pk.Packet, *Client) error { return nil })
	assert.NotNil(t, a.handlers[packetid.ServerboundChat])
	assert.Nil(t, b.handlers[packetid.ServerboundChat])
}
