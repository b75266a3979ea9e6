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
	"math"
	"testing"

	"github.com/Tnze/go-mc/chat"
	"github.com/Tnze/go-mc/level"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"FlowySync/world/entity"
	"FlowySync/world/protocol"
)

type fakeClient struct {
	recordingViewer
	log         []string
	disconnects int
	teleports   int
}

func (c *fakeClient) ViewChunkLoad(level.ChunkPos, *level.Chunk) {}
func (c *fakeClient) ViewChunkUnload(level.ChunkPos)             {}
func (c *fakeClient) SendDisconnect(chat.Message)                { c.disconnects++ }
func (c *fakeClient) SendSetChunkCacheCenter([2]int32)           {}

func (c *fakeClient) SendPlayerPosition([3]float64, [2]float32) int32 {
	c.teleports++
	return int32(c.teleports)
}

func (c *fakeClient) ViewEntity(m protocol.Message) {
	c.log = append(c.log, "entity")
	c.recordingViewer.ViewEntity(m)
}

func newTestWorld() *World {
	tr, _ := newTestTracker()
	return newWorld(zap.NewNop(), ChunkProvider{}, tr, Config{ViewDistance: 8})
}

func addTestPlayer(t *testing.T, w *World, pos entity.Vec3) (*fakeClient, *Player) {
	t.Helper()
	c := new(fakeClient)
	p := NewPlayer("player", uuid.New(), pos, entity.Rotation{})
	err := w.AddPlayer(c, p, rate.NewLimiter(rate.Inf, 1), func() {
		assert.NotZero(t, p.EntityID)
		c.log = append(c.log, "login")
	})
	require.NoError(t, err)
	return c, p
}

func (w *World) runTick() {
	w.tickLock.Lock()
	defer w.tickLock.Unlock()
	w.subtickUpdatePlayers()
	w.tracker.Tick()
}

func setInputs(p *Player, f func(in *Inputs)) {
	p.Inputs.Lock()
	f(&p.Inputs)
	p.Inputs.Unlock()
}

func TestWorld_PlayersSeeEachOther(t *testing.T) {
	w := newTestWorld()
	a, pa := addTestPlayer(t, w, entity.Vec3{0, 64, 0})
	b, pb := addTestPlayer(t, w, entity.Vec3{3, 64, 0})
	require.NotEmpty(t, b.log)
	assert.Equal(t, "login", b.log[0])

	spawns := messagesOf[protocol.SpawnPlayer](a.take())
	require.Len(t, spawns, 1)
	assert.Equal(t, pb.EntityID, spawns[0].ID)
	assert.Equal(t, pb.UUID(), spawns[0].UUID)

	w.runTick()
	spawns = messagesOf[protocol.SpawnPlayer](b.take())
	require.Len(t, spawns, 1)
	assert.Equal(t, pa.EntityID, spawns[0].ID)
	assert.Empty(t, a.take())
}

func TestWorld_PlayerInputs(t *testing.T) {
	w := newTestWorld()
	a, _ := addTestPlayer(t, w, entity.Vec3{0, 64, 0})
	_, pb := addTestPlayer(t, w, entity.Vec3{3, 64, 0})
	w.runTick()
	a.take()

	setInputs(pb, func(in *Inputs) {
		in.Position = entity.Vec3{4, 64, 0}
		in.Sneaking = true
	})
	w.runTick()
	got := a.take()
	moves := messagesOf[protocol.MoveEntity](got)
	require.Len(t, moves, 1)
	assert.Equal(t, pb.EntityID, moves[0].ID)
	assert.Len(t, messagesOf[protocol.EntityMetadata](got), 1)
	assert.True(t, entity.GetOr(pb.Store, entity.Sneaking, false))
	assert.Equal(t, entity.Crouching, entity.GetOr(pb.Store, entity.CurrentPose, entity.Standing))
}

func TestWorld_TooFastMoveTeleportsBack(t *testing.T) {
	w := newTestWorld()
	c, p := addTestPlayer(t, w, entity.Vec3{0, 64, 0})

	setInputs(p, func(in *Inputs) { in.Position = entity.Vec3{500, 64, 0} })
	w.runTick()
	assert.Equal(t, 1, c.teleports)
	assert.Equal(t, entity.Vec3{0, 64, 0}, p.Position())

	setInputs(p, func(in *Inputs) { in.TeleportID = 1 })
	w.runTick()
	assert.Nil(t, p.teleport)
	assert.Equal(t, entity.Vec3{0, 64, 0}, p.Position())
}

func TestWorld_InvalidMoveDisconnects(t *testing.T) {
	w := newTestWorld()
	c, p := addTestPlayer(t, w, entity.Vec3{0, 64, 0})

	setInputs(p, func(in *Inputs) { in.Position = entity.Vec3{math.NaN(), 64, 0} })
	w.runTick()
	assert.Equal(t, 1, c.disconnects)
	assert.Equal(t, entity.Vec3{0, 64, 0}, p.Position())
}

func TestWorld_RemovePlayer(t *testing.T) {
	w := newTestWorld()
	a, _ := addTestPlayer(t, w, entity.Vec3{0, 64, 0})
	b, pb := addTestPlayer(t, w, entity.Vec3{3, 64, 0})
	w.runTick()
	a.take()

	w.RemovePlayer(b, pb)
	destroys := messagesOf[protocol.DestroyEntities](a.take())
	require.Len(t, destroys, 1)
	assert.Equal(t, []int32{pb.EntityID}, destroys[0].IDs)
	_, live := w.AllocatorStats()
	assert.Equal(t, 1, live)
}

func TestWorld_SpawnEntity(t *testing.T) {
	w := newTestWorld()
	a, _ := addTestPlayer(t, w, entity.Vec3{0, 64, 0})
	a.take()

	cow := entity.New(entity.Cow, uuid.New())
	entity.Set(cow.Store, entity.Position, entity.Vec3{2, 64, 2})
	id, err := w.SpawnEntity(cow)
	require.NoError(t, err)
	assert.Len(t, messagesOf[protocol.SpawnEntity](a.take()), 1)

	s, ok := w.LookupEntity(id)
	require.True(t, ok)
	assert.Equal(t, entity.Cow, s.Kind)
	assert.Len(t, w.EntityStats(), 2)

	w.PostEvent(cow, entity.DamageEvent{})
	w.runTick()
	statuses := messagesOf[protocol.EntityStatus](a.take())
	require.Len(t, statuses, 1)
	assert.Equal(t, protocol.StatusHurt, statuses[0].Status)

	assert.True(t, w.RemoveEntity(cow))
	assert.False(t, w.RemoveEntity(cow))
}
