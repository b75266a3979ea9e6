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
	"time"

	"github.com/Tnze/go-mc/chat"
	"go.uber.org/zap"
)

// TickDuration is the length of one server tick.
const TickDuration = time.Second / 20

func (w *World) tickLoop() {
	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()
	var n uint
	for {
		select {
		case <-ticker.C:
			w.tick(n)
			n++
		case <-w.stop:
			return
		}
	}
}

func (w *World) tick(n uint) {
	w.tickLock.Lock()
	defer w.tickLock.Unlock()
	if w.closed {
		return
	}

	if n%8 == 0 {
		w.subtickChunkLoad()
	}
	w.subtickUpdatePlayers()
	w.tracker.Tick()
}

func (w *World) subtickChunkLoad() {
	for c, p := range w.players {
		if newChunkPos := chunkPosOf(p.Position()); newChunkPos != p.ChunkPos {
			p.ChunkPos = newChunkPos
			c.SendSetChunkCacheCenter([2]int32{newChunkPos[0], newChunkPos[2]})
		}
	}

LoadChunk:
	for viewer, loader := range w.loaders {
		loader.calcLoadingQueue()
		for _, pos := range loader.loadQueue {
			if !loader.limiter.Allow() {
				break
			}
			if _, ok := w.chunks[pos]; !ok {
				if !w.loadChunk(pos) {
					break LoadChunk
				}
			}
			loader.loaded[pos] = struct{}{}
			lc := w.chunks[pos]
			lc.AddViewer(viewer)
			lc.Lock()
			viewer.ViewChunkLoad(pos, lc.Chunk)
			lc.Unlock()
		}
	}

	for viewer, loader := range w.loaders {
		loader.calcUnusedChunks()
		for _, pos := range loader.unloadQueue {
			delete(loader.loaded, pos)
			if !w.chunks[pos].RemoveViewer(viewer) {
				w.log.Panic("viewer is not found in the loaded chunk")
			}
			viewer.ViewChunkUnload(pos)
		}
	}

	var unloadQueue [][2]int32
	for pos, chunk := range w.chunks {
		if len(chunk.viewers) == 0 {
			unloadQueue = append(unloadQueue, pos)
		}
	}
	for i := range unloadQueue {
		w.unloadChunk(unloadQueue[i])
	}
}

// maxMoveDistance is the farthest a player may move in one tick before it
// is teleported back.
const maxMoveDistance = 100

func (w *World) subtickUpdatePlayers() {
	for c, p := range w.players {
		if !p.Inputs.TryLock() {
			continue
		}
		inputs := &p.Inputs

		if vd := int32(inputs.ViewDistance); vd > 0 && vd != p.ViewDistance {
			p.ViewDistance = min(vd, w.config.ViewDistance)
		}

		if p.teleport != nil {
			if inputs.TeleportID == p.teleport.ID {
				inputs.Position, inputs.Rotation = p.teleport.Position, p.teleport.Rotation
				p.setPosition(p.teleport.Position, p.teleport.Rotation)
				p.teleport = nil
			}
		} else {
			pos := p.Position()
			delta := [3]float64{
				inputs.Position[0] - pos[0],
				inputs.Position[1] - pos[1],
				inputs.Position[2] - pos[2],
			}
			distance := math.Sqrt(delta[0]*delta[0] + delta[1]*delta[1] + delta[2]*delta[2])
			if distance > maxMoveDistance {
				rot := p.Rotation()
				teleportID := c.SendPlayerPosition(pos, rot)
				p.teleport = &TeleportRequest{
					ID:       teleportID,
					Position: pos,
					Rotation: rot,
				}
			} else if inputs.Position.IsValid() {
				p.applyInputs()
			} else {
				w.log.Info("Player move invalid",
					zap.Float64("x", inputs.Position[0]),
					zap.Float64("y", inputs.Position[1]),
					zap.Float64("z", inputs.Position[2]),
				)
				c.SendDisconnect(chat.TranslateMsg("multiplayer.disconnect.invalid_player_movement"))
			}
		}
		p.Inputs.Unlock()
		w.tracker.MoveViewer(c, p.Position())
	}
}
