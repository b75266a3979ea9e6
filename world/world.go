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
	"errors"
	"sync"

	"github.com/Tnze/go-mc/level"
	"github.com/Tnze/go-mc/level/block"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"FlowySync/world/entity"
	"FlowySync/world/protocol"
)

type World struct {
	log           *zap.Logger
	config        Config
	chunkProvider ChunkProvider

	chunks   map[[2]int32]*LoadedChunk
	loaders  map[ChunkViewer]*loader
	tickLock sync.Mutex

	tracker *EntityTracker
	players map[Client]*Player

	stop      chan struct{}
	closeOnce sync.Once
	closed    bool
}

type Config struct {
	ViewDistance  int32
	SpawnAngle    float32
	SpawnPosition [3]int32
}

// New creates a world and starts its tick loop. Entities of the world are
// synchronized by tracker.
func New(logger *zap.Logger, provider ChunkProvider, tracker *EntityTracker, config Config) (w *World) {
	w = newWorld(logger, provider, tracker, config)
	go w.tickLoop()
	return
}

func newWorld(logger *zap.Logger, provider ChunkProvider, tracker *EntityTracker, config Config) *World {
	return &World{
		log:           logger,
		config:        config,
		chunkProvider: provider,
		chunks:        make(map[[2]int32]*LoadedChunk),
		loaders:       make(map[ChunkViewer]*loader),
		tracker:       tracker,
		players:       make(map[Client]*Player),
		stop:          make(chan struct{}),
	}
}

// Close stops the tick loop. No tick runs after Close returns.
func (w *World) Close() {
	w.closeOnce.Do(func() { close(w.stop) })
	w.tickLock.Lock()
	w.closed = true
	w.tickLock.Unlock()
}

func (w *World) Name() string {
	return "minecraft:overworld"
}

func (w *World) SpawnPositionAndAngle() ([3]int32, float32) {
	return w.config.SpawnPosition, w.config.SpawnAngle
}

func (w *World) HashedSeed() [8]byte {
	return [8]byte{}
}

// AddPlayer starts streaming chunks and entities to c and makes p visible
// to the other players. join runs with p.EntityID set, before any entity
// message is queued for c.
func (w *World) AddPlayer(c Client, p *Player, limiter *rate.Limiter, join func()) error {
	w.tickLock.Lock()
	defer w.tickLock.Unlock()
	w.tracker.AddViewer(c, p.Position())
	_, err := w.tracker.TrackSession(p.Entity, c, func(id int32) {
		p.EntityID = id
		if join != nil {
			join()
		}
	})
	if err != nil {
		w.tracker.RemoveViewer(c)
		return err
	}
	w.loaders[c] = newLoader(p, limiter)
	w.players[c] = p
	return nil
}

func (w *World) RemovePlayer(c Client, p *Player) {
	w.tickLock.Lock()
	defer w.tickLock.Unlock()
	if l, ok := w.loaders[c]; ok {
		w.log.Debug("Remove Player",
			zap.Int("loader count", len(l.loaded)),
			zap.Int("world count", len(w.chunks)),
		)
		for pos := range l.loaded {
			if !w.chunks[pos].RemoveViewer(c) {
				w.log.Panic("viewer is not found in the loaded chunk")
			}
		}
	}
	delete(w.loaders, c)
	delete(w.players, c)
	w.tracker.RemoveViewer(c)
	w.tracker.Untrack(p.Entity)
}

// SpawnEntity starts synchronizing e to the players in range and returns
// its network id.
func (w *World) SpawnEntity(e *entity.Entity, opts ...protocol.Option) (int32, error) {
	w.tickLock.Lock()
	defer w.tickLock.Unlock()
	p, err := w.tracker.Track(e, nil, opts...)
	if err != nil {
		return 0, err
	}
	return p.RootID(), nil
}

// RemoveEntity destroys e for every player. It reports whether e was in
// this world.
func (w *World) RemoveEntity(e *entity.Entity) bool {
	w.tickLock.Lock()
	defer w.tickLock.Unlock()
	return w.tracker.Untrack(e)
}

// PostEvent forwards a discrete event of e to its viewers on the next tick.
func (w *World) PostEvent(e *entity.Entity, ev entity.Event) {
	w.tracker.PostEvent(e, ev)
}

func (w *World) EntityStats() []EntityStats {
	w.tickLock.Lock()
	defer w.tickLock.Unlock()
	return w.tracker.Stats()
}

func (w *World) LookupEntity(id int32) (EntityStats, bool) {
	w.tickLock.Lock()
	defer w.tickLock.Unlock()
	return w.tracker.Lookup(id)
}

// AllocatorStats reports the tick count and the number of entity ids in use.
func (w *World) AllocatorStats() (tick uint64, live int) {
	w.tickLock.Lock()
	defer w.tickLock.Unlock()
	return w.tracker.CurrentTick(), w.tracker.LiveIDs()
}

func (w *World) loadChunk(pos [2]int32) bool {
	logger := w.log.With(zap.Int32("x", pos[0]), zap.Int32("z", pos[1]))
	logger.Debug("Loading chunk")
	c, err := w.chunkProvider.GetChunk(pos)
	if err != nil {
		if errors.Is(err, errChunkNotExist) {
			logger.Debug("Generate chunk")
			// TODO: replace the stone filler with a terrain generator
			c = level.EmptyChunk(24)
			stone := block.ToStateID[block.Stone{}]
			for s := range c.Sections {
				for i := 0; i < 16*16*16; i++ {
					c.Sections[s].SetBlock(i, stone)
				}
			}
			c.Status = level.StatusFull
		} else if !errors.Is(err, ErrReachRateLimit) {
			logger.Error("GetChunk error", zap.Error(err))
			return false
		}
	}
	if c == nil {
		return false
	}
	w.chunks[pos] = &LoadedChunk{Chunk: c}
	return true
}

func (w *World) unloadChunk(pos [2]int32) {
	logger := w.log.With(zap.Int32("x", pos[0]), zap.Int32("z", pos[1]))
	logger.Debug("Unloading chunk")
	c, ok := w.chunks[pos]
	if !ok {
		logger.Panic("Unloading an non-exist chunk")
	}
	for _, viewer := range c.viewers {
		viewer.ViewChunkUnload(pos)
	}
	err := w.chunkProvider.PutChunk(pos, c.Chunk)
	if err != nil {
		logger.Error("Store chunk data error", zap.Error(err))
	}
	delete(w.chunks, pos)
}

type LoadedChunk struct {
	sync.Mutex
	viewers []ChunkViewer
	*level.Chunk
}

// AddViewer panics if v already views the chunk.
func (lc *LoadedChunk) AddViewer(v ChunkViewer) {
	lc.Lock()
	defer lc.Unlock()
	for _, v2 := range lc.viewers {
		if v2 == v {
			panic("append an exist viewer")
		}
	}
	lc.viewers = append(lc.viewers, v)
}

func (lc *LoadedChunk) RemoveViewer(v ChunkViewer) bool {
	lc.Lock()
	defer lc.Unlock()
	for i, v2 := range lc.viewers {
		if v2 == v {
			last := len(lc.viewers) - 1
			lc.viewers[i] = lc.viewers[last]
			lc.viewers = lc.viewers[:last]
			return true
		}
	}
	return false
}
