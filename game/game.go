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

package game

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Tnze/go-mc/chat"
	"github.com/Tnze/go-mc/data/packetid"
	"github.com/Tnze/go-mc/net"
	"github.com/Tnze/go-mc/save"
	"github.com/Tnze/go-mc/server"
	"github.com/Tnze/go-mc/yggdrasil/user"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"FlowySync/client"
	"FlowySync/world"
	"FlowySync/world/entity"
	"FlowySync/world/protocol"
)

type Game struct {
	log *zap.Logger

	config     Config
	serverInfo *server.PingInfo

	playerProvider world.PlayerProvider
	registry       *protocol.Registry
	overworld      *world.World

	traceFile *os.File
	recorder  *world.TraceRecorder
	debug     *http.Server
	stopDemo  func()
	stopKeep  context.CancelFunc

	*playerList
}

func NewGame(log *zap.Logger, config Config, pingList *server.PlayerList, serverInfo *server.PingInfo) *Game {
	g := &Game{
		log:        log.Named("game"),
		config:     config,
		serverInfo: serverInfo,
		registry:   protocol.DefaultRegistry(),
	}
	if err := config.applyTrackingRanges(g.registry); err != nil {
		log.Fatal("Invalid tracking range", zap.Error(err))
	}
	if config.RegistryCodec != "" {
		if err := world.LoadNetworkCodec(config.RegistryCodec); err != nil {
			log.Fatal("Cannot load registry codec", zap.Error(err))
		}
	}

	alloc := protocol.NewSyncAllocator(protocol.NewFreeListAllocator())
	tracker := world.NewEntityTracker(log.Named("tracker"), g.registry, alloc)
	if config.TraceFile != "" {
		if err := g.openTrace(config.TraceFile); err != nil {
			log.Fatal("Cannot open trace file", zap.Error(err))
		}
		tracker.SetRecorder(g.recorder)
	}

	overworld, err := createWorld(log, filepath.Join(".", config.LevelName), tracker, &config)
	if err != nil {
		log.Fatal("cannot load overworld", zap.Error(err))
	}
	g.overworld = overworld
	g.playerProvider = world.NewPlayerProvider(filepath.Join(".", config.LevelName, "playerdata"))

	// keepalive
	keepAlive := server.NewKeepAlive()
	g.playerList = &playerList{log: log.Named("chat"), pingList: pingList, keepAlive: keepAlive}
	keepAlive.AddPlayerDelayUpdateHandler(func(c server.KeepAliveClient, latency time.Duration) {
		g.playerList.updateLatency(c.(*client.Client), latency)
	})
	var ctx context.Context
	ctx, g.stopKeep = context.WithCancel(context.Background())
	go keepAlive.Run(ctx)

	if config.DebugAddress != "" {
		g.debug = &http.Server{
			Addr:    config.DebugAddress,
			Handler: newDebugHandler(log.Named("debug"), overworld, g.recorder),
		}
		go func() {
			log.Info("Debug endpoint listening", zap.String("address", config.DebugAddress))
			if err := g.debug.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Debug endpoint error", zap.Error(err))
			}
		}()
	}

	if config.DemoEntities {
		if g.stopDemo, err = startDemo(log.Named("demo"), overworld); err != nil {
			log.Error("Spawn demo entities fail", zap.Error(err))
		}
	}
	return g
}

func (g *Game) openTrace(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	r, err := world.NewTraceRecorder(f)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("start trace: %w", err)
	}
	g.traceFile, g.recorder = f, r
	g.log.Info("Recording entity trace",
		zap.String("file", path),
		zap.String("session", r.Session().String()),
	)
	return nil
}

// createWorld loads the overworld of the level stored at path.
func createWorld(logger *zap.Logger, path string, tracker *world.EntityTracker, config *Config) (*world.World, error) {
	f, err := os.Open(filepath.Join(path, "level.dat"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}

	lv, err := save.ReadLevel(r)
	if err != nil {
		return nil, err
	}

	overworld := world.New(
		logger.Named("overworld"),
		world.NewProvider(filepath.Join(path, "region"), config.ChunkLoadingLimiter.Limiter()),
		tracker,
		world.Config{
			ViewDistance:  config.ViewDistance,
			SpawnAngle:    lv.Data.SpawnAngle,
			SpawnPosition: [3]int32{lv.Data.SpawnX, lv.Data.SpawnY, lv.Data.SpawnZ},
		},
	)
	return overworld, nil
}

// AcceptPlayer is called in its own goroutine for every player that
// finished logging in. It returns when the connection is closed.
func (g *Game) AcceptPlayer(name string, id uuid.UUID, profilePubKey *user.PublicKey, properties []user.Property, protocol int32, conn *net.Conn) {
	logger := g.log.With(
		zap.String("name", name),
		zap.String("uuid", id.String()),
		zap.Int32("protocol", protocol),
	)

	p, err := g.playerProvider.GetPlayer(name, id, profilePubKey, properties)
	if errors.Is(err, os.ErrNotExist) {
		spawn, angle := g.overworld.SpawnPositionAndAngle()
		p = world.NewPlayer(name, id,
			entity.Vec3{float64(spawn[0]) + .5, float64(spawn[1]), float64(spawn[2]) + .5},
			entity.Rotation{angle, 0},
		)
		p.PubKey = profilePubKey
		p.Properties = properties
		p.Gamemode = 1
	} else if err != nil {
		logger.Error("Read player data error", zap.Error(err))
		return
	}

	c := client.New(logger, conn, p, g.overworld)

	joinMsg := chat.TranslateMsg("multiplayer.player.joined", chat.Text(p.Name)).SetColor(chat.Yellow)
	leftMsg := chat.TranslateMsg("multiplayer.player.left", chat.Text(p.Name)).SetColor(chat.Yellow)

	// The login sequence must reach the client before any entity message.
	err = g.overworld.AddPlayer(c, p, g.config.PlayerChunkLoadingLimiter.Limiter(), func() {
		c.SendLogin(g.overworld, p)
		c.SendServerData(g.serverInfo.Description(), g.serverInfo.FavIcon(), g.config.EnforceSecureProfile)
		c.SendPacket(packetid.ClientboundUpdateTags, updateTags(g.registry))
		c.SendSetDefaultSpawnPosition(g.overworld.SpawnPositionAndAngle())
		c.SendPlayerPosition(p.Position(), p.Rotation())
		g.playerList.addPlayer(c, p)
		g.playerList.broadcastSystemChat(joinMsg)
	})
	if err != nil {
		logger.Error("Add player to world fail", zap.Error(err))
		return
	}
	logger.Info("Player join", zap.Int32("eid", p.EntityID))
	defer logger.Info("Player left")
	defer g.playerList.broadcastSystemChat(leftMsg)
	defer g.playerList.removePlayer(c)
	defer g.overworld.RemovePlayer(c, p)

	c.Start()
}

// Close stops the world and flushes the entity trace.
func (g *Game) Close() {
	if g.stopDemo != nil {
		g.stopDemo()
	}
	if g.debug != nil {
		_ = g.debug.Close()
	}
	g.stopKeep()
	g.overworld.Close()
	if g.recorder != nil {
		if err := g.recorder.Close(); err != nil {
			g.log.Error("Close trace recorder", zap.Error(err))
		}
		g.log.Info("Entity trace closed", zap.Int("messages", g.recorder.Count()))
		if err := g.traceFile.Close(); err != nil {
			g.log.Error("Close trace file", zap.Error(err))
		}
	}
}
