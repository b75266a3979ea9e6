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

// Command mklevel writes a minimal level that the server can load: a
// level.dat with the spawn point and a region holding one bedrock chunk.
package main

import (
	"bytes"
	"compress/gzip"
	"errors"
	"flag"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Tnze/go-mc/nbt"
	"github.com/Tnze/go-mc/save"
	"github.com/Tnze/go-mc/save/region"
	"go.uber.org/zap"
)

var (
	dir    = flag.String("dir", "world", "Level directory")
	spawnX = flag.Int("spawn-x", 8, "Spawn X")
	spawnY = flag.Int("spawn-y", -60, "Spawn Y")
	spawnZ = flag.Int("spawn-z", 8, "Spawn Z")
)

func main() {
	flag.Parse()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := writeLevel(*dir, int32(*spawnX), int32(*spawnY), int32(*spawnZ)); err != nil {
		logger.Fatal("Write level.dat fail", zap.Error(err))
	}
	if err := writeRegion(*dir); err != nil {
		logger.Fatal("Write region fail", zap.Error(err))
	}
	logger.Info("Level created", zap.String("dir", *dir))
}

func writeLevel(dir string, x, y, z int32) error {
	level := &save.Level{
		Data: save.LevelData{
			Version: struct {
				ID       int32 `nbt:"Id"`
				Name     string
				Series   string
				Snapshot byte
			}{
				ID:     3337,
				Name:   "1.19.4",
				Series: "main",
			},
			LevelName:      filepath.Base(dir),
			GameType:       1,
			LastPlayed:     time.Now().UnixMilli(),
			SpawnX:         x,
			SpawnY:         y,
			SpawnZ:         z,
			Difficulty:     2,
			GameRules:      make(map[string]string),
			DataVersion:    3337,
			Initialized:    true,
			StorageVersion: 19133,
		},
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, "level.dat"))
	if err != nil {
		return err
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	if err := nbt.NewEncoder(gw).Encode(level, ""); err != nil {
		return err
	}
	return gw.Close()
}

func writeRegion(dir string) error {
	regionDir := filepath.Join(dir, "region")
	if err := os.MkdirAll(regionDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(regionDir, "r.0.0.mca")
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	r, err := region.Create(path)
	if err != nil {
		return err
	}
	defer r.Close()

	data, err := bedrockChunk()
	if err != nil {
		return err
	}
	if err := r.WriteSector(0, 0, data); err != nil {
		return err
	}
	if !r.ExistSector(0, 0) {
		return errors.New("chunk was not saved")
	}
	return nil
}

// bedrockChunk encodes chunk 0,0 with its lowest section filled with bedrock.
func bedrockChunk() ([]byte, error) {
	heightmap := func() []int64 { return make([]int64, 37) }
	chunk := map[string]any{
		"DataVersion": int32(3337),
		"xPos":        int32(0),
		"yPos":        int32(-4),
		"zPos":        int32(0),
		"Status":      "minecraft:full",
		"LastUpdate":  int64(0),
		"Heightmaps": map[string][]int64{
			"WORLD_SURFACE":   heightmap(),
			"MOTION_BLOCKING": heightmap(),
		},
		"sections": []map[string]any{{
			"Y": int8(-4),
			"block_states": map[string]any{
				"palette": []map[string]any{{"Name": "minecraft:bedrock"}},
			},
			"biomes": map[string]any{
				"palette": []string{"minecraft:plains"},
			},
		}},
	}

	var buf bytes.Buffer
	buf.WriteByte(1) // gzip
	gw := gzip.NewWriter(&buf)
	if err := nbt.NewEncoder(gw).Encode(chunk, ""); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
