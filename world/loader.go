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
	"sort"

	"golang.org/x/time/rate"
)

// loader keeps the chunks around a source loaded. Chunks are queued nearest
// first.
type loader struct {
	loaderSource
	loaded      map[[2]int32]struct{}
	loadQueue   [][2]int32
	unloadQueue [][2]int32
	limiter     *rate.Limiter
}

type loaderSource interface {
	chunkPosition() [2]int32
	chunkRadius() int32
}

func newLoader(source loaderSource, limiter *rate.Limiter) (l *loader) {
	l = &loader{
		loaderSource: source,
		loaded:       make(map[[2]int32]struct{}),
		limiter:      limiter,
	}
	l.calcLoadingQueue()
	return
}

func (l *loader) radius() int32 {
	return max(0, min(l.chunkRadius(), maxLoadRadius))
}

func (l *loader) calcLoadingQueue() {
	l.loadQueue = l.loadQueue[:0]
	center := l.chunkPosition()
	for _, v := range loadList[:radiusIdx[l.radius()]] {
		pos := [2]int32{center[0] + v[0], center[1] + v[1]}
		if _, ok := l.loaded[pos]; !ok {
			l.loadQueue = append(l.loadQueue, pos)
		}
	}
}

func (l *loader) calcUnusedChunks() {
	l.unloadQueue = l.unloadQueue[:0]
	center, r := l.chunkPosition(), float64(l.radius())
	for chunk := range l.loaded {
		if distance2i([2]int32{chunk[0] - center[0], chunk[1] - center[1]}) > r {
			l.unloadQueue = append(l.unloadQueue, chunk)
		}
	}
}

const maxLoadRadius int32 = 32

// loadList holds the chunk offsets within maxLoadRadius sorted by distance.
// loadList[:radiusIdx[r]] are the offsets a loader of radius r wants.
var (
	loadList  [][2]int32
	radiusIdx []int
)

func init() {
	for x := -maxLoadRadius; x <= maxLoadRadius; x++ {
		for z := -maxLoadRadius; z <= maxLoadRadius; z++ {
			pos := [2]int32{x, z}
			if distance2i(pos) < float64(maxLoadRadius) {
				loadList = append(loadList, pos)
			}
		}
	}
	sort.Slice(loadList, func(i, j int) bool {
		return distance2i(loadList[i]) < distance2i(loadList[j])
	})

	radiusIdx = make([]int, maxLoadRadius+1)
	for i, v := range loadList {
		r := int32(math.Ceil(distance2i(v)))
		if r > maxLoadRadius {
			break
		}
		radiusIdx[r] = i
	}
}

func distance2i(pos [2]int32) float64 {
	return math.Sqrt(float64(pos[0]*pos[0]) + float64(pos[1]*pos[1]))
}
