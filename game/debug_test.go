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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"FlowySync/world"
	"FlowySync/world/entity"
)

type fakeEntitySource struct {
	stats []world.EntityStats
}

func (f fakeEntitySource) EntityStats() []world.EntityStats { return f.stats }

func (f fakeEntitySource) LookupEntity(id int32) (world.EntityStats, bool) {
	for _, s := range f.stats {
		if s.ID == id {
			return s, true
		}
	}
	return world.EntityStats{}, false
}

func (f fakeEntitySource) AllocatorStats() (uint64, int) { return 42, len(f.stats) }

func TestDebugHandler(t *testing.T) {
	src := fakeEntitySource{stats: []world.EntityStats{
		{ID: 1, Kind: entity.Player, Viewers: 1},
		{ID: 2, Kind: entity.EnderDragon, Parts: []int32{3, 4, 5, 6, 7, 8, 9, 10}},
	}}
	h := newDebugHandler(zap.NewNop(), src, nil)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/entities")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []world.EntityStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Equal(t, src.stats, all)

	rec = get("/entities/2")
	require.Equal(t, http.StatusOK, rec.Code)
	var one world.EntityStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	assert.Equal(t, entity.EnderDragon, one.Kind)
	assert.Len(t, one.Parts, 8)

	assert.Equal(t, http.StatusNotFound, get("/entities/77").Code)
	assert.Equal(t, http.StatusNotFound, get("/entities/abc").Code)

	rec = get("/allocator")
	require.Equal(t, http.StatusOK, rec.Code)
	var alloc allocatorStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alloc))
	assert.Equal(t, allocatorStats{Tick: 42, LiveIDs: 2}, alloc)
}
