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
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"FlowySync/world"
)

// entitySource is what the debug endpoint reads from a world.
type entitySource interface {
	EntityStats() []world.EntityStats
	LookupEntity(id int32) (world.EntityStats, bool)
	AllocatorStats() (tick uint64, live int)
}

type allocatorStats struct {
	Tick         uint64 `json:"tick"`
	LiveIDs      int    `json:"live_ids"`
	TraceSession string `json:"trace_session,omitempty"`
	TraceCount   int    `json:"trace_count,omitempty"`
}

// newDebugHandler serves read-only views of the tracked entities.
func newDebugHandler(log *zap.Logger, src entitySource, recorder *world.TraceRecorder) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/entities", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(log, w, src.EntityStats())
	}).Methods(http.MethodGet)

	r.HandleFunc("/entities/{id:[0-9]+}", func(w http.ResponseWriter, req *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(req)["id"], 10, 32)
		if err != nil {
			http.Error(w, "Invalid entity id", http.StatusBadRequest)
			return
		}
		stats, ok := src.LookupEntity(int32(id))
		if !ok {
			http.Error(w, "Entity not found", http.StatusNotFound)
			return
		}
		writeJSON(log, w, stats)
	}).Methods(http.MethodGet)

	r.HandleFunc("/allocator", func(w http.ResponseWriter, _ *http.Request) {
		var s allocatorStats
		s.Tick, s.LiveIDs = src.AllocatorStats()
		if recorder != nil {
			s.TraceSession = recorder.Session().String()
			s.TraceCount = recorder.Count()
		}
		writeJSON(log, w, s)
	}).Methods(http.MethodGet)
	return r
}

func writeJSON(log *zap.Logger, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Encode debug response", zap.Error(err))
	}
}
