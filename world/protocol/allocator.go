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

package protocol

import (
	"fmt"
	"math"
	"sync"
)

// IDAllocator hands out network entity ids.
//
// Ids returned by AcquireSequence are consecutive, which multi-part entities
// rely on: the client derives part ids from the root id.
type IDAllocator interface {
	Acquire() int32
	AcquireSequence(n int) []int32
	Release(id int32)
	ReleaseAll(ids []int32)
	// Live returns the number of ids currently handed out.
	Live() int
}

// FreeListAllocator reuses released ids. It is not safe for concurrent use.
//
// Released ids are held back until Flush so that an id still referenced by a
// message queued during the current tick is not handed to another entity in
// the same tick. Id 0 is never returned.
type FreeListAllocator struct {
	next    int64
	free    []int32
	pending []int32
	live    map[int32]struct{}
}

func NewFreeListAllocator() *FreeListAllocator {
	return NewFreeListAllocatorFrom(1)
}

// NewFreeListAllocatorFrom returns an allocator whose first id is start.
func NewFreeListAllocatorFrom(start int32) *FreeListAllocator {
	if start < 1 {
		start = 1
	}
	return &FreeListAllocator{next: int64(start), live: make(map[int32]struct{})}
}

func (a *FreeListAllocator) Acquire() int32 {
	var id int32
	if n := len(a.free); n > 0 {
		id = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		id = a.fresh(1)
	}
	a.live[id] = struct{}{}
	return id
}

// AcquireSequence returns n consecutive ids. Sequences are always taken from
// the never used range, the free list is not searched for gaps.
func (a *FreeListAllocator) AcquireSequence(n int) []int32 {
	if n <= 0 {
		panic(fmt.Sprintf("protocol: invalid id sequence length %d", n))
	}
	first := a.fresh(n)
	ids := make([]int32, n)
	for i := range ids {
		ids[i] = first + int32(i)
		a.live[ids[i]] = struct{}{}
	}
	return ids
}

func (a *FreeListAllocator) fresh(n int) int32 {
	if a.next+int64(n)-1 > math.MaxInt32 {
		panic("protocol: entity id space exhausted")
	}
	first := a.next
	a.next += int64(n)
	return int32(first)
}

func (a *FreeListAllocator) Release(id int32) {
	if _, ok := a.live[id]; !ok {
		panic(fmt.Sprintf("protocol: release of entity id %d which is not live", id))
	}
	delete(a.live, id)
	a.pending = append(a.pending, id)
}

func (a *FreeListAllocator) ReleaseAll(ids []int32) {
	for _, id := range ids {
		a.Release(id)
	}
}

// Flush makes ids released since the last Flush available again.
func (a *FreeListAllocator) Flush() {
	a.free = append(a.free, a.pending...)
	a.pending = a.pending[:0]
}

func (a *FreeListAllocator) Live() int { return len(a.live) }

// SyncAllocator guards a FreeListAllocator with a mutex so several worlds can
// share one id space.
type SyncAllocator struct {
	mu sync.Mutex
	a  *FreeListAllocator
}

func NewSyncAllocator(a *FreeListAllocator) *SyncAllocator {
	return &SyncAllocator{a: a}
}

func (s *SyncAllocator) Acquire() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Acquire()
}

func (s *SyncAllocator) AcquireSequence(n int) []int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.AcquireSequence(n)
}

func (s *SyncAllocator) Release(id int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Release(id)
}

func (s *SyncAllocator) ReleaseAll(ids []int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.ReleaseAll(ids)
}

func (s *SyncAllocator) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Flush()
}

func (s *SyncAllocator) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Live()
}
