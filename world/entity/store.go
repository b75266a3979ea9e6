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

package entity

import (
	"sync"

	"golang.org/x/exp/constraints"
)

// Key names a typed attribute. Two keys with the same name address the same
// slot in a Store, so keys are declared once as package level variables.
type Key[T any] struct {
	name   string
	def    T
	hasDef bool
	bound  func(T) T
}

// NewKey returns a key without a default: Get reports false until it is set.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// NewKeyWithDefault returns a key whose absent value reads as def.
func NewKeyWithDefault[T any](name string, def T) Key[T] {
	return Key[T]{name: name, def: def, hasDef: true}
}

// WithBounds returns a copy of the key that passes every stored value
// through bound first.
func (k Key[T]) WithBounds(bound func(T) T) Key[T] {
	k.bound = bound
	return k
}

func (k Key[T]) Name() string { return k.name }

// Listener is notified after a value was stored or removed. old and new are
// nil when the slot was empty before or after the change.
type Listener func(key string, old, new any)

// Store is the authoritative attribute storage of one entity.
//
// The simulation writes to it, protocols only read. All methods are safe for
// concurrent use, although the tick loop is the only writer in practice.
type Store struct {
	mu        sync.RWMutex
	values    map[string]any
	listeners map[string][]Listener
}

func NewStore() *Store {
	return &Store{
		values:    make(map[string]any),
		listeners: make(map[string][]Listener),
	}
}

// OnChange registers l for the attribute with the given key name.
func (s *Store) OnChange(name string, l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[name] = append(s.listeners[name], l)
}

func (s *Store) load(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

func (s *Store) store(name string, v any, remove bool) {
	s.mu.Lock()
	old, had := s.values[name]
	if remove {
		delete(s.values, name)
	} else {
		s.values[name] = v
	}
	listeners := s.listeners[name]
	s.mu.Unlock()

	if !had {
		old = nil
	}
	if remove && !had {
		return
	}
	for _, l := range listeners {
		l(name, old, v)
	}
}

// Get reads the attribute addressed by k. When nothing is stored, the key's
// default is returned if it has one.
func Get[T any](s *Store, k Key[T]) (T, bool) {
	if v, ok := s.load(k.name); ok {
		if t, ok := v.(T); ok {
			return t, true
		}
	}
	return k.def, k.hasDef
}

// GetOr is like Get but falls back to def when the attribute is absent and
// the key has no default of its own.
func GetOr[T any](s *Store, k Key[T], def T) T {
	if v, ok := Get(s, k); ok {
		return v
	}
	return def
}

// Has reports whether a value is explicitly stored for k.
func Has[T any](s *Store, k Key[T]) bool {
	_, ok := s.load(k.name)
	return ok
}

func Set[T any](s *Store, k Key[T], v T) {
	if k.bound != nil {
		v = k.bound(v)
	}
	s.store(k.name, v, false)
}

func Remove[T any](s *Store, k Key[T]) {
	s.store(k.name, nil, true)
}

// Clamp returns a bound function limiting values to [lo, hi].
func Clamp[T constraints.Ordered](lo, hi T) func(T) T {
	return func(v T) T {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
}
