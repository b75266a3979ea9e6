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
	"errors"

	"FlowySync/world/entity"
)

var (
	// ErrFixedIDSequence is returned by Init when a protocol constructed
	// with an externally allocated id belongs to a multi-part kind.
	ErrFixedIDSequence = errors.New("fixed entity id cannot own a part id sequence")
	// ErrUnhandledEvent is returned by HandleEvent when no level knows the event.
	ErrUnhandledEvent = errors.New("unhandled entity event")
	ErrUnknownKind    = errors.New("unknown entity kind")
	ErrDuplicateKind  = errors.New("entity kind already registered")
	ErrAlreadyTracked = errors.New("entity already tracked")
	// ErrPartCount is returned by Init when the allocator returned a part
	// sequence of the wrong length.
	ErrPartCount = errors.New("mismatched entity part id count")
)

// UpdateContext is what a protocol sees of the outside world while it runs:
// the set of viewers to address and the ids of other tracked entities.
//
// "Self" is the session controlling the entity, if any. Factories are only
// invoked when the selected viewer set is not empty.
type UpdateContext interface {
	SendToAll(f MessageFactory)
	SendToAllExceptSelf(f MessageFactory)
	SendToSelf(f MessageFactory)
	// IDOf resolves the network id of another entity. It reports false for
	// entities that are not tracked.
	IDOf(e *entity.Entity) (int32, bool)
	// Tick is the number of the current server tick.
	Tick() uint64
}
