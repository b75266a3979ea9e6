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
	"FlowySync/world/entity"
)

// recordingContext collects every message a protocol emits. By default it
// has other viewers and no self session.
type recordingContext struct {
	tick   uint64
	others bool
	self   bool
	ids    map[*entity.Entity]int32
	sent   []sentMessage
}

type sentMessage struct {
	toSelf   bool
	toOthers bool
	msg      Message
}

func newRecordingContext() *recordingContext {
	return &recordingContext{others: true, ids: make(map[*entity.Entity]int32)}
}

func (c *recordingContext) SendToAll(f MessageFactory) {
	if c.others || c.self {
		c.sent = append(c.sent, sentMessage{toSelf: c.self, toOthers: c.others, msg: f()})
	}
}

func (c *recordingContext) SendToAllExceptSelf(f MessageFactory) {
	if c.others {
		c.sent = append(c.sent, sentMessage{toOthers: true, msg: f()})
	}
}

func (c *recordingContext) SendToSelf(f MessageFactory) {
	if c.self {
		c.sent = append(c.sent, sentMessage{toSelf: true, msg: f()})
	}
}

func (c *recordingContext) IDOf(e *entity.Entity) (int32, bool) {
	id, ok := c.ids[e]
	return id, ok
}

func (c *recordingContext) Tick() uint64 { return c.tick }

// take returns the messages sent since the previous call.
func (c *recordingContext) take() []Message {
	out := make([]Message, len(c.sent))
	for i, s := range c.sent {
		out[i] = s.msg
	}
	c.sent = nil
	return out
}

func only[T Message](msgs []Message) []T {
	var out []T
	for _, m := range msgs {
		if t, ok := m.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

func indices(l entity.ParameterList) []byte {
	out := make([]byte, len(l))
	for i, p := range l {
		out[i] = p.Index
	}
	return out
}
