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

package client

import (
	"fmt"

	pk "github.com/Tnze/go-mc/net/packet"

	"FlowySync/world/entity"
)

// Player command actions.
const (
	actionStartSneaking int32 = iota
	actionStopSneaking
	actionLeaveBed
	actionStartSprinting
	actionStopSprinting
	actionStartHorseJump
	actionStopHorseJump
	actionOpenVehicleInventory
	actionStartFallFlying
)

func clientPlayerCommand(p pk.Packet, c *Client) error {
	var (
		entityID  pk.VarInt
		action    pk.VarInt
		jumpBoost pk.VarInt
	)
	if err := p.Scan(&entityID, &action, &jumpBoost); err != nil {
		return err
	}
	c.Inputs.Lock()
	defer c.Inputs.Unlock()
	switch int32(action) {
	case actionStartSneaking:
		c.Inputs.Sneaking = true
	case actionStopSneaking:
		c.Inputs.Sneaking = false
	case actionStartSprinting:
		c.Inputs.Sprinting = true
	case actionStopSprinting:
		c.Inputs.Sprinting = false
	case actionStartFallFlying:
		c.Inputs.FallFlying = true
	case actionLeaveBed, actionStartHorseJump, actionStopHorseJump, actionOpenVehicleInventory:
	default:
		return fmt.Errorf("unknown player command %d", action)
	}
	return nil
}

func clientSwing(p pk.Packet, c *Client) error {
	var hand pk.VarInt
	if err := p.Scan(&hand); err != nil {
		return err
	}
	ev := entity.SwingHandEvent{Hand: entity.PrimaryHand}
	if hand != 0 {
		ev.Hand = entity.SecondaryHand
	}
	c.events.PostEvent(c.player.Entity, ev)
	return nil
}
