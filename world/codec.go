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
	"fmt"
	"os"

	"github.com/Tnze/go-mc/nbt"
	"github.com/Tnze/go-mc/registry"
)

// NetworkCodec is the registry codec sent with the login packet.
var NetworkCodec registry.NetworkCodec

// LoadNetworkCodec reads the registry codec from an uncompressed NBT file,
// as dumped by a vanilla server of the same protocol version.
func LoadNetworkCodec(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read registry codec: %w", err)
	}
	if err := nbt.Unmarshal(data, &NetworkCodec); err != nil {
		return fmt.Errorf("parse registry codec: %w", err)
	}
	return nil
}
