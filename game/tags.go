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
	"io"

	pk "github.com/Tnze/go-mc/net/packet"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"FlowySync/world/entity"
	"FlowySync/world/protocol"
)

// Tag is one tag registry of ClientboundUpdateTags: tag names mapped to the
// network ids they contain.
type Tag[T ~int32 | ~int] struct {
	Name   string
	Values map[string][]T
}

func (t Tag[T]) WriteTo(w io.Writer) (n int64, err error) {
	n, err = pk.Tuple{
		pk.Identifier(t.Name),
		pk.VarInt(len(t.Values)),
	}.WriteTo(w)
	if err != nil {
		return
	}
	names := maps.Keys(t.Values)
	slices.Sort(names)
	for _, name := range names {
		ids := t.Values[name]
		nn, err := pk.Tuple{pk.Identifier(name), pk.VarInt(len(ids))}.WriteTo(w)
		n += nn
		if err != nil {
			return n, err
		}
		for _, id := range ids {
			nn, err = pk.VarInt(id).WriteTo(w)
			n += nn
			if err != nil {
				return n, err
			}
		}
	}
	return
}

var fluidTags = Tag[int32]{
	Name: "minecraft:fluid",
	Values: map[string][]int32{
		"minecraft:water": {1, 2},
		"minecraft:lava":  {3, 4},
	},
}

// entityTypeTags groups the registered kinds into the vanilla entity type
// tags the client checks.
func entityTypeTags(r *protocol.Registry) Tag[int32] {
	groups := map[string][]entity.Kind{
		"minecraft:skeletons": {entity.Skeleton},
		"minecraft:frog_food": {entity.Slime, entity.MagmaCube},
	}
	tag := Tag[int32]{Name: "minecraft:entity_type", Values: make(map[string][]int32)}
	for name, kinds := range groups {
		ids := []int32{}
		for _, k := range kinds {
			if spec, ok := r.Spec(k); ok {
				ids = append(ids, spec.NetworkType)
			}
		}
		tag.Values[name] = ids
	}
	return tag
}

func updateTags(r *protocol.Registry) pk.Field {
	return pk.Array([]pk.FieldEncoder{fluidTags, entityTypeTags(r)})
}
