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

package bvh

import "golang.org/x/exp/constraints"

// AABB is an axis-aligned bounding box. Bounds are exclusive.
type AABB[I constraints.Signed | constraints.Float, V interface {
	Add(V) V
	Sub(V) V
	Max(V) V
	Min(V) V
	Less(V) bool
	More(V) bool
	Sum() I
}] struct {
	Upper, Lower V
}

// WithIn reports whether point lies strictly inside the box.
func (aabb AABB[I, V]) WithIn(point V) bool {
	return aabb.Lower.Less(point) && aabb.Upper.More(point)
}

// Touch reports whether the two boxes overlap. A degenerate box (a point)
// touches every box it lies strictly inside of.
func (aabb AABB[I, V]) Touch(other AABB[I, V]) bool {
	return aabb.Lower.Less(other.Upper) && other.Lower.Less(aabb.Upper)
}

func (aabb AABB[I, V]) Union(other AABB[I, V]) AABB[I, V] {
	return AABB[I, V]{
		Upper: aabb.Upper.Max(other.Upper),
		Lower: aabb.Lower.Min(other.Lower),
	}
}

// Surface is the perimeter for 2D boxes. It is only used to compare the cost
// of candidate merges.
func (aabb AABB[I, V]) Surface() I {
	return aabb.Upper.Sub(aabb.Lower).Sum() * 2
}

// Around returns the box of half extent r centered on c.
func Around[I constraints.Signed | constraints.Float](c Vec2[I], r I) AABB[I, Vec2[I]] {
	d := Vec2[I]{r, r}
	return AABB[I, Vec2[I]]{Upper: c.Add(d), Lower: c.Sub(d)}
}

// Point returns the degenerate box at p.
func Point[I constraints.Signed | constraints.Float](p Vec2[I]) AABB[I, Vec2[I]] {
	return AABB[I, Vec2[I]]{Upper: p, Lower: p}
}
