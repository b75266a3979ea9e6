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

import "testing"

func TestAABB_WithIn(t *testing.T) {
	aabb := AABB[float64, Vec2[float64]]{
		Upper: Vec2[float64]{2, 2},
		Lower: Vec2[float64]{-1, -1},
	}
	if !aabb.WithIn(Vec2[float64]{0, 0}) {
		t.Error("(0, 0) should be included")
	}
	if aabb.WithIn(Vec2[float64]{-2, -2}) {
		t.Error("(-2, -2) shouldn't be included")
	}
	if aabb.WithIn(Vec2[float64]{2, 0}) {
		t.Error("bounds are exclusive")
	}

	cube := AABB[int, Vec2[int]]{Upper: Vec2[int]{1, 1}, Lower: Vec2[int]{-1, -1}}
	if !cube.WithIn(Vec2[int]{0, 0}) {
		t.Error("(0, 0) should be included")
	}
}

func TestAABB_Touch(t *testing.T) {
	box := Around(Vec2[float64]{0, 0}, 10)
	for _, tc := range []struct {
		other AABB[float64, Vec2[float64]]
		want  bool
	}{
		{Point(Vec2[float64]{9.5, -9.5}), true},
		{Point(Vec2[float64]{10, 0}), false},
		{Around(Vec2[float64]{19, 0}, 10), true},
		{Around(Vec2[float64]{21, 0}, 1), false},
		{Around(Vec2[float64]{0, 0}, 100), true},
	} {
		if got := box.Touch(tc.other); got != tc.want {
			t.Errorf("Touch(%v) = %v, want %v", tc.other, got, tc.want)
		}
		if got := tc.other.Touch(box); got != tc.want {
			t.Errorf("Touch is not symmetric for %v", tc.other)
		}
	}
}

func TestAABB_UnionSurface(t *testing.T) {
	a := Point(Vec2[float64]{0, 0})
	b := Point(Vec2[float64]{3, 4})
	u := a.Union(b)
	if u.Lower != (Vec2[float64]{0, 0}) || u.Upper != (Vec2[float64]{3, 4}) {
		t.Errorf("unexpected union %v", u)
	}
	if s := u.Surface(); s != 14 {
		t.Errorf("surface = %v, want 14", s)
	}
}
