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

import (
	"math/rand"
	"testing"

	"golang.org/x/exp/slices"
)

type (
	vec2d   = Vec2[float64]
	aabb2d  = AABB[float64, vec2d]
	tree2di = Tree[float64, aabb2d, int]
)

func collect(tree *tree2di, test func(bound aabb2d) bool) []int {
	var result []int
	tree.Find(test, func(n *Node[float64, aabb2d, int]) bool {
		result = append(result, n.Value)
		return true
	})
	slices.Sort(result)
	return result
}

func TestTree_Insert(t *testing.T) {
	aabbs := []aabb2d{
		{Upper: vec2d{1, 1}, Lower: vec2d{0, 0}},
		{Upper: vec2d{2, 1}, Lower: vec2d{1, 0}},
		{Upper: vec2d{11, 1}, Lower: vec2d{10, 0}},
		{Upper: vec2d{12, 1}, Lower: vec2d{11, 0}},
		{Upper: vec2d{101, 1}, Lower: vec2d{100, 0}},
		{Upper: vec2d{102, 1}, Lower: vec2d{101, 0}},
		{Upper: vec2d{111, 1}, Lower: vec2d{110, 0}},
		{Upper: vec2d{112, 1}, Lower: vec2d{111, 0}},
		{Upper: vec2d{1, 1}, Lower: vec2d{-1, -1}},
	}
	var tree tree2di
	for i, aabb := range aabbs {
		tree.Insert(aabb, i)
	}
	t.Log(tree)
	if tree.Len() != len(aabbs) {
		t.Fatalf("Len() = %d", tree.Len())
	}

	got := collect(&tree, TouchPoint[vec2d, aabb2d](vec2d{0.5, 0.5}))
	if !slices.Equal(got, []int{0, 8}) {
		t.Errorf("found %v, want [0 8]", got)
	}
	got = collect(&tree, TouchBound(aabb2d{Upper: vec2d{105, 2}, Lower: vec2d{100.5, -1}}))
	if !slices.Equal(got, []int{4, 5}) {
		t.Errorf("found %v, want [4 5]", got)
	}
}

func TestTree_Delete(t *testing.T) {
	var tree tree2di
	nodes := make([]*Node[float64, aabb2d, int], 4)
	for i := range nodes {
		nodes[i] = tree.Insert(Point(vec2d{float64(i * 10), 0}), i)
	}
	tree.Delete(nodes[1])
	tree.Delete(nodes[3])

	got := collect(&tree, TouchBound(Around(vec2d{15, 0}, 100)))
	if !slices.Equal(got, []int{0, 2}) {
		t.Errorf("found %v, want [0 2]", got)
	}
	tree.Delete(nodes[0])
	tree.Delete(nodes[2])
	if tree.Len() != 0 {
		t.Errorf("Len() = %d after deleting everything", tree.Len())
	}
	if got := collect(&tree, TouchBound(Around(vec2d{0, 0}, 100))); len(got) != 0 {
		t.Errorf("empty tree found %v", got)
	}
}

func TestTree_Move(t *testing.T) {
	var tree tree2di
	a := tree.Insert(Point(vec2d{0, 0}), 1)
	tree.Insert(Point(vec2d{50, 50}), 2)

	a = tree.Move(a, Point(vec2d{49, 49}))
	got := collect(&tree, TouchBound(Around(vec2d{50, 50}, 5)))
	if !slices.Equal(got, []int{1, 2}) {
		t.Errorf("found %v, want [1 2]", got)
	}
	if a.Value != 1 {
		t.Errorf("moved node lost its value")
	}
}

func TestTree_FindMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var tree tree2di
	points := make([]vec2d, 500)
	nodes := make([]*Node[float64, aabb2d, int], len(points))
	for i := range points {
		points[i] = vec2d{rng.Float64() * 1000, rng.Float64() * 1000}
		nodes[i] = tree.Insert(Point(points[i]), i)
	}
	for i := 0; i < len(points); i += 3 {
		tree.Delete(nodes[i])
	}

	for q := 0; q < 50; q++ {
		query := Around(vec2d{rng.Float64() * 1000, rng.Float64() * 1000}, 80)
		var want []int
		for i, p := range points {
			if i%3 != 0 && query.Touch(Point(p)) {
				want = append(want, i)
			}
		}
		if got := collect(&tree, TouchBound(query)); !slices.Equal(got, want) {
			t.Fatalf("query %v: found %v, want %v", query, got, want)
		}
	}
}

func TestTree_FindStops(t *testing.T) {
	var tree tree2di
	for i := 0; i < 10; i++ {
		tree.Insert(Point(vec2d{float64(i), 0}), i)
	}
	calls := 0
	tree.Find(TouchBound(Around(vec2d{5, 0}, 100)), func(*Node[float64, aabb2d, int]) bool {
		calls++
		return false
	})
	if calls != 1 {
		t.Errorf("foreach called %d times after asking to stop", calls)
	}
}

func BenchmarkTree_Insert(b *testing.B) {
	const size = 25
	aabbs := make([]aabb2d, b.N)
	for i := range aabbs {
		aabbs[i] = Around(vec2d{rand.Float64() * 1e4, rand.Float64() * 1e4}, size)
	}
	b.ResetTimer()

	var tree tree2di
	for i, v := range aabbs {
		tree.Insert(v, i)
	}
}

func BenchmarkTree_Find(b *testing.B) {
	const size = 25
	var tree tree2di
	poses := make([]vec2d, b.N)
	for i := range poses {
		poses[i] = vec2d{rand.Float64() * 1e4, rand.Float64() * 1e4}
		tree.Insert(Around(poses[i], size), i)
	}
	b.ResetTimer()

	for _, v := range poses {
		tree.Find(TouchPoint[vec2d, aabb2d](v), func(*Node[float64, aabb2d, int]) bool { return true })
	}
}

func BenchmarkTree_Delete(b *testing.B) {
	const size = 25
	var tree tree2di
	nodes := make([]*Node[float64, aabb2d, int], b.N)
	for i := range nodes {
		nodes[i] = tree.Insert(Around(vec2d{rand.Float64() * 1e4, rand.Float64() * 1e4}, size), i)
	}
	rand.Shuffle(b.N, func(i, j int) { nodes[i], nodes[j] = nodes[j], nodes[i] })
	b.ResetTimer()

	for _, v := range nodes {
		tree.Delete(v)
	}
}
