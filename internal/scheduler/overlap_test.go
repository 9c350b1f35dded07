package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offsetsOf(items []GridItem) []int {
	offsets := make([]int, len(items))
	for i, item := range items {
		offsets[i] = item.Offset
	}
	return offsets
}

func TestProcessOverlapsStacksAndPropagatesSubject(t *testing.T) {
	placements := []Placement{
		placementFixture("a", "math", Monday, 1, 4),
		placementFixture("b", "physics", Monday, 2, 2),
		placementFixture("c", "chem", Monday, 3, 2),
		placementFixture("d", "math", Monday, 10, 2),
	}

	items := ProcessOverlaps(placements)
	require.Len(t, items, 4)
	assert.Equal(t, []int{0, 1, 2, 0}, offsetsOf(items))
	for _, item := range items {
		assert.True(t, item.Overlap, item.CandidateID)
	}
	assert.Equal(t, 3, StackDepth(items, Monday))
}

func TestProcessOverlapsLeavesIsolatedItems(t *testing.T) {
	placements := []Placement{
		placementFixture("a", "math", Monday, 1, 2),
		placementFixture("b", "physics", Monday, 3, 2),
		placementFixture("c", "chem", Tuesday, 1, 2),
	}

	items := ProcessOverlaps(placements)
	for _, item := range items {
		assert.False(t, item.Overlap, item.CandidateID)
		assert.Equal(t, -1, item.Offset, item.CandidateID)
	}
	assert.Equal(t, 1, StackDepth(items, Monday))
}

func TestProcessOverlapsIgnoresResources(t *testing.T) {
	a := placementFixture("a", "math", Friday, 1, 2)
	a.RoomID = "room-1"
	b := placementFixture("b", "physics", Friday, 2, 2)
	b.RoomID = "room-2"

	items := ProcessOverlaps([]Placement{a, b})
	assert.True(t, items[0].Overlap)
	assert.True(t, items[1].Overlap)
	assert.Equal(t, []int{0, 1}, offsetsOf(items))
}

func TestProcessOverlapsOffsetMinimality(t *testing.T) {
	placements := []Placement{
		placementFixture("a", "s1", Wednesday, 1, 6),
		placementFixture("b", "s2", Wednesday, 1, 2),
		placementFixture("c", "s3", Wednesday, 3, 2),
		placementFixture("d", "s4", Wednesday, 5, 4),
		placementFixture("e", "s5", Wednesday, 8, 2),
		placementFixture("f", "s6", Thursday, 1, 2),
		placementFixture("g", "s7", Thursday, 2, 2),
	}

	items := ProcessOverlaps(placements)
	for i := range items {
		for j := range items {
			if i == j || !collides(items[i].Placement, items[j].Placement) {
				continue
			}
			assert.NotEqual(t, items[i].Offset, items[j].Offset, "%s and %s share a stack row", items[i].CandidateID, items[j].CandidateID)
		}
	}
	// b, c and d never intersect each other, so all three reuse row 1 under a.
	assert.Equal(t, []int{0, 1, 1, 1, 0, 0, 1}, offsetsOf(items))
}

func TestProcessOverlapsIsIdempotent(t *testing.T) {
	placements := []Placement{
		placementFixture("a", "math", Monday, 1, 4),
		placementFixture("b", "physics", Monday, 2, 2),
		placementFixture("c", "chem", Monday, 3, 2),
		placementFixture("d", "math", Monday, 10, 2),
		placementFixture("e", "bio", Tuesday, 1, 2),
		placementFixture("f", "bio", Tuesday, 2, 2),
	}

	first := ProcessOverlaps(placements)
	again := make([]Placement, len(first))
	for i, item := range first {
		again[i] = item.Placement
	}
	second := ProcessOverlaps(again)
	assert.Equal(t, offsetsOf(first), offsetsOf(second))
}
