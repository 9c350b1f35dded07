package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func groupSession(id string, day Weekday, start, size int) Placement {
	p := placementFixture(id, "subject-"+id, day, start, size)
	p.GroupID = "cs-1"
	return p
}

func TestIsPlacementAllowedEmptyDay(t *testing.T) {
	candidate := groupSession("new", Monday, 1, 2)
	assert.True(t, IsPlacementAllowed(candidate, Monday, 1, nil, DefaultPolicy()))

	laterSession := groupSession("s1", Monday, 6, 2)
	assert.True(t, IsPlacementAllowed(candidate, Monday, 3, []Placement{laterSession}, DefaultPolicy()), "sessions starting after the period are ignored")
}

func TestIsPlacementAllowedDailyCap(t *testing.T) {
	existing := []Placement{
		groupSession("s1", Monday, 1, 2),
		groupSession("s2", Monday, 5, 2),
	}
	candidate := groupSession("new", Monday, 0, 2)
	policy := Policy{MaxPerDay: 2, ConsecutiveGap: 1, RestGap: 1}

	for period := 7; period <= 17; period++ {
		assert.False(t, IsPlacementAllowed(candidate, Monday, period, existing, policy), "period %d", period)
	}
	assert.True(t, IsPlacementAllowed(candidate, Tuesday, 7, existing, policy))
}

func TestIsPlacementAllowedLongBlockNeedsRest(t *testing.T) {
	existing := []Placement{groupSession("long", Monday, 1, 10)} // ends at 10
	candidate := groupSession("new", Monday, 0, 2)
	policy := Policy{MaxPerDay: 3, ConsecutiveGap: 1, RestGap: 2}

	assert.False(t, IsPlacementAllowed(candidate, Monday, 11, existing, policy))
	assert.False(t, IsPlacementAllowed(candidate, Monday, 12, existing, policy))
	assert.True(t, IsPlacementAllowed(candidate, Monday, 13, existing, policy))
}

func TestIsPlacementAllowedCloseClusterNeedsRest(t *testing.T) {
	existing := []Placement{
		groupSession("s1", Monday, 1, 2), // 1-2
		groupSession("s2", Monday, 3, 2), // 3-4, back to back with s1
	}
	candidate := groupSession("new", Monday, 0, 2)
	policy := Policy{MaxPerDay: 3, ConsecutiveGap: 1, RestGap: 1}

	assert.False(t, IsPlacementAllowed(candidate, Monday, 5, existing, policy))
	assert.True(t, IsPlacementAllowed(candidate, Monday, 6, existing, policy))
}

func TestIsPlacementAllowedSpacedSessions(t *testing.T) {
	existing := []Placement{
		groupSession("s1", Monday, 1, 2), // 1-2
		groupSession("s2", Monday, 6, 2), // 6-7, far from s1
	}
	candidate := groupSession("new", Monday, 0, 2)
	policy := Policy{MaxPerDay: 3, ConsecutiveGap: 1, RestGap: 1}

	assert.True(t, IsPlacementAllowed(candidate, Monday, 8, existing, policy))
}

func TestIsPlacementAllowedSharedInstructor(t *testing.T) {
	existing := placementFixture("s1", "math", Monday, 1, 2)
	existing.InstructorIDs = []string{"ins-1"}
	candidate := placementFixture("new", "bio", Monday, 0, 2)
	candidate.InstructorIDs = []string{"ins-1"}

	assert.False(t, IsPlacementAllowed(candidate, Monday, 3, []Placement{existing}, Policy{MaxPerDay: 1}))

	candidate.InstructorIDs = []string{"ins-2"}
	assert.True(t, IsPlacementAllowed(candidate, Monday, 3, []Placement{existing}, Policy{MaxPerDay: 1}))
}

func TestIsExamPlacementAllowedSpacingIsResourceAgnostic(t *testing.T) {
	existing := placementFixture("exam-1", "math", Monday, 5, 4) // 5-8
	existing.InstructorIDs = []string{"ins-1"}
	existing.RoomID = "room-1"

	shared := placementFixture("exam-2", "physics", Monday, 0, 4)
	shared.InstructorIDs = []string{"ins-1"}
	shared.RoomID = "room-2"

	unrelated := placementFixture("exam-3", "chem", Monday, 0, 4)
	unrelated.RoomID = "room-3"

	policy := DefaultExamPolicy()
	for _, candidate := range []Placement{shared, unrelated} {
		for period := 1; period <= 10; period++ {
			assert.False(t, IsExamPlacementAllowed(candidate, Monday, period, []Placement{existing}, policy), "%s period %d", candidate.CandidateID, period)
		}
		assert.True(t, IsExamPlacementAllowed(candidate, Monday, 11, []Placement{existing}, policy), candidate.CandidateID)
		assert.True(t, IsExamPlacementAllowed(candidate, Tuesday, 5, []Placement{existing}, policy), candidate.CandidateID)
	}
}

func TestIsExamPlacementAllowedDailyCap(t *testing.T) {
	first := placementFixture("exam-1", "math", Monday, 1, 2)
	first.GroupID = "cs-1"
	second := placementFixture("exam-2", "bio", Monday, 6, 2)
	second.SectionIDs = []string{"sec-9"}

	candidate := placementFixture("exam-3", "chem", Monday, 0, 2)
	candidate.GroupID = "cs-1"
	candidate.SectionIDs = []string{"sec-9"}

	policy := ExamPolicy{MaxPerDay: 2, Gap: 0}
	assert.False(t, IsExamPlacementAllowed(candidate, Monday, 12, []Placement{first, second}, policy))

	policy.MaxPerDay = 3
	assert.True(t, IsExamPlacementAllowed(candidate, Monday, 12, []Placement{first, second}, policy))
}
