package scheduler

import "sort"

// LongBlockPeriods marks a session long enough (5 hours) to require a rest gap after it.
const LongBlockPeriods = 10

// Policy caps daily sessions and enforces rest gaps for sections.
type Policy struct {
	MaxPerDay      int `json:"maxPerDay"`
	ConsecutiveGap int `json:"consecutiveGap"`
	RestGap        int `json:"restGap"`
}

// ExamPolicy is the reduced workload form used by exam scheduling.
type ExamPolicy struct {
	MaxPerDay int `json:"maxPerDay"`
	Gap       int `json:"gap"`
}

// DefaultPolicy returns the section workload defaults.
func DefaultPolicy() Policy {
	return Policy{MaxPerDay: 3, ConsecutiveGap: 1, RestGap: 1}
}

// DefaultExamPolicy returns the exam workload defaults.
func DefaultExamPolicy() ExamPolicy {
	return ExamPolicy{MaxPerDay: 2, Gap: 2}
}

func sharesPerson(a, b Placement) bool {
	return sameNonEmpty(a.GroupID, b.GroupID) || sharesAny(a.InstructorIDs, b.InstructorIDs)
}

// IsPlacementAllowed applies the section workload policy to a candidate
// starting at period on weekday. Only earlier sessions of the same group or
// instructor on that weekday are considered.
func IsPlacementAllowed(candidate Placement, weekday Weekday, period int, existing []Placement, policy Policy) bool {
	var entries []Placement
	for _, item := range existing {
		if item.Weekday == weekday && item.Span.Start < period && sharesPerson(item, candidate) {
			entries = append(entries, item)
		}
	}
	if len(entries) == 0 {
		return true
	}
	if len(entries) >= policy.MaxPerDay {
		return false
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Span.Start < entries[j].Span.Start
	})
	for i, curr := range entries {
		if curr.Span.Size >= LongBlockPeriods && curr.Span.End()+policy.RestGap >= period {
			return false
		}
		if i+1 >= len(entries) {
			break
		}
		next := entries[i+1]
		if curr.Span.End()+policy.ConsecutiveGap >= next.Span.Start && next.Span.End()+policy.RestGap >= period {
			return false
		}
	}
	return true
}

// IsExamPlacementAllowed caps same-day exams per group, instructor or section
// and keeps a resource-agnostic gap around every exam already on the weekday.
func IsExamPlacementAllowed(candidate Placement, weekday Weekday, period int, existing []Placement, policy ExamPolicy) bool {
	low := period - policy.Gap
	high := period + candidate.Span.Size + policy.Gap

	shared := 0
	for _, item := range existing {
		if item.Weekday != weekday {
			continue
		}
		if item.Span.Start <= high && item.Span.End() >= low {
			return false
		}
		if sharesPerson(item, candidate) || sharesAny(item.SectionIDs, candidate.SectionIDs) {
			shared++
			if shared >= policy.MaxPerDay {
				return false
			}
		}
	}
	return true
}
