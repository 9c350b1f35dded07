package scheduler

import (
	"context"
	"fmt"
)

// Store persists committed placements and returns their durable id.
type Store interface {
	CreatePlacement(ctx context.Context, placement Placement) (string, error)
}

// StoreFunc adapts a function to the Store interface.
type StoreFunc func(ctx context.Context, placement Placement) (string, error)

// CreatePlacement implements Store.
func (f StoreFunc) CreatePlacement(ctx context.Context, placement Placement) (string, error) {
	return f(ctx, placement)
}

// Options configures a generation run.
type Options struct {
	Variant           Variant     `json:"variant"`
	Weekdays          []Weekday   `json:"weekdays"`
	PeriodStart       int         `json:"periodStart"`
	PeriodEnd         int         `json:"periodEnd"`
	MaxPerDay         int         `json:"maxPerDay"`
	ConsecutiveGap    int         `json:"consecutiveGap"`
	RestGap           int         `json:"restGap"`
	ExamGap           int         `json:"examGap"`
	TargetGroup       string      `json:"targetGroup,omitempty"`
	TargetSubjectType SubjectType `json:"targetSubjectType,omitempty"`
}

// DefaultOptions returns the configuration each call site starts from.
func DefaultOptions(variant Variant) Options {
	policy := DefaultPolicy()
	exam := DefaultExamPolicy()
	opts := Options{
		Variant:        variant,
		Weekdays:       DefaultWeekdays(),
		PeriodStart:    DefaultPeriodStart,
		PeriodEnd:      DefaultPeriodEnd,
		MaxPerDay:      policy.MaxPerDay,
		ConsecutiveGap: policy.ConsecutiveGap,
		RestGap:        policy.RestGap,
		ExamGap:        exam.Gap,
	}
	if variant == VariantExam {
		opts.MaxPerDay = exam.MaxPerDay
	}
	return opts
}

func (o Options) policy() Policy {
	return Policy{MaxPerDay: o.MaxPerDay, ConsecutiveGap: o.ConsecutiveGap, RestGap: o.RestGap}
}

func (o Options) examPolicy() ExamPolicy {
	return ExamPolicy{MaxPerDay: o.MaxPerDay, Gap: o.ExamGap}
}

// UnplacedReason explains why a candidate received no placement.
type UnplacedReason string

const (
	ReasonNoFittingPeriod  UnplacedReason = "NO_FITTING_PERIOD"
	ReasonResourceConflict UnplacedReason = "RESOURCE_CONFLICT"
	ReasonWorkloadPolicy   UnplacedReason = "WORKLOAD_POLICY"
)

// Unplaced records a candidate left out of the result.
type Unplaced struct {
	CandidateID string         `json:"candidateId"`
	Reason      UnplacedReason `json:"reason"`
}

// Result is the outcome of a generation run.
type Result struct {
	// Placements holds the existing placements followed by the committed ones.
	Placements []Placement `json:"placements"`
	// Committed holds the placements persisted during this run.
	Committed []Placement `json:"committed"`
	Unplaced  []Unplaced  `json:"unplaced"`
}

// Generate places every unrepresented candidate at the first conflict-free,
// policy compliant weekday/period cell and then persists the new placements
// one at a time in commit order. The search finishes before the first store
// call. On a store failure the partially persisted result is returned along
// with the error; earlier placements stay durable. ctx is only consulted
// before the first store call.
func Generate(ctx context.Context, candidates []Candidate, existing []Placement, opts Options, store Store) (*Result, error) {
	pending := filterCandidates(candidates, existing, opts)

	placements := make([]Placement, 0, len(existing)+len(pending))
	placements = append(placements, existing...)
	result := &Result{}

	for _, candidate := range pending {
		placement, reason, ok := placeCandidate(candidate, placements, opts)
		if !ok {
			result.Unplaced = append(result.Unplaced, Unplaced{CandidateID: candidate.ID, Reason: reason})
			continue
		}
		placements = append(placements, placement)
	}
	result.Placements = placements

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("generation cancelled before persistence: %w", err)
	}

	for idx := range placements {
		if !placements[idx].Generated() {
			continue
		}
		if store == nil {
			return result, fmt.Errorf("persist placement %s: store unavailable", placements[idx].CandidateID)
		}
		id, err := store.CreatePlacement(ctx, placements[idx])
		if err != nil {
			return result, fmt.Errorf("persist placement %s: %w", placements[idx].CandidateID, err)
		}
		placements[idx].ID = id
		result.Committed = append(result.Committed, placements[idx])
	}
	return result, nil
}

func filterCandidates(candidates []Candidate, existing []Placement, opts Options) []Candidate {
	represented := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		if item.CandidateID != "" {
			represented[item.CandidateID] = struct{}{}
		}
	}

	pending := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if _, ok := represented[candidate.ID]; ok {
			continue
		}
		if opts.TargetGroup != "" && candidate.GroupID != opts.TargetGroup {
			continue
		}
		if opts.TargetSubjectType != "" && candidate.SubjectType != opts.TargetSubjectType {
			continue
		}
		pending = append(pending, candidate)
	}
	return pending
}

func placeCandidate(candidate Candidate, placements []Placement, opts Options) (Placement, UnplacedReason, bool) {
	size := candidate.Size()
	lastStart := opts.PeriodEnd - size + 1
	if size <= 0 || len(opts.Weekdays) == 0 || lastStart < opts.PeriodStart {
		return Placement{}, ReasonNoFittingPeriod, false
	}

	conflictFree := false
	for _, weekday := range opts.Weekdays {
		for period := opts.PeriodStart; period <= lastStart; period++ {
			probe := candidate.placementAt(weekday, period)
			if CheckOverlap(probe, placements, opts.Variant).Blocking() {
				continue
			}
			conflictFree = true
			if !allowed(probe, weekday, period, placements, opts) {
				continue
			}
			return probe, "", true
		}
	}

	if conflictFree {
		return Placement{}, ReasonWorkloadPolicy, false
	}
	return Placement{}, ReasonResourceConflict, false
}

func allowed(probe Placement, weekday Weekday, period int, placements []Placement, opts Options) bool {
	if opts.Variant == VariantExam {
		return IsExamPlacementAllowed(probe, weekday, period, placements, opts.examPolicy())
	}
	return IsPlacementAllowed(probe, weekday, period, placements, opts.policy())
}
