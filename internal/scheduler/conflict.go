package scheduler

// OverlapResult classifies how a candidate collides with existing placements.
// The By* buckets are diagnostic; only IsOverlap and AllowOverlap drive placement.
type OverlapResult struct {
	IsOverlap    bool        `json:"isOverlap"`
	AllowOverlap bool        `json:"allowOverlap"`
	ByRoom       []Placement `json:"byRoom,omitempty"`
	ByInstructor []Placement `json:"byInstructor,omitempty"`
	ByGroup      []Placement `json:"byGroup,omitempty"`
	BySubject    []Placement `json:"bySubject,omitempty"`
}

// CheckOverlap returns the placements in existing that share a room, group or
// instructor with candidate and intersect it on the same weekday. The exam
// variant also treats shared section membership as group sharing and never
// grants AllowOverlap.
func CheckOverlap(candidate Placement, existing []Placement, variant Variant) OverlapResult {
	var result OverlapResult
	tolerable := true

	for _, item := range existing {
		if item.Weekday != candidate.Weekday || !item.Span.Intersects(candidate.Span) {
			continue
		}
		room := sameNonEmpty(item.RoomID, candidate.RoomID)
		instructor := sharesAny(item.InstructorIDs, candidate.InstructorIDs)
		group := sameNonEmpty(item.GroupID, candidate.GroupID)
		if variant == VariantExam && sharesAny(item.SectionIDs, candidate.SectionIDs) {
			group = true
		}
		if !room && !instructor && !group {
			continue
		}

		result.IsOverlap = true
		subject := sameNonEmpty(item.SubjectID, candidate.SubjectID)
		if room {
			result.ByRoom = append(result.ByRoom, item)
		}
		if instructor {
			result.ByInstructor = append(result.ByInstructor, item)
		}
		if group {
			result.ByGroup = append(result.ByGroup, item)
		}
		if subject {
			result.BySubject = append(result.BySubject, item)
		}
		if subject || room || instructor {
			tolerable = false
		}
	}

	result.AllowOverlap = result.IsOverlap && tolerable && variant != VariantExam
	return result
}

// Blocking reports whether the result must reject the placement.
func (r OverlapResult) Blocking() bool {
	return r.IsOverlap && !r.AllowOverlap
}
