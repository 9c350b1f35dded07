package scheduler

// GeneratedID tags a placement that has been committed in memory but not yet persisted.
const GeneratedID = "generated"

// Variant selects which call site configures the engine.
type Variant string

const (
	VariantSection Variant = "SECTION"
	VariantExam    Variant = "EXAM"
)

// SubjectType classifies subjects for scoped runs.
type SubjectType string

const (
	SubjectCompulsory SubjectType = "COMPULSORY"
	SubjectElective   SubjectType = "ELECTIVE"
)

// Placement is a schedulable unit with a weekday and period span.
type Placement struct {
	ID            string   `json:"id"`
	CandidateID   string   `json:"candidateId"`
	Weekday       Weekday  `json:"weekday"`
	Span          Span     `json:"span"`
	RoomID        string   `json:"roomId,omitempty"`
	InstructorIDs []string `json:"instructorIds,omitempty"`
	GroupID       string   `json:"groupId,omitempty"`
	SubjectID     string   `json:"subjectId"`
	SectionIDs    []string `json:"sectionIds,omitempty"`
	ParentID      string   `json:"parentId,omitempty"`
}

// Generated reports whether the placement still awaits a durable id.
func (p Placement) Generated() bool {
	return p.ID == GeneratedID
}

// Candidate is an unplaced section or exam carrying its resource requirement.
type Candidate struct {
	ID            string      `json:"id"`
	SubjectID     string      `json:"subjectId"`
	SubjectType   SubjectType `json:"subjectType,omitempty"`
	GroupID       string      `json:"groupId,omitempty"`
	RoomID        string      `json:"roomId,omitempty"`
	InstructorIDs []string    `json:"instructorIds,omitempty"`
	SectionIDs    []string    `json:"sectionIds,omitempty"`
	ParentID      string      `json:"parentId,omitempty"`
	// Hours is the lecture, lab or exam hour count that sizes the placement.
	Hours int `json:"hours"`
}

// Size returns the duration of the candidate in periods.
func (c Candidate) Size() int {
	return c.Hours * PeriodsPerHour
}

func (c Candidate) placementAt(weekday Weekday, start int) Placement {
	return Placement{
		ID:            GeneratedID,
		CandidateID:   c.ID,
		Weekday:       weekday,
		Span:          Span{Start: start, Size: c.Size()},
		RoomID:        c.RoomID,
		InstructorIDs: c.InstructorIDs,
		GroupID:       c.GroupID,
		SubjectID:     c.SubjectID,
		SectionIDs:    c.SectionIDs,
		ParentID:      c.ParentID,
	}
}

func sharesAny(a, b []string) bool {
	for _, x := range a {
		if x == "" {
			continue
		}
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func sameNonEmpty(a, b string) bool {
	return a != "" && a == b
}
