package models

import (
	"time"

	"github.com/lib/pq"
)

// SectionType distinguishes lecture sections from their lab children.
type SectionType string

const (
	SectionTypeLecture SectionType = "LECTURE"
	SectionTypeLab     SectionType = "LAB"
)

// Section is a course section taught to a student group in a term.
type Section struct {
	ID            string         `db:"id" json:"id"`
	TermID        string         `db:"term_id" json:"term_id"`
	SubjectID     string         `db:"subject_id" json:"subject_id"`
	SectionType   SectionType    `db:"section_type" json:"section_type"`
	ParentID      *string        `db:"parent_id" json:"parent_id,omitempty"`
	GroupID       *string        `db:"group_id" json:"group_id,omitempty"`
	RoomID        *string        `db:"room_id" json:"room_id,omitempty"`
	InstructorIDs pq.StringArray `db:"instructor_ids" json:"instructor_ids"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// SectionCandidate is a section joined with the subject attributes needed to size it.
type SectionCandidate struct {
	Section
	SubjectType  SubjectType `db:"subject_type" json:"subject_type"`
	LectureHours int         `db:"lecture_hours" json:"lecture_hours"`
	LabHours     int         `db:"lab_hours" json:"lab_hours"`
}

// Hours returns the hour count that applies to the section type.
func (c SectionCandidate) Hours() int {
	if c.SectionType == SectionTypeLab {
		return c.LabHours
	}
	return c.LectureHours
}
