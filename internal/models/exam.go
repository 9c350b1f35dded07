package models

import "github.com/lib/pq"

// Exam is an examination for a subject, sat by one or more sections.
type Exam struct {
	ID            string         `db:"id" json:"id"`
	TermID        string         `db:"term_id" json:"term_id"`
	SubjectID     string         `db:"subject_id" json:"subject_id"`
	GroupID       *string        `db:"group_id" json:"group_id,omitempty"`
	RoomID        *string        `db:"room_id" json:"room_id,omitempty"`
	InstructorIDs pq.StringArray `db:"instructor_ids" json:"instructor_ids"`
	SectionIDs    pq.StringArray `db:"section_ids" json:"section_ids"`
}

// ExamCandidate is an exam joined with its subject exam hours.
type ExamCandidate struct {
	Exam
	SubjectType SubjectType `db:"subject_type" json:"subject_type"`
	ExamHours   int         `db:"exam_hours" json:"exam_hours"`
}
