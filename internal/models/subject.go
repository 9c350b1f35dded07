package models

// SubjectType classifies a subject as compulsory or elective.
type SubjectType string

const (
	SubjectTypeCompulsory SubjectType = "COMPULSORY"
	SubjectTypeElective   SubjectType = "ELECTIVE"
)
