package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// ExamRepository reads exams as placement candidates.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository builds repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// ListCandidates returns the term's exams joined with the subject exam hours.
func (r *ExamRepository) ListCandidates(ctx context.Context, termID string) ([]models.ExamCandidate, error) {
	const query = `SELECT e.id, e.term_id, e.subject_id, e.group_id, e.room_id, e.instructor_ids, e.section_ids, sub.subject_type, sub.exam_hours
FROM exams e JOIN subjects sub ON sub.id = e.subject_id WHERE e.term_id = $1 ORDER BY e.id ASC`
	var rows []models.ExamCandidate
	if err := r.db.SelectContext(ctx, &rows, query, termID); err != nil {
		return nil, fmt.Errorf("list exam candidates: %w", err)
	}
	return rows, nil
}
