package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// SectionRepository reads course sections as placement candidates.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository builds repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// ListCandidates returns the term's sections joined with their subject hours, in creation order.
func (r *SectionRepository) ListCandidates(ctx context.Context, termID string) ([]models.SectionCandidate, error) {
	const query = `SELECT s.id, s.term_id, s.subject_id, s.section_type, s.parent_id, s.group_id, s.room_id, s.instructor_ids, s.created_at, sub.subject_type, sub.lecture_hours, sub.lab_hours
FROM sections s JOIN subjects sub ON sub.id = s.subject_id WHERE s.term_id = $1 ORDER BY s.created_at ASC, s.id ASC`
	var rows []models.SectionCandidate
	if err := r.db.SelectContext(ctx, &rows, query, termID); err != nil {
		return nil, fmt.Errorf("list section candidates: %w", err)
	}
	return rows, nil
}
