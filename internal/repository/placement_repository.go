package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

const (
	sectionPlacementsQuery = `SELECT p.id, p.term_id, p.kind, p.ref_id, p.weekday, p.start_period, p.end_period, p.created_at, s.subject_id, s.group_id, s.room_id, s.parent_id, s.instructor_ids, '{}'::text[] AS section_ids
FROM placements p JOIN sections s ON s.id = p.ref_id WHERE p.term_id = $1 AND p.kind = 'SECTION' ORDER BY p.created_at ASC, p.id ASC`
	examPlacementsQuery = `SELECT p.id, p.term_id, p.kind, p.ref_id, p.weekday, p.start_period, p.end_period, p.created_at, e.subject_id, e.group_id, e.room_id, NULL AS parent_id, e.instructor_ids, e.section_ids
FROM placements p JOIN exams e ON e.id = p.ref_id WHERE p.term_id = $1 AND p.kind = 'EXAM' ORDER BY p.created_at ASC, p.id ASC`
)

// PlacementRepository persists timetable placements.
type PlacementRepository struct {
	db *sqlx.DB
}

// NewPlacementRepository builds repository.
func NewPlacementRepository(db *sqlx.DB) *PlacementRepository {
	return &PlacementRepository{db: db}
}

// ListByTerm returns stored placements of one kind joined back to the resources they occupy.
func (r *PlacementRepository) ListByTerm(ctx context.Context, termID string, kind models.PlacementKind) ([]models.PlacementDetail, error) {
	query := sectionPlacementsQuery
	if kind == models.PlacementKindExam {
		query = examPlacementsQuery
	}
	var rows []models.PlacementDetail
	if err := r.db.SelectContext(ctx, &rows, query, termID); err != nil {
		return nil, fmt.Errorf("list placements: %w", err)
	}
	return rows, nil
}

// Create inserts a placement, assigning an id when missing.
func (r *PlacementRepository) Create(ctx context.Context, placement *models.Placement) error {
	if placement.ID == "" {
		placement.ID = uuid.NewString()
	}
	if placement.CreatedAt.IsZero() {
		placement.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO placements (id, term_id, kind, ref_id, weekday, start_period, end_period, created_at)
VALUES (:id, :term_id, :kind, :ref_id, :weekday, :start_period, :end_period, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, placement); err != nil {
		return fmt.Errorf("create placement: %w", err)
	}
	return nil
}

// DeleteByTerm removes every placement of a kind for the term and reports how many were removed.
func (r *PlacementRepository) DeleteByTerm(ctx context.Context, termID string, kind models.PlacementKind) (int64, error) {
	const query = `DELETE FROM placements WHERE term_id = $1 AND kind = $2`
	res, err := r.db.ExecContext(ctx, query, termID, string(kind))
	if err != nil {
		return 0, fmt.Errorf("delete placements: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete placements rows affected: %w", err)
	}
	return affected, nil
}
