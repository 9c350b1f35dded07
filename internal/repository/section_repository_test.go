package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

func newTimetableRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSectionRepositoryListCandidates(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "term_id", "subject_id", "section_type", "parent_id", "group_id", "room_id", "instructor_ids", "created_at", "subject_type", "lecture_hours", "lab_hours"}).
		AddRow("sec-1", "term-1", "sub-1", "LECTURE", nil, "cs-1", "room-1", []byte("{ins-1,ins-2}"), now, "COMPULSORY", 2, 1).
		AddRow("sec-2", "term-1", "sub-1", "LAB", "sec-1", "cs-1", nil, []byte("{}"), now, "COMPULSORY", 2, 1)
	mock.ExpectQuery(regexp.QuoteMeta("FROM sections s JOIN subjects sub ON sub.id = s.subject_id WHERE s.term_id = $1")).
		WithArgs("term-1").
		WillReturnRows(rows)

	candidates, err := repo.ListCandidates(context.Background(), "term-1")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	lecture := candidates[0]
	assert.Equal(t, []string{"ins-1", "ins-2"}, []string(lecture.InstructorIDs))
	assert.Nil(t, lecture.ParentID)
	require.NotNil(t, lecture.RoomID)
	assert.Equal(t, "room-1", *lecture.RoomID)
	assert.Equal(t, 2, lecture.Hours())

	lab := candidates[1]
	require.NotNil(t, lab.ParentID)
	assert.Equal(t, "sec-1", *lab.ParentID)
	assert.Equal(t, models.SectionTypeLab, lab.SectionType)
	assert.Equal(t, 1, lab.Hours())
	assert.Empty(t, lab.InstructorIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryListCandidatesError(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sections s")).
		WithArgs("term-1").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.ListCandidates(context.Background(), "term-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list section candidates")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryListCandidates(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	rows := sqlmock.NewRows([]string{"id", "term_id", "subject_id", "group_id", "room_id", "instructor_ids", "section_ids", "subject_type", "exam_hours"}).
		AddRow("exam-1", "term-1", "sub-1", "cs-1", "hall-a", []byte("{ins-1}"), []byte("{sec-1,sec-2}"), "COMPULSORY", 2)
	mock.ExpectQuery(regexp.QuoteMeta("FROM exams e JOIN subjects sub ON sub.id = e.subject_id WHERE e.term_id = $1")).
		WithArgs("term-1").
		WillReturnRows(rows)

	candidates, err := repo.ListCandidates(context.Background(), "term-1")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, 2, candidates[0].ExamHours)
	assert.Equal(t, []string{"sec-1", "sec-2"}, []string(candidates[0].SectionIDs))
	assert.Equal(t, models.SubjectTypeCompulsory, candidates[0].SubjectType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
