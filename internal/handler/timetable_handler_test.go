package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	internalmiddleware "github.com/noah-isme/uni-timetable-api/internal/middleware"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type timetableServiceMock struct {
	captured    dto.GenerateTimetableRequest
	variant     string
	gridQuery   dto.TimetableGridQuery
	format      string
	resetTerm   string
	resetKind   string
	generateErr error
}

func (m *timetableServiceMock) GenerateSections(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	m.captured, m.variant = req, "SECTION"
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return &dto.GenerateTimetableResponse{TermID: req.TermID, Variant: "SECTION", Stats: dto.GenerationStats{Placed: 2}}, nil
}

func (m *timetableServiceMock) GenerateExams(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	m.captured, m.variant = req, "EXAM"
	return &dto.GenerateTimetableResponse{TermID: req.TermID, Variant: "EXAM"}, nil
}

func (m *timetableServiceMock) Grid(ctx context.Context, query dto.TimetableGridQuery) (*dto.TimetableGridResponse, error) {
	m.gridQuery = query
	return &dto.TimetableGridResponse{TermID: query.TermID, Kind: "SECTION", Days: []dto.GridDayView{{Weekday: "MONDAY", Depth: 1}}}, nil
}

func (m *timetableServiceMock) Export(ctx context.Context, query dto.TimetableGridQuery, format string) (*dto.TimetableExport, error) {
	m.gridQuery, m.format = query, format
	if format == "docx" {
		return nil, appErrors.ErrUnsupportedFormat
	}
	return &dto.TimetableExport{Filename: "timetable-term-1-section.csv", ContentType: "text/csv", Payload: []byte("day\n")}, nil
}

func (m *timetableServiceMock) Reset(ctx context.Context, termID, kind string) (*dto.ResetTimetableResponse, error) {
	m.resetTerm, m.resetKind = termID, kind
	return &dto.ResetTimetableResponse{TermID: termID, Kind: kind, Removed: 4}, nil
}

func newTimetableRouter(mock *timetableServiceMock, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: mock}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(internalmiddleware.ContextUserKey, claims)
		}
		c.Next()
	})
	admin := internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)
	router.POST("/timetable/sections/generate", admin, handler.GenerateSections)
	router.POST("/timetable/exams/generate", admin, handler.GenerateExams)
	router.DELETE("/timetable/:kind", admin, handler.Reset)
	router.GET("/timetable/grid", handler.Grid)
	router.GET("/timetable/export", handler.Export)
	return router
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
}

func TestTimetableHandlerGenerateSections(t *testing.T) {
	mock := &timetableServiceMock{}
	router := newTimetableRouter(mock, adminClaims())

	body := []byte(`{"termId":"term-1","weekdays":["MON","TUE"],"periodEnd":12,"groupId":"cs-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/timetable/sections/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "SECTION", mock.variant)
	assert.Equal(t, "term-1", mock.captured.TermID)
	assert.Equal(t, []string{"MON", "TUE"}, mock.captured.Weekdays)
	require.NotNil(t, mock.captured.PeriodEnd)
	assert.Equal(t, 12, *mock.captured.PeriodEnd)
	assert.Nil(t, mock.captured.PeriodStart)

	var envelope struct {
		Data dto.GenerateTimetableResponse `json:"data"`
		Meta map[string]interface{}        `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.Stats.Placed)
	assert.Equal(t, "admin-1", envelope.Meta["requestedBy"])
}

func TestTimetableHandlerGenerateExams(t *testing.T) {
	mock := &timetableServiceMock{}
	router := newTimetableRouter(mock, &models.JWTClaims{UserID: "root", Role: models.RoleSuperAdmin})

	req := httptest.NewRequest(http.MethodPost, "/timetable/exams/generate", bytes.NewReader([]byte(`{"termId":"term-2"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "EXAM", mock.variant)
}

func TestTimetableHandlerGenerateRejectsMalformedJSON(t *testing.T) {
	mock := &timetableServiceMock{}
	router := newTimetableRouter(mock, adminClaims())

	req := httptest.NewRequest(http.MethodPost, "/timetable/sections/generate", bytes.NewReader([]byte(`{"termId":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mock.variant)
}

func TestTimetableHandlerGenerateConflict(t *testing.T) {
	mock := &timetableServiceMock{generateErr: appErrors.ErrGenerationInProgress}
	router := newTimetableRouter(mock, adminClaims())

	req := httptest.NewRequest(http.MethodPost, "/timetable/sections/generate", bytes.NewReader([]byte(`{"termId":"term-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "GENERATION_IN_PROGRESS")
}

func TestTimetableHandlerGenerateInternalError(t *testing.T) {
	mock := &timetableServiceMock{generateErr: errors.New("boom")}
	router := newTimetableRouter(mock, adminClaims())

	req := httptest.NewRequest(http.MethodPost, "/timetable/sections/generate", bytes.NewReader([]byte(`{"termId":"term-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTimetableHandlerGenerateForbidden(t *testing.T) {
	mock := &timetableServiceMock{}
	router := newTimetableRouter(mock, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})

	req := httptest.NewRequest(http.MethodPost, "/timetable/sections/generate", bytes.NewReader([]byte(`{"termId":"term-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, mock.variant)

	router = newTimetableRouter(mock, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/timetable/sections/generate", bytes.NewReader([]byte(`{}`))))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTimetableHandlerGrid(t *testing.T) {
	mock := &timetableServiceMock{}
	router := newTimetableRouter(mock, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/timetable/grid?termId=term-1&kind=exam&roomId=room-1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.TimetableGridQuery{TermID: "term-1", Kind: "exam", RoomID: "room-1"}, mock.gridQuery)
	assert.Contains(t, w.Body.String(), `"weekday":"MONDAY"`)
}

func TestTimetableHandlerExport(t *testing.T) {
	mock := &timetableServiceMock{}
	router := newTimetableRouter(mock, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/timetable/export?termId=term-1&format=csv", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mock.format)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "timetable-term-1-section.csv")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/timetable/export?termId=term-1&format=docx", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerReset(t *testing.T) {
	mock := &timetableServiceMock{}
	router := newTimetableRouter(mock, adminClaims())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/timetable/exams?termId=term-1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "term-1", mock.resetTerm)
	assert.Equal(t, "EXAM", mock.resetKind)
	assert.Contains(t, w.Body.String(), `"removed":4`)
}

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMetricsHandler(nil, map[string]HealthCheck{
		"postgres": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
	})
	router := gin.New()
	router.GET("/ready", handler.Ready)
	router.GET("/metrics", handler.Prometheus)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"postgres":"ok"`)
	assert.Contains(t, w.Body.String(), "connection refused")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
