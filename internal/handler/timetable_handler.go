package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
	"github.com/noah-isme/uni-timetable-api/pkg/response"
)

type timetableService interface {
	GenerateSections(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	GenerateExams(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	Grid(ctx context.Context, query dto.TimetableGridQuery) (*dto.TimetableGridResponse, error)
	Export(ctx context.Context, query dto.TimetableGridQuery, format string) (*dto.TimetableExport, error)
	Reset(ctx context.Context, termID, kind string) (*dto.ResetTimetableResponse, error)
}

// TimetableHandler exposes timetable generation and grid endpoints.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// GenerateSections godoc
// @Summary Place every unplaced section of a term on the weekly grid
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/sections/generate [post]
func (h *TimetableHandler) GenerateSections(c *gin.Context) {
	h.handleGenerate(c, h.service.GenerateSections)
}

// GenerateExams godoc
// @Summary Place every unplaced exam of a term on the weekly grid
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/exams/generate [post]
func (h *TimetableHandler) GenerateExams(c *gin.Context) {
	h.handleGenerate(c, h.service.GenerateExams)
}

func (h *TimetableHandler) handleGenerate(c *gin.Context, run func(context.Context, dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := run(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	var meta map[string]interface{}
	if claims := claimsFromContext(c); claims != nil {
		meta = map[string]interface{}{"requestedBy": claims.UserID}
	}
	response.Created(c, result, meta)
}

// Grid godoc
// @Summary Weekly grid of stored placements with overlap stacking
// @Tags Timetable
// @Produce json
// @Param termId query string true "Term ID"
// @Param kind query string false "SECTION or EXAM"
// @Param groupId query string false "Student group filter"
// @Param roomId query string false "Room filter"
// @Param instructorId query string false "Instructor filter"
// @Success 200 {object} response.Envelope
// @Router /timetable/grid [get]
func (h *TimetableHandler) Grid(c *gin.Context) {
	query, ok := bindGridQuery(c)
	if !ok {
		return
	}
	grid, err := h.service.Grid(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid)
}

// Export godoc
// @Summary Download the weekly grid as PDF, CSV or XLSX
// @Tags Timetable
// @Produce application/pdf
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param termId query string true "Term ID"
// @Param format query string false "pdf (default), csv or xlsx"
// @Success 200 {file} file
// @Router /timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	query, ok := bindGridQuery(c)
	if !ok {
		return
	}
	file, err := h.service.Export(c.Request.Context(), query, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

// Reset godoc
// @Summary Remove all placements of a kind for a term
// @Tags Timetable
// @Produce json
// @Param kind path string true "sections or exams"
// @Param termId query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/{kind} [delete]
func (h *TimetableHandler) Reset(c *gin.Context) {
	kind := c.Param("kind")
	switch kind {
	case "sections":
		kind = "SECTION"
	case "exams":
		kind = "EXAM"
	}
	result, err := h.service.Reset(c.Request.Context(), c.Query("termId"), kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

func bindGridQuery(c *gin.Context) (dto.TimetableGridQuery, bool) {
	var query dto.TimetableGridQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grid query"))
		return query, false
	}
	return query, true
}
