package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/storehouse-api/internal/dto"
	"github.com/noah-isme/storehouse-api/internal/models"
	"github.com/noah-isme/storehouse-api/internal/service"
	"github.com/noah-isme/storehouse-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentSummary, error)
	Get(ctx context.Context, id int64) (*dto.StudentDetail, error)
	Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error)
	Update(ctx context.Context, id int64, req dto.UpdateStudentRequest) (*models.Student, error)
	RegenerateToken(ctx context.Context, id int64) (*models.Student, error)
	BulkDelete(ctx context.Context, req dto.BulkDeleteStudentsRequest) (*dto.BulkDeleteResult, error)
}

type historyService interface {
	History(ctx context.Context, studentID int64, limit int) ([]models.Transaction, error)
}

// StudentHandler exposes the admin student roster.
type StudentHandler struct {
	students studentService
	history  historyService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService, history historyService) *StudentHandler {
	return &StudentHandler{students: students, history: history}
}

// List godoc
// @Summary List students with balances
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param filter query string false "active, inactive or all"
// @Param search query string false "Name filter"
// @Success 200 {object} response.Envelope
// @Router /admin/students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Status: service.ParseStudentFilter(c.Query("filter")),
		Search: c.Query("search"),
	}
	students, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil, map[string]interface{}{"filter": filter.Status})
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /admin/students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Transactions godoc
// @Summary Student transaction history
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param limit query int false "Rows to return (default 50)"
// @Success 200 {object} response.Envelope
// @Router /admin/students/{id}/transactions [get]
func (h *StudentHandler) Transactions(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	txns, err := h.history.History(c.Request.Context(), id, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, txns, nil)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /admin/students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param payload body dto.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /admin/students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// RegenerateToken godoc
// @Summary Issue a new scan token
// @Description Printed cards carrying the old token stop working.
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /admin/students/{id}/token [post]
func (h *StudentHandler) RegenerateToken(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.RegenerateToken(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// BulkDelete godoc
// @Summary Delete students and their ledger rows
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.BulkDeleteStudentsRequest true "Student ids"
// @Success 200 {object} response.Envelope
// @Router /admin/students [delete]
func (h *StudentHandler) BulkDelete(c *gin.Context) {
	var req dto.BulkDeleteStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid payload"))
		return
	}
	result, err := h.students.BulkDelete(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
