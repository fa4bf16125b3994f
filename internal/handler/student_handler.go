package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/counseling-api/internal/dto"
	"github.com/noah-isme/counseling-api/internal/models"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
	"github.com/noah-isme/counseling-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error)
	Get(ctx context.Context, nrp string) (*models.Student, error)
	Update(ctx context.Context, caller *models.JWTClaims, nrp string, req dto.UpdateStudentRequest) (*models.Student, error)
	Delete(ctx context.Context, caller *models.JWTClaims, nrp string) error
	RecentActivity(ctx context.Context) ([]models.StudentActivity, error)
	ListByTopic(ctx context.Context, topicID string) ([]models.Student, error)
	RecurringIssues(ctx context.Context) ([]models.RecurringIssue, error)
	Recommendations(ctx context.Context, caller *models.JWTClaims, limit int) ([]models.CounselorRecommendation, error)
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students studentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by name or NRP"
// @Param department query string false "Filter by department"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	var filter models.StudentFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Department = strings.TrimSpace(c.Query("department"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student profile
// @Tags Students
// @Produce json
// @Param id path string true "Student NRP"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// Update godoc
// @Summary Update student profile
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student NRP"
// @Param payload body dto.UpdateStudentRequest true "Profile"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// Delete godoc
// @Summary Delete student with its account
// @Tags Students
// @Param id path string true "Student NRP"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RecentActivity godoc
// @Summary Latest session date per student
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/recent-activity [get]
func (h *StudentHandler) RecentActivity(c *gin.Context) {
	items, err := h.students.RecentActivity(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// ByTopic godoc
// @Summary Students who requested a topic
// @Tags Students
// @Produce json
// @Param topic_id query string true "Topic ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/by-topic [get]
func (h *StudentHandler) ByTopic(c *gin.Context) {
	items, err := h.students.ListByTopic(c.Request.Context(), c.Query("topic_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// RecurringIssues godoc
// @Summary Students with repeated sessions on one topic
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/recurring-issues [get]
func (h *StudentHandler) RecurringIssues(c *gin.Context) {
	items, err := h.students.RecurringIssues(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Recommendations godoc
// @Summary Counselors recommended for the calling student
// @Tags Students
// @Produce json
// @Param limit query int false "Maximum results"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/me/recommendations [get]
func (h *StudentHandler) Recommendations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.students.Recommendations(c.Request.Context(), claimsFromContext(c), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}
