package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/counseling-api/internal/dto"
	"github.com/noah-isme/counseling-api/internal/models"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
	"github.com/noah-isme/counseling-api/pkg/response"
)

type counselorService interface {
	List(ctx context.Context) ([]models.CounselorWithTopics, error)
	Get(ctx context.Context, nik string) (*models.CounselorWithTopics, error)
	Update(ctx context.Context, caller *models.JWTClaims, nik string, req dto.UpdateCounselorRequest) (*models.Counselor, error)
	Delete(ctx context.Context, caller *models.JWTClaims, nik string) error
	AddExpertise(ctx context.Context, caller *models.JWTClaims, nik string, req dto.AddExpertiseRequest) (*dto.ExpertiseResult, error)
	RemoveExpertise(ctx context.Context, caller *models.JWTClaims, nik, topicID string) error
	ListIdle(ctx context.Context) ([]models.Counselor, error)
	SessionSummary(ctx context.Context) ([]models.CounselorSessionSummary, error)
}

// CounselorHandler exposes counselor endpoints.
type CounselorHandler struct {
	counselors counselorService
}

// NewCounselorHandler constructs CounselorHandler.
func NewCounselorHandler(counselors counselorService) *CounselorHandler {
	return &CounselorHandler{counselors: counselors}
}

// List godoc
// @Summary List counselors with expertise
// @Tags Counselors
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /counselors [get]
func (h *CounselorHandler) List(c *gin.Context) {
	items, err := h.counselors.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Get godoc
// @Summary Get counselor profile
// @Tags Counselors
// @Produce json
// @Param id path string true "Counselor NIK"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /counselors/{id} [get]
func (h *CounselorHandler) Get(c *gin.Context) {
	counselor, err := h.counselors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, counselor)
}

// Update godoc
// @Summary Update counselor profile
// @Tags Counselors
// @Accept json
// @Produce json
// @Param id path string true "Counselor NIK"
// @Param payload body dto.UpdateCounselorRequest true "Profile"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /counselors/{id} [put]
func (h *CounselorHandler) Update(c *gin.Context) {
	var req dto.UpdateCounselorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid counselor payload"))
		return
	}
	counselor, err := h.counselors.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, counselor)
}

// Delete godoc
// @Summary Delete counselor with expertise and account
// @Tags Counselors
// @Param id path string true "Counselor NIK"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /counselors/{id} [delete]
func (h *CounselorHandler) Delete(c *gin.Context) {
	if err := h.counselors.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddExpertise godoc
// @Summary Add a topic to a counselor's expertise
// @Tags Counselors
// @Accept json
// @Produce json
// @Param id path string true "Counselor NIK"
// @Param payload body dto.AddExpertiseRequest true "Topic"
// @Success 200 {object} response.Envelope "already linked"
// @Success 201 {object} response.Envelope "linked"
// @Security BearerAuth
// @Router /counselors/{id}/topics [post]
func (h *CounselorHandler) AddExpertise(c *gin.Context) {
	var req dto.AddExpertiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid expertise payload"))
		return
	}
	result, err := h.counselors.AddExpertise(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Created {
		response.Created(c, result)
		return
	}
	response.OK(c, result)
}

// RemoveExpertise godoc
// @Summary Remove a topic from a counselor's expertise
// @Tags Counselors
// @Param id path string true "Counselor NIK"
// @Param topicId path string true "Topic ID"
// @Success 204
// @Security BearerAuth
// @Router /counselors/{id}/topics/{topicId} [delete]
func (h *CounselorHandler) RemoveExpertise(c *gin.Context) {
	if err := h.counselors.RemoveExpertise(c.Request.Context(), claimsFromContext(c), c.Param("id"), c.Param("topicId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Idle godoc
// @Summary Counselors without sessions
// @Tags Counselors
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /counselors/idle [get]
func (h *CounselorHandler) Idle(c *gin.Context) {
	items, err := h.counselors.ListIdle(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// SessionSummary godoc
// @Summary Session totals per counselor
// @Tags Counselors
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /counselors/session-summary [get]
func (h *CounselorHandler) SessionSummary(c *gin.Context) {
	items, err := h.counselors.SessionSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}
