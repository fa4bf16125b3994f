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

type sessionService interface {
	Create(ctx context.Context, caller *models.JWTClaims, req dto.CreateSessionRequest) (*models.SessionDetail, error)
	Get(ctx context.Context, caller *models.JWTClaims, id string) (*models.SessionDetail, error)
	UpdateStatusOrNotes(ctx context.Context, caller *models.JWTClaims, id string, req dto.UpdateSessionRequest) (*models.Session, error)
	Reschedule(ctx context.Context, caller *models.JWTClaims, id string, req dto.RescheduleSessionRequest) (*models.Session, error)
	Transfer(ctx context.Context, caller *models.JWTClaims, req dto.TransferSessionRequest) (*models.Session, error)
	Delete(ctx context.Context, caller *models.JWTClaims, id string) error
	ListAll(ctx context.Context, status string, page, pageSize int) ([]models.SessionDetail, *models.Pagination, error)
	ListMine(ctx context.Context, caller *models.JWTClaims, page, pageSize int) ([]models.SessionDetail, *models.Pagination, error)
	ListCompleted(ctx context.Context, caller *models.JWTClaims, query dto.CompletedSessionQuery) ([]models.SessionDetail, error)
	ListBySpecialization(ctx context.Context, specialization string) ([]models.SessionDetail, error)
	StatusDistribution(ctx context.Context) ([]models.StatusCount, error)
}

// SessionHandler exposes counseling session endpoints.
type SessionHandler struct {
	sessions sessionService
}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler(sessions sessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Create godoc
// @Summary Request a counseling session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body dto.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	session, err := h.sessions.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// List godoc
// @Summary List all sessions
// @Tags Sessions
// @Produce json
// @Param status query string false "Requested, Scheduled, Completed or Cancelled"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	sessions, pagination, err := h.sessions.ListAll(c.Request.Context(), strings.TrimSpace(c.Query("status")), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, pagination)
}

// Mine godoc
// @Summary List the caller's sessions
// @Tags Sessions
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/mine [get]
func (h *SessionHandler) Mine(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	sessions, pagination, err := h.sessions.ListMine(c.Request.Context(), claimsFromContext(c), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, pagination)
}

// Completed godoc
// @Summary Completed sessions in a date range
// @Tags Sessions
// @Produce json
// @Param start_date query string true "YYYY-MM-DD"
// @Param end_date query string true "YYYY-MM-DD"
// @Param counselor_nik query string false "Counselor NIK (admins only)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/completed [get]
func (h *SessionHandler) Completed(c *gin.Context) {
	var query dto.CompletedSessionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid date range"))
		return
	}
	sessions, err := h.sessions.ListCompleted(c.Request.Context(), claimsFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sessions)
}

// BySpecialization godoc
// @Summary Sessions handled by counselors of a specialization
// @Tags Sessions
// @Produce json
// @Param specialization query string true "Specialization"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/by-specialization [get]
func (h *SessionHandler) BySpecialization(c *gin.Context) {
	specialization := strings.TrimSpace(c.Query("specialization"))
	if specialization == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "specialization is required"))
		return
	}
	sessions, err := h.sessions.ListBySpecialization(c.Request.Context(), specialization)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sessions)
}

// StatusDistribution godoc
// @Summary Session count per status
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/status-distribution [get]
func (h *SessionHandler) StatusDistribution(c *gin.Context) {
	counts, err := h.sessions.StatusDistribution(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, counts)
}

// Get godoc
// @Summary Session detail
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.sessions.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// Update godoc
// @Summary Update session status or notes
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.UpdateSessionRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/{id} [put]
func (h *SessionHandler) Update(c *gin.Context) {
	var req dto.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	session, err := h.sessions.UpdateStatusOrNotes(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// Reschedule godoc
// @Summary Move a session to another date
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.RescheduleSessionRequest true "New date"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/{id}/schedule [put]
func (h *SessionHandler) Reschedule(c *gin.Context) {
	var req dto.RescheduleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}
	session, err := h.sessions.Reschedule(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// Transfer godoc
// @Summary Transfer a session to another counselor
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body dto.TransferSessionRequest true "Transfer payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/transfer [post]
func (h *SessionHandler) Transfer(c *gin.Context) {
	var req dto.TransferSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid transfer payload"))
		return
	}
	session, err := h.sessions.Transfer(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// Delete godoc
// @Summary Delete a session
// @Tags Sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
