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

type topicService interface {
	List(ctx context.Context) ([]models.Topic, error)
	Get(ctx context.Context, id string) (*models.Topic, error)
	Create(ctx context.Context, caller *models.JWTClaims, req dto.TopicRequest) (*models.Topic, error)
	Update(ctx context.Context, caller *models.JWTClaims, id string, req dto.TopicRequest) (*models.Topic, error)
	Delete(ctx context.Context, caller *models.JWTClaims, id string) error
}

// TopicHandler exposes counseling topic endpoints.
type TopicHandler struct {
	topics topicService
}

// NewTopicHandler constructs TopicHandler.
func NewTopicHandler(topics topicService) *TopicHandler {
	return &TopicHandler{topics: topics}
}

// List godoc
// @Summary List topics
// @Tags Topics
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /topics [get]
func (h *TopicHandler) List(c *gin.Context) {
	items, err := h.topics.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Get godoc
// @Summary Get topic
// @Tags Topics
// @Produce json
// @Param id path string true "Topic ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /topics/{id} [get]
func (h *TopicHandler) Get(c *gin.Context) {
	topic, err := h.topics.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, topic)
}

// Create godoc
// @Summary Create topic
// @Tags Topics
// @Accept json
// @Produce json
// @Param payload body dto.TopicRequest true "Topic"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /topics [post]
func (h *TopicHandler) Create(c *gin.Context) {
	var req dto.TopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid topic payload"))
		return
	}
	topic, err := h.topics.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, topic)
}

// Update godoc
// @Summary Rename topic
// @Tags Topics
// @Accept json
// @Produce json
// @Param id path string true "Topic ID"
// @Param payload body dto.TopicRequest true "Topic"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /topics/{id} [put]
func (h *TopicHandler) Update(c *gin.Context) {
	var req dto.TopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid topic payload"))
		return
	}
	topic, err := h.topics.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, topic)
}

// Delete godoc
// @Summary Delete topic
// @Tags Topics
// @Param id path string true "Topic ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /topics/{id} [delete]
func (h *TopicHandler) Delete(c *gin.Context) {
	if err := h.topics.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
