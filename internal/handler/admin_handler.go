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

type adminService interface {
	List(ctx context.Context) ([]models.Admin, error)
	Get(ctx context.Context, id string) (*models.Admin, error)
	Update(ctx context.Context, caller *models.JWTClaims, id string, req dto.UpdateAdminRequest) (*models.Admin, error)
	Delete(ctx context.Context, caller *models.JWTClaims, id string) error
}

// AdminHandler exposes administrator profile endpoints.
type AdminHandler struct {
	admins adminService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(admins adminService) *AdminHandler {
	return &AdminHandler{admins: admins}
}

// List godoc
// @Summary List administrators
// @Tags Admins
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admins [get]
func (h *AdminHandler) List(c *gin.Context) {
	items, err := h.admins.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Get godoc
// @Summary Get administrator
// @Tags Admins
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admins/{id} [get]
func (h *AdminHandler) Get(c *gin.Context) {
	admin, err := h.admins.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, admin)
}

// Update godoc
// @Summary Rename administrator
// @Tags Admins
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param payload body dto.UpdateAdminRequest true "Profile"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admins/{id} [put]
func (h *AdminHandler) Update(c *gin.Context) {
	var req dto.UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid admin payload"))
		return
	}
	admin, err := h.admins.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, admin)
}

// Delete godoc
// @Summary Delete administrator with its account
// @Tags Admins
// @Param id path string true "Admin ID"
// @Success 204
// @Security BearerAuth
// @Router /admins/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	if err := h.admins.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
