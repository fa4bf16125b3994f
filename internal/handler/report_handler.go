package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/counseling-api/internal/dto"
	"github.com/noah-isme/counseling-api/internal/middleware"
	"github.com/noah-isme/counseling-api/internal/models"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
	"github.com/noah-isme/counseling-api/pkg/response"
)

type reportService interface {
	Monthly(ctx context.Context, query dto.MonthlyReportQuery) (*models.MonthlyReport, bool, error)
	Export(ctx context.Context, query dto.MonthlyReportQuery) (*dto.ExportFile, error)
}

// ReportHandler exposes the monthly session report.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Monthly godoc
// @Summary Monthly session report
// @Tags Reports
// @Produce json
// @Param month query int true "Month (1-12)"
// @Param year query int true "Year"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/monthly [get]
func (h *ReportHandler) Monthly(c *gin.Context) {
	var query dto.MonthlyReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report period"))
		return
	}
	report, hit, err := h.reports.Monthly(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, report, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download the monthly report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param month query int true "Month (1-12)"
// @Param year query int true "Year"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /reports/monthly/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	var query dto.MonthlyReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report period"))
		return
	}
	file, err := h.reports.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
