package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/counseling-api/internal/dto"
	"github.com/noah-isme/counseling-api/internal/models"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
	"github.com/noah-isme/counseling-api/pkg/export"
	"github.com/noah-isme/counseling-api/pkg/idgen"
)

const (
	reportFormatCSV = "csv"
	reportFormatPDF = "pdf"
)

var monthlyReportHeaders = []string{"month", "year", "total_sessions", "completed_sessions", "cancelled_sessions", "most_popular_topic"}

type monthlyReportStore interface {
	Monthly(ctx context.Context, month, year int) (*models.MonthlyReport, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string, subtitle ...string) ([]byte, error)
}

// ReportService builds the monthly session report.
type ReportService struct {
	repo      monthlyReportStore
	cache     *CacheService
	metrics   *MetricsService
	csv       csvRenderer
	pdf       pdfRenderer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs a ReportService. cache may be nil.
func NewReportService(repo monthlyReportStore, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:      repo,
		cache:     cache,
		metrics:   metrics,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
}

// Monthly returns session totals for the requested month and whether they
// were served from cache.
func (s *ReportService) Monthly(ctx context.Context, query dto.MonthlyReportQuery) (*models.MonthlyReport, bool, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report period")
	}
	key := monthlyReportKey(query.Month, query.Year)
	var cached models.MonthlyReport
	value, hit, err := s.cache.Load(ctx, key, &cached, func(ctx context.Context) (interface{}, error) {
		start := time.Now()
		report, err := s.repo.Monthly(ctx, query.Month, query.Year)
		s.metrics.ObserveDBQuery("monthly_report", time.Since(start))
		if err != nil {
			return nil, err
		}
		report.Month, report.Year = query.Month, query.Year
		return report, nil
	})
	if err != nil {
		s.logger.Error("failed to build monthly report", zap.Int("month", query.Month), zap.Int("year", query.Year), zap.Error(err))
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build monthly report")
	}
	if hit {
		cached.Month, cached.Year = query.Month, query.Year
		return &cached, true, nil
	}
	return value.(*models.MonthlyReport), false, nil
}

// Export renders the monthly report as a downloadable CSV or PDF file.
func (s *ReportService) Export(ctx context.Context, query dto.MonthlyReportQuery) (*dto.ExportFile, error) {
	if query.Format == "" {
		query.Format = reportFormatCSV
	}
	report, _, err := s.Monthly(ctx, query)
	if err != nil {
		return nil, err
	}

	dataset := monthlyReportDataset(report)
	var (
		body        []byte
		contentType string
	)
	switch query.Format {
	case reportFormatPDF:
		body, err = s.pdf.Render(dataset, "Laporan Sesi Konseling", fmt.Sprintf("Periode %02d/%04d", report.Month, report.Year))
		contentType = "application/pdf"
	default:
		body, err = s.csv.Render(dataset)
		contentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	suffix, err := idgen.RandomCode(6)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to name report")
	}
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("laporan-%04d-%02d-%s.%s", report.Year, report.Month, suffix, query.Format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func monthlyReportKey(month, year int) string {
	return fmt.Sprintf("reports:monthly:%04d-%02d", year, month)
}

func monthlyReportDataset(report *models.MonthlyReport) export.Dataset {
	topic := "-"
	if report.MostPopularTopic != nil {
		topic = *report.MostPopularTopic
	}
	return export.Dataset{
		Headers: monthlyReportHeaders,
		Rows: []map[string]string{{
			"month":              strconv.Itoa(report.Month),
			"year":               strconv.Itoa(report.Year),
			"total_sessions":     strconv.Itoa(report.TotalSessions),
			"completed_sessions": strconv.Itoa(report.CompletedSessions),
			"cancelled_sessions": strconv.Itoa(report.CancelledSessions),
			"most_popular_topic": topic,
		}},
	}
}
