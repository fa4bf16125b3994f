package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/counseling-api/internal/dto"
	"github.com/noah-isme/counseling-api/internal/models"
)

type fakeReportSrv struct {
	hit   bool
	query dto.MonthlyReportQuery
}

func (f *fakeReportSrv) Monthly(_ context.Context, query dto.MonthlyReportQuery) (*models.MonthlyReport, bool, error) {
	f.query = query
	return &models.MonthlyReport{Month: query.Month, Year: query.Year, TotalSessions: 3}, f.hit, nil
}

func (f *fakeReportSrv) Export(_ context.Context, query dto.MonthlyReportQuery) (*dto.ExportFile, error) {
	f.query = query
	return &dto.ExportFile{Filename: "laporan-2026-10-ABC123.csv", ContentType: "text/csv", Body: []byte("month,year\n10,2026\n")}, nil
}

func TestReportHandlerMonthlyReportsCacheHit(t *testing.T) {
	srv := &fakeReportSrv{hit: true}
	h := NewReportHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/reports/monthly?month=10&year=2026", nil, adminClaims)
	h.Monthly(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, srv.query.Month)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, true, decodeEnvelope(t, rec).Meta["cache_hit"])
}

func TestReportHandlerMonthlyRejectsBadQuery(t *testing.T) {
	h := NewReportHandler(&fakeReportSrv{})

	c, rec := newTestContext(http.MethodGet, "/reports/monthly?month=abc", nil, adminClaims)
	h.Monthly(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandlerExport(t *testing.T) {
	srv := &fakeReportSrv{}
	h := NewReportHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/reports/monthly/export?month=10&year=2026&format=csv", nil, adminClaims)
	h.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", srv.query.Format)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "laporan-2026-10-ABC123.csv")
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
}
