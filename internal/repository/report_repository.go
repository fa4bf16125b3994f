package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/counseling-api/internal/models"
)

// ReportRepository runs aggregate queries over sessions.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs a ReportRepository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Monthly summarises sessions scheduled in the given month. Ties for the
// most popular topic resolve alphabetically.
func (r *ReportRepository) Monthly(ctx context.Context, month, year int) (*models.MonthlyReport, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	const query = `WITH monthly AS (
	SELECT s.status, t.name AS topic_name
	FROM sessions s
	JOIN topics t ON t.id = s.topic_id
	WHERE s.scheduled_date >= $1 AND s.scheduled_date < $2
)
SELECT
	COUNT(*) AS total_sessions,
	COUNT(*) FILTER (WHERE status = 'Completed') AS completed_sessions,
	COUNT(*) FILTER (WHERE status = 'Cancelled') AS cancelled_sessions,
	(SELECT topic_name FROM monthly GROUP BY topic_name ORDER BY COUNT(*) DESC, topic_name ASC LIMIT 1) AS most_popular_topic
FROM monthly`

	report := models.MonthlyReport{Month: month, Year: year}
	if err := r.db.GetContext(ctx, &report, query, start.Format(dateLayout), end.Format(dateLayout)); err != nil {
		return nil, fmt.Errorf("monthly report: %w", err)
	}
	return &report, nil
}
