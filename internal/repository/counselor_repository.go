package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/counseling-api/internal/models"
)

const counselorColumns = "nik, name, specialization, contact, account_id, created_at, updated_at"

// CounselorRepository manages counselor profiles and their topic expertise.
type CounselorRepository struct {
	db *sqlx.DB
}

// NewCounselorRepository constructs a CounselorRepository.
func NewCounselorRepository(db *sqlx.DB) *CounselorRepository {
	return &CounselorRepository{db: db}
}

// List returns all counselors with the names of the topics they handle.
func (r *CounselorRepository) List(ctx context.Context) ([]models.CounselorWithTopics, error) {
	query := fmt.Sprintf(`SELECT %s,
	COALESCE(ARRAY_AGG(t.name ORDER BY t.name) FILTER (WHERE t.id IS NOT NULL), '{}') AS topics
FROM counselors c
LEFT JOIN counselor_topics ct ON ct.counselor_nik = c.nik
LEFT JOIN topics t ON t.id = ct.topic_id
GROUP BY c.nik
ORDER BY c.nik ASC`, prefixColumns("c", counselorColumns))
	var items []models.CounselorWithTopics
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list counselors: %w", err)
	}
	return items, nil
}

// FindByNIK fetches a counselor with expertise topic names.
func (r *CounselorRepository) FindByNIK(ctx context.Context, nik string) (*models.CounselorWithTopics, error) {
	query := fmt.Sprintf(`SELECT %s,
	COALESCE(ARRAY_AGG(t.name ORDER BY t.name) FILTER (WHERE t.id IS NOT NULL), '{}') AS topics
FROM counselors c
LEFT JOIN counselor_topics ct ON ct.counselor_nik = c.nik
LEFT JOIN topics t ON t.id = ct.topic_id
WHERE c.nik = $1
GROUP BY c.nik`, prefixColumns("c", counselorColumns))
	var counselor models.CounselorWithTopics
	if err := r.db.GetContext(ctx, &counselor, query, nik); err != nil {
		return nil, err
	}
	return &counselor, nil
}

// Exists reports whether a counselor with nik exists.
func (r *CounselorRepository) Exists(ctx context.Context, nik string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM counselors WHERE nik = $1)`, nik); err != nil {
		return false, fmt.Errorf("check counselor: %w", err)
	}
	return exists, nil
}

// HasExpertise reports whether the counselor handles topicID.
func (r *CounselorRepository) HasExpertise(ctx context.Context, nik, topicID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM counselor_topics WHERE counselor_nik = $1 AND topic_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, nik, topicID); err != nil {
		return false, fmt.Errorf("check counselor expertise: %w", err)
	}
	return exists, nil
}

// Update persists profile fields of a counselor.
func (r *CounselorRepository) Update(ctx context.Context, counselor *models.Counselor) error {
	query := fmt.Sprintf(`UPDATE counselors SET name = $2, specialization = $3, contact = $4, updated_at = NOW()
WHERE nik = $1 RETURNING %s`, counselorColumns)
	if err := r.db.GetContext(ctx, counselor, query, counselor.NIK, counselor.Name, counselor.Specialization, counselor.Contact); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("update counselor: %w", err)
	}
	return nil
}

// Delete removes the counselor, its expertise links and its account together.
// Counselors that still have sessions are refused with ErrReferenced.
func (r *CounselorRepository) Delete(ctx context.Context, nik string) error {
	err := deleteProfile(ctx, r.db,
		`SELECT account_id FROM counselors WHERE nik = $1 FOR UPDATE`,
		`DELETE FROM counselors WHERE nik = $1`,
		nik,
		func(tx *sqlx.Tx) error {
			var sessions int
			if err := tx.GetContext(ctx, &sessions, `SELECT COUNT(*) FROM sessions WHERE counselor_nik = $1`, nik); err != nil {
				return err
			}
			if sessions > 0 {
				return ErrReferenced
			}
			_, err := tx.ExecContext(ctx, `DELETE FROM counselor_topics WHERE counselor_nik = $1`, nik)
			return err
		})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("delete counselor: %w", err)
	}
	return nil
}

// AddExpertise links a topic to the counselor. created is false when the
// link already existed.
func (r *CounselorRepository) AddExpertise(ctx context.Context, nik, topicID string) (created bool, err error) {
	const query = `INSERT INTO counselor_topics (counselor_nik, topic_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, nik, topicID)
	if err != nil {
		return false, fmt.Errorf("add counselor expertise: %w", translate(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add counselor expertise rows: %w", err)
	}
	return affected > 0, nil
}

// RemoveExpertise unlinks a topic. Missing links return sql.ErrNoRows.
func (r *CounselorRepository) RemoveExpertise(ctx context.Context, nik, topicID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM counselor_topics WHERE counselor_nik = $1 AND topic_id = $2`, nik, topicID)
	if err != nil {
		return fmt.Errorf("remove counselor expertise: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove counselor expertise rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListIdle returns counselors that have never been assigned a session.
func (r *CounselorRepository) ListIdle(ctx context.Context) ([]models.Counselor, error) {
	query := fmt.Sprintf(`SELECT %s FROM counselors c
WHERE NOT EXISTS (SELECT 1 FROM sessions s WHERE s.counselor_nik = c.nik)
ORDER BY c.nik ASC`, prefixColumns("c", counselorColumns))
	var items []models.Counselor
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list idle counselors: %w", err)
	}
	return items, nil
}

// SessionSummary aggregates session counts per counselor.
func (r *CounselorRepository) SessionSummary(ctx context.Context) ([]models.CounselorSessionSummary, error) {
	const query = `SELECT c.nik, c.name,
	COUNT(s.id) AS total,
	COUNT(s.id) FILTER (WHERE s.status = 'Completed') AS completed,
	COUNT(s.id) FILTER (WHERE s.status = 'Cancelled') AS cancelled,
	COUNT(s.id) FILTER (WHERE s.status IN ('Requested', 'Scheduled') AND s.scheduled_date >= CURRENT_DATE) AS upcoming
FROM counselors c
LEFT JOIN sessions s ON s.counselor_nik = c.nik
GROUP BY c.nik, c.name
ORDER BY total DESC, c.nik ASC`
	var items []models.CounselorSessionSummary
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("counselor session summary: %w", err)
	}
	return items, nil
}
