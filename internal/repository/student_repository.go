package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/counseling-api/internal/models"
)

const studentColumns = "nrp, name, department, contact, account_id, created_at, updated_at"

// StudentRepository manages persistence for student profiles.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching filters along with total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students WHERE 1=1"
	var args []interface{}

	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		base += fmt.Sprintf(" AND (LOWER(name) LIKE $%d OR nrp LIKE $%d)", len(args), len(args))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		base += fmt.Sprintf(" AND LOWER(department) = LOWER($%d)", len(args))
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s %s ORDER BY nrp ASC LIMIT %d OFFSET %d", studentColumns, base, size, (page-1)*size)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByNRP fetches a student by NRP.
func (r *StudentRepository) FindByNRP(ctx context.Context, nrp string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE nrp = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, nrp); err != nil {
		return nil, err
	}
	return &student, nil
}

// Update persists profile fields of a student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	query := fmt.Sprintf(`UPDATE students SET name = $2, department = $3, contact = $4, updated_at = NOW()
WHERE nrp = $1 RETURNING %s`, studentColumns)
	if err := r.db.GetContext(ctx, student, query, student.NRP, student.Name, student.Department, student.Contact); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes the student and the owning account together. Students with
// sessions are refused with ErrReferenced.
func (r *StudentRepository) Delete(ctx context.Context, nrp string) error {
	err := deleteProfile(ctx, r.db,
		`SELECT account_id FROM students WHERE nrp = $1 FOR UPDATE`,
		`DELETE FROM students WHERE nrp = $1`,
		nrp, nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// RecentActivity lists every student with the date of their latest session.
func (r *StudentRepository) RecentActivity(ctx context.Context) ([]models.StudentActivity, error) {
	const query = `SELECT nrp, name, department, last_session_date FROM student_last_activity
ORDER BY last_session_date DESC NULLS LAST, nrp ASC`
	var items []models.StudentActivity
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("student recent activity: %w", err)
	}
	return items, nil
}

// ListByTopic returns students who booked at least one session on topicID.
func (r *StudentRepository) ListByTopic(ctx context.Context, topicID string) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students st
WHERE EXISTS (SELECT 1 FROM sessions s WHERE s.student_nrp = st.nrp AND s.topic_id = $1)
ORDER BY st.nrp ASC`, prefixColumns("st", studentColumns))
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, topicID); err != nil {
		return nil, fmt.Errorf("list students by topic: %w", err)
	}
	return students, nil
}

// RecurringIssues returns student/topic pairs with at least minSessions sessions.
func (r *StudentRepository) RecurringIssues(ctx context.Context, minSessions int) ([]models.RecurringIssue, error) {
	const query = `SELECT st.nrp, st.name, t.id AS topic_id, t.name AS topic_name, COUNT(*) AS session_count
FROM sessions s
JOIN students st ON st.nrp = s.student_nrp
JOIN topics t ON t.id = s.topic_id
GROUP BY st.nrp, st.name, t.id, t.name
HAVING COUNT(*) >= $1
ORDER BY session_count DESC, st.nrp ASC`
	var items []models.RecurringIssue
	if err := r.db.SelectContext(ctx, &items, query, minSessions); err != nil {
		return nil, fmt.Errorf("recurring issues: %w", err)
	}
	return items, nil
}

// Recommendations ranks counselors qualified for the student's most booked
// topic by their number of upcoming sessions. Students without history get
// counselors across all topics.
func (r *StudentRepository) Recommendations(ctx context.Context, nrp string, limit int) ([]models.CounselorRecommendation, error) {
	const query = `WITH favourite AS (
	SELECT topic_id FROM sessions WHERE student_nrp = $1
	GROUP BY topic_id ORDER BY COUNT(*) DESC, topic_id ASC LIMIT 1
)
SELECT c.nik, c.name, c.specialization, t.id AS topic_id, t.name AS topic_name,
	(SELECT COUNT(*) FROM sessions s WHERE s.counselor_nik = c.nik AND s.status IN ('Requested', 'Scheduled') AND s.scheduled_date >= CURRENT_DATE) AS upcoming_count
FROM counselor_topics ct
JOIN counselors c ON c.nik = ct.counselor_nik
JOIN topics t ON t.id = ct.topic_id
WHERE NOT EXISTS (SELECT 1 FROM favourite) OR ct.topic_id IN (SELECT topic_id FROM favourite)
ORDER BY upcoming_count ASC, c.nik ASC
LIMIT $2`
	var items []models.CounselorRecommendation
	if err := r.db.SelectContext(ctx, &items, query, nrp, limit); err != nil {
		return nil, fmt.Errorf("counselor recommendations: %w", err)
	}
	return items, nil
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, part := range parts {
		parts[i] = alias + "." + part
	}
	return strings.Join(parts, ", ")
}
