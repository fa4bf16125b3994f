package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/counseling-api/internal/models"
	"github.com/noah-isme/counseling-api/pkg/database"
)

const (
	sessionColumns = "id, scheduled_date, status, notes, student_nrp, counselor_nik, topic_id, admin_id, created_at, updated_at"
	detailColumns  = sessionColumns + ", student_name, counselor_name, counselor_specialization, topic_name, admin_name"

	dateLayout = "2006-01-02"
)

// SessionRepository manages persistence for counseling sessions.
type SessionRepository struct {
	db  *sqlx.DB
	ids *IdentifierAllocator
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *sqlx.DB, ids *IdentifierAllocator) *SessionRepository {
	if ids == nil {
		ids = NewIdentifierAllocator()
	}
	return &SessionRepository{db: db, ids: ids}
}

// TransferParams describes a counselor reassignment. FromCounselorNIK is the
// assignment the caller validated against; the transfer is refused when the
// row no longer matches it.
type TransferParams struct {
	SessionID        string
	FromCounselorNIK string
	ToCounselorNIK   string
	Note             string
}

// List returns sessions with participant names, newest date first.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.SessionDetail, int, error) {
	base := "FROM session_details WHERE 1=1"
	var args []interface{}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		base += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.StudentNRP != "" {
		args = append(args, filter.StudentNRP)
		base += fmt.Sprintf(" AND student_nrp = $%d", len(args))
	}
	if filter.CounselorNIK != "" {
		args = append(args, filter.CounselorNIK)
		base += fmt.Sprintf(" AND counselor_nik = $%d", len(args))
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s %s ORDER BY scheduled_date DESC, id DESC LIMIT %d OFFSET %d", detailColumns, base, size, (page-1)*size)

	var sessions []models.SessionDetail
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}
	return sessions, total, nil
}

// FindByID fetches a session row. Missing rows return sql.ErrNoRows.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE id = $1", sessionColumns)
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindDetailByID fetches a session joined with participant names.
func (r *SessionRepository) FindDetailByID(ctx context.Context, id string) (*models.SessionDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM session_details WHERE id = $1", detailColumns)
	var session models.SessionDetail
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// HasConflict reports whether the counselor already has a session on date,
// ignoring excludeID.
func (r *SessionRepository) HasConflict(ctx context.Context, counselorNIK string, date time.Time, excludeID string) (bool, error) {
	conflict, err := hasConflict(ctx, r.db, counselorNIK, date, excludeID)
	if err != nil {
		return false, fmt.Errorf("check session conflict: %w", err)
	}
	return conflict, nil
}

// Create inserts a new session, drawing its id from the session sequence in
// the same transaction. Concurrent bookings of one counselor and date are
// serialized by an advisory lock and rechecked before the insert.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockCounselorDate(ctx, tx, session.CounselorNIK, session.ScheduledDate); err != nil {
			return err
		}
		conflict, err := hasConflict(ctx, tx, session.CounselorNIK, session.ScheduledDate, "")
		if err != nil {
			return err
		}
		if conflict {
			return ErrScheduleConflict
		}

		id, err := r.ids.Next(ctx, tx, models.IDSession)
		if err != nil {
			return err
		}
		session.ID = id

		const query = `INSERT INTO sessions (id, scheduled_date, status, notes, student_nrp, counselor_nik, topic_id, admin_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at, updated_at`
		return tx.QueryRowxContext(ctx, query,
			session.ID,
			session.ScheduledDate.Format(dateLayout),
			string(session.Status),
			session.Notes,
			session.StudentNRP,
			session.CounselorNIK,
			session.TopicID,
			session.AdminID,
		).Scan(&session.CreatedAt, &session.UpdatedAt)
	})
	if err != nil {
		return fmt.Errorf("create session: %w", translate(err))
	}
	return nil
}

// UpdateStatusNotes sets status and/or notes; nil arguments keep the stored value.
func (r *SessionRepository) UpdateStatusNotes(ctx context.Context, id string, status *models.SessionStatus, notes *string) (*models.Session, error) {
	var statusArg interface{}
	if status != nil {
		statusArg = string(*status)
	}
	query := fmt.Sprintf(`UPDATE sessions SET status = COALESCE($2, status), notes = COALESCE($3, notes), updated_at = NOW()
WHERE id = $1 RETURNING %s`, sessionColumns)

	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id, statusArg, notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("update session: %w", translate(err))
	}
	return &session, nil
}

// Reschedule moves a session to date after rechecking the counselor's
// calendar under lock.
func (r *SessionRepository) Reschedule(ctx context.Context, id string, date time.Time) (*models.Session, error) {
	var updated models.Session
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		current, err := lockSession(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := lockCounselorDate(ctx, tx, current.CounselorNIK, date); err != nil {
			return err
		}
		conflict, err := hasConflict(ctx, tx, current.CounselorNIK, date, id)
		if err != nil {
			return err
		}
		if conflict {
			return ErrScheduleConflict
		}
		query := fmt.Sprintf(`UPDATE sessions SET scheduled_date = $2, updated_at = NOW() WHERE id = $1 RETURNING %s`, sessionColumns)
		return tx.GetContext(ctx, &updated, query, id, date.Format(dateLayout))
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("reschedule session: %w", translate(err))
	}
	return &updated, nil
}

// Transfer reassigns a session to another counselor on the same date and
// appends params.Note to the session notes.
func (r *SessionRepository) Transfer(ctx context.Context, params TransferParams) (*models.Session, error) {
	var updated models.Session
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		current, err := lockSession(ctx, tx, params.SessionID)
		if err != nil {
			return err
		}
		if current.CounselorNIK != params.FromCounselorNIK || current.Status.Terminal() {
			return ErrSessionChanged
		}
		if err := lockCounselorDate(ctx, tx, params.ToCounselorNIK, current.ScheduledDate); err != nil {
			return err
		}
		conflict, err := hasConflict(ctx, tx, params.ToCounselorNIK, current.ScheduledDate, current.ID)
		if err != nil {
			return err
		}
		if conflict {
			return ErrScheduleConflict
		}

		query := fmt.Sprintf(`UPDATE sessions SET counselor_nik = $2,
	notes = CASE WHEN notes IS NULL OR notes = '' THEN $3 ELSE notes || E'\n' || $3 END,
	updated_at = NOW()
WHERE id = $1 RETURNING %s`, sessionColumns)
		return tx.GetContext(ctx, &updated, query, params.SessionID, params.ToCounselorNIK, params.Note)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("transfer session: %w", translate(err))
	}
	return &updated, nil
}

// Delete removes a session. Missing rows return sql.ErrNoRows.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListCompleted returns completed sessions dated within [StartDate, EndDate].
func (r *SessionRepository) ListCompleted(ctx context.Context, filter models.CompletedSessionFilter) ([]models.SessionDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM session_details
WHERE status = 'Completed' AND scheduled_date BETWEEN $1 AND $2`, detailColumns)
	args := []interface{}{filter.StartDate.Format(dateLayout), filter.EndDate.Format(dateLayout)}
	if filter.CounselorNIK != "" {
		args = append(args, filter.CounselorNIK)
		query += fmt.Sprintf(" AND counselor_nik = $%d", len(args))
	}
	query += " ORDER BY scheduled_date DESC, id DESC"

	var sessions []models.SessionDetail
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("list completed sessions: %w", err)
	}
	return sessions, nil
}

// ListBySpecialization returns sessions handled by counselors whose
// specialization matches case-insensitively.
func (r *SessionRepository) ListBySpecialization(ctx context.Context, specialization string) ([]models.SessionDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM session_details
WHERE LOWER(counselor_specialization) = LOWER($1)
ORDER BY scheduled_date DESC, id DESC`, detailColumns)
	var sessions []models.SessionDetail
	if err := r.db.SelectContext(ctx, &sessions, query, specialization); err != nil {
		return nil, fmt.Errorf("list sessions by specialization: %w", err)
	}
	return sessions, nil
}

// StatusDistribution counts sessions per status.
func (r *SessionRepository) StatusDistribution(ctx context.Context) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS total FROM sessions GROUP BY status ORDER BY status`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("session status distribution: %w", err)
	}
	return counts, nil
}

func lockSession(ctx context.Context, tx *sqlx.Tx, id string) (*models.Session, error) {
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE id = $1 FOR UPDATE", sessionColumns)
	var session models.Session
	if err := tx.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

func lockCounselorDate(ctx context.Context, tx *sqlx.Tx, counselorNIK string, date time.Time) error {
	key := counselorNIK + "|" + date.Format(dateLayout)
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("lock counselor date: %w", err)
	}
	return nil
}

func hasConflict(ctx context.Context, q sqlx.QueryerContext, counselorNIK string, date time.Time, excludeID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM sessions WHERE counselor_nik = $1 AND scheduled_date = $2 AND id <> $3)`
	var exists bool
	if err := sqlx.GetContext(ctx, q, &exists, query, counselorNIK, date.Format(dateLayout), excludeID); err != nil {
		return false, err
	}
	return exists, nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}
