package models

import "time"

// SessionStatus enumerates the counseling session lifecycle states.
type SessionStatus string

const (
	SessionRequested SessionStatus = "Requested"
	SessionScheduled SessionStatus = "Scheduled"
	SessionCompleted SessionStatus = "Completed"
	SessionCancelled SessionStatus = "Cancelled"
)

// Valid reports whether s is a known status.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionRequested, SessionScheduled, SessionCompleted, SessionCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transfer is allowed from s.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

// Session is a single counseling appointment.
type Session struct {
	ID            string        `db:"id" json:"id"`
	ScheduledDate time.Time     `db:"scheduled_date" json:"scheduled_date"`
	Status        SessionStatus `db:"status" json:"status"`
	Notes         *string       `db:"notes" json:"notes,omitempty"`
	StudentNRP    string        `db:"student_nrp" json:"student_nrp"`
	CounselorNIK  string        `db:"counselor_nik" json:"counselor_nik"`
	TopicID       string        `db:"topic_id" json:"topic_id"`
	AdminID       *string       `db:"admin_id" json:"admin_id,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// SessionDetail is a session joined with the display names of its participants.
type SessionDetail struct {
	Session
	StudentName             string  `db:"student_name" json:"student_name"`
	CounselorName           string  `db:"counselor_name" json:"counselor_name"`
	CounselorSpecialization string  `db:"counselor_specialization" json:"counselor_specialization"`
	TopicName               string  `db:"topic_name" json:"topic_name"`
	AdminName               *string `db:"admin_name" json:"admin_name,omitempty"`
}

// SessionFilter captures filtering options for listing sessions.
type SessionFilter struct {
	Status       *SessionStatus
	StudentNRP   string
	CounselorNIK string
	Page         int
	PageSize     int
}

// CompletedSessionFilter selects completed sessions in an inclusive date range.
type CompletedSessionFilter struct {
	StartDate    time.Time
	EndDate      time.Time
	CounselorNIK string
}

// StatusCount is one bucket of the status distribution.
type StatusCount struct {
	Status SessionStatus `db:"status" json:"status"`
	Total  int           `db:"total" json:"total"`
}
