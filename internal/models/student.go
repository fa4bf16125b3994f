package models

import "time"

// Student is a Mahasiswa profile keyed by NRP.
type Student struct {
	NRP        string    `db:"nrp" json:"nrp"`
	Name       string    `db:"name" json:"name"`
	Department string    `db:"department" json:"department"`
	Contact    *string   `db:"contact" json:"contact,omitempty"`
	AccountID  string    `db:"account_id" json:"account_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter captures filtering options for listing students.
type StudentFilter struct {
	Search     string
	Department string
	Page       int
	PageSize   int
}

// StudentActivity reports the most recent session date of a student.
type StudentActivity struct {
	NRP             string     `db:"nrp" json:"nrp"`
	Name            string     `db:"name" json:"name"`
	Department      string     `db:"department" json:"department"`
	LastSessionDate *time.Time `db:"last_session_date" json:"last_session_date,omitempty"`
}

// RecurringIssue flags a student who booked the same topic repeatedly.
type RecurringIssue struct {
	NRP          string `db:"nrp" json:"nrp"`
	Name         string `db:"name" json:"name"`
	TopicID      string `db:"topic_id" json:"topic_id"`
	TopicName    string `db:"topic_name" json:"topic_name"`
	SessionCount int    `db:"session_count" json:"session_count"`
}
