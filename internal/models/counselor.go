package models

import (
	"time"

	"github.com/lib/pq"
)

// Counselor is a Konselor profile keyed by NIK.
type Counselor struct {
	NIK            string    `db:"nik" json:"nik"`
	Name           string    `db:"name" json:"name"`
	Specialization string    `db:"specialization" json:"specialization"`
	Contact        *string   `db:"contact" json:"contact,omitempty"`
	AccountID      string    `db:"account_id" json:"account_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// CounselorWithTopics embeds the names of the topics a counselor handles.
type CounselorWithTopics struct {
	Counselor
	Topics pq.StringArray `db:"topics" json:"topics"`
}

// CounselorSessionSummary aggregates sessions per counselor.
type CounselorSessionSummary struct {
	NIK       string `db:"nik" json:"nik"`
	Name      string `db:"name" json:"name"`
	Total     int    `db:"total" json:"total"`
	Completed int    `db:"completed" json:"completed"`
	Cancelled int    `db:"cancelled" json:"cancelled"`
	Upcoming  int    `db:"upcoming" json:"upcoming"`
}

// CounselorRecommendation is a qualified counselor ranked by upcoming load.
type CounselorRecommendation struct {
	NIK            string `db:"nik" json:"nik"`
	Name           string `db:"name" json:"name"`
	Specialization string `db:"specialization" json:"specialization"`
	TopicID        string `db:"topic_id" json:"topic_id"`
	TopicName      string `db:"topic_name" json:"topic_name"`
	UpcomingCount  int    `db:"upcoming_count" json:"upcoming_count"`
}
