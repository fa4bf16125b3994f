package models

// MonthlyReport summarises sessions scheduled within one calendar month.
type MonthlyReport struct {
	Month             int     `db:"-" json:"month"`
	Year              int     `db:"-" json:"year"`
	TotalSessions     int     `db:"total_sessions" json:"total_sessions"`
	CompletedSessions int     `db:"completed_sessions" json:"completed_sessions"`
	CancelledSessions int     `db:"cancelled_sessions" json:"cancelled_sessions"`
	MostPopularTopic  *string `db:"most_popular_topic" json:"most_popular_topic,omitempty"`
}
