package dto

// CreateSessionRequest books a counseling session for the calling student.
type CreateSessionRequest struct {
	CounselorNIK  string `json:"counselor_nik" validate:"required,max=20"`
	TopicID       string `json:"topic_id" validate:"required,max=16"`
	ScheduledDate string `json:"scheduled_date" validate:"required"`
}

// UpdateSessionRequest changes the status and/or notes of a session.
type UpdateSessionRequest struct {
	Status *string `json:"status" validate:"omitempty,oneof=Requested Scheduled Completed Cancelled"`
	Notes  *string `json:"notes" validate:"omitempty,max=4000"`
}

// RescheduleSessionRequest moves a session to another date.
type RescheduleSessionRequest struct {
	ScheduledDate string `json:"scheduled_date" validate:"required"`
}

// TransferSessionRequest reassigns a session to another counselor.
type TransferSessionRequest struct {
	SessionID    string `json:"session_id" validate:"required,max=16"`
	CounselorNIK string `json:"counselor_nik" validate:"required,max=20"`
}

// CompletedSessionQuery bounds the completed-session recap.
type CompletedSessionQuery struct {
	StartDate    string `form:"start_date" validate:"required"`
	EndDate      string `form:"end_date" validate:"required"`
	CounselorNIK string `form:"counselor_nik" validate:"omitempty,max=20"`
}
