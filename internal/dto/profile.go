package dto

// UpdateStudentRequest edits a student profile.
type UpdateStudentRequest struct {
	Name       string  `json:"name" validate:"required,max=150"`
	Department string  `json:"department" validate:"required,max=150"`
	Contact    *string `json:"contact" validate:"omitempty,max=100"`
}

// UpdateCounselorRequest edits a counselor profile.
type UpdateCounselorRequest struct {
	Name           string  `json:"name" validate:"required,max=150"`
	Specialization string  `json:"specialization" validate:"required,max=150"`
	Contact        *string `json:"contact" validate:"omitempty,max=100"`
}

// UpdateAdminRequest edits an administrator profile.
type UpdateAdminRequest struct {
	Name string `json:"name" validate:"required,max=150"`
}

// AddExpertiseRequest links a topic to a counselor.
type AddExpertiseRequest struct {
	TopicID string `json:"topic_id" validate:"required,max=16"`
}

// ExpertiseResult reports whether an expertise link was newly created.
type ExpertiseResult struct {
	CounselorNIK string `json:"counselor_nik"`
	TopicID      string `json:"topic_id"`
	Created      bool   `json:"created"`
}

// TopicRequest creates or renames a topic.
type TopicRequest struct {
	Name string `json:"name" validate:"required,max=150"`
}
