package model

// Respondent roles offered on the personal info page.
const (
	RoleStaff     = "staff"
	RoleBoard     = "board"
	RoleExecutive = "executive"
	RoleOther     = "other"
)

// Respondent is the identity block collected before the first section.
type Respondent struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SubmissionRequest is the final payload posted to the backend.
type SubmissionRequest struct {
	RespondentName  string       `json:"respondent_name"`
	RespondentEmail string       `json:"respondent_email"`
	Role            string       `json:"role,omitempty"`
	Answers         []WireAnswer `json:"answers"`
}

// WireAnswer pairs a question id with its serialized value. Value is a
// bare scalar/list, or a small object when a comment rides along.
type WireAnswer struct {
	QuestionID string `json:"question_id"`
	Value      any    `json:"value"`
}

// RatingValue is the comment-folded encoding for likert and rating
// answers.
type RatingValue struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// SelectionValue is the comment-folded encoding for multiple_choice and
// yes_no answers.
type SelectionValue struct {
	Selection string `json:"selection"`
	Comment   string `json:"comment"`
}
