package model

import "strings"

// MaxCommentLength caps inline comments.
const MaxCommentLength = 500

// Answer holds a respondent value for one question. Exactly one value
// field is populated, matching the question's type tag; the rest stay
// absent. Field names double as the snapshot record encoding.
type Answer struct {
	QuestionID string   `json:"question_id"`
	Likert     *int     `json:"likert_value,omitempty"`
	Text       *string  `json:"text_value,omitempty"`
	Selected   *string  `json:"selected_option,omitempty"`
	Selections []string `json:"selected_options,omitempty"`
	Number     *float64 `json:"number_value,omitempty"`
	DateTime   *string  `json:"date_value,omitempty"`
	Comment    string   `json:"comment"`
}

// Present reports whether the answer carries a value for the given
// question type. Zero counts as present for numeric types; whitespace-only
// text does not count for text types.
func (a *Answer) Present(t QuestionType) bool {
	if a == nil {
		return false
	}
	switch t.Normalize() {
	case QuestionLikert:
		return a.Likert != nil
	case QuestionText, QuestionTextarea:
		return a.Text != nil && strings.TrimSpace(*a.Text) != ""
	case QuestionMultipleChoice, QuestionDropdown, QuestionYesNo:
		return a.Selected != nil && *a.Selected != ""
	case QuestionCheckbox:
		return len(a.Selections) > 0
	case QuestionNumber, QuestionRating:
		return a.Number != nil
	case QuestionDateTime:
		return a.DateTime != nil && *a.DateTime != ""
	}
	return false
}

// Seeded returns the typed empty answer for a question, so reads never
// have to null-check the store itself.
func Seeded(q *Question) *Answer {
	a := &Answer{QuestionID: q.ID}
	switch q.Type.Normalize() {
	case QuestionText, QuestionTextarea:
		empty := ""
		a.Text = &empty
	case QuestionCheckbox:
		a.Selections = []string{}
	}
	return a
}
