// Package wire converts session answers into the submission payload the
// backend expects. The encoding is a backend compatibility contract:
// values are bare scalars unless a comment is present, in which case the
// value folds into a small object carrying both.
package wire

import (
	"formflow/internal/model"
	"formflow/internal/store"
)

// Serialize maps every answered question, required or not, to its wire
// form. Unanswered questions are omitted entirely so seeding never
// produces spurious answers.
func Serialize(form *model.Form, st *store.AnswerStore) []model.WireAnswer {
	var out []model.WireAnswer
	for _, q := range form.Questions() {
		a := st.Get(q.ID)
		if a == nil || !a.Present(q.Type) {
			continue
		}
		out = append(out, model.WireAnswer{
			QuestionID: q.ID,
			Value:      value(&q, a),
		})
	}
	return out
}

func value(q *model.Question, a *model.Answer) any {
	switch q.Type.Normalize() {
	case model.QuestionText, model.QuestionTextarea:
		return *a.Text
	case model.QuestionMultipleChoice, model.QuestionYesNo:
		if a.Comment != "" {
			return model.SelectionValue{Selection: *a.Selected, Comment: a.Comment}
		}
		return *a.Selected
	case model.QuestionDropdown:
		return *a.Selected
	case model.QuestionCheckbox:
		return a.Selections
	case model.QuestionNumber:
		return *a.Number
	case model.QuestionRating:
		if a.Comment != "" {
			return model.RatingValue{Rating: int(*a.Number), Comment: a.Comment}
		}
		return *a.Number
	case model.QuestionDateTime:
		return *a.DateTime
	default: // likert
		if a.Comment != "" {
			return model.RatingValue{Rating: *a.Likert, Comment: a.Comment}
		}
		return *a.Likert
	}
}
