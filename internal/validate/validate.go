// Package validate decides whether questions, sections and forms are
// satisfactorily answered. Everything here is pure and cheap enough to run
// on every keystroke.
package validate

import (
	"fmt"
	"strings"

	"formflow/internal/model"
	"formflow/internal/store"
)

// ValidationError reports which required questions are unsatisfied. It is
// resolved locally and never crosses the component boundary as a panic.
type ValidationError struct {
	QuestionIDs []string
	Message     string
}

func (e *ValidationError) Error() string {
	if len(e.QuestionIDs) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%d unanswered)", e.Message, len(e.QuestionIDs))
}

// Satisfied reports whether the answer satisfies the question, dispatching
// on the type tag. Unknown tags never block; an empty tag is treated as
// likert.
func Satisfied(q *model.Question, a *model.Answer) bool {
	switch t := q.Type.Normalize(); t {
	case model.QuestionLikert, model.QuestionText, model.QuestionTextarea,
		model.QuestionMultipleChoice, model.QuestionDropdown, model.QuestionYesNo,
		model.QuestionCheckbox, model.QuestionNumber, model.QuestionRating,
		model.QuestionDateTime:
		return a.Present(t)
	}
	return true
}

// SectionErrors returns the ids of required questions in the section that
// are not yet satisfied.
func SectionErrors(sec *model.Section, st *store.AnswerStore) []string {
	var ids []string
	for i := range sec.Questions {
		q := &sec.Questions[i]
		if !q.Required() {
			continue
		}
		if !Satisfied(q, st.Get(q.ID)) {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// SectionComplete reports whether every required question in the section
// is satisfied.
func SectionComplete(sec *model.Section, st *store.AnswerStore) bool {
	return len(SectionErrors(sec, st)) == 0
}

// FormErrors sweeps every section for unsatisfied required questions.
func FormErrors(f *model.Form, st *store.AnswerStore) []string {
	var ids []string
	for i := range f.Sections {
		ids = append(ids, SectionErrors(&f.Sections[i], st)...)
	}
	return ids
}

// FormComplete reports whether the whole form is complete.
func FormComplete(f *model.Form, st *store.AnswerStore) bool {
	return len(FormErrors(f, st)) == 0
}

// RespondentErrors validates the personal info page against the form
// settings. The returned slice names the offending fields.
func RespondentErrors(settings model.Settings, r model.Respondent) []string {
	var fields []string
	if settings.NameRequired() && strings.TrimSpace(r.Name) == "" {
		fields = append(fields, "name")
	}
	if settings.EmailRequired() {
		email := strings.TrimSpace(r.Email)
		if email == "" || !strings.Contains(email, "@") {
			fields = append(fields, "email")
		}
	}
	if r.Role == "" {
		fields = append(fields, "role")
	}
	return fields
}
