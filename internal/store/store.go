// Package store holds the in-session answer state: one typed answer per
// question of the active form.
package store

import (
	"encoding/json"
	"fmt"

	"formflow/internal/model"
)

// AnswerStore maps question ids to answers. Every question known to the
// form always has an entry; only value fields can be absent.
type AnswerStore struct {
	questions []model.Question
	byID      map[string]*model.Question
	answers   map[string]*model.Answer
}

// New creates an empty store. Initialize must be called before use.
func New() *AnswerStore {
	return &AnswerStore{
		byID:    make(map[string]*model.Question),
		answers: make(map[string]*model.Answer),
	}
}

// Initialize seeds one typed empty answer per question, replacing any
// previous state.
func (s *AnswerStore) Initialize(questions []model.Question) {
	s.questions = make([]model.Question, len(questions))
	copy(s.questions, questions)
	s.byID = make(map[string]*model.Question, len(questions))
	s.answers = make(map[string]*model.Answer, len(questions))
	for i := range s.questions {
		q := &s.questions[i]
		s.byID[q.ID] = q
		s.answers[q.ID] = model.Seeded(q)
	}
}

// Get returns the answer for a question id, or nil for unknown ids.
func (s *AnswerStore) Get(questionID string) *model.Answer {
	return s.answers[questionID]
}

// Question returns the question a stored answer belongs to.
func (s *AnswerStore) Question(questionID string) *model.Question {
	return s.byID[questionID]
}

func (s *AnswerStore) answerFor(questionID string, want func(model.QuestionType) bool) (*model.Answer, error) {
	q, ok := s.byID[questionID]
	if !ok {
		return nil, fmt.Errorf("unknown question %q", questionID)
	}
	if want != nil && !want(q.Type) {
		return nil, fmt.Errorf("question %q does not take this value type", questionID)
	}
	return s.answers[questionID], nil
}

// SetLikert records a likert value, leaving the comment untouched. Values
// outside the question's scale are rejected.
func (s *AnswerStore) SetLikert(questionID string, value int) error {
	a, err := s.answerFor(questionID, func(t model.QuestionType) bool {
		return t.Normalize() == model.QuestionLikert
	})
	if err != nil {
		return err
	}
	q := s.byID[questionID]
	if min, max := q.RatingBounds(); value < min || value > max {
		return fmt.Errorf("question %q value %d outside scale %d..%d", questionID, value, min, max)
	}
	a.Likert = &value
	return nil
}

// SetText records a text or textarea value, enforcing the question's
// charLimit when one is set.
func (s *AnswerStore) SetText(questionID, value string) error {
	a, err := s.answerFor(questionID, model.QuestionType.IsText)
	if err != nil {
		return err
	}
	q := s.byID[questionID]
	if limit := q.Features.CharLimit; limit != nil && len([]rune(value)) > *limit {
		return fmt.Errorf("question %q text exceeds limit of %d characters", questionID, *limit)
	}
	a.Text = &value
	return nil
}

// checkOption enforces membership in the question's declared options. A
// yes_no question without declared options takes its intrinsic pair; other
// types without declared options accept anything.
func (s *AnswerStore) checkOption(questionID, option string) error {
	q := s.byID[questionID]
	opts := q.Features.Options
	if len(opts) == 0 {
		if q.Type.Normalize() == model.QuestionYesNo && option != "yes" && option != "no" {
			return fmt.Errorf("question %q accepts only yes or no", questionID)
		}
		return nil
	}
	for _, o := range opts {
		if o == option {
			return nil
		}
	}
	return fmt.Errorf("question %q has no option %q", questionID, option)
}

// SetSelection records the chosen option for multiple_choice, dropdown and
// yes_no questions. The option must be one the question offers.
func (s *AnswerStore) SetSelection(questionID, option string) error {
	a, err := s.answerFor(questionID, model.QuestionType.IsChoice)
	if err != nil {
		return err
	}
	if err := s.checkOption(questionID, option); err != nil {
		return err
	}
	a.Selected = &option
	return nil
}

// SetSelections replaces the checkbox selection set. Every entry must be one
// of the question's declared options.
func (s *AnswerStore) SetSelections(questionID string, options []string) error {
	a, err := s.answerFor(questionID, func(t model.QuestionType) bool {
		return t.Normalize() == model.QuestionCheckbox
	})
	if err != nil {
		return err
	}
	for _, o := range options {
		if err := s.checkOption(questionID, o); err != nil {
			return err
		}
	}
	if options == nil {
		options = []string{}
	}
	a.Selections = options
	return nil
}

// SetNumber records a number or rating value. Ratings stay within the scale;
// numbers honor min/max when the question declares them.
func (s *AnswerStore) SetNumber(questionID string, value float64) error {
	a, err := s.answerFor(questionID, model.QuestionType.IsNumeric)
	if err != nil {
		return err
	}
	q := s.byID[questionID]
	if q.Type.Normalize() == model.QuestionRating {
		if min, max := q.RatingBounds(); value < float64(min) || value > float64(max) {
			return fmt.Errorf("question %q rating %g outside scale %d..%d", questionID, value, min, max)
		}
	} else if f := q.Features; (f.Min != nil && value < *f.Min) || (f.Max != nil && value > *f.Max) {
		return fmt.Errorf("question %q value %g outside the allowed range", questionID, value)
	}
	a.Number = &value
	return nil
}

// SetDateTime records an ISO-8601 instant for datetime questions.
func (s *AnswerStore) SetDateTime(questionID, value string) error {
	a, err := s.answerFor(questionID, func(t model.QuestionType) bool {
		return t.Normalize() == model.QuestionDateTime
	})
	if err != nil {
		return err
	}
	a.DateTime = &value
	return nil
}

// SetComment attaches a comment, accepted only for comment-capable
// questions with allowComment set. The value field is untouched.
func (s *AnswerStore) SetComment(questionID, comment string) error {
	q, ok := s.byID[questionID]
	if !ok {
		return fmt.Errorf("unknown question %q", questionID)
	}
	if !q.AllowComment() {
		return fmt.Errorf("question %q does not accept comments", questionID)
	}
	if n := len([]rune(comment)); n > model.MaxCommentLength {
		return fmt.Errorf("comment exceeds %d characters", model.MaxCommentLength)
	}
	s.answers[questionID].Comment = comment
	return nil
}

// HasRespondentData reports whether any answer carries respondent-entered
// content. Used to gate autosave so empty sessions are never written.
func (s *AnswerStore) HasRespondentData() bool {
	for id, a := range s.answers {
		q := s.byID[id]
		if a.Present(q.Type) || a.Comment != "" {
			return true
		}
	}
	return false
}

// Entry is one persisted [questionId, answer] pair. It marshals as a
// two-element JSON array to match the snapshot schema.
type Entry struct {
	QuestionID string
	Answer     model.Answer
}

// MarshalJSON encodes the entry as [id, answer].
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.QuestionID, e.Answer})
}

// UnmarshalJSON decodes the [id, answer] pair form.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &e.QuestionID); err != nil {
		// Older snapshots carried numeric ids.
		var n int64
		if err := json.Unmarshal(raw[0], &n); err != nil {
			return err
		}
		e.QuestionID = fmt.Sprintf("%d", n)
	}
	return json.Unmarshal(raw[1], &e.Answer)
}

// Entries projects the store into its persistable form, in question
// display order.
func (s *AnswerStore) Entries() []Entry {
	out := make([]Entry, 0, len(s.questions))
	for i := range s.questions {
		id := s.questions[i].ID
		out = append(out, Entry{QuestionID: id, Answer: *s.answers[id]})
	}
	return out
}

// Restore overlays persisted entries onto a freshly-initialized store,
// answer-by-answer and type-checked against the live question set. Entries
// for unknown questions are dropped, fields that no longer match the
// question's type are dropped, and comments survive only where the comment
// policy allows them. Missing questions keep their seeded answers.
func (s *AnswerStore) Restore(entries []Entry) {
	for _, e := range entries {
		q, ok := s.byID[e.QuestionID]
		if !ok {
			continue
		}
		clean := model.Seeded(q)
		saved := e.Answer
		switch q.Type.Normalize() {
		case model.QuestionLikert:
			clean.Likert = saved.Likert
		case model.QuestionText, model.QuestionTextarea:
			if saved.Text != nil {
				clean.Text = saved.Text
			}
		case model.QuestionMultipleChoice, model.QuestionDropdown, model.QuestionYesNo:
			clean.Selected = saved.Selected
		case model.QuestionCheckbox:
			if saved.Selections != nil {
				clean.Selections = saved.Selections
			}
		case model.QuestionNumber, model.QuestionRating:
			clean.Number = saved.Number
		case model.QuestionDateTime:
			clean.DateTime = saved.DateTime
		}
		if q.AllowComment() {
			clean.Comment = saved.Comment
		}
		s.answers[e.QuestionID] = clean
	}
}
