package model

import (
	"bytes"
	"encoding/json"
	"sort"
)

// QuestionType tags a question with its answer shape.
type QuestionType string

const (
	QuestionLikert         QuestionType = "likert"
	QuestionText           QuestionType = "text"
	QuestionTextarea       QuestionType = "textarea"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionCheckbox       QuestionType = "checkbox"
	QuestionDropdown       QuestionType = "dropdown"
	QuestionYesNo          QuestionType = "yes_no"
	QuestionRating         QuestionType = "rating"
	QuestionNumber         QuestionType = "number"
	QuestionDateTime       QuestionType = "datetime"
)

// Normalize resolves the legacy empty tag, which older forms used for
// likert questions.
func (t QuestionType) Normalize() QuestionType {
	if t == "" {
		return QuestionLikert
	}
	return t
}

// IsChoice reports whether the type selects a single option from a list.
func (t QuestionType) IsChoice() bool {
	switch t.Normalize() {
	case QuestionMultipleChoice, QuestionDropdown, QuestionYesNo:
		return true
	}
	return false
}

// IsNumeric reports whether the type carries a number_value.
func (t QuestionType) IsNumeric() bool {
	switch t.Normalize() {
	case QuestionNumber, QuestionRating:
		return true
	}
	return false
}

// IsText reports whether the type carries a text_value.
func (t QuestionType) IsText() bool {
	switch t.Normalize() {
	case QuestionText, QuestionTextarea:
		return true
	}
	return false
}

// SupportsComment reports whether an inline comment can accompany the
// answer. Only these four types have a comment slot in the wire format.
func (t QuestionType) SupportsComment() bool {
	switch t.Normalize() {
	case QuestionLikert, QuestionRating, QuestionMultipleChoice, QuestionYesNo:
		return true
	}
	return false
}

// FlexBool decodes booleans that backends encode as true/false or 1/0.
type FlexBool bool

// UnmarshalJSON accepts bool and numeric encodings.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true":
		*b = true
	case "false", "null", "0":
		*b = false
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			// Unrecognized encodings read as false rather than failing
			// the whole form decode.
			*b = false
			return nil
		}
		*b = n != 0
	}
	return nil
}

// Features is the per-type constraint bag attached to a question. Which
// keys are meaningful depends on the question type.
type Features struct {
	Required     FlexBool `json:"required"`
	AllowComment FlexBool `json:"allowComment"`
	Options      []string `json:"options,omitempty"`
	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	Step         *float64 `json:"step,omitempty"`
	CharLimit    *int     `json:"charLimit,omitempty"`
	Rows         *int     `json:"rows,omitempty"`
	Placeholder  string   `json:"placeholder,omitempty"`
	RatingStyle  string   `json:"ratingStyle,omitempty"`
	DateFormat   string   `json:"dateFormat,omitempty"`
}

// Question is a single prompt within a section.
type Question struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Position    int          `json:"position"`
	Type        QuestionType `json:"type"`
	Features    Features     `json:"features"`
}

// Required reports whether the question gates navigation.
func (q *Question) Required() bool {
	return bool(q.Features.Required)
}

// AllowComment reports whether a comment may be attached, which needs both
// the feature flag and a type with a comment slot.
func (q *Question) AllowComment() bool {
	return bool(q.Features.AllowComment) && q.Type.SupportsComment()
}

// RatingBounds returns the inclusive scale for rating questions,
// defaulting to 1..5.
func (q *Question) RatingBounds() (min, max int) {
	min, max = 1, 5
	if q.Features.Min != nil {
		min = int(*q.Features.Min)
	}
	if q.Features.Max != nil {
		max = int(*q.Features.Max)
	}
	return min, max
}

// Section is an ordered group of questions.
type Section struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Position    int        `json:"position"`
	Questions   []Question `json:"questions"`
}

// Settings is the form-level option bag.
type Settings struct {
	AllowAnonymous        FlexBool  `json:"allowAnonymous"`
	RequireEmail          *FlexBool `json:"requireEmail"`
	EstimatedTime         string    `json:"estimatedTime,omitempty"`
	ConfidentialityNotice string    `json:"confidentialityNotice,omitempty"`
	ReviewPeriod          string    `json:"reviewPeriod,omitempty"`
}

// EmailRequired reports whether a respondent email must be collected.
// Absent means required.
func (s Settings) EmailRequired() bool {
	return s.RequireEmail == nil || bool(*s.RequireEmail)
}

// NameRequired reports whether a respondent name must be collected.
func (s Settings) NameRequired() bool {
	return !bool(s.AllowAnonymous)
}

// Form is a questionnaire definition, immutable for the duration of a
// session once fetched.
type Form struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Instructions   string    `json:"instructions,omitempty"`
	WelcomeMessage string    `json:"welcome_message,omitempty"`
	ClosingMessage string    `json:"closing_message,omitempty"`
	Settings       Settings  `json:"settings"`
	Sections       []Section `json:"sections"`
}

// SortSections orders sections and their questions by position.
func (f *Form) SortSections() {
	sort.SliceStable(f.Sections, func(i, j int) bool {
		return f.Sections[i].Position < f.Sections[j].Position
	})
	for i := range f.Sections {
		qs := f.Sections[i].Questions
		sort.SliceStable(qs, func(a, b int) bool {
			return qs[a].Position < qs[b].Position
		})
	}
}

// Questions returns every question across all sections in display order.
func (f *Form) Questions() []Question {
	var out []Question
	for _, s := range f.Sections {
		out = append(out, s.Questions...)
	}
	return out
}

// Question finds a question by id.
func (f *Form) Question(id string) *Question {
	for si := range f.Sections {
		for qi := range f.Sections[si].Questions {
			if f.Sections[si].Questions[qi].ID == id {
				return &f.Sections[si].Questions[qi]
			}
		}
	}
	return nil
}
