package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexBoolDecoding(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"true", `true`, true},
		{"false", `false`, false},
		{"one", `1`, true},
		{"zero", `0`, false},
		{"null", `null`, false},
		{"other number", `2`, true},
		{"garbage reads false", `"yes"`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var b FlexBool
			require.NoError(t, json.Unmarshal([]byte(tc.in), &b))
			assert.Equal(t, tc.want, bool(b))
		})
	}
}

func TestQuestionFeatureDecoding(t *testing.T) {
	raw := `{
		"id": "q1",
		"title": "How satisfied are you?",
		"position": 1,
		"type": "likert",
		"features": {"required": 1, "allowComment": true}
	}`

	var q Question
	require.NoError(t, json.Unmarshal([]byte(raw), &q))
	assert.True(t, q.Required())
	assert.True(t, q.AllowComment())
}

func TestQuestionMissingFeatures(t *testing.T) {
	raw := `{"id": "q1", "title": "Anything else?", "position": 1, "type": "textarea"}`

	var q Question
	require.NoError(t, json.Unmarshal([]byte(raw), &q))
	assert.False(t, q.Required())
	assert.False(t, q.AllowComment())
	assert.Nil(t, q.Features.CharLimit)
}

func TestSettingsEmailRequiredDefault(t *testing.T) {
	var s Settings
	require.NoError(t, json.Unmarshal([]byte(`{}`), &s))
	assert.True(t, s.EmailRequired(), "absent requireEmail means required")
	assert.True(t, s.NameRequired())

	require.NoError(t, json.Unmarshal([]byte(`{"requireEmail": 0, "allowAnonymous": 1}`), &s))
	assert.False(t, s.EmailRequired())
	assert.False(t, s.NameRequired())
}

func TestTypeNormalizeAndCommentSupport(t *testing.T) {
	assert.Equal(t, QuestionLikert, QuestionType("").Normalize())
	assert.True(t, QuestionRating.SupportsComment())
	assert.True(t, QuestionYesNo.SupportsComment())
	assert.False(t, QuestionDropdown.SupportsComment())
	assert.False(t, QuestionCheckbox.SupportsComment())
}

func TestFormSortSections(t *testing.T) {
	form := Form{
		Sections: []Section{
			{ID: "s2", Position: 2, Questions: []Question{
				{ID: "q3", Position: 2},
				{ID: "q2", Position: 1},
			}},
			{ID: "s1", Position: 1, Questions: []Question{{ID: "q1", Position: 1}}},
		},
	}
	form.SortSections()

	require.Equal(t, "s1", form.Sections[0].ID)
	require.Equal(t, "s2", form.Sections[1].ID)
	assert.Equal(t, "q2", form.Sections[1].Questions[0].ID)

	qs := form.Questions()
	require.Len(t, qs, 3)
	assert.Equal(t, []string{"q1", "q2", "q3"}, []string{qs[0].ID, qs[1].ID, qs[2].ID})
	assert.Equal(t, "q3", form.Question("q3").ID)
	assert.Nil(t, form.Question("missing"))
}

func TestAnswerPresent(t *testing.T) {
	four := 4
	zero := 0.0
	empty := ""
	blank := "   "
	iso := "2026-03-01T10:00:00Z"
	text := "fine"

	cases := []struct {
		name string
		t    QuestionType
		a    Answer
		want bool
	}{
		{"likert set", QuestionLikert, Answer{Likert: &four}, true},
		{"likert absent", QuestionLikert, Answer{}, false},
		{"text blank", QuestionText, Answer{Text: &blank}, false},
		{"text empty", QuestionTextarea, Answer{Text: &empty}, false},
		{"text set", QuestionText, Answer{Text: &text}, true},
		{"selection absent", QuestionYesNo, Answer{}, false},
		{"selection set", QuestionDropdown, Answer{Selected: &text}, true},
		{"checkbox empty", QuestionCheckbox, Answer{Selections: []string{}}, false},
		{"checkbox set", QuestionCheckbox, Answer{Selections: []string{"a"}}, true},
		{"number zero counts", QuestionNumber, Answer{Number: &zero}, true},
		{"rating absent", QuestionRating, Answer{}, false},
		{"datetime set", QuestionDateTime, Answer{DateTime: &iso}, true},
		{"datetime empty", QuestionDateTime, Answer{DateTime: &empty}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := tc.a
			assert.Equal(t, tc.want, a.Present(tc.t))
		})
	}
}
