package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formflow/internal/model"
	"formflow/internal/store"
)

func wireForm() *model.Form {
	return &model.Form{
		ID: "f1",
		Sections: []model.Section{
			{ID: "s1", Position: 1, Questions: []model.Question{
				{ID: "lk", Position: 1, Type: model.QuestionLikert, Features: model.Features{AllowComment: true}},
				{ID: "tx", Position: 2, Type: model.QuestionText},
				{ID: "mc", Position: 3, Type: model.QuestionMultipleChoice, Features: model.Features{Options: []string{"x", "y"}, AllowComment: true}},
				{ID: "cb", Position: 4, Type: model.QuestionCheckbox, Features: model.Features{Options: []string{"a", "b"}}},
				{ID: "dd", Position: 5, Type: model.QuestionDropdown, Features: model.Features{Options: []string{"p", "q"}}},
				{ID: "rt", Position: 6, Type: model.QuestionRating, Features: model.Features{AllowComment: true}},
				{ID: "nm", Position: 7, Type: model.QuestionNumber},
				{ID: "dt", Position: 8, Type: model.QuestionDateTime},
			}},
		},
	}
}

func TestSerializeEmptyStore(t *testing.T) {
	f := wireForm()
	st := store.New()
	st.Initialize(f.Questions())

	assert.Empty(t, Serialize(f, st), "seeded but untouched answers stay off the wire")
}

func TestSerializeCommentFolding(t *testing.T) {
	f := wireForm()
	st := store.New()
	st.Initialize(f.Questions())

	require.NoError(t, st.SetLikert("lk", 4))
	require.NoError(t, st.SetComment("lk", "fine"))

	out := Serialize(f, st)
	require.Len(t, out, 1)
	assert.Equal(t, "lk", out[0].QuestionID)
	assert.Equal(t, model.RatingValue{Rating: 4, Comment: "fine"}, out[0].Value)

	// Without a comment the value collapses to the bare scalar.
	require.NoError(t, st.SetComment("lk", ""))
	out = Serialize(f, st)
	require.Len(t, out, 1)
	assert.Equal(t, 4, out[0].Value)
}

func TestSerializeSelectionFolding(t *testing.T) {
	f := wireForm()
	st := store.New()
	st.Initialize(f.Questions())

	require.NoError(t, st.SetSelection("mc", "y"))
	require.NoError(t, st.SetComment("mc", "picked y"))

	out := Serialize(f, st)
	require.Len(t, out, 1)
	assert.Equal(t, model.SelectionValue{Selection: "y", Comment: "picked y"}, out[0].Value)
}

func TestSerializeRatingFoldsAsRating(t *testing.T) {
	f := wireForm()
	st := store.New()
	st.Initialize(f.Questions())

	require.NoError(t, st.SetNumber("rt", 3))
	require.NoError(t, st.SetComment("rt", "meh"))

	out := Serialize(f, st)
	require.Len(t, out, 1)
	assert.Equal(t, model.RatingValue{Rating: 3, Comment: "meh"}, out[0].Value)

	require.NoError(t, st.SetComment("rt", ""))
	out = Serialize(f, st)
	assert.Equal(t, 3.0, out[0].Value)
}

func TestSerializeBareValues(t *testing.T) {
	f := wireForm()
	st := store.New()
	st.Initialize(f.Questions())

	require.NoError(t, st.SetText("tx", "hello"))
	require.NoError(t, st.SetSelections("cb", []string{"a", "b"}))
	require.NoError(t, st.SetSelection("dd", "q"))
	require.NoError(t, st.SetNumber("nm", 0))
	require.NoError(t, st.SetDateTime("dt", "2026-03-01T10:00:00Z"))

	out := Serialize(f, st)
	require.Len(t, out, 5)

	byID := map[string]any{}
	for _, wa := range out {
		byID[wa.QuestionID] = wa.Value
	}
	assert.Equal(t, "hello", byID["tx"])
	assert.Equal(t, []string{"a", "b"}, byID["cb"])
	assert.Equal(t, "q", byID["dd"], "dropdown never folds a comment")
	assert.Equal(t, 0.0, byID["nm"], "zero is a real numeric answer")
	assert.Equal(t, "2026-03-01T10:00:00Z", byID["dt"])
}

func TestSerializeWireJSONShape(t *testing.T) {
	f := wireForm()
	st := store.New()
	st.Initialize(f.Questions())

	require.NoError(t, st.SetLikert("lk", 5))
	require.NoError(t, st.SetComment("lk", "great"))

	data, err := json.Marshal(Serialize(f, st))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"question_id":"lk","value":{"rating":5,"comment":"great"}}]`, string(data))
}
