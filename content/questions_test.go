package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validQuestion = `{"id": "1", "question": "Q?", "options": ["A", "B", "C", "D"], "correct": 0, "explanation": "Because."}`

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare array", `[1, 2, 3]`, `[1, 2, 3]`},
		{"markdown fence", "```json\n[1, 2]\n```", `[1, 2]`},
		{"fence without lang", "```\n[1]\n```", `[1]`},
		{"surrounding prose", "Sure! Here you go: [1, 2] enjoy", `[1, 2]`},
		{"trailing comma", `[{"a": 1,},]`, `[{"a": 1}]`},
		{"no array", "no json here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONArray(tt.input))
		})
	}
}

func TestParseQuestionsDropsInvalidEntries(t *testing.T) {
	response := `[
		` + validQuestion + `,
		{"id": "2", "question": "", "options": ["A", "B", "C", "D"], "correct": 0},
		{"id": "3", "question": "Three options?", "options": ["A", "B", "C"], "correct": 0},
		{"id": "4", "question": "Bad index?", "options": ["A", "B", "C", "D"], "correct": 7}
	]`
	questions, err := ParseQuestions(response)
	require.NoError(t, err)
	require.Len(t, questions, 3, "one valid entry plus padding to the minimum")
	assert.Equal(t, "Q?", questions[0].Prompt)
	assert.Equal(t, "What is an important concept to remember?", questions[1].Prompt)
	for _, q := range questions {
		assert.True(t, q.Valid())
	}
}

func TestParseQuestionsTrimsToFive(t *testing.T) {
	response := `[` + validQuestion + `,` + validQuestion + `,` + validQuestion + `,` +
		validQuestion + `,` + validQuestion + `,` + validQuestion + `]`
	questions, err := ParseQuestions(response)
	require.NoError(t, err)
	assert.Len(t, questions, 5)
}

func TestParseQuestionsFillsDefaults(t *testing.T) {
	response := `[
		{"question": "Q1?", "options": ["A", "B", "C", "D"], "correct": 0},
		{"question": "Q2?", "options": ["A", "B", "C", "D"], "correct": 1},
		{"question": "Q3?", "options": ["A", "B", "C", "D"], "correct": 2}
	]`
	questions, err := ParseQuestions(response)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, "1", questions[0].ID)
	assert.Equal(t, "No explanation provided.", questions[0].Explanation)
}

func TestParseQuestionsErrors(t *testing.T) {
	_, err := ParseQuestions("not json at all")
	assert.Error(t, err)

	_, err = ParseQuestions(`["broken`)
	assert.Error(t, err)
}
