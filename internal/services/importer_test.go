package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuestionBlock_MCQ(t *testing.T) {
	text := `Q: What is 2+2?
A) 1
B) 2
C) 3
D) 4 *`

	questions, err := ParseQuestionBlock(text)
	require.NoError(t, err)
	require.Len(t, questions, 1)

	q := questions[0]
	assert.Equal(t, "MCQ", q.Type)
	assert.Equal(t, "What is 2+2?", q.Text)
	require.Len(t, q.Options, 4)
	assert.Equal(t, "D", q.Options[3].Label)
	assert.Equal(t, "4", q.Options[3].Text)
	assert.True(t, q.Options[3].Correct)
	assert.False(t, q.Options[0].Correct)

	label := q.CorrectLabel()
	require.NotNil(t, label)
	assert.Equal(t, "D", *label)
}

func TestParseQuestionBlock_MultipleEntries(t *testing.T) {
	text := `Q: First question?
A) yes *
B) no

Q: Second question?
TEXT: forty two

Q: Third question, open ended?
`

	questions, err := ParseQuestionBlock(text)
	require.NoError(t, err)
	require.Len(t, questions, 3)

	assert.Equal(t, "MCQ", questions[0].Type)
	assert.Len(t, questions[0].Options, 2)

	assert.Equal(t, "TEXT", questions[1].Type)
	require.NotNil(t, questions[1].CorrectText)
	assert.Equal(t, "forty two", *questions[1].CorrectText)
	assert.False(t, questions[1].AllowCustom)

	assert.Equal(t, "TEXT", questions[2].Type)
	assert.Nil(t, questions[2].CorrectText)
	assert.True(t, questions[2].AllowCustom)
}

func TestParseQuestionBlock_MultilineQuestionText(t *testing.T) {
	text := `Q: Read the following snippet
and explain what it prints.
TEXT: hello`

	questions, err := ParseQuestionBlock(text)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Read the following snippet\nand explain what it prints.", questions[0].Text)
}

func TestParseQuestionBlock_EmptyTextMarkerAllowsCustom(t *testing.T) {
	text := `Q: Anything on your mind?
TEXT:`

	questions, err := ParseQuestionBlock(text)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Nil(t, questions[0].CorrectText)
	assert.True(t, questions[0].AllowCustom)
}

func TestParseQuestionBlock_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "option before question", text: "A) orphan option"},
		{name: "empty question text", text: "Q:"},
		{name: "loose text before question", text: "hello there"},
		{name: "empty option text", text: "Q: ok?\nA)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuestionBlock(tt.text)
			assert.ErrorIs(t, err, ErrImportMalformed)
		})
	}
}

func TestParseQuestionBlock_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n\n"} {
		_, err := ParseQuestionBlock(text)
		assert.True(t, errors.Is(err, ErrImportEmpty), "expected ErrImportEmpty for %q, got %v", text, err)
	}
}
