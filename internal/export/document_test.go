package export

import (
	"bytes"
	"testing"
	"time"

	"ai-teacher/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuiz() *domain.Quiz {
	idx := 1
	return &domain.Quiz{
		ID:         "01HZXQ",
		Topic:      "Neural Networks",
		Difficulty: domain.Intermediate,
		TotalMarks: 4,
		Questions: []domain.Question{
			{ID: 3, Text: "Which activation is linear?", Kind: domain.MultipleChoice, Marks: 2,
				Options: []string{"ReLU", "Identity", "Sigmoid", "Tanh"}, CorrectAnswerIndex: &idx},
			{ID: 7, Text: "Explain backpropagation.", Kind: domain.ShortAnswer, Marks: 2},
		},
	}
}

func TestBuild(t *testing.T) {
	doc := Build(sampleQuiz())

	assert.Equal(t, "Quiz: Neural Networks", doc.Title)
	assert.Equal(t, []string{"Difficulty: Intermediate", "Questions: 2", "Total Marks: 4"}, doc.Metadata)
	require.Len(t, doc.Items, 2)

	assert.Equal(t, "Question 1: Which activation is linear?", doc.Items[0].Heading)
	assert.Equal(t, "[2 Marks]", doc.Items[0].Marks)
	assert.Equal(t, []string{"A. ReLU", "B. Identity", "C. Sigmoid", "D. Tanh"}, doc.Items[0].Options)
	assert.Empty(t, doc.Items[0].AnswerLines)

	assert.Equal(t, "Question 2: Explain backpropagation.", doc.Items[1].Heading)
	assert.Equal(t, []string{answerLine, blankLine}, doc.Items[1].AnswerLines)
	assert.Empty(t, doc.Items[1].Options)
}

func TestFileName(t *testing.T) {
	at := time.UnixMilli(1717000000123)
	assert.Equal(t, "Quiz_Neural_Networks__CNNs__1717000000123.pdf", FileName("Neural Networks (CNNs)", at))
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, Build(sampleQuiz())))

	out := buf.String()
	assert.Contains(t, out, "Quiz: Neural Networks\n\nDifficulty: Intermediate\n")
	assert.Contains(t, out, "  B. Identity\n")
	assert.Contains(t, out, "  "+answerLine+"\n")
}
