package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTopicConfig() QuizConfig {
	return QuizConfig{
		Topic:            "Neural Networks",
		Difficulty:       Beginner,
		RequiredCount:    5,
		TotalMarks:       10,
		MarksPerQuestion: 2,
	}
}

func TestQuizConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *QuizConfig)
		wantErr string
	}{
		{"valid topic config", func(c *QuizConfig) {}, ""},
		{"marks mismatch", func(c *QuizConfig) { c.TotalMarks = 12 }, "2 × 5 = 10, entered 12"},
		{"zero questions", func(c *QuizConfig) { c.RequiredCount = 0; c.TotalMarks = 0 }, "at least 1"},
		{"zero marks per question", func(c *QuizConfig) { c.MarksPerQuestion = 0; c.TotalMarks = 0 }, "marks per question must be at least 1"},
		{"pool over backend limit", func(c *QuizConfig) { c.RequiredCount = 26; c.TotalMarks = 52 }, "at most 25"},
		{"pool at backend limit", func(c *QuizConfig) { c.RequiredCount = 25; c.TotalMarks = 50 }, ""},
		{"blank topic", func(c *QuizConfig) { c.Topic = "   " }, "AI topic"},
		{"bad difficulty", func(c *QuizConfig) { c.Difficulty = "expert" }, "invalid difficulty"},
		{"empty pdf", func(c *QuizConfig) { c.Topic = ""; c.PDF = &PDFSource{Filename: "notes.pdf"} }, "upload a PDF"},
		{"pdf without topic", func(c *QuizConfig) { c.Topic = ""; c.PDF = &PDFSource{Filename: "notes.pdf", Content: []byte("%PDF")} }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTopicConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsCode(err, CodeValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestQuizConfig_MarksMismatchContext(t *testing.T) {
	cfg := validTopicConfig()
	cfg.TotalMarks = 7

	err := cfg.Validate()
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 10, de.Context["calculated_total"])
	assert.Equal(t, 7, de.Context["total_marks"])
}

func TestQuizConfig_PoolSize(t *testing.T) {
	cfg := validTopicConfig()
	assert.Equal(t, 10, cfg.PoolSize())
	assert.False(t, cfg.IsPDF())
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty("  ADVANCED ")
	require.NoError(t, err)
	assert.Equal(t, Advanced, d)
	assert.Equal(t, "Advanced", d.Label())

	_, err = ParseDifficulty("hard")
	assert.True(t, IsCode(err, CodeValidation))
}

func TestParseQuestionKind(t *testing.T) {
	assert.Equal(t, MultipleChoice, ParseQuestionKind("Multiple_Choice"))
	assert.Equal(t, TrueFalse, ParseQuestionKind("true_false"))
	assert.Equal(t, Essay, ParseQuestionKind("essay"))
	assert.Equal(t, ShortAnswer, ParseQuestionKind(""))
	assert.Equal(t, ShortAnswer, ParseQuestionKind("fill_in"))
}

func TestQuestion_Normalize(t *testing.T) {
	idx := 2
	q := Question{ID: 1, Text: "q", Kind: "short_answer", Marks: 9, Options: []string{"a"}, CorrectAnswerIndex: &idx}
	n := q.Normalize(3)
	assert.Equal(t, 3, n.Marks)
	assert.Nil(t, n.Options)
	assert.Nil(t, n.CorrectAnswerIndex)

	mc := Question{ID: 2, Kind: MultipleChoice, Options: []string{"a", "b"}, CorrectAnswerIndex: &idx}.Normalize(1)
	assert.Equal(t, []string{"a", "b"}, mc.Options)
	assert.Equal(t, 2, *mc.CorrectAnswerIndex)
}

func TestIsAITopic(t *testing.T) {
	assert.True(t, IsAITopic("Intro to Machine Learning"))
	assert.True(t, IsAITopic("GPT prompting"))
	assert.False(t, IsAITopic("Baroque music"))
}

func TestAnswer_Value(t *testing.T) {
	assert.Equal(t, "2", OptionAnswer(2).Value())
	assert.Equal(t, "backprop", TextAnswer("  backprop \n").Value())
	assert.Equal(t, "", Answer{}.Value())
}
