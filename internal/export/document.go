// Package export builds the printable form of a finalized quiz.
// Page layout and PDF encoding are left to whatever consumes the Document.
package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"ai-teacher/internal/domain"
)

const (
	answerLine = "Answer: ____________________________________________________"
	blankLine  = "____________________________________________________________"
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Item is one question block of the document.
type Item struct {
	Heading     string   `json:"heading"`
	Marks       string   `json:"marks"`
	Options     []string `json:"options,omitempty"`
	AnswerLines []string `json:"answer_lines,omitempty"`
}

// Document is the structured content handed to a document generator.
type Document struct {
	Title    string   `json:"title"`
	Metadata []string `json:"metadata"`
	Items    []Item   `json:"items"`
}

// Build lays out quiz for printing. Choice questions list lettered options;
// open questions get two blank answer lines.
func Build(quiz *domain.Quiz) Document {
	doc := Document{
		Title: "Quiz: " + quiz.Topic,
		Metadata: []string{
			"Difficulty: " + quiz.Difficulty.Label(),
			fmt.Sprintf("Questions: %d", len(quiz.Questions)),
			fmt.Sprintf("Total Marks: %d", quiz.TotalMarks),
		},
		Items: make([]Item, 0, len(quiz.Questions)),
	}
	for i, q := range quiz.Questions {
		item := Item{
			Heading: fmt.Sprintf("Question %d: %s", i+1, q.Text),
			Marks:   fmt.Sprintf("[%d Marks]", q.Marks),
		}
		if q.Kind.IsChoice() {
			for j, opt := range q.Options {
				item.Options = append(item.Options, fmt.Sprintf("%c. %s", 'A'+j, opt))
			}
		} else {
			item.AnswerLines = []string{answerLine, blankLine}
		}
		doc.Items = append(doc.Items, item)
	}
	return doc
}

// FileName returns Quiz_<topic>_<unix millis>.pdf with non-alphanumerics replaced by '_'.
func FileName(topic string, at time.Time) string {
	return fmt.Sprintf("Quiz_%s_%d.pdf", unsafeFileChars.ReplaceAllString(topic, "_"), at.UnixMilli())
}

// WriteText renders doc as plain text.
func WriteText(w io.Writer, doc Document) error {
	var b strings.Builder
	b.WriteString(doc.Title)
	b.WriteString("\n\n")
	for _, m := range doc.Metadata {
		b.WriteString(m)
		b.WriteByte('\n')
	}
	for _, item := range doc.Items {
		b.WriteByte('\n')
		b.WriteString(item.Heading)
		b.WriteByte('\n')
		b.WriteString(item.Marks)
		b.WriteByte('\n')
		for _, o := range item.Options {
			b.WriteString("  ")
			b.WriteString(o)
			b.WriteByte('\n')
		}
		for _, l := range item.AnswerLines {
			b.WriteString("  ")
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
