// Package prompt renders a question and its retrieved documents into the
// chat prompt sent to the language model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// template instructs the model to answer from the supplied context only.
// The first placeholder is the question, the second the context blocks.
const template = `You're a question answering assistant. Answer the QUESTION based on the CONTEXT from the knowledge base.
Use only the facts from the CONTEXT when answering the QUESTION.

QUESTION: %s

CONTEXT:
%s`

// blockFormat renders one retrieved document. The text field is labeled
// "answer" in the prompt because that is what it is to the model.
const blockFormat = "section: %s\nquestion: %s\nanswer: %s\n\n"

// Build renders the prompt for question over docs, in ranked order. Every
// document must carry non-empty section, question, and text fields; a gap
// fails with models.ErrMissingField naming the document and field. An empty
// docs list produces a prompt with an empty context.
func Build(question string, docs []*models.Document) (string, error) {
	var context strings.Builder
	for i, doc := range docs {
		for _, field := range []string{models.FieldSection, models.FieldQuestion, models.FieldText} {
			if v, _ := doc.Field(field); v == "" {
				return "", fmt.Errorf("%w: document %d has no %s", models.ErrMissingField, i, field)
			}
		}
		fmt.Fprintf(&context, blockFormat, doc.Section, doc.Question, doc.Text)
	}
	return strings.TrimSpace(fmt.Sprintf(template, question, context.String())), nil
}
