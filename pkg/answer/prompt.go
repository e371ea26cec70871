package answer

import (
	"fmt"
	"strings"

	"doc-qa-be/pkg/llm"
	"doc-qa-be/pkg/vectorstore"
)

const systemPrompt = `You are a document question-answering assistant.
Answer the user's question using ONLY the provided document excerpts.
Rules:
- Base every statement on the excerpts. Do not use outside knowledge.
- If the excerpts do not contain the answer, say that the uploaded documents do not cover it.
- Answer in the same language as the question.
- Be concise and cite the document name when it helps.`

// BuildMessages assembles the chat history for the LLM: system rules, the
// context block of retrieved excerpts, and the user question.
func BuildMessages(question string, hits []*vectorstore.SearchHit) []llm.Message {
	var ctxBlock strings.Builder
	for i, h := range hits {
		ctxBlock.WriteString(fmt.Sprintf("[%d] Document: %s\n%s\n\n", i+1, h.Source, h.Content))
	}

	userContent := fmt.Sprintf("Document excerpts:\n\n%sQuestion: %s", ctxBlock.String(), question)

	return []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userContent},
	}
}
