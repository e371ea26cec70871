package answer

import (
	"context"
	"fmt"
	"log"

	"doc-qa-be/pkg/llm"
	"doc-qa-be/pkg/retriever"
)

const (
	// NoResultAnswer is returned when retrieval found nothing at all.
	NoResultAnswer = "No relevant content was found in the uploaded documents for this question."

	// LowConfidenceTip is appended when only below-threshold sources exist.
	LowConfidenceTip = "\n\n(Note: no strongly matching content was found, so this answer may not address your question.)"
)

// Generator produces answers from retrieved chunks, through the LLM when
// one is configured and extractively otherwise.
type Generator struct {
	provider llm.LLMProvider
}

func NewGenerator(provider llm.LLMProvider) *Generator {
	return &Generator{provider: provider}
}

// Generate returns a blocking answer. LLM failures degrade to the
// extractive answer instead of surfacing an error to the caller.
func (g *Generator) Generate(ctx context.Context, question string, res *retriever.Result) (string, error) {
	if res.Quality == retriever.QualityNone || len(res.Hits) == 0 {
		return NoResultAnswer, nil
	}

	if g.provider == nil {
		return g.Extractive(res), nil
	}

	messages := BuildMessages(question, res.Hits)
	text, err := g.provider.Chat(ctx, messages)
	if err != nil {
		log.Printf("[WARN] LLM answer failed, falling back to extractive: %v", err)
		return g.Extractive(res), nil
	}

	if res.Quality == retriever.QualityLow {
		text += LowConfidenceTip
	}
	return text, nil
}

// Stream produces the answer incrementally. onContent receives the
// cumulative text after every fragment. A provider that cannot stream, or
// a mid-stream failure, falls back to the extractive answer delivered as a
// single cumulative update.
func (g *Generator) Stream(ctx context.Context, question string, res *retriever.Result, onContent func(cumulative string) error) (string, error) {
	if res.Quality == retriever.QualityNone || len(res.Hits) == 0 {
		if err := onContent(NoResultAnswer); err != nil {
			return "", err
		}
		return NoResultAnswer, nil
	}

	streamer, ok := g.provider.(llm.StreamingLLMProvider)
	if g.provider == nil || !ok {
		text := g.Extractive(res)
		if err := onContent(text); err != nil {
			return "", err
		}
		return text, nil
	}

	var cumulative string
	full, err := streamer.ChatStream(ctx, BuildMessages(question, res.Hits), func(delta string) error {
		cumulative += delta
		return onContent(cumulative)
	})
	if err != nil {
		if ctx.Err() != nil {
			return cumulative, ctx.Err() // client gone, nothing to fall back to
		}
		log.Printf("[WARN] LLM stream failed, falling back to extractive: %v", err)
		text := g.Extractive(res)
		if cbErr := onContent(text); cbErr != nil {
			return cumulative, cbErr
		}
		return text, nil
	}

	if res.Quality == retriever.QualityLow {
		full += LowConfidenceTip
		if err := onContent(full); err != nil {
			return full, err
		}
	}
	return full, nil
}

// Extractive builds the fallback answer from the best chunk.
func (g *Generator) Extractive(res *retriever.Result) string {
	if len(res.Hits) == 0 {
		return NoResultAnswer
	}

	best := res.Hits[0]
	text := fmt.Sprintf("From document %q:\n\n%s", best.Source, best.Content)
	if res.Quality == retriever.QualityLow {
		text += LowConfidenceTip
	}
	return text
}
