package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"doc-qa-be/pkg/llm"
	"doc-qa-be/pkg/retriever"
	"doc-qa-be/pkg/vectorstore"
)

type fakeLLM struct {
	reply   string
	chatErr error
	// deltas emitted by ChatStream; failAfter > 0 errors after that many
	deltas    []string
	failAfter int
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.reply, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, nil)
}

func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, onDelta func(string) error, options ...llm.Option) (string, error) {
	var full strings.Builder
	for i, d := range f.deltas {
		if f.failAfter > 0 && i >= f.failAfter {
			return full.String(), errors.New("stream broke")
		}
		full.WriteString(d)
		if err := onDelta(d); err != nil {
			return full.String(), err
		}
	}
	return full.String(), nil
}

func highResult() *retriever.Result {
	return &retriever.Result{
		Quality: retriever.QualityHigh,
		Hits: []*vectorstore.SearchHit{
			{Source: "report.pdf", Content: "Revenue grew 12% in Q3.", Similarity: 0.91},
			{Source: "notes.txt", Content: "Q3 targets were exceeded.", Similarity: 0.82},
		},
	}
}

func lowResult() *retriever.Result {
	return &retriever.Result{
		Quality: retriever.QualityLow,
		Hits: []*vectorstore.SearchHit{
			{Source: "misc.txt", Content: "Unrelated trivia.", Similarity: 0.3},
		},
	}
}

func TestGenerateWithLLM(t *testing.T) {
	g := NewGenerator(&fakeLLM{reply: "Revenue grew 12%."})

	got, err := g.Generate(context.Background(), "How did revenue do?", highResult())
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if got != "Revenue grew 12%." {
		t.Errorf("Generate() = %q", got)
	}
}

func TestGenerateFallsBackOnLLMError(t *testing.T) {
	g := NewGenerator(&fakeLLM{chatErr: errors.New("model offline")})

	got, err := g.Generate(context.Background(), "q", highResult())
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !strings.Contains(got, "report.pdf") || !strings.Contains(got, "Revenue grew 12% in Q3.") {
		t.Errorf("fallback should quote the best chunk, got %q", got)
	}
}

func TestGenerateWithoutProvider(t *testing.T) {
	g := NewGenerator(nil)

	got, err := g.Generate(context.Background(), "q", highResult())
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !strings.Contains(got, "report.pdf") {
		t.Errorf("expected extractive answer, got %q", got)
	}
}

func TestGenerateNoResults(t *testing.T) {
	g := NewGenerator(&fakeLLM{reply: "should not be used"})

	got, err := g.Generate(context.Background(), "q", &retriever.Result{Quality: retriever.QualityNone})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if got != NoResultAnswer {
		t.Errorf("Generate() = %q, want NoResultAnswer", got)
	}
}

func TestGenerateLowConfidenceTip(t *testing.T) {
	g := NewGenerator(&fakeLLM{reply: "Some answer."})

	got, err := g.Generate(context.Background(), "q", lowResult())
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !strings.HasSuffix(got, LowConfidenceTip) {
		t.Errorf("low-quality answer should carry the tip, got %q", got)
	}
}

func TestStreamCumulativeContent(t *testing.T) {
	g := NewGenerator(&fakeLLM{deltas: []string{"Rev", "enue ", "grew."}})

	var updates []string
	full, err := g.Stream(context.Background(), "q", highResult(), func(cumulative string) error {
		updates = append(updates, cumulative)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream() error: %v", err)
	}
	if full != "Revenue grew." {
		t.Errorf("full = %q", full)
	}
	want := []string{"Rev", "Revenue ", "Revenue grew."}
	if len(updates) != len(want) {
		t.Fatalf("got %d updates, want %d", len(updates), len(want))
	}
	for i := range want {
		if updates[i] != want[i] {
			t.Errorf("updates[%d] = %q, want %q", i, updates[i], want[i])
		}
	}
}

func TestStreamFallsBackMidStream(t *testing.T) {
	g := NewGenerator(&fakeLLM{deltas: []string{"Par", "tial"}, failAfter: 1})

	var last string
	full, err := g.Stream(context.Background(), "q", highResult(), func(cumulative string) error {
		last = cumulative
		return nil
	})
	if err != nil {
		t.Fatalf("Stream() error: %v", err)
	}
	if !strings.Contains(full, "report.pdf") {
		t.Errorf("expected extractive fallback, got %q", full)
	}
	if last != full {
		t.Errorf("final update %q should match returned answer %q", last, full)
	}
}

func TestStreamNonStreamingProvider(t *testing.T) {
	// fakeLLM implements streaming, so wrap it to hide ChatStream.
	g := NewGenerator(struct{ llm.LLMProvider }{&fakeLLM{reply: "x"}})

	var got string
	_, err := g.Stream(context.Background(), "q", highResult(), func(cumulative string) error {
		got = cumulative
		return nil
	})
	if err != nil {
		t.Fatalf("Stream() error: %v", err)
	}
	if !strings.Contains(got, "report.pdf") {
		t.Errorf("expected single extractive update, got %q", got)
	}
}
