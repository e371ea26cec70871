package retriever

import (
	"testing"

	"doc-qa-be/pkg/vectorstore"
)

func hit(sim float64, content string) *vectorstore.SearchHit {
	return &vectorstore.SearchHit{Content: content, Similarity: sim}
}

func TestOverfetchLimit(t *testing.T) {
	tests := []struct {
		topK int
		want int
	}{
		{5, 20},
		{6, 20},
		{7, 21},
		{10, 30},
		{20, 60},
		{1, 20},
	}

	for _, tt := range tests {
		if got := OverfetchLimit(tt.topK); got != tt.want {
			t.Errorf("OverfetchLimit(%d) = %d, want %d", tt.topK, got, tt.want)
		}
	}
}

func TestSelectHitsAboveThreshold(t *testing.T) {
	candidates := []*vectorstore.SearchHit{
		hit(0.4, "d"),
		hit(0.9, "a"),
		hit(0.75, "b"),
		hit(0.71, "c"),
	}

	p := DefaultParams()
	p.TopK = 2
	p.UseMMR = false
	res := SelectHits(candidates, p)

	if res.Quality != QualityHigh {
		t.Errorf("Quality = %s, want high", res.Quality)
	}
	if len(res.Hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(res.Hits))
	}
	if res.Hits[0].Content != "a" || res.Hits[1].Content != "b" {
		t.Errorf("unexpected order: %s, %s", res.Hits[0].Content, res.Hits[1].Content)
	}
	if res.AboveThreshold != 3 {
		t.Errorf("AboveThreshold = %d, want 3", res.AboveThreshold)
	}
	if res.TotalFound != 4 {
		t.Errorf("TotalFound = %d, want 4", res.TotalFound)
	}
}

func TestSelectHitsDegradesBelowThreshold(t *testing.T) {
	candidates := []*vectorstore.SearchHit{
		hit(0.5, "a"),
		hit(0.45, "b"),
		hit(0.3, "c"),
		hit(0.2, "d"),
	}

	p := DefaultParams()
	p.UseMMR = false
	res := SelectHits(candidates, p)

	if res.Quality != QualityLow {
		t.Errorf("Quality = %s, want low", res.Quality)
	}
	if len(res.Hits) != DegradedResultLimit {
		t.Fatalf("got %d hits, want %d", len(res.Hits), DegradedResultLimit)
	}
	if res.Hits[0].Content != "a" {
		t.Errorf("best hit = %s, want a", res.Hits[0].Content)
	}
	if res.AboveThreshold != 0 {
		t.Errorf("AboveThreshold = %d, want 0", res.AboveThreshold)
	}
}

func TestSelectHitsEmpty(t *testing.T) {
	res := SelectHits(nil, DefaultParams())

	if res.Quality != QualityNone {
		t.Errorf("Quality = %s, want none", res.Quality)
	}
	if len(res.Hits) != 0 {
		t.Errorf("got %d hits, want 0", len(res.Hits))
	}
}

func TestSelectHitsWithoutThreshold(t *testing.T) {
	candidates := []*vectorstore.SearchHit{
		hit(0.2, "b"),
		hit(0.5, "a"),
	}

	p := DefaultParams()
	p.UseThreshold = false
	p.UseMMR = false
	res := SelectHits(candidates, p)

	if len(res.Hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(res.Hits))
	}
	if res.Hits[0].Content != "a" {
		t.Errorf("first hit = %s, want a", res.Hits[0].Content)
	}
	if res.Quality != QualityLow {
		t.Errorf("Quality = %s, want low when nothing clears the threshold", res.Quality)
	}
}

func TestSelectHitsWithoutThresholdQualityHigh(t *testing.T) {
	candidates := []*vectorstore.SearchHit{
		hit(0.9, "a"),
		hit(0.2, "b"),
	}

	p := DefaultParams()
	p.UseThreshold = false
	p.UseMMR = false
	res := SelectHits(candidates, p)

	if res.Quality != QualityHigh {
		t.Errorf("Quality = %s, want high", res.Quality)
	}
	if res.AboveThreshold != 1 {
		t.Errorf("AboveThreshold = %d, want 1", res.AboveThreshold)
	}
}

func TestSelectHitsCapsTopK(t *testing.T) {
	var candidates []*vectorstore.SearchHit
	for i := 0; i < 50; i++ {
		candidates = append(candidates, hit(0.9, "x"))
	}

	p := DefaultParams()
	p.TopK = 100 // above the cap
	p.UseMMR = false
	res := SelectHits(candidates, p)

	if len(res.Hits) != MaxTopK {
		t.Errorf("got %d hits, want cap %d", len(res.Hits), MaxTopK)
	}
}

func TestRerankMMRSeedsWithMostRelevant(t *testing.T) {
	a := &vectorstore.SearchHit{Content: "a", Similarity: 0.9, Embedding: []float32{1, 0}}
	b := &vectorstore.SearchHit{Content: "b", Similarity: 0.85, Embedding: []float32{1, 0}} // duplicate of a
	c := &vectorstore.SearchHit{Content: "c", Similarity: 0.7, Embedding: []float32{0, 1}}  // orthogonal

	out := RerankMMR([]*vectorstore.SearchHit{a, b, c}, 0.7)

	if out[0].Content != "a" {
		t.Errorf("seed = %s, want a", out[0].Content)
	}
	// b is near-identical to a: lambda*0.85 - 0.3*1.0 = 0.295;
	// c is orthogonal: lambda*0.7 - 0.3*0.0 = 0.49. c wins the second slot.
	if out[1].Content != "c" {
		t.Errorf("second pick = %s, want c", out[1].Content)
	}
	if len(out) != 3 {
		t.Errorf("MMR dropped hits: got %d, want 3", len(out))
	}
}

func TestRerankMMRWithoutEmbeddings(t *testing.T) {
	hits := []*vectorstore.SearchHit{
		hit(0.9, "a"),
		hit(0.8, "b"),
		hit(0.7, "c"),
	}

	out := RerankMMR(hits, 0.7)

	// No embeddings means zero redundancy, so relevance order is kept.
	for i, want := range []string{"a", "b", "c"} {
		if out[i].Content != want {
			t.Errorf("out[%d] = %s, want %s", i, out[i].Content, want)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosineSimilarity = %f, want %f", got, tt.want)
			}
		})
	}
}
