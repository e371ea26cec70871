package retriever

import (
	"context"
	"fmt"
	"sort"

	"doc-qa-be/pkg/embedding"
	"doc-qa-be/pkg/vectorstore"
)

const (
	DefaultTopK      = 5
	MaxTopK          = 20
	DefaultThreshold = 0.7
	DefaultMMRLambda = 0.7

	// DegradedResultLimit caps how many below-threshold results are
	// returned when nothing clears the threshold.
	DegradedResultLimit = 3
)

// Quality describes how confident the retrieval was.
type Quality string

const (
	QualityHigh Quality = "high" // at least one hit above threshold
	QualityLow  Quality = "low"  // degraded, best-effort below-threshold hits
	QualityNone Quality = "none" // store returned nothing
)

// Params controls one retrieval pass.
type Params struct {
	TopK         int
	Threshold    float64
	UseThreshold bool
	UseMMR       bool
	MMRLambda    float64
}

func DefaultParams() Params {
	return Params{
		TopK:         DefaultTopK,
		Threshold:    DefaultThreshold,
		UseThreshold: true,
		UseMMR:       true,
		MMRLambda:    DefaultMMRLambda,
	}
}

// Result is the outcome of a retrieval pass.
type Result struct {
	Hits           []*vectorstore.SearchHit
	Quality        Quality
	TotalFound     int // candidates returned by the store
	AboveThreshold int // candidates at or above the threshold
}

// Retriever embeds the query and selects relevant chunks from the store.
type Retriever struct {
	store    vectorstore.Store
	embedder embedding.EmbeddingProvider
}

func New(store vectorstore.Store, embedder embedding.EmbeddingProvider) *Retriever {
	return &Retriever{
		store:    store,
		embedder: embedder,
	}
}

// OverfetchLimit is how many candidates to pull from the store so the
// threshold filter and MMR have enough to work with.
func OverfetchLimit(topK int) int {
	n := topK * 3
	if n < 20 {
		n = 20
	}
	return n
}

// Retrieve runs the full pass: embed, over-fetch, threshold selection,
// optional MMR re-ranking.
func (r *Retriever) Retrieve(ctx context.Context, query string, p Params) (*Result, error) {
	p = normalizeParams(p)

	res, err := r.embedder.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := r.store.Search(ctx, res.Embedding.Values, OverfetchLimit(p.TopK))
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	return SelectHits(candidates, p), nil
}

func normalizeParams(p Params) Params {
	if p.TopK <= 0 {
		p.TopK = DefaultTopK
	}
	if p.TopK > MaxTopK {
		p.TopK = MaxTopK
	}
	if p.Threshold <= 0 {
		p.Threshold = DefaultThreshold
	}
	if p.MMRLambda <= 0 || p.MMRLambda > 1 {
		p.MMRLambda = DefaultMMRLambda
	}
	return p
}

// SelectHits applies the selection policy to store candidates:
//   - hits at or above the threshold, sorted by similarity desc, top_k;
//   - if none clear the threshold, degrade to the best few below it;
//   - without thresholding, the sorted top_k, with quality still graded
//     against the threshold.
//
// MMR re-ranking runs on the surviving set when requested.
func SelectHits(candidates []*vectorstore.SearchHit, p Params) *Result {
	p = normalizeParams(p)

	sorted := make([]*vectorstore.SearchHit, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Similarity > sorted[j].Similarity
	})

	above := 0
	for _, h := range sorted {
		if h.Similarity >= p.Threshold {
			above++
		}
	}

	result := &Result{
		TotalFound:     len(sorted),
		AboveThreshold: above,
	}

	if len(sorted) == 0 {
		result.Quality = QualityNone
		return result
	}

	var selected []*vectorstore.SearchHit
	switch {
	case !p.UseThreshold:
		selected = truncate(sorted, p.TopK)
		// Nothing is filtered, but quality still reports whether anything
		// cleared the threshold.
		if above > 0 {
			result.Quality = QualityHigh
		} else {
			result.Quality = QualityLow
		}
	case above > 0:
		selected = truncate(sorted[:above], p.TopK)
		result.Quality = QualityHigh
	default:
		selected = truncate(sorted, DegradedResultLimit)
		result.Quality = QualityLow
	}

	if p.UseMMR && len(selected) > 1 {
		selected = RerankMMR(selected, p.MMRLambda)
	}

	result.Hits = selected
	return result
}

// SearchRaw embeds the query and returns the sorted hits without any
// threshold filtering. Backs the plain search endpoint.
func (r *Retriever) SearchRaw(ctx context.Context, query string, topK int) (*Result, error) {
	p := DefaultParams()
	p.TopK = topK
	p.UseThreshold = false
	p.UseMMR = false
	return r.Retrieve(ctx, query, p)
}

func truncate(hits []*vectorstore.SearchHit, n int) []*vectorstore.SearchHit {
	if len(hits) <= n {
		return hits
	}
	return hits[:n]
}
