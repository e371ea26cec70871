package retriever

import (
	"math"

	"doc-qa-be/pkg/vectorstore"
)

// RerankMMR orders hits by maximal marginal relevance. The most relevant
// hit seeds the selection; each following pick maximizes
// lambda*relevance - (1-lambda)*maxSimToSelected. Relevance is the hit's
// query similarity. Hits without stored embeddings contribute zero
// redundancy, which reduces MMR to relevance order for them.
func RerankMMR(hits []*vectorstore.SearchHit, lambda float64) []*vectorstore.SearchHit {
	if len(hits) <= 1 {
		return hits
	}

	remaining := make([]*vectorstore.SearchHit, len(hits))
	copy(remaining, hits)

	// Seed: hits arrive sorted, index 0 is the most relevant.
	selected := []*vectorstore.SearchHit{remaining[0]}
	remaining = remaining[1:]

	for len(remaining) > 0 {
		bestIdx := 0
		bestScore := math.Inf(-1)

		for i, cand := range remaining {
			redundancy := 0.0
			for _, sel := range selected {
				if sim := cosineSimilarity(cand.Embedding, sel.Embedding); sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*cand.Similarity - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
