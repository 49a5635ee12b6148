package rag

import (
	"context"
	"strings"
	"time"

	"omnidoc/internal/config"
	"omnidoc/internal/index"
	"omnidoc/internal/models"
)

// comparativeKeywords flags questions that span documents. Pure keyword
// matching; false positives and negatives are accepted.
var comparativeKeywords = []string{
	"compare",
	"comparison",
	"contrast",
	"difference",
	"differences",
	"versus",
	" vs ",
	" vs. ",
	"both",
	"each document",
	"all documents",
	"these documents",
	"between the two",
}

// Retriever decides how many chunks to fetch for a question and how to
// balance them across source documents.
type Retriever struct {
	index        index.Index
	simpleK      int
	comparativeK int
	minPerSource int
}

func NewRetriever(idx index.Index, cfg *config.RAGConfig) *Retriever {
	return &Retriever{
		index:        idx,
		simpleK:      cfg.SimpleK,
		comparativeK: cfg.ComparativeK,
		minPerSource: cfg.MinPerSource,
	}
}

// IsComparative reports whether the question looks like a cross-document
// comparison.
func (r *Retriever) IsComparative(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range comparativeKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// K returns the retrieval depth for the query class.
func (r *Retriever) K(comparative bool) int {
	if comparative {
		return r.comparativeK
	}
	return r.simpleK
}

// Retrieve fetches the chunks backing an answer to the question, together
// with the wall-clock time the lookup took. Comparative questions get a
// deeper fetch rebalanced across sources.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]models.ScoredChunk, time.Duration, error) {
	comparative := r.IsComparative(question)
	k := r.K(comparative)

	start := time.Now()
	results, err := r.index.Search(ctx, question, k)
	if err != nil {
		return nil, time.Since(start), err
	}
	if comparative {
		results = r.balanceBySource(results, k)
	}
	return results, time.Since(start), nil
}

// balanceBySource groups the results by source document and takes up to
// max(minPerSource, k/sources) from each, keeping every source's internal
// relevance order and the order sources first appeared in. The floor of
// minPerSource keeps a dominant source from crowding the rest out of a
// comparison. A single source passes through unchanged.
func (r *Retriever) balanceBySource(results []models.ScoredChunk, k int) []models.ScoredChunk {
	groups := make(map[string][]models.ScoredChunk)
	var order []string
	for _, res := range results {
		if _, seen := groups[res.SourceID]; !seen {
			order = append(order, res.SourceID)
		}
		groups[res.SourceID] = append(groups[res.SourceID], res)
	}
	if len(order) <= 1 {
		return results
	}

	perSource := k / len(order)
	if perSource < r.minPerSource {
		perSource = r.minPerSource
	}

	balanced := make([]models.ScoredChunk, 0, len(results))
	for _, src := range order {
		group := groups[src]
		if len(group) > perSource {
			group = group[:perSource]
		}
		balanced = append(balanced, group...)
	}
	return balanced
}
