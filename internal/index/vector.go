package index

import (
	"fmt"
	"math"
	"sort"
)

// Hit is one search result: a position in the index and its similarity score.
type Hit struct {
	Pos   int
	Score float64
}

// NormalizeL2 returns a new vector scaled to unit L2 norm. A zero vector is
// returned unchanged.
func NormalizeL2(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	n := math.Sqrt(sum)
	out := make([]float32, len(v))
	if n == 0 {
		copy(out, v)
		return out
	}
	inv := float32(1.0 / n)
	for i := range v {
		out[i] = v[i] * inv
	}
	return out
}

// dot assumes equal-length inputs; Search checks dimensions before calling.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Search returns the top k stored vectors by descending dot product with
// query. Since build guarantees unit-norm stored vectors, the score is cosine
// similarity when the query is unit-norm too; Search never re-normalizes.
//
// Ties rank by ascending insertion position, so results are deterministic.
// k larger than the index size is clamped.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if len(query) != ix.Manifest.Dim {
		return nil, fmt.Errorf("%w: query dim %d, index dim %d", ErrDimensionMismatch, len(query), ix.Manifest.Dim)
	}

	hits := make([]Hit, ix.Len())
	for i := range hits {
		hits[i] = Hit{Pos: i, Score: dot(query, ix.VectorAt(i))}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Pos < hits[j].Pos
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}
