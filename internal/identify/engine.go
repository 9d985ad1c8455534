package identify

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardlens/cardlens/internal/catalog"
	"github.com/cardlens/cardlens/internal/embeddings"
	"github.com/cardlens/cardlens/internal/index"
)

// ErrIndexNotLoaded indicates Identify was called before both index artifacts
// were loaded successfully.
var ErrIndexNotLoaded = errors.New("index not loaded")

// Match is one ranked identification candidate.
type Match struct {
	Card  catalog.CardRecord
	Score float64
}

// Engine answers "what card is this?" against one loaded index generation.
// It is safe for concurrent use: the index is immutable and searches share no
// mutable state.
type Engine struct {
	idx  *index.Index
	prov embeddings.Provider
}

// New wraps an already-loaded index.
func New(idx *index.Index, prov embeddings.Provider) *Engine {
	return &Engine{idx: idx, prov: prov}
}

// Load reads the index generation in dir and returns an engine serving it.
// The provider must be the one the index was built with; a model mismatch
// would produce plausible but meaningless similarities, so it is refused.
func Load(dir string, prov embeddings.Provider) (*Engine, error) {
	idx, err := index.Load(dir)
	if err != nil {
		return nil, err
	}
	if prov.ModelID() != idx.Manifest.ModelID {
		return nil, fmt.Errorf("embeddings model mismatch: index=%s provider=%s (index dir %s)",
			idx.Manifest.ModelID, prov.ModelID(), dir)
	}
	return New(idx, prov), nil
}

// Index exposes the loaded generation, for status reporting.
func (e *Engine) Index() *index.Index {
	if e == nil {
		return nil
	}
	return e.idx
}

// Identify embeds the query image, searches the index and resolves positions
// back to card records. Results are ranked by descending similarity, at most k.
//
// An embedding failure is returned to the caller as-is: the failure is
// deterministic for a given image, so the caller decides whether to re-capture
// rather than the engine retrying.
func (e *Engine) Identify(ctx context.Context, imagePath string, k int) ([]Match, error) {
	if e == nil || e.idx == nil {
		return nil, ErrIndexNotLoaded
	}

	vec, err := e.prov.Embed(ctx, imagePath)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}
	vec = index.NormalizeL2(vec)

	hits, err := e.idx.Search(vec, k)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, len(hits))
	for i, h := range hits {
		matches[i] = Match{Card: e.idx.Card(h.Pos), Score: h.Score}
	}
	return matches, nil
}
