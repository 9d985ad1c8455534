package index

import (
	"fmt"
	"time"

	"github.com/cardlens/cardlens/internal/catalog"
)

const (
	// VectorFileName holds the N×D embedding matrix as little-endian float32.
	VectorFileName = "vectors.f32"
	// CardsFileName holds one CardRecord per line; line order is the positional
	// id sequence for the vector matrix.
	CardsFileName = "cards.jsonl"
	// ManifestFileName describes the generation and ties the two together.
	ManifestFileName = "index_manifest.json"
)

// Manifest describes one persisted index generation and how to interpret it.
type Manifest struct {
	IndexVersion int    `json:"index_version"`
	CreatedAt    string `json:"created_at"`
	ModelID      string `json:"model_id"`
	Dim          int    `json:"dim"`
	Count        int    `json:"count"`
	Normalized   bool   `json:"normalized"`
	VectorFile   string `json:"vector_file"`
	CardsFile    string `json:"cards_file"`
}

// Index is one loaded generation: an ordered card sequence and the parallel
// embedding matrix. It is immutable once built; concurrent searches need no
// locking.
type Index struct {
	Manifest Manifest
	Cards    []catalog.CardRecord
	Vectors  []float32 // row-major, len == Count*Dim

	byID map[string]int
}

// New assembles an in-memory index from parallel card and vector sequences.
// Vectors are stored as given; callers normalize before calling New.
func New(modelID string, cards []catalog.CardRecord, vectors [][]float32) (*Index, error) {
	if len(cards) == 0 || len(vectors) == 0 {
		return nil, ErrEmptyInput
	}
	if len(cards) != len(vectors) {
		return nil, fmt.Errorf("cards and vectors out of step: %d vs %d", len(cards), len(vectors))
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: first vector is empty", ErrDimensionMismatch)
	}

	flat := make([]float32, 0, len(vectors)*dim)
	byID := make(map[string]int, len(cards))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dim %d, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
		id := cards[i].ID
		if _, dup := byID[id]; dup {
			return nil, fmt.Errorf("duplicate card id %q at position %d", id, i)
		}
		byID[id] = i
		flat = append(flat, v...)
	}

	return &Index{
		Manifest: Manifest{
			IndexVersion: 1,
			CreatedAt:    time.Now().UTC().Format(time.RFC3339),
			ModelID:      modelID,
			Dim:          dim,
			Count:        len(cards),
			Normalized:   true,
			VectorFile:   VectorFileName,
			CardsFile:    CardsFileName,
		},
		Cards:   cards,
		Vectors: flat,
		byID:    byID,
	}, nil
}

// Len returns the number of indexed cards.
func (ix *Index) Len() int { return len(ix.Cards) }

// Card returns the record at position pos.
func (ix *Index) Card(pos int) catalog.CardRecord { return ix.Cards[pos] }

// VectorAt returns the stored vector at position pos. The returned slice
// aliases the index and must not be modified.
func (ix *Index) VectorAt(pos int) []float32 {
	d := ix.Manifest.Dim
	return ix.Vectors[pos*d : (pos+1)*d]
}

// Position returns the position of the card with the given id.
func (ix *Index) Position(id string) (int, bool) {
	pos, ok := ix.byID[id]
	return pos, ok
}
