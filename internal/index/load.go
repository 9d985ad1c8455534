package index

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cardlens/cardlens/internal/catalog"
)

// maxCardLine caps a single cards.jsonl line; a record past this is garbage,
// not a card.
const maxCardLine = 1 << 20

// Load reads one index generation from dir and cross-checks its artifacts.
// Any disagreement between manifest, card sequence and vector matrix is
// ErrCorruptStore; a corrupt generation is never partially loaded.
func Load(dir string) (*Index, error) {
	manifestPath := filepath.Join(dir, ManifestFileName)
	b, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest %s: %w", manifestPath, err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: invalid manifest JSON %s: %v", ErrCorruptStore, manifestPath, err)
	}
	if m.Dim <= 0 {
		return nil, fmt.Errorf("%w: invalid dim %d in manifest", ErrCorruptStore, m.Dim)
	}
	if m.Count <= 0 {
		return nil, fmt.Errorf("%w: invalid count %d in manifest", ErrCorruptStore, m.Count)
	}
	// Search scores are raw dot products; a generation whose vectors were not
	// unit-normalized at build would serve meaningless similarities.
	if !m.Normalized {
		return nil, fmt.Errorf("%w: manifest marks generation as not normalized", ErrCorruptStore)
	}
	if m.VectorFile == "" {
		m.VectorFile = VectorFileName
	}
	if m.CardsFile == "" {
		m.CardsFile = CardsFileName
	}

	cards, byID, err := loadCards(filepath.Join(dir, m.CardsFile))
	if err != nil {
		return nil, err
	}
	if len(cards) != m.Count {
		return nil, fmt.Errorf("%w: cards file has %d entries, manifest says %d", ErrCorruptStore, len(cards), m.Count)
	}

	vectors, err := loadVectors(filepath.Join(dir, m.VectorFile), m.Count, m.Dim)
	if err != nil {
		return nil, err
	}

	return &Index{Manifest: m, Cards: cards, Vectors: vectors, byID: byID}, nil
}

func loadCards(path string) ([]catalog.CardRecord, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: cannot open cards file %s: %v", ErrCorruptStore, path, err)
	}
	defer f.Close()

	var out []catalog.CardRecord
	byID := make(map[string]int)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxCardLine)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec catalog.CardRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, nil, fmt.Errorf("%w: invalid cards JSONL %s: %v", ErrCorruptStore, path, err)
		}
		if _, dup := byID[rec.ID]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate card id %q in %s", ErrCorruptStore, rec.ID, path)
		}
		byID[rec.ID] = len(out)
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, nil, fmt.Errorf("%w: cards line exceeds %d bytes in %s", ErrCorruptStore, maxCardLine, path)
		}
		return nil, nil, fmt.Errorf("cannot read cards file %s: %w", path, err)
	}
	return out, byID, nil
}

func loadVectors(path string, count, dim int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open vector file %s: %v", ErrCorruptStore, path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat vector file %s: %w", path, err)
	}
	expected := int64(count) * int64(dim) * 4
	if st.Size() != expected {
		return nil, fmt.Errorf("%w: vector file size %d, want %d (count=%d dim=%d)",
			ErrCorruptStore, st.Size(), expected, count, dim)
	}

	out := make([]float32, count*dim)
	if err := binary.Read(io.LimitReader(f, expected), binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("cannot read vectors from %s: %w", path, err)
	}
	return out, nil
}
