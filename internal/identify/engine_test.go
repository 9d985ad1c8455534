package identify

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/cardlens/cardlens/internal/catalog"
	"github.com/cardlens/cardlens/internal/index"
)

type fakeProvider struct {
	model string
	vecs  map[string][]float32
}

func (f *fakeProvider) ModelID() string { return f.model }
func (f *fakeProvider) Dim() int        { return 2 }

func (f *fakeProvider) Embed(_ context.Context, imagePath string) ([]float32, error) {
	v, ok := f.vecs[filepath.Base(imagePath)]
	if !ok {
		return nil, fmt.Errorf("cannot decode %s", imagePath)
	}
	return v, nil
}

func builtIndex(t *testing.T) *index.Index {
	t.Helper()
	cards := []catalog.CardRecord{
		{ID: "sv3-86", Name: "Charmeleon", ImagePath: "images/sv3/86.jpg"},
		{ID: "sv3-87", Name: "Charizard", ImagePath: "images/sv3/87.jpg"},
	}
	ix, err := index.New("fake:test", cards, [][]float32{{1, 0}, {0, 1}})
	if err != nil {
		t.Fatal(err)
	}
	return ix
}

func TestIdentify_ResolvesOwnReferenceImage(t *testing.T) {
	prov := &fakeProvider{model: "fake:test", vecs: map[string][]float32{
		// Same direction as the stored sv3-86 vector, different magnitude;
		// the engine normalizes before searching.
		"86.jpg": {5, 0},
	}}
	engine := New(builtIndex(t), prov)

	matches, err := engine.Identify(context.Background(), "images/sv3/86.jpg", 1)
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Card.ID != "sv3-86" {
		t.Fatalf("expected sv3-86, got %s", matches[0].Card.ID)
	}
	if math.Abs(matches[0].Score-1.0) > 1e-6 {
		t.Fatalf("expected similarity ~1.0, got %f", matches[0].Score)
	}
}

func TestIdentify_ClampsKToIndexSize(t *testing.T) {
	prov := &fakeProvider{model: "fake:test", vecs: map[string][]float32{"q.jpg": {1, 1}}}
	engine := New(builtIndex(t), prov)

	matches, err := engine.Identify(context.Background(), "q.jpg", 3)
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches over a 2-card index, got %d", len(matches))
	}
}

func TestIdentify_SurfacesEmbeddingFailure(t *testing.T) {
	prov := &fakeProvider{model: "fake:test", vecs: map[string][]float32{}}
	engine := New(builtIndex(t), prov)

	if _, err := engine.Identify(context.Background(), "blurry.jpg", 1); err == nil {
		t.Fatal("expected query embedding failure")
	}
}

func TestIdentify_NilEngine(t *testing.T) {
	var engine *Engine
	if _, err := engine.Identify(context.Background(), "q.jpg", 1); !errors.Is(err, ErrIndexNotLoaded) {
		t.Fatalf("expected ErrIndexNotLoaded, got %v", err)
	}
}

func TestLoad_RejectsModelMismatch(t *testing.T) {
	dir := t.TempDir()
	if err := index.Write(filepath.Join(dir, "index"), builtIndex(t)); err != nil {
		t.Fatal(err)
	}

	prov := &fakeProvider{model: "fake:other"}
	if _, err := Load(filepath.Join(dir, "index"), prov); err == nil {
		t.Fatal("expected model mismatch error")
	}
}
