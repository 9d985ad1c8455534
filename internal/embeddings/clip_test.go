package embeddings

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeImage(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "card.jpg")
	if err := os.WriteFile(p, []byte("jpeg-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestClipServer_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			http.NotFound(w, r)
			return
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		img, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil || string(img) != "jpeg-bytes" || req.Model != "ViT-B-16" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	prov := NewClipServer(&Config{Provider: "clip-server", Model: "ViT-B-16", BaseURL: srv.URL})

	vec, err := prov.Embed(context.Background(), writeImage(t))
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("unexpected vector: %v", vec)
	}
	if prov.Dim() != 3 {
		t.Fatalf("dim not recorded: %d", prov.Dim())
	}
	if prov.ModelID() != "clip-server:ViT-B-16" {
		t.Fatalf("unexpected model id: %s", prov.ModelID())
	}
}

// One provider is shared by the index builder's worker pool, so Embed must be
// safe to call from many goroutines at once (run with -race).
func TestClipServer_ConcurrentEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	prov := NewClipServer(&Config{Model: "ViT-B-16", BaseURL: srv.URL})
	img := writeImage(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vec, err := prov.Embed(context.Background(), img)
			if err != nil {
				t.Errorf("Embed: %v", err)
				return
			}
			if len(vec) != 3 {
				t.Errorf("unexpected vector: %v", vec)
			}
		}()
	}
	wg.Wait()

	if prov.Dim() != 3 {
		t.Fatalf("dim not recorded: %d", prov.Dim())
	}
}

func TestClipServer_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	prov := NewClipServer(&Config{Model: "ViT-B-16", BaseURL: srv.URL})
	if _, err := prov.Embed(context.Background(), writeImage(t)); err == nil {
		t.Fatal("expected server error")
	}
}

func TestClipServer_MissingImage(t *testing.T) {
	prov := NewClipServer(&Config{Model: "ViT-B-16", BaseURL: "http://localhost:0"})
	if _, err := prov.Embed(context.Background(), "/nonexistent/card.jpg"); err == nil {
		t.Fatal("expected missing image error")
	}
}

func TestNewFromConfig(t *testing.T) {
	if _, err := NewFromConfig(&Config{}); err == nil {
		t.Fatal("expected error for empty provider")
	}
	if _, err := NewFromConfig(&Config{Provider: "something-else"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	prov, err := NewFromConfig(&Config{Provider: "clip-server", Model: "m", BaseURL: "http://localhost:8000"})
	if err != nil || prov == nil {
		t.Fatalf("clip-server provider should construct: %v", err)
	}
}
