package index

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cardlens/cardlens/internal/catalog"
)

// Write persists one complete generation (manifest, cards, vectors) into dir.
// Each file lands via temp-file-then-rename, so a crash mid-write never leaves
// a half-written artifact under its final name. Callers building a fresh
// generation should write into a scratch dir and install it with AtomicSwap.
func Write(dir string, ix *Index) error {
	m := ix.Manifest
	if m.Dim <= 0 {
		return fmt.Errorf("invalid dim: %d", m.Dim)
	}
	if len(ix.Cards) != m.Count {
		return fmt.Errorf("card count mismatch: got %d want %d", len(ix.Cards), m.Count)
	}
	if len(ix.Vectors) != m.Count*m.Dim {
		return fmt.Errorf("vector length mismatch: got %d want %d", len(ix.Vectors), m.Count*m.Dim)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create index dir %s: %w", dir, err)
	}

	cb, err := encodeCards(ix.Cards)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(dir, m.CardsFile, cb); err != nil {
		return err
	}

	vb := &bytes.Buffer{}
	vb.Grow(len(ix.Vectors) * 4)
	if err := binary.Write(vb, binary.LittleEndian, ix.Vectors); err != nil {
		return fmt.Errorf("cannot encode vectors: %w", err)
	}
	if err := writeFileAtomic(dir, m.VectorFile, vb.Bytes()); err != nil {
		return err
	}

	mb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	// Manifest last: its presence marks the generation complete.
	return writeFileAtomic(dir, ManifestFileName, append(mb, '\n'))
}

func encodeCards(cards []catalog.CardRecord) ([]byte, error) {
	buf := &bytes.Buffer{}
	for _, c := range cards {
		line, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func writeFileAtomic(dir, name string, data []byte) error {
	f, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot create temp file for %s: %w", name, err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("cannot write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("cannot install %s: %w", name, err)
	}
	return nil
}

// AtomicSwap replaces destDir with srcDir by renaming, keeping the previous
// generation as a rollback until the swap succeeds.
func AtomicSwap(srcDir, destDir string) error {
	parent := filepath.Dir(destDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	backup := destDir + ".bak"
	_ = os.RemoveAll(backup)
	if _, err := os.Stat(destDir); err == nil {
		if err := os.Rename(destDir, backup); err != nil {
			return err
		}
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		// rollback best-effort
		if _, stErr := os.Stat(backup); stErr == nil {
			_ = os.Rename(backup, destDir)
		}
		return err
	}
	_ = os.RemoveAll(backup)
	return nil
}
