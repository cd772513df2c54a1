package testsupport

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/flate"
)

// Archive assembles an in-memory FLA container for tests.
type Archive struct {
	entries []archiveEntry
}

type archiveEntry struct {
	name  string
	data  []byte
	store bool
}

// NewArchive returns an empty archive builder.
func NewArchive() *Archive {
	return &Archive{}
}

// Add appends a deflated entry.
func (a *Archive) Add(name string, data []byte) *Archive {
	a.entries = append(a.entries, archiveEntry{name: name, data: data})
	return a
}

// AddString appends a deflated text entry.
func (a *Archive) AddString(name, content string) *Archive {
	return a.Add(name, []byte(content))
}

// AddStored appends an uncompressed entry.
func (a *Archive) AddStored(name string, data []byte) *Archive {
	a.entries = append(a.entries, archiveEntry{name: name, data: data, store: true})
	return a
}

// Bytes serializes the archive.
func (a *Archive) Bytes(t testing.TB) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})
	for _, e := range a.entries {
		method := zip.Deflate
		if e.store {
			method = zip.Store
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: method})
		if err != nil {
			t.Fatalf("create zip entry %s: %v", e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			t.Fatalf("write zip entry %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// WriteFile serializes the archive to name under a temp directory and
// returns the path.
func (a *Archive) WriteFile(t testing.TB, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, a.Bytes(t), 0o644); err != nil {
		t.Fatalf("write archive %s: %v", path, err)
	}
	return path
}
