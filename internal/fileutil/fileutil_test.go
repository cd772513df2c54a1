package fileutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestMapFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.fla")
	content := []byte("PK\x03\x04 mapped content")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := MapFile(path)
	if err != nil {
		t.Fatalf("MapFile: %v", err)
	}
	if string(m.Bytes()) != string(content) {
		t.Fatalf("content mismatch: got %q", m.Bytes())
	}
	if runtime.GOOS != "windows" && !m.Mapped() {
		t.Fatal("expected mmap-backed mapping on unix")
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if m.Bytes() != nil {
		t.Fatal("expected bytes released after Close")
	}
}

func TestMapFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.fla")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := MapFile(path)
	if err != nil {
		t.Fatalf("MapFile: %v", err)
	}
	defer m.Close()
	if len(m.Bytes()) != 0 || m.Mapped() {
		t.Fatalf("expected empty heap mapping, got %d bytes mapped=%v", len(m.Bytes()), m.Mapped())
	}
}

func TestMapFileMissing(t *testing.T) {
	if _, err := MapFile(filepath.Join(t.TempDir(), "missing.fla")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out", "bitmap.png")

	if err := WriteFileAtomic(dst, []byte("first"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(dst, []byte("second"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("content mismatch: %q", got)
	}
	entries, err := os.ReadDir(filepath.Dir(dst))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files cleaned up, found %d entries", len(entries))
	}
}

func TestWriteAtomicSeeksAndCleansUpOnFailure(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "sound.wav")

	err := WriteAtomic(dst, 0o644, func(f *os.File) error {
		if _, err := f.WriteString("....body"); err != nil {
			return err
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
		_, err := f.WriteString("HEAD")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "HEADbody" {
		t.Fatalf("content mismatch: %q", got)
	}

	failed := errors.New("encoder failed")
	err = WriteAtomic(dst, 0o644, func(f *os.File) error {
		_, _ = f.WriteString("partial")
		return failed
	})
	if !errors.Is(err, failed) {
		t.Fatalf("expected writer error, got %v", err)
	}
	got, err = os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "HEADbody" {
		t.Fatalf("failed write replaced the file: %q", got)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files cleaned up, found %d entries", len(entries))
	}
}
