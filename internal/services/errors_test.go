package services_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"flareader/internal/services"
)

func TestWrapKeepsMarkerAndCause(t *testing.T) {
	err := services.Wrap(services.ErrNotFound, "archive", "lookup", "bin/M 1.dat", io.ErrUnexpectedEOF)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected marker, got %v", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "archive: lookup: bin/M 1.dat") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrCorrupt) {
		t.Fatalf("expected default marker, got %v", err)
	}
}
