package memory

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/store"
)

func TestReadEmpty(t *testing.T) {
	s := New()
	if _, err := s.Read(context.Background()); !errors.Is(err, store.ErrNoDocument) {
		t.Errorf("Read() on empty store = %v, want ErrNoDocument", err)
	}
}

func TestWriteReadDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	payload := []byte(`{"transactions":[],"settings":{}}`)
	if err := s.Write(ctx, payload); err != nil {
		t.Fatalf("Write() = %v", err)
	}

	got, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Read() = %s, want %s", got, payload)
	}

	// The stored bytes must not alias the caller's slice in either direction.
	payload[0] = 'X'
	got[1] = 'Y'
	fresh, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}
	if fresh[0] == 'X' || fresh[1] == 'Y' {
		t.Error("stored bytes alias caller slices")
	}

	if err := s.Delete(ctx); err != nil {
		t.Fatalf("Delete() = %v", err)
	}
	if _, err := s.Read(ctx); !errors.Is(err, store.ErrNoDocument) {
		t.Errorf("Read() after delete = %v, want ErrNoDocument", err)
	}
}
