package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeSchemaFile(t *testing.T, dir, process, content string) {
	t.Helper()
	path := filepath.Join(dir, process+".json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write schema file: %v", err)
	}
}

func TestStoreLoad(t *testing.T) {
	dir := t.TempDir()
	writeSchemaFile(t, dir, "billing", `{"required_columns": ["transactionId"]}`)

	store := NewStore(dir)
	s, err := store.Load("billing")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(s.Required) != 1 || s.Required[0] != "transactionId" {
		t.Errorf("Unexpected schema: %+v", s)
	}
}

func TestStoreCachesUntilInvalidated(t *testing.T) {
	dir := t.TempDir()
	writeSchemaFile(t, dir, "billing", `{"required_columns": ["a"]}`)

	store := NewStore(dir)
	first, err := store.Load("billing")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Rewrite the file; the cached schema must keep serving.
	writeSchemaFile(t, dir, "billing", `{"required_columns": ["b"]}`)
	cached, err := store.Load("billing")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cached != first {
		t.Errorf("Expected the cached schema instance")
	}

	store.Invalidate("billing")
	reloaded, err := store.Load("billing")
	if err != nil {
		t.Fatalf("Load after invalidate failed: %v", err)
	}
	if reloaded.Required[0] != "b" {
		t.Errorf("Expected reloaded schema, got %+v", reloaded)
	}
}

func TestStoreLoadFailures(t *testing.T) {
	dir := t.TempDir()
	writeSchemaFile(t, dir, "broken", `{"cast_values": {"a": "eval"}}`)

	store := NewStore(dir)

	tests := []struct {
		name    string
		process string
	}{
		{"missing file", "no-such-process"},
		{"invalid schema", "broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Load(tt.process)

			var sErr *SchemaError
			if !errors.As(err, &sErr) {
				t.Fatalf("Expected SchemaError, got %v", err)
			}
			if sErr.Process != tt.process {
				t.Errorf("Expected process %q in error, got %q", tt.process, sErr.Process)
			}
		})
	}
}
