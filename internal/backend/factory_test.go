package backend

import (
	"context"
	"path/filepath"
	"testing"
)

func TestBackendTypeIsValid(t *testing.T) {
	cases := []struct {
		bt    BackendType
		valid bool
	}{
		{CSVBackend, true},
		{SQLiteBackend, true},
		{MemoryBackend, true},
		{BackendType("postgres"), false},
		{BackendType(""), false},
	}

	for i, c := range cases {
		if got := c.bt.IsValid(); got != c.valid {
			t.Fatalf("case %d: %q expected %v, got %v", i, c.bt, c.valid, got)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"csv with path", Config{Type: CSVBackend, CSVPath: "data/expenses.csv"}, false},
		{"csv without path", Config{Type: CSVBackend}, true},
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "data/spendlog.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"memory", Config{Type: MemoryBackend}, false},
		{"unknown type", Config{Type: BackendType("bogus")}, true},
	}

	for _, c := range cases {
		err := c.config.Validate()
		if c.wantErr && err == nil {
			t.Fatalf("%s: expected error, got nil", c.name)
		}
		if !c.wantErr && err != nil {
			t.Fatalf("%s: unexpected error: %v", c.name, err)
		}
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(nil)
	dir := t.TempDir()

	cases := []struct {
		name   string
		config Config
	}{
		{"csv", Config{Type: CSVBackend, CSVPath: filepath.Join(dir, "expenses.csv")}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "spendlog.db")}},
		{"memory", Config{Type: MemoryBackend}},
	}

	for _, c := range cases {
		result, err := factory.CreateBackend(ctx, c.config)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if result.Store == nil {
			t.Fatalf("%s: factory returned a nil store", c.name)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				t.Fatalf("%s: cleanup failed: %v", c.name, err)
			}
		}
	}
}

func TestCreateBackendRejectsUnknownType(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(nil)

	if _, err := factory.CreateBackend(ctx, Config{Type: BackendType("postgres")}); err == nil {
		t.Fatalf("expected an error for an unknown backend type")
	}
}
