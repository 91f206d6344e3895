package migrations

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoad_Embedded(t *testing.T) {
	ms, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ms) == 0 || ms[0].Version != "0001" || ms[0].Name != "init" {
		t.Fatalf("expected 0001_init first, got %+v", ms)
	}
	for _, table := range []string{"pluggy_items", "accounts", "transactions", "incomes", "expenses", "investments"} {
		if !strings.Contains(ms[0].SQL, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("schema is missing table %s", table)
		}
	}
}

func TestLoad_OrdersAndSkips(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_b.sql": {Data: []byte("SELECT 2;")},
		"0001_a.sql": {Data: []byte("SELECT 1;")},
		"README.md":  {Data: []byte("notes")},
		"tmp_x.sql":  {Data: []byte("SELECT 0;")},
	}
	ms, err := load(fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ms) != 2 || ms[0].Name != "a" || ms[1].Name != "b" {
		t.Fatalf("unexpected migrations %+v", ms)
	}
	if ms[0].Checksum == ms[1].Checksum {
		t.Fatal("expected distinct checksums")
	}
}

func TestLoad_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_a.sql": {Data: []byte("SELECT 1;")},
		"0001_b.sql": {Data: []byte("SELECT 2;")},
	}
	if _, err := load(fsys); err == nil {
		t.Fatal("expected an error for a reused version")
	}
}
