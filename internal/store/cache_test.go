package store

import (
	"path/filepath"
	"testing"

	"ysetl/internal/bytecode"
	"ysetl/internal/value"
)

func testProgram() *bytecode.Program {
	p := bytecode.New()
	idx := p.AddConstant(value.NewInt(7))
	p.EmitOp(bytecode.Const, uint16(idx))
	p.WriteOp(bytecode.Pop)
	p.GlobalSlotCount = 0
	return p
}

func TestPutGetRoundTrip(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	prog := testProgram()
	if err := c.Put(prog, 1000); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get(prog.Digest())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get: expected a hit after Put")
	}
	if string(got.Instructions) != string(prog.Instructions) {
		t.Fatalf("Instructions = %v, want %v", got.Instructions, prog.Instructions)
	}
	if len(got.Constants) != 1 || got.Constants[0].Int != 7 {
		t.Fatalf("Constants = %v", got.Constants)
	}
	if got.CachedAt() != 1000 {
		t.Fatalf("CachedAt() = %d, want 1000", got.CachedAt())
	}
}

func TestGetMissIsNotAnError(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	got, ok, err := c.Get("deadbeef")
	if err != nil {
		t.Fatalf("Get on miss returned error: %v", err)
	}
	if ok || got != nil {
		t.Fatalf("Get on miss = (%v, %v), want (nil, false)", got, ok)
	}
}

func TestPutOverwritesExistingDigest(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	prog := testProgram()
	if err := c.Put(prog, 1); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if err := c.Put(prog, 2); err != nil {
		t.Fatalf("second Put: %v", err)
	}
	got, ok, err := c.Get(prog.Digest())
	if err != nil || !ok {
		t.Fatalf("Get after re-Put: ok=%v err=%v", ok, err)
	}
	if got.CachedAt() != 2 {
		t.Fatalf("CachedAt() = %d, want 2 (last write wins)", got.CachedAt())
	}
}

func TestResolveDriver(t *testing.T) {
	cases := []struct {
		dsn, wantDriver, wantSource string
	}{
		{"sqlite:///tmp/x.db", "sqlite", "/tmp/x.db"},
		{"/tmp/x.db", "sqlite", "/tmp/x.db"},
		{"postgres://user@host/db", "postgres", "postgres://user@host/db"},
		{"mysql://user@tcp(host)/db", "mysql", "user@tcp(host)/db"},
		{"sqlserver://user@host", "sqlserver", "sqlserver://user@host"},
	}
	for _, tc := range cases {
		driver, source := resolveDriver(tc.dsn)
		if driver != tc.wantDriver || source != tc.wantSource {
			t.Errorf("resolveDriver(%q) = (%q, %q), want (%q, %q)", tc.dsn, driver, source, tc.wantDriver, tc.wantSource)
		}
	}
}

// TestPlaceholderFormatting exercises the bind-marker logic directly —
// without a live postgres connection, this is the only way to catch a
// regression to a bare "?" on the postgres path, which lib/pq rejects
// outright.
func TestPlaceholderFormatting(t *testing.T) {
	pg := &Cache{driver: "postgres"}
	if got := pg.placeholder(1); got != "$1" {
		t.Errorf("postgres placeholder(1) = %q, want %q", got, "$1")
	}
	if got := pg.placeholder(3); got != "$3" {
		t.Errorf("postgres placeholder(3) = %q, want %q", got, "$3")
	}

	for _, driver := range []string{"sqlite", "mysql", "sqlserver"} {
		c := &Cache{driver: driver}
		if got := c.placeholder(1); got != "?" {
			t.Errorf("%s placeholder(1) = %q, want %q", driver, got, "?")
		}
	}
}
