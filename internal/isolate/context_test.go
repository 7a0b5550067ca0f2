package isolate

import "testing"

func TestNewAssignsUniqueIDs(t *testing.T) {
	a := New("/tmp/a", true, nil)
	b := New("/tmp/b", true, nil)
	if a.ID == b.ID {
		t.Fatal("expected distinct context IDs")
	}
}

func TestLookupFallsBackToAllowList(t *testing.T) {
	ctx := New("/tmp/a", true, map[string]any{"host.Logger": "logger"})
	sym, err := ctx.lookup("host.Logger")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sym != "logger" {
		t.Fatalf("expected allow-listed symbol, got %v", sym)
	}
}

func TestLookupFailsForUnknownSymbol(t *testing.T) {
	ctx := New("/tmp/a", true, nil)
	if _, err := ctx.lookup("nothing"); err == nil {
		t.Fatal("expected an error for unresolvable symbol")
	}
}

func TestDisposeDetachesAllowList(t *testing.T) {
	ctx := New("/tmp/a", true, map[string]any{"x": 1})
	ctx.Dispose()
	if !ctx.Disposed() {
		t.Fatal("expected context to report disposed")
	}
	if _, err := ctx.lookup("x"); err == nil {
		t.Fatal("expected lookup on disposed context to fail")
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	ctx := New("/tmp/a", true, nil)
	ctx.Dispose()
	ctx.Dispose() // must not panic
}
