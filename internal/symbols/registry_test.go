package symbols

import "testing"

func TestRegisterIsIdempotent(t *testing.T) {
	r := New()
	s1, err := r.Register("x")
	if err != nil {
		t.Fatal(err)
	}
	s2, err := r.Register("x")
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 {
		t.Fatalf("Register(\"x\") twice returned different symbols: %v, %v", s1, s2)
	}
	if s1.Scope != Global || s1.Index != 0 {
		t.Fatalf("top-level symbol = %+v, want Global/0", s1)
	}
}

func TestNestedScopeIsLocal(t *testing.T) {
	r := New()
	r.EnterScope()
	s, err := r.Register("y")
	if err != nil {
		t.Fatal(err)
	}
	if s.Scope != Local || s.Index != 0 {
		t.Fatalf("nested symbol = %+v, want Local/0", s)
	}
	r.ExitScope()
}

func TestLookupScansTopToBottom(t *testing.T) {
	r := New()
	if _, err := r.Register("g"); err != nil {
		t.Fatal(err)
	}
	r.EnterScope()
	if _, err := r.Register("l"); err != nil {
		t.Fatal(err)
	}

	gSym, ok := r.Lookup("g")
	if !ok || gSym.Scope != Global {
		t.Fatalf("lookup(\"g\") from nested scope = %+v, %v, want Global symbol", gSym, ok)
	}
	lSym, ok := r.Lookup("l")
	if !ok || lSym.Scope != Local {
		t.Fatalf("lookup(\"l\") = %+v, %v, want Local symbol", lSym, ok)
	}

	r.ExitScope()
	if _, ok := r.Lookup("l"); ok {
		t.Fatal("\"l\" must not resolve once its scope has exited")
	}
}

func TestExitScopeNeverPopsGlobal(t *testing.T) {
	r := New()
	r.ExitScope()
	r.ExitScope()
	if _, err := r.Register("still global"); err != nil {
		t.Fatal(err)
	}
	if r.scopeKind() != Global {
		t.Fatal("ExitScope must be a no-op once only the global scope remains")
	}
}

func TestSizeTracksTopScope(t *testing.T) {
	r := New()
	r.Register("a")
	r.Register("b")
	if r.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", r.Size())
	}
	r.EnterScope()
	if r.Size() != 0 {
		t.Fatalf("Size() of fresh scope = %d, want 0", r.Size())
	}
}
