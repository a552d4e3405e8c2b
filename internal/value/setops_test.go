package value

import "testing"

func TestNullCoal(t *testing.T) {
	got, err := Combine(OpNullCoal, NewNull(), NewInt(5))
	if err != nil || got.Int != 5 {
		t.Fatalf("null ?? 5 = %v, %v", got, err)
	}
	got2, err := Combine(OpNullCoal, NewInt(3), NewInt(5))
	if err != nil || got2.Int != 3 {
		t.Fatalf("3 ?? 5 = %v, %v", got2, err)
	}
}

func TestModulo(t *testing.T) {
	got, err := Combine(OpMod, NewInt(7), NewInt(3))
	if err != nil || got.Int != 1 {
		t.Fatalf("7 mod 3 = %v, %v", got, err)
	}
	if _, err := Combine(OpMod, NewInt(1), NewInt(0)); err == nil {
		t.Fatal("expected DivByZero for mod by 0")
	}
}

func TestWithAndLess(t *testing.T) {
	s := NewSet([]Value{NewInt(1), NewInt(2)})
	withThree, err := Combine(OpWith, s, NewInt(3))
	if err != nil {
		t.Fatal(err)
	}
	if len(withThree.Elems) != 3 {
		t.Fatalf("with: expected 3 elements, got %d", len(withThree.Elems))
	}
	lessOne, err := Combine(OpLess, withThree, NewInt(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(lessOne.Elems) != 2 {
		t.Fatalf("less: expected 2 elements, got %d", len(lessOne.Elems))
	}
	for _, e := range lessOne.Elems {
		if e.Int == 1 {
			t.Fatal("less: element 1 should have been removed")
		}
	}
}

func TestUnionInterSubset(t *testing.T) {
	a := NewSet([]Value{NewInt(1), NewInt(2), NewInt(3)})
	b := NewSet([]Value{NewInt(2), NewInt(3), NewInt(4)})

	u, err := Combine(OpUnion, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if len(u.Elems) != 4 {
		t.Fatalf("union size = %d, want 4", len(u.Elems))
	}

	inter, err := Combine(OpInter, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if len(inter.Elems) != 2 {
		t.Fatalf("intersection size = %d, want 2", len(inter.Elems))
	}

	sub := NewSet([]Value{NewInt(2), NewInt(3)})
	isSub, err := Combine(OpSubset, sub, a)
	if err != nil {
		t.Fatal(err)
	}
	if isSub.Tag != True {
		t.Fatal("{2,3} subset {1,2,3} should be True")
	}
	notSub, err := Combine(OpSubset, a, sub)
	if err != nil {
		t.Fatal(err)
	}
	if notSub.Tag != False {
		t.Fatal("{1,2,3} subset {2,3} should be False")
	}
}

func TestInNotin(t *testing.T) {
	tup := NewTuple([]Value{NewInt(1), NewInt(2), NewInt(3)})
	in, err := Combine(OpIn, NewInt(2), tup)
	if err != nil || in.Tag != True {
		t.Fatalf("2 in [1,2,3] = %v, %v", in, err)
	}
	notin, err := Combine(OpNotin, NewInt(9), tup)
	if err != nil || notin.Tag != True {
		t.Fatalf("9 notin [1,2,3] = %v, %v", notin, err)
	}
}

func TestTupleStartPrepend(t *testing.T) {
	tail := NewTuple([]Value{NewInt(2), NewInt(3)})
	got, err := Combine(OpTupleStart, NewInt(1), tail)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{1, 2, 3}
	if len(got.Elems) != len(want) {
		t.Fatalf("prepend result length = %d, want %d", len(got.Elems), len(want))
	}
	for i, w := range want {
		if got.Elems[i].Int != w {
			t.Fatalf("prepend result[%d] = %d, want %d", i, got.Elems[i].Int, w)
		}
	}
}
