package value

import "testing"

func TestIntegerArithmetic(t *testing.T) {
	cases := []struct {
		op   BinOp
		l, r int64
		want int64
	}{
		{OpAdd, 3, 4, 7},
		{OpSubtract, 10, 3, 7},
		{OpMult, 6, 7, 42},
		{OpIntDiv, 17, 5, 3},
		{OpExp, 2, 10, 1024},
	}
	for _, c := range cases {
		got, err := Binary(c.op, NewInt(c.l), NewInt(c.r))
		if err != nil {
			t.Fatalf("Binary(%v, %d, %d): %v", c.op, c.l, c.r, err)
		}
		if got.Tag != Integer || got.Int != c.want {
			t.Errorf("Binary(%v, %d, %d) = %v, want Integer(%d)", c.op, c.l, c.r, got, c.want)
		}
	}
}

func TestDivPromotesToFloat(t *testing.T) {
	got, err := Binary(OpDiv, NewInt(7), NewInt(2))
	if err != nil {
		t.Fatal(err)
	}
	if got.Tag != Float || got.Flt != 3.5 {
		t.Fatalf("Div(7,2) = %v, want Float(3.5)", got)
	}
}

func TestDivByZero(t *testing.T) {
	if _, err := Binary(OpDiv, NewInt(1), NewInt(0)); err == nil {
		t.Fatal("expected DivByZero for Div by 0")
	}
	if _, err := Binary(OpIntDiv, NewInt(1), NewInt(0)); err == nil {
		t.Fatal("expected DivByZero for IntDiv by 0")
	}
}

func TestFloatPromotion(t *testing.T) {
	got, err := Binary(OpMult, NewFloat(-1.0), NewInt(2))
	if err != nil {
		t.Fatal(err)
	}
	if got.Tag != Float || got.Flt != -2.0 {
		t.Fatalf("Mult(-1.0, 2) = %v, want Float(-2.0)", got)
	}
}

func TestIntDivOverFloatIsTypeError(t *testing.T) {
	if _, err := Binary(OpIntDiv, NewFloat(1), NewInt(2)); err == nil {
		t.Fatal("expected TypeError for IntDiv with a Float operand")
	}
}

func TestRelational(t *testing.T) {
	lt, err := Binary(OpLt, NewInt(1), NewInt(2))
	if err != nil || lt.Tag != True {
		t.Fatalf("1 < 2 = %v, %v", lt, err)
	}
	lteq, err := Binary(OpLteq, NewInt(2), NewInt(2))
	if err != nil || lteq.Tag != True {
		t.Fatalf("2 <= 2 = %v, %v", lteq, err)
	}
}

func TestBinaryTypeErrorOnUnsupportedOperands(t *testing.T) {
	if _, err := Binary(OpAdd, NewString("x"), NewInt(1)); err == nil {
		t.Fatal("expected TypeError for String + Integer")
	}
}

func TestIntegerOverflowWraps(t *testing.T) {
	const maxInt64 = int64(1<<63 - 1)
	got, err := Binary(OpAdd, NewInt(maxInt64), NewInt(1))
	if err != nil {
		t.Fatal(err)
	}
	if got.Int != -maxInt64-1 { // wraps to math.MinInt64
		t.Fatalf("overflowing Add did not wrap as expected: got %d", got.Int)
	}
}
