package fixed

import (
	"testing"
)

func TestPoint_FromInt64(t *testing.T) {
	tests := []struct {
		name  string
		value int64
		scale int
		want  string
	}{
		{"zero", 0, 0, "0"},
		{"positive", 123, 0, "123"},
		{"negative", -456, 0, "-456"},
		{"with scale", 123, 2, "1.23"},
		{"negative with scale", -456, 3, "-0.456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromInt64(tt.value, tt.scale)
			if got.String() != tt.want {
				t.Errorf("FromInt64(%d, %d) = %s; want %s", tt.value, tt.scale, got.String(), tt.want)
			}
		})
	}
}

func TestPoint_Arithmetic(t *testing.T) {
	a := MustFromString("10.5")
	b := MustFromString("2")

	if got := a.Add(b).String(); got != "12.5" {
		t.Errorf("Add = %s; want 12.5", got)
	}
	if got := a.Sub(b).String(); got != "8.5" {
		t.Errorf("Sub = %s; want 8.5", got)
	}
	if got := a.Mul(b).String(); got != "21" {
		t.Errorf("Mul = %s; want 21", got)
	}
	if got := a.Div(b).String(); got != "5.25" {
		t.Errorf("Div = %s; want 5.25", got)
	}
}

func TestPoint_Inv(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"4", "0.25"},
		{"0.5", "2"},
		{"8", "0.125"},
	}

	for _, tt := range tests {
		got := MustFromString(tt.in).Inv()
		if !got.Eq(MustFromString(tt.want)) {
			t.Errorf("Inv(%s) = %s; want %s", tt.in, got.String(), tt.want)
		}
	}
}

func TestPoint_TextRoundTrip(t *testing.T) {
	orig := MustFromString("-123.456789")

	text, err := orig.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}

	var back Point
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}

	if !back.Eq(orig) {
		t.Errorf("round trip = %s; want %s", back.String(), orig.String())
	}
}

func TestPoint_MinMax(t *testing.T) {
	a := FromInt(3, 0)
	b := FromInt(7, 0)

	if got := Min(a, b); !got.Eq(a) {
		t.Errorf("Min = %s; want %s", got.String(), a.String())
	}
	if got := Max(a, b); !got.Eq(b) {
		t.Errorf("Max = %s; want %s", got.String(), b.String())
	}
}

func TestPoint_Predicates(t *testing.T) {
	if !Zero.IsZero() {
		t.Error("Zero.IsZero() = false")
	}
	if !NegOne.IsNeg() {
		t.Error("NegOne.IsNeg() = false")
	}
	if !One.IsPos() {
		t.Error("One.IsPos() = false")
	}
	if One.Cmp(Two) >= 0 {
		t.Error("expected One < Two")
	}
}

func TestPoint_FromStringInvalid(t *testing.T) {
	if _, err := FromString("not-a-number"); err == nil {
		t.Error("expected error for invalid input")
	}
}
