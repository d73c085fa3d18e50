package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.23", 1.23, true},
		{"1,23", 1.23, true},
		{" 2.50 ", 2.5, true},
		{"-50", -50, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFormatDollars(t *testing.T) {
	cases := map[float64]string{
		0:       "$0.00",
		12.5:    "$12.50",
		1234.5:  "$1,234.50",
		-12:     "-$12.00",
		1000000: "$1,000,000.00",
		0.005:   "$0.01",
		999.999: "$1,000.00",
	}
	for in, want := range cases {
		if got := FormatDollars(in); got != want {
			t.Errorf("FormatDollars(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestRoundCents(t *testing.T) {
	if got := RoundCents(50.254999); got != 50.25 {
		t.Fatalf("RoundCents = %v", got)
	}
	if got := RoundCents(-1.005); got != -1 && got != -1.01 {
		t.Fatalf("RoundCents(-1.005) = %v", got)
	}
}
