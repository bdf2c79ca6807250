package runtime

import (
	"math"
	"testing"
)

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		0:            "0",
		3:            "3",
		-7:           "-7",
		2.5:          "2.5",
		0.1:          "0.1",
		1e20:         "100000000000000000000",
		1e21:         "1e+21",
		1e-8:         "1e-08",
		123456789.25: "123456789.25",
	}
	for in, want := range cases {
		if got := formatNumber(in); got != want {
			t.Errorf("formatNumber(%v): expected %q, got %q", in, want, got)
		}
	}

	if got := formatNumber(math.Inf(1)); got != "inf" {
		t.Errorf("expected inf, got %q", got)
	}
	if got := formatNumber(math.Inf(-1)); got != "-inf" {
		t.Errorf("expected -inf, got %q", got)
	}
	if got := formatNumber(math.NaN()); got != "nan" {
		t.Errorf("expected nan, got %q", got)
	}
}

func TestIsTruthy(t *testing.T) {
	falsy := []Value{NilVal{}, BoolVal(false)}
	truthy := []Value{BoolVal(true), NumberVal(0), StringVal(""), &Class{Name: "C"}}

	for _, v := range falsy {
		if IsTruthy(v) {
			t.Errorf("%s should be falsy", v)
		}
	}
	for _, v := range truthy {
		if !IsTruthy(v) {
			t.Errorf("%q should be truthy", v.String())
		}
	}
}

func TestValuesEqual(t *testing.T) {
	cls := &Class{Name: "C"}
	a, b := NewInstance(cls), NewInstance(cls)

	cases := []struct {
		left, right Value
		want        bool
	}{
		{NilVal{}, NilVal{}, true},
		{NilVal{}, BoolVal(false), false},
		{NumberVal(1), NumberVal(1), true},
		{NumberVal(1), StringVal("1"), false},
		{StringVal("x"), StringVal("x"), true},
		{NumberVal(math.NaN()), NumberVal(math.NaN()), false},
		{a, a, true},
		{a, b, false},
		{cls, cls, true},
	}
	for _, c := range cases {
		if got := valuesEqual(c.left, c.right); got != c.want {
			t.Errorf("%s == %s: expected %v, got %v", c.left, c.right, c.want, got)
		}
	}
}
