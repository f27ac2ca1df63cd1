package domain

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseMoney_Exact(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00000000"},
		{"0.1", "0.10000000"},
		{"100.00000001", "100.00000001"},
		{"0.00000001", "0.00000001"},
		{"-2.5", "-2.50000000"},
		// Ninth digit rounds half to even.
		{"0.000000015", "0.00000002"},
		{"0.000000025", "0.00000002"},
		{"0.000000016", "0.00000002"},
		{"0.000000014", "0.00000001"},
	}
	for _, tt := range tests {
		m, err := ParseMoney(tt.in)
		if err != nil {
			t.Fatalf("ParseMoney(%q) failed: %v", tt.in, err)
		}
		if got := m.String(); got != tt.want {
			t.Errorf("ParseMoney(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseMoney_Rejects(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2.3", "1e"} {
		if _, err := ParseMoney(in); err == nil {
			t.Errorf("ParseMoney(%q) should fail", in)
		}
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	a := MustMoney("0.00000001")
	b := MustMoney("0.00000002")

	if got := a.Add(b).String(); got != "0.00000003" {
		t.Errorf("Add = %s", got)
	}
	if got := b.Sub(a).String(); got != "0.00000001" {
		t.Errorf("Sub = %s", got)
	}
	// 1e-8 * 0.5 = 5e-9, a tie, rounds to the even neighbor zero.
	if got := a.Mul(MustMoney("0.5")).String(); got != "0.00000000" {
		t.Errorf("Mul tie = %s", got)
	}
	if got := MustMoney("100.00000001").Sub(MustMoney("0.00000003")).String(); got != "99.99999998" {
		t.Errorf("Sub = %s", got)
	}
}

func TestMoney_Div(t *testing.T) {
	tests := []struct {
		num, den, want string
	}{
		{"1", "3", "0.33333333"},
		{"2", "3", "0.66666667"},
		{"1", "2", "0.50000000"},
		// Ties at the last place go to even: 5e-9 -> 0, 1.5e-8 -> 2e-8.
		{"0.00000001", "2", "0.00000000"},
		{"0.00000003", "2", "0.00000002"},
		{"0.05", "0.00250003", "19.99976000"},
	}
	for _, tt := range tests {
		got := MustMoney(tt.num).Div(MustMoney(tt.den)).String()
		if got != tt.want {
			t.Errorf("%s / %s = %s, want %s", tt.num, tt.den, got, tt.want)
		}
	}
}

func TestMoney_DivByZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on division by zero")
		}
	}()
	MustMoney("1").Div(Money{})
}

func TestMoney_Comparisons(t *testing.T) {
	small := MustMoney("0.00000001")
	big := MustMoney("0.00000002")

	if !small.Equal(MustMoney("0.00000001")) {
		t.Error("Equal failed")
	}
	if !big.GreaterThan(small) || small.GreaterThan(big) {
		t.Error("GreaterThan failed")
	}
	if !small.GreaterThanOrEqual(small) {
		t.Error("GreaterThanOrEqual failed")
	}
	if !small.LessThanOrEqual(big) {
		t.Error("LessThanOrEqual failed")
	}
	if got := small.Cmp(big); got != -1 {
		t.Errorf("Cmp = %d, want -1", got)
	}
	if !(Money{}).IsZero() || small.IsZero() {
		t.Error("IsZero failed")
	}
	if !small.IsPositive() || (Money{}).IsPositive() {
		t.Error("IsPositive failed")
	}
}

func TestMoney_ZeroValueIsUsable(t *testing.T) {
	var m Money
	if got := m.String(); got != "0.00000000" {
		t.Errorf("zero value String = %s", got)
	}
	if got := m.Add(Satoshi).String(); got != "0.00000001" {
		t.Errorf("zero value Add = %s", got)
	}
}

func TestMoney_UnmarshalYAML(t *testing.T) {
	var cfg struct {
		Quoted Money `yaml:"quoted"`
		Bare   Money `yaml:"bare"`
	}
	data := "quoted: \"0.00000003\"\nbare: 0.1\n"
	if err := yaml.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got := cfg.Quoted.String(); got != "0.00000003" {
		t.Errorf("quoted = %s", got)
	}
	if got := cfg.Bare.String(); got != "0.10000000" {
		t.Errorf("bare = %s", got)
	}

	var bad struct {
		M Money `yaml:"m"`
	}
	if err := yaml.Unmarshal([]byte("m: [1, 2]\n"), &bad); err == nil {
		t.Error("expected error for non-scalar money")
	}
}
