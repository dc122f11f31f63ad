package money

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Money
		wantErr error
	}{
		{in: "10", want: 1000},
		{in: "10.5", want: 1050},
		{in: "0.01", want: 1},
		{in: "-3.07", want: -307},
		{in: " 42.00 ", want: 4200},
		{in: "1.005", wantErr: ErrTooPrecise},
		{in: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.in == "abc" {
				if err == nil {
					t.Fatal("expected error for non-numeric input")
				}
				return
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := map[Money]string{
		0:     "0.00",
		1:     "0.01",
		1050:  "10.50",
		-307:  "-3.07",
		-5:    "-0.05",
		12345: "123.45",
	}
	for m, want := range tests {
		if got := m.String(); got != want {
			t.Errorf("Money(%d).String() = %q, want %q", int64(m), got, want)
		}
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		amount Money
		n      int
		want   []Money
	}{
		{name: "even", amount: 1000, n: 2, want: []Money{500, 500}},
		{name: "remainder goes to first parts", amount: 1000, n: 3, want: []Money{334, 333, 333}},
		{name: "two leftover units", amount: 1001, n: 3, want: []Money{334, 334, 333}},
		{name: "negative amount", amount: -1000, n: 3, want: []Money{-334, -333, -333}},
		{name: "less than one unit each", amount: 2, n: 3, want: []Money{1, 1, 0}},
		{name: "single part", amount: 777, n: 1, want: []Money{777}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.amount.Split(tt.n)
			if err != nil {
				t.Fatalf("Split failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Split returned %d parts, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("part %d = %s, want %s", i, got[i], tt.want[i])
				}
			}
			if sum, err := Sum(got...); err != nil || sum != tt.amount {
				t.Errorf("parts sum to %s (err %v), want %s", sum, err, tt.amount)
			}
		})
	}

	if _, err := Money(100).Split(0); !errors.Is(err, ErrInvalidParts) {
		t.Errorf("Split(0) error = %v, want ErrInvalidParts", err)
	}
}

func TestCheckedArithmetic(t *testing.T) {
	const maxMoney = Money(math.MaxInt64)
	const minMoney = Money(math.MinInt64)

	tests := []struct {
		name    string
		op      func() (Money, error)
		want    Money
		wantErr bool
	}{
		{name: "add", op: func() (Money, error) { return Add(150, -50) }, want: 100},
		{name: "add past max", op: func() (Money, error) { return Add(maxMoney, 1) }, wantErr: true},
		{name: "add past min", op: func() (Money, error) { return Add(minMoney, -1) }, wantErr: true},
		{name: "add at max", op: func() (Money, error) { return Add(maxMoney-1, 1) }, want: maxMoney},
		{name: "sub", op: func() (Money, error) { return Sub(100, 250) }, want: -150},
		{name: "sub past min", op: func() (Money, error) { return Sub(minMoney, 1) }, wantErr: true},
		{name: "sub past max", op: func() (Money, error) { return Sub(0, minMoney) }, wantErr: true},
		{name: "mul", op: func() (Money, error) { return Mul(250, 3) }, want: 750},
		{name: "mul by zero", op: func() (Money, error) { return Mul(maxMoney, 0) }, want: 0},
		{name: "mul negative", op: func() (Money, error) { return Mul(-250, 4) }, want: -1000},
		{name: "mul past max", op: func() (Money, error) { return Mul(maxMoney/2+1, 2) }, wantErr: true},
		{name: "mul min by minus one", op: func() (Money, error) { return Mul(minMoney, -1) }, wantErr: true},
		{name: "sum", op: func() (Money, error) { return Sum(100, 200, -50) }, want: 250},
		{
			name: "sum of two in-range halves",
			op: func() (Money, error) {
				half := MustParse("50000000000000000.00")
				return Sum(half, half)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op()
			if tt.wantErr {
				if !errors.Is(err, ErrOverflow) {
					t.Fatalf("error = %v, want ErrOverflow", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestJSON(t *testing.T) {
	type payload struct {
		Amount Money `json:"amount"`
	}

	data, err := json.Marshal(payload{Amount: 1234})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"amount":12.34}` {
		t.Errorf("Marshal = %s", data)
	}

	for _, in := range []string{`{"amount":12.34}`, `{"amount":"12.34"}`} {
		var p payload
		if err := json.Unmarshal([]byte(in), &p); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", in, err)
		}
		if p.Amount != 1234 {
			t.Errorf("Unmarshal(%s) = %d, want 1234", in, p.Amount)
		}
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"amount":1.234}`), &p); err == nil {
		t.Error("expected error for three decimal places")
	}
}

func TestYAML(t *testing.T) {
	var v struct {
		Amount Money `yaml:"amount"`
	}
	if err := yaml.Unmarshal([]byte("amount: 7.5\n"), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if v.Amount != 750 {
		t.Errorf("Amount = %d, want 750", v.Amount)
	}
}
