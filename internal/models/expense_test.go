package models

import (
	"testing"
	"time"

	"github.com/mmynk/splitperfect/internal/money"
)

func TestDefaultExpenseTitle(t *testing.T) {
	createdAt := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC).Unix()
	items := func(names ...string) []Item {
		out := make([]Item, len(names))
		for i, n := range names {
			out[i].Description = n
		}
		return out
	}

	tests := []struct {
		name  string
		items []Item
		want  string
	}{
		{"no items", nil, "Expense - Mar 5, 2024"},
		{"blank descriptions", items("", ""), "Expense - Mar 5, 2024"},
		{"one item", items("Pizza"), "Pizza"},
		{"three items", items("Pizza", "Beer", "Salad"), "Pizza, Beer, Salad"},
		{"many items", items("Pizza", "Beer", "Salad", "Cake"), "Pizza, Beer and 2 others"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultExpenseTitle(tt.items, createdAt)
			if got != tt.want {
				t.Errorf("DefaultExpenseTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpenseTotal(t *testing.T) {
	e := &Expense{Items: []Item{
		{Amount: money.MustParse("10.00")},
		{Amount: money.MustParse("0.01")},
		{Amount: money.MustParse("-2.50")},
	}}
	if got := e.Total(); got != money.MustParse("7.51") {
		t.Errorf("Total() = %s, want 7.51", got)
	}
}

func TestGroupMembers(t *testing.T) {
	g := &Group{Members: []Member{{UserID: "u1"}, {UserID: "u2"}}}
	if !g.HasMember("u2") {
		t.Error("expected u2 to be a member")
	}
	if g.HasMember("u3") {
		t.Error("expected u3 not to be a member")
	}
	ids := g.MemberIDs()
	if len(ids) != 2 || ids[0] != "u1" || ids[1] != "u2" {
		t.Errorf("MemberIDs() = %v", ids)
	}
}

func TestNewJoinCode(t *testing.T) {
	a, err := NewJoinCode()
	if err != nil {
		t.Fatalf("NewJoinCode failed: %v", err)
	}
	b, err := NewJoinCode()
	if err != nil {
		t.Fatalf("NewJoinCode failed: %v", err)
	}
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty codes, got %q and %q", a, b)
	}
}
