package calculator

import (
	"errors"
	"math"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/mmynk/splitperfect/internal/money"
)

func ids(names ...string) []ParticipantID {
	out := make([]ParticipantID, len(names))
	for i, n := range names {
		out[i] = ParticipantID(n)
	}
	return out
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		members  []ParticipantID
		expenses []ExpenseRecord
		want     BalanceMap
	}{
		{
			name:    "two people share one item",
			members: ids("A", "B"),
			expenses: []ExpenseRecord{
				{Payer: "A", Items: []LineItem{{Amount: money.MustParse("10.00"), SharedBy: ids("A", "B")}}},
			},
			want: BalanceMap{"A": money.MustParse("5.00"), "B": money.MustParse("-5.00")},
		},
		{
			name:    "payer shares item with two others",
			members: ids("A", "B", "C"),
			expenses: []ExpenseRecord{
				{Payer: "A", Items: []LineItem{{Amount: money.MustParse("30.00"), SharedBy: ids("A", "B", "C")}}},
			},
			want: BalanceMap{
				"A": money.MustParse("20.00"),
				"B": money.MustParse("-10.00"),
				"C": money.MustParse("-10.00"),
			},
		},
		{
			name:    "two payers, three-way splits spread the leftover cent",
			members: ids("A", "B", "C"),
			expenses: []ExpenseRecord{
				{Payer: "A", Items: []LineItem{{Amount: money.MustParse("10.00"), SharedBy: ids("A", "B", "C")}}},
				{Payer: "B", Items: []LineItem{{Amount: money.MustParse("10.00"), SharedBy: ids("A", "B", "C")}}},
			},
			// A and B each consume 6.67, C consumes 6.66.
			want: BalanceMap{
				"A": money.MustParse("3.33"),
				"B": money.MustParse("3.33"),
				"C": money.MustParse("-6.66"),
			},
		},
		{
			name:    "everyone pays for an equal share nets to zero",
			members: ids("A", "B", "C"),
			expenses: []ExpenseRecord{
				{Payer: "A", Items: []LineItem{{Amount: money.MustParse("10.00"), SharedBy: ids("A", "B", "C")}}},
				{Payer: "B", Items: []LineItem{{Amount: money.MustParse("10.00"), SharedBy: ids("A", "B", "C")}}},
				{Payer: "C", Items: []LineItem{{Amount: money.MustParse("10.00"), SharedBy: ids("A", "B", "C")}}},
			},
			want: BalanceMap{"A": 0, "B": 0, "C": 0},
		},
		{
			name:     "members without activity still appear",
			members:  ids("A", "B", "C"),
			expenses: []ExpenseRecord{{Payer: "A", Items: []LineItem{{Amount: 400, SharedBy: ids("B")}}}},
			want:     BalanceMap{"A": 400, "B": -400, "C": 0},
		},
		{
			name:     "single member with no expenses",
			members:  ids("A"),
			expenses: nil,
			want:     BalanceMap{"A": 0},
		},
		{
			name:    "duplicate sharers count once",
			members: ids("A", "B"),
			expenses: []ExpenseRecord{
				{Payer: "A", Items: []LineItem{{Amount: 1000, SharedBy: ids("B", "B", "A")}}},
			},
			want: BalanceMap{"A": 500, "B": -500},
		},
		{
			name:    "negative line item acts as a discount",
			members: ids("A", "B"),
			expenses: []ExpenseRecord{
				{Payer: "A", Items: []LineItem{
					{Description: "Pizza", Amount: 2000, SharedBy: ids("A", "B")},
					{Description: "Coupon", Amount: -500, SharedBy: ids("A", "B")},
				}},
			},
			want: BalanceMap{"A": 750, "B": -750},
		},
		{
			name:    "expense without items credits nothing",
			members: ids("A", "B"),
			expenses: []ExpenseRecord{
				{Payer: "B"},
			},
			want: BalanceMap{"A": 0, "B": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Aggregate(tt.members, tt.expenses)
			if err != nil {
				t.Fatalf("Aggregate() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Aggregate() returned %d balances, want %d: %v", len(got), len(tt.want), got)
			}
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("balance[%s] = %s, want %s", id, got[id], want)
				}
			}
			if sum, err := got.Sum(); err != nil || sum != 0 {
				t.Errorf("balances sum to %s, want exactly 0", sum)
			}
		})
	}
}

func TestAggregate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		members  []ParticipantID
		expenses []ExpenseRecord
		wantErr  error
	}{
		{
			name:    "empty sharer set",
			members: ids("A", "B"),
			expenses: []ExpenseRecord{
				{Payer: "A", Items: []LineItem{{Amount: 1000, SharedBy: nil}}},
			},
			wantErr: ErrEmptySharerSet,
		},
		{
			name:    "unknown payer",
			members: ids("A", "B"),
			expenses: []ExpenseRecord{
				{Payer: "Z", Items: []LineItem{{Amount: 1000, SharedBy: ids("A")}}},
			},
			wantErr: ErrUnknownParticipant,
		},
		{
			name:    "unknown sharer",
			members: ids("A", "B"),
			expenses: []ExpenseRecord{
				{Payer: "A", Items: []LineItem{{Amount: 1000, SharedBy: ids("A", "Z")}}},
			},
			wantErr: ErrUnknownParticipant,
		},
		{
			name:    "bad record after a good one",
			members: ids("A", "B"),
			expenses: []ExpenseRecord{
				{Payer: "A", Items: []LineItem{{Amount: 1000, SharedBy: ids("A", "B")}}},
				{Payer: "B", Items: []LineItem{{Amount: 500, SharedBy: []ParticipantID{}}}},
			},
			wantErr: ErrEmptySharerSet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Aggregate(tt.members, tt.expenses)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Aggregate() error = %v, want %v", err, tt.wantErr)
			}
			if got != nil {
				t.Errorf("Aggregate() returned partial balances %v", got)
			}
		})
	}
}

func TestAggregate_ErrorDetails(t *testing.T) {
	_, err := Aggregate(ids("A"), []ExpenseRecord{
		{ID: "receipt-1", Payer: "A", Items: []LineItem{{Amount: 100, SharedBy: ids("A")}}},
		{ID: "receipt-2", Payer: "A", Items: []LineItem{{Amount: 100, SharedBy: ids("A", "Ghost")}}},
	})

	var unknown *UnknownParticipantError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected *UnknownParticipantError, got %T: %v", err, err)
	}
	if unknown.Participant != "Ghost" || unknown.Expense != "receipt-2" {
		t.Errorf("got participant=%q expense=%q", unknown.Participant, unknown.Expense)
	}

	_, err = Aggregate(ids("A"), []ExpenseRecord{
		{Payer: "A", Items: []LineItem{{Amount: 100, SharedBy: ids("A")}, {Amount: 5}}},
	})
	var empty *EmptySharerSetError
	if !errors.As(err, &empty) {
		t.Fatalf("expected *EmptySharerSetError, got %T: %v", err, err)
	}
	if empty.Expense != "#1" || empty.Item != 1 {
		t.Errorf("got expense=%q item=%d", empty.Expense, empty.Item)
	}
}

// randomLedger builds a valid random group. When wholeShares is set, every
// item divides evenly among its sharers into whole currency units.
func randomLedger(r *rand.Rand, wholeShares bool) ([]ParticipantID, []ExpenseRecord) {
	n := 1 + r.IntN(8)
	members := make([]ParticipantID, n)
	for i := range members {
		members[i] = ParticipantID(string(rune('A' + i)))
	}

	expenses := make([]ExpenseRecord, r.IntN(15))
	for i := range expenses {
		e := ExpenseRecord{Payer: members[r.IntN(n)]}
		for range 1 + r.IntN(4) {
			var sharers []ParticipantID
			for _, m := range members {
				if r.IntN(2) == 0 {
					sharers = append(sharers, m)
				}
			}
			if len(sharers) == 0 {
				sharers = append(sharers, members[r.IntN(n)])
			}
			amount := money.Money(1 + r.IntN(50000))
			if wholeShares {
				amount = money.Money(int64(len(sharers)) * int64(1+r.IntN(200)) * 100)
			}
			e.Items = append(e.Items, LineItem{Amount: amount, SharedBy: sharers})
		}
		expenses[i] = e
	}
	return members, expenses
}

func TestAggregate_ZeroSum(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := range 500 {
		members, expenses := randomLedger(r, false)
		balances, err := Aggregate(members, expenses)
		if err != nil {
			t.Fatalf("case %d: Aggregate() error = %v", i, err)
		}
		if sum, err := balances.Sum(); err != nil || sum != 0 {
			t.Fatalf("case %d: balances sum to %s, want exactly 0", i, sum)
		}
	}
}

func TestAggregate_RoundingStaysWithinOneCent(t *testing.T) {
	// Thirty items of 10.00 split three ways: an exact share is 100.00 each.
	var expenses []ExpenseRecord
	for range 30 {
		expenses = append(expenses, ExpenseRecord{
			Payer: "A",
			Items: []LineItem{{Amount: 1000, SharedBy: ids("A", "B", "C")}},
		})
	}

	summary, err := Summarize(ids("A", "B", "C"), expenses)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	for _, b := range summary.Balances {
		if diff := (b.TotalOwed - money.MustParse("100.00")).Abs(); diff > money.Cent {
			t.Errorf("%s owes %s, more than a cent away from 100.00", b.Participant, b.TotalOwed)
		}
	}
}

func TestSummarize(t *testing.T) {
	summary, err := Summarize(ids("Alice", "Bob", "Charlie"), []ExpenseRecord{
		{Payer: "Alice", Items: []LineItem{
			{Description: "Pizza", Amount: money.MustParse("24.00"), SharedBy: ids("Alice", "Bob", "Charlie")},
			{Description: "Wine", Amount: money.MustParse("18.00"), SharedBy: ids("Alice", "Bob")},
		}},
		{Payer: "Bob", Items: []LineItem{
			{Description: "Taxi", Amount: money.MustParse("12.00"), SharedBy: ids("Bob", "Charlie")},
		}},
	})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if summary.TotalExpenses != money.MustParse("54.00") {
		t.Errorf("TotalExpenses = %s, want 54.00", summary.TotalExpenses)
	}

	// Alice: paid 42, owes 8 + 9 = 17 -> +25
	// Bob: paid 12, owes 8 + 9 + 6 = 23 -> -11
	// Charlie: paid 0, owes 8 + 6 = 14 -> -14
	want := []MemberBalance{
		{Participant: "Alice", TotalPaid: 4200, TotalOwed: 1700, NetBalance: 2500},
		{Participant: "Bob", TotalPaid: 1200, TotalOwed: 2300, NetBalance: -1100},
		{Participant: "Charlie", TotalPaid: 0, TotalOwed: 1400, NetBalance: -1400},
	}
	if len(summary.Balances) != len(want) {
		t.Fatalf("got %d balances, want %d", len(summary.Balances), len(want))
	}
	for i := range want {
		if summary.Balances[i] != want[i] {
			t.Errorf("balance %d = %+v, want %+v", i, summary.Balances[i], want[i])
		}
	}

	wantTxns := []SettlementTransaction{
		{From: "Charlie", To: "Alice", Amount: 1400},
		{From: "Bob", To: "Alice", Amount: 1100},
	}
	if len(summary.Transactions) != len(wantTxns) {
		t.Fatalf("got %d transactions, want %d: %v", len(summary.Transactions), len(wantTxns), summary.Transactions)
	}
	for i := range wantTxns {
		if summary.Transactions[i] != wantTxns[i] {
			t.Errorf("transaction %d = %+v, want %+v", i, summary.Transactions[i], wantTxns[i])
		}
	}
}

func TestSummarize_InvalidInput(t *testing.T) {
	_, err := Summarize(ids("A"), []ExpenseRecord{{Payer: "B"}})
	if !errors.Is(err, ErrUnknownParticipant) {
		t.Errorf("Summarize() error = %v, want ErrUnknownParticipant", err)
	}
}

func TestSummarize_SingleCentShares(t *testing.T) {
	summary, err := Summarize(ids("A", "B", "C"), []ExpenseRecord{
		{Payer: "C", Items: []LineItem{{Description: "Gum", Amount: money.MustParse("0.02"), SharedBy: ids("A", "B")}}},
	})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	want := []MemberBalance{
		{Participant: "A", TotalPaid: 0, TotalOwed: 1, NetBalance: -1},
		{Participant: "B", TotalPaid: 0, TotalOwed: 1, NetBalance: -1},
		{Participant: "C", TotalPaid: 2, TotalOwed: 0, NetBalance: 2},
	}
	if !reflect.DeepEqual(summary.Balances, want) {
		t.Errorf("Balances = %+v, want %+v", summary.Balances, want)
	}

	wantTxns := []SettlementTransaction{
		{From: "A", To: "C", Amount: money.Cent},
		{From: "B", To: "C", Amount: money.Cent},
	}
	if !reflect.DeepEqual(summary.Transactions, wantTxns) {
		t.Errorf("Transactions = %v, want %v", summary.Transactions, wantTxns)
	}
}

func TestAmountOverflow(t *testing.T) {
	half := money.MustParse("50000000000000000.00")
	tests := []struct {
		name     string
		expenses []ExpenseRecord
	}{
		{
			name: "item amounts overflow the expense total",
			expenses: []ExpenseRecord{
				{ID: "big", Payer: "A", Items: []LineItem{
					{Amount: half, SharedBy: ids("B")},
					{Amount: half, SharedBy: ids("B")},
				}},
			},
		},
		{
			name: "expense totals overflow the ledger total",
			expenses: []ExpenseRecord{
				{ID: "first", Payer: "A", Items: []LineItem{{Amount: half, SharedBy: ids("B")}}},
				{ID: "second", Payer: "A", Items: []LineItem{{Amount: half, SharedBy: ids("C")}}},
			},
		},
		{
			name: "shares overflow what a sharer owes",
			// The second expense nets to zero, so only B's share total overflows.
			expenses: []ExpenseRecord{
				{ID: "first", Payer: "A", Items: []LineItem{{Amount: half, SharedBy: ids("B")}}},
				{ID: "second", Payer: "C", Items: []LineItem{
					{Amount: half, SharedBy: ids("B")},
					{Amount: -half, SharedBy: ids("A")},
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members := ids("A", "B", "C")
			if got, err := Aggregate(members, tt.expenses); !errors.Is(err, ErrAmountOverflow) {
				t.Errorf("Aggregate() = %v, %v, want ErrAmountOverflow", got, err)
			}
			if _, err := Summarize(members, tt.expenses); !errors.Is(err, ErrAmountOverflow) {
				t.Errorf("Summarize() error = %v, want ErrAmountOverflow", err)
			}
		})
	}

	t.Run("split of an oversized expense", func(t *testing.T) {
		_, err := SplitExpense(ids("A", "B"), tests[0].expenses[0])
		if !errors.Is(err, ErrAmountOverflow) {
			t.Errorf("SplitExpense() error = %v, want ErrAmountOverflow", err)
		}
	})

	t.Run("simplify of balances too large to total", func(t *testing.T) {
		_, err := Simplify(BalanceMap{"A": money.Money(math.MaxInt64), "B": 1, "C": -1})
		if !errors.Is(err, ErrAmountOverflow) {
			t.Errorf("Simplify() error = %v, want ErrAmountOverflow", err)
		}
	})
}
