// Package calculator computes net balances for a group of people sharing
// expenses and the payments that settle them.
//
// All functions are pure: they read their arguments, allocate fresh results,
// and hold no state between calls, so they are safe to call concurrently.
package calculator

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/mmynk/splitperfect/internal/money"
)

// ParticipantID identifies a group member.
type ParticipantID string

// LineItem is a single cost on an expense, split equally among SharedBy.
// SharedBy is treated as a set: duplicates count once.
type LineItem struct {
	Description string
	Amount      money.Money
	SharedBy    []ParticipantID
}

// ExpenseRecord is one submitted expense, e.g. one receipt.
type ExpenseRecord struct {
	ID    string
	Payer ParticipantID
	Items []LineItem
}

// Total returns the sum of the record's line items, or ErrAmountOverflow.
func (e ExpenseRecord) Total() (money.Money, error) {
	amounts := make([]money.Money, len(e.Items))
	for i, item := range e.Items {
		amounts[i] = item.Amount
	}
	return money.Sum(amounts...)
}

// BalanceMap holds one net balance per participant.
// Positive = the group owes this participant, negative = they owe the group.
type BalanceMap map[ParticipantID]money.Money

// Sum returns the total of all balances. Zero for any well-formed map.
func (b BalanceMap) Sum() (money.Money, error) {
	credit, debt, err := b.sides()
	if err != nil {
		return 0, err
	}
	return credit - debt, nil
}

// sides totals the positive balances and the magnitudes of the negative ones.
// Same-sign sums overflow only if their true total does, whatever the map order.
func (b BalanceMap) sides() (credit, debt money.Money, err error) {
	for _, v := range b {
		switch {
		case v > 0:
			credit, err = money.Add(credit, v)
		case v < 0:
			var owed money.Money
			if owed, err = money.Sub(0, v); err == nil {
				debt, err = money.Add(debt, owed)
			}
		}
		if err != nil {
			return 0, 0, err
		}
	}
	return credit, debt, nil
}

// MemberBalance is the per-participant breakdown shown in a group summary.
type MemberBalance struct {
	Participant ParticipantID
	TotalPaid   money.Money // Sum of expenses this participant paid for
	TotalOwed   money.Money // This participant's share of all consumed items
	NetBalance  money.Money // TotalPaid - TotalOwed
}

// Summary is the complete settlement view of a group.
type Summary struct {
	TotalExpenses money.Money
	Balances      []MemberBalance // Ordered by participant ID
	Transactions  []SettlementTransaction
}

// Aggregate folds expenses into one net balance per member.
//
// Every member appears in the result, with zero if they have no activity.
// The payer of each record is credited with the record total; each line item
// is split equally among its sharers and debited from them. Leftover minor
// units go to the sharers who have absorbed the least rounding so far, so the
// result always sums to exactly zero.
//
// Returns an UnknownParticipantError or EmptySharerSetError without folding
// anything if the input is malformed.
// Returns ErrAmountOverflow if a total leaves the money range.
func Aggregate(members []ParticipantID, expenses []ExpenseRecord) (BalanceMap, error) {
	l, err := fold(members, expenses)
	if err != nil {
		return nil, err
	}

	balances := make(BalanceMap, len(l.members))
	for id := range l.members {
		if balances[id], err = l.net(id); err != nil {
			return nil, err
		}
	}
	return balances, nil
}

// Summarize aggregates the expenses, simplifies the resulting balances, and
// returns both together with per-member paid/owed totals.
func Summarize(members []ParticipantID, expenses []ExpenseRecord) (*Summary, error) {
	l, err := fold(members, expenses)
	if err != nil {
		return nil, err
	}

	summary := &Summary{TotalExpenses: l.total}
	balances := make(BalanceMap, len(l.members))
	for id := range l.members {
		net, err := l.net(id)
		if err != nil {
			return nil, err
		}
		summary.Balances = append(summary.Balances, MemberBalance{
			Participant: id,
			TotalPaid:   l.paid[id],
			TotalOwed:   l.owed[id],
			NetBalance:  net,
		})
		balances[id] = net
	}
	sort.Slice(summary.Balances, func(i, j int) bool {
		return summary.Balances[i].Participant < summary.Balances[j].Participant
	})

	summary.Transactions, err = Simplify(balances)
	if err != nil {
		return nil, fmt.Errorf("failed to simplify balances: %w", err)
	}
	return summary, nil
}

// ledger accumulates paid and consumed amounts during a fold.
type ledger struct {
	members map[ParticipantID]struct{}
	paid    map[ParticipantID]money.Money
	owed    map[ParticipantID]money.Money
	total   money.Money

	// carry is the exact share minus the charged share, summed over every
	// item split so far. Leftover units go to the largest carry first.
	carry map[ParticipantID]*big.Rat
}

func newLedger(members []ParticipantID) *ledger {
	l := &ledger{
		members: make(map[ParticipantID]struct{}, len(members)),
		paid:    make(map[ParticipantID]money.Money),
		owed:    make(map[ParticipantID]money.Money),
		carry:   make(map[ParticipantID]*big.Rat),
	}
	for _, m := range members {
		l.members[m] = struct{}{}
	}
	return l
}

// fold validates the expenses and then accumulates them. Every running total
// is overflow-checked, so an oversized ledger fails instead of wrapping.
func fold(members []ParticipantID, expenses []ExpenseRecord) (*ledger, error) {
	l := newLedger(members)
	if err := l.validate(expenses); err != nil {
		return nil, err
	}

	for i, e := range expenses {
		if err := l.add(e); err != nil {
			return nil, fmt.Errorf("expense %s: %w", expenseRef(e, i), err)
		}
	}
	return l, nil
}

func (l *ledger) add(e ExpenseRecord) error {
	total, err := e.Total()
	if err != nil {
		return err
	}
	if l.total, err = money.Add(l.total, total); err != nil {
		return err
	}
	if l.paid[e.Payer], err = money.Add(l.paid[e.Payer], total); err != nil {
		return err
	}
	for _, item := range e.Items {
		for _, s := range l.split(item) {
			if l.owed[s.participant], err = money.Add(l.owed[s.participant], s.amount); err != nil {
				return err
			}
		}
	}
	return nil
}

// net returns paid minus owed for one member.
func (l *ledger) net(id ParticipantID) (money.Money, error) {
	return money.Sub(l.paid[id], l.owed[id])
}

// validate checks every reference before anything is folded, so a bad record
// never produces a partial result.
func (l *ledger) validate(expenses []ExpenseRecord) error {
	for i, e := range expenses {
		ref := expenseRef(e, i)
		if _, ok := l.members[e.Payer]; !ok {
			return &UnknownParticipantError{Participant: e.Payer, Expense: ref}
		}
		for j, item := range e.Items {
			if len(item.SharedBy) == 0 {
				return &EmptySharerSetError{Expense: ref, Item: j}
			}
			for _, p := range item.SharedBy {
				if _, ok := l.members[p]; !ok {
					return &UnknownParticipantError{Participant: p, Expense: ref}
				}
			}
		}
	}
	return nil
}

type share struct {
	participant ParticipantID
	amount      money.Money
}

// split divides one item among its (deduplicated) sharers and updates carries.
func (l *ledger) split(item LineItem) []share {
	sharers := uniqueSorted(item.SharedBy)
	n := len(sharers)

	exact := new(big.Rat).SetFrac64(item.Amount.Cents(), int64(n))
	for _, p := range sharers {
		if l.carry[p] == nil {
			l.carry[p] = new(big.Rat)
		}
	}

	// Extra units of a positive amount go to whoever has been undercharged
	// the most; for a negative amount, to whoever has been overcharged.
	negative := item.Amount < 0
	sort.SliceStable(sharers, func(i, j int) bool {
		c := l.carry[sharers[i]].Cmp(l.carry[sharers[j]])
		if negative {
			c = -c
		}
		return c > 0
	})

	parts, _ := item.Amount.Split(n)
	shares := make([]share, n)
	for i, p := range sharers {
		shares[i] = share{participant: p, amount: parts[i]}
		c := l.carry[p]
		c.Add(c, exact)
		c.Sub(c, new(big.Rat).SetInt64(parts[i].Cents()))
	}
	return shares
}

func uniqueSorted(ids []ParticipantID) []ParticipantID {
	seen := make(map[ParticipantID]struct{}, len(ids))
	out := make([]ParticipantID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func expenseRef(e ExpenseRecord, index int) string {
	if e.ID != "" {
		return e.ID
	}
	return fmt.Sprintf("#%d", index+1)
}
