package calculator

import (
	"fmt"
	"sort"

	"github.com/mmynk/splitperfect/internal/money"
)

// PersonItem is one participant's share of a single line item.
type PersonItem struct {
	Description string
	Amount      money.Money
}

// PersonSplit is one participant's share of a single expense.
type PersonSplit struct {
	Participant ParticipantID
	Total       money.Money
	Items       []PersonItem
}

// SplitExpense breaks a single expense down into what each consumer owes for
// it, item by item. Only participants who share at least one item appear;
// the result is ordered by participant ID.
//
// The expense is split in isolation, using the same remainder rule as
// Aggregate. Within a group ledger the leftover units of an item may land on
// a different sharer, since Aggregate spreads them across all expenses.
func SplitExpense(members []ParticipantID, expense ExpenseRecord) ([]PersonSplit, error) {
	l := newLedger(members)
	if err := l.validate([]ExpenseRecord{expense}); err != nil {
		return nil, err
	}
	if _, err := expense.Total(); err != nil {
		return nil, fmt.Errorf("expense %s: %w", expenseRef(expense, 0), err)
	}

	byParticipant := make(map[ParticipantID]*PersonSplit)
	for _, item := range expense.Items {
		for _, s := range l.split(item) {
			ps, ok := byParticipant[s.participant]
			if !ok {
				ps = &PersonSplit{Participant: s.participant}
				byParticipant[s.participant] = ps
			}
			var err error
			if ps.Total, err = money.Add(ps.Total, s.amount); err != nil {
				return nil, fmt.Errorf("expense %s: %w", expenseRef(expense, 0), err)
			}
			ps.Items = append(ps.Items, PersonItem{
				Description: item.Description,
				Amount:      s.amount,
			})
		}
	}

	splits := make([]PersonSplit, 0, len(byParticipant))
	for _, ps := range byParticipant {
		splits = append(splits, *ps)
	}
	sort.Slice(splits, func(i, j int) bool {
		return splits[i].Participant < splits[j].Participant
	})
	return splits, nil
}
