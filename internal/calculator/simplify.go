package calculator

import (
	"fmt"
	"sort"

	"github.com/mmynk/splitperfect/internal/money"
)

// Tolerance is the largest amount by which balances may fail to net to zero.
// The uncovered remainder is left unpaid.
const Tolerance = money.Cent

// SettlementTransaction is a single payment from a debtor to a creditor.
type SettlementTransaction struct {
	From   ParticipantID // Person who owes
	To     ParticipantID // Person who is owed
	Amount money.Money   // Always positive
}

// position is one side of the matching: a creditor's credit or a debtor's debt,
// both stored as positive amounts.
type position struct {
	participant ParticipantID
	amount      money.Money
}

// Simplify produces the payments that settle balances.
//
// Algorithm:
//   - Zero balances are settled and skipped; every other balance, down to a
//     single cent, takes part
//   - Creditors and debtors are each sorted largest first, ties by participant ID
//   - The largest debtor pays the largest creditor min(debt, credit); whichever
//     side is cleared advances, both when they clear together
//
// This yields at most C+D-1 transactions for C creditors and D debtors. It is
// not guaranteed to be the global minimum, which is NP-hard to find.
//
// The output depends only on the map's contents, never on iteration order.
// Returns an UnbalancedInputError, and no transactions, if the balances miss
// zero by more than Tolerance, or ErrAmountOverflow if they cannot be totalled.
func Simplify(balances BalanceMap) ([]SettlementTransaction, error) {
	total, err := balances.Sum()
	if err != nil {
		return nil, fmt.Errorf("failed to total balances: %w", err)
	}
	if total > Tolerance || total < -Tolerance {
		return nil, &UnbalancedInputError{Residual: total}
	}

	var creditors, debtors []position
	for id, b := range balances {
		if b > 0 {
			creditors = append(creditors, position{participant: id, amount: b})
		} else if b < 0 {
			debtors = append(debtors, position{participant: id, amount: -b})
		}
	}
	sortPositions(creditors)
	sortPositions(debtors)

	var transactions []SettlementTransaction
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		creditor := &creditors[i]
		debtor := &debtors[j]

		amount := min(creditor.amount, debtor.amount)
		transactions = append(transactions, SettlementTransaction{
			From:   debtor.participant,
			To:     creditor.participant,
			Amount: amount,
		})

		creditor.amount -= amount
		debtor.amount -= amount

		if creditor.amount == 0 {
			i++
		}
		if debtor.amount == 0 {
			j++
		}
	}
	return transactions, nil
}

func sortPositions(p []position) {
	sort.Slice(p, func(i, j int) bool {
		if p[i].amount != p[j].amount {
			return p[i].amount > p[j].amount
		}
		return p[i].participant < p[j].participant
	})
}
