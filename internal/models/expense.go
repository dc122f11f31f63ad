package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/splitperfect/internal/money"
)

// Expense is one receipt paid for by a single group member.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group the expense belongs to.
	GroupID string

	// PaidBy is the user ID of the member who paid.
	PaidBy string

	// Title is a human-readable label, e.g. the merchant name.
	Title string

	// Items are the line items on the receipt.
	Items []Item

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Total returns the sum of the expense's line item amounts.
func (e *Expense) Total() money.Money {
	var total money.Money
	for _, item := range e.Items {
		total += item.Amount
	}
	return total
}

// Item is a single line item, split equally among SharedBy.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// Description is the name of the item (e.g., "Pizza", "Taxi").
	Description string

	// Quantity and UnitPrice are informational, as read off the receipt.
	Quantity  int
	UnitPrice money.Money

	// Amount is the cost of this line.
	Amount money.Money

	// SharedBy lists the user IDs of the members who consumed the item.
	SharedBy []string
}

// Ledger is a consistent snapshot of a group's roster and expenses.
type Ledger struct {
	Group    *Group
	Expenses []*Expense
}

// DefaultExpenseTitle creates a title from the item descriptions, e.g. "Pizza, Beer and 2 others".
// Falls back to a dated title when there are no described items.
func DefaultExpenseTitle(items []Item, createdAt int64) string {
	var names []string
	for _, item := range items {
		if item.Description != "" {
			names = append(names, item.Description)
		}
	}

	switch {
	case len(names) == 0:
		return "Expense - " + time.Unix(createdAt, 0).UTC().Format("Jan 2, 2006")
	case len(names) <= 3:
		return strings.Join(names, ", ")
	default:
		return fmt.Sprintf("%s, %s and %d others", names[0], names[1], len(names)-2)
	}
}
