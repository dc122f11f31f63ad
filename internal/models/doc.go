// Package models defines the persisted domain models for splitperfect.
//
// # Models
//
//   - User: a registered account; its ID is the participant identity used
//     everywhere else
//   - Group: a set of users who share expenses, joined with a join code
//   - Expense: one receipt paid by a single member, made of line items
//   - Item: a line item split equally among the members who shared it
//
// Amounts are money.Money (exact cents). Balances and settlement plans are
// never stored; they are recomputed from a group's expenses on every request
// by the calculator package.
//
// # Design Principles
//
//  1. Relationships use ID strings, not pointers
//  2. Ledger is the unit handed to the calculator: one consistent snapshot of
//     a group's members and expenses
package models
