// Package storagetest holds a behavioral test suite shared by every
// storage.Store backend.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/mmynk/splitperfect/internal/models"
	"github.com/mmynk/splitperfect/internal/money"
	"github.com/mmynk/splitperfect/internal/storage"
)

// Run exercises store against the storage.Store contract. The store must be
// empty when Run is called.
func Run(t *testing.T, store storage.Store) {
	t.Helper()
	ctx := context.Background()

	alice := models.NewUser("alice@example.com", "Alice", "hash")
	bob := models.NewUser("bob@example.com", "Bob", "hash")
	carol := models.NewUser("carol@example.com", "Carol", "hash")
	for _, u := range []*models.User{alice, bob, carol} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", u.Email, err)
		}
	}

	t.Run("Ping", func(t *testing.T) {
		if err := store.Ping(ctx); err != nil {
			t.Fatalf("Ping failed: %v", err)
		}
	})

	t.Run("GetUserByEmail", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != alice.ID || got.DisplayName != "Alice" {
			t.Errorf("got %+v, want Alice", got)
		}
	})

	t.Run("GetUserByID returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("CreateUser rejects duplicate email", func(t *testing.T) {
		dup := models.NewUser("alice@example.com", "Other Alice", "hash")
		if err := store.CreateUser(ctx, dup); err == nil {
			t.Error("expected error for duplicate email")
		}
	})

	group := &models.Group{
		Name:      "Roommates",
		CreatedBy: alice.ID,
		Members:   []models.Member{{UserID: alice.ID}},
	}

	t.Run("CreateGroup populates generated fields", func(t *testing.T) {
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" {
			t.Error("expected group ID to be generated")
		}
		if group.JoinCode == "" {
			t.Error("expected join code to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("expected CreatedAt to be set")
		}
	})

	t.Run("AddGroupMember", func(t *testing.T) {
		if err := store.AddGroupMember(ctx, group.ID, bob.ID); err != nil {
			t.Fatalf("AddGroupMember(bob) failed: %v", err)
		}
		if err := store.AddGroupMember(ctx, group.ID, carol.ID); err != nil {
			t.Fatalf("AddGroupMember(carol) failed: %v", err)
		}
		err := store.AddGroupMember(ctx, group.ID, bob.ID)
		if !errors.Is(err, storage.ErrAlreadyMember) {
			t.Errorf("expected ErrAlreadyMember, got %v", err)
		}
		err = store.AddGroupMember(ctx, "nonexistent-id", bob.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetGroupByJoinCode", func(t *testing.T) {
		got, err := store.GetGroupByJoinCode(ctx, group.JoinCode)
		if err != nil {
			t.Fatalf("GetGroupByJoinCode failed: %v", err)
		}
		if got.ID != group.ID {
			t.Errorf("ID mismatch: got %s, want %s", got.ID, group.ID)
		}
		if len(got.Members) != 3 {
			t.Fatalf("members: expected 3, got %d", len(got.Members))
		}
		if got.Members[0].UserID != alice.ID || got.Members[0].DisplayName != "Alice" {
			t.Errorf("first member: expected Alice, got %+v", got.Members[0])
		}

		_, err = store.GetGroupByJoinCode(ctx, "bogus")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListGroupsByMember", func(t *testing.T) {
		groups, err := store.ListGroupsByMember(ctx, carol.ID)
		if err != nil {
			t.Fatalf("ListGroupsByMember failed: %v", err)
		}
		if len(groups) != 1 || groups[0].ID != group.ID {
			t.Errorf("expected [%s], got %d groups", group.ID, len(groups))
		}

		groups, err = store.ListGroupsByMember(ctx, "stranger")
		if err != nil {
			t.Fatalf("ListGroupsByMember failed: %v", err)
		}
		if len(groups) != 0 {
			t.Errorf("expected no groups, got %d", len(groups))
		}
	})

	dinner := &models.Expense{
		GroupID:   group.ID,
		PaidBy:    alice.ID,
		Title:     "Dinner",
		CreatedAt: 1000,
		Items: []models.Item{
			{Description: "Pizza", Quantity: 2, UnitPrice: money.MustParse("15.00"), Amount: money.MustParse("30.00"), SharedBy: []string{alice.ID, bob.ID, carol.ID}},
			{Description: "Wine", Quantity: 1, UnitPrice: money.MustParse("20.00"), Amount: money.MustParse("20.00"), SharedBy: []string{bob.ID}},
		},
	}
	taxi := &models.Expense{
		GroupID:   group.ID,
		PaidBy:    bob.ID,
		CreatedAt: 2000,
		Items: []models.Item{
			{Description: "Taxi", Quantity: 1, UnitPrice: money.MustParse("12.34"), Amount: money.MustParse("12.34"), SharedBy: []string{alice.ID, bob.ID}},
		},
	}

	t.Run("CreateExpense and GetExpense", func(t *testing.T) {
		for _, e := range []*models.Expense{dinner, taxi} {
			if err := store.CreateExpense(ctx, e); err != nil {
				t.Fatalf("CreateExpense failed: %v", err)
			}
			if e.ID == "" {
				t.Fatal("expected expense ID to be generated")
			}
		}
		if taxi.Title == "" {
			t.Error("expected title to be generated")
		}

		got, err := store.GetExpense(ctx, dinner.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Title != "Dinner" || got.PaidBy != alice.ID || got.GroupID != group.ID {
			t.Errorf("header mismatch: got %+v", got)
		}
		if len(got.Items) != 2 {
			t.Fatalf("items: expected 2, got %d", len(got.Items))
		}
		if got.Items[0].Description != "Pizza" || got.Items[1].Description != "Wine" {
			t.Errorf("item order not preserved: %q, %q", got.Items[0].Description, got.Items[1].Description)
		}
		if got.Items[0].Amount != money.MustParse("30.00") || got.Items[0].UnitPrice != money.MustParse("15.00") || got.Items[0].Quantity != 2 {
			t.Errorf("pizza mismatch: got %+v", got.Items[0])
		}
		if len(got.Items[0].SharedBy) != 3 {
			t.Errorf("pizza sharers: expected 3, got %d", len(got.Items[0].SharedBy))
		}
		if got.Total() != money.MustParse("50.00") {
			t.Errorf("total: expected 50.00, got %s", got.Total())
		}

		_, err = store.GetExpense(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListExpensesByGroup is newest first", func(t *testing.T) {
		expenses, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(expenses) != 2 {
			t.Fatalf("expected 2 expenses, got %d", len(expenses))
		}
		if expenses[0].ID != taxi.ID || expenses[1].ID != dinner.ID {
			t.Errorf("unexpected order: %s, %s", expenses[0].Title, expenses[1].Title)
		}
		if len(expenses[1].Items) != 2 {
			t.Errorf("expected items to be loaded, got %d", len(expenses[1].Items))
		}
	})

	t.Run("GroupLedger is oldest first", func(t *testing.T) {
		ledger, err := store.GroupLedger(ctx, group.ID)
		if err != nil {
			t.Fatalf("GroupLedger failed: %v", err)
		}
		if len(ledger.Group.Members) != 3 {
			t.Errorf("members: expected 3, got %d", len(ledger.Group.Members))
		}
		if len(ledger.Expenses) != 2 || ledger.Expenses[0].ID != dinner.ID {
			t.Fatalf("expected dinner first, got %d expenses", len(ledger.Expenses))
		}
		if len(ledger.Expenses[1].Items[0].SharedBy) != 2 {
			t.Errorf("taxi sharers: expected 2, got %d", len(ledger.Expenses[1].Items[0].SharedBy))
		}

		_, err = store.GroupLedger(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		if err := store.DeleteExpense(ctx, taxi.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		_, err := store.GetExpense(ctx, taxi.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		err = store.DeleteExpense(ctx, taxi.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("DeleteGroup cascades", func(t *testing.T) {
		if err := store.DeleteGroup(ctx, group.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		_, err := store.GetGroup(ctx, group.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound for group, got %v", err)
		}
		_, err = store.GetExpense(ctx, dinner.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected expense to be deleted with group, got %v", err)
		}
		err = store.DeleteGroup(ctx, group.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}
