package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitperfect/internal/models"
	"github.com/mmynk/splitperfect/internal/money"
	"github.com/mmynk/splitperfect/internal/storage"
)

// CreateExpense persists a new expense with its items and sharers.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Title == "" {
		expense.Title = models.DefaultExpenseTitle(expense.Items, expense.CreatedAt)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses (id, group_id, paid_by, title, created_at) VALUES (?, ?, ?, ?, ?)",
		expense.ID, expense.GroupID, expense.PaidBy, expense.Title, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i := range expense.Items {
		item := &expense.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO expense_items (id, expense_id, position, description, quantity, unit_price, amount)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.ID, expense.ID, i, item.Description, item.Quantity, item.UnitPrice.Cents(), item.Amount.Cents(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for _, userID := range item.SharedBy {
			_, err = tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO item_sharers (item_id, user_id) VALUES (?, ?)",
				item.ID, userID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item sharer: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including items and sharers.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expenses, err := loadExpenses(ctx, s.db, "e.id", expenseID, "ASC")
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return expenses[0], nil
}

// ListExpensesByGroup retrieves all expenses for a group, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return loadExpenses(ctx, s.db, "e.group_id", groupID, "DESC")
}

// DeleteExpense removes an expense. Items and sharers cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

// GroupLedger reads the group roster and all expenses in one read transaction,
// so the calculator never sees an expense from a member who was not yet loaded.
func (s *SQLiteStore) GroupLedger(ctx context.Context, groupID string) (*models.Ledger, error) {
	// A deferred SQLite transaction pins its read snapshot at the first SELECT.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	group, err := getGroup(ctx, tx, "id", groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := loadExpenses(ctx, tx, "e.group_id", groupID, "ASC")
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &models.Ledger{Group: group, Expenses: expenses}, nil
}

// loadExpenses reads expenses matching column = value in three passes
// (expenses, items, sharers), fully draining each result set before the next.
// column and order are always constants from this package.
func loadExpenses(ctx context.Context, q queryer, column, value, order string) ([]*models.Expense, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT e.id, e.group_id, e.paid_by, e.title, e.created_at FROM expenses e WHERE "+column+" = ?"+
			" ORDER BY e.created_at "+order+", e.id "+order,
		value,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		e := &models.Expense{}
		if err := rows.Scan(&e.ID, &e.GroupID, &e.PaidBy, &e.Title, &e.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	itemRows, err := q.QueryContext(ctx,
		`SELECT i.id, i.expense_id, i.description, i.quantity, i.unit_price, i.amount
		 FROM expense_items i JOIN expenses e ON e.id = i.expense_id
		 WHERE `+column+` = ? ORDER BY i.expense_id, i.position`,
		value,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}

	type itemRef struct {
		expense *models.Expense
		index   int
	}
	itemsByID := make(map[string]itemRef)
	for itemRows.Next() {
		var (
			item              models.Item
			expenseID         string
			unitPrice, amount int64
		)
		if err := itemRows.Scan(&item.ID, &expenseID, &item.Description, &item.Quantity, &unitPrice, &amount); err != nil {
			itemRows.Close()
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.UnitPrice = money.FromCents(unitPrice)
		item.Amount = money.FromCents(amount)

		e := byID[expenseID]
		e.Items = append(e.Items, item)
		itemsByID[item.ID] = itemRef{expense: e, index: len(e.Items) - 1}
	}
	itemRows.Close()
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	sharerRows, err := q.QueryContext(ctx,
		`SELECT s.item_id, s.user_id
		 FROM item_sharers s
		 JOIN expense_items i ON i.id = s.item_id
		 JOIN expenses e ON e.id = i.expense_id
		 WHERE `+column+` = ? ORDER BY s.item_id, s.user_id`,
		value,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item sharers: %w", err)
	}
	defer sharerRows.Close()

	for sharerRows.Next() {
		var itemID, userID string
		if err := sharerRows.Scan(&itemID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan item sharer: %w", err)
		}
		ref, ok := itemsByID[itemID]
		if !ok {
			continue
		}
		item := &ref.expense.Items[ref.index]
		item.SharedBy = append(item.SharedBy, userID)
	}
	if err := sharerRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item sharers: %w", err)
	}

	return expenses, nil
}

