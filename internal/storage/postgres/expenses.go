package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/splitperfect/internal/models"
	"github.com/mmynk/splitperfect/internal/money"
	"github.com/mmynk/splitperfect/internal/storage"
)

// CreateExpense persists a new expense with its items and sharers.
func (s *PostgresStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Title == "" {
		expense.Title = models.DefaultExpenseTitle(expense.Items, expense.CreatedAt)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		"INSERT INTO expenses (id, group_id, paid_by, title, created_at) VALUES ($1, $2, $3, $4, $5)",
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

		_, err = tx.Exec(ctx,
			`INSERT INTO expense_items (id, expense_id, position, description, quantity, unit_price, amount)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, expense.ID, i, item.Description, item.Quantity, item.UnitPrice.Cents(), item.Amount.Cents(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for _, userID := range item.SharedBy {
			_, err = tx.Exec(ctx,
				"INSERT INTO item_sharers (item_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
				item.ID, userID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item sharer: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including items and sharers.
func (s *PostgresStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expenses, err := loadExpenses(ctx, s.pool, "e.id", expenseID, "ASC")
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return expenses[0], nil
}

// ListExpensesByGroup retrieves all expenses for a group, newest first.
func (s *PostgresStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return loadExpenses(ctx, s.pool, "e.group_id", groupID, "DESC")
}

// DeleteExpense removes an expense. Items and sharers cascade.
func (s *PostgresStore) DeleteExpense(ctx context.Context, expenseID string) error {
	ct, err := s.pool.Exec(ctx, "DELETE FROM expenses WHERE id = $1", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

// GroupLedger reads the roster and expenses under one repeatable-read snapshot,
// so a member joining or an expense landing mid-read cannot skew the balances.
func (s *PostgresStore) GroupLedger(ctx context.Context, groupID string) (*models.Ledger, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	group, err := getGroup(ctx, tx, "id", groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := loadExpenses(ctx, tx, "e.group_id", groupID, "ASC")
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &models.Ledger{Group: group, Expenses: expenses}, nil
}

// loadExpenses reads expenses matching column = value with their items and
// sharers. column and order are always constants from this package.
func loadExpenses(ctx context.Context, q querier, column, value, order string) ([]*models.Expense, error) {
	rows, err := q.Query(ctx,
		"SELECT e.id, e.group_id, e.paid_by, e.title, e.created_at FROM expenses e WHERE "+column+" = $1"+
			" ORDER BY e.created_at "+order+", e.id "+order,
		value,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}
	expenses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Expense, error) {
		e := &models.Expense{}
		err := row.Scan(&e.ID, &e.GroupID, &e.PaidBy, &e.Title, &e.CreatedAt)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan expenses: %w", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	byID := make(map[string]*models.Expense, len(expenses))
	for _, e := range expenses {
		byID[e.ID] = e
	}

	itemRows, err := q.Query(ctx,
		`SELECT i.id, i.expense_id, i.description, i.quantity, i.unit_price, i.amount
		 FROM expense_items i JOIN expenses e ON e.id = i.expense_id
		 WHERE `+column+` = $1 ORDER BY i.expense_id, i.position`,
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

	sharerRows, err := q.Query(ctx,
		`SELECT s.item_id, s.user_id
		 FROM item_sharers s
		 JOIN expense_items i ON i.id = s.item_id
		 JOIN expenses e ON e.id = i.expense_id
		 WHERE `+column+` = $1 ORDER BY s.item_id, s.user_id`,
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
		if ref, ok := itemsByID[itemID]; ok {
			item := &ref.expense.Items[ref.index]
			item.SharedBy = append(item.SharedBy, userID)
		}
	}
	if err := sharerRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item sharers: %w", err)
	}

	return expenses, nil
}
