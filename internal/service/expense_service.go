package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitperfect/internal/api"
	"github.com/mmynk/splitperfect/internal/calculator"
	"github.com/mmynk/splitperfect/internal/models"
	"github.com/mmynk/splitperfect/internal/money"
	"github.com/mmynk/splitperfect/internal/storage"
)

var _ api.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// CreateExpense records an expense paid by the caller.
//
// Sharers must be group members and every item needs at least one sharer.
// The calculator checks both before anything is stored.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"user_id", userID,
		"items_count", len(req.Msg.Items),
	)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	items, err := toModelItems(req.Msg.Items)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	expense := &models.Expense{
		GroupID: group.ID,
		PaidBy:  userID,
		Title:   strings.TrimSpace(req.Msg.Title),
		Items:   items,
	}

	splits, err := calculator.SplitExpense(participants(group), toRecord(expense))
	if err != nil {
		slog.Warn("CreateExpense rejected", "group_id", group.ID, "error", err)
		return nil, engineError(err)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "total", expense.Total().String())

	names := displayNames(group)
	return connect.NewResponse(&api.CreateExpenseResponse{
		Expense: toAPIExpense(expense, names),
		Shares:  toAPIShares(splits, names),
	}), nil
}

// GetExpense retrieves an expense with its per-person breakdown.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	expense, group, err := s.memberExpense(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		return nil, err
	}

	splits, err := calculator.SplitExpense(participants(group), toRecord(expense))
	if err != nil {
		slog.Error("GetExpense split failed", "expense_id", expense.ID, "error", err)
		return nil, engineError(err)
	}

	names := displayNames(group)
	return connect.NewResponse(&api.GetExpenseResponse{
		Expense: toAPIExpense(expense, names),
		Shares:  toAPIShares(splits, names),
	}), nil
}

// ListExpenses retrieves a group's expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}

	names := displayNames(group)
	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e, names)
	}

	slog.Info("ListExpenses successful", "group_id", group.ID, "count", len(out))
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// DeleteExpense removes an expense. Only its payer may do so.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID, "user_id", userID)

	expense, _, err := s.memberExpense(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		return nil, err
	}
	if expense.PaidBy != userID {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotPayer)
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Expense deleted", "expense_id", expense.ID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// memberExpense loads an expense and its group, checking that userID is a member.
func (s *ExpenseService) memberExpense(ctx context.Context, expenseID, userID string) (*models.Expense, *models.Group, error) {
	if expenseID == "" {
		return nil, nil, connect.NewError(connect.CodeInvalidArgument, errExpenseID)
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("Failed to load expense", "expense_id", expenseID, "error", err)
		}
		return nil, nil, storeError(err)
	}

	group, err := memberGroup(ctx, s.store, expense.GroupID, userID)
	if err != nil {
		return nil, nil, err
	}
	return expense, group, nil
}

// toModelItems validates request items. A zero amount with a unit price is
// filled in as quantity * unit price.
func toModelItems(in []*api.Item) ([]models.Item, error) {
	if len(in) == 0 {
		return nil, errNoItems
	}

	items := make([]models.Item, 0, len(in))
	for _, item := range in {
		if item == nil {
			continue
		}
		if item.Quantity < 0 {
			return nil, errBadQuantity
		}
		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}

		amount := item.Amount
		if amount.IsZero() && !item.UnitPrice.IsZero() {
			var err error
			if amount, err = money.Mul(item.UnitPrice, int64(quantity)); err != nil {
				return nil, fmt.Errorf("item %q: %w", item.Description, err)
			}
		}

		items = append(items, models.Item{
			Description: strings.TrimSpace(item.Description),
			Quantity:    quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      amount,
			SharedBy:    item.SharedBy,
		})
	}
	if len(items) == 0 {
		return nil, errNoItems
	}
	return items, nil
}
