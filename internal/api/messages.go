package api

import "github.com/mmynk/splitperfect/internal/money"

// User is the public view of an account. Password hashes never leave the server.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// Group is a group with its full roster.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	JoinCode  string    `json:"joinCode"`
	CreatedBy string    `json:"createdBy"`
	Members   []*Member `json:"members"`
	CreatedAt int64     `json:"createdAt"`
}

type Member struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	JoinedAt    int64  `json:"joinedAt"`
}

// GroupInfo is the list view of a group.
type GroupInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"memberCount"`
	CreatedAt   int64  `json:"createdAt"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type JoinGroupRequest struct {
	JoinCode string `json:"joinCode"`
}

type JoinGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*GroupInfo `json:"groups"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}

// Item is one line on an expense. Amount is what gets split; Quantity and
// UnitPrice are informational.
type Item struct {
	ID          string      `json:"id,omitempty"`
	Description string      `json:"description"`
	Quantity    int         `json:"quantity,omitempty"`
	UnitPrice   money.Money `json:"unitPrice"`
	Amount      money.Money `json:"amount"`
	SharedBy    []string    `json:"sharedBy"`
}

type Expense struct {
	ID         string      `json:"id"`
	GroupID    string      `json:"groupId"`
	PaidBy     string      `json:"paidBy"`
	PaidByName string      `json:"paidByName"`
	Title      string      `json:"title"`
	Items      []*Item     `json:"items"`
	Total      money.Money `json:"total"`
	CreatedAt  int64       `json:"createdAt"`
}

// PersonShare is what one member owes for a single expense.
type PersonShare struct {
	UserID      string        `json:"userId"`
	DisplayName string        `json:"displayName"`
	Total       money.Money   `json:"total"`
	Items       []*PersonItem `json:"items"`
}

type PersonItem struct {
	Description string      `json:"description"`
	Amount      money.Money `json:"amount"`
}

type CreateExpenseRequest struct {
	GroupID string  `json:"groupId"`
	Title   string  `json:"title"`
	Items   []*Item `json:"items"`
}

type CreateExpenseResponse struct {
	Expense *Expense       `json:"expense"`
	Shares  []*PersonShare `json:"shares"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type GetExpenseResponse struct {
	Expense *Expense       `json:"expense"`
	Shares  []*PersonShare `json:"shares"`
}

type ListExpensesRequest struct {
	GroupID string `json:"groupId"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type GetGroupSummaryRequest struct {
	GroupID string `json:"groupId"`
}

// MemberBalance is one member's standing in a group.
// NetBalance > 0 means the group owes them.
type MemberBalance struct {
	UserID      string      `json:"userId"`
	DisplayName string      `json:"displayName"`
	TotalPaid   money.Money `json:"totalPaid"`
	TotalOwed   money.Money `json:"totalOwed"`
	NetBalance  money.Money `json:"netBalance"`
}

// Transaction is one payment in a settlement plan.
type Transaction struct {
	From     string      `json:"from"`
	FromName string      `json:"fromName"`
	To       string      `json:"to"`
	ToName   string      `json:"toName"`
	Amount   money.Money `json:"amount"`
}

// GetGroupSummaryResponse is a group's settlement view. Balances are ordered
// by member display name. Transactions are in payment order: largest debt
// first, ties by user ID.
type GetGroupSummaryResponse struct {
	GroupID       string           `json:"groupId"`
	TotalExpenses money.Money      `json:"totalExpenses"`
	Balances      []*MemberBalance `json:"balances"`
	Transactions  []*Transaction   `json:"transactions"`
}
