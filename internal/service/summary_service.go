package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"connectrpc.com/connect"

	"github.com/mmynk/splitperfect/internal/api"
	"github.com/mmynk/splitperfect/internal/calculator"
	"github.com/mmynk/splitperfect/internal/metrics"
	"github.com/mmynk/splitperfect/internal/storage"
)

var _ api.SummaryServiceHandler = (*SummaryService)(nil)

// SummaryService computes group balances and settlement plans on demand.
// Nothing it returns is stored.
type SummaryService struct {
	store   storage.Store
	metrics *metrics.Metrics
}

// NewSummaryService creates a SummaryService. m may be nil.
func NewSummaryService(store storage.Store, m *metrics.Metrics) *SummaryService {
	return &SummaryService{store: store, metrics: m}
}

// GetGroupSummary returns each member's balance and the payments that settle the group.
func (s *SummaryService) GetGroupSummary(ctx context.Context, req *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	slog.Info("GetGroupSummary request received", "group_id", groupID, "user_id", userID)

	if groupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupID)
	}

	ledger, err := s.store.GroupLedger(ctx, groupID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("GetGroupSummary failed to load ledger", "group_id", groupID, "error", err)
		}
		return nil, storeError(err)
	}
	if !ledger.Group.HasMember(userID) {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotMember)
	}

	summary, err := calculator.Summarize(participants(ledger.Group), toRecords(ledger.Expenses))
	if err != nil {
		slog.Error("GetGroupSummary failed", "group_id", groupID, "error", err)
		return nil, engineError(err)
	}
	s.metrics.ObserveSettlement(len(summary.Transactions))

	names := displayNames(ledger.Group)
	resp := &api.GetGroupSummaryResponse{
		GroupID:       groupID,
		TotalExpenses: summary.TotalExpenses,
		Balances:      make([]*api.MemberBalance, len(summary.Balances)),
		Transactions:  make([]*api.Transaction, len(summary.Transactions)),
	}
	for i, b := range summary.Balances {
		id := string(b.Participant)
		resp.Balances[i] = &api.MemberBalance{
			UserID:      id,
			DisplayName: names[id],
			TotalPaid:   b.TotalPaid,
			TotalOwed:   b.TotalOwed,
			NetBalance:  b.NetBalance,
		}
	}
	sort.SliceStable(resp.Balances, func(i, j int) bool {
		return resp.Balances[i].DisplayName < resp.Balances[j].DisplayName
	})
	for i, t := range summary.Transactions {
		resp.Transactions[i] = &api.Transaction{
			From:     string(t.From),
			FromName: names[string(t.From)],
			To:       string(t.To),
			ToName:   names[string(t.To)],
			Amount:   t.Amount,
		}
	}

	slog.Info("GetGroupSummary successful",
		"group_id", groupID,
		"expenses", len(ledger.Expenses),
		"transactions", len(resp.Transactions),
	)
	return connect.NewResponse(resp), nil
}
