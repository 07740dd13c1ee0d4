package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/cashflow/internal/calculator"
	"github.com/mmynk/cashflow/internal/metrics"
	"github.com/mmynk/cashflow/internal/middleware"
	"github.com/mmynk/cashflow/internal/settlement"
	"github.com/mmynk/cashflow/internal/storage"
	"github.com/mmynk/cashflow/pkg/api"
)

// SettlementService implements the Connect SettlementService.
type SettlementService struct {
	store   storage.Store
	metrics *metrics.Metrics
}

// NewSettlementService creates a SettlementService. m may be nil.
func NewSettlementService(store storage.Store, m *metrics.Metrics) *SettlementService {
	return &SettlementService{store: store, metrics: m}
}

// Settle plans a roster and debt list supplied inline. Nothing is stored.
func (s *SettlementService) Settle(ctx context.Context, req *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error) {
	slog.Info("Settle request received",
		"participants", len(req.Msg.Participants),
		"debts", len(req.Msg.Debts),
		"account_id", middleware.GetAccountID(ctx),
	)

	plan, err := s.plan(toEntries(req.Msg.Participants), toSettlementDebts(req.Msg.Debts))
	if err != nil {
		return nil, err
	}

	slog.Info("Settle successful",
		"transfers", len(plan.Transfers),
		"rounds", plan.Rounds,
		"treasurer_hops", plan.TreasurerHops,
	)
	return connect.NewResponse(&api.SettleResponse{Plan: plan}), nil
}

// PlanGroup plans the stored roster and debts of a group owned by the caller.
func (s *SettlementService) PlanGroup(ctx context.Context, req *connect.Request[api.PlanGroupRequest]) (*connect.Response[api.PlanGroupResponse], error) {
	slog.Info("PlanGroup request received", "group_id", req.Msg.GroupID)

	group, err := ownedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	debts, err := s.store.ListDebts(ctx, group.ID)
	if err != nil {
		slog.Error("Failed to load debts", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	plan, err := s.plan(groupEntries(group), storedDebts(debts))
	if err != nil {
		return nil, err
	}

	slog.Info("PlanGroup successful",
		"group_id", group.ID,
		"transfers", len(plan.Transfers),
		"rounds", plan.Rounds,
	)
	return connect.NewResponse(&api.PlanGroupResponse{GroupID: group.ID, Plan: plan}), nil
}

func (s *SettlementService) plan(entries []settlement.Entry, debts []settlement.Debt) (*api.Plan, error) {
	reg, plan, err := settlement.Settle(entries, debts)
	if err != nil {
		s.metrics.ObserveFailure(err)
		return nil, planError(err)
	}

	names := make([]string, reg.Len())
	for i := range names {
		names[i] = reg.Name(i)
	}
	balances, err := calculator.GroupBalances(names, debts)
	if err != nil {
		s.metrics.ObserveFailure(err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.metrics.ObservePlan(plan)
	return toAPIPlan(reg, plan, balances), nil
}

// planError maps planning failures onto Connect codes. Bad rosters and debt
// lists are the caller's fault; an invariant violation is ours.
func planError(err error) *connect.Error {
	var (
		configErr *settlement.ConfigurationError
		inputErr  *settlement.InputError
	)
	if errors.As(err, &configErr) || errors.As(err, &inputErr) {
		slog.Warn("Settlement rejected", "error", err)
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	slog.Error("Settlement failed", "error", err)
	return connect.NewError(connect.CodeInternal, err)
}
