package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/cashflow/internal/auth"
	"github.com/mmynk/cashflow/internal/calculator"
	"github.com/mmynk/cashflow/internal/middleware"
	"github.com/mmynk/cashflow/internal/models"
	"github.com/mmynk/cashflow/internal/settlement"
	"github.com/mmynk/cashflow/internal/storage"
	"github.com/mmynk/cashflow/pkg/api"
)

// ErrNotOwner is returned when an account touches a group it does not own.
var ErrNotOwner = errors.New("group belongs to another account")

// GroupService implements the Connect GroupService.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// ownedGroup loads a group and checks that the calling account owns it.
func ownedGroup(ctx context.Context, store storage.Store, groupID string) (*models.Group, error) {
	accountID := middleware.GetAccountID(ctx)
	if accountID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	if groupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("group_id is required"))
	}

	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		slog.Error("GetGroup failed", "group_id", groupID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if group.OwnerID != accountID {
		slog.Warn("Group access denied", "group_id", groupID, "account_id", accountID)
		return nil, connect.NewError(connect.CodePermissionDenied, ErrNotOwner)
	}
	return group, nil
}

// CreateGroup validates a roster and stores it. The first member is the
// Treasurer.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	accountID := middleware.GetAccountID(ctx)
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
		"account_id", accountID,
	)
	if accountID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	members := toModelMembers(req.Msg.Members)
	group := &models.Group{
		Name:    strings.TrimSpace(req.Msg.Name),
		OwnerID: accountID,
		Members: members,
	}

	// The roster must be plannable before it is stored.
	if _, err := settlement.NewRegistry(groupEntries(group)); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	// Save to storage (generates ID, Name and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		}
		slog.Error("CreateGroup failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Group created", "group_id", group.ID, "treasurer", group.Treasurer().Name)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup returns a group with its current per-member balances.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := ownedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	debts, err := s.store.ListDebts(ctx, group.ID)
	if err != nil {
		slog.Error("Failed to load debts", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	balances, err := calculator.GroupBalances(group.MemberNames(), storedDebts(debts))
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)
	return connect.NewResponse(&api.GetGroupResponse{
		Group:    toAPIGroup(group),
		Balances: toAPIBalances(balances),
	}), nil
}

// ListGroups returns the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	accountID := middleware.GetAccountID(ctx)
	slog.Info("ListGroups request received", "account_id", accountID)
	if accountID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	groups, err := s.store.ListGroupsByOwner(ctx, accountID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]*api.Group, len(groups))
	for i, group := range groups {
		out[i] = toAPIGroup(group)
	}

	slog.Info("ListGroups successful", "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// DeleteGroup removes a group and its debts.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	group, err := ownedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		slog.Error("DeleteGroup failed", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Group deleted", "group_id", group.ID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// AddDebt records one debt between two members of the group.
func (s *GroupService) AddDebt(ctx context.Context, req *connect.Request[api.AddDebtRequest]) (*connect.Response[api.AddDebtResponse], error) {
	slog.Info("AddDebt request received",
		"group_id", req.Msg.GroupID,
		"debtor", req.Msg.Debtor,
		"creditor", req.Msg.Creditor,
		"amount", req.Msg.Amount,
	)

	group, err := ownedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	debt := &models.Debt{
		Debtor:    strings.TrimSpace(req.Msg.Debtor),
		Creditor:  strings.TrimSpace(req.Msg.Creditor),
		Amount:    req.Msg.Amount,
		Note:      req.Msg.Note,
		CreatedBy: middleware.GetAccountID(ctx),
	}
	if err := validateDebts(group, debt); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := s.checkVolume(ctx, group, debt); err != nil {
		return nil, err
	}

	if err := s.store.AddDebts(ctx, group.ID, []*models.Debt{debt}); err != nil {
		slog.Error("AddDebt failed", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Debt recorded", "group_id", group.ID, "debt_id", debt.ID)
	return connect.NewResponse(&api.AddDebtResponse{Debt: toAPIDebt(debt)}), nil
}

// ListDebts returns a group's debts in recording order.
func (s *GroupService) ListDebts(ctx context.Context, req *connect.Request[api.ListDebtsRequest]) (*connect.Response[api.ListDebtsResponse], error) {
	slog.Info("ListDebts request received", "group_id", req.Msg.GroupID)

	group, err := ownedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	debts, err := s.store.ListDebts(ctx, group.ID)
	if err != nil {
		slog.Error("ListDebts failed", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]*api.Debt, len(debts))
	for i, d := range debts {
		out[i] = toAPIDebt(d)
	}
	return connect.NewResponse(&api.ListDebtsResponse{Debts: out}), nil
}

// AddExpense splits a shared expense among members and records the
// resulting debts to the payer in one batch.
func (s *GroupService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	slog.Info("AddExpense request received",
		"group_id", req.Msg.GroupID,
		"payer", req.Msg.Payer,
		"amount", req.Msg.Amount,
		"participants", len(req.Msg.Participants),
	)

	group, err := ownedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	shares, split, err := calculator.SplitExpense(calculator.Expense{
		Description:  req.Msg.Description,
		Payer:        strings.TrimSpace(req.Msg.Payer),
		Amount:       req.Msg.Amount,
		Participants: req.Msg.Participants,
		Weights:      req.Msg.Weights,
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	accountID := middleware.GetAccountID(ctx)
	debts := make([]*models.Debt, len(split))
	for i, d := range split {
		debts[i] = &models.Debt{
			Debtor:    d.Debtor,
			Creditor:  d.Creditor,
			Amount:    d.Amount,
			Note:      req.Msg.Description,
			CreatedBy: accountID,
		}
	}
	if err := validateDebts(group, debts...); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := s.checkVolume(ctx, group, debts...); err != nil {
		return nil, err
	}

	if len(debts) > 0 {
		if err := s.store.AddDebts(ctx, group.ID, debts); err != nil {
			slog.Error("AddExpense failed", "group_id", group.ID, "error", err)
			return nil, connect.NewError(connect.CodeInternal, err)
		}
	}

	out := make([]*api.Debt, len(debts))
	for i, d := range debts {
		out[i] = toAPIDebt(d)
	}

	slog.Info("Expense recorded", "group_id", group.ID, "debts", len(debts))
	return connect.NewResponse(&api.AddExpenseResponse{Shares: shares, Debts: out}), nil
}

// validateDebts checks that every debt names members of the group and has a
// positive amount.
// checkVolume rejects debts that would push the group's recorded total past
// math.MaxInt64, which planning could not net.
func (s *GroupService) checkVolume(ctx context.Context, group *models.Group, debts ...*models.Debt) error {
	existing, err := s.store.ListDebts(ctx, group.ID)
	if err != nil {
		slog.Error("Failed to load debts", "group_id", group.ID, "error", err)
		return connect.NewError(connect.CodeInternal, err)
	}
	var volume int64
	for _, d := range append(existing, debts...) {
		if d.Amount > math.MaxInt64-volume {
			return connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("group debts would total more than %d", int64(math.MaxInt64)))
		}
		volume += d.Amount
	}
	return nil
}

func validateDebts(group *models.Group, debts ...*models.Debt) error {
	members := make(map[string]bool, len(group.Members))
	for _, m := range group.Members {
		members[m.Name] = true
	}
	for _, d := range debts {
		if d.Amount <= 0 {
			return fmt.Errorf("amount must be positive, got %d", d.Amount)
		}
		if !members[d.Debtor] {
			return fmt.Errorf("debtor %q is not a member of the group", d.Debtor)
		}
		if !members[d.Creditor] {
			return fmt.Errorf("creditor %q is not a member of the group", d.Creditor)
		}
	}
	return nil
}
