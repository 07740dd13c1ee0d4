package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/cashflow/internal/metrics"
	"github.com/mmynk/cashflow/internal/middleware"
	"github.com/mmynk/cashflow/internal/storage/sqlite"
	"github.com/mmynk/cashflow/pkg/api"
	"github.com/mmynk/cashflow/pkg/api/apiconnect"
)

const testAccountHeader = "X-Test-Account"

// testAuth trusts the account named in testAccountHeader.
func testAuth() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if id := req.Header().Get(testAccountHeader); id != "" {
				ctx = middleware.WithAccount(ctx, id, id+"@example.com")
			}
			return next(ctx, req)
		}
	}
}

func as[T any](account string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if account != "" {
		req.Header().Set(testAccountHeader, account)
	}
	return req
}

// setupGroupTestServer creates a test server with both SettlementService and GroupService
func setupGroupTestServer(t *testing.T) (apiconnect.GroupServiceClient, apiconnect.SettlementServiceClient, func()) {
	t.Helper()

	// Create temp database
	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	opts := connect.WithInterceptors(testAuth())
	settlementPath, settlementHandler := apiconnect.NewSettlementServiceHandler(NewSettlementService(store, metrics.New(nil)), opts)
	groupPath, groupHandler := apiconnect.NewGroupServiceHandler(NewGroupService(store), opts)

	mux := http.NewServeMux()
	mux.Handle(settlementPath, settlementHandler)
	mux.Handle(groupPath, groupHandler)

	server := httptest.NewServer(mux)

	groupClient := apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL)
	settlementClient := apiconnect.NewSettlementServiceClient(http.DefaultClient, server.URL)

	cleanup := func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	}

	return groupClient, settlementClient, cleanup
}

func flatmates() []*api.Member {
	return []*api.Member{
		{Name: "Tara"},
		{Name: "Arun", Channels: []string{"upi"}},
		{Name: "Bina", Channels: []string{"upi", "bank"}},
		{Name: "Chetan", Channels: []string{"cash"}},
	}
}

func createFlatmates(t *testing.T, client apiconnect.GroupServiceClient, owner string) *api.Group {
	t.Helper()
	resp, err := client.CreateGroup(context.Background(), as(owner, &api.CreateGroupRequest{
		Name:    "Flatmates",
		Members: flatmates(),
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

func expectCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect.Error, got %T", err)
	}
	if connectErr.Code() != want {
		t.Errorf("expected %v, got %v (%s)", want, connectErr.Code(), connectErr.Message())
	}
}

func TestCreateGroup(t *testing.T) {
	client, _, cleanup := setupGroupTestServer(t)
	defer cleanup()

	group := createFlatmates(t, client, "owner-1")

	if group.ID == "" {
		t.Error("expected non-empty group ID")
	}
	if group.Name != "Flatmates" {
		t.Errorf("name: expected 'Flatmates', got '%s'", group.Name)
	}
	if group.OwnerID != "owner-1" {
		t.Errorf("owner: expected 'owner-1', got '%s'", group.OwnerID)
	}
	if len(group.Members) != 4 {
		t.Errorf("members: expected 4, got %d", len(group.Members))
	}
	if group.Members[0].Name != "Tara" {
		t.Errorf("treasurer: expected 'Tara' first, got '%s'", group.Members[0].Name)
	}
	if group.CreatedAt == 0 {
		t.Error("expected non-zero CreatedAt")
	}
}

func TestCreateGroup_Rejects(t *testing.T) {
	client, _, cleanup := setupGroupTestServer(t)
	defer cleanup()

	tests := []struct {
		name    string
		account string
		members []*api.Member
		want    connect.Code
	}{
		{
			name:    "anonymous",
			members: flatmates(),
			want:    connect.CodeUnauthenticated,
		},
		{
			name:    "single member",
			account: "owner-1",
			members: []*api.Member{{Name: "Tara"}},
			want:    connect.CodeInvalidArgument,
		},
		{
			name:    "member without channels",
			account: "owner-1",
			members: []*api.Member{{Name: "Tara"}, {Name: "Arun"}},
			want:    connect.CodeInvalidArgument,
		},
		{
			name:    "duplicate member",
			account: "owner-1",
			members: []*api.Member{{Name: "Tara"}, {Name: "Arun", Channels: []string{"upi"}}, {Name: "Arun", Channels: []string{"upi"}}},
			want:    connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateGroup(context.Background(), as(tt.account, &api.CreateGroupRequest{
				Members: tt.members,
			}))
			expectCode(t, err, tt.want)
		})
	}
}

func TestGetGroup(t *testing.T) {
	client, _, cleanup := setupGroupTestServer(t)
	defer cleanup()

	group := createFlatmates(t, client, "owner-1")
	_, err := client.AddDebt(context.Background(), as("owner-1", &api.AddDebtRequest{
		GroupID:  group.ID,
		Debtor:   "Arun",
		Creditor: "Bina",
		Amount:   300,
	}))
	if err != nil {
		t.Fatalf("AddDebt failed: %v", err)
	}

	getResp, err := client.GetGroup(context.Background(), as("owner-1", &api.GetGroupRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}

	if getResp.Msg.Group.Name != "Flatmates" {
		t.Errorf("name: expected 'Flatmates', got '%s'", getResp.Msg.Group.Name)
	}
	if len(getResp.Msg.Balances) != 4 {
		t.Fatalf("balances: expected 4, got %d", len(getResp.Msg.Balances))
	}
	if got := getResp.Msg.Balances[1]; got.Name != "Arun" || got.NetBalance != -300 {
		t.Errorf("Arun balance: got %+v", got)
	}
	if got := getResp.Msg.Balances[2]; got.Name != "Bina" || got.NetBalance != 300 {
		t.Errorf("Bina balance: got %+v", got)
	}
}

func TestGetGroup_Errors(t *testing.T) {
	client, _, cleanup := setupGroupTestServer(t)
	defer cleanup()

	group := createFlatmates(t, client, "owner-1")

	t.Run("not found", func(t *testing.T) {
		_, err := client.GetGroup(context.Background(), as("owner-1", &api.GetGroupRequest{GroupID: "nonexistent-id"}))
		expectCode(t, err, connect.CodeNotFound)
	})

	t.Run("other owner", func(t *testing.T) {
		_, err := client.GetGroup(context.Background(), as("owner-2", &api.GetGroupRequest{GroupID: group.ID}))
		expectCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := client.GetGroup(context.Background(), as("", &api.GetGroupRequest{GroupID: group.ID}))
		expectCode(t, err, connect.CodeUnauthenticated)
	})
}

func TestListGroups(t *testing.T) {
	client, _, cleanup := setupGroupTestServer(t)
	defer cleanup()

	createFlatmates(t, client, "owner-1")
	createFlatmates(t, client, "owner-1")
	createFlatmates(t, client, "owner-2")

	listResp, err := client.ListGroups(context.Background(), as("owner-1", &api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}

	if len(listResp.Msg.Groups) != 2 {
		t.Errorf("expected 2 groups, got %d", len(listResp.Msg.Groups))
	}
	for _, g := range listResp.Msg.Groups {
		if len(g.Members) == 0 {
			t.Errorf("group %s has no members", g.Name)
		}
		if g.OwnerID != "owner-1" {
			t.Errorf("group %s belongs to %s", g.ID, g.OwnerID)
		}
	}
}

func TestListGroups_Empty(t *testing.T) {
	client, _, cleanup := setupGroupTestServer(t)
	defer cleanup()

	listResp, err := client.ListGroups(context.Background(), as("owner-1", &api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}

	if len(listResp.Msg.Groups) != 0 {
		t.Errorf("expected 0 groups, got %d", len(listResp.Msg.Groups))
	}
}

func TestDeleteGroup(t *testing.T) {
	client, _, cleanup := setupGroupTestServer(t)
	defer cleanup()

	group := createFlatmates(t, client, "owner-1")

	_, err := client.DeleteGroup(context.Background(), as("owner-2", &api.DeleteGroupRequest{GroupID: group.ID}))
	expectCode(t, err, connect.CodePermissionDenied)

	if _, err := client.DeleteGroup(context.Background(), as("owner-1", &api.DeleteGroupRequest{GroupID: group.ID})); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}

	_, err = client.GetGroup(context.Background(), as("owner-1", &api.GetGroupRequest{GroupID: group.ID}))
	expectCode(t, err, connect.CodeNotFound)
}

func TestAddDebt(t *testing.T) {
	client, _, cleanup := setupGroupTestServer(t)
	defer cleanup()

	group := createFlatmates(t, client, "owner-1")

	resp, err := client.AddDebt(context.Background(), as("owner-1", &api.AddDebtRequest{
		GroupID:  group.ID,
		Debtor:   " Chetan ",
		Creditor: "Tara",
		Amount:   120,
		Note:     "groceries",
	}))
	if err != nil {
		t.Fatalf("AddDebt failed: %v", err)
	}
	if resp.Msg.Debt.ID == "" || resp.Msg.Debt.Debtor != "Chetan" || resp.Msg.Debt.Note != "groceries" {
		t.Errorf("unexpected debt: %+v", resp.Msg.Debt)
	}

	t.Run("unknown member", func(t *testing.T) {
		_, err := client.AddDebt(context.Background(), as("owner-1", &api.AddDebtRequest{
			GroupID: group.ID, Debtor: "Zed", Creditor: "Tara", Amount: 1,
		}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := client.AddDebt(context.Background(), as("owner-1", &api.AddDebtRequest{
			GroupID: group.ID, Debtor: "Arun", Creditor: "Tara", Amount: 0,
		}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("group total past the integer range", func(t *testing.T) {
		_, err := client.AddDebt(context.Background(), as("owner-1", &api.AddDebtRequest{
			GroupID: group.ID, Debtor: "Arun", Creditor: "Bina", Amount: math.MaxInt64,
		}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	listResp, err := client.ListDebts(context.Background(), as("owner-1", &api.ListDebtsRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("ListDebts failed: %v", err)
	}
	if len(listResp.Msg.Debts) != 1 {
		t.Errorf("expected 1 debt, got %d", len(listResp.Msg.Debts))
	}
}

func TestAddExpense(t *testing.T) {
	client, _, cleanup := setupGroupTestServer(t)
	defer cleanup()

	group := createFlatmates(t, client, "owner-1")

	resp, err := client.AddExpense(context.Background(), as("owner-1", &api.AddExpenseRequest{
		GroupID:      group.ID,
		Description:  "rent",
		Payer:        "Bina",
		Amount:       900,
		Participants: []string{"Arun", "Bina", "Chetan"},
	}))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	if resp.Msg.Shares["Arun"] != 300 || resp.Msg.Shares["Bina"] != 300 || resp.Msg.Shares["Chetan"] != 300 {
		t.Errorf("unexpected shares: %v", resp.Msg.Shares)
	}
	if len(resp.Msg.Debts) != 2 {
		t.Fatalf("expected 2 debts, got %d", len(resp.Msg.Debts))
	}
	for _, d := range resp.Msg.Debts {
		if d.Creditor != "Bina" || d.Amount != 300 || d.Note != "rent" {
			t.Errorf("unexpected debt: %+v", d)
		}
	}

	t.Run("participant outside the group", func(t *testing.T) {
		_, err := client.AddExpense(context.Background(), as("owner-1", &api.AddExpenseRequest{
			GroupID:      group.ID,
			Payer:        "Bina",
			Amount:       10,
			Participants: []string{"Bina", "Stranger"},
		}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("zero amount", func(t *testing.T) {
		_, err := client.AddExpense(context.Background(), as("owner-1", &api.AddExpenseRequest{
			GroupID:      group.ID,
			Payer:        "Bina",
			Participants: []string{"Arun"},
		}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})
	t.Run("heavy weights split without overflow", func(t *testing.T) {
		resp, err := client.AddExpense(context.Background(), as("owner-1", &api.AddExpenseRequest{
			GroupID:      group.ID,
			Payer:        "Arun",
			Amount:       1_000_000_000_000,
			Participants: []string{"Arun", "Bina"},
			Weights:      map[string]int64{"Arun": 100_000_000, "Bina": 1},
		}))
		if err != nil {
			t.Fatalf("AddExpense failed: %v", err)
		}
		if got := resp.Msg.Shares["Bina"]; got != 9_999 {
			t.Errorf("Bina's share = %d, want 9999", got)
		}
	})

	t.Run("weights past the integer range", func(t *testing.T) {
		_, err := client.AddExpense(context.Background(), as("owner-1", &api.AddExpenseRequest{
			GroupID:      group.ID,
			Payer:        "Arun",
			Amount:       10,
			Participants: []string{"Arun", "Bina"},
			Weights:      map[string]int64{"Arun": math.MaxInt64},
		}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})
}
