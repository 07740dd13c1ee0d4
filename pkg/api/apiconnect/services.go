package apiconnect

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/cashflow/pkg/api"
)

const (
	SettlementServiceName = "cashflow.v1.SettlementService"
	GroupServiceName      = "cashflow.v1.GroupService"
	AuthServiceName       = "cashflow.v1.AuthService"
)

const (
	SettlementServiceSettleProcedure    = "/cashflow.v1.SettlementService/Settle"
	SettlementServicePlanGroupProcedure = "/cashflow.v1.SettlementService/PlanGroup"

	GroupServiceCreateGroupProcedure = "/cashflow.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure    = "/cashflow.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure  = "/cashflow.v1.GroupService/ListGroups"
	GroupServiceDeleteGroupProcedure = "/cashflow.v1.GroupService/DeleteGroup"
	GroupServiceAddDebtProcedure     = "/cashflow.v1.GroupService/AddDebt"
	GroupServiceListDebtsProcedure   = "/cashflow.v1.GroupService/ListDebts"
	GroupServiceAddExpenseProcedure  = "/cashflow.v1.GroupService/AddExpense"

	AuthServiceRegisterProcedure       = "/cashflow.v1.AuthService/Register"
	AuthServiceLoginProcedure          = "/cashflow.v1.AuthService/Login"
	AuthServiceCurrentAccountProcedure = "/cashflow.v1.AuthService/CurrentAccount"
)

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
}

// SettlementServiceHandler computes settlement plans.
type SettlementServiceHandler interface {
	Settle(context.Context, *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error)
	PlanGroup(context.Context, *connect.Request[api.PlanGroupRequest]) (*connect.Response[api.PlanGroupResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler for svc and returns the
// path to mount it on.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(SettlementServiceSettleProcedure, connect.NewUnaryHandler(SettlementServiceSettleProcedure, svc.Settle, opts...))
	mux.Handle(SettlementServicePlanGroupProcedure, connect.NewUnaryHandler(SettlementServicePlanGroupProcedure, svc.PlanGroup, opts...))
	return "/" + SettlementServiceName + "/", mux
}

// SettlementServiceClient is a client for SettlementService.
type SettlementServiceClient interface {
	Settle(context.Context, *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error)
	PlanGroup(context.Context, *connect.Request[api.PlanGroupRequest]) (*connect.Response[api.PlanGroupResponse], error)
}

// NewSettlementServiceClient constructs a client for the service at baseURL.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &settlementServiceClient{
		settle:    connect.NewClient[api.SettleRequest, api.SettleResponse](httpClient, baseURL+SettlementServiceSettleProcedure, opts...),
		planGroup: connect.NewClient[api.PlanGroupRequest, api.PlanGroupResponse](httpClient, baseURL+SettlementServicePlanGroupProcedure, opts...),
	}
}

type settlementServiceClient struct {
	settle    *connect.Client[api.SettleRequest, api.SettleResponse]
	planGroup *connect.Client[api.PlanGroupRequest, api.PlanGroupResponse]
}

func (c *settlementServiceClient) Settle(ctx context.Context, req *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error) {
	return c.settle.CallUnary(ctx, req)
}

func (c *settlementServiceClient) PlanGroup(ctx context.Context, req *connect.Request[api.PlanGroupRequest]) (*connect.Response[api.PlanGroupResponse], error) {
	return c.planGroup.CallUnary(ctx, req)
}

// GroupServiceHandler manages stored rosters and their debts.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
	AddDebt(context.Context, *connect.Request[api.AddDebtRequest]) (*connect.Response[api.AddDebtResponse], error)
	ListDebts(context.Context, *connect.Request[api.ListDebtsRequest]) (*connect.Response[api.ListDebtsResponse], error)
	AddExpense(context.Context, *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler for svc and returns the path
// to mount it on.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(GroupServiceDeleteGroupProcedure, connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...))
	mux.Handle(GroupServiceAddDebtProcedure, connect.NewUnaryHandler(GroupServiceAddDebtProcedure, svc.AddDebt, opts...))
	mux.Handle(GroupServiceListDebtsProcedure, connect.NewUnaryHandler(GroupServiceListDebtsProcedure, svc.ListDebts, opts...))
	mux.Handle(GroupServiceAddExpenseProcedure, connect.NewUnaryHandler(GroupServiceAddExpenseProcedure, svc.AddExpense, opts...))
	return "/" + GroupServiceName + "/", mux
}

// GroupServiceClient is a client for GroupService.
type GroupServiceClient interface {
	GroupServiceHandler
}

// NewGroupServiceClient constructs a client for the service at baseURL.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &groupServiceClient{
		createGroup: connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:    connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:  connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		deleteGroup: connect.NewClient[api.DeleteGroupRequest, api.DeleteGroupResponse](httpClient, baseURL+GroupServiceDeleteGroupProcedure, opts...),
		addDebt:     connect.NewClient[api.AddDebtRequest, api.AddDebtResponse](httpClient, baseURL+GroupServiceAddDebtProcedure, opts...),
		listDebts:   connect.NewClient[api.ListDebtsRequest, api.ListDebtsResponse](httpClient, baseURL+GroupServiceListDebtsProcedure, opts...),
		addExpense:  connect.NewClient[api.AddExpenseRequest, api.AddExpenseResponse](httpClient, baseURL+GroupServiceAddExpenseProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup    *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups  *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	deleteGroup *connect.Client[api.DeleteGroupRequest, api.DeleteGroupResponse]
	addDebt     *connect.Client[api.AddDebtRequest, api.AddDebtResponse]
	listDebts   *connect.Client[api.ListDebtsRequest, api.ListDebtsResponse]
	addExpense  *connect.Client[api.AddExpenseRequest, api.AddExpenseResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddDebt(ctx context.Context, req *connect.Request[api.AddDebtRequest]) (*connect.Response[api.AddDebtResponse], error) {
	return c.addDebt.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListDebts(ctx context.Context, req *connect.Request[api.ListDebtsRequest]) (*connect.Response[api.ListDebtsResponse], error) {
	return c.listDebts.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

// AuthServiceHandler manages operator accounts.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	CurrentAccount(context.Context, *connect.Request[api.CurrentAccountRequest]) (*connect.Response[api.CurrentAccountResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for svc and returns the path
// to mount it on. Register and Login take no token; CurrentAccount expects
// authOpts to install an authenticating interceptor, which runs ahead of
// the interceptors in opts.
func NewAuthServiceHandler(svc AuthServiceHandler, opts []connect.HandlerOption, authOpts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(AuthServiceRegisterProcedure, connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...))
	mux.Handle(AuthServiceCurrentAccountProcedure, connect.NewUnaryHandler(AuthServiceCurrentAccountProcedure, svc.CurrentAccount, slices.Concat(authOpts, opts)...))
	return "/" + AuthServiceName + "/", mux
}

// AuthServiceClient is a client for AuthService.
type AuthServiceClient interface {
	AuthServiceHandler
}

// NewAuthServiceClient constructs a client for the service at baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &authServiceClient{
		register:       connect.NewClient[api.RegisterRequest, api.RegisterResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		login:          connect.NewClient[api.LoginRequest, api.LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		currentAccount: connect.NewClient[api.CurrentAccountRequest, api.CurrentAccountResponse](httpClient, baseURL+AuthServiceCurrentAccountProcedure, opts...),
	}
}

type authServiceClient struct {
	register       *connect.Client[api.RegisterRequest, api.RegisterResponse]
	login          *connect.Client[api.LoginRequest, api.LoginResponse]
	currentAccount *connect.Client[api.CurrentAccountRequest, api.CurrentAccountResponse]
}

func (c *authServiceClient) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) CurrentAccount(ctx context.Context, req *connect.Request[api.CurrentAccountRequest]) (*connect.Response[api.CurrentAccountResponse], error) {
	return c.currentAccount.CallUnary(ctx, req)
}
