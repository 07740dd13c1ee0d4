// Package api defines the request and response messages of the cashflow RPC
// services. Messages travel as JSON over the Connect protocol; see
// package apiconnect for handlers and clients.
package api

// Member is a roster entry. The first member of a roster is the Treasurer.
type Member struct {
	Name     string   `json:"name"`
	Channels []string `json:"channels,omitempty"`
}

// Debt is a raw "debtor owes creditor" record. Amount is in minor units.
type Debt struct {
	ID        string `json:"id,omitempty"`
	Debtor    string `json:"debtor"`
	Creditor  string `json:"creditor"`
	Amount    int64  `json:"amount"`
	Note      string `json:"note,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

// Transfer is one payment instruction of a settlement plan.
type Transfer struct {
	Payer   string `json:"payer"`
	Payee   string `json:"payee"`
	Amount  int64  `json:"amount"`
	Channel string `json:"channel"`
	Routed  bool   `json:"routed,omitempty"`
}

// MemberBalance is a member's aggregated position before settlement.
type MemberBalance struct {
	Name       string `json:"name"`
	NetBalance int64  `json:"net_balance"`
	TotalOwed  int64  `json:"total_owed"`
	TotalOwes  int64  `json:"total_owes"`
}

// Group is a stored roster.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	Members   []*Member `json:"members"`
	CreatedAt int64     `json:"created_at"`
}

// Account is the public view of an operator account.
type Account struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	CreatedAt   int64  `json:"created_at,omitempty"`
}

// Plan is a computed settlement.
type Plan struct {
	Balances      []*MemberBalance `json:"balances"`
	Transfers     []*Transfer      `json:"transfers"`
	Rounds        int32            `json:"rounds"`
	TreasurerHops int32            `json:"treasurer_hops"`
}

type SettleRequest struct {
	Participants []*Member `json:"participants"`
	Debts        []*Debt   `json:"debts"`
}

type SettleResponse struct {
	Plan *Plan `json:"plan"`
}

type PlanGroupRequest struct {
	GroupID string `json:"group_id"`
}

type PlanGroupResponse struct {
	GroupID string `json:"group_id"`
	Plan    *Plan  `json:"plan"`
}

type CreateGroupRequest struct {
	Name    string    `json:"name"`
	Members []*Member `json:"members"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group    *Group           `json:"group"`
	Balances []*MemberBalance `json:"balances"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

type AddDebtRequest struct {
	GroupID  string `json:"group_id"`
	Debtor   string `json:"debtor"`
	Creditor string `json:"creditor"`
	Amount   int64  `json:"amount"`
	Note     string `json:"note,omitempty"`
}

type AddDebtResponse struct {
	Debt *Debt `json:"debt"`
}

type ListDebtsRequest struct {
	GroupID string `json:"group_id"`
}

type ListDebtsResponse struct {
	Debts []*Debt `json:"debts"`
}

type AddExpenseRequest struct {
	GroupID      string           `json:"group_id"`
	Description  string           `json:"description,omitempty"`
	Payer        string           `json:"payer"`
	Amount       int64            `json:"amount"`
	Participants []string         `json:"participants"`
	Weights      map[string]int64 `json:"weights,omitempty"`
}

type AddExpenseResponse struct {
	Shares map[string]int64 `json:"shares"`
	Debts  []*Debt          `json:"debts"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	Account *Account `json:"account"`
	Token   string   `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Account *Account `json:"account"`
	Token   string   `json:"token"`
}

type CurrentAccountRequest struct{}

type CurrentAccountResponse struct {
	Account *Account `json:"account"`
}
