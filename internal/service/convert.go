package service

import (
	"strings"

	"github.com/mmynk/cashflow/internal/calculator"
	"github.com/mmynk/cashflow/internal/models"
	"github.com/mmynk/cashflow/internal/settlement"
	"github.com/mmynk/cashflow/pkg/api"
)

func toEntries(members []*api.Member) []settlement.Entry {
	entries := make([]settlement.Entry, 0, len(members))
	for _, m := range members {
		if m == nil {
			continue
		}
		entries = append(entries, settlement.Entry{
			Name:     strings.TrimSpace(m.Name),
			Channels: m.Channels,
		})
	}
	return entries
}

func toSettlementDebts(debts []*api.Debt) []settlement.Debt {
	out := make([]settlement.Debt, 0, len(debts))
	for _, d := range debts {
		if d == nil {
			continue
		}
		out = append(out, settlement.Debt{
			Debtor:   strings.TrimSpace(d.Debtor),
			Creditor: strings.TrimSpace(d.Creditor),
			Amount:   d.Amount,
		})
	}
	return out
}

func groupEntries(group *models.Group) []settlement.Entry {
	entries := make([]settlement.Entry, len(group.Members))
	for i, m := range group.Members {
		entries[i] = settlement.Entry{Name: m.Name, Channels: m.Channels}
	}
	return entries
}

func storedDebts(debts []*models.Debt) []settlement.Debt {
	out := make([]settlement.Debt, len(debts))
	for i, d := range debts {
		out[i] = settlement.Debt{Debtor: d.Debtor, Creditor: d.Creditor, Amount: d.Amount}
	}
	return out
}

func toModelMembers(members []*api.Member) []models.Member {
	out := make([]models.Member, 0, len(members))
	for _, m := range members {
		if m == nil {
			continue
		}
		var channels []string
		for _, c := range m.Channels {
			channels = append(channels, strings.TrimSpace(c))
		}
		out = append(out, models.Member{Name: strings.TrimSpace(m.Name), Channels: channels})
	}
	return out
}

func toAPIGroup(group *models.Group) *api.Group {
	members := make([]*api.Member, len(group.Members))
	for i, m := range group.Members {
		members[i] = &api.Member{Name: m.Name, Channels: m.Channels}
	}
	return &api.Group{
		ID:        group.ID,
		Name:      group.Name,
		OwnerID:   group.OwnerID,
		Members:   members,
		CreatedAt: group.CreatedAt,
	}
}

func toAPIDebt(d *models.Debt) *api.Debt {
	return &api.Debt{
		ID:        d.ID,
		Debtor:    d.Debtor,
		Creditor:  d.Creditor,
		Amount:    d.Amount,
		Note:      d.Note,
		CreatedAt: d.CreatedAt,
	}
}

func toAPIAccount(a *models.Account) *api.Account {
	return &api.Account{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		CreatedAt:   a.CreatedAt,
	}
}

func toAPIBalances(balances []calculator.MemberBalance) []*api.MemberBalance {
	out := make([]*api.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = &api.MemberBalance{
			Name:       b.Name,
			NetBalance: b.NetBalance,
			TotalOwed:  b.TotalOwed,
			TotalOwes:  b.TotalOwes,
		}
	}
	return out
}

func toAPIPlan(reg *settlement.Registry, plan *settlement.Plan, balances []calculator.MemberBalance) *api.Plan {
	instructions := plan.Instructions(reg)
	transfers := make([]*api.Transfer, len(instructions))
	for i, in := range instructions {
		transfers[i] = &api.Transfer{
			Payer:   in.Payer,
			Payee:   in.Payee,
			Amount:  in.Amount,
			Channel: in.Channel,
			Routed:  in.Routed,
		}
	}
	return &api.Plan{
		Balances:      toAPIBalances(balances),
		Transfers:     transfers,
		Rounds:        int32(plan.Rounds()),
		TreasurerHops: int32(plan.TreasurerHops()),
	}
}
