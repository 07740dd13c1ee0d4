package settlement

import "math"

// Transfer is one payment instruction. Payer and Payee are registry indexes.
// Routed marks the two legs of a Treasurer-mediated payment.
type Transfer struct {
	Payer   int
	Payee   int
	Amount  int64
	Channel string
	Routed  bool
}

// Instruction is a Transfer with participant names resolved, ready for
// presentation.
type Instruction struct {
	Payer   string `json:"payer"`
	Payee   string `json:"payee"`
	Amount  int64  `json:"amount"`
	Channel string `json:"channel"`
	Routed  bool   `json:"routed,omitempty"`
}

// Plan is the ordered output of a planning run. The order is the payment
// sequence; it only grows while planning and is read-only afterwards.
type Plan struct {
	transfers []Transfer
	rounds    int
}

func (p *Plan) append(t Transfer) {
	p.transfers = append(p.transfers, t)
}

// Transfers returns a copy of the transfers in emission order.
func (p *Plan) Transfers() []Transfer {
	out := make([]Transfer, len(p.transfers))
	copy(out, p.transfers)
	return out
}

// Len returns the number of transfers.
func (p *Plan) Len() int {
	return len(p.transfers)
}

// Rounds returns how many planning rounds ran.
func (p *Plan) Rounds() int {
	return p.rounds
}

// TreasurerHops counts Treasurer-mediated payments (each is two transfers).
func (p *Plan) TreasurerHops() int {
	hops := 0
	for _, t := range p.transfers {
		if t.Routed && t.Payee == TreasurerIndex {
			hops++
		}
	}
	return hops
}

// Total returns the sum of all transfer amounts. Both legs of a routed
// payment count, so the sum saturates at math.MaxInt64.
func (p *Plan) Total() int64 {
	var sum int64
	for _, t := range p.transfers {
		if t.Amount > math.MaxInt64-sum {
			return math.MaxInt64
		}
		sum += t.Amount
	}
	return sum
}

// Instructions resolves payer and payee indexes to names.
func (p *Plan) Instructions(reg *Registry) []Instruction {
	out := make([]Instruction, len(p.transfers))
	for i, t := range p.transfers {
		out[i] = Instruction{
			Payer:   reg.Name(t.Payer),
			Payee:   reg.Name(t.Payee),
			Amount:  t.Amount,
			Channel: t.Channel,
			Routed:  t.Routed,
		}
	}
	return out
}
