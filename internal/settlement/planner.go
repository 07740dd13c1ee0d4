package settlement

// Round describes one planning iteration: the debtor it resolved and the
// transfers it emitted.
type Round struct {
	Number    int
	Debtor    int
	Routed    bool
	Transfers []Transfer
}

// Option configures a Planner.
type Option func(*Planner)

// WithObserver registers fn to be called after every round.
func WithObserver(fn func(Round)) Option {
	return func(p *Planner) {
		p.observers = append(p.observers, fn)
	}
}

// Planner runs the greedy settlement loop over a registry whose balances have
// been netted. It mutates balances in place and owns nothing else.
type Planner struct {
	reg       *Registry
	observers []func(Round)
}

// NewPlanner returns a planner bound to reg.
func NewPlanner(reg *Registry, opts ...Option) *Planner {
	p := &Planner{reg: reg}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// maxRounds bounds the loop. No transfer overshoots a balance, every direct
// round zeroes its debtor or creditor, and a fallback round zeroes its debtor
// plus the Treasurer or the forwarded-to creditor, so a correct run needs at
// most one round per participant.
func (p *Planner) maxRounds() int {
	return 2*p.reg.Len() + 2
}

// Run plans transfers until every balance is zero. A run over an already
// settled registry returns an empty plan.
//
// Each round takes the largest debtor (lowest index on ties) and pays the
// largest creditor it shares a channel with (lowest index on ties) through
// the smallest shared channel. If it shares none, the debtor pays its whole
// debt to the Treasurer, which immediately forwards to the largest remaining
// creditor.
func (p *Planner) Run() (*Plan, error) {
	plan := &Plan{}
	if total := p.reg.Total(); total != 0 {
		return nil, &InvariantViolation{Reason: "balances sum to a non-zero total"}
	}

	for !p.reg.Settled() {
		number := plan.rounds + 1
		if number > p.maxRounds() {
			return nil, &InvariantViolation{Round: number, Reason: "round bound exceeded"}
		}

		d := p.maxDebtor()
		if d < 0 {
			return nil, &InvariantViolation{Round: number, Reason: "unsettled balances but no debtor"}
		}

		round := Round{Number: number, Debtor: d}
		if c, channel := p.findCreditor(d); c >= 0 {
			amount := min(-p.reg.Participant(d).Balance, p.reg.Participant(c).Balance)
			round.Transfers = append(round.Transfers, p.emit(plan, d, c, amount, channel, false))
		} else {
			transfers, err := p.route(plan, d, number)
			if err != nil {
				return nil, err
			}
			round.Routed = true
			round.Transfers = transfers
		}

		plan.rounds = number
		for _, fn := range p.observers {
			fn(round)
		}
	}
	return plan, nil
}

// route sends the debtor's whole debt to the Treasurer and forwards it to the
// largest creditor other than the Treasurer.
func (p *Planner) route(plan *Plan, d, number int) ([]Transfer, error) {
	debtor := p.reg.Participant(d)
	if d == TreasurerIndex {
		return nil, &InvariantViolation{Round: number, Reason: "treasurer shares no channel with any creditor"}
	}
	if debtor.Channels.Len() == 0 {
		return nil, &InvariantViolation{Round: number, Reason: "debtor " + debtor.Name + " has no channels"}
	}

	treasurer := p.reg.Treasurer()
	amount := -debtor.Balance
	transfers := []Transfer{
		p.emit(plan, d, TreasurerIndex, amount, debtor.Channels.First(), true),
	}

	fc := p.maxCreditorExcept(TreasurerIndex)
	if fc < 0 || treasurer.Balance >= 0 {
		return transfers, nil
	}
	creditor := p.reg.Participant(fc)
	forward := min(-treasurer.Balance, creditor.Balance)
	transfers = append(transfers, p.emit(plan, TreasurerIndex, fc, forward, creditor.Channels.First(), true))
	return transfers, nil
}

func (p *Planner) emit(plan *Plan, payer, payee int, amount int64, channel string, routed bool) Transfer {
	t := Transfer{Payer: payer, Payee: payee, Amount: amount, Channel: channel, Routed: routed}
	plan.append(t)
	p.reg.move(payer, payee, amount)
	return t
}

// maxDebtor returns the index of the most negative balance, or -1.
func (p *Planner) maxDebtor() int {
	best := -1
	var bestBalance int64
	for i := 0; i < p.reg.Len(); i++ {
		b := p.reg.Participant(i).Balance
		if b < 0 && (best < 0 || b < bestBalance) {
			best, bestBalance = i, b
		}
	}
	return best
}

// maxCreditorExcept returns the index of the largest positive balance other
// than skip, or -1.
func (p *Planner) maxCreditorExcept(skip int) int {
	best := -1
	var bestBalance int64
	for i := 0; i < p.reg.Len(); i++ {
		if i == skip {
			continue
		}
		b := p.reg.Participant(i).Balance
		if b > 0 && b > bestBalance {
			best, bestBalance = i, b
		}
	}
	return best
}

// findCreditor returns the largest creditor sharing a channel with d and the
// smallest shared channel, or -1 if there is none.
func (p *Planner) findCreditor(d int) (int, string) {
	debtor := p.reg.Participant(d)
	best, via := -1, ""
	var bestBalance int64
	for i := 0; i < p.reg.Len(); i++ {
		c := p.reg.Participant(i)
		if i == d || c.Balance <= 0 || c.Balance <= bestBalance {
			continue
		}
		shared := debtor.Channels.Intersect(c.Channels)
		if shared.Len() == 0 {
			continue
		}
		best, bestBalance, via = i, c.Balance, shared.First()
	}
	return best, via
}

// Settle builds a registry, nets the debts and plans the transfers in one
// call.
func Settle(entries []Entry, debts []Debt, opts ...Option) (*Registry, *Plan, error) {
	reg, err := NewRegistry(entries)
	if err != nil {
		return nil, nil, err
	}
	m, err := BuildMatrix(reg, debts)
	if err != nil {
		return nil, nil, err
	}
	NetBalances(reg, m)
	plan, err := NewPlanner(reg, opts...).Run()
	if err != nil {
		return nil, nil, err
	}
	return reg, plan, nil
}
