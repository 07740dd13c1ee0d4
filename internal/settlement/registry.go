// Package settlement nets pairwise debts into per-participant balances and
// plans the transfers that clear them.
//
// Participants live in a Registry, an indexed sequence owned by the caller.
// Index 0 is the Treasurer: after setup its channel set is the union of every
// participant's channels, so it can always receive from a debtor and pay a
// creditor. The planner prefers direct transfers and only routes through the
// Treasurer when a debtor shares no channel with any creditor.
package settlement

import "strings"

// TreasurerIndex is the fixed registry position of the Treasurer.
const TreasurerIndex = 0

// MinParticipants is the smallest roster a registry accepts.
const MinParticipants = 2

// Entry is one participant as supplied by an intake collaborator.
type Entry struct {
	Name     string
	Channels []string
}

// Participant is a registry record. Balance is the net amount owed to the
// participant: positive for a creditor, negative for a debtor.
type Participant struct {
	Name     string
	Balance  int64
	Channels ChannelSet
}

// Settled reports whether the participant has a zero balance.
func (p *Participant) Settled() bool {
	return p.Balance == 0
}

// Registry holds every participant of a run, addressed by index.
type Registry struct {
	participants []Participant
	index        map[string]int
}

// NewRegistry validates the roster and builds a registry. The first entry
// becomes the Treasurer and its channels are widened to the union of all
// channels.
func NewRegistry(entries []Entry) (*Registry, error) {
	if len(entries) < MinParticipants {
		return nil, configErrorf("at least %d participants required, got %d", MinParticipants, len(entries))
	}

	r := &Registry{
		participants: make([]Participant, 0, len(entries)),
		index:        make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, configErrorf("participant %d has no name", i+1)
		}
		if _, dup := r.index[name]; dup {
			return nil, configErrorf("duplicate participant name %q", name)
		}
		for _, c := range e.Channels {
			if strings.TrimSpace(c) == "" {
				return nil, configErrorf("participant %q has a blank channel", name)
			}
		}
		channels := NewChannelSet(e.Channels...)
		if i != TreasurerIndex && channels.Len() == 0 {
			return nil, configErrorf("participant %q has no payment channels", name)
		}
		r.index[name] = i
		r.participants = append(r.participants, Participant{Name: name, Channels: channels})
	}

	treasurer := &r.participants[TreasurerIndex]
	for i := 1; i < len(r.participants); i++ {
		treasurer.Channels.Union(r.participants[i].Channels)
	}
	return r, nil
}

// Len returns the number of participants.
func (r *Registry) Len() int {
	return len(r.participants)
}

// Index returns the position of the named participant.
func (r *Registry) Index(name string) (int, bool) {
	i, ok := r.index[strings.TrimSpace(name)]
	return i, ok
}

// Participant returns a pointer to the record at index i. The pointer stays
// valid for the registry's lifetime.
func (r *Registry) Participant(i int) *Participant {
	return &r.participants[i]
}

// Name returns the name of the participant at index i.
func (r *Registry) Name(i int) string {
	return r.participants[i].Name
}

// Treasurer returns the Treasurer's record.
func (r *Registry) Treasurer() *Participant {
	return &r.participants[TreasurerIndex]
}

// Balances returns a snapshot of every balance in registry order.
func (r *Registry) Balances() []int64 {
	out := make([]int64, len(r.participants))
	for i := range r.participants {
		out[i] = r.participants[i].Balance
	}
	return out
}

// Total returns the sum of all balances. It is zero whenever the registry is
// consistent.
func (r *Registry) Total() int64 {
	var sum int64
	for i := range r.participants {
		sum += r.participants[i].Balance
	}
	return sum
}

// Settled reports whether every participant has a zero balance.
func (r *Registry) Settled() bool {
	for i := range r.participants {
		if !r.participants[i].Settled() {
			return false
		}
	}
	return true
}

// move records a payment of amount from payer to payee: the payer owes less,
// the payee is owed less.
func (r *Registry) move(payer, payee int, amount int64) {
	r.participants[payer].Balance += amount
	r.participants[payee].Balance -= amount
}
