package settlement

import (
	"slices"
	"strings"
)

// ChannelSet is a set of payment identifiers (UPI handles, wallet IDs, ...).
// Two participants can transact directly only if their sets intersect.
type ChannelSet map[string]struct{}

// NewChannelSet builds a set from the given identifiers. Surrounding
// whitespace is trimmed; duplicates collapse.
func NewChannelSet(channels ...string) ChannelSet {
	s := make(ChannelSet, len(channels))
	for _, c := range channels {
		s.Add(c)
	}
	return s
}

// Add inserts a channel. Blank identifiers are ignored.
func (s ChannelSet) Add(channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	s[channel] = struct{}{}
}

// Has reports whether the set contains channel.
func (s ChannelSet) Has(channel string) bool {
	_, ok := s[channel]
	return ok
}

// Len returns the number of channels in the set.
func (s ChannelSet) Len() int {
	return len(s)
}

// Union adds every channel of other to s.
func (s ChannelSet) Union(other ChannelSet) {
	for c := range other {
		s[c] = struct{}{}
	}
}

// Intersect returns the channels present in both sets.
func (s ChannelSet) Intersect(other ChannelSet) ChannelSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(ChannelSet)
	for c := range small {
		if large.Has(c) {
			out[c] = struct{}{}
		}
	}
	return out
}

// First returns the smallest channel in byte order, or "" for an empty set.
// It is the representative channel the planner records on a transfer.
func (s ChannelSet) First() string {
	first := ""
	for c := range s {
		if first == "" || c < first {
			first = c
		}
	}
	return first
}

// Sorted returns the channels in byte order.
func (s ChannelSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy of the set.
func (s ChannelSet) Clone() ChannelSet {
	out := make(ChannelSet, len(s))
	out.Union(s)
	return out
}

// Contains reports whether every channel of other is also in s.
func (s ChannelSet) Contains(other ChannelSet) bool {
	for c := range other {
		if !s.Has(c) {
			return false
		}
	}
	return true
}
