package input

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/mmynk/cashflow/internal/settlement"
)

// tokenReader splits input on whitespace, so answers may span lines or share
// one.
type tokenReader struct {
	sc *bufio.Scanner
}

func newTokenReader(r io.Reader) *tokenReader {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	return &tokenReader{sc: sc}
}

func (t *tokenReader) next() (string, error) {
	if t.sc.Scan() {
		return t.sc.Text(), nil
	}
	if err := t.sc.Err(); err != nil {
		return "", err
	}
	return "", io.ErrUnexpectedEOF
}

func (t *tokenReader) nextInt() (int64, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(tok, 10, 64)
}

// Interactive prompts on w and reads a roster from r: the participant count,
// then for each participant a name, a channel count and the channels, then
// the debt count and "debtor creditor amount" triples. The first participant
// is the Treasurer.
//
// A malformed participant section yields *settlement.ConfigurationError and a
// malformed debt section *settlement.InputError. Names and amounts are
// checked later by the settlement package.
func Interactive(r io.Reader, w io.Writer) (*Roster, error) {
	in := newTokenReader(r)

	fmt.Fprint(w, "\n=== Cash Flow Minimizer ===\n")
	fmt.Fprint(w, "Participants count (including Treasurer): ")
	n, err := in.nextInt()
	if err != nil {
		return nil, &settlement.ConfigurationError{Reason: fmt.Sprintf("invalid participant count: %v", err)}
	}
	if n < settlement.MinParticipants {
		return nil, &settlement.ConfigurationError{Reason: fmt.Sprintf("at least %d participants required, got %d", settlement.MinParticipants, n)}
	}

	roster := &Roster{}
	for i := int64(0); i < n; i++ {
		role := "Member"
		if i == settlement.TreasurerIndex {
			role = "Treasurer"
		}
		fmt.Fprintf(w, "%s %d - Name and channel count: ", role, i+1)

		name, err := in.next()
		if err != nil {
			return nil, &settlement.ConfigurationError{Reason: fmt.Sprintf("participant %d: missing name", i+1)}
		}
		k, err := in.nextInt()
		if err != nil || k < 0 {
			return nil, &settlement.ConfigurationError{Reason: fmt.Sprintf("participant %q: invalid channel count", name)}
		}

		p := Participant{Name: name}
		if k > 0 {
			fmt.Fprint(w, "Enter channels: ")
		}
		for ; k > 0; k-- {
			channel, err := in.next()
			if err != nil {
				return nil, &settlement.ConfigurationError{Reason: fmt.Sprintf("participant %q: missing channel", name)}
			}
			p.Channels = append(p.Channels, channel)
		}
		roster.Participants = append(roster.Participants, p)
	}

	fmt.Fprint(w, "\nNumber of debts: ")
	m, err := in.nextInt()
	if err != nil || m < 0 {
		return nil, &settlement.InputError{Reason: "invalid debt count"}
	}
	if m > 0 {
		fmt.Fprint(w, "Format: Debtor Creditor Amount\n")
	}
	for j := int64(1); j <= m; j++ {
		debtor, err := in.next()
		if err != nil {
			return nil, &settlement.InputError{Reason: fmt.Sprintf("debt %d: missing debtor", j)}
		}
		creditor, err := in.next()
		if err != nil {
			return nil, &settlement.InputError{Reason: fmt.Sprintf("debt %d: missing creditor", j)}
		}
		amount, err := in.nextInt()
		if err != nil {
			return nil, &settlement.InputError{Reason: fmt.Sprintf("debt %d: invalid amount", j)}
		}
		roster.Debts = append(roster.Debts, Debt{Debtor: debtor, Creditor: creditor, Amount: amount})
	}
	return roster, nil
}
