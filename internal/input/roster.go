// Package input reads a roster and its debts, either from a YAML or JSON
// file or interactively from a terminal.
package input

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/cashflow/internal/settlement"
)

// Participant is a roster entry. The first participant is the Treasurer.
type Participant struct {
	Name     string   `yaml:"name" json:"name" validate:"required"`
	Channels []string `yaml:"channels" json:"channels" validate:"dive,required"`
}

// Debt is one "debtor owes creditor" record.
type Debt struct {
	Debtor   string `yaml:"debtor" json:"debtor" validate:"required"`
	Creditor string `yaml:"creditor" json:"creditor" validate:"required"`
	Amount   int64  `yaml:"amount" json:"amount" validate:"gt=0"`
}

// Roster is a complete settlement input.
type Roster struct {
	Participants []Participant `yaml:"participants" json:"participants" validate:"min=2,dive"`
	Debts        []Debt        `yaml:"debts" json:"debts" validate:"dive"`
}

// Entries converts the participants for settlement.NewRegistry.
func (r *Roster) Entries() []settlement.Entry {
	entries := make([]settlement.Entry, len(r.Participants))
	for i, p := range r.Participants {
		entries[i] = settlement.Entry{Name: p.Name, Channels: p.Channels}
	}
	return entries
}

// SettlementDebts converts the debt records for settlement.BuildMatrix.
func (r *Roster) SettlementDebts() []settlement.Debt {
	debts := make([]settlement.Debt, len(r.Debts))
	for i, d := range r.Debts {
		debts[i] = settlement.Debt{Debtor: d.Debtor, Creditor: d.Creditor, Amount: d.Amount}
	}
	return debts
}

var validate = validator.New()

// Validate checks the roster shape. Participant problems are reported as
// *settlement.ConfigurationError and debt problems as *settlement.InputError.
// Cross-references (unknown names, duplicates) are left to the settlement
// package.
func (r *Roster) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	fe := validationErrors[0]
	reason := fmt.Sprintf("%s failed '%s'", strings.TrimPrefix(fe.Namespace(), "Roster."), fe.Tag())
	if strings.HasPrefix(fe.Namespace(), "Roster.Debts") {
		return &settlement.InputError{Reason: reason}
	}
	return &settlement.ConfigurationError{Reason: reason}
}

// Format selects the file decoder.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatFor picks a format from a file extension. Anything other than
// ".json" is read as YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes and validates a roster. Unknown fields are rejected.
func Parse(r io.Reader, format Format) (*Roster, error) {
	var roster Roster
	switch format {
	case FormatJSON:
		dec := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&roster); err != nil {
			return nil, fmt.Errorf("failed to parse roster: %w", err)
		}
	default:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&roster); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, &settlement.ConfigurationError{Reason: "roster file is empty"}
			}
			return nil, fmt.Errorf("failed to parse roster: %w", err)
		}
	}

	if err := roster.Validate(); err != nil {
		return nil, err
	}
	return &roster, nil
}

// LoadFile reads a roster from path.
func LoadFile(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()

	roster, err := Parse(f, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return roster, nil
}
