package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/cashflow/internal/input"
	"github.com/mmynk/cashflow/internal/render"
	"github.com/mmynk/cashflow/internal/settlement"
)

func newSettleCmd() *cobra.Command {
	var (
		file   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Plan the transfers that settle a roster's debts",
		Long: `Reads a roster and its debts and prints the settlement plan.

Without --file the roster is read interactively: the participant count, then
each participant's name, channel count and channels (the first participant is
the Treasurer), then the debt count and "debtor creditor amount" lines.

With --file the roster is read from a YAML (or .json) document:

  participants:
    - name: Tara
    - name: Arun
      channels: [arun@upi]
  debts:
    - {debtor: Arun, creditor: Tara, amount: 250}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := render.ParseMode(output)
			if err != nil {
				return err
			}

			var roster *input.Roster
			if file != "" {
				roster, err = input.LoadFile(file)
			} else {
				roster, err = input.Interactive(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}

			reg, plan, err := settlement.Settle(roster.Entries(), roster.SettlementDebts(),
				settlement.WithObserver(logRound))
			if err != nil {
				return err
			}

			slog.Info("Plan computed",
				"transfers", plan.Len(),
				"rounds", plan.Rounds(),
				"treasurer_hops", plan.TreasurerHops(),
			)
			if err := render.Summary(cmd.OutOrStdout(), reg, plan, mode); err != nil {
				return fmt.Errorf("failed to print summary: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the roster from a YAML or JSON file instead of prompting")
	cmd.Flags().StringVarP(&output, "output", "o", "auto", "Output style: auto, plain, markdown, styled")
	return cmd
}

func logRound(r settlement.Round) {
	slog.Debug("Settlement round",
		"round", r.Number,
		"debtor", r.Debtor,
		"routed", r.Routed,
		"transfers", len(r.Transfers),
	)
}
