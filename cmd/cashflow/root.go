package main

import (
	"github.com/spf13/cobra"

	"github.com/mmynk/cashflow/pkg/logging"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "cashflow",
		Short: "Cashflow settles group debts with as few transfers as it can",
		Long: `Cashflow nets a group's debts into balances and plans the transfers that
clear them. Payments go directly between members who share a payment channel;
everything else is relayed through the Treasurer, the first member listed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevel != "" {
				logging.SetupWithLevel(logging.ParseLevel(logLevel))
				return
			}
			logging.Setup()
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from LOG_LEVEL)")

	root.AddCommand(newSettleCmd(), newServeCmd(), newVersionCmd())
	return root
}
