package commands

import (
	"strconv"

	"github.com/spf13/cobra"
)

// donate start|portal
func (a *app) donateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "donate",
		Short: "Support the platform",
	}

	var recurring bool
	start := &cobra.Command{
		Use:   "start <amount>",
		Short: "Start a donation checkout for a whole-dollar amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			session, err := a.q.Service().Donations.InitiateDonation(cmd.Context(), amount, recurring)
			if err != nil {
				return err
			}
			return a.message("Checkout session %s", session)
		},
	}
	start.Flags().BoolVar(&recurring, "recurring", false, "donate monthly")

	portal := &cobra.Command{
		Use:   "portal",
		Short: "Print the link to manage recurring donations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := a.q.Service().Donations.GetDonationPortalLink(cmd.Context())
			if err != nil {
				return err
			}
			return a.message("%s", link)
		},
	}

	cmd.AddCommand(start, portal)
	return cmd
}
