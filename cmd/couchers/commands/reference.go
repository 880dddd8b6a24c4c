package commands

import (
	"github.com/spf13/cobra"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/wizard"
)

// reference <friend|surfed|hosted> <user-id> [host-request-id]: walk the
// leave-reference wizard with the answers given as flags.
func (a *app) referenceCmd() *cobra.Command {
	var (
		appropriate string
		rating      float64
		text        string
	)

	cmd := &cobra.Command{
		Use:   "reference <friend|surfed|hosted> <user-id> [host-request-id]",
		Short: "Leave a reference",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			refType, err := wizard.ParseReferenceType(args[0])
			if err != nil {
				return err
			}
			target := wizard.Target{Type: refType}
			if target.UserID, err = parseID(args[1], "user id"); err != nil {
				return err
			}
			if len(args) == 3 {
				if target.HostRequestID, err = parseID(args[2], "host request id"); err != nil {
					return err
				}
			}

			w, err := wizard.New(a.q, target)
			if err != nil {
				return err
			}
			if err := w.CheckAvailable(cmd.Context()); err != nil {
				return err
			}

			answers := []struct {
				step   wizard.Step
				answer wizard.Draft
			}{
				{wizard.StepAppropriate, wizard.Draft{WasAppropriate: appropriate}},
				{wizard.StepRating, wizard.Draft{Rating: rating}},
				{wizard.StepReference, wizard.Draft{Text: text}},
			}
			for _, s := range answers {
				route, err := w.Advance(s.step, s.answer)
				if err != nil {
					return err
				}
				a.logger.Debug().Str("route", route).Msg("Next step")
			}

			ref, err := w.Submit(cmd.Context())
			if err != nil {
				return err
			}
			return a.message("Reference %d written for user %d", ref.ReferenceID, target.UserID)
		},
	}

	cmd.Flags().StringVar(&appropriate, "appropriate", "", "was their behaviour appropriate: true or false")
	cmd.Flags().Float64Var(&rating, "rating", wizard.DefaultRating, "private rating between 0 and 1")
	cmd.Flags().StringVar(&text, "text", "", "public reference text")
	_ = cmd.MarkFlagRequired("appropriate")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
