package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// user <id>: show a profile.
func (a *app) userCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user <id>",
		Short: "Show a user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "user id")
			if err != nil {
				return err
			}
			u, err := a.q.User(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.render(u, []string{"ID", "USERNAME", "NAME", "CITY", "FRIENDS", "REFERENCES"}, [][]string{{
				itoa(u.UserID), u.Username, u.Name, u.City, string(u.Friends), fmt.Sprint(u.NumReferences),
			}})
		},
	}
}
