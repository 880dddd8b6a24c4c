package commands

import (
	"github.com/spf13/cobra"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/queries"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/service"
)

// friends list|requests|add|respond
func (a *app) friendsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friends",
		Short: "Manage friends and friend requests",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your friends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			friends, err := a.q.Friends(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(friends, []string{"ID", "USERNAME", "NAME", "CITY"}, liteUserRows(friends))
		},
	}

	var sent bool
	requests := &cobra.Command{
		Use:   "requests",
		Short: "List received (or sent) friend requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := queries.FriendRequestsReceived
			if sent {
				t = queries.FriendRequestsSent
			}
			reqs, err := a.q.FriendRequests(cmd.Context(), t)
			if err != nil {
				return err
			}
			rows := make([][]string, len(reqs))
			for i, r := range reqs {
				name := "(unknown)"
				if r.Friend != nil {
					name = r.Friend.Name
				}
				rows[i] = []string{itoa(r.FriendRequestID), itoa(r.UserID), name, string(r.State)}
			}
			return a.render(reqs, []string{"REQUEST", "USER", "NAME", "STATE"}, rows)
		},
	}
	requests.Flags().BoolVar(&sent, "sent", false, "list requests you sent")

	add := &cobra.Command{
		Use:   "add <user-id>",
		Short: "Send a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "user id")
			if err != nil {
				return err
			}
			if err := a.q.SendFriendRequest(cmd.Context(), id); err != nil {
				return err
			}
			return a.message("Friend request sent to user %d", id)
		},
	}

	var reject bool
	respond := &cobra.Command{
		Use:   "respond <request-id>",
		Short: "Accept (or reject) a received friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "friend request id")
			if err != nil {
				return err
			}
			if err := a.q.RespondFriendRequest(cmd.Context(), id, !reject); err != nil {
				return err
			}
			if reject {
				return a.message("Friend request %d rejected", id)
			}
			return a.message("Friend request %d accepted", id)
		},
	}
	respond.Flags().BoolVar(&reject, "reject", false, "reject instead of accepting")

	cmd.AddCommand(list, requests, add, respond)
	return cmd
}

func liteUserRows(users []service.LiteUser) [][]string {
	rows := make([][]string, len(users))
	for i, u := range users {
		rows[i] = []string{itoa(u.UserID), u.Username, u.Name, u.City}
	}
	return rows
}
