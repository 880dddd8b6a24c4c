package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/queries"
)

// notifications list|mark-all-seen|mark-seen
func (a *app) notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Read your notification feed",
	}

	var unread bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			feed, err := a.q.Notifications(cmd.Context(), unread)
			if err != nil {
				return err
			}
			rows := make([][]string, len(feed))
			for i, n := range feed {
				seen := ""
				if !n.IsSeen {
					seen = "*"
				}
				rows[i] = []string{itoa(n.NotificationID), seen, n.Created.Format(time.DateTime), n.Title}
			}
			return a.render(feed, []string{"ID", "NEW", "CREATED", "TITLE"}, rows)
		},
	}
	list.Flags().BoolVar(&unread, "unread", false, "only unread notifications")

	markAll := &cobra.Command{
		Use:   "mark-all-seen",
		Short: "Mark the whole feed as seen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			latest, err := a.q.MarkAllNotificationsSeen(cmd.Context())
			if err != nil {
				return err
			}
			if latest == 0 {
				return a.message("No notifications")
			}
			return a.message("Marked notifications up to %d as seen", latest)
		},
	}

	var unseen bool
	markOne := &cobra.Command{
		Use:   "mark-seen <id>",
		Short: "Mark one notification as seen (or unseen)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "notification id")
			if err != nil {
				return err
			}
			if err := a.q.MarkNotificationSeen(cmd.Context(), id, !unseen); err != nil {
				return err
			}
			return a.message("Notification %d updated", id)
		},
	}
	markOne.Flags().BoolVar(&unseen, "unseen", false, "mark as unseen instead")

	cmd.AddCommand(list, markAll, markOne)
	return cmd
}

// messages mark-all-read
func (a *app) messagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Work with chats and host requests",
	}

	var kind string
	markAll := &cobra.Command{
		Use:   "mark-all-read",
		Short: "Mark every conversation of one inbox as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k := queries.ConversationKind(kind)
			n, err := a.q.MarkAllRead(cmd.Context(), k)
			if err != nil {
				return err
			}
			return a.message("Marked %d %s", n, plural(n, "conversation"))
		},
	}
	markAll.Flags().StringVar(&kind, "kind", string(queries.KindChats),
		fmt.Sprintf("inbox to mark: %s, %s or %s", queries.KindChats, queries.KindHosting, queries.KindSurfing))

	cmd.AddCommand(markAll)
	return cmd
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
