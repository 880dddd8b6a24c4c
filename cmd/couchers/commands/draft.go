package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

// draft get|set|clear <chat-id>
func (a *app) draftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Keep unsent message drafts per conversation",
	}

	get := &cobra.Command{
		Use:   "get <chat-id>",
		Short: "Print the draft of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "chat id")
			if err != nil {
				return err
			}
			text, err := a.prefs.Draft(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.message("%s", text)
		},
	}

	set := &cobra.Command{
		Use:   "set <chat-id> <text>...",
		Short: "Save the draft of a conversation",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "chat id")
			if err != nil {
				return err
			}
			if err := a.prefs.SetDraft(cmd.Context(), id, strings.Join(args[1:], " ")); err != nil {
				return err
			}
			return a.message("Draft saved for chat %d", id)
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear <chat-id>",
		Short: "Discard the draft of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "chat id")
			if err != nil {
				return err
			}
			if err := a.prefs.ClearDraft(cmd.Context(), id); err != nil {
				return err
			}
			return a.message("Draft cleared for chat %d", id)
		},
	}

	cmd.AddCommand(get, set, clearCmd)
	return cmd
}
