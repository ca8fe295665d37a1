package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neboloop/runbook/internal/chat"
)

func askCmd() *cobra.Command {
	var runbookID int64
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question in the active runbook and stream the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svcCtx, err := openService()
			if err != nil {
				return err
			}
			defer svcCtx.Close()

			ctx, cancel := signalContext()
			defer cancel()

			sess, err := svcCtx.Chat.Session(ctx, username(svcCtx.Config))
			if err != nil {
				return err
			}
			if runbookID != 0 {
				if err := sess.SwitchRunbook(ctx, runbookID); err != nil {
					return fmt.Errorf("runbook %d: %w", runbookID, err)
				}
			}

			out := cmd.OutOrStdout()
			unsubscribe := sess.Subscribe(func(ev chat.Event) {
				switch ev.Type {
				case chat.EventFragment:
					fmt.Fprint(out, ev.Text)
				case chat.EventNotification:
					if ev.Notification != nil && ev.Notification.Level == chat.LevelError {
						fmt.Fprintf(cmd.ErrOrStderr(), "\n%s\n", ev.Notification.Message)
					}
				}
			})
			defer unsubscribe()

			sess.SetPrompt(strings.Join(args, " "))
			res, err := sess.SubmitResult(ctx)
			if err != nil {
				return err
			}
			if !res.Verdict.Allowed {
				fmt.Fprintln(cmd.ErrOrStderr(), res.Verdict.Message)
				return nil
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().Int64VarP(&runbookID, "runbook", "r", 0, "runbook to ask in (default: the newest)")
	cmd.Flags().StringVarP(&userFlag, "user", "u", "", "act as this user (default chat.username)")
	return cmd
}
