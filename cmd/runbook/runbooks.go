package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func runbooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "runbooks",
		Aliases: []string{"rb"},
		Short:   "List and create runbooks",
	}
	cmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "act as this user (default chat.username)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your runbooks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svcCtx, err := openService()
			if err != nil {
				return err
			}
			defer svcCtx.Close()

			rbs, err := svcCtx.History.ListRunbooks(cmd.Context(), username(svcCtx.Config))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tUPDATED")
			for _, rb := range rbs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", rb.ID, rb.Title, rb.Status,
					time.Unix(rb.UpdatedAt, 0).Format(time.DateTime))
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Start a new runbook and make it active",
		RunE: func(cmd *cobra.Command, args []string) error {
			svcCtx, err := openService()
			if err != nil {
				return err
			}
			defer svcCtx.Close()

			sess, err := svcCtx.Chat.Session(cmd.Context(), username(svcCtx.Config))
			if err != nil {
				return err
			}
			rb, err := sess.NewRunbook(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created runbook %d: %s\n", rb.ID, rb.Title)
			return nil
		},
	})
	return cmd
}
