package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var runbookID int64
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write runbooks to markdown files",
		Long: `Export one runbook with --runbook, or every active runbook that has
interactions. Exported runbooks are marked as exported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svcCtx, err := openService()
			if err != nil {
				return err
			}
			defer svcCtx.Close()

			out := cmd.OutOrStdout()
			if runbookID != 0 {
				path, err := svcCtx.Exporter.Export(cmd.Context(), runbookID)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, path)
				return nil
			}

			paths, err := svcCtx.Exporter.ExportActive(cmd.Context())
			for _, p := range paths {
				fmt.Fprintln(out, p)
			}
			if len(paths) == 0 && err == nil {
				fmt.Fprintln(out, "nothing to export")
			}
			return err
		},
	}
	cmd.Flags().Int64VarP(&runbookID, "runbook", "r", 0, "export only this runbook")
	return cmd
}
