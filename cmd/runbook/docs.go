package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func docsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage reference documents",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <url>",
		Short: "Fetch a web page into the document library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svcCtx, err := openService()
			if err != nil {
				return err
			}
			defer svcCtx.Close()

			doc, err := svcCtx.Documents.Add(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s: %s\n", doc.ID, doc.Title)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			svcCtx, err := openService()
			if err != nil {
				return err
			}
			defer svcCtx.Close()

			docs, err := svcCtx.Documents.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tPARSED\tURL")
			for _, d := range docs {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", d.ID, d.Title, d.Parsed(), d.Path)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "parse <id>",
		Short: "Convert a fetched page to markdown with the configured model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svcCtx, err := openService()
			if err != nil {
				return err
			}
			defer svcCtx.Close()

			ctx, cancel := signalContext()
			defer cancel()
			doc, err := svcCtx.Documents.Parse(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), doc.ParsedContent)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a document",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svcCtx, err := openService()
			if err != nil {
				return err
			}
			defer svcCtx.Close()
			return svcCtx.Documents.Delete(cmd.Context(), args[0])
		},
	})
	return cmd
}
