package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neboloop/runbook/internal/keyring"
)

func keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Store provider API keys in the OS keychain",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <provider> [key]",
		Short: "Save an API key; read from stdin when not given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !keyring.Available() {
				return errors.New("no OS keychain available; set llm.api_key instead")
			}
			var key string
			if len(args) == 2 {
				key = args[1]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read key: %w", err)
				}
				key = line
			}
			if err := keyring.Set(args[0], strings.TrimSpace(key)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved key for %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <provider>",
		Short: "Remove a saved API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := keyring.Delete(args[0]); err != nil {
				if errors.Is(err, keyring.ErrNotFound) {
					return fmt.Errorf("no key saved for %s", args[0])
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed key for %s\n", args[0])
			return nil
		},
	})
	return cmd
}
