package cli

import (
	"github.com/spf13/cobra"

	"github.com/neboloop/runbook/internal/config"
	"github.com/neboloop/runbook/internal/logging"
	"github.com/neboloop/runbook/internal/server"
)

func serveCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			svcCtx, err := openService()
			if err != nil {
				return err
			}
			defer svcCtx.Close()

			ctx, cancel := signalContext()
			defer cancel()

			if cfgFile != "" {
				base, err := localBase()
				if err != nil {
					return err
				}
				w, err := config.Watch(base, cfgFile, func(c config.Config) {
					logging.Infof("Configuration changed, reloading LLM settings")
					svcCtx.Reload(c)
				})
				if err != nil {
					logging.Warnf("Config file will not be watched: %v", err)
				} else {
					defer w.Close()
				}
			}

			if svcCtx.Config.IsDevMode() {
				logging.Warnf("Dev mode: authentication is disabled")
			}
			return server.Run(ctx, svcCtx, server.Options{Quiet: quiet})
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not log requests")
	return cmd
}
