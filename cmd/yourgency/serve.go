package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skyaboveme/yourgency/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Sync Gateway HTTP server",
	Long: `Start the Sync Gateway: opportunities, accounts, activities, settings,
the AI advisor endpoints and reports. Stops gracefully on SIGINT/SIGTERM.

Example:
  DATABASE_URL=postgres://... JWT_SECRET=... yourgency serve
  DATABASE_DRIVER=sqlite DATABASE_URL=file:crm.db yourgency serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig("")
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Server.Port = port
		}

		// cmd.Context() is cancelled on SIGINT/SIGTERM
		if err := app.Run(cmd.Context(), cfg, log); err != nil {
			log.Error("server exited", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "Listen port (overrides config and PORT)")
}
