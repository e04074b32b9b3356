package commands

import (
	"github.com/spf13/cobra"

	"blogapi/internal/database"
	transport "blogapi/internal/transport/http"
)

var migrateOnStart bool

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		if migrateOnStart {
			db, err := database.Connect(cfg)
			if err != nil {
				return err
			}
			err = database.Migrate(ctx, db)
			db.Close()
			if err != nil {
				return err
			}
		}

		return transport.Run(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "Apply the schema before serving")
	rootCmd.AddCommand(serveCmd)
}
