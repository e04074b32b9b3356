package commands

import (
	"github.com/spf13/cobra"

	"blogapi/internal/database"
)

// migrateCmd applies the embedded schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Apply the embedded schema. Every statement is idempotent, so running
it against an up-to-date database is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := database.Connect(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		return database.Migrate(cmd.Context(), db)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
