package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"blogapi/internal/database"
	"blogapi/internal/logging"
	"blogapi/internal/queue"
	"blogapi/internal/redis"
	"blogapi/internal/repository"
	"blogapi/internal/worker"
)

var workerConfig = worker.DefaultManagerConfig()

// workerCmd runs the counter audit worker
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Audit counters against the activity stream",
	Long: `Consume the activity stream and recount the rows behind every counter an
event touched. Drift is logged as a warning and never repaired. Requires
REDIS_URL.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.RedisURL == "" {
			return errors.New("worker requires REDIS_URL")
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		db, err := database.Connect(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		client, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()

		handler := worker.NewHandler(repository.NewAuditRepository(db))
		manager := worker.NewManager(queue.NewConsumer(client), handler, workerConfig)
		if err := manager.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()
		logging.Component("worker").Info("Shutdown signal received")
		manager.Stop()
		return nil
	},
}

func init() {
	workerCmd.Flags().IntVar(&workerConfig.WorkerCount, "workers", worker.DefaultWorkerCount, "Number of worker goroutines")
	workerCmd.Flags().Int64Var(&workerConfig.BatchSize, "batch", worker.DefaultBatchSize, "Messages read per batch")
	rootCmd.AddCommand(workerCmd)
}
