package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielwestendorf/faktory-client/faktory"
	"github.com/danielwestendorf/faktory-client/internal/env"
)

var FetchCmd = &cobra.Command{
	Use:   "fetch <queue> [queue...]",
	Short: "Fetch and acknowledge a single job from one or more queues",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		conf, err := env.LoadConfig(ctx)
		if err != nil {
			return err
		}

		client := faktory.NewClient(conf, log)
		if err := client.Open(ctx); err != nil {
			return err
		}
		defer client.Close(ctx)

		job, err := client.Fetch(ctx, args...)
		if err != nil {
			return err
		}

		if job == nil {
			log.Info("no job available", zap.Strings("queues", args))
			return nil
		}

		log.Info("fetched job",
			zap.String("jid", job.Jid()),
			zap.String("jobtype", job.Jobtype()),
			zap.String("queue", job.Queue()))

		return client.Ack(ctx, job.Jid())
	},
}
