package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielwestendorf/faktory-client/faktory"
	"github.com/danielwestendorf/faktory-client/internal/env"
)

var pushArgsJSON string

var PushCmd = &cobra.Command{
	Use:   "push <jobtype> <queue>",
	Short: "Push one job onto a queue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		conf, err := env.LoadConfig(ctx)
		if err != nil {
			return err
		}

		var jobArgs []interface{}
		if pushArgsJSON != "" {
			if err := json.Unmarshal([]byte(pushArgsJSON), &jobArgs); err != nil {
				return fmt.Errorf("failed to parse --args as a JSON array: %w", err)
			}
		}

		client := faktory.NewClient(conf, log)
		if err := client.Open(ctx); err != nil {
			return err
		}
		defer client.Close(ctx)

		job := faktory.NewJob(args[0], args[1], jobArgs...)

		jid, err := client.Push(ctx, job)
		if err != nil {
			return err
		}

		log.Info("pushed job", zap.String("jid", jid), zap.String("jobtype", args[0]), zap.String("queue", args[1]))

		return nil
	},
}

func init() {
	PushCmd.Flags().StringVar(&pushArgsJSON, "args", "", "job arguments, as a JSON array")
}
