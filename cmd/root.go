package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielwestendorf/faktory-client/cmd/gen"
	"github.com/danielwestendorf/faktory-client/internal/env"
)

var log *zap.Logger

var RootCmd = &cobra.Command{
	Use:   "faktory-client",
	Short: "A Faktory client demo CLI",
	Long: `faktory-client drives a Faktory job server from the command line.

Usage
	faktory-client push <jobtype> <queue>
	faktory-client fetch <queue>
	faktory-client worker <queue>
	faktory-client fake-server
`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		log, err = env.MakeLogger()
		return err
	},
}

func init() {
	RootCmd.AddCommand(PushCmd)
	RootCmd.AddCommand(FetchCmd)
	RootCmd.AddCommand(WorkerCmd)
	RootCmd.AddCommand(FakeServerCmd)
	RootCmd.AddCommand(gen.RootCmd)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
