package cmd

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielwestendorf/faktory-client/faktory"
	"github.com/danielwestendorf/faktory-client/internal/env"
)

var (
	beatInterval   time.Duration
	workerHTTPAddr string
)

var WorkerCmd = &cobra.Command{
	Use:   "worker <queue> [queue...]",
	Short: "Run a long-lived worker loop: fetch, log, and ack, forever",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		conf, err := env.LoadConfig(ctx)
		if err != nil {
			return err
		}

		client := faktory.NewClient(conf, log)
		client.OnFatal = func(err error) {
			log.Error("connection is unrecoverable, exiting worker", zap.Error(err))
			stop()
		}

		if err := client.Open(ctx); err != nil {
			return err
		}
		defer client.Close(ctx)

		go beatLoop(ctx, client)

		var httpServer *http.Server

		if workerHTTPAddr != "" {
			httpServer = &http.Server{
				Addr:    workerHTTPAddr,
				Handler: workerDebugRouter(client, log),
			}

			go func() {
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("debug http server errored", zap.Error(err))
				}
			}()

			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			log.Info("debug http server listening", zap.String("addr", workerHTTPAddr))
		}

		log.Info("worker started", zap.Strings("queues", args))

		for {
			select {
			case <-ctx.Done():
				log.Info("worker shutting down")
				return nil
			default:
			}

			job, err := client.Fetch(ctx, args...)
			if err != nil {
				log.Warn("fetch failed", zap.Error(err))
				continue
			}

			if job == nil {
				time.Sleep(time.Second)
				continue
			}

			log.Info("processing job", zap.String("jid", job.Jid()), zap.String("jobtype", job.Jobtype()))

			if err := client.Ack(ctx, job.Jid()); err != nil {
				log.Warn("ack failed", zap.String("jid", job.Jid()), zap.Error(err))
			}
		}
	},
}

func beatLoop(ctx context.Context, client *faktory.Client) {
	ticker := time.NewTicker(beatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := client.Beat(ctx); err != nil {
				log.Warn("beat failed", zap.Error(err))
			}
		}
	}
}

func workerDebugRouter(client *faktory.Client, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(ginzap.Ginzap(log, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(log, true))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	// /debug/state surfaces the connection engine's lifecycle state and
	// reconnect-attempt count, for dashboards and liveness probes to
	// watch around reconnect-budget exhaustion.
	r.GET("/debug/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"state":             client.State(),
			"reconnect_attempt": client.ReconnectAttempt(),
		})
	})

	return r
}

func init() {
	WorkerCmd.Flags().DurationVar(&beatInterval, "beat-interval", 15*time.Second, "interval between BEAT heartbeats")
	WorkerCmd.Flags().StringVar(&workerHTTPAddr, "http-addr", "", "address for an optional debug HTTP endpoint (empty disables it)")
}
