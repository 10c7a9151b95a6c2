package cmd

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielwestendorf/faktory-client/faktorytest"
)

var (
	fakeServerAddr     string
	fakeServerHTTPAddr string
	fakeServerPassword string
)

var FakeServerCmd = &cobra.Command{
	Use:   "fake-server",
	Short: "Run an in-process fake Faktory server, for local development against this client",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := faktorytest.New(faktorytest.Options{
			Addr:     fakeServerAddr,
			Password: fakeServerPassword,
			Log:      log,
		})

		if err := server.Start(); err != nil {
			return err
		}
		defer server.Close()

		log.Info("fake Faktory server listening", zap.String("addr", server.Addr()))

		var httpServer *http.Server

		if fakeServerHTTPAddr != "" {
			httpServer = &http.Server{
				Addr:    fakeServerHTTPAddr,
				Handler: fakeServerRouter(server, log),
			}

			go func() {
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("debug http server errored", zap.Error(err))
				}
			}()

			log.Info("debug http server listening", zap.String("addr", fakeServerHTTPAddr))
		}

		<-ctx.Done()

		log.Info("shutting down fake server")

		if httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			httpServer.Shutdown(shutdownCtx)
		}

		return nil
	},
}

func fakeServerRouter(server *faktorytest.Server, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(ginzap.Ginzap(log, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(log, true))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.GET("/debug/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"addr": server.Addr(),
		})
	})

	return r
}

func init() {
	flags := FakeServerCmd.Flags()

	flags.StringVar(&fakeServerAddr, "addr", net.JoinHostPort("127.0.0.1", "7419"), "address for the fake server to listen on")
	flags.StringVar(&fakeServerHTTPAddr, "http-addr", "", "address for an optional debug HTTP endpoint (empty disables it)")
	flags.StringVar(&fakeServerPassword, "password", "", "password the fake server requires during the handshake")
}
