// README: serve starts the HTTP API and the supply sweeper until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "fleetfare/internal/http"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pricing and ranking HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		addr := serveAddr
		if addr == "" {
			addr = cfg.HTTP.Addr
		}

		gin.SetMode(gin.ReleaseMode)
		handler := httptransport.NewServer(httptransport.ServerDeps{
			Pricing:    a.pricing,
			Ranking:    a.ranking,
			Supply:     a.supply,
			Gatherer:   a.registry,
			Logger:     a.log,
			AdminToken: cfg.HTTP.AdminToken,
		})
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler.Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			a.log.Info("starting server", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			a.log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		if a.supply != nil {
			g.Go(func() error {
				return a.supply.RunSweeper(gctx, cfg.Supply.SweepInterval)
			})
		}
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
