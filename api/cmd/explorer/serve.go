package main

import (
	"os/signal"
	"syscall"

	"github.com/alitto/pond/v2"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"artifact-explorer/api/internal/explorer"
	"artifact-explorer/api/internal/handle"
	"artifact-explorer/api/internal/httpserver"
	"artifact-explorer/api/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the explorer page and JSON API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (env PORT)")
	_ = v.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engines := buildEngines(cfg)
	dispatcher, err := engines.GetEngine("")
	if err != nil {
		return err
	}
	log.Info("engine selected",
		zap.String("engine", dispatcher.Name()),
		zap.String("model", dispatcher.GetModel()),
	)

	sessions := session.NewStore(cfg.SessionCapacity, cfg.SessionTTL, func() *explorer.Controller {
		return explorer.NewController(dispatcher,
			explorer.WithLogger(log),
			explorer.WithFacts(nil, cfg.FactInterval),
		)
	})
	defer sessions.Close()

	pool := pond.NewPool(cfg.DispatchWorkers, pond.WithContext(ctx))
	defer pool.StopAndWait()

	gin.SetMode(gin.ReleaseMode)
	h := handle.New(engines, sessions, pool, handle.Options{
		MaxImageBytes: cfg.MaxImageBytes,
		SessionTTL:    cfg.SessionTTL,
	})
	router := httpserver.NewRouter(h, log, cfg.CORSOrigins)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, cfg.Addr(), router, log)
	})
	return g.Wait()
}
