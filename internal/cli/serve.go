package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"Itemizer/internal/middleware"
	"Itemizer/internal/repository/rdb"
	"Itemizer/internal/repository/redis"
	"Itemizer/internal/router"
	"Itemizer/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func (c *CLI) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}
}

func (c *CLI) serve(ctx context.Context) error {
	a, err := c.newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if c.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := c.cfg.Server
	engine := router.InitRouter(router.Deps{
		Services:    a.services,
		Users:       &rdb.UserRepository{DB: a.db},
		Sessions:    a.sessions,
		Limiter:     &redis.RateLimitRepository{Client: a.redis},
		Signer:      a.signer,
		Metrics:     registry,
		Log:         c.log,
		Secure:      c.cfg.IsProduction(),
		BaseURL:     srv.BaseURL,
		ClientURL:   srv.ClientURL,
		StaticDir:   srv.StaticDir,
		LoginLimit:  srv.LoginLimit,
		LoginWindow: srv.LoginWindow,
	})

	httpServer := &http.Server{
		Addr:         srv.Addr,
		Handler:      middleware.CORS(srv.AllowedOrigins)(engine),
		ReadTimeout:  srv.ReadTimeout,
		WriteTimeout: srv.WriteTimeout,
	}
	purger := service.NewLogPurger(a.db, c.cfg.Logs.Retention, c.cfg.Logs.PurgeInterval, c.log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.log.Info("server listening", zap.String("addr", srv.Addr), zap.String("mode", c.cfg.Mode))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		purger.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		c.log.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
