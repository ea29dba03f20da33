package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sweetshop/internal/accounts"
	"sweetshop/internal/cart"
	"sweetshop/internal/catalog"
	"sweetshop/internal/handlers"
	"sweetshop/internal/middleware"
	"sweetshop/internal/orders"
	"sweetshop/internal/session"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the shop HTTP server",
	Long: `Verify the product setup, then serve the catalog, accounts and carts
over HTTP until interrupted. On shutdown every open session's cart is
written back before the process exits.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, cleanup, err := openStore(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer cleanup()

	products := catalog.New(s)
	report, err := products.Verify(ctx, cfg.ImagesDir)
	if err != nil {
		return fmt.Errorf("product setup is invalid: %w", err)
	}
	l.Info().
		Int("categories", report.Categories).
		Int("products", report.Products).
		Msg("product setup verified")
	for _, m := range report.MissingImages {
		l.Warn().Str("product", m.Product).Str("image", m.Image).Msg("product image missing")
	}

	carts := cart.NewRepository(s)
	sessions := session.NewRegistry(func() *cart.Session {
		return cart.NewSession(carts, products, l)
	}, cfg.SessionTTL, l)

	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(l))
	r.Static("/images/products", cfg.ImagesDir)
	handlers.Mount(r, handlers.Deps{
		Storage:    s,
		Catalog:    products,
		Accounts:   accounts.New(s),
		Orders:     orders.NewReader(s),
		Sessions:   sessions,
		JWTSecret:  cfg.JWTSecret,
		SessionTTL: cfg.SessionTTL,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sessions.Run(gctx, sweepInterval(cfg.SessionTTL))
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		l.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		if flushErr := sessions.CloseAll(shutdownCtx); flushErr != nil {
			l.Error().Err(flushErr).Msg("flushing sessions on shutdown failed")
			err = errors.Join(err, flushErr)
		}
		return err
	})
	return g.Wait()
}

// sweepInterval checks for idle sessions a few times per TTL.
func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Second {
		return time.Second
	}
	if interval > time.Minute {
		return time.Minute
	}
	return interval
}
