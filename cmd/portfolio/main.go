package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	portfolioDomain "github.com/wyfcoding/portfolioanalytics/internal/portfolio/domain"
	"github.com/wyfcoding/portfolioanalytics/pkg/config"
	"github.com/wyfcoding/portfolioanalytics/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "portfolio",
		Short:        "Portfolio analytics API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/portfolio/config.toml", "path to config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Seed the demo portfolio and the strategy catalog, then exit",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runSeed(cmd.Context(), cmd, configPath)
			},
		},
		newSimulateCmd(),
	)
	return root
}

// bootstrap loads config and initializes the global logger.
func bootstrap(configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		return nil, fmt.Errorf("init logger failed: %w", err)
	}
	return cfg, nil
}

func runServe(parent context.Context, configPath string) error {
	if parent == nil {
		parent = context.Background()
	}

	// 1. Config & Logger
	cfg, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Infrastructure & Application
	a, err := newApp(parent, cfg)
	if err != nil {
		logger.Error(parent, "Failed to initialize application", "error", err)
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.close(ctx)
	}()

	// 3. Interfaces
	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      a.router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	// 4. Start
	g, ctx := errgroup.WithContext(parent)
	g.Go(func() error {
		logger.Info(ctx, "HTTP server starting", "addr", server.Addr, "driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 5. Graceful Shutdown
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)
		select {
		case sig := <-quit:
			logger.Info(ctx, "Shutting down server", "signal", sig.String())
		case <-ctx.Done():
			logger.Info(ctx, "Context cancelled, shutting down")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "Server exited with error", "error", err)
		return err
	}
	logger.Info(ctx, "Server stopped")
	return nil
}

func runSeed(parent context.Context, cmd *cobra.Command, configPath string) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	a, err := newApp(parent, cfg)
	if err != nil {
		return err
	}
	defer a.close(parent)

	p, created, err := a.portfolio.GetOrSeed(parent, cfg.Portfolio.DemoUserID)
	if err != nil {
		return fmt.Errorf("seed portfolio failed: %w", err)
	}
	strategies, err := a.strategy.ListStrategies(parent)
	if err != nil {
		return fmt.Errorf("seed strategies failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "portfolio %s user=%s created=%t totalValue=%.2f\n",
		p.ID.Hex(), p.UserID, created, p.TotalValue)
	fmt.Fprintf(cmd.OutOrStdout(), "strategies: %d\n", len(strategies))
	return nil
}

func newSimulateCmd() *cobra.Command {
	var (
		seed  int64
		days  int
		start float64
		user  string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Print a generated portfolio as JSON without touching any store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var rnd *rand.Rand
			if seed != 0 {
				rnd = rand.New(rand.NewSource(seed))
			}
			sim := portfolioDomain.NewSimulator(portfolioDomain.NewRandomWalk(rnd), nil)
			p, err := sim.Generate(user, start, days)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 seeds from the clock")
	cmd.Flags().IntVar(&days, "days", portfolioDomain.DefaultSeedDays, "number of daily points")
	cmd.Flags().Float64Var(&start, "start", portfolioDomain.DefaultStartValue, "starting portfolio value")
	cmd.Flags().StringVar(&user, "user", "demo-user", "user id stamped on the portfolio")
	return cmd
}
