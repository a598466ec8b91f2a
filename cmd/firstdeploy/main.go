package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZaphyrRobin/kinetic-takehome/internal/cache"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/config"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/domain/model"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/provider"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/resolver"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/selector"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/server"
	redisstore "github.com/ZaphyrRobin/kinetic-takehome/internal/store/redis"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		program = flag.String("p", "", "Solana program ID to resolve")
		mainnet = flag.Bool("m", false, "use mainnet (default devnet)")
		verbose = flag.Bool("v", false, "enable verbose (debug) logging")
		listen  = flag.String("listen", "", "run as an HTTP service on this address instead of a one-shot query")
	)
	flag.Parse()

	// Local .env is optional.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	if *verbose {
		logLevel = slog.LevelDebug
	} else if *listen == "" {
		// One-shot mode prints the answer on stdout; keep logs quiet
		// unless asked, matching the CLI contract.
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *listen != "" {
		if err := runServer(ctx, cfg, *listen, logger); err != nil {
			logger.Error("server exited", "error", err)
			os.Exit(1)
		}
		return
	}

	if *program == "" {
		fmt.Fprintln(os.Stderr, "a program ID is required: -p <program>")
		flag.Usage()
		os.Exit(2)
	}

	network := model.NetworkDevnet
	if *mainnet {
		network = model.NetworkMainnet
	}

	res, cleanup, err := buildResolver(cfg, network, selector.New(), logger)
	if err != nil {
		logger.Error("failed to build resolver", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	rec, err := res.Resolve(ctx, *program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("First Deployment Timestamp: %d, %s UTC (signature %s)\n",
		rec.Timestamp, rec.Time().Format("2006-01-02 15:04:05"), rec.Signature)
}

// buildResolver wires a resolution engine for one network. A missing or
// unreachable redis degrades to an uncached run rather than failing.
func buildResolver(cfg *config.Config, network model.Network, sel *selector.Selector, logger *slog.Logger) (*resolver.Resolver, func(), error) {
	chainRPC, err := provider.NewChainRPC(provider.ChainRPCConfig{
		Endpoints: cfg.EndpointsFor(network.String()),
		PageSize:  cfg.RPC.PageSize,
		MaxPages:  cfg.RPC.MaxPages,
		Timeout:   cfg.RPC.Timeout,
		RPS:       cfg.RPC.RPS,
		Burst:     cfg.RPC.Burst,
	}, sel, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("chain rpc provider: %w", err)
	}

	providers := []provider.Provider{chainRPC}
	if cfg.Helius.APIKey != "" {
		providers = append(providers, provider.NewHelius(network, cfg.Helius.APIKey, cfg.RPC.Timeout, logger))
	} else {
		logger.Warn("HELIUS_API_KEY not set, running with chain RPC only", "network", network)
	}

	var store resolver.Store
	cleanup := func() {}
	if cfg.Cache.RedisURL != "" {
		redisCache, err := redisstore.NewCache(cfg.Cache.RedisURL, logger)
		if err != nil {
			logger.Warn("redis unreachable, running uncached", "error", err)
		} else {
			store = redisCache
			cleanup = func() { _ = redisCache.Close() }
		}
	}

	res, err := resolver.New(resolver.Config{
		Network:   network,
		Store:     store,
		L1:        cache.NewL1(cfg.Cache.L1Entries, cfg.Cache.TTL),
		Providers: providers,
		Selector:  sel,
		Times:     chainRPC,
		TTL:       cfg.Cache.TTL,
		Logger:    logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return res, cleanup, nil
}

func runServer(ctx context.Context, cfg *config.Config, addr string, logger *slog.Logger) error {
	sel := selector.New()
	resolvers := make(map[model.Network]server.DeploymentResolver, 2)
	var cleanups []func()
	defer func() {
		for _, cleanup := range cleanups {
			cleanup()
		}
	}()

	for _, network := range []model.Network{model.NetworkMainnet, model.NetworkDevnet} {
		res, cleanup, err := buildResolver(cfg, network, sel, logger)
		if err != nil {
			return fmt.Errorf("build %s resolver: %w", network, err)
		}
		resolvers[network] = res
		cleanups = append(cleanups, cleanup)
	}

	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.New(resolvers, logger).Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		logger.Info("http server started", "addr", addr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	return g.Wait()
}
