package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"donation_portal/internal/app/port"
	"donation_portal/internal/app/provider"
	"donation_portal/internal/app/service"
	"donation_portal/internal/app/tracker"
	"donation_portal/internal/infrastructure/configloader"
	"donation_portal/internal/infrastructure/handoffstore"
	"donation_portal/internal/infrastructure/httpclient"
	clientprovider "donation_portal/internal/infrastructure/network/client"
	networkdefinition "donation_portal/internal/infrastructure/network/definition"
	"donation_portal/internal/infrastructure/restapi"
	"donation_portal/internal/infrastructure/tokenloader"
	"donation_portal/internal/pkg/logger"
	"donation_portal/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
)

func main() {
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := logger.NewZap(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()
	logger.InitSlog(zapLogger)
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Donation portal is starting", "config", cfgPath)
	appLogger := logger.NewSlogAdapter()

	tokenProvider := provider.NewTokenProvider(
		tokenloader.NewTokenLoader(cfg.TokensDir, logger.NewComponentAdapter("tokenloader")),
		appLogger,
	)
	registry, err := networkdefinition.NewNetworkRegistry(
		logger.NewComponentAdapter("registry"),
		networkdefinition.BuiltinDefinitions(),
		cfg.Networks,
		tokenProvider,
	)
	if err != nil {
		logger.Fatal("Failed to build network registry", "error", err)
	}

	clientProvider := clientprovider.NewEVMClientProvider(clientprovider.ClientOptions{
		ConnectionTimeout: time.Duration(cfg.RpcClient.DialTimeoutMs) * time.Millisecond,
		RPCCallTimeout:    time.Duration(cfg.RpcClient.DefaultTimeoutMs) * time.Millisecond,
		MaxBatchSize:      cfg.RpcClient.MaxBatchSize,
		RatePerSecond:     cfg.RpcClient.RateLimit,
		Burst:             cfg.RpcClient.BurstLimit,
	}, logger.NewComponentAdapter("evm"))
	defer clientProvider.Close()

	warmCtx, warmCancel := context.WithTimeout(rootCtx, 30*time.Second)
	clientProvider.WarmUp(warmCtx, registry.GetAllNetworkDefinitions(), cfg.Performance.MaxConcurrentRoutines)
	warmCancel()

	priceClient := httpclient.NewCoinGeckoClient(
		cfg.PriceFeed.BaseURL,
		cfg.PriceFeed.APIKey,
		time.Duration(cfg.PriceFeed.RequestTimeoutMillis)*time.Millisecond,
		cfg.PriceFeed.RatePerSecond,
		cfg.PriceFeed.Burst,
		zapLogger,
	)

	sender, err := newSender(cfg, registry, clientProvider)
	if err != nil {
		logger.Fatal("Failed to initialize transaction sender", "mode", cfg.Signer.Mode, "error", err)
	}
	if closer, ok := sender.(interface{ Close() }); ok {
		defer closer.Close()
	}

	store, closeStore, err := newHandoffStore(rootCtx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize handoff store", "store", cfg.Handoff.Store, "error", err)
	}
	defer closeStore()

	txTracker := tracker.New(rootCtx, tracker.Config{
		PollInterval: time.Duration(cfg.Donation.ReceiptPollIntervalMs) * time.Millisecond,
		Retention:    time.Duration(cfg.Donation.LifecycleTTLMinutes) * time.Minute,
	}, logger.NewComponentAdapter("tracker"))

	rates := service.NewExchangeRateService(registry, priceClient, logger.NewComponentAdapter("rates"))
	walletTokens := service.NewWalletTokenService(registry, clientProvider, logger.NewComponentAdapter("wallet_tokens"))
	donations := service.NewDonationService(registry, rates, sender, clientProvider, txTracker, cfg.MinUSD(), logger.NewComponentAdapter("donations"))
	reader := clientprovider.NewDonationContractReader(registry, clientProvider, time.Duration(cfg.RpcClient.DefaultTimeoutMs)*time.Millisecond)
	claims := service.NewClaimService(registry, reader, sender, clientProvider, txTracker, logger.NewComponentAdapter("claims"))
	bridge := service.NewHandoffBridge(store, logger.NewComponentAdapter("handoff"))
	logger.Info("Services initialized", "min_usd", cfg.MinUSD().String(), "signer", cfg.Signer.Mode, "handoff_store", cfg.Handoff.Store)

	secret := cfg.Session.Secret
	if secret == "" {
		secret = string(securecookie.GenerateRandomKey(32))
	}
	handler := restapi.NewHandler(restapi.Deps{
		Registry:  registry,
		Rates:     rates,
		Tokens:    walletTokens,
		Donations: donations,
		Claims:    claims,
		Handoffs:  bridge,
		Txs:       txTracker,
		Sessions: restapi.NewSessionManager(restapi.SessionOptions{
			CookieName: cfg.Session.CookieName,
			Secret:     secret,
			MaxAge:     cfg.Session.MaxAgeSec,
			Secure:     cfg.Session.Secure,
		}),
		RootCtx:        rootCtx,
		RequestTimeout: time.Duration(cfg.Donation.RequestTimeoutSeconds) * time.Second,
		Logger:         logger.NewComponentAdapter("http"),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      restapi.SetupRouter(handler, cfg.Server.AllowOrigins, zapLogger),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", "error", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan

	logger.Info("Shutdown signal received, stopping HTTP server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}

	// pending receipts are not waited for; their transactions stay on chain
	cancel()
	txTracker.Wait()
	logger.Info("Donation portal stopped")
}

func newSender(cfg *configloader.Config, registry port.NetworkRegistry, backends clientprovider.BackendProvider) (port.TransactionSender, error) {
	switch cfg.Signer.Mode {
	case "keyed":
		key := os.Getenv(cfg.Signer.PrivateKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("environment variable %s is empty", cfg.Signer.PrivateKeyEnv)
		}
		s, err := clientprovider.NewKeyedSender(registry, backends, key)
		if err != nil {
			return nil, err
		}
		logger.Warn("Using a local signing key, every donation is sent from one account", "address", s.Address().Hex())
		return s, nil
	default:
		return clientprovider.NewRPCSender(registry, cfg.Signer.Endpoint, time.Duration(cfg.RpcClient.DialTimeoutMs)*time.Millisecond), nil
	}
}

func newHandoffStore(ctx context.Context, cfg *configloader.Config) (port.HandoffStore, func(), error) {
	ttl := time.Duration(cfg.Handoff.TTLMinutes) * time.Minute
	if cfg.Handoff.Store != "redis" {
		return handoffstore.NewMemoryStore(ttl), func() {}, nil
	}
	client, err := handoffstore.NewRedisClient(ctx, cfg.Handoff.RedisAddr, cfg.Handoff.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close redis client", "error", err)
		}
	}
	return handoffstore.NewRedisStore(client, cfg.Handoff.KeyPrefix, ttl), closeFn, nil
}
