package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"donation_portal/internal/app/port"
	"donation_portal/internal/app/provider"
	"donation_portal/internal/app/service"
	"donation_portal/internal/domain/entity"
	"donation_portal/internal/infrastructure/configloader"
	clientprovider "donation_portal/internal/infrastructure/network/client"
	networkdefinition "donation_portal/internal/infrastructure/network/definition"
	"donation_portal/internal/infrastructure/tokenloader"
	"donation_portal/internal/infrastructure/walletloader"
	"donation_portal/internal/pkg/logger"
	"donation_portal/internal/pkg/utils"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

// walletReport is everything donor_scan learns about one wallet.
type walletReport struct {
	Wallet    string
	Tokens    []entity.WalletToken
	Donations []port.DonationView
	Err       error
}

func main() {
	app := cli.NewApp()
	app.Name = "donor_scan"
	app.Usage = "Print wallet balances and donation claim states for a list of wallets"
	app.Flags = []cli.Flag{
		&cli.StringFlag{Name: "config", Value: utils.GetEnv("CONFIG_PATH", "config/config.yml"), Usage: "path to the YAML config"},
		&cli.Uint64Flag{Name: "chain", Value: 11155111, Usage: "chain id to scan"},
		&cli.StringFlag{Name: "wallets", Usage: "wallets file, one address per line (defaults to walletsFile from config)"},
		&cli.DurationFlag{Name: "timeout", Value: 2 * time.Minute, Usage: "overall scan timeout"},
	}
	app.Action = scan

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "donor_scan: %v\n", err)
		os.Exit(1)
	}
}

func scan(c *cli.Context) error {
	cfg, err := configloader.Load(c.String("config"))
	if err != nil {
		return err
	}
	zapLogger, err := logger.NewZap(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return err
	}
	defer zapLogger.Sync()
	logger.InitSlog(zapLogger)
	appLogger := logger.NewSlogAdapter()

	walletsFile := c.String("wallets")
	if walletsFile == "" {
		walletsFile = cfg.WalletsFile
	}
	wallets, err := provider.NewWalletProvider(walletloader.NewWalletFileLoader(walletsFile, appLogger), appLogger).GetWallets()
	if err != nil {
		return fmt.Errorf("load wallets: %w", err)
	}

	registry, err := networkdefinition.NewNetworkRegistry(
		appLogger,
		networkdefinition.BuiltinDefinitions(),
		cfg.Networks,
		tokenloader.NewTokenLoader(cfg.TokensDir, appLogger),
	)
	if err != nil {
		return err
	}
	chainID := c.Uint64("chain")
	def, ok := registry.GetNetworkConfig(chainID)
	if !ok {
		return fmt.Errorf("chain %d is not supported", chainID)
	}

	clients := clientprovider.NewEVMClientProvider(clientprovider.ClientOptions{
		ConnectionTimeout: time.Duration(cfg.RpcClient.DialTimeoutMs) * time.Millisecond,
		RPCCallTimeout:    time.Duration(cfg.RpcClient.DefaultTimeoutMs) * time.Millisecond,
		MaxBatchSize:      cfg.RpcClient.MaxBatchSize,
		RatePerSecond:     cfg.RpcClient.RateLimit,
		Burst:             cfg.RpcClient.BurstLimit,
	}, appLogger)
	defer clients.Close()

	tokens := service.NewWalletTokenService(registry, clients, appLogger)
	reader := clientprovider.NewDonationContractReader(registry, clients, time.Duration(cfg.RpcClient.DefaultTimeoutMs)*time.Millisecond)
	// read-only: no sender or tracker
	history := service.NewClaimService(registry, reader, nil, clients, nil, appLogger)

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	reports := make([]walletReport, len(wallets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Performance.MaxConcurrentRoutines)
	for i, wallet := range wallets {
		i, wallet := i, wallet
		g.Go(func() error {
			reports[i] = scanWallet(gctx, tokens, history, def, wallet)
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(reports, func(i, j int) bool { return reports[i].Wallet < reports[j].Wallet })
	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
			logger.Warn("Wallet scan failed", "wallet", r.Wallet, "error", r.Err)
			continue
		}
		logger.Info("Wallet", "wallet", r.Wallet, "network", def.Name, "tokens", len(r.Tokens), "donations", len(r.Donations))
		for _, t := range r.Tokens {
			logger.Info("  Balance", "symbol", t.Symbol, "amount", t.FormattedBalance, "address", t.Address, "native", t.IsNative)
		}
		for _, d := range r.Donations {
			logger.Info("  Donation", "index", d.Index, "amount", utils.FormatBigInt(d.Amount, decimalsOf(def, d.DonationRecord)),
				"asset", d.AssetKind, "token", d.TokenAddress, "claimed", d.Claimed)
		}
	}
	logger.Info("Scan finished", "wallets", len(reports), "failed", failed)
	return nil
}

func scanWallet(ctx context.Context, tokens port.WalletTokenEnumerator, history port.ClaimService, def entity.NetworkDefinition, wallet string) walletReport {
	report := walletReport{Wallet: wallet}
	report.Tokens, report.Err = tokens.EnumerateWalletTokens(ctx, wallet, def.ChainID)
	if report.Err != nil || def.DonationContract == "" {
		return report
	}
	report.Donations, report.Err = history.DonationHistory(ctx, def.ChainID, wallet)
	return report
}

func decimalsOf(def entity.NetworkDefinition, r entity.DonationRecord) uint8 {
	if r.IsNative() {
		return def.NativeCurrency.Decimals
	}
	if meta, ok := def.Token(r.TokenAddress); ok {
		return meta.Decimals
	}
	return 18
}
