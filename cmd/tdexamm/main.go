package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/tdex-network/tdex-amm/internal/config"
	"github.com/tdex-network/tdex-amm/internal/core/application"
	"github.com/tdex-network/tdex-amm/internal/core/domain"
	"github.com/tdex-network/tdex-amm/internal/core/ports"
	"github.com/tdex-network/tdex-amm/internal/infrastructure/gateway"
	badgerstore "github.com/tdex-network/tdex-amm/internal/infrastructure/gateway/store/badger"
	inmemorystore "github.com/tdex-network/tdex-amm/internal/infrastructure/gateway/store/inmemory"
	dbbadger "github.com/tdex-network/tdex-amm/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tdex-amm/internal/infrastructure/storage/db/inmemory"
	"github.com/tdex-network/tdex-amm/pkg/mathutil"
)

var registry *prometheus.Registry

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Version = "0.0.1"
	app.Name = "tdexamm"
	app.Usage = "Command line interface for operators and traders of tdex AMM pools"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "metrics",
			Usage: "print the pool metrics collected while running the command",
		},
	}
	app.Before = func(_ *cli.Context) error {
		if err := config.InitConfig(); err != nil {
			return err
		}
		log.SetLevel(config.GetLogLevel())
		registry = prometheus.NewRegistry()
		return nil
	}
	app.After = func(ctx *cli.Context) error {
		if !ctx.Bool("metrics") || registry == nil {
			return nil
		}
		return printMetrics(ctx.App.Writer)
	}
	app.Commands = append(
		app.Commands,
		&poolCmd,
		&swapCmd,
		&previewCmd,
		&recommendCmd,
		&accountCmd,
	)
	return app
}

type services struct {
	poolSvc application.PoolService
	gateway *gateway.LedgerGateway
	close   func()
}

// getServices opens the stores in the configured datadir and restores the
// pools. The returned close func must be called once done.
func getServices() (*services, error) {
	var logger badger.Logger
	if config.GetLogLevel() >= log.DebugLevel {
		logger = log.StandardLogger()
	}

	var repoManager ports.RepoManager
	var balanceStore gateway.BalanceStore
	switch config.GetString(config.DBTypeKey) {
	case application.DBInMemory:
		repoManager = inmemory.NewRepoManager()
		balanceStore = inmemorystore.NewBalanceStore()
	default:
		dbDir := config.GetDbDir()
		var err error
		repoManager, err = dbbadger.NewRepoManager(dbDir, logger)
		if err != nil {
			return nil, err
		}
		balanceStore, err = badgerstore.NewBalanceStore(dbDir, logger)
		if err != nil {
			repoManager.Close()
			return nil, err
		}
	}
	closeStores := func() {
		balanceStore.Close()
		repoManager.Close()
	}

	ledgerGateway, err := gateway.NewLedgerGateway(balanceStore)
	if err != nil {
		closeStores()
		return nil, err
	}
	var gw domain.AssetTransferGateway = ledgerGateway
	if config.GetBool(config.GatewayBreakerKey) {
		gw = gateway.WithCircuitBreaker(gw)
	}

	poolSvc, err := application.NewPoolService(
		context.Background(), repoManager, gw, config.GetServiceConfig(),
		registry,
	)
	if err != nil {
		closeStores()
		return nil, err
	}

	return &services{poolSvc, ledgerGateway, closeStores}, nil
}

// parseAmount converts a decimal amount (ie. 1.5) to mathutil.Scale() units.
func parseAmount(ctx *cli.Context, flag string) (uint64, error) {
	value := ctx.String(flag)
	if value == "" {
		return 0, &invalidUsageError{ctx, ctx.Command.Name}
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", flag, err)
	}
	return mathutil.FromDecimal(amount)
}

// parseSlippage converts an optional percentage flag (ie. 2.5) to a
// numerator over mathutil.SlippagePrecision(). It returns nil if the flag
// is not set.
func parseSlippage(ctx *cli.Context, flag string) (*uint64, error) {
	if !ctx.IsSet(flag) {
		return nil, nil
	}
	percentage, err := decimal.NewFromString(ctx.String(flag))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %s", flag, err)
	}
	slippage, err := application.SlippageFromPercentage(percentage)
	if err != nil {
		return nil, err
	}
	return &slippage, nil
}

// checkPersisted returns err unless it only reports that the executed
// operation could not be stored, in which case it's logged as a warning.
func checkPersisted(err error) error {
	if errors.Is(err, application.ErrStateNotPersisted) {
		log.WithError(err).Warn(
			"operation executed, pool state will be stored by the next one",
		)
		return nil
	}
	return err
}

func printRespJSON(w io.Writer, resp interface{}) error {
	buf, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		return fmt.Errorf("unable to encode response: %s", err)
	}
	_, err = fmt.Fprintln(w, string(buf))
	return err
}

func printMetrics(w io.Writer) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return err
		}
	}
	return nil
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[tdexamm] %v\n", err)
	}
	os.Exit(1)
}
