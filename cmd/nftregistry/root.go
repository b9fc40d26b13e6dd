/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/suparena/nftregistry"
	"github.com/suparena/nftregistry/auth"
	"github.com/suparena/nftregistry/config"
	"github.com/suparena/nftregistry/notify"
	"github.com/suparena/nftregistry/payment"
	"github.com/suparena/nftregistry/storagemodels"
)

// app is the state shared by the commands of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer
	v      *viper.Viper

	cfgFile string
	envFile string
	output  string
	signers []string

	cfg      config.Config
	logger   *slog.Logger
	tracing  *tracing
	stores   *nftregistry.Stores
	ledger   *payment.Ledger
	events   *notify.EventLog
	broker   *notify.Broker
	registry *nftregistry.Registry
}

// execute runs one invocation with args. Results go to out, logs and spans to errOut.
func execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	a := &app{out: out, errOut: errOut, v: viper.New()}
	root := a.rootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return goerrors.Join(err, a.teardown(ctx))
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nftregistry",
		Short: "Mint, transfer and collect royalties on a single NFT collection",
		Long: `nftregistry operates a single-collection NFT registry with creator royalties.

The registry is stored in DynamoDB, a local SQLite file or process memory,
selected by --backend or NFTREGISTRY_BACKEND. Calls acting for an address must
name it with --signer.

Examples:
  nftregistry init GADMIN --signer GADMIN
  nftregistry mint --creator GALICE --owner GALICE --uri ipfs://meta/1 --signer GALICE
  nftregistry royalty set 1 10 --creator GALICE --signer GALICE
  nftregistry fund GUSD GBOB 1000
  nftregistry royalty pay 1 --buyer GBOB --amount 1000 --asset GUSD --signer GBOB
  nftregistry events -o json`,
		Version:           nftregistry.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: ./nftregistry.yaml or ~/.config/nftregistry/nftregistry.yaml)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	flags.StringVarP(&a.output, "output", "o", "yaml", "output format: yaml or json")
	flags.StringArrayVar(&a.signers, "signer", nil, "address whose signature accompanies the call (repeatable)")
	flags.String("registry", "", "registry name")
	flags.String("backend", "", "storage backend: sqlite, dynamodb or memory")
	flags.String("db", "", "sqlite database path")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.Bool("trace", false, "print OpenTelemetry spans to stderr")

	for key, flag := range map[string]string{
		"registry":        "registry",
		"backend":         "backend",
		"sqlite.path":     "db",
		"log.level":       "log-level",
		"tracing.enabled": "trace",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		a.initCmd(),
		a.mintCmd(),
		a.transferCmd(),
		a.getCmd(),
		a.royaltyCmd(),
		a.fundCmd(),
		a.balanceCmd(),
		a.eventsCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads the configuration and wires the registry.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[annotationOffline] == "true" {
		return nil
	}

	cfg, err := config.Load(a.v, config.LoadOptions{ConfigFile: a.cfgFile, DotEnvFile: a.envFile})
	if err != nil {
		return err
	}
	switch a.output {
	case outputYAML, outputJSON:
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}
	a.cfg = cfg
	a.logger = newLogger(cfg, a.errOut)
	slog.SetDefault(a.logger)

	opts := []nftregistry.Option{nftregistry.WithLogger(a.logger)}
	if cfg.Tracing.Enabled {
		if a.tracing, err = newTracing(a.errOut); err != nil {
			return err
		}
		opts = append(opts, nftregistry.WithTracer(a.tracing.Tracer()))
	}

	a.stores, err = nftregistry.OpenStores(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	addrs := make([]storagemodels.Address, len(a.signers))
	for i, s := range a.signers {
		addrs[i] = storagemodels.Address(s)
	}
	a.ledger = payment.NewLedger(a.stores.Balances, payment.WithLogger(a.logger))
	a.events = notify.NewEventLog(a.stores.Events, cfg.Registry)
	a.broker = notify.NewBroker()
	opts = append(opts, nftregistry.WithPublisher(notify.Fanout{a.events, a.broker}))

	a.registry = nftregistry.New(a.stores.StateStore(cfg.Registry), auth.NewSigners(addrs...), a.ledger, opts...)
	a.logger.Debug("registry ready", "registry", cfg.Registry, "backend", cfg.Backend, "signers", len(addrs))
	return nil
}

// teardown releases whatever setup acquired, also after a failed command.
func (a *app) teardown(ctx context.Context) error {
	var errs []error
	if a.broker != nil {
		a.broker.Close()
		a.broker = nil
	}
	if a.stores != nil {
		errs = append(errs, a.stores.Close())
		a.stores = nil
	}
	if a.tracing != nil {
		errs = append(errs, a.tracing.Shutdown(ctx))
		a.tracing = nil
	}
	return goerrors.Join(errs...)
}
