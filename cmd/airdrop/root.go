package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luxfi/airdrop/pkg/config"
	"github.com/luxfi/airdrop/pkg/logging"
	"github.com/luxfi/airdrop/pkg/pipeline"
	"github.com/luxfi/airdrop/pkg/store"
)

var (
	version = "1.0.0"
	commit  = "none"
	date    = "unknown"
)

// options are the persistent flags shared by every command
type options struct {
	configPath string
	input      string
	output     string
	logLevel   string
	logFormat  string
	ss58Prefix uint16
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "airdrop",
		Short: "Genesis airdrop snapshot tool",
		Long: `Airdrop computes the genesis balances and vesting of the SherpaX chain
from the ChainX snapshots, the ComingChat miner rewards and the crowdloan
contributors.

Every dataset is checked against its audited account count and total.
Any mismatch stops the run.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML file overlaying the default configuration")
	flags.StringVarP(&opts.input, "input", "i", "data", "Store holding the origin datasets (directory or pebble://, leveldb://, postgres:// URI)")
	flags.StringVarP(&opts.output, "output", "o", "output", "Store receiving the generated artifacts")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default $LOG_LEVEL or info)")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log encoding: console or json (default $LOG_ENCODING or console)")
	flags.Uint16Var(&opts.ss58Prefix, "ss58-prefix", 0, "SS58 address format, overrides the configuration")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newCheckDuplicatesCmd(opts),
		newNormalizeCmd(opts),
		newSnapshotCmd(opts),
		newVerifyCmd(opts),
		newVestingCmd(opts),
		newTreasuryCmd(opts),
		newInspectCmd(opts),
		newExportCmd(opts),
	)

	return rootCmd
}

// Execute runs the command line and exits non-zero on failure
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("ss58-prefix") {
		cfg.Address.Prefix = o.ss58Prefix
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// session holds everything a pipeline command needs
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	in     *store.Store
	out    *store.Store
	driver *pipeline.Driver
	stdout io.Writer
}

func (o *options) open(cmd *cobra.Command) (*session, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(o.logLevel, o.logFormat)
	if err != nil {
		return nil, err
	}

	in, err := store.OpenURI(o.input, cfg.Codec())
	if err != nil {
		return nil, fmt.Errorf("failed to open input store: %w", err)
	}
	out, err := store.OpenURI(o.output, cfg.Codec())
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("failed to open output store: %w", err)
	}

	driver, err := pipeline.New(cfg, in, out, logger)
	if err != nil {
		in.Close()
		out.Close()
		return nil, err
	}

	return &session{
		cfg:    cfg,
		logger: logger,
		in:     in,
		out:    out,
		driver: driver,
		stdout: cmd.OutOrStdout(),
	}, nil
}

func (s *session) Close() error {
	_ = s.logger.Sync()
	errIn := s.in.Close()
	if err := s.out.Close(); err != nil {
		return err
	}
	return errIn
}
