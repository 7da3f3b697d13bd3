package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/luxfi/airdrop/pkg/balance"
	"github.com/luxfi/airdrop/pkg/store"
)

// withSession opens the stores for the duration of fn
func withSession(opts *options, fn func(*session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) (err error) {
		s, err := opts.open(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := s.Close(); err == nil {
				err = cerr
			}
		}()
		return fn(s)
	}
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline",
		Long: `Run every step in order:

  1. check-duplicates  report accounts repeated across the origin sources
  2. normalize         rescale miners and contributors to 18 decimals
  3. snapshot          split the snapshot into genesis and transfer balances
  4. verify            check the combined genesis balances
  5. vesting           build the genesis cliff vesting`,
		Args: cobra.NoArgs,
		RunE: withSession(opts, func(s *session) error {
			return s.driver.Run()
		}),
	}
}

func newCheckDuplicatesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check-duplicates",
		Short: "Report accounts present in more than one origin source",
		Args:  cobra.NoArgs,
		RunE: withSession(opts, func(s *session) error {
			dups, err := s.driver.CheckOriginDuplicates()
			if err != nil {
				return err
			}
			for _, id := range dups {
				fmt.Fprintln(s.stdout, s.cfg.Codec().Format(id))
			}
			return nil
		}),
	}
}

func newNormalizeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Rescale the miner and contributor balances to 18 decimals",
		Args:  cobra.NoArgs,
		RunE: withSession(opts, func(s *session) error {
			return s.driver.NormalizeSources()
		}),
	}
}

func newSnapshotCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Split the snapshot into genesis and transfer balances",
		Args:  cobra.NoArgs,
		RunE: withSession(opts, func(s *session) error {
			return s.driver.SplitSnapshot()
		}),
	}
}

func newVerifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the combined genesis balances",
		Args:  cobra.NoArgs,
		RunE: withSession(opts, func(s *session) error {
			return s.driver.VerifyGenesis()
		}),
	}
}

func newVestingCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "vesting",
		Short: "Build the genesis cliff vesting",
		Args:  cobra.NoArgs,
		RunE: withSession(opts, func(s *session) error {
			return s.driver.BuildGenesisVesting()
		}),
	}
}

func newTreasuryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "treasury",
		Short: "Print the treasury account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			id, err := cfg.TreasuryAccount()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Codec().Format(id))
			return nil
		},
	}
}

func newInspectCmd(opts *options) *cobra.Command {
	var fromInput bool

	cmd := &cobra.Command{
		Use:   "inspect [artifact...]",
		Short: "List stored artifacts with their decoded counts and totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			uri := opts.output
			if fromInput {
				uri = opts.input
			}
			s, err := store.OpenURI(uri, cfg.Codec())
			if err != nil {
				return err
			}
			defer s.Close()

			names := args
			if len(names) == 0 {
				if names, err = s.Artifacts(); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ARTIFACT\tKIND\tACCOUNTS\tTOTAL")
			for _, name := range names {
				sum, err := s.Describe(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
					sum.Name, sum.Kind, sum.Count, balance.Format(sum.Total, balance.Decimals, cfg.Symbol))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&fromInput, "input-store", false, "Inspect the input store instead of the output store")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var (
		fromInput bool
		outFile   string
	)

	cmd := &cobra.Command{
		Use:   "export <artifact>",
		Short: "Write an artifact as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			uri := opts.output
			if fromInput {
				uri = opts.input
			}
			s, err := store.OpenURI(uri, cfg.Codec())
			if err != nil {
				return err
			}
			defer s.Close()

			w := cmd.OutOrStdout()
			if outFile != "" {
				f, ferr := os.Create(outFile)
				if ferr != nil {
					return ferr
				}
				defer func() {
					if cerr := f.Close(); err == nil {
						err = cerr
					}
				}()
				w = f
			}
			return s.ExportCSV(args[0], w)
		},
	}

	cmd.Flags().BoolVar(&fromInput, "input-store", false, "Export from the input store instead of the output store")
	cmd.Flags().StringVar(&outFile, "csv", "", "Write to this file instead of stdout")
	return cmd
}
