// Package pipeline runs the airdrop computation as a fixed sequence of
// audited steps.
package pipeline

import (
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/luxfi/airdrop/pkg/account"
	"github.com/luxfi/airdrop/pkg/audit"
	"github.com/luxfi/airdrop/pkg/balance"
	"github.com/luxfi/airdrop/pkg/config"
	"github.com/luxfi/airdrop/pkg/precision"
	"github.com/luxfi/airdrop/pkg/reconcile"
	"github.com/luxfi/airdrop/pkg/store"
	"github.com/luxfi/airdrop/pkg/vesting"
)

// Output artifact prefixes
const (
	GenesisSnapshotPrefix     = "genesis_balances_chainx_snapshot"
	GenesisMinersPrefix       = "genesis_balances_comingchat_miners"
	GenesisContributorsPrefix = "genesis_balances_sherpax_contributors"
	TransferBalancesPrefix    = "transfer_balances"
	TransferVestingPrefix     = "transfer_vesting"
	GenesisVestingPrefix      = "genesis_vesting"
)

// Driver executes the pipeline. Origin datasets are read from the input
// store, everything the pipeline produces goes to the output store.
type Driver struct {
	cfg     *config.Config
	out     *store.Store
	checker *audit.Checker
	logger  *zap.Logger

	origin  *Loader
	genesis *Loader

	treasury   account.ID
	minDelta   uint256.Int
	multiplier uint256.Int
}

// New creates a driver. The configuration is validated first.
func New(cfg *config.Config, in, out *store.Store, logger *zap.Logger) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Driver{
		cfg:     cfg,
		out:     out,
		checker: audit.NewChecker(cfg.Datasets, logger.Named("audit")),
		logger:  logger,
	}
	d.origin = NewLoader(in, d.checker, logger.Named("origin"))
	d.genesis = NewLoader(out, d.checker, logger.Named("genesis"))

	// Validate has already parsed all three
	d.treasury, _ = cfg.TreasuryAccount()
	d.minDelta, _ = cfg.MinDeltaAmount()
	d.multiplier, _ = cfg.Multiplier()
	return d, nil
}

// Treasury returns the treasury account
func (d *Driver) Treasury() account.ID {
	return d.treasury
}

func (d *Driver) format(id account.ID) string {
	return d.cfg.Codec().Format(id)
}

func (d *Driver) amount(key string, v uint256.Int) zap.Field {
	return zap.Object(key, zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddString("value", v.Dec())
		enc.AddString("display", balance.Format(v, balance.Decimals, d.cfg.Symbol))
		return nil
	}))
}

func (d *Driver) save(prefix string, l balance.List) (string, error) {
	total, err := l.Total()
	if err != nil {
		return "", fmt.Errorf("summing %s: %w", prefix, err)
	}
	name := store.ArtifactName(prefix, len(l), total)
	if err := d.out.SaveBalances(name, l); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	d.logger.Info("saved balances",
		zap.String("artifact", name),
		zap.Int("accounts", len(l)),
		d.amount("total", total),
	)
	return name, nil
}

// CheckOriginDuplicates loads the three origin sources and reports every
// account present more than once across them. Duplicates are left for
// manual review; the returned accounts are informational.
func (d *Driver) CheckOriginDuplicates() ([]account.ID, error) {
	var (
		lists  []balance.List
		summed int
	)
	for _, id := range []string{audit.ChainXSnapshot1, audit.ComingChatMiners, audit.SherpaXContributors} {
		l, err := d.origin.Load(id)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
		summed += len(l)
	}

	dups := reconcile.DetectDuplicates(lists...)
	for _, id := range dups {
		d.logger.Warn("duplicate account", zap.String("account", d.format(id)))
	}

	if unique := len(reconcile.Deduplicate(balance.Concat(lists...))); unique != summed {
		d.logger.Warn("need manual process duplicate account balance (ignore if handled)",
			zap.Int("accounts", summed),
			zap.Int("unique", unique),
		)
	}
	return dups, nil
}

// NormalizeSources rescales the miner and contributor lists to the chain's
// decimals and saves them sorted by amount.
func (d *Driver) NormalizeSources() error {
	sources := []struct {
		origin, genesis, prefix string
	}{
		{audit.SherpaXContributors, audit.GenesisSherpaXContributors, GenesisContributorsPrefix},
		{audit.ComingChatMiners, audit.GenesisComingChatMiners, GenesisMinersPrefix},
	}

	for _, src := range sources {
		l, err := d.origin.Load(src.origin)
		if err != nil {
			return err
		}

		normalized := precision.Rescale(l, d.multiplier).SortedByAmount()
		if err := d.checker.CheckList(src.genesis, normalized); err != nil {
			return err
		}
		if _, err := d.save(src.prefix, normalized); err != nil {
			return err
		}
	}
	return nil
}

// SplitSnapshot separates the snapshot into genesis credit and transferred
// value, then derives the transfer schedule.
func (d *Driver) SplitSnapshot() error {
	before, err := d.origin.Load(audit.ChainXSnapshot1)
	if err != nil {
		return err
	}
	after, err := d.origin.Load(audit.ChainXSnapshot2)
	if err != nil {
		return err
	}

	split, err := reconcile.SnapshotDelta(before, after, d.minDelta, d.treasury)
	if err != nil {
		return err
	}
	d.logger.Info("treasury balance",
		zap.String("account", d.format(d.treasury)),
		d.amount("free", split.Treasury.Amount),
	)

	in, err := before.Total()
	if err != nil {
		return err
	}
	out, err := balance.Concat(split.Genesis, split.Transfer).Total()
	if err != nil {
		return err
	}
	if err := d.checker.CheckConservation(audit.ChainXSnapshot1, in, out); err != nil {
		return err
	}

	if err := d.checker.CheckList(audit.GenesisChainXSnapshot, split.Genesis); err != nil {
		return err
	}
	if _, err := d.save(GenesisSnapshotPrefix, split.Genesis); err != nil {
		return err
	}
	if _, err := d.save(TransferBalancesPrefix, split.Transfer); err != nil {
		return err
	}

	schedules, err := vesting.BuildLinearTransferSchedule(split.Transfer, d.cfg.Transfer)
	if err != nil {
		return err
	}
	locked, err := vesting.TotalLocked(schedules)
	if err != nil {
		return err
	}
	name := store.ArtifactName(TransferVestingPrefix, len(schedules), locked)
	if err := d.out.SaveSchedules(name, schedules); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	d.logger.Info("saved transfer schedules",
		zap.String("artifact", name),
		zap.Int("accounts", len(schedules)),
		d.amount("locked", locked),
	)
	return nil
}

// VerifyGenesis reloads the three genesis datasets and checks their
// combined count and total. Accounts credited by more than one source are
// reported but kept: the genesis builder sums them.
func (d *Driver) VerifyGenesis() error {
	var lists []balance.List
	for _, id := range []string{audit.GenesisChainXSnapshot, audit.GenesisComingChatMiners, audit.GenesisSherpaXContributors} {
		l, err := d.genesis.Load(id)
		if err != nil {
			return err
		}
		lists = append(lists, l)
	}

	if dups := reconcile.DetectDuplicates(lists...); len(dups) > 0 {
		d.logger.Warn("accounts credited by several genesis sources", zap.Int("accounts", len(dups)))
	}

	combined := balance.Concat(lists...)
	if err := d.checker.CheckList(audit.GenesisCombined, combined); err != nil {
		return err
	}

	total, err := combined.Total()
	if err != nil {
		return err
	}
	d.logger.Info("genesis balances verified",
		zap.Int("accounts", len(combined)),
		d.amount("total", total),
	)
	return nil
}

// BuildGenesisVesting derives the cliff vesting of the snapshot and miner
// accounts, corrected by the duplicate contributor table.
func (d *Driver) BuildGenesisVesting() error {
	snapshot, err := d.genesis.Load(audit.GenesisChainXSnapshot)
	if err != nil {
		return err
	}
	miners, err := d.genesis.Load(audit.GenesisComingChatMiners)
	if err != nil {
		return err
	}
	corrections, err := d.origin.Load(audit.DuplicateContributors)
	if err != nil {
		return err
	}

	res, err := vesting.BuildCliffVesting([]balance.List{snapshot, miners}, d.treasury, corrections, d.cfg.Cliff)
	if err != nil {
		return err
	}
	if res.Adjusted != len(corrections) {
		d.logger.Warn("corrections for accounts without vesting were ignored",
			zap.Int("corrections", len(corrections)),
			zap.Int("applied", res.Adjusted),
		)
	}

	extra, err := corrections.Total()
	if err != nil {
		return err
	}
	total, err := balance.CheckedAdd(res.FreeTotal, extra)
	if err != nil {
		return err
	}
	if err := d.checker.Check(audit.GenesisVesting, len(res.Records), total); err != nil {
		return err
	}

	name := store.ArtifactName(GenesisVestingPrefix, len(res.Records), res.LockedTotal)
	if err := d.out.SaveVesting(name, res.Records); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	d.logger.Info("saved genesis vesting",
		zap.String("artifact", name),
		zap.Int("accounts", len(res.Records)),
		d.amount("locked", res.LockedTotal),
	)
	return nil
}

// Run executes every step in order and stops at the first failure
func (d *Driver) Run() error {
	d.logger.Info("starting airdrop pipeline",
		zap.String("treasury", d.format(d.treasury)),
		zap.Uint16("ss58", d.cfg.Address.Prefix),
	)

	steps := []struct {
		name string
		run  func() error
	}{
		{"check origin duplicates", func() error {
			_, err := d.CheckOriginDuplicates()
			return err
		}},
		{"normalize sources", d.NormalizeSources},
		{"split snapshot", d.SplitSnapshot},
		{"verify genesis", d.VerifyGenesis},
		{"build genesis vesting", d.BuildGenesisVesting},
	}

	for i, step := range steps {
		d.logger.Info("running step", zap.Int("step", i+1), zap.String("name", step.name))
		if err := step.run(); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.name, err)
		}
	}

	d.logger.Info("airdrop pipeline complete")
	return nil
}
