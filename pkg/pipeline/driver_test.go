package pipeline_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/luxfi/airdrop/pkg/account"
	"github.com/luxfi/airdrop/pkg/address"
	"github.com/luxfi/airdrop/pkg/audit"
	"github.com/luxfi/airdrop/pkg/balance"
	"github.com/luxfi/airdrop/pkg/config"
	"github.com/luxfi/airdrop/pkg/pipeline"
	"github.com/luxfi/airdrop/pkg/reconcile"
	"github.com/luxfi/airdrop/pkg/store"
	"github.com/luxfi/airdrop/pkg/vesting"
)

var (
	alice    = account.ID{0xa1}
	bob      = account.ID{0xb0}
	carol    = account.ID{0xca}
	dave     = account.ID{0xda}
	treasury = account.MustModule(config.DefaultTreasury)
)

func expect(artifact string, count int, total string) audit.Expectation {
	return audit.Expectation{Artifact: artifact, Count: count, Total: balance.MustParseAmount(total)}
}

// toyConfig audits a small airdrop: alice moved 60 out of the snapshot,
// mined 2 and has a correction of 1; bob is unchanged; carol only mined;
// dave only contributed.
func toyConfig() *config.Config {
	cfg := config.Default()
	cfg.Address.Prefix = address.SubstratePrefix
	cfg.MinDelta = "10"
	cfg.Transfer.DurationDivisor = 20
	cfg.Datasets = audit.Table{
		audit.ChainXSnapshot1:     expect("origin_snapshot1_3_160", 3, "160"),
		audit.ChainXSnapshot2:     expect("origin_snapshot2_2_90", 2, "90"),
		audit.ComingChatMiners:    expect("origin_miners_2_7", 2, "7"),
		audit.SherpaXContributors: expect("origin_contributors_1_3", 1, "3"),

		audit.GenesisChainXSnapshot:      expect("genesis_balances_chainx_snapshot_3_100", 3, "100"),
		audit.GenesisComingChatMiners:    expect("genesis_balances_comingchat_miners_2_70000000000", 2, "70000000000"),
		audit.GenesisSherpaXContributors: expect("genesis_balances_sherpax_contributors_1_30000000000", 1, "30000000000"),

		audit.DuplicateContributors: expect("duplicates_1_1", 1, "1"),

		audit.GenesisCombined: expect("", 6, "100000000100"),
		audit.GenesisVesting:  expect("", 3, "70000000091"),
	}
	return cfg
}

var _ = Describe("Driver", func() {
	var (
		cfg    *config.Config
		in     *store.Store
		out    *store.Store
		logs   *observer.ObservedLogs
		logger *zap.Logger
	)

	BeforeEach(func() {
		cfg = toyConfig()
		dir := GinkgoT().TempDir()

		var err error
		in, err = store.OpenURI(filepath.Join(dir, "in"), cfg.Codec())
		Expect(err).NotTo(HaveOccurred())
		out, err = store.OpenURI("pebble://"+filepath.Join(dir, "out"), cfg.Codec())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(in.Close)
		DeferCleanup(out.Close)

		var core zapcore.Core
		core, logs = observer.New(zap.InfoLevel)
		logger = zap.New(core)

		origin := map[string]balance.List{
			"origin_snapshot1_3_160": {
				{Account: alice, Amount: balance.NewAmount(100)},
				{Account: bob, Amount: balance.NewAmount(50)},
				{Account: treasury, Amount: balance.NewAmount(10)},
			},
			"origin_snapshot2_2_90": {
				{Account: alice, Amount: balance.NewAmount(40)},
				{Account: bob, Amount: balance.NewAmount(50)},
			},
			"origin_miners_2_7": {
				{Account: carol, Amount: balance.NewAmount(5)},
				{Account: alice, Amount: balance.NewAmount(2)},
			},
			"origin_contributors_1_3": {
				{Account: dave, Amount: balance.NewAmount(3)},
			},
			"duplicates_1_1": {
				{Account: alice, Amount: balance.NewAmount(1)},
			},
		}
		for name, l := range origin {
			Expect(in.SaveBalances(name, l)).To(Succeed())
		}
	})

	newDriver := func() *pipeline.Driver {
		d, err := pipeline.New(cfg, in, out, logger)
		Expect(err).NotTo(HaveOccurred())
		return d
	}

	It("derives the treasury from the module id", func() {
		Expect(newDriver().Treasury()).To(Equal(treasury))
	})

	It("reports duplicates across origin sources", func() {
		dups, err := newDriver().CheckOriginDuplicates()
		Expect(err).NotTo(HaveOccurred())
		Expect(dups).To(Equal([]account.ID{alice}))

		Expect(logs.FilterMessage("duplicate account").Len()).To(Equal(1))
		Expect(logs.FilterMessageSnippet("need manual process").Len()).To(Equal(1))
	})

	It("runs every step and writes the artifacts", func() {
		Expect(newDriver().Run()).To(Succeed())

		names, err := out.Artifacts()
		Expect(err).NotTo(HaveOccurred())
		Expect(names).To(ConsistOf(
			"genesis_balances_sherpax_contributors_1_30000000000",
			"genesis_balances_comingchat_miners_2_70000000000",
			"genesis_balances_chainx_snapshot_3_100",
			"transfer_balances_1_60",
			"transfer_vesting_1_60",
			"genesis_vesting_3_7000000010",
		))

		By("sorting the genesis snapshot by amount")
		genesis, err := out.LoadBalances("genesis_balances_chainx_snapshot_3_100")
		Expect(err).NotTo(HaveOccurred())
		Expect(genesis).To(Equal(balance.List{
			{Account: treasury, Amount: balance.NewAmount(10)},
			{Account: alice, Amount: balance.NewAmount(40)},
			{Account: bob, Amount: balance.NewAmount(50)},
		}))

		By("rescaling the miners to 18 decimals")
		miners, err := out.LoadBalances("genesis_balances_comingchat_miners_2_70000000000")
		Expect(err).NotTo(HaveOccurred())
		Expect(miners).To(Equal(balance.List{
			{Account: alice, Amount: balance.NewAmount(20_000_000_000)},
			{Account: carol, Amount: balance.NewAmount(50_000_000_000)},
		}))

		By("scheduling the transferred balance")
		schedules, err := out.LoadSchedules("transfer_vesting_1_60")
		Expect(err).NotTo(HaveOccurred())
		Expect(schedules).To(Equal([]vesting.Schedule{{
			Account:       alice,
			Locked:        "60",
			PerBlock:      "3",
			StartingBlock: vesting.DefaultTransferPolicy.Start,
		}}))

		By("vesting a tenth of every combined balance except the treasury")
		records, err := out.LoadVesting("genesis_vesting_3_7000000010")
		Expect(err).NotTo(HaveOccurred())
		locked := map[account.ID]uint64{}
		for _, r := range records {
			Expect(r.Start).To(Equal(vesting.DefaultCliffPolicy.Start))
			Expect(r.Duration).To(Equal(vesting.DefaultCliffPolicy.Duration))
			locked[r.Account] = r.Locked.Uint64()
		}
		Expect(locked).To(Equal(map[account.ID]uint64{
			alice: 2_000_000_004 + 1,
			bob:   5,
			carol: 5_000_000_000,
		}))

		Expect(logs.FilterMessage("invariant violated").Len()).To(BeZero())
		Expect(logs.FilterMessage("treasury balance").Len()).To(Equal(1))
	})

	It("aborts on the first mismatch", func() {
		cfg.Datasets[audit.GenesisCombined] = expect("", 6, "100000000101")

		err := newDriver().Run()
		Expect(err).To(HaveOccurred())
		Expect(audit.IsMismatch(err)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("step 4"))

		_, err = out.Describe("genesis_vesting_3_7000000010")
		Expect(err).To(MatchError(store.ErrNotFound))
		Expect(logs.FilterMessage("invariant violated").Len()).To(Equal(1))
	})

	It("rejects a snapshot split that disagrees with its audit", func() {
		Expect(newDriver().Run()).To(Succeed())

		// alice's drop of 60 now stays at genesis
		cfg.MinDelta = "1000"
		err := newDriver().Run()
		Expect(audit.IsMismatch(err)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("step 3"))
		Expect(err.Error()).To(ContainSubstring(audit.GenesisChainXSnapshot))

		names, err := out.Artifacts()
		Expect(err).NotTo(HaveOccurred())
		Expect(names).NotTo(ContainElement("genesis_balances_chainx_snapshot_3_160"))
		Expect(names).NotTo(ContainElement("transfer_balances_0_0"))
	})

	It("rejects origin data that disagrees with its audit", func() {
		Expect(in.SaveBalances("origin_miners_2_7", balance.List{
			{Account: carol, Amount: balance.NewAmount(6)},
			{Account: alice, Amount: balance.NewAmount(2)},
		})).To(Succeed())

		err := newDriver().NormalizeSources()
		Expect(audit.IsMismatch(err)).To(BeTrue())
	})

	It("requires the treasury in the snapshot", func() {
		Expect(in.SaveBalances("origin_snapshot1_3_160", balance.List{
			{Account: alice, Amount: balance.NewAmount(100)},
			{Account: bob, Amount: balance.NewAmount(50)},
			{Account: carol, Amount: balance.NewAmount(10)},
		})).To(Succeed())

		err := newDriver().SplitSnapshot()
		Expect(err).To(MatchError(reconcile.ErrTreasuryMissing))
	})

	It("rejects an invalid configuration", func() {
		cfg.Cliff.Divisor = 0
		_, err := pipeline.New(cfg, in, out, logger)
		Expect(err).To(HaveOccurred())
	})
})
