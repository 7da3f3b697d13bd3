package store_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luxfi/airdrop/pkg/account"
	"github.com/luxfi/airdrop/pkg/address"
	"github.com/luxfi/airdrop/pkg/balance"
	"github.com/luxfi/airdrop/pkg/store"
	"github.com/luxfi/airdrop/pkg/vesting"
)

const postgresEnv = "AIRDROP_TEST_POSTGRES_DSN"

var _ = Describe("Backends", func() {
	type opener func(dir string) (store.Backend, error)

	backends := map[string]opener{
		"dir": func(dir string) (store.Backend, error) {
			return store.Open(filepath.Join(dir, "artifacts"))
		},
		"pebble": func(dir string) (store.Backend, error) {
			return store.Open("pebble://" + filepath.Join(dir, "pebble"))
		},
		"leveldb": func(dir string) (store.Backend, error) {
			return store.Open("leveldb://" + filepath.Join(dir, "leveldb"))
		},
		"postgres": func(string) (store.Backend, error) {
			dsn := os.Getenv(postgresEnv)
			if dsn == "" {
				Skip(postgresEnv + " not set")
			}
			return store.Open(dsn)
		},
	}

	for name, open := range backends {
		name, open := name, open

		Context(name, func() {
			var backend store.Backend

			BeforeEach(func() {
				var err error
				backend, err = open(GinkgoT().TempDir())
				Expect(err).NotTo(HaveOccurred())
				DeferCleanup(backend.Close)
			})

			It("round-trips and overwrites artifacts", func() {
				Expect(backend.Put("genesis_a", []byte(`{"balances":[]}`))).To(Succeed())
				Expect(backend.Put("genesis_a", []byte(`{"balances":[["x",1]]}`))).To(Succeed())

				data, err := backend.Get("genesis_a")
				Expect(err).NotTo(HaveOccurred())
				Expect(string(data)).To(Equal(`{"balances":[["x",1]]}`))
			})

			It("reports missing artifacts", func() {
				_, err := backend.Get("never_written_" + name)
				Expect(err).To(MatchError(store.ErrNotFound))
			})

			It("lists artifacts by name", func() {
				Expect(backend.Put("zz_list_"+name, []byte("{}"))).To(Succeed())
				Expect(backend.Put("aa_list_"+name, []byte("{}"))).To(Succeed())

				names, err := backend.List()
				Expect(err).NotTo(HaveOccurred())
				Expect(names).To(ContainElements("aa_list_"+name, "zz_list_"+name))
			})
		})
	}

	It("rejects unknown schemes", func() {
		_, err := store.Open("s3://bucket/airdrop")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Store", func() {
	var (
		s     *store.Store
		codec = address.Codec{Prefix: address.ChainXPrefix}
		alice = account.ID{0xa}
		bob   = account.ID{0xb}
	)

	BeforeEach(func() {
		var err error
		s, err = store.OpenURI("pebble://"+filepath.Join(GinkgoT().TempDir(), "db"), codec)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(s.Close)
	})

	It("persists balances, vesting and schedules", func() {
		balances := balance.List{balance.NewRecord(alice, 40), balance.NewRecord(bob, 60)}
		Expect(s.SaveBalances("transfer_balances_2_100", balances)).To(Succeed())

		loaded, err := s.LoadBalances("transfer_balances_2_100")
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(balances))

		records := []vesting.Record{{Account: alice, Start: 1_296_000, Duration: 2_592_000, Locked: balance.NewAmount(4)}}
		Expect(s.SaveVesting("genesis_vesting_1_4", records)).To(Succeed())
		gotRecords, err := s.LoadVesting("genesis_vesting_1_4")
		Expect(err).NotTo(HaveOccurred())
		Expect(gotRecords).To(Equal(records))

		schedules, err := vesting.BuildLinearTransferSchedule(balances, vesting.DefaultTransferPolicy)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.SaveSchedules("transfer_vesting_2_100", schedules)).To(Succeed())
		gotSchedules, err := s.LoadSchedules("transfer_vesting_2_100")
		Expect(err).NotTo(HaveOccurred())
		Expect(gotSchedules).To(Equal(schedules))

		names, err := s.Artifacts()
		Expect(err).NotTo(HaveOccurred())
		Expect(names).To(Equal([]string{"genesis_vesting_1_4", "transfer_balances_2_100", "transfer_vesting_2_100"}))
	})

	It("summarizes artifacts of every kind", func() {
		Expect(s.SaveBalances("b", balance.List{balance.NewRecord(alice, 7)})).To(Succeed())
		Expect(s.SaveVesting("v", []vesting.Record{{Account: bob, Locked: balance.NewAmount(3)}})).To(Succeed())
		Expect(s.SaveSchedules("s", []vesting.Schedule{{Account: bob, Locked: "9", PerBlock: "0"}})).To(Succeed())

		for name, kind := range map[string]store.Kind{"b": store.KindBalances, "v": store.KindVesting, "s": store.KindSchedules} {
			sum, err := s.Describe(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(sum.Kind).To(Equal(kind))
			Expect(sum.Count).To(Equal(1))
		}

		sum, err := s.Describe("s")
		Expect(err).NotTo(HaveOccurred())
		Expect(sum.Total.Uint64()).To(Equal(uint64(9)))
	})

	It("propagates missing artifacts", func() {
		_, err := s.LoadBalances("origin_missing")
		Expect(err).To(MatchError(store.ErrNotFound))
	})
})
