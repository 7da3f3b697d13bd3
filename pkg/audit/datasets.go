package audit

import "github.com/luxfi/airdrop/pkg/balance"

// Dataset ids of the SherpaX airdrop
const (
	ChainXSnapshot1     = "chainx_snapshot1"
	ChainXSnapshot2     = "chainx_snapshot2"
	ComingChatMiners    = "comingchat_miners"
	SherpaXContributors = "sherpax_contributors"

	GenesisChainXSnapshot      = "genesis_chainx_snapshot"
	GenesisComingChatMiners    = "genesis_comingchat_miners"
	GenesisSherpaXContributors = "genesis_sherpax_contributors"

	DuplicateContributors = "duplicate_contributors"

	// computed, no artifact
	GenesisCombined = "genesis_combined"
	GenesisVesting  = "genesis_vesting"
)

func expect(artifact string, count int, total string) Expectation {
	return Expectation{Artifact: artifact, Count: count, Total: balance.MustParseAmount(total)}
}

// DefaultTable returns the audited expectations of the SherpaX genesis.
// Origin amounts of the miner and contributor lists carry 8 decimals.
func DefaultTable() Table {
	return Table{
		ChainXSnapshot1: expect(
			"origin_chainx_snapshot1_non_dust_7418_10500000000000000000000000_on_2761158",
			7418, "10500000000000000000000000"),
		ChainXSnapshot2: expect(
			"origin_chainx_snapshot2_non_dust_22295_11985224700000000000000000_on_2004141",
			22295, "11985224700000000000000000"),
		ComingChatMiners: expect(
			"origin_comingchat_miners_334721_214074281900000_decimal_8",
			334721, "214074281900000"),
		SherpaXContributors: expect(
			"origin_sherpax_contributors_1873_9404698487265_decimal_8",
			1873, "9404698487265"),

		GenesisChainXSnapshot: expect(
			"genesis_balances_chainx_snapshot_7418_7868415220855310000000000",
			7418, "7868415220855310000000000"),
		GenesisComingChatMiners: expect(
			"genesis_balances_comingchat_miners_334721_2140742819000000000000000",
			334721, "2140742819000000000000000"),
		GenesisSherpaXContributors: expect(
			"genesis_balances_sherpax_contributors_1873_94046984872650000000000",
			1873, "94046984872650000000000"),

		DuplicateContributors: expect(
			"handle_duplicate_contributors_in_genesis_vesting_35_617479000000000000000",
			35, "617479000000000000000"),

		// 7418 + 334721 + 1873 accounts
		GenesisCombined: expect("", 344012, "10103205024727960000000000"),
		// snapshot and miner accounts less the treasury and 5 accounts present
		// in both; free total plus the duplicate contributor corrections
		GenesisVesting: expect("", 342133, "8942133469207460000000000"),
	}
}
