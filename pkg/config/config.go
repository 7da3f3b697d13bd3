// Package config holds the run configuration of the airdrop pipeline.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"

	"github.com/luxfi/airdrop/pkg/account"
	"github.com/luxfi/airdrop/pkg/address"
	"github.com/luxfi/airdrop/pkg/audit"
	"github.com/luxfi/airdrop/pkg/balance"
	"github.com/luxfi/airdrop/pkg/precision"
	"github.com/luxfi/airdrop/pkg/vesting"
)

// Defaults of the SherpaX genesis
const (
	DefaultTreasury       = "pcx/trsy"
	DefaultSymbol         = "KSX"
	DefaultMinDelta       = "1000000000000000000"
	DefaultSourceDecimals = 8
)

// AddressConfig selects the SS58 format used in artifacts and logs
type AddressConfig struct {
	Prefix uint16 `yaml:"prefix"`
}

// Config is the full run configuration
type Config struct {
	Address AddressConfig `yaml:"address"`
	// Treasury is the 8 byte module id of the treasury account.
	Treasury string `yaml:"treasury"`
	Symbol   string `yaml:"symbol"`
	// MinDelta is the smallest snapshot decrease treated as a transfer.
	MinDelta string `yaml:"minDelta"`
	// SourceDecimals is the precision of the miner and contributor lists.
	SourceDecimals uint8                  `yaml:"sourceDecimals"`
	Cliff          vesting.CliffPolicy    `yaml:"cliff"`
	Transfer       vesting.TransferPolicy `yaml:"transfer"`
	Datasets       audit.Table            `yaml:"datasets"`
}

// Default returns the configuration of the SherpaX airdrop
func Default() *Config {
	return &Config{
		Address:        AddressConfig{Prefix: address.ChainXPrefix},
		Treasury:       DefaultTreasury,
		Symbol:         DefaultSymbol,
		MinDelta:       DefaultMinDelta,
		SourceDecimals: DefaultSourceDecimals,
		Cliff:          vesting.DefaultCliffPolicy,
		Transfer:       vesting.DefaultTransferPolicy,
		Datasets:       audit.DefaultTable(),
	}
}

// Load overlays the YAML file at path on the defaults. Datasets named in the
// file replace the default entry of the same id; all others are kept.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every derived value can be computed
func (c *Config) Validate() error {
	if _, err := address.NewCodec(c.Address.Prefix); err != nil {
		return err
	}
	if _, err := c.TreasuryAccount(); err != nil {
		return err
	}
	if _, err := c.MinDeltaAmount(); err != nil {
		return fmt.Errorf("minDelta: %w", err)
	}
	if _, err := c.Multiplier(); err != nil {
		return err
	}
	if err := c.Cliff.Validate(); err != nil {
		return err
	}
	if err := c.Transfer.Validate(); err != nil {
		return err
	}
	if len(c.Datasets) == 0 {
		return errors.New("no datasets configured")
	}
	return nil
}

// Codec returns the address codec for the configured prefix
func (c *Config) Codec() address.Codec {
	return address.Codec{Prefix: c.Address.Prefix}
}

// TreasuryAccount derives the treasury module account
func (c *Config) TreasuryAccount() (account.ID, error) {
	id, err := account.Module(c.Treasury)
	if err != nil {
		return account.Empty, fmt.Errorf("treasury: %w", err)
	}
	return id, nil
}

// MinDeltaAmount parses MinDelta
func (c *Config) MinDeltaAmount() (uint256.Int, error) {
	return balance.ParseAmount(c.MinDelta)
}

// Multiplier rescales the 8 decimal sources to the chain's decimals
func (c *Config) Multiplier() (uint256.Int, error) {
	return precision.Multiplier(c.SourceDecimals, balance.Decimals)
}
