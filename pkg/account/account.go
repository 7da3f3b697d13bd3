// Package account identifies the beneficiaries of a balance snapshot.
package account

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/luxfi/ids"
)

// ID is a 32-byte chain account (an sr25519/ed25519 public key or a derived
// module account). It is comparable and safe to use as a map key.
type ID = ids.ID

// Empty is the zero account.
var Empty = ids.Empty

// modulePrefix is prepended to a module id when deriving its account.
var modulePrefix = []byte("modl")

// ModuleIDLen is the length of a pallet module identifier.
const ModuleIDLen = 8

// FromBytes converts a raw 32-byte public key to an ID
func FromBytes(b []byte) (ID, error) {
	id, err := ids.ToID(b)
	if err != nil {
		return Empty, fmt.Errorf("invalid account length %d: %w", len(b), err)
	}
	return id, nil
}

// Hex renders the raw public key, for diagnostics produced outside of an
// address codec.
func Hex(id ID) string {
	return "0x" + hex.EncodeToString(id[:])
}

// Compare orders accounts byte-wise.
func Compare(a, b ID) int {
	return bytes.Compare(a[:], b[:])
}

// Sort sorts accounts in ascending byte order.
func Sort(accounts []ID) {
	sort.Slice(accounts, func(i, j int) bool {
		return Compare(accounts[i], accounts[j]) < 0
	})
}

// Module derives the account owned by a runtime module, e.g. "pcx/trsy" for
// the treasury. The layout is "modl" || module id, zero padded to 32 bytes.
func Module(moduleID string) (ID, error) {
	if len(moduleID) != ModuleIDLen {
		return Empty, fmt.Errorf("module id %q must be %d bytes, got %d", moduleID, ModuleIDLen, len(moduleID))
	}

	var id ID
	n := copy(id[:], modulePrefix)
	copy(id[n:], moduleID)
	return id, nil
}

// MustModule is Module for compile-time constants.
func MustModule(moduleID string) ID {
	id, err := Module(moduleID)
	if err != nil {
		panic(err)
	}
	return id
}
