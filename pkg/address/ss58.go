// Package address renders and parses SS58 account addresses.
package address

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"

	"github.com/luxfi/airdrop/pkg/account"
)

// Well known network prefixes
const (
	PolkadotPrefix  uint16 = 0
	KusamaPrefix    uint16 = 2
	SubstratePrefix uint16 = 42
	ChainXPrefix    uint16 = 44

	// MaxPrefix is the largest identifier the two-byte encoding can carry.
	MaxPrefix uint16 = 16383
)

const checksumLen = 2

var checksumPreimage = []byte("SS58PRE")

var (
	ErrInvalidPrefix   = errors.New("invalid ss58 prefix")
	ErrInvalidChecksum = errors.New("invalid ss58 checksum")
	ErrInvalidLength   = errors.New("invalid ss58 length")
)

// Codec formats accounts with a fixed network prefix. Parsing accepts any
// valid prefix so that inputs exported under another network still load.
type Codec struct {
	Prefix uint16
}

// NewCodec returns a codec for the given network prefix
func NewCodec(prefix uint16) (Codec, error) {
	if prefix > MaxPrefix {
		return Codec{}, fmt.Errorf("%w: %d", ErrInvalidPrefix, prefix)
	}
	return Codec{Prefix: prefix}, nil
}

// Format encodes an account as an SS58 string
func (c Codec) Format(id account.ID) string {
	payload := append(encodePrefix(c.Prefix), id[:]...)
	sum := checksum(payload)
	return base58.Encode(append(payload, sum[:checksumLen]...))
}

// Parse decodes an SS58 string and verifies its checksum. The network prefix
// found in the address is returned alongside the account.
func (c Codec) Parse(addr string) (account.ID, uint16, error) {
	data, err := base58.Decode(addr)
	if err != nil {
		return account.Empty, 0, fmt.Errorf("invalid base58 in %q: %w", addr, err)
	}
	if len(data) < 1+32+checksumLen {
		return account.Empty, 0, fmt.Errorf("%w: %q", ErrInvalidLength, addr)
	}

	prefix, prefixLen, err := decodePrefix(data)
	if err != nil {
		return account.Empty, 0, fmt.Errorf("%q: %w", addr, err)
	}

	if len(data) != prefixLen+32+checksumLen {
		return account.Empty, 0, fmt.Errorf("%w: %q decodes to %d bytes", ErrInvalidLength, addr, len(data))
	}

	body := data[:len(data)-checksumLen]
	sum := checksum(body)
	if sum[0] != data[len(body)] || sum[1] != data[len(body)+1] {
		return account.Empty, 0, fmt.Errorf("%w: %q", ErrInvalidChecksum, addr)
	}

	id, err := account.FromBytes(body[prefixLen:])
	if err != nil {
		return account.Empty, 0, err
	}
	return id, prefix, nil
}

func checksum(payload []byte) [blake2b.Size]byte {
	preimage := make([]byte, 0, len(checksumPreimage)+len(payload))
	preimage = append(preimage, checksumPreimage...)
	preimage = append(preimage, payload...)
	return blake2b.Sum512(preimage)
}

func encodePrefix(prefix uint16) []byte {
	if prefix < 64 {
		return []byte{byte(prefix)}
	}
	first := byte((prefix&0x00fc)>>2) | 0x40
	second := byte(prefix>>8) | byte((prefix&0x0003)<<6)
	return []byte{first, second}
}

func decodePrefix(data []byte) (uint16, int, error) {
	switch {
	case data[0] < 64:
		return uint16(data[0]), 1, nil
	case data[0] < 128:
		lower := (data[0] << 2) | (data[1] >> 6)
		upper := data[1] & 0x3f
		return uint16(lower) | uint16(upper)<<8, 2, nil
	default:
		return 0, 0, fmt.Errorf("%w: leading byte %d", ErrInvalidPrefix, data[0])
	}
}
