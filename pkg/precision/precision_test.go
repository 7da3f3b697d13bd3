package precision

import (
	"math/rand"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/airdrop/pkg/account"
	"github.com/luxfi/airdrop/pkg/balance"
)

func TestMultiplier(t *testing.T) {
	m, err := Multiplier(8, 18)
	require.NoError(t, err)
	assert.Equal(t, From8To18, m)

	m, err = Multiplier(12, 18)
	require.NoError(t, err)
	assert.Equal(t, From12To18, m)

	m, err = Multiplier(18, 18)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), m.Uint64())

	_, err = Multiplier(18, 8)
	assert.Error(t, err)

	_, err = Multiplier(0, 60)
	assert.ErrorIs(t, err, balance.ErrOverflow)
}

func TestRescaleMiners(t *testing.T) {
	l := balance.List{
		balance.NewRecord(account.ID{1}, 214074281900000),
		balance.NewRecord(account.ID{2}, 0),
	}

	out := Rescale(l, From8To18)
	require.Len(t, out, 2)
	assert.Equal(t, "2140742819000000000000000", out[0].Amount.Dec())
	assert.True(t, out[1].Amount.IsZero())
	assert.Equal(t, uint64(214074281900000), l[0].Amount.Uint64(), "input untouched")
}

func TestRescaleConservation(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	assert.Empty(t, Rescale(nil, From8To18))

	for i := 0; i < 50; i++ {
		l := make(balance.List, r.Intn(30))
		for j := range l {
			l[j] = balance.NewRecord(account.ID{byte(j)}, uint64(r.Int63n(1<<50)))
		}

		for _, m := range []uint256.Int{From8To18, From12To18} {
			in, err := l.Total()
			require.NoError(t, err)
			expected := balance.SaturatingMul(in, m)

			got, err := Rescale(l, m).Total()
			require.NoError(t, err)
			assert.Equal(t, expected, got)
		}
	}
}

func TestRescaleSaturates(t *testing.T) {
	l := balance.List{{Account: account.ID{1}, Amount: balance.MaxAmount}}
	out := Rescale(l, From8To18)
	assert.Equal(t, balance.MaxAmount, out[0].Amount)
}
