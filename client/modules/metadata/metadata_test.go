package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qash-finance/qash-sub002/ledger"
)

const (
	knownFaucet   = "0x1122334455667788990011223344aa"
	fetchedFaucet = "0x2c3d4e5f60718293a4b5c6d7e8f900"
)

type flakySource struct {
	calls int
	fail  bool
}

func (s *flakySource) GetFaucetMetadata(_ context.Context, _ string) (ledger.FaucetMetadata, error) {
	s.calls++
	if s.fail {
		return ledger.FaucetMetadata{}, errors.New("rpc unavailable")
	}
	return ledger.FaucetMetadata{Symbol: "USDC", Decimals: 6}, nil
}

func newTestCache(t *testing.T, source Source) *Cache {
	c, err := NewCache(source, 16, []KnownToken{{FaucetID: knownFaucet, Symbol: "QASH", Decimals: 8}})
	require.NoError(t, err)
	return c
}

func TestCache_KnownTokensSkipSource(t *testing.T) {
	req := require.New(t)
	source := &flakySource{}
	c := newTestCache(t, source)

	metadata, err := c.Get(context.Background(), knownFaucet)
	req.NoError(err)
	req.Equal("QASH", metadata.Symbol)
	req.Zero(source.calls)
}

func TestCache_EvictOnFailure(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	source := &flakySource{fail: true}
	c := newTestCache(t, source)

	_, err := c.Get(ctx, fetchedFaucet)
	req.Error(err)
	_, err = c.Get(ctx, fetchedFaucet)
	req.Error(err)
	req.Equal(2, source.calls)

	source.fail = false
	metadata, err := c.Get(ctx, fetchedFaucet)
	req.NoError(err)
	req.Equal("USDC", metadata.Symbol)

	// cached after the first success
	_, err = c.Get(ctx, fetchedFaucet)
	req.NoError(err)
	req.Equal(3, source.calls)
}

func TestCache_EnrichFallsBackToUnknown(t *testing.T) {
	req := require.New(t)
	c := newTestCache(t, &flakySource{fail: true})

	enriched := c.Enrich(context.Background(), []ledger.Balance{
		{FaucetID: knownFaucet, Amount: 150000000},
		{FaucetID: fetchedFaucet, Amount: 1},
	})
	req.Equal([]EnrichedBalance{
		{FaucetID: knownFaucet, Amount: 150000000, Symbol: "QASH", Decimals: 8, Display: "1.5"},
		{FaucetID: fetchedFaucet, Amount: 1, Symbol: UnknownSymbol, Decimals: UnknownDecimals, Display: "0.00000001"},
	}, enriched)
}

func TestFormatAmount(t *testing.T) {
	req := require.New(t)
	req.Equal("0", FormatAmount(0, 6))
	req.Equal("12.345", FormatAmount(12345, 3))
	req.Equal("18446744073709.551615", FormatAmount(^uint64(0), 6))
}
