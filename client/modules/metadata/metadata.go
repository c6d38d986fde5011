package metadata

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	cache "github.com/Code-Hex/go-generics-cache"
	"github.com/Code-Hex/go-generics-cache/policy/lru"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/qash-finance/qash-sub002/batch"
	"github.com/qash-finance/qash-sub002/ledger"
)

const (
	DefaultCacheSize = 1024

	UnknownSymbol   = "UNKNOWN"
	UnknownDecimals = 8
)

var cacheMetrics = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "faucet_metadata_cache",
		Help: "Faucet metadata lookups by result",
	},
	[]string{"result"},
)

// Source fetches faucet metadata, usually the ledger client.
type Source interface {
	GetFaucetMetadata(ctx context.Context, faucetID string) (ledger.FaucetMetadata, error)
}

// KnownToken is statically configured metadata of a faucet.
type KnownToken struct {
	FaucetID string `mapstructure:"faucet_id"`
	Symbol   string `mapstructure:"symbol"`
	Decimals int32  `mapstructure:"decimals"`
}

// Cache resolves faucet metadata: known tokens first, then cached lookups.
// Failed lookups are never cached.
type Cache struct {
	source Source
	known  map[string]ledger.FaucetMetadata
	cache  *cache.Cache[string, ledger.FaucetMetadata]
}

func NewCache(source Source, size int, known []KnownToken) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c := &Cache{
		source: source,
		known:  make(map[string]ledger.FaucetMetadata, len(known)),
		cache:  cache.New(cache.AsLRU[string, ledger.FaucetMetadata](lru.WithCapacity(size))),
	}
	for _, token := range known {
		key, err := faucetKey(token.FaucetID)
		if err != nil {
			return nil, fmt.Errorf("known token %s: %w", token.Symbol, err)
		}
		c.known[key] = ledger.FaucetMetadata{Symbol: token.Symbol, Decimals: token.Decimals}
	}
	return c, nil
}

func faucetKey(faucetID string) (string, error) {
	id, err := batch.ParseAccountID(faucetID)
	if err != nil {
		return "", err
	}
	return id.Hex(), nil
}

// Get returns the metadata of a faucet. An error leaves no cache entry behind
// so the next call fetches again.
func (c *Cache) Get(ctx context.Context, faucetID string) (ledger.FaucetMetadata, error) {
	key, err := faucetKey(faucetID)
	if err != nil {
		return ledger.FaucetMetadata{}, err
	}
	if metadata, ok := c.known[key]; ok {
		cacheMetrics.WithLabelValues("known").Inc()
		return metadata, nil
	}
	if metadata, ok := c.cache.Get(key); ok {
		cacheMetrics.WithLabelValues("hit").Inc()
		return metadata, nil
	}
	cacheMetrics.WithLabelValues("miss").Inc()

	metadata, err := c.source.GetFaucetMetadata(ctx, faucetID)
	if err != nil {
		cacheMetrics.WithLabelValues("error").Inc()
		c.cache.Delete(key)
		return ledger.FaucetMetadata{}, fmt.Errorf("failed to get metadata of faucet %s: %w", key, err)
	}
	c.cache.Set(key, metadata)
	return metadata, nil
}

type EnrichedBalance struct {
	FaucetID string `json:"faucet_id"`
	Amount   uint64 `json:"amount"`
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
	Display  string `json:"display"`
}

// Enrich attaches symbol and decimals to balances for display. Metadata
// failures fall back to UNKNOWN with 8 decimals instead of failing.
func (c *Cache) Enrich(ctx context.Context, balances []ledger.Balance) []EnrichedBalance {
	out := make([]EnrichedBalance, 0, len(balances))
	for _, balance := range balances {
		metadata, err := c.Get(ctx, balance.FaucetID)
		if err != nil || strings.TrimSpace(metadata.Symbol) == "" {
			metadata = ledger.FaucetMetadata{Symbol: UnknownSymbol, Decimals: UnknownDecimals}
		}
		out = append(out, EnrichedBalance{
			FaucetID: balance.FaucetID,
			Amount:   balance.Amount,
			Symbol:   metadata.Symbol,
			Decimals: metadata.Decimals,
			Display:  FormatAmount(balance.Amount, metadata.Decimals),
		})
	}
	return out
}

// FormatAmount scales a base-unit amount by the faucet decimals.
func FormatAmount(amount uint64, decimals int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -decimals).String()
}
