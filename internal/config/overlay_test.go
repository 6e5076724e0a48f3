package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPairOverlay_MissingFileReturnsZeroValue(t *testing.T) {
	overlay, err := LoadPairOverlay(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Empty(t, overlay.Pairs)
}

func TestLoadPairOverlay_EmptyPathReturnsZeroValue(t *testing.T) {
	overlay, err := LoadPairOverlay("")
	require.NoError(t, err)
	assert.Empty(t, overlay.Pairs)
}

func TestLoadPairOverlay_ParsesValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	content := "pairs:\n  BTC/USDT:\n    sentiment_buy: 0.5\n    rsi_high: 75\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	overlay, err := LoadPairOverlay(path)
	require.NoError(t, err)
	require.Contains(t, overlay.Pairs, "BTC/USDT")
	require.NotNil(t, overlay.Pairs["BTC/USDT"].SentimentBuy)
	assert.Equal(t, 0.5, *overlay.Pairs["BTC/USDT"].SentimentBuy)
}

func TestLoadPairOverlay_RejectsInvalidPairKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	content := "pairs:\n  notapair:\n    sentiment_buy: 0.5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadPairOverlay(path)
	assert.Error(t, err)
}

func TestPairOverlay_ForPair_FallsBackToDefaultsWhenUnconfigured(t *testing.T) {
	overlay := PairOverlay{}
	buy, sell, rsiLow, rsiHigh, stale := overlay.ForPair("ETH/USDT", 0.3, -0.3, 30, 70, 4)
	assert.Equal(t, 0.3, buy)
	assert.Equal(t, -0.3, sell)
	assert.Equal(t, 30.0, rsiLow)
	assert.Equal(t, 70.0, rsiHigh)
	assert.Equal(t, 4.0, stale)
}

func TestPairOverlay_ForPair_OverridesOnlySetFields(t *testing.T) {
	buy := 0.5
	overlay := PairOverlay{Pairs: map[string]PairThresholds{
		"BTC/USDT": {SentimentBuy: &buy},
	}}
	gotBuy, gotSell, _, _, _ := overlay.ForPair("BTC/USDT", 0.3, -0.3, 30, 70, 4)
	assert.Equal(t, 0.5, gotBuy)
	assert.Equal(t, -0.3, gotSell)
}
