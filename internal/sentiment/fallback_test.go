package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordFallback_BullishText(t *testing.T) {
	f := KeywordFallback{}
	score, err := f.Analyze("Bitcoin rallies to a new record high amid institutional adoption")
	require.NoError(t, err)
	assert.Greater(t, score, 0.0)
}

func TestKeywordFallback_BearishText(t *testing.T) {
	f := KeywordFallback{}
	score, err := f.Analyze("Exchange hacked, exploit drains wallets amid crash and liquidation")
	require.NoError(t, err)
	assert.Less(t, score, 0.0)
}

func TestKeywordFallback_NoVocabularyReturnsErrNoSignal(t *testing.T) {
	f := KeywordFallback{}
	_, err := f.Analyze("The price of bitcoin did not change today")
	assert.ErrorIs(t, err, ErrNoSignal)
}

func TestKeywordFallback_EqualCountsScoresZeroWithoutError(t *testing.T) {
	f := KeywordFallback{}
	score, err := f.Analyze("bitcoin surges then crashes right back down")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestKeywordFallback_ScoreAlwaysInRange(t *testing.T) {
	f := KeywordFallback{}
	text := "surge surge surge rally rally gain breakout adoption upgrade partnership approval institutional inflow"
	score, err := f.Analyze(text)
	require.NoError(t, err)
	assert.LessOrEqual(t, score, 1.0)
	assert.GreaterOrEqual(t, score, -1.0)
}
