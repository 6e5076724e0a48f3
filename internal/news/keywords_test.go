package news

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCryptoRelevant(t *testing.T) {
	assert.True(t, IsCryptoRelevant("Bitcoin hits new all-time high"))
	assert.True(t, IsCryptoRelevant("Ethereum gas fees spike"))
	assert.False(t, IsCryptoRelevant("Local bakery wins award for best croissant"))
	assert.False(t, IsCryptoRelevant("A recipe calling for a subtcle blend of spices"), "substring inside another word must not count")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "hello", truncateRunes("hello world", 5))
	assert.Equal(t, "hi", truncateRunes("hi", 5))
}
