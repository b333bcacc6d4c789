package etl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInKorea(t *testing.T) {
	assert.True(t, inKorea(126.9780, 37.5665))  // Seoul
	assert.True(t, inKorea(129.0756, 35.1796))  // Busan
	assert.False(t, inKorea(2.3522, 48.8566))   // Paris
	assert.False(t, inKorea(37.5665, 126.9780)) // swapped lat/lon
}

func TestTruncRunes(t *testing.T) {
	assert.Equal(t, "가나다", truncRunes("가나다", 3))
	assert.Equal(t, "가나", truncRunes("가나다", 2))
	assert.Equal(t, "ab", truncRunes("abc", 2))
	assert.Equal(t, "", truncRunes("", 5))
}
