package charlimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnlimited(t *testing.T) {
	l := New(0)
	assert.True(t, l.Unlimited())
	assert.True(t, l.Allow(1000000, 1000000))
	assert.Equal(t, -1, l.Remaining(42))

	text, cut := l.Truncate(0, "anything")
	assert.Equal(t, "anything", text)
	assert.False(t, cut)
}

func TestAllow(t *testing.T) {
	l := New(10)
	assert.True(t, l.Allow(5, 5))
	assert.False(t, l.Allow(5, 6))
	assert.Equal(t, 5, l.Remaining(5))
	assert.Equal(t, 0, l.Remaining(15))
}

func TestTruncate(t *testing.T) {
	l := New(10)

	t.Run("fits untouched", func(t *testing.T) {
		text, cut := l.Truncate(5, "abcde")
		assert.Equal(t, "abcde", text)
		assert.False(t, cut)
	})

	t.Run("cut to remaining budget", func(t *testing.T) {
		text, cut := l.Truncate(5, "abcdefgh")
		assert.Equal(t, "abcde", text)
		assert.True(t, cut)
	})

	t.Run("multibyte runes are not split", func(t *testing.T) {
		text, cut := l.Truncate(7, "привет")
		assert.Equal(t, "при", text)
		assert.True(t, cut)
	})
}
