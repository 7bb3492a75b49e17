package upload

import (
	"bytes"
	"errors"
	mrand "math/rand/v2"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keyPattern = regexp.MustCompile(`^(\d+)-([0-9a-z]+)\.([0-9A-Za-z]+)$`)

func fixedClock() time.Time {
	return time.UnixMilli(1718000000123)
}

func TestExtension(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "deck.png", "png"},
		{"last dot wins", "back.yard.deck.webp", "webp"},
		{"upper case kept", "IMG_0042.JPG", "JPG"},
		{"no dot", "photo", "jpg"},
		{"trailing dot", "photo.", "jpg"},
		{"empty", "", "jpg"},
		{"hidden file", ".png", "png"},
		{"junk suffix", "deck.p/ng", "jpg"},
		{"too long", "deck.averyveryverylongext", "jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.in))
		})
	}
}

func TestGenerateFormat(t *testing.T) {
	g := NewKeyGenerator(WithClock(fixedClock))

	key, err := g.Generate("deck.png")
	require.NoError(t, err)

	m := keyPattern.FindStringSubmatch(key)
	require.NotNil(t, m, "unexpected key %q", key)
	assert.Equal(t, "1718000000123", m[1])
	assert.Len(t, m[2], 2*tokenPartLen)
	assert.Equal(t, "png", m[3])
}

func TestGenerateUUIDStrategy(t *testing.T) {
	g := NewKeyGenerator(WithClock(fixedClock), WithStrategy(KeyStrategyUUID))

	key, err := g.Generate("porch")
	require.NoError(t, err)

	m := keyPattern.FindStringSubmatch(key)
	require.NotNil(t, m, "unexpected key %q", key)
	assert.Len(t, m[2], 32)
	assert.Equal(t, "jpg", m[3])
}

func TestGenerateDistinctWithFixedClock(t *testing.T) {
	g := NewKeyGenerator(
		WithClock(fixedClock),
		WithEntropy(mrand.NewChaCha8([32]byte{1, 2, 3})),
	)

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		key, err := g.Generate("deck.png")
		require.NoError(t, err)

		_, dup := seen[key]
		require.False(t, dup, "duplicate key %q after %d keys", key, i)
		seen[key] = struct{}{}
	}
}

func TestGenerateSkipsBytesOutsideAlphabet(t *testing.T) {
	// 0xff bytes must be rejected, 0x00 maps to '0' and 0x25 (37) to '1'
	src := bytes.NewReader(append(bytes.Repeat([]byte{0xff}, 5), bytes.Repeat([]byte{0x00, 0x25}, 20)...))
	g := NewKeyGenerator(WithClock(fixedClock), WithEntropy(src))

	key, err := g.Generate("a.gif")
	require.NoError(t, err)

	token := strings.TrimSuffix(strings.SplitN(key, "-", 2)[1], ".gif")
	assert.Len(t, token, 2*tokenPartLen)
	assert.NotContains(t, token, "f")
	assert.Equal(t, "0", token[:1])
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestGenerateEntropyFailure(t *testing.T) {
	g := NewKeyGenerator(WithEntropy(failingReader{}))

	_, err := g.Generate("deck.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy exhausted")
}
