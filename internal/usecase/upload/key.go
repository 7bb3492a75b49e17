package upload

import (
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type KeyStrategy string

const (
	// KeyStrategyRandom appends two independent base-36 runs to the timestamp.
	KeyStrategyRandom KeyStrategy = "random"
	// KeyStrategyUUID appends a dashless UUIDv4 to the timestamp.
	KeyStrategyUUID KeyStrategy = "uuid"
)

const (
	defaultExtension = "jpg"
	maxExtensionLen  = 10
	tokenPartLen     = 11
	base36           = "0123456789abcdefghijklmnopqrstuvwxyz"

	// largest multiple of 36 that fits a byte; higher bytes are rejected to
	// keep the alphabet uniform
	base36Cutoff = 252
)

// KeyGenerator derives storage keys of the form <unixMillis>-<token>.<ext>.
// Keys are unique with high probability only: nothing checks the store.
type KeyGenerator struct {
	now      func() time.Time
	entropy  io.Reader
	strategy KeyStrategy
}

type KeyOption func(*KeyGenerator)

func WithClock(now func() time.Time) KeyOption {
	return func(g *KeyGenerator) {
		g.now = now
	}
}

func WithEntropy(r io.Reader) KeyOption {
	return func(g *KeyGenerator) {
		g.entropy = r
	}
}

func WithStrategy(s KeyStrategy) KeyOption {
	return func(g *KeyGenerator) {
		g.strategy = s
	}
}

func NewKeyGenerator(opts ...KeyOption) *KeyGenerator {
	g := &KeyGenerator{
		now:      time.Now,
		entropy:  rand.Reader,
		strategy: KeyStrategyRandom,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *KeyGenerator) Generate(originalName string) (string, error) {
	var (
		token string
		err   error
	)

	switch g.strategy {
	case KeyStrategyUUID:
		token, err = g.uuidToken()
	default:
		token, err = g.randomToken()
	}
	if err != nil {
		return "", fmt.Errorf("KeyGenerator - Generate: %w", err)
	}

	ts := strconv.FormatInt(g.now().UnixMilli(), 10)

	return ts + "-" + token + "." + Extension(originalName), nil
}

func (g *KeyGenerator) randomToken() (string, error) {
	first, err := g.base36Run(tokenPartLen)
	if err != nil {
		return "", err
	}

	second, err := g.base36Run(tokenPartLen)
	if err != nil {
		return "", err
	}

	return first + second, nil
}

func (g *KeyGenerator) base36Run(n int) (string, error) {
	var sb strings.Builder
	sb.Grow(n)

	buf := make([]byte, n)
	for sb.Len() < n {
		if _, err := io.ReadFull(g.entropy, buf); err != nil {
			return "", fmt.Errorf("read entropy: %w", err)
		}

		for _, b := range buf {
			if b >= base36Cutoff {
				continue
			}
			sb.WriteByte(base36[b%36])
			if sb.Len() == n {
				break
			}
		}
	}

	return sb.String(), nil
}

func (g *KeyGenerator) uuidToken() (string, error) {
	id, err := uuid.NewRandomFromReader(g.entropy)
	if err != nil {
		return "", fmt.Errorf("uuid.NewRandomFromReader: %w", err)
	}

	return strings.ReplaceAll(id.String(), "-", ""), nil
}

// Extension returns the part of name after its last dot. Names without a
// usable extension (no dot, empty, too long, not ASCII alphanumeric) get jpg.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return defaultExtension
	}

	ext := name[i+1:]
	if ext == "" || len(ext) > maxExtensionLen {
		return defaultExtension
	}

	for _, c := range ext {
		isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !isAlnum {
			return defaultExtension
		}
	}

	return ext
}
