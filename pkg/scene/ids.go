package scene

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces unique element identifiers.
type IDGenerator func() string

// UUIDv7 returns a generator of RFC 9562 UUID v7 strings. They sort by
// creation time, which keeps scene documents readable.
func UUIDv7() IDGenerator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed prepends prefix to every id produced by gen.
func Prefixed(prefix string, gen IDGenerator) IDGenerator {
	return func() string {
		return prefix + gen()
	}
}

// Sequential returns a generator of "<prefix>1", "<prefix>2", ... Useful
// for tests and reproducible documents.
func Sequential(prefix string) IDGenerator {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s%d", prefix, n.Add(1))
	}
}

// Id prefixes by element type.
const (
	ImagePrefix = "img_"
	TextPrefix  = "txt_"
)
