// Package cache stores analyzed requirement sets keyed by a hash of the job text.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/jonathan/resume-matcher/internal/types"
)

// DefaultTTL is how long an analyzed job description stays cached
const DefaultTTL = 24 * time.Hour

// ErrMiss is returned by Get when the key is absent or expired
var ErrMiss = errors.New("cache miss")

// Store is a requirement-set cache
type Store interface {
	Get(ctx context.Context, key string) (*types.RequirementSet, error)
	Set(ctx context.Context, key string, rs *types.RequirementSet) error
	Close() error
}

// Key derives the cache key for a job description. Whitespace differences do
// not change the key.
func Key(jdText string) string {
	sum := sha256.Sum256([]byte(strings.Join(strings.Fields(jdText), " ")))
	return hex.EncodeToString(sum[:])
}
