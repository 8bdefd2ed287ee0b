// Package token generates the uniqueness tokens staging keys and result
// prefixes are derived from.
package token

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Generator produces job tokens of the form <unixMilli>-<uuid fragment>.
// The timestamp keeps object keys ordered by submission time; the random
// fragment prevents two submissions in the same clock tick from
// colliding on their staging key or result prefix.
type Generator struct{}

// New creates a token generator.
func New() *Generator {
	return &Generator{}
}

// Next returns a fresh token.
func (g *Generator) Next() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
