// Package battlev2 implements the newer Battle mail extractor set: the same
// digit-keyed attack grouping as the legacy battle package, but built on the
// generic resolver chain with a flatter output shape (a sender row, a full
// participant roster, and a per-attack trend line instead of a fixed
// self/enemy pair).
package battlev2

import "github.com/rokbattles/mailcore/internal/codec"

// Context is the shared state visible to every resolver step for one attack
// group: the full section list, the slice belonging to this group, and the
// attack id the group was built around.
type Context struct {
	Sections []codec.Value
	Group    []codec.Value
	AttackID string
}
