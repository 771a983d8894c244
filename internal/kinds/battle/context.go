// Package battle implements the legacy Battle mail extractor: a
// resolver-chain pipeline that scans a mail's sections for one or more
// attack groups and produces one processed entry per group.
package battle

import "github.com/rokbattles/mailcore/internal/codec"

// Context is the read-only context shared across one battle group's
// resolver chain.
type Context struct {
	// Sections holds every decoded section of the mail, in wire order.
	Sections []codec.Value
	// Group holds the subset of Sections that belong to the current
	// battle group.
	Group []codec.Value
	// AttackID identifies the current battle group's attack.
	AttackID string
}
