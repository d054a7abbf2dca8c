package auth

import (
	"context"
	"fmt"
)

// Decision is the outcome of an ownership check.
type Decision int

const (
	Denied Decision = iota
	Allowed
)

func (d Decision) String() string {
	if d == Allowed {
		return "allowed"
	}
	return "denied"
}

// OwnerLookup resolves the owner of a resource key.
type OwnerLookup interface {
	GetOwner(ctx context.Context, key string) (owner string, found bool, err error)
}

// OwnershipGuard decides whether a subject may act on a resource. A missing
// record and a foreign owner are the same Denied result.
type OwnershipGuard struct {
	owners OwnerLookup
}

// NewOwnershipGuard constructs the guard.
func NewOwnershipGuard(owners OwnerLookup) *OwnershipGuard {
	return &OwnershipGuard{owners: owners}
}

// Authorize returns Allowed iff a record exists at key and its owner equals
// subject. Lookup failures are returned as errors, never as a decision.
func (g *OwnershipGuard) Authorize(ctx context.Context, subject, key string) (Decision, error) {
	if subject == "" || key == "" {
		return Denied, nil
	}
	owner, found, err := g.owners.GetOwner(ctx, key)
	if err != nil {
		return Denied, fmt.Errorf("lookup owner: %w", err)
	}
	if !found || owner != subject {
		return Denied, nil
	}
	return Allowed, nil
}
