package alloc

import (
	"strings"
)

// Policy selects which free block satisfies an allocation.
type Policy int

//go:generate go tool stringer -linecomment -type=Policy
const (
	FIRST_FIT = Policy(0) // first
	BEST_FIT  = Policy(1) // best
	WORST_FIT = Policy(2) // worst
)

// ParsePolicy returns the policy named by text, with or without a "-fit" suffix.
func ParsePolicy(text string) (policy Policy, err error) {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(text)), "-fit")
	for policy = range WORST_FIT + 1 {
		if policy.String() == name {
			return
		}
	}

	policy = BEST_FIT
	err = ErrPolicy(text)
	return
}

// MarshalText implements encoding.TextMarshaler.
func (policy Policy) MarshalText() ([]byte, error) {
	return []byte(policy.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (policy *Policy) UnmarshalText(text []byte) (err error) {
	*policy, err = ParsePolicy(string(text))
	return
}
