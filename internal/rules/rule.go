// Package rules implements the share-limit rule engine: typed
// conditions over torrent snapshots, conjunctive rule matching, and
// first-match-wins resolution against an ordered rule set.
//
// Evaluation is pure and performs no I/O. A RuleSet is immutable once
// built and may be used concurrently without synchronization.
package rules

import (
	"strings"
)

// Rule is an ordered conjunction of conditions plus the limits to
// apply when all of them match. A rule with zero conditions matches
// every torrent.
type Rule struct {
	Conditions []Condition
	Limits     Limits
}

// Matches reports whether every condition matches the snapshot.
// Evaluation short-circuits on the first non-matching condition.
func (r Rule) Matches(s Snapshot) bool {
	for _, c := range r.Conditions {
		if !c.Evaluate(s) {
			return false
		}
	}
	return true
}

func (r Rule) String() string {
	if len(r.Conditions) == 0 {
		return "always => " + r.Limits.String()
	}
	parts := make([]string, len(r.Conditions))
	for i, c := range r.Conditions {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ") + " => " + r.Limits.String()
}

// RuleSet is the full ordered rule list plus the default limits used
// when no rule matches. Declaration order is priority order.
type RuleSet struct {
	Rules    []Rule
	Defaults Limits
}

// Find returns the first rule matching the snapshot, along with its
// position, or ok=false when none matches.
func (rs *RuleSet) Find(s Snapshot) (Rule, int, bool) {
	for i, r := range rs.Rules {
		if r.Matches(s) {
			return r, i, true
		}
	}
	return Rule{}, -1, false
}

// Resolve returns the limits of the first matching rule, falling back
// to Defaults when no rule matches. It is total: every snapshot
// resolves to a Limits value.
func (rs *RuleSet) Resolve(s Snapshot) Limits {
	if r, _, ok := rs.Find(s); ok {
		return r.Limits
	}
	return rs.Defaults
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	return len(rs.Rules)
}
