package rules

import (
	"sort"
	"strings"
)

// Names of the numeric attributes a Snapshot is expected to carry.
// Rules may also reference other fields; a field absent from a
// snapshot simply never matches.
const (
	FieldSeedingTime = "seedingTime" // minutes
	FieldRatio       = "ratio"
	FieldSize        = "size"
	FieldUploaded    = "uploaded"
	FieldDownloaded  = "downloaded"
)

// TagSet is an unordered, duplicate-free collection of torrent tags.
type TagSet map[string]struct{}

// NewTagSet builds a TagSet from individual tags.
func NewTagSet(tags ...string) TagSet {
	set := make(TagSet, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

// ParseTagSet splits a comma-separated tag string as reported by the
// download client. Surrounding whitespace is stripped and empty
// entries are dropped, so "" parses to the empty set.
func ParseTagSet(s string) TagSet {
	set := make(TagSet)
	for _, tag := range strings.Split(s, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			set[tag] = struct{}{}
		}
	}
	return set
}

// Equal reports exact set equality: same cardinality, same elements.
func (t TagSet) Equal(other TagSet) bool {
	if len(t) != len(other) {
		return false
	}
	for tag := range t {
		if _, ok := other[tag]; !ok {
			return false
		}
	}
	return true
}

func (t TagSet) String() string {
	tags := make([]string, 0, len(t))
	for tag := range t {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return "[" + strings.Join(tags, ", ") + "]"
}

// Snapshot is a read-only view of a torrent at evaluation time.
// Category and Tags are always present (possibly empty) on a valid
// snapshot; numeric attributes live in an extensible bag keyed by
// field name.
type Snapshot struct {
	Hash     string
	Name     string
	Category string
	Tags     TagSet
	Numerics map[string]float64
}

// Numeric looks up a numeric attribute by field name.
func (s Snapshot) Numeric(field string) (float64, bool) {
	v, ok := s.Numerics[field]
	return v, ok
}
