package rules

import "fmt"

// ConditionKind discriminates the closed set of condition variants.
type ConditionKind int

const (
	KindCategoryEquals ConditionKind = iota
	KindTagsEqual
	KindNumericCompare
)

// Condition is a single predicate over one torrent attribute. Its
// shape is fixed at rule-load time; evaluation never fails for a
// well-formed condition.
type Condition struct {
	Kind ConditionKind

	// KindCategoryEquals
	Category string

	// KindTagsEqual
	Tags TagSet

	// KindNumericCompare
	Field string
	Cmp   Comparison
}

// CategoryEquals matches torrents whose category is exactly value.
// The empty string is a valid category meaning "uncategorized".
func CategoryEquals(value string) Condition {
	return Condition{Kind: KindCategoryEquals, Category: value}
}

// TagsEqual matches torrents whose tag set is exactly tags. The empty
// set requires the torrent to have zero tags.
func TagsEqual(tags TagSet) Condition {
	return Condition{Kind: KindTagsEqual, Tags: tags}
}

// NumericCompare matches torrents whose numeric attribute satisfies
// the comparison. A torrent missing the field never matches.
func NumericCompare(field string, cmp Comparison) Condition {
	return Condition{Kind: KindNumericCompare, Field: field, Cmp: cmp}
}

// Evaluate applies the condition to a snapshot. Pure; no side effects.
func (c Condition) Evaluate(s Snapshot) bool {
	switch c.Kind {
	case KindCategoryEquals:
		return s.Category == c.Category
	case KindTagsEqual:
		return c.Tags.Equal(s.Tags)
	case KindNumericCompare:
		v, ok := s.Numeric(c.Field)
		if !ok {
			return false
		}
		return c.Cmp.Compare(v)
	}
	return false
}

func (c Condition) String() string {
	switch c.Kind {
	case KindCategoryEquals:
		return fmt.Sprintf("category = %s", c.Category)
	case KindTagsEqual:
		return fmt.Sprintf("tags = %s", c.Tags)
	case KindNumericCompare:
		return fmt.Sprintf("%s %s", c.Field, c.Cmp)
	}
	return "unknown condition"
}
