package rules

import "strconv"

// Limits is the pair of share limits a torrent should be capped at.
// A nil field means "unset": defer to the download client's global
// limit for that dimension. This is distinct from a zero value.
type Limits struct {
	Ratio   *float64
	Minutes *int64
}

// IsUnset reports whether neither limit is set. Applying unset limits
// resets a torrent to the client's global limits.
func (l Limits) IsUnset() bool {
	return l.Ratio == nil && l.Minutes == nil
}

// NeedsUpdate reports whether a torrent whose current limits are
// curRatio and curMinutes differs from the set fields. Unset fields
// are never a reason to update.
func (l Limits) NeedsUpdate(curRatio float64, curMinutes int64) bool {
	if l.Ratio != nil && *l.Ratio != curRatio {
		return true
	}
	if l.Minutes != nil && *l.Minutes != curMinutes {
		return true
	}
	return false
}

func (l Limits) String() string {
	ratio := "global"
	if l.Ratio != nil {
		ratio = strconv.FormatFloat(*l.Ratio, 'f', -1, 64)
	}
	minutes := "global"
	if l.Minutes != nil {
		minutes = strconv.FormatInt(*l.Minutes, 10)
	}
	return "ratio " + ratio + ", " + minutes + " minutes"
}
