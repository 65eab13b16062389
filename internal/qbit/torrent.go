package qbit

import (
	"fmt"

	"seedwarden/internal/rules"
)

// Torrent is the client-side view of one torrent, kept current across
// incremental syncs. SeedingTime is in seconds (the wire unit);
// MaxSeedingTime is in minutes, matching the setShareLimits API.
type Torrent struct {
	Hash           string
	Name           string
	Category       string
	Tags           rules.TagSet
	SeedingTime    int64
	Ratio          float64
	Size           int64
	Uploaded       int64
	Downloaded     int64
	MaxRatio       float64
	MaxSeedingTime int64
}

// partialTorrent mirrors the maindata wire format, where every field
// is optional: full objects on first sight, changed fields only on
// subsequent syncs.
type partialTorrent struct {
	Name           *string  `json:"name"`
	Category       *string  `json:"category"`
	Tags           *string  `json:"tags"`
	SeedingTime    *int64   `json:"seeding_time"`
	Ratio          *float64 `json:"ratio"`
	Size           *int64   `json:"size"`
	Uploaded       *int64   `json:"uploaded"`
	Downloaded     *int64   `json:"downloaded"`
	MaxRatio       *float64 `json:"max_ratio"`
	MaxSeedingTime *int64   `json:"max_seeding_time"`
}

// newTorrent validates a first-sight torrent object. The fields the
// engine and the applicator depend on must all be present.
func newTorrent(hash string, p partialTorrent) (*Torrent, error) {
	switch {
	case p.Name == nil:
		return nil, fmt.Errorf("missing field name")
	case p.Category == nil:
		return nil, fmt.Errorf("missing field category")
	case p.Tags == nil:
		return nil, fmt.Errorf("missing field tags")
	case p.SeedingTime == nil:
		return nil, fmt.Errorf("missing field seeding_time")
	case p.MaxRatio == nil:
		return nil, fmt.Errorf("missing field max_ratio")
	case p.MaxSeedingTime == nil:
		return nil, fmt.Errorf("missing field max_seeding_time")
	}

	t := &Torrent{
		Hash:           hash,
		Name:           *p.Name,
		Category:       *p.Category,
		Tags:           rules.ParseTagSet(*p.Tags),
		SeedingTime:    *p.SeedingTime,
		MaxRatio:       *p.MaxRatio,
		MaxSeedingTime: *p.MaxSeedingTime,
	}
	if p.Ratio != nil {
		t.Ratio = *p.Ratio
	}
	if p.Size != nil {
		t.Size = *p.Size
	}
	if p.Uploaded != nil {
		t.Uploaded = *p.Uploaded
	}
	if p.Downloaded != nil {
		t.Downloaded = *p.Downloaded
	}
	return t, nil
}

// update patches the torrent with the changed fields of a partial sync.
func (t *Torrent) update(p partialTorrent) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Tags != nil {
		t.Tags = rules.ParseTagSet(*p.Tags)
	}
	if p.SeedingTime != nil {
		t.SeedingTime = *p.SeedingTime
	}
	if p.Ratio != nil {
		t.Ratio = *p.Ratio
	}
	if p.Size != nil {
		t.Size = *p.Size
	}
	if p.Uploaded != nil {
		t.Uploaded = *p.Uploaded
	}
	if p.Downloaded != nil {
		t.Downloaded = *p.Downloaded
	}
	if p.MaxRatio != nil {
		t.MaxRatio = *p.MaxRatio
	}
	if p.MaxSeedingTime != nil {
		t.MaxSeedingTime = *p.MaxSeedingTime
	}
}

// IsLimited reports whether the torrent carries any per-torrent share
// limit. Negative values mean "global" (-2) or "unlimited" (-1).
func (t *Torrent) IsLimited() bool {
	return t.MaxRatio >= 0 || t.MaxSeedingTime >= 0
}

// Snapshot produces the engine's read-only evaluation view. Seeding
// time is converted from seconds to minutes, the unit rules use.
func (t *Torrent) Snapshot() rules.Snapshot {
	return rules.Snapshot{
		Hash:     t.Hash,
		Name:     t.Name,
		Category: t.Category,
		Tags:     t.Tags,
		Numerics: map[string]float64{
			rules.FieldSeedingTime: float64(t.SeedingTime / 60),
			rules.FieldRatio:       t.Ratio,
			rules.FieldSize:        float64(t.Size),
			rules.FieldUploaded:    float64(t.Uploaded),
			rules.FieldDownloaded:  float64(t.Downloaded),
		},
	}
}
