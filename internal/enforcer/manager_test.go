package enforcer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seedwarden/internal/qbit"
	"seedwarden/internal/rules"
)

func ptrF(v float64) *float64 { return &v }
func ptrI(v int64) *int64 { return &v }

type applyCall struct {
	hash   string
	limits rules.Limits
}

type fakeClient struct {
	torrents map[string]*qbit.Torrent
	applied  []applyCall
	applyErr map[string]error
	syncErr  error
	logins   int
}

func (f *fakeClient) Login(ctx context.Context) error { f.logins++; return nil }
func (f *fakeClient) Sync(ctx context.Context) error { return f.syncErr }
func (f *fakeClient) Torrents() map[string]*qbit.Torrent { return f.torrents }

func (f *fakeClient) SetShareLimits(ctx context.Context, hash string, limits rules.Limits) error {
	f.applied = append(f.applied, applyCall{hash, limits})
	if err, ok := f.applyErr[hash]; ok {
		return err
	}
	return nil
}

func torrent(hash, category string, seedingSeconds, maxMinutes int64, maxRatio float64) *qbit.Torrent {
	return &qbit.Torrent{
		Hash:           hash,
		Name:           "torrent-" + hash,
		Category:       category,
		Tags:           rules.NewTagSet(),
		SeedingTime:    seedingSeconds,
		MaxRatio:       maxRatio,
		MaxSeedingTime: maxMinutes,
	}
}

func newTestManager(client Client, rs *rules.RuleSet) *Manager {
	return New(client, rs, time.Minute)
}

func TestPassAppliesMatchedRule(t *testing.T) {
	limits := rules.Limits{Ratio: ptrF(20), Minutes: ptrI(129600)}
	rs := &rules.RuleSet{
		Rules: []rules.Rule{{
			Conditions: []rules.Condition{rules.CategoryEquals("Alien")},
			Limits:     limits,
		}},
	}
	client := &fakeClient{torrents: map[string]*qbit.Torrent{
		"aaa": torrent("aaa", "Alien", 600, -2, -2),
	}}

	m := newTestManager(client, rs)
	m.runPass(context.Background())

	require.Len(t, client.applied, 1)
	assert.Equal(t, applyCall{"aaa", limits}, client.applied[0])

	stats, ok := m.LastPass()
	require.True(t, ok)
	assert.Equal(t, 1, stats.Torrents)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 1, stats.Applied)
	assert.Equal(t, 0, stats.Errors)
}

func TestPassSkipsAlreadySatisfiedTorrent(t *testing.T) {
	rs := &rules.RuleSet{
		Rules: []rules.Rule{{
			Conditions: []rules.Condition{rules.CategoryEquals("Alien")},
			Limits:     rules.Limits{Ratio: ptrF(2), Minutes: ptrI(60)},
		}},
	}
	client := &fakeClient{torrents: map[string]*qbit.Torrent{
		"aaa": torrent("aaa", "Alien", 600, 60, 2),
	}}

	m := newTestManager(client, rs)
	m.runPass(context.Background())

	// Reapplying identical limits would be a no-op remotely; the
	// enforcer does not even issue the call.
	assert.Empty(t, client.applied)

	stats, _ := m.LastPass()
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 0, stats.Applied)
}

func TestPassResetsUnmatchedLimitedTorrent(t *testing.T) {
	rs := &rules.RuleSet{
		Rules: []rules.Rule{{
			Conditions: []rules.Condition{rules.CategoryEquals("Alien")},
			Limits:     rules.Limits{Ratio: ptrF(2)},
		}},
	}
	client := &fakeClient{torrents: map[string]*qbit.Torrent{
		"bbb": torrent("bbb", "Ghost", 600, 500, 1.5),
	}}

	m := newTestManager(client, rs)
	m.runPass(context.Background())

	require.Len(t, client.applied, 1)
	assert.Equal(t, "bbb", client.applied[0].hash)
	assert.True(t, client.applied[0].limits.IsUnset())
}

func TestPassLeavesUnmatchedUnlimitedTorrentAlone(t *testing.T) {
	rs := &rules.RuleSet{}
	client := &fakeClient{torrents: map[string]*qbit.Torrent{
		"bbb": torrent("bbb", "Ghost", 600, -2, -2),
	}}

	m := newTestManager(client, rs)
	m.runPass(context.Background())

	assert.Empty(t, client.applied)
}

func TestPassAppliesConfiguredDefaults(t *testing.T) {
	rs := &rules.RuleSet{Defaults: rules.Limits{Ratio: ptrF(1)}}
	client := &fakeClient{torrents: map[string]*qbit.Torrent{
		"atDefaults": torrent("atDefaults", "Ghost", 0, -2, 1),
		"atGlobal":   torrent("atGlobal", "Ghost", 0, -2, -2),
	}}

	m := newTestManager(client, rs)
	m.runPass(context.Background())

	// Only the torrent whose limits differ from the defaults gets a
	// call; the one already at the defaults stays untouched.
	require.Len(t, client.applied, 1)
	assert.Equal(t, "atGlobal", client.applied[0].hash)
	assert.Equal(t, rs.Defaults, client.applied[0].limits)
}

func TestPassContinuesAfterApplyError(t *testing.T) {
	rs := &rules.RuleSet{
		Rules: []rules.Rule{{Limits: rules.Limits{Ratio: ptrF(2)}}},
	}
	client := &fakeClient{
		torrents: map[string]*qbit.Torrent{
			"aaa": torrent("aaa", "", 0, -2, -2),
			"bbb": torrent("bbb", "", 0, -2, -2),
		},
		applyErr: map[string]error{"aaa": errors.New("network down")},
	}

	m := newTestManager(client, rs)
	m.runPass(context.Background())

	// Both torrents are attempted despite the first one failing.
	assert.Len(t, client.applied, 2)

	stats, _ := m.LastPass()
	assert.Equal(t, 2, stats.Applied)
	assert.Equal(t, 1, stats.Errors)
}

func TestPassReloginsOnAuthError(t *testing.T) {
	client := &fakeClient{syncErr: qbit.NewAuthenticationError("sync maindata")}

	m := newTestManager(client, &rules.RuleSet{})
	m.runPass(context.Background())

	assert.Equal(t, 1, client.logins)
	assert.Empty(t, client.applied)

	_, ok := m.LastPass()
	assert.False(t, ok, "failed pass must not record stats")
}

func TestPassCancelledIssuesNoFurtherCalls(t *testing.T) {
	rs := &rules.RuleSet{
		Rules: []rules.Rule{{Limits: rules.Limits{Ratio: ptrF(2)}}},
	}
	client := &fakeClient{torrents: map[string]*qbit.Torrent{
		"aaa": torrent("aaa", "", 0, -2, -2),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := newTestManager(client, rs)
	m.runPass(ctx)

	assert.Empty(t, client.applied)
}

func TestStartStop(t *testing.T) {
	client := &fakeClient{torrents: map[string]*qbit.Torrent{}}

	m := newTestManager(client, &rules.RuleSet{})
	m.Start()
	m.Stop()

	// The immediate first pass ran before Stop returned.
	_, ok := m.LastPass()
	assert.True(t, ok)
}
