// Package enforcer drives the evaluation passes: sync torrents from
// the client, resolve each one against the rule set, and apply share
// limits where the current ones differ.
package enforcer

import (
	"context"
	"strconv"
	"sync"
	"time"

	"seedwarden/internal/log"
	"seedwarden/internal/qbit"
	"seedwarden/internal/rules"
	"seedwarden/internal/telemetry"
)

// Client is the slice of the qBittorrent client the enforcer needs.
type Client interface {
	Login(ctx context.Context) error
	Sync(ctx context.Context) error
	Torrents() map[string]*qbit.Torrent
	SetShareLimits(ctx context.Context, hash string, limits rules.Limits) error
}

// Manager runs one evaluation pass per tick. Passes never overlap:
// a single goroutine syncs, resolves and applies synchronously.
type Manager struct {
	client   Client
	ruleset  *rules.RuleSet
	interval time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup

	mu       sync.Mutex
	lastPass *PassStats
}

// New creates a manager for the given client and rule set.
func New(client Client, ruleset *rules.RuleSet, interval time.Duration) *Manager {
	return &Manager{
		client:   client,
		ruleset:  ruleset,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic evaluation loop.
func (m *Manager) Start() {
	m.wg.Add(1)
	go m.run()
}

// Stop shuts the loop down and waits for an in-flight pass to finish.
// A stopped pass stops issuing new apply calls; ones already issued
// are idempotent on the client side and need no rollback.
func (m *Manager) Stop() {
	close(m.stopChan)
	m.wg.Wait()
}

// LastPass returns the most recent pass summary, if any pass has
// completed yet.
func (m *Manager) LastPass() (PassStats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastPass == nil {
		return PassStats{}, false
	}
	return *m.lastPass, true
}

func (m *Manager) run() {
	defer m.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-m.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Debug("enforcer").Dur("interval", m.interval).Msg("Starting evaluation loop")

	// Run the first pass immediately instead of waiting a full tick.
	m.runPass(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			log.Debug("enforcer").Msg("Evaluation loop stopping")
			return
		case <-ticker.C:
			m.runPass(ctx)
		}
	}
}

// runPass syncs the torrent list and handles every torrent once.
// Per-torrent apply failures are counted and logged but never abort
// the rest of the pass.
func (m *Manager) runPass(ctx context.Context) {
	start := time.Now()

	if err := m.client.Sync(ctx); err != nil {
		telemetry.SyncErrors.Inc()
		if qbit.IsAuthenticationError(err) {
			log.Warn("enforcer").Err(err).Msg("Session expired, logging in again")
			if err := m.client.Login(ctx); err != nil {
				log.Error("enforcer").Err(err).Msg("Re-login failed")
			}
			return
		}
		log.Error("enforcer").Err(err).Msg("Failed to sync torrents")
		return
	}

	stats := PassStats{Time: start}
	for hash, t := range m.client.Torrents() {
		select {
		case <-ctx.Done():
			log.Info("enforcer").Msg("Pass cancelled")
			return
		default:
		}

		stats.Torrents++
		matched, applied, err := m.handleTorrent(ctx, hash, t)
		if matched {
			stats.Matched++
		}
		if applied {
			stats.Applied++
			telemetry.LimitsApplied.Inc()
		}
		if err != nil {
			stats.Errors++
			telemetry.ApplyErrors.Inc()
			log.Warn("enforcer").Str("hash", hash).Str("name", t.Name).Err(err).
				Msg("Failed to update share limits")
		}
	}
	stats.Duration = time.Since(start).Seconds()

	telemetry.PassesTotal.Inc()
	telemetry.TorrentsSeen.Set(float64(stats.Torrents))
	telemetry.TorrentsMatched.Set(float64(stats.Matched))

	log.Debug("enforcer").
		Int("torrents", stats.Torrents).
		Int("matched", stats.Matched).
		Int("applied", stats.Applied).
		Int("errors", stats.Errors).
		Msg("Pass completed")

	m.mu.Lock()
	m.lastPass = &stats
	m.mu.Unlock()
}

// handleTorrent resolves one torrent and issues at most one apply
// call: the first matching rule's limits when they differ from the
// torrent's current ones, or the defaults when no rule matches a
// torrent that needs resetting.
func (m *Manager) handleTorrent(ctx context.Context, hash string, t *qbit.Torrent) (matched, applied bool, err error) {
	if rule, idx, ok := m.ruleset.Find(t.Snapshot()); ok {
		if !rule.Limits.NeedsUpdate(t.MaxRatio, t.MaxSeedingTime) {
			return true, false, nil
		}
		log.Info("enforcer").
			Str("name", t.Name).
			Int("rule", idx+1).
			Str("ratio", describeRatio(t.MaxRatio)+" => "+describeLimit(rule.Limits.Ratio)).
			Str("minutes", describeMinutes(t.MaxSeedingTime)+" => "+describeLimit(rule.Limits.Minutes)).
			Msg("Applying matched rule")
		return true, true, m.client.SetShareLimits(ctx, hash, rule.Limits)
	}

	defaults := m.ruleset.Defaults
	var needsUpdate bool
	if defaults.IsUnset() {
		// No configured defaults: a limited torrent gets reset to the
		// client's global limits.
		needsUpdate = t.IsLimited()
	} else {
		needsUpdate = defaults.NeedsUpdate(t.MaxRatio, t.MaxSeedingTime)
	}
	if !needsUpdate {
		return false, false, nil
	}

	log.Info("enforcer").
		Str("name", t.Name).
		Str("ratio", describeRatio(t.MaxRatio)+" => "+describeLimit(defaults.Ratio)).
		Str("minutes", describeMinutes(t.MaxSeedingTime)+" => "+describeLimit(defaults.Minutes)).
		Msg("No rule matched, applying default limits")
	return false, true, m.client.SetShareLimits(ctx, hash, defaults)
}

func describeRatio(v float64) string {
	switch v {
	case -1:
		return "unlimited"
	case -2:
		return "global"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func describeMinutes(v int64) string {
	switch v {
	case -1:
		return "unlimited"
	case -2:
		return "global"
	}
	return strconv.FormatInt(v, 10)
}

func describeLimit[T float64 | int64](p *T) string {
	if p == nil {
		return "global"
	}
	return strconv.FormatFloat(float64(*p), 'f', -1, 64)
}
