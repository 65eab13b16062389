// Package qbit implements a minimal qBittorrent WebUI API client:
// cookie-session login, incremental torrent sync via maindata, and
// the setShareLimits mutation.
package qbit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"seedwarden/internal/config"
	"seedwarden/internal/log"
	"seedwarden/internal/rules"
)

// globalLimit is the sentinel the setShareLimits API uses for "use the
// client's global limit".
const globalLimit = "-2"

// Client talks to one qBittorrent instance. It keeps the session
// cookie and an incrementally synced torrent map, so it is not safe
// for concurrent use; the enforcer drives it from a single goroutine.
type Client struct {
	base     *url.URL
	http     *http.Client
	username string
	password string

	rid      int64
	torrents map[string]*Torrent
}

// New creates a client for the configured server. The address must be
// an absolute http or https URL.
func New(cfg config.ServerConfig) (*Client, error) {
	base, err := url.Parse(cfg.Address)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, NewInvalidURLError(cfg.Address)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		base: base,
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
		username: cfg.Username,
		password: cfg.Password,
		torrents: make(map[string]*Torrent),
	}, nil
}

func (c *Client) endpoint(p string) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + p
	return u.String()
}

// Login authenticates against the WebUI and stores the session
// cookie. Callers may treat a MissingCredentials error as "the server
// does not require auth".
func (c *Client) Login(ctx context.Context) error {
	if c.username == "" || c.password == "" {
		return NewMissingCredentialsError()
	}

	log.Debug("qbit").Str("username", c.username).Msg("Logging in")

	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)

	resp, err := c.postForm(ctx, "/api/v2/auth/login", form)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return NewBannedError()
	}
	if resp.Header.Get("Set-Cookie") == "" {
		return NewBadCredentialsError(c.username)
	}

	log.Info("qbit").Str("username", c.username).Msg("Logged in")
	return nil
}

// Sync fetches /sync/maindata and applies it to the torrent map. The
// first call is a full update; later calls carry only removed hashes
// and changed fields. A 403 yields an authentication error so the
// caller can re-login.
func (c *Client) Sync(ctx context.Context) error {
	log.Trace("qbit").Int64("rid", c.rid).Msg("Syncing maindata")

	u := c.endpoint("/api/v2/sync/maindata") + "?rid=" + strconv.FormatInt(c.rid, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return NewAuthenticationError("sync maindata")
	}
	if resp.StatusCode != http.StatusOK {
		return NewBadStatusError("sync maindata", resp.StatusCode)
	}

	var data mainData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fmt.Errorf("sync: decode maindata: %w", err)
	}

	c.apply(data)
	c.rid = data.RID
	return nil
}

func (c *Client) apply(data mainData) {
	if data.FullUpdate {
		log.Debug("qbit").Int("torrents", len(data.Torrents)).Msg("Received full update")
		c.torrents = make(map[string]*Torrent, len(data.Torrents))
		for hash, p := range data.Torrents {
			t, err := newTorrent(hash, p)
			if err != nil {
				log.Warn("qbit").Str("hash", hash).Err(err).Msg("Skipping invalid torrent")
				continue
			}
			c.torrents[hash] = t
		}
		return
	}

	for _, hash := range data.TorrentsRemoved {
		if _, ok := c.torrents[hash]; ok {
			log.Trace("qbit").Str("hash", hash).Msg("Removed torrent")
			delete(c.torrents, hash)
		}
	}
	for hash, p := range data.Torrents {
		if t, ok := c.torrents[hash]; ok {
			t.update(p)
			continue
		}
		t, err := newTorrent(hash, p)
		if err != nil {
			log.Warn("qbit").Str("hash", hash).Err(err).Msg("Skipping invalid torrent")
			continue
		}
		log.Trace("qbit").Str("hash", hash).Msg("New torrent")
		c.torrents[hash] = t
	}
}

// Torrents returns the synced torrent map. The returned map and its
// values are valid until the next Sync call.
func (c *Client) Torrents() map[string]*Torrent {
	return c.torrents
}

// SetShareLimits applies share limits to one torrent. Unset limit
// fields translate to the "-2" sentinel, i.e. the client's global
// limit, so applying unset limits resets the torrent entirely.
func (c *Client) SetShareLimits(ctx context.Context, hash string, limits rules.Limits) error {
	ratio := globalLimit
	if limits.Ratio != nil {
		ratio = strconv.FormatFloat(*limits.Ratio, 'f', -1, 64)
	}
	minutes := globalLimit
	if limits.Minutes != nil {
		minutes = strconv.FormatInt(*limits.Minutes, 10)
	}

	form := url.Values{}
	form.Set("hashes", hash)
	form.Set("ratioLimit", ratio)
	form.Set("seedingTimeLimit", minutes)
	form.Set("inactiveSeedingTimeLimit", globalLimit)

	resp, err := c.postForm(ctx, "/api/v2/torrents/setShareLimits", form)
	if err != nil {
		return fmt.Errorf("set share limits: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return NewAuthenticationError("set share limits")
	}
	if resp.StatusCode != http.StatusOK {
		return NewBadStatusError("set share limits", resp.StatusCode)
	}
	return nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", c.base.String())
	return c.http.Do(req)
}

// mainData is the /sync/maindata response, reduced to the parts the
// daemon consumes.
type mainData struct {
	RID             int64                     `json:"rid"`
	FullUpdate      bool                      `json:"full_update"`
	Torrents        map[string]partialTorrent `json:"torrents"`
	TorrentsRemoved []string                  `json:"torrents_removed"`
}
